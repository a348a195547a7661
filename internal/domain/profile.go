package domain

import (
	"github.com/shopspring/decimal"
)

// PersonProfile is one household member's slice of the intake record.
// Pointer fields are genuinely optional; nil means "not provided", which the
// builder distinguishes from an explicit zero.
type PersonProfile struct {
	Name            string           `yaml:"name" json:"name"`
	Age             int              `yaml:"age" json:"age"`
	AnnualIncome    decimal.Decimal  `yaml:"annual_income" json:"annual_income"`
	LifeExpectancy  *int             `yaml:"life_expectancy,omitempty" json:"life_expectancy,omitempty"`
	Assets          AssetBuckets     `yaml:"assets" json:"assets"`
	Allocation      *Allocation      `yaml:"allocation,omitempty" json:"allocation,omitempty"`
	GlidePath       []GlidePoint     `yaml:"glide_path,omitempty" json:"glide_path,omitempty"`
	SSClaimAge      *int             `yaml:"ss_claim_age,omitempty" json:"ss_claim_age,omitempty"`
	SSMonthlyAmount *decimal.Decimal `yaml:"ss_monthly_amount,omitempty" json:"ss_monthly_amount,omitempty"`
	PensionAnnual   *decimal.Decimal `yaml:"pension_annual,omitempty" json:"pension_annual,omitempty"`
	PartTimeAnnual  *decimal.Decimal `yaml:"part_time_annual,omitempty" json:"part_time_annual,omitempty"`
}

// HouseholdProfile is the normalized intake record supplied by collaborators.
// It replaces the source system's open-ended bag of optional fields with a
// tagged record validated once at the builder boundary; untyped maps never
// reach the simulation core.
type HouseholdProfile struct {
	Primary             PersonProfile    `yaml:"primary" json:"primary"`
	Spouse              *PersonProfile   `yaml:"spouse,omitempty" json:"spouse,omitempty"`
	MarriedFilingJointly bool            `yaml:"married_filing_jointly" json:"married_filing_jointly"`
	RetirementAge       *int             `yaml:"retirement_age,omitempty" json:"retirement_age,omitempty"`
	MonthlyExpenses     *decimal.Decimal `yaml:"monthly_expenses,omitempty" json:"monthly_expenses,omitempty"`
	MonthlyHealthcare   *decimal.Decimal `yaml:"monthly_healthcare,omitempty" json:"monthly_healthcare,omitempty"`
	ExpenseInflation    *decimal.Decimal `yaml:"expense_inflation,omitempty" json:"expense_inflation,omitempty"`
	HealthcareInflation *decimal.Decimal `yaml:"healthcare_inflation,omitempty" json:"healthcare_inflation,omitempty"`
	EffectiveTaxRate    *decimal.Decimal `yaml:"effective_tax_rate,omitempty" json:"effective_tax_rate,omitempty"`
	HasLTCInsurance     bool             `yaml:"has_ltc_insurance" json:"has_ltc_insurance"`
	LegacyGoal          *decimal.Decimal `yaml:"legacy_goal,omitempty" json:"legacy_goal,omitempty"`
	Liabilities         decimal.Decimal  `yaml:"liabilities" json:"liabilities"`
	Seed                int64            `yaml:"seed" json:"seed"`
}

// OptimizationOverlay is the set of proposed changes a household is
// evaluating, structurally identical to the profile's relevant subset. It is
// applied to a deep copy of the profile before parameters are built; the
// baseline profile is never mutated.
type OptimizationOverlay struct {
	RetirementAge     *int             `yaml:"retirement_age,omitempty" json:"retirement_age,omitempty"`
	MonthlyExpenses   *decimal.Decimal `yaml:"monthly_expenses,omitempty" json:"monthly_expenses,omitempty"`
	SSClaimAge        *int             `yaml:"ss_claim_age,omitempty" json:"ss_claim_age,omitempty"`
	SpouseSSClaimAge  *int             `yaml:"spouse_ss_claim_age,omitempty" json:"spouse_ss_claim_age,omitempty"`
	Allocation        *Allocation      `yaml:"allocation,omitempty" json:"allocation,omitempty"`
	PartTimeAnnual    *decimal.Decimal `yaml:"part_time_annual,omitempty" json:"part_time_annual,omitempty"`
	LegacyGoal        *decimal.Decimal `yaml:"legacy_goal,omitempty" json:"legacy_goal,omitempty"`
	HasLTCInsurance   *bool            `yaml:"has_ltc_insurance,omitempty" json:"has_ltc_insurance,omitempty"`
}

// Clone returns a deep copy of the profile.
func (h *HouseholdProfile) Clone() *HouseholdProfile {
	out := *h
	out.Primary = h.Primary.clone()
	if h.Spouse != nil {
		sp := h.Spouse.clone()
		out.Spouse = &sp
	}
	out.RetirementAge = cloneInt(h.RetirementAge)
	out.MonthlyExpenses = cloneDec(h.MonthlyExpenses)
	out.MonthlyHealthcare = cloneDec(h.MonthlyHealthcare)
	out.ExpenseInflation = cloneDec(h.ExpenseInflation)
	out.HealthcareInflation = cloneDec(h.HealthcareInflation)
	out.EffectiveTaxRate = cloneDec(h.EffectiveTaxRate)
	out.LegacyGoal = cloneDec(h.LegacyGoal)
	return &out
}

func (p PersonProfile) clone() PersonProfile {
	out := p
	out.LifeExpectancy = cloneInt(p.LifeExpectancy)
	if p.Allocation != nil {
		a := *p.Allocation
		out.Allocation = &a
	}
	if p.GlidePath != nil {
		out.GlidePath = make([]GlidePoint, len(p.GlidePath))
		copy(out.GlidePath, p.GlidePath)
	}
	out.SSClaimAge = cloneInt(p.SSClaimAge)
	out.SSMonthlyAmount = cloneDec(p.SSMonthlyAmount)
	out.PensionAnnual = cloneDec(p.PensionAnnual)
	out.PartTimeAnnual = cloneDec(p.PartTimeAnnual)
	return out
}

func cloneInt(v *int) *int {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func cloneDec(v *decimal.Decimal) *decimal.Decimal {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
