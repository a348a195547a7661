package domain

import (
	"github.com/shopspring/decimal"
)

// AssetClass identifies an investable asset class in an allocation.
type AssetClass string

const (
	AssetStocks AssetClass = "stocks"
	AssetBonds  AssetClass = "bonds"
	AssetCash   AssetClass = "cash"
)

// BucketType identifies a tax-treatment category of savings.
type BucketType string

const (
	BucketTaxable     BucketType = "taxable"
	BucketTaxDeferred BucketType = "tax_deferred"
	BucketTaxFree     BucketType = "tax_free"
	BucketHSA         BucketType = "hsa"
)

// Allocation is a target portfolio split across asset classes. Weights are
// fractions that must sum to 1.
type Allocation struct {
	Stocks decimal.Decimal `yaml:"stocks" json:"stocks"`
	Bonds  decimal.Decimal `yaml:"bonds" json:"bonds"`
	Cash   decimal.Decimal `yaml:"cash" json:"cash"`
}

// Sum returns the total weight of the allocation.
func (a Allocation) Sum() decimal.Decimal {
	return a.Stocks.Add(a.Bonds).Add(a.Cash)
}

// GlidePoint pins an allocation to a simulated age. Between points the
// generator interpolates linearly; beyond the last point the allocation holds.
type GlidePoint struct {
	Age        int        `yaml:"age" json:"age"`
	Allocation Allocation `yaml:"allocation" json:"allocation"`
}

// AssetBuckets holds one owner's balances by tax treatment.
type AssetBuckets struct {
	Taxable     decimal.Decimal `yaml:"taxable" json:"taxable"`
	TaxDeferred decimal.Decimal `yaml:"tax_deferred" json:"tax_deferred"`
	TaxFree     decimal.Decimal `yaml:"tax_free" json:"tax_free"`
	HSA         decimal.Decimal `yaml:"hsa" json:"hsa"`
}

// Total returns the combined balance across all buckets.
func (b AssetBuckets) Total() decimal.Decimal {
	return b.Taxable.Add(b.TaxDeferred).Add(b.TaxFree).Add(b.HSA)
}

// GuaranteedIncome holds one owner's annual guaranteed income sources.
// Social Security and pension receive inflation adjustment in the sequencer;
// part-time income does not (it ends, it doesn't grow).
type GuaranteedIncome struct {
	SocialSecurity decimal.Decimal `yaml:"social_security" json:"social_security"`
	Pension        decimal.Decimal `yaml:"pension" json:"pension"`
	PartTime       decimal.Decimal `yaml:"part_time" json:"part_time"`
}

// Total returns the combined annual guaranteed income.
func (g GuaranteedIncome) Total() decimal.Decimal {
	return g.SocialSecurity.Add(g.Pension).Add(g.PartTime)
}

// OwnerParams carries the per-person slice of the simulation inputs. A
// household has one or two owners.
type OwnerParams struct {
	Name       string           `yaml:"name" json:"name"`
	CurrentAge int              `yaml:"current_age" json:"current_age"`
	Buckets    AssetBuckets     `yaml:"buckets" json:"buckets"`
	Allocation Allocation       `yaml:"allocation" json:"allocation"`
	GlidePath  []GlidePoint     `yaml:"glide_path,omitempty" json:"glide_path,omitempty"`
	Income     GuaranteedIncome `yaml:"income" json:"income"`
	SSStartAge int              `yaml:"ss_start_age" json:"ss_start_age"`
}

// SimulationParams is the canonical, fully resolved input to the engine.
// Callers produce it through the profile builder; the engine is a pure
// function of this record plus the iteration count.
type SimulationParams struct {
	Owners              []OwnerParams   `yaml:"owners" json:"owners"`
	RetirementAge       int             `yaml:"retirement_age" json:"retirement_age"`
	LifeExpectancy      int             `yaml:"life_expectancy" json:"life_expectancy"`
	SpouseLifeExpectancy *int           `yaml:"spouse_life_expectancy,omitempty" json:"spouse_life_expectancy,omitempty"`
	AnnualExpenses      decimal.Decimal `yaml:"annual_expenses" json:"annual_expenses"`
	AnnualHealthcare    decimal.Decimal `yaml:"annual_healthcare" json:"annual_healthcare"`
	ExpenseInflation    decimal.Decimal `yaml:"expense_inflation" json:"expense_inflation"`
	HealthcareInflation decimal.Decimal `yaml:"healthcare_inflation" json:"healthcare_inflation"`
	EffectiveTaxRate    decimal.Decimal `yaml:"effective_tax_rate" json:"effective_tax_rate"`
	HasLTCInsurance     bool            `yaml:"has_ltc_insurance" json:"has_ltc_insurance"`
	LegacyGoal          decimal.Decimal `yaml:"legacy_goal" json:"legacy_goal"`
	Seed                int64           `yaml:"seed" json:"seed"`
	MarketShock         *MarketShock    `yaml:"market_shock,omitempty" json:"market_shock,omitempty"`
}

// MarketShock forces a portfolio loss in one simulated year. Year is a raw
// simulation-year index counted from the primary owner's current age; the
// stress engine translates retirement-relative shock specs before setting it.
// The scenario generator overrides that year's drawn returns without
// disturbing any other year's draws.
type MarketShock struct {
	Year int             `yaml:"year" json:"year"`
	Loss decimal.Decimal `yaml:"loss" json:"loss"`
}

// PrimaryAge returns the first owner's current age.
func (p *SimulationParams) PrimaryAge() int {
	if len(p.Owners) == 0 {
		return 0
	}
	return p.Owners[0].CurrentAge
}

// PlanLifeExpectancy returns the later of the household's life expectancies.
// The plan must fund the longer-lived spouse.
func (p *SimulationParams) PlanLifeExpectancy() int {
	le := p.LifeExpectancy
	if p.SpouseLifeExpectancy != nil && *p.SpouseLifeExpectancy > le {
		le = *p.SpouseLifeExpectancy
	}
	return le
}

// HorizonYears returns the number of simulated years from current age through
// the plan life expectancy.
func (p *SimulationParams) HorizonYears() int {
	return p.PlanLifeExpectancy() - p.PrimaryAge()
}

// TotalBuckets merges all owners' balances per tax class. Under a flat
// effective tax rate the owner split carries no tax consequence, so the
// sequencer operates on the merged view.
func (p *SimulationParams) TotalBuckets() AssetBuckets {
	var total AssetBuckets
	for _, o := range p.Owners {
		total.Taxable = total.Taxable.Add(o.Buckets.Taxable)
		total.TaxDeferred = total.TaxDeferred.Add(o.Buckets.TaxDeferred)
		total.TaxFree = total.TaxFree.Add(o.Buckets.TaxFree)
		total.HSA = total.HSA.Add(o.Buckets.HSA)
	}
	return total
}

// TotalGuaranteedIncome sums guaranteed income across owners.
func (p *SimulationParams) TotalGuaranteedIncome() GuaranteedIncome {
	var total GuaranteedIncome
	for _, o := range p.Owners {
		total.SocialSecurity = total.SocialSecurity.Add(o.Income.SocialSecurity)
		total.Pension = total.Pension.Add(o.Income.Pension)
		total.PartTime = total.PartTime.Add(o.Income.PartTime)
	}
	return total
}

// Clone returns a deep copy. Stress shocks and overlays mutate clones only;
// the baseline record is never shared with a perturbed run.
func (p *SimulationParams) Clone() *SimulationParams {
	out := *p
	out.Owners = make([]OwnerParams, len(p.Owners))
	for i, o := range p.Owners {
		oc := o
		if o.GlidePath != nil {
			oc.GlidePath = make([]GlidePoint, len(o.GlidePath))
			copy(oc.GlidePath, o.GlidePath)
		}
		out.Owners[i] = oc
	}
	if p.SpouseLifeExpectancy != nil {
		v := *p.SpouseLifeExpectancy
		out.SpouseLifeExpectancy = &v
	}
	if p.MarketShock != nil {
		s := *p.MarketShock
		out.MarketShock = &s
	}
	return &out
}

// allocationTolerance absorbs rounding when callers express weights as
// percentages divided down to fractions.
var allocationTolerance = decimal.NewFromFloat(0.0001)

// Validate rejects parameter sets the simulation must not run on. It returns
// an *InvalidParameterError naming the first offending field.
func (p *SimulationParams) Validate() error {
	if len(p.Owners) == 0 {
		return &InvalidParameterError{Field: "owners", Reason: "at least one owner is required"}
	}
	for _, o := range p.Owners {
		if o.CurrentAge <= 0 || o.CurrentAge > 110 {
			return &InvalidParameterError{Field: "current_age", Reason: "must be between 1 and 110"}
		}
		// checked in declaration order so multi-field failures report the
		// same field on every run
		for _, check := range []struct {
			field string
			value decimal.Decimal
		}{
			{"buckets.taxable", o.Buckets.Taxable},
			{"buckets.tax_deferred", o.Buckets.TaxDeferred},
			{"buckets.tax_free", o.Buckets.TaxFree},
			{"buckets.hsa", o.Buckets.HSA},
			{"income.social_security", o.Income.SocialSecurity},
			{"income.pension", o.Income.Pension},
			{"income.part_time", o.Income.PartTime},
		} {
			if check.value.IsNegative() {
				return &InvalidParameterError{Field: check.field, Reason: "cannot be negative"}
			}
		}
		if diff := o.Allocation.Sum().Sub(decimal.NewFromInt(1)).Abs(); diff.GreaterThan(allocationTolerance) {
			return &InvalidParameterError{Field: "allocation", Reason: "weights must sum to 1.0"}
		}
		for _, gp := range o.GlidePath {
			if diff := gp.Allocation.Sum().Sub(decimal.NewFromInt(1)).Abs(); diff.GreaterThan(allocationTolerance) {
				return &InvalidParameterError{Field: "glide_path.allocation", Reason: "weights must sum to 1.0"}
			}
		}
	}
	if p.RetirementAge < p.PrimaryAge() {
		return &InvalidParameterError{Field: "retirement_age", Reason: "cannot be earlier than current age"}
	}
	if p.LifeExpectancy < p.RetirementAge {
		return &InvalidParameterError{Field: "life_expectancy", Reason: "cannot be earlier than retirement age"}
	}
	for _, check := range []struct {
		field string
		value decimal.Decimal
	}{
		{"annual_expenses", p.AnnualExpenses},
		{"annual_healthcare", p.AnnualHealthcare},
		{"legacy_goal", p.LegacyGoal},
	} {
		if check.value.IsNegative() {
			return &InvalidParameterError{Field: check.field, Reason: "cannot be negative"}
		}
	}
	if p.EffectiveTaxRate.IsNegative() || p.EffectiveTaxRate.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return &InvalidParameterError{Field: "effective_tax_rate", Reason: "must be in [0, 1)"}
	}
	return nil
}
