// Package profile normalizes heterogeneous household intake records into the
// canonical simulation parameter set. All defaulting and override precedence
// lives here; the simulation core only ever sees fully resolved parameters.
package profile

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/planwise/retirement-engine/internal/benefit"
	"github.com/planwise/retirement-engine/internal/domain"
	"github.com/planwise/retirement-engine/pkg/money"
)

// Defaults applied to optional fields. Required fields (retirement age,
// monthly expenses, Social Security claim age or amount) are never defaulted.
var (
	defaultLifeExpectancy      = 90
	defaultExpenseInflation    = decimal.NewFromFloat(0.025)
	defaultHealthcareInflation = decimal.NewFromFloat(0.05)
	defaultEffectiveTaxRate    = decimal.NewFromFloat(0.22)
)

// Builder turns household profiles into simulation parameters. It is a pure
// transformation with no I/O.
type Builder struct {
	benefits *benefit.Calculator
}

// NewBuilder returns a builder backed by the standard benefit calculator.
func NewBuilder() *Builder {
	return &Builder{benefits: benefit.NewCalculator()}
}

// ApplyOverlay resolves an optimization overlay against a profile and returns
// a new, fully independent profile. The input profile is never mutated, so a
// baseline computation can run concurrently on the original record.
func ApplyOverlay(p *domain.HouseholdProfile, overlay *domain.OptimizationOverlay) *domain.HouseholdProfile {
	out := p.Clone()
	if overlay == nil {
		return out
	}
	if overlay.RetirementAge != nil {
		v := *overlay.RetirementAge
		out.RetirementAge = &v
	}
	if overlay.MonthlyExpenses != nil {
		v := *overlay.MonthlyExpenses
		out.MonthlyExpenses = &v
	}
	if overlay.SSClaimAge != nil {
		v := *overlay.SSClaimAge
		out.Primary.SSClaimAge = &v
		out.Primary.SSMonthlyAmount = nil // recompute at the new claim age
	}
	if overlay.SpouseSSClaimAge != nil && out.Spouse != nil {
		v := *overlay.SpouseSSClaimAge
		out.Spouse.SSClaimAge = &v
		out.Spouse.SSMonthlyAmount = nil
	}
	if overlay.Allocation != nil {
		a := *overlay.Allocation
		out.Primary.Allocation = &a
	}
	if overlay.PartTimeAnnual != nil {
		v := *overlay.PartTimeAnnual
		out.Primary.PartTimeAnnual = &v
	}
	if overlay.LegacyGoal != nil {
		v := *overlay.LegacyGoal
		out.LegacyGoal = &v
	}
	if overlay.HasLTCInsurance != nil {
		out.HasLTCInsurance = *overlay.HasLTCInsurance
	}
	return out
}

// Build validates completeness and produces the canonical parameter record.
// Missing required fields are collected and reported together in a single
// *domain.IncompleteInputError rather than surfacing one at a time.
func (b *Builder) Build(p *domain.HouseholdProfile) (*domain.SimulationParams, error) {
	var missing []string
	if p.RetirementAge == nil {
		missing = append(missing, "retirement_age")
	}
	if p.MonthlyExpenses == nil {
		missing = append(missing, "monthly_expenses")
	}
	missing = append(missing, b.missingSSFields("primary", &p.Primary)...)
	if p.Spouse != nil {
		missing = append(missing, b.missingSSFields("spouse", p.Spouse)...)
	}
	if len(missing) > 0 {
		return nil, &domain.IncompleteInputError{MissingFields: missing}
	}

	params := &domain.SimulationParams{
		RetirementAge:       *p.RetirementAge,
		LifeExpectancy:      resolveInt(p.Primary.LifeExpectancy, defaultLifeExpectancy),
		AnnualExpenses:      money.Annual(*p.MonthlyExpenses),
		AnnualHealthcare:    money.Annual(resolveDec(p.MonthlyHealthcare, decimal.Zero)),
		ExpenseInflation:    resolveDec(p.ExpenseInflation, defaultExpenseInflation),
		HealthcareInflation: resolveDec(p.HealthcareInflation, defaultHealthcareInflation),
		EffectiveTaxRate:    resolveDec(p.EffectiveTaxRate, defaultEffectiveTaxRate),
		HasLTCInsurance:     p.HasLTCInsurance,
		LegacyGoal:          resolveDec(p.LegacyGoal, decimal.Zero),
		Seed:                p.Seed,
	}

	primaryPIA := b.benefits.PIA(b.benefits.AIME(p.Primary.AnnualIncome, p.Primary.Age))
	var spousePIA decimal.Decimal
	if p.Spouse != nil {
		spousePIA = b.benefits.PIA(b.benefits.AIME(p.Spouse.AnnualIncome, p.Spouse.Age))
	}

	params.Owners = append(params.Owners, b.buildOwner(&p.Primary, spousePIA, p.MarriedFilingJointly))
	if p.Spouse != nil {
		params.Owners = append(params.Owners, b.buildOwner(p.Spouse, primaryPIA, p.MarriedFilingJointly))
		le := resolveInt(p.Spouse.LifeExpectancy, defaultLifeExpectancy)
		params.SpouseLifeExpectancy = &le
	}

	if err := settleLiabilities(params, p.Liabilities); err != nil {
		return nil, err
	}

	if err := params.Validate(); err != nil {
		return nil, fmt.Errorf("building simulation parameters: %w", err)
	}
	return params, nil
}

// BuildWithOverlay applies the overlay and builds in one step, guaranteeing
// the overlaid run and the baseline never share a parameter instance.
func (b *Builder) BuildWithOverlay(p *domain.HouseholdProfile, overlay *domain.OptimizationOverlay) (*domain.SimulationParams, error) {
	return b.Build(ApplyOverlay(p, overlay))
}

// settleLiabilities nets outstanding household debt against the starting
// balances before any simulation runs, draining buckets in the same order the
// sequencer draws them: primary owner first, taxable before tax-advantaged.
// Debt the household cannot cover from its assets is rejected; the engine
// does not model negative net worth.
func settleLiabilities(params *domain.SimulationParams, liabilities decimal.Decimal) error {
	remaining := liabilities
	for i := range params.Owners {
		b := &params.Owners[i].Buckets
		for _, bucket := range []*decimal.Decimal{&b.Taxable, &b.TaxDeferred, &b.TaxFree, &b.HSA} {
			if !remaining.IsPositive() {
				return nil
			}
			paid := money.Min(remaining, *bucket)
			*bucket = bucket.Sub(paid)
			remaining = remaining.Sub(paid)
		}
	}
	if remaining.IsPositive() {
		return &domain.InvalidParameterError{Field: "liabilities", Reason: "exceed total household assets"}
	}
	return nil
}

// missingSSFields reports the Social Security inputs an owner still owes.
// A claim age is always required: it fixes the benefit start year even when
// an explicit monthly amount is given, and without an explicit amount it is
// also needed to compute the benefit from income.
func (b *Builder) missingSSFields(who string, person *domain.PersonProfile) []string {
	if person.SSMonthlyAmount != nil {
		if person.SSClaimAge == nil {
			return []string{who + ".ss_claim_age"}
		}
		return nil
	}
	if person.SSClaimAge == nil {
		return []string{who + ".ss_claim_age"}
	}
	return nil
}

// buildOwner resolves one person with the documented precedence: explicit
// override first, then values computed from sub-fields, then heuristic
// defaults.
func (b *Builder) buildOwner(person *domain.PersonProfile, partnerPIA decimal.Decimal, married bool) domain.OwnerParams {
	claimAge := *person.SSClaimAge

	var monthlySS decimal.Decimal
	if person.SSMonthlyAmount != nil {
		monthlySS = *person.SSMonthlyAmount // explicit override wins
	} else {
		monthlySS = b.benefits.MonthlyBenefitAt(person.AnnualIncome, person.Age, claimAge)
	}
	if married {
		monthlySS = b.benefits.WithSpousalFloor(monthlySS, partnerPIA, claimAge)
	}

	owner := domain.OwnerParams{
		Name:       person.Name,
		CurrentAge: person.Age,
		Buckets:    person.Assets,
		GlidePath:  append([]domain.GlidePoint(nil), person.GlidePath...),
		SSStartAge: claimAge,
		Income: domain.GuaranteedIncome{
			SocialSecurity: money.Annual(monthlySS),
			Pension:        resolveDec(person.PensionAnnual, decimal.Zero),
			PartTime:       resolveDec(person.PartTimeAnnual, decimal.Zero),
		},
	}

	switch {
	case person.Allocation != nil:
		owner.Allocation = *person.Allocation
	case len(person.GlidePath) > 0:
		owner.Allocation = person.GlidePath[0].Allocation
	default:
		owner.Allocation = heuristicAllocation(person.Age)
	}
	return owner
}

// heuristicAllocation is the age-based fallback when a person states no
// preference: stocks at (110 - age)%, the rest split 3:1 bonds to cash.
func heuristicAllocation(age int) domain.Allocation {
	stocks := decimal.NewFromInt(int64(110 - age)).Div(decimal.NewFromInt(100))
	if stocks.GreaterThan(decimal.NewFromFloat(0.9)) {
		stocks = decimal.NewFromFloat(0.9)
	}
	if stocks.LessThan(decimal.NewFromFloat(0.2)) {
		stocks = decimal.NewFromFloat(0.2)
	}
	rest := decimal.NewFromInt(1).Sub(stocks)
	bonds := rest.Mul(decimal.NewFromFloat(0.75))
	return domain.Allocation{
		Stocks: stocks,
		Bonds:  bonds,
		Cash:   rest.Sub(bonds),
	}
}

func resolveInt(v *int, def int) int {
	if v != nil {
		return *v
	}
	return def
}

func resolveDec(v *decimal.Decimal, def decimal.Decimal) decimal.Decimal {
	if v != nil {
		return *v
	}
	return def
}
