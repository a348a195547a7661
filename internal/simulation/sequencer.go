package simulation

import (
	"github.com/shopspring/decimal"

	"github.com/planwise/retirement-engine/internal/domain"
	"github.com/planwise/retirement-engine/pkg/money"
)

// shortfallEpsilon absorbs sub-cent residue from gross-up division when
// deciding whether a year's need was actually met.
var shortfallEpsilon = decimal.NewFromFloat(0.01)

// WithdrawalSequencer walks one scenario year by year, resolving income,
// expenses, taxes, and ordered withdrawals across account types.
//
// Bucket order is fixed for tax efficiency: HSA covers healthcare costs
// specifically, then taxable, tax-deferred, and tax-free cover the rest.
// Taxable and tax-deferred draws are grossed up by the effective tax rate;
// tax-free and HSA draws are not.
type WithdrawalSequencer struct {
	// LTCAnnualCost is a modeled long-term-care cost event in today's
	// dollars, inflated at the healthcare rate. Suppressed entirely when
	// the household carries LTC insurance.
	LTCAnnualCost decimal.Decimal
}

// NewWithdrawalSequencer returns a sequencer with the default LTC cost model.
func NewWithdrawalSequencer() *WithdrawalSequencer {
	return &WithdrawalSequencer{LTCAnnualCost: decimal.NewFromInt(110000)}
}

// Run executes the year-by-year state machine for one scenario and returns
// its terminal outcome. The path is read-only; params are never mutated.
func (s *WithdrawalSequencer) Run(params *domain.SimulationParams, path *domain.ScenarioPath) domain.ScenarioOutcome {
	one := decimal.NewFromInt(1)
	buckets := params.TotalBuckets()
	taxRate := params.EffectiveTaxRate

	inflFactor := one // cumulative base-expense inflation
	hcFactor := one   // cumulative healthcare inflation

	horizon := params.HorizonYears()
	outcome := domain.ScenarioOutcome{
		Success:   true,
		CashFlows: make([]domain.YearlyCashFlow, 0, horizon),
	}
	peak := buckets.Total()

	for y := 0; y < horizon; y++ {
		beginAge := params.PrimaryAge() + y
		retired := beginAge >= params.RetirementAge
		yr := path.Years[y]

		cf := domain.YearlyCashFlow{Age: beginAge + 1}

		// (1) accrue guaranteed income
		income := decimal.Zero
		for _, o := range params.Owners {
			ownerAge := o.CurrentAge + y
			if ownerAge >= o.SSStartAge {
				income = income.Add(o.Income.SocialSecurity.Mul(inflFactor)) // COLA follows inflation
			}
			if retired {
				income = income.Add(o.Income.Pension).Add(o.Income.PartTime)
			}
		}

		if retired {
			// (2) inflate expenses, base and healthcare separately
			baseExp := params.AnnualExpenses.Mul(inflFactor)
			hcExp := params.AnnualHealthcare.Mul(hcFactor)
			if yr.LTCEvent && !params.HasLTCInsurance {
				hcExp = hcExp.Add(s.LTCAnnualCost.Mul(hcFactor))
			}
			cf.GrossExpenses = baseExp.Add(hcExp)
			cf.GuaranteedIncome = income

			// (3) net withdrawal need, floored at zero. Income covers base
			// expenses first; only the uncovered healthcare remainder is
			// eligible for the HSA.
			baseNeed := decimal.Zero
			hcNeed := hcExp
			if income.GreaterThanOrEqual(baseExp) {
				surplus := income.Sub(baseExp)
				hcNeed = hcNeed.Sub(money.Min(surplus, hcNeed))
			} else {
				baseNeed = baseExp.Sub(income)
			}
			cf.NetWithdrawalNeed = baseNeed.Add(hcNeed)

			// (4) ordered withdrawals
			if hcNeed.IsPositive() {
				cf.FromHSA = money.Min(hcNeed, buckets.HSA)
				buckets.HSA = buckets.HSA.Sub(cf.FromHSA)
				hcNeed = hcNeed.Sub(cf.FromHSA)
			}
			remaining := baseNeed.Add(hcNeed)

			if remaining.IsPositive() {
				gross := money.Min(money.GrossUp(remaining, taxRate), buckets.Taxable)
				cf.FromTaxable = gross
				buckets.Taxable = buckets.Taxable.Sub(gross)
				cf.TaxesPaid = cf.TaxesPaid.Add(money.TaxOn(gross, taxRate))
				remaining = remaining.Sub(money.AfterTax(gross, taxRate))
			}
			if remaining.IsPositive() {
				gross := money.Min(money.GrossUp(remaining, taxRate), buckets.TaxDeferred)
				cf.FromTaxDeferred = gross
				buckets.TaxDeferred = buckets.TaxDeferred.Sub(gross)
				cf.TaxesPaid = cf.TaxesPaid.Add(money.TaxOn(gross, taxRate))
				remaining = remaining.Sub(money.AfterTax(gross, taxRate))
			}
			if remaining.IsPositive() {
				draw := money.Min(remaining, buckets.TaxFree)
				cf.FromTaxFree = draw
				buckets.TaxFree = buckets.TaxFree.Sub(draw)
				remaining = remaining.Sub(draw)
			}

			// (5) growth, then (6) failure check on any unmet need
			buckets = grow(buckets, path.Allocations[y], yr)
			cf.EndingBalance = buckets.Total()
			outcome.CashFlows = append(outcome.CashFlows, cf)

			if remaining.GreaterThan(shortfallEpsilon) {
				outcome.Success = false
				outcome.DepletionAge = cf.Age
				outcome.EndingBalance = cf.EndingBalance
				return outcome
			}
		} else {
			// accumulation years: growth only
			buckets = grow(buckets, path.Allocations[y], yr)
			cf.GuaranteedIncome = income
			cf.EndingBalance = buckets.Total()
			outcome.CashFlows = append(outcome.CashFlows, cf)
		}

		if cf.EndingBalance.GreaterThan(peak) {
			peak = cf.EndingBalance
		} else if peak.IsPositive() {
			dd := peak.Sub(cf.EndingBalance).Div(peak)
			if dd.GreaterThan(outcome.MaxDrawdown) {
				outcome.MaxDrawdown = dd
			}
		}

		inflFactor = inflFactor.Mul(one.Add(yr.Inflation))
		hcFactor = hcFactor.Mul(one.Add(yr.HealthcareInflation))
	}

	outcome.EndingBalance = buckets.Total()
	if outcome.EndingBalance.LessThanOrEqual(decimal.Zero) {
		outcome.Success = false
		outcome.DepletionAge = params.PlanLifeExpectancy()
	} else if params.LegacyGoal.IsPositive() && outcome.EndingBalance.LessThan(params.LegacyGoal) {
		// legacy goal acts as a minimum ending-balance requirement
		outcome.Success = false
	}
	return outcome
}

// grow applies one year's weighted portfolio return to every bucket. A
// return worse than -100% floors the bucket at zero.
func grow(b domain.AssetBuckets, alloc domain.Allocation, yr domain.YearReturns) domain.AssetBuckets {
	r := alloc.Stocks.Mul(yr.Stocks).
		Add(alloc.Bonds.Mul(yr.Bonds)).
		Add(alloc.Cash.Mul(yr.Cash))
	factor := decimal.NewFromInt(1).Add(r)
	if factor.IsNegative() {
		factor = decimal.Zero
	}
	b.Taxable = b.Taxable.Mul(factor)
	b.TaxDeferred = b.TaxDeferred.Mul(factor)
	b.TaxFree = b.TaxFree.Mul(factor)
	b.HSA = b.HSA.Mul(factor)
	return b
}
