package benefit

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/planwise/retirement-engine/internal/domain"
)

// DefaultDiscountRate is the rate used to present-value lifetime benefit
// income when the caller does not supply one.
var DefaultDiscountRate = decimal.NewFromFloat(0.03)

// OptimalClaimAge sweeps claiming ages 62-70 and returns the age maximizing
// the present value of lifetime benefit income through the given life
// expectancy. Ties break toward the earlier age, which locks in income
// sooner. Discounting is anchored at age 62 so candidates are comparable.
func (c *Calculator) OptimalClaimAge(pia decimal.Decimal, lifeExpectancy int, discountRate decimal.Decimal) domain.ClaimRecommendation {
	if discountRate.IsZero() {
		discountRate = DefaultDiscountRate
	}

	rec := domain.ClaimRecommendation{
		OptimalAge:      EarliestClaimAge,
		ValueByClaimAge: make(map[int]decimal.Decimal, LatestClaimAge-EarliestClaimAge+1),
	}
	one := decimal.NewFromInt(1)

	for claimAge := EarliestClaimAge; claimAge <= LatestClaimAge; claimAge++ {
		monthly := c.AdjustForClaimAge(pia, claimAge)
		annual := monthly.Mul(decimal.NewFromInt(12))

		pv := decimal.Zero
		for age := claimAge; age < lifeExpectancy; age++ {
			discount := one.Add(discountRate).Pow(decimal.NewFromInt(int64(age - EarliestClaimAge)))
			pv = pv.Add(annual.Div(discount))
		}
		rec.ValueByClaimAge[claimAge] = pv

		// strict improvement required: ties keep the earlier age
		if pv.GreaterThan(rec.LifetimeValue) {
			rec.LifetimeValue = pv
			rec.OptimalAge = claimAge
			rec.MonthlyBenefit = monthly
		}
	}

	if rec.MonthlyBenefit.IsZero() {
		rec.MonthlyBenefit = c.AdjustForClaimAge(pia, rec.OptimalAge)
	}
	return rec
}

// SuccessObjective evaluates a candidate retirement age and returns the
// success probability of the full simulation run at that age.
type SuccessObjective func(retirementAge int) (decimal.Decimal, error)

// MinimumRetirementAge searches candidate retirement ages in ascending order
// and returns the minimum age whose success probability clears the threshold.
// Found is false when even the latest candidate fails to clear it.
func MinimumRetirementAge(minAge, maxAge int, threshold decimal.Decimal, objective SuccessObjective) (domain.RetirementAgeRecommendation, error) {
	rec := domain.RetirementAgeRecommendation{Threshold: threshold}
	if minAge > maxAge {
		return rec, fmt.Errorf("retirement age range is empty: [%d, %d]", minAge, maxAge)
	}

	for age := minAge; age <= maxAge; age++ {
		prob, err := objective(age)
		if err != nil {
			return rec, fmt.Errorf("evaluating retirement age %d: %w", age, err)
		}
		rec.SuccessProbability = prob
		if prob.GreaterThanOrEqual(threshold) {
			rec.Found = true
			rec.Age = age
			return rec, nil
		}
	}
	return rec, nil
}
