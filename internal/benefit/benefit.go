// Package benefit implements the Social-Security-style bend-point benefit
// formula and the claiming-age solvers built on top of it.
package benefit

import (
	"github.com/shopspring/decimal"
)

const (
	// EarliestClaimAge and LatestClaimAge bound the claiming window.
	EarliestClaimAge = 62
	LatestClaimAge   = 70
)

// Calculator converts an income history approximation into a claimable
// monthly benefit at any claiming age.
type Calculator struct {
	FullRetirementAge int
	WageBase          decimal.Decimal // annual taxable maximum
	BendPoint1        decimal.Decimal // monthly
	BendPoint2        decimal.Decimal // monthly
}

// NewCalculator returns a calculator loaded with the current wage base and
// bend points, using the standard FRA of 67 for 1960+ birth cohorts.
func NewCalculator() *Calculator {
	return &Calculator{
		FullRetirementAge: 67,
		WageBase:          decimal.NewFromInt(168600),
		BendPoint1:        decimal.NewFromInt(1174),
		BendPoint2:        decimal.NewFromInt(7078),
	}
}

// FullRetirementAge returns the FRA in whole years for a birth year.
// Cohorts born 1960 or later reach FRA at 67; 1955-1959 phase in from 66.
func FullRetirementAge(birthYear int) int {
	switch {
	case birthYear >= 1960:
		return 67
	case birthYear >= 1955:
		return 66
	default:
		return 66
	}
}

// maxMonthlyBenefit is the published maximum benefit by claiming age. Output
// of the formula is capped here regardless of computed PIA.
var maxMonthlyBenefit = map[int]decimal.Decimal{
	62: decimal.NewFromInt(2710),
	63: decimal.NewFromInt(2871),
	64: decimal.NewFromInt(3082),
	65: decimal.NewFromInt(3426),
	66: decimal.NewFromInt(3652),
	67: decimal.NewFromInt(3911),
	68: decimal.NewFromInt(4194),
	69: decimal.NewFromInt(4545),
	70: decimal.NewFromInt(4873),
}

// ageFactor approximates how close current income is to the 35-year career
// average: earnings ramp from 70% of current at 25 to 100% at 60.
func ageFactor(age int) decimal.Decimal {
	switch {
	case age <= 25:
		return decimal.NewFromFloat(0.70)
	case age >= 60:
		return decimal.NewFromInt(1)
	default:
		// linear ramp 0.70 -> 1.00 over ages 25..60
		span := decimal.NewFromInt(int64(age - 25)).Div(decimal.NewFromInt(35))
		return decimal.NewFromFloat(0.70).Add(span.Mul(decimal.NewFromFloat(0.30)))
	}
}

// AIME computes the Average Indexed Monthly Earnings approximation from
// current annual income and age. Income is capped at the wage base before
// averaging; zero or negative income yields zero.
func (c *Calculator) AIME(annualIncome decimal.Decimal, age int) decimal.Decimal {
	if annualIncome.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	capped := annualIncome
	if capped.GreaterThan(c.WageBase) {
		capped = c.WageBase
	}
	careerAverage := capped.Mul(ageFactor(age))
	return careerAverage.Div(decimal.NewFromInt(12))
}

// PIA computes the Primary Insurance Amount from AIME via the two bend
// points: 90% up to the first, 32% between the first and second, 15% above.
func (c *Calculator) PIA(aime decimal.Decimal) decimal.Decimal {
	if aime.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	pia := decimal.Zero
	if aime.LessThanOrEqual(c.BendPoint1) {
		return aime.Mul(decimal.NewFromFloat(0.90))
	}
	pia = c.BendPoint1.Mul(decimal.NewFromFloat(0.90))
	if aime.LessThanOrEqual(c.BendPoint2) {
		return pia.Add(aime.Sub(c.BendPoint1).Mul(decimal.NewFromFloat(0.32)))
	}
	pia = pia.Add(c.BendPoint2.Sub(c.BendPoint1).Mul(decimal.NewFromFloat(0.32)))
	return pia.Add(aime.Sub(c.BendPoint2).Mul(decimal.NewFromFloat(0.15)))
}

// AdjustForClaimAge applies the early-claiming reduction or delayed credits
// to a PIA. Claiming before 62 yields zero; claiming after 70 is clamped to
// 70. Early reduction is 5/9 of 1% per month for the first 36 months plus
// 5/12 of 1% per month beyond; delayed credits accrue 2/3 of 1% per month.
func (c *Calculator) AdjustForClaimAge(pia decimal.Decimal, claimAge int) decimal.Decimal {
	if pia.LessThanOrEqual(decimal.Zero) || claimAge < EarliestClaimAge {
		return decimal.Zero
	}
	if claimAge > LatestClaimAge {
		claimAge = LatestClaimAge
	}

	benefit := pia
	switch {
	case claimAge < c.FullRetirementAge:
		monthsEarly := (c.FullRetirementAge - claimAge) * 12
		var reduction decimal.Decimal
		if monthsEarly <= 36 {
			reduction = decimal.NewFromFloat(5.0 / 9.0 / 100.0).Mul(decimal.NewFromInt(int64(monthsEarly)))
		} else {
			first := decimal.NewFromFloat(5.0 / 9.0 / 100.0).Mul(decimal.NewFromInt(36))
			rest := decimal.NewFromFloat(5.0 / 12.0 / 100.0).Mul(decimal.NewFromInt(int64(monthsEarly - 36)))
			reduction = first.Add(rest)
		}
		benefit = pia.Mul(decimal.NewFromInt(1).Sub(reduction))
	case claimAge > c.FullRetirementAge:
		monthsDelayed := (claimAge - c.FullRetirementAge) * 12
		credit := decimal.NewFromFloat(2.0 / 3.0 / 100.0).Mul(decimal.NewFromInt(int64(monthsDelayed)))
		benefit = pia.Mul(decimal.NewFromInt(1).Add(credit))
	}

	if max, ok := maxMonthlyBenefit[claimAge]; ok && benefit.GreaterThan(max) {
		benefit = max
	}
	return benefit
}

// MonthlyBenefitAt runs the full pipeline: income and age to AIME, AIME to
// PIA, PIA adjusted for the claiming age.
func (c *Calculator) MonthlyBenefitAt(annualIncome decimal.Decimal, age, claimAge int) decimal.Decimal {
	return c.AdjustForClaimAge(c.PIA(c.AIME(annualIncome, age)), claimAge)
}

// WithSpousalFloor returns the greater of an owner's own claim-age-adjusted
// benefit and half the partner's PIA adjusted for the same claiming age.
func (c *Calculator) WithSpousalFloor(ownBenefit, partnerPIA decimal.Decimal, claimAge int) decimal.Decimal {
	spousal := c.AdjustForClaimAge(partnerPIA.Mul(decimal.NewFromFloat(0.5)), claimAge)
	if spousal.GreaterThan(ownBenefit) {
		return spousal
	}
	return ownBenefit
}
