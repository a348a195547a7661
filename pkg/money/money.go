// Package money provides small helpers for tax-aware withdrawal arithmetic
// on shopspring decimals.
package money

import (
	"github.com/shopspring/decimal"
)

// GrossUp returns the gross withdrawal required to net the given amount after
// a flat effective tax rate. A zero rate returns the net unchanged.
func GrossUp(net, taxRate decimal.Decimal) decimal.Decimal {
	if taxRate.IsZero() {
		return net
	}
	return net.Div(decimal.NewFromInt(1).Sub(taxRate))
}

// AfterTax returns what a gross withdrawal nets after the effective tax rate.
func AfterTax(gross, taxRate decimal.Decimal) decimal.Decimal {
	return gross.Mul(decimal.NewFromInt(1).Sub(taxRate))
}

// TaxOn returns the tax due on a gross withdrawal.
func TaxOn(gross, taxRate decimal.Decimal) decimal.Decimal {
	return gross.Mul(taxRate)
}

// Annual converts a monthly amount to annual.
func Annual(monthly decimal.Decimal) decimal.Decimal {
	return monthly.Mul(decimal.NewFromInt(12))
}

// Monthly converts an annual amount to monthly.
func Monthly(annual decimal.Decimal) decimal.Decimal {
	return annual.Div(decimal.NewFromInt(12))
}

// Min returns the smaller of two decimals.
func Min(a, b decimal.Decimal) decimal.Decimal {
	if a.LessThan(b) {
		return a
	}
	return b
}

// Inflate compounds an amount by a rate over n years.
func Inflate(amount, rate decimal.Decimal, years int) decimal.Decimal {
	if years <= 0 {
		return amount
	}
	factor := decimal.NewFromInt(1).Add(rate).Pow(decimal.NewFromInt(int64(years)))
	return amount.Mul(factor)
}
