// Package percentile computes order-statistic percentiles over decimal
// samples using linear interpolation between ranks.
package percentile

import (
	"sort"

	"github.com/shopspring/decimal"
)

// Sorted returns a sorted copy of the samples in ascending order.
func Sorted(samples []decimal.Decimal) []decimal.Decimal {
	out := make([]decimal.Decimal, len(samples))
	copy(out, samples)
	sort.Slice(out, func(i, j int) bool { return out[i].LessThan(out[j]) })
	return out
}

// OfSorted returns the p-th percentile (0-100) of an ascending-sorted sample
// set. For rank r = p/100 * (n-1) it interpolates linearly between the
// surrounding order statistics. An empty sample set yields zero.
func OfSorted(sorted []decimal.Decimal, p float64) decimal.Decimal {
	n := len(sorted)
	if n == 0 {
		return decimal.Zero
	}
	if n == 1 {
		return sorted[0]
	}
	rank := p / 100 * float64(n-1)
	lo := int(rank)
	if lo >= n-1 {
		return sorted[n-1]
	}
	frac := decimal.NewFromFloat(rank - float64(lo))
	return sorted[lo].Add(sorted[lo+1].Sub(sorted[lo]).Mul(frac))
}

// Of sorts the samples and returns the p-th percentile.
func Of(samples []decimal.Decimal, p float64) decimal.Decimal {
	return OfSorted(Sorted(samples), p)
}
