package benefit

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptimalClaimAgeShortLifeExpectancy(t *testing.T) {
	calc := NewCalculator()
	rec := calc.OptimalClaimAge(decimal.NewFromInt(2000), 70, decimal.Zero)

	// Dying at 70 leaves no room for delayed credits to pay off.
	assert.LessOrEqual(t, rec.OptimalAge, 67)
	assert.Equal(t, 62, rec.OptimalAge)
	assert.True(t, rec.LifetimeValue.IsPositive())
	assert.Len(t, rec.ValueByClaimAge, 9)
}

func TestOptimalClaimAgeLongLifeExpectancy(t *testing.T) {
	calc := NewCalculator()
	rec := calc.OptimalClaimAge(decimal.NewFromInt(2000), 95, decimal.Zero)

	// At 95 the delayed credits' extra payout dominates the foregone years.
	assert.Equal(t, 70, rec.OptimalAge)
	assert.InDelta(t, 2480, rec.MonthlyBenefit.InexactFloat64(), 0.01)
}

func TestOptimalClaimAgeTieBreaksEarlier(t *testing.T) {
	calc := NewCalculator()

	// Zero PIA makes every age worth exactly zero; the earliest age wins.
	rec := calc.OptimalClaimAge(decimal.Zero, 90, decimal.Zero)
	assert.Equal(t, EarliestClaimAge, rec.OptimalAge)
}

func TestMinimumRetirementAgeFindsEarliest(t *testing.T) {
	probs := map[int]float64{62: 0.55, 63: 0.70, 64: 0.81, 65: 0.93}
	rec, err := MinimumRetirementAge(62, 65, decimal.NewFromFloat(0.80), func(age int) (decimal.Decimal, error) {
		return decimal.NewFromFloat(probs[age]), nil
	})
	require.NoError(t, err)
	assert.True(t, rec.Found)
	assert.Equal(t, 64, rec.Age)
	assert.InDelta(t, 0.81, rec.SuccessProbability.InexactFloat64(), 1e-9)
}

func TestMinimumRetirementAgeNotFound(t *testing.T) {
	rec, err := MinimumRetirementAge(62, 65, decimal.NewFromFloat(0.80), func(age int) (decimal.Decimal, error) {
		return decimal.NewFromFloat(0.5), nil
	})
	require.NoError(t, err)
	assert.False(t, rec.Found)
	assert.Equal(t, 0, rec.Age)
}

func TestMinimumRetirementAgePropagatesObjectiveError(t *testing.T) {
	wantErr := errors.New("pool exploded")
	_, err := MinimumRetirementAge(62, 65, decimal.NewFromFloat(0.80), func(age int) (decimal.Decimal, error) {
		return decimal.Zero, wantErr
	})
	require.ErrorIs(t, err, wantErr)
}

func TestMinimumRetirementAgeEmptyRange(t *testing.T) {
	_, err := MinimumRetirementAge(70, 62, decimal.NewFromFloat(0.80), nil)
	require.Error(t, err)
}
