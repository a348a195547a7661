package output

import (
	"bytes"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/planwise/retirement-engine/internal/domain"
)

func sampleAggregate() *domain.AggregateResult {
	return &domain.AggregateResult{
		Iterations:         1000,
		Successes:          847,
		SuccessProbability: decimal.NewFromFloat(0.847),
		EndingBalances: domain.PercentileRanges{
			P10: decimal.Zero,
			P25: decimal.NewFromInt(120000),
			P50: decimal.NewFromInt(510000),
			P75: decimal.NewFromInt(980000),
			P90: decimal.NewFromInt(1600000),
		},
		AgeBands: []domain.AgeBand{{
			Age: 66,
			P5:  decimal.NewFromInt(100000),
			P25: decimal.NewFromInt(400000),
			P50: decimal.NewFromInt(700000),
			P75: decimal.NewFromInt(900000),
			P95: decimal.NewFromInt(1200000),
		}},
		Seed: 42,
	}
}

func TestWriteAggregate(t *testing.T) {
	var buf bytes.Buffer
	NewConsoleFormatter(&buf).WriteAggregate(sampleAggregate())

	out := buf.String()
	assert.Contains(t, out, "84.7%")
	assert.Contains(t, out, "847 of 1000")
	assert.Contains(t, out, "$510000")
	assert.Contains(t, out, "66")
}

func TestWriteStressReport(t *testing.T) {
	var buf bytes.Buffer
	report := &domain.StressReport{
		Baseline: decimal.NewFromFloat(0.85),
		Impacts: []domain.StressImpact{{
			Spec:               domain.StressScenarioSpec{ID: "market_crash_30", Kind: domain.ShockMarketCrash},
			SuccessProbability: decimal.NewFromFloat(0.71),
			Delta:              decimal.NewFromFloat(-0.14),
		}},
	}
	NewConsoleFormatter(&buf).WriteStressReport(report)

	out := buf.String()
	assert.Contains(t, out, "85.0%")
	assert.Contains(t, out, "market_crash_30")
	assert.Contains(t, out, "-14.0%")
}

func TestWriteClaimRecommendation(t *testing.T) {
	var buf bytes.Buffer
	rec := &domain.ClaimRecommendation{
		OptimalAge:     68,
		MonthlyBenefit: decimal.NewFromInt(2133),
		LifetimeValue:  decimal.NewFromInt(412000),
		ValueByClaimAge: map[int]decimal.Decimal{
			62: decimal.NewFromInt(380000),
			68: decimal.NewFromInt(412000),
		},
	}
	NewConsoleFormatter(&buf).WriteClaimRecommendation(rec)

	out := buf.String()
	assert.Contains(t, out, "Optimal claiming age: 68")
	assert.Contains(t, out, "$2133")
	assert.Contains(t, out, "$412000")
}

func TestWriteRetirementAge(t *testing.T) {
	var buf bytes.Buffer
	NewConsoleFormatter(&buf).WriteRetirementAge(&domain.RetirementAgeRecommendation{
		Found:              true,
		Age:                64,
		SuccessProbability: decimal.NewFromFloat(0.81),
		Threshold:          decimal.NewFromFloat(0.80),
	})
	assert.Contains(t, buf.String(), "Earliest retirement age clearing 80%: 64")

	buf.Reset()
	NewConsoleFormatter(&buf).WriteRetirementAge(&domain.RetirementAgeRecommendation{
		Found:              false,
		SuccessProbability: decimal.NewFromFloat(0.62),
		Threshold:          decimal.NewFromFloat(0.80),
	})
	assert.Contains(t, buf.String(), "No retirement age")
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, sampleAggregate()))

	assert.Contains(t, buf.String(), `"success_probability"`)
	assert.Contains(t, buf.String(), `"iterations": 1000`)
}
