package domain

import (
	"github.com/shopspring/decimal"
)

// YearReturns holds one simulated year's nominal returns by asset class plus
// that year's inflation draws and LTC event flag.
type YearReturns struct {
	Stocks              decimal.Decimal `json:"stocks"`
	Bonds               decimal.Decimal `json:"bonds"`
	Cash                decimal.Decimal `json:"cash"`
	Inflation           decimal.Decimal `json:"inflation"`
	HealthcareInflation decimal.Decimal `json:"healthcare_inflation"`
	LTCEvent            bool            `json:"ltc_event"`
}

// ScenarioPath is one simulated life: a year-indexed sequence of market
// conditions together with the allocation in force for each year. Generated
// once per iteration and immutable afterwards; consumed by exactly one
// sequencer run.
type ScenarioPath struct {
	Years       []YearReturns `json:"years"`
	Allocations []Allocation  `json:"allocations"`
}

// YearlyCashFlow records one simulated year inside one scenario.
type YearlyCashFlow struct {
	Age               int             `json:"age"`
	GrossExpenses     decimal.Decimal `json:"gross_expenses"`
	GuaranteedIncome  decimal.Decimal `json:"guaranteed_income"`
	NetWithdrawalNeed decimal.Decimal `json:"net_withdrawal_need"`
	FromTaxable       decimal.Decimal `json:"from_taxable"`
	FromTaxDeferred   decimal.Decimal `json:"from_tax_deferred"`
	FromTaxFree       decimal.Decimal `json:"from_tax_free"`
	FromHSA           decimal.Decimal `json:"from_hsa"`
	TaxesPaid         decimal.Decimal `json:"taxes_paid"`
	EndingBalance     decimal.Decimal `json:"ending_balance"`
}

// TotalWithdrawn sums the year's draws across all buckets.
func (y YearlyCashFlow) TotalWithdrawn() decimal.Decimal {
	return y.FromTaxable.Add(y.FromTaxDeferred).Add(y.FromTaxFree).Add(y.FromHSA)
}

// ScenarioOutcome is the terminal state of one iteration. Owned exclusively
// by the aggregator once produced; never mutated after creation.
type ScenarioOutcome struct {
	Success       bool             `json:"success"`
	DepletionAge  int              `json:"depletion_age,omitempty"`
	EndingBalance decimal.Decimal  `json:"ending_balance"`
	MaxDrawdown   decimal.Decimal  `json:"max_drawdown"`
	CashFlows     []YearlyCashFlow `json:"cash_flows"`
}

// PercentileRanges holds the ending-balance spread across all iterations.
type PercentileRanges struct {
	P10 decimal.Decimal `json:"p10"`
	P25 decimal.Decimal `json:"p25"`
	P50 decimal.Decimal `json:"p50"`
	P75 decimal.Decimal `json:"p75"`
	P90 decimal.Decimal `json:"p90"`
}

// AgeBand holds the per-age balance percentiles across all iterations.
// Scenarios that failed before this age contribute their last known balance
// (typically zero) rather than leaving the population, so the band reflects
// all simulated lives, not only survivors. Downstream probability displays
// depend on this population-wide view.
type AgeBand struct {
	Age int             `json:"age"`
	P5  decimal.Decimal `json:"p5"`
	P25 decimal.Decimal `json:"p25"`
	P50 decimal.Decimal `json:"p50"`
	P75 decimal.Decimal `json:"p75"`
	P95 decimal.Decimal `json:"p95"`
}

// AggregateResult is the engine's primary output: success probability plus
// percentile statistics per year and in aggregate. Recomputed fresh per
// request; cached externally by input hash.
type AggregateResult struct {
	Iterations        int              `json:"iterations"`
	Successes         int              `json:"successes"`
	SuccessProbability decimal.Decimal `json:"success_probability"`
	EndingBalances    PercentileRanges `json:"ending_balances"`
	AgeBands          []AgeBand        `json:"age_bands"`
	MedianCashFlow    []YearlyCashFlow `json:"median_cash_flow"`
	Seed              int64            `json:"seed"`
}

// ShockKind names a supported stress perturbation.
type ShockKind string

const (
	ShockMarketCrash    ShockKind = "market_crash"
	ShockInflationSpike ShockKind = "inflation_spike"
	ShockLongevity      ShockKind = "longevity"
	ShockLTCEvent       ShockKind = "ltc_event"
)

// StressScenarioSpec is a named shock applied to a cloned parameter set.
// Magnitude semantics depend on the kind: fractional portfolio loss for a
// market crash, added inflation rate for a spike, extra years for longevity,
// annual cost for a forced LTC event. Year bounds the crash to a specific
// simulated year index (0 = first retirement year).
type StressScenarioSpec struct {
	ID        string          `yaml:"id" json:"id"`
	Kind      ShockKind       `yaml:"kind" json:"kind"`
	Magnitude decimal.Decimal `yaml:"magnitude" json:"magnitude"`
	Year      int             `yaml:"year,omitempty" json:"year,omitempty"`
	Years     int             `yaml:"years,omitempty" json:"years,omitempty"`
}

// StressImpact reports one shock's effect against the baseline.
type StressImpact struct {
	Spec               StressScenarioSpec `json:"spec"`
	SuccessProbability decimal.Decimal    `json:"success_probability"`
	Delta              decimal.Decimal    `json:"delta"`
}

// StressReport is the full stress-test output for one baseline.
type StressReport struct {
	Baseline decimal.Decimal `json:"baseline_success_probability"`
	Impacts  []StressImpact  `json:"impacts"`
	Combined *StressImpact   `json:"combined,omitempty"`
}

// ClaimRecommendation is the optimal-age solver's output for claiming-age
// search.
type ClaimRecommendation struct {
	OptimalAge      int                       `json:"optimal_age"`
	MonthlyBenefit  decimal.Decimal           `json:"monthly_benefit"`
	LifetimeValue   decimal.Decimal           `json:"lifetime_value"`
	ValueByClaimAge map[int]decimal.Decimal   `json:"value_by_claim_age"`
}

// RetirementAgeRecommendation is the solver's output for retirement-age
// threshold search. Found is false when even the latest modeled age fails to
// clear the target success probability.
type RetirementAgeRecommendation struct {
	Found              bool            `json:"found"`
	Age                int             `json:"age,omitempty"`
	SuccessProbability decimal.Decimal `json:"success_probability"`
	Threshold          decimal.Decimal `json:"threshold"`
}
