// Package output renders engine results for the CLI. Formatters hold no
// business logic; they consume the plain result records the engine emits.
package output

import (
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"
	"github.com/shopspring/decimal"

	"github.com/planwise/retirement-engine/internal/domain"
)

// ConsoleFormatter writes human-readable tables.
type ConsoleFormatter struct {
	out io.Writer
}

// NewConsoleFormatter returns a formatter writing to out.
func NewConsoleFormatter(out io.Writer) *ConsoleFormatter {
	return &ConsoleFormatter{out: out}
}

// WriteAggregate renders the headline numbers, the ending-balance spread,
// and the per-age bands.
func (c *ConsoleFormatter) WriteAggregate(result *domain.AggregateResult) {
	fmt.Fprintf(c.out, "\nSuccess probability: %s%% (%d of %d scenarios)\n",
		result.SuccessProbability.Mul(decimal.NewFromInt(100)).StringFixed(1),
		result.Successes, result.Iterations)

	fmt.Fprintln(c.out, "\nEnding balance percentiles:")
	table := tablewriter.NewWriter(c.out)
	table.Header("P10", "P25", "P50", "P75", "P90")
	table.Append(
		dollars(result.EndingBalances.P10),
		dollars(result.EndingBalances.P25),
		dollars(result.EndingBalances.P50),
		dollars(result.EndingBalances.P75),
		dollars(result.EndingBalances.P90),
	)
	table.Render()

	if len(result.AgeBands) > 0 {
		fmt.Fprintln(c.out, "\nBalance bands by age (all scenarios, failures carried forward):")
		bands := tablewriter.NewWriter(c.out)
		bands.Header("Age", "P5", "P25", "P50", "P75", "P95")
		for _, b := range result.AgeBands {
			bands.Append(
				fmt.Sprintf("%d", b.Age),
				dollars(b.P5),
				dollars(b.P25),
				dollars(b.P50),
				dollars(b.P75),
				dollars(b.P95),
			)
		}
		bands.Render()
	}
}

// WriteStressReport renders baseline plus per-shock deltas.
func (c *ConsoleFormatter) WriteStressReport(report *domain.StressReport) {
	fmt.Fprintf(c.out, "\nBaseline success probability: %s%%\n",
		report.Baseline.Mul(decimal.NewFromInt(100)).StringFixed(1))

	table := tablewriter.NewWriter(c.out)
	table.Header("Shock", "Success", "Delta")
	for _, impact := range report.Impacts {
		table.Append(
			impact.Spec.ID,
			percent(impact.SuccessProbability),
			percent(impact.Delta),
		)
	}
	if report.Combined != nil {
		table.Append("combined", percent(report.Combined.SuccessProbability), percent(report.Combined.Delta))
	}
	table.Render()
}

// WriteClaimRecommendation renders the claiming-age sweep.
func (c *ConsoleFormatter) WriteClaimRecommendation(rec *domain.ClaimRecommendation) {
	fmt.Fprintf(c.out, "\nOptimal claiming age: %d (monthly benefit %s, lifetime PV %s)\n",
		rec.OptimalAge, dollars(rec.MonthlyBenefit), dollars(rec.LifetimeValue))

	table := tablewriter.NewWriter(c.out)
	table.Header("Claim age", "Lifetime PV")
	for age := 62; age <= 70; age++ {
		if pv, ok := rec.ValueByClaimAge[age]; ok {
			table.Append(fmt.Sprintf("%d", age), dollars(pv))
		}
	}
	table.Render()
}

// WriteRetirementAge renders the threshold-search result.
func (c *ConsoleFormatter) WriteRetirementAge(rec *domain.RetirementAgeRecommendation) {
	if !rec.Found {
		fmt.Fprintf(c.out, "\nNo retirement age in the modeled range clears a %s%% success threshold (best: %s%%).\n",
			rec.Threshold.Mul(decimal.NewFromInt(100)).StringFixed(0),
			rec.SuccessProbability.Mul(decimal.NewFromInt(100)).StringFixed(1))
		return
	}
	fmt.Fprintf(c.out, "\nEarliest retirement age clearing %s%%: %d (success %s%%)\n",
		rec.Threshold.Mul(decimal.NewFromInt(100)).StringFixed(0),
		rec.Age,
		rec.SuccessProbability.Mul(decimal.NewFromInt(100)).StringFixed(1))
}

func dollars(d decimal.Decimal) string {
	return "$" + d.StringFixed(0)
}

func percent(d decimal.Decimal) string {
	return d.Mul(decimal.NewFromInt(100)).StringFixed(1) + "%"
}
