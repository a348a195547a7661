package main

import (
	"os"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/planwise/retirement-engine/internal/benefit"
	"github.com/planwise/retirement-engine/internal/output"
)

func newOptimizeClaimAgeCmd(opts *rootOptions) *cobra.Command {
	var discountRate float64

	cmd := &cobra.Command{
		Use:   "optimize-claim-age",
		Short: "Find the Social Security claiming age maximizing lifetime value",
		RunE: func(cmd *cobra.Command, args []string) error {
			hp, params, err := opts.loadParams()
			if err != nil {
				return err
			}

			calc := benefit.NewCalculator()
			pia := calc.PIA(calc.AIME(hp.Primary.AnnualIncome, hp.Primary.Age))
			rec := calc.OptimalClaimAge(pia, params.LifeExpectancy, decimal.NewFromFloat(discountRate))

			if opts.jsonOut {
				return output.WriteJSON(os.Stdout, rec)
			}
			output.NewConsoleFormatter(os.Stdout).WriteClaimRecommendation(&rec)
			return nil
		},
	}
	cmd.Flags().Float64Var(&discountRate, "discount-rate", 0.03, "discount rate for lifetime present value")
	return cmd
}

func newOptimizeRetirementAgeCmd(opts *rootOptions) *cobra.Command {
	var (
		threshold float64
		maxAge    int
	)

	cmd := &cobra.Command{
		Use:   "optimize-retirement-age",
		Short: "Find the earliest retirement age clearing a success threshold",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := opts.logger()
			if err != nil {
				return err
			}
			defer logger.Sync() //nolint:errcheck

			_, params, err := opts.loadParams()
			if err != nil {
				return err
			}
			engine := opts.newEngine(logger)

			rec, err := benefit.MinimumRetirementAge(
				params.PrimaryAge(), maxAge,
				decimal.NewFromFloat(threshold),
				func(age int) (decimal.Decimal, error) {
					return engine.SuccessProbabilityAt(cmd.Context(), params, age)
				},
			)
			if err != nil {
				return err
			}

			if opts.jsonOut {
				return output.WriteJSON(os.Stdout, rec)
			}
			output.NewConsoleFormatter(os.Stdout).WriteRetirementAge(&rec)
			return nil
		},
	}
	cmd.Flags().Float64Var(&threshold, "threshold", 0.80, "target success probability")
	cmd.Flags().IntVar(&maxAge, "max-age", 75, "latest retirement age to consider")
	return cmd
}
