package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/planwise/retirement-engine/internal/domain"
	"github.com/planwise/retirement-engine/internal/output"
	"github.com/planwise/retirement-engine/internal/stress"
)

func newStressCmd(opts *rootOptions) *cobra.Command {
	var (
		combined   bool
		shocksFile string
	)

	cmd := &cobra.Command{
		Use:   "stress",
		Short: "Run the stress-test battery against the baseline plan",
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

			var shocks []domain.StressScenarioSpec
			if shocksFile != "" {
				data, err := os.ReadFile(shocksFile)
				if err != nil {
					return fmt.Errorf("reading shocks file: %w", err)
				}
				if err := yaml.Unmarshal(data, &shocks); err != nil {
					return fmt.Errorf("parsing shocks file: %w", err)
				}
			}

			runner := stress.NewRunner(opts.newEngine(logger), logger)
			report, err := runner.Run(cmd.Context(), params, shocks, combined)
			if err != nil {
				return err
			}

			if opts.jsonOut {
				return output.WriteJSON(os.Stdout, report)
			}
			output.NewConsoleFormatter(os.Stdout).WriteStressReport(report)
			return nil
		},
	}
	cmd.Flags().BoolVar(&combined, "combined", false, "also run all shocks applied together")
	cmd.Flags().StringVar(&shocksFile, "shocks", "", "YAML file with custom shock specs")
	return cmd
}
