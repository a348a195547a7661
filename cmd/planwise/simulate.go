package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/planwise/retirement-engine/internal/output"
)

func newSimulateCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "simulate",
		Short: "Run the Monte Carlo simulation for a household profile",
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
			result, err := engine.Run(cmd.Context(), opts.profilePath, params)
			if err != nil {
				return err
			}

			if opts.jsonOut {
				return output.WriteJSON(os.Stdout, result)
			}
			output.NewConsoleFormatter(os.Stdout).WriteAggregate(result)
			return nil
		},
	}
}
