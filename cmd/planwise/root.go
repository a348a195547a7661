package main

import (
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/planwise/retirement-engine/internal/cache"
	"github.com/planwise/retirement-engine/internal/domain"
	"github.com/planwise/retirement-engine/internal/profile"
	"github.com/planwise/retirement-engine/internal/simulation"
)

type rootOptions struct {
	profilePath string
	iterations  int
	workers     int
	seed        int64
	timeout     time.Duration
	jsonOut     bool
	verbose     bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "planwise",
		Short: "Retirement Monte Carlo simulation and withdrawal-sequencing engine",
		Long: `planwise estimates the probability that a household's assets outlast
their lifespan under stochastic market returns, and produces percentile
bands, claiming-age recommendations, and stress-test deltas.`,
		SilenceUsage: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&opts.profilePath, "profile", "p", "profile.yaml", "household profile YAML file")
	pf.IntVarP(&opts.iterations, "iterations", "n", 1000, "number of Monte Carlo iterations")
	pf.IntVar(&opts.workers, "workers", 0, "worker count (0 = available cores)")
	pf.Int64Var(&opts.seed, "seed", 0, "override the profile's random seed")
	pf.DurationVar(&opts.timeout, "timeout", 30*time.Second, "compute budget per run")
	pf.BoolVar(&opts.jsonOut, "json", false, "emit JSON instead of tables")
	pf.BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging")

	cmd.AddCommand(
		newSimulateCmd(opts),
		newOptimizeClaimAgeCmd(opts),
		newOptimizeRetirementAgeCmd(opts),
		newStressCmd(opts),
	)
	return cmd
}

func (o *rootOptions) logger() (*zap.Logger, error) {
	if o.verbose || os.Getenv("PLANWISE_DEBUG") != "" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// loadParams loads the profile and builds the canonical parameter set.
func (o *rootOptions) loadParams() (*domain.HouseholdProfile, *domain.SimulationParams, error) {
	hp, err := profile.LoadFromFile(o.profilePath)
	if err != nil {
		return nil, nil, err
	}
	params, err := profile.NewBuilder().Build(hp)
	if err != nil {
		return nil, nil, err
	}
	if o.seed != 0 {
		params.Seed = o.seed
	}
	return hp, params, nil
}

func (o *rootOptions) newEngine(logger *zap.Logger) *simulation.Engine {
	cfg := simulation.DefaultConfig()
	cfg.Iterations = o.iterations
	cfg.Workers = o.workers
	cfg.Timeout = o.timeout
	return simulation.NewEngine(cfg, cache.New(cache.DefaultTTL), logger)
}
