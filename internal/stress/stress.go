// Package stress applies named parameter perturbations to a baseline
// simulation and reports each shock's impact on the success probability.
package stress

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/planwise/retirement-engine/internal/domain"
)

// Simulator runs one fully resolved parameter set to an aggregate result.
// Satisfied by *simulation.Engine via RunUncached.
type Simulator interface {
	RunUncached(ctx context.Context, params *domain.SimulationParams) (*domain.AggregateResult, error)
}

// Runner executes stress batches against a shared simulator. Core usage is
// bounded by the simulator's own pool, so baseline and shocks running in
// parallel here cannot oversubscribe.
type Runner struct {
	sim    Simulator
	logger *zap.Logger
}

// NewRunner returns a stress runner over the given simulator.
func NewRunner(sim Simulator, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{sim: sim, logger: logger}
}

// DefaultShocks returns the standard stress battery.
func DefaultShocks() []domain.StressScenarioSpec {
	return []domain.StressScenarioSpec{
		{ID: "market_crash_30", Kind: domain.ShockMarketCrash, Magnitude: decimal.NewFromFloat(0.30), Year: 0},
		{ID: "inflation_plus_2", Kind: domain.ShockInflationSpike, Magnitude: decimal.NewFromFloat(0.02)},
		{ID: "longevity_plus_5", Kind: domain.ShockLongevity, Years: 5},
		{ID: "ltc_event", Kind: domain.ShockLTCEvent, Magnitude: decimal.NewFromInt(80000)},
	}
}

// Apply clones the baseline and perturbs the clone according to the spec.
// The baseline is never touched; each shock operates on its own isolated
// copy so parallel runs cannot cross-contaminate.
func Apply(spec domain.StressScenarioSpec, baseline *domain.SimulationParams) (*domain.SimulationParams, error) {
	p := baseline.Clone()
	switch spec.Kind {
	case domain.ShockMarketCrash:
		// spec.Year counts from the first retirement year; the generator
		// indexes years from current age, so shift by the accumulation span.
		offset := baseline.RetirementAge - baseline.PrimaryAge()
		if offset < 0 {
			offset = 0
		}
		p.MarketShock = &domain.MarketShock{Year: spec.Year + offset, Loss: spec.Magnitude}
	case domain.ShockInflationSpike:
		p.ExpenseInflation = p.ExpenseInflation.Add(spec.Magnitude)
		p.HealthcareInflation = p.HealthcareInflation.Add(spec.Magnitude)
	case domain.ShockLongevity:
		years := spec.Years
		if years == 0 {
			years = int(spec.Magnitude.IntPart())
		}
		p.LifeExpectancy += years
		if p.SpouseLifeExpectancy != nil {
			le := *p.SpouseLifeExpectancy + years
			p.SpouseLifeExpectancy = &le
		}
	case domain.ShockLTCEvent:
		p.HasLTCInsurance = false
		p.AnnualHealthcare = p.AnnualHealthcare.Add(spec.Magnitude)
	default:
		return nil, fmt.Errorf("unknown shock kind %q", spec.Kind)
	}
	return p, nil
}

// Run executes the baseline and every shock, reporting each impact as
// (stressed success probability - baseline success probability). When
// combined is true an additional run applies all shocks cumulatively.
func (r *Runner) Run(ctx context.Context, baseline *domain.SimulationParams, shocks []domain.StressScenarioSpec, combined bool) (*domain.StressReport, error) {
	if len(shocks) == 0 {
		shocks = DefaultShocks()
	}

	// Perturb everything up front so a bad spec fails before any compute.
	stressed := make([]*domain.SimulationParams, len(shocks))
	for i, spec := range shocks {
		p, err := Apply(spec, baseline)
		if err != nil {
			return nil, err
		}
		stressed[i] = p
	}
	var combinedParams *domain.SimulationParams
	if combined {
		p := baseline.Clone()
		for _, spec := range shocks {
			next, err := Apply(spec, p)
			if err != nil {
				return nil, err
			}
			p = next
		}
		combinedParams = p
	}

	var (
		baseResult     *domain.AggregateResult
		shockResults   = make([]*domain.AggregateResult, len(shocks))
		combinedResult *domain.AggregateResult
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		res, err := r.sim.RunUncached(gctx, baseline)
		if err != nil {
			return fmt.Errorf("baseline run: %w", err)
		}
		baseResult = res
		return nil
	})
	for i := range stressed {
		i := i
		g.Go(func() error {
			res, err := r.sim.RunUncached(gctx, stressed[i])
			if err != nil {
				return fmt.Errorf("shock %s: %w", shocks[i].ID, err)
			}
			shockResults[i] = res
			return nil
		})
	}
	if combinedParams != nil {
		g.Go(func() error {
			res, err := r.sim.RunUncached(gctx, combinedParams)
			if err != nil {
				return fmt.Errorf("combined shocks run: %w", err)
			}
			combinedResult = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	report := &domain.StressReport{
		Baseline: baseResult.SuccessProbability,
		Impacts:  make([]domain.StressImpact, len(shocks)),
	}
	for i, res := range shockResults {
		report.Impacts[i] = domain.StressImpact{
			Spec:               shocks[i],
			SuccessProbability: res.SuccessProbability,
			Delta:              res.SuccessProbability.Sub(baseResult.SuccessProbability),
		}
		r.logger.Debug("stress impact",
			zap.String("shock", shocks[i].ID),
			zap.String("delta", report.Impacts[i].Delta.StringFixed(4)))
	}
	if combinedResult != nil {
		report.Combined = &domain.StressImpact{
			Spec:               domain.StressScenarioSpec{ID: "combined"},
			SuccessProbability: combinedResult.SuccessProbability,
			Delta:              combinedResult.SuccessProbability.Sub(baseResult.SuccessProbability),
		}
	}
	return report, nil
}
