package simulation

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/planwise/retirement-engine/internal/cache"
	"github.com/planwise/retirement-engine/internal/domain"
)

// Config holds engine-level execution settings.
type Config struct {
	Iterations int
	Workers    int
	Timeout    time.Duration
	Model      MarketModel
}

// DefaultConfig returns the standard 1,000-iteration setup with a 30 second
// compute budget.
func DefaultConfig() Config {
	return Config{
		Iterations: 1000,
		Timeout:    30 * time.Second,
		Model:      DefaultMarketModel(),
	}
}

// Engine is the facade callers use: validated parameters in, aggregate
// result out. It owns the pool, the cache integration, and the compute
// budget. The engine performs no persistence or network I/O of its own.
type Engine struct {
	cfg    Config
	agg    *Aggregator
	store  *cache.Cache
	logger *zap.Logger
}

// NewEngine builds an engine. The cache may be nil, in which case every run
// computes fresh; the core is always safe to call directly.
func NewEngine(cfg Config, store *cache.Cache, logger *zap.Logger) *Engine {
	if cfg.Iterations <= 0 {
		cfg.Iterations = 1000
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	pool := NewPool(cfg.Workers, logger)
	agg := NewAggregator(NewScenarioGenerator(cfg.Model), NewWithdrawalSequencer(), cfg.Iterations, pool, logger)
	return &Engine{cfg: cfg, agg: agg, store: store, logger: logger}
}

// Run validates the parameters and produces the aggregate result, serving
// from cache when the input hash matches a live entry. A hash-inconsistent
// cache read is treated as a miss and recomputed.
func (e *Engine) Run(ctx context.Context, householdID string, params *domain.SimulationParams) (*domain.AggregateResult, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	runID := uuid.NewString()
	log := e.logger.With(
		zap.String("run_id", runID),
		zap.String("household_id", householdID),
		zap.Int("iterations", e.cfg.Iterations),
	)

	if e.store == nil {
		return e.compute(ctx, log, params)
	}

	key, err := cache.HashParams(params, e.cfg.Iterations)
	if err != nil {
		return nil, err
	}
	e.store.Register(householdID, key)

	if cached, cerr := e.store.Get(key); cerr != nil {
		log.Warn("cache entry inconsistent, recomputing", zap.Error(cerr))
	} else if cached != nil {
		log.Debug("cache hit", zap.String("key", key))
		return cached, nil
	}

	return e.store.GetOrCompute(householdID, key, func() (*domain.AggregateResult, error) {
		return e.compute(ctx, log, params)
	})
}

func (e *Engine) compute(ctx context.Context, log *zap.Logger, params *domain.SimulationParams) (*domain.AggregateResult, error) {
	ctx, cancel := context.WithTimeout(ctx, e.cfg.Timeout)
	defer cancel()

	started := time.Now()
	result, err := e.agg.Run(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("simulation run: %w", err)
	}
	log.Info("simulation complete",
		zap.Duration("elapsed", time.Since(started)),
		zap.String("success_probability", result.SuccessProbability.StringFixed(4)))
	return result, nil
}

// RunUncached validates and computes without touching the cache. The stress
// engine uses it so perturbed runs share the pool's core budget without
// polluting the result cache.
func (e *Engine) RunUncached(ctx context.Context, params *domain.SimulationParams) (*domain.AggregateResult, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return e.compute(ctx, e.logger, params)
}

// SuccessProbabilityAt reruns the simulation on a clone with the candidate
// retirement age, bypassing the cache. Used by the retirement-age solver.
func (e *Engine) SuccessProbabilityAt(ctx context.Context, params *domain.SimulationParams, retirementAge int) (decimal.Decimal, error) {
	candidate := params.Clone()
	candidate.RetirementAge = retirementAge
	if candidate.LifeExpectancy < retirementAge {
		candidate.LifeExpectancy = retirementAge
	}
	if err := candidate.Validate(); err != nil {
		return decimal.Zero, err
	}
	result, err := e.agg.Run(ctx, candidate)
	if err != nil {
		return decimal.Zero, err
	}
	return result.SuccessProbability, nil
}
