package simulation

import (
	"context"
	"math/rand"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/planwise/retirement-engine/internal/domain"
	"github.com/planwise/retirement-engine/pkg/percentile"
)

// Aggregator runs N independent {generate path -> sequence withdrawals}
// iterations and reduces the outcomes to success probability and percentile
// statistics.
type Aggregator struct {
	Generator  *ScenarioGenerator
	Sequencer  *WithdrawalSequencer
	Iterations int
	pool       *Pool
	logger     *zap.Logger
}

// NewAggregator wires a generator and sequencer over the given pool.
func NewAggregator(gen *ScenarioGenerator, seq *WithdrawalSequencer, iterations int, pool *Pool, logger *zap.Logger) *Aggregator {
	if iterations <= 0 {
		iterations = 1000
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Aggregator{
		Generator:  gen,
		Sequencer:  seq,
		Iterations: iterations,
		pool:       pool,
		logger:     logger,
	}
}

// Run executes the full simulation for one parameter set. Parameters must
// already be validated; Run does not mutate them.
func (a *Aggregator) Run(ctx context.Context, params *domain.SimulationParams) (*domain.AggregateResult, error) {
	outcomes, err := a.pool.Run(ctx, a.Iterations, params.Seed, func(_ int, rng *rand.Rand) domain.ScenarioOutcome {
		path := a.Generator.Generate(params, rng)
		return a.Sequencer.Run(params, path)
	})
	if err != nil {
		return nil, err
	}
	return a.reduce(params, outcomes), nil
}

func (a *Aggregator) reduce(params *domain.SimulationParams, outcomes []domain.ScenarioOutcome) *domain.AggregateResult {
	n := len(outcomes)
	successes := 0
	endings := make([]decimal.Decimal, n)
	for i, o := range outcomes {
		if o.Success {
			successes++
		}
		endings[i] = o.EndingBalance
	}
	sorted := percentile.Sorted(endings)

	result := &domain.AggregateResult{
		Iterations:         n,
		Successes:          successes,
		SuccessProbability: decimal.NewFromInt(int64(successes)).Div(decimal.NewFromInt(int64(n))),
		EndingBalances: domain.PercentileRanges{
			P10: percentile.OfSorted(sorted, 10),
			P25: percentile.OfSorted(sorted, 25),
			P50: percentile.OfSorted(sorted, 50),
			P75: percentile.OfSorted(sorted, 75),
			P90: percentile.OfSorted(sorted, 90),
		},
		AgeBands:       a.bands(params, outcomes),
		MedianCashFlow: medianTrace(outcomes, sorted),
		Seed:           params.Seed,
	}

	a.logger.Debug("aggregated simulation outcomes",
		zap.Int("iterations", n),
		zap.Int("successes", successes))
	return result
}

// bands computes per-age balance percentiles across the whole population.
// A scenario that failed before an age contributes its last known balance
// (typically zero) at that age instead of dropping out of the denominator;
// the resulting band describes all simulated lives, not only survivors, and
// downstream probability displays rely on that meaning.
func (a *Aggregator) bands(params *domain.SimulationParams, outcomes []domain.ScenarioOutcome) []domain.AgeBand {
	startAge := params.PrimaryAge() + 1
	endAge := params.PlanLifeExpectancy()
	bands := make([]domain.AgeBand, 0, endAge-startAge+1)

	samples := make([]decimal.Decimal, len(outcomes))
	for age := startAge; age <= endAge; age++ {
		idx := age - startAge
		for i, o := range outcomes {
			if idx < len(o.CashFlows) {
				samples[i] = o.CashFlows[idx].EndingBalance
			} else if len(o.CashFlows) > 0 {
				samples[i] = o.CashFlows[len(o.CashFlows)-1].EndingBalance
			} else {
				samples[i] = decimal.Zero
			}
		}
		sorted := percentile.Sorted(samples)
		bands = append(bands, domain.AgeBand{
			Age: age,
			P5:  percentile.OfSorted(sorted, 5),
			P25: percentile.OfSorted(sorted, 25),
			P50: percentile.OfSorted(sorted, 50),
			P75: percentile.OfSorted(sorted, 75),
			P95: percentile.OfSorted(sorted, 95),
		})
	}
	return bands
}

// medianTrace picks the cash-flow trace of the scenario whose ending balance
// sits closest to the interpolated median, giving callers one representative
// life rather than a synthetic average.
func medianTrace(outcomes []domain.ScenarioOutcome, sortedEndings []decimal.Decimal) []domain.YearlyCashFlow {
	if len(outcomes) == 0 {
		return nil
	}
	median := percentile.OfSorted(sortedEndings, 50)

	best := 0
	bestDist := outcomes[0].EndingBalance.Sub(median).Abs()
	for i := 1; i < len(outcomes); i++ {
		dist := outcomes[i].EndingBalance.Sub(median).Abs()
		if dist.LessThan(bestDist) {
			best = i
			bestDist = dist
		}
	}
	return outcomes[best].CashFlows
}
