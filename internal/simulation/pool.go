package simulation

import (
	"context"
	"errors"
	"math/rand"
	"runtime"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/planwise/retirement-engine/internal/domain"
)

// batchSize fixes how many iterations share one seeded rand source. Batches,
// not workers, own the seeds, so results are identical for any worker count
// and any goroutine scheduling.
const batchSize = 100

// seedStride separates batch seeds. Any odd constant works; this one keeps
// neighboring batch seeds far apart.
const seedStride = 0x9E3779B9

// Pool distributes iteration batches across a bounded set of workers. The
// semaphore is shared across concurrent Run calls, so overlapping runs
// (a stress baseline plus its shocks, say) stay within one core budget
// instead of oversubscribing. No shared state is touched inside a worker
// beyond its own batch; the caller merges after the errgroup join.
type Pool struct {
	Workers int
	sem     chan struct{}
	logger  *zap.Logger
}

// NewPool returns a pool bounded at the given worker count, defaulting to
// the number of available cores.
func NewPool(workers int, logger *zap.Logger) *Pool {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pool{
		Workers: workers,
		sem:     make(chan struct{}, workers),
		logger:  logger,
	}
}

// IterationFunc runs one iteration with the batch's rand source and returns
// its outcome. Implementations must draw all randomness from rng.
type IterationFunc func(iteration int, rng *rand.Rand) domain.ScenarioOutcome

// Run executes iterations in deterministic batches. Batch b always receives
// the rand source seeded with f(seed, b), so two runs with identical inputs
// produce identical outcome slices. A context deadline surfaces as
// domain.ErrComputeTimeout.
func (p *Pool) Run(ctx context.Context, iterations int, seed int64, fn IterationFunc) ([]domain.ScenarioOutcome, error) {
	outcomes := make([]domain.ScenarioOutcome, iterations)

	g, ctx := errgroup.WithContext(ctx)

	for start := 0; start < iterations; start += batchSize {
		batch := start / batchSize
		end := start + batchSize
		if end > iterations {
			end = iterations
		}
		lo, hi := start, end

		g.Go(func() error {
			select {
			case p.sem <- struct{}{}:
				defer func() { <-p.sem }()
			case <-ctx.Done():
				return ctx.Err()
			}

			rng := rand.New(rand.NewSource(seed + int64(batch)*seedStride))
			for i := lo; i < hi; i++ {
				if err := ctx.Err(); err != nil {
					return err
				}
				outcomes[i] = fn(i, rng)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			p.logger.Warn("simulation pool exceeded compute budget",
				zap.Int("iterations", iterations),
				zap.Int("workers", p.Workers))
			return nil, domain.ErrComputeTimeout
		}
		return nil, err
	}
	return outcomes, nil
}
