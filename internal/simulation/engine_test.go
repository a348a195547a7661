package simulation

import (
	"context"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/planwise/retirement-engine/internal/cache"
	"github.com/planwise/retirement-engine/internal/domain"
)

func newTestEngine(store *cache.Cache) *Engine {
	cfg := DefaultConfig()
	cfg.Iterations = 50
	cfg.Workers = 2
	return NewEngine(cfg, store, nil)
}

func TestEngineCacheRoundTrip(t *testing.T) {
	engine := newTestEngine(cache.New(cache.DefaultTTL))
	params := plausibleParams()

	first, err := engine.Run(context.Background(), "hh-1", params)
	require.NoError(t, err)
	second, err := engine.Run(context.Background(), "hh-1", params)
	require.NoError(t, err)

	assert.Same(t, first, second, "an unchanged input must be served from cache")
}

func TestEngineChangedInputRecomputes(t *testing.T) {
	engine := newTestEngine(cache.New(cache.DefaultTTL))
	params := plausibleParams()

	first, err := engine.Run(context.Background(), "hh-1", params)
	require.NoError(t, err)

	changed := params.Clone()
	changed.AnnualExpenses = decimal.NewFromInt(200000)
	second, err := engine.Run(context.Background(), "hh-1", changed)
	require.NoError(t, err)

	assert.NotSame(t, first, second)
	assert.True(t, second.SuccessProbability.LessThan(first.SuccessProbability),
		"tripling spending must hurt the plan")
}

func TestEngineWithoutCacheStillComputes(t *testing.T) {
	engine := newTestEngine(nil)
	params := plausibleParams()

	a, err := engine.Run(context.Background(), "hh-1", params)
	require.NoError(t, err)
	b, err := engine.Run(context.Background(), "hh-1", params)
	require.NoError(t, err)

	assert.NotSame(t, a, b)
	assert.Empty(t, cmp.Diff(a, b, decimalCmp), "recomputation is still deterministic")
}

func TestEngineRejectsInvalidParams(t *testing.T) {
	engine := newTestEngine(nil)
	params := plausibleParams()
	params.RetirementAge = 30

	_, err := engine.Run(context.Background(), "hh-1", params)
	var invalid *domain.InvalidParameterError
	require.ErrorAs(t, err, &invalid)
}

func TestEngineTimeoutSurfacesAsComputeTimeout(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Iterations = 10000
	cfg.Workers = 2
	cfg.Timeout = time.Nanosecond
	engine := NewEngine(cfg, nil, nil)

	_, err := engine.Run(context.Background(), "hh-1", plausibleParams())
	require.ErrorIs(t, err, domain.ErrComputeTimeout)
}

func TestEngineSuccessProbabilityAtLeavesParamsUntouched(t *testing.T) {
	engine := newTestEngine(nil)
	params := plausibleParams()

	prob, err := engine.SuccessProbabilityAt(context.Background(), params, 70)
	require.NoError(t, err)
	assert.True(t, prob.GreaterThanOrEqual(decimal.Zero))
	assert.True(t, prob.LessThanOrEqual(decimal.NewFromInt(1)))
	assert.Equal(t, 65, params.RetirementAge, "the caller's params are never mutated")
}

func TestEngineSuccessProbabilityAtExtendsShortHorizon(t *testing.T) {
	engine := newTestEngine(nil)
	params := plausibleParams()
	params.LifeExpectancy = 80

	// Retiring past the stated horizon stretches the plan instead of failing
	// validation.
	_, err := engine.SuccessProbabilityAt(context.Background(), params, 85)
	require.NoError(t, err)
}
