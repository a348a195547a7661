// Package cache memoizes aggregate results keyed by a content hash of the
// simulation inputs. It is the single cache abstraction for the engine:
// key -> value with TTL, explicit invalidation, and at-most-one computation
// in flight per key.
package cache

import (
	"fmt"
	"strconv"

	"github.com/cespare/xxhash/v2"
	"github.com/goccy/go-json"

	"github.com/planwise/retirement-engine/internal/domain"
)

// hashInput is the semantically relevant subset of a request. Volatile
// fields (timestamps, request IDs) never appear here; two requests with the
// same household economics, iteration count, and seed hash identically.
type hashInput struct {
	Params     *domain.SimulationParams `json:"params"`
	Iterations int                      `json:"iterations"`
	Seed       int64                    `json:"seed"`
}

// HashParams derives the cache key for a parameter set and iteration count.
// Struct field order fixes the JSON layout, so equal inputs always produce
// equal keys.
func HashParams(params *domain.SimulationParams, iterations int) (string, error) {
	payload, err := json.Marshal(hashInput{
		Params:     params,
		Iterations: iterations,
		Seed:       params.Seed,
	})
	if err != nil {
		return "", fmt.Errorf("hashing simulation params: %w", err)
	}
	return strconv.FormatUint(xxhash.Sum64(payload), 16), nil
}
