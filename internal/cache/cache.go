package cache

import (
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/planwise/retirement-engine/internal/domain"
)

// DefaultTTL bounds how long a cached result may be served before it must be
// recomputed even without an explicit invalidation.
const DefaultTTL = 15 * time.Minute

type entry struct {
	key       string
	result    *domain.AggregateResult
	expiresAt time.Time
}

// Cache is an in-process TTL cache for aggregate results. Reads verify the
// stored key against the requested one; a mismatch is reported as
// domain.ErrCacheInconsistency and treated as a miss, never served stale.
//
// Writes are guarded per household: a run registers its input hash up front,
// and a completed run's result is discarded if a newer request for the same
// household registered a different hash in the meantime. Last-writer-wins by
// wall clock is not acceptable for financial display.
type Cache struct {
	mu      sync.Mutex
	entries map[string]entry
	current map[string]string // household ID -> most recently registered hash
	ttl     time.Duration
	group   singleflight.Group

	nowFunc func() time.Time // override in tests
}

// New returns a cache with the given TTL, defaulting to DefaultTTL.
func New(ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{
		entries: make(map[string]entry),
		current: make(map[string]string),
		ttl:     ttl,
		nowFunc: time.Now,
	}
}

// Get returns the cached result for a key, or (nil, nil) on a miss. Expired
// entries are dropped. An entry whose stored key disagrees with its map slot
// is purged and reported via domain.ErrCacheInconsistency.
func (c *Cache) Get(key string) (*domain.AggregateResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, nil
	}
	if e.key != key {
		delete(c.entries, key)
		return nil, domain.ErrCacheInconsistency
	}
	if c.nowFunc().After(e.expiresAt) {
		delete(c.entries, key)
		return nil, nil
	}
	return e.result, nil
}

// Register records that a run for the household is starting with the given
// input hash. Any in-flight run for the same household holding an older hash
// will have its eventual Put discarded.
func (c *Cache) Register(householdID, key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current[householdID] = key
}

// Put stores a computed result. It reports false, without storing, when the
// household's registered hash has moved past the run's key: the inputs
// changed while the computation was in flight and the result is stale.
func (c *Cache) Put(householdID, key string, result *domain.AggregateResult) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if cur, ok := c.current[householdID]; ok && cur != key {
		return false
	}
	c.entries[key] = entry{
		key:       key,
		result:    result,
		expiresAt: c.nowFunc().Add(c.ttl),
	}
	return true
}

// Invalidate drops the household's registered hash and any entry stored
// under it. Called when the household profile is updated.
func (c *Cache) Invalidate(householdID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if key, ok := c.current[householdID]; ok {
		delete(c.entries, key)
		delete(c.current, householdID)
	}
}

// GetOrCompute returns the cached result for the key or runs compute exactly
// once for concurrent callers of the same key. Concurrent requests share the
// in-flight computation rather than double-computing and double-storing.
func (c *Cache) GetOrCompute(householdID, key string, compute func() (*domain.AggregateResult, error)) (*domain.AggregateResult, error) {
	v, err, _ := c.group.Do(key, func() (interface{}, error) {
		if cached, err := c.Get(key); err == nil && cached != nil {
			return cached, nil
		}
		result, err := compute()
		if err != nil {
			return nil, err
		}
		c.Put(householdID, key, result)
		return result, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*domain.AggregateResult), nil
}
