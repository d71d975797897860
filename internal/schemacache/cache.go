// Package schemacache caches inference results per container so repeated
// schema requests do not re-sample the store. Entries expire by TTL and are
// evicted LRU; concurrent requests for the same key share one computation.
package schemacache

import (
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/sync/singleflight"

	"github.com/oneiriq/cosmiq-graphql/pkg/inference"
)

// Cache is a TTL+LRU cache of inferred type systems.
type Cache struct {
	entries *expirable.LRU[string, *inference.InferredTypes]
	group   singleflight.Group

	// mu separates per-key fills (read side) from the exclusive
	// whole-cache clear (write side).
	mu sync.RWMutex
}

// New creates a cache holding up to maxEntries results for at most ttl each.
func New(maxEntries int, ttl time.Duration) *Cache {
	return &Cache{
		entries: expirable.NewLRU[string, *inference.InferredTypes](maxEntries, nil, ttl),
	}
}

// fill carries a singleflight result together with where it came from.
type fill struct {
	types *inference.InferredTypes
	hit   bool
}

// GetOrCompute returns the cached result for key, computing and storing it on
// a miss. Concurrent callers with the same key wait for one computation;
// callers with different keys proceed independently. The hit flag reports
// whether the result came from cache rather than a fresh computation, shared
// or not.
func (c *Cache) GetOrCompute(key Key, compute func() (*inference.InferredTypes, error)) (*inference.InferredTypes, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	k := key.String()
	if cached, ok := c.entries.Get(k); ok {
		return cached, true, nil
	}

	v, err, _ := c.group.Do(k, func() (any, error) {
		if cached, ok := c.entries.Get(k); ok {
			return fill{types: cached, hit: true}, nil
		}
		result, err := compute()
		if err != nil {
			return nil, err
		}
		c.entries.Add(k, result)
		return fill{types: result}, nil
	})
	if err != nil {
		return nil, false, err
	}
	f := v.(fill)
	return f.types, f.hit, nil
}

// Clear drops every entry. It excludes all in-flight fills so no reader
// observes a half-updated cache.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries.Purge()
}

// Len returns the current number of cached results.
func (c *Cache) Len() int {
	return c.entries.Len()
}
