// Package cache is a read-through TTL cache for computed metric results.
//
// There is no single-flight: two concurrent misses on the same key both run
// their compute function and the last writer wins. Results for one key are
// expected to be equivalent, so this only costs duplicate work.
package cache

import (
	"sync"
	"time"
)

// Clock abstracts time so expiry can be driven from tests.
type Clock interface {
	Now() time.Time
}

// SystemClock is the wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

type entry[V any] struct {
	value     V
	expiresAt time.Time
}

// Cache stores values per key until their TTL passes.
type Cache[V any] struct {
	mu      sync.RWMutex
	entries map[string]entry[V]
	clock   Clock
}

// New creates an empty cache. A nil clock means the wall clock.
func New[V any](clock Clock) *Cache[V] {
	if clock == nil {
		clock = SystemClock{}
	}
	return &Cache[V]{
		entries: make(map[string]entry[V]),
		clock:   clock,
	}
}

// Get returns a live entry. Expired entries are evicted on the way.
func (c *Cache[V]) Get(key string) (V, bool) {
	now := c.clock.Now()

	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		var zero V
		return zero, false
	}
	if !now.Before(e.expiresAt) {
		c.mu.Lock()
		if cur, still := c.entries[key]; still && !now.Before(cur.expiresAt) {
			delete(c.entries, key)
		}
		c.mu.Unlock()
		var zero V
		return zero, false
	}
	return e.value, true
}

// Set stores value until now+ttl.
func (c *Cache[V]) Set(key string, value V, ttl time.Duration) {
	c.mu.Lock()
	c.entries[key] = entry[V]{value: value, expiresAt: c.clock.Now().Add(ttl)}
	c.mu.Unlock()
}

// GetOrCompute returns the cached value for key or runs compute and stores
// its result. Errors are returned to the caller and never cached.
func (c *Cache[V]) GetOrCompute(key string, compute func() (V, error), ttl time.Duration) (V, error) {
	if v, ok := c.Get(key); ok {
		return v, nil
	}
	v, err := compute()
	if err != nil {
		var zero V
		return zero, err
	}
	c.Set(key, v, ttl)
	return v, nil
}

// Purge drops every expired entry and reports how many were removed.
func (c *Cache[V]) Purge() int {
	now := c.clock.Now()
	c.mu.Lock()
	defer c.mu.Unlock()

	n := 0
	for k, e := range c.entries {
		if !now.Before(e.expiresAt) {
			delete(c.entries, k)
			n++
		}
	}
	return n
}

// Len is the number of stored entries, expired or not.
func (c *Cache[V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
