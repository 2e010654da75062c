// Package cache provides a small bounded cache keyed by pattern string.
// Parsing and analysis are pure functions of the pattern text, so results
// can be memoized safely across calls.
package cache

import "sync"

const DefaultCapacity = 1024

// Cache is a concurrency-safe bounded map. When the capacity is reached the
// oldest entry is evicted (insertion order, not access order; analysis
// results are cheap enough to recompute that LRU bookkeeping is not worth
// the contention).
type Cache[V any] struct {
	mu       sync.Mutex
	capacity int
	entries  map[string]V
	order    []string
}

// New returns a cache holding at most capacity entries. A non-positive
// capacity falls back to DefaultCapacity.
func New[V any](capacity int) *Cache[V] {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Cache[V]{
		capacity: capacity,
		entries:  make(map[string]V, capacity),
	}
}

func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	value, ok := c.entries[key]
	return value, ok
}

func (c *Cache[V]) Put(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; !exists {
		if len(c.entries) >= c.capacity {
			oldest := c.order[0]
			c.order = c.order[1:]
			delete(c.entries, oldest)
		}
		c.order = append(c.order, key)
	}
	c.entries[key] = value
}

// GetOrCompute returns the cached value for key, computing and storing it
// on a miss. compute may run more than once under concurrent misses; the
// first stored value wins.
func (c *Cache[V]) GetOrCompute(key string, compute func() V) V {
	if value, ok := c.Get(key); ok {
		return value
	}

	value := compute()

	c.mu.Lock()
	defer c.mu.Unlock()
	if existing, ok := c.entries[key]; ok {
		return existing
	}
	if len(c.entries) >= c.capacity {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.entries, oldest)
	}
	c.order = append(c.order, key)
	c.entries[key] = value
	return value
}

func (c *Cache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Clear drops every entry but keeps the capacity.
func (c *Cache[V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]V, c.capacity)
	c.order = c.order[:0]
}
