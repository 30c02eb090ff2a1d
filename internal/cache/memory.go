// Package cache provides the in-process cache used to memoize symptom
// resolution.
package cache

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

const (
	DefaultMaxItems = 1000
	DefaultTTL      = 15 * time.Minute
)

// Stats reports cache effectiveness.
type Stats struct {
	Hits   int64 `json:"hits"`
	Misses int64 `json:"misses"`
	Items  int   `json:"items"`
}

// MemoryCache is a size-bounded LRU whose entries expire after a fixed TTL.
// It is safe for concurrent use.
type MemoryCache[V any] struct {
	lru    *expirable.LRU[string, V]
	hits   atomic.Int64
	misses atomic.Int64
}

// NewMemoryCache creates a cache holding at most maxItems entries for ttl.
// Zero values select the defaults.
func NewMemoryCache[V any](maxItems int, ttl time.Duration) (*MemoryCache[V], error) {
	if maxItems < 0 {
		return nil, fmt.Errorf("invalid cache size %d", maxItems)
	}
	if ttl < 0 {
		return nil, fmt.Errorf("invalid cache ttl %s", ttl)
	}
	if maxItems == 0 {
		maxItems = DefaultMaxItems
	}
	if ttl == 0 {
		ttl = DefaultTTL
	}

	return &MemoryCache[V]{
		lru: expirable.NewLRU[string, V](maxItems, nil, ttl),
	}, nil
}

// Get returns the cached value for key.
func (c *MemoryCache[V]) Get(key string) (V, bool) {
	value, ok := c.lru.Get(key)
	if ok {
		c.hits.Add(1)
	} else {
		c.misses.Add(1)
	}
	return value, ok
}

// Set stores value under key, evicting the least recently used entry when full.
func (c *MemoryCache[V]) Set(key string, value V) {
	c.lru.Add(key, value)
}

// Delete removes key.
func (c *MemoryCache[V]) Delete(key string) {
	c.lru.Remove(key)
}

// Purge drops every entry.
func (c *MemoryCache[V]) Purge() {
	c.lru.Purge()
}

// Len returns the number of live entries.
func (c *MemoryCache[V]) Len() int {
	return c.lru.Len()
}

// Stats returns hit and miss counters.
func (c *MemoryCache[V]) Stats() Stats {
	return Stats{
		Hits:   c.hits.Load(),
		Misses: c.misses.Load(),
		Items:  c.lru.Len(),
	}
}
