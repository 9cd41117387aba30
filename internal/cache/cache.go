// Package cache provides a process-lifetime TTL memo for fetched resources.
// It short-circuits redundant round-trips to finsight-server during fast
// navigation: a snapshot fetched moments ago is served from memory instead
// of re-running the backend analysis.
package cache

import (
	"strings"
	"sync"
	"time"
)

// entry wraps a cached payload with expiry and insertion order tracking.
type entry[T any] struct {
	payload   T
	expiry    time.Time
	insertIdx int64
}

// Cache memoizes recently fetched payloads under a canonical key.
// An entry past its TTL is treated as absent even while physically present;
// it is removed lazily on the next lookup. Keys are case-folded and trimmed
// so "aapl" and "AAPL " address the same entry.
// Thread-safe with sync.RWMutex.
type Cache[T any] struct {
	mu         sync.RWMutex
	items      map[string]entry[T]
	ttl        time.Duration
	maxEntries int
	nextIdx    int64
	now        func() time.Time
}

// New creates a new Cache with the given TTL and max entry count.
func New[T any](ttl time.Duration, maxEntries int) *Cache[T] {
	return &Cache[T]{
		items:      make(map[string]entry[T]),
		ttl:        ttl,
		maxEntries: maxEntries,
		now:        time.Now,
	}
}

// CanonicalKey normalizes a resource key: whitespace trimmed, case folded.
func CanonicalKey(key string) string {
	return strings.ToUpper(strings.TrimSpace(key))
}

// Get returns the cached payload if present and not expired.
func (c *Cache[T]) Get(key string) (T, bool) {
	key = CanonicalKey(key)

	c.mu.RLock()
	e, ok := c.items[key]
	c.mu.RUnlock()

	var zero T
	if !ok {
		return zero, false
	}

	if c.now().After(e.expiry) {
		// Expired: remove lazily
		c.mu.Lock()
		if e2, ok2 := c.items[key]; ok2 && c.now().After(e2.expiry) {
			delete(c.items, key)
		}
		c.mu.Unlock()
		return zero, false
	}

	return e.payload, true
}

// Put stores a payload with the current timestamp, unconditionally
// overwriting any prior entry for that key. Evicts the oldest entry if at
// capacity.
func (c *Cache[T]) Put(key string, payload T) {
	key = CanonicalKey(key)

	c.mu.Lock()
	defer c.mu.Unlock()

	e := entry[T]{
		payload:   payload,
		expiry:    c.now().Add(c.ttl),
		insertIdx: c.nextIdx,
	}
	c.nextIdx++

	// If key already exists, update in place (no capacity change)
	if _, exists := c.items[key]; exists {
		c.items[key] = e
		return
	}

	if c.maxEntries > 0 && len(c.items) >= c.maxEntries {
		c.evictOldest()
	}

	c.items[key] = e
}

// Len returns the number of physically present entries, expired included.
func (c *Cache[T]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// evictOldest removes the entry with the lowest insertIdx. Must be called with mu held.
func (c *Cache[T]) evictOldest() {
	var oldestKey string
	var oldestIdx int64 = -1

	for key, e := range c.items {
		if oldestIdx == -1 || e.insertIdx < oldestIdx {
			oldestIdx = e.insertIdx
			oldestKey = key
		}
	}

	if oldestKey != "" {
		delete(c.items, oldestKey)
	}
}
