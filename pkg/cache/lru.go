// Package cache provides a bounded, thread-safe LRU map whose eviction
// callback runs outside the lock, so it may close resources that take
// their own locks.
package cache

import (
	lru "github.com/hashicorp/golang-lru/v2"
)

// Option configures an LRU.
type Option[K comparable, V any] func(*LRU[K, V])

// WithEvictCallback sets fn to run for every entry leaving the cache:
// capacity evictions, Remove and Clear. fn runs after the cache lock is
// released.
func WithEvictCallback[K comparable, V any](fn func(key K, value V)) Option[K, V] {
	return func(c *LRU[K, V]) { c.onEvict = fn }
}

// LRU evicts the least recently used entry once capacity is exceeded.
type LRU[K comparable, V any] struct {
	inner   *lru.Cache[K, V]
	onEvict func(key K, value V)
}

// New creates an LRU. Panics when capacity is not positive.
func New[K comparable, V any](capacity int, opts ...Option[K, V]) *LRU[K, V] {
	if capacity <= 0 {
		panic("cache: LRU capacity must be positive")
	}
	c := &LRU[K, V]{}
	for _, opt := range opts {
		opt(c)
	}

	var err error
	if c.onEvict != nil {
		c.inner, err = lru.NewWithEvict(capacity, c.onEvict)
	} else {
		c.inner, err = lru.New[K, V](capacity)
	}
	if err != nil {
		panic("cache: " + err.Error())
	}
	return c
}

// Get returns the value for key and marks it recently used.
func (c *LRU[K, V]) Get(key K) (V, bool) {
	return c.inner.Get(key)
}

// Put stores value under key and reports whether another entry was evicted
// to make room. Replacing a value does not run the evict callback for the
// old one.
func (c *LRU[K, V]) Put(key K, value V) bool {
	return c.inner.Add(key, value)
}

// Remove deletes key and reports whether it was present.
func (c *LRU[K, V]) Remove(key K) bool {
	return c.inner.Remove(key)
}

// Len returns the number of entries.
func (c *LRU[K, V]) Len() int {
	return c.inner.Len()
}

// Clear removes every entry.
func (c *LRU[K, V]) Clear() {
	c.inner.Purge()
}
