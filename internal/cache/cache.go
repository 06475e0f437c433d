// Package cache provides a keyed TTL cache with single-flight recomputation,
// used to guard expensive insight computation (and any model calls behind it)
// from duplicate work under concurrent requests.
package cache

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"finsight/internal/core"
)

type entry[T any] struct {
	data       T
	computedAt time.Time
	expiresAt  time.Time
}

// Cache is a keyed TTL cache. A fresh entry is returned without touching the
// compute function; a stale or missing entry triggers exactly one computation
// per key, shared by all concurrent callers of that key. Reads of fresh keys
// never block on another key's in-flight computation.
type Cache[T any] struct {
	mu    sync.RWMutex
	items map[string]entry[T]
	group singleflight.Group

	// computeTimeout bounds how long a caller waits on an in-flight
	// computation before giving up with ErrComputationTimeout.
	computeTimeout time.Duration
}

// New creates a cache whose computations are bounded by computeTimeout.
// A zero timeout disables the bound.
func New[T any](computeTimeout time.Duration) *Cache[T] {
	return &Cache[T]{
		items:          make(map[string]entry[T]),
		computeTimeout: computeTimeout,
	}
}

// Get returns the cached value for key if present and not expired.
func (c *Cache[T]) Get(key string) (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var zero T
	item, exists := c.items[key]
	if !exists || time.Now().After(item.expiresAt) {
		return zero, false
	}
	return item.data, true
}

// GetOrCompute returns the fresh entry for key, computing it via fn when the
// entry is missing or older than ttl.
//
// The computation runs detached from the caller's context: if one waiter
// abandons the request, the flight still completes and populates the cache
// for the others. On failure nothing is stored and any prior (stale) entry is
// left in place; the error is surfaced to every waiter of that flight.
func (c *Cache[T]) GetOrCompute(ctx context.Context, key string, ttl time.Duration, fn func(context.Context) (T, error)) (T, error) {
	if data, ok := c.Get(key); ok {
		return data, nil
	}

	ch := c.group.DoChan(key, func() (any, error) {
		// Re-check under the flight: another caller may have finished the
		// computation between our freshness check and joining the group.
		if data, ok := c.Get(key); ok {
			return data, nil
		}

		computeCtx := context.WithoutCancel(ctx)
		if c.computeTimeout > 0 {
			var cancel context.CancelFunc
			computeCtx, cancel = context.WithTimeout(computeCtx, c.computeTimeout)
			defer cancel()
		}

		data, err := fn(computeCtx)
		if err != nil {
			return nil, err
		}

		now := time.Now()
		c.mu.Lock()
		c.items[key] = entry[T]{data: data, computedAt: now, expiresAt: now.Add(ttl)}
		c.mu.Unlock()
		return data, nil
	})

	var deadline <-chan time.Time
	if c.computeTimeout > 0 {
		timer := time.NewTimer(c.computeTimeout)
		defer timer.Stop()
		deadline = timer.C
	}

	var zero T
	select {
	case res := <-ch:
		if res.Err != nil {
			return zero, res.Err
		}
		return res.Val.(T), nil
	case <-deadline:
		return zero, core.ErrComputationTimeout
	case <-ctx.Done():
		// This caller gave up; the flight keeps running for the others.
		return zero, ctx.Err()
	}
}

// Invalidate drops the entry for key, forcing the next GetOrCompute to
// recompute. Used when the underlying transactions change.
func (c *Cache[T]) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, key)
}

// CleanExpired removes expired entries and returns how many were dropped.
func (c *Cache[T]) CleanExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	removed := 0
	for key, item := range c.items {
		if now.After(item.expiresAt) {
			delete(c.items, key)
			removed++
		}
	}
	return removed
}

// Size returns the current number of entries, expired or not.
func (c *Cache[T]) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}
