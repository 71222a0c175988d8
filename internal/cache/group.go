package cache

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/singleflight"
)

// maxJoins bounds how often Get re-enters the flight after a shared load
// was cancelled by another caller's context.
const maxJoins = 3

// Loader fills a cache miss. ctx is the context of the caller that ended up
// running the load.
type Loader[V any] func(ctx context.Context) (V, error)

// Group combines an LRU with per-key single-flight population: concurrent
// misses for the same key run the loader once and share its result.
//
// The shared load runs with the context of whichever caller started it. A
// waiter that receives a cancellation it did not cause retries with its own
// context.
type Group[K comparable, V any] struct {
	lru    *LRU[K, V]
	flight singleflight.Group
	keyFn  func(K) string
}

// NewGroup wraps lru. keyFn must map distinct keys to distinct strings;
// nil uses fmt's %v formatting.
func NewGroup[K comparable, V any](lru *LRU[K, V], keyFn func(K) string) *Group[K, V] {
	if keyFn == nil {
		keyFn = func(k K) string { return fmt.Sprintf("%v", k) }
	}

	return &Group[K, V]{lru: lru, keyFn: keyFn}
}

// Get returns the cached value for key or loads it. hit reports whether the
// value came from the cache. Values too large for the cache are returned
// but not stored.
func (g *Group[K, V]) Get(ctx context.Context, key K, load Loader[V]) (value V, hit bool, err error) {
	if v, ok := g.lru.Get(key); ok {
		return v, true, nil
	}

	for joins := 0; ; joins++ {
		res, err, shared := g.flight.Do(g.keyFn(key), func() (any, error) {
			// A caller that lost the race may find the value already stored.
			if v, ok := g.lru.Get(key); ok {
				return v, nil
			}

			v, err := load(ctx)
			if err != nil {
				return nil, err
			}

			// Oversized values are served uncached.
			_ = g.lru.Put(key, v)

			return v, nil
		})
		if err == nil {
			return res.(V), false, nil
		}

		if shared && joins < maxJoins && ctx.Err() == nil && isCancellation(err) {
			continue
		}

		var zero V

		return zero, false, err
	}
}

// Stats returns the underlying LRU counters.
func (g *Group[K, V]) Stats() Stats { return g.lru.Stats() }

func isCancellation(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
