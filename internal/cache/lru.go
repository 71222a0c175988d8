// Package cache provides the bounded in-process caches used by fetching and
// rendering: a cost-budgeted LRU and a keyed single-flight loader.
package cache

import (
	"container/list"
	"errors"
	"sync"
)

// ErrItemTooLarge is returned when a single value exceeds the whole budget.
var ErrItemTooLarge = errors.New("cache: item exceeds capacity")

// Stats reports cache counters.
type Stats struct {
	Hits      int64
	Misses    int64
	Evictions int64
	Size      int64
	Capacity  int64
	Items     int
}

// HitRate returns Hits / (Hits + Misses), or 0 before the first lookup.
func (s Stats) HitRate() float64 {
	if total := s.Hits + s.Misses; total > 0 {
		return float64(s.Hits) / float64(total)
	}

	return 0
}

// CostFunc returns the budget units a value occupies.
type CostFunc[V any] func(V) int64

// LRU is a least-recently-used cache bounded by the summed cost of its
// values. It is safe for concurrent use.
type LRU[K comparable, V any] struct {
	mu       sync.Mutex
	capacity int64
	size     int64
	cost     CostFunc[V]

	items    map[K]*list.Element
	eviction *list.List

	stats Stats
}

type entry[K comparable, V any] struct {
	key   K
	value V
	cost  int64
}

// NewLRU creates a cache holding at most capacity cost units. A nil cost
// function counts every value as 1, making capacity an entry limit.
func NewLRU[K comparable, V any](capacity int64, cost CostFunc[V]) *LRU[K, V] {
	if cost == nil {
		cost = func(V) int64 { return 1 }
	}

	return &LRU[K, V]{
		capacity: capacity,
		cost:     cost,
		items:    make(map[K]*list.Element),
		eviction: list.New(),
		stats:    Stats{Capacity: capacity},
	}
}

// Get returns the value for key and marks it most recently used.
func (c *LRU[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.items[key]
	if !ok {
		c.stats.Misses++
		var zero V

		return zero, false
	}

	c.eviction.MoveToFront(elem)
	c.stats.Hits++

	return elem.Value.(*entry[K, V]).value, true
}

// Put stores value under key, evicting least recently used entries until
// it fits.
func (c *LRU[K, V]) Put(key K, value V) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	cost := c.cost(value)
	if cost > c.capacity {
		return ErrItemTooLarge
	}

	if elem, ok := c.items[key]; ok {
		c.removeElement(elem)
	}

	for c.size+cost > c.capacity && c.eviction.Len() > 0 {
		c.removeElement(c.eviction.Back())
		c.stats.Evictions++
	}

	c.items[key] = c.eviction.PushFront(&entry[K, V]{key: key, value: value, cost: cost})
	c.size += cost

	return nil
}

// Contains reports whether key is cached without touching recency.
func (c *LRU[K, V]) Contains(key K) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, ok := c.items[key]

	return ok
}

// Delete removes key if present.
func (c *LRU[K, V]) Delete(key K) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.items[key]; ok {
		c.removeElement(elem)
	}
}

// Clear drops every entry. Counters are kept.
func (c *LRU[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = make(map[K]*list.Element)
	c.eviction.Init()
	c.size = 0
}

// Len returns the number of cached entries.
func (c *LRU[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.items)
}

// Stats returns a snapshot of the counters.
func (c *LRU[K, V]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	stats := c.stats
	stats.Size = c.size
	stats.Items = len(c.items)

	return stats
}

// must be called with c.mu held
func (c *LRU[K, V]) removeElement(elem *list.Element) {
	c.eviction.Remove(elem)
	e := elem.Value.(*entry[K, V])
	delete(c.items, e.key)
	c.size -= e.cost
}
