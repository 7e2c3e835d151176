// Package cache holds rendered item output keyed by item ID.
package cache

import (
	"math"

	"github.com/hashicorp/golang-lru/v2/simplelru"

	"github.com/mmcdole/vista/internal/domain"
)

// DefaultSize is used when a cache is built with a non-positive size.
const DefaultSize = 256

// Stats is a snapshot of cache counters. Hits, Misses and Evictions only grow.
type Stats struct {
	Hits      uint64
	Misses    uint64
	Evictions uint64
	Size      int
	MaxSize   int
}

// RenderCache is an LRU of renderings. Pinned IDs are never evicted; when
// every resident entry is pinned the cache overflows instead.
//
// Not safe for concurrent use. The viewport owns one per instance.
type RenderCache struct {
	lru     *simplelru.LRU[string, domain.Rendering]
	maxSize int
	pinned  map[string]struct{}

	hits      uint64
	misses    uint64
	evictions uint64
}

// New creates a cache holding up to maxSize unpinned entries.
func New(maxSize int) *RenderCache {
	if maxSize <= 0 {
		maxSize = DefaultSize
	}
	// Capacity is enforced here, not by simplelru, so that eviction can skip
	// pinned keys. The list only supplies recency order.
	lru, err := simplelru.NewLRU[string, domain.Rendering](math.MaxInt32, nil)
	if err != nil {
		panic(err) // only fails for size <= 0
	}
	return &RenderCache{
		lru:     lru,
		maxSize: maxSize,
		pinned:  make(map[string]struct{}),
	}
}

// Get returns the rendering for id and marks it most recently used.
func (c *RenderCache) Get(id string) (domain.Rendering, bool) {
	r, ok := c.lru.Get(id)
	if ok {
		c.hits++
	} else {
		c.misses++
	}
	return r, ok
}

// Put inserts or replaces the rendering for id, then trims to capacity.
func (c *RenderCache) Put(id string, r domain.Rendering) {
	c.lru.Add(id, r)
	c.trim()
}

// Invalidate drops id. This is not counted as an eviction.
func (c *RenderCache) Invalidate(id string) bool {
	return c.lru.Remove(id)
}

// Purge drops every entry. Counters and pins are kept.
func (c *RenderCache) Purge() {
	c.lru.Purge()
}

// Pin replaces the pinned set and re-trims, so entries that overflowed
// while pinned are evicted once released.
func (c *RenderCache) Pin(ids []string) {
	clear(c.pinned)
	for _, id := range ids {
		c.pinned[id] = struct{}{}
	}
	c.trim()
}

// IsPinned reports whether id is in the pinned set.
func (c *RenderCache) IsPinned(id string) bool {
	_, ok := c.pinned[id]
	return ok
}

// Len returns the number of resident entries.
func (c *RenderCache) Len() int {
	return c.lru.Len()
}

// Stats returns a counter snapshot.
func (c *RenderCache) Stats() Stats {
	return Stats{
		Hits:      c.hits,
		Misses:    c.misses,
		Evictions: c.evictions,
		Size:      c.lru.Len(),
		MaxSize:   c.maxSize,
	}
}

func (c *RenderCache) trim() {
	for c.lru.Len() > c.maxSize {
		victim, ok := c.oldestUnpinned()
		if !ok {
			return // soft overflow
		}
		c.lru.Remove(victim)
		c.evictions++
	}
}

func (c *RenderCache) oldestUnpinned() (string, bool) {
	if id, _, ok := c.lru.GetOldest(); ok && !c.IsPinned(id) {
		return id, true
	}
	for _, id := range c.lru.Keys() {
		if !c.IsPinned(id) {
			return id, true
		}
	}
	return "", false
}
