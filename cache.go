// Copyright 2026 The Wayfarer Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package wayfarer

import (
	"fmt"
	"sync"
	"time"
)

const (
	// noIndex marks an absent prev/next link in the arena.
	noIndex = -1

	// optimizeMinLookups is the minimum number of lookups in an observation
	// window before an optimization pass will consider adjusting capacity.
	// Below this the hit rate is too noisy to act on.
	optimizeMinLookups = 64

	// growHitRateBelow triggers capacity growth: a persistently low hit rate
	// suggests the working set is larger than the cache.
	growHitRateBelow = 0.50

	// shrinkHitRateAbove allows capacity shrinking when the cache is also
	// mostly empty: a high hit rate over a small resident set means the
	// capacity is oversized.
	shrinkHitRateAbove = 0.90
)

// CacheStats is a point-in-time snapshot of cache behavior.
type CacheStats struct {
	Hits      uint64  `json:"hits"`
	Misses    uint64  `json:"misses"`
	HitRate   float64 `json:"hitRate"` // hits / (hits + misses); 0 when no lookups
	Size      int     `json:"size"`
	Capacity  int     `json:"capacity"`
	Evictions uint64  `json:"evictions"`
}

// cacheEntry is one arena slot. Recency links are integer indices into the
// node slice rather than pointers, so the linked list has no ownership
// cycles and eviction is plain index recycling.
type cacheEntry struct {
	key        string
	value      *MatchResult // nil = cached negative result
	prev, next int
	insertedAt time.Time
	lastAccess time.Time
}

// cacheConfig holds construction parameters for resultCache.
type cacheConfig struct {
	capacity         int
	minCapacity      int
	maxCapacity      int
	maxAge           time.Duration // 0 = entries never go stale
	optimizeInterval time.Duration // 0 = adaptive sizing disabled
	now              func() time.Time
}

func defaultCacheConfig() cacheConfig {
	return cacheConfig{
		capacity:         128,
		minCapacity:      16,
		maxCapacity:      4096,
		optimizeInterval: 30 * time.Second,
		now:              time.Now,
	}
}

// resultCache is an LRU cache from normalized path to *MatchResult.
// A present key with a nil value is a cached negative result, so repeated
// failed lookups are accelerated the same way as hits.
//
// All operations serialize on a single mutex: get mutates recency state, so
// a read lock would not be enough, and mutation interleaving would corrupt
// the list/map duality.
type resultCache struct {
	mu sync.Mutex

	nodes []cacheEntry
	free  []int // recycled arena slots
	index map[string]int
	head  int // most recently used
	tail  int // least recently used

	capacity    int
	minCapacity int
	maxCapacity int
	maxAge      time.Duration

	hits      uint64
	misses    uint64
	evictions uint64

	// Observation window for the rate-limited optimization pass.
	optimizeInterval time.Duration
	lastOptimize     time.Time
	windowHits       uint64
	windowLookups    uint64

	now func() time.Time
}

// newResultCache validates the configuration and builds an empty cache.
// Invalid capacity bounds fail fast here rather than corrupting state later.
func newResultCache(cfg cacheConfig) (*resultCache, error) {
	if cfg.now == nil {
		cfg.now = time.Now
	}
	if cfg.capacity <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrCacheCapacityInvalid, cfg.capacity)
	}
	if cfg.minCapacity <= 0 || cfg.minCapacity > cfg.maxCapacity {
		return nil, fmt.Errorf("%w: min=%d max=%d", ErrCacheBoundsInvalid, cfg.minCapacity, cfg.maxCapacity)
	}
	if cfg.capacity < cfg.minCapacity || cfg.capacity > cfg.maxCapacity {
		return nil, fmt.Errorf("%w: capacity=%d outside [%d, %d]",
			ErrCacheBoundsInvalid, cfg.capacity, cfg.minCapacity, cfg.maxCapacity)
	}

	return &resultCache{
		nodes:            make([]cacheEntry, 0, cfg.capacity),
		index:            make(map[string]int, cfg.capacity),
		head:             noIndex,
		tail:             noIndex,
		capacity:         cfg.capacity,
		minCapacity:      cfg.minCapacity,
		maxCapacity:      cfg.maxCapacity,
		maxAge:           cfg.maxAge,
		optimizeInterval: cfg.optimizeInterval,
		lastOptimize:     cfg.now(),
		now:              cfg.now,
	}, nil
}

// get returns the cached value for key and whether it was present. A present
// nil value means a cached negative result. The entry is promoted to most
// recently used. Stale entries (older than maxAge) count as misses and are
// dropped.
func (c *resultCache) get(key string) (*MatchResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.windowLookups++
	c.maybeOptimize()

	idx, ok := c.index[key]
	if !ok {
		c.misses++
		return nil, false
	}

	nowTime := c.now()
	if c.maxAge > 0 && nowTime.Sub(c.nodes[idx].insertedAt) > c.maxAge {
		c.removeNode(idx)
		delete(c.index, key)
		c.free = append(c.free, idx)
		c.misses++
		return nil, false
	}

	c.hits++
	c.windowHits++
	c.nodes[idx].lastAccess = nowTime
	c.moveToHead(idx)
	return c.nodes[idx].value, true
}

// set inserts or overwrites the value for key. Inserting a new key at
// capacity evicts the least-recently-used entry first, so size never
// exceeds capacity.
func (c *resultCache) set(key string, value *MatchResult) {
	c.mu.Lock()
	defer c.mu.Unlock()

	nowTime := c.now()

	if idx, ok := c.index[key]; ok {
		c.nodes[idx].value = value
		c.nodes[idx].insertedAt = nowTime
		c.nodes[idx].lastAccess = nowTime
		c.moveToHead(idx)
		return
	}

	if len(c.index) >= c.capacity {
		c.evictTail()
	}

	idx := c.allocNode()
	c.nodes[idx] = cacheEntry{
		key:        key,
		value:      value,
		prev:       noIndex,
		next:       noIndex,
		insertedAt: nowTime,
		lastAccess: nowTime,
	}
	c.index[key] = idx
	c.addToHead(idx)
}

// resize changes the capacity within the configured bounds, evicting from
// the tail when shrinking below the current size.
func (c *resultCache) resize(newCapacity int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if newCapacity < c.minCapacity || newCapacity > c.maxCapacity {
		return fmt.Errorf("%w: capacity=%d outside [%d, %d]",
			ErrCacheBoundsInvalid, newCapacity, c.minCapacity, c.maxCapacity)
	}

	c.capacity = newCapacity
	for len(c.index) > c.capacity {
		c.evictTail()
	}
	return nil
}

// clear drops all entries and resets the hit/miss counters. Capacity is
// left unchanged.
func (c *resultCache) clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.nodes = c.nodes[:0]
	c.free = c.free[:0]
	c.index = make(map[string]int, c.capacity)
	c.head = noIndex
	c.tail = noIndex
	c.hits = 0
	c.misses = 0
	c.evictions = 0
	c.windowHits = 0
	c.windowLookups = 0
	c.lastOptimize = c.now()
}

// stats returns a consistent snapshot of the cache counters.
func (c *resultCache) stats() CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := CacheStats{
		Hits:      c.hits,
		Misses:    c.misses,
		Size:      len(c.index),
		Capacity:  c.capacity,
		Evictions: c.evictions,
	}
	if total := c.hits + c.misses; total > 0 {
		s.HitRate = float64(c.hits) / float64(total)
	}
	return s
}

// maybeOptimize runs the adaptive sizing pass. It is rate-limited by
// optimizeInterval and requires a minimum number of lookups in the window,
// which prevents oscillation on sparse traffic. Callers must hold c.mu.
func (c *resultCache) maybeOptimize() {
	if c.optimizeInterval <= 0 {
		return
	}
	nowTime := c.now()
	if nowTime.Sub(c.lastOptimize) < c.optimizeInterval {
		return
	}
	if c.windowLookups < optimizeMinLookups {
		// Not enough signal; restart the window.
		c.lastOptimize = nowTime
		c.windowHits = 0
		c.windowLookups = 0
		return
	}

	rate := float64(c.windowHits) / float64(c.windowLookups)
	switch {
	case rate < growHitRateBelow && c.capacity < c.maxCapacity:
		// Working set appears larger than the cache: grow toward maxCapacity.
		c.capacity = min(c.capacity*2, c.maxCapacity)

	case rate > shrinkHitRateAbove && c.capacity > c.minCapacity && len(c.index) <= c.capacity/4:
		// Hot but tiny working set: shrink toward minCapacity to bound memory.
		target := max(c.capacity/2, c.minCapacity)
		if target < len(c.index) {
			target = len(c.index)
		}
		c.capacity = target
	}

	c.lastOptimize = nowTime
	c.windowHits = 0
	c.windowLookups = 0
}

// allocNode returns a free arena slot, recycling evicted slots first.
func (c *resultCache) allocNode() int {
	if n := len(c.free); n > 0 {
		idx := c.free[n-1]
		c.free = c.free[:n-1]
		return idx
	}
	c.nodes = append(c.nodes, cacheEntry{})
	return len(c.nodes) - 1
}

// addToHead links a detached node in as most recently used.
func (c *resultCache) addToHead(idx int) {
	c.nodes[idx].prev = noIndex
	c.nodes[idx].next = c.head
	if c.head != noIndex {
		c.nodes[c.head].prev = idx
	}
	c.head = idx
	if c.tail == noIndex {
		c.tail = idx
	}
}

// removeNode unlinks a node from the recency list.
func (c *resultCache) removeNode(idx int) {
	prev, next := c.nodes[idx].prev, c.nodes[idx].next
	if prev != noIndex {
		c.nodes[prev].next = next
	} else {
		c.head = next
	}
	if next != noIndex {
		c.nodes[next].prev = prev
	} else {
		c.tail = prev
	}
	c.nodes[idx].prev = noIndex
	c.nodes[idx].next = noIndex
}

// moveToHead promotes a node to most recently used.
func (c *resultCache) moveToHead(idx int) {
	if c.head == idx {
		return
	}
	c.removeNode(idx)
	c.addToHead(idx)
}

// evictTail removes the least-recently-used entry and recycles its slot.
func (c *resultCache) evictTail() {
	idx := c.tail
	if idx == noIndex {
		return
	}
	c.removeNode(idx)
	delete(c.index, c.nodes[idx].key)
	c.nodes[idx] = cacheEntry{prev: noIndex, next: noIndex}
	c.free = append(c.free, idx)
	c.evictions++
}
