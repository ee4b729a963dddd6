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
	"log/slog"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/wayfarer-dev/wayfarer/pattern"
)

// routeEntry is one registered, compiled route. Nested templates flatten
// into one entry per node, each carrying its root→leaf chain.
type routeEntry struct {
	root    *RouteTemplate   // the template passed to AddRoute
	chain   []*RouteTemplate // root→leaf chain ending at this node
	pattern *pattern.Pattern
	path    string // effective full path (joined parent paths)
	seq     uint64 // registration order; higher wins specificity ties
}

func (e *routeEntry) leaf() *RouteTemplate { return e.chain[len(e.chain)-1] }

// MatcherStats is a snapshot of cumulative matcher counters plus the
// cache-shape statistics delegated to the result cache.
type MatcherStats struct {
	TotalMatches uint64     `json:"totalMatches"`
	CacheHits    uint64     `json:"cacheHits"`
	CacheMisses  uint64     `json:"cacheMisses"`
	Routes       int        `json:"routes"`
	CacheStats   CacheStats `json:"cacheStats"`
}

// Matcher owns a registry of compiled route patterns and answers path
// lookups with deterministic precedence: higher specificity first, ties
// broken by most-recent registration.
//
// Matchers are explicit objects with their own lifecycle (see Dispose), so
// multiple independent matchers can coexist, e.g. in tests. All methods are
// safe for concurrent use; registry mutation is serialized and assumed rare
// relative to matching.
type Matcher struct {
	mu      sync.RWMutex
	entries []*routeEntry // registration order
	sorted  []*routeEntry // specificity desc, then seq desc; rebuilt on mutation

	// Exact-match fast path for fully static templates. The bloom filter
	// rejects unregistered paths before the table lookup.
	staticTable map[string]*routeEntry
	staticBloom *pattern.BloomFilter
	bloomSize   uint64
	bloomHashes int

	cache    *resultCache
	useCache bool

	seq      uint64
	disposed bool

	logger *slog.Logger

	totalMatches atomic.Uint64
	cacheHits    atomic.Uint64
	cacheMisses  atomic.Uint64
}

const (
	defaultBloomSize   = 1024
	defaultBloomHashes = 3
)

// NewMatcher creates a matcher with optional configuration. Configuration is
// validated immediately; for a panicking variant use MustNewMatcher.
//
// Example:
//
//	m, err := wayfarer.NewMatcher(
//	    wayfarer.WithCacheCapacity(256),
//	    wayfarer.WithCacheBounds(32, 8192),
//	)
func NewMatcher(opts ...MatcherOption) (*Matcher, error) {
	m := &Matcher{
		staticTable: make(map[string]*routeEntry, 16),
		bloomSize:   defaultBloomSize,
		bloomHashes: defaultBloomHashes,
		useCache:    true,
		logger:      noopLogger,
	}

	cfg := defaultCacheConfig()
	for _, opt := range opts {
		opt(m, &cfg)
	}

	if m.useCache {
		cache, err := newResultCache(cfg)
		if err != nil {
			return nil, fmt.Errorf("matcher configuration validation failed: %w", err)
		}
		m.cache = cache
	}
	m.staticBloom = pattern.NewBloomFilter(m.bloomSize, m.bloomHashes)

	return m, nil
}

// MustNewMatcher creates a matcher and panics on invalid configuration.
func MustNewMatcher(opts ...MatcherOption) *Matcher {
	m, err := NewMatcher(opts...)
	if err != nil {
		panic(fmt.Sprintf("wayfarer.MustNewMatcher: %v", err))
	}
	return m
}

// AddRoute compiles a template (and all nested children) and inserts it into
// the registry. Registration is all-or-nothing: if any node of the template
// tree fails to compile, nothing is inserted and the error is returned.
//
// Registering a template whose effective path equals an already-registered
// one does not fail: the newer registration wins for matching purposes.
//
// Structural registry changes invalidate the whole result cache; mutation is
// rare relative to matching, so wholesale invalidation is the simple safe
// choice.
func (m *Matcher) AddRoute(template *RouteTemplate) error {
	if template == nil {
		return ErrTemplateNil
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.disposed {
		return ErrMatcherDisposed
	}

	// Compile the whole tree before touching the registry.
	var compiled []*routeEntry
	if err := compileTemplateTree(template, template, "", nil, &compiled); err != nil {
		return err
	}

	for _, e := range compiled {
		e.seq = m.seq
		m.seq++
		m.entries = append(m.entries, e)
		if e.pattern.IsStatic() {
			m.staticTable[e.path] = e
			m.staticBloom.Add(e.path)
		}
	}
	m.rebuildSortedLocked()
	m.invalidateCacheLocked()

	m.logger.Debug("route registered",
		slog.String("path", template.Path),
		slog.Int("entries", len(compiled)))
	return nil
}

// compileTemplateTree flattens a template tree into route entries. Each
// node's effective path is its parent's path joined with its own.
func compileTemplateTree(root, t *RouteTemplate, parentPath string, parentChain []*RouteTemplate, out *[]*routeEntry) error {
	if t == nil {
		return ErrTemplateNil
	}

	effective := t.Path
	if parentPath != "" || len(parentChain) > 0 {
		effective = joinPaths(parentPath, t.Path)
	}

	p, err := pattern.Compile(effective)
	if err != nil {
		return fmt.Errorf("compile %q: %w", effective, err)
	}

	chain := make([]*RouteTemplate, len(parentChain)+1)
	copy(chain, parentChain)
	chain[len(parentChain)] = t

	*out = append(*out, &routeEntry{
		root:    root,
		chain:   chain,
		pattern: p,
		path:    p.Source(),
	})

	for _, child := range t.Children {
		if err := compileTemplateTree(root, child, effective, chain, out); err != nil {
			return err
		}
	}
	return nil
}

// RemoveRoute removes every entry registered from the template identified by
// id, where id is either the template's Name or its Path as passed to
// AddRoute. It reports whether anything was removed. Removal invalidates the
// whole result cache and rebuilds the static fast path.
func (m *Matcher) RemoveRoute(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.disposed {
		return false
	}

	kept := m.entries[:0]
	removed := 0
	for _, e := range m.entries {
		if (id != "" && e.root.Name == id) || e.root.Path == id {
			removed++
			continue
		}
		kept = append(kept, e)
	}
	if removed == 0 {
		return false
	}
	m.entries = kept

	// Bloom filters cannot delete, so the static fast path is rebuilt.
	m.staticTable = make(map[string]*routeEntry, len(m.entries))
	m.staticBloom.Reset()
	for _, e := range m.entries {
		if e.pattern.IsStatic() {
			// Later registrations overwrite earlier ones, preserving
			// last-registered-wins for duplicate static paths.
			m.staticTable[e.path] = e
			m.staticBloom.Add(e.path)
		}
	}

	m.rebuildSortedLocked()
	m.invalidateCacheLocked()

	m.logger.Debug("route removed", slog.String("id", id), slog.Int("entries", removed))
	return true
}

// Lookup returns the leaf template registered under the given name, or nil.
func (m *Matcher) Lookup(name string) *RouteTemplate {
	if name == "" {
		return nil
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	// Scan in reverse so the most recent registration wins.
	for i := len(m.entries) - 1; i >= 0; i-- {
		if leaf := m.entries[i].leaf(); leaf.Name == name {
			return leaf
		}
	}
	return nil
}

// Match resolves a path against the registered templates.
//
// The path is normalized first (duplicate slashes collapsed, one trailing
// slash stripped except for root). The result cache is consulted before any
// matching work; on a miss, candidates are scanned in precedence order and
// the first full match wins. Misses are cached as nil entries, so repeated
// failed lookups are also accelerated.
//
// A nil result means no template matched. The returned result is a copy;
// mutating it cannot corrupt the cache.
func (m *Matcher) Match(path string) *MatchResult {
	norm := NormalizePath(path)
	m.totalMatches.Add(1)

	if m.useCache {
		if cached, ok := m.cache.get(norm); ok {
			m.cacheHits.Add(1)
			return cached.clone()
		}
		m.cacheMisses.Add(1)
	}

	result := m.matchUncached(norm)

	if m.useCache {
		m.cache.set(norm, result)
	}
	return result.clone()
}

// matchUncached performs the actual pattern scan.
func (m *Matcher) matchUncached(norm string) *MatchResult {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.disposed {
		return nil
	}

	// Static fast path: bloom filter first (definite negatives), then the
	// exact table. A fully static match is by construction the most specific
	// match possible for its path, so precedence is preserved.
	if m.staticBloom.Test(norm) {
		if e, ok := m.staticTable[norm]; ok {
			return buildResult(e, norm, nil)
		}
	}

	segments := splitPath(norm)
	for _, e := range m.sorted {
		minSeg, maxSeg := e.pattern.SegmentBounds()
		if len(segments) < minSeg || (maxSeg >= 0 && len(segments) > maxSeg) {
			continue
		}
		if caps, ok := e.pattern.Match(segments); ok {
			return buildResult(e, norm, caps)
		}
	}
	return nil
}

// buildResult assembles a MatchResult from a matched entry.
func buildResult(e *routeEntry, norm string, caps []pattern.Capture) *MatchResult {
	res := &MatchResult{
		Chain:   e.chain,
		Path:    norm,
		Pattern: e.path,
	}
	if len(caps) > 0 {
		res.Params = make(Params, len(caps))
		for i, c := range caps {
			res.Params[i] = Param{Key: c.Key, Value: c.Value}
		}
	}
	return res
}

// Stats returns cumulative matcher counters and cache statistics.
func (m *Matcher) Stats() MatcherStats {
	m.mu.RLock()
	routes := len(m.entries)
	m.mu.RUnlock()

	s := MatcherStats{
		TotalMatches: m.totalMatches.Load(),
		CacheHits:    m.cacheHits.Load(),
		CacheMisses:  m.cacheMisses.Load(),
		Routes:       routes,
	}
	if m.useCache {
		s.CacheStats = m.cache.stats()
	}
	return s
}

// ClearCache drops all cached results and resets match counters. The route
// registry is untouched.
func (m *Matcher) ClearCache() {
	if m.useCache {
		m.cache.clear()
	}
	m.totalMatches.Store(0)
	m.cacheHits.Store(0)
	m.cacheMisses.Store(0)
}

// ResizeCache adjusts the cache capacity within the configured bounds.
func (m *Matcher) ResizeCache(capacity int) error {
	if !m.useCache {
		return nil
	}
	return m.cache.resize(capacity)
}

// Routes returns the effective paths of all registered entries in
// registration order. Intended for introspection and tests.
func (m *Matcher) Routes() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, len(m.entries))
	for i, e := range m.entries {
		out[i] = e.path
	}
	return out
}

// Dispose releases the matcher: the registry and cache are dropped and all
// further registrations fail with ErrMatcherDisposed. Matching on a disposed
// matcher returns nil.
func (m *Matcher) Dispose() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.disposed {
		return
	}
	m.disposed = true
	m.entries = nil
	m.sorted = nil
	m.staticTable = nil
	m.staticBloom.Reset()
	if m.useCache {
		m.cache.clear()
	}
}

// rebuildSortedLocked recomputes precedence order: specificity descending,
// ties broken by registration sequence descending (newest first). Callers
// must hold m.mu for writing.
func (m *Matcher) rebuildSortedLocked() {
	m.sorted = make([]*routeEntry, len(m.entries))
	copy(m.sorted, m.entries)
	sort.SliceStable(m.sorted, func(i, j int) bool {
		si, sj := m.sorted[i].pattern.Specificity(), m.sorted[j].pattern.Specificity()
		if si != sj {
			return si > sj
		}
		return m.sorted[i].seq > m.sorted[j].seq
	})
}

// invalidateCacheLocked drops all cached results after a registry change.
func (m *Matcher) invalidateCacheLocked() {
	if m.useCache {
		m.cache.clear()
	}
}

// NormalizePath canonicalizes a request path: ensures a leading slash,
// collapses duplicate slashes, and strips a single trailing slash except
// for the root path.
func NormalizePath(path string) string {
	if path == "" {
		return "/"
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	if strings.Contains(path, "//") {
		var b strings.Builder
		b.Grow(len(path))
		prevSlash := false
		for i := 0; i < len(path); i++ {
			c := path[i]
			if c == '/' {
				if prevSlash {
					continue
				}
				prevSlash = true
			} else {
				prevSlash = false
			}
			b.WriteByte(c)
		}
		path = b.String()
	}
	if len(path) > 1 {
		path = strings.TrimSuffix(path, "/")
	}
	if path == "" {
		path = "/"
	}
	return path
}

// splitPath splits a normalized path into segments. Root yields no segments.
func splitPath(norm string) []string {
	if norm == "/" || norm == "" {
		return nil
	}
	return strings.Split(strings.TrimPrefix(norm, "/"), "/")
}
