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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/wayfarer-dev/wayfarer/pattern"
)

// MatcherTestSuite covers registration, precedence, caching, and lifecycle.
type MatcherTestSuite struct {
	suite.Suite

	m *Matcher
}

func (s *MatcherTestSuite) SetupTest() {
	s.m = MustNewMatcher()
}

func (s *MatcherTestSuite) add(paths ...string) {
	for _, p := range paths {
		s.Require().NoError(s.m.AddRoute(&RouteTemplate{Path: p}))
	}
}

func (s *MatcherTestSuite) TestStaticMatchIsExact() {
	s.add("/", "/about", "/about/team")

	res := s.m.Match("/about")
	s.Require().NotNil(res)
	s.Equal("/about", res.Pattern)
	s.Empty(res.Params)

	s.Nil(s.m.Match("/abou"))
	s.Nil(s.m.Match("/about/tea"))
	s.Nil(s.m.Match("/about/team/extra"))
}

func (s *MatcherTestSuite) TestRootMatch() {
	s.add("/")
	res := s.m.Match("/")
	s.Require().NotNil(res)
	s.Equal("/", res.Pattern)
}

func (s *MatcherTestSuite) TestParamExtraction() {
	s.add("/user/:id")

	res := s.m.Match("/user/42")
	s.Require().NotNil(res)
	s.Equal("42", res.Params.Value("id"))

	s.Nil(s.m.Match("/user"), "required param needs a segment")
	s.Nil(s.m.Match("/user/42/extra"))
}

func (s *MatcherTestSuite) TestOptionalParam() {
	s.add("/search/:q?")

	res := s.m.Match("/search")
	s.Require().NotNil(res)
	_, present := res.Params.Get("q")
	s.False(present, "omitted optional param is absent, not empty")

	res = s.m.Match("/search/golang")
	s.Require().NotNil(res)
	s.Equal("golang", res.Params.Value("q"))
}

func (s *MatcherTestSuite) TestWildcardCapture() {
	s.add("/docs/*")

	res := s.m.Match("/docs/guide/intro")
	s.Require().NotNil(res)
	s.Equal("guide/intro", res.Params.Value(pattern.WildcardParam))

	res = s.m.Match("/docs")
	s.Require().NotNil(res, "wildcard accepts an empty continuation")
	s.Equal("", res.Params.Value(pattern.WildcardParam))
}

func (s *MatcherTestSuite) TestSpecificityPrecedence() {
	// Registration order is deliberately the reverse of specificity.
	s.add("/user/*", "/user/:id?", "/user/:id", "/user/settings")

	tests := []struct {
		path        string
		wantPattern string
	}{
		{"/user/settings", "/user/settings"},
		{"/user/42", "/user/:id"},
		{"/user", "/user/:id?"},
		{"/user/a/b", "/user/*"},
	}
	for _, tt := range tests {
		res := s.m.Match(tt.path)
		s.Require().NotNil(res, "path %s", tt.path)
		s.Equal(tt.wantPattern, res.Pattern, "path %s", tt.path)
	}
}

func (s *MatcherTestSuite) TestBaseTemplateOutranksWildcardExtension() {
	s.add("/a/:x", "/a/:x/*")

	res := s.m.Match("/a/v")
	s.Require().NotNil(res)
	s.Equal("/a/:x", res.Pattern, "the wildcard extension must not shadow its base")
	s.Equal("v", res.Params.Value("x"))
	_, present := res.Params.Get(pattern.WildcardParam)
	s.False(present)

	// Deeper paths still belong to the extension.
	res = s.m.Match("/a/v/w")
	s.Require().NotNil(res)
	s.Equal("/a/:x/*", res.Pattern)
	s.Equal("w", res.Params.Value(pattern.WildcardParam))
}

func (s *MatcherTestSuite) TestBaseTemplateOutranksOptionalExtension() {
	s.add("/a/b/:x?", "/a/b")

	res := s.m.Match("/a/b")
	s.Require().NotNil(res)
	s.Equal("/a/b", res.Pattern)

	res = s.m.Match("/a/b/v")
	s.Require().NotNil(res)
	s.Equal("/a/b/:x?", res.Pattern)
	s.Equal("v", res.Params.Value("x"))
}

func (s *MatcherTestSuite) TestLastRegisteredWinsOnTie() {
	s.Require().NoError(s.m.AddRoute(&RouteTemplate{Path: "/item/:a", Name: "first"}))
	s.Require().NoError(s.m.AddRoute(&RouteTemplate{Path: "/item/:b", Name: "second"}))

	res := s.m.Match("/item/7")
	s.Require().NotNil(res)
	s.Equal("second", res.Leaf().Name)
	s.Equal("7", res.Params.Value("b"))
}

func (s *MatcherTestSuite) TestDuplicatePathNewerWins() {
	s.Require().NoError(s.m.AddRoute(&RouteTemplate{Path: "/home", Name: "old"}))
	s.Require().NoError(s.m.AddRoute(&RouteTemplate{Path: "/home", Name: "new"}))

	res := s.m.Match("/home")
	s.Require().NotNil(res)
	s.Equal("new", res.Leaf().Name)
}

func (s *MatcherTestSuite) TestNestedTemplateChain() {
	tpl := &RouteTemplate{
		Path: "/user/:id",
		Name: "user",
		Children: []*RouteTemplate{
			{Path: "profile", Name: "user-profile"},
			{Path: "posts/:postId", Name: "user-post"},
		},
	}
	s.Require().NoError(s.m.AddRoute(tpl))

	res := s.m.Match("/user/42/posts/7")
	s.Require().NotNil(res)
	s.Require().Len(res.Chain, 2)
	s.Equal("user", res.Chain[0].Name)
	s.Equal("user-post", res.Chain[1].Name)
	s.Equal("42", res.Params.Value("id"))
	s.Equal("7", res.Params.Value("postId"))

	// The parent alone still matches.
	res = s.m.Match("/user/42")
	s.Require().NotNil(res)
	s.Equal("user", res.Leaf().Name)
}

func (s *MatcherTestSuite) TestAddRouteIsAllOrNothing() {
	bad := &RouteTemplate{
		Path: "/ok",
		Children: []*RouteTemplate{
			{Path: "*/broken"}, // wildcard not last
		},
	}
	err := s.m.AddRoute(bad)
	s.Require().Error(err)
	s.ErrorIs(err, pattern.ErrWildcardNotLast)

	s.Nil(s.m.Match("/ok"), "no partial registration on failure")
	s.Zero(s.m.Stats().Routes)
}

func (s *MatcherTestSuite) TestAddRouteNil() {
	s.ErrorIs(s.m.AddRoute(nil), ErrTemplateNil)
}

func (s *MatcherTestSuite) TestNormalization() {
	s.add("/user/:id")

	for _, raw := range []string{"/user/42", "/user/42/", "//user//42", "user/42"} {
		res := s.m.Match(raw)
		s.Require().NotNil(res, "raw path %q", raw)
		s.Equal("/user/42", res.Path, "raw path %q", raw)
	}
}

func (s *MatcherTestSuite) TestCacheHitCounting() {
	s.add("/user/:id")

	first := s.m.Match("/user/42")
	second := s.m.Match("/user/42")
	s.Equal(first.Pattern, second.Pattern)
	s.Equal(first.Params, second.Params)

	st := s.m.Stats()
	s.Equal(uint64(2), st.TotalMatches)
	s.Equal(uint64(1), st.CacheHits)
	s.Equal(uint64(1), st.CacheMisses)
}

func (s *MatcherTestSuite) TestNegativeLookupsAreCached() {
	s.add("/only")

	s.Nil(s.m.Match("/missing"))
	s.Nil(s.m.Match("/missing"))

	st := s.m.Stats()
	s.Equal(uint64(1), st.CacheHits, "second miss is served from the cache")
}

func (s *MatcherTestSuite) TestCachedResultsAreIsolated() {
	s.add("/user/:id")

	res := s.m.Match("/user/42")
	res.Params[0].Value = "mutated"
	res.Path = "/bogus"

	again := s.m.Match("/user/42")
	s.Equal("42", again.Params.Value("id"))
	s.Equal("/user/42", again.Path)
}

func (s *MatcherTestSuite) TestRegistrationInvalidatesCache() {
	s.add("/user/:id")
	s.Require().NotNil(s.m.Match("/user/42"))

	// A more specific route registered later must win even though the path
	// was already cached.
	s.add("/user/42")
	res := s.m.Match("/user/42")
	s.Require().NotNil(res)
	s.Equal("/user/42", res.Pattern)
}

func (s *MatcherTestSuite) TestRemoveRoute() {
	s.Require().NoError(s.m.AddRoute(&RouteTemplate{Path: "/admin", Name: "admin"}))
	s.add("/user/:id")
	s.Require().NotNil(s.m.Match("/admin"))

	s.True(s.m.RemoveRoute("admin"), "remove by name")
	s.Nil(s.m.Match("/admin"), "removal invalidates the cached hit")
	s.Require().NotNil(s.m.Match("/user/7"), "other routes survive")

	s.True(s.m.RemoveRoute("/user/:id"), "remove by path")
	s.False(s.m.RemoveRoute("/user/:id"), "second removal finds nothing")
	s.Zero(s.m.Stats().Routes)
}

func (s *MatcherTestSuite) TestRemoveRouteDropsNestedEntries() {
	tpl := &RouteTemplate{
		Path:     "/shop",
		Name:     "shop",
		Children: []*RouteTemplate{{Path: "cart"}, {Path: "checkout"}},
	}
	s.Require().NoError(s.m.AddRoute(tpl))
	s.Equal(3, s.m.Stats().Routes)

	s.True(s.m.RemoveRoute("shop"))
	s.Zero(s.m.Stats().Routes)
	s.Nil(s.m.Match("/shop/cart"))
}

func (s *MatcherTestSuite) TestLookupByName() {
	s.Require().NoError(s.m.AddRoute(&RouteTemplate{Path: "/a", Name: "alpha"}))
	s.Require().NoError(s.m.AddRoute(&RouteTemplate{Path: "/b", Name: "beta"}))

	tpl := s.m.Lookup("beta")
	s.Require().NotNil(tpl)
	s.Equal("/b", tpl.Path)

	s.Nil(s.m.Lookup("gamma"))
	s.Nil(s.m.Lookup(""))
}

func (s *MatcherTestSuite) TestClearCacheKeepsRoutes() {
	s.add("/user/:id")
	s.m.Match("/user/1")
	s.m.Match("/user/1")

	s.m.ClearCache()

	st := s.m.Stats()
	s.Zero(st.TotalMatches)
	s.Zero(st.CacheHits)
	s.Equal(1, st.Routes)
	s.Require().NotNil(s.m.Match("/user/1"))
}

func (s *MatcherTestSuite) TestResizeCache() {
	s.Require().NoError(s.m.ResizeCache(64))
	s.Equal(64, s.m.Stats().CacheStats.Capacity)

	s.ErrorIs(s.m.ResizeCache(1<<20), ErrCacheBoundsInvalid)
}

func (s *MatcherTestSuite) TestWithoutCache() {
	m := MustNewMatcher(WithoutCache())
	s.Require().NoError(m.AddRoute(&RouteTemplate{Path: "/user/:id"}))

	s.Require().NotNil(m.Match("/user/1"))
	s.Require().NotNil(m.Match("/user/1"))

	st := m.Stats()
	s.Equal(uint64(2), st.TotalMatches)
	s.Zero(st.CacheHits)
	s.Zero(st.CacheMisses)
	s.NoError(m.ResizeCache(64), "resize is a no-op without a cache")
}

func (s *MatcherTestSuite) TestConstructionValidation() {
	_, err := NewMatcher(WithCacheCapacity(0))
	s.ErrorIs(err, ErrCacheCapacityInvalid)

	_, err = NewMatcher(WithCacheBounds(0, 10))
	s.ErrorIs(err, ErrCacheBoundsInvalid)

	_, err = NewMatcher(WithCacheCapacity(8), WithCacheBounds(16, 32))
	s.ErrorIs(err, ErrCacheBoundsInvalid)

	s.Panics(func() { MustNewMatcher(WithCacheCapacity(-1)) })
}

func (s *MatcherTestSuite) TestRoutesIntrospection() {
	tpl := &RouteTemplate{
		Path:     "/user/:id",
		Children: []*RouteTemplate{{Path: "profile"}},
	}
	s.Require().NoError(s.m.AddRoute(tpl))
	s.add("/about")

	s.Equal([]string{"/user/:id", "/user/:id/profile", "/about"}, s.m.Routes())
}

func (s *MatcherTestSuite) TestDispose() {
	s.add("/user/:id")

	s.m.Dispose()

	s.Nil(s.m.Match("/user/1"))
	s.ErrorIs(s.m.AddRoute(&RouteTemplate{Path: "/x"}), ErrMatcherDisposed)
	s.False(s.m.RemoveRoute("/user/:id"))

	s.NotPanics(func() { s.m.Dispose() }, "dispose is idempotent")
}

func TestMatcherSuite(t *testing.T) {
	suite.Run(t, new(MatcherTestSuite))
}

func TestNormalizePath(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", "/"},
		{"/", "/"},
		{"//", "/"},
		{"/a", "/a"},
		{"a", "/a"},
		{"/a/", "/a"},
		{"//a//b//", "/a/b"},
		{"/a//b", "/a/b"},
		{"///", "/"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizePath(tt.in), "input %q", tt.in)
	}
}

// scanFirstMatch resolves a path by walking the precedence-sorted entries
// directly, bypassing the static fast table and the cache. It is the
// reference semantics the fast paths must agree with.
func scanFirstMatch(m *Matcher, path string) string {
	norm := NormalizePath(path)
	segments := splitPath(norm)
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, e := range m.sorted {
		if _, ok := e.pattern.Match(segments); ok {
			return e.path
		}
	}
	return ""
}

// TestStaticFastPathAgreesWithScan verifies that the bloom-guarded exact
// table never returns a different winner than the sorted candidate scan,
// including when a static path is shadowed or extended by dynamic templates.
func TestStaticFastPathAgreesWithScan(t *testing.T) {
	m := MustNewMatcher(WithoutCache())
	for _, p := range []string{
		"/",
		"/a",
		"/a/b",
		"/a/:x",
		"/a/:x?",
		"/a/b/:x?",
		"/a/:x/*",
		"/a/b/c",
		"/docs/*",
		"/docs/api",
	} {
		require.NoError(t, m.AddRoute(&RouteTemplate{Path: p}))
	}

	targets := []string{
		"/", "/a", "/a/b", "/a/v", "/a/b/c", "/a/b/x",
		"/a/v/w", "/docs", "/docs/api", "/docs/guide/intro", "/missing",
	}
	for _, target := range targets {
		want := scanFirstMatch(m, target)
		res := m.Match(target)
		if want == "" {
			assert.Nil(t, res, "target %s", target)
			continue
		}
		require.NotNil(t, res, "target %s", target)
		assert.Equal(t, want, res.Pattern, "target %s", target)
	}
}

// TestMatcherConcurrentUse exercises concurrent matching with interleaved
// registration; run under -race.
func TestMatcherConcurrentUse(t *testing.T) {
	m := MustNewMatcher()
	require.NoError(t, m.AddRoute(&RouteTemplate{Path: "/user/:id"}))
	require.NoError(t, m.AddRoute(&RouteTemplate{Path: "/docs/*"}))

	var wg sync.WaitGroup
	for g := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range 200 {
				res := m.Match(fmt.Sprintf("/user/%d", i))
				if res == nil {
					t.Error("expected match for /user path")
					return
				}
				m.Match("/missing")
			}
			if g == 0 {
				_ = m.AddRoute(&RouteTemplate{Path: "/late"})
			}
		}()
	}
	wg.Wait()

	assert.NotNil(t, m.Match("/late"))
}
