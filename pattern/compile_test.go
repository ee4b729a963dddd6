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

package pattern

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestCompileClassification verifies that each segment form compiles to the
// expected kind.
func TestCompileClassification(t *testing.T) {
	p, err := Compile("/user/:id/posts/:page?/*")
	require.NoError(t, err)

	segs := p.Segments()
	require.Len(t, segs, 5)
	assert.Equal(t, KindStatic, segs[0].Kind)
	assert.Equal(t, "user", segs[0].Literal)
	assert.Equal(t, KindParam, segs[1].Kind)
	assert.Equal(t, "id", segs[1].Name)
	assert.Equal(t, KindStatic, segs[2].Kind)
	assert.Equal(t, KindOptionalParam, segs[3].Kind)
	assert.Equal(t, "page", segs[3].Name)
	assert.Equal(t, KindWildcard, segs[4].Kind)
	assert.Equal(t, WildcardParam, segs[4].Name)
	assert.True(t, p.HasWildcard())
}

// TestCompileErrors verifies the registration-time error taxonomy.
func TestCompileErrors(t *testing.T) {
	tests := []struct {
		name     string
		template string
		wantErr  error
	}{
		{"empty", "", ErrEmptyTemplate},
		{"blank", "   ", ErrEmptyTemplate},
		{"no leading slash", "user/:id", ErrMalformedSegment},
		{"wildcard not last", "/docs/*/edit", ErrWildcardNotLast},
		{"duplicate param", "/user/:id/posts/:id", ErrDuplicateParam},
		{"duplicate optional", "/a/:x/:x?", ErrDuplicateParam},
		{"bare colon", "/user/:", ErrMalformedSegment},
		{"colon inside literal", "/user/a:b", ErrMalformedSegment},
		{"star inside literal", "/files/*x", ErrMalformedSegment},
		{"bad param chars", "/user/:id-name", ErrMalformedSegment},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := Compile(tt.template)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, p)
		})
	}
}

// TestCompileDeterministic verifies that compilation is pure: the same
// template always yields an identical pattern. The matcher's cache relies
// on this.
func TestCompileDeterministic(t *testing.T) {
	a, err := Compile("/user/:id/docs/*")
	require.NoError(t, err)
	b, err := Compile("/user/:id/docs/*")
	require.NoError(t, err)

	assert.Equal(t, a.Source(), b.Source())
	assert.Equal(t, a.Segments(), b.Segments())
	assert.Equal(t, a.Specificity(), b.Specificity())
}

// TestSpecificityOrdering verifies that more concrete templates score
// strictly higher than more general ones matching the same paths.
func TestSpecificityOrdering(t *testing.T) {
	moreSpecific := [][2]string{
		{"/user/settings", "/user/:id"},
		{"/user/:id", "/user/:id?"},
		{"/user/:id?", "/user/*"},
		{"/a/b/c", "/a/b"},
		{"/docs/api", "/docs/*"},
		// Broadening a template with an optional or wildcard tail must not
		// raise its rank: the base template stays more specific.
		{"/a/:x", "/a/:x/*"},
		{"/a/:x", "/a/:x/:y?"},
		{"/a/b", "/a/b/:x?"},
		{"/a/b", "/a/b/*"},
		{"/", "/:x?"},
	}

	for _, pair := range moreSpecific {
		hi := MustCompile(pair[0])
		lo := MustCompile(pair[1])
		assert.Greater(t, hi.Specificity(), lo.Specificity(),
			"%s should outrank %s", pair[0], pair[1])
	}
}

// TestMatch covers the core matching semantics per segment kind.
func TestMatch(t *testing.T) {
	tests := []struct {
		template string
		path     []string
		want     map[string]string // nil = no match
	}{
		{"/", nil, map[string]string{}},
		{"/about", []string{"about"}, map[string]string{}},
		{"/about", []string{"contact"}, nil},
		{"/about", nil, nil},
		{"/user/:id", []string{"user", "42"}, map[string]string{"id": "42"}},
		{"/user/:id", []string{"user"}, nil},
		{"/user/:id", []string{"user", "42", "x"}, nil},
		{"/search/:q?", []string{"search"}, map[string]string{}},
		{"/search/:q?", []string{"search", "term"}, map[string]string{"q": "term"}},
		{"/docs/*", []string{"docs", "a", "b", "c"}, map[string]string{WildcardParam: "a/b/c"}},
		{"/docs/*", []string{"docs"}, map[string]string{WildcardParam: ""}},
		{"/docs/*", []string{"guides"}, nil},
		{"/a/:x?/b", []string{"a", "b"}, map[string]string{}},
		{"/a/:x?/b", []string{"a", "v", "b"}, map[string]string{"x": "v"}},
	}

	for _, tt := range tests {
		p := MustCompile(tt.template)
		caps, ok := p.Match(tt.path)
		if tt.want == nil {
			assert.False(t, ok, "%s should not match %v", tt.template, tt.path)
			continue
		}
		require.True(t, ok, "%s should match %v", tt.template, tt.path)
		got := make(map[string]string, len(caps))
		for _, c := range caps {
			got[c.Key] = c.Value
		}
		assert.Equal(t, tt.want, got, "%s against %v", tt.template, tt.path)
	}
}

// TestMatchCaptureOrder verifies captures come back in declaration order.
func TestMatchCaptureOrder(t *testing.T) {
	p := MustCompile("/a/:first/b/:second/:third?")
	caps, ok := p.Match([]string{"a", "1", "b", "2", "3"})
	require.True(t, ok)
	require.Len(t, caps, 3)
	assert.Equal(t, "first", caps[0].Key)
	assert.Equal(t, "second", caps[1].Key)
	assert.Equal(t, "third", caps[2].Key)
}

// TestSegmentBounds verifies candidate pruning bounds.
func TestSegmentBounds(t *testing.T) {
	tests := []struct {
		template string
		min, max int
	}{
		{"/", 0, 0},
		{"/a/b", 2, 2},
		{"/a/:x", 2, 2},
		{"/a/:x?", 1, 2},
		{"/a/*", 1, -1},
	}
	for _, tt := range tests {
		p := MustCompile(tt.template)
		minSeg, maxSeg := p.SegmentBounds()
		assert.Equal(t, tt.min, minSeg, "min for %s", tt.template)
		assert.Equal(t, tt.max, maxSeg, "max for %s", tt.template)
	}
}

// TestMustCompilePanics verifies MustCompile panics on bad templates.
func TestMustCompilePanics(t *testing.T) {
	assert.Panics(t, func() { MustCompile("/docs/*/edit") })
}

func TestBloomFilter(t *testing.T) {
	bf := NewBloomFilter(1024, 3)
	paths := []string{"/", "/about", "/user/settings", "/docs/api"}
	for _, p := range paths {
		bf.Add(p)
	}
	for _, p := range paths {
		assert.True(t, bf.Test(p), "added path %s must test positive", p)
	}

	// A handful of unregistered paths should mostly test negative; with
	// 1024 bits and 4 entries, false positives are effectively impossible.
	assert.False(t, bf.Test("/definitely/not/registered"))
	assert.False(t, bf.Test("/missing"))

	bf.Reset()
	assert.False(t, bf.Test("/about"))
}
