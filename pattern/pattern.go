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

import "strings"

// Kind identifies the matching behavior of a single template segment.
type Kind uint8

const (
	// KindStatic matches one path segment by exact string equality.
	KindStatic Kind = iota

	// KindParam matches exactly one path segment and captures it.
	KindParam

	// KindOptionalParam matches zero or one path segment and captures it
	// when present.
	KindOptionalParam

	// KindWildcard matches the entire remaining path (possibly empty) and
	// captures it as a single joined value. Always the final segment.
	KindWildcard
)

// String returns a human-readable name for the segment kind.
func (k Kind) String() string {
	switch k {
	case KindStatic:
		return "static"
	case KindParam:
		return "param"
	case KindOptionalParam:
		return "optionalParam"
	case KindWildcard:
		return "wildcard"
	default:
		return "unknown"
	}
}

// Specificity weights per segment kind. Static segments weigh most, then
// required params. Optional params and wildcards carry negative weight:
// they broaden what a template accepts, so a template extended with them
// must rank strictly below the base template it extends for any path both
// match. Within the negatives, an optional still outranks a wildcard.
const (
	weightStatic   = 10
	weightParam    = 4
	weightOptional = -1
	weightWildcard = -2
)

// WildcardParam is the capture name used for wildcard segments.
const WildcardParam = "pathMatch"

// Segment is one compiled descriptor of a template.
type Segment struct {
	Kind    Kind
	Literal string // Exact text for static segments
	Name    string // Capture name for param, optionalParam, and wildcard segments
}

// Capture is a single extracted parameter. Captures are produced in
// declaration order, which is why they are a slice rather than a map.
type Capture struct {
	Key   string
	Value string
}

// Pattern is a compiled route template. Patterns are immutable after
// compilation; to change a template, compile a new pattern.
type Pattern struct {
	source      string
	segments    []Segment
	specificity int
	paramCount  int

	// minAfter[i] is the number of segments after index i that must consume
	// a path segment (static and required param). Used to decide whether an
	// optional parameter may consume the current path segment.
	minAfter []int

	minSegments int
	hasWildcard bool
}

// Source returns the original template text the pattern was compiled from.
func (p *Pattern) Source() string { return p.source }

// Segments returns the compiled segment descriptors in template order.
// The returned slice must not be modified.
func (p *Pattern) Segments() []Segment { return p.segments }

// Specificity returns the summed specificity score of the pattern.
func (p *Pattern) Specificity() int { return p.specificity }

// HasWildcard reports whether the pattern ends in a wildcard segment.
func (p *Pattern) HasWildcard() bool { return p.hasWildcard }

// IsStatic reports whether every segment is a literal, meaning the pattern
// matches exactly one path and is eligible for exact-match table lookup.
func (p *Pattern) IsStatic() bool { return p.paramCount == 0 && !p.hasWildcard }

// ParamCount returns the number of capturing segments (params, optional
// params, and the wildcard).
func (p *Pattern) ParamCount() int { return p.paramCount }

// SegmentBounds returns the minimum and maximum number of path segments the
// pattern can match. Max is -1 for wildcard patterns (unbounded). Matchers
// use the bounds to reject candidates without running a full match.
func (p *Pattern) SegmentBounds() (minSeg, maxSeg int) {
	if p.hasWildcard {
		return p.minSegments, -1
	}
	return p.minSegments, len(p.segments)
}

// Match attempts to match the pattern against pre-split path segments.
// Segments must already be normalized: no empty entries, no leading or
// trailing slash artifacts. On success it returns the extracted captures in
// declaration order. Absent optional parameters produce no capture.
//
// Match never mutates the pattern and is safe for concurrent use.
func (p *Pattern) Match(segments []string) ([]Capture, bool) {
	var caps []Capture
	if p.paramCount > 0 {
		caps = make([]Capture, 0, p.paramCount)
	}

	si := 0
	for i := range p.segments {
		seg := &p.segments[i]
		switch seg.Kind {
		case KindStatic:
			if si >= len(segments) || segments[si] != seg.Literal {
				return nil, false
			}
			si++

		case KindParam:
			if si >= len(segments) {
				return nil, false
			}
			caps = append(caps, Capture{Key: seg.Name, Value: segments[si]})
			si++

		case KindOptionalParam:
			// Consume a segment only if one is available beyond what the
			// remaining required segments need.
			if si < len(segments) && len(segments)-si > p.minAfter[i] {
				caps = append(caps, Capture{Key: seg.Name, Value: segments[si]})
				si++
			}

		case KindWildcard:
			// Wildcard is always last: capture the remainder, even if empty.
			caps = append(caps, Capture{Key: seg.Name, Value: strings.Join(segments[si:], "/")})
			return caps, true
		}
	}

	// Full match requires that no unmatched trailing segments remain.
	if si != len(segments) {
		return nil, false
	}

	return caps, true
}
