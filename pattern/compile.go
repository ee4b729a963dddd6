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
	"fmt"
	"strings"
)

// Compile parses a route template into an immutable Pattern.
//
// The template must begin with '/'. The root template "/" compiles to a
// pattern with zero segments. Compilation fails with a sentinel error
// (wrapped with the offending template text) when:
//
//   - the template is empty or does not begin with '/' (ErrEmptyTemplate,
//     ErrMalformedSegment)
//   - a wildcard appears anywhere but the final segment (ErrWildcardNotLast)
//   - a parameter name repeats within the template (ErrDuplicateParam)
//   - a segment containing ':' or '*' matches no recognized form
//     (ErrMalformedSegment)
//
// Compile never partially succeeds: on error the returned pattern is nil.
func Compile(template string) (*Pattern, error) {
	trimmed := strings.TrimSpace(template)
	if trimmed == "" {
		return nil, fmt.Errorf("%w: %q", ErrEmptyTemplate, template)
	}
	if trimmed[0] != '/' {
		return nil, fmt.Errorf("%w: template must begin with '/': %q", ErrMalformedSegment, template)
	}

	raw := splitSegments(trimmed)
	segments := make([]Segment, 0, len(raw))
	seen := make(map[string]struct{}, len(raw))
	specificity := 0
	paramCount := 0
	hasWildcard := false

	for i, text := range raw {
		isLast := i == len(raw)-1

		seg, err := classifySegment(text)
		if err != nil {
			return nil, fmt.Errorf("%w in template %q", err, template)
		}

		switch seg.Kind {
		case KindWildcard:
			if !isLast {
				return nil, fmt.Errorf("%w: %q", ErrWildcardNotLast, template)
			}
			hasWildcard = true
			specificity += weightWildcard
		case KindStatic:
			specificity += weightStatic
		case KindParam:
			specificity += weightParam
		case KindOptionalParam:
			specificity += weightOptional
		}

		if seg.Name != "" {
			if _, dup := seen[seg.Name]; dup {
				return nil, fmt.Errorf("%w: %q in template %q", ErrDuplicateParam, seg.Name, template)
			}
			seen[seg.Name] = struct{}{}
			paramCount++
		}

		segments = append(segments, seg)
	}

	// Precompute, for each position, how many later segments must consume a
	// path segment. Optional params use this to decide whether to consume.
	minAfter := make([]int, len(segments))
	required := 0
	for i := len(segments) - 1; i >= 0; i-- {
		minAfter[i] = required
		if segments[i].Kind == KindStatic || segments[i].Kind == KindParam {
			required++
		}
	}

	return &Pattern{
		source:      trimmed,
		segments:    segments,
		specificity: specificity,
		paramCount:  paramCount,
		minAfter:    minAfter,
		minSegments: required,
		hasWildcard: hasWildcard,
	}, nil
}

// MustCompile compiles a template and panics on error. Intended for
// package-level pattern variables with known-good templates.
func MustCompile(template string) *Pattern {
	p, err := Compile(template)
	if err != nil {
		panic(fmt.Sprintf("pattern.MustCompile: %v", err))
	}
	return p
}

// splitSegments splits a path into its non-empty segments. Duplicate slashes
// produce no empty segments, so "/a//b" and "/a/b" compile identically.
func splitSegments(path string) []string {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	out := parts[:0]
	for _, part := range parts {
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

// classifySegment maps one raw segment to its compiled descriptor.
func classifySegment(text string) (Segment, error) {
	if text == "*" {
		return Segment{Kind: KindWildcard, Name: WildcardParam}, nil
	}

	if strings.HasPrefix(text, ":") {
		name := text[1:]
		kind := KindParam
		if strings.HasSuffix(name, "?") {
			name = name[:len(name)-1]
			kind = KindOptionalParam
		}
		if !validParamName(name) {
			return Segment{}, fmt.Errorf("%w: %q", ErrMalformedSegment, text)
		}
		return Segment{Kind: kind, Name: name}, nil
	}

	// Static segments may not smuggle parameter or wildcard markers.
	if strings.ContainsAny(text, ":*?") {
		return Segment{}, fmt.Errorf("%w: %q", ErrMalformedSegment, text)
	}

	return Segment{Kind: KindStatic, Literal: text}, nil
}

// validParamName reports whether name is a non-empty identifier limited to
// ASCII letters, digits, and underscores.
func validParamName(name string) bool {
	if name == "" {
		return false
	}
	for i := 0; i < len(name); i++ {
		c := name[i]
		switch {
		case c >= 'a' && c <= 'z':
		case c >= 'A' && c <= 'Z':
		case c >= '0' && c <= '9':
		case c == '_':
		default:
			return false
		}
	}
	return true
}
