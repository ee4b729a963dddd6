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

// Param is a single extracted route parameter. Parameters are kept as an
// ordered slice so that iteration order equals declaration order in the
// template, which a map would not guarantee.
type Param struct {
	Key   string
	Value string
}

// Params is an ordered list of extracted route parameters.
type Params []Param

// Get returns the value for the named parameter and whether it was present.
func (ps Params) Get(key string) (string, bool) {
	for i := range ps {
		if ps[i].Key == key {
			return ps[i].Value, true
		}
	}
	return "", false
}

// Value returns the value for the named parameter, or "" if absent.
func (ps Params) Value(key string) string {
	v, _ := ps.Get(key)
	return v
}

// Map returns the parameters as a plain map. Declaration order is lost;
// use the slice form when order matters.
func (ps Params) Map() map[string]string {
	if len(ps) == 0 {
		return nil
	}
	m := make(map[string]string, len(ps))
	for i := range ps {
		m[ps[i].Key] = ps[i].Value
	}
	return m
}

// MatchResult is the outcome of a successful match. It is a value object:
// freely copyable and never mutated after creation. A nil *MatchResult
// denotes "no match" (never an empty struct).
type MatchResult struct {
	// Chain holds the matched templates root→leaf. For non-nested templates
	// it has exactly one element.
	Chain []*RouteTemplate

	// Params holds the extracted parameters in declaration order. Values are
	// always strings; type coercion belongs to layers above this core.
	Params Params

	// Path is the normalized path that matched.
	Path string

	// Pattern is the effective template text the path matched against
	// (the leaf template's full path).
	Pattern string
}

// Leaf returns the innermost matched template, or nil for a nil result.
func (m *MatchResult) Leaf() *RouteTemplate {
	if m == nil || len(m.Chain) == 0 {
		return nil
	}
	return m.Chain[len(m.Chain)-1]
}

// clone returns a deep-enough copy: the chain and params slices are copied
// so cached results can never be mutated through a returned value. Template
// pointers are shared; templates are immutable once registered.
func (m *MatchResult) clone() *MatchResult {
	if m == nil {
		return nil
	}
	out := &MatchResult{
		Path:    m.Path,
		Pattern: m.Pattern,
	}
	if len(m.Chain) > 0 {
		out.Chain = make([]*RouteTemplate, len(m.Chain))
		copy(out.Chain, m.Chain)
	}
	if len(m.Params) > 0 {
		out.Params = make(Params, len(m.Params))
		copy(out.Params, m.Params)
	}
	return out
}
