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

// Package pattern compiles route path templates into matchable patterns.
//
// A template is a slash-separated path where each segment is one of:
//
//   - literal text ("users", "settings")  → static segment
//   - ":name"                             → required parameter
//   - ":name?"                            → optional parameter
//   - "*" (final segment only)            → wildcard, captures the remainder
//
// Compilation is pure and deterministic: the same template text always
// produces an identical pattern. Matcher code upstream relies on this when
// caching match results.
//
// Each compiled pattern carries a specificity score so that callers can rank
// overlapping templates: static segments weigh more than required parameters,
// which weigh more than optional parameters, which weigh more than wildcards.
//
// Example:
//
//	p, err := pattern.Compile("/user/:id/posts/:post?")
//	if err != nil {
//	    return err
//	}
//	caps, ok := p.Match([]string{"user", "42", "posts"})
//	// ok == true, caps == [{id 42}]
package pattern
