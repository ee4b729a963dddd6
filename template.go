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

import "strings"

// RouteTemplate is a raw route definition before compilation.
//
// Templates may nest: each child's effective path is the parent path joined
// with the child's own path, and a match against a nested template reports
// the whole root→leaf chain. Templates are treated as immutable once
// registered with a Matcher; to change one, remove it and register a
// replacement.
type RouteTemplate struct {
	// Path is the template text, e.g. "/user/:id/profile", "/search/:q?",
	// or "/docs/*". Child paths are relative to the parent.
	Path string

	// Name optionally identifies the template for removal and lookup.
	Name string

	// Meta carries caller-defined metadata. The matcher never interprets it;
	// middleware typically reads it off the matched chain.
	Meta map[string]any

	// Children are nested templates rooted under this template's path.
	Children []*RouteTemplate
}

// joinPaths joins a parent path and a child path, keeping exactly one slash
// at the seam. An empty child yields the parent itself (an index child).
func joinPaths(parent, child string) string {
	child = strings.TrimSpace(child)
	if child == "" || child == "/" {
		return parent
	}
	parent = strings.TrimSuffix(parent, "/")
	if !strings.HasPrefix(child, "/") {
		child = "/" + child
	}
	if parent == "" {
		return child
	}
	return parent + child
}
