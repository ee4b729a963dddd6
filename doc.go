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

// Package wayfarer is a path-routing and navigation-pipeline core.
//
// Given a registered set of route templates and an incoming path, it
// determines which template matches, extracts structured parameters, and
// runs a pipeline of navigation middleware before exposing a terminal
// outcome. It deliberately stops there: rendering, history/URL storage, and
// framework bindings are external collaborators that consume the outcome.
//
// # Matching
//
// Templates support static segments, named parameters (":id"), optional
// parameters (":q?"), and a trailing wildcard ("*"). Overlapping templates
// are ranked by specificity (static beats param beats optional beats
// wildcard), with ties resolved in favor of the most recent registration:
//
//	m := wayfarer.MustNewMatcher()
//	_ = m.AddRoute(&wayfarer.RouteTemplate{Path: "/user/:id"})
//	_ = m.AddRoute(&wayfarer.RouteTemplate{Path: "/user/settings"})
//
//	res := m.Match("/user/settings") // resolves to the static template
//	res = m.Match("/user/42")        // params: id=42
//
// Match results, including misses, are cached in an LRU result cache with
// adaptive capacity, so repeated navigations skip the pattern scan
// entirely. Cache behavior is visible through Matcher.Stats.
//
// # Navigation pipeline
//
// Middleware runs onion-style around a per-navigation RouteContext: code
// before next() is entry-side, code after next() runs once all inner
// handlers have settled.
//
//	nav := wayfarer.MustNewNavigator(m)
//	nav.Pipeline().
//	    Use(authGuard, wayfarer.WithName("auth"), wayfarer.WithPriority(10)).
//	    Use(analytics, wayfarer.WithName("analytics"))
//
//	outcome := nav.Navigate(ctx, "/user/42?tab=posts")
//	switch outcome.Kind {
//	case wayfarer.OutcomeProceeded:
//	    // update history / render
//	case wayfarer.OutcomeRedirected:
//	    outcome = nav.Navigate(ctx, outcome.RedirectTo)
//	}
//
// Handlers abort, redirect, or fail a navigation through the RouteContext;
// failures are reported to OnError observers and never panic across the
// Execute boundary. Rapid repeated navigations are safe: a superseded
// in-flight attempt settles as Aborted without committing shared state.
//
// # Observability
//
// Navigations can run under OpenTelemetry spans (WithTracerProvider), and
// MetricsCollector exposes matcher, cache, and pipeline counters as a
// prometheus.Collector. Both are opt-in and cost nothing when unused.
package wayfarer
