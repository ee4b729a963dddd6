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
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// OutcomeKind classifies how a navigation attempt settled.
type OutcomeKind int

const (
	// OutcomeProceeded means the pipeline ran to completion and the target
	// location became current.
	OutcomeProceeded OutcomeKind = iota

	// OutcomeRedirected means a handler requested a redirect. The caller
	// decides whether to follow it with a new Navigate call.
	OutcomeRedirected

	// OutcomeAborted means a handler aborted the navigation, or a newer
	// navigation superseded it. Not an error.
	OutcomeAborted

	// OutcomeFailed means a handler failed; Outcome.Err carries the error.
	OutcomeFailed
)

// String returns a stable lowercase name for the outcome kind.
func (k OutcomeKind) String() string {
	switch k {
	case OutcomeProceeded:
		return "proceeded"
	case OutcomeRedirected:
		return "redirected"
	case OutcomeAborted:
		return "aborted"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Outcome is the terminal result of one navigation attempt. External
// collaborators (history store, view layer) act on it; the core never
// follows redirects itself.
type Outcome struct {
	Kind       OutcomeKind
	To         Location
	From       Location
	Result     *MatchResult // nil when no template matched
	RedirectTo string
	Err        error
	Duration   time.Duration
	Superseded bool
}

// Navigator orchestrates a navigation attempt: it resolves the target path
// through the matcher (cache-checked), builds the RouteContext, runs the
// middleware pipeline, and reports the terminal outcome.
//
// Concurrent navigations are allowed: each attempt gets a monotonically
// increasing sequence number, and an attempt that is superseded before it
// settles aborts without committing the current-location pointer.
type Navigator struct {
	matcher  *Matcher
	pipeline *Composer
	seq      atomic.Uint64
	current  atomic.Pointer[Location]
	tracer   trace.Tracer
	recorder NavigationRecorder
	logger   *slog.Logger
}

// NewNavigator creates a navigator over the given matcher. A fresh empty
// pipeline is created unless one is supplied with WithPipeline.
func NewNavigator(matcher *Matcher, opts ...NavigatorOption) (*Navigator, error) {
	if matcher == nil {
		return nil, fmt.Errorf("navigator configuration validation failed: matcher is nil")
	}
	n := &Navigator{
		matcher: matcher,
		logger:  noopLogger,
	}
	for _, opt := range opts {
		opt(n)
	}
	if n.pipeline == nil {
		n.pipeline = NewComposer()
	}
	return n, nil
}

// MustNewNavigator creates a navigator and panics on invalid configuration.
func MustNewNavigator(matcher *Matcher, opts ...NavigatorOption) *Navigator {
	n, err := NewNavigator(matcher, opts...)
	if err != nil {
		panic(fmt.Sprintf("wayfarer.MustNewNavigator: %v", err))
	}
	return n
}

// Pipeline returns the navigator's middleware composer for registration.
func (n *Navigator) Pipeline() *Composer {
	return n.pipeline
}

// Matcher returns the underlying route matcher.
func (n *Navigator) Matcher() *Matcher {
	return n.matcher
}

// CurrentLocation returns a copy of the committed current location, or nil
// before the first successful navigation.
func (n *Navigator) CurrentLocation() *Location {
	loc := n.current.Load()
	if loc == nil {
		return nil
	}
	copied := *loc
	return &copied
}

// Navigate runs one navigation attempt to rawTarget, which may carry a
// query string and fragment ("/user/7?tab=posts#bio").
//
// The attempt settles exactly once. Handler failures surface on
// Outcome.Err, not as panics or returned Go errors; a superseded attempt
// settles as Aborted with Superseded set.
func (n *Navigator) Navigate(ctx context.Context, rawTarget string) *Outcome {
	seq := n.seq.Add(1)
	start := time.Now()

	from := Location{}
	if cur := n.CurrentLocation(); cur != nil {
		from = *cur
	}

	to, parseErr := parseTarget(rawTarget)
	if parseErr != nil {
		return &Outcome{
			Kind:     OutcomeFailed,
			To:       Location{Path: rawTarget},
			From:     from,
			Err:      parseErr,
			Duration: time.Since(start),
		}
	}

	result := n.matcher.Match(to.Path)
	to.Path = NormalizePath(to.Path)
	if result != nil {
		to.Params = result.Params
		to.Matched = result.Chain
	}

	rc := NewRouteContext(to, from)
	rc.StartTime = start
	rc.seq = seq
	rc.superseded = func() bool { return n.seq.Load() != seq }
	if leaf := result.Leaf(); leaf != nil {
		rc.Meta = leaf.Meta
	}

	if n.tracer != nil {
		var span trace.Span
		ctx, span = n.tracer.Start(ctx, "wayfarer.navigate",
			trace.WithAttributes(
				attribute.String("route.path", to.Path),
				attribute.String("route.pattern", patternOf(result)),
			))
		rc.span = span
		defer span.End()
	}

	var recorderState any
	if n.recorder != nil {
		ctx, recorderState = n.recorder.OnNavigationStart(ctx, rc)
	}

	_ = n.pipeline.Execute(ctx, rc)

	outcome := n.settle(rc, result, seq, start)

	if rc.span != nil {
		rc.span.SetAttributes(attribute.String("navigation.outcome", outcome.Kind.String()))
		if outcome.Err != nil {
			rc.span.RecordError(outcome.Err)
			rc.span.SetStatus(codes.Error, outcome.Err.Error())
		}
	}
	if n.recorder != nil {
		n.recorder.OnNavigationEnd(ctx, recorderState, outcome)
	}

	n.logger.Debug("navigation settled",
		slog.String("path", outcome.To.Path),
		slog.String("outcome", outcome.Kind.String()),
		slog.Duration("duration", outcome.Duration))

	return outcome
}

// settle classifies the settled context and commits the current-location
// pointer for proceeded attempts that are still the latest.
func (n *Navigator) settle(rc *RouteContext, result *MatchResult, seq uint64, start time.Time) *Outcome {
	outcome := &Outcome{
		To:       rc.To,
		From:     rc.From,
		Result:   result,
		Duration: time.Since(start),
	}

	switch {
	case n.seq.Load() != seq:
		// A newer navigation took over while this one was in flight.
		// Settle silently as aborted; shared state is untouched.
		outcome.Kind = OutcomeAborted
		outcome.Superseded = true

	case rc.Err() != nil:
		outcome.Kind = OutcomeFailed
		outcome.Err = rc.Err()

	case rc.RedirectTarget() != "":
		outcome.Kind = OutcomeRedirected
		outcome.RedirectTo = rc.RedirectTarget()

	case rc.IsAborted():
		outcome.Kind = OutcomeAborted

	default:
		outcome.Kind = OutcomeProceeded
		committed := rc.To
		n.current.Store(&committed)
	}

	return outcome
}

// parseTarget splits a raw navigation target into path, query, and hash.
func parseTarget(raw string) (Location, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return Location{}, fmt.Errorf("parse navigation target %q: %w", raw, err)
	}
	return Location{
		Path:  u.Path,
		Query: u.Query(),
		Hash:  u.Fragment,
	}, nil
}

func patternOf(result *MatchResult) string {
	if result == nil {
		return "_unmatched"
	}
	return result.Pattern
}
