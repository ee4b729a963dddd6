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
	"net/url"
	"time"

	"go.opentelemetry.io/otel/trace"
)

// Location describes one navigation endpoint: where a navigation goes to or
// comes from. External callers construct the initial locations; the core
// fills Params and Matched from the match result.
type Location struct {
	Path    string
	Params  Params
	Query   url.Values
	Hash    string
	Matched []*RouteTemplate // matched chain root→leaf, nil when unresolved
}

// RouteContext is the per-navigation state threaded through the middleware
// pipeline. It is created for a single navigation attempt, owned by that
// attempt's pipeline execution, and discarded when the pipeline settles.
//
// RouteContext is not safe for concurrent use; the pipeline model is
// cooperative and sequential within one execution.
type RouteContext struct {
	// To is the navigation target.
	To Location

	// From is the navigation source (the current location).
	From Location

	// Meta is the target leaf template's metadata, nil when unmatched.
	Meta map[string]any

	// StartTime is when the navigation attempt began.
	StartTime time.Time

	state      map[string]any
	aborted    bool
	redirectTo string
	err        error
	span       trace.Span
	seq        uint64
	superseded func() bool
}

// NewRouteContext builds a context for a navigation from `from` to `to`.
// Middleware state starts empty.
func NewRouteContext(to, from Location) *RouteContext {
	return &RouteContext{
		To:        to,
		From:      from,
		StartTime: time.Now(),
	}
}

// Set stores a value in the inter-middleware key/value store.
func (c *RouteContext) Set(key string, value any) {
	if c.state == nil {
		c.state = make(map[string]any, 4)
	}
	c.state[key] = value
}

// Get returns a value from the inter-middleware store and whether it exists.
func (c *RouteContext) Get(key string) (any, bool) {
	v, ok := c.state[key]
	return v, ok
}

// GetString returns a string value from the store, or "" when absent or not
// a string.
func (c *RouteContext) GetString(key string) string {
	if v, ok := c.state[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// Abort marks the navigation as aborted. Once set, the flag is terminal: no
// further middleware runs, regardless of what a later handler attempts.
func (c *RouteContext) Abort() {
	c.aborted = true
}

// IsAborted reports whether the navigation has been aborted.
func (c *RouteContext) IsAborted() bool {
	return c.aborted
}

// Redirect requests a redirect to the given path and stops the chain after
// the current handler returns. Redirecting is not an error.
func (c *RouteContext) Redirect(to string) {
	c.redirectTo = to
}

// RedirectTarget returns the requested redirect path, or "" if none.
func (c *RouteContext) RedirectTarget() string {
	return c.redirectTo
}

// Err returns the handler error recorded on this navigation, or nil.
func (c *RouteContext) Err() error {
	return c.err
}

// setErr records a handler failure. First error wins.
func (c *RouteContext) setErr(err error) {
	if c.err == nil {
		c.err = err
	}
}

// Span returns the OpenTelemetry span covering this navigation. It is a
// no-op span unless the navigator was configured with a tracer.
func (c *RouteContext) Span() trace.Span {
	if c.span == nil {
		return trace.SpanFromContext(context.Background())
	}
	return c.span
}

// Sequence returns the navigation sequence number assigned by the navigator,
// or 0 for contexts built outside a navigator.
func (c *RouteContext) Sequence() uint64 {
	return c.seq
}

// Superseded reports whether a newer navigation has been initiated since
// this one started. The pipeline consults this before every handler; a
// superseded navigation settles as aborted without side effects.
func (c *RouteContext) Superseded() bool {
	return c.superseded != nil && c.superseded()
}

// Elapsed returns the time since the navigation attempt began.
func (c *RouteContext) Elapsed() time.Duration {
	return time.Since(c.StartTime)
}
