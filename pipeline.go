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
	"sort"
	"sync"
	"sync/atomic"
)

// Next resumes the remaining middleware chain. Code after the Next call in a
// handler runs once every inner handler has settled, which gives each
// handler a "before" and an "after" side around the rest of the chain.
type Next func() error

// Handler is a navigation middleware. It may inspect and mutate the
// RouteContext, call next to yield to inner handlers, abort, redirect, or
// return an error to fail the navigation.
//
// Calling next is optional: a handler with no exit-side logic can simply
// return and the chain advances on its own.
type Handler func(ctx context.Context, rc *RouteContext, next Next) error

// ErrorObserver is invoked when a handler fails during Execute.
type ErrorObserver func(err error, rc *RouteContext)

// Condition is an applicability predicate: a handler whose condition
// evaluates false for a context is skipped without stopping the chain.
type Condition func(rc *RouteContext) bool

// middlewareEntry pairs a handler with its registration configuration.
type middlewareEntry struct {
	handler  Handler
	name     string
	priority int
	enabled  bool
	applies  Condition
}

// MiddlewareInfo describes a registered middleware for introspection.
type MiddlewareInfo struct {
	Name     string `json:"name"`
	Priority int    `json:"priority"`
	Enabled  bool   `json:"enabled"`
}

// PipelineStats is a snapshot of composer counters.
type PipelineStats struct {
	Total      int    `json:"total"`
	Active     int    `json:"active"`
	Executions uint64 `json:"executions"`
}

// UseOption configures a single middleware registration.
type UseOption func(*middlewareEntry)

// WithName names a middleware. Re-registering under the same name replaces
// the previous entry; named middleware can be removed with Remove.
func WithName(name string) UseOption {
	return func(e *middlewareEntry) {
		e.name = name
	}
}

// WithPriority sets the execution priority. Higher priorities run earlier;
// ties fall back to registration order.
func WithPriority(priority int) UseOption {
	return func(e *middlewareEntry) {
		e.priority = priority
	}
}

// WithCondition attaches an applicability predicate evaluated per context
// before the handler runs.
func WithCondition(cond Condition) UseOption {
	return func(e *middlewareEntry) {
		e.applies = cond
	}
}

// Disabled registers the middleware disabled. Disabled entries keep their
// position but are skipped during execution.
func Disabled() UseOption {
	return func(e *middlewareEntry) {
		e.enabled = false
	}
}

// Composer sequences middleware around a RouteContext, onion-style.
//
// Registrations are sorted by priority descending (registration order for
// ties); the sorted order is cached and only recomputed when the
// registration set changes, since most navigations reuse the same set.
// Administrative calls (Remove, Clear, Use) never alter an in-flight
// execution: Execute operates on the snapshot taken when it started.
type Composer struct {
	mu        sync.RWMutex
	entries   []*middlewareEntry
	sorted    []*middlewareEntry
	sortDirty bool
	observers []ErrorObserver

	executions atomic.Uint64
	logger     *slog.Logger
}

// NewComposer creates an empty middleware composer.
func NewComposer() *Composer {
	return &Composer{logger: noopLogger}
}

// SetLogger sets the structured logger used for observer failures.
func (cp *Composer) SetLogger(logger *slog.Logger) {
	if logger != nil {
		cp.logger = logger
	}
}

// Use registers a handler and returns the composer for chaining.
// A nil handler is a programming error and panics immediately, matching the
// policy that registration-time errors surface synchronously.
func (cp *Composer) Use(handler Handler, opts ...UseOption) *Composer {
	if handler == nil {
		panic(fmt.Sprintf("wayfarer: Composer.Use: %v", ErrHandlerNil))
	}

	entry := &middlewareEntry{handler: handler, enabled: true}
	for _, opt := range opts {
		opt(entry)
	}

	cp.mu.Lock()
	defer cp.mu.Unlock()

	if entry.name != "" {
		for i, existing := range cp.entries {
			if existing.name == entry.name {
				cp.entries[i] = entry
				cp.sortDirty = true
				return cp
			}
		}
	}
	cp.entries = append(cp.entries, entry)
	cp.sortDirty = true
	return cp
}

// OnError registers an error observer, invoked with (error, context) when a
// handler fails during Execute. Observers run in registration order; a
// panicking observer is logged and swallowed so it cannot mask the original
// failure.
func (cp *Composer) OnError(observer ErrorObserver) *Composer {
	if observer == nil {
		return cp
	}
	cp.mu.Lock()
	defer cp.mu.Unlock()
	cp.observers = append(cp.observers, observer)
	return cp
}

// Remove unregisters the named middleware and reports whether it existed.
func (cp *Composer) Remove(name string) bool {
	if name == "" {
		return false
	}
	cp.mu.Lock()
	defer cp.mu.Unlock()
	for i, e := range cp.entries {
		if e.name == name {
			cp.entries = append(cp.entries[:i], cp.entries[i+1:]...)
			cp.sortDirty = true
			return true
		}
	}
	return false
}

// Clear drops all middleware and error observers. Execution counters are
// kept; in-flight executions are unaffected.
func (cp *Composer) Clear() {
	cp.mu.Lock()
	defer cp.mu.Unlock()
	cp.entries = nil
	cp.sorted = nil
	cp.sortDirty = false
	cp.observers = nil
}

// Middlewares returns the registered middleware in execution order.
func (cp *Composer) Middlewares() []MiddlewareInfo {
	chain := cp.executionOrder()
	out := make([]MiddlewareInfo, len(chain))
	for i, e := range chain {
		out[i] = MiddlewareInfo{Name: e.name, Priority: e.priority, Enabled: e.enabled}
	}
	return out
}

// Stats returns composer counters.
func (cp *Composer) Stats() PipelineStats {
	cp.mu.RLock()
	total := len(cp.entries)
	active := 0
	for _, e := range cp.entries {
		if e.enabled {
			active++
		}
	}
	cp.mu.RUnlock()

	return PipelineStats{
		Total:      total,
		Active:     active,
		Executions: cp.executions.Load(),
	}
}

// Execute walks the sorted, enabled, applicable handlers around rc.
//
// Before invoking each handler the composer checks, in order: supersession
// (settles aborted), the aborted flag, a recorded error, and a pending
// redirect; any of these halts the chain. A handler failure (returned error
// or panic) is recorded on rc, reported to error observers exactly once,
// and halts the chain.
//
// Execute always settles the context cleanly. It returns the handler error
// only when no error observers are registered; otherwise the caller must
// inspect rc.Err(); Execute returning nil does not imply success.
func (cp *Composer) Execute(ctx context.Context, rc *RouteContext) error {
	cp.executions.Add(1)

	chain := cp.executionOrder()
	cp.mu.RLock()
	observers := cp.observers
	cp.mu.RUnlock()

	st := &execution{chain: chain, observers: observers, index: -1}
	_ = cp.advance(ctx, st, rc)

	if err := rc.Err(); err != nil && len(observers) == 0 {
		return err
	}
	return nil
}

// execution is the per-Execute state: the chain snapshot and the cursor.
type execution struct {
	chain     []*middlewareEntry
	observers []ErrorObserver
	index     int
}

// advance runs handlers from the cursor onward. It doubles as the Next
// continuation: a handler calling next recurses here, so the handler's
// remaining code runs after every inner handler has settled.
func (cp *Composer) advance(ctx context.Context, st *execution, rc *RouteContext) error {
	st.index++
	for st.index < len(st.chain) {
		if rc.Superseded() {
			rc.Abort()
			return nil
		}
		if rc.IsAborted() || rc.Err() != nil || rc.RedirectTarget() != "" {
			return rc.Err()
		}

		e := st.chain[st.index]
		if e.enabled && (e.applies == nil || e.applies(rc)) {
			err := cp.invoke(ctx, e, st, rc)
			if err != nil && rc.Err() == nil {
				rc.setErr(err)
				cp.notifyObservers(st.observers, err, rc)
			}
			if rc.Err() != nil {
				return rc.Err()
			}
		}
		st.index++
	}
	return nil
}

// invoke runs one handler, converting a panic into a handler error. This is
// the Go analog of catching a thrown exception at the point of failure.
func (cp *Composer) invoke(ctx context.Context, e *middlewareEntry, st *execution, rc *RouteContext) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("middleware %q panicked: %v", e.name, r)
		}
	}()
	return e.handler(ctx, rc, func() error {
		return cp.advance(ctx, st, rc)
	})
}

// notifyObservers reports a failure to every observer in registration order.
// Observer panics are logged and swallowed.
func (cp *Composer) notifyObservers(observers []ErrorObserver, err error, rc *RouteContext) {
	for _, observer := range observers {
		func() {
			defer func() {
				if r := recover(); r != nil {
					cp.logger.Error("error observer panicked",
						slog.Any("panic", r),
						slog.String("path", rc.To.Path))
				}
			}()
			observer(err, rc)
		}()
	}
}

// executionOrder returns the cached priority-sorted chain, recomputing it
// only when the registration set has changed.
func (cp *Composer) executionOrder() []*middlewareEntry {
	cp.mu.RLock()
	if !cp.sortDirty {
		sorted := cp.sorted
		cp.mu.RUnlock()
		return sorted
	}
	cp.mu.RUnlock()

	cp.mu.Lock()
	defer cp.mu.Unlock()
	if cp.sortDirty {
		cp.sorted = make([]*middlewareEntry, len(cp.entries))
		copy(cp.sorted, cp.entries)
		// Stable sort: equal priorities keep registration order.
		sort.SliceStable(cp.sorted, func(i, j int) bool {
			return cp.sorted[i].priority > cp.sorted[j].priority
		})
		cp.sortDirty = false
	}
	return cp.sorted
}
