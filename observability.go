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
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// instrumentationName identifies this library to OpenTelemetry.
const instrumentationName = "github.com/wayfarer-dev/wayfarer"

// NavigationRecorder provides lifecycle hooks around navigation attempts.
// Implementations typically record metrics or write access-log style lines.
//
// Lifecycle:
//  1. Navigator calls OnNavigationStart(ctx, rc) → (enrichedCtx, state)
//  2. The pipeline executes with the enriched context
//  3. Navigator calls OnNavigationEnd(ctx, state, outcome)
//
// The state token is opaque to the navigator; it is simply handed back to
// OnNavigationEnd. Both methods must be safe for concurrent use, since
// overlapping navigations are allowed.
type NavigationRecorder interface {
	OnNavigationStart(ctx context.Context, rc *RouteContext) (context.Context, any)
	OnNavigationEnd(ctx context.Context, state any, outcome *Outcome)
}

// NavigatorOption defines functional options for navigator configuration.
type NavigatorOption func(*Navigator)

// WithPipeline supplies a pre-built middleware composer. Useful when the
// pipeline is assembled before the navigator, or shared between tests.
func WithPipeline(pipeline *Composer) NavigatorOption {
	return func(n *Navigator) {
		if pipeline != nil {
			n.pipeline = pipeline
		}
	}
}

// WithTracerProvider enables OpenTelemetry tracing of navigations using the
// given provider. Each Navigate call runs under a "wayfarer.navigate" span
// carrying the route path, matched pattern, and final outcome; middleware
// can attach events via RouteContext.Span.
func WithTracerProvider(tp trace.TracerProvider) NavigatorOption {
	return func(n *Navigator) {
		if tp != nil {
			n.tracer = tp.Tracer(instrumentationName)
		}
	}
}

// WithTracing enables tracing using the global OpenTelemetry provider.
func WithTracing() NavigatorOption {
	return func(n *Navigator) {
		n.tracer = otel.Tracer(instrumentationName)
	}
}

// WithNavigationRecorder attaches lifecycle hooks to the navigator.
// Pass nil to disable.
func WithNavigationRecorder(recorder NavigationRecorder) NavigatorOption {
	return func(n *Navigator) {
		n.recorder = recorder
	}
}

// WithNavigatorLogger sets the structured logger for navigation events.
// Default: a no-op logger.
func WithNavigatorLogger(logger *slog.Logger) NavigatorOption {
	return func(n *Navigator) {
		if logger != nil {
			n.logger = logger
		}
	}
}
