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
	"io"
	"log/slog"
	"time"
)

// noopLogger is a singleton no-op logger used when no logging is configured.
var noopLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// NoopLogger returns the singleton no-op logger.
func NoopLogger() *slog.Logger {
	return noopLogger
}

// MatcherOption defines functional options for matcher configuration.
type MatcherOption func(*Matcher, *cacheConfig)

// WithCacheCapacity sets the initial result cache capacity.
//
// Default: 128. Must lie within the configured bounds or NewMatcher fails.
//
// Example:
//
//	m := wayfarer.MustNewMatcher(wayfarer.WithCacheCapacity(512))
func WithCacheCapacity(capacity int) MatcherOption {
	return func(_ *Matcher, cfg *cacheConfig) {
		cfg.capacity = capacity
	}
}

// WithCacheBounds sets the [min, max] range the adaptive sizing pass may
// move the cache capacity within.
//
// Default: [16, 4096]. Validation fails when min <= 0 or min > max.
func WithCacheBounds(minCapacity, maxCapacity int) MatcherOption {
	return func(_ *Matcher, cfg *cacheConfig) {
		cfg.minCapacity = minCapacity
		cfg.maxCapacity = maxCapacity
	}
}

// WithCacheMaxAge sets how long a cached result stays valid. Entries older
// than maxAge are treated as absent on lookup and dropped lazily.
//
// Default: 0 (entries never go stale).
func WithCacheMaxAge(maxAge time.Duration) MatcherOption {
	return func(_ *Matcher, cfg *cacheConfig) {
		cfg.maxAge = maxAge
	}
}

// WithCacheOptimizeInterval sets the minimum interval between adaptive
// sizing passes. The pass inspects the running hit rate and moves capacity
// toward the configured bounds; rate limiting it prevents oscillation.
//
// Default: 30s. Zero disables adaptive sizing.
func WithCacheOptimizeInterval(interval time.Duration) MatcherOption {
	return func(_ *Matcher, cfg *cacheConfig) {
		cfg.optimizeInterval = interval
	}
}

// WithoutCache disables the result cache entirely. Every Match performs a
// full scan. Mostly useful for debugging and benchmarking the raw matcher.
func WithoutCache() MatcherOption {
	return func(m *Matcher, _ *cacheConfig) {
		m.useCache = false
	}
}

// WithBloomFilterSize sets the bloom filter bit count for the static-path
// fast path. Larger sizes reduce false positives.
//
// Default: 1024. Recommended: about 10 bits per static route.
func WithBloomFilterSize(size uint64) MatcherOption {
	return func(m *Matcher, _ *cacheConfig) {
		m.bloomSize = size
	}
}

// WithMatcherLogger sets the structured logger used for registry events.
// Default: a no-op logger.
func WithMatcherLogger(logger *slog.Logger) MatcherOption {
	return func(m *Matcher, _ *cacheConfig) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// cacheClock overrides the cache's time source. Test hook.
func cacheClock(now func() time.Time) MatcherOption {
	return func(_ *Matcher, cfg *cacheConfig) {
		cfg.now = now
	}
}
