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

import "github.com/prometheus/client_golang/prometheus"

// MetricsCollector exposes matcher, cache, and pipeline statistics as a
// prometheus.Collector. Register it with any registry:
//
//	collector := wayfarer.NewMetricsCollector(matcher, navigator.Pipeline())
//	prometheus.MustRegister(collector)
//
// Collection reads counter snapshots; it never blocks matching or pipeline
// execution beyond the stats mutexes.
type MetricsCollector struct {
	matcher  *Matcher
	composer *Composer

	matchesTotal    *prometheus.Desc
	cacheHitsTotal  *prometheus.Desc
	cacheMissTotal  *prometheus.Desc
	cacheEvictTotal *prometheus.Desc
	cacheSize       *prometheus.Desc
	cacheCapacity   *prometheus.Desc
	cacheHitRate    *prometheus.Desc
	routes          *prometheus.Desc
	executionsTotal *prometheus.Desc
	middlewares     *prometheus.Desc
}

// NewMetricsCollector builds a collector over a matcher and an optional
// composer (pass nil to skip pipeline metrics).
func NewMetricsCollector(matcher *Matcher, composer *Composer) *MetricsCollector {
	return &MetricsCollector{
		matcher:  matcher,
		composer: composer,
		matchesTotal: prometheus.NewDesc(
			"wayfarer_matches_total",
			"Total number of path match lookups.",
			nil, nil),
		cacheHitsTotal: prometheus.NewDesc(
			"wayfarer_cache_hits_total",
			"Match lookups served from the result cache.",
			nil, nil),
		cacheMissTotal: prometheus.NewDesc(
			"wayfarer_cache_misses_total",
			"Match lookups that missed the result cache.",
			nil, nil),
		cacheEvictTotal: prometheus.NewDesc(
			"wayfarer_cache_evictions_total",
			"Entries evicted from the result cache.",
			nil, nil),
		cacheSize: prometheus.NewDesc(
			"wayfarer_cache_size",
			"Current number of entries in the result cache.",
			nil, nil),
		cacheCapacity: prometheus.NewDesc(
			"wayfarer_cache_capacity",
			"Current result cache capacity.",
			nil, nil),
		cacheHitRate: prometheus.NewDesc(
			"wayfarer_cache_hit_rate",
			"Result cache hit rate, 0 when no lookups have occurred.",
			nil, nil),
		routes: prometheus.NewDesc(
			"wayfarer_routes",
			"Number of registered route entries.",
			nil, nil),
		executionsTotal: prometheus.NewDesc(
			"wayfarer_pipeline_executions_total",
			"Total middleware pipeline executions.",
			nil, nil),
		middlewares: prometheus.NewDesc(
			"wayfarer_pipeline_middlewares",
			"Registered middleware count by state.",
			[]string{"state"}, nil),
	}
}

// Describe implements prometheus.Collector.
func (mc *MetricsCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- mc.matchesTotal
	ch <- mc.cacheHitsTotal
	ch <- mc.cacheMissTotal
	ch <- mc.cacheEvictTotal
	ch <- mc.cacheSize
	ch <- mc.cacheCapacity
	ch <- mc.cacheHitRate
	ch <- mc.routes
	if mc.composer != nil {
		ch <- mc.executionsTotal
		ch <- mc.middlewares
	}
}

// Collect implements prometheus.Collector.
func (mc *MetricsCollector) Collect(ch chan<- prometheus.Metric) {
	stats := mc.matcher.Stats()

	ch <- prometheus.MustNewConstMetric(mc.matchesTotal, prometheus.CounterValue, float64(stats.TotalMatches))
	ch <- prometheus.MustNewConstMetric(mc.cacheHitsTotal, prometheus.CounterValue, float64(stats.CacheStats.Hits))
	ch <- prometheus.MustNewConstMetric(mc.cacheMissTotal, prometheus.CounterValue, float64(stats.CacheStats.Misses))
	ch <- prometheus.MustNewConstMetric(mc.cacheEvictTotal, prometheus.CounterValue, float64(stats.CacheStats.Evictions))
	ch <- prometheus.MustNewConstMetric(mc.cacheSize, prometheus.GaugeValue, float64(stats.CacheStats.Size))
	ch <- prometheus.MustNewConstMetric(mc.cacheCapacity, prometheus.GaugeValue, float64(stats.CacheStats.Capacity))
	ch <- prometheus.MustNewConstMetric(mc.cacheHitRate, prometheus.GaugeValue, stats.CacheStats.HitRate)
	ch <- prometheus.MustNewConstMetric(mc.routes, prometheus.GaugeValue, float64(stats.Routes))

	if mc.composer != nil {
		ps := mc.composer.Stats()
		ch <- prometheus.MustNewConstMetric(mc.executionsTotal, prometheus.CounterValue, float64(ps.Executions))
		ch <- prometheus.MustNewConstMetric(mc.middlewares, prometheus.GaugeValue, float64(ps.Total), "total")
		ch <- prometheus.MustNewConstMetric(mc.middlewares, prometheus.GaugeValue, float64(ps.Active), "active")
	}
}

// Compile-time check that MetricsCollector implements prometheus.Collector.
var _ prometheus.Collector = (*MetricsCollector)(nil)
