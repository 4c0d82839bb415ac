// Package metrics provides Prometheus metrics for concept resolution.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Cache lookup results.
const (
	CacheHit         = "hit"
	CacheNegativeHit = "negative_hit"
	CacheStale       = "stale"
	CacheMiss        = "miss"
)

// Upstream call outcomes.
const (
	OutcomeFound    = "found"
	OutcomeNotFound = "not_found"
	OutcomeError    = "error"
)

// Metrics holds all Prometheus metrics for the resolver.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	CacheLookupsTotal     *prometheus.CounterVec
	UpstreamCallsTotal    *prometheus.CounterVec
	UpstreamCallDuration  *prometheus.HistogramVec
	DedupedRequestsTotal  *prometheus.CounterVec
	CacheWriteErrorsTotal prometheus.Counter
	HierarchyStopsTotal   *prometheus.CounterVec
	UpstreamCallsInFlight prometheus.Gauge
}

// New creates the metrics and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		CacheLookupsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tingbok_cache_lookups_total",
				Help: "Cache lookups by kind and result",
			},
			[]string{"kind", "result"},
		),
		UpstreamCallsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tingbok_upstream_calls_total",
				Help: "Upstream adapter invocations by source, kind and outcome",
			},
			[]string{"source", "kind", "outcome"},
		),
		UpstreamCallDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "tingbok_upstream_call_duration_seconds",
				Help:    "Duration of upstream adapter invocations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"source", "kind"},
		),
		DedupedRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tingbok_deduplicated_requests_total",
				Help: "Resolutions that shared an in-flight upstream call",
			},
			[]string{"kind"},
		),
		CacheWriteErrorsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "tingbok_cache_write_errors_total",
				Help: "Failed cache store writes",
			},
		),
		HierarchyStopsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tingbok_hierarchy_stops_total",
				Help: "Hierarchy walks by terminal reason",
			},
			[]string{"reason"},
		),
		UpstreamCallsInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "tingbok_upstream_calls_in_flight",
				Help: "Upstream adapter invocations currently running",
			},
		),
	}

	if reg != nil {
		reg.MustRegister(
			m.CacheLookupsTotal,
			m.UpstreamCallsTotal,
			m.UpstreamCallDuration,
			m.DedupedRequestsTotal,
			m.CacheWriteErrorsTotal,
			m.HierarchyStopsTotal,
			m.UpstreamCallsInFlight,
		)
	}
	return m
}

// RecordCacheLookup counts one cache lookup.
func (m *Metrics) RecordCacheLookup(kind, result string) {
	if m == nil {
		return
	}
	m.CacheLookupsTotal.WithLabelValues(kind, result).Inc()
}

// StartUpstreamCall marks an upstream call as running and returns a func
// that records its outcome and duration.
func (m *Metrics) StartUpstreamCall(source, kind string) func(outcome string) {
	if m == nil {
		return func(string) {}
	}
	start := time.Now()
	m.UpstreamCallsInFlight.Inc()
	return func(outcome string) {
		m.UpstreamCallsInFlight.Dec()
		m.UpstreamCallsTotal.WithLabelValues(source, kind, outcome).Inc()
		m.UpstreamCallDuration.WithLabelValues(source, kind).Observe(time.Since(start).Seconds())
	}
}

// RecordDeduped counts a resolution that joined an in-flight call.
func (m *Metrics) RecordDeduped(kind string) {
	if m == nil {
		return
	}
	m.DedupedRequestsTotal.WithLabelValues(kind).Inc()
}

// RecordCacheWriteError counts a failed cache write.
func (m *Metrics) RecordCacheWriteError() {
	if m == nil {
		return
	}
	m.CacheWriteErrorsTotal.Inc()
}

// RecordHierarchyStop counts a finished hierarchy walk.
func (m *Metrics) RecordHierarchyStop(reason string) {
	if m == nil {
		return
	}
	m.HierarchyStopsTotal.WithLabelValues(reason).Inc()
}
