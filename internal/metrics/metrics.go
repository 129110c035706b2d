// Package metrics provides Prometheus metrics for the timeline server.
// Scrape these at /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP Metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "revenue_timeline_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "revenue_timeline_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// Session Metrics
	SessionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "revenue_timeline_sessions_active",
			Help: "Number of live chart sessions",
		},
	)

	SessionsCreatedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "revenue_timeline_sessions_created_total",
			Help: "Total number of chart sessions created",
		},
	)

	SessionsClosedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "revenue_timeline_sessions_closed_total",
			Help: "Chart sessions disposed, by reason",
		},
		[]string{"reason"}, // "deleted", "evicted", "shutdown"
	)

	// Interaction Metrics
	CallbacksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "revenue_timeline_callbacks_total",
			Help: "Chart notifications delivered, by kind",
		},
		[]string{"kind"}, // "range", "hover"
	)

	PointerEventsDroppedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "revenue_timeline_pointer_events_dropped_total",
			Help: "Pointer events rejected by the per-session rate limiter",
		},
	)

	RendersTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "revenue_timeline_renders_total",
			Help: "Documents rendered, by format",
		},
		[]string{"format"},
	)

	// Dataset Metrics
	DatasetRecords = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "revenue_timeline_dataset_records",
			Help: "Number of raw records loaded",
		},
	)

	DatasetYears = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "revenue_timeline_dataset_years",
			Help: "Number of years in the aggregated series",
		},
	)
)
