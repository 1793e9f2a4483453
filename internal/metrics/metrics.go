// Package metrics defines Prometheus metrics for logscope.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "logscope_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "logscope_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	ErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "logscope_errors_total",
			Help: "Total errors by type",
		},
		[]string{"type"},
	)

	ScopeResolutions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "logscope_scope_resolutions_total",
			Help: "Visibility scopes resolved, by kind",
		},
		[]string{"kind"},
	)

	StoreErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "logscope_store_errors_total",
			Help: "Storage failures by operation",
		},
		[]string{"op"},
	)

	VisibleRows = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "logscope_visible_rows",
			Help:    "Rows returned per log page",
			Buckets: []float64{0, 1, 10, 25, 50, 100, 250, 500, 1000},
		},
	)
)

func init() {
	prometheus.MustRegister(
		RequestDuration, RequestsTotal, ErrorsTotal,
		ScopeResolutions, StoreErrors, VisibleRows,
	)
}
