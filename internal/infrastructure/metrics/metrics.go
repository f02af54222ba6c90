package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Metrics groups every collector the application exports. Each instance
// owns its registry so tests can create as many as they need.
type Metrics struct {
	Registry *prometheus.Registry

	CanvasRequests  *prometheus.CounterVec
	CanvasDuration  *prometheus.HistogramVec
	RefreshDuration prometheus.Histogram
	DroppedStubs    prometheus.Counter
	DecodeFailures  *prometheus.CounterVec
	HTTPRequests    *prometheus.CounterVec
	HTTPDuration    *prometheus.HistogramVec
}

// New creates and registers all collectors
func New() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		Registry: registry,
		CanvasRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "acrylic_canvas_requests_total",
				Help: "Total number of requests issued to Canvas",
			},
			[]string{"endpoint", "outcome"},
		),
		CanvasDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "acrylic_canvas_request_duration_seconds",
				Help:    "Canvas request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"endpoint"},
		),
		RefreshDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "acrylic_refresh_duration_seconds",
				Help:    "Duration of a full assignment refresh across all prefixes",
				Buckets: prometheus.DefBuckets,
			},
		),
		DroppedStubs: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "acrylic_normalize_dropped_total",
				Help: "To-do stubs dropped during normalization",
			},
		),
		DecodeFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "acrylic_store_decode_failures_total",
				Help: "Stored records that failed to decode and were skipped",
			},
			[]string{"key"},
		),
		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
	}

	registry.MustRegister(
		m.CanvasRequests,
		m.CanvasDuration,
		m.RefreshDuration,
		m.DroppedStubs,
		m.DecodeFailures,
		m.HTTPRequests,
		m.HTTPDuration,
		collectors.NewGoCollector(),
	)

	return m
}
