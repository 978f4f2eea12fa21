package core

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PrometheusCollector implements MetricsCollector backed by a dedicated
// Prometheus registry. The registry is exposed via Handler() at /metrics.
type PrometheusCollector struct {
	registry *prometheus.Registry
	requests *prometheus.CounterVec
	latency  *prometheus.HistogramVec
}

// NewPrometheusCollector creates a collector with request count and latency
// metrics registered under the firebay namespace.
func NewPrometheusCollector() *PrometheusCollector {
	registry := prometheus.NewRegistry()

	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "firebay",
		Subsystem: "api",
		Name:      "requests_total",
		Help:      "Total number of API requests by method, endpoint, and status.",
	}, []string{"method", "endpoint", "status"})

	latency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "firebay",
		Subsystem: "api",
		Name:      "request_duration_seconds",
		Help:      "API request latency in seconds by method and endpoint.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "endpoint"})

	registry.MustRegister(requests, latency)

	return &PrometheusCollector{
		registry: registry,
		requests: requests,
		latency:  latency,
	}
}

// RecordRequest implements MetricsCollector.
func (c *PrometheusCollector) RecordRequest(method, endpoint, status string, duration time.Duration) {
	c.requests.WithLabelValues(method, endpoint, status).Inc()
	c.latency.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// Handler returns the /metrics scrape handler for this collector's registry.
func (c *PrometheusCollector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
