// Package metrics exposes Prometheus instrumentation for the HTTP API and the book catalog gateway.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Catalog call outcomes.
const (
	OutcomeSuccess     = "success"
	OutcomeError       = "error"
	OutcomeRateLimited = "rate_limited"
	OutcomeCircuitOpen = "circuit_open"
	OutcomeTimeout     = "timeout"
)

// Metrics holds every collector the server registers.
// All methods are safe on a nil receiver so components can run uninstrumented.
type Metrics struct {
	registry *prometheus.Registry

	// HTTPRequests counts requests.
	// Labels: method, route (chi route pattern), status.
	HTTPRequests *prometheus.CounterVec

	// HTTPDuration measures request latency by method and route.
	HTTPDuration *prometheus.HistogramVec

	// CatalogCalls counts book catalog lookups by outcome.
	CatalogCalls *prometheus.CounterVec

	// CatalogDuration measures catalog latency, including rate limiter waits.
	CatalogDuration prometheus.Histogram

	// CatalogBreakerState is 0 closed, 1 half-open, 2 open.
	CatalogBreakerState prometheus.Gauge

	// Recommendations counts generated recommendation lists by source ("personal" or "general").
	Recommendations *prometheus.CounterVec
}

// New creates a private registry with Go runtime and process collectors plus the server's own metrics.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		HTTPRequests: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "elewand_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "elewand_http_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		CatalogCalls: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "elewand_catalog_requests_total",
				Help: "Total number of book catalog requests",
			},
			[]string{"outcome"},
		),
		CatalogDuration: f.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "elewand_catalog_request_duration_seconds",
				Help:    "Duration of book catalog requests in seconds",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
		),
		CatalogBreakerState: f.NewGauge(
			prometheus.GaugeOpts{
				Name: "elewand_catalog_breaker_state",
				Help: "Catalog circuit breaker state (0 closed, 1 half-open, 2 open)",
			},
		),
		Recommendations: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "elewand_recommendations_total",
				Help: "Total number of recommendation lists generated",
			},
			[]string{"source"},
		),
	}
}

// Registry returns the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveHTTP records one finished request.
func (m *Metrics) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// ObserveCatalog records one catalog lookup.
func (m *Metrics) ObserveCatalog(outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.CatalogCalls.WithLabelValues(outcome).Inc()
	m.CatalogDuration.Observe(elapsed.Seconds())
}

// SetBreakerState records the catalog breaker state.
func (m *Metrics) SetBreakerState(state int) {
	if m == nil {
		return
	}
	m.CatalogBreakerState.Set(float64(state))
}

// CountRecommendations records a generated recommendation list.
func (m *Metrics) CountRecommendations(source string) {
	if m == nil {
		return
	}
	m.Recommendations.WithLabelValues(source).Inc()
}
