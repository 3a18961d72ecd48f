// Package metrics registers the Prometheus collectors exported on /metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/jonathan/fieldsync/internal/types"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "fieldsync"

// Bucket layouts
var (
	httpDurationBuckets     = []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}
	diagnoseDurationBuckets = []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1}
)

// Metrics holds every collector the service exports.
// It implements diagnosis.Recorder.
type Metrics struct {
	registry *prometheus.Registry

	DiagnosesTotal          *prometheus.CounterVec
	DiagnoseDuration        prometheus.Histogram
	SuggestionsReturned     prometheus.Histogram
	ErrorCodeLookupFailures prometheus.Counter
	CatalogFetchFailures    prometheus.Counter

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	RateLimitedTotal    *prometheus.CounterVec
}

// New creates a registry with process and Go runtime collectors plus the service metrics.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{Namespace: namespace}),
		collectors.NewGoCollector(),
	)

	m := &Metrics{
		registry: reg,
		DiagnosesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "diagnoses_total",
			Help:      "Completed diagnoses by recommendation.",
		}, []string{"recommendation"}),
		DiagnoseDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "diagnose_duration_seconds",
			Help:      "Time to fetch data and rank the catalog.",
			Buckets:   diagnoseDurationBuckets,
		}),
		SuggestionsReturned: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "diagnose_suggestions",
			Help:      "Number of suggested issues per diagnosis.",
			Buckets:   []float64{0, 1, 2, 3},
		}),
		ErrorCodeLookupFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "error_code_lookup_failures_total",
			Help:      "Error code lookups that failed and were skipped.",
		}),
		CatalogFetchFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "catalog_fetch_failures_total",
			Help:      "Issue catalog fetches that failed a diagnosis.",
		}),
		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status code.",
		}, []string{"method", "route", "status_code"}),
		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   httpDurationBuckets,
		}, []string{"method", "route"}),
		RateLimitedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_limited_requests_total",
			Help:      "Requests rejected by the rate limiter.",
		}, []string{"route"}),
	}

	reg.MustRegister(
		m.DiagnosesTotal,
		m.DiagnoseDuration,
		m.SuggestionsReturned,
		m.ErrorCodeLookupFailures,
		m.CatalogFetchFailures,
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.RateLimitedTotal,
	)

	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{EnableOpenMetrics: true})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveDiagnosis records a completed diagnosis.
func (m *Metrics) ObserveDiagnosis(recommendation types.Recommendation, suggestions int, elapsed time.Duration) {
	m.DiagnosesTotal.WithLabelValues(string(recommendation)).Inc()
	m.DiagnoseDuration.Observe(elapsed.Seconds())
	m.SuggestionsReturned.Observe(float64(suggestions))
}

// ErrorCodeLookupFailed counts a skipped error code lookup.
func (m *Metrics) ErrorCodeLookupFailed() {
	m.ErrorCodeLookupFailures.Inc()
}

// CatalogFetchFailed counts a failed catalog fetch.
func (m *Metrics) CatalogFetchFailed() {
	m.CatalogFetchFailures.Inc()
}

// ObserveHTTP records one served request.
func (m *Metrics) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// RateLimited counts a rejected request.
func (m *Metrics) RateLimited(route string) {
	m.RateLimitedTotal.WithLabelValues(route).Inc()
}
