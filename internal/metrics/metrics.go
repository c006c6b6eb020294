// Package metrics defines the Prometheus collectors for roster analyses and
// the HTTP API, and exposes a scrape handler.
package metrics

import (
	"net/http"
	"time"

	"github.com/kamusis/roster-cli/internal/diff"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "roster"

// Outcome labels for AnalysesTotal.
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)

// Metrics holds all collectors. Each instance owns its registry so tests and
// embedded servers never collide on the global one.
type Metrics struct {
	registry *prometheus.Registry

	AnalysesTotal        *prometheus.CounterVec
	EventsTotal          *prometheus.CounterVec
	AnalysisDuration     prometheus.Histogram
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge
}

// New creates and registers all collectors, plus the Go runtime and process
// collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		AnalysesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "analyses_total",
				Help:      "Total snapshot comparisons by outcome (ok, error).",
			},
			[]string{"outcome"},
		),
		EventsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "events_total",
				Help:      "Total change events produced, by kind.",
			},
			[]string{"kind"},
		),
		AnalysisDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "analysis_duration_seconds",
				Help:      "Time spent parsing and comparing two snapshots.",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
			},
		),
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests by method, route, and status.",
			},
			[]string{"method", "route", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request latency in seconds.",
				Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
			},
			[]string{"method", "route"},
		),
		HTTPRequestsInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "http_requests_in_flight",
				Help:      "Number of HTTP requests currently being processed.",
			},
		),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.AnalysesTotal,
		m.EventsTotal,
		m.AnalysisDuration,
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.HTTPRequestsInFlight,
	)
	return m
}

// ObserveAnalysis records one comparison. res may be nil when err is set.
func (m *Metrics) ObserveAnalysis(res *diff.Result, err error, elapsed time.Duration) {
	m.AnalysisDuration.Observe(elapsed.Seconds())
	if err != nil || res == nil {
		m.AnalysesTotal.WithLabelValues(OutcomeError).Inc()
		return
	}
	m.AnalysesTotal.WithLabelValues(OutcomeOK).Inc()
	for _, ev := range res.Events() {
		m.EventsTotal.WithLabelValues(ev.Kind()).Inc()
	}
}

// Handler returns the scrape handler for this instance's registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
