// Package metrics defines the Prometheus collectors for finds, background jobs
// and the HTTP API, and exposes a handler for scraping.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Find outcomes used as the "outcome" label.
const (
	OutcomeFound    = "found"
	OutcomeNotFound = "not_found"
	OutcomeError    = "error"
)

// Metrics holds all Prometheus collectors. Each Metrics owns its registry, so
// several instances can coexist in one process.
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge
	FindsTotal           *prometheus.CounterVec
	FindLatency          *prometheus.HistogramVec
	FilesScannedTotal    prometheus.Counter
	FilesSkippedTotal    prometheus.Counter
	TokensReadTotal      prometheus.Counter
}

// New creates and registers all collectors on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests by method, path, and status.",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency in seconds.",
				Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
			},
			[]string{"method", "path"},
		),
		HTTPRequestsInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_requests_in_flight",
				Help: "Number of HTTP requests currently being processed.",
			},
		),
		FindsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wordfinder_finds_total",
				Help: "Total finds by mode (sync, async) and outcome (found, not_found, error).",
			},
			[]string{"mode", "outcome"},
		),
		FindLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "wordfinder_find_duration_seconds",
				Help:    "Find latency in seconds.",
				Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30},
			},
			[]string{"mode"},
		),
		FilesScannedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "wordfinder_files_scanned_total",
				Help: "Total files opened and tokenized.",
			},
		),
		FilesSkippedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "wordfinder_files_skipped_total",
				Help: "Total files and directories skipped because they could not be read.",
			},
		),
		TokensReadTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "wordfinder_tokens_read_total",
				Help: "Total words read from scanned files.",
			},
		),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.HTTPRequestsInFlight,
		m.FindsTotal,
		m.FindLatency,
		m.FilesScannedTotal,
		m.FilesSkippedTotal,
		m.TokensReadTotal,
	)

	return m
}

// ObserveFind records one finished find. Pass a nil error and found=false for
// a search that completed without a qualifying file.
func (m *Metrics) ObserveFind(mode string, found bool, err error, took time.Duration, filesScanned, filesSkipped, tokensRead int) {
	outcome := OutcomeNotFound
	switch {
	case err != nil:
		outcome = OutcomeError
	case found:
		outcome = OutcomeFound
	}

	m.FindsTotal.WithLabelValues(mode, outcome).Inc()
	m.FindLatency.WithLabelValues(mode).Observe(took.Seconds())
	m.FilesScannedTotal.Add(float64(filesScanned))
	m.FilesSkippedTotal.Add(float64(filesSkipped))
	m.TokensReadTotal.Add(float64(tokensRead))
}

// TrackActiveJobs exports fn as the number of background finds pending or
// running. Call it at most once per Metrics.
func (m *Metrics) TrackActiveJobs(fn func() int64) {
	m.registry.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "wordfinder_jobs_active",
			Help: "Number of background finds pending or running.",
		},
		func() float64 { return float64(fn()) },
	))
}

// Registry returns the registry the collectors are registered on.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler returns the Prometheus scrape HTTP handler.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
