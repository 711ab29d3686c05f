// Package metrics defines the Prometheus metric collectors used by the
// search service and exposes an HTTP handler for scraping.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus collectors for the service.
type Metrics struct {
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge
	SearchQueriesTotal   *prometheus.CounterVec
	SearchLatency        *prometheus.HistogramVec
	CacheHitsTotal       prometheus.Counter
	CacheMissesTotal     prometheus.Counter
	CacheCircuitOpen     prometheus.Gauge
	CorpusBuildsTotal    *prometheus.CounterVec
	CorpusBuildDuration  prometheus.Histogram
	CorpusDocuments      prometheus.Gauge
	CorpusTerms          prometheus.Gauge
	CorpusRank           prometheus.Gauge
	DocumentsAddedTotal  prometheus.Counter
}

// New creates the collectors and registers them with reg. A nil reg uses
// the default Prometheus registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &Metrics{
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
		SearchQueriesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lsi_search_queries_total",
				Help: "Total search queries by result type (hit, miss, no_terms, error).",
			},
			[]string{"result_type"},
		),
		SearchLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "lsi_search_latency_seconds",
				Help:    "Fold-in and scoring latency in seconds.",
				Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 1},
			},
			[]string{"cache_status"},
		),
		CacheHitsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "lsi_cache_hits_total",
				Help: "Total number of query cache hits.",
			},
		),
		CacheMissesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "lsi_cache_misses_total",
				Help: "Total number of query cache misses.",
			},
		),
		CacheCircuitOpen: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "lsi_cache_circuit_open",
				Help: "1 while the query cache circuit breaker bypasses Redis.",
			},
		),
		CorpusBuildsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lsi_corpus_builds_total",
				Help: "Corpus snapshot builds by status.",
			},
			[]string{"status"},
		),
		CorpusBuildDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "lsi_corpus_build_duration_seconds",
				Help:    "Time to load, tokenize and decompose a corpus snapshot.",
				Buckets: prometheus.ExponentialBuckets(0.001, 4, 10),
			},
		),
		CorpusDocuments: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "lsi_corpus_documents",
				Help: "Documents in the active corpus snapshot.",
			},
		),
		CorpusTerms: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "lsi_corpus_terms",
				Help: "Vocabulary size of the active corpus snapshot.",
			},
		),
		CorpusRank: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "lsi_corpus_rank",
				Help: "Truncation rank k of the active corpus snapshot.",
			},
		),
		DocumentsAddedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "lsi_documents_added_total",
				Help: "Total documents accepted by the document endpoint.",
			},
		),
	}

	reg.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.HTTPRequestsInFlight,
		m.SearchQueriesTotal,
		m.SearchLatency,
		m.CacheHitsTotal,
		m.CacheMissesTotal,
		m.CacheCircuitOpen,
		m.CorpusBuildsTotal,
		m.CorpusBuildDuration,
		m.CorpusDocuments,
		m.CorpusTerms,
		m.CorpusRank,
		m.DocumentsAddedTotal,
	)

	return m
}

// Handler serves the collectors gathered by g in the Prometheus text or
// OpenMetrics format.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{EnableOpenMetrics: true})
}
