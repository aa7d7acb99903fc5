package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the insights service.
type Metrics struct {
	// Query metrics
	QueryRequests   *prometheus.CounterVec
	QueryLatency    *prometheus.HistogramVec
	RecordsReturned *prometheus.HistogramVec
	EmptyResults    *prometheus.CounterVec
	DegradedQueries *prometheus.CounterVec

	// Record source metrics
	SnapshotLoads    *prometheus.CounterVec
	SnapshotFailures *prometheus.CounterVec
	CacheHits        *prometheus.CounterVec
	CacheMisses      *prometheus.CounterVec

	// Ingest metrics
	VisitsTracked *prometheus.CounterVec

	// Rate limiting
	RateLimitHits *prometheus.CounterVec
}

// NewMetrics creates and registers all Prometheus metrics.
func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		QueryRequests: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "query_requests_total",
				Help:      "Total number of report queries received",
			},
			[]string{"endpoint", "status"},
		),
		QueryLatency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "query_latency_seconds",
				Help:      "Report query processing latency in seconds",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
			},
			[]string{"endpoint"},
		),
		RecordsReturned: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "records_returned",
				Help:      "Number of records returned per query",
				Buckets:   []float64{0, 1, 10, 50, 100, 500, 1000, 5000},
			},
			[]string{"endpoint"},
		),
		EmptyResults: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "empty_results_total",
				Help:      "Queries that matched zero records",
			},
			[]string{"endpoint"},
		),
		DegradedQueries: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "degraded_queries_total",
				Help:      "Queries forced empty by malformed criteria",
			},
			[]string{"endpoint"},
		),
		SnapshotLoads: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "snapshot_loads_total",
				Help:      "Record snapshot acquisitions by source",
			},
			[]string{"source"},
		),
		SnapshotFailures: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "snapshot_failures_total",
				Help:      "Failed record snapshot acquisitions by source",
			},
			[]string{"source"},
		),
		CacheHits: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cache_hits_total",
				Help:      "Snapshot cache hits",
			},
			[]string{"record_type"},
		),
		CacheMisses: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cache_misses_total",
				Help:      "Snapshot cache misses",
			},
			[]string{"record_type"},
		),
		VisitsTracked: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "visits_tracked_total",
				Help:      "Foot-traffic observations ingested",
			},
			[]string{"city"},
		),
		RateLimitHits: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "rate_limit_hits_total",
				Help:      "Requests rejected by rate limiting",
			},
			[]string{"path"},
		),
	}
}

// RecordQuery observes one completed query.
func (m *Metrics) RecordQuery(endpoint string, status int, total int, degraded bool, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.QueryRequests.WithLabelValues(endpoint, strconv.Itoa(status)).Inc()
	m.QueryLatency.WithLabelValues(endpoint).Observe(elapsed.Seconds())
	m.RecordsReturned.WithLabelValues(endpoint).Observe(float64(total))
	if total == 0 {
		m.EmptyResults.WithLabelValues(endpoint).Inc()
	}
	if degraded {
		m.DegradedQueries.WithLabelValues(endpoint).Inc()
	}
}

// Handler returns the Prometheus scrape handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
