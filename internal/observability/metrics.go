package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for client runs.
type Metrics struct {
	// Transport metrics.
	Requests        *prometheus.CounterVec   // labels: endpoint={profile,grid}, outcome={success,status,content_type,timeout,error}
	RequestDuration *prometheus.HistogramVec // labels: endpoint={profile,grid}
	ResponseBytes   *prometheus.HistogramVec // labels: endpoint={profile,grid}

	// Profile batch metrics.
	Batches       *prometheus.CounterVec // labels: outcome={success,failure}
	BatchPoints   prometheus.Histogram
	Merges        *prometheus.CounterVec // labels: outcome={success,failure,unavailable}
	DateFallbacks prometheus.Counter

	// Grid metrics.
	GridQueries   *prometheus.CounterVec // labels: outcome={success,invalid,failure}
	GridCacheHits prometheus.Counter

	RunsInProgress prometheus.Gauge
}

// NewMetrics creates and registers all client metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	return NewMetricsWith(prometheus.DefaultRegisterer)
}

// NewMetricsWith creates client metrics and registers them with reg. A nil reg
// leaves them unregistered.
func NewMetricsWith(reg prometheus.Registerer) *Metrics {
	m := newMetrics()
	if reg == nil {
		return m
	}
	reg.MustRegister(
		m.Requests,
		m.RequestDuration,
		m.ResponseBytes,
		m.Batches,
		m.BatchPoints,
		m.Merges,
		m.DateFallbacks,
		m.GridQueries,
		m.GridCacheHits,
		m.RunsInProgress,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "nespreso",
			Name:      "requests_total",
			Help:      "Requests to the NeSPReSO service by endpoint and outcome.",
		}, []string{"endpoint", "outcome"}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "nespreso",
			Name:      "request_duration_seconds",
			Help:      "NeSPReSO request duration in seconds.",
			Buckets:   []float64{0.5, 1, 5, 15, 30, 60, 120, 300, 600, 1200, 1800},
		}, []string{"endpoint"}),
		ResponseBytes: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "nespreso",
			Name:      "response_bytes",
			Help:      "Size of successful NetCDF payloads.",
			Buckets:   prometheus.ExponentialBuckets(1<<10, 4, 10),
		}, []string{"endpoint"}),
		Batches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "nespreso",
			Name:      "batches_total",
			Help:      "Profile batches by outcome.",
		}, []string{"outcome"}),
		BatchPoints: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "nespreso",
			Name:      "batch_points",
			Help:      "Number of points per profile batch.",
			Buckets:   []float64{1, 10, 50, 100, 250, 500, 1000, 2500, 5000},
		}),
		Merges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "nespreso",
			Name:      "merges_total",
			Help:      "NetCDF merges by outcome.",
		}, []string{"outcome"}),
		DateFallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "nespreso",
			Name:      "date_fallbacks_total",
			Help:      "Date values with no known encoding that were stringified as-is.",
		}),
		GridQueries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "nespreso",
			Name:      "grid_queries_total",
			Help:      "Grid queries by outcome.",
		}, []string{"outcome"}),
		GridCacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "nespreso",
			Name:      "grid_cache_hits_total",
			Help:      "Grid queries answered from the in-memory cache.",
		}),
		RunsInProgress: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "nespreso",
			Name:      "runs_in_progress",
			Help:      "Number of batch or multi-date runs currently executing.",
		}),
	}
}
