package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// forecast engine.
type Metrics struct {
	FetchRequests *prometheus.CounterVec // labels: outcome={success,error}
	FetchDuration prometheus.Histogram

	Updates        *prometheus.CounterVec // labels: source={cache,network}, outcome={success,failure}
	UpdateDuration prometheus.Histogram
	CacheLookups   *prometheus.CounterVec // labels: result={hit,miss}

	RegionsLoaded  prometheus.Gauge
	LastUpdateTime prometheus.Gauge
}

// NewMetrics creates and registers all engine metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.FetchRequests,
		m.FetchDuration,
		m.Updates,
		m.UpdateDuration,
		m.CacheLookups,
		m.RegionsLoaded,
		m.LastUpdateTime,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		FetchRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dwd_pollen",
			Name:      "fetch_requests_total",
			Help:      "Transport fetch attempts by outcome.",
		}, []string{"outcome"}),
		FetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "dwd_pollen",
			Name:      "fetch_duration_seconds",
			Help:      "Duration of a single transport fetch attempt.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
		Updates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dwd_pollen",
			Name:      "updates_total",
			Help:      "Store update passes by data source and outcome.",
		}, []string{"source", "outcome"}),
		UpdateDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "dwd_pollen",
			Name:      "update_duration_seconds",
			Help:      "Duration of a complete update pass including retries.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30},
		}),
		CacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dwd_pollen",
			Name:      "cache_lookups_total",
			Help:      "Snapshot cache lookups by result.",
		}, []string{"result"}),
		RegionsLoaded: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "dwd_pollen",
			Name:      "regions_loaded",
			Help:      "Number of region forecasts in the current store.",
		}),
		LastUpdateTime: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "dwd_pollen",
			Name:      "last_update_timestamp_seconds",
			Help:      "Publisher last_update timestamp of the current store.",
		}),
	}
}
