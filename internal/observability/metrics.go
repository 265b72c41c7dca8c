package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for feature preparation.
type Metrics struct {
	RunsTotal       *prometheus.CounterVec // labels: outcome={success,error}
	RowsRead        prometheus.Counter
	RowsWritten     prometheus.Counter
	SchemaErrors    prometheus.Counter
	LoadErrors      *prometheus.CounterVec // labels: loader
	RunDuration     prometheus.Histogram
	FeatureColumns  prometheus.Gauge
	DegenerateCols  prometheus.Gauge
	LastSuccessTime prometheus.Gauge
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := NewMetricsForTesting()
	prometheus.MustRegister(
		m.RunsTotal,
		m.RowsRead,
		m.RowsWritten,
		m.SchemaErrors,
		m.LoadErrors,
		m.RunDuration,
		m.FeatureColumns,
		m.DegenerateCols,
		m.LastSuccessTime,
	)
	return m
}

// NewMetricsForTesting creates unregistered Metrics to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		RunsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "rain_prep",
			Name:      "runs_total",
			Help:      "Preparation runs by outcome.",
		}, []string{"outcome"}),
		RowsRead: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "rain_prep",
			Name:      "rows_read_total",
			Help:      "Total raw rows read from the input dataset.",
		}),
		RowsWritten: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "rain_prep",
			Name:      "rows_written_total",
			Help:      "Total encoded rows handed to loaders.",
		}),
		SchemaErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "rain_prep",
			Name:      "schema_errors_total",
			Help:      "Runs rejected because the input violated the expected schema.",
		}),
		LoadErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "rain_prep",
			Name:      "load_errors_total",
			Help:      "Loader failures by loader name.",
		}, []string{"loader"}),
		RunDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "rain_prep",
			Name:      "run_duration_seconds",
			Help:      "Duration of a complete extract-transform-load run.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30},
		}),
		FeatureColumns: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "rain_prep",
			Name:      "feature_columns",
			Help:      "Number of feature columns produced by the last successful run.",
		}),
		DegenerateCols: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "rain_prep",
			Name:      "degenerate_columns",
			Help:      "Scaled columns with zero range in the last successful run.",
		}),
		LastSuccessTime: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "rain_prep",
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last successful run.",
		}),
	}
}
