package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "quake_mmi"

// Metrics holds the Prometheus counters, histograms, and gauges for preprocessing and training.
type Metrics struct {
	RowsRead    prometheus.Counter
	RowsDropped prometheus.Counter
	SplitRows   *prometheus.GaugeVec // labels: subset={train,test}
	Features    prometheus.Gauge

	TrainingRuns     prometheus.Counter
	TrainingFailures prometheus.Counter
	FitDuration      prometheus.Histogram
	BalancedAccuracy *prometheus.GaugeVec // labels: subset={train,test}
	LastSuccess      prometheus.Gauge
}

// NewMetrics creates all metrics and registers them with reg. A nil reg leaves
// them unregistered, which suits library callers that do not export metrics.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		RowsRead: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_read_total",
			Help:      "Rows read from raw event tables.",
		}),
		RowsDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_dropped_total",
			Help:      "Rows discarded because at least one column was missing.",
		}),
		SplitRows: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "split_rows",
			Help:      "Rows assigned to each side of the last train/test split.",
		}, []string{"subset"}),
		Features: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "features",
			Help:      "Feature columns used by the last split.",
		}),
		TrainingRuns: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "training_runs_total",
			Help:      "Training runs started.",
		}),
		TrainingFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "training_failures_total",
			Help:      "Training runs that ended in an error.",
		}),
		FitDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "fit_duration_seconds",
			Help:      "Wall time spent fitting the scaler and forest.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
		}),
		BalancedAccuracy: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "balanced_accuracy",
			Help:      "Balanced accuracy of the last fitted model.",
		}, []string{"subset"}),
		LastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time the last training run finished successfully.",
		}),
	}

	if reg != nil {
		reg.MustRegister(
			m.RowsRead,
			m.RowsDropped,
			m.SplitRows,
			m.Features,
			m.TrainingRuns,
			m.TrainingFailures,
			m.FitDuration,
			m.BalancedAccuracy,
			m.LastSuccess,
		)
	}

	return m
}

// NewMetricsForTesting creates Metrics on a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return NewMetrics(prometheus.NewRegistry())
}
