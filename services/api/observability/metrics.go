package observability

import (
	"log/slog"
	"os"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the API.
type Metrics struct {
	FilterRequests    prometheus.Counter
	SelectionRequests prometheus.Counter
	FilterDuration    prometheus.Histogram
	DatasetGlaciers   prometheus.Gauge

	// DuplicateSeriesPoints counts (glacier, year) rows dropped at load time,
	// labelled by metric. Non-zero values flag an upstream data-quality defect.
	DuplicateSeriesPoints *prometheus.CounterVec
}

// NewMetrics creates and registers all API metrics with the default registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		FilterRequests: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "hyouga",
			Name:      "filter_requests_total",
			Help:      "Total filter recomputations triggered by the dashboard.",
		}),
		SelectionRequests: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "hyouga",
			Name:      "selection_requests_total",
			Help:      "Total selection resolutions triggered by the dashboard.",
		}),
		FilterDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "hyouga",
			Name:      "filter_duration_seconds",
			Help:      "Duration of one filter recomputation over the dataset.",
			Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
		}),
		DatasetGlaciers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "hyouga",
			Name:      "dataset_glaciers",
			Help:      "Number of glacier sites loaded into the store.",
		}),
		DuplicateSeriesPoints: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hyouga",
			Name:      "duplicate_series_points_total",
			Help:      "Duplicate (glacier, year) rows dropped at load time.",
		}, []string{"metric"}),
	}

	prometheus.MustRegister(
		m.FilterRequests,
		m.SelectionRequests,
		m.FilterDuration,
		m.DatasetGlaciers,
		m.DuplicateSeriesPoints,
	)

	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		FilterRequests:        prometheus.NewCounter(prometheus.CounterOpts{Namespace: "hyouga", Name: "filter_requests_total"}),
		SelectionRequests:     prometheus.NewCounter(prometheus.CounterOpts{Namespace: "hyouga", Name: "selection_requests_total"}),
		FilterDuration:        prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "hyouga", Name: "filter_duration_seconds"}),
		DatasetGlaciers:       prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "hyouga", Name: "dataset_glaciers"}),
		DuplicateSeriesPoints: prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "hyouga", Name: "duplicate_series_points_total"}, []string{"metric"}),
	}
}

// NewLogger builds the process-wide structured logger. Text output by default,
// JSON when LOG_FORMAT=json.
func NewLogger() *slog.Logger {
	if os.Getenv("LOG_FORMAT") == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, nil))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, nil))
}
