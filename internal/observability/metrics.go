package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "traffic_dashboard"

// Metrics holds the Prometheus counters, histograms, and gauges for the dataset build.
type Metrics struct {
	RecordsLoaded   prometheus.Counter
	RecordsFiltered prometheus.Counter
	GeometryErrors  prometheus.Counter
	ProjectionCache *prometheus.CounterVec // labels: result={hit,miss}

	Cells         prometheus.Gauge
	DatasetReady  prometheus.Gauge
	BuildDuration prometheus.Histogram

	CellsPublished prometheus.Counter
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	return NewMetricsWith(prometheus.DefaultRegisterer)
}

// NewMetricsWith registers all metrics with reg. The CLI uses a private
// registry so it can print the build counters without serving them.
func NewMetricsWith(reg prometheus.Registerer) *Metrics {
	m := newMetrics()
	reg.MustRegister(
		m.RecordsLoaded,
		m.RecordsFiltered,
		m.GeometryErrors,
		m.ProjectionCache,
		m.Cells,
		m.DatasetReady,
		m.BuildDuration,
		m.CellsPublished,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, so tests can
// build as many as they like without "already registered" panics.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		RecordsLoaded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_loaded_total",
			Help:      "Total rows read from the input file.",
		}),
		RecordsFiltered: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_filtered_total",
			Help:      "Rows dropped for falling outside the year window or missing year, hour or geometry.",
		}),
		GeometryErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "geometry_errors_total",
			Help:      "Rows dropped because their geometry could not be parsed or reprojected.",
		}),
		ProjectionCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "projection_cache_total",
			Help:      "Projection cache lookups by result.",
		}, []string{"result"}),
		Cells: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "cells",
			Help:      "Aggregated cells in the current dataset.",
		}),
		DatasetReady: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "dataset_ready",
			Help:      "1 once the dataset has been built, 0 before.",
		}),
		BuildDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "build_duration_seconds",
			Help:      "Duration of the load, filter, reproject and aggregate build phase.",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}),
		CellsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cells_published_total",
			Help:      "Aggregated cells written to the Kafka export topic.",
		}),
	}
}
