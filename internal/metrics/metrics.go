// Package metrics holds the Prometheus collectors shared by the batch
// commands and the query API. Collectors register with the default
// registry on import; the query API serves them on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Day results recorded by DaysTotal
const (
	ResultComputed = "computed"
	ResultSkipped  = "skipped"
	ResultFailed   = "failed"
)

var (
	// DaysTotal counts correlate days by result
	DaysTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "correlator_days_total",
		Help: "Correlation days processed by result",
	}, []string{"result"})

	// CellsTotal counts matrix cells computed
	CellsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "correlator_cells_total",
		Help: "Matrix cells computed",
	})

	// DayDuration tracks the wall time of one correlate day
	DayDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "correlator_day_duration_seconds",
		Help:    "Time to compute and persist one day's matrix",
		Buckets: prometheus.ExponentialBuckets(0.01, 4, 10), // 10ms to ~43min
	})

	// SeriesPerDay is the number of series in the last computed day
	SeriesPerDay = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "correlator_series",
		Help: "Series correlated in the most recent day",
	})

	// PreprocessDaysTotal counts preprocess days by result
	PreprocessDaysTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "correlator_preprocess_days_total",
		Help: "Statistics days processed by result",
	}, []string{"result"})

	// PublishErrors counts failed event publications
	PublishErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "correlator_publish_errors_total",
		Help: "Day completed events that could not be published",
	})

	// APIRequests counts query API requests by route and status class
	APIRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "correlator_api_requests_total",
		Help: "Query API requests by route and status",
	}, []string{"route", "status"})
)
