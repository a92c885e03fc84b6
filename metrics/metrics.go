package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	once sync.Once

	// SelectionsTotal counts region selections by the strategy that produced the result.
	SelectionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "potholes",
		Subsystem: "selector",
		Name:      "selections_total",
		Help:      "Total number of region selections, labeled by strategy (precise or bounding-box).",
	}, []string{"strategy"})

	// SelectedReports is the number of reports returned per selection.
	SelectedReports = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "potholes",
		Subsystem: "selector",
		Name:      "selected_reports",
		Help:      "Number of reports returned by a single region selection.",
		Buckets:   []float64{0, 1, 5, 10, 50, 100, 500, 1000, 5000},
	})

	// ExportsTotal counts region exports by format and result.
	ExportsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "potholes",
		Subsystem: "export",
		Name:      "exports_total",
		Help:      "Total number of region exports, labeled by format and result.",
	}, []string{"format", "result"})

	// RegionAreaSquareMeters observes the computed area of requested regions.
	RegionAreaSquareMeters = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "potholes",
		Subsystem: "export",
		Name:      "region_area_square_meters",
		Help:      "Area of the regions requested for export.",
		Buckets:   prometheus.ExponentialBuckets(1000, 4, 8),
	})

	StatusChangesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "potholes",
		Subsystem: "reports",
		Name:      "status_changes_total",
		Help:      "Total number of report status changes, labeled by the new status.",
	}, []string{"status"})

	PublishErrorTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "potholes",
		Subsystem: "rabbitmq",
		Name:      "publish_error_total",
		Help:      "Total number of status-change events that could not be published.",
	})
)

// Register registers service metrics with the default Prometheus registry.
// Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(
			SelectionsTotal,
			SelectedReports,
			ExportsTotal,
			RegionAreaSquareMeters,
			StatusChangesTotal,
			PublishErrorTotal,
		)
	})
}

// Handler serves the default registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.Handler()
}
