package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors for predictions and notifications.
type Metrics struct {
	Predictions       *prometheus.CounterVec // labels: model
	PredictedPatients prometheus.Histogram

	// Notification metrics.
	Notifications    *prometheus.CounterVec // labels: channel={sms,call,email}, outcome={success,error,skipped,mock}
	DispatchDuration prometheus.Histogram
	Contacts         prometheus.Gauge

	HistoricalRows prometheus.Gauge
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.Predictions,
		m.PredictedPatients,
		m.Notifications,
		m.DispatchDuration,
		m.Contacts,
		m.HistoricalRows,
	)
	return m
}

// NewMetricsForTesting creates unregistered Metrics to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		Predictions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "healthsurge",
			Name:      "predictions_total",
			Help:      "Surge predictions served, by scoring model.",
		}, []string{"model"}),
		PredictedPatients: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "healthsurge",
			Name:      "predicted_patients",
			Help:      "Distribution of predicted daily patient counts.",
			Buckets:   []float64{700, 800, 850, 880, 900, 950, 1000, 1100, 1200, 1400},
		}),
		Notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "healthsurge",
			Name:      "notifications_total",
			Help:      "Outbound notifications by channel and outcome.",
		}, []string{"channel", "outcome"}),
		DispatchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "healthsurge",
			Name:      "dispatch_duration_seconds",
			Help:      "Duration of a complete emergency fan-out.",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
		}),
		Contacts: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "healthsurge",
			Name:      "contacts",
			Help:      "Contacts currently in the emergency roster.",
		}),
		HistoricalRows: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "healthsurge",
			Name:      "historical_rows",
			Help:      "Rows loaded from the historical dataset.",
		}),
	}
}
