package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder exposes pipeline metrics via Prometheus.
type Recorder struct {
	rowsProcessed   *prometheus.CounterVec
	stageDuration   *prometheus.HistogramVec
	errorsTotal     *prometheus.CounterVec
	flaggedTotal    prometheus.Gauge
	anomaliesTotal  prometheus.Gauge
	customersScored prometheus.Gauge
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		rowsProcessed: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "riskscan_rows_processed_total",
				Help: "Total number of rows processed per pipeline stage",
			},
			[]string{"stage"},
		),
		stageDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "riskscan_stage_duration_seconds",
				Help:    "Duration of pipeline stages in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"stage"},
		),
		errorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "riskscan_errors_total",
				Help: "Total number of pipeline stage failures",
			},
			[]string{"stage"},
		),
		flaggedTotal: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "riskscan_flagged_transactions",
				Help: "Number of transactions flagged in the last run",
			},
		),
		anomaliesTotal: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "riskscan_anomalous_customers",
				Help: "Number of anomalous customers in the last run",
			},
		),
		customersScored: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "riskscan_customers_scored",
				Help: "Number of customers scored in the last run",
			},
		),
	}
}

// RecordRows records the number of rows a stage produced.
func (r *Recorder) RecordRows(stage string, n int) {
	r.rowsProcessed.WithLabelValues(stage).Add(float64(n))
}

// RecordStageDuration records a stage duration in seconds.
func (r *Recorder) RecordStageDuration(stage string, seconds float64) {
	r.stageDuration.WithLabelValues(stage).Observe(seconds)
}

// RecordError records a stage failure.
func (r *Recorder) RecordError(stage string) {
	r.errorsTotal.WithLabelValues(stage).Inc()
}

// RecordRunTotals records per-run result gauges.
func (r *Recorder) RecordRunTotals(flagged, anomalies, customers int) {
	r.flaggedTotal.Set(float64(flagged))
	r.anomaliesTotal.Set(float64(anomalies))
	r.customersScored.Set(float64(customers))
}
