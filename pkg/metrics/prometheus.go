package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	scanOutcomes *prometheus.CounterVec
	errorsTotal  *prometheus.CounterVec
	lastPrice    *prometheus.GaugeVec
	latency      *prometheus.HistogramVec
}

var (
	recorder     *Recorder
	recorderOnce sync.Once
)

// New returns the process-wide Prometheus recorder. Collectors are registered
// on the default registry the first time it is called.
func New() *Recorder {
	recorderOnce.Do(func() {
		recorder = &Recorder{
			scanOutcomes: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "swingarrow_scan_rows_total",
					Help: "Scanned rows by symbol and outcome",
				},
				[]string{"symbol", "outcome"},
			),
			errorsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "swingarrow_errors_total",
					Help: "Total number of errors encountered",
				},
				[]string{"type"},
			),
			lastPrice: promauto.NewGaugeVec(
				prometheus.GaugeOpts{
					Name: "swingarrow_last_price",
					Help: "Last scanned price for a symbol",
				},
				[]string{"symbol"},
			),
			latency: promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "swingarrow_operation_duration_seconds",
					Help:    "Duration of operations in seconds",
					Buckets: prometheus.DefBuckets,
				},
				[]string{"operation"},
			),
		}
	})
	return recorder
}

// RecordScanOutcome counts one scanned row.
func (r *Recorder) RecordScanOutcome(symbol string, ok bool) {
	outcome := "ok"
	if !ok {
		outcome = "fallback"
	}
	r.scanOutcomes.WithLabelValues(symbol, outcome).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordLastPrice records the last price for a symbol.
func (r *Recorder) RecordLastPrice(symbol string, price float64) {
	r.lastPrice.WithLabelValues(symbol).Set(price)
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}
