package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	predictions    *prometheus.CounterVec
	fallbacks      prometheus.Counter
	errorsTotal    *prometheus.CounterVec
	predictedPrice *prometheus.GaugeVec
	latency        *prometheus.HistogramVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		predictions: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "poppredict_predictions_total",
				Help: "Total number of price predictions served",
			},
			[]string{"marketplace"},
		),
		fallbacks: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "poppredict_fallbacks_total",
				Help: "Total number of predictions served via the fallback estimate",
			},
		),
		errorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "poppredict_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		predictedPrice: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "poppredict_last_predicted_price",
				Help: "Last predicted price for an item",
			},
			[]string{"item_id"},
		),
		latency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "poppredict_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// RecordPrediction records a served prediction.
func (r *Recorder) RecordPrediction(marketplace string) {
	r.predictions.WithLabelValues(marketplace).Inc()
}

// RecordFallback records a prediction served via the fallback estimate.
func (r *Recorder) RecordFallback() {
	r.fallbacks.Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordPredictedPrice records the last predicted price for an item.
func (r *Recorder) RecordPredictedPrice(itemID string, price float64) {
	r.predictedPrice.WithLabelValues(itemID).Set(price)
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}
