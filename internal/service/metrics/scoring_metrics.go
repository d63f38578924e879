package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	ScorerLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "poppredict",
			Subsystem: "scorer",
			Name:      "latency_seconds",
			Help:      "Latency of scorer round-trips",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"outcome"},
	)

	ScorerErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "poppredict",
			Subsystem: "scorer",
			Name:      "errors_total",
			Help:      "Scorer transport errors",
		},
		[]string{"kind"},
	)
)

func Register() {
	once.Do(func() {
		prometheus.MustRegister(ScorerLatency, ScorerErrors)
	})
}
