package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	CycleDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "fxpulse",
			Subsystem: "cycle",
			Name:      "duration_seconds",
			Help:      "Duration of one collect-and-score cycle",
			Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600},
		},
	)

	CycleLastSuccess = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "fxpulse",
			Subsystem: "cycle",
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last cycle that produced events",
		},
	)

	CycleSourcesOK = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "fxpulse",
			Subsystem: "cycle",
			Name:      "sources_ok",
			Help:      "Sources that succeeded in the last cycle",
		},
	)
)

func Register() {
	once.Do(func() {
		prometheus.MustRegister(CycleDuration, CycleLastSuccess, CycleSourcesOK)
	})
}
