package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	sourceRuns    *prometheus.CounterVec
	sourceLatency *prometheus.HistogramVec
	sourceEvents  *prometheus.CounterVec
	sourceDropped *prometheus.CounterVec
	eventsStored  *prometheus.CounterVec
	errorsTotal   *prometheus.CounterVec
	strengthScore *prometheus.GaugeVec
	powerScore    *prometheus.GaugeVec
	powerRank     *prometheus.GaugeVec
	latency       *prometheus.HistogramVec
}

// New creates a Prometheus metrics recorder registered on reg. Pass
// prometheus.DefaultRegisterer in production so /metrics serves it.
func New(reg prometheus.Registerer) *Recorder {
	f := promauto.With(reg)
	return &Recorder{
		sourceRuns: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fxpulse_source_runs_total",
				Help: "Source collection runs by outcome",
			},
			[]string{"source", "success"},
		),
		sourceLatency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "fxpulse_source_duration_seconds",
				Help:    "Duration of one source collection including all variants",
				Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
			},
			[]string{"source"},
		),
		sourceEvents: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fxpulse_source_events_total",
				Help: "Canonical events produced per source",
			},
			[]string{"source"},
		),
		sourceDropped: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fxpulse_source_dropped_total",
				Help: "Records dropped for unresolvable currency or missing title",
			},
			[]string{"source"},
		),
		eventsStored: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fxpulse_events_stored_total",
				Help: "Events handed to the configured backend",
			},
			[]string{"backend"},
		),
		errorsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fxpulse_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		strengthScore: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "fxpulse_currency_strength",
				Help: "Latest tiered strength score per currency",
			},
			[]string{"currency"},
		),
		powerScore: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "fxpulse_currency_power_score",
				Help: "Latest power total score per currency",
			},
			[]string{"currency"},
		),
		powerRank: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "fxpulse_currency_power_rank",
				Help: "Latest power rank per currency (1 is strongest)",
			},
			[]string{"currency"},
		),
		latency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "fxpulse_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// RecordSourceResult records one source run.
func (r *Recorder) RecordSourceResult(source string, success bool, seconds float64, events, dropped int) {
	r.sourceRuns.WithLabelValues(source, strconv.FormatBool(success)).Inc()
	r.sourceLatency.WithLabelValues(source).Observe(seconds)
	r.sourceEvents.WithLabelValues(source).Add(float64(events))
	r.sourceDropped.WithLabelValues(source).Add(float64(dropped))
}

// RecordEventsStored records events handed to a backend.
func (r *Recorder) RecordEventsStored(backend string, n int) {
	r.eventsStored.WithLabelValues(backend).Add(float64(n))
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordStrength records the latest strength score of a currency.
func (r *Recorder) RecordStrength(currency string, score float64) {
	r.strengthScore.WithLabelValues(currency).Set(score)
}

// RecordPower records the latest power rank and score of a currency.
func (r *Recorder) RecordPower(currency string, rank, score int) {
	r.powerRank.WithLabelValues(currency).Set(float64(rank))
	r.powerScore.WithLabelValues(currency).Set(float64(score))
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}
