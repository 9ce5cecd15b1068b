// Package strength computes the tiered, time-decayed strength score of a currency.
package strength

import (
	"math"
	"time"

	"FxPulse/internal/domain/models"
	"FxPulse/internal/services/normalize"
	"FxPulse/pkg/util"
)

const (
	// DefaultWindow is how far back events are considered.
	DefaultWindow = 90 * 24 * time.Hour

	// TrendDelta is the score change needed to leave STABLE.
	TrendDelta = 5.0

	BullishAt = 65.0
	BearishAt = 35.0

	// DefaultScore is returned, with NEUTRAL, zero confidence and STABLE, when a currency
	// has no eligible events.
	DefaultScore = 50.0
)

// Per-event confidence by data completeness.
const (
	confidenceComplete  = 90.0
	confidenceSentiment = 70.0
	confidenceBare      = 40.0
)

// Option configures Aggregator.
type Option func(*Aggregator)

// WithWindow overrides the 90-day lookback.
func WithWindow(d time.Duration) Option {
	return func(a *Aggregator) {
		if d > 0 {
			a.window = d
		}
	}
}

// WithClock injects the reference time used for event ages.
func WithClock(now func() time.Time) Option {
	return func(a *Aggregator) { a.now = now }
}

// AllowSimulated lets SIMULATED events count. Only demo mode sets it.
func AllowSimulated() Option {
	return func(a *Aggregator) { a.allowSimulated = true }
}

// Aggregator is pure apart from its clock and safe for concurrent use.
type Aggregator struct {
	window         time.Duration
	allowSimulated bool
	now            func() time.Time
}

func New(opts ...Option) *Aggregator {
	a := &Aggregator{window: DefaultWindow, now: time.Now}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Window returns the lookback used for eligibility.
func (a *Aggregator) Window() time.Duration { return a.window }

type tierAcc struct {
	weighted, weights float64
	count             int
}

// Aggregate scores currency from events. Only events whose primary currency is currency,
// dated within the window and mapped to a tier are eligible. previous is the last stored
// result for the trend; nil means cold start.
func (a *Aggregator) Aggregate(currency models.Currency, events []models.EconomicEvent, previous *models.CurrencyStrengthResult) models.CurrencyStrengthResult {
	now := a.now().UTC()
	since := now.Add(-a.window)

	acc := make(map[models.Tier]*tierAcc, len(models.Tiers))
	for _, t := range models.Tiers {
		acc[t] = &tierAcc{}
	}

	eligible := 0
	confidenceSum := 0.0
	for i := range events {
		e := &events[i]
		if e.Currency != currency || (e.Simulated && !a.allowSimulated) {
			continue
		}
		if e.EventDate.Before(since) || e.EventDate.After(now) {
			continue
		}
		ind, ok := normalize.LookupIndicator(e.EventType)
		if !ok {
			continue
		}

		decay := Decay(util.DaysBetween(e.EventDate, now))
		t := acc[ind.Tier]
		t.weighted += EventScore(e) * ind.Weight * ImpactMultiplier(e.Impact) * decay
		t.weights += ind.Weight
		t.count++

		eligible++
		confidenceSum += eventConfidence(e)
	}

	if eligible == 0 {
		return Default(currency, now)
	}

	res := models.CurrencyStrengthResult{
		Currency:        currency,
		IndicatorsCount: eligible,
		LastUpdate:      now,
		TierBreakdown:   make([]models.TierScore, 0, len(models.Tiers)),
	}
	total := 0.0
	for _, tier := range models.Tiers {
		t := acc[tier]
		ts := models.TierScore{Tier: tier, Weight: models.TierWeights[tier], EventCount: t.count}
		// Empty tiers score 0; their weight is not redistributed.
		if t.count > 0 && t.weights > 0 {
			ts.Score = round2(t.weighted / t.weights)
		}
		ts.Contribution = round2(ts.Score * ts.Weight)
		total += ts.Contribution
		res.TierBreakdown = append(res.TierBreakdown, ts)
	}

	res.StrengthScore = round2(clamp(total))
	res.Sentiment = Label(res.StrengthScore)
	res.ConfidenceLevel = round2(clamp(confidenceSum / float64(eligible)))
	res.Trend = TrendOf(res.StrengthScore, previous)
	return res
}

// Default is the result for a currency without eligible events.
func Default(currency models.Currency, now time.Time) models.CurrencyStrengthResult {
	breakdown := make([]models.TierScore, 0, len(models.Tiers))
	for _, t := range models.Tiers {
		breakdown = append(breakdown, models.TierScore{Tier: t, Weight: models.TierWeights[t]})
	}
	return models.CurrencyStrengthResult{
		Currency:        currency,
		StrengthScore:   DefaultScore,
		Sentiment:       models.Neutral,
		ConfidenceLevel: 0,
		Trend:           models.Stable,
		TierBreakdown:   breakdown,
		LastUpdate:      now,
	}
}

// Decay down-weights older events. It is non-increasing in age.
func Decay(ageDays float64) float64 {
	switch {
	case ageDays <= 7:
		return 1.0
	case ageDays <= 30:
		return 0.8
	case ageDays <= 90:
		return 0.6
	default:
		return 0.4
	}
}

func ImpactMultiplier(i models.Impact) float64 {
	switch i {
	case models.ImpactHigh:
		return 3.0
	case models.ImpactMedium:
		return 1.5
	default:
		return 1.0
	}
}

// EventScore returns the event's sentiment score, deriving it when the normalizer left none.
func EventScore(e *models.EconomicEvent) float64 {
	if e.SentimentScore != nil {
		return *e.SentimentScore
	}
	if d, ok := normalize.Deviation(e.ActualValue, e.ExpectedValue, e.PreviousValue); ok {
		return normalize.ScoreFromDeviation(e.EventType, d)
	}
	return normalize.ScoreFromLabel(e.Sentiment)
}

// Label maps a strength score to a sentiment.
func Label(score float64) models.Sentiment {
	switch {
	case score >= BullishAt:
		return models.Bullish
	case score <= BearishAt:
		return models.Bearish
	default:
		return models.Neutral
	}
}

// TrendOf compares score to the previous result. Without one the trend is STABLE.
func TrendOf(score float64, previous *models.CurrencyStrengthResult) models.Trend {
	if previous == nil {
		return models.Stable
	}
	switch diff := score - previous.StrengthScore; {
	case diff > TrendDelta:
		return models.Strengthening
	case diff < -TrendDelta:
		return models.Weakening
	default:
		return models.Stable
	}
}

func eventConfidence(e *models.EconomicEvent) float64 {
	switch {
	case e.ActualValue != nil && e.ExpectedValue != nil:
		return confidenceComplete
	case e.SentimentScore != nil:
		return confidenceSentiment
	default:
		return confidenceBare
	}
}

func clamp(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(0, math.Min(100, v))
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }
