// Package power ranks currencies by a tier-agnostic composite of event ratios.
package power

import (
	"math"
	"sort"

	"FxPulse/internal/domain/models"
)

const (
	sentimentWeight  = 0.40
	impactWeight     = 0.35
	confidenceWeight = 0.25

	strongAt   = 75
	moderateAt = 50

	// trendRatio is the share of bullish (bearish) events needed for a BULLISH (BEARISH) trend.
	trendRatio = 0.4
	// neutralDamping is the neutral share above which the sentiment score is pulled toward 50.
	neutralDamping = 0.5
)

// Option configures Engine.
type Option func(*Engine)

// AllowSimulated lets SIMULATED events count. Only demo mode sets it.
func AllowSimulated() Option {
	return func(e *Engine) { e.allowSimulated = true }
}

// Engine is stateless apart from its options.
type Engine struct {
	allowSimulated bool
}

func New(opts ...Option) *Engine {
	e := &Engine{}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Rank scores every currency in currencies from the events tagged with it, primary or
// related, then orders them by total score. Ties keep the order of currencies.
func (e *Engine) Rank(currencies []models.Currency, events []models.EconomicEvent) []models.CurrencyPowerScore {
	seen := make(map[models.Currency]bool, len(currencies))
	out := make([]models.CurrencyPowerScore, 0, len(currencies))
	for _, c := range currencies {
		if seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, e.Score(c, events))
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].TotalScore > out[j].TotalScore })
	for i := range out {
		out[i].Rank = i + 1
	}
	return out
}

// Score computes the power score of one currency. Rank is left zero.
func (e *Engine) Score(c models.Currency, events []models.EconomicEvent) models.CurrencyPowerScore {
	s := models.CurrencyPowerScore{Currency: c}
	confidenceSum := 0.0
	for i := range events {
		ev := &events[i]
		if (ev.Simulated && !e.allowSimulated) || !ev.HasCurrency(c) {
			continue
		}
		s.EventCount++
		confidenceSum += ev.ConfidenceScore
		switch ev.Sentiment {
		case models.Bullish:
			s.BullishCount++
		case models.Bearish:
			s.BearishCount++
		default:
			s.NeutralCount++
		}
		switch ev.Impact {
		case models.ImpactHigh:
			s.HighCount++
		case models.ImpactMedium:
			s.MediumCount++
		default:
			s.LowCount++
		}
	}

	if s.EventCount == 0 {
		s.SentimentScore, s.ImpactScore, s.ConfidenceScore = 50, 50, 50
		s.TotalScore = 50
		s.Strength = models.PowerModerate
		s.Trend = models.Neutral
		return s
	}

	n := float64(s.EventCount)
	bull, bear, neutral := float64(s.BullishCount)/n, float64(s.BearishCount)/n, float64(s.NeutralCount)/n

	sentiment := 50 + 50*(bull-bear)
	if neutral > neutralDamping {
		sentiment = 50 + (sentiment-50)*(1-neutral)
	}
	s.SentimentScore = round2(sentiment)
	s.ImpactScore = round2(100*float64(s.HighCount)/n + 50*float64(s.MediumCount)/n)
	s.ConfidenceScore = round2(confidenceSum / n)
	s.TotalScore = int(math.Round(sentimentWeight*s.SentimentScore + impactWeight*s.ImpactScore + confidenceWeight*s.ConfidenceScore))

	switch {
	case s.TotalScore >= strongAt:
		s.Strength = models.PowerStrong
	case s.TotalScore >= moderateAt:
		s.Strength = models.PowerModerate
	default:
		s.Strength = models.PowerWeak
	}

	switch {
	case bull > bear && bull > trendRatio:
		s.Trend = models.Bullish
	case bear > bull && bear > trendRatio:
		s.Trend = models.Bearish
	default:
		s.Trend = models.Neutral
	}
	return s
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }
