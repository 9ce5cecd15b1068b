package normalize

import (
	"math"
	"strings"

	"FxPulse/internal/domain/models"
)

// Label-only sentiment scores.
const (
	ScoreBullish = 70.0
	ScoreBearish = 30.0
	ScoreNeutral = 50.0
)

var (
	bullishWords = []string{"hawkish", "rate hike", "hikes", "raises rates", "tightening", "beats", "beat expectations",
		"stronger than expected", "better than expected", "higher than expected", "surge", "surges", "rally", "rallies",
		"strengthens", "gains", "upbeat", "robust", "accelerates", "rises", "rebounds", "upgrade"}
	bearishWords = []string{"dovish", "rate cut", "cuts", "cuts rates", "easing", "misses", "missed expectations",
		"weaker than expected", "worse than expected", "lower than expected", "slump", "slumps", "plunge", "plunges",
		"falls", "weakens", "recession", "contraction", "slowdown", "declines", "downgrade", "losses"}
)

// Deviation returns the signed percent deviation of actual from forecast, or from previous
// when there is no forecast. ok is false when actual or both references are missing, or
// when the deviation overflows float64.
func Deviation(actual, forecast, previous *float64) (d float64, ok bool) {
	if actual == nil {
		return 0, false
	}
	ref := forecast
	if ref == nil {
		ref = previous
	}
	if ref == nil {
		return 0, false
	}
	if *ref == 0 {
		d = *actual * 100
	} else {
		d = (*actual - *ref) / math.Abs(*ref) * 100
	}
	if math.IsInf(d, 0) || math.IsNaN(d) {
		return 0, false
	}
	return d, true
}

// SentimentFromDeviation labels a deviation under the event type's polarity and threshold.
func SentimentFromDeviation(t models.EventType, d float64) models.Sentiment {
	signed := Polarity(t) * d
	th := Threshold(t)
	switch {
	case signed > th:
		return models.Bullish
	case signed < -th:
		return models.Bearish
	default:
		return models.Neutral
	}
}

// ScoreFromDeviation maps a deviation onto 0..100 with 50 as neutral.
func ScoreFromDeviation(t models.EventType, d float64) float64 {
	return clamp(50+Polarity(t)*d*5, 0, 100)
}

// ScoreFromLabel is used when only a label is known.
func ScoreFromLabel(s models.Sentiment) float64 {
	switch s {
	case models.Bullish:
		return ScoreBullish
	case models.Bearish:
		return ScoreBearish
	default:
		return ScoreNeutral
	}
}

// ParseSentiment reads an explicit source label.
func ParseSentiment(s string) (models.Sentiment, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "bullish", "positive", "hawkish", "bull", "up":
		return models.Bullish, true
	case "bearish", "negative", "dovish", "bear", "down":
		return models.Bearish, true
	case "neutral", "mixed", "flat":
		return models.Neutral, true
	}
	return "", false
}

// KeywordSentiment counts bullish and bearish phrases in text. Hits are flipped for
// inverted-polarity event types. matched is false when no phrase was found.
func KeywordSentiment(t models.EventType, text string) (s models.Sentiment, matched bool) {
	padded := " " + tokenize(text) + " "
	bull, bear := countHits(padded, bullishWords), countHits(padded, bearishWords)
	if bull == 0 && bear == 0 {
		return models.Neutral, false
	}
	if Polarity(t) < 0 {
		bull, bear = bear, bull
	}
	switch {
	case bull > bear:
		return models.Bullish, true
	case bear > bull:
		return models.Bearish, true
	default:
		return models.Neutral, true
	}
}

func countHits(padded string, words []string) int {
	n := 0
	for _, w := range words {
		if strings.Contains(padded, " "+w+" ") {
			n++
		}
	}
	return n
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return math.Max(lo, math.Min(hi, v))
}
