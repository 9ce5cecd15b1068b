package models

import "time"

// Tier is one of the five indicator categories used by the strength aggregator.
type Tier string

const (
	TierMonetaryPolicy Tier = "MONETARY_POLICY"
	TierInflation      Tier = "INFLATION"
	TierGrowth         Tier = "GROWTH"
	TierSentiment      Tier = "SENTIMENT"
	TierExternal       Tier = "EXTERNAL"
)

// Tiers lists tiers in breakdown order.
var Tiers = []Tier{TierMonetaryPolicy, TierInflation, TierGrowth, TierSentiment, TierExternal}

// TierWeights sum to 1.
var TierWeights = map[Tier]float64{
	TierMonetaryPolicy: 0.35,
	TierInflation:      0.25,
	TierGrowth:         0.20,
	TierSentiment:      0.15,
	TierExternal:       0.05,
}

type Trend string

const (
	Strengthening Trend = "STRENGTHENING"
	Weakening     Trend = "WEAKENING"
	Stable        Trend = "STABLE"
)

// TierScore explains one tier's part of a strength score. Score is reported unclamped.
type TierScore struct {
	Tier         Tier    `json:"tier"`
	Weight       float64 `json:"weight"`
	Score        float64 `json:"score"`
	Contribution float64 `json:"contribution"`
	EventCount   int     `json:"event_count"`
}

// CurrencyStrengthResult is the tiered, time-decayed strength of one currency.
type CurrencyStrengthResult struct {
	Currency        Currency    `json:"currency"`
	StrengthScore   float64     `json:"strength_score"`
	Sentiment       Sentiment   `json:"sentiment"`
	ConfidenceLevel float64     `json:"confidence_level"`
	Trend           Trend       `json:"trend"`
	TierBreakdown   []TierScore `json:"tier_breakdown"`
	IndicatorsCount int         `json:"indicators_count"`
	LastUpdate      time.Time   `json:"last_update"`
}
