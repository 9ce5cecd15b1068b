package models

type PowerStrength string

const (
	PowerStrong   PowerStrength = "STRONG"
	PowerModerate PowerStrength = "MODERATE"
	PowerWeak     PowerStrength = "WEAK"
)

// CurrencyPowerScore is the tier-agnostic composite score of one currency. Rank is
// assigned after the whole batch is scored.
type CurrencyPowerScore struct {
	Currency        Currency      `json:"currency"`
	TotalScore      int           `json:"total_score"`
	SentimentScore  float64       `json:"sentiment_score"`
	ImpactScore     float64       `json:"impact_score"`
	ConfidenceScore float64       `json:"confidence_score"`
	BullishCount    int           `json:"bullish_count"`
	BearishCount    int           `json:"bearish_count"`
	NeutralCount    int           `json:"neutral_count"`
	HighCount       int           `json:"high_count"`
	MediumCount     int           `json:"medium_count"`
	LowCount        int           `json:"low_count"`
	EventCount      int           `json:"event_count"`
	Strength        PowerStrength `json:"strength"`
	Trend           Sentiment     `json:"trend"`
	Rank            int           `json:"rank"`
}
