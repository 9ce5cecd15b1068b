package models

import "time"

type Impact string

const (
	ImpactHigh   Impact = "HIGH"
	ImpactMedium Impact = "MEDIUM"
	ImpactLow    Impact = "LOW"
)

type Sentiment string

const (
	Bullish Sentiment = "BULLISH"
	Bearish Sentiment = "BEARISH"
	Neutral Sentiment = "NEUTRAL"
)

// EventType is the indicator an event reports on. Types map to strength tiers through
// the indicator catalog; OTHER has no tier.
type EventType string

const (
	EventInterestRate       EventType = "INTEREST_RATE"
	EventCentralBank        EventType = "CENTRAL_BANK"
	EventCPI                EventType = "CPI"
	EventPPI                EventType = "PPI"
	EventGDP                EventType = "GDP"
	EventEmployment         EventType = "EMPLOYMENT"
	EventUnemployment       EventType = "UNEMPLOYMENT"
	EventJoblessClaims      EventType = "JOBLESS_CLAIMS"
	EventRetailSales        EventType = "RETAIL_SALES"
	EventIndustrial         EventType = "INDUSTRIAL_PRODUCTION"
	EventPMI                EventType = "PMI"
	EventConsumerConfidence EventType = "CONSUMER_CONFIDENCE"
	EventBusinessSentiment  EventType = "BUSINESS_SENTIMENT"
	EventTradeBalance       EventType = "TRADE_BALANCE"
	EventCurrentAccount     EventType = "CURRENT_ACCOUNT"
	EventOther              EventType = "OTHER"
)

// SourceSimulated tags every event produced by the demo generator.
const SourceSimulated = "SIMULATED"

// EconomicEvent is the canonical event shape every source is normalized into.
// Values are immutable once produced by the normalizer.
type EconomicEvent struct {
	ID                string     `json:"id"`
	Currency          Currency   `json:"currency"`
	RelatedCurrencies []Currency `json:"related_currencies,omitempty"`
	EventType         EventType  `json:"event_type"`
	Title             string     `json:"title"`
	Description       string     `json:"description,omitempty"`
	EventDate         time.Time  `json:"event_date"`
	ActualValue       *float64   `json:"actual_value,omitempty"`
	ExpectedValue     *float64   `json:"expected_value,omitempty"`
	PreviousValue     *float64   `json:"previous_value,omitempty"`
	Impact            Impact     `json:"impact"`
	Sentiment         Sentiment  `json:"sentiment"`
	SentimentScore    *float64   `json:"sentiment_score,omitempty"`
	ConfidenceScore   float64    `json:"confidence_score"`
	// PriceImpact is the polarity-adjusted surprise in percent, set when it could be computed.
	PriceImpact *float64 `json:"price_impact,omitempty"`
	Source      string   `json:"source"`
	URL         string   `json:"url,omitempty"`
	Simulated   bool     `json:"simulated,omitempty"`
}

// Currencies returns the primary currency followed by related ones, without duplicates.
func (e *EconomicEvent) Currencies() []Currency {
	out := []Currency{e.Currency}
	for _, c := range e.RelatedCurrencies {
		dup := false
		for _, o := range out {
			if o == c {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, c)
		}
	}
	return out
}

// HasCurrency reports whether the event is tagged with c.
func (e *EconomicEvent) HasCurrency(c Currency) bool {
	for _, k := range e.Currencies() {
		if k == c {
			return true
		}
	}
	return false
}
