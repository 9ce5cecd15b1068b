package service

import (
	"time"

	"FxPulse/internal/domain/models"
)

// Normalizer turns one raw record into at most one canonical event.
type Normalizer interface {
	Normalize(rec models.RawSourceRecord) (models.EconomicEvent, bool)
}

// StrengthAggregator scores one currency from its recent events. previous may be nil.
type StrengthAggregator interface {
	Aggregate(currency models.Currency, events []models.EconomicEvent, previous *models.CurrencyStrengthResult) models.CurrencyStrengthResult
	Window() time.Duration
}

// PowerRanker scores and ranks currencies from a pool of events.
type PowerRanker interface {
	Rank(currencies []models.Currency, events []models.EconomicEvent) []models.CurrencyPowerScore
}
