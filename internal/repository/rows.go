package repository

import (
	"database/sql"
	"strings"

	"FxPulse/internal/domain/models"
)

// eventColumns is the column order shared by every SQL event store.
const eventColumns = `id, currency, related, event_type, title, description, event_date,
	actual, expected, previous, impact, sentiment, sentiment_score, confidence,
	price_impact, source, url, simulated`

// eventUpdates refreshes a stored row when a later collection carries released values.
const eventUpdates = `related = excluded.related, event_type = excluded.event_type,
	description = excluded.description, actual = excluded.actual, expected = excluded.expected,
	previous = excluded.previous, impact = excluded.impact, sentiment = excluded.sentiment,
	sentiment_score = excluded.sentiment_score, confidence = excluded.confidence,
	price_impact = excluded.price_impact, url = excluded.url, ingested_at = excluded.ingested_at`

// eventRow holds scan targets for one row of eventColumns.
type eventRow struct {
	e                                     models.EconomicEvent
	currency, related, eventType          string
	impact, sentiment                     string
	actual, expected, previous, sentScore sql.NullFloat64
	priceImpact                           sql.NullFloat64
}

// targets returns Scan destinations; date receives event_date in the store's own encoding.
func (r *eventRow) targets(date any) []any {
	return []any{
		&r.e.ID, &r.currency, &r.related, &r.eventType, &r.e.Title, &r.e.Description, date,
		&r.actual, &r.expected, &r.previous, &r.impact, &r.sentiment, &r.sentScore, &r.e.ConfidenceScore,
		&r.priceImpact, &r.e.Source, &r.e.URL, &r.e.Simulated,
	}
}

func (r *eventRow) event() models.EconomicEvent {
	e := r.e
	e.Currency = models.Currency(r.currency)
	e.RelatedCurrencies = splitRelated(r.related)
	e.EventType = models.EventType(r.eventType)
	e.Impact = models.Impact(r.impact)
	e.Sentiment = models.Sentiment(r.sentiment)
	e.ActualValue = fromNull(r.actual)
	e.ExpectedValue = fromNull(r.expected)
	e.PreviousValue = fromNull(r.previous)
	e.SentimentScore = fromNull(r.sentScore)
	e.PriceImpact = fromNull(r.priceImpact)
	return e
}

// eventArgs returns insert arguments in eventColumns order.
func eventArgs(e *models.EconomicEvent, date any) []any {
	return []any{
		e.ID, string(e.Currency), joinRelated(e.RelatedCurrencies), string(e.EventType), e.Title, e.Description, date,
		toNull(e.ActualValue), toNull(e.ExpectedValue), toNull(e.PreviousValue), string(e.Impact), string(e.Sentiment),
		toNull(e.SentimentScore), e.ConfidenceScore, toNull(e.PriceImpact), e.Source, e.URL, e.Simulated,
	}
}

func joinRelated(cs []models.Currency) string {
	parts := make([]string, len(cs))
	for i, c := range cs {
		parts[i] = string(c)
	}
	return strings.Join(parts, ",")
}

func splitRelated(s string) []models.Currency {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]models.Currency, 0, len(parts))
	for _, p := range parts {
		if c := models.Currency(p); c.Valid() {
			out = append(out, c)
		}
	}
	return out
}

func toNull(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func fromNull(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}
