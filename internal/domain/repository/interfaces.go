package repository

import (
	"context"
	"errors"
	"time"

	"FxPulse/internal/domain/models"
)

var (
	// ErrSourceUnavailable marks a source that cannot run, e.g. a missing API key.
	ErrSourceUnavailable = errors.New("source unavailable")
	// ErrNoRecords is returned when every variant answered but none produced a record.
	ErrNoRecords = errors.New("no records")
)

// Source is one upstream adapter.
type Source interface {
	Name() string
	Fetch(ctx context.Context) (*models.FetchResult, error)
}

type EventStore interface {
	Init(ctx context.Context) error // ensure tables, health checks
	StoreEvents(ctx context.Context, events []models.EconomicEvent) error
	RecentEvents(ctx context.Context, currency models.Currency, since time.Time) ([]models.EconomicEvent, error)
	Health(ctx context.Context) error // ping
	Close() error
}

// StrengthStore keeps strength history. LatestStrength returns nil, nil when none exists.
type StrengthStore interface {
	SaveStrength(ctx context.Context, results []models.CurrencyStrengthResult) error
	LatestStrength(ctx context.Context, currency models.Currency) (*models.CurrencyStrengthResult, error)
}

type Publisher interface {
	PublishEvents(ctx context.Context, events []models.EconomicEvent) error
	PublishStrength(ctx context.Context, results []models.CurrencyStrengthResult) error
	Close() error
}

type Metrics interface {
	RecordSourceResult(source string, success bool, seconds float64, events, dropped int)
	RecordEventsStored(backend string, n int)
	RecordError(kind string)
	RecordStrength(currency string, score float64)
	RecordPower(currency string, rank, score int)
	RecordLatency(op string, seconds float64)
}
