package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"FxPulse/internal/domain/models"
	domrepo "FxPulse/internal/domain/repository"
	pkgch "FxPulse/pkg/clickhouse"
	applogger "FxPulse/pkg/logger"
)

// CHEventStore implements EventStore and StrengthStore backed by ClickHouse.
type CHEventStore struct {
	ch       *pkgch.Client
	db       *sql.DB
	events   string
	strength string
	l        *applogger.Logger
}

func NewCHEventStore(ch *pkgch.Client) *CHEventStore {
	return &CHEventStore{
		ch:       ch,
		db:       ch.DB(),
		events:   ch.Table("economic_events"),
		strength: ch.Table("currency_strength"),
		l:        applogger.Nop(),
	}
}

// SetLogger injects a structured logger.
func (s *CHEventStore) SetLogger(l *applogger.Logger) {
	if l != nil {
		s.l = l
	}
}

// Init creates the tables. Events are deduplicated by id on merge.
func (s *CHEventStore) Init(ctx context.Context) error {
	return s.ch.InitSchema(ctx,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id String,
			currency LowCardinality(String),
			related String,
			event_type LowCardinality(String),
			title String,
			description String,
			event_date DateTime64(3, 'UTC'),
			actual Nullable(Float64),
			expected Nullable(Float64),
			previous Nullable(Float64),
			impact LowCardinality(String),
			sentiment LowCardinality(String),
			sentiment_score Nullable(Float64),
			confidence Float64,
			price_impact Nullable(Float64),
			source LowCardinality(String),
			url String,
			simulated Bool,
			ingested_at DateTime64(3, 'UTC') DEFAULT now64(3)
		) ENGINE = ReplacingMergeTree(ingested_at)
		PARTITION BY toYYYYMM(event_date)
		ORDER BY (currency, id)`, s.events),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			currency LowCardinality(String),
			strength_score Float64,
			sentiment LowCardinality(String),
			confidence Float64,
			trend LowCardinality(String),
			indicators UInt32,
			tiers String,
			last_update DateTime64(3, 'UTC')
		) ENGINE = MergeTree
		ORDER BY (currency, last_update)`, s.strength),
	)
}

// StoreEvents inserts events as one batch.
func (s *CHEventStore) StoreEvents(ctx context.Context, events []models.EconomicEvent) error {
	if len(events) == 0 {
		return nil
	}
	start := time.Now()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin batch: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf("INSERT INTO %s (%s)", s.events, eventColumns))
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("prepare batch: %w", err)
	}
	defer stmt.Close()

	for i := range events {
		if _, err := stmt.ExecContext(ctx, eventArgs(&events[i], events[i].EventDate.UTC())...); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("append event %s: %w", events[i].ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		s.l.Error("clickhouse store_events commit error",
			applogger.Int("rows", len(events)),
			applogger.Error(err),
		)
		return fmt.Errorf("send batch: %w", err)
	}
	s.l.Debug("clickhouse store_events",
		applogger.Int("rows", len(events)),
		applogger.Duration("elapsed_ms", time.Since(start)),
	)
	return nil
}

// RecentEvents returns events of currency dated at or after since, newest first.
func (s *CHEventStore) RecentEvents(ctx context.Context, currency models.Currency, since time.Time) ([]models.EconomicEvent, error) {
	q := fmt.Sprintf(`SELECT %s FROM %s FINAL
		WHERE currency = ? AND event_date >= ?
		ORDER BY event_date DESC`, eventColumns, s.events)
	rows, err := s.db.QueryContext(ctx, q, string(currency), since.UTC())
	if err != nil {
		s.l.Error("clickhouse recent_events query error",
			applogger.String("currency", currency.String()),
			applogger.Error(err),
		)
		return nil, fmt.Errorf("recent events: %w", err)
	}
	defer rows.Close()

	var out []models.EconomicEvent
	for rows.Next() {
		var r eventRow
		if err := rows.Scan(r.targets(&r.e.EventDate)...); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		e := r.event()
		e.EventDate = e.EventDate.UTC()
		out = append(out, e)
	}
	return out, rows.Err()
}

// SaveStrength appends one history row per result.
func (s *CHEventStore) SaveStrength(ctx context.Context, results []models.CurrencyStrengthResult) error {
	if len(results) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin batch: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf(
		"INSERT INTO %s (currency, strength_score, sentiment, confidence, trend, indicators, tiers, last_update)", s.strength))
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("prepare batch: %w", err)
	}
	defer stmt.Close()

	for _, r := range results {
		tiers, err := json.Marshal(r.TierBreakdown)
		if err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("encode tiers: %w", err)
		}
		if _, err := stmt.ExecContext(ctx, string(r.Currency), r.StrengthScore, string(r.Sentiment),
			r.ConfidenceLevel, string(r.Trend), uint32(r.IndicatorsCount), string(tiers), r.LastUpdate.UTC()); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("append strength %s: %w", r.Currency, err)
		}
	}
	return tx.Commit()
}

// LatestStrength returns the newest history row of currency, or nil.
func (s *CHEventStore) LatestStrength(ctx context.Context, currency models.Currency) (*models.CurrencyStrengthResult, error) {
	q := fmt.Sprintf(`SELECT currency, strength_score, sentiment, confidence, trend, indicators, tiers, last_update
		FROM %s WHERE currency = ? ORDER BY last_update DESC LIMIT 1`, s.strength)

	var (
		r                     models.CurrencyStrengthResult
		cur, sentiment, trend string
		indicators            uint32
		tiers                 string
	)
	err := s.db.QueryRowContext(ctx, q, string(currency)).
		Scan(&cur, &r.StrengthScore, &sentiment, &r.ConfidenceLevel, &trend, &indicators, &tiers, &r.LastUpdate)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("latest strength: %w", err)
	}
	r.Currency = models.Currency(cur)
	r.Sentiment = models.Sentiment(sentiment)
	r.Trend = models.Trend(trend)
	r.IndicatorsCount = int(indicators)
	r.LastUpdate = r.LastUpdate.UTC()
	if err := json.Unmarshal([]byte(tiers), &r.TierBreakdown); err != nil {
		return nil, fmt.Errorf("decode tiers: %w", err)
	}
	return &r, nil
}

func (s *CHEventStore) Health(ctx context.Context) error {
	return s.ch.Health(ctx)
}

func (s *CHEventStore) Close() error {
	return nil // pool owned by pkg/clickhouse
}

var (
	_ domrepo.EventStore    = (*CHEventStore)(nil)
	_ domrepo.StrengthStore = (*CHEventStore)(nil)
)
