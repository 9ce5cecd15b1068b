package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"FxPulse/internal/domain/models"
	domrepo "FxPulse/internal/domain/repository"

	_ "modernc.org/sqlite"
)

// SQLiteStore implements EventStore and StrengthStore in one local database file.
// Dates are stored as unix milliseconds.
type SQLiteStore struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteStore opens (or creates) the database at path. Use ":memory:" in tests.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// A single connection keeps ":memory:" databases alive and serializes writers.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Init(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS economic_events (
			id              TEXT PRIMARY KEY,
			currency        TEXT NOT NULL,
			related         TEXT NOT NULL DEFAULT '',
			event_type      TEXT NOT NULL,
			title           TEXT NOT NULL,
			description     TEXT NOT NULL DEFAULT '',
			event_date      INTEGER NOT NULL,
			actual          REAL,
			expected        REAL,
			previous        REAL,
			impact          TEXT NOT NULL,
			sentiment       TEXT NOT NULL,
			sentiment_score REAL,
			confidence      REAL NOT NULL,
			price_impact    REAL,
			source          TEXT NOT NULL,
			url             TEXT NOT NULL DEFAULT '',
			simulated       INTEGER NOT NULL DEFAULT 0,
			ingested_at     INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_events_currency_date ON economic_events(currency, event_date)`,

		`CREATE TABLE IF NOT EXISTS currency_strength (
			id             INTEGER PRIMARY KEY AUTOINCREMENT,
			currency       TEXT NOT NULL,
			strength_score REAL NOT NULL,
			sentiment      TEXT NOT NULL,
			confidence     REAL NOT NULL,
			trend          TEXT NOT NULL,
			indicators     INTEGER NOT NULL,
			tiers          TEXT NOT NULL,
			last_update    INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_strength_currency ON currency_strength(currency, last_update)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

// StoreEvents inserts events in one transaction. Existing ids are kept as they are.
func (s *SQLiteStore) StoreEvents(ctx context.Context, events []models.EconomicEvent) error {
	if len(events) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf(
		`INSERT INTO economic_events (%s, ingested_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET %s`, eventColumns, eventUpdates))
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UnixMilli()
	for i := range events {
		args := append(eventArgs(&events[i], events[i].EventDate.UnixMilli()), now)
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("insert event %s: %w", events[i].ID, err)
		}
	}
	return tx.Commit()
}

func (s *SQLiteStore) RecentEvents(ctx context.Context, currency models.Currency, since time.Time) ([]models.EconomicEvent, error) {
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(
		`SELECT %s FROM economic_events
		WHERE currency = ? AND event_date >= ?
		ORDER BY event_date DESC`, eventColumns),
		string(currency), since.UnixMilli())
	if err != nil {
		return nil, fmt.Errorf("recent events: %w", err)
	}
	defer rows.Close()

	var out []models.EconomicEvent
	for rows.Next() {
		var (
			r  eventRow
			ms int64
		)
		if err := rows.Scan(r.targets(&ms)...); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		e := r.event()
		e.EventDate = time.UnixMilli(ms).UTC()
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) SaveStrength(ctx context.Context, results []models.CurrencyStrengthResult) error {
	if len(results) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	for _, r := range results {
		tiers, err := json.Marshal(r.TierBreakdown)
		if err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("encode tiers: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO currency_strength
			(currency, strength_score, sentiment, confidence, trend, indicators, tiers, last_update)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			string(r.Currency), r.StrengthScore, string(r.Sentiment), r.ConfidenceLevel, string(r.Trend),
			r.IndicatorsCount, string(tiers), r.LastUpdate.UnixMilli(),
		); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("insert strength %s: %w", r.Currency, err)
		}
	}
	return tx.Commit()
}

func (s *SQLiteStore) LatestStrength(ctx context.Context, currency models.Currency) (*models.CurrencyStrengthResult, error) {
	var (
		r                     models.CurrencyStrengthResult
		cur, sentiment, trend string
		tiers                 string
		ms                    int64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT currency, strength_score, sentiment, confidence, trend, indicators, tiers, last_update
		FROM currency_strength WHERE currency = ?
		ORDER BY last_update DESC, id DESC LIMIT 1`, string(currency)).
		Scan(&cur, &r.StrengthScore, &sentiment, &r.ConfidenceLevel, &trend, &r.IndicatorsCount, &tiers, &ms)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("latest strength: %w", err)
	}
	r.Currency = models.Currency(cur)
	r.Sentiment = models.Sentiment(sentiment)
	r.Trend = models.Trend(trend)
	r.LastUpdate = time.UnixMilli(ms).UTC()
	if err := json.Unmarshal([]byte(tiers), &r.TierBreakdown); err != nil {
		return nil, fmt.Errorf("decode tiers: %w", err)
	}
	return &r, nil
}

func (s *SQLiteStore) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

var (
	_ domrepo.EventStore    = (*SQLiteStore)(nil)
	_ domrepo.StrengthStore = (*SQLiteStore)(nil)
)
