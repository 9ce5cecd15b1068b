package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	"FxPulse/internal/domain/models"
)

type stubSource struct {
	name  string
	fr    *models.FetchResult
	err   error
	panic bool
	delay time.Duration
}

func (s *stubSource) Name() string { return s.name }

func (s *stubSource) Fetch(ctx context.Context) (*models.FetchResult, error) {
	if s.panic {
		panic("boom")
	}
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return s.fr, s.err
}

func apiRow(source, currency, title string, date time.Time, actual, forecast float64) models.APIRowRecord {
	return models.APIRowRecord{
		RecordOrigin: models.RecordOrigin{Source: source, FetchedAt: date},
		Currency:     currency,
		Title:        title,
		Date:         date.Format(time.RFC3339),
		Actual:       &actual,
		Forecast:     &forecast,
	}
}

// memStore implements EventStore and StrengthStore.
type memStore struct {
	mu       sync.Mutex
	events   []models.EconomicEvent
	strength map[models.Currency]models.CurrencyStrengthResult
	failNext int
	closed   bool
}

func newMemStore() *memStore {
	return &memStore{strength: map[models.Currency]models.CurrencyStrengthResult{}}
}

func (m *memStore) Init(context.Context) error { return nil }

func (m *memStore) StoreEvents(_ context.Context, events []models.EconomicEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failNext > 0 {
		m.failNext--
		return errors.New("store down")
	}
	// Upsert by id, like the SQL stores.
	for _, e := range events {
		replaced := false
		for i := range m.events {
			if m.events[i].ID == e.ID {
				m.events[i] = e
				replaced = true
				break
			}
		}
		if !replaced {
			m.events = append(m.events, e)
		}
	}
	return nil
}

func (m *memStore) RecentEvents(_ context.Context, c models.Currency, since time.Time) ([]models.EconomicEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.EconomicEvent
	for _, e := range m.events {
		if e.Currency == c && !e.EventDate.Before(since) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *memStore) Health(context.Context) error { return nil }

func (m *memStore) Close() error {
	m.closed = true
	return nil
}

func (m *memStore) SaveStrength(_ context.Context, results []models.CurrencyStrengthResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range results {
		m.strength[r.Currency] = r
	}
	return nil
}

func (m *memStore) LatestStrength(_ context.Context, c models.Currency) (*models.CurrencyStrengthResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.strength[c]
	if !ok {
		return nil, nil
	}
	return &r, nil
}

func (m *memStore) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.events)
}

type fakePublisher struct {
	events   []models.EconomicEvent
	strength []models.CurrencyStrengthResult
	err      error
}

func (p *fakePublisher) PublishEvents(_ context.Context, events []models.EconomicEvent) error {
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, events...)
	return nil
}

func (p *fakePublisher) PublishStrength(_ context.Context, results []models.CurrencyStrengthResult) error {
	if p.err != nil {
		return p.err
	}
	p.strength = append(p.strength, results...)
	return nil
}

func (p *fakePublisher) Close() error { return nil }

type recMetrics struct {
	mu       sync.Mutex
	sources  map[string]bool
	errors   map[string]int
	stored   map[string]int
	strength map[string]float64
	ranks    map[string]int
}

func newRecMetrics() *recMetrics {
	return &recMetrics{
		sources:  map[string]bool{},
		errors:   map[string]int{},
		stored:   map[string]int{},
		strength: map[string]float64{},
		ranks:    map[string]int{},
	}
}

func (r *recMetrics) RecordSourceResult(source string, success bool, _ float64, _, _ int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sources[source] = success
}

func (r *recMetrics) RecordEventsStored(backend string, n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stored[backend] += n
}

func (r *recMetrics) RecordError(kind string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errors[kind]++
}

func (r *recMetrics) RecordStrength(currency string, score float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.strength[currency] = score
}

func (r *recMetrics) RecordPower(currency string, rank, _ int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ranks[currency] = rank
}

func (r *recMetrics) RecordLatency(string, float64) {}
