package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"FxPulse/internal/domain/models"
	drepo "FxPulse/internal/domain/repository"
	pkgcache "FxPulse/pkg/cache"
)

// StrengthHistory answers "what was the last strength of this currency", cache first.
type StrengthHistory struct {
	cache pkgcache.Service
	store drepo.StrengthStore
	ttl   time.Duration
}

// NewStrengthHistory creates a history. store may be nil; the cache alone then
// provides the trend baseline.
func NewStrengthHistory(cache pkgcache.Service, store drepo.StrengthStore, ttl time.Duration) *StrengthHistory {
	return &StrengthHistory{cache: cache, store: store, ttl: ttl}
}

// Previous returns the last known result or nil when none exists.
func (h *StrengthHistory) Previous(ctx context.Context, c models.Currency) (*models.CurrencyStrengthResult, error) {
	var cached models.CurrencyStrengthResult
	err := h.cache.Get(ctx, pkgcache.Key(pkgcache.TypeStrength, c.String()), &cached)
	if err == nil {
		return &cached, nil
	}
	if !errors.Is(err, pkgcache.ErrCacheMiss) {
		return nil, fmt.Errorf("strength cache: %w", err)
	}
	if h.store == nil {
		return nil, nil
	}
	return h.store.LatestStrength(ctx, c)
}

// Remember caches and persists results. Cache failures do not stop persistence.
func (h *StrengthHistory) Remember(ctx context.Context, results []models.CurrencyStrengthResult) error {
	var errs []error
	for _, r := range results {
		if err := h.cache.Set(ctx, pkgcache.Key(pkgcache.TypeStrength, r.Currency.String()), r, h.ttl); err != nil {
			errs = append(errs, fmt.Errorf("cache %s: %w", r.Currency, err))
		}
	}
	if h.store != nil && len(results) > 0 {
		if err := h.store.SaveStrength(ctx, results); err != nil {
			errs = append(errs, fmt.Errorf("save strength: %w", err))
		}
	}
	return errors.Join(errs...)
}
