package usecase

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"FxPulse/internal/domain/models"
	drepo "FxPulse/internal/domain/repository"
	domsvc "FxPulse/internal/domain/service"
	"FxPulse/internal/middleware"
	cyclemetrics "FxPulse/internal/service/metrics"
	pkgcache "FxPulse/pkg/cache"
	applogger "FxPulse/pkg/logger"
)

const cycleLockKey = "lock:cycle"

// ErrCycleRunning is returned when another cycle holds the cycle lock.
var ErrCycleRunning = errors.New("cycle already running")

// Cycle is one collect, sink, score and publish pass over every configured currency.
type Cycle struct {
	orch       *CollectionOrchestrator
	pipe       *middleware.EventPipeline
	store      drepo.EventStore
	history    *StrengthHistory
	agg        domsvc.StrengthAggregator
	ranker     domsvc.PowerRanker
	cache      pkgcache.Service
	metrics    drepo.Metrics
	currencies []models.Currency

	pub      drepo.Publisher
	cacheTTL time.Duration
	lockTTL  time.Duration
	now      func() time.Time
	l        *applogger.Logger

	last atomic.Pointer[models.CycleSummary]
}

type CycleOption func(*Cycle)

// WithStrengthPublisher publishes every cycle's strength results.
func WithStrengthPublisher(pub drepo.Publisher) CycleOption {
	return func(c *Cycle) { c.pub = pub }
}

func WithCacheTTL(ttl time.Duration) CycleOption {
	return func(c *Cycle) {
		if ttl > 0 {
			c.cacheTTL = ttl
		}
	}
}

// WithLockTTL bounds how long a crashed cycle can block the next one.
func WithLockTTL(ttl time.Duration) CycleOption {
	return func(c *Cycle) {
		if ttl > 0 {
			c.lockTTL = ttl
		}
	}
}

func WithCycleClock(now func() time.Time) CycleOption {
	return func(c *Cycle) { c.now = now }
}

func WithCycleLogger(l *applogger.Logger) CycleOption {
	return func(c *Cycle) {
		if l != nil {
			c.l = l
		}
	}
}

// NewCycle creates a cycle runner. store may be nil; strength then only sees the
// events of the current batch.
func NewCycle(
	orch *CollectionOrchestrator,
	pipe *middleware.EventPipeline,
	store drepo.EventStore,
	history *StrengthHistory,
	agg domsvc.StrengthAggregator,
	ranker domsvc.PowerRanker,
	cache pkgcache.Service,
	metrics drepo.Metrics,
	currencies []models.Currency,
	opts ...CycleOption,
) *Cycle {
	c := &Cycle{
		orch:       orch,
		pipe:       pipe,
		store:      store,
		history:    history,
		agg:        agg,
		ranker:     ranker,
		cache:      cache,
		metrics:    metrics,
		currencies: currencies,
		cacheTTL:   24 * time.Hour,
		lockTTL:    10 * time.Minute,
		now:        time.Now,
		l:          applogger.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Last returns the summary of the most recent completed cycle, or nil.
func (c *Cycle) Last() *models.CycleSummary { return c.last.Load() }

// Run executes one cycle. Source and backend failures are logged and counted, never
// returned; only cancellation and lock contention are errors.
func (c *Cycle) Run(ctx context.Context) error {
	ok, err := c.cache.TryLock(ctx, cycleLockKey, c.lockTTL)
	if err != nil {
		c.l.Warn("cycle lock unavailable, running unlocked", applogger.Error(err))
	} else if !ok {
		return ErrCycleRunning
	} else {
		defer func() { _ = c.cache.Unlock(context.WithoutCancel(ctx), cycleLockKey) }()
	}

	sum := &models.CycleSummary{StartedAt: c.now().UTC()}
	results, batch := c.orch.Collect(ctx)
	if err := ctx.Err(); err != nil {
		return err
	}
	sum.Results = results
	sum.EventCount = len(batch)

	stored, err := c.pipe.ProcessBatch(ctx, batch)
	if err != nil {
		c.l.Warn("event sink failed, batch buffered",
			applogger.Error(err),
			applogger.Int("events", len(batch)),
			applogger.Int("buffered", c.pipe.Buffered()),
		)
	}
	sum.Stored = stored

	sum.Strength = c.scoreStrength(ctx, batch)
	if err := ctx.Err(); err != nil {
		return err
	}
	sum.Power = c.rankPower(ctx, batch)
	c.cacheEvents(ctx, batch)

	if c.pub != nil {
		if err := c.pub.PublishStrength(ctx, sum.Strength); err != nil {
			c.metrics.RecordError("publish_strength")
			c.l.Warn("publish strength failed", applogger.Error(err))
		}
	}

	sum.FinishedAt = c.now().UTC()
	c.last.Store(sum)

	elapsed := sum.FinishedAt.Sub(sum.StartedAt)
	cyclemetrics.CycleDuration.Observe(elapsed.Seconds())
	cyclemetrics.CycleSourcesOK.Set(float64(sum.SourcesOK()))
	if sum.EventCount > 0 {
		cyclemetrics.CycleLastSuccess.Set(float64(sum.FinishedAt.Unix()))
	}
	c.l.Info("cycle finished",
		applogger.Int("sources_ok", sum.SourcesOK()),
		applogger.Int("sources", len(sum.Results)),
		applogger.Int("events", sum.EventCount),
		applogger.Int("stored", sum.Stored),
		applogger.Duration("elapsed_ms", elapsed),
	)
	return nil
}

func (c *Cycle) scoreStrength(ctx context.Context, batch []models.EconomicEvent) []models.CurrencyStrengthResult {
	since := c.now().Add(-c.agg.Window())
	out := make([]models.CurrencyStrengthResult, 0, len(c.currencies))
	for _, cur := range c.currencies {
		events := c.recentEvents(ctx, cur, since, batch)

		prev, err := c.history.Previous(ctx, cur)
		if err != nil {
			c.l.Warn("previous strength lookup failed",
				applogger.String("currency", cur.String()),
				applogger.Error(err),
			)
			prev = nil
		}

		res := c.agg.Aggregate(cur, events, prev)
		c.metrics.RecordStrength(cur.String(), res.StrengthScore)
		out = append(out, res)
	}

	if err := c.history.Remember(ctx, out); err != nil {
		c.metrics.RecordError("strength_save")
		c.l.Warn("strength history not saved", applogger.Error(err))
	}
	return out
}

// recentEvents merges stored events with the current batch, first occurrence of an ID wins.
func (c *Cycle) recentEvents(ctx context.Context, cur models.Currency, since time.Time, batch []models.EconomicEvent) []models.EconomicEvent {
	var stored []models.EconomicEvent
	if c.store != nil {
		var err error
		stored, err = c.store.RecentEvents(ctx, cur, since)
		if err != nil {
			c.metrics.RecordError("recent_events")
			c.l.Warn("recent events unavailable, scoring batch only",
				applogger.String("currency", cur.String()),
				applogger.Error(err),
			)
		}
	}

	seen := make(map[string]struct{}, len(stored)+len(batch))
	out := make([]models.EconomicEvent, 0, len(stored)+len(batch))
	for _, group := range [][]models.EconomicEvent{batch, stored} {
		for _, e := range group {
			if e.Currency != cur || e.EventDate.Before(since) {
				continue
			}
			if _, dup := seen[e.ID]; dup {
				continue
			}
			seen[e.ID] = struct{}{}
			out = append(out, e)
		}
	}
	return out
}

func (c *Cycle) rankPower(ctx context.Context, batch []models.EconomicEvent) []models.CurrencyPowerScore {
	ranked := c.ranker.Rank(c.currencies, batch)
	for _, p := range ranked {
		c.metrics.RecordPower(p.Currency.String(), p.Rank, p.TotalScore)
		if err := c.cache.Set(ctx, pkgcache.Key(pkgcache.TypePower, p.Currency.String()), p, c.cacheTTL); err != nil {
			c.metrics.RecordError("cache_set")
		}
	}
	return ranked
}

func (c *Cycle) cacheEvents(ctx context.Context, batch []models.EconomicEvent) {
	for _, cur := range c.currencies {
		var mine []models.EconomicEvent
		for i := range batch {
			if batch[i].HasCurrency(cur) {
				mine = append(mine, batch[i])
			}
		}
		if len(mine) == 0 {
			continue
		}
		if err := c.cache.Set(ctx, pkgcache.Key(pkgcache.TypeEvents, cur.String()), mine, c.cacheTTL); err != nil {
			c.metrics.RecordError("cache_set")
			c.l.Debug("events cache write failed", applogger.String("currency", cur.String()), applogger.Error(err))
		}
	}
}
