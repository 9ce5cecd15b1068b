package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"FxPulse/internal/domain/models"
	domrepo "FxPulse/internal/domain/repository"
	domsvc "FxPulse/internal/domain/service"
	xhttp "FxPulse/pkg/http"
	applogger "FxPulse/pkg/logger"
)

// CollectionOrchestrator runs every source concurrently, normalizes what they return and
// reports one CollectionResult per source in source order.
type CollectionOrchestrator struct {
	sources        []domrepo.Source
	normalizer     domsvc.Normalizer
	metrics        domrepo.Metrics
	maxConcurrency int
	sourceTimeout  time.Duration
	l              *applogger.Logger
}

type OrchestratorOption func(*CollectionOrchestrator)

// WithMaxConcurrency bounds how many sources run at once.
func WithMaxConcurrency(n int) OrchestratorOption {
	return func(o *CollectionOrchestrator) {
		if n > 0 {
			o.maxConcurrency = n
		}
	}
}

// WithSourceTimeout caps the total time one source may take, variants included.
func WithSourceTimeout(d time.Duration) OrchestratorOption {
	return func(o *CollectionOrchestrator) { o.sourceTimeout = d }
}

func WithOrchestratorLogger(l *applogger.Logger) OrchestratorOption {
	return func(o *CollectionOrchestrator) {
		if l != nil {
			o.l = l
		}
	}
}

func NewCollectionOrchestrator(sources []domrepo.Source, normalizer domsvc.Normalizer, metrics domrepo.Metrics, opts ...OrchestratorOption) *CollectionOrchestrator {
	o := &CollectionOrchestrator{
		sources:        sources,
		normalizer:     normalizer,
		metrics:        metrics,
		maxConcurrency: 4,
		l:              applogger.Nop(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Sources returns the configured source names.
func (o *CollectionOrchestrator) Sources() []string {
	names := make([]string, len(o.sources))
	for i, s := range o.sources {
		names[i] = s.Name()
	}
	return names
}

// Collect waits for every source. A failing source never fails the collection:
// its error lands in its CollectionResult. Events are merged in source order,
// first occurrence of an ID wins.
func (o *CollectionOrchestrator) Collect(ctx context.Context) ([]models.CollectionResult, []models.EconomicEvent) {
	results := make([]models.CollectionResult, len(o.sources))
	sem := make(chan struct{}, o.maxConcurrency)
	var wg sync.WaitGroup

	for i, src := range o.sources {
		wg.Add(1)
		go func(i int, src domrepo.Source) {
			defer wg.Done()
			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				results[i] = models.CollectionResult{Source: src.Name(), Error: ctx.Err().Error()}
				return
			}
			results[i] = o.runSource(ctx, src)
		}(i, src)
	}
	wg.Wait()

	var merged []models.EconomicEvent
	seen := make(map[string]struct{})
	for _, r := range results {
		for _, e := range r.Events {
			if _, dup := seen[e.ID]; dup {
				continue
			}
			seen[e.ID] = struct{}{}
			merged = append(merged, e)
		}
	}
	return results, merged
}

func (o *CollectionOrchestrator) runSource(ctx context.Context, src domrepo.Source) (res models.CollectionResult) {
	res.Source = src.Name()
	start := time.Now()

	if o.sourceTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.sourceTimeout)
		defer cancel()
	}

	defer func() {
		if r := recover(); r != nil {
			res.Success = false
			res.Events = nil
			res.EventCount = 0
			res.Error = fmt.Sprintf("panic: %v", r)
			o.metrics.RecordError("source_panic")
		}
		res.ResponseTimeMs = time.Since(start).Milliseconds()
		o.metrics.RecordSourceResult(res.Source, res.Success, time.Since(start).Seconds(), res.EventCount, res.Dropped)
		if !res.Success {
			o.l.Warn("source failed",
				applogger.String("source", res.Source),
				applogger.String("error", res.Error),
				applogger.Int("variants", res.Variants),
				applogger.Int("variants_ok", res.VariantsOK),
			)
			return
		}
		o.l.Info("source collected",
			applogger.String("source", res.Source),
			applogger.Int("events", res.EventCount),
			applogger.Int("dropped", res.Dropped),
			applogger.Int64("response_ms", res.ResponseTimeMs),
		)
	}()

	fr, err := src.Fetch(ctx)
	if fr != nil {
		res.Dropped = fr.Dropped
		res.Variants = fr.Variants
		res.VariantsOK = fr.VariantsOK
		res.StatusCode = fr.StatusCode
	}
	if err != nil {
		res.Error = err.Error()
		if res.StatusCode == 0 {
			res.StatusCode = xhttp.StatusCode(err)
		}
		if errors.Is(err, domrepo.ErrSourceUnavailable) {
			o.metrics.RecordError("source_unavailable")
		} else {
			o.metrics.RecordError("source_fetch")
		}
		return res
	}
	if fr == nil {
		res.Error = domrepo.ErrNoRecords.Error()
		return res
	}

	for _, rec := range fr.Records {
		ev, ok := o.normalizer.Normalize(rec)
		if !ok {
			res.Dropped++
			continue
		}
		res.Events = append(res.Events, ev)
	}
	res.EventCount = len(res.Events)
	if res.EventCount == 0 {
		res.Error = domrepo.ErrNoRecords.Error()
		return res
	}
	res.Success = true
	return res
}
