package usecase

import (
	"context"
	"fmt"
	"time"

	"FxPulse/internal/domain/models"
	drepo "FxPulse/internal/domain/repository"
)

// Backend names accepted by EventProcessor.
const (
	BackendKafka      = "kafka"
	BackendClickHouse = "clickhouse"
	BackendSQLite     = "sqlite"
)

// EventProcessor routes canonical events to the configured backend.
type EventProcessor struct {
	pub     drepo.Publisher
	store   drepo.EventStore
	metrics drepo.Metrics
	backend string
	batchSz int
}

// NewEventProcessor creates a new EventProcessor instance. pub may be nil unless
// the backend is kafka; store may be nil when it is.
func NewEventProcessor(
	pub drepo.Publisher,
	store drepo.EventStore,
	metrics drepo.Metrics,
	backend string,
	batchSz int,
) *EventProcessor {
	if batchSz <= 0 {
		batchSz = 500
	}
	return &EventProcessor{
		pub:     pub,
		store:   store,
		metrics: metrics,
		backend: backend,
		batchSz: batchSz,
	}
}

// Backend returns the configured backend name.
func (p *EventProcessor) Backend() string { return p.backend }

// ProcessBatch writes events in chunks of the configured batch size.
func (p *EventProcessor) ProcessBatch(ctx context.Context, events []models.EconomicEvent) error {
	if len(events) == 0 {
		return nil
	}

	start := time.Now()
	for lo := 0; lo < len(events); lo += p.batchSz {
		hi := min(lo+p.batchSz, len(events))
		chunk := events[lo:hi]

		var err error
		switch p.backend {
		case BackendKafka:
			if p.pub == nil {
				err = fmt.Errorf("no publisher configured")
				break
			}
			err = p.pub.PublishEvents(ctx, chunk)
		case BackendClickHouse, BackendSQLite:
			if p.store == nil {
				err = fmt.Errorf("no event store configured")
				break
			}
			err = p.store.StoreEvents(ctx, chunk)
		default:
			err = fmt.Errorf("unknown backend: %s", p.backend)
		}

		if err != nil {
			p.metrics.RecordError("process_batch")
			return fmt.Errorf("process batch: %w", err)
		}
		p.metrics.RecordEventsStored(p.backend, len(chunk))
	}
	p.metrics.RecordLatency("process_batch", time.Since(start).Seconds())

	return nil
}

// Close closes underlying resources if available.
func (p *EventProcessor) Close() {
	if p.pub != nil {
		_ = p.pub.Close()
	}
	if p.store != nil {
		_ = p.store.Close()
	}
}
