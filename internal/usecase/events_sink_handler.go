package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"FxPulse/internal/domain/models"
	domrepo "FxPulse/internal/domain/repository"
	"FxPulse/internal/middleware"
	pkgkafka "FxPulse/pkg/kafka"
)

// EventsSinkHandler consumes the events topic and writes each event to the store.
type EventsSinkHandler struct {
	topic   string
	storage domrepo.EventStore
	metrics domrepo.Metrics
}

func NewEventsSinkHandler(topic string, storage domrepo.EventStore, metrics domrepo.Metrics) *EventsSinkHandler {
	return &EventsSinkHandler{topic: topic, storage: storage, metrics: metrics}
}

func (h *EventsSinkHandler) Topic() string { return h.topic }

// Handle stores one JSON-encoded EconomicEvent. Invalid payloads are returned as errors
// so the consumer routes them to the DLQ.
func (h *EventsSinkHandler) Handle(ctx context.Context, b []byte) error {
	var e models.EconomicEvent
	if err := json.Unmarshal(b, &e); err != nil {
		h.metrics.RecordError("consumer_unmarshal")
		return fmt.Errorf("decode event: %w", err)
	}
	if err := middleware.ValidateEvent(&e); err != nil {
		h.metrics.RecordError("consumer_validate")
		return fmt.Errorf("event %s: %w", e.ID, err)
	}

	start := time.Now()
	err := h.storage.StoreEvents(ctx, []models.EconomicEvent{e})
	h.metrics.RecordLatency("sink_insert_seconds", time.Since(start).Seconds())
	if err != nil {
		h.metrics.RecordError("consumer_store")
		return err
	}
	h.metrics.RecordEventsStored("sink", 1)
	return nil
}

var _ pkgkafka.MessageHandler = (*EventsSinkHandler)(nil)
