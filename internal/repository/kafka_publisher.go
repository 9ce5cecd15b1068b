package repository

import (
	"context"

	"FxPulse/internal/domain/models"
	domrepo "FxPulse/internal/domain/repository"
	pkgkafka "FxPulse/pkg/kafka"
)

// KafkaPublisher implements Publisher for Kafka. Messages are keyed by currency so each
// currency's events stay ordered within a partition.
type KafkaPublisher struct {
	producer      *pkgkafka.Producer
	eventsTopic   string
	strengthTopic string
}

// NewKafkaPublisher creates Kafka publisher.
func NewKafkaPublisher(producer *pkgkafka.Producer, eventsTopic, strengthTopic string) *KafkaPublisher {
	return &KafkaPublisher{producer: producer, eventsTopic: eventsTopic, strengthTopic: strengthTopic}
}

func (p *KafkaPublisher) PublishEvents(ctx context.Context, events []models.EconomicEvent) error {
	if len(events) == 0 {
		return nil
	}
	msgs := make([]pkgkafka.Message, len(events))
	for i := range events {
		msgs[i] = pkgkafka.Message{Key: []byte(events[i].Currency), Value: events[i]}
	}
	return p.producer.PublishBatch(ctx, p.eventsTopic, msgs)
}

func (p *KafkaPublisher) PublishStrength(ctx context.Context, results []models.CurrencyStrengthResult) error {
	if len(results) == 0 || p.strengthTopic == "" {
		return nil
	}
	msgs := make([]pkgkafka.Message, len(results))
	for i := range results {
		msgs[i] = pkgkafka.Message{Key: []byte(results[i].Currency), Value: results[i]}
	}
	return p.producer.PublishBatch(ctx, p.strengthTopic, msgs)
}

func (p *KafkaPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}

var _ domrepo.Publisher = (*KafkaPublisher)(nil)
