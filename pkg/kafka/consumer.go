package kafka

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	applogger "FxPulse/pkg/logger"

	"github.com/cenkalti/backoff/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/segmentio/kafka-go"
)

// MessageHandler handles messages from a specific topic.
type MessageHandler interface {
	Topic() string
	Handle(context.Context, []byte) error
}

// Consumer reads registered topics in a consumer group and hands messages to a worker
// pool. Failed messages are retried with backoff, then copied to the DLQ. Offsets are
// committed after handling, so a crash replays at most the in-flight messages.
type Consumer struct {
	cfg      *ConsumerConfig
	readers  map[string]*kafka.Reader
	handlers map[string]MessageHandler
	msgChan  chan kafka.Message
	dlq      *kafka.Writer
	l        *applogger.Logger

	cancel   context.CancelFunc
	readWG   sync.WaitGroup
	workWG   sync.WaitGroup
	stopOnce sync.Once
}

// NewConsumer creates a new Kafka consumer. Handlers must be registered before Start.
func NewConsumer(opts ...ConsumerOption) (*Consumer, error) {
	cfg := &ConsumerConfig{
		GroupID:     "fxpulse-sink",
		WorkerCount: 1,
		BufferSize:  64,
		RetryMax:    3,
		BackoffMin:  50 * time.Millisecond,
		BackoffMax:  2 * time.Second,
	}

	for _, opt := range opts {
		opt(cfg)
	}

	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("brokers are required")
	}

	c := &Consumer{
		cfg:      cfg,
		readers:  make(map[string]*kafka.Reader),
		handlers: make(map[string]MessageHandler),
		msgChan:  make(chan kafka.Message, cfg.BufferSize),
		l:        applogger.Nop(),
	}
	if cfg.DLQTopic != "" {
		c.dlq = &kafka.Writer{Addr: kafka.TCP(cfg.Brokers...), Topic: cfg.DLQTopic, Balancer: &kafka.LeastBytes{}}
	}

	initConsumerMetrics()
	return c, nil
}

// SetLogger injects a structured logger.
func (c *Consumer) SetLogger(l *applogger.Logger) {
	if l != nil {
		c.l = l
	}
}

// RegisterHandler registers a message handler for its topic. A second handler for the
// same topic is ignored.
func (c *Consumer) RegisterHandler(handler MessageHandler) {
	topic := handler.Topic()
	if _, ok := c.handlers[topic]; ok {
		c.l.Warn("kafka handler already registered", applogger.String("topic", topic))
		return
	}
	c.handlers[topic] = handler
}

// Start launches one reader per registered topic and the worker pool.
func (c *Consumer) Start(ctx context.Context) error {
	if len(c.handlers) == 0 {
		return fmt.Errorf("no handlers registered")
	}
	ctx, c.cancel = context.WithCancel(ctx)

	for topic := range c.handlers {
		c.readers[topic] = kafka.NewReader(kafka.ReaderConfig{
			Brokers:  c.cfg.Brokers,
			Topic:    topic,
			GroupID:  c.cfg.GroupID,
			MinBytes: 1,
			MaxBytes: 10e6,
		})
	}

	for i := 0; i < c.cfg.WorkerCount; i++ {
		c.workWG.Add(1)
		go c.worker(ctx)
	}
	for topic, reader := range c.readers {
		c.readWG.Add(1)
		go c.read(ctx, topic, reader)
	}

	c.l.Info("kafka consumer started",
		applogger.Int("topics", len(c.readers)),
		applogger.Int("workers", c.cfg.WorkerCount),
		applogger.String("group", c.cfg.GroupID),
	)
	return nil
}

// Stop stops reading, drains queued messages and closes readers.
func (c *Consumer) Stop(ctx context.Context) error {
	var stopErr error
	c.stopOnce.Do(func() {
		if c.cancel == nil {
			return
		}
		c.cancel()
		c.readWG.Wait()
		close(c.msgChan)

		done := make(chan struct{})
		go func() {
			c.workWG.Wait()
			close(done)
		}()
		select {
		case <-done:
		case <-ctx.Done():
			stopErr = fmt.Errorf("timeout waiting for consumer workers: %w", ctx.Err())
		}

		for topic, reader := range c.readers {
			if err := reader.Close(); err != nil {
				c.l.Warn("kafka reader close failed", applogger.String("topic", topic), applogger.Error(err))
			}
		}
		if c.dlq != nil {
			_ = c.dlq.Close()
		}
		c.l.Info("kafka consumer stopped")
	})
	return stopErr
}

func (c *Consumer) read(ctx context.Context, topic string, reader *kafka.Reader) {
	defer c.readWG.Done()
	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			c.l.Warn("kafka fetch failed", applogger.String("topic", topic), applogger.Error(err))
			select {
			case <-time.After(time.Second):
			case <-ctx.Done():
				return
			}
			continue
		}

		select {
		case c.msgChan <- msg:
			consumerQueueDepth.WithLabelValues(topic).Set(float64(len(c.msgChan)))
		case <-ctx.Done():
			return
		}
	}
}

func (c *Consumer) worker(ctx context.Context) {
	defer c.workWG.Done()
	for msg := range c.msgChan {
		handler, ok := c.handlers[msg.Topic]
		if !ok {
			continue
		}

		start := time.Now()
		attempts, err := c.process(ctx, handler, msg.Value)
		consumerHandleLatency.WithLabelValues(msg.Topic).Observe(time.Since(start).Seconds())

		if err != nil && ctx.Err() != nil {
			// Shutting down: leave the offset uncommitted for the next member.
			continue
		}
		if err != nil {
			consumerFailures.WithLabelValues(msg.Topic).Inc()
			c.l.Error("kafka message failed",
				applogger.String("topic", msg.Topic),
				applogger.Int("partition", msg.Partition),
				applogger.Int64("offset", msg.Offset),
				applogger.Int("attempts", attempts),
				applogger.Error(err),
			)
			if !c.deadLetter(msg, err) {
				// Without a DLQ the offset stays uncommitted and the message is redelivered.
				continue
			}
		}
		c.commit(msg)
	}
}

// process runs handler with retries. Panics count as failed attempts.
func (c *Consumer) process(ctx context.Context, handler MessageHandler, data []byte) (int, error) {
	attempts := 0
	op := func() (err error) {
		attempts++
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("handler panic: %v", r)
			}
		}()
		return handler.Handle(ctx, data)
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.cfg.BackoffMin
	b.MaxInterval = c.cfg.BackoffMax
	b.MaxElapsedTime = 0
	policy := backoff.WithContext(backoff.WithMaxRetries(b, uint64(max(c.cfg.RetryMax, 0))), ctx)

	err := backoff.Retry(op, policy)
	return attempts, err
}

func (c *Consumer) deadLetter(msg kafka.Message, cause error) bool {
	if c.dlq == nil {
		return false
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := c.dlq.WriteMessages(ctx, kafka.Message{
		Key:   msg.Key,
		Value: msg.Value,
		Headers: []kafka.Header{
			{Key: "source_topic", Value: []byte(msg.Topic)},
			{Key: "error", Value: []byte(cause.Error())},
		},
	})
	if err != nil {
		c.l.Error("kafka dlq write failed", applogger.String("dlq", c.cfg.DLQTopic), applogger.Error(err))
		return false
	}
	return true
}

func (c *Consumer) commit(msg kafka.Message) {
	reader := c.readers[msg.Topic]
	if reader == nil {
		return
	}
	op := func() error {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		return reader.CommitMessages(ctx, msg)
	}
	if err := backoff.Retry(op, backoff.WithMaxRetries(backoff.NewConstantBackOff(100*time.Millisecond), 3)); err != nil &&
		!errors.Is(err, context.Canceled) {
		c.l.Warn("kafka commit failed", applogger.String("topic", msg.Topic), applogger.Error(err))
	}
}

var (
	consumerOnce          sync.Once
	consumerQueueDepth    *prometheus.GaugeVec
	consumerHandleLatency *prometheus.HistogramVec
	consumerFailures      *prometheus.CounterVec
)

func initConsumerMetrics() {
	consumerOnce.Do(func() {
		consumerQueueDepth = promauto.NewGaugeVec(
			prometheus.GaugeOpts{Name: "fxpulse_kafka_consumer_queue_depth", Help: "Messages waiting for a worker"},
			[]string{"topic"},
		)
		consumerHandleLatency = promauto.NewHistogramVec(
			prometheus.HistogramOpts{Name: "fxpulse_kafka_consumer_handle_seconds", Help: "Handling time per message, retries included"},
			[]string{"topic"},
		)
		consumerFailures = promauto.NewCounterVec(
			prometheus.CounterOpts{Name: "fxpulse_kafka_consumer_failures_total", Help: "Messages that exhausted their retries"},
			[]string{"topic"},
		)
	})
}
