package middleware

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"FxPulse/internal/domain/models"
	domrepo "FxPulse/internal/domain/repository"

	lru "github.com/hashicorp/golang-lru/v2"
)

var (
	errNoCurrency = errors.New("currency invalid")
	errNoTitle    = errors.New("title empty")
	errNoDate     = errors.New("event date missing")
	errConfidence = errors.New("confidence out of range")
)

// Proc is the minimal processor interface the pipeline needs.
type Proc interface {
	ProcessBatch(ctx context.Context, events []models.EconomicEvent) error
}

// EventPipeline sits between collection and the storage backend.
// It validates, drops events already delivered with the same content, and buffers
// batches while downstream is unavailable. An event is remembered only once
// downstream has accepted it, so a re-collected event with released values passes again.
type EventPipeline struct {
	proc    Proc
	metrics domrepo.Metrics
	bufSize int
	maxSeen int
	bufCh   chan []models.EconomicEvent
	stopCh  chan struct{}
	doneCh  chan struct{}
	started bool
	mu      sync.Mutex

	seen *lru.Cache[string, string] // event id -> content fingerprint delivered downstream

	minBackoff time.Duration
	maxBackoff time.Duration
}

type PipelineOption func(*EventPipeline)

// WithBufferSize sets how many batches are held while downstream is failing.
func WithBufferSize(n int) PipelineOption {
	return func(p *EventPipeline) {
		if n > 0 {
			p.bufSize = n
		}
	}
}

// WithSeenCapacity bounds the dedup memory.
func WithSeenCapacity(n int) PipelineOption {
	return func(p *EventPipeline) {
		if n > 0 {
			p.maxSeen = n
		}
	}
}

// WithFlushBackoff sets the retry delay bounds of the background flush.
func WithFlushBackoff(min, max time.Duration) PipelineOption {
	return func(p *EventPipeline) {
		if min > 0 {
			p.minBackoff = min
		}
		if max >= p.minBackoff {
			p.maxBackoff = max
		}
	}
}

// NewEventPipeline creates a new pipeline.
func NewEventPipeline(proc Proc, metrics domrepo.Metrics, opts ...PipelineOption) *EventPipeline {
	p := &EventPipeline{
		proc:       proc,
		metrics:    metrics,
		bufSize:    64,
		maxSeen:    50000,
		stopCh:     make(chan struct{}),
		doneCh:     make(chan struct{}),
		minBackoff: 50 * time.Millisecond,
		maxBackoff: 2 * time.Second,
	}
	for _, opt := range opts {
		opt(p)
	}
	p.bufCh = make(chan []models.EconomicEvent, p.bufSize)
	// Size is always positive here, the only error lru.New returns.
	p.seen, _ = lru.New[string, string](p.maxSeen)
	return p
}

// Start launches background flushing of buffered batches.
func (p *EventPipeline) Start(ctx context.Context) {
	p.mu.Lock()
	if p.started {
		p.mu.Unlock()
		return
	}
	p.started = true
	p.mu.Unlock()

	go func() {
		defer close(p.doneCh)
		delay := p.minBackoff
		for {
			select {
			case <-p.stopCh:
				return
			case <-ctx.Done():
				return
			case batch := <-p.bufCh:
				if err := p.proc.ProcessBatch(ctx, batch); err != nil {
					p.metrics.RecordError("pipeline_flush")
					if delay < p.maxBackoff {
						delay = min(delay*2, p.maxBackoff)
					}
					select {
					case <-time.After(delay):
					case <-p.stopCh:
						return
					case <-ctx.Done():
						return
					}
					p.enqueue(batch)
					continue
				}
				p.markDelivered(batch)
				delay = p.minBackoff
			}
		}
	}()
}

// Stop stops the background flushing and waits for it to exit.
func (p *EventPipeline) Stop() {
	p.mu.Lock()
	if !p.started {
		p.mu.Unlock()
		return
	}
	p.started = false
	p.mu.Unlock()
	close(p.stopCh)
	<-p.doneCh
}

// Buffered returns the number of batches waiting for downstream.
func (p *EventPipeline) Buffered() int { return len(p.bufCh) }

// ProcessBatch validates events, skips those already delivered unchanged, then forwards
// the rest. On downstream failure the batch is buffered and the error is returned.
// It returns the number of events forwarded.
func (p *EventPipeline) ProcessBatch(ctx context.Context, events []models.EconomicEvent) (int, error) {
	start := time.Now()
	accepted := make([]models.EconomicEvent, 0, len(events))
	inBatch := make(map[string]int, len(events))
	for i := range events {
		if err := ValidateEvent(&events[i]); err != nil {
			p.metrics.RecordError("pipeline_validate")
			continue
		}
		if !p.changed(&events[i]) {
			continue
		}
		// Within one batch the last copy of an id wins.
		if j, ok := inBatch[events[i].ID]; ok {
			accepted[j] = events[i]
			continue
		}
		inBatch[events[i].ID] = len(accepted)
		accepted = append(accepted, events[i])
	}
	if len(accepted) == 0 {
		return 0, nil
	}

	if err := p.proc.ProcessBatch(ctx, accepted); err != nil {
		p.metrics.RecordError("pipeline_process")
		p.enqueue(accepted)
		return 0, fmt.Errorf("pipeline downstream: %w", err)
	}
	p.markDelivered(accepted)
	p.metrics.RecordLatency("pipeline_process", time.Since(start).Seconds())
	return len(accepted), nil
}

func (p *EventPipeline) enqueue(batch []models.EconomicEvent) {
	select {
	case p.bufCh <- batch:
		p.metrics.RecordLatency("pipeline_buffer_depth", float64(len(p.bufCh)))
	default:
		p.metrics.RecordError("pipeline_buffer_full")
	}
}

// changed reports whether e differs from what was last delivered under its id.
func (p *EventPipeline) changed(e *models.EconomicEvent) bool {
	fp, ok := p.seen.Peek(e.ID)
	return !ok || fp != Fingerprint(e)
}

// markDelivered remembers the delivered content of each event. The least recently
// delivered ids are forgotten once maxSeen is reached.
func (p *EventPipeline) markDelivered(events []models.EconomicEvent) {
	for i := range events {
		p.seen.Add(events[i].ID, Fingerprint(&events[i]))
	}
}

// Fingerprint summarizes the fields of an event that change after it is first
// scheduled: released values, impact and the derived sentiment.
func Fingerprint(e *models.EconomicEvent) string {
	var b strings.Builder
	for _, v := range []*float64{e.ActualValue, e.ExpectedValue, e.PreviousValue} {
		if v == nil {
			b.WriteString("-")
		} else {
			b.WriteString(strconv.FormatFloat(*v, 'g', -1, 64))
		}
		b.WriteByte('|')
	}
	b.WriteString(string(e.Impact))
	b.WriteByte('|')
	b.WriteString(string(e.Sentiment))
	return b.String()
}

// ValidateEvent rejects events no backend should store.
func ValidateEvent(e *models.EconomicEvent) error {
	if e == nil {
		return fmt.Errorf("event nil")
	}
	if !e.Currency.Valid() {
		return fmt.Errorf("%w: %q", errNoCurrency, e.Currency)
	}
	if e.Title == "" {
		return errNoTitle
	}
	if e.EventDate.IsZero() {
		return errNoDate
	}
	if e.ConfidenceScore < 0 || e.ConfidenceScore > 100 {
		return fmt.Errorf("%w: %v", errConfidence, e.ConfidenceScore)
	}
	return nil
}
