package middleware

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"FxPulse/internal/domain/models"
)

type nopMetrics struct{}

func (nopMetrics) RecordSourceResult(string, bool, float64, int, int) {}
func (nopMetrics) RecordEventsStored(string, int)                     {}
func (nopMetrics) RecordError(string)                                 {}
func (nopMetrics) RecordStrength(string, float64)                     {}
func (nopMetrics) RecordPower(string, int, int)                       {}
func (nopMetrics) RecordLatency(string, float64)                      {}

type fakeProc struct {
	mu      sync.Mutex
	failFor int
	calls   int
	got     []models.EconomicEvent
}

func (f *fakeProc) ProcessBatch(_ context.Context, events []models.EconomicEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.calls <= f.failFor {
		return errors.New("backend down")
	}
	f.got = append(f.got, events...)
	return nil
}

func (f *fakeProc) stored() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.got)
}

func event(id string) models.EconomicEvent {
	return models.EconomicEvent{
		ID:              id,
		Currency:        models.USD,
		Title:           "CPI y/y",
		EventDate:       time.Date(2026, 3, 1, 12, 30, 0, 0, time.UTC),
		ConfidenceScore: 70,
	}
}

func TestValidateEvent(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*models.EconomicEvent)
		ok     bool
	}{
		{"valid", func(*models.EconomicEvent) {}, true},
		{"unknown currency", func(e *models.EconomicEvent) { e.Currency = "XXX" }, false},
		{"empty title", func(e *models.EconomicEvent) { e.Title = "" }, false},
		{"zero date", func(e *models.EconomicEvent) { e.EventDate = time.Time{} }, false},
		{"confidence above range", func(e *models.EconomicEvent) { e.ConfidenceScore = 101 }, false},
		{"confidence below range", func(e *models.EconomicEvent) { e.ConfidenceScore = -1 }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := event("a")
			tt.mutate(&e)
			if err := ValidateEvent(&e); (err == nil) != tt.ok {
				t.Fatalf("ValidateEvent() error = %v, want ok=%v", err, tt.ok)
			}
		})
	}
}

func TestEventPipeline_DropsInvalidAndDuplicates(t *testing.T) {
	proc := &fakeProc{}
	p := NewEventPipeline(proc, nopMetrics{})

	bad := event("bad")
	bad.Title = ""
	n, err := p.ProcessBatch(context.Background(), []models.EconomicEvent{event("a"), event("a"), bad, event("b")})
	if err != nil {
		t.Fatalf("ProcessBatch() error = %v", err)
	}
	if n != 2 || proc.stored() != 2 {
		t.Fatalf("forwarded %d, stored %d, want 2", n, proc.stored())
	}

	n, err = p.ProcessBatch(context.Background(), []models.EconomicEvent{event("a")})
	if err != nil || n != 0 {
		t.Fatalf("replay forwarded %d (err %v), want 0", n, err)
	}
	if proc.calls != 1 {
		t.Fatalf("empty batch reached downstream: calls = %d", proc.calls)
	}
}

func TestEventPipeline_SeenCapacity(t *testing.T) {
	proc := &fakeProc{}
	p := NewEventPipeline(proc, nopMetrics{}, WithSeenCapacity(2))
	ctx := context.Background()
	for _, id := range []string{"a", "b", "c"} {
		if n, _ := p.ProcessBatch(ctx, []models.EconomicEvent{event(id)}); n != 1 {
			t.Fatalf("first delivery of %q forwarded %d", id, n)
		}
	}
	if n, _ := p.ProcessBatch(ctx, []models.EconomicEvent{event("c")}); n != 0 {
		t.Fatal("recent id should still be remembered")
	}
	if n, _ := p.ProcessBatch(ctx, []models.EconomicEvent{event("a")}); n != 1 {
		t.Fatal("oldest id should have been forgotten")
	}
}

func TestEventPipeline_ReleasedValuesPassAgain(t *testing.T) {
	proc := &fakeProc{}
	p := NewEventPipeline(proc, nopMetrics{})
	ctx := context.Background()

	scheduled := event("nfp")
	forecast := 180000.0
	scheduled.ExpectedValue = &forecast
	if n, err := p.ProcessBatch(ctx, []models.EconomicEvent{scheduled}); err != nil || n != 1 {
		t.Fatalf("scheduled forwarded %d, err %v", n, err)
	}

	released := scheduled
	actual := 250000.0
	released.ActualValue = &actual
	released.Sentiment = models.Bullish
	if n, err := p.ProcessBatch(ctx, []models.EconomicEvent{released}); err != nil || n != 1 {
		t.Fatalf("released forwarded %d, err %v", n, err)
	}
	if n, _ := p.ProcessBatch(ctx, []models.EconomicEvent{released}); n != 0 {
		t.Fatalf("unchanged replay forwarded %d", n)
	}

	last := proc.got[len(proc.got)-1]
	if last.ActualValue == nil || *last.ActualValue != actual {
		t.Fatalf("downstream holds actual = %v", last.ActualValue)
	}
}

func TestEventPipeline_LastCopyInBatchWins(t *testing.T) {
	proc := &fakeProc{}
	p := NewEventPipeline(proc, nopMetrics{})

	early, late := event("a"), event("a")
	v := 3.1
	late.ActualValue = &v
	n, err := p.ProcessBatch(context.Background(), []models.EconomicEvent{early, late})
	if err != nil || n != 1 {
		t.Fatalf("forwarded %d, err %v", n, err)
	}
	if proc.got[0].ActualValue == nil {
		t.Fatal("earlier copy without values was kept")
	}
}

func TestEventPipeline_UndeliveredEventsAreRetried(t *testing.T) {
	proc := &fakeProc{failFor: 1}
	p := NewEventPipeline(proc, nopMetrics{}, WithBufferSize(1))
	ctx := context.Background()

	// Fill the buffer so the failed batch cannot be kept.
	p.enqueue([]models.EconomicEvent{event("x")})
	if _, err := p.ProcessBatch(ctx, []models.EconomicEvent{event("a")}); err == nil {
		t.Fatal("expected downstream error")
	}
	if n, err := p.ProcessBatch(ctx, []models.EconomicEvent{event("a")}); err != nil || n != 1 {
		t.Fatalf("dropped event not retried: forwarded %d, err %v", n, err)
	}
}

func TestFingerprint(t *testing.T) {
	a, b := event("a"), event("a")
	if Fingerprint(&a) != Fingerprint(&b) {
		t.Fatal("identical events differ")
	}
	v := 0.0
	b.ActualValue = &v
	if Fingerprint(&a) == Fingerprint(&b) {
		t.Fatal("zero actual must differ from missing actual")
	}
	c := event("a")
	c.Impact = models.ImpactHigh
	if Fingerprint(&a) == Fingerprint(&c) {
		t.Fatal("impact change not detected")
	}
}

func TestEventPipeline_BuffersAndFlushes(t *testing.T) {
	proc := &fakeProc{failFor: 2}
	p := NewEventPipeline(proc, nopMetrics{}, WithFlushBackoff(time.Millisecond, 5*time.Millisecond))

	_, err := p.ProcessBatch(context.Background(), []models.EconomicEvent{event("a"), event("b")})
	if err == nil {
		t.Fatal("expected downstream error")
	}
	if p.Buffered() != 1 {
		t.Fatalf("Buffered() = %d, want 1", p.Buffered())
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	p.Start(ctx)
	defer p.Stop()

	deadline := time.Now().Add(2 * time.Second)
	for proc.stored() < 2 {
		if time.Now().After(deadline) {
			t.Fatalf("buffer not flushed, stored %d", proc.stored())
		}
		time.Sleep(5 * time.Millisecond)
	}
}
