package sources

import (
	"context"
	"math/rand/v2"
	"time"
)

// Pacer sleeps a uniformly random duration in [min, max] between requests.
type Pacer struct {
	min, max time.Duration
}

// NewPacer returns a pacer; max below min is raised to min.
func NewPacer(min, max time.Duration) *Pacer {
	if min < 0 {
		min = 0
	}
	if max < min {
		max = min
	}
	return &Pacer{min: min, max: max}
}

// Next returns the next delay.
func (p *Pacer) Next() time.Duration {
	if p.max == p.min {
		return p.min
	}
	return p.min + rand.N(p.max-p.min+1)
}

// Wait sleeps for Next or until ctx is done.
func (p *Pacer) Wait(ctx context.Context) error {
	d := p.Next()
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
