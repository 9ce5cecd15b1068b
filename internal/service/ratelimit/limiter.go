// Package ratelimit keeps one requests-per-minute budget per upstream API key.
package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Limiter is a registry of token buckets keyed by API name. Callers queue in Wait
// until their key has budget left.
type Limiter struct {
	mu    sync.Mutex
	m     map[string]*rate.Limiter
	rpm   int
	burst int
}

// New returns a registry where every key gets rpm requests per minute.
func New(rpm int) *Limiter {
	if rpm <= 0 {
		rpm = 60
	}
	burst := rpm / 10
	if burst < 1 {
		burst = 1
	}
	return &Limiter{m: make(map[string]*rate.Limiter), rpm: rpm, burst: burst}
}

// For returns the limiter for key, creating it on first use.
func (l *Limiter) For(key string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()
	lim, ok := l.m[key]
	if !ok {
		lim = rate.NewLimiter(rate.Every(time.Minute/time.Duration(l.rpm)), l.burst)
		l.m[key] = lim
	}
	return lim
}

// Wait blocks until key may issue one request or ctx is done.
func (l *Limiter) Wait(ctx context.Context, key string) error {
	return l.For(key).Wait(ctx)
}

// Allow reports whether key may issue one request right now, without queuing.
func (l *Limiter) Allow(key string) bool {
	return l.For(key).Allow()
}

// RPM returns the configured per-key budget.
func (l *Limiter) RPM() int { return l.rpm }
