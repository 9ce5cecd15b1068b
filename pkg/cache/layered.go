package cache

import (
	"context"
	"time"
)

// LayeredCache implements a two-level cache: a bounded in-process LRU in front of a shared
// L2 (Redis in production).
type LayeredCache struct {
	mem *MemoryCache
	l2  Service
}

// NewLayeredCache creates a layered cache over l2.
func NewLayeredCache(l2 Service, opts ...MemoryOption) *LayeredCache {
	return &LayeredCache{mem: NewMemoryCache(opts...), l2: l2}
}

func (lc *LayeredCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	data, err := encode(value)
	if err != nil {
		return err
	}
	// Write-through: L2 first, then memory.
	if err := lc.l2.Set(ctx, key, data, expiration); err != nil {
		return err
	}
	lc.mem.store(key, data, expiration)
	return nil
}

func (lc *LayeredCache) Get(ctx context.Context, key string, dest interface{}) error {
	if data, ok := lc.mem.load(key); ok {
		return decode(data, dest)
	}

	var data []byte
	if err := lc.l2.Get(ctx, key, &data); err != nil {
		return err
	}
	lc.mem.store(key, data, 0)
	return decode(data, dest)
}

func (lc *LayeredCache) Delete(ctx context.Context, keys ...string) error {
	_ = lc.mem.Delete(ctx, keys...)
	return lc.l2.Delete(ctx, keys...)
}

func (lc *LayeredCache) DeleteByPattern(ctx context.Context, pattern string) error {
	_ = lc.mem.DeleteByPattern(ctx, pattern)
	return lc.l2.DeleteByPattern(ctx, pattern)
}

func (lc *LayeredCache) Exists(ctx context.Context, keys ...string) (bool, error) {
	if ok, _ := lc.mem.Exists(ctx, keys...); ok {
		return true, nil
	}
	return lc.l2.Exists(ctx, keys...)
}

// Locks live only in L2 so that they are shared between processes.
func (lc *LayeredCache) TryLock(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return lc.l2.TryLock(ctx, key, ttl)
}

func (lc *LayeredCache) Unlock(ctx context.Context, key string) error {
	return lc.l2.Unlock(ctx, key)
}

// Close closes both cache layers.
func (lc *LayeredCache) Close() error {
	_ = lc.mem.Close()
	return lc.l2.Close()
}
