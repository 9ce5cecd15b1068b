package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultMemoryMaxSize is the entry capacity when none is configured: 9 currencies x
// 3 data types leaves plenty of headroom.
const DefaultMemoryMaxSize = 512

type memoryItem struct {
	value    []byte
	expireAt time.Time
}

// MemoryCache implements Service with a bounded LRU. Expired entries are dropped lazily.
// mu serializes check-then-set sequences such as TryLock.
type MemoryCache struct {
	mu         sync.Mutex
	items      *lru.Cache[string, memoryItem]
	defaultTTL time.Duration
	now        func() time.Time
}

// NewMemoryCache creates an in-memory cache.
func NewMemoryCache(opts ...MemoryOption) *MemoryCache {
	cfg := &MemoryConfig{
		MaxSize:    DefaultMemoryMaxSize,
		DefaultTTL: 24 * time.Hour,
		Now:        time.Now,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	// MaxSize is kept positive by WithMemoryMaxSize, the only error lru.New returns.
	items, _ := lru.New[string, memoryItem](cfg.MaxSize)
	return &MemoryCache{
		items:      items,
		defaultTTL: cfg.DefaultTTL,
		now:        cfg.Now,
	}
}

func (mc *MemoryCache) Set(_ context.Context, key string, value interface{}, expiration time.Duration) error {
	data, err := encode(value)
	if err != nil {
		return err
	}
	mc.mu.Lock()
	defer mc.mu.Unlock()
	mc.setRaw(key, data, expiration)
	return nil
}

// setRaw requires mc.mu.
func (mc *MemoryCache) setRaw(key string, data []byte, expiration time.Duration) {
	if expiration <= 0 {
		expiration = mc.defaultTTL
	}
	mc.items.Add(key, memoryItem{value: data, expireAt: mc.now().Add(expiration)})
}

func (mc *MemoryCache) Get(_ context.Context, key string, dest interface{}) error {
	mc.mu.Lock()
	data, ok := mc.getRaw(key)
	mc.mu.Unlock()
	if !ok {
		return ErrCacheMiss
	}
	return decode(data, dest)
}

// getRaw requires mc.mu. A hit refreshes recency; an expired entry is removed.
func (mc *MemoryCache) getRaw(key string) ([]byte, bool) {
	it, ok := mc.items.Get(key)
	if !ok {
		return nil, false
	}
	if mc.now().After(it.expireAt) {
		mc.items.Remove(key)
		return nil, false
	}
	return it.value, true
}

func (mc *MemoryCache) Delete(_ context.Context, keys ...string) error {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	for _, key := range keys {
		mc.items.Remove(key)
	}
	return nil
}

func (mc *MemoryCache) DeleteByPattern(_ context.Context, pattern string) error {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	for _, key := range mc.items.Keys() {
		if matchPattern(pattern, key) {
			mc.items.Remove(key)
		}
	}
	return nil
}

func (mc *MemoryCache) Exists(_ context.Context, keys ...string) (bool, error) {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	for _, key := range keys {
		if _, ok := mc.getRaw(key); ok {
			return true, nil
		}
	}
	return false, nil
}

func (mc *MemoryCache) TryLock(_ context.Context, key string, ttl time.Duration) (bool, error) {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	if _, ok := mc.getRaw(key); ok {
		return false, nil
	}
	mc.setRaw(key, []byte(`"locked"`), ttl)
	return true, nil
}

func (mc *MemoryCache) Unlock(ctx context.Context, key string) error {
	return mc.Delete(ctx, key)
}

// store and load are the locked raw accessors used by LayeredCache.
func (mc *MemoryCache) store(key string, data []byte, expiration time.Duration) {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	mc.setRaw(key, data, expiration)
}

func (mc *MemoryCache) load(key string) ([]byte, bool) {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	return mc.getRaw(key)
}

// Len returns the number of entries, expired ones included until they are touched.
func (mc *MemoryCache) Len() int {
	return mc.items.Len()
}

// Close is a no-op; MemoryCache holds no background resources.
func (mc *MemoryCache) Close() error { return nil }

func encode(value interface{}) ([]byte, error) {
	switch v := value.(type) {
	case []byte:
		return v, nil
	default:
		data, err := json.Marshal(value)
		if err != nil {
			return nil, fmt.Errorf("cache encode: %w", err)
		}
		return data, nil
	}
}

func decode(data []byte, dest interface{}) error {
	if b, ok := dest.(*[]byte); ok {
		*b = append((*b)[:0], data...)
		return nil
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("cache decode: %w", err)
	}
	return nil
}
