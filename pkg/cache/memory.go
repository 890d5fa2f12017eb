package cache

import (
	"context"
	"encoding/json"
	"sync"
	"time"
)

type memoryItem struct {
	data     []byte
	expireAt time.Time
}

func (m *memoryItem) expired() bool {
	return time.Now().After(m.expireAt)
}

// MemoryCache implements Service with an in-process map and LRU eviction.
// It backs the cache when Redis is disabled. Values are stored as JSON so
// Get behaves identically to the Redis implementation.
type MemoryCache struct {
	mu      sync.Mutex
	data    map[string]*memoryItem
	access  map[string]time.Time
	maxSize int
	ticker  *time.Ticker
}

// NewMemoryCache creates an in-memory cache.
func NewMemoryCache(opts ...MemoryOption) *MemoryCache {
	cfg := &MemoryConfig{
		MaxSize:         1000,
		CleanupInterval: 5 * time.Minute,
	}

	for _, opt := range opts {
		opt(cfg)
	}

	mc := &MemoryCache{
		data:    make(map[string]*memoryItem),
		access:  make(map[string]time.Time),
		maxSize: cfg.MaxSize,
		ticker:  time.NewTicker(cfg.CleanupInterval),
	}

	go mc.sweep()
	return mc
}

func (mc *MemoryCache) Set(_ context.Context, key string, value interface{}, expiration time.Duration) error {
	var data []byte
	switch v := value.(type) {
	case string:
		data = []byte(v)
	case []byte:
		data = v
	default:
		var err error
		data, err = json.Marshal(value)
		if err != nil {
			return err
		}
	}

	mc.mu.Lock()
	defer mc.mu.Unlock()

	if len(mc.data) >= mc.maxSize {
		mc.evictOldest()
	}

	expireAt := time.Now().Add(expiration)
	if expiration <= 0 {
		expireAt = time.Now().Add(24 * time.Hour)
	}

	mc.data[key] = &memoryItem{data: data, expireAt: expireAt}
	mc.access[key] = time.Now()
	return nil
}

func (mc *MemoryCache) Get(_ context.Context, key string, dest interface{}) error {
	mc.mu.Lock()
	item, exists := mc.data[key]
	if !exists || item.expired() {
		if exists {
			delete(mc.data, key)
			delete(mc.access, key)
		}
		mc.mu.Unlock()
		return ErrCacheMiss
	}
	mc.access[key] = time.Now()
	data := item.data
	mc.mu.Unlock()

	if strPtr, ok := dest.(*string); ok {
		*strPtr = string(data)
		return nil
	}
	return json.Unmarshal(data, dest)
}

func (mc *MemoryCache) Delete(_ context.Context, keys ...string) error {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	for _, key := range keys {
		delete(mc.data, key)
		delete(mc.access, key)
	}
	return nil
}

func (mc *MemoryCache) Exists(_ context.Context, keys ...string) (bool, error) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	for _, key := range keys {
		if item, ok := mc.data[key]; ok && !item.expired() {
			return true, nil
		}
	}
	return false, nil
}

func (mc *MemoryCache) Expire(_ context.Context, key string, expiration time.Duration) (bool, error) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	if item, ok := mc.data[key]; ok {
		item.expireAt = time.Now().Add(expiration)
		return true, nil
	}
	return false, nil
}

func (mc *MemoryCache) TryLock(_ context.Context, key string, ttl time.Duration) (bool, error) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	if item, ok := mc.data[key]; ok && !item.expired() {
		return false, nil
	}

	mc.data[key] = &memoryItem{data: []byte("locked"), expireAt: time.Now().Add(ttl)}
	return true, nil
}

func (mc *MemoryCache) Unlock(ctx context.Context, key string) error {
	return mc.Delete(ctx, key)
}

// Close stops the sweep ticker.
func (mc *MemoryCache) Close() error {
	if mc.ticker != nil {
		mc.ticker.Stop()
	}
	return nil
}

func (mc *MemoryCache) evictOldest() {
	var oldestKey string
	oldestTime := time.Now()

	for key, accessTime := range mc.access {
		if accessTime.Before(oldestTime) {
			oldestTime = accessTime
			oldestKey = key
		}
	}

	if oldestKey != "" {
		delete(mc.data, oldestKey)
		delete(mc.access, oldestKey)
	}
}

func (mc *MemoryCache) sweep() {
	for range mc.ticker.C {
		mc.mu.Lock()
		now := time.Now()
		for key, item := range mc.data {
			if now.After(item.expireAt) {
				delete(mc.data, key)
				delete(mc.access, key)
			}
		}
		mc.mu.Unlock()
	}
}
