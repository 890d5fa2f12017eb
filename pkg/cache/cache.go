package cache

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var ErrCacheMiss = errors.New("cache: key not found")

// Service defines the cache operations used by the data providers and
// the session store. Values are stored as JSON.
type Service interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Get(ctx context.Context, key string, dest interface{}) error
	Delete(ctx context.Context, keys ...string) error
	Exists(ctx context.Context, keys ...string) (bool, error)
	Expire(ctx context.Context, key string, expiration time.Duration) (bool, error)
	TryLock(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Unlock(ctx context.Context, key string) error
	Close() error
}

// Key joins key parts with colons: Key("quote", "AAPL") -> "quote:AAPL".
func Key(parts ...interface{}) string {
	key := ""
	for i, p := range parts {
		if i == 0 {
			key = fmt.Sprintf("%v", p)
			continue
		}
		key = fmt.Sprintf("%s:%v", key, p)
	}
	return key
}
