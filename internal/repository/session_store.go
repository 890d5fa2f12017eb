package repository

import (
	"context"
	"errors"
	"time"

	"StockSage/internal/domain/models"
	"StockSage/pkg/cache"
)

// RedisSessionStore keeps per-session analysis context in the cache so
// follow-up questions survive restarts. A missing session is not an error;
// Get returns nil.
type RedisSessionStore struct {
	cache cache.Service
	ttl   time.Duration
}

func NewRedisSessionStore(c cache.Service, ttl time.Duration) *RedisSessionStore {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &RedisSessionStore{cache: c, ttl: ttl}
}

func (s *RedisSessionStore) Put(ctx context.Context, sessionID string, sc *models.SessionContext) error {
	sc.UpdatedAt = time.Now().UTC()
	return s.cache.Set(ctx, cache.Key("session", sessionID), sc, s.ttl)
}

func (s *RedisSessionStore) Get(ctx context.Context, sessionID string) (*models.SessionContext, error) {
	var sc models.SessionContext
	err := s.cache.Get(ctx, cache.Key("session", sessionID), &sc)
	if errors.Is(err, cache.ErrCacheMiss) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &sc, nil
}
