package options

import (
	"context"
	"errors"
	"time"

	"github.com/jonesrussell/autoload-next-post/infrastructure/logger"
	"github.com/redis/go-redis/v9"
)

const cacheKeyPrefix = "alnp:option:"

// CachedStore fronts another Store with Redis. Redis failures are logged and
// bypassed; next stays the source of truth.
type CachedStore struct {
	next   Store
	client *redis.Client
	ttl    time.Duration
	log    logger.Logger
}

// NewCachedStore wraps next with a Redis read-through cache.
func NewCachedStore(next Store, client *redis.Client, ttl time.Duration, log logger.Logger) *CachedStore {
	return &CachedStore{next: next, client: client, ttl: ttl, log: log}
}

func (s *CachedStore) Get(ctx context.Context, name string) (string, error) {
	cached, err := s.client.Get(ctx, cacheKeyPrefix+name).Result()
	switch {
	case err == nil:
		return cached, nil
	case !errors.Is(err, redis.Nil):
		s.log.Warn("Option cache read failed",
			logger.String("option", name),
			logger.Error(err),
		)
	}

	value, err := s.next.Get(ctx, name)
	if err != nil {
		return "", err
	}

	s.fill(ctx, name, value)
	return value, nil
}

func (s *CachedStore) Set(ctx context.Context, name, value string) error {
	if err := s.next.Set(ctx, name, value); err != nil {
		return err
	}
	s.fill(ctx, name, value)
	return nil
}

// List always reads through to the backing store.
func (s *CachedStore) List(ctx context.Context, prefix string) (map[string]string, error) {
	return s.next.List(ctx, prefix)
}

func (s *CachedStore) fill(ctx context.Context, name, value string) {
	if err := s.client.Set(ctx, cacheKeyPrefix+name, value, s.ttl).Err(); err != nil {
		s.log.Warn("Option cache write failed",
			logger.String("option", name),
			logger.Error(err),
		)
	}
}
