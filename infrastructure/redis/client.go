// Package redis opens go-redis clients for the option cache and the
// setting event stream.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jonesrussell/autoload-next-post/infrastructure/config"
	"github.com/jonesrussell/autoload-next-post/infrastructure/retry"
	"github.com/redis/go-redis/v9"
)

// ErrEmptyAddress is returned when no address is configured.
var ErrEmptyAddress = errors.New("redis address is required")

const (
	clientName  = "autoload-next-post"
	dialTimeout = 2 * time.Second
	pingTimeout = time.Second
)

// connectRetry is short: Redis is optional and startup must not stall on it.
var connectRetry = retry.Config{
	MaxAttempts:  3,
	InitialDelay: 100 * time.Millisecond,
	MaxDelay:     500 * time.Millisecond,
}

// NewClient connects to cfg.Address and pings it, retrying transient
// failures a few times. The client is closed on failure.
func NewClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	if cfg.Address == "" {
		return nil, ErrEmptyAddress
	}

	client := redis.NewClient(&redis.Options{
		Addr:        cfg.Address,
		Password:    cfg.Password,
		DB:          cfg.DB,
		ClientName:  clientName,
		DialTimeout: dialTimeout,
	})

	err := retry.Do(ctx, connectRetry, func(attemptCtx context.Context) error {
		pingCtx, cancel := context.WithTimeout(attemptCtx, pingTimeout)
		defer cancel()
		return client.Ping(pingCtx).Err()
	})
	if err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", cfg.Address, err)
	}

	return client, nil
}
