package api

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	infragin "github.com/jonesrussell/autoload-next-post/infrastructure/gin"
	infralogger "github.com/jonesrussell/autoload-next-post/infrastructure/logger"
	"github.com/jonesrussell/autoload-next-post/internal/config"
)

const (
	defaultReadTimeout  = 10 * time.Second
	defaultWriteTimeout = 10 * time.Second
	defaultIdleTimeout  = 60 * time.Second
	healthCheckTimeout  = 2 * time.Second
)

// Pinger is a dependency reported on /health.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingFunc adapts a function to Pinger.
type PingFunc func(ctx context.Context) error

func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

// HealthDeps are the checked dependencies; Redis may be nil.
type HealthDeps struct {
	Database Pinger
	Redis    Pinger
}

// NewServer creates the HTTP server.
func NewServer(routes Routes, health HealthDeps, cfg *config.Config, log infralogger.Logger) *infragin.Server {
	builder := infragin.NewServerBuilder(cfg.Service.Name, cfg.Service.Port).
		WithLogger(log).
		WithDebug(cfg.Service.Debug).
		WithVersion(cfg.Service.Version).
		WithCORSOrigins(cfg.Service.CORSOrigins).
		WithTimeouts(defaultReadTimeout, defaultWriteTimeout, defaultIdleTimeout).
		WithRoutes(func(router *gin.Engine) {
			SetupRoutes(router, routes)
		})

	if health.Database != nil {
		builder = builder.WithHealthCheck("database",
			infragin.PingChecker("database", infragin.HealthStatusUnhealthy, pingWithTimeout(health.Database)))
	}
	if health.Redis != nil {
		builder = builder.WithHealthCheck("redis",
			infragin.PingChecker("redis", infragin.HealthStatusDegraded, pingWithTimeout(health.Redis)))
	}

	return builder.Build()
}

func pingWithTimeout(p Pinger) func() error {
	return func() error {
		ctx, cancel := context.WithTimeout(context.Background(), healthCheckTimeout)
		defer cancel()
		return p.Ping(ctx)
	}
}
