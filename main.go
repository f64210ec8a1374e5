package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jonesrussell/autoload-next-post/infrastructure/config"
	"github.com/jonesrussell/autoload-next-post/infrastructure/logger"
	"github.com/jonesrussell/autoload-next-post/infrastructure/profiling"
	infraredis "github.com/jonesrussell/autoload-next-post/infrastructure/redis"
	"github.com/jonesrussell/autoload-next-post/internal/ajax"
	"github.com/jonesrussell/autoload-next-post/internal/api"
	appconfig "github.com/jonesrussell/autoload-next-post/internal/config"
	"github.com/jonesrussell/autoload-next-post/internal/events"
	"github.com/jonesrussell/autoload-next-post/internal/handler"
	"github.com/jonesrussell/autoload-next-post/internal/metrics"
	"github.com/jonesrussell/autoload-next-post/internal/options"
	"github.com/jonesrussell/autoload-next-post/internal/selectors"
	"github.com/jonesrussell/autoload-next-post/internal/templates"
	"github.com/redis/go-redis/v9"
)

func main() {
	os.Exit(run())
}

func run() int {
	// Load configuration
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		return 1
	}

	// Initialize logger
	log, err := createLogger(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		return 1
	}
	defer func() { _ = log.Sync() }()

	// Start profilers (if enabled)
	profiling.StartPprofServer(cfg.Profiling, log)
	profiler, err := profiling.StartPyroscope(cfg.Profiling, cfg.Service.Name, cfg.Service.Version, log)
	if err != nil {
		log.Warn("Continuous profiling disabled", logger.Error(err))
	}
	defer func() { _ = profiler.Stop() }()

	if err = selectors.Validate(); err != nil {
		log.Error("Invalid selector table", logger.Error(err))
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Connect to the option store
	backend, err := options.Open(ctx, cfg.Database, log)
	if err != nil {
		log.Error("Failed to open option store", logger.Error(err))
		return 1
	}
	defer func() { _ = backend.Close() }()

	// Connect to Redis (optional)
	redisClient := connectRedis(ctx, cfg, log)
	if redisClient != nil {
		defer func() { _ = redisClient.Close() }()
	}

	return runServer(ctx, cfg, log, backend, redisClient)
}

// loadConfig loads and validates configuration.
func loadConfig() (*appconfig.Config, error) {
	configPath := config.GetConfigPath("config.yml")
	cfg, err := appconfig.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if validationErr := cfg.Validate(); validationErr != nil {
		return nil, fmt.Errorf("validate config: %w", validationErr)
	}
	return cfg, nil
}

// createLogger creates a logger instance from configuration.
func createLogger(cfg *appconfig.Config) (logger.Logger, error) {
	log, err := logger.New(logger.Config{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		Development: cfg.Service.Debug,
	})
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}
	return log.With(logger.String("service", cfg.Service.Name)), nil
}

// connectRedis returns nil when Redis is disabled or unreachable; the
// service then runs without the option cache and setting events.
func connectRedis(ctx context.Context, cfg *appconfig.Config, log logger.Logger) *redis.Client {
	if !cfg.Redis.Enabled {
		return nil
	}

	client, err := infraredis.NewClient(ctx, cfg.Redis)
	if err != nil {
		log.Warn("Redis unavailable, continuing without cache",
			logger.String("address", cfg.Redis.Address),
			logger.Error(err),
		)
		return nil
	}

	log.Info("Redis connected", logger.String("address", cfg.Redis.Address))
	return client
}

// runServer creates all dependencies and starts the HTTP server.
func runServer(
	ctx context.Context,
	cfg *appconfig.Config,
	log logger.Logger,
	backend *options.Backend,
	redisClient *redis.Client,
) int {
	m := metrics.New()

	store := backend.Store
	health := api.HealthDeps{Database: backend}
	if redisClient != nil {
		store = options.NewCachedStore(store, redisClient, cfg.Redis.CacheTTL, log)
		health.Redis = api.PingFunc(func(pingCtx context.Context) error {
			return redisClient.Ping(pingCtx).Err()
		})
	}
	publisher := events.NewPublisher(redisClient, cfg.Redis.Stream, log)

	// Template locator and theme watcher
	locator := templates.NewLocator(store, cfg.Theme.Roots(), directories(cfg.Theme.Directories), log)
	if restored, err := locator.Restore(ctx); err != nil {
		log.Warn("Could not restore known post types", logger.Error(err))
	} else if restored > 0 {
		log.Info("Restored known post types", logger.Int("count", restored))
	}
	if cfg.Theme.Watch {
		startWatcher(ctx, locator, log)
	}
	if cfg.Theme.RescanSchedule != "" {
		scheduler, err := templates.NewScheduler(ctx, locator, cfg.Theme.RescanSchedule, log)
		if err != nil {
			log.Error("Invalid rescan schedule", logger.Error(err))
			return 1
		}
		scheduler.Start()
		defer scheduler.Stop()
	}

	// AJAX dispatch
	registry := ajax.NewRegistry()
	registry.AddAjaxEvents()
	log.Info("AJAX actions registered", logger.Int("hooks", len(registry.Hooks())))

	var notifier ajax.SettingNotifier
	if publisher != nil {
		notifier = publisher
	}
	handlers := ajax.NewHandlers(store, locator, notifier, m, log)

	routes := api.Routes{
		Ajax: ajax.NewDispatcher(registry, handlers, m),
		Notice: handler.NewNoticeHandler(
			cfg.Plugin.Name, cfg.Plugin.RequiredVersion, cfg.Plugin.PlatformVersion, m, log,
		),
		Detect:    handler.NewDetectHandler(log),
		Metrics:   m.Handler(),
		JWTSecret: cfg.Auth.JWTSecret,
	}
	if cfg.Auth.JWTSecret == "" {
		log.Warn("No JWT secret configured; all admin-ajax callers are anonymous")
	}

	server := api.NewServer(routes, health, cfg, log)

	log.Info("Auto Load Next Post service starting",
		logger.Int("port", cfg.Service.Port),
		logger.String("database_driver", cfg.Database.Driver),
		logger.Bool("redis", redisClient != nil),
	)

	if err := server.RunWithGracefulShutdown(ctx); err != nil {
		log.Error("Server error", logger.Error(err))
		return 1
	}

	log.Info("Auto Load Next Post service exited cleanly")
	return 0
}

// directories returns nil for an empty list so the locator uses its defaults.
func directories(dirs []string) []string {
	if len(dirs) == 0 {
		return nil
	}
	return dirs
}

func startWatcher(ctx context.Context, locator *templates.Locator, log logger.Logger) {
	watcher, err := templates.NewWatcher(locator, log)
	if err != nil {
		log.Warn("Theme watcher disabled", logger.Error(err))
		return
	}
	go watcher.Run(ctx)
}
