package options

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	infraconfig "github.com/jonesrussell/autoload-next-post/infrastructure/config"
	"github.com/jonesrussell/autoload-next-post/infrastructure/logger"
	"github.com/jonesrussell/autoload-next-post/infrastructure/retry"

	_ "github.com/lib/pq"   // PostgreSQL driver
	_ "modernc.org/sqlite" // SQLite driver
)

const pingTimeout = 5 * time.Second

// Backend is the opened option store plus its connection, if any.
type Backend struct {
	Store Store
	db    *sql.DB
}

// Open connects the store selected by cfg.Driver.
func Open(ctx context.Context, cfg infraconfig.DatabaseConfig, log logger.Logger) (*Backend, error) {
	switch cfg.Driver {
	case infraconfig.DriverMemory:
		log.Warn("Using in-memory option store; settings are lost on restart")
		return &Backend{Store: NewMemoryStore()}, nil

	case infraconfig.DriverSQLite:
		db, err := openDB(ctx, "sqlite", cfg.Path, cfg)
		if err != nil {
			return nil, err
		}
		store := NewSQLiteStore(db)
		if schemaErr := store.EnsureSchema(ctx); schemaErr != nil {
			_ = db.Close()
			return nil, schemaErr
		}
		log.Info("Option store connected",
			logger.String("driver", cfg.Driver),
			logger.String("path", cfg.Path),
		)
		return &Backend{Store: store, db: db}, nil

	case infraconfig.DriverPostgres:
		db, err := openDB(ctx, "postgres", cfg.DSN(), cfg)
		if err != nil {
			return nil, err
		}
		log.Info("Option store connected",
			logger.String("driver", cfg.Driver),
			logger.String("host", cfg.Host),
			logger.Int("port", cfg.Port),
			logger.String("database", cfg.Database),
		)
		return &Backend{Store: NewPostgresStore(db), db: db}, nil

	default:
		return nil, fmt.Errorf("unsupported option store driver %q", cfg.Driver)
	}
}

func openDB(ctx context.Context, driver, dsn string, cfg infraconfig.DatabaseConfig) (*sql.DB, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}

	db.SetMaxOpenConns(cfg.MaxConnections)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	if driver == "sqlite" {
		// one writer; also keeps ":memory:" databases on a single connection
		db.SetMaxOpenConns(1)
		db.SetConnMaxLifetime(0)
	}

	pingErr := retry.Do(ctx, retry.DefaultConfig(), func(attemptCtx context.Context) error {
		pingCtx, cancel := context.WithTimeout(attemptCtx, pingTimeout)
		defer cancel()
		return db.PingContext(pingCtx)
	})
	if pingErr != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", driver, pingErr)
	}
	return db, nil
}

// Ping checks the underlying connection; memory stores are always up.
func (b *Backend) Ping(ctx context.Context) error {
	if b.db == nil {
		return nil
	}
	return b.db.PingContext(ctx)
}

// Close releases the connection.
func (b *Backend) Close() error {
	if b.db == nil {
		return nil
	}
	return b.db.Close()
}
