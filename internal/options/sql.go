package options

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
)

// dialect holds the driver-specific statements.
type dialect struct {
	name   string
	get    string
	list   string
	upsert string
}

var postgresDialect = dialect{
	name: "postgres",
	get:  `SELECT value FROM options WHERE name = $1`,
	list: `SELECT name, value FROM options WHERE name LIKE $1 ESCAPE '\' ORDER BY name`,
	upsert: `
		INSERT INTO options (name, value, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (name) DO UPDATE
		SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at
	`,
}

var sqliteDialect = dialect{
	name: "sqlite",
	get:  `SELECT value FROM options WHERE name = ?`,
	list: `SELECT name, value FROM options WHERE name LIKE ? ESCAPE '\' ORDER BY name`,
	upsert: `
		INSERT INTO options (name, value, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT (name) DO UPDATE
		SET value = excluded.value, updated_at = excluded.updated_at
	`,
}

const sqliteSchema = `
	CREATE TABLE IF NOT EXISTS options (
		name       TEXT PRIMARY KEY,
		value      TEXT NOT NULL DEFAULT '',
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)
`

// likeEscaper escapes LIKE wildcards; option names are full of underscores.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

type optionRow struct {
	Name  string `db:"name"`
	Value string `db:"value"`
}

// SQLStore is a Store over an "options" table.
type SQLStore struct {
	db      *sqlx.DB
	dialect dialect
}

// NewPostgresStore returns a store for a PostgreSQL database migrated by
// cmd/migrate.
func NewPostgresStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: sqlx.NewDb(db, "postgres"), dialect: postgresDialect}
}

// NewSQLiteStore returns a store for a SQLite database. Call EnsureSchema
// before first use.
func NewSQLiteStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: sqlx.NewDb(db, "sqlite"), dialect: sqliteDialect}
}

// EnsureSchema creates the options table on SQLite. PostgreSQL schemas are
// owned by migrations, so it is a no-op there.
func (s *SQLStore) EnsureSchema(ctx context.Context) error {
	if s.dialect.name != sqliteDialect.name {
		return nil
	}
	if _, err := s.db.ExecContext(ctx, sqliteSchema); err != nil {
		return fmt.Errorf("create options table: %w", err)
	}
	return nil
}

func (s *SQLStore) Get(ctx context.Context, name string) (string, error) {
	var value string
	err := s.db.GetContext(ctx, &value, s.dialect.get, name)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("query option %s: %w", name, err)
	}
	return value, nil
}

func (s *SQLStore) Set(ctx context.Context, name, value string) error {
	if _, err := s.db.ExecContext(ctx, s.dialect.upsert, name, value); err != nil {
		return fmt.Errorf("upsert option %s: %w", name, err)
	}
	return nil
}

func (s *SQLStore) List(ctx context.Context, prefix string) (map[string]string, error) {
	var rows []optionRow
	if err := s.db.SelectContext(ctx, &rows, s.dialect.list, likeEscaper.Replace(prefix)+"%"); err != nil {
		return nil, fmt.Errorf("list options %s*: %w", prefix, err)
	}

	out := make(map[string]string, len(rows))
	for _, row := range rows {
		out[row.Name] = row.Value
	}
	return out, nil
}
