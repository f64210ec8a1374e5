package config

import (
	"strconv"
	"time"
)

// Supported option-store drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMemory   = "memory"
)

// DatabaseConfig selects and configures the option store backend.
type DatabaseConfig struct {
	Driver          string        `env:"ALNP_DB_DRIVER"   yaml:"driver"`
	Host            string        `env:"ALNP_DB_HOST"     yaml:"host"`
	Port            int           `env:"ALNP_DB_PORT"     yaml:"port"`
	User            string        `env:"ALNP_DB_USER"     yaml:"user"`
	Password        string        `env:"ALNP_DB_PASSWORD" yaml:"password"`
	Database        string        `env:"ALNP_DB_NAME"     yaml:"database"`
	SSLMode         string        `env:"ALNP_DB_SSLMODE"  yaml:"sslmode"`
	Path            string        `env:"ALNP_DB_PATH"     yaml:"path"`
	MaxConnections  int           `yaml:"max_connections"`
	ConnMaxLifetime time.Duration `yaml:"connection_max_lifetime"`
}

// DSN returns the lib/pq connection string.
func (c *DatabaseConfig) DSN() string {
	return "host=" + c.Host +
		" port=" + strconv.Itoa(c.Port) +
		" user=" + c.User +
		" password=" + c.Password +
		" dbname=" + c.Database +
		" sslmode=" + c.SSLMode
}

// MigrateURL returns the postgres:// URL golang-migrate expects.
func (c *DatabaseConfig) MigrateURL() string {
	return "postgres://" + c.User + ":" + c.Password + "@" + c.Host + ":" +
		strconv.Itoa(c.Port) + "/" + c.Database + "?sslmode=" + c.SSLMode
}

// SetDefaults fills unset fields.
func (c *DatabaseConfig) SetDefaults() {
	if c.Driver == "" {
		c.Driver = DriverPostgres
	}
	if c.Host == "" {
		c.Host = "localhost"
	}
	if c.Port == 0 {
		c.Port = 5432
	}
	if c.User == "" {
		c.User = "postgres"
	}
	if c.Database == "" {
		c.Database = "autoload"
	}
	if c.SSLMode == "" {
		c.SSLMode = "disable"
	}
	if c.Path == "" {
		c.Path = "autoload.db"
	}
	if c.MaxConnections == 0 {
		c.MaxConnections = 10
	}
	if c.ConnMaxLifetime == 0 {
		c.ConnMaxLifetime = 5 * time.Minute
	}
}

// Validate checks the fields the selected driver needs.
func (c *DatabaseConfig) Validate() error {
	if err := ValidateOneOf("database.driver", c.Driver, DriverPostgres, DriverSQLite, DriverMemory); err != nil {
		return err
	}

	switch c.Driver {
	case DriverPostgres:
		if err := ValidateRequired("database.host", c.Host); err != nil {
			return err
		}
		return ValidatePort("database.port", c.Port)
	case DriverSQLite:
		return ValidateRequired("database.path", c.Path)
	}
	return nil
}

// RedisConfig configures the optional Redis cache and event stream.
type RedisConfig struct {
	Enabled  bool          `env:"ALNP_REDIS_ENABLED"  yaml:"enabled"`
	Address  string        `env:"ALNP_REDIS_ADDRESS"  yaml:"address"`
	Password string        `env:"ALNP_REDIS_PASSWORD" yaml:"password"`
	DB       int           `env:"ALNP_REDIS_DB"       yaml:"db"`
	CacheTTL time.Duration `yaml:"cache_ttl"`
	Stream   string        `yaml:"stream"`
}

// SetDefaults fills unset fields.
func (c *RedisConfig) SetDefaults() {
	if c.Address == "" {
		c.Address = "localhost:6379"
	}
	if c.CacheTTL == 0 {
		c.CacheTTL = 10 * time.Minute
	}
	if c.Stream == "" {
		c.Stream = "alnp:settings"
	}
}

// LoggingConfig configures the service logger.
type LoggingConfig struct {
	Level  string `env:"LOG_LEVEL"  yaml:"level"`
	Format string `env:"LOG_FORMAT" yaml:"format"`
}

// SetDefaults fills unset fields.
func (c *LoggingConfig) SetDefaults() {
	if c.Level == "" {
		c.Level = "info"
	}
	if c.Format == "" {
		c.Format = "json"
	}
}
