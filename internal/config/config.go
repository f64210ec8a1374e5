package config

import (
	infraconfig "github.com/jonesrussell/autoload-next-post/infrastructure/config"
	"github.com/jonesrussell/autoload-next-post/infrastructure/profiling"
	"github.com/jonesrussell/autoload-next-post/internal/notice"
)

// Default configuration values.
const (
	defaultServiceName = "autoload-next-post"
	defaultServicePort = 8097
	defaultVersion     = "1.6.0"
)

// Config holds the application configuration.
type Config struct {
	Service   ServiceConfig              `yaml:"service"`
	Plugin    PluginConfig               `yaml:"plugin"`
	Database  infraconfig.DatabaseConfig `yaml:"database"`
	Redis     infraconfig.RedisConfig    `yaml:"redis"`
	Theme     ThemeConfig                `yaml:"theme"`
	Auth      AuthConfig                 `yaml:"auth"`
	Logging   infraconfig.LoggingConfig  `yaml:"logging"`
	Profiling profiling.Config           `yaml:"profiling"`
}

// ServiceConfig holds service-level configuration.
type ServiceConfig struct {
	Name        string   `yaml:"name"`
	Version     string   `yaml:"version"`
	Port        int      `env:"ALNP_PORT"         yaml:"port"`
	Debug       bool     `env:"APP_DEBUG"         yaml:"debug"`
	CORSOrigins []string `env:"ALNP_CORS_ORIGINS" yaml:"cors_origins"`
}

// PluginConfig describes the plugin and the platform it runs on.
type PluginConfig struct {
	Name            string `yaml:"name"`
	RequiredVersion string `env:"ALNP_REQUIRED_WP_VERSION" yaml:"required_version"`
	// PlatformVersion is the running WordPress version; empty means unknown.
	PlatformVersion string `env:"WP_VERSION" yaml:"platform_version"`
}

// ThemeConfig locates the active theme. Parent is set for child themes.
type ThemeConfig struct {
	Root        string   `env:"ALNP_THEME_ROOT"   yaml:"root"`
	Parent      string   `env:"ALNP_THEME_PARENT" yaml:"parent"`
	Watch       bool     `env:"ALNP_THEME_WATCH"  yaml:"watch"`
	Directories []string `yaml:"directories"`
	// RescanSchedule is a cron spec for periodic rescans; empty disables.
	RescanSchedule string `env:"ALNP_THEME_RESCAN" yaml:"rescan_schedule"`
}

// Roots returns the theme roots, child first.
func (t ThemeConfig) Roots() []string {
	return []string{t.Root, t.Parent}
}

// AuthConfig holds the JWT secret. Without one every caller is anonymous.
type AuthConfig struct {
	JWTSecret string `env:"ALNP_JWT_SECRET" yaml:"jwt_secret"`
}

// Load loads configuration from the specified path.
func Load(path string) (*Config, error) {
	return infraconfig.LoadWithDefaults[Config](path, setDefaults)
}

// setDefaults applies default values to the config.
func setDefaults(cfg *Config) {
	setServiceDefaults(&cfg.Service)
	setPluginDefaults(&cfg.Plugin)
	cfg.Database.SetDefaults()
	cfg.Redis.SetDefaults()
	cfg.Logging.SetDefaults()
	cfg.Profiling.SetDefaults()
}

func setServiceDefaults(svc *ServiceConfig) {
	if svc.Name == "" {
		svc.Name = defaultServiceName
	}
	if svc.Version == "" {
		svc.Version = defaultVersion
	}
	if svc.Port == 0 {
		svc.Port = defaultServicePort
	}
}

func setPluginDefaults(p *PluginConfig) {
	if p.Name == "" {
		p.Name = notice.DefaultPluginName
	}
	if p.RequiredVersion == "" {
		p.RequiredVersion = notice.DefaultRequiredVersion
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := infraconfig.ValidatePort("service.port", c.Service.Port); err != nil {
		return err
	}
	if err := infraconfig.ValidateRequired("theme.root", c.Theme.Root); err != nil {
		return err
	}
	if err := c.Database.Validate(); err != nil {
		return err
	}
	return infraconfig.ValidateLogLevel("logging.level", c.Logging.Level)
}
