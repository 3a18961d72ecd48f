// Package config provides configuration loading and validation for the server and CLI.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the full service configuration.
//
// Every key can be set from a YAML/JSON file or from the environment; nested keys
// map to upper-case environment names with "." replaced by "_", so "jwt.secret"
// is read from JWT_SECRET and "rate_limit.enabled" from RATE_LIMIT_ENABLED.
type Config struct {
	Port        int             `mapstructure:"port"`
	DatabaseURL string          `mapstructure:"database_url"` // PostgreSQL connection URL
	Environment string          `mapstructure:"environment"`
	Log         LogConfig       `mapstructure:"log"`
	JWT         JWTConfig       `mapstructure:"jwt"`
	RateLimit   RateLimitConfig `mapstructure:"rate_limit"`
}

// LogConfig selects log level and encoding.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // json or console
}

// RateLimitConfig holds per-client request limits.
type RateLimitConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	DefaultLimit    int           `mapstructure:"default_limit"`
	DefaultWindow   time.Duration `mapstructure:"default_window"`
	DiagnoseLimit   int           `mapstructure:"diagnose_limit"`
	DiagnoseWindow  time.Duration `mapstructure:"diagnose_window"`
	DiagnoseBurst   int           `mapstructure:"diagnose_burst"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
	Whitelist       []string      `mapstructure:"whitelist"`
	Blacklist       []string      `mapstructure:"blacklist"`
}

// Defaults
const (
	DefaultPort        = 8000
	DefaultEnvironment = "development"
)

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("port", DefaultPort)
	v.SetDefault("database_url", "")
	v.SetDefault("environment", DefaultEnvironment)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.expiration_hours", DefaultJWTExpirationHours)

	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.default_limit", 1000)
	v.SetDefault("rate_limit.default_window", time.Minute)
	v.SetDefault("rate_limit.diagnose_limit", 60)
	v.SetDefault("rate_limit.diagnose_window", time.Minute)
	v.SetDefault("rate_limit.diagnose_burst", 10)
	v.SetDefault("rate_limit.cleanup_interval", 5*time.Minute)
	v.SetDefault("rate_limit.whitelist", []string{})
	v.SetDefault("rate_limit.blacklist", []string{})

	return v
}

// Load reads configuration from the optional file at path, then the environment.
// An empty path loads from the environment and defaults only.
func Load(path string) (*Config, error) {
	v := newViper()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks that the configuration has valid values.
// It does not require DATABASE_URL; commands that need it call RequireDatabase.
func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("config error: 'port' must be between 1 and 65535, got %d", c.Port)
	}

	switch strings.ToLower(c.Log.Format) {
	case "json", "console":
	default:
		return fmt.Errorf("config error: 'log.format' must be json or console, got %q", c.Log.Format)
	}

	rl := c.RateLimit
	if rl.DefaultLimit < 0 || rl.DiagnoseLimit < 0 || rl.DiagnoseBurst < 0 {
		return fmt.Errorf("config error: rate limits must be non-negative")
	}
	if rl.Enabled && (rl.DefaultWindow <= 0 || rl.DiagnoseWindow <= 0) {
		return fmt.Errorf("config error: rate limit windows must be positive")
	}

	if err := c.JWT.normalize(); err != nil {
		return err
	}

	return nil
}

// RequireDatabase returns an error when no database URL is configured.
func (c *Config) RequireDatabase() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL environment variable is required")
	}
	return nil
}
