// Package config loads server configuration from a TOML file with
// environment-variable overrides for the values that differ per deployment.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/knadh/koanf/parsers/toml/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config is the entire server configuration.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Database DatabaseConfig `koanf:"database"`
	Auth     AuthConfig     `koanf:"auth"`
	Watch    WatchConfig    `koanf:"watch"`
	Notify   NotifyConfig   `koanf:"notify"`
}

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	// Addr is the listen address, host:port.
	Addr string `koanf:"addr"`
}

// DatabaseConfig holds SQLite settings.
type DatabaseConfig struct {
	// Path to the database file. Parent directories are created on open.
	Path string `koanf:"path"`
}

// AuthConfig holds JWT settings.
type AuthConfig struct {
	// JWTSecret signs access tokens. Required; no default.
	JWTSecret string `koanf:"jwt_secret"`
	// TokenTTLHours is the access token lifetime.
	TokenTTLHours int `koanf:"token_ttl_hours"`
}

// WatchConfig tunes the client-side membership reconciliation the server
// advertises, and nothing else; streams themselves need no tuning.
type WatchConfig struct {
	// SettleDelaySeconds is how long contradictory membership evidence
	// must hold before a stale pointer is cleared.
	SettleDelaySeconds int `koanf:"settle_delay_seconds"`
}

// NotifyConfig tunes the push dispatch worker pool.
type NotifyConfig struct {
	// Workers is the number of concurrent push deliveries.
	Workers int `koanf:"workers"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Server:   ServerConfig{Addr: ":8080"},
		Database: DatabaseConfig{Path: "./data/mydays.db"},
		Auth:     AuthConfig{TokenTTLHours: 24 * 7},
		Watch:    WatchConfig{SettleDelaySeconds: 3},
		Notify:   NotifyConfig{Workers: 4},
	}
}

// Load reads the config file at path (skipped if empty or missing), then
// applies environment overrides. ADDR, DB_PATH and JWT_SECRET always win over
// the file.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			k := koanf.New(".")
			if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
				return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
			}
			if err := k.Unmarshal("", cfg); err != nil {
				return nil, fmt.Errorf("failed to unmarshal config: %w", err)
			}
		}
	}

	if v := os.Getenv("ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("DB_PATH"); v != "" {
		cfg.Database.Path = v
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		cfg.Auth.JWTSecret = v
	}

	if cfg.Auth.JWTSecret == "" {
		return nil, fmt.Errorf("auth.jwt_secret (or JWT_SECRET) is required")
	}
	if cfg.Watch.SettleDelaySeconds <= 0 {
		cfg.Watch.SettleDelaySeconds = 3
	}
	if cfg.Notify.Workers <= 0 {
		cfg.Notify.Workers = 4
	}
	return cfg, nil
}

// TokenTTL returns the access token lifetime as a duration.
func (c *Config) TokenTTL() time.Duration {
	return time.Duration(c.Auth.TokenTTLHours) * time.Hour
}

// SettleDelay returns the reconciler settle delay as a duration.
func (c *Config) SettleDelay() time.Duration {
	return time.Duration(c.Watch.SettleDelaySeconds) * time.Second
}
