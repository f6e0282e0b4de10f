// Package config loads and validates service configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config captures all service configuration knobs loaded via Viper.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Crawler   CrawlerConfig   `mapstructure:"crawler"`
	Daily     DailyConfig     `mapstructure:"daily"`
	Archive   ArchiveConfig   `mapstructure:"archive"`
	RateLimit RateLimitConfig `mapstructure:"ratelimit"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// ServerConfig controls HTTP server behavior.
type ServerConfig struct {
	Port int `mapstructure:"port"`
}

// AuthConfig defines API authentication toggles.
type AuthConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	APIKey  string `mapstructure:"api_key"`
}

// CrawlerConfig governs delay and step timing for crawl sessions.
type CrawlerConfig struct {
	BatchDelayMinSeconds   int `mapstructure:"batch_delay_min_seconds"`
	BatchDelayMaxSeconds   int `mapstructure:"batch_delay_max_seconds"`
	SafetyNetBufferSeconds int `mapstructure:"safety_net_buffer_seconds"`
}

// DailyConfig bounds the window for the daily recrawl draw.
type DailyConfig struct {
	WindowOpenHour  int `mapstructure:"window_open_hour"`
	WindowCloseHour int `mapstructure:"window_close_hour"`
}

// ArchiveConfig controls the optional Postgres event archive.
type ArchiveConfig struct {
	Enabled         bool   `mapstructure:"enabled"`
	DSN             string `mapstructure:"dsn"`
	MaxConns        int    `mapstructure:"max_conns"`
	WriteTimeoutSec int    `mapstructure:"write_timeout_seconds"`
}

// RateLimitConfig throttles the HTTP API per client.
type RateLimitConfig struct {
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("FUNDWATCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("crawler.batch_delay_min_seconds", 20)
	v.SetDefault("crawler.batch_delay_max_seconds", 60)
	v.SetDefault("crawler.safety_net_buffer_seconds", 15)
	v.SetDefault("daily.window_open_hour", 19)
	v.SetDefault("daily.window_close_hour", 21)
	v.SetDefault("archive.enabled", false)
	v.SetDefault("archive.max_conns", 4)
	v.SetDefault("archive.write_timeout_seconds", 5)
	v.SetDefault("ratelimit.requests_per_second", 10)
	v.SetDefault("ratelimit.burst", 20)
	v.SetDefault("logging.development", true)
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Server.Port <= 0 {
		return fmt.Errorf("server.port must be > 0")
	}
	if c.Crawler.BatchDelayMinSeconds < 0 {
		return fmt.Errorf("crawler.batch_delay_min_seconds must be >= 0")
	}
	if c.Crawler.BatchDelayMaxSeconds < c.Crawler.BatchDelayMinSeconds {
		return fmt.Errorf("crawler.batch_delay_max_seconds must be >= batch_delay_min_seconds")
	}
	if c.Crawler.SafetyNetBufferSeconds < 0 {
		return fmt.Errorf("crawler.safety_net_buffer_seconds must be >= 0")
	}
	if c.Daily.WindowOpenHour < 0 || c.Daily.WindowOpenHour > 23 {
		return fmt.Errorf("daily.window_open_hour must be in [0,23]")
	}
	if c.Daily.WindowCloseHour <= c.Daily.WindowOpenHour || c.Daily.WindowCloseHour > 24 {
		return fmt.Errorf("daily.window_close_hour must be > window_open_hour and <= 24")
	}
	if c.Archive.Enabled && c.Archive.DSN == "" {
		return fmt.Errorf("archive.dsn must be set when archive is enabled")
	}
	if c.RateLimit.RequestsPerSecond <= 0 {
		return fmt.Errorf("ratelimit.requests_per_second must be > 0")
	}
	if c.RateLimit.Burst <= 0 {
		return fmt.Errorf("ratelimit.burst must be > 0")
	}
	if c.Auth.Enabled && c.Auth.APIKey == "" {
		return fmt.Errorf("auth.api_key must be set when auth is enabled")
	}
	return nil
}

// BatchDelayMin returns the lower delay bound as a duration.
func (c Config) BatchDelayMin() time.Duration {
	return time.Duration(c.Crawler.BatchDelayMinSeconds) * time.Second
}

// BatchDelayMax returns the upper delay bound as a duration.
func (c Config) BatchDelayMax() time.Duration {
	return time.Duration(c.Crawler.BatchDelayMaxSeconds) * time.Second
}

// SafetyNetBuffer returns the teardown buffer as a duration.
func (c Config) SafetyNetBuffer() time.Duration {
	return time.Duration(c.Crawler.SafetyNetBufferSeconds) * time.Second
}

// ArchiveWriteTimeout returns the per-insert deadline for archive writes.
func (c Config) ArchiveWriteTimeout() time.Duration {
	return time.Duration(c.Archive.WriteTimeoutSec) * time.Second
}
