// Package config provides environment-variable configuration loading,
// the pattern the rest of this codebase's ambient knobs follow.
package config

import (
	"os"
	"strconv"
	"time"
)

// EnvConfig loads values from environment variables, each with an
// optional prefix and a hardcoded fallback default.
type EnvConfig struct {
	prefix string
}

// NewEnvConfig creates a new environment configuration loader.
func NewEnvConfig(prefix string) *EnvConfig {
	return &EnvConfig{prefix: prefix}
}

// GetString retrieves a string value from environment with optional default.
func (ec *EnvConfig) GetString(key, defaultValue string) string {
	if value := os.Getenv(ec.buildKey(key)); value != "" {
		return value
	}
	return defaultValue
}

// GetInt retrieves an integer value from environment with optional default.
func (ec *EnvConfig) GetInt(key string, defaultValue int) int {
	if value := os.Getenv(ec.buildKey(key)); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// GetDuration retrieves a duration value from environment with optional default.
func (ec *EnvConfig) GetDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(ec.buildKey(key)); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func (ec *EnvConfig) buildKey(key string) string {
	if ec.prefix != "" {
		return ec.prefix + "_" + key
	}
	return key
}

// CrawlerConfig is every process-wide knob not covered by the settings
// directory (spec.md §4.12 covers per-network configuration instead).
type CrawlerConfig struct {
	CouchDBURL    string
	Database      string
	SettingsDir   string
	ChannelLimit  int
	WorkerCap     int
	Mode          string
	StatsInterval time.Duration
}

// LoadCrawlerConfig loads CrawlerConfig from environment variables
// prefixed with MANSA_, falling back to sane defaults for local/dev use.
func LoadCrawlerConfig() CrawlerConfig {
	env := NewEnvConfig("MANSA")
	return CrawlerConfig{
		CouchDBURL:    env.GetString("COUCHDB_URL", "http://localhost:5984"),
		Database:      env.GetString("DATABASE", "mansa"),
		SettingsDir:   env.GetString("SETTINGS_DIR", "./settings"),
		ChannelLimit:  env.GetInt("CHANNEL_LIMIT", 100),
		WorkerCap:     env.GetInt("WORKER_CAP", 20),
		Mode:          env.GetString("MODE", "manual"),
		StatsInterval: env.GetDuration("STATS_INTERVAL", 5*time.Second),
	}
}
