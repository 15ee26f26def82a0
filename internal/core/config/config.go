package config

import (
	"time"

	"github.com/pulseobs/pulse/internal/health"
	"github.com/pulseobs/pulse/internal/infra/analytics"
	"github.com/pulseobs/pulse/internal/infra/kvstore"
)

// Duration is a time.Duration that unmarshals from YAML strings like "30s"
// as well as integer nanoseconds.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var raw string
	if err := unmarshal(&raw); err == nil {
		parsed, err := time.ParseDuration(raw)
		if err != nil {
			return err
		}
		*d = Duration(parsed)
		return nil
	}
	var n int64
	if err := unmarshal(&n); err != nil {
		return err
	}
	*d = Duration(n)
	return nil
}

// Std converts to the standard library type.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// AppConfig represents the top-level configuration.
type AppConfig struct {
	Server      ServerConfig             `yaml:"server"`
	Logging     LoggingConfig            `yaml:"logging"`
	Remote      RemoteConfig             `yaml:"remote"`
	Redis       kvstore.RedisConfig      `yaml:"redis"`
	Database    analytics.PostgresConfig `yaml:"database"`
	Analytics   AnalyticsConfig          `yaml:"analytics"`
	Health      HealthConfig             `yaml:"health"`
	Performance PerformanceConfig        `yaml:"performance"`
	Session     SessionConfig            `yaml:"session"`
	Recovery    RecoveryConfig           `yaml:"recovery"`
}

// RemoteConfig holds the remote service probe settings.
type RemoteConfig struct {
	URL     string   `yaml:"url"`
	Timeout Duration `yaml:"timeout"`
}

// AnalyticsConfig holds the HTTP analytics collector settings.
type AnalyticsConfig struct {
	URL     string   `yaml:"url"`
	Timeout Duration `yaml:"timeout"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port int `yaml:"port"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
	// PersistDebugLog enables the capped debug log snapshot in the local
	// store (non-production contexts only).
	PersistDebugLog bool `yaml:"persist_debug_log"`
}

// HealthConfig holds health monitoring settings.
type HealthConfig struct {
	Interval    Duration          `yaml:"interval"`
	Thresholds  health.Thresholds `yaml:"thresholds"`
	RequiredEnv []string          `yaml:"required_env"`
}

// PerformanceConfig holds performance monitoring settings.
type PerformanceConfig struct {
	SampleInterval Duration `yaml:"sample_interval"`
}

// SessionConfig holds session tracking settings.
type SessionConfig struct {
	InitialPage string `yaml:"initial_page"`
}

// RecoveryConfig holds recovery coordinator settings.
type RecoveryConfig struct {
	MaxAttempts int      `yaml:"max_attempts"`
	Cooldown    Duration `yaml:"cooldown"`
}
