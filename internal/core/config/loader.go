package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v2"

	"github.com/pulseobs/pulse/internal/health"
	"github.com/pulseobs/pulse/internal/recovery"
)

// Load reads configuration from a YAML file.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg AppConfig
	// Expand environment variables in the YAML content
	expandedData := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expandedData), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Set defaults if necessary
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Health.Interval == 0 {
		cfg.Health.Interval = Duration(60 * time.Second)
	}
	if cfg.Health.Thresholds.ErrorRate == 0 {
		cfg.Health.Thresholds.ErrorRate = health.DefaultThresholds.ErrorRate
	}
	if cfg.Health.Thresholds.MemoryUsage == 0 {
		cfg.Health.Thresholds.MemoryUsage = health.DefaultThresholds.MemoryUsage
	}
	if cfg.Performance.SampleInterval == 0 {
		cfg.Performance.SampleInterval = Duration(30 * time.Second)
	}
	if cfg.Recovery.MaxAttempts == 0 {
		cfg.Recovery.MaxAttempts = recovery.DefaultMaxAttempts
	}
	if cfg.Recovery.Cooldown == 0 {
		cfg.Recovery.Cooldown = Duration(recovery.DefaultCooldown)
	}

	return &cfg, nil
}
