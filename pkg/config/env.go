// pkg/config/env.go
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvironmentConfig holds process-level settings that come from the
// environment rather than the session file.
type EnvironmentConfig struct {
	LogLevel  string `mapstructure:"log_level"`
	DebugAddr string `mapstructure:"debug_addr"`

	// Asset fetching
	AssetTimeout time.Duration `mapstructure:"asset_timeout"`

	// Circuit breaker around asset fetches
	CircuitBreakerMaxRequests         uint32        `mapstructure:"cb_max_requests"`
	CircuitBreakerInterval            time.Duration `mapstructure:"cb_interval"`
	CircuitBreakerTimeout             time.Duration `mapstructure:"cb_timeout"`
	CircuitBreakerMaxConsecutiveFails uint32        `mapstructure:"cb_max_consecutive_fails"`

	// Resource management
	MaxMemoryMB           int64         `mapstructure:"max_memory_mb"`
	MaxGoroutines         int           `mapstructure:"max_goroutines"`
	ShutdownTimeout       time.Duration `mapstructure:"shutdown_timeout"`
	ResourceCheckInterval time.Duration `mapstructure:"resource_check_interval"`
}

var environmentDefaults = map[string]interface{}{
	"log_level":                "info",
	"debug_addr":               "",
	"asset_timeout":            "5s",
	"cb_max_requests":          3,
	"cb_interval":              "60s",
	"cb_timeout":               "30s",
	"cb_max_consecutive_fails": 5,
	"max_memory_mb":            500,
	"max_goroutines":           64,
	"shutdown_timeout":         "10s",
	"resource_check_interval":  "10s",
}

// LoadConfigFromEnv reads ORRERY_* variables, e.g. ORRERY_LOG_LEVEL.
func LoadConfigFromEnv() (*EnvironmentConfig, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, value := range environmentDefaults {
		v.SetDefault(key, value)
	}

	var env EnvironmentConfig
	if err := v.Unmarshal(&env); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	if err := env.Validate(); err != nil {
		return nil, err
	}
	return &env, nil
}

// Validate checks the environment settings.
func (e *EnvironmentConfig) Validate() error {
	switch strings.ToLower(e.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("%w: unknown log level %q", ErrInvalidConfig, e.LogLevel)
	}

	durations := []struct {
		field string
		value time.Duration
	}{
		{"ORRERY_ASSET_TIMEOUT", e.AssetTimeout},
		{"ORRERY_CB_INTERVAL", e.CircuitBreakerInterval},
		{"ORRERY_CB_TIMEOUT", e.CircuitBreakerTimeout},
		{"ORRERY_SHUTDOWN_TIMEOUT", e.ShutdownTimeout},
		{"ORRERY_RESOURCE_CHECK_INTERVAL", e.ResourceCheckInterval},
	}
	for _, d := range durations {
		if d.value <= 0 {
			return fmt.Errorf("%w: %s must be positive", ErrInvalidConfig, d.field)
		}
	}

	if e.MaxGoroutines <= 0 {
		return fmt.Errorf("%w: ORRERY_MAX_GOROUTINES must be positive", ErrInvalidConfig)
	}
	if e.MaxMemoryMB <= 0 {
		return fmt.Errorf("%w: ORRERY_MAX_MEMORY_MB must be positive", ErrInvalidConfig)
	}
	if e.CircuitBreakerMaxConsecutiveFails == 0 {
		return fmt.Errorf("%w: ORRERY_CB_MAX_CONSECUTIVE_FAILS must be positive", ErrInvalidConfig)
	}
	return nil
}
