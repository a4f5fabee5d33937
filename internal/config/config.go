// Package config loads runtime settings for statematch hosts.
//
// Values are resolved in order: defaults, then an optional YAML file, then
// STATEMATCH_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is prepended to every environment variable name.
const EnvPrefix = "STATEMATCH_"

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("config: invalid")

// Config holds host settings.
type Config struct {
	TickRate           time.Duration `yaml:"tick_rate" env:"TICK_RATE"`
	MaxCommandsPerTick int           `yaml:"max_commands_per_tick" env:"MAX_COMMANDS_PER_TICK"`
	LogLevel           string        `yaml:"log_level" env:"LOG_LEVEL"`
	// MetricsAddr is the listen address of the debug HTTP server. Empty disables it.
	MetricsAddr string `yaml:"metrics_addr" env:"METRICS_ADDR"`
	// TracePath is a file the YAML transition journal is appended to. Empty disables it.
	TracePath string `yaml:"trace_path" env:"TRACE_PATH"`
	// Frames stops the host after this many ticks. Zero runs until cancelled.
	Frames uint64 `yaml:"frames" env:"FRAMES"`
}

// Default returns the built-in settings: 60 ticks per second, 1000 queued
// commands per tick, info logging.
func Default() Config {
	return Config{
		TickRate:           16667 * time.Microsecond,
		MaxCommandsPerTick: 1000,
		LogLevel:           "info",
	}
}

// Load resolves the configuration. path may be empty.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return Config{}, fmt.Errorf("config: environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	if c.TickRate <= 0 {
		return fmt.Errorf("%w: tick_rate must be positive, got %s", ErrInvalid, c.TickRate)
	}
	if c.MaxCommandsPerTick <= 0 {
		return fmt.Errorf("%w: max_commands_per_tick must be positive, got %d", ErrInvalid, c.MaxCommandsPerTick)
	}
	switch c.LogLevel {
	case "trace", "debug", "info", "warn", "error", "fatal", "panic", "disabled":
	default:
		return fmt.Errorf("%w: unknown log_level %q", ErrInvalid, c.LogLevel)
	}
	return nil
}
