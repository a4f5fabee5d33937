// Package log provides the zerolog base logger shared by statematch packages.
package log

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Canonical field names.
const (
	FieldComponent = "component"
	FieldSession   = "session"
	FieldState     = "state"
	FieldTick      = "tick"
)

// Config captures options for configuring the base logger.
type Config struct {
	Level   string    // optional level ("debug", "info", ...), falls back to LOG_LEVEL
	Output  io.Writer // defaults to os.Stderr
	Service string    // attached to every entry, defaults to "statematch"
}

var (
	once sync.Once
	base zerolog.Logger
)

// Configure initialises the base logger. Only the first call has an effect.
func Configure(cfg Config) {
	once.Do(func() {
		base = New(cfg)
	})
}

// New builds a logger from cfg without touching the base logger.
func New(cfg Config) zerolog.Logger {
	level := zerolog.InfoLevel
	lvl := cfg.Level
	if lvl == "" {
		lvl = os.Getenv("LOG_LEVEL")
	}
	if lvl != "" {
		if parsed, err := zerolog.ParseLevel(lvl); err == nil {
			level = parsed
		}
	}
	zerolog.TimeFieldFormat = time.RFC3339Nano

	writer := cfg.Output
	if writer == nil {
		writer = os.Stderr
	}
	service := cfg.Service
	if service == "" {
		service = "statematch"
	}

	return zerolog.New(writer).Level(level).With().
		Timestamp().
		Str("service", service).
		Logger()
}

// Base returns the base logger, configuring it with defaults if needed.
func Base() zerolog.Logger {
	Configure(Config{})
	return base
}

// WithComponent returns a child of the base logger annotated with component.
func WithComponent(component string) zerolog.Logger {
	l := Base()
	return l.With().Str(FieldComponent, component).Logger()
}
