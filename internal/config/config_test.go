package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "statematch.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadFile(t *testing.T) {
	path := writeFile(t, `
tick_rate: 50ms
max_commands_per_tick: 64
log_level: debug
metrics_addr: ":9090"
frames: 120
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 50*time.Millisecond, cfg.TickRate)
	assert.Equal(t, 64, cfg.MaxCommandsPerTick)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, ":9090", cfg.MetricsAddr)
	assert.Equal(t, uint64(120), cfg.Frames)
	assert.Empty(t, cfg.TracePath)
}

func TestEnvOverridesFile(t *testing.T) {
	path := writeFile(t, "tick_rate: 50ms\nlog_level: debug\n")
	t.Setenv("STATEMATCH_TICK_RATE", "10ms")
	t.Setenv("STATEMATCH_TRACE_PATH", "/tmp/trace.yaml")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 10*time.Millisecond, cfg.TickRate)
	assert.Equal(t, "/tmp/trace.yaml", cfg.TracePath)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadErrors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
		require.Error(t, err)
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("bad yaml", func(t *testing.T) {
		_, err := Load(writeFile(t, "tick_rate: [1, 2"))
		require.Error(t, err)
	})

	t.Run("bad env", func(t *testing.T) {
		t.Setenv("STATEMATCH_MAX_COMMANDS_PER_TICK", "lots")
		_, err := Load("")
		require.Error(t, err)
	})
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero tick rate", func(c *Config) { c.TickRate = 0 }},
		{"negative queue", func(c *Config) { c.MaxCommandsPerTick = -1 }},
		{"unknown level", func(c *Config) { c.LogLevel = "loud" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalid)
		})
	}

	assert.NoError(t, Default().Validate())
}
