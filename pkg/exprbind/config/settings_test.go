package config_test

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/exprbind/pkg/exprbind/config"
)

func TestDefaults(t *testing.T) {
	s := config.Defaults()
	assert.Equal(t, 100, s.MinimumImmediate)
	assert.Equal(t, 15*time.Millisecond, s.FrameBudget)
	assert.Equal(t, 100, s.BudgetCheckInterval)
	assert.Equal(t, 100, s.SlotWarningThreshold)
	assert.Equal(t, 120*time.Millisecond, s.DirtyCheckDelay)
	assert.False(t, s.MetricsEnabled)
	assert.False(t, s.TracingEnabled)
	assert.Equal(t, slog.LevelInfo, s.Level())
	assert.NoError(t, s.Validate())
}

func TestFromMap(t *testing.T) {
	tests := []struct {
		name  string
		data  map[string]any
		check func(t *testing.T, s config.Settings)
	}{
		{
			"nil map keeps defaults",
			nil,
			func(t *testing.T, s config.Settings) { assert.Equal(t, config.Defaults(), s) },
		},
		{
			"ints and whole floats",
			map[string]any{"minimum_immediate": 5, "budget_check_interval": 20.0, "slot_warning_threshold": int64(7)},
			func(t *testing.T, s config.Settings) {
				assert.Equal(t, 5, s.MinimumImmediate)
				assert.Equal(t, 20, s.BudgetCheckInterval)
				assert.Equal(t, 7, s.SlotWarningThreshold)
			},
		},
		{
			"fractional int keeps default",
			map[string]any{"minimum_immediate": 5.5},
			func(t *testing.T, s config.Settings) { assert.Equal(t, 100, s.MinimumImmediate) },
		},
		{
			"duration strings",
			map[string]any{"frame_budget": "8ms", "dirty_check_delay": "1s"},
			func(t *testing.T, s config.Settings) {
				assert.Equal(t, 8*time.Millisecond, s.FrameBudget)
				assert.Equal(t, time.Second, s.DirtyCheckDelay)
			},
		},
		{
			"numeric durations are milliseconds",
			map[string]any{"frame_budget": 4, "dirty_check_delay": 2.5},
			func(t *testing.T, s config.Settings) {
				assert.Equal(t, 4*time.Millisecond, s.FrameBudget)
				assert.Equal(t, 2500*time.Microsecond, s.DirtyCheckDelay)
			},
		},
		{
			"invalid duration string keeps default",
			map[string]any{"frame_budget": "soon"},
			func(t *testing.T, s config.Settings) { assert.Equal(t, 15*time.Millisecond, s.FrameBudget) },
		},
		{
			"flags and level",
			map[string]any{"metrics_enabled": true, "tracing_enabled": true, "log_level": "DEBUG"},
			func(t *testing.T, s config.Settings) {
				assert.True(t, s.MetricsEnabled)
				assert.True(t, s.TracingEnabled)
				assert.Equal(t, "debug", s.LogLevel)
				assert.Equal(t, slog.LevelDebug, s.Level())
			},
		},
		{
			"wrong types keep defaults",
			map[string]any{"metrics_enabled": "yes", "log_level": 3, "minimum_immediate": "10"},
			func(t *testing.T, s config.Settings) { assert.Equal(t, config.Defaults(), s) },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := config.FromMap(tt.data)
			require.NoError(t, err)
			tt.check(t, s)
		})
	}
}

func TestFromMap_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data map[string]any
		want string
	}{
		{"negative minimum", map[string]any{"minimum_immediate": -1}, "minimum_immediate must not be negative"},
		{"zero budget", map[string]any{"frame_budget": "0s"}, "frame_budget must be positive"},
		{"zero check interval", map[string]any{"budget_check_interval": 0}, "budget_check_interval must be positive"},
		{"zero slot threshold", map[string]any{"slot_warning_threshold": 0}, "slot_warning_threshold must be positive"},
		{"negative dirty delay", map[string]any{"dirty_check_delay": "-1ms"}, "dirty_check_delay must be positive"},
		{"unknown level", map[string]any{"log_level": "loud"}, `unknown log_level "loud"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := config.FromMap(tt.data)
			require.ErrorIs(t, err, config.ErrInvalidSettings)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestFromYAMLAndJSON(t *testing.T) {
	yamlSettings, err := config.FromYAML([]byte("minimum_immediate: 3\nframe_budget: 10ms\nlog_level: warn\n"))
	require.NoError(t, err)
	assert.Equal(t, 3, yamlSettings.MinimumImmediate)
	assert.Equal(t, 10*time.Millisecond, yamlSettings.FrameBudget)
	assert.Equal(t, slog.LevelWarn, yamlSettings.Level())

	jsonSettings, err := config.FromJSON([]byte(`{"minimum_immediate": 3, "frame_budget": 10, "tracing_enabled": true}`))
	require.NoError(t, err)
	assert.Equal(t, 3, jsonSettings.MinimumImmediate)
	assert.Equal(t, 10*time.Millisecond, jsonSettings.FrameBudget)
	assert.True(t, jsonSettings.TracingEnabled)

	_, err = config.FromYAML([]byte("minimum_immediate: [unclosed"))
	assert.ErrorContains(t, err, "parse yaml")

	_, err = config.FromJSON([]byte("{"))
	assert.ErrorContains(t, err, "parse json")
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()

	yamlPath := filepath.Join(dir, "settings.yml")
	require.NoError(t, os.WriteFile(yamlPath, []byte("slot_warning_threshold: 12\n"), 0o600))
	s, err := config.Load(yamlPath)
	require.NoError(t, err)
	assert.Equal(t, 12, s.SlotWarningThreshold)

	jsonPath := filepath.Join(dir, "settings.json")
	require.NoError(t, os.WriteFile(jsonPath, []byte(`{"metrics_enabled": true}`), 0o600))
	s, err = config.Load(jsonPath)
	require.NoError(t, err)
	assert.True(t, s.MetricsEnabled)

	tomlPath := filepath.Join(dir, "settings.toml")
	require.NoError(t, os.WriteFile(tomlPath, []byte(""), 0o600))
	_, err = config.Load(tomlPath)
	assert.ErrorContains(t, err, "unsupported settings file extension: .toml")

	_, err = config.Load(filepath.Join(dir, "missing.yaml"))
	assert.ErrorContains(t, err, "read settings file")
}
