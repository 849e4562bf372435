package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Defaults.
const (
	DefaultMinimumImmediate     = 100
	DefaultFrameBudget          = 15 * time.Millisecond
	DefaultBudgetCheckInterval  = 100
	DefaultSlotWarningThreshold = 100
	DefaultDirtyCheckDelay      = 120 * time.Millisecond
	DefaultLogLevel             = "info"
)

// Keys recognised in configuration documents.
const (
	KeyMinimumImmediate     = "minimum_immediate"
	KeyFrameBudget          = "frame_budget"
	KeyBudgetCheckInterval  = "budget_check_interval"
	KeySlotWarningThreshold = "slot_warning_threshold"
	KeyDirtyCheckDelay      = "dirty_check_delay"
	KeyMetricsEnabled       = "metrics_enabled"
	KeyTracingEnabled       = "tracing_enabled"
	KeyLogLevel             = "log_level"
)

// ErrInvalidSettings wraps every validation failure.
var ErrInvalidSettings = errors.New("invalid settings")

// Settings tunes the engine.
type Settings struct {
	// MinimumImmediate is how many bindings connect synchronously per frame
	// before the connect queue starts deferring.
	MinimumImmediate int

	// FrameBudget bounds the time one connect-queue frame may spend.
	FrameBudget time.Duration

	// BudgetCheckInterval is how many deferred bindings connect between
	// checks of FrameBudget.
	BudgetCheckInterval int

	// SlotWarningThreshold is the observed-value count past which a
	// binding logs a warning once.
	SlotWarningThreshold int

	// DirtyCheckDelay is the polling interval for properties that cannot
	// intercept writes.
	DirtyCheckDelay time.Duration

	MetricsEnabled bool
	TracingEnabled bool

	// LogLevel is one of debug, info, warn or error.
	LogLevel string
}

// Defaults returns the default settings.
func Defaults() Settings {
	return Settings{
		MinimumImmediate:     DefaultMinimumImmediate,
		FrameBudget:          DefaultFrameBudget,
		BudgetCheckInterval:  DefaultBudgetCheckInterval,
		SlotWarningThreshold: DefaultSlotWarningThreshold,
		DirtyCheckDelay:      DefaultDirtyCheckDelay,
		LogLevel:             DefaultLogLevel,
	}
}

// FromMap overlays data on the defaults and validates the result.
func FromMap(data map[string]any) (Settings, error) {
	v := values(data)
	d := Defaults()
	s := Settings{
		MinimumImmediate:     v.getInt(KeyMinimumImmediate, d.MinimumImmediate),
		FrameBudget:          v.getDuration(KeyFrameBudget, d.FrameBudget),
		BudgetCheckInterval:  v.getInt(KeyBudgetCheckInterval, d.BudgetCheckInterval),
		SlotWarningThreshold: v.getInt(KeySlotWarningThreshold, d.SlotWarningThreshold),
		DirtyCheckDelay:      v.getDuration(KeyDirtyCheckDelay, d.DirtyCheckDelay),
		MetricsEnabled:       v.getBool(KeyMetricsEnabled, d.MetricsEnabled),
		TracingEnabled:       v.getBool(KeyTracingEnabled, d.TracingEnabled),
		LogLevel:             strings.ToLower(v.getString(KeyLogLevel, d.LogLevel)),
	}
	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// FromYAML decodes a YAML mapping into Settings.
func FromYAML(data []byte) (Settings, error) {
	var m map[string]any
	if err := yaml.Unmarshal(data, &m); err != nil {
		return Settings{}, fmt.Errorf("parse yaml: %w", err)
	}
	return FromMap(m)
}

// FromJSON decodes a JSON object into Settings.
func FromJSON(data []byte) (Settings, error) {
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return Settings{}, fmt.Errorf("parse json: %w", err)
	}
	return FromMap(m)
}

// Load reads settings from a .yaml, .yml or .json file.
func Load(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, fmt.Errorf("read settings file: %w", err)
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		return FromYAML(data)
	case ".json":
		return FromJSON(data)
	default:
		return Settings{}, fmt.Errorf("unsupported settings file extension: %s", ext)
	}
}

// Validate reports the first out-of-range field.
func (s Settings) Validate() error {
	switch {
	case s.MinimumImmediate < 0:
		return fmt.Errorf("%w: %s must not be negative", ErrInvalidSettings, KeyMinimumImmediate)
	case s.FrameBudget <= 0:
		return fmt.Errorf("%w: %s must be positive", ErrInvalidSettings, KeyFrameBudget)
	case s.BudgetCheckInterval <= 0:
		return fmt.Errorf("%w: %s must be positive", ErrInvalidSettings, KeyBudgetCheckInterval)
	case s.SlotWarningThreshold <= 0:
		return fmt.Errorf("%w: %s must be positive", ErrInvalidSettings, KeySlotWarningThreshold)
	case s.DirtyCheckDelay <= 0:
		return fmt.Errorf("%w: %s must be positive", ErrInvalidSettings, KeyDirtyCheckDelay)
	}
	if _, err := parseLevel(s.LogLevel); err != nil {
		return err
	}
	return nil
}

// Level returns LogLevel as a slog.Level, defaulting to info.
func (s Settings) Level() slog.Level {
	level, err := parseLevel(s.LogLevel)
	if err != nil {
		return slog.LevelInfo
	}
	return level
}

func parseLevel(name string) (slog.Level, error) {
	switch strings.ToLower(name) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("%w: unknown %s %q", ErrInvalidSettings, KeyLogLevel, name)
}
