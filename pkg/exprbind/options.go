package exprbind

import (
	"log/slog"
	"time"

	"github.com/randalmurphal/exprbind/pkg/exprbind/config"
	"github.com/randalmurphal/exprbind/pkg/exprbind/observability"
)

// engineConfig collects options before the engine is assembled.
type engineConfig struct {
	settings  config.Settings
	logger    *slog.Logger
	metrics   observability.MetricsRecorder
	spans     observability.SpanManager
	clock     func() time.Time
	noDefault bool
}

func defaultEngineConfig() engineConfig {
	return engineConfig{settings: config.Defaults()}
}

// Option configures an Engine.
type Option func(*engineConfig)

// WithSettings replaces every tunable at once.
func WithSettings(s config.Settings) Option {
	return func(c *engineConfig) {
		c.settings = s
	}
}

// WithLogger sets the logger shared by the scheduler, connect queue,
// signals and bindings.
// Default: slog.Default()
func WithLogger(logger *slog.Logger) Option {
	return func(c *engineConfig) {
		c.logger = logger
	}
}

// WithMetrics enables or disables OpenTelemetry metrics.
// Default: false
//
// Metrics go to the global meter provider under the "exprbind" meter.
func WithMetrics(enabled bool) Option {
	return func(c *engineConfig) {
		c.settings.MetricsEnabled = enabled
	}
}

// WithTracing enables or disables OpenTelemetry spans around microtask
// flushes and connect-queue frames.
// Default: false
func WithTracing(enabled bool) Option {
	return func(c *engineConfig) {
		c.settings.TracingEnabled = enabled
	}
}

// WithMetricsRecorder sets a custom recorder, taking precedence over
// WithMetrics.
func WithMetricsRecorder(m observability.MetricsRecorder) Option {
	return func(c *engineConfig) {
		c.metrics = m
	}
}

// WithSpanManager sets a custom span manager, taking precedence over
// WithTracing.
func WithSpanManager(s observability.SpanManager) Option {
	return func(c *engineConfig) {
		c.spans = s
	}
}

// WithClock sets the time source of the scheduler and the connect queue's
// frame budget.
// Default: time.Now
func WithClock(now func() time.Time) Option {
	return func(c *engineConfig) {
		c.clock = now
	}
}

// WithoutDefaultBehaviors skips registering the built-in binding
// behaviors (oneTime, toView, oneWay, fromView, twoWay, signal).
func WithoutDefaultBehaviors() Option {
	return func(c *engineConfig) {
		c.noDefault = true
	}
}

func (c *engineConfig) resolveLogger() *slog.Logger {
	if c.logger != nil {
		return c.logger
	}
	return slog.Default()
}

func (c *engineConfig) resolveMetrics() observability.MetricsRecorder {
	if c.metrics != nil {
		return c.metrics
	}
	if c.settings.MetricsEnabled {
		return observability.NewMetricsRecorder()
	}
	return observability.NoopMetrics{}
}

func (c *engineConfig) resolveSpans() observability.SpanManager {
	if c.spans != nil {
		return c.spans
	}
	if c.settings.TracingEnabled {
		return observability.NewSpanManager()
	}
	return observability.NoopSpanManager{}
}
