// Package observability provides logging, metrics and tracing for the
// binding engine: scheduler flushes, connect-queue frames, signals and
// parsing.
//
// Features:
//   - Structured logging via slog
//   - Metrics via OpenTelemetry
//   - Tracing via OpenTelemetry
//
// All features are opt-in and have no-op implementations when disabled.
package observability

import (
	"log/slog"
	"time"
)

// EnrichLogger adds binding context to a logger.
//
// Example:
//
//	logger := EnrichLogger(base, binding.ID(), "user.name")
//	logger.Warn("update failed") // includes binding_id, expression
func EnrichLogger(logger *slog.Logger, bindingID, expression string) *slog.Logger {
	if logger == nil {
		return nil
	}
	return logger.With(
		slog.String("binding_id", bindingID),
		slog.String("expression", expression),
	)
}

// LogFlush logs a drained microtask queue.
func LogFlush(logger *slog.Logger, tasks int, durationMs float64) {
	if logger == nil {
		return
	}
	logger.Debug("microtask queue flushed",
		slog.Int("tasks", tasks),
		slog.Float64("duration_ms", durationMs),
	)
}

// LogTaskPanic logs a task that panicked. The queue keeps draining.
func LogTaskPanic(logger *slog.Logger, queue string, value any, stack string) {
	if logger == nil {
		return
	}
	logger.Error("task panicked",
		slog.String("queue", queue),
		slog.Any("panic", value),
		slog.String("stack", stack),
	)
}

// LogConnectDeferred logs a connect pushed to a later frame.
func LogConnectDeferred(logger *slog.Logger, bindingID string, queued int) {
	if logger == nil {
		return
	}
	logger.Debug("binding connect deferred",
		slog.String("binding_id", bindingID),
		slog.Int("queued", queued),
	)
}

// LogFrameDrained logs one connect-queue frame.
func LogFrameDrained(logger *slog.Logger, connected, remaining int, durationMs float64) {
	if logger == nil {
		return
	}
	logger.Debug("connect frame drained",
		slog.Int("connected", connected),
		slog.Int("remaining", remaining),
		slog.Float64("duration_ms", durationMs),
	)
}

// LogSlotPressure warns that a binding observes unusually many values.
func LogSlotPressure(logger *slog.Logger, bindingID string, slots int) {
	if logger == nil {
		return
	}
	logger.Warn("binding observes many values",
		slog.String("binding_id", bindingID),
		slog.Int("slots", slots),
	)
}

// LogSignal logs a signal broadcast.
func LogSignal(logger *slog.Logger, name string, count int) {
	if logger == nil {
		return
	}
	logger.Debug("signal sent",
		slog.String("signal", name),
		slog.Int("count", count),
	)
}

// LogParseError logs an expression that failed to parse.
func LogParseError(logger *slog.Logger, input string, err error) {
	if logger == nil {
		return
	}
	logger.Warn("expression parse failed",
		slog.String("expression", input),
		slog.String("error", err.Error()),
	)
}

// LogBindingError logs a binding update that failed.
func LogBindingError(logger *slog.Logger, bindingID, op string, err error) {
	if logger == nil {
		return
	}
	logger.Error("binding update failed",
		slog.String("binding_id", bindingID),
		slog.String("operation", op),
		slog.String("error", err.Error()),
	)
}

// TimedOperation measures the duration of an operation.
// Returns a function that, when called, returns the elapsed time in milliseconds.
//
// Example:
//
//	done := TimedOperation()
//	// ... do work ...
//	durationMs := done()
func TimedOperation() func() float64 {
	start := time.Now()
	return func() float64 {
		return float64(time.Since(start).Microseconds()) / 1000
	}
}
