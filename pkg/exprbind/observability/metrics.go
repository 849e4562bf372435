package observability

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// MetricsRecorder records engine metrics.
// Use NewMetricsRecorder() for OTel metrics or NoopMetrics{} when disabled.
type MetricsRecorder interface {
	// RecordFlush records a drained microtask queue.
	RecordFlush(ctx context.Context, tasks int, duration time.Duration, err error)

	// RecordFrame records one connect-queue frame.
	RecordFrame(ctx context.Context, connected, remaining int, duration time.Duration)

	// RecordConnectDeferred records a binding connect pushed to a frame.
	RecordConnectDeferred(ctx context.Context)

	// RecordSignal records a signal broadcast.
	RecordSignal(ctx context.Context, name string)

	// RecordParse records a parse request and whether the cache served it.
	RecordParse(ctx context.Context, cached bool, err error)
}

// otelMetrics implements MetricsRecorder using OpenTelemetry.
type otelMetrics struct {
	flushes         metric.Int64Counter
	flushTasks      metric.Int64Histogram
	flushLatency    metric.Float64Histogram
	taskPanics      metric.Int64Counter
	frames          metric.Int64Counter
	frameConnected  metric.Int64Histogram
	frameLatency    metric.Float64Histogram
	connectDeferred metric.Int64Counter
	signals         metric.Int64Counter
	parses          metric.Int64Counter
	parseErrors     metric.Int64Counter
}

var (
	defaultMetrics     *otelMetrics
	defaultMetricsOnce sync.Once
	defaultMetricsErr  error
)

// getDefaultMetrics returns the default OTel metrics instance.
// Lazily initializes the metrics on first call.
func getDefaultMetrics() (*otelMetrics, error) {
	defaultMetricsOnce.Do(func() {
		defaultMetrics, defaultMetricsErr = newOtelMetrics()
	})
	return defaultMetrics, defaultMetricsErr
}

// newOtelMetrics creates a new OTel metrics instance.
func newOtelMetrics() (*otelMetrics, error) {
	meter := otel.Meter("exprbind")
	m := &otelMetrics{}
	var err error

	if m.flushes, err = meter.Int64Counter("exprbind.taskqueue.flushes",
		metric.WithDescription("Number of microtask queue flushes"),
	); err != nil {
		return nil, err
	}
	if m.flushTasks, err = meter.Int64Histogram("exprbind.taskqueue.flush_tasks",
		metric.WithDescription("Tasks run per microtask flush"),
	); err != nil {
		return nil, err
	}
	if m.flushLatency, err = meter.Float64Histogram("exprbind.taskqueue.flush_latency_ms",
		metric.WithDescription("Microtask flush latency in milliseconds"),
		metric.WithUnit("ms"),
	); err != nil {
		return nil, err
	}
	if m.taskPanics, err = meter.Int64Counter("exprbind.taskqueue.panics",
		metric.WithDescription("Number of flushes with a panicking task"),
	); err != nil {
		return nil, err
	}
	if m.frames, err = meter.Int64Counter("exprbind.connect.frames",
		metric.WithDescription("Number of connect-queue frames"),
	); err != nil {
		return nil, err
	}
	if m.frameConnected, err = meter.Int64Histogram("exprbind.connect.frame_bindings",
		metric.WithDescription("Bindings connected per frame"),
	); err != nil {
		return nil, err
	}
	if m.frameLatency, err = meter.Float64Histogram("exprbind.connect.frame_latency_ms",
		metric.WithDescription("Connect-queue frame latency in milliseconds"),
		metric.WithUnit("ms"),
	); err != nil {
		return nil, err
	}
	if m.connectDeferred, err = meter.Int64Counter("exprbind.connect.deferred",
		metric.WithDescription("Number of binding connects deferred to a frame"),
	); err != nil {
		return nil, err
	}
	if m.signals, err = meter.Int64Counter("exprbind.signal.sent",
		metric.WithDescription("Number of signals sent"),
	); err != nil {
		return nil, err
	}
	if m.parses, err = meter.Int64Counter("exprbind.parser.requests",
		metric.WithDescription("Number of parse requests"),
	); err != nil {
		return nil, err
	}
	if m.parseErrors, err = meter.Int64Counter("exprbind.parser.errors",
		metric.WithDescription("Number of failed parses"),
	); err != nil {
		return nil, err
	}
	return m, nil
}

// NewMetricsRecorder returns a MetricsRecorder that uses OpenTelemetry.
// If metrics initialization fails, returns a no-op recorder.
//
// The recorder uses the global OTel meter provider. Configure the provider
// before calling this function:
//
//	import "go.opentelemetry.io/otel"
//	otel.SetMeterProvider(yourProvider)
func NewMetricsRecorder() MetricsRecorder {
	m, err := getDefaultMetrics()
	if err != nil {
		slog.Warn("metrics initialization failed, using no-op recorder",
			slog.String("error", err.Error()))
		return NoopMetrics{}
	}
	return m
}

// RecordFlush records a microtask flush.
func (m *otelMetrics) RecordFlush(ctx context.Context, tasks int, duration time.Duration, err error) {
	attrs := metric.WithAttributes(attribute.Bool("success", err == nil))
	m.flushes.Add(ctx, 1, attrs)
	m.flushTasks.Record(ctx, int64(tasks))
	m.flushLatency.Record(ctx, durationMs(duration), attrs)
	if err != nil {
		m.taskPanics.Add(ctx, 1)
	}
}

// RecordFrame records a connect-queue frame.
func (m *otelMetrics) RecordFrame(ctx context.Context, connected, remaining int, duration time.Duration) {
	attrs := metric.WithAttributes(attribute.Bool("drained", remaining == 0))
	m.frames.Add(ctx, 1, attrs)
	m.frameConnected.Record(ctx, int64(connected), attrs)
	m.frameLatency.Record(ctx, durationMs(duration), attrs)
}

// RecordConnectDeferred records a deferred connect.
func (m *otelMetrics) RecordConnectDeferred(ctx context.Context) {
	m.connectDeferred.Add(ctx, 1)
}

// RecordSignal records a signal broadcast.
func (m *otelMetrics) RecordSignal(ctx context.Context, name string) {
	m.signals.Add(ctx, 1, metric.WithAttributes(attribute.String("signal", name)))
}

// RecordParse records a parse request.
func (m *otelMetrics) RecordParse(ctx context.Context, cached bool, err error) {
	m.parses.Add(ctx, 1, metric.WithAttributes(attribute.Bool("cached", cached)))
	if err != nil {
		m.parseErrors.Add(ctx, 1)
	}
}

func durationMs(d time.Duration) float64 {
	return float64(d.Microseconds()) / 1000
}
