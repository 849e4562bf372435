package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// NoopMetrics is a MetricsRecorder that does nothing.
type NoopMetrics struct{}

var _ MetricsRecorder = NoopMetrics{}

// RecordFlush does nothing.
func (NoopMetrics) RecordFlush(context.Context, int, time.Duration, error) {}

// RecordFrame does nothing.
func (NoopMetrics) RecordFrame(context.Context, int, int, time.Duration) {}

// RecordConnectDeferred does nothing.
func (NoopMetrics) RecordConnectDeferred(context.Context) {}

// RecordSignal does nothing.
func (NoopMetrics) RecordSignal(context.Context, string) {}

// RecordParse does nothing.
func (NoopMetrics) RecordParse(context.Context, bool, error) {}

// NoopSpanManager is a SpanManager that does nothing.
type NoopSpanManager struct{}

var _ SpanManager = NoopSpanManager{}

var noopSpan = noop.Span{}

// StartFlushSpan returns the context unchanged and a no-op span.
func (NoopSpanManager) StartFlushSpan(ctx context.Context, _ int) (context.Context, trace.Span) {
	return ctx, noopSpan
}

// StartFrameSpan returns the context unchanged and a no-op span.
func (NoopSpanManager) StartFrameSpan(ctx context.Context, _ int) (context.Context, trace.Span) {
	return ctx, noopSpan
}

// EndSpanWithError does nothing.
func (NoopSpanManager) EndSpanWithError(trace.Span, error) {}

// AddSpanEvent does nothing.
func (NoopSpanManager) AddSpanEvent(context.Context, string, ...attribute.KeyValue) {}
