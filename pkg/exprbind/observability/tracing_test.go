package observability

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func setupTracingTest(t *testing.T) *tracetest.InMemoryExporter {
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	original := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	tracer = otel.Tracer("exprbind")

	t.Cleanup(func() {
		otel.SetTracerProvider(original)
		tracer = otel.Tracer("exprbind")
		if err := tp.Shutdown(context.Background()); err != nil {
			t.Logf("Error shutting down tracer provider: %v", err)
		}
	})
	return exporter
}

func TestSpanManager_FlushSpan(t *testing.T) {
	exporter := setupTracingTest(t)
	sm := NewSpanManager()

	ctx, span := sm.StartFlushSpan(context.Background(), 4)
	sm.AddSpanEvent(ctx, "task.panic", attribute.String("panic", "boom"))
	sm.EndSpanWithError(span, errors.New("task panicked"))

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	s := spans[0]
	assert.Equal(t, "exprbind.taskqueue.flush", s.Name)
	assert.Equal(t, codes.Error, s.Status.Code)
	assert.Contains(t, s.Attributes, attribute.Int("tasks.queued", 4))
	require.NotEmpty(t, s.Events)
	assert.Equal(t, "task.panic", s.Events[0].Name)
}

func TestSpanManager_FrameSpan(t *testing.T) {
	exporter := setupTracingTest(t)
	sm := NewSpanManager()

	_, span := sm.StartFrameSpan(context.Background(), 250)
	sm.EndSpanWithError(span, nil)

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "exprbind.connect.frame", spans[0].Name)
	assert.Equal(t, codes.Ok, spans[0].Status.Code)
	assert.Contains(t, spans[0].Attributes, attribute.Int("bindings.pending", 250))
}

func TestEndSpanWithError_NilSpan(t *testing.T) {
	assert.NotPanics(t, func() { EndSpanWithError(nil, errors.New("x")) })
}

func TestAddSpanEvent_NoSpan(t *testing.T) {
	assert.NotPanics(t, func() { AddSpanEvent(context.Background(), "event") })
}
