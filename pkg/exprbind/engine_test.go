package exprbind_test

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/exprbind/pkg/exprbind"
	"github.com/randalmurphal/exprbind/pkg/exprbind/binding"
	"github.com/randalmurphal/exprbind/pkg/exprbind/config"
	"github.com/randalmurphal/exprbind/pkg/exprbind/expr"
	"github.com/randalmurphal/exprbind/pkg/exprbind/observe"
)

type countingMetrics struct {
	mu       sync.Mutex
	parses   int
	cached   int
	failed   int
	signals  []string
	flushes  int
	frames   int
	deferred int
}

func (c *countingMetrics) RecordFlush(context.Context, int, time.Duration, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.flushes++
}

func (c *countingMetrics) RecordFrame(context.Context, int, int, time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.frames++
}

func (c *countingMetrics) RecordConnectDeferred(context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.deferred++
}

func (c *countingMetrics) RecordSignal(_ context.Context, name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.signals = append(c.signals, name)
}

func (c *countingMetrics) RecordParse(_ context.Context, cached bool, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.parses++
	if cached {
		c.cached++
	}
	if err != nil {
		c.failed++
	}
}

func newEngine(t *testing.T, opts ...exprbind.Option) (*exprbind.Engine, *bytes.Buffer) {
	t.Helper()
	var logs bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	e, err := exprbind.New(append([]exprbind.Option{exprbind.WithLogger(logger)}, opts...)...)
	require.NoError(t, err)
	return e, &logs
}

func TestEngine_BindingRoundTrip(t *testing.T) {
	e, _ := newEngine(t)
	require.NoError(t, e.RegisterValueConverter("upper", expr.ConverterFuncs{
		To: func(v any, _ ...any) (any, error) { return strings.ToUpper(expr.ToString(v)), nil },
	}))

	person := observe.NewObjectFrom(map[string]any{"first": "Ada", "last": "Lovelace"})
	label := observe.NewObject()

	b, err := e.NewBinding("first + ' ' + last | upper", label, "text", binding.ToView)
	require.NoError(t, err)
	require.NoError(t, b.Bind(expr.NewScope(person)))
	assert.Equal(t, "ADA LOVELACE", label.Get("text"))

	person.Set("first", "Augusta")
	require.NoError(t, e.Flush())
	assert.Equal(t, "AUGUSTA LOVELACE", label.Get("text"))
}

func TestEngine_ParseCachesAndRecords(t *testing.T) {
	m := &countingMetrics{}
	e, logs := newEngine(t, exprbind.WithMetricsRecorder(m))

	first, err := e.Parse("a + b")
	require.NoError(t, err)
	second, err := e.Parse("a + b")
	require.NoError(t, err)
	assert.Same(t, first, second)

	_, err = e.Parse("a +")
	require.Error(t, err)

	assert.Equal(t, 3, m.parses)
	assert.Equal(t, 1, m.cached)
	assert.Equal(t, 1, m.failed)
	assert.Contains(t, logs.String(), "expression parse failed")
}

func TestEngine_NewBindingErrors(t *testing.T) {
	e, _ := newEngine(t)

	_, err := e.NewBinding("a", nil, "x", binding.ToView)
	assert.ErrorIs(t, err, exprbind.ErrNilTarget)

	_, err = e.NewBinding("a +", observe.NewObject(), "x", binding.ToView)
	var parseErr *expr.ParseError
	assert.ErrorAs(t, err, &parseErr)

	_, err = e.NewAction(")", nil, "")
	assert.ErrorAs(t, err, &parseErr)
}

func TestEngine_Evaluate(t *testing.T) {
	e, _ := newEngine(t)
	got, err := e.Evaluate("items.length > 1 ? 'many' : 'few'", map[string]any{"items": []any{1, 2}})
	require.NoError(t, err)
	assert.Equal(t, "many", got)
}

func TestEngine_SignalReevaluates(t *testing.T) {
	m := &countingMetrics{}
	e, _ := newEngine(t, exprbind.WithMetricsRecorder(m))
	ticks := 0
	src := observe.NewObjectFrom(map[string]any{"next": func(...any) any { ticks++; return ticks }})
	target := observe.NewObject()

	b, err := e.NewBinding("next() & signal:'tick'", target, "value", binding.ToView)
	require.NoError(t, err)
	require.NoError(t, b.Bind(expr.NewScope(src)))
	assert.Equal(t, 1, target.Get("value"))

	require.NoError(t, e.Signal("tick"))
	require.NoError(t, e.Flush())
	assert.Equal(t, 2, target.Get("value"))
	assert.Equal(t, []string{"tick"}, m.signals)
	assert.Equal(t, 1, e.Signals().Count("tick"))
}

func TestEngine_ConnectQueueFromSettings(t *testing.T) {
	settings := config.Defaults()
	settings.MinimumImmediate = 1
	m := &countingMetrics{}
	e, err := exprbind.NewFromSettings(settings, exprbind.WithMetricsRecorder(m))
	require.NoError(t, err)
	assert.Equal(t, 1, e.Settings().MinimumImmediate)

	src := observe.NewObjectFrom(map[string]any{"n": 1})
	targets := []*observe.Object{observe.NewObject(), observe.NewObject(), observe.NewObject()}
	for _, target := range targets {
		b, err := e.NewBinding("n", target, "value", binding.ToView)
		require.NoError(t, err)
		require.NoError(t, b.Bind(expr.NewScope(src)))
	}
	assert.Equal(t, 2, e.ConnectQueue().Pending())
	assert.Equal(t, 2, m.deferred)

	require.NoError(t, e.FlushFrame())
	assert.Zero(t, e.ConnectQueue().Pending())
	assert.Equal(t, 1, m.frames)

	src.Set("n", 2)
	require.NoError(t, e.Flush())
	for _, target := range targets {
		assert.Equal(t, 2, target.Get("value"))
	}
}

func TestEngine_InvalidSettings(t *testing.T) {
	settings := config.Defaults()
	settings.FrameBudget = 0
	_, err := exprbind.NewFromSettings(settings)
	assert.ErrorIs(t, err, config.ErrInvalidSettings)
}

func TestEngine_DefaultBehaviors(t *testing.T) {
	e, _ := newEngine(t)
	for _, name := range []string{"oneTime", "toView", "oneWay", "fromView", "twoWay", "signal"} {
		_, ok := e.Resources().BindingBehavior(name)
		assert.True(t, ok, name)
	}

	bare, _ := newEngine(t, exprbind.WithoutDefaultBehaviors())
	assert.Empty(t, bare.Resources().BindingBehaviorNames())
}

func TestEngine_ActionAndObserve(t *testing.T) {
	e, _ := newEngine(t)
	src := observe.NewObjectFrom(map[string]any{"count": 0})

	var seen []any
	cancel := e.Observe(src, "count", func(newValue, _ any) { seen = append(seen, newValue) })
	defer cancel()

	a, err := e.NewAction("count = count + 1", nil, "")
	require.NoError(t, err)
	require.NoError(t, a.Bind(expr.NewScope(src)))

	_, err = a.CallSource(nil)
	require.NoError(t, err)
	_, err = a.CallSource(nil)
	require.NoError(t, err)
	require.NoError(t, e.Flush())

	assert.Equal(t, []any{2.0}, seen)
}

func TestEngine_RunAndPost(t *testing.T) {
	e, _ := newEngine(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	src := observe.NewObjectFrom(map[string]any{"name": "Ada"})
	target := observe.NewObject()
	done := make(chan struct{})

	go func() { _ = e.Run(ctx, time.Millisecond) }()

	e.Post(func() {
		b, err := e.NewBinding("name", target, "text", binding.ToView)
		if err != nil {
			panic(err)
		}
		if err := b.Bind(expr.NewScope(src)); err != nil {
			panic(err)
		}
		src.Set("name", "Grace")
	})
	e.Post(func() {
		close(done)
	})

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("posted work never ran")
	}

	result := make(chan any, 1)
	e.Post(func() { result <- target.Get("text") })
	assert.Equal(t, "Grace", <-result)
}
