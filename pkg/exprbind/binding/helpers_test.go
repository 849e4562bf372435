package binding

import (
	"bytes"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/exprbind/pkg/exprbind/expr"
	"github.com/randalmurphal/exprbind/pkg/exprbind/observe"
	"github.com/randalmurphal/exprbind/pkg/exprbind/resources"
	"github.com/randalmurphal/exprbind/pkg/exprbind/signal"
	"github.com/randalmurphal/exprbind/pkg/exprbind/taskqueue"
)

type fixture struct {
	queue     *taskqueue.Queue
	host      *Host
	resources *resources.Registry
	logs      *bytes.Buffer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	var logs bytes.Buffer
	queue := taskqueue.New()
	reg := resources.New()
	require.NoError(t, RegisterDefaults(reg.RegisterBindingBehavior))
	return &fixture{
		queue:     queue,
		resources: reg,
		logs:      &logs,
		host: &Host{
			Locator: observe.NewObserverLocator(queue),
			Signals: signal.NewRegistry(),
			Lookups: reg,
			Logger:  slog.New(slog.NewJSONHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug})),
		},
	}
}

func (f *fixture) bind(t *testing.T, source string, target any, prop string, mode Mode, ctx any) *Binding {
	t.Helper()
	b := New(f.host, expr.MustParse(source), target, prop, mode)
	require.NoError(t, b.Bind(expr.NewScope(ctx)))
	return b
}

func (f *fixture) flush(t *testing.T) {
	t.Helper()
	require.NoError(t, f.queue.FlushMicroTaskQueue())
}

func (f *fixture) subscribed(obj *observe.Object, prop string) bool {
	obs := f.host.Locator.GetObserver(obj, prop)
	setter, ok := obs.(*observe.SetterObserver)
	return ok && setter.HasSubscribers()
}

// steppingClock advances by step on every read.
func steppingClock(start time.Time, step time.Duration) func() time.Time {
	now := start
	return func() time.Time {
		t := now
		now = now.Add(step)
		return t
	}
}
