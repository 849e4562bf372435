package binding

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/exprbind/pkg/exprbind/taskqueue"
)

type fakeConnector struct {
	id    string
	calls []bool
	err   error
}

func (f *fakeConnector) ID() string { return f.id }

func (f *fakeConnector) Connect(evaluate bool) error {
	f.calls = append(f.calls, evaluate)
	return f.err
}

func connectors(ids ...string) []*fakeConnector {
	out := make([]*fakeConnector, len(ids))
	for i, id := range ids {
		out[i] = &fakeConnector{id: id}
	}
	return out
}

func TestConnectQueue_ImmediateThenDeferred(t *testing.T) {
	clock := steppingClock(time.Unix(0, 0), 10*time.Millisecond)
	frames := taskqueue.New(taskqueue.WithClock(clock))
	q := NewConnectQueue(frames,
		WithMinimumImmediate(1),
		WithBudgetCheckInterval(1),
		WithFrameBudget(15*time.Millisecond),
		WithQueueClock(clock),
	)
	bs := connectors("b1", "b2", "b3", "b4", "b5")

	for _, b := range bs {
		require.NoError(t, q.Enqueue(b))
	}
	require.NoError(t, q.Enqueue(bs[1]))

	assert.Equal(t, []bool{false}, bs[0].calls, "first binding connects on the spot without evaluating")
	assert.Equal(t, 4, q.Pending(), "re-queued binding is deduplicated")
	_, requested := frames.Pending()
	assert.Equal(t, 1, requested)

	require.NoError(t, frames.FlushFrames())
	assert.Equal(t, []bool{true}, bs[1].calls)
	assert.Equal(t, []bool{true}, bs[2].calls)
	assert.Empty(t, bs[3].calls, "budget exhausted after two bindings")
	assert.Equal(t, 2, q.Pending())
	_, requested = frames.Pending()
	assert.Equal(t, 1, requested, "queue reschedules itself")

	require.NoError(t, frames.FlushFrames())
	assert.Equal(t, []bool{true}, bs[3].calls)
	assert.Equal(t, []bool{true}, bs[4].calls)
	assert.Zero(t, q.Pending())
	_, requested = frames.Pending()
	assert.Zero(t, requested)

	late := &fakeConnector{id: "late"}
	require.NoError(t, q.Enqueue(late))
	assert.Equal(t, []bool{false}, late.calls, "immediate allowance resets once drained")
}

func TestConnectQueue_RequeueAfterConnect(t *testing.T) {
	frames := taskqueue.New()
	q := NewConnectQueue(frames, WithMinimumImmediate(0))
	b := &fakeConnector{id: "b"}

	require.NoError(t, q.Enqueue(b))
	require.NoError(t, frames.FlushFrames())
	require.NoError(t, q.Enqueue(b))
	require.NoError(t, frames.FlushFrames())

	assert.Equal(t, []bool{true, true}, b.calls)
}

func TestConnectQueue_ImmediateErrorReturned(t *testing.T) {
	frames := taskqueue.New()
	q := NewConnectQueue(frames)
	boom := errors.New("boom")

	err := q.Enqueue(&fakeConnector{id: "b", err: boom})
	assert.ErrorIs(t, err, boom)
}

func TestConnectQueue_DeferredErrorLogged(t *testing.T) {
	f := newFixture(t)
	q := NewConnectQueue(f.queue, WithMinimumImmediate(0), WithQueueLogger(f.host.Logger))
	b := &fakeConnector{id: "broken", err: errors.New("boom")}
	ok := &fakeConnector{id: "ok"}

	require.NoError(t, q.Enqueue(b))
	require.NoError(t, q.Enqueue(ok))
	require.NoError(t, f.queue.FlushFrames())

	assert.Len(t, ok.calls, 1, "later bindings still connect")
	assert.Contains(t, f.logs.String(), `"binding_id":"broken"`)
	assert.Contains(t, f.logs.String(), "binding connect deferred")
	assert.Contains(t, f.logs.String(), "connect frame drained")
}
