package taskqueue

import (
	"bytes"
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock() func() time.Time {
	t := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	return func() time.Time { return t }
}

func TestQueue_FlushRunsInOrder(t *testing.T) {
	q := New()
	var order []int
	for i := 1; i <= 3; i++ {
		i := i
		q.QueueMicroTask(TaskFunc(func(time.Time) { order = append(order, i) }))
	}

	micro, _ := q.Pending()
	assert.Equal(t, 3, micro)

	require.NoError(t, q.FlushMicroTaskQueue())
	assert.Equal(t, []int{1, 2, 3}, order)

	micro, _ = q.Pending()
	assert.Zero(t, micro)
}

func TestQueue_FlushDrainsTasksQueuedDuringFlush(t *testing.T) {
	q := New()
	var order []string
	q.QueueMicroTask(TaskFunc(func(time.Time) {
		order = append(order, "outer")
		q.QueueMicroTask(TaskFunc(func(time.Time) { order = append(order, "inner") }))
	}))

	require.NoError(t, q.FlushMicroTaskQueue())
	assert.Equal(t, []string{"outer", "inner"}, order)
}

func TestQueue_NestedFlushIsNoop(t *testing.T) {
	q := New()
	var order []string
	q.QueueMicroTask(TaskFunc(func(time.Time) {
		q.QueueMicroTask(TaskFunc(func(time.Time) { order = append(order, "second") }))
		require.NoError(t, q.FlushMicroTaskQueue())
		order = append(order, "first")
	}))

	require.NoError(t, q.FlushMicroTaskQueue())
	assert.Equal(t, []string{"first", "second"}, order)
}

func TestQueue_FlushPassesClock(t *testing.T) {
	clock := fixedClock()
	q := New(WithClock(clock))
	var got time.Time
	q.QueueMicroTask(TaskFunc(func(now time.Time) { got = now }))

	require.NoError(t, q.FlushMicroTaskQueue())
	assert.Equal(t, clock(), got)
}

func TestQueue_PanicRecovered(t *testing.T) {
	var buf bytes.Buffer
	q := New(WithLogger(slog.New(slog.NewJSONHandler(&buf, nil))))
	ran := false
	q.QueueMicroTask(TaskFunc(func(time.Time) { panic("boom") }))
	q.QueueMicroTask(TaskFunc(func(time.Time) { panic("second") }))
	q.QueueMicroTask(TaskFunc(func(time.Time) { ran = true }))

	err := q.FlushMicroTaskQueue()
	require.Error(t, err)

	var panicErr *TaskPanicError
	require.ErrorAs(t, err, &panicErr)
	assert.Equal(t, "microtask", panicErr.Queue)
	assert.Equal(t, "boom", panicErr.Value)
	assert.NotEmpty(t, panicErr.Stack)
	assert.Equal(t, "microtask task panicked: boom", err.Error())

	assert.True(t, ran, "tasks after a panic still run")
	assert.Contains(t, buf.String(), "task panicked")
}

func TestQueue_FlushEmptyIsNoop(t *testing.T) {
	q := New()
	assert.NoError(t, q.FlushMicroTaskQueue())
}

func TestQueue_FlushFrames(t *testing.T) {
	clock := fixedClock()
	q := New(WithClock(clock))
	var log []string

	q.RequestFrame(func(now time.Time) {
		assert.Equal(t, clock(), now)
		log = append(log, "frame")
		q.QueueMicroTask(TaskFunc(func(time.Time) { log = append(log, "micro") }))
		q.RequestFrame(func(time.Time) { log = append(log, "next frame") })
	})

	_, frames := q.Pending()
	assert.Equal(t, 1, frames)

	require.NoError(t, q.FlushFrames())
	assert.Equal(t, []string{"frame", "micro"}, log)

	_, frames = q.Pending()
	assert.Equal(t, 1, frames, "callback requested during a frame waits for the next one")

	require.NoError(t, q.FlushFrames())
	assert.Equal(t, []string{"frame", "micro", "next frame"}, log)
}

func TestQueue_FramePanicRecovered(t *testing.T) {
	q := New()
	ran := false
	q.RequestFrame(func(time.Time) { panic("frame boom") })
	q.RequestFrame(func(time.Time) { ran = true })

	err := q.FlushFrames()

	var panicErr *TaskPanicError
	require.ErrorAs(t, err, &panicErr)
	assert.Equal(t, "frame", panicErr.Queue)
	assert.True(t, ran)
}

func TestQueue_RecordsFlushMetrics(t *testing.T) {
	rec := &countingMetrics{}

	q := New(WithMetrics(rec))
	q.QueueMicroTask(TaskFunc(func(time.Time) {}))
	q.QueueMicroTask(TaskFunc(func(time.Time) {}))
	require.NoError(t, q.FlushMicroTaskQueue())

	assert.Equal(t, 1, rec.flushes)
	assert.Equal(t, 2, rec.tasks)
}

func TestQueue_RunProcessesPostedWork(t *testing.T) {
	q := New()
	ctx, cancel := context.WithCancel(context.Background())

	var mu sync.Mutex
	var log []string
	done := make(chan struct{})

	q.Post(func() {
		q.QueueMicroTask(TaskFunc(func(time.Time) {
			mu.Lock()
			log = append(log, "micro")
			mu.Unlock()
			close(done)
		}))
		mu.Lock()
		log = append(log, "posted")
		mu.Unlock()
	})

	errCh := make(chan error, 1)
	go func() { errCh <- q.Run(ctx, time.Millisecond) }()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("posted work never ran")
	}
	cancel()
	assert.ErrorIs(t, <-errCh, context.Canceled)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"posted", "micro"}, log)
}

func TestQueue_RunFlushesFrames(t *testing.T) {
	q := New()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fired := make(chan struct{})
	q.RequestFrame(func(time.Time) { close(fired) })

	go func() { _ = q.Run(ctx, time.Millisecond) }()

	select {
	case <-fired:
	case <-time.After(2 * time.Second):
		t.Fatal("frame never flushed")
	}
}

type countingMetrics struct {
	flushes int
	tasks   int
}

func (c *countingMetrics) RecordFlush(_ context.Context, tasks int, _ time.Duration, _ error) {
	c.flushes++
	c.tasks += tasks
}
func (c *countingMetrics) RecordFrame(context.Context, int, int, time.Duration) {}
func (c *countingMetrics) RecordConnectDeferred(context.Context)                 {}
func (c *countingMetrics) RecordSignal(context.Context, string)                  {}
func (c *countingMetrics) RecordParse(context.Context, bool, error)              {}
