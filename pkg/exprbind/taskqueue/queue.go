// Package taskqueue is the host scheduler for the observation engine.
//
// Observers queue microtasks to coalesce change notifications; the queue
// runs them when FlushMicroTaskQueue is called, including tasks queued
// while flushing. Frame callbacks (dirty checking, the binding connect
// queue) run on FlushFrames. Run drives both from a single goroutine and
// Post marshals work from other goroutines onto it.
package taskqueue

import (
	"context"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/randalmurphal/exprbind/pkg/exprbind/observability"
	"github.com/randalmurphal/exprbind/pkg/exprbind/observe"
)

const (
	queueMicroTask = "microtask"
	queueFrame     = "frame"
)

// TaskFunc adapts a function to observe.Task.
type TaskFunc func(now time.Time)

// Flush implements observe.Task.
func (f TaskFunc) Flush(now time.Time) {
	f(now)
}

// Queue is a microtask and frame queue. It implements observe.TaskQueue and
// observe.FrameRequester. Queuing is safe from any goroutine; flushing is
// meant to happen on one.
type Queue struct {
	mu         sync.Mutex
	microTasks []observe.Task
	frames     []func(time.Time)
	flushing   bool
	posted     chan func()

	now     func() time.Time
	logger  *slog.Logger
	metrics observability.MetricsRecorder
	spans   observability.SpanManager
}

var (
	_ observe.TaskQueue      = (*Queue)(nil)
	_ observe.FrameRequester = (*Queue)(nil)
)

// Option configures a Queue.
type Option func(*Queue)

// WithClock sets the time source passed to tasks and frames.
// Default: time.Now
func WithClock(now func() time.Time) Option {
	return func(q *Queue) {
		if now != nil {
			q.now = now
		}
	}
}

// WithLogger sets the logger for flush and panic records.
// Default: slog.Default()
func WithLogger(logger *slog.Logger) Option {
	return func(q *Queue) {
		if logger != nil {
			q.logger = logger
		}
	}
}

// WithMetrics sets the metrics recorder.
// Default: observability.NoopMetrics{}
func WithMetrics(m observability.MetricsRecorder) Option {
	return func(q *Queue) {
		if m != nil {
			q.metrics = m
		}
	}
}

// WithSpanManager sets the span manager used around flushes.
// Default: observability.NoopSpanManager{}
func WithSpanManager(s observability.SpanManager) Option {
	return func(q *Queue) {
		if s != nil {
			q.spans = s
		}
	}
}

// WithPostBuffer sets how many posted functions may wait for Run before
// Post blocks.
// Default: 256
func WithPostBuffer(n int) Option {
	return func(q *Queue) {
		if n >= 0 {
			q.posted = make(chan func(), n)
		}
	}
}

// New creates an empty Queue.
func New(opts ...Option) *Queue {
	q := &Queue{
		posted:  make(chan func(), 256),
		now:     time.Now,
		logger:  slog.Default(),
		metrics: observability.NoopMetrics{},
		spans:   observability.NoopSpanManager{},
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// QueueMicroTask implements observe.TaskQueue.
func (q *Queue) QueueMicroTask(task observe.Task) {
	q.mu.Lock()
	q.microTasks = append(q.microTasks, task)
	q.mu.Unlock()
}

// RequestFrame implements observe.FrameRequester. The callback runs on the
// next FlushFrames.
func (q *Queue) RequestFrame(callback func(time.Time)) {
	q.mu.Lock()
	q.frames = append(q.frames, callback)
	q.mu.Unlock()
}

// Pending returns the number of queued microtasks and frame callbacks.
func (q *Queue) Pending() (microTasks, frames int) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.microTasks), len(q.frames)
}

// FlushMicroTaskQueue runs queued microtasks until none remain, including
// ones queued by the tasks themselves. A panicking task does not stop the
// flush; the first panic is returned as a *TaskPanicError. A nested call
// from inside a task returns immediately.
func (q *Queue) FlushMicroTaskQueue() error {
	q.mu.Lock()
	if q.flushing || len(q.microTasks) == 0 {
		q.mu.Unlock()
		return nil
	}
	q.flushing = true
	queued := len(q.microTasks)
	q.mu.Unlock()

	ctx, span := q.spans.StartFlushSpan(context.Background(), queued)
	done := observability.TimedOperation()
	start := time.Now()

	var first error
	ran := 0
	for {
		q.mu.Lock()
		batch := q.microTasks
		q.microTasks = nil
		if len(batch) == 0 {
			q.flushing = false
			q.mu.Unlock()
			break
		}
		q.mu.Unlock()

		now := q.now()
		for _, task := range batch {
			ran++
			if err := q.run(queueMicroTask, func() { task.Flush(now) }); err != nil {
				q.spans.AddSpanEvent(ctx, "task.panic", attribute.String("panic", err.Error()))
				if first == nil {
					first = err
				}
			}
		}
	}

	q.metrics.RecordFlush(ctx, ran, time.Since(start), first)
	q.spans.EndSpanWithError(span, first)
	observability.LogFlush(q.logger, ran, done())
	return first
}

// FlushFrames runs the frame callbacks requested so far, then drains the
// microtask queue. Callbacks requested during the frame run on the next
// one.
func (q *Queue) FlushFrames() error {
	q.mu.Lock()
	frames := q.frames
	q.frames = nil
	q.mu.Unlock()

	var first error
	now := q.now()
	for _, cb := range frames {
		if err := q.run(queueFrame, func() { cb(now) }); err != nil && first == nil {
			first = err
		}
	}
	if err := q.FlushMicroTaskQueue(); err != nil && first == nil {
		first = err
	}
	return first
}

// run calls fn, converting a panic into a *TaskPanicError.
func (q *Queue) run(queue string, fn func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			panicErr := &TaskPanicError{Queue: queue, Value: r, Stack: string(debug.Stack())}
			observability.LogTaskPanic(q.logger, queue, r, panicErr.Stack)
			err = panicErr
		}
	}()
	fn()
	return nil
}

// Post schedules fn to run on the goroutine executing Run, followed by a
// microtask flush. It blocks while the post buffer is full.
func (q *Queue) Post(fn func()) {
	q.posted <- fn
}

// Run drives the queue until ctx is done: posted functions run as they
// arrive, each followed by a microtask flush, and frames flush every
// frameInterval. Task panics are logged and do not stop the loop. Run
// returns ctx.Err().
func (q *Queue) Run(ctx context.Context, frameInterval time.Duration) error {
	if frameInterval <= 0 {
		frameInterval = 16 * time.Millisecond
	}
	ticker := time.NewTicker(frameInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case fn := <-q.posted:
			if err := q.run(queueMicroTask, fn); err != nil {
				continue
			}
			_ = q.FlushMicroTaskQueue()
		case <-ticker.C:
			_ = q.FlushFrames()
		}
	}
}
