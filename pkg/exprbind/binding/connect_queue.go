package binding

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/randalmurphal/exprbind/pkg/exprbind/observability"
	"github.com/randalmurphal/exprbind/pkg/exprbind/observe"
)

// Connect queue defaults.
const (
	DefaultMinimumImmediate    = 100
	DefaultFrameBudget         = 15 * time.Millisecond
	DefaultBudgetCheckInterval = 100
)

// QueuedConnector is a binding the connect queue can defer.
type QueuedConnector interface {
	ID() string
	Connect(evaluate bool) error
}

// ConnectQueue spreads the initial connect of many ToView bindings over
// several frames. The first MinimumImmediate bindings queued since the
// queue last emptied connect on the spot without evaluating; the rest
// connect (and evaluate) on later frames, FIFO, until a frame's budget is
// spent.
type ConnectQueue struct {
	mu             sync.Mutex
	frames         observe.FrameRequester
	pending        []QueuedConnector
	queued         map[string]bool
	immediate      int
	flushRequested bool

	minimumImmediate int
	frameBudget      time.Duration
	checkInterval    int
	now              func() time.Time

	logger  *slog.Logger
	metrics observability.MetricsRecorder
	spans   observability.SpanManager
}

// QueueOption configures a ConnectQueue.
type QueueOption func(*ConnectQueue)

// WithMinimumImmediate sets how many bindings connect synchronously before
// deferring starts.
func WithMinimumImmediate(n int) QueueOption {
	return func(q *ConnectQueue) {
		if n >= 0 {
			q.minimumImmediate = n
		}
	}
}

// WithFrameBudget sets the time a frame may spend connecting.
func WithFrameBudget(d time.Duration) QueueOption {
	return func(q *ConnectQueue) {
		if d > 0 {
			q.frameBudget = d
		}
	}
}

// WithBudgetCheckInterval sets how many bindings connect between budget
// checks.
func WithBudgetCheckInterval(n int) QueueOption {
	return func(q *ConnectQueue) {
		if n > 0 {
			q.checkInterval = n
		}
	}
}

// WithQueueClock sets the clock compared against the frame start.
func WithQueueClock(now func() time.Time) QueueOption {
	return func(q *ConnectQueue) {
		if now != nil {
			q.now = now
		}
	}
}

// WithQueueLogger sets the logger for deferred connects and drained frames.
func WithQueueLogger(logger *slog.Logger) QueueOption {
	return func(q *ConnectQueue) {
		if logger != nil {
			q.logger = logger
		}
	}
}

// WithQueueMetrics sets the metrics recorder.
func WithQueueMetrics(m observability.MetricsRecorder) QueueOption {
	return func(q *ConnectQueue) {
		if m != nil {
			q.metrics = m
		}
	}
}

// WithQueueSpans sets the span manager wrapped around each frame.
func WithQueueSpans(s observability.SpanManager) QueueOption {
	return func(q *ConnectQueue) {
		if s != nil {
			q.spans = s
		}
	}
}

// NewConnectQueue creates a queue that drains on frames requested from
// frames.
func NewConnectQueue(frames observe.FrameRequester, opts ...QueueOption) *ConnectQueue {
	q := &ConnectQueue{
		frames:           frames,
		queued:           make(map[string]bool),
		minimumImmediate: DefaultMinimumImmediate,
		frameBudget:      DefaultFrameBudget,
		checkInterval:    DefaultBudgetCheckInterval,
		now:              time.Now,
		logger:           slog.Default(),
		metrics:          observability.NoopMetrics{},
		spans:            observability.NoopSpanManager{},
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// Enqueue connects b now if the immediate allowance is not used up, and
// otherwise defers it to a frame. A binding already waiting is not queued
// twice.
func (q *ConnectQueue) Enqueue(b QueuedConnector) error {
	q.mu.Lock()
	connectNow := q.immediate < q.minimumImmediate
	if connectNow {
		q.immediate++
	} else if id := b.ID(); !q.queued[id] {
		q.queued[id] = true
		q.pending = append(q.pending, b)
		observability.LogConnectDeferred(q.logger, id, len(q.pending))
		q.metrics.RecordConnectDeferred(context.Background())
	}
	request := !q.flushRequested
	q.flushRequested = true
	q.mu.Unlock()

	if request {
		q.frames.RequestFrame(q.flush)
	}
	if connectNow {
		return b.Connect(false)
	}
	return nil
}

// Pending returns the number of deferred bindings.
func (q *ConnectQueue) Pending() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// flush connects deferred bindings queued before the frame began, checking
// the budget every checkInterval bindings.
func (q *ConnectQueue) flush(frameStart time.Time) {
	q.mu.Lock()
	batch := q.pending
	q.mu.Unlock()

	ctx, span := q.spans.StartFrameSpan(context.Background(), len(batch))
	done := observability.TimedOperation()
	start := time.Now()

	i := 0
	for i < len(batch) {
		b := batch[i]
		q.mu.Lock()
		delete(q.queued, b.ID())
		q.mu.Unlock()

		if err := b.Connect(true); err != nil {
			observability.LogBindingError(q.logger, b.ID(), "connect", err)
			q.spans.AddSpanEvent(ctx, "connect.error")
		}
		i++
		if i%q.checkInterval == 0 && q.now().Sub(frameStart) > q.frameBudget {
			break
		}
	}

	q.mu.Lock()
	q.pending = q.pending[i:]
	remaining := len(q.pending)
	if remaining > 0 {
		q.mu.Unlock()
		q.frames.RequestFrame(q.flush)
	} else {
		q.pending = nil
		q.flushRequested = false
		q.immediate = 0
		q.mu.Unlock()
	}

	q.metrics.RecordFrame(ctx, i, remaining, time.Since(start))
	q.spans.EndSpanWithError(span, nil)
	observability.LogFrameDrained(q.logger, i, remaining, done())
}
