package exprbind

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/randalmurphal/exprbind/pkg/exprbind/binding"
	"github.com/randalmurphal/exprbind/pkg/exprbind/config"
	"github.com/randalmurphal/exprbind/pkg/exprbind/expr"
	"github.com/randalmurphal/exprbind/pkg/exprbind/observability"
	"github.com/randalmurphal/exprbind/pkg/exprbind/observe"
	"github.com/randalmurphal/exprbind/pkg/exprbind/resources"
	"github.com/randalmurphal/exprbind/pkg/exprbind/signal"
	"github.com/randalmurphal/exprbind/pkg/exprbind/taskqueue"
)

// Engine owns the state shared by every binding: the parse cache, the
// scheduler, the observer locator, the connect queue, the signal registry
// and the resource registry. Create one per host and drive it from a
// single goroutine, either by calling Flush and FlushFrame or with Run.
type Engine struct {
	settings     config.Settings
	logger       *slog.Logger
	metrics      observability.MetricsRecorder
	parser       *expr.Parser
	queue        *taskqueue.Queue
	locator      *observe.ObserverLocator
	connectQueue *binding.ConnectQueue
	signals      *signal.Registry
	resources    *resources.Registry
	host         *binding.Host
}

// New creates an engine with default settings adjusted by opts.
func New(opts ...Option) (*Engine, error) {
	cfg := defaultEngineConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if err := cfg.settings.Validate(); err != nil {
		return nil, err
	}

	logger := cfg.resolveLogger()
	metrics := cfg.resolveMetrics()
	spans := cfg.resolveSpans()
	s := cfg.settings

	queueOpts := []taskqueue.Option{
		taskqueue.WithLogger(logger),
		taskqueue.WithMetrics(metrics),
		taskqueue.WithSpanManager(spans),
	}
	connectOpts := []binding.QueueOption{
		binding.WithMinimumImmediate(s.MinimumImmediate),
		binding.WithFrameBudget(s.FrameBudget),
		binding.WithBudgetCheckInterval(s.BudgetCheckInterval),
		binding.WithQueueLogger(logger),
		binding.WithQueueMetrics(metrics),
		binding.WithQueueSpans(spans),
	}
	if cfg.clock != nil {
		queueOpts = append(queueOpts, taskqueue.WithClock(cfg.clock))
		connectOpts = append(connectOpts, binding.WithQueueClock(cfg.clock))
	}

	e := &Engine{
		settings:  s,
		logger:    logger,
		metrics:   metrics,
		queue:     taskqueue.New(queueOpts...),
		signals:   signal.NewRegistry(signal.WithLogger(logger), signal.WithMetrics(metrics)),
		resources: resources.New(),
	}
	e.parser = expr.NewParser(expr.WithParseHook(e.onParse))
	e.locator = observe.NewObserverLocator(e.queue,
		observe.WithDirtyCheckDelay(s.DirtyCheckDelay),
		observe.WithLogger(logger),
	)
	e.connectQueue = binding.NewConnectQueue(e.queue, connectOpts...)
	e.host = &binding.Host{
		Locator:              e.locator,
		ConnectQueue:         e.connectQueue,
		Signals:              e.signals,
		Lookups:              e.resources,
		Logger:               logger,
		SlotWarningThreshold: s.SlotWarningThreshold,
	}

	if !cfg.noDefault {
		if err := binding.RegisterDefaults(e.resources.RegisterBindingBehavior); err != nil {
			return nil, fmt.Errorf("register default behaviors: %w", err)
		}
	}
	return e, nil
}

// NewFromSettings creates an engine from loaded settings. Without an
// explicit WithLogger, it logs as text to stderr at settings.LogLevel.
func NewFromSettings(settings config.Settings, opts ...Option) (*Engine, error) {
	all := []Option{WithSettings(settings), WithLogger(newLevelLogger(settings.Level()))}
	return New(append(all, opts...)...)
}

func (e *Engine) onParse(input string, cached bool, err error) {
	e.metrics.RecordParse(context.Background(), cached, err)
	if err != nil {
		observability.LogParseError(e.logger, input, err)
	}
}

// Settings returns the settings the engine was built with.
func (e *Engine) Settings() config.Settings { return e.settings }

// Locator returns the observer locator.
func (e *Engine) Locator() *observe.ObserverLocator { return e.locator }

// Queue returns the scheduler.
func (e *Engine) Queue() *taskqueue.Queue { return e.queue }

// Signals returns the signal registry.
func (e *Engine) Signals() *signal.Registry { return e.signals }

// Resources returns the root resource registry.
func (e *Engine) Resources() *resources.Registry { return e.resources }

// ConnectQueue returns the connect queue.
func (e *Engine) ConnectQueue() *binding.ConnectQueue { return e.connectQueue }

// Host returns the binding host, for creating bindings directly with the
// binding package.
func (e *Engine) Host() *binding.Host { return e.host }

// Parse parses input, returning the cached tree for inputs seen before.
func (e *Engine) Parse(input string) (expr.Expression, error) {
	return e.parser.Parse(input)
}

// Evaluate parses input and evaluates it once against bindingContext.
func (e *Engine) Evaluate(input string, bindingContext any) (any, error) {
	ex, err := e.Parse(input)
	if err != nil {
		return nil, err
	}
	return ex.Evaluate(expr.NewScope(bindingContext), e.resources, 0)
}

// NewBinding parses source and creates an unbound binding of it to
// target[targetProperty].
func (e *Engine) NewBinding(source string, target any, targetProperty string, mode binding.Mode) (*binding.Binding, error) {
	if target == nil {
		return nil, ErrNilTarget
	}
	ex, err := e.Parse(source)
	if err != nil {
		return nil, err
	}
	return binding.New(e.host, ex, target, targetProperty, mode), nil
}

// NewAction parses source and creates an unbound action binding. target
// may be nil when the caller invokes CallSource itself.
func (e *Engine) NewAction(source string, target any, targetProperty string) (*binding.ActionBinding, error) {
	ex, err := e.Parse(source)
	if err != nil {
		return nil, err
	}
	return binding.NewAction(e.host, ex, target, targetProperty), nil
}

// Observe calls fn after each flush in which obj[propertyName] changed.
func (e *Engine) Observe(obj any, propertyName string, fn func(newValue, oldValue any)) (cancel func()) {
	return observe.Watch(e.locator.GetObserver(obj, propertyName), fn)
}

// Signal re-evaluates every binding whose converters or signal behavior
// list name.
func (e *Engine) Signal(name string) error {
	return e.signals.Signal(name)
}

// RegisterValueConverter adds a converter to the root registry.
func (e *Engine) RegisterValueConverter(name string, converter expr.Converter) error {
	return e.resources.RegisterValueConverter(name, converter)
}

// RegisterBindingBehavior adds a behavior to the root registry.
func (e *Engine) RegisterBindingBehavior(name string, behavior expr.Behavior) error {
	return e.resources.RegisterBindingBehavior(name, behavior)
}

// Flush drains the microtask queue, delivering pending change
// notifications.
func (e *Engine) Flush() error {
	return e.queue.FlushMicroTaskQueue()
}

// FlushFrame runs one frame: dirty checking, deferred connects, then a
// microtask flush.
func (e *Engine) FlushFrame() error {
	return e.queue.FlushFrames()
}

// Run drives the engine until ctx is done, flushing a frame every
// frameInterval.
func (e *Engine) Run(ctx context.Context, frameInterval time.Duration) error {
	return e.queue.Run(ctx, frameInterval)
}

// Post runs fn on the goroutine executing Run.
func (e *Engine) Post(fn func()) {
	e.queue.Post(fn)
}
