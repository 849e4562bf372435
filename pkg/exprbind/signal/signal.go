// Package signal broadcasts named re-evaluation requests to bindings.
//
// Each signal name owns a counter cell on a shared observable object.
// Bindings whose value converters list a signal observe that cell like any
// other property, so sending the signal (incrementing the counter) makes
// every one of them re-evaluate on the next microtask flush. There is no
// registry of bindings.
//
// A Registry is constructed once by the host and passed to every binding
// that needs it.
package signal

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"sync"

	"github.com/randalmurphal/exprbind/pkg/exprbind/observability"
	"github.com/randalmurphal/exprbind/pkg/exprbind/observe"
)

// ErrEmptyName is returned when a signal is sent without a name.
var ErrEmptyName = errors.New("signal name is required")

// Registry holds the counter cells of every signal seen so far.
type Registry struct {
	mu      sync.Mutex
	cells   *observe.Object
	logger  *slog.Logger
	metrics observability.MetricsRecorder
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the logger for sent signals.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithMetrics sets the metrics recorder for sent signals.
func WithMetrics(m observability.MetricsRecorder) Option {
	return func(r *Registry) {
		if m != nil {
			r.metrics = m
		}
	}
}

// NewRegistry creates an empty registry.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		cells:   observe.NewObject(),
		logger:  slog.Default(),
		metrics: observability.NoopMetrics{},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Ensure returns the observable cell for name, creating it at zero. The
// caller observes property name on the returned object.
func (r *Registry) Ensure(name string) (*observe.Object, string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.cells.Has(name) {
		r.cells.Set(name, 0)
	}
	return r.cells, name
}

// Signal increments the counter for name, notifying every observer of its
// cell. Signals nobody observes yet are created and counted anyway.
func (r *Registry) Signal(name string) error {
	if name == "" {
		return ErrEmptyName
	}

	r.mu.Lock()
	count := 1
	if n, ok := r.cells.Get(name).(int); ok {
		count = n + 1
	}
	r.cells.Set(name, count)
	r.mu.Unlock()

	r.metrics.RecordSignal(context.Background(), name)
	observability.LogSignal(r.logger, name, count)
	return nil
}

// Count returns how many times name has been signalled.
func (r *Registry) Count(name string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, _ := r.cells.Get(name).(int)
	return n
}

// Names returns every known signal name, sorted.
func (r *Registry) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := r.cells.Keys()
	sort.Strings(names)
	return names
}
