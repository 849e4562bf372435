package binding

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/randalmurphal/exprbind/pkg/exprbind/expr"
	"github.com/randalmurphal/exprbind/pkg/exprbind/observability"
	"github.com/randalmurphal/exprbind/pkg/exprbind/observe"
)

// ErrNoLocator is returned when a binding is bound on a Host without a
// Locator.
var ErrNoLocator = errors.New("binding host has no observer locator")

// valueAccessor reads and writes one target property.
type valueAccessor interface {
	GetValue() any
	SetValue(value any) error
}

// propertyAccessor writes a target property without observing it.
type propertyAccessor struct {
	obj  any
	name string
}

func (a propertyAccessor) GetValue() any {
	return observe.GetProperty(a.obj, a.name)
}

func (a propertyAccessor) SetValue(value any) error {
	return observe.SetProperty(a.obj, a.name, value)
}

// Binding connects a source expression to a target property.
type Binding struct {
	Connectable

	id             string
	host           *Host
	expression     expr.Expression
	target         any
	targetProperty string
	mode           Mode
	originalMode   *Mode
	lookups        expr.LookupFunctions
	logger         *slog.Logger

	targetObserver valueAccessor
	source         *expr.Scope
	bound          bool
	behaviors      map[string]expr.Behavior
	signals        []string
}

var (
	_ expr.Binder      = (*Binding)(nil)
	_ observe.Callable = (*Binding)(nil)
	_ QueuedConnector  = (*Binding)(nil)
)

// New creates an unbound binding of expression to target[targetProperty].
func New(host *Host, expression expr.Expression, target any, targetProperty string, mode Mode) *Binding {
	b := &Binding{
		id:             uuid.New().String(),
		host:           host,
		expression:     expression,
		target:         target,
		targetProperty: targetProperty,
		mode:           mode,
		lookups:        host.lookups(),
	}
	b.logger = observability.EnrichLogger(host.logger(), b.id, expr.Unparse(expression))
	b.Connectable = newConnectable(host, b, b.id)
	b.Connectable.logger = b.logger
	return b
}

// ID returns the binding's unique identifier.
func (b *Binding) ID() string { return b.id }

// Mode returns the binding's current mode.
func (b *Binding) Mode() Mode { return b.mode }

// overrideMode switches the mode for the current bind. It must run before
// the target observer is chosen, i.e. from a binding behavior's Bind.
func (b *Binding) overrideMode(mode Mode) {
	if b.originalMode == nil {
		original := b.mode
		b.originalMode = &original
	}
	b.mode = mode
}

func (b *Binding) restoreMode() {
	if b.originalMode != nil {
		b.mode = *b.originalMode
		b.originalMode = nil
		b.targetObserver = nil
	}
}

// Expression returns the source expression.
func (b *Binding) Expression() expr.Expression { return b.expression }

// Target returns the target object and property.
func (b *Binding) Target() (any, string) { return b.target, b.targetProperty }

// Source returns the scope the binding is bound to, or nil.
func (b *Binding) Source() *expr.Scope { return b.source }

// IsBound reports whether Bind has been called without a later Unbind.
func (b *Binding) IsBound() bool { return b.bound }

// LookupFunctions implements expr.Connector.
func (b *Binding) LookupFunctions() expr.LookupFunctions { return b.lookups }

// Behavior implements expr.Binder.
func (b *Binding) Behavior(name string) expr.Behavior {
	return b.behaviors[name]
}

// SetBehavior implements expr.Binder. A nil behavior removes the entry.
func (b *Binding) SetBehavior(name string, behavior expr.Behavior) {
	if behavior == nil {
		delete(b.behaviors, name)
		return
	}
	if b.behaviors == nil {
		b.behaviors = make(map[string]expr.Behavior)
	}
	b.behaviors[name] = behavior
}

// AddSignal makes every connect pass also observe the named signal.
func (b *Binding) AddSignal(names ...string) {
	b.signals = append(b.signals, names...)
}

// ClearSignals undoes AddSignal.
func (b *Binding) ClearSignals() {
	b.signals = nil
}

// Bind binds to source. Binding to the scope already bound is a no-op;
// binding to another scope unbinds first.
func (b *Binding) Bind(source *expr.Scope) error {
	if b.bound {
		if b.source == source {
			return nil
		}
		if err := b.Unbind(); err != nil {
			return err
		}
	}
	if b.host.Locator == nil {
		return ErrNoLocator
	}

	b.bound = true
	b.source = source

	if bindable, ok := b.expression.(expr.Bindable); ok {
		if err := bindable.Bind(b, source, b.lookups); err != nil {
			b.bound = false
			b.source = nil
			return err
		}
	}
	if err := b.attach(source); err != nil {
		b.abortBind()
		return err
	}
	return nil
}

// attach pushes the initial value and wires observers for the mode.
func (b *Binding) attach(source *expr.Scope) error {
	if b.targetObserver == nil {
		if b.mode == TwoWay || b.mode == FromView {
			b.targetObserver = b.host.Locator.GetObserver(b.target, b.targetProperty)
		} else {
			b.targetObserver = propertyAccessor{obj: b.target, name: b.targetProperty}
		}
	}

	if b.mode != FromView {
		value, err := b.expression.Evaluate(source, b.lookups, 0)
		if err != nil {
			return err
		}
		if err := b.UpdateTarget(value); err != nil {
			return err
		}
	}

	switch b.mode {
	case ToView:
		if q := b.host.ConnectQueue; q != nil {
			return q.Enqueue(b)
		}
		return b.Connect(false)
	case TwoWay:
		if err := b.connectSource(); err != nil {
			return err
		}
		b.subscribeTarget()
	case FromView:
		b.subscribeTarget()
	}
	return nil
}

// abortBind rolls back a Bind that failed after the expression was bound,
// so a later Bind to the same scope starts over.
func (b *Binding) abortBind() {
	if bindable, ok := b.expression.(expr.Bindable); ok {
		if err := bindable.Unbind(b, b.source); err != nil {
			b.logger.Debug("unbind after failed bind", "error", err)
		}
	}
	b.bound = false
	b.source = nil
	b.targetObserver = nil
	b.Unobserve(true)
}

func (b *Binding) subscribeTarget() {
	if sub, ok := b.targetObserver.(observe.Subscribable); ok {
		sub.Subscribe(TargetContext, b)
	}
}

// Unbind releases every subscription. It is a no-op when not bound.
func (b *Binding) Unbind() error {
	if !b.bound {
		return nil
	}
	b.bound = false
	target := b.targetObserver

	var err error
	if bindable, ok := b.expression.(expr.Bindable); ok {
		err = bindable.Unbind(b, b.source)
	}
	b.source = nil

	if sub, ok := target.(observe.Subscribable); ok {
		sub.Unsubscribe(TargetContext, b)
	}
	b.Unobserve(true)
	return err
}

// Connect subscribes to everything the source expression currently reads,
// after pushing a fresh value to the target when evaluate is true.
func (b *Binding) Connect(evaluate bool) error {
	if !b.bound {
		return nil
	}
	if evaluate {
		value, err := b.expression.Evaluate(b.source, b.lookups, 0)
		if err != nil {
			return err
		}
		if err := b.UpdateTarget(value); err != nil {
			return err
		}
	}
	return b.connectSource()
}

// connectSource runs one versioned connect pass and drops observers the
// pass no longer touched.
func (b *Binding) connectSource() error {
	b.nextVersion()
	if err := b.expression.Connect(b, b.source); err != nil {
		return err
	}
	for _, name := range b.signals {
		b.ObserveSignal(name)
	}
	b.Unobserve(false)
	return nil
}

// UpdateTarget writes value to the target property.
func (b *Binding) UpdateTarget(value any) error {
	if b.targetObserver == nil {
		return observe.SetProperty(b.target, b.targetProperty, value)
	}
	return b.targetObserver.SetValue(value)
}

// UpdateSource assigns value through the source expression.
func (b *Binding) UpdateSource(value any) error {
	_, err := b.expression.Assign(b.source, value, b.lookups)
	return err
}

// Call implements observe.Callable. Source notifications re-evaluate and
// reconnect; target notifications flow back into the source.
func (b *Binding) Call(context string, newValue, _ any) {
	if !b.bound {
		return
	}
	switch context {
	case SourceContext:
		if err := b.refresh(); err != nil {
			observability.LogBindingError(b.logger, b.id, "updateTarget", err)
		}
	case TargetContext:
		current, err := b.expression.Evaluate(b.source, b.lookups, 0)
		if err == nil && !observe.StrictEquals(newValue, current) {
			err = b.UpdateSource(newValue)
		}
		if err != nil {
			observability.LogBindingError(b.logger, b.id, "updateSource", err)
		}
	default:
		observability.LogBindingError(b.logger, b.id, "call", fmt.Errorf("unexpected call context %q", context))
	}
}

func (b *Binding) refresh() error {
	oldValue := b.targetObserver.GetValue()
	newValue, err := b.expression.Evaluate(b.source, b.lookups, 0)
	if err != nil {
		return err
	}
	if !observe.StrictEquals(newValue, oldValue) {
		if err := b.UpdateTarget(newValue); err != nil {
			return err
		}
	}
	if b.mode != OneTime {
		return b.connectSource()
	}
	return nil
}
