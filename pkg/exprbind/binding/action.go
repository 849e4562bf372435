package binding

import (
	"log/slog"

	"github.com/google/uuid"

	"github.com/randalmurphal/exprbind/pkg/exprbind/expr"
	"github.com/randalmurphal/exprbind/pkg/exprbind/observability"
	"github.com/randalmurphal/exprbind/pkg/exprbind/observe"
)

// Handler is what an ActionBinding installs on its target.
type Handler func(event any) (any, error)

// ActionBinding evaluates its expression on demand, typically as an event
// handler. Missing functions are errors rather than undefined. While the
// expression runs, $event holds the event, and the fields of a
// map[string]any event are visible by name.
type ActionBinding struct {
	id             string
	expression     expr.Expression
	target         any
	targetProperty string
	lookups        expr.LookupFunctions
	logger         *slog.Logger

	source    *expr.Scope
	bound     bool
	behaviors map[string]expr.Behavior
}

var _ expr.Binder = (*ActionBinding)(nil)

// NewAction creates an unbound action binding. When target is non-nil,
// Bind installs a Handler at target[targetProperty].
func NewAction(host *Host, expression expr.Expression, target any, targetProperty string) *ActionBinding {
	id := uuid.New().String()
	return &ActionBinding{
		id:             id,
		expression:     expression,
		target:         target,
		targetProperty: targetProperty,
		lookups:        host.lookups(),
		logger:         observability.EnrichLogger(host.logger(), id, expr.Unparse(expression)),
	}
}

// ID returns the binding's unique identifier.
func (a *ActionBinding) ID() string { return a.id }

// IsBound reports whether the binding is bound.
func (a *ActionBinding) IsBound() bool { return a.bound }

// Bind binds to source and installs the handler on the target.
func (a *ActionBinding) Bind(source *expr.Scope) error {
	if a.bound {
		if a.source == source {
			return nil
		}
		if err := a.Unbind(); err != nil {
			return err
		}
	}
	a.bound = true
	a.source = source

	if bindable, ok := a.expression.(expr.Bindable); ok {
		if err := bindable.Bind(a, source, a.lookups); err != nil {
			a.bound = false
			a.source = nil
			return err
		}
	}
	if a.target != nil {
		return observe.SetProperty(a.target, a.targetProperty, Handler(a.CallSource))
	}
	return nil
}

// Unbind removes the handler from the target.
func (a *ActionBinding) Unbind() error {
	if !a.bound {
		return nil
	}
	a.bound = false

	var err error
	if bindable, ok := a.expression.(expr.Bindable); ok {
		err = bindable.Unbind(a, a.source)
	}
	a.source = nil

	if a.target != nil {
		if clearErr := observe.SetProperty(a.target, a.targetProperty, nil); clearErr != nil && err == nil {
			err = clearErr
		}
	}
	return err
}

// CallSource evaluates the expression with event exposed as $event.
func (a *ActionBinding) CallSource(event any) (any, error) {
	if !a.bound {
		return nil, nil
	}
	oc := a.source.OverrideContext
	fields, _ := event.(map[string]any)
	for k, v := range fields {
		oc.Set(k, v)
	}
	oc.Set("$event", event)
	defer func() {
		oc.Delete("$event")
		for k := range fields {
			oc.Delete(k)
		}
	}()

	result, err := a.expression.Evaluate(a.source, a.lookups, expr.MustEvaluate)
	if err != nil {
		observability.LogBindingError(a.logger, a.id, "callSource", err)
	}
	return result, err
}

// ObserveProperty implements expr.Connector. Actions never observe.
func (a *ActionBinding) ObserveProperty(any, string) {}

// ObserveArray implements expr.Connector.
func (a *ActionBinding) ObserveArray(any) {}

// ObserveSignal implements expr.Connector.
func (a *ActionBinding) ObserveSignal(string) {}

// LookupFunctions implements expr.Connector.
func (a *ActionBinding) LookupFunctions() expr.LookupFunctions { return a.lookups }

// Behavior implements expr.Binder.
func (a *ActionBinding) Behavior(name string) expr.Behavior { return a.behaviors[name] }

// SetBehavior implements expr.Binder.
func (a *ActionBinding) SetBehavior(name string, behavior expr.Behavior) {
	if behavior == nil {
		delete(a.behaviors, name)
		return
	}
	if a.behaviors == nil {
		a.behaviors = make(map[string]expr.Behavior)
	}
	a.behaviors[name] = behavior
}
