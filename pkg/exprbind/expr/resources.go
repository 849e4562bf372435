package expr

import "github.com/randalmurphal/exprbind/pkg/exprbind/observe"

func (e *ValueConverter) converter(lookups LookupFunctions) (Converter, error) {
	if lookups != nil {
		if c, ok := lookups.ValueConverter(e.Name); ok && c != nil {
			return c, nil
		}
	}
	return nil, evalError(e, ErrConverterNotFound, "No ValueConverter named %q was found!", e.Name)
}

// Evaluate implements Expression. Converters without ToView pass the
// value through.
func (e *ValueConverter) Evaluate(scope *Scope, lookups LookupFunctions, flags Flags) (any, error) {
	c, err := e.converter(lookups)
	if err != nil {
		return nil, err
	}
	value, err := e.Expression.Evaluate(scope, lookups, flags)
	if err != nil {
		return nil, err
	}
	to, ok := c.(ToViewConverter)
	if !ok {
		return value, nil
	}
	args, err := evalList(scope, lookups, e.Args)
	if err != nil {
		return nil, err
	}
	out, err := to.ToView(value, args...)
	if err != nil {
		return nil, evalError(e, err, "%s.toView failed: %v", e.Name, err)
	}
	return out, nil
}

// Assign implements Expression. The value runs through FromView before
// being assigned to the inner expression.
func (e *ValueConverter) Assign(scope *Scope, value any, lookups LookupFunctions) (any, error) {
	c, err := e.converter(lookups)
	if err != nil {
		return nil, err
	}
	if from, ok := c.(FromViewConverter); ok {
		args, err := evalList(scope, lookups, e.Args)
		if err != nil {
			return nil, err
		}
		value, err = from.FromView(value, args...)
		if err != nil {
			return nil, evalError(e, err, "%s.fromView failed: %v", e.Name, err)
		}
	}
	return e.Expression.Assign(scope, value, lookups)
}

// Connect implements Expression. Besides the input and arguments, the
// binding observes every signal the converter lists and, when the input is
// an observable collection, its mutations.
func (e *ValueConverter) Connect(binding Connector, scope *Scope) error {
	if err := e.Expression.Connect(binding, scope); err != nil {
		return err
	}
	if err := connectList(binding, scope, e.Args); err != nil {
		return err
	}
	lookups := binding.LookupFunctions()
	c, err := e.converter(lookups)
	if err != nil {
		return err
	}
	if src, ok := c.(SignalSource); ok {
		for _, name := range src.Signals() {
			binding.ObserveSignal(name)
		}
	}
	value, err := e.Expression.Evaluate(scope, lookups, 0)
	if err != nil {
		return err
	}
	switch value.(type) {
	case *observe.Array, *observe.Map, *observe.Set:
		binding.ObserveArray(value)
	}
	return nil
}

// Bind implements Bindable by binding nested resource expressions.
func (e *ValueConverter) Bind(binding Binder, scope *Scope, lookups LookupFunctions) error {
	if b, ok := e.Expression.(Bindable); ok {
		return b.Bind(binding, scope, lookups)
	}
	return nil
}

// Unbind implements Bindable.
func (e *ValueConverter) Unbind(binding Binder, scope *Scope) error {
	if b, ok := e.Expression.(Bindable); ok {
		return b.Unbind(binding, scope)
	}
	return nil
}

// Evaluate implements Expression. Behaviors do not change values.
func (e *BindingBehavior) Evaluate(scope *Scope, lookups LookupFunctions, flags Flags) (any, error) {
	return e.Expression.Evaluate(scope, lookups, flags)
}

// Assign implements Expression.
func (e *BindingBehavior) Assign(scope *Scope, value any, lookups LookupFunctions) (any, error) {
	return e.Expression.Assign(scope, value, lookups)
}

// Connect implements Expression.
func (e *BindingBehavior) Connect(binding Connector, scope *Scope) error {
	return e.Expression.Connect(binding, scope)
}

// Bind looks up the behavior, applies it with the evaluated arguments and
// records it on the binding. Inner resource expressions bind first and are
// unbound again when this behavior fails.
func (e *BindingBehavior) Bind(binding Binder, scope *Scope, lookups LookupFunctions) error {
	inner, _ := e.Expression.(Bindable)
	if inner != nil {
		if err := inner.Bind(binding, scope, lookups); err != nil {
			return err
		}
	}
	if err := e.apply(binding, scope, lookups); err != nil {
		if inner != nil {
			_ = inner.Unbind(binding, scope)
		}
		return err
	}
	return nil
}

func (e *BindingBehavior) apply(binding Binder, scope *Scope, lookups LookupFunctions) error {
	var behavior Behavior
	if lookups != nil {
		behavior, _ = lookups.BindingBehavior(e.Name)
	}
	if behavior == nil {
		return evalError(e, ErrBehaviorNotFound, "No BindingBehavior named %q was found!", e.Name)
	}
	if binding.Behavior(e.Name) != nil {
		return evalError(e, ErrBehaviorApplied,
			"A binding behavior named %q has already been applied to %q", e.Name, Unparse(e.Expression))
	}
	args, err := evalList(scope, lookups, e.Args)
	if err != nil {
		return err
	}
	if err := behavior.Bind(binding, scope, args...); err != nil {
		return err
	}
	binding.SetBehavior(e.Name, behavior)
	return nil
}

// Unbind reverses Bind, outermost behavior first.
func (e *BindingBehavior) Unbind(binding Binder, scope *Scope) error {
	if behavior := binding.Behavior(e.Name); behavior != nil {
		if err := behavior.Unbind(binding, scope); err != nil {
			return err
		}
		binding.SetBehavior(e.Name, nil)
	}
	if b, ok := e.Expression.(Bindable); ok {
		return b.Unbind(binding, scope)
	}
	return nil
}
