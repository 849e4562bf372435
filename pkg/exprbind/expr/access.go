package expr

import (
	"math"

	"github.com/randalmurphal/exprbind/pkg/exprbind/observe"
)

// Evaluate implements Expression.
func (e *AccessThis) Evaluate(scope *Scope, _ LookupFunctions, _ Flags) (any, error) {
	if scope == nil {
		return nil, nil
	}
	oc := scope.OverrideContext
	i := e.Ancestor
	for i > 0 && oc != nil {
		i--
		oc = oc.Parent
	}
	if i > 0 || oc == nil {
		return nil, nil
	}
	return oc.BindingContext, nil
}

// Assign implements Expression.
func (e *AccessThis) Assign(*Scope, any, LookupFunctions) (any, error) {
	return nil, notAssignable(e)
}

// Connect implements Expression.
func (e *AccessThis) Connect(Connector, *Scope) error {
	return nil
}

// Evaluate implements Expression.
func (e *AccessScope) Evaluate(scope *Scope, _ LookupFunctions, _ Flags) (any, error) {
	return observe.GetProperty(contextFor(e.Name, scope, e.Ancestor), e.Name), nil
}

// Assign implements Expression. Assigning past the root scope is a no-op.
func (e *AccessScope) Assign(scope *Scope, value any, _ LookupFunctions) (any, error) {
	ctx := contextFor(e.Name, scope, e.Ancestor)
	if ctx == nil {
		return nil, nil
	}
	if err := observe.SetProperty(ctx, e.Name, value); err != nil {
		return nil, evalError(e, err, "cannot assign %s", e.Name)
	}
	return value, nil
}

// Connect implements Expression.
func (e *AccessScope) Connect(binding Connector, scope *Scope) error {
	binding.ObserveProperty(contextFor(e.Name, scope, e.Ancestor), e.Name)
	return nil
}

// Evaluate implements Expression. A nullish object yields itself.
func (e *AccessMember) Evaluate(scope *Scope, lookups LookupFunctions, _ Flags) (any, error) {
	instance, err := e.Object.Evaluate(scope, lookups, 0)
	if err != nil {
		return nil, err
	}
	if IsNullish(instance) {
		return instance, nil
	}
	return observe.GetProperty(instance, e.Name), nil
}

// Assign implements Expression. A nullish or primitive object is replaced
// with a new Object first.
func (e *AccessMember) Assign(scope *Scope, value any, lookups LookupFunctions) (any, error) {
	instance, err := e.Object.Evaluate(scope, lookups, 0)
	if err != nil {
		return nil, err
	}
	if !observe.IsObject(instance) {
		obj := observe.NewObject()
		if _, err := e.Object.Assign(scope, obj, lookups); err != nil {
			return nil, err
		}
		instance = obj
	}
	if err := observe.SetProperty(instance, e.Name, value); err != nil {
		return nil, evalError(e, err, "cannot assign %s", e.Name)
	}
	return value, nil
}

// Connect implements Expression.
func (e *AccessMember) Connect(binding Connector, scope *Scope) error {
	if err := e.Object.Connect(binding, scope); err != nil {
		return err
	}
	obj, err := e.Object.Evaluate(scope, binding.LookupFunctions(), 0)
	if err != nil {
		return err
	}
	if IsTruthy(obj) {
		binding.ObserveProperty(obj, e.Name)
	}
	return nil
}

// Evaluate implements Expression.
func (e *AccessKeyed) Evaluate(scope *Scope, lookups LookupFunctions, _ Flags) (any, error) {
	instance, err := e.Object.Evaluate(scope, lookups, 0)
	if err != nil {
		return nil, err
	}
	key, err := e.Key.Evaluate(scope, lookups, 0)
	if err != nil {
		return nil, err
	}
	return getKeyed(instance, key), nil
}

// Assign implements Expression.
func (e *AccessKeyed) Assign(scope *Scope, value any, lookups LookupFunctions) (any, error) {
	instance, err := e.Object.Evaluate(scope, lookups, 0)
	if err != nil {
		return nil, err
	}
	key, err := e.Key.Evaluate(scope, lookups, 0)
	if err != nil {
		return nil, err
	}
	if err := setKeyed(instance, key, value); err != nil {
		return nil, evalError(e, err, "cannot assign %s", ToString(key))
	}
	return value, nil
}

// Connect implements Expression. Numeric keys into arrays are not observed;
// keys into maps observe the whole map.
func (e *AccessKeyed) Connect(binding Connector, scope *Scope) error {
	if err := e.Object.Connect(binding, scope); err != nil {
		return err
	}
	obj, err := e.Object.Evaluate(scope, binding.LookupFunctions(), 0)
	if err != nil {
		return err
	}
	if !observe.IsObject(obj) {
		return nil
	}
	if err := e.Key.Connect(binding, scope); err != nil {
		return err
	}
	key, err := e.Key.Evaluate(scope, binding.LookupFunctions(), 0)
	if err != nil {
		return err
	}
	switch {
	case IsNullish(key):
	case isArrayLike(obj) && observe.IsNumber(key):
	case isMap(obj):
		binding.ObserveArray(obj)
	default:
		binding.ObserveProperty(obj, ToString(key))
	}
	return nil
}

func isArrayLike(v any) bool {
	switch v.(type) {
	case *observe.Array, []any:
		return true
	}
	return false
}

func isMap(v any) bool {
	_, ok := v.(*observe.Map)
	return ok
}

// arrayIndex truncates a numeric or numeric-string key to an index.
func arrayIndex(key any) (int, bool) {
	f := ToNumber(key)
	if math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return 0, false
	}
	return int(f), true
}

func getKeyed(obj, key any) any {
	switch o := obj.(type) {
	case nil, NullValue:
		return nil
	case *observe.Array:
		if i, ok := arrayIndex(key); ok {
			return o.At(i)
		}
		return nil
	case []any:
		if i, ok := arrayIndex(key); ok && i < len(o) {
			return o[i]
		}
		return nil
	case *observe.Map:
		return o.Get(key)
	}
	return observe.GetProperty(obj, ToString(key))
}

func setKeyed(obj, key, value any) error {
	switch o := obj.(type) {
	case *observe.Array:
		if i, ok := arrayIndex(key); ok {
			o.Set(i, value)
			return nil
		}
	case []any:
		if i, ok := arrayIndex(key); ok && i < len(o) {
			o[i] = value
			return nil
		}
	case *observe.Map:
		o.Set(key, value)
		return nil
	}
	return observe.SetProperty(obj, ToString(key), value)
}
