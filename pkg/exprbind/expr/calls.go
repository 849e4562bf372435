package expr

import (
	"errors"
	"reflect"
)

func evalList(scope *Scope, lookups LookupFunctions, list []Expression) ([]any, error) {
	values := make([]any, len(list))
	for i, e := range list {
		v, err := e.Evaluate(scope, lookups, 0)
		if err != nil {
			return nil, err
		}
		values[i] = v
	}
	return values, nil
}

func connectList(binding Connector, scope *Scope, list []Expression) error {
	for _, e := range list {
		if err := e.Connect(binding, scope); err != nil {
			return err
		}
	}
	return nil
}

// Evaluate implements Expression.
func (e *CallScope) Evaluate(scope *Scope, lookups LookupFunctions, flags Flags) (any, error) {
	args, err := evalList(scope, lookups, e.Args)
	if err != nil {
		return nil, err
	}
	ctx := contextFor(e.Name, scope, e.Ancestor)
	fn, err := getFunction(e, ctx, e.Name, flags&MustEvaluate != 0)
	if err != nil || !fn.IsValid() {
		return nil, err
	}
	return wrapCall(e, fn, args)
}

// Assign implements Expression.
func (e *CallScope) Assign(*Scope, any, LookupFunctions) (any, error) {
	return nil, notAssignable(e)
}

// Connect implements Expression.
func (e *CallScope) Connect(binding Connector, scope *Scope) error {
	return connectList(binding, scope, e.Args)
}

// Evaluate implements Expression.
func (e *CallMember) Evaluate(scope *Scope, lookups LookupFunctions, flags Flags) (any, error) {
	instance, err := e.Object.Evaluate(scope, lookups, 0)
	if err != nil {
		return nil, err
	}
	args, err := evalList(scope, lookups, e.Args)
	if err != nil {
		return nil, err
	}
	fn, err := getFunction(e, instance, e.Name, flags&MustEvaluate != 0)
	if err != nil || !fn.IsValid() {
		return nil, err
	}
	return wrapCall(e, fn, args)
}

// Assign implements Expression.
func (e *CallMember) Assign(*Scope, any, LookupFunctions) (any, error) {
	return nil, notAssignable(e)
}

// Connect implements Expression. Arguments are observed only while the
// member resolves to a function.
func (e *CallMember) Connect(binding Connector, scope *Scope) error {
	if err := e.Object.Connect(binding, scope); err != nil {
		return err
	}
	instance, err := e.Object.Evaluate(scope, binding.LookupFunctions(), 0)
	if err != nil {
		return err
	}
	if fn, err := getFunction(e, instance, e.Name, false); err != nil || !fn.IsValid() {
		return nil
	}
	return connectList(binding, scope, e.Args)
}

// Evaluate implements Expression.
func (e *CallFunction) Evaluate(scope *Scope, lookups LookupFunctions, flags Flags) (any, error) {
	value, err := e.Func.Evaluate(scope, lookups, 0)
	if err != nil {
		return nil, err
	}
	if fn, ok := functionOf(value); ok {
		args, err := evalList(scope, lookups, e.Args)
		if err != nil {
			return nil, err
		}
		return wrapCall(e, fn, args)
	}
	if flags&MustEvaluate == 0 && IsNullish(value) {
		return nil, nil
	}
	return nil, evalError(e, ErrNotFunction, "%s is not a function", Unparse(e.Func))
}

// Assign implements Expression.
func (e *CallFunction) Assign(*Scope, any, LookupFunctions) (any, error) {
	return nil, notAssignable(e)
}

// Connect implements Expression. Arguments are only connected when the
// callee currently resolves to a function.
func (e *CallFunction) Connect(binding Connector, scope *Scope) error {
	if err := e.Func.Connect(binding, scope); err != nil {
		return err
	}
	value, err := e.Func.Evaluate(scope, binding.LookupFunctions(), 0)
	if err != nil {
		return err
	}
	if !isCallable(value) {
		return nil
	}
	return connectList(binding, scope, e.Args)
}

// wrapCall invokes fn and attributes failures to e.
func wrapCall(e Expression, fn reflect.Value, args []any) (any, error) {
	result, err := invoke(fn, args)
	if err != nil {
		var evalErr *EvaluationError
		if errors.As(err, &evalErr) {
			return nil, err
		}
		return nil, evalError(e, err, "%v", err)
	}
	return result, nil
}
