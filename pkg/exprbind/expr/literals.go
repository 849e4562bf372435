package expr

import (
	"strings"

	"github.com/randalmurphal/exprbind/pkg/exprbind/observe"
)

// Evaluate implements Expression.
func (e *LiteralPrimitive) Evaluate(*Scope, LookupFunctions, Flags) (any, error) {
	return e.Value, nil
}

// Assign implements Expression.
func (e *LiteralPrimitive) Assign(*Scope, any, LookupFunctions) (any, error) {
	return nil, notAssignable(e)
}

// Connect implements Expression.
func (e *LiteralPrimitive) Connect(Connector, *Scope) error {
	return nil
}

// Evaluate implements Expression.
func (e *LiteralString) Evaluate(*Scope, LookupFunctions, Flags) (any, error) {
	return e.Value, nil
}

// Assign implements Expression.
func (e *LiteralString) Assign(*Scope, any, LookupFunctions) (any, error) {
	return nil, notAssignable(e)
}

// Connect implements Expression.
func (e *LiteralString) Connect(Connector, *Scope) error {
	return nil
}

// Evaluate implements Expression. Each evaluation builds a fresh Array.
func (e *LiteralArray) Evaluate(scope *Scope, lookups LookupFunctions, _ Flags) (any, error) {
	items, err := evalList(scope, lookups, e.Elements)
	if err != nil {
		return nil, err
	}
	return observe.NewArray(items...), nil
}

// Assign implements Expression.
func (e *LiteralArray) Assign(*Scope, any, LookupFunctions) (any, error) {
	return nil, notAssignable(e)
}

// Connect implements Expression.
func (e *LiteralArray) Connect(binding Connector, scope *Scope) error {
	return connectList(binding, scope, e.Elements)
}

// Evaluate implements Expression. Each evaluation builds a fresh Object
// whose keys keep their source order.
func (e *LiteralObject) Evaluate(scope *Scope, lookups LookupFunctions, _ Flags) (any, error) {
	obj := observe.NewObject()
	for i, key := range e.Keys {
		v, err := e.Values[i].Evaluate(scope, lookups, 0)
		if err != nil {
			return nil, err
		}
		obj.Set(key, v)
	}
	return obj, nil
}

// Assign implements Expression.
func (e *LiteralObject) Assign(*Scope, any, LookupFunctions) (any, error) {
	return nil, notAssignable(e)
}

// Connect implements Expression.
func (e *LiteralObject) Connect(binding Connector, scope *Scope) error {
	return connectList(binding, scope, e.Values)
}

// Evaluate implements Expression. An untagged template concatenates its
// segments; a tagged one passes TemplateStrings and the evaluated
// expressions to the tag.
func (e *LiteralTemplate) Evaluate(scope *Scope, lookups LookupFunctions, _ Flags) (any, error) {
	values, err := evalList(scope, lookups, e.Expressions)
	if err != nil {
		return nil, err
	}

	if e.Func == nil {
		var b strings.Builder
		b.WriteString(e.Cooked[0])
		for i, v := range values {
			b.WriteString(ToString(v))
			b.WriteString(e.Cooked[i+1])
		}
		return b.String(), nil
	}

	tag, err := e.Func.Evaluate(scope, lookups, 0)
	if err != nil {
		return nil, err
	}
	fn, ok := functionOf(tag)
	if !ok {
		return nil, evalError(e, ErrNotFunction, "%s is not a function", Unparse(e.Func))
	}
	args := make([]any, 0, len(values)+1)
	args = append(args, TemplateStrings{Cooked: e.Cooked, Raw: e.Raw})
	args = append(args, values...)
	return wrapCall(e, fn, args)
}

// Assign implements Expression.
func (e *LiteralTemplate) Assign(*Scope, any, LookupFunctions) (any, error) {
	return nil, notAssignable(e)
}

// Connect implements Expression.
func (e *LiteralTemplate) Connect(binding Connector, scope *Scope) error {
	if err := connectList(binding, scope, e.Expressions); err != nil {
		return err
	}
	if e.Func != nil {
		return e.Func.Connect(binding, scope)
	}
	return nil
}
