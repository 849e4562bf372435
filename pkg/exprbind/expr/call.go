package expr

import (
	"fmt"
	"reflect"

	"github.com/randalmurphal/exprbind/pkg/exprbind/observe"
)

var errorType = reflect.TypeOf((*error)(nil)).Elem()

func isCallable(v any) bool {
	_, ok := functionOf(v)
	return ok
}

func functionOf(v any) (reflect.Value, bool) {
	if v == nil {
		return reflect.Value{}, false
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Func || rv.IsNil() {
		return reflect.Value{}, false
	}
	return rv, true
}

// getFunction resolves obj[name] as something callable: a property holding
// a func, or a method. A missing callee yields an invalid Value unless
// mustExist is set.
func getFunction(e Expression, obj any, name string, mustExist bool) (reflect.Value, error) {
	var prop any
	if !IsNullish(obj) {
		prop = observe.GetProperty(obj, name)
		if fn, ok := functionOf(prop); ok {
			return fn, nil
		}
		if m, ok := observe.Method(obj, name); ok {
			return m, nil
		}
	}
	if !mustExist && IsNullish(prop) {
		return reflect.Value{}, nil
	}
	return reflect.Value{}, evalError(e, ErrNotFunction, "%s is not a function", name)
}

// invoke calls fn with args, converting each argument to the parameter
// type. Missing arguments are zero values and extra arguments are dropped
// unless fn is variadic. A trailing error result is returned as the error.
func invoke(fn reflect.Value, args []any) (result any, err error) {
	if fn.CanInterface() {
		switch f := fn.Interface().(type) {
		case func(...any) any:
			return f(args...), nil
		case func(...any) (any, error):
			return f(args...)
		}
	}

	in, err := callArgs(fn.Type(), args)
	if err != nil {
		return nil, err
	}

	defer func() {
		if r := recover(); r != nil {
			result, err = nil, fmt.Errorf("function panicked: %v", r)
		}
	}()
	return callResults(fn.Call(in))
}

func callArgs(t reflect.Type, args []any) ([]reflect.Value, error) {
	numIn := t.NumIn()
	fixed := numIn
	if t.IsVariadic() {
		fixed--
	}

	n := fixed
	if t.IsVariadic() && len(args) > fixed {
		n = len(args)
	}
	in := make([]reflect.Value, n)
	for i := 0; i < n; i++ {
		var pt reflect.Type
		if i < fixed {
			pt = t.In(i)
		} else {
			pt = t.In(numIn - 1).Elem()
		}
		if i >= len(args) {
			in[i] = reflect.Zero(pt)
			continue
		}
		v, ok := observe.ConvertValue(args[i], pt)
		if !ok {
			return nil, fmt.Errorf("argument %d: cannot use %T as %s", i, args[i], pt)
		}
		in[i] = v
	}
	return in, nil
}

func callResults(out []reflect.Value) (any, error) {
	if len(out) == 0 {
		return nil, nil
	}
	last := out[len(out)-1]
	if last.Type() == errorType {
		if !last.IsNil() {
			return nil, last.Interface().(error)
		}
		out = out[:len(out)-1]
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0].Interface(), nil
}
