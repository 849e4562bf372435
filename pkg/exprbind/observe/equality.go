package observe

import (
	"fmt"
	"math"
	"reflect"
)

// NullValue is the type of Null.
type NullValue struct{}

// Null is the explicit null value of the expression language. A Go nil is
// treated as undefined.
var Null = NullValue{}

// IsNullish reports whether v is undefined (nil) or Null.
func IsNullish(v any) bool {
	if v == nil {
		return true
	}
	_, ok := v.(NullValue)
	return ok
}

// IsNumber reports whether v holds one of Go's numeric kinds.
func IsNumber(v any) bool {
	switch v.(type) {
	case float64, float32, int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64:
		return true
	}
	return false
}

// numberOf returns v as a float64 when v is numeric.
func numberOf(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	}
	return 0, false
}

// StrictEquals implements identity equality for the value model.
//
// Numbers compare by value regardless of their Go kind (NaN is never equal
// to itself). Comparable values compare with ==. Slices, maps and funcs
// compare by identity.
func StrictEquals(a, b any) bool {
	if fa, ok := numberOf(a); ok {
		fb, ok := numberOf(b)
		return ok && fa == fb && !math.IsNaN(fa)
	}
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb {
		return false
	}
	if ta.Comparable() {
		return safeEquals(a, b)
	}
	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	switch va.Kind() {
	case reflect.Slice:
		return va.Len() == vb.Len() && va.Pointer() == vb.Pointer()
	case reflect.Map, reflect.Func:
		return va.Pointer() == vb.Pointer()
	}
	return false
}

// safeEquals guards against structs holding non-comparable interface values.
func safeEquals(a, b any) (equal bool) {
	defer func() {
		if recover() != nil {
			equal = false
		}
	}()
	return a == b
}

// identityKey stands in for a map key whose value cannot be hashed.
type identityKey struct {
	typ  reflect.Type
	ptr  uintptr
	len  int
	text string
}

// hashKey returns a value that is safe to use as a Go map key. Slices,
// maps and funcs are keyed by identity; comparable values holding
// unhashable dynamic values fall back to their printed form.
func hashKey(v any) any {
	if v == nil {
		return nil
	}
	t := reflect.TypeOf(v)
	if t.Comparable() {
		if hashable(v) {
			return v
		}
		return identityKey{typ: t, text: fmt.Sprintf("%#v", v)}
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice:
		return identityKey{typ: t, ptr: rv.Pointer(), len: rv.Len()}
	case reflect.Map, reflect.Func:
		return identityKey{typ: t, ptr: rv.Pointer()}
	}
	return identityKey{typ: t, text: fmt.Sprintf("%#v", v)}
}

func hashable(v any) (ok bool) {
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()
	_ = map[any]struct{}{v: {}}
	return true
}
