package observe

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"unicode"
	"unicode/utf8"
)

// ErrPropertyNotWritable is returned when a property cannot be assigned on
// the given value.
var ErrPropertyNotWritable = errors.New("property is not writable")

// PropertyAccessor lets user types expose dynamic properties to expressions.
type PropertyAccessor interface {
	GetProperty(name string) (any, bool)
	SetProperty(name string, value any) error
}

// GetProperty reads name from obj. Unknown properties and nullish receivers
// read as undefined (nil).
//
// Supported receivers: *Object, PropertyAccessor, map[string]any, *Array,
// *Map, *Set, strings, slices, string-keyed maps and structs (exported
// fields matched exactly or with the first letter upper-cased).
func GetProperty(obj any, name string) any {
	switch o := obj.(type) {
	case nil, NullValue:
		return nil
	case *Object:
		if o == nil {
			return nil
		}
		return o.Get(name)
	case PropertyAccessor:
		v, _ := o.GetProperty(name)
		return v
	case map[string]any:
		return o[name]
	case *Array:
		if name == "length" {
			return o.Len()
		}
		if i, ok := arrayIndex(name); ok {
			return o.At(i)
		}
		return nil
	case *Map:
		if name == "size" {
			return o.Len()
		}
		return nil
	case *Set:
		if name == "size" {
			return o.Len()
		}
		return nil
	case string:
		if name == "length" {
			return utf8.RuneCountInString(o)
		}
		return nil
	case []any:
		if name == "length" {
			return len(o)
		}
		if i, ok := arrayIndex(name); ok && i < len(o) {
			return o[i]
		}
		return nil
	}
	v, ok := reflectGet(reflect.ValueOf(obj), name)
	if !ok {
		return nil
	}
	return v
}

// SetProperty assigns name on obj.
func SetProperty(obj any, name string, value any) error {
	switch o := obj.(type) {
	case *Object:
		if o != nil {
			o.Set(name, value)
			return nil
		}
	case PropertyAccessor:
		return o.SetProperty(name, value)
	case map[string]any:
		if o != nil {
			o[name] = value
			return nil
		}
	case *Array:
		if name == "length" {
			n, ok := numberOf(value)
			if !ok || n < 0 || n != math.Trunc(n) {
				return fmt.Errorf("invalid array length %v", value)
			}
			o.SetLen(int(n))
			return nil
		}
		if i, ok := arrayIndex(name); ok {
			o.Set(i, value)
			return nil
		}
	default:
		if reflectSet(reflect.ValueOf(obj), name, value) {
			return nil
		}
	}
	return fmt.Errorf("%w: %q on %T", ErrPropertyNotWritable, name, obj)
}

// HasProperty reports whether obj has a property or method called name.
func HasProperty(obj any, name string) bool {
	switch o := obj.(type) {
	case nil, NullValue:
		return false
	case *Object:
		return o != nil && o.Has(name)
	case PropertyAccessor:
		_, ok := o.GetProperty(name)
		return ok
	case map[string]any:
		_, ok := o[name]
		return ok
	case *Array:
		if name == "length" {
			return true
		}
		if i, ok := arrayIndex(name); ok {
			return i < o.Len()
		}
	case *Map:
		if name == "size" {
			return true
		}
	case *Set:
		if name == "size" {
			return true
		}
	}
	rv := reflect.ValueOf(obj)
	if _, ok := findMethod(rv, name); ok {
		return true
	}
	_, ok := reflectGet(rv, name)
	return ok
}

// Method returns the method of obj called name, matched exactly or with the
// first letter upper-cased.
func Method(obj any, name string) (reflect.Value, bool) {
	if IsNullish(obj) {
		return reflect.Value{}, false
	}
	return findMethod(reflect.ValueOf(obj), name)
}

// IsObject reports whether v is a non-primitive value: anything other than
// undefined, Null, booleans, numbers, strings and funcs.
func IsObject(v any) bool {
	switch v.(type) {
	case nil, NullValue, bool, string:
		return false
	}
	if IsNumber(v) {
		return false
	}
	return reflect.TypeOf(v).Kind() != reflect.Func
}

func arrayIndex(name string) (int, bool) {
	i, err := strconv.Atoi(name)
	if err != nil || i < 0 {
		return 0, false
	}
	return i, true
}

func exportedName(name string) string {
	r, size := utf8.DecodeRuneInString(name)
	if r == utf8.RuneError || unicode.IsUpper(r) {
		return name
	}
	return string(unicode.ToUpper(r)) + name[size:]
}

func findMethod(rv reflect.Value, name string) (reflect.Value, bool) {
	if !rv.IsValid() || name == "" {
		return reflect.Value{}, false
	}
	if m := rv.MethodByName(name); m.IsValid() {
		return m, true
	}
	if m := rv.MethodByName(exportedName(name)); m.IsValid() {
		return m, true
	}
	return reflect.Value{}, false
}

func reflectGet(rv reflect.Value, name string) (any, bool) {
	for rv.IsValid() && (rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface) {
		if rv.IsNil() {
			return nil, false
		}
		rv = rv.Elem()
	}
	if !rv.IsValid() {
		return nil, false
	}
	switch rv.Kind() {
	case reflect.Struct:
		f, ok := structField(rv, name)
		if !ok {
			return nil, false
		}
		return f.Interface(), true
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil, false
		}
		v := rv.MapIndex(reflect.ValueOf(name).Convert(rv.Type().Key()))
		if !v.IsValid() {
			return nil, false
		}
		return v.Interface(), true
	case reflect.Slice, reflect.Array:
		if name == "length" {
			return rv.Len(), true
		}
		if i, ok := arrayIndex(name); ok && i < rv.Len() {
			return rv.Index(i).Interface(), true
		}
	}
	return nil, false
}

func reflectSet(rv reflect.Value, name string, value any) bool {
	if !rv.IsValid() {
		return false
	}
	if rv.Kind() == reflect.Map {
		if rv.IsNil() || rv.Type().Key().Kind() != reflect.String {
			return false
		}
		v, ok := convertValue(value, rv.Type().Elem())
		if !ok {
			return false
		}
		rv.SetMapIndex(reflect.ValueOf(name).Convert(rv.Type().Key()), v)
		return true
	}
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return false
	}
	rv = rv.Elem()
	if rv.Kind() != reflect.Struct {
		return false
	}
	f, ok := structField(rv, name)
	if !ok || !f.CanSet() {
		return false
	}
	v, ok := convertValue(value, f.Type())
	if !ok {
		return false
	}
	f.Set(v)
	return true
}

func structField(rv reflect.Value, name string) (reflect.Value, bool) {
	if sf, ok := rv.Type().FieldByName(name); ok && sf.IsExported() {
		return rv.FieldByIndex(sf.Index), true
	}
	if sf, ok := rv.Type().FieldByName(exportedName(name)); ok && sf.IsExported() {
		return rv.FieldByIndex(sf.Index), true
	}
	return reflect.Value{}, false
}

// convertValue adapts value to t. Nullish values become the zero value and
// numbers convert between kinds.
func convertValue(value any, t reflect.Type) (reflect.Value, bool) {
	if IsNullish(value) {
		return reflect.Zero(t), true
	}
	v := reflect.ValueOf(value)
	if v.Type().AssignableTo(t) {
		return v, true
	}
	if IsNumber(value) && isNumericKind(t.Kind()) {
		return v.Convert(t), true
	}
	if v.Type().ConvertibleTo(t) && v.Kind() == t.Kind() {
		return v.Convert(t), true
	}
	return reflect.Value{}, false
}

// ConvertValue adapts value for assignment to a Go value of type t. It is
// used when calling Go funcs from expressions.
func ConvertValue(value any, t reflect.Type) (reflect.Value, bool) {
	return convertValue(value, t)
}

func isNumericKind(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}
