package expr

import (
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"

	"github.com/randalmurphal/exprbind/pkg/exprbind/observe"
)

// NullValue is the type of Null.
type NullValue = observe.NullValue

// Null is the expression language's null. A Go nil is undefined.
var Null = observe.Null

// IsNullish reports whether v is undefined or Null.
func IsNullish(v any) bool {
	return observe.IsNullish(v)
}

// IsTruthy returns whether a value is truthy.
// undefined, Null, false, empty strings, zero and NaN are false;
// everything else is true.
func IsTruthy(v any) bool {
	if IsNullish(v) {
		return false
	}
	switch val := v.(type) {
	case bool:
		return val
	case string:
		return val != ""
	}
	if f, ok := numberOf(v); ok {
		return f != 0 && !math.IsNaN(f)
	}
	return true
}

// ToNumber converts a value to float64 the way the expression language
// coerces operands. undefined and unparsable strings become NaN; Null and
// false become 0.
func ToNumber(v any) float64 {
	switch val := v.(type) {
	case nil:
		return math.NaN()
	case NullValue:
		return 0
	case bool:
		if val {
			return 1
		}
		return 0
	case string:
		s := strings.TrimSpace(val)
		if s == "" {
			return 0
		}
		switch s {
		case "Infinity", "+Infinity":
			return math.Inf(1)
		case "-Infinity":
			return math.Inf(-1)
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil || strings.ContainsAny(s, "_xXpP") || strings.EqualFold(s, "inf") || strings.EqualFold(s, "nan") {
			return math.NaN()
		}
		return f
	}
	if f, ok := numberOf(v); ok {
		return f
	}
	return math.NaN()
}

// ToString converts a value to text the way template literals and string
// concatenation do.
func ToString(v any) string {
	switch val := v.(type) {
	case nil:
		return "undefined"
	case NullValue:
		return "null"
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case *observe.Array:
		return joinValues(val.Items())
	case []any:
		return joinValues(val)
	case *observe.Object, *observe.Map, *observe.Set:
		return "[object Object]"
	case fmt.Stringer:
		return val.String()
	}
	if f, ok := numberOf(v); ok {
		return FormatNumber(f)
	}
	return fmt.Sprint(v)
}

func joinValues(items []any) string {
	parts := make([]string, len(items))
	for i, item := range items {
		if !IsNullish(item) {
			parts[i] = ToString(item)
		}
	}
	return strings.Join(parts, ",")
}

// FormatNumber renders a number without a trailing ".0", using exponent
// notation only for very large or very small magnitudes.
func FormatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case f == 0:
		return "0"
	}
	abs := math.Abs(f)
	if abs >= 1e21 || abs < 1e-6 {
		return strconv.FormatFloat(f, 'e', -1, 64)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// TypeOf returns the typeof name of a value.
func TypeOf(v any) string {
	switch v.(type) {
	case nil:
		return "undefined"
	case NullValue:
		return "object"
	case string:
		return "string"
	case bool:
		return "boolean"
	}
	if observe.IsNumber(v) {
		return "number"
	}
	if isCallable(v) {
		return "function"
	}
	return "object"
}

// StrictEquals implements ===.
func StrictEquals(a, b any) bool {
	return observe.StrictEquals(a, b)
}

// LooseEquals implements ==: undefined equals Null, and numbers, strings
// and booleans compare after numeric coercion.
func LooseEquals(a, b any) bool {
	if IsNullish(a) || IsNullish(b) {
		return IsNullish(a) && IsNullish(b)
	}
	if StrictEquals(a, b) {
		return true
	}
	if isPrimitive(a) && isPrimitive(b) {
		_, aStr := a.(string)
		_, bStr := b.(string)
		if aStr && bStr {
			return a == b
		}
		return ToNumber(a) == ToNumber(b)
	}
	if isPrimitive(a) != isPrimitive(b) {
		return LooseEquals(toPrimitive(a), toPrimitive(b))
	}
	return false
}

func isPrimitive(v any) bool {
	switch v.(type) {
	case nil, NullValue, string, bool:
		return true
	}
	return observe.IsNumber(v)
}

func toPrimitive(v any) any {
	if isPrimitive(v) {
		return v
	}
	return ToString(v)
}

func numberOf(v any) (float64, bool) {
	if !observe.IsNumber(v) {
		return 0, false
	}
	return reflect.ValueOf(v).Convert(reflect.TypeOf(float64(0))).Float(), true
}

func isString(v any) bool {
	_, ok := v.(string)
	return ok
}
