package expr

import (
	"fmt"
	"math"
	"reflect"

	"github.com/randalmurphal/exprbind/pkg/exprbind/observe"
)

// Compare applies an equality or relational operator.
// Returns an error for unknown operators.
func Compare(left, right any, op string) (bool, error) {
	switch op {
	case "==":
		return LooseEquals(left, right), nil
	case "!=":
		return !LooseEquals(left, right), nil
	case "===":
		return StrictEquals(left, right), nil
	case "!==":
		return !StrictEquals(left, right), nil
	case "<":
		return compareRelational(left, right, func(c int) bool { return c < 0 }), nil
	case ">":
		return compareRelational(left, right, func(c int) bool { return c > 0 }), nil
	case "<=":
		return compareRelational(left, right, func(c int) bool { return c <= 0 }), nil
	case ">=":
		return compareRelational(left, right, func(c int) bool { return c >= 0 }), nil
	case "in":
		return compareIn(left, right), nil
	case "instanceof":
		return compareInstanceOf(left, right), nil
	default:
		return false, fmt.Errorf("unknown operator: %s", op)
	}
}

// compareRelational compares strings lexically and everything else
// numerically. Any comparison involving NaN is false.
func compareRelational(left, right any, test func(c int) bool) bool {
	ls, lok := left.(string)
	rs, rok := right.(string)
	if lok && rok {
		switch {
		case ls < rs:
			return test(-1)
		case ls > rs:
			return test(1)
		}
		return test(0)
	}
	l, r := ToNumber(left), ToNumber(right)
	if math.IsNaN(l) || math.IsNaN(r) {
		return false
	}
	switch {
	case l < r:
		return test(-1)
	case l > r:
		return test(1)
	}
	return test(0)
}

// compareIn reports whether right has the property named by left.
func compareIn(left, right any) bool {
	switch r := right.(type) {
	case *observe.Map:
		return r.Has(left)
	case *observe.Set:
		return r.Has(left)
	}
	if !observe.IsObject(right) {
		return false
	}
	return observe.HasProperty(right, ToString(left))
}

// compareInstanceOf reports whether left's dynamic type matches right, which
// must be a reflect.Type.
func compareInstanceOf(left, right any) bool {
	t, ok := right.(reflect.Type)
	if !ok || left == nil {
		return false
	}
	lt := reflect.TypeOf(left)
	if t.Kind() == reflect.Interface {
		return lt.Implements(t)
	}
	return lt == t || (lt.Kind() == reflect.Pointer && lt.Elem() == t)
}

// add implements + with the null-propagation table: a nullish operand is
// dropped, and two nullish operands sum to 0.
func add(left, right any) any {
	leftNullish, rightNullish := IsNullish(left), IsNullish(right)
	switch {
	case !leftNullish && !rightNullish:
		if isString(left) || isString(right) || !isPrimitive(left) || !isPrimitive(right) {
			return ToString(left) + ToString(right)
		}
		return ToNumber(left) + ToNumber(right)
	case !leftNullish:
		return left
	case !rightNullish:
		return right
	}
	return 0.0
}

// subtract implements - with the null-propagation table: a nullish left
// operand negates the right one.
func subtract(left, right any) any {
	leftNullish, rightNullish := IsNullish(left), IsNullish(right)
	switch {
	case !leftNullish && !rightNullish:
		return ToNumber(left) - ToNumber(right)
	case !leftNullish:
		return left
	case !rightNullish:
		return -ToNumber(right)
	}
	return 0.0
}

// arithmetic implements * / %. Nullish operands yield Null.
func arithmetic(op string, left, right any) any {
	if IsNullish(left) || IsNullish(right) {
		return Null
	}
	l, r := ToNumber(left), ToNumber(right)
	switch op {
	case "*":
		return l * r
	case "/":
		return l / r
	default:
		return math.Mod(l, r)
	}
}
