package observe

import (
	"errors"
	"fmt"
)

// ErrPrimitiveAssignment is returned when assigning a property of a
// primitive value.
var ErrPrimitiveAssignment = errors.New("cannot assign to a property of a primitive")

// PrimitiveObserver stands in for properties of primitive values. It never
// notifies and is never cached.
type PrimitiveObserver struct {
	primitive    any
	propertyName string
}

// NewPrimitiveObserver creates an observer for primitive[propertyName].
func NewPrimitiveObserver(primitive any, propertyName string) *PrimitiveObserver {
	return &PrimitiveObserver{primitive: primitive, propertyName: propertyName}
}

// GetValue returns the property of the primitive.
func (o *PrimitiveObserver) GetValue() any {
	return GetProperty(o.primitive, o.propertyName)
}

// SetValue always fails.
func (o *PrimitiveObserver) SetValue(any) error {
	return fmt.Errorf("%w: %q on %T", ErrPrimitiveAssignment, o.propertyName, o.primitive)
}

// Subscribe is a no-op.
func (o *PrimitiveObserver) Subscribe(string, Callable) {}

// Unsubscribe is a no-op.
func (o *PrimitiveObserver) Unsubscribe(string, Callable) {}

func (o *PrimitiveObserver) doNotCache() bool { return true }
