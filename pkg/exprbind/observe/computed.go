package observe

import "fmt"

const computedContext = "ComputedObserver"

// ComputedObserver observes a computed property through its declared
// dependencies and notifies when the computed value changes.
type ComputedObserver struct {
	SubscriberCollection

	locator      *ObserverLocator
	obj          *Object
	propertyName string
	property     *computedProperty
	currentValue any
}

func newComputedObserver(locator *ObserverLocator, obj *Object, name string, prop *computedProperty) *ComputedObserver {
	return &ComputedObserver{locator: locator, obj: obj, propertyName: name, property: prop}
}

// GetValue evaluates the getter.
func (o *ComputedObserver) GetValue() any {
	return o.property.get()
}

// SetValue calls the setter. Read-only computed properties reject writes.
func (o *ComputedObserver) SetValue(value any) error {
	if o.property.set == nil {
		return fmt.Errorf("%w: computed %q has no setter", ErrPropertyNotWritable, o.propertyName)
	}
	o.property.set(value)
	return nil
}

// Call implements Callable. A dependency changed.
func (o *ComputedObserver) Call(_ string, _, _ any) {
	newValue := o.GetValue()
	if StrictEquals(newValue, o.currentValue) {
		return
	}
	oldValue := o.currentValue
	o.currentValue = newValue
	o.CallSubscribers(newValue, oldValue)
}

// Subscribe implements Subscribable.
func (o *ComputedObserver) Subscribe(context string, callable Callable) {
	if !o.HasSubscribers() {
		o.currentValue = o.GetValue()
		for _, dep := range o.property.dependencies {
			o.locator.GetObserver(o.obj, dep).Subscribe(computedContext, o)
		}
	}
	o.AddSubscriber(context, callable)
}

// Unsubscribe implements Subscribable.
func (o *ComputedObserver) Unsubscribe(context string, callable Callable) {
	if o.RemoveSubscriber(context, callable) && !o.HasSubscribers() {
		for _, dep := range o.property.dependencies {
			o.locator.GetObserver(o.obj, dep).Unsubscribe(computedContext, o)
		}
	}
}
