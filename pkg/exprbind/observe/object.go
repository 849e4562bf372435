package observe

import "slices"

// propertyAccessor intercepts reads and writes of a single Object property.
type propertyAccessor interface {
	getValue() any
	setValue(v any)
}

// computedProperty is an accessor defined by DefineComputed.
type computedProperty struct {
	get          func() any
	set          func(v any)
	dependencies []string
}

func (c *computedProperty) getValue() any {
	return c.get()
}

func (c *computedProperty) setValue(v any) {
	if c.set != nil {
		c.set(v)
	}
}

// Object is an observable property bag. Keys keep insertion order.
//
// Writes made through Set are visible to observers attached by an
// ObserverLocator. The zero value is not usable; create objects with
// NewObject or NewObjectFrom.
type Object struct {
	values    map[string]any
	keys      []string
	accessors map[string]propertyAccessor
	observers map[string]PropertyObserver
}

// NewObject creates an empty Object.
func NewObject() *Object {
	return &Object{values: make(map[string]any)}
}

// NewObjectFrom creates an Object holding a copy of values. Keys are added in
// sorted order so the result is deterministic.
func NewObjectFrom(values map[string]any) *Object {
	o := NewObject()
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		o.Set(k, values[k])
	}
	return o
}

// Get returns the value of name, or nil if it is not set.
func (o *Object) Get(name string) any {
	if acc, ok := o.accessors[name]; ok {
		return acc.getValue()
	}
	return o.values[name]
}

// Lookup returns the value of name and whether the object has it.
func (o *Object) Lookup(name string) (any, bool) {
	if acc, ok := o.accessors[name]; ok {
		return acc.getValue(), true
	}
	v, ok := o.values[name]
	return v, ok
}

// Has reports whether the object has its own property name.
func (o *Object) Has(name string) bool {
	if _, ok := o.accessors[name]; ok {
		return true
	}
	_, ok := o.values[name]
	return ok
}

// Set assigns name. Observed properties route the write through their
// observer.
func (o *Object) Set(name string, v any) {
	if _, ok := o.values[name]; !ok {
		if _, intercepted := o.accessors[name]; !intercepted {
			o.keys = append(o.keys, name)
		}
	}
	if acc, ok := o.accessors[name]; ok {
		acc.setValue(v)
		return
	}
	o.values[name] = v
}

// Delete removes name. An observed property keeps its observer and reads
// as undefined afterwards. It reports whether the property existed.
func (o *Object) Delete(name string) bool {
	if acc, ok := o.accessors[name]; ok {
		acc.setValue(nil)
		return true
	}
	if _, ok := o.values[name]; !ok {
		return false
	}
	delete(o.values, name)
	o.keys = slices.DeleteFunc(o.keys, func(k string) bool { return k == name })
	return true
}

// Keys returns the property names in insertion order.
func (o *Object) Keys() []string {
	return slices.Clone(o.keys)
}

// Len returns the number of properties.
func (o *Object) Len() int {
	return len(o.keys)
}

// ToMap returns a shallow copy of the current property values.
func (o *Object) ToMap() map[string]any {
	m := make(map[string]any, len(o.keys))
	for _, k := range o.keys {
		m[k] = o.Get(k)
	}
	return m
}

// DefineComputed installs a read-only or read-write computed property. When
// dependencies are given, the locator observes them on the same object and
// re-evaluates get after each change. Without dependencies the property is
// dirty checked.
func (o *Object) DefineComputed(name string, get func() any, set func(v any), dependencies ...string) {
	o.defineAccessor(name, &computedProperty{get: get, set: set, dependencies: dependencies})
	delete(o.values, name)
}

func (o *Object) defineAccessor(name string, acc propertyAccessor) {
	if o.accessors == nil {
		o.accessors = make(map[string]propertyAccessor)
	}
	if !o.Has(name) {
		o.keys = append(o.keys, name)
	}
	o.accessors[name] = acc
}

func (o *Object) accessor(name string) (propertyAccessor, bool) {
	acc, ok := o.accessors[name]
	return acc, ok
}

func (o *Object) observer(name string) (PropertyObserver, bool) {
	obs, ok := o.observers[name]
	return obs, ok
}

func (o *Object) setObserver(name string, obs PropertyObserver) {
	if o.observers == nil {
		o.observers = make(map[string]PropertyObserver)
	}
	o.observers[name] = obs
}
