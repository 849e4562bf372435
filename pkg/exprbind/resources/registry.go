// Package resources holds the named value converters and binding behaviors
// that expressions reference with | and &.
//
// A Registry implements expr.LookupFunctions. Registries nest: a child
// created with Child resolves its own entries first and falls back to its
// parent, so a view can register local resources without touching the
// global set.
package resources

import (
	"errors"
	"fmt"

	"github.com/randalmurphal/exprbind/pkg/exprbind/expr"
)

var (
	// ErrInvalidName is returned for an empty resource name.
	ErrInvalidName = errors.New("resource name is required")

	// ErrNilResource is returned when registering a nil converter or behavior.
	ErrNilResource = errors.New("resource is nil")

	// ErrNotConverter is returned when a value implements neither
	// expr.ToViewConverter nor expr.FromViewConverter.
	ErrNotConverter = errors.New("value converter must implement ToView or FromView")
)

// Registry resolves value converters and binding behaviors by name.
type Registry struct {
	parent     *Registry
	converters *table[expr.Converter]
	behaviors  *table[expr.Behavior]
}

var _ expr.LookupFunctions = (*Registry)(nil)

// New creates an empty root registry.
func New() *Registry {
	return &Registry{
		converters: newTable[expr.Converter](),
		behaviors:  newTable[expr.Behavior](),
	}
}

// Child creates a registry that falls back to r for names it lacks.
func (r *Registry) Child() *Registry {
	c := New()
	c.parent = r
	return c
}

// Parent returns the registry r falls back to, or nil for a root.
func (r *Registry) Parent() *Registry {
	return r.parent
}

// RegisterValueConverter adds or replaces a converter.
func (r *Registry) RegisterValueConverter(name string, converter expr.Converter) error {
	if name == "" {
		return ErrInvalidName
	}
	if converter == nil {
		return fmt.Errorf("value converter %q: %w", name, ErrNilResource)
	}
	_, to := converter.(expr.ToViewConverter)
	_, from := converter.(expr.FromViewConverter)
	if !to && !from {
		return fmt.Errorf("value converter %q: %w", name, ErrNotConverter)
	}
	r.converters.put(name, converter)
	return nil
}

// RegisterBindingBehavior adds or replaces a behavior.
func (r *Registry) RegisterBindingBehavior(name string, behavior expr.Behavior) error {
	if name == "" {
		return ErrInvalidName
	}
	if behavior == nil {
		return fmt.Errorf("binding behavior %q: %w", name, ErrNilResource)
	}
	r.behaviors.put(name, behavior)
	return nil
}

// MustRegisterValueConverter is RegisterValueConverter that panics on error.
func (r *Registry) MustRegisterValueConverter(name string, converter expr.Converter) {
	if err := r.RegisterValueConverter(name, converter); err != nil {
		panic(err)
	}
}

// MustRegisterBindingBehavior is RegisterBindingBehavior that panics on error.
func (r *Registry) MustRegisterBindingBehavior(name string, behavior expr.Behavior) {
	if err := r.RegisterBindingBehavior(name, behavior); err != nil {
		panic(err)
	}
}

// UnregisterValueConverter removes a converter from r only. It reports
// whether one was registered.
func (r *Registry) UnregisterValueConverter(name string) bool {
	return r.converters.remove(name)
}

// UnregisterBindingBehavior removes a behavior from r only.
func (r *Registry) UnregisterBindingBehavior(name string) bool {
	return r.behaviors.remove(name)
}

// ValueConverter implements expr.LookupFunctions.
func (r *Registry) ValueConverter(name string) (expr.Converter, bool) {
	for reg := r; reg != nil; reg = reg.parent {
		if c, ok := reg.converters.get(name); ok {
			return c, true
		}
	}
	return nil, false
}

// BindingBehavior implements expr.LookupFunctions.
func (r *Registry) BindingBehavior(name string) (expr.Behavior, bool) {
	for reg := r; reg != nil; reg = reg.parent {
		if b, ok := reg.behaviors.get(name); ok {
			return b, true
		}
	}
	return nil, false
}

// ValueConverterNames lists the converters registered directly on r.
func (r *Registry) ValueConverterNames() []string {
	return r.converters.names()
}

// BindingBehaviorNames lists the behaviors registered directly on r.
func (r *Registry) BindingBehaviorNames() []string {
	return r.behaviors.names()
}
