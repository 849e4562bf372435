package expr

import "github.com/randalmurphal/exprbind/pkg/exprbind/observe"

// Scope is the context an expression evaluates in: the current binding
// context plus the override-context chain.
type Scope struct {
	BindingContext  any
	OverrideContext *OverrideContext
}

// OverrideContext is one frame of the lookup chain. Own values such as
// $index or $event shadow properties of the paired binding context.
type OverrideContext struct {
	BindingContext any
	Parent         *OverrideContext
	Values         *observe.Object
}

// NewOverrideContext creates a frame for bindingContext under parent.
func NewOverrideContext(bindingContext any, parent *OverrideContext) *OverrideContext {
	return &OverrideContext{
		BindingContext: bindingContext,
		Parent:         parent,
		Values:         observe.NewObject(),
	}
}

// Get returns an own value of the frame.
func (oc *OverrideContext) Get(name string) any {
	if oc.Values == nil {
		return nil
	}
	return oc.Values.Get(name)
}

// Set assigns an own value of the frame.
func (oc *OverrideContext) Set(name string, value any) {
	if oc.Values == nil {
		oc.Values = observe.NewObject()
	}
	oc.Values.Set(name, value)
}

// Delete removes an own value of the frame.
func (oc *OverrideContext) Delete(name string) {
	if oc.Values != nil {
		oc.Values.Delete(name)
	}
}

// Has reports whether the frame has its own value name.
func (oc *OverrideContext) Has(name string) bool {
	return oc.Values != nil && oc.Values.Has(name)
}

// NewScope creates a root scope for bindingContext.
func NewScope(bindingContext any) *Scope {
	return &Scope{
		BindingContext:  bindingContext,
		OverrideContext: NewOverrideContext(bindingContext, nil),
	}
}

// Child creates a scope for bindingContext nested inside s, so that
// $parent refers to s.
func (s *Scope) Child(bindingContext any) *Scope {
	return &Scope{
		BindingContext:  bindingContext,
		OverrideContext: NewOverrideContext(bindingContext, s.OverrideContext),
	}
}

// NewScopeForTest creates a two-level scope: bindingContext nested inside
// parentBindingContext when that is non-nil.
func NewScopeForTest(bindingContext, parentBindingContext any) *Scope {
	if parentBindingContext != nil {
		return NewScope(parentBindingContext).Child(bindingContext)
	}
	return NewScope(bindingContext)
}

// contextFor resolves the object that owns name.
//
// With ancestor > 0 it hops exactly that many frames up and resolves there,
// yielding undefined past the root. Otherwise it walks outwards to the
// first frame that has name itself or whose binding context has it, and
// falls back to the scope's own binding context.
func contextFor(name string, scope *Scope, ancestor int) any {
	if scope == nil {
		return nil
	}
	oc := scope.OverrideContext

	if ancestor > 0 {
		for ancestor > 0 && oc != nil {
			ancestor--
			oc = oc.Parent
		}
		if ancestor > 0 || oc == nil {
			return nil
		}
		if oc.Has(name) {
			return oc.Values
		}
		return oc.BindingContext
	}

	for oc != nil && !oc.Has(name) && !(oc.BindingContext != nil && observe.HasProperty(oc.BindingContext, name)) {
		oc = oc.Parent
	}
	if oc != nil {
		if oc.Has(name) {
			return oc.Values
		}
		return oc.BindingContext
	}
	if scope.BindingContext != nil {
		return scope.BindingContext
	}
	if scope.OverrideContext != nil {
		return scope.OverrideContext.Values
	}
	return nil
}
