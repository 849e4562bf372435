package resources

import "github.com/randalmurphal/exprbind/pkg/exprbind/expr"

// BehaviorFuncs builds an expr.Behavior from plain functions. Nil functions
// do nothing.
type BehaviorFuncs struct {
	OnBind   func(binding expr.Binder, scope *expr.Scope, args ...any) error
	OnUnbind func(binding expr.Binder, scope *expr.Scope) error
}

// Bind implements expr.Behavior.
func (b BehaviorFuncs) Bind(binding expr.Binder, scope *expr.Scope, args ...any) error {
	if b.OnBind == nil {
		return nil
	}
	return b.OnBind(binding, scope, args...)
}

// Unbind implements expr.Behavior.
func (b BehaviorFuncs) Unbind(binding expr.Binder, scope *expr.Scope) error {
	if b.OnUnbind == nil {
		return nil
	}
	return b.OnUnbind(binding, scope)
}
