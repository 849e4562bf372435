package binding

import (
	"errors"
	"fmt"

	"github.com/randalmurphal/exprbind/pkg/exprbind/expr"
)

// ErrUnsupportedBinder is returned when a behavior is applied to a binding
// kind it cannot alter.
var ErrUnsupportedBinder = errors.New("binding behavior does not support this binding")

// ModeBehavior overrides a binding's mode, as in `value & twoWay`. Unbind
// restores the original mode.
type ModeBehavior struct {
	Mode Mode
}

// Bind implements expr.Behavior.
func (m ModeBehavior) Bind(binder expr.Binder, _ *expr.Scope, _ ...any) error {
	b, ok := binder.(*Binding)
	if !ok {
		return fmt.Errorf("%s: %w", m.Mode, ErrUnsupportedBinder)
	}
	b.overrideMode(m.Mode)
	return nil
}

// Unbind implements expr.Behavior.
func (m ModeBehavior) Unbind(binder expr.Binder, _ *expr.Scope) error {
	if b, ok := binder.(*Binding); ok {
		b.restoreMode()
	}
	return nil
}

// SignalBehavior re-evaluates a binding whenever one of the signals named
// by its arguments is sent, as in `now | timeAgo & signal:'tick'`.
type SignalBehavior struct{}

// Bind implements expr.Behavior.
func (SignalBehavior) Bind(binder expr.Binder, _ *expr.Scope, args ...any) error {
	b, ok := binder.(*Binding)
	if !ok {
		return fmt.Errorf("signal: %w", ErrUnsupportedBinder)
	}
	if len(args) == 0 {
		return errors.New("signal binding behavior requires at least one signal name")
	}
	for _, arg := range args {
		b.AddSignal(expr.ToString(arg))
	}
	return nil
}

// Unbind implements expr.Behavior.
func (SignalBehavior) Unbind(binder expr.Binder, _ *expr.Scope) error {
	if b, ok := binder.(*Binding); ok {
		b.ClearSignals()
	}
	return nil
}

// RegisterDefaults registers the oneTime, toView, fromView, twoWay and
// signal behaviors.
func RegisterDefaults(register func(name string, behavior expr.Behavior) error) error {
	defaults := []struct {
		name     string
		behavior expr.Behavior
	}{
		{"oneTime", ModeBehavior{Mode: OneTime}},
		{"toView", ModeBehavior{Mode: ToView}},
		{"oneWay", ModeBehavior{Mode: ToView}},
		{"fromView", ModeBehavior{Mode: FromView}},
		{"twoWay", ModeBehavior{Mode: TwoWay}},
		{"signal", SignalBehavior{}},
	}
	for _, d := range defaults {
		if err := register(d.name, d.behavior); err != nil {
			return err
		}
	}
	return nil
}
