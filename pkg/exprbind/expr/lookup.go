package expr

// Flags modify evaluation.
type Flags uint8

const (
	// MustEvaluate turns a missing callee into an error instead of undefined.
	// Event handlers evaluate with it set.
	MustEvaluate Flags = 1 << iota
)

// Expression is a parsed AST node.
type Expression interface {
	// Evaluate computes the value of the expression in scope.
	Evaluate(scope *Scope, lookups LookupFunctions, flags Flags) (any, error)

	// Assign writes value through the expression and returns it. Only
	// scope, member and keyed access, assignments and resource wrappers
	// are assignable.
	Assign(scope *Scope, value any, lookups LookupFunctions) (any, error)

	// Connect registers the binding as an observer of every live property
	// the expression reads, following the same short-circuit paths as
	// Evaluate.
	Connect(binding Connector, scope *Scope) error

	// Accept dispatches to the visitor method for the node's kind.
	Accept(v Visitor)

	String() string
}

// Bindable is implemented by nodes that need setup against a binding:
// value converters and binding behaviors.
type Bindable interface {
	Bind(binding Binder, scope *Scope, lookups LookupFunctions) error
	Unbind(binding Binder, scope *Scope) error
}

// Connector is the part of a binding that expressions register observation
// with during Connect.
type Connector interface {
	ObserveProperty(obj any, propertyName string)
	ObserveArray(collection any)
	ObserveSignal(name string)
	LookupFunctions() LookupFunctions
}

// Binder is a binding that binding behaviors can attach to.
type Binder interface {
	Connector
	Behavior(name string) Behavior
	SetBehavior(name string, behavior Behavior)
}

// LookupFunctions resolves named resources referenced by expressions.
type LookupFunctions interface {
	ValueConverter(name string) (Converter, bool)
	BindingBehavior(name string) (Behavior, bool)
}

// Converter transforms values between source and target. A converter
// implements ToViewConverter, FromViewConverter or both; converters that
// implement SignalSource are re-evaluated when one of their signals fires.
type Converter any

// ToViewConverter converts source values before they reach the target.
type ToViewConverter interface {
	ToView(value any, args ...any) (any, error)
}

// FromViewConverter converts target values before they reach the source.
type FromViewConverter interface {
	FromView(value any, args ...any) (any, error)
}

// SignalSource lists the signals a converter depends on.
type SignalSource interface {
	Signals() []string
}

// Behavior alters how a binding behaves while it is bound.
type Behavior interface {
	Bind(binding Binder, scope *Scope, args ...any) error
	Unbind(binding Binder, scope *Scope) error
}

// ConverterFuncs builds a Converter from plain functions. Nil
// functions pass values through unchanged.
type ConverterFuncs struct {
	To     func(value any, args ...any) (any, error)
	From   func(value any, args ...any) (any, error)
	Signal []string
}

// ToView implements ToViewConverter.
func (c ConverterFuncs) ToView(value any, args ...any) (any, error) {
	if c.To == nil {
		return value, nil
	}
	return c.To(value, args...)
}

// FromView implements FromViewConverter.
func (c ConverterFuncs) FromView(value any, args ...any) (any, error) {
	if c.From == nil {
		return value, nil
	}
	return c.From(value, args...)
}

// Signals implements SignalSource.
func (c ConverterFuncs) Signals() []string {
	return c.Signal
}
