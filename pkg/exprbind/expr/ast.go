package expr

// AccessThis resolves to the binding context Ancestor frames up.
type AccessThis struct {
	Ancestor int
}

// AccessScope resolves Name against the scope chain.
type AccessScope struct {
	Name     string
	Ancestor int
}

// AccessMember reads Name from Object.
type AccessMember struct {
	Object Expression
	Name   string
}

// AccessKeyed reads Key from Object.
type AccessKeyed struct {
	Object Expression
	Key    Expression
}

// CallScope calls the function Name resolved against the scope chain.
type CallScope struct {
	Name     string
	Args     []Expression
	Ancestor int
}

// CallMember calls method Name on Object.
type CallMember struct {
	Object Expression
	Name   string
	Args   []Expression
}

// CallFunction calls the value of Func.
type CallFunction struct {
	Func Expression
	Args []Expression
}

// Binary applies a binary operator.
type Binary struct {
	Operation string
	Left      Expression
	Right     Expression
}

// Unary applies a prefix operator: ! - + typeof void.
type Unary struct {
	Operation  string
	Expression Expression
}

// Conditional is the ternary operator.
type Conditional struct {
	Condition Expression
	Yes       Expression
	No        Expression
}

// Assign writes the value of Value through Target.
type Assign struct {
	Target Expression
	Value  Expression
}

// LiteralPrimitive is a number, boolean, Null or undefined (nil) literal.
type LiteralPrimitive struct {
	Value any
}

// LiteralString is a quoted string literal.
type LiteralString struct {
	Value string
}

// LiteralArray is an array literal. It evaluates to a new observable Array.
type LiteralArray struct {
	Elements []Expression
}

// LiteralObject is an object literal. It evaluates to a new observable
// Object.
type LiteralObject struct {
	Keys   []string
	Values []Expression
}

// LiteralTemplate is a template literal. Cooked has one more segment than
// Expressions. A tagged template also carries Func and the Raw segments.
type LiteralTemplate struct {
	Cooked      []string
	Expressions []Expression
	Raw         []string
	Func        Expression
}

// ValueConverter pipes Expression through the converter Name.
type ValueConverter struct {
	Expression Expression
	Name       string
	Args       []Expression
}

// BindingBehavior applies the behavior Name to the binding evaluating
// Expression.
type BindingBehavior struct {
	Expression Expression
	Name       string
	Args       []Expression
}

// TemplateStrings is passed as the first argument to a template tag.
type TemplateStrings struct {
	Cooked []string
	Raw    []string
}

var undefinedLiteral = &LiteralPrimitive{Value: nil}

func (e *AccessThis) Accept(v Visitor)       { v.VisitAccessThis(e) }
func (e *AccessScope) Accept(v Visitor)      { v.VisitAccessScope(e) }
func (e *AccessMember) Accept(v Visitor)     { v.VisitAccessMember(e) }
func (e *AccessKeyed) Accept(v Visitor)      { v.VisitAccessKeyed(e) }
func (e *CallScope) Accept(v Visitor)        { v.VisitCallScope(e) }
func (e *CallMember) Accept(v Visitor)       { v.VisitCallMember(e) }
func (e *CallFunction) Accept(v Visitor)     { v.VisitCallFunction(e) }
func (e *Binary) Accept(v Visitor)           { v.VisitBinary(e) }
func (e *Unary) Accept(v Visitor)            { v.VisitUnary(e) }
func (e *Conditional) Accept(v Visitor)      { v.VisitConditional(e) }
func (e *Assign) Accept(v Visitor)           { v.VisitAssign(e) }
func (e *LiteralPrimitive) Accept(v Visitor) { v.VisitLiteralPrimitive(e) }
func (e *LiteralString) Accept(v Visitor)    { v.VisitLiteralString(e) }
func (e *LiteralArray) Accept(v Visitor)     { v.VisitLiteralArray(e) }
func (e *LiteralObject) Accept(v Visitor)    { v.VisitLiteralObject(e) }
func (e *LiteralTemplate) Accept(v Visitor)  { v.VisitLiteralTemplate(e) }
func (e *ValueConverter) Accept(v Visitor)   { v.VisitValueConverter(e) }
func (e *BindingBehavior) Accept(v Visitor)  { v.VisitBindingBehavior(e) }

func (e *AccessThis) String() string       { return Unparse(e) }
func (e *AccessScope) String() string      { return Unparse(e) }
func (e *AccessMember) String() string     { return Unparse(e) }
func (e *AccessKeyed) String() string      { return Unparse(e) }
func (e *CallScope) String() string        { return Unparse(e) }
func (e *CallMember) String() string       { return Unparse(e) }
func (e *CallFunction) String() string     { return Unparse(e) }
func (e *Binary) String() string           { return Unparse(e) }
func (e *Unary) String() string            { return Unparse(e) }
func (e *Conditional) String() string      { return Unparse(e) }
func (e *Assign) String() string           { return Unparse(e) }
func (e *LiteralPrimitive) String() string { return Unparse(e) }
func (e *LiteralString) String() string    { return Unparse(e) }
func (e *LiteralArray) String() string     { return Unparse(e) }
func (e *LiteralObject) String() string    { return Unparse(e) }
func (e *LiteralTemplate) String() string  { return Unparse(e) }
func (e *ValueConverter) String() string   { return Unparse(e) }
func (e *BindingBehavior) String() string  { return Unparse(e) }

// notAssignable is the Assign error of read-only nodes.
func notAssignable(e Expression) error {
	return evalError(e, ErrNotAssignable, "%s cannot be assigned to", Unparse(e))
}
