package expr

import (
	"strings"
)

// Visitor receives one call per node kind from Expression.Accept.
type Visitor interface {
	VisitAccessThis(e *AccessThis)
	VisitAccessScope(e *AccessScope)
	VisitAccessMember(e *AccessMember)
	VisitAccessKeyed(e *AccessKeyed)
	VisitCallScope(e *CallScope)
	VisitCallMember(e *CallMember)
	VisitCallFunction(e *CallFunction)
	VisitBinary(e *Binary)
	VisitUnary(e *Unary)
	VisitConditional(e *Conditional)
	VisitAssign(e *Assign)
	VisitLiteralPrimitive(e *LiteralPrimitive)
	VisitLiteralString(e *LiteralString)
	VisitLiteralArray(e *LiteralArray)
	VisitLiteralObject(e *LiteralObject)
	VisitLiteralTemplate(e *LiteralTemplate)
	VisitValueConverter(e *ValueConverter)
	VisitBindingBehavior(e *BindingBehavior)
}

// Unparse renders an expression back to source text. Parsing the result
// yields a structurally equal tree.
func Unparse(e Expression) string {
	if e == nil {
		return ""
	}
	u := &unparser{}
	e.Accept(u)
	return u.b.String()
}

// unparser is the Visitor behind Unparse.
type unparser struct {
	b strings.Builder
}

func (u *unparser) write(s string) {
	u.b.WriteString(s)
}

func (u *unparser) ancestors(n int) {
	for i := 0; i < n; i++ {
		u.write("$parent.")
	}
}

func (u *unparser) args(list []Expression) {
	u.write("(")
	for i, arg := range list {
		if i > 0 {
			u.write(",")
		}
		arg.Accept(u)
	}
	u.write(")")
}

// operand writes e, parenthesized when it binds looser than a left-hand
// side expression.
func (u *unparser) operand(e Expression) {
	switch e.(type) {
	case *Binary, *Conditional, *Assign, *ValueConverter, *BindingBehavior:
		u.write("(")
		e.Accept(u)
		u.write(")")
	default:
		e.Accept(u)
	}
}

// object writes the receiver of a member access or call.
func (u *unparser) object(e Expression) {
	if _, ok := e.(*Unary); ok {
		u.write("(")
		e.Accept(u)
		u.write(")")
		return
	}
	u.operand(e)
}

func (u *unparser) VisitAccessThis(e *AccessThis) {
	if e.Ancestor == 0 {
		u.write("$this")
		return
	}
	for i := 0; i < e.Ancestor; i++ {
		if i > 0 {
			u.write(".")
		}
		u.write("$parent")
	}
}

func (u *unparser) VisitAccessScope(e *AccessScope) {
	u.ancestors(e.Ancestor)
	u.write(e.Name)
}

func (u *unparser) VisitAccessMember(e *AccessMember) {
	u.object(e.Object)
	u.write(".")
	u.write(e.Name)
}

func (u *unparser) VisitAccessKeyed(e *AccessKeyed) {
	u.object(e.Object)
	u.write("[")
	e.Key.Accept(u)
	u.write("]")
}

func (u *unparser) VisitCallScope(e *CallScope) {
	u.ancestors(e.Ancestor)
	u.write(e.Name)
	u.args(e.Args)
}

func (u *unparser) VisitCallMember(e *CallMember) {
	u.object(e.Object)
	u.write(".")
	u.write(e.Name)
	u.args(e.Args)
}

func (u *unparser) VisitCallFunction(e *CallFunction) {
	u.object(e.Func)
	u.args(e.Args)
}

func (u *unparser) VisitBinary(e *Binary) {
	u.operand(e.Left)
	u.write(" " + e.Operation + " ")
	u.operand(e.Right)
}

func (u *unparser) VisitUnary(e *Unary) {
	u.write(e.Operation)
	if e.Operation == "typeof" || e.Operation == "void" {
		u.write(" ")
	}
	u.operand(e.Expression)
}

func (u *unparser) VisitConditional(e *Conditional) {
	u.operand(e.Condition)
	u.write(" ? ")
	u.operand(e.Yes)
	u.write(" : ")
	u.operand(e.No)
}

func (u *unparser) VisitAssign(e *Assign) {
	u.operand(e.Target)
	u.write(" = ")
	if _, ok := e.Value.(*Assign); ok {
		e.Value.Accept(u)
		return
	}
	u.operand(e.Value)
}

func (u *unparser) VisitLiteralPrimitive(e *LiteralPrimitive) {
	switch v := e.Value.(type) {
	case nil:
		u.write("undefined")
	case NullValue:
		u.write("null")
	case bool:
		if v {
			u.write("true")
		} else {
			u.write("false")
		}
	default:
		u.write(ToString(v))
	}
}

func (u *unparser) VisitLiteralString(e *LiteralString) {
	u.write("'")
	u.write(escapeString(e.Value, '\''))
	u.write("'")
}

func (u *unparser) VisitLiteralArray(e *LiteralArray) {
	u.write("[")
	for i, el := range e.Elements {
		if i > 0 {
			u.write(",")
		}
		el.Accept(u)
	}
	u.write("]")
}

func (u *unparser) VisitLiteralObject(e *LiteralObject) {
	u.write("{")
	for i, key := range e.Keys {
		if i > 0 {
			u.write(",")
		}
		if isIdentifierName(key) {
			u.write(key)
		} else {
			u.write("'" + escapeString(key, '\'') + "'")
		}
		u.write(":")
		e.Values[i].Accept(u)
	}
	u.write("}")
}

func (u *unparser) VisitLiteralTemplate(e *LiteralTemplate) {
	segments := e.Cooked
	if e.Func != nil {
		u.object(e.Func)
		if len(e.Raw) == len(e.Cooked) {
			segments = e.Raw
		}
	}
	u.write("`")
	for i, s := range segments {
		if e.Func != nil {
			u.write(s)
		} else {
			u.write(escapeTemplate(s))
		}
		if i < len(e.Expressions) {
			u.write("${")
			e.Expressions[i].Accept(u)
			u.write("}")
		}
	}
	u.write("`")
}

func (u *unparser) VisitValueConverter(e *ValueConverter) {
	e.Expression.Accept(u)
	u.write("|" + e.Name)
	for _, arg := range e.Args {
		u.write(":")
		arg.Accept(u)
	}
}

func (u *unparser) VisitBindingBehavior(e *BindingBehavior) {
	e.Expression.Accept(u)
	u.write("&" + e.Name)
	for _, arg := range e.Args {
		u.write(":")
		arg.Accept(u)
	}
}

var stringEscapes = map[rune]string{
	'\\': `\\`,
	'\b': `\b`,
	'\f': `\f`,
	'\n': `\n`,
	'\r': `\r`,
	'\t': `\t`,
	'\v': `\v`,
}

func escapeString(s string, quote rune) string {
	var b strings.Builder
	for _, r := range s {
		if esc, ok := stringEscapes[r]; ok {
			b.WriteString(esc)
			continue
		}
		if r == quote {
			b.WriteRune('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

func escapeTemplate(s string) string {
	return strings.ReplaceAll(escapeString(s, '`'), "${", `\${`)
}

func isIdentifierName(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		if i == 0 && !isIdentifierStart(r) {
			return false
		}
		if i > 0 && !isIdentifierPart(r) {
			return false
		}
	}
	return true
}
