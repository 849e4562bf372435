package expr_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/exprbind/pkg/exprbind/expr"
)

func TestUnparse(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"foo.bar", "foo.bar"},
		{"$this", "$this"},
		{"$parent", "$parent"},
		{"$parent.$parent", "$parent.$parent"},
		{"$parent.foo", "$parent.foo"},
		{"$parent.foo(1,2)", "$parent.foo(1,2)"},
		{"a[b].c(d)", "a[b].c(d)"},
		{"a()()", "a()()"},
		{"a+b*c", "a + (b * c)"},
		{"(a+b)*c", "(a + b) * c"},
		{"!(a && b)", "!(a && b)"},
		{"typeof a", "typeof a"},
		{"-a.b", "-a.b"},
		{"(!a).b", "(!a).b"},
		{"a ? b : c ? d : e", "a ? b : (c ? d : e)"},
		{"a = b = c", "a = b = c"},
		{"x = (a ? b : c)", "x = (a ? b : c)"},
		{`'it\'s'`, `'it\'s'`},
		{`"a\nb"`, `'a\nb'`},
		{"null", "null"},
		{"undefined", "undefined"},
		{"true", "true"},
		{"1.5", "1.5"},
		{"[1,,a]", "[1,undefined,a]"},
		{"{a, 'b c': 1, 2: x}", "{a:a,'b c':1,'2':x}"},
		{"`a${b}c`", "`a${b}c`"},
		{"tag`a\\n${b}`", "tag`a\\n${b}`"},
		{"a | x:1:'y' | z", "a|x:1:'y'|z"},
		{"a & b:1", "a&b:1"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			e, err := expr.Parse(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, expr.Unparse(e))
			assert.Equal(t, tt.want, e.String())

			reparsed, err := expr.Parse(expr.Unparse(e))
			require.NoError(t, err)
			assert.Equal(t, e, reparsed, "unparsed text parses to the same tree")
		})
	}
}

// countingVisitor counts visits; Accept must dispatch on the node kind.
type countingVisitor struct {
	expr.Visitor
	scopes int
}

func (v *countingVisitor) VisitAccessScope(*expr.AccessScope) {
	v.scopes++
}

func TestAccept_Dispatch(t *testing.T) {
	v := &countingVisitor{}
	e, err := expr.Parse("foo")
	require.NoError(t, err)
	e.Accept(v)
	assert.Equal(t, 1, v.scopes)
}
