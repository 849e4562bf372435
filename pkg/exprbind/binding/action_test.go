package binding

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/exprbind/pkg/exprbind/expr"
	"github.com/randalmurphal/exprbind/pkg/exprbind/observe"
)

func TestActionBinding_CallSource(t *testing.T) {
	f := newFixture(t)
	var got []any
	src := observe.NewObjectFrom(map[string]any{
		"save": func(args ...any) any {
			got = args
			return "saved"
		},
	})
	target := observe.NewObject()

	a := NewAction(f.host, expr.MustParse("save($event, kind)"), target, "onClick")
	scope := expr.NewScope(src)
	require.NoError(t, a.Bind(scope))
	assert.True(t, a.IsBound())

	handler, ok := target.Get("onClick").(Handler)
	require.True(t, ok, "bind installs a handler on the target")

	event := map[string]any{"kind": "click"}
	result, err := handler(event)
	require.NoError(t, err)
	assert.Equal(t, "saved", result)
	assert.Equal(t, []any{event, "click"}, got)

	assert.False(t, scope.OverrideContext.Has("$event"), "$event is removed after the call")
	assert.False(t, scope.OverrideContext.Has("kind"))

	require.NoError(t, a.Unbind())
	assert.Nil(t, target.Get("onClick"))

	result, err = a.CallSource(event)
	assert.NoError(t, err)
	assert.Nil(t, result, "unbound actions do nothing")
}

func TestActionBinding_MissingFunctionIsError(t *testing.T) {
	f := newFixture(t)
	a := NewAction(f.host, expr.MustParse("missing()"), nil, "")
	require.NoError(t, a.Bind(expr.NewScope(observe.NewObject())))

	_, err := a.CallSource(nil)
	assert.ErrorIs(t, err, expr.ErrNotFunction)
	assert.Contains(t, f.logs.String(), "callSource")
}

func TestActionBinding_Assignment(t *testing.T) {
	f := newFixture(t)
	src := observe.NewObjectFrom(map[string]any{"count": 1})
	a := NewAction(f.host, expr.MustParse("count = count + $event"), nil, "")
	require.NoError(t, a.Bind(expr.NewScope(src)))

	result, err := a.CallSource(2)
	require.NoError(t, err)
	assert.Equal(t, 3.0, result)
	assert.Equal(t, 3.0, src.Get("count"))
}

func TestActionBinding_Behaviors(t *testing.T) {
	f := newFixture(t)
	a := NewAction(f.host, expr.MustParse("go()"), nil, "")

	assert.Nil(t, a.Behavior("x"))
	a.SetBehavior("x", ModeBehavior{})
	assert.NotNil(t, a.Behavior("x"))
	a.SetBehavior("x", nil)
	assert.Nil(t, a.Behavior("x"))
	assert.NotEmpty(t, a.ID())
	assert.Same(t, f.resources, a.LookupFunctions())
}
