package resources_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/exprbind/pkg/exprbind/expr"
	"github.com/randalmurphal/exprbind/pkg/exprbind/resources"
)

var upper = expr.ConverterFuncs{
	To: func(v any, _ ...any) (any, error) { return strings.ToUpper(expr.ToString(v)), nil },
}

func TestRegistry_RegisterAndLookup(t *testing.T) {
	r := resources.New()
	require.NoError(t, r.RegisterValueConverter("upper", upper))
	require.NoError(t, r.RegisterBindingBehavior("noop", resources.BehaviorFuncs{}))

	c, ok := r.ValueConverter("upper")
	assert.True(t, ok)
	assert.NotNil(t, c)

	b, ok := r.BindingBehavior("noop")
	assert.True(t, ok)
	assert.NotNil(t, b)

	_, ok = r.ValueConverter("missing")
	assert.False(t, ok)
	_, ok = r.BindingBehavior("missing")
	assert.False(t, ok)
}

func TestRegistry_RegisterErrors(t *testing.T) {
	tests := []struct {
		name    string
		run     func(r *resources.Registry) error
		wantErr error
	}{
		{"empty converter name", func(r *resources.Registry) error { return r.RegisterValueConverter("", upper) }, resources.ErrInvalidName},
		{"nil converter", func(r *resources.Registry) error { return r.RegisterValueConverter("x", nil) }, resources.ErrNilResource},
		{"not a converter", func(r *resources.Registry) error { return r.RegisterValueConverter("x", 42) }, resources.ErrNotConverter},
		{"empty behavior name", func(r *resources.Registry) error {
			return r.RegisterBindingBehavior("", resources.BehaviorFuncs{})
		}, resources.ErrInvalidName},
		{"nil behavior", func(r *resources.Registry) error { return r.RegisterBindingBehavior("x", nil) }, resources.ErrNilResource},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.run(resources.New())
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestRegistry_MustRegisterPanics(t *testing.T) {
	r := resources.New()
	assert.Panics(t, func() { r.MustRegisterValueConverter("", upper) })
	assert.Panics(t, func() { r.MustRegisterBindingBehavior("x", nil) })
	assert.NotPanics(t, func() { r.MustRegisterValueConverter("upper", upper) })
}

func TestRegistry_ChildFallsBackToParent(t *testing.T) {
	root := resources.New()
	root.MustRegisterValueConverter("upper", upper)
	root.MustRegisterValueConverter("shared", upper)

	local := expr.ConverterFuncs{}
	child := root.Child()
	child.MustRegisterValueConverter("shared", local)

	assert.Same(t, root, child.Parent())
	assert.Nil(t, root.Parent())

	c, ok := child.ValueConverter("upper")
	require.True(t, ok)
	assert.IsType(t, expr.ConverterFuncs{}, c)

	c, ok = child.ValueConverter("shared")
	require.True(t, ok)
	assert.Nil(t, c.(expr.ConverterFuncs).To, "child entry shadows the parent")

	_, ok = root.ValueConverter("missing")
	assert.False(t, ok)

	assert.Equal(t, []string{"shared"}, child.ValueConverterNames())
	assert.Equal(t, []string{"shared", "upper"}, root.ValueConverterNames())
}

func TestRegistry_Unregister(t *testing.T) {
	root := resources.New()
	root.MustRegisterBindingBehavior("b", resources.BehaviorFuncs{})
	child := root.Child()

	assert.False(t, child.UnregisterBindingBehavior("b"), "child cannot remove parent entries")
	_, ok := child.BindingBehavior("b")
	assert.True(t, ok)

	assert.True(t, root.UnregisterBindingBehavior("b"))
	_, ok = child.BindingBehavior("b")
	assert.False(t, ok)
	assert.Empty(t, root.BindingBehaviorNames())
}

func TestRegistry_UsedByExpressions(t *testing.T) {
	r := resources.New()
	r.MustRegisterValueConverter("upper", upper)

	e, err := expr.Parse("name | upper")
	require.NoError(t, err)

	got, err := e.Evaluate(expr.NewScope(map[string]any{"name": "ada"}), r, 0)
	require.NoError(t, err)
	assert.Equal(t, "ADA", got)
}

func TestBehaviorFuncs(t *testing.T) {
	var bound []any
	unbound := false
	b := resources.BehaviorFuncs{
		OnBind: func(_ expr.Binder, _ *expr.Scope, args ...any) error {
			bound = args
			return nil
		},
		OnUnbind: func(expr.Binder, *expr.Scope) error {
			unbound = true
			return nil
		},
	}

	require.NoError(t, b.Bind(nil, nil, 1, "x"))
	require.NoError(t, b.Unbind(nil, nil))
	assert.Equal(t, []any{1, "x"}, bound)
	assert.True(t, unbound)

	assert.NoError(t, resources.BehaviorFuncs{}.Bind(nil, nil))
	assert.NoError(t, resources.BehaviorFuncs{}.Unbind(nil, nil))
}
