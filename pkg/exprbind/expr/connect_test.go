package expr

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/exprbind/pkg/exprbind/observe"
)

type observation struct {
	obj  any
	name string
}

// fakeBinding records what expressions ask to observe.
type fakeBinding struct {
	lookups     LookupFunctions
	properties  []observation
	collections []any
	signals     []string
	behaviors   map[string]Behavior
}

func (b *fakeBinding) ObserveProperty(obj any, name string) {
	b.properties = append(b.properties, observation{obj, name})
}

func (b *fakeBinding) ObserveArray(collection any) {
	b.collections = append(b.collections, collection)
}

func (b *fakeBinding) ObserveSignal(name string) {
	b.signals = append(b.signals, name)
}

func (b *fakeBinding) LookupFunctions() LookupFunctions {
	return b.lookups
}

func (b *fakeBinding) Behavior(name string) Behavior {
	return b.behaviors[name]
}

func (b *fakeBinding) SetBehavior(name string, behavior Behavior) {
	if b.behaviors == nil {
		b.behaviors = make(map[string]Behavior)
	}
	if behavior == nil {
		delete(b.behaviors, name)
		return
	}
	b.behaviors[name] = behavior
}

func (b *fakeBinding) names() []string {
	names := make([]string, len(b.properties))
	for i, o := range b.properties {
		names[i] = o.name
	}
	return names
}

type mapLookups struct {
	converters map[string]Converter
	behaviors  map[string]Behavior
}

func (l mapLookups) ValueConverter(name string) (Converter, bool) {
	c, ok := l.converters[name]
	return c, ok
}

func (l mapLookups) BindingBehavior(name string) (Behavior, bool) {
	b, ok := l.behaviors[name]
	return b, ok
}

func connect(t *testing.T, input string, scope *Scope, b *fakeBinding) {
	t.Helper()
	e, err := Parse(input)
	require.NoError(t, err)
	require.NoError(t, e.Connect(b, scope))
}

func TestConnect_AccessPaths(t *testing.T) {
	inner := observe.NewObjectFrom(map[string]any{"bar": 1})
	model := observe.NewObjectFrom(map[string]any{"foo": inner})
	s := NewScope(model)

	b := &fakeBinding{}
	connect(t, "foo.bar", s, b)
	require.Len(t, b.properties, 2)
	assert.Equal(t, observation{model, "foo"}, b.properties[0])
	assert.Equal(t, observation{inner, "bar"}, b.properties[1])

	b = &fakeBinding{}
	connect(t, "missing.bar", s, b)
	assert.Equal(t, []string{"missing"}, b.names(), "a nullish receiver is not observed")

	b = &fakeBinding{}
	connect(t, "$this", s, b)
	assert.Empty(t, b.properties)
}

func TestConnect_ShortCircuits(t *testing.T) {
	model := observe.NewObjectFrom(map[string]any{"t": true, "f": false})
	s := NewScope(model)

	tests := []struct {
		input string
		want  []string
	}{
		{"f && a", []string{"f"}},
		{"t && a", []string{"t", "a"}},
		{"t || a", []string{"t"}},
		{"f || a", []string{"f", "a"}},
		{"t ? a : b", []string{"t", "a"}},
		{"f ? a : b", []string{"f", "b"}},
		{"!t + x", []string{"t", "x"}},
		{"x = y", nil},
		{"[a, {b}]", []string{"a", "b"}},
		{"`${a}${b}`", []string{"a", "b"}},
		{"fn(a)", []string{"a"}},
		{"obj.method(a)", []string{"obj", "a"}},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			b := &fakeBinding{}
			connect(t, tt.input, s, b)
			if tt.want == nil {
				assert.Empty(t, b.properties)
				return
			}
			assert.Equal(t, tt.want, b.names())
		})
	}
}

func TestConnect_CallFunctionArgsOnlyWhenCallable(t *testing.T) {
	model := observe.NewObjectFrom(map[string]any{"f": func(any) any { return nil }})
	s := NewScope(model)

	b := &fakeBinding{}
	connect(t, "f(a)", s, b)
	assert.Equal(t, []string{"a"}, b.names())

	b = &fakeBinding{}
	connect(t, "(f)(a)", s, b)
	assert.Equal(t, []string{"f", "a"}, b.names())

	b = &fakeBinding{}
	connect(t, "(g)(a)", s, b)
	assert.Equal(t, []string{"g"}, b.names())
}

func TestConnect_CallMemberArgsOnlyWhenCallable(t *testing.T) {
	model := observe.NewObjectFrom(map[string]any{
		"svc":  observe.NewObjectFrom(map[string]any{"f": func(any) any { return nil }, "n": 1}),
		"none": Null,
	})
	s := NewScope(model)

	b := &fakeBinding{}
	connect(t, "svc.f(a)", s, b)
	assert.Equal(t, []string{"svc", "a"}, b.names())

	b = &fakeBinding{}
	connect(t, "svc.missing(a)", s, b)
	assert.Equal(t, []string{"svc"}, b.names())

	b = &fakeBinding{}
	connect(t, "svc.n(a)", s, b)
	assert.Equal(t, []string{"svc"}, b.names())

	b = &fakeBinding{}
	connect(t, "none.f(a)", s, b)
	assert.Equal(t, []string{"none"}, b.names())
}

func TestConnect_Keyed(t *testing.T) {
	list := observe.NewArray("x", "y")
	dict := observe.NewMap()
	dict.Set("k", 1)
	obj := observe.NewObjectFrom(map[string]any{"p": 1})
	model := observe.NewObjectFrom(map[string]any{
		"list": list, "dict": dict, "obj": obj, "i": 1, "key": "p",
	})
	s := NewScope(model)

	b := &fakeBinding{}
	connect(t, "list[i]", s, b)
	assert.Equal(t, []string{"list", "i"}, b.names(), "numeric keys into arrays are not observed")

	b = &fakeBinding{}
	connect(t, "obj[key]", s, b)
	assert.Equal(t, []string{"obj", "key", "p"}, b.names())
	assert.Same(t, obj, b.properties[2].obj)

	b = &fakeBinding{}
	connect(t, "dict['k']", s, b)
	assert.Equal(t, []string{"dict"}, b.names())
	assert.Equal(t, []any{dict}, b.collections)

	b = &fakeBinding{}
	connect(t, "missing[key]", s, b)
	assert.Equal(t, []string{"missing"}, b.names())
}

func TestConnect_ValueConverterSignalsAndCollections(t *testing.T) {
	list := observe.NewArray(3, 1, 2)
	conv := ConverterFuncs{Signal: []string{"locale-changed", "tick"}}
	b := &fakeBinding{lookups: mapLookups{converters: map[string]Converter{"sort": conv}}}
	s := NewScope(observe.NewObjectFrom(map[string]any{"items": list, "dir": "asc"}))

	connect(t, "items | sort:dir", s, b)
	assert.Equal(t, []string{"items", "dir"}, b.names())
	assert.Equal(t, []string{"locale-changed", "tick"}, b.signals)
	assert.Equal(t, []any{list}, b.collections)

	e, err := Parse("items | nope")
	require.NoError(t, err)
	assert.ErrorIs(t, e.Connect(b, s), ErrConverterNotFound)
}

type recordingBehavior struct {
	bound   [][]any
	unbound int
}

func (r *recordingBehavior) Bind(_ Binder, _ *Scope, args ...any) error {
	r.bound = append(r.bound, args)
	return nil
}

func (r *recordingBehavior) Unbind(Binder, *Scope) error {
	r.unbound++
	return nil
}

func TestBindingBehavior_BindUnbind(t *testing.T) {
	throttle := &recordingBehavior{}
	debounce := &recordingBehavior{}
	l := mapLookups{behaviors: map[string]Behavior{"throttle": throttle, "debounce": debounce}}
	b := &fakeBinding{lookups: l}
	s := NewScope(observe.NewObjectFrom(map[string]any{"delay": 200}))

	e, err := Parse("value & throttle:delay & debounce")
	require.NoError(t, err)
	bindable, ok := e.(Bindable)
	require.True(t, ok)

	require.NoError(t, bindable.Bind(b, s, l))
	assert.Equal(t, [][]any{{200}}, throttle.bound)
	assert.Equal(t, [][]any{{}}, debounce.bound)
	assert.Same(t, throttle, b.Behavior("throttle"))

	require.NoError(t, bindable.Unbind(b, s))
	assert.Equal(t, 1, throttle.unbound)
	assert.Equal(t, 1, debounce.unbound)
	assert.Nil(t, b.Behavior("throttle"))
}

func TestBindingBehavior_Errors(t *testing.T) {
	l := mapLookups{behaviors: map[string]Behavior{"once": &recordingBehavior{}}}
	b := &fakeBinding{lookups: l}
	s := NewScope(observe.NewObject())

	e, err := Parse("value & once & once")
	require.NoError(t, err)
	err = e.(Bindable).Bind(b, s, l)
	assert.ErrorIs(t, err, ErrBehaviorApplied)
	assert.Contains(t, err.Error(), `A binding behavior named "once" has already been applied to "value&once"`)

	e, err = Parse("value & missing")
	require.NoError(t, err)
	err = e.(Bindable).Bind(&fakeBinding{lookups: l}, s, l)
	assert.ErrorIs(t, err, ErrBehaviorNotFound)
	assert.Contains(t, err.Error(), `No BindingBehavior named "missing" was found!`)
}

type failingBehavior struct {
	fail  bool
	binds int
}

func (f *failingBehavior) Bind(Binder, *Scope, ...any) error {
	f.binds++
	if f.fail {
		return errors.New("behavior refused")
	}
	return nil
}

func (f *failingBehavior) Unbind(Binder, *Scope) error { return nil }

func TestBindingBehavior_FailedBindCanRetry(t *testing.T) {
	inner := &recordingBehavior{}
	outer := &failingBehavior{fail: true}
	l := mapLookups{behaviors: map[string]Behavior{"inner": inner, "outer": outer}}
	b := &fakeBinding{lookups: l}
	s := NewScope(observe.NewObject())

	e, err := Parse("value & inner & outer")
	require.NoError(t, err)
	bindable := e.(Bindable)

	require.EqualError(t, bindable.Bind(b, s, l), "behavior refused")
	assert.Nil(t, b.Behavior("outer"))
	assert.Nil(t, b.Behavior("inner"))
	assert.Equal(t, 1, inner.unbound)

	outer.fail = false
	require.NoError(t, bindable.Bind(b, s, l))
	assert.Same(t, outer, b.Behavior("outer"))
	assert.Same(t, inner, b.Behavior("inner"))
	assert.Equal(t, 2, outer.binds)
}

func TestBindingBehavior_PassesThrough(t *testing.T) {
	model := observe.NewObjectFrom(map[string]any{"value": 1})
	s := NewScope(model)
	e, err := Parse("value & anything")
	require.NoError(t, err)

	v, err := e.Evaluate(s, nil, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, v)

	_, err = e.Assign(s, 2, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, model.Get("value"))

	b := &fakeBinding{}
	require.NoError(t, e.Connect(b, s))
	assert.Equal(t, []string{"value"}, b.names())
}
