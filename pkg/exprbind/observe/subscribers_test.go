package observe

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubscriberCollection_AddRemove(t *testing.T) {
	var c SubscriberCollection
	r := &recorder{}

	assert.False(t, c.HasSubscribers())
	assert.True(t, c.AddSubscriber("a", r))
	assert.False(t, c.AddSubscriber("a", r), "duplicate pair is ignored")
	assert.True(t, c.AddSubscriber("b", r), "same callable under another context is distinct")
	assert.Equal(t, 2, c.SubscriberCount())

	assert.True(t, c.HasSubscriber("a", r))
	assert.True(t, c.RemoveSubscriber("a", r))
	assert.False(t, c.RemoveSubscriber("a", r))
	assert.False(t, c.HasSubscriber("a", r))
	assert.Equal(t, 1, c.SubscriberCount())
}

func TestSubscriberCollection_Overflow(t *testing.T) {
	var c SubscriberCollection
	recorders := make([]*recorder, 6)
	for i := range recorders {
		recorders[i] = &recorder{}
		require.True(t, c.AddSubscriber(fmt.Sprint(i), recorders[i]))
	}
	assert.Equal(t, 6, c.SubscriberCount())

	// removing an inline subscriber frees the slot for the next add
	require.True(t, c.RemoveSubscriber("1", recorders[1]))
	extra := &recorder{}
	require.True(t, c.AddSubscriber("extra", extra))
	assert.True(t, c.slot1.is("extra", extra))

	c.CallSubscribers("new", "old")
	for i, r := range recorders {
		if i == 1 {
			assert.Empty(t, r.calls)
			continue
		}
		require.Len(t, r.calls, 1, "recorder %d", i)
		assert.Equal(t, call{context: fmt.Sprint(i), newValue: "new", oldValue: "old"}, r.calls[0])
	}
	assert.Len(t, extra.calls, 1)
}

func TestSubscriberCollection_CallSnapshot(t *testing.T) {
	var c SubscriberCollection
	pool := NewSnapshotPool()
	c.SetSnapshotPool(pool)

	late := &recorder{}
	removed := &recorder{}
	first := &recorder{}
	first.onCall = func() {
		c.AddSubscriber("late", late)
		c.RemoveSubscriber("removed", removed)
	}

	c.AddSubscriber("first", first)
	c.AddSubscriber("x", &recorder{})
	c.AddSubscriber("y", &recorder{})
	c.AddSubscriber("removed", removed)

	c.CallSubscribers(1, 0)

	assert.Empty(t, late.calls, "subscribers added during a call are not notified")
	assert.Len(t, removed.calls, 1, "subscribers removed during a call are still notified")
	assert.Equal(t, 0, pool.Utilization())
}

func TestSubscriberCollection_NestedCallsUseDistinctBuffers(t *testing.T) {
	pool := NewSnapshotPool()
	var outer, inner SubscriberCollection
	outer.SetSnapshotPool(pool)
	inner.SetSnapshotPool(pool)

	for i := 0; i < 3; i++ {
		inner.AddSubscriber(fmt.Sprint(i), &recorder{})
	}
	innerTail := &recorder{}
	inner.AddSubscriber("tail", innerTail)

	var utilization int
	trigger := &recorder{onCall: func() {
		inner.CallSubscribers(nil, nil)
	}}
	for i := 0; i < 3; i++ {
		outer.AddSubscriber(fmt.Sprint(i), &recorder{})
	}
	outer.AddSubscriber("trigger", trigger)
	outer.AddSubscriber("probe", &recorder{onCall: func() { utilization = pool.Utilization() }})

	outer.CallSubscribers(nil, nil)

	assert.Len(t, innerTail.calls, 1)
	assert.Equal(t, 1, utilization, "outer buffer is still held after the nested call returned")
	assert.Equal(t, 0, pool.Utilization())
}

func TestWatch(t *testing.T) {
	q := &testQueue{}
	obj := NewObjectFrom(map[string]any{"foo": 1})
	obs := NewSetterObserver(q, obj, "foo")

	var got []any
	cancel := Watch(obs, func(newValue, _ any) { got = append(got, newValue) })

	obj.Set("foo", 2)
	q.flush()
	cancel()
	obj.Set("foo", 3)
	q.flush()

	assert.Equal(t, []any{2}, got)
}
