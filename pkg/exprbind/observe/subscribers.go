package observe

import (
	"slices"
	"sync"
)

type subscriber struct {
	context  string
	callable Callable
}

func (s subscriber) empty() bool {
	return s.callable == nil
}

func (s subscriber) is(context string, callable Callable) bool {
	return s.callable == callable && s.context == context
}

// SnapshotPool recycles the buffers SubscriberCollection uses to snapshot
// overflow subscribers during notification. Nested notifications take
// distinct buffers.
type SnapshotPool struct {
	mu        sync.Mutex
	contexts  [][]string
	callables [][]Callable
	inUse     []bool
}

// NewSnapshotPool creates an empty pool.
func NewSnapshotPool() *SnapshotPool {
	return &SnapshotPool{}
}

var defaultPool = NewSnapshotPool()

func (p *SnapshotPool) acquire(n int) (int, []string, []Callable) {
	p.mu.Lock()
	defer p.mu.Unlock()

	idx := len(p.inUse) - 1
	for idx >= 0 && p.inUse[idx] {
		idx--
	}
	if idx < 0 {
		idx = len(p.inUse)
		p.inUse = append(p.inUse, false)
		p.contexts = append(p.contexts, nil)
		p.callables = append(p.callables, nil)
	}
	p.inUse[idx] = true

	if cap(p.contexts[idx]) < n {
		p.contexts[idx] = make([]string, n)
		p.callables[idx] = make([]Callable, n)
	}
	return idx, p.contexts[idx][:n], p.callables[idx][:n]
}

func (p *SnapshotPool) release(idx int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	clear(p.contexts[idx][:cap(p.contexts[idx])])
	clear(p.callables[idx][:cap(p.callables[idx])])
	p.inUse[idx] = false
}

// Utilization returns the number of buffers currently in use.
func (p *SnapshotPool) Utilization() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	n := 0
	for _, used := range p.inUse {
		if used {
			n++
		}
	}
	return n
}

// SubscriberCollection holds (context, callable) subscriptions. The first
// three live in inline slots and the rest in overflow slices.
//
// Observers embed a SubscriberCollection and call CallSubscribers when they
// notify.
type SubscriberCollection struct {
	slot0, slot1, slot2 subscriber
	rest                []subscriber
	pool                *SnapshotPool
}

// SetSnapshotPool selects the pool used for overflow snapshots.
func (c *SubscriberCollection) SetSnapshotPool(pool *SnapshotPool) {
	c.pool = pool
}

// AddSubscriber adds the pair unless it is already present. It reports
// whether the pair was added.
func (c *SubscriberCollection) AddSubscriber(context string, callable Callable) bool {
	if c.HasSubscriber(context, callable) {
		return false
	}
	s := subscriber{context: context, callable: callable}
	switch {
	case c.slot0.empty():
		c.slot0 = s
	case c.slot1.empty():
		c.slot1 = s
	case c.slot2.empty():
		c.slot2 = s
	default:
		c.rest = append(c.rest, s)
	}
	return true
}

// RemoveSubscriber removes the pair. It reports whether the pair was found.
func (c *SubscriberCollection) RemoveSubscriber(context string, callable Callable) bool {
	switch {
	case c.slot0.is(context, callable):
		c.slot0 = subscriber{}
		return true
	case c.slot1.is(context, callable):
		c.slot1 = subscriber{}
		return true
	case c.slot2.is(context, callable):
		c.slot2 = subscriber{}
		return true
	}
	for i, s := range c.rest {
		if s.is(context, callable) {
			c.rest = slices.Delete(c.rest, i, i+1)
			return true
		}
	}
	return false
}

// HasSubscriber reports whether the exact pair is subscribed.
func (c *SubscriberCollection) HasSubscriber(context string, callable Callable) bool {
	if c.slot0.is(context, callable) || c.slot1.is(context, callable) || c.slot2.is(context, callable) {
		return true
	}
	for _, s := range c.rest {
		if s.is(context, callable) {
			return true
		}
	}
	return false
}

// HasSubscribers reports whether anything is subscribed.
func (c *SubscriberCollection) HasSubscribers() bool {
	return !c.slot0.empty() || !c.slot1.empty() || !c.slot2.empty() || len(c.rest) > 0
}

// SubscriberCount returns the number of subscriptions.
func (c *SubscriberCollection) SubscriberCount() int {
	n := len(c.rest)
	for _, s := range [...]subscriber{c.slot0, c.slot1, c.slot2} {
		if !s.empty() {
			n++
		}
	}
	return n
}

// CallSubscribers notifies every subscriber present when the call starts,
// in order: inline slots first, then overflow in insertion order.
// Subscribers added during the call are not notified; subscribers removed
// during the call still are.
func (c *SubscriberCollection) CallSubscribers(newValue, oldValue any) {
	s0, s1, s2 := c.slot0, c.slot1, c.slot2

	n := len(c.rest)
	if n == 0 {
		notify(s0, newValue, oldValue)
		notify(s1, newValue, oldValue)
		notify(s2, newValue, oldValue)
		return
	}

	pool := c.pool
	if pool == nil {
		pool = defaultPool
	}
	idx, contexts, callables := pool.acquire(n)
	defer pool.release(idx)
	for i, s := range c.rest {
		contexts[i] = s.context
		callables[i] = s.callable
	}

	notify(s0, newValue, oldValue)
	notify(s1, newValue, oldValue)
	notify(s2, newValue, oldValue)
	for i := 0; i < n; i++ {
		if callables[i] != nil {
			callables[i].Call(contexts[i], newValue, oldValue)
		}
	}
}

func notify(s subscriber, newValue, oldValue any) {
	if !s.empty() {
		s.callable.Call(s.context, newValue, oldValue)
	}
}
