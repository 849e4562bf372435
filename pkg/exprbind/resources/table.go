package resources

import (
	"sort"
	"sync"
)

// table is a read-mostly map of named resources.
type table[V any] struct {
	mu      sync.RWMutex
	entries map[string]V
}

func newTable[V any]() *table[V] {
	return &table[V]{entries: make(map[string]V)}
}

func (t *table[V]) put(name string, v V) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries[name] = v
}

func (t *table[V]) get(name string) (V, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	v, ok := t.entries[name]
	return v, ok
}

func (t *table[V]) remove(name string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.entries[name]
	delete(t.entries, name)
	return ok
}

// names returns the keys in sorted order.
func (t *table[V]) names() []string {
	t.mu.RLock()
	names := make([]string, 0, len(t.entries))
	for k := range t.entries {
		names = append(names, k)
	}
	t.mu.RUnlock()
	sort.Strings(names)
	return names
}
