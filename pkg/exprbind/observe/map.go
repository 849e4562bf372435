package observe

import "slices"

// Map is an observable insertion-ordered map. Slices, maps and funcs are
// keyed by identity.
type Map struct {
	entries  map[any]any
	keys     []any
	observer *CollectionObserver
}

// NewMap creates an empty Map.
func NewMap() *Map {
	return &Map{entries: make(map[any]any)}
}

// Len returns the number of entries.
func (m *Map) Len() int {
	return len(m.keys)
}

// Get returns the value for key, or nil.
func (m *Map) Get(key any) any {
	return m.entries[hashKey(key)]
}

// Lookup returns the value for key and whether it is present.
func (m *Map) Lookup(key any) (any, bool) {
	v, ok := m.entries[hashKey(key)]
	return v, ok
}

// Has reports whether key is present.
func (m *Map) Has(key any) bool {
	_, ok := m.entries[hashKey(key)]
	return ok
}

// Set stores value under key. Rewriting an entry with an identical value
// records nothing.
func (m *Map) Set(key, value any) {
	hk := hashKey(key)
	old, existed := m.entries[hk]
	if !existed {
		m.keys = append(m.keys, key)
	}
	m.entries[hk] = value
	switch {
	case !existed:
		m.record(ChangeRecord{Type: RecordAdd, Key: key})
	case !StrictEquals(old, value):
		m.record(ChangeRecord{Type: RecordUpdate, Key: key, OldValue: old})
	}
}

// Delete removes key and reports whether it was present.
func (m *Map) Delete(key any) bool {
	hk := hashKey(key)
	old, existed := m.entries[hk]
	if !existed {
		return false
	}
	delete(m.entries, hk)
	m.keys = slices.DeleteFunc(m.keys, func(k any) bool { return hashKey(k) == hk })
	m.record(ChangeRecord{Type: RecordDelete, Key: key, OldValue: old})
	return true
}

// Clear removes every entry.
func (m *Map) Clear() {
	if len(m.keys) == 0 {
		return
	}
	clear(m.entries)
	m.keys = nil
	m.record(ChangeRecord{Type: RecordClear})
}

// Keys returns the keys in insertion order.
func (m *Map) Keys() []any {
	return slices.Clone(m.keys)
}

// Values returns the values in key insertion order.
func (m *Map) Values() []any {
	out := make([]any, len(m.keys))
	for i, k := range m.keys {
		out[i] = m.entries[hashKey(k)]
	}
	return out
}

// Range calls fn for each entry in insertion order until fn returns false.
func (m *Map) Range(fn func(key, value any) bool) {
	for _, k := range slices.Clone(m.keys) {
		if !fn(k, m.entries[hashKey(k)]) {
			return
		}
	}
}

func (m *Map) record(r ChangeRecord) {
	if m.observer != nil {
		m.observer.AddChangeRecord(r)
	}
}
