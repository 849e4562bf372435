package observe

import "slices"

// Set is an observable insertion-ordered set. Slices, maps and funcs are
// members by identity.
type Set struct {
	members  map[any]struct{}
	order    []any
	observer *CollectionObserver
}

// NewSet creates a Set holding members.
func NewSet(members ...any) *Set {
	s := &Set{members: make(map[any]struct{})}
	for _, m := range members {
		hk := hashKey(m)
		if _, ok := s.members[hk]; !ok {
			s.members[hk] = struct{}{}
			s.order = append(s.order, m)
		}
	}
	return s
}

// Len returns the number of members.
func (s *Set) Len() int {
	return len(s.order)
}

// Has reports whether v is a member.
func (s *Set) Has(v any) bool {
	_, ok := s.members[hashKey(v)]
	return ok
}

// Add inserts v.
func (s *Set) Add(v any) {
	hk := hashKey(v)
	if _, ok := s.members[hk]; ok {
		return
	}
	s.members[hk] = struct{}{}
	s.order = append(s.order, v)
	s.record(ChangeRecord{Type: RecordAdd, Key: v})
}

// Delete removes v and reports whether it was a member.
func (s *Set) Delete(v any) bool {
	hk := hashKey(v)
	if _, ok := s.members[hk]; !ok {
		return false
	}
	delete(s.members, hk)
	s.order = slices.DeleteFunc(s.order, func(m any) bool { return hashKey(m) == hk })
	s.record(ChangeRecord{Type: RecordDelete, Key: v, OldValue: v})
	return true
}

// Clear removes every member.
func (s *Set) Clear() {
	if len(s.order) == 0 {
		return
	}
	clear(s.members)
	s.order = nil
	s.record(ChangeRecord{Type: RecordClear})
}

// Values returns the members in insertion order.
func (s *Set) Values() []any {
	return slices.Clone(s.order)
}

func (s *Set) record(r ChangeRecord) {
	if s.observer != nil {
		s.observer.AddChangeRecord(r)
	}
}
