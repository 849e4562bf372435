package observe

import (
	"fmt"
	"slices"
	"sort"
	"strings"
)

// Array is an observable list. Mutating methods report change records to
// the attached CollectionObserver, if any.
type Array struct {
	items    []any
	observer *CollectionObserver
}

// NewArray creates an Array holding items.
func NewArray(items ...any) *Array {
	return &Array{items: slices.Clone(items)}
}

// Len returns the number of items.
func (a *Array) Len() int {
	return len(a.items)
}

// At returns the item at i, or nil when i is out of range.
func (a *Array) At(i int) any {
	if i < 0 || i >= len(a.items) {
		return nil
	}
	return a.items[i]
}

// Items returns a copy of the items.
func (a *Array) Items() []any {
	return slices.Clone(a.items)
}

// Slice returns a copy of items[start:end] with out-of-range bounds clamped.
func (a *Array) Slice(start, end int) []any {
	start = clampIndex(start, len(a.items))
	end = clampIndex(end, len(a.items))
	if start >= end {
		return []any{}
	}
	return slices.Clone(a.items[start:end])
}

// IndexOf returns the index of the first item strictly equal to v, or -1.
func (a *Array) IndexOf(v any) int {
	return slices.IndexFunc(a.items, func(item any) bool { return StrictEquals(item, v) })
}

// Includes reports whether v is in the array.
func (a *Array) Includes(v any) bool {
	return a.IndexOf(v) >= 0
}

// Join concatenates the items with sep between them. Undefined and null
// items become empty strings.
func (a *Array) Join(sep string) string {
	var b strings.Builder
	for i, item := range a.items {
		if i > 0 {
			b.WriteString(sep)
		}
		if !IsNullish(item) {
			fmt.Fprint(&b, item)
		}
	}
	return b.String()
}

// Set assigns the item at i, growing the array with undefined items when i
// is past the end.
func (a *Array) Set(i int, v any) {
	if i < 0 {
		return
	}
	oldLen := len(a.items)
	if i < oldLen {
		old := a.items[i]
		a.items[i] = v
		a.record(ChangeRecord{Type: RecordUpdate, Index: i, OldValue: old})
		return
	}
	a.items = append(a.items, make([]any, i-oldLen+1)...)
	a.items[i] = v
	a.record(ChangeRecord{Type: RecordSplice, Index: oldLen, Removed: []any{}, AddedCount: i - oldLen + 1})
}

// SetLen truncates or extends the array.
func (a *Array) SetLen(n int) {
	oldLen := len(a.items)
	switch {
	case n < oldLen:
		removed := slices.Clone(a.items[n:])
		clear(a.items[n:])
		a.items = a.items[:n]
		a.record(ChangeRecord{Type: RecordSplice, Index: n, Removed: removed})
	case n > oldLen:
		a.items = append(a.items, make([]any, n-oldLen)...)
		a.record(ChangeRecord{Type: RecordSplice, Index: oldLen, Removed: []any{}, AddedCount: n - oldLen})
	}
}

// Push appends items and returns the new length.
func (a *Array) Push(items ...any) int {
	if len(items) == 0 {
		return len(a.items)
	}
	a.items = append(a.items, items...)
	a.record(ChangeRecord{Type: RecordSplice, Index: len(a.items) - len(items), Removed: []any{}, AddedCount: len(items)})
	return len(a.items)
}

// Pop removes and returns the last item.
func (a *Array) Pop() any {
	if len(a.items) == 0 {
		return nil
	}
	last := a.items[len(a.items)-1]
	a.items[len(a.items)-1] = nil
	a.items = a.items[:len(a.items)-1]
	a.record(ChangeRecord{Type: RecordDelete, Index: len(a.items), OldValue: last})
	return last
}

// Shift removes and returns the first item.
func (a *Array) Shift() any {
	if len(a.items) == 0 {
		return nil
	}
	first := a.items[0]
	a.items = slices.Delete(a.items, 0, 1)
	a.record(ChangeRecord{Type: RecordDelete, Index: 0, OldValue: first})
	return first
}

// Unshift prepends items and returns the new length.
func (a *Array) Unshift(items ...any) int {
	if len(items) == 0 {
		return len(a.items)
	}
	a.items = slices.Insert(a.items, 0, items...)
	a.record(ChangeRecord{Type: RecordSplice, Index: 0, Removed: []any{}, AddedCount: len(items)})
	return len(a.items)
}

// Splice removes deleteCount items at start, inserts items there and returns
// the removed items. A negative start counts from the end.
func (a *Array) Splice(start, deleteCount int, items ...any) []any {
	n := len(a.items)
	if start < 0 {
		start = max(n+start, 0)
	}
	start = min(start, n)
	deleteCount = max(min(deleteCount, n-start), 0)

	removed := slices.Clone(a.items[start : start+deleteCount])
	a.items = slices.Replace(a.items, start, start+deleteCount, items...)
	if len(removed) > 0 || len(items) > 0 {
		a.record(ChangeRecord{Type: RecordSplice, Index: start, Removed: removed, AddedCount: len(items)})
	}
	return removed
}

// Sort sorts the array in place. A nil less orders numbers numerically and
// everything else by its formatted text, numbers first.
func (a *Array) Sort(less func(x, y any) bool) {
	if less == nil {
		less = defaultLess
	}
	old := a.beforeReorder()
	sort.SliceStable(a.items, func(i, j int) bool { return less(a.items[i], a.items[j]) })
	a.afterReorder(old)
}

// Reverse reverses the array in place.
func (a *Array) Reverse() {
	old := a.beforeReorder()
	slices.Reverse(a.items)
	a.afterReorder(old)
}

func (a *Array) beforeReorder() []any {
	if a.observer == nil {
		return nil
	}
	a.observer.FlushChangeRecords()
	return slices.Clone(a.items)
}

func (a *Array) afterReorder(old []any) {
	if a.observer != nil && old != nil {
		a.observer.Reset(old)
	}
}

func (a *Array) record(r ChangeRecord) {
	if a.observer != nil {
		a.observer.AddChangeRecord(r)
	}
}

func defaultLess(x, y any) bool {
	fx, xNum := numberOf(x)
	fy, yNum := numberOf(y)
	switch {
	case xNum && yNum:
		return fx < fy
	case xNum != yNum:
		return xNum
	}
	return fmt.Sprint(x) < fmt.Sprint(y)
}

func clampIndex(i, n int) int {
	if i < 0 {
		i += n
	}
	return max(0, min(i, n))
}
