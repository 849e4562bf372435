package observe

import "slices"

// Splice describes one contiguous edit: at Index, Removed were taken out and
// AddedCount items were inserted. Indices refer to positions in the current
// sequence after all earlier splices in the same list are applied.
type Splice[T any] struct {
	Index      int
	Removed    []T
	AddedCount int
}

// EqualFunc compares two elements.
type EqualFunc[T any] func(a, b T) bool

type editOp uint8

const (
	editLeave editOp = iota
	editUpdate
	editAdd
	editDelete
)

// CalcSplices returns a minimal splice list transforming old[oldStart:oldEnd]
// into current[currentStart:currentEnd]. A shared prefix is skipped only
// when both ranges start at 0, and a shared suffix only when both ranges end
// at their sequence's length.
func CalcSplices[T any](current []T, currentStart, currentEnd int, old []T, oldStart, oldEnd int, equals EqualFunc[T]) []Splice[T] {
	currentEnd = min(currentEnd, len(current))
	oldEnd = min(oldEnd, len(old))

	prefixCount := 0
	suffixCount := 0
	minLength := min(currentEnd-currentStart, oldEnd-oldStart)
	if currentStart == 0 && oldStart == 0 {
		prefixCount = sharedPrefix(current, old, minLength, equals)
	}
	if currentEnd == len(current) && oldEnd == len(old) {
		suffixCount = sharedSuffix(current, old, minLength-prefixCount, equals)
	}

	currentStart += prefixCount
	oldStart += prefixCount
	currentEnd -= suffixCount
	oldEnd -= suffixCount

	if currentEnd-currentStart == 0 && oldEnd-oldStart == 0 {
		return nil
	}

	if currentStart == currentEnd {
		return []Splice[T]{{Index: currentStart, Removed: slices.Clone(old[oldStart:oldEnd])}}
	}
	if oldStart == oldEnd {
		return []Splice[T]{{Index: currentStart, Removed: []T{}, AddedCount: currentEnd - currentStart}}
	}

	ops := spliceOperationsFromEditDistances(calcEditDistances(current, currentStart, currentEnd, old, oldStart, oldEnd, equals))

	var splices []Splice[T]
	var splice *Splice[T]
	index := currentStart
	oldIndex := oldStart
	for _, op := range ops {
		switch op {
		case editLeave:
			if splice != nil {
				splices = append(splices, *splice)
				splice = nil
			}
			index++
			oldIndex++
		case editUpdate:
			if splice == nil {
				splice = &Splice[T]{Index: index, Removed: []T{}}
			}
			splice.AddedCount++
			index++
			splice.Removed = append(splice.Removed, old[oldIndex])
			oldIndex++
		case editAdd:
			if splice == nil {
				splice = &Splice[T]{Index: index, Removed: []T{}}
			}
			splice.AddedCount++
			index++
		case editDelete:
			if splice == nil {
				splice = &Splice[T]{Index: index, Removed: []T{}}
			}
			splice.Removed = append(splice.Removed, old[oldIndex])
			oldIndex++
		}
	}
	if splice != nil {
		splices = append(splices, *splice)
	}
	return splices
}

func sharedPrefix[T any](current, old []T, searchLength int, equals EqualFunc[T]) int {
	for i := 0; i < searchLength; i++ {
		if !equals(current[i], old[i]) {
			return i
		}
	}
	return max(searchLength, 0)
}

func sharedSuffix[T any](current, old []T, searchLength int, equals EqualFunc[T]) int {
	index1 := len(current)
	index2 := len(old)
	count := 0
	for count < searchLength {
		index1--
		index2--
		if !equals(current[index1], old[index2]) {
			break
		}
		count++
	}
	return count
}

// editDistances is a row-major (oldLen+1) x (currentLen+1) matrix.
type editDistances struct {
	rows, cols int
	cells      []int
}

func (d *editDistances) at(i, j int) int {
	return d.cells[i*d.cols+j]
}

func (d *editDistances) set(i, j, v int) {
	d.cells[i*d.cols+j] = v
}

func calcEditDistances[T any](current []T, currentStart, currentEnd int, old []T, oldStart, oldEnd int, equals EqualFunc[T]) *editDistances {
	rows := oldEnd - oldStart + 1
	cols := currentEnd - currentStart + 1
	d := &editDistances{rows: rows, cols: cols, cells: make([]int, rows*cols)}

	for i := 0; i < rows; i++ {
		d.set(i, 0, i)
	}
	for j := 0; j < cols; j++ {
		d.set(0, j, j)
	}
	for i := 1; i < rows; i++ {
		for j := 1; j < cols; j++ {
			if equals(current[currentStart+j-1], old[oldStart+i-1]) {
				d.set(i, j, d.at(i-1, j-1))
				continue
			}
			north := d.at(i-1, j) + 1
			west := d.at(i, j-1) + 1
			d.set(i, j, min(north, west))
		}
	}
	return d
}

// spliceOperationsFromEditDistances walks the matrix back from the bottom
// right corner. Ties prefer the diagonal, then the row above, then the
// column to the left.
func spliceOperationsFromEditDistances(d *editDistances) []editOp {
	i := d.rows - 1
	j := d.cols - 1
	current := d.at(i, j)
	var edits []editOp
	for i > 0 || j > 0 {
		if i == 0 {
			edits = append(edits, editAdd)
			j--
			continue
		}
		if j == 0 {
			edits = append(edits, editDelete)
			i--
			continue
		}
		northWest := d.at(i-1, j-1)
		west := d.at(i-1, j)
		north := d.at(i, j-1)

		var minimum int
		if west < north {
			minimum = min(west, northWest)
		} else {
			minimum = min(north, northWest)
		}

		switch minimum {
		case northWest:
			if northWest == current {
				edits = append(edits, editLeave)
			} else {
				edits = append(edits, editUpdate)
				current = northWest
			}
			i--
			j--
		case west:
			edits = append(edits, editDelete)
			i--
			current = west
		default:
			edits = append(edits, editAdd)
			j--
			current = north
		}
	}
	slices.Reverse(edits)
	return edits
}

func intersect(start1, end1, start2, end2 int) int {
	if end1 < start2 || end2 < start1 {
		return -1
	}
	if end1 == start2 || end2 == start1 {
		return 0
	}
	if start1 < start2 {
		if end1 < end2 {
			return end1 - start2
		}
		return end2 - start2
	}
	if end2 < end1 {
		return end2 - start1
	}
	return end1 - start1
}

// MergeSplice folds one more splice into a list of non-overlapping splices
// sorted by index, combining it with every splice it touches. The returned
// list stays sorted and non-overlapping.
func MergeSplice[T any](splices []Splice[T], index int, removed []T, addedCount int) []Splice[T] {
	splice := Splice[T]{Index: index, Removed: removed, AddedCount: addedCount}
	inserted := false
	insertionOffset := 0

	for i := 0; i < len(splices); i++ {
		splices[i].Index += insertionOffset
		if inserted {
			continue
		}
		current := splices[i]

		intersectCount := intersect(splice.Index, splice.Index+len(splice.Removed),
			current.Index, current.Index+current.AddedCount)
		if intersectCount >= 0 {
			splices = slices.Delete(splices, i, i+1)
			i--

			insertionOffset -= current.AddedCount - len(current.Removed)
			splice.AddedCount += current.AddedCount - intersectCount
			deleteCount := len(splice.Removed) + len(current.Removed) - intersectCount

			if splice.AddedCount == 0 && deleteCount == 0 {
				// merged splice is a no-op; discard it
				inserted = true
				continue
			}

			currentRemoved := slices.Clone(current.Removed)
			if splice.Index < current.Index {
				prepend := splice.Removed[:min(current.Index-splice.Index, len(splice.Removed))]
				currentRemoved = append(append(slices.Grow([]T(nil), len(prepend)+len(currentRemoved)), prepend...), currentRemoved...)
			}
			if splice.Index+len(splice.Removed) > current.Index+current.AddedCount {
				appendFrom := current.Index + current.AddedCount - splice.Index
				currentRemoved = append(currentRemoved, splice.Removed[appendFrom:]...)
			}
			splice.Removed = currentRemoved
			if current.Index < splice.Index {
				splice.Index = current.Index
			}
			continue
		}

		if splice.Index < current.Index {
			// insert splice here
			inserted = true
			splices = slices.Insert(splices, i, splice)
			i++
			offset := splice.AddedCount - len(splice.Removed)
			splices[i].Index += offset
			insertionOffset += offset
		}
	}

	if !inserted {
		splices = append(splices, splice)
	}
	return splices
}

// ProjectArraySplices reduces raw array change records to a minimal splice
// list against the array's current contents.
func ProjectArraySplices(array []any, records []ChangeRecord) []Splice[any] {
	var initial []Splice[any]
	for _, r := range records {
		switch r.Type {
		case RecordSplice:
			initial = MergeSplice(initial, r.Index, slices.Clone(r.Removed), r.AddedCount)
		case RecordAdd:
			initial = MergeSplice(initial, r.Index, []any{}, 1)
		case RecordUpdate:
			initial = MergeSplice(initial, r.Index, []any{r.OldValue}, 1)
		case RecordDelete:
			initial = MergeSplice(initial, r.Index, []any{r.OldValue}, 0)
		}
	}

	var splices []Splice[any]
	for _, s := range initial {
		if s.AddedCount == 1 && len(s.Removed) == 1 {
			if s.Index >= len(array) || !StrictEquals(s.Removed[0], array[s.Index]) {
				splices = append(splices, s)
			}
			continue
		}
		splices = append(splices, CalcSplices(array, s.Index, s.Index+s.AddedCount, s.Removed, 0, len(s.Removed), StrictEquals)...)
	}
	return splices
}

// ApplySplices replays splices onto a copy of old, taking inserted items from
// current. Applying the result of CalcSplices(current, ..., old, ...) yields
// a sequence equal to current.
func ApplySplices[T any](old, current []T, splices []Splice[T]) []T {
	out := slices.Clone(old)
	for _, s := range splices {
		added := current[s.Index : s.Index+s.AddedCount]
		out = slices.Replace(out, s.Index, s.Index+len(s.Removed), added...)
	}
	return out
}
