package observe

import (
	"fmt"
	"slices"
	"time"
)

// CollectionKind identifies the collection a CollectionObserver watches.
type CollectionKind int

// Collection kinds.
const (
	KindArray CollectionKind = iota
	KindMap
	KindSet
)

func (k CollectionKind) String() string {
	switch k {
	case KindArray:
		return "array"
	case KindMap:
		return "map"
	case KindSet:
		return "set"
	}
	return fmt.Sprintf("CollectionKind(%d)", int(k))
}

// sizedCollection is implemented by Array, Map and Set.
type sizedCollection interface {
	Len() int
}

// CollectionObserver buffers change records for one collection and delivers
// them once per batch.
//
// Array subscribers receive a []Splice[any] reduced with
// ProjectArraySplices (or CalcSplices after a Reset). Map and Set
// subscribers receive the raw []ChangeRecord.
type CollectionObserver struct {
	SubscriberCollection

	taskQueue  TaskQueue
	collection sizedCollection
	kind       CollectionKind

	queued         bool
	changeRecords  []ChangeRecord
	oldCollection  []any
	lengthObserver *CollectionLengthObserver
}

func newCollectionObserver(taskQueue TaskQueue, collection sizedCollection, kind CollectionKind) *CollectionObserver {
	return &CollectionObserver{taskQueue: taskQueue, collection: collection, kind: kind}
}

// Kind returns the kind of collection observed.
func (o *CollectionObserver) Kind() CollectionKind {
	return o.kind
}

// Subscribe implements Subscribable.
func (o *CollectionObserver) Subscribe(context string, callable Callable) {
	o.AddSubscriber(context, callable)
}

// Unsubscribe implements Subscribable.
func (o *CollectionObserver) Unsubscribe(context string, callable Callable) {
	o.RemoveSubscriber(context, callable)
}

func (o *CollectionObserver) interested() bool {
	return o.HasSubscribers() || o.lengthObserver != nil
}

func (o *CollectionObserver) queue() {
	if !o.queued {
		o.queued = true
		o.taskQueue.QueueMicroTask(o)
	}
}

// AddChangeRecord buffers a record. Records are dropped while nothing
// observes the collection. A negative array index counts from the end.
func (o *CollectionObserver) AddChangeRecord(record ChangeRecord) {
	if !o.interested() {
		return
	}
	if o.kind == KindArray && (record.Type == RecordSplice || record.Type == RecordUpdate || record.Type == RecordDelete) {
		index := record.Index
		if index < 0 {
			index += o.collection.Len() + len(record.Removed) - record.AddedCount
			if index < 0 {
				index = 0
			}
		}
		record.Index = index
	}

	if len(o.changeRecords) == 0 && o.oldCollection == nil {
		o.changeRecords = []ChangeRecord{record}
	} else if o.oldCollection == nil {
		o.changeRecords = append(o.changeRecords, record)
	}
	o.queue()
}

// FlushChangeRecords delivers pending records now, if there are any.
func (o *CollectionObserver) FlushChangeRecords() {
	if len(o.changeRecords) > 0 || o.oldCollection != nil {
		o.Flush(time.Time{})
	}
}

// Reset discards buffered records and diffs the collection against
// oldCollection at flush time.
func (o *CollectionObserver) Reset(oldCollection []any) {
	o.oldCollection = slices.Clone(oldCollection)
	if o.oldCollection == nil {
		o.oldCollection = []any{}
	}
	o.changeRecords = nil
	if o.interested() {
		o.queue()
	}
}

// LengthObserver returns the observer for the collection's length (arrays)
// or size (maps and sets), creating it on first use.
func (o *CollectionObserver) LengthObserver() *CollectionLengthObserver {
	if o.lengthObserver == nil {
		o.lengthObserver = newCollectionLengthObserver(o.collection)
		o.lengthObserver.pool = o.pool
	}
	return o.lengthObserver
}

// Flush implements Task.
func (o *CollectionObserver) Flush(time.Time) {
	records := o.changeRecords
	oldCollection := o.oldCollection
	o.queued = false
	o.changeRecords = nil
	o.oldCollection = nil

	if o.HasSubscribers() && (len(records) > 0 || oldCollection != nil) {
		switch {
		case o.kind == KindArray && oldCollection != nil:
			items := o.collection.(*Array).items
			o.CallSubscribers(CalcSplices(items, 0, len(items), oldCollection, 0, len(oldCollection), StrictEquals), nil)
		case o.kind == KindArray:
			o.CallSubscribers(ProjectArraySplices(o.collection.(*Array).items, records), nil)
		default:
			o.CallSubscribers(records, nil)
		}
	}

	if o.lengthObserver != nil {
		o.lengthObserver.notify(o.collection.Len())
	}
}

// CollectionLengthObserver observes an array's length or a map's or set's
// size. It notifies after the owning collection observer flushes, and only
// when the value changed.
type CollectionLengthObserver struct {
	SubscriberCollection

	collection   sizedCollection
	currentValue int
}

func newCollectionLengthObserver(collection sizedCollection) *CollectionLengthObserver {
	return &CollectionLengthObserver{collection: collection, currentValue: collection.Len()}
}

// GetValue returns the current length.
func (o *CollectionLengthObserver) GetValue() any {
	return o.collection.Len()
}

// SetValue truncates or extends an array. Map and set sizes are read-only.
func (o *CollectionLengthObserver) SetValue(value any) error {
	arr, ok := o.collection.(*Array)
	if !ok {
		return fmt.Errorf("%w: size", ErrPropertyNotWritable)
	}
	return SetProperty(arr, "length", value)
}

// Subscribe implements Subscribable.
func (o *CollectionLengthObserver) Subscribe(context string, callable Callable) {
	o.AddSubscriber(context, callable)
}

// Unsubscribe implements Subscribable.
func (o *CollectionLengthObserver) Unsubscribe(context string, callable Callable) {
	o.RemoveSubscriber(context, callable)
}

func (o *CollectionLengthObserver) notify(newValue int) {
	oldValue := o.currentValue
	if oldValue == newValue {
		return
	}
	o.currentValue = newValue
	o.CallSubscribers(newValue, oldValue)
}
