package observe

import "time"

// Callable receives change notifications. context identifies which role the
// subscription plays for the receiver, so one receiver can subscribe to many
// observers under different contexts.
type Callable interface {
	Call(context string, newValue, oldValue any)
}

// Subscribable is implemented by every observer.
type Subscribable interface {
	Subscribe(context string, callable Callable)
	Unsubscribe(context string, callable Callable)
}

// PropertyObserver observes a single property of a single object.
type PropertyObserver interface {
	Subscribable
	GetValue() any
	SetValue(value any) error
}

// Task is a unit of work run when the host drains the microtask queue.
type Task interface {
	Flush(flushTime time.Time)
}

// TaskQueue defers observer notification until the host drains it.
type TaskQueue interface {
	QueueMicroTask(task Task)
}

// FrameRequester schedules a callback on the host's next frame.
type FrameRequester interface {
	RequestFrame(callback func(frameStart time.Time))
}

// uncachedObserver marks observers the locator must not cache.
type uncachedObserver interface {
	doNotCache() bool
}

// FuncSubscriber adapts a plain function to Callable. Funcs are not
// comparable in Go, so the pointer is the subscription identity.
type FuncSubscriber struct {
	fn func(newValue, oldValue any)
}

// NewFuncSubscriber wraps fn.
func NewFuncSubscriber(fn func(newValue, oldValue any)) *FuncSubscriber {
	return &FuncSubscriber{fn: fn}
}

// Call implements Callable.
func (f *FuncSubscriber) Call(_ string, newValue, oldValue any) {
	f.fn(newValue, oldValue)
}

// watchContext is the subscription context used by Watch.
const watchContext = "Watch"

// Watch subscribes fn to o and returns a function that cancels the
// subscription.
func Watch(o Subscribable, fn func(newValue, oldValue any)) (cancel func()) {
	sub := NewFuncSubscriber(fn)
	o.Subscribe(watchContext, sub)
	return func() {
		o.Unsubscribe(watchContext, sub)
	}
}
