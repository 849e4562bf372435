/*
Package observe provides change observation for dynamically shaped object
graphs.

# Overview

observe is the engine that turns ad-hoc mutation into batched, de-duplicated
notifications. It contains:

  - An observable value model: Object (property bag), Array, Map and Set.
    Go has no open prototypes, so mutation is only visible when it goes
    through these wrapper types.
  - SubscriberCollection, the fan-out primitive every observer embeds.
  - Property observers: SetterObserver, PrimitiveObserver,
    DirtyCheckProperty, ComputedObserver and CollectionLengthObserver.
  - CollectionObserver, which buffers raw change records and reduces them
    to minimal Splice lists at flush time.
  - ObserverLocator, which hands out one shared observer per property.

# Scheduling

Observers never notify synchronously. A write queues the observer with a
TaskQueue at most once per batch; the host drains the queue (see package
taskqueue) and every queued observer notifies its subscribers exactly once
with the oldest old value and the newest new value.

	queue := taskqueue.New()
	locator := observe.NewObserverLocator(queue)

	obj := observe.NewObject()
	obj.Set("foo", 1)

	cancel := observe.Watch(locator.GetObserver(obj, "foo"), func(newValue, oldValue any) {
	    fmt.Println(oldValue, "->", newValue)
	})
	defer cancel()

	obj.Set("foo", 2)
	obj.Set("foo", 3)
	_ = queue.FlushMicroTaskQueue() // prints "1 -> 3"

# Thread Safety

The engine assumes one logical thread of control. The shared snapshot pool
and the locator's attachment tables are guarded by mutexes; everything else
must be driven from a single goroutine.
*/
package observe
