package observe

import "time"

// SetterObserver intercepts writes to one Object property. The first
// subscription converts the property into an accessor; from then on every
// write that changes the value queues one coalesced notification.
type SetterObserver struct {
	SubscriberCollection

	taskQueue    TaskQueue
	obj          *Object
	propertyName string

	observing    bool
	queued       bool
	currentValue any
	oldValue     any
}

// NewSetterObserver creates an observer for obj[propertyName].
func NewSetterObserver(taskQueue TaskQueue, obj *Object, propertyName string) *SetterObserver {
	return &SetterObserver{
		taskQueue:    taskQueue,
		obj:          obj,
		propertyName: propertyName,
	}
}

// GetValue returns the current value of the property.
func (o *SetterObserver) GetValue() any {
	return o.obj.Get(o.propertyName)
}

// SetValue writes the property.
func (o *SetterObserver) SetValue(value any) error {
	o.obj.Set(o.propertyName, value)
	return nil
}

func (o *SetterObserver) getValue() any {
	return o.currentValue
}

func (o *SetterObserver) setValue(newValue any) {
	oldValue := o.currentValue
	if StrictEquals(oldValue, newValue) {
		return
	}
	if !o.queued {
		o.oldValue = oldValue
		o.queued = true
		o.taskQueue.QueueMicroTask(o)
	}
	o.currentValue = newValue
}

// Flush delivers the pending notification with the value held when the
// batch started as the old value.
func (o *SetterObserver) Flush(time.Time) {
	oldValue := o.oldValue
	newValue := o.currentValue
	o.queued = false
	o.oldValue = nil
	o.CallSubscribers(newValue, oldValue)
}

// Subscribe implements Subscribable.
func (o *SetterObserver) Subscribe(context string, callable Callable) {
	if !o.observing {
		o.convertProperty()
	}
	o.AddSubscriber(context, callable)
}

// Unsubscribe implements Subscribable.
func (o *SetterObserver) Unsubscribe(context string, callable Callable) {
	o.RemoveSubscriber(context, callable)
}

func (o *SetterObserver) convertProperty() {
	o.observing = true
	o.currentValue = o.obj.Get(o.propertyName)
	o.obj.defineAccessor(o.propertyName, o)
}
