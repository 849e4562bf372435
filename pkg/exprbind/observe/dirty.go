package observe

import (
	"slices"
	"time"
)

// DefaultDirtyCheckDelay is how long the checker waits between passes.
const DefaultDirtyCheckDelay = 120 * time.Millisecond

// DirtyChecker polls properties whose writes cannot be intercepted. It runs
// a pass every CheckDelay while at least one property is tracked.
type DirtyChecker struct {
	frames     FrameRequester
	checkDelay time.Duration

	tracked   []*DirtyCheckProperty
	scheduled bool
	due       time.Time
}

// NewDirtyChecker creates a checker driven by frames. A non-positive delay
// selects DefaultDirtyCheckDelay.
func NewDirtyChecker(frames FrameRequester, delay time.Duration) *DirtyChecker {
	if delay <= 0 {
		delay = DefaultDirtyCheckDelay
	}
	return &DirtyChecker{frames: frames, checkDelay: delay}
}

// Tracked returns the number of properties being polled.
func (d *DirtyChecker) Tracked() int {
	return len(d.tracked)
}

func (d *DirtyChecker) addProperty(p *DirtyCheckProperty) {
	d.tracked = append(d.tracked, p)
	if len(d.tracked) == 1 {
		d.schedule()
	}
}

func (d *DirtyChecker) removeProperty(p *DirtyCheckProperty) {
	d.tracked = slices.DeleteFunc(d.tracked, func(t *DirtyCheckProperty) bool { return t == p })
}

func (d *DirtyChecker) schedule() {
	if d.scheduled || d.frames == nil {
		return
	}
	d.scheduled = true
	d.frames.RequestFrame(d.onFrame)
}

func (d *DirtyChecker) onFrame(frameStart time.Time) {
	d.scheduled = false
	if len(d.tracked) == 0 {
		d.due = time.Time{}
		return
	}
	if d.due.IsZero() {
		d.due = frameStart.Add(d.checkDelay)
	}
	if frameStart.Before(d.due) {
		d.schedule()
		return
	}
	d.due = time.Time{}
	d.Check()
	if len(d.tracked) > 0 {
		d.schedule()
	}
}

// Check runs one pass immediately, notifying every property whose value
// changed since the previous pass.
func (d *DirtyChecker) Check() {
	for i := len(d.tracked) - 1; i >= 0; i-- {
		if i >= len(d.tracked) {
			continue
		}
		if p := d.tracked[i]; p.isDirty() {
			p.notify()
		}
	}
}

// DirtyCheckProperty observes a property by polling it.
type DirtyCheckProperty struct {
	SubscriberCollection

	checker      *DirtyChecker
	obj          any
	propertyName string
	oldValue     any
	onIdle       func()
}

// NewDirtyCheckProperty creates a polled observer for obj[propertyName].
func NewDirtyCheckProperty(checker *DirtyChecker, obj any, propertyName string) *DirtyCheckProperty {
	return &DirtyCheckProperty{checker: checker, obj: obj, propertyName: propertyName}
}

// GetValue reads the property.
func (p *DirtyCheckProperty) GetValue() any {
	return GetProperty(p.obj, p.propertyName)
}

// SetValue writes the property.
func (p *DirtyCheckProperty) SetValue(value any) error {
	return SetProperty(p.obj, p.propertyName, value)
}

func (p *DirtyCheckProperty) isDirty() bool {
	return !StrictEquals(p.oldValue, p.GetValue())
}

func (p *DirtyCheckProperty) notify() {
	oldValue := p.oldValue
	newValue := p.GetValue()
	p.oldValue = newValue
	p.CallSubscribers(newValue, oldValue)
}

// Subscribe implements Subscribable. The first subscription starts polling.
func (p *DirtyCheckProperty) Subscribe(context string, callable Callable) {
	if !p.HasSubscribers() {
		p.oldValue = p.GetValue()
		p.checker.addProperty(p)
	}
	p.AddSubscriber(context, callable)
}

// Unsubscribe implements Subscribable. The last unsubscription stops
// polling.
func (p *DirtyCheckProperty) Unsubscribe(context string, callable Callable) {
	if p.RemoveSubscriber(context, callable) && !p.HasSubscribers() {
		p.checker.removeProperty(p)
		if p.onIdle != nil {
			p.onIdle()
		}
	}
}
