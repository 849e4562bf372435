package binding

import (
	"log/slog"

	"github.com/randalmurphal/exprbind/pkg/exprbind/observability"
	"github.com/randalmurphal/exprbind/pkg/exprbind/observe"
	"github.com/randalmurphal/exprbind/pkg/exprbind/signal"
)

// Subscription contexts a binding uses with its observers.
const (
	SourceContext = "Binding:source"
	TargetContext = "Binding:target"
)

type slot struct {
	observer observe.Subscribable
	version  uint32
}

// Connectable tracks the observers a binding subscribed to during its last
// connect pass. Each pass stamps every observer it touches with the current
// version; Unobserve(false) then drops the ones the pass did not touch.
//
// Freed slots are reused before the table grows. The table has no fixed
// cap; crossing the warning threshold logs once per binding.
type Connectable struct {
	locator    *observe.ObserverLocator
	signals    *signal.Registry
	subscriber observe.Callable
	logger     *slog.Logger
	id         string

	slots     []slot
	count     int
	version   uint32
	threshold int
	warned    bool
}

func newConnectable(host *Host, subscriber observe.Callable, id string) Connectable {
	return Connectable{
		locator:    host.Locator,
		signals:    host.Signals,
		subscriber: subscriber,
		logger:     host.logger(),
		id:         id,
		threshold:  host.slotWarningThreshold(),
	}
}

// ObserveProperty subscribes to obj[propertyName].
func (c *Connectable) ObserveProperty(obj any, propertyName string) {
	c.addObserver(c.locator.GetObserver(obj, propertyName))
}

// ObserveArray subscribes to a collection's mutations. Values that are not
// observable collections are ignored.
func (c *Connectable) ObserveArray(collection any) {
	if obs, ok := c.locator.GetCollectionObserver(collection); ok {
		c.addObserver(obs)
	}
}

// ObserveSignal subscribes to the counter cell of a named signal.
func (c *Connectable) ObserveSignal(name string) {
	if c.signals == nil {
		return
	}
	obj, prop := c.signals.Ensure(name)
	c.ObserveProperty(obj, prop)
}

func (c *Connectable) addObserver(observer observe.Subscribable) {
	i := c.count - 1
	for i >= 0 && c.slots[i].observer != observer {
		i--
	}

	if i == -1 {
		i = 0
		for i < c.count && c.slots[i].observer != nil {
			i++
		}
		if i == len(c.slots) {
			c.slots = append(c.slots, slot{})
		}
		c.slots[i].observer = observer
		observer.Subscribe(SourceContext, c.subscriber)
		if i == c.count {
			c.count = i + 1
			if c.count > c.threshold && !c.warned {
				c.warned = true
				observability.LogSlotPressure(c.logger, c.id, c.count)
			}
		}
	}
	c.slots[i].version = c.version
}

// Unobserve unsubscribes from stale observers, or from every observer when
// all is true.
func (c *Connectable) Unobserve(all bool) {
	for i := 0; i < c.count; i++ {
		s := &c.slots[i]
		if s.observer == nil {
			continue
		}
		if all || s.version != c.version {
			s.observer.Unsubscribe(SourceContext, c.subscriber)
			s.observer = nil
		}
	}
	if all {
		c.count = 0
	}
}

// ObserverCount returns how many observers are currently subscribed.
func (c *Connectable) ObserverCount() int {
	n := 0
	for i := 0; i < c.count; i++ {
		if c.slots[i].observer != nil {
			n++
		}
	}
	return n
}

// nextVersion starts a connect pass.
func (c *Connectable) nextVersion() {
	c.version++
}
