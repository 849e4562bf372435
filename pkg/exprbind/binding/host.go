package binding

import (
	"log/slog"

	"github.com/randalmurphal/exprbind/pkg/exprbind/expr"
	"github.com/randalmurphal/exprbind/pkg/exprbind/observe"
	"github.com/randalmurphal/exprbind/pkg/exprbind/signal"
)

// DefaultSlotWarningThreshold is the observed-value count past which a
// binding logs a warning.
const DefaultSlotWarningThreshold = 100

// Host is the shared state every binding of one engine uses. Build it once
// and pass the same pointer to every binding.
type Host struct {
	// Locator resolves property and collection observers. Required.
	Locator *observe.ObserverLocator

	// ConnectQueue throttles the initial connect of ToView bindings. When
	// nil they connect immediately.
	ConnectQueue *ConnectQueue

	// Signals backs ObserveSignal. When nil signals are ignored.
	Signals *signal.Registry

	// Lookups resolves value converters and binding behaviors.
	Lookups expr.LookupFunctions

	// Logger defaults to slog.Default().
	Logger *slog.Logger

	// SlotWarningThreshold defaults to DefaultSlotWarningThreshold.
	SlotWarningThreshold int
}

func (h *Host) logger() *slog.Logger {
	if h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

func (h *Host) slotWarningThreshold() int {
	if h.SlotWarningThreshold > 0 {
		return h.SlotWarningThreshold
	}
	return DefaultSlotWarningThreshold
}

// noLookups resolves nothing.
type noLookups struct{}

func (noLookups) ValueConverter(string) (expr.Converter, bool) { return nil, false }
func (noLookups) BindingBehavior(string) (expr.Behavior, bool) { return nil, false }

func (h *Host) lookups() expr.LookupFunctions {
	if h.Lookups != nil {
		return h.Lookups
	}
	return noLookups{}
}
