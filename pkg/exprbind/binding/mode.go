package binding

import (
	"fmt"
	"strings"
)

// Mode is the direction values flow through a binding.
type Mode int

// Binding modes.
const (
	// OneTime evaluates once on bind and never observes.
	OneTime Mode = iota
	// ToView pushes source changes to the target.
	ToView
	// FromView pushes target changes to the source.
	FromView
	// TwoWay does both.
	TwoWay
)

// String returns the mode's name as written in markup.
func (m Mode) String() string {
	switch m {
	case OneTime:
		return "oneTime"
	case ToView:
		return "toView"
	case FromView:
		return "fromView"
	case TwoWay:
		return "twoWay"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// ParseMode parses a mode name, ignoring case. "oneWay" is accepted as
// ToView.
func ParseMode(name string) (Mode, error) {
	switch strings.ToLower(name) {
	case "onetime":
		return OneTime, nil
	case "toview", "oneway":
		return ToView, nil
	case "fromview":
		return FromView, nil
	case "twoway":
		return TwoWay, nil
	}
	return 0, fmt.Errorf("unknown binding mode %q", name)
}
