package exprbind

import "errors"

// ErrNilTarget is returned when a binding is created without a target.
var ErrNilTarget = errors.New("binding target is nil")
