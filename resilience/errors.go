package resilience

import "errors"

// ErrTimeout is returned when an operation is abandoned at its deadline.
var ErrTimeout = errors.New("resilience: operation timed out")
