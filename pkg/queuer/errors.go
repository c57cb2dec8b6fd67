package queuer

import "errors"

// Common errors
var (
	// ErrNilHandler is returned when a nil handler is provided
	ErrNilHandler = errors.New("handler cannot be nil")

	// ErrInvalidWait is returned when a negative tick period is configured
	ErrInvalidWait = errors.New("wait duration cannot be negative")
)
