package broadcast

import "errors"

// Common errors
var (
	// ErrClosed is returned when broadcasting on a closed broadcaster
	ErrClosed = errors.New("broadcaster is closed")
)
