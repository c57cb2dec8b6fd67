package asyncqueue

import "errors"

// Common errors
var (
	// ErrNilHandler is returned when a nil handler is provided
	ErrNilHandler = errors.New("handler cannot be nil")

	// ErrInvalidConcurrency is returned when concurrency is below one
	ErrInvalidConcurrency = errors.New("concurrency must be at least 1")

	// ErrInvalidWait is returned when a negative launch spacing is configured
	ErrInvalidWait = errors.New("wait duration cannot be negative")

	// ErrQueueEmpty is returned by Execute when there is nothing to run
	ErrQueueEmpty = errors.New("queue is empty")

	// ErrEnvConfig is returned when environment-derived defaults cannot be loaded
	ErrEnvConfig = errors.New("failed to load queue configuration from environment")
)
