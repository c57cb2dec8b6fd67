package queue

import "errors"

// Common errors
var (
	// ErrInvalidCapacity is returned when a negative capacity is configured
	ErrInvalidCapacity = errors.New("queue capacity cannot be negative")

	// ErrInvalidExpiration is returned when a negative expiration duration is configured
	ErrInvalidExpiration = errors.New("item expiration duration cannot be negative")

	// ErrInvalidPosition is returned when an unrecognized insertion position is configured
	ErrInvalidPosition = errors.New("insertion position must be front or back")
)
