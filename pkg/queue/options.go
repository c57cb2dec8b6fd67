package queue

import "time"

// Option is a functional option for configuring a Queue
type Option[T any] func(*config[T])

type config[T any] struct {
	capacity   int
	position   Position
	priority   func(T) int
	expiration time.Duration
	onExpire   func(Item[T])
	onReject   func(Item[T])
	clock      Clock
}

// WithCapacity bounds the queue size. Zero (the default) means unbounded.
// Enqueue calls against a full queue are rejected without mutation.
func WithCapacity[T any](n int) Option[T] {
	return func(c *config[T]) {
		c.capacity = n
	}
}

// WithInsertPosition sets the default insertion end for Enqueue.
// The removal end is fixed at the front, so Back (the default) gives
// FIFO ordering and Front gives LIFO ordering.
func WithInsertPosition[T any](p Position) Option[T] {
	return func(c *config[T]) {
		c.position = p
	}
}

// WithPriority supplies a priority selector evaluated once per item at
// insertion time. Higher values drain first; equal values drain in
// insertion order. Setting a selector overrides positional ordering.
func WithPriority[T any](fn func(T) int) Option[T] {
	return func(c *config[T]) {
		c.priority = fn
	}
}

// WithExpiration gives every item a deadline of insertion time plus d.
// Expired items are swept on every queue operation and never delivered.
func WithExpiration[T any](d time.Duration) Option[T] {
	return func(c *config[T]) {
		c.expiration = d
	}
}

// WithOnExpire registers a callback fired once for every item dropped by
// the expiration sweep.
func WithOnExpire[T any](fn func(Item[T])) Option[T] {
	return func(c *config[T]) {
		c.onExpire = fn
	}
}

// WithOnReject registers a callback fired once for every item refused
// because the queue was at capacity.
func WithOnReject[T any](fn func(Item[T])) Option[T] {
	return func(c *config[T]) {
		c.onReject = fn
	}
}

// WithClock sets the time source used for insertion timestamps and
// expiration sweeps. Defaults to the system clock.
func WithClock[T any](clock Clock) Option[T] {
	return func(c *config[T]) {
		if clock != nil {
			c.clock = clock
		}
	}
}
