package queuer

import (
	"log/slog"
	"time"

	"github.com/dmitrymomot/pacer/pkg/metrics"
	"github.com/dmitrymomot/pacer/pkg/queue"
)

// Option is a functional option for configuring a Queuer
type Option[T any] func(*options[T])

type options[T any] struct {
	name         string
	maxSize      int
	wait         time.Duration
	started      bool
	position     queue.Position
	priority     func(T) int
	expiration   time.Duration
	initialItems []T

	onExpire      func(queue.Item[T], *Queuer[T])
	onReject      func(queue.Item[T], *Queuer[T])
	onItemsChange func(*Queuer[T])
	publishers    []func(State[T])

	clock   queue.Clock
	logger  *slog.Logger
	metrics metrics.Writer
}

func defaultOptions[T any]() *options[T] {
	return &options[T]{
		name:     queue.DefaultQueueName,
		started:  true,
		position: queue.Back,
		clock:    queue.SystemClock(),
		logger:   slog.Default(),
		metrics:  metrics.Nop{},
	}
}

// WithName sets the queue name used in logs and metrics
func WithName[T any](name string) Option[T] {
	return func(o *options[T]) {
		if name != "" {
			o.name = name
		}
	}
}

// WithMaxSize bounds the queue; items added beyond the bound are
// rejected. Zero (the default) means unbounded.
func WithMaxSize[T any](n int) Option[T] {
	return func(o *options[T]) {
		o.maxSize = n
	}
}

// WithWait sets the tick period: the minimum spacing between successive
// handler invocations. Defaults to zero, draining as fast as items are
// available.
func WithWait[T any](d time.Duration) Option[T] {
	return func(o *options[T]) {
		o.wait = d
	}
}

// WithStarted controls whether the tick loop is armed at construction.
// Defaults to true; pass false to defer to an explicit Start.
func WithStarted[T any](started bool) Option[T] {
	return func(o *options[T]) {
		o.started = started
	}
}

// WithAddItemsTo sets the default insertion end for AddItem. The removal
// end is fixed at the front, so Back (the default) gives FIFO draining
// and Front gives LIFO draining.
func WithAddItemsTo[T any](p queue.Position) Option[T] {
	return func(o *options[T]) {
		o.position = p
	}
}

// WithPriority supplies a priority selector evaluated once per item at
// insertion. Higher values drain first; ties drain in insertion order.
// A selector overrides positional ordering.
func WithPriority[T any](fn func(T) int) Option[T] {
	return func(o *options[T]) {
		o.priority = fn
	}
}

// WithExpiration gives queued items a deadline of insertion time plus d.
// Items past their deadline are swept before draining and never reach
// the handler.
func WithExpiration[T any](d time.Duration) Option[T] {
	return func(o *options[T]) {
		o.expiration = d
	}
}

// WithInitialItems seeds the queue at construction, subject to the same
// capacity and ordering rules as AddItem.
func WithInitialItems[T any](items ...T) Option[T] {
	return func(o *options[T]) {
		o.initialItems = append(o.initialItems, items...)
	}
}

// WithOnExpire registers a callback fired once for every item dropped by
// the expiration sweep.
func WithOnExpire[T any](fn func(item queue.Item[T], q *Queuer[T])) Option[T] {
	return func(o *options[T]) {
		o.onExpire = fn
	}
}

// WithOnReject registers a callback fired once for every item refused
// because the queue was at capacity.
func WithOnReject[T any](fn func(item queue.Item[T], q *Queuer[T])) Option[T] {
	return func(o *options[T]) {
		o.onReject = fn
	}
}

// WithOnItemsChange registers a callback fired after every mutating
// operation, once the updated state has been published.
func WithOnItemsChange[T any](fn func(q *Queuer[T])) Option[T] {
	return func(o *options[T]) {
		o.onItemsChange = fn
	}
}

// WithStatePublisher registers a hook receiving an immutable state
// snapshot after every mutation. This is the integration point for
// reactive stores such as the broadcast package.
func WithStatePublisher[T any](fn func(State[T])) Option[T] {
	return func(o *options[T]) {
		if fn != nil {
			o.publishers = append(o.publishers, fn)
		}
	}
}

// WithClock sets the time source for expiration sweeps.
func WithClock[T any](clock queue.Clock) Option[T] {
	return func(o *options[T]) {
		if clock != nil {
			o.clock = clock
		}
	}
}

// WithLogger sets the logger for the scheduler
func WithLogger[T any](logger *slog.Logger) Option[T] {
	return func(o *options[T]) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithMetrics sets the metrics writer for the scheduler
func WithMetrics[T any](w metrics.Writer) Option[T] {
	return func(o *options[T]) {
		if w != nil {
			o.metrics = w
		}
	}
}
