package asyncqueue

import (
	"context"
	"log/slog"
	"time"

	"github.com/dmitrymomot/pacer/pkg/metrics"
	"github.com/dmitrymomot/pacer/pkg/queue"
)

// Option is a functional option for configuring an AsyncQueuer
type Option[T, R any] func(*options[T, R])

type options[T, R any] struct {
	name         string
	maxSize      int
	concurrency  int
	wait         time.Duration
	started      bool
	position     queue.Position
	priority     func(T) int
	expiration   time.Duration
	initialItems []T
	throwOnError bool

	onSuccess     func(R, queue.Item[T], *AsyncQueuer[T, R])
	onError       func(error, queue.Item[T], *AsyncQueuer[T, R])
	onSettled     func(queue.Item[T], *AsyncQueuer[T, R])
	onExpire      func(queue.Item[T], *AsyncQueuer[T, R])
	onReject      func(queue.Item[T], *AsyncQueuer[T, R])
	onItemsChange func(*AsyncQueuer[T, R])
	publishers    []func(State[T])

	baseCtx context.Context
	clock   queue.Clock
	logger  *slog.Logger
	metrics metrics.Writer

	envErr error
}

func defaultOptions[T, R any]() *options[T, R] {
	return &options[T, R]{
		name:        queue.DefaultQueueName,
		concurrency: 1,
		started:     true,
		position:    queue.Back,
		baseCtx:     context.Background(),
		clock:       queue.SystemClock(),
		logger:      slog.Default(),
		metrics:     metrics.Nop{},
	}
}

// WithName sets the queue name used in logs and metrics
func WithName[T, R any](name string) Option[T, R] {
	return func(o *options[T, R]) {
		if name != "" {
			o.name = name
		}
	}
}

// WithMaxSize bounds the pending queue; items added beyond the bound are
// rejected. Zero (the default) means unbounded.
func WithMaxSize[T, R any](n int) Option[T, R] {
	return func(o *options[T, R]) {
		o.maxSize = n
	}
}

// WithConcurrency sets how many tasks may be in flight simultaneously.
// Defaults to 1. It bounds the simultaneous count only; use WithWait to
// throttle the launch rate.
func WithConcurrency[T, R any](n int) Option[T, R] {
	return func(o *options[T, R]) {
		o.concurrency = n
	}
}

// WithWait enforces a minimum spacing between successive task launches.
// It throttles the admission rate and is independent of the concurrency
// bound. Defaults to zero, launching as fast as slots free up.
func WithWait[T, R any](d time.Duration) Option[T, R] {
	return func(o *options[T, R]) {
		o.wait = d
	}
}

// WithStarted controls whether the scheduler begins admitting work at
// construction. Defaults to true; pass false to defer to an explicit Start.
func WithStarted[T, R any](started bool) Option[T, R] {
	return func(o *options[T, R]) {
		o.started = started
	}
}

// WithAddItemsTo sets the default insertion end for AddItem. The removal
// end is fixed at the front, so Back (the default) gives FIFO admission
// and Front gives LIFO admission.
func WithAddItemsTo[T, R any](p queue.Position) Option[T, R] {
	return func(o *options[T, R]) {
		o.position = p
	}
}

// WithPriority supplies a priority selector evaluated once per item at
// insertion. Higher values are admitted first; ties drain in insertion
// order. A selector overrides positional ordering.
func WithPriority[T, R any](fn func(T) int) Option[T, R] {
	return func(o *options[T, R]) {
		o.priority = fn
	}
}

// WithExpiration gives queued items a deadline of insertion time plus d.
// Items past their deadline are swept before admission and never reach
// the handler.
func WithExpiration[T, R any](d time.Duration) Option[T, R] {
	return func(o *options[T, R]) {
		o.expiration = d
	}
}

// WithInitialItems seeds the queue at construction, subject to the same
// capacity and ordering rules as AddItem.
func WithInitialItems[T, R any](items ...T) Option[T, R] {
	return func(o *options[T, R]) {
		o.initialItems = append(o.initialItems, items...)
	}
}

// WithThrowOnError makes task errors additionally surface from an
// awaited Drain call, joined with errors.Join. Without it task errors
// are reported only through the error callback and counters.
func WithThrowOnError[T, R any]() Option[T, R] {
	return func(o *options[T, R]) {
		o.throwOnError = true
	}
}

// WithOnSuccess registers a callback fired after a task settles
// successfully, in actual completion order.
func WithOnSuccess[T, R any](fn func(result R, item queue.Item[T], q *AsyncQueuer[T, R])) Option[T, R] {
	return func(o *options[T, R]) {
		o.onSuccess = fn
	}
}

// WithOnError registers a callback fired after a task settles with an
// error, in actual completion order. A failing task never halts the
// scheduler; it is counted as settled and its slot is refilled.
func WithOnError[T, R any](fn func(err error, item queue.Item[T], q *AsyncQueuer[T, R])) Option[T, R] {
	return func(o *options[T, R]) {
		o.onError = fn
	}
}

// WithOnSettled registers a callback fired exactly once per task after
// either outcome, following the success or error callback.
func WithOnSettled[T, R any](fn func(item queue.Item[T], q *AsyncQueuer[T, R])) Option[T, R] {
	return func(o *options[T, R]) {
		o.onSettled = fn
	}
}

// WithOnExpire registers a callback fired once for every item dropped by
// the expiration sweep.
func WithOnExpire[T, R any](fn func(item queue.Item[T], q *AsyncQueuer[T, R])) Option[T, R] {
	return func(o *options[T, R]) {
		o.onExpire = fn
	}
}

// WithOnReject registers a callback fired once for every item refused
// because the queue was at capacity.
func WithOnReject[T, R any](fn func(item queue.Item[T], q *AsyncQueuer[T, R])) Option[T, R] {
	return func(o *options[T, R]) {
		o.onReject = fn
	}
}

// WithOnItemsChange registers a callback fired after every mutating
// operation, once the updated state has been published.
func WithOnItemsChange[T, R any](fn func(q *AsyncQueuer[T, R])) Option[T, R] {
	return func(o *options[T, R]) {
		o.onItemsChange = fn
	}
}

// WithStatePublisher registers a hook receiving an immutable state
// snapshot after every mutation. This is the integration point for
// reactive stores such as the broadcast package.
func WithStatePublisher[T, R any](fn func(State[T])) Option[T, R] {
	return func(o *options[T, R]) {
		if fn != nil {
			o.publishers = append(o.publishers, fn)
		}
	}
}

// WithBaseContext sets the context handlers receive. Stopping the
// scheduler never cancels it; cancel it yourself to ask in-flight
// handlers to wind down cooperatively.
func WithBaseContext[T, R any](ctx context.Context) Option[T, R] {
	return func(o *options[T, R]) {
		if ctx != nil {
			o.baseCtx = ctx
		}
	}
}

// WithClock sets the time source for insertion timestamps and expiration
// sweeps. Launch spacing always runs on the wall clock.
func WithClock[T, R any](clock queue.Clock) Option[T, R] {
	return func(o *options[T, R]) {
		if clock != nil {
			o.clock = clock
		}
	}
}

// WithLogger sets the logger for the scheduler
func WithLogger[T, R any](logger *slog.Logger) Option[T, R] {
	return func(o *options[T, R]) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithMetrics sets the metrics writer for the scheduler
func WithMetrics[T, R any](w metrics.Writer) Option[T, R] {
	return func(o *options[T, R]) {
		if w != nil {
			o.metrics = w
		}
	}
}
