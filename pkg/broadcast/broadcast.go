package broadcast

import (
	"context"
	"sync"
	"time"
)

// Message wraps one published value. Seq increases by one per publish on
// a given broadcaster, so subscribers can detect dropped messages by
// watching for gaps.
type Message[T any] struct {
	Data      T         `json:"data"`
	Seq       uint64    `json:"seq"`
	Timestamp time.Time `json:"timestamp"`
}

// Subscriber receives messages from a Broadcaster.
// Implementations must be safe for concurrent use.
type Subscriber[T any] interface {
	// Receive returns the channel messages arrive on. The channel is
	// closed once the subscriber or its broadcaster closes. The context
	// lets adapter implementations respect cancellation during blocking
	// setup; the in-memory implementation ignores it.
	Receive(ctx context.Context) <-chan Message[T]

	// Close detaches the subscriber and closes its receive channel.
	// It is idempotent.
	Close() error
}

// Broadcaster fans published values out to every active subscriber.
// Implementations must never let a slow consumer block a publish;
// dropping messages for that consumer is the expected behavior.
type Broadcaster[T any] interface {
	// Subscribe registers a new subscriber. The subscription is torn
	// down automatically when the context is cancelled.
	Subscribe(ctx context.Context) Subscriber[T]

	// Broadcast publishes a value to all active subscribers. It returns
	// ErrClosed after Close; message drops for slow consumers are not
	// errors.
	Broadcast(ctx context.Context, data T) error

	// Close shuts the broadcaster down and closes every subscriber.
	Close() error
}

type subscriber[T any] struct {
	ch     chan Message[T]
	closed bool
	mu     sync.RWMutex
}

func newSubscriber[T any](bufferSize int) *subscriber[T] {
	return &subscriber[T]{
		ch: make(chan Message[T], bufferSize),
	}
}

func (s *subscriber[T]) Receive(ctx context.Context) <-chan Message[T] {
	return s.ch
}

func (s *subscriber[T]) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.closed {
		close(s.ch)
		s.closed = true
	}
	return nil
}

func (s *subscriber[T]) send(msg Message[T]) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return false
	}

	select {
	case s.ch <- msg:
		return true
	default:
		return false
	}
}
