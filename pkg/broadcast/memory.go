package broadcast

import (
	"context"
	"sync"
	"time"
)

// Option configures a MemoryBroadcaster.
type Option func(*memoryOptions)

type memoryOptions struct {
	bufferSize   int
	replayLatest bool
}

// WithBufferSize sets the per-subscriber channel buffer. A minimum of 1
// is enforced; a zero buffer would make every send blocking and defeat
// the drop-on-full design.
func WithBufferSize(n int) Option {
	return func(o *memoryOptions) {
		o.bufferSize = n
	}
}

// WithReplayLatest delivers the most recently broadcast message to every
// new subscriber immediately on Subscribe, so late joiners start from
// the current state instead of waiting for the next publish.
func WithReplayLatest() Option {
	return func(o *memoryOptions) {
		o.replayLatest = true
	}
}

// MemoryBroadcaster is an in-process Broadcaster. Publishes never block:
// when a subscriber's buffer is full the message is dropped for that
// subscriber and it is detached. All methods are safe for concurrent
// use.
type MemoryBroadcaster[T any] struct {
	subscribers  map[*subscriber[T]]struct{}
	bufferSize   int
	replayLatest bool
	latest       *Message[T]
	seq          uint64
	closed       bool
	mu           sync.RWMutex
	cleanupWg    sync.WaitGroup
}

// NewMemoryBroadcaster creates an in-memory broadcaster. The default
// per-subscriber buffer holds one message; raise it with WithBufferSize
// when consumers may briefly fall behind bursts of publishes.
func NewMemoryBroadcaster[T any](opts ...Option) *MemoryBroadcaster[T] {
	o := &memoryOptions{bufferSize: 1}
	for _, opt := range opts {
		opt(o)
	}

	return &MemoryBroadcaster[T]{
		subscribers:  make(map[*subscriber[T]]struct{}),
		bufferSize:   max(o.bufferSize, 1),
		replayLatest: o.replayLatest,
	}
}

// Subscribe registers a new subscriber, torn down automatically when the
// context is cancelled. With WithReplayLatest configured the latest
// message, if any, is delivered before anything newly published. On a
// closed broadcaster it returns an already-closed subscriber.
func (b *MemoryBroadcaster[T]) Subscribe(ctx context.Context) Subscriber[T] {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		sub := newSubscriber[T](b.bufferSize)
		_ = sub.Close()
		return sub
	}

	sub := newSubscriber[T](b.bufferSize)
	if b.replayLatest && b.latest != nil {
		sub.send(*b.latest)
	}
	b.subscribers[sub] = struct{}{}

	if ctx.Done() != nil {
		b.cleanupWg.Add(1)
		go func() {
			defer b.cleanupWg.Done()
			<-ctx.Done()
			b.unsubscribe(sub)
		}()
	}

	return sub
}

// Broadcast publishes a value to all active subscribers, stamping it
// with the next sequence number. Sends are non-blocking: a subscriber
// whose buffer is full misses this message and is detached.
func (b *MemoryBroadcaster[T]) Broadcast(ctx context.Context, data T) error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return ErrClosed
	}

	b.seq++
	msg := Message[T]{
		Data:      data,
		Seq:       b.seq,
		Timestamp: time.Now(),
	}
	if b.replayLatest {
		b.latest = &msg
	}

	for sub := range b.subscribers {
		if !sub.send(msg) {
			// Detach asynchronously so a slow consumer costs this
			// publish nothing beyond the failed send.
			go b.unsubscribe(sub)
		}
	}
	b.mu.Unlock()

	return nil
}

// Close shuts the broadcaster down and closes every subscriber. It is
// idempotent; after Close, Broadcast returns ErrClosed and Subscribe
// hands out closed subscribers.
func (b *MemoryBroadcaster[T]) Close() error {
	b.mu.Lock()

	if b.closed {
		b.mu.Unlock()
		return nil
	}

	b.closed = true
	for sub := range b.subscribers {
		_ = sub.Close()
	}
	clear(b.subscribers)
	b.mu.Unlock()

	// Cleanup goroutines from Subscribe hold references to subscribers;
	// waiting here keeps Close-then-reuse races out of callers.
	b.cleanupWg.Wait()

	return nil
}

func (b *MemoryBroadcaster[T]) unsubscribe(sub *subscriber[T]) {
	b.mu.Lock()
	defer b.mu.Unlock()

	delete(b.subscribers, sub)
	_ = sub.Close()
}
