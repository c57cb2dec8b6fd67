package queue

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Queue is an ordered container of items with a bounded capacity, a
// configurable insertion end, optional priority ordering, and optional
// per-item expiration. It is safe for concurrent use.
//
// The zero value is not usable; construct instances with New.
type Queue[T any] struct {
	mu    sync.Mutex
	items []Item[T]
	seq   uint64

	rejectionCount  uint64
	expirationCount uint64

	capacity   int
	position   Position
	priority   func(T) int
	expiration time.Duration
	onExpire   func(Item[T])
	onReject   func(Item[T])
	clock      Clock
}

// New creates a queue configured by the supplied options.
func New[T any](opts ...Option[T]) (*Queue[T], error) {
	cfg := &config[T]{
		position: Back,
		clock:    SystemClock(),
	}
	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.capacity < 0 {
		return nil, ErrInvalidCapacity
	}
	if cfg.expiration < 0 {
		return nil, ErrInvalidExpiration
	}
	if !cfg.position.Valid() {
		return nil, ErrInvalidPosition
	}

	return &Queue[T]{
		capacity:   cfg.capacity,
		position:   cfg.position,
		priority:   cfg.priority,
		expiration: cfg.expiration,
		onExpire:   cfg.onExpire,
		onReject:   cfg.onReject,
		clock:      cfg.clock,
	}, nil
}

// Enqueue wraps the value in an Item and inserts it. The optional
// position overrides the configured insertion end for this call; when a
// priority selector is configured the position is ignored and the item
// is placed by binary search against existing priorities, ties resolved
// in insertion order.
//
// Enqueue returns false, without mutating the queue, when the capacity
// bound is reached; the reject callback fires and the rejection counter
// increments. A full queue never causes a panic.
func (q *Queue[T]) Enqueue(value T, position ...Position) bool {
	q.mu.Lock()
	expired := q.sweepLocked()

	now := q.clock.Now()
	it := Item[T]{
		ID:      uuid.New(),
		Value:   value,
		AddedAt: now,
		seq:     q.seq,
	}
	q.seq++
	if q.priority != nil {
		it.Priority = q.priority(value)
	}
	if q.expiration > 0 {
		it.ExpiresAt = now.Add(q.expiration)
	}

	if q.capacity > 0 && len(q.items) >= q.capacity {
		q.rejectionCount++
		onReject := q.onReject
		q.mu.Unlock()

		q.fireExpired(expired)
		if onReject != nil {
			onReject(it)
		}
		return false
	}

	switch {
	case q.priority != nil:
		// First index whose priority is strictly lower; inserting there
		// keeps higher priorities in front and equal priorities FIFO.
		i := sort.Search(len(q.items), func(i int) bool {
			return q.items[i].Priority < it.Priority
		})
		q.items = append(q.items, Item[T]{})
		copy(q.items[i+1:], q.items[i:])
		q.items[i] = it
	case q.insertPosition(position) == Front:
		q.items = append([]Item[T]{it}, q.items...)
	default:
		q.items = append(q.items, it)
	}
	q.mu.Unlock()

	q.fireExpired(expired)
	return true
}

// Dequeue removes and returns the item at the front of the queue after
// sweeping expired items. The second return value is false when the
// queue is empty.
func (q *Queue[T]) Dequeue() (Item[T], bool) {
	q.mu.Lock()
	expired := q.sweepLocked()

	if len(q.items) == 0 {
		q.mu.Unlock()
		q.fireExpired(expired)
		return Item[T]{}, false
	}

	it := q.items[0]
	q.items = q.items[1:]
	q.mu.Unlock()

	q.fireExpired(expired)
	return it, true
}

// PeekNext returns the item that Dequeue would remove, without removing it.
func (q *Queue[T]) PeekNext() (Item[T], bool) {
	q.mu.Lock()
	expired := q.sweepLocked()

	var (
		it Item[T]
		ok bool
	)
	if len(q.items) > 0 {
		it, ok = q.items[0], true
	}
	q.mu.Unlock()

	q.fireExpired(expired)
	return it, ok
}

// PeekAll returns a copy of all queued items in drain order.
func (q *Queue[T]) PeekAll() []Item[T] {
	q.mu.Lock()
	expired := q.sweepLocked()

	items := make([]Item[T], len(q.items))
	copy(items, q.items)
	q.mu.Unlock()

	q.fireExpired(expired)
	return items
}

// Values returns a copy of all queued values in drain order.
func (q *Queue[T]) Values() []T {
	items := q.PeekAll()
	values := make([]T, len(items))
	for i, it := range items {
		values[i] = it.Value
	}
	return values
}

// Clear removes all queued items. Counters are left untouched.
func (q *Queue[T]) Clear() {
	q.mu.Lock()
	q.items = nil
	q.mu.Unlock()
}

// Reset removes all queued items and zeroes the rejection and
// expiration counters.
func (q *Queue[T]) Reset() {
	q.mu.Lock()
	q.items = nil
	q.rejectionCount = 0
	q.expirationCount = 0
	q.mu.Unlock()
}

// Size returns the number of queued items after an expiration sweep.
func (q *Queue[T]) Size() int {
	q.mu.Lock()
	expired := q.sweepLocked()
	n := len(q.items)
	q.mu.Unlock()

	q.fireExpired(expired)
	return n
}

// Capacity returns the configured capacity bound, zero meaning unbounded.
func (q *Queue[T]) Capacity() int {
	return q.capacity
}

// IsEmpty reports whether the queue holds no items.
func (q *Queue[T]) IsEmpty() bool {
	return q.Size() == 0
}

// IsFull reports whether the queue is at its capacity bound. An
// unbounded queue is never full.
func (q *Queue[T]) IsFull() bool {
	if q.capacity == 0 {
		return false
	}
	return q.Size() >= q.capacity
}

// RejectionCount returns how many enqueue attempts were refused at capacity.
func (q *Queue[T]) RejectionCount() uint64 {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.rejectionCount
}

// ExpirationCount returns how many items were dropped by the expiration sweep.
func (q *Queue[T]) ExpirationCount() uint64 {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.expirationCount
}

// insertPosition resolves the per-call position override against the
// configured default.
func (q *Queue[T]) insertPosition(override []Position) Position {
	if len(override) > 0 && override[0].Valid() {
		return override[0]
	}
	return q.position
}

// sweepLocked drops every item past its deadline and returns them so the
// expire callback can fire outside the lock. Callers must hold q.mu.
func (q *Queue[T]) sweepLocked() []Item[T] {
	if q.expiration == 0 || len(q.items) == 0 {
		return nil
	}

	now := q.clock.Now()
	var expired []Item[T]
	kept := q.items[:0]
	for _, it := range q.items {
		if it.Expired(now) {
			expired = append(expired, it)
			continue
		}
		kept = append(kept, it)
	}
	q.items = kept
	q.expirationCount += uint64(len(expired))
	return expired
}

// fireExpired invokes the expire callback for swept items. Called
// without q.mu held so callbacks may safely touch the queue again.
func (q *Queue[T]) fireExpired(expired []Item[T]) {
	if q.onExpire == nil {
		return
	}
	for _, it := range expired {
		q.onExpire(it)
	}
}
