package queuer

import (
	"log/slog"
	"sync"
	"time"

	"github.com/dmitrymomot/pacer/pkg/logger"
	"github.com/dmitrymomot/pacer/pkg/metrics"
	"github.com/dmitrymomot/pacer/pkg/queue"
)

// Queuer drains queued items into a synchronous handler, one at a time,
// from a dedicated tick goroutine. An optional wait duration spaces
// successive handler invocations; with no wait the loop drains as fast
// as items become available and then parks until the next AddItem.
//
// The scheduler exclusively owns its queue and counters. The handler
// runs outside the scheduler lock, so it may call back into the queuer
// (including AddItem) without deadlocking.
type Queuer[T any] struct {
	name    string
	handler Handler[T]
	q       *queue.Queue[T]

	mu      sync.Mutex
	running bool
	wait    time.Duration
	stopCh  chan struct{}

	executionCount uint64

	// notifs collects callbacks and state publications built while the
	// lock is held; they run, in order, after the lock is released so
	// user code may safely call back into the scheduler.
	notifs []func()

	// wake nudges a parked tick loop after an enqueue. Buffered so the
	// signal is never lost and never blocks the sender.
	wake   chan struct{}
	loopWg sync.WaitGroup

	log     *slog.Logger
	metrics metrics.Writer

	onItemsChange func(*Queuer[T])
	publishers    []func(State[T])
}

// New creates a synchronous queuer for the given handler. Unless
// WithStarted(false) is supplied the tick loop is armed immediately and
// begins draining any initial items.
func New[T any](handler Handler[T], opts ...Option[T]) (*Queuer[T], error) {
	if handler == nil {
		return nil, ErrNilHandler
	}

	o := defaultOptions[T]()
	for _, opt := range opts {
		opt(o)
	}

	if o.wait < 0 {
		return nil, ErrInvalidWait
	}

	qr := &Queuer[T]{
		name:          o.name,
		handler:       handler,
		wait:          o.wait,
		wake:          make(chan struct{}, 1),
		log:           o.logger,
		metrics:       o.metrics,
		onItemsChange: o.onItemsChange,
		publishers:    o.publishers,
	}

	queueOpts := []queue.Option[T]{
		queue.WithCapacity[T](o.maxSize),
		queue.WithInsertPosition[T](o.position),
		queue.WithExpiration[T](o.expiration),
		queue.WithClock[T](o.clock),
		queue.WithOnExpire[T](func(it queue.Item[T]) { qr.itemExpired(it, o.onExpire) }),
		queue.WithOnReject[T](func(it queue.Item[T]) { qr.itemRejected(it, o.onReject) }),
	}
	if o.priority != nil {
		queueOpts = append(queueOpts, queue.WithPriority[T](o.priority))
	}

	q, err := queue.New[T](queueOpts...)
	if err != nil {
		return nil, err
	}
	qr.q = q

	qr.mu.Lock()
	for _, v := range o.initialItems {
		qr.q.Enqueue(v)
	}
	notifs := qr.takeNotifsLocked()
	qr.mu.Unlock()
	qr.run(notifs)

	if o.started {
		qr.Start()
	}

	return qr, nil
}

// AddItem enqueues a value, optionally overriding the configured
// insertion end for this call, and wakes a parked tick loop. It returns
// false when the queue is at capacity; the reject callback fires and the
// rejection counter increments.
func (qr *Queuer[T]) AddItem(value T, position ...queue.Position) bool {
	qr.mu.Lock()
	ok := qr.q.Enqueue(value, position...)
	if ok {
		qr.notifs = append(qr.notifs, func() { qr.metrics.ItemEnqueued(qr.name) })
	}
	qr.publishLocked()
	notifs := qr.takeNotifsLocked()
	qr.mu.Unlock()
	qr.run(notifs)

	if ok {
		select {
		case qr.wake <- struct{}{}:
		default:
		}
	}

	return ok
}

// GetNextItem removes and returns the next item in drain order without
// executing it. The second return value is false when the queue is
// empty.
func (qr *Queuer[T]) GetNextItem() (queue.Item[T], bool) {
	qr.mu.Lock()
	it, ok := qr.q.Dequeue()
	if ok {
		qr.notifs = append(qr.notifs, func() { qr.metrics.ItemDequeued(qr.name) })
		qr.publishLocked()
	}
	notifs := qr.takeNotifsLocked()
	qr.mu.Unlock()
	qr.run(notifs)

	return it, ok
}

// Execute manually drains a single item: it dequeues the next item and
// runs the handler synchronously in the calling goroutine, with the same
// accounting as a loop tick. The second return value is false when there
// is nothing to run. Handler panics propagate to the caller.
func (qr *Queuer[T]) Execute() (T, bool) {
	qr.mu.Lock()
	it, ok := qr.q.Dequeue()
	if !ok {
		notifs := qr.takeNotifsLocked()
		qr.mu.Unlock()
		qr.run(notifs)

		var zero T
		return zero, false
	}
	qr.notifs = append(qr.notifs, func() { qr.metrics.ItemDequeued(qr.name) })
	notifs := qr.takeNotifsLocked()
	qr.mu.Unlock()
	qr.run(notifs)

	qr.handler(it.Value)
	qr.executed(it)
	return it.Value, true
}

// Start arms the tick loop. It is idempotent. When a previous loop is
// still finishing its in-flight handler after a Stop, Start waits for it
// to exit before spawning the new loop, so at most one handler runs at a
// time.
func (qr *Queuer[T]) Start() {
	qr.mu.Lock()
	if qr.running {
		notifs := qr.takeNotifsLocked()
		qr.mu.Unlock()
		qr.run(notifs)
		return
	}
	qr.running = true
	stopCh := make(chan struct{})
	qr.stopCh = stopCh
	qr.notifs = append(qr.notifs, func() {
		qr.log.Debug("queuer started", logger.Queue(qr.name))
	})
	qr.publishLocked()
	notifs := qr.takeNotifsLocked()
	qr.mu.Unlock()
	qr.run(notifs)

	qr.loopWg.Wait()
	qr.loopWg.Add(1)
	go func() {
		defer qr.loopWg.Done()
		qr.loop(stopCh)
	}()
}

// Stop disarms the tick loop. An in-flight handler invocation completes;
// queued items persist untouched. It is idempotent and does not wait for
// the loop goroutine to exit.
func (qr *Queuer[T]) Stop() {
	qr.mu.Lock()
	if qr.running {
		qr.running = false
		close(qr.stopCh)
		qr.stopCh = nil
		qr.notifs = append(qr.notifs, func() {
			qr.log.Debug("queuer stopped", logger.Queue(qr.name))
		})
		qr.publishLocked()
	}
	notifs := qr.takeNotifsLocked()
	qr.mu.Unlock()
	qr.run(notifs)
}

// Clear empties the queue without touching counters.
func (qr *Queuer[T]) Clear() {
	qr.mu.Lock()
	qr.q.Clear()
	qr.publishLocked()
	notifs := qr.takeNotifsLocked()
	qr.mu.Unlock()
	qr.run(notifs)
}

// Reset empties the queue and zeroes every counter.
func (qr *Queuer[T]) Reset() {
	qr.mu.Lock()
	qr.q.Reset()
	qr.executionCount = 0
	qr.publishLocked()
	notifs := qr.takeNotifsLocked()
	qr.mu.Unlock()
	qr.run(notifs)
}

// SetWait changes the spacing between handler invocations at runtime.
// The new spacing applies from the next tick onward.
func (qr *Queuer[T]) SetWait(d time.Duration) error {
	if d < 0 {
		return ErrInvalidWait
	}

	qr.mu.Lock()
	qr.wait = d
	qr.mu.Unlock()

	select {
	case qr.wake <- struct{}{}:
	default:
	}

	return nil
}

// State returns an immutable snapshot of the scheduler.
func (qr *Queuer[T]) State() State[T] {
	qr.mu.Lock()
	snapshot := qr.stateLocked()
	notifs := qr.takeNotifsLocked()
	qr.mu.Unlock()
	qr.run(notifs)

	return snapshot
}

// Status reports what the scheduler is currently doing.
func (qr *Queuer[T]) Status() Status {
	return qr.State().Status
}

// IsRunning reports whether the tick loop is armed. It reflects only the
// start/stop flag, independent of whether work currently exists.
func (qr *Queuer[T]) IsRunning() bool {
	qr.mu.Lock()
	defer qr.mu.Unlock()
	return qr.running
}

// IsIdle reports whether the loop is armed with an empty queue.
func (qr *Queuer[T]) IsIdle() bool {
	return qr.State().IsIdle
}

// Size returns the number of queued items.
func (qr *Queuer[T]) Size() int {
	qr.mu.Lock()
	n := qr.q.Size()
	notifs := qr.takeNotifsLocked()
	qr.mu.Unlock()
	qr.run(notifs)

	return n
}

// PeekAllItems returns the queued values in drain order without mutating
// the queue.
func (qr *Queuer[T]) PeekAllItems() []T {
	return qr.State().Items
}

// loop is the tick goroutine. Each iteration drains one item and runs
// the handler; after an execution it sleeps for the configured wait,
// and when the queue is empty it parks until woken by AddItem. A closed
// stopCh exits the loop at the next iteration boundary.
func (qr *Queuer[T]) loop(stopCh chan struct{}) {
	for {
		select {
		case <-stopCh:
			return
		default:
		}

		executed, wait := qr.tick()
		if !executed {
			select {
			case <-stopCh:
				return
			case <-qr.wake:
			}
			continue
		}

		if wait > 0 {
			timer := time.NewTimer(wait)
			select {
			case <-stopCh:
				timer.Stop()
				return
			case <-timer.C:
			}
		}
	}
}

// tick drains and executes at most one item. It reports whether a
// handler ran and the spacing to apply before the next tick.
func (qr *Queuer[T]) tick() (bool, time.Duration) {
	qr.mu.Lock()
	it, ok := qr.q.Dequeue()
	if !ok {
		notifs := qr.takeNotifsLocked()
		qr.mu.Unlock()
		qr.run(notifs)
		return false, 0
	}
	wait := qr.wait
	qr.notifs = append(qr.notifs, func() { qr.metrics.ItemDequeued(qr.name) })
	notifs := qr.takeNotifsLocked()
	qr.mu.Unlock()
	qr.run(notifs)

	qr.handler(it.Value)
	qr.executed(it)
	return true, wait
}

// executed records a completed handler invocation and republishes state.
func (qr *Queuer[T]) executed(it queue.Item[T]) {
	qr.mu.Lock()
	qr.executionCount++
	qr.notifs = append(qr.notifs, func() {
		qr.log.Debug("item executed",
			logger.Queue(qr.name),
			logger.ItemID(it.ID.String()))
	})
	qr.publishLocked()
	notifs := qr.takeNotifsLocked()
	qr.mu.Unlock()
	qr.run(notifs)
}

// itemExpired and itemRejected run from inside queue operations, which
// only ever happen while qr.mu is held by the calling goroutine, so they
// may append notifications directly.
func (qr *Queuer[T]) itemExpired(it queue.Item[T], cb func(queue.Item[T], *Queuer[T])) {
	qr.notifs = append(qr.notifs, func() {
		qr.metrics.ItemExpired(qr.name)
		qr.log.Debug("item expired",
			logger.Queue(qr.name),
			logger.ItemID(it.ID.String()))
		if cb != nil {
			cb(it, qr)
		}
	})
}

func (qr *Queuer[T]) itemRejected(it queue.Item[T], cb func(queue.Item[T], *Queuer[T])) {
	qr.notifs = append(qr.notifs, func() {
		qr.metrics.ItemRejected(qr.name)
		qr.log.Debug("item rejected",
			logger.Queue(qr.name),
			logger.ItemID(it.ID.String()))
		if cb != nil {
			cb(it, qr)
		}
	})
}

// publishLocked captures a snapshot and queues its publication. Callers
// must hold qr.mu.
func (qr *Queuer[T]) publishLocked() {
	snapshot := qr.stateLocked()
	qr.notifs = append(qr.notifs, func() {
		qr.metrics.QueueSize(qr.name, snapshot.Size)
		for _, publish := range qr.publishers {
			publish(snapshot)
		}
		if qr.onItemsChange != nil {
			qr.onItemsChange(qr)
		}
	})
}

func (qr *Queuer[T]) stateLocked() State[T] {
	items := qr.q.Values()

	status := StatusRunning
	switch {
	case !qr.running:
		status = StatusStopped
	case len(items) == 0:
		status = StatusIdle
	}

	return State[T]{
		Items:           items,
		Size:            len(items),
		IsEmpty:         len(items) == 0,
		IsFull:          qr.q.IsFull(),
		Status:          status,
		IsRunning:       qr.running,
		IsIdle:          qr.running && len(items) == 0,
		ExecutionCount:  qr.executionCount,
		RejectionCount:  qr.q.RejectionCount(),
		ExpirationCount: qr.q.ExpirationCount(),
	}
}

// takeNotifsLocked detaches the queued notifications. Callers must hold
// qr.mu and run the result after releasing it.
func (qr *Queuer[T]) takeNotifsLocked() []func() {
	notifs := qr.notifs
	qr.notifs = nil
	return notifs
}

func (qr *Queuer[T]) run(notifs []func()) {
	for _, fn := range notifs {
		fn()
	}
}
