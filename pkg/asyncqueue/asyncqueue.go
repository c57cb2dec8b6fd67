package asyncqueue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dmitrymomot/pacer/pkg/async"
	"github.com/dmitrymomot/pacer/pkg/logger"
	"github.com/dmitrymomot/pacer/pkg/metrics"
	"github.com/dmitrymomot/pacer/pkg/queue"
)

// AsyncQueuer admits queued items into an asynchronous handler, keeping
// up to a configured number of tasks in flight simultaneously. Admission
// strictly follows queue order; completion order is not guaranteed.
//
// The scheduler exclusively owns its queue and counters: they are
// mutated only on the admission/settlement path, never by handler code,
// so handler invocations may overlap freely without racing on scheduler
// state.
type AsyncQueuer[T, R any] struct {
	name    string
	handler Handler[T, R]
	q       *queue.Queue[T]

	mu          sync.Mutex
	active      []queue.Item[T]
	concurrency int
	wait        time.Duration
	running     bool
	lastLaunch  time.Time
	waitTimer   *time.Timer

	executionCount uint64
	successCount   uint64
	errorCount     uint64
	settledCount   uint64

	errs        []error
	idleWaiters []chan struct{}

	// notifs collects callbacks and state publications built while the
	// lock is held; they run, in order, after the lock is released so
	// user code may safely call back into the scheduler.
	notifs []func()

	throwOnError bool
	baseCtx      context.Context
	log          *slog.Logger
	metrics      metrics.Writer

	onSuccess     func(R, queue.Item[T], *AsyncQueuer[T, R])
	onError       func(error, queue.Item[T], *AsyncQueuer[T, R])
	onSettled     func(queue.Item[T], *AsyncQueuer[T, R])
	onItemsChange func(*AsyncQueuer[T, R])
	publishers    []func(State[T])
}

// New creates an asynchronous queuer for the given handler. Unless
// WithStarted(false) is supplied the scheduler begins admitting work
// immediately, including any initial items.
func New[T, R any](handler Handler[T, R], opts ...Option[T, R]) (*AsyncQueuer[T, R], error) {
	if handler == nil {
		return nil, ErrNilHandler
	}

	o := defaultOptions[T, R]()
	for _, opt := range opts {
		opt(o)
	}

	if o.envErr != nil {
		return nil, o.envErr
	}
	if o.concurrency < 1 {
		return nil, ErrInvalidConcurrency
	}
	if o.wait < 0 {
		return nil, ErrInvalidWait
	}

	aq := &AsyncQueuer[T, R]{
		name:          o.name,
		handler:       handler,
		concurrency:   o.concurrency,
		wait:          o.wait,
		throwOnError:  o.throwOnError,
		baseCtx:       o.baseCtx,
		log:           o.logger,
		metrics:       o.metrics,
		onSuccess:     o.onSuccess,
		onError:       o.onError,
		onSettled:     o.onSettled,
		onItemsChange: o.onItemsChange,
		publishers:    o.publishers,
	}

	queueOpts := []queue.Option[T]{
		queue.WithCapacity[T](o.maxSize),
		queue.WithInsertPosition[T](o.position),
		queue.WithExpiration[T](o.expiration),
		queue.WithClock[T](o.clock),
		queue.WithOnExpire[T](func(it queue.Item[T]) { aq.itemExpired(it, o.onExpire) }),
		queue.WithOnReject[T](func(it queue.Item[T]) { aq.itemRejected(it, o.onReject) }),
	}
	if o.priority != nil {
		queueOpts = append(queueOpts, queue.WithPriority[T](o.priority))
	}

	q, err := queue.New[T](queueOpts...)
	if err != nil {
		return nil, err
	}
	aq.q = q

	aq.mu.Lock()
	for _, v := range o.initialItems {
		aq.q.Enqueue(v)
	}
	if o.started {
		aq.running = true
		aq.fillLocked()
	}
	notifs := aq.takeNotifsLocked()
	aq.mu.Unlock()
	aq.run(notifs)

	return aq, nil
}

// AddItem enqueues a value, optionally overriding the configured
// insertion end for this call, and immediately tries to fill free
// concurrency slots. It returns false when the queue is at capacity; the
// reject callback fires and the rejection counter increments.
func (aq *AsyncQueuer[T, R]) AddItem(value T, position ...queue.Position) bool {
	aq.mu.Lock()
	ok := aq.q.Enqueue(value, position...)
	if ok {
		aq.notifs = append(aq.notifs, func() { aq.metrics.ItemEnqueued(aq.name) })
		aq.fillLocked()
	}
	aq.publishLocked()
	notifs := aq.takeNotifsLocked()
	aq.mu.Unlock()
	aq.run(notifs)

	return ok
}

// GetNextItem removes and returns the next item in admission order
// without executing it. The second return value is false when the queue
// is empty.
func (aq *AsyncQueuer[T, R]) GetNextItem() (queue.Item[T], bool) {
	aq.mu.Lock()
	it, ok := aq.q.Dequeue()
	if ok {
		aq.notifs = append(aq.notifs, func() { aq.metrics.ItemDequeued(aq.name) })
		aq.publishLocked()
	}
	aq.signalIdleLocked()
	notifs := aq.takeNotifsLocked()
	aq.mu.Unlock()
	aq.run(notifs)

	return it, ok
}

// Execute manually drains a single item: it dequeues the next item,
// runs the handler synchronously in the calling goroutine, and settles
// it with the same accounting and callbacks as a scheduled task. It
// returns ErrQueueEmpty when there is nothing to run. A nil context
// falls back to the scheduler's base context.
func (aq *AsyncQueuer[T, R]) Execute(ctx context.Context) (R, error) {
	if ctx == nil {
		ctx = aq.baseCtx
	}

	aq.mu.Lock()
	it, ok := aq.q.Dequeue()
	if !ok {
		notifs := aq.takeNotifsLocked()
		aq.mu.Unlock()
		aq.run(notifs)

		var zero R
		return zero, ErrQueueEmpty
	}

	aq.active = append(aq.active, it)
	aq.lastLaunch = time.Now()
	aq.notifs = append(aq.notifs, func() { aq.metrics.ItemDequeued(aq.name) })
	aq.publishLocked()
	notifs := aq.takeNotifsLocked()
	aq.mu.Unlock()
	aq.run(notifs)

	ctx = logger.ContextWithQueue(ctx, aq.name)
	ctx = logger.ContextWithItem(ctx, it.ID)
	result, err := aq.handler(ctx, it.Value)
	aq.settle(it, result, err)
	return result, err
}

// Start resumes admissions and immediately tries to fill free slots.
// It is idempotent.
func (aq *AsyncQueuer[T, R]) Start() {
	aq.mu.Lock()
	if !aq.running {
		aq.running = true
		aq.notifs = append(aq.notifs, func() {
			aq.log.Debug("queuer started", logger.Queue(aq.name))
		})
		aq.fillLocked()
		aq.publishLocked()
	}
	notifs := aq.takeNotifsLocked()
	aq.mu.Unlock()
	aq.run(notifs)
}

// Stop halts new admissions. In-flight tasks are not cancelled: they run
// to completion, still fire settlement callbacks, and free their slots.
// Queued items persist untouched. It is idempotent.
func (aq *AsyncQueuer[T, R]) Stop() {
	aq.mu.Lock()
	if aq.running {
		aq.running = false
		if aq.waitTimer != nil {
			aq.waitTimer.Stop()
			aq.waitTimer = nil
		}
		aq.notifs = append(aq.notifs, func() {
			aq.log.Debug("queuer stopped", logger.Queue(aq.name))
		})
		aq.publishLocked()
	}
	notifs := aq.takeNotifsLocked()
	aq.mu.Unlock()
	aq.run(notifs)
}

// Clear empties the pending queue without touching in-flight tasks or
// counters.
func (aq *AsyncQueuer[T, R]) Clear() {
	aq.mu.Lock()
	aq.q.Clear()
	aq.publishLocked()
	aq.signalIdleLocked()
	notifs := aq.takeNotifsLocked()
	aq.mu.Unlock()
	aq.run(notifs)
}

// Reset empties the pending queue and zeroes every counter. Tasks
// already in flight cannot be cancelled; they settle normally but their
// outcomes are counted against the fresh counters.
func (aq *AsyncQueuer[T, R]) Reset() {
	aq.mu.Lock()
	aq.q.Reset()
	aq.executionCount = 0
	aq.successCount = 0
	aq.errorCount = 0
	aq.settledCount = 0
	aq.errs = nil
	aq.publishLocked()
	aq.signalIdleLocked()
	notifs := aq.takeNotifsLocked()
	aq.mu.Unlock()
	aq.run(notifs)
}

// SetConcurrency changes the concurrency bound at runtime. Raising it
// immediately fills the new slots; lowering it never cancels tasks
// already in flight, the bound applies to future admissions only.
func (aq *AsyncQueuer[T, R]) SetConcurrency(n int) error {
	if n < 1 {
		return ErrInvalidConcurrency
	}

	aq.mu.Lock()
	aq.concurrency = n
	aq.fillLocked()
	notifs := aq.takeNotifsLocked()
	aq.mu.Unlock()
	aq.run(notifs)

	return nil
}

// SetWait changes the minimum spacing between task launches at runtime.
// The new spacing applies to future admission decisions only.
func (aq *AsyncQueuer[T, R]) SetWait(d time.Duration) error {
	if d < 0 {
		return ErrInvalidWait
	}

	aq.mu.Lock()
	aq.wait = d
	if aq.waitTimer != nil {
		// Re-evaluate the gate under the new spacing.
		aq.waitTimer.Stop()
		aq.waitTimer = nil
	}
	aq.fillLocked()
	notifs := aq.takeNotifsLocked()
	aq.mu.Unlock()
	aq.run(notifs)

	return nil
}

// Drain blocks until the scheduler is idle (no in-flight tasks and an
// empty queue) or the context is done. With WithThrowOnError configured
// it returns the task errors accumulated since the last drain, joined
// with errors.Join, and clears them. Draining a stopped scheduler with
// pending items blocks until the context expires.
func (aq *AsyncQueuer[T, R]) Drain(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	aq.mu.Lock()
	if aq.idleLocked() {
		err := errors.Join(aq.errs...)
		aq.errs = nil
		notifs := aq.takeNotifsLocked()
		aq.mu.Unlock()
		aq.run(notifs)
		return err
	}
	ch := make(chan struct{})
	aq.idleWaiters = append(aq.idleWaiters, ch)
	aq.mu.Unlock()

	select {
	case <-ch:
		aq.mu.Lock()
		err := errors.Join(aq.errs...)
		aq.errs = nil
		aq.mu.Unlock()
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// DrainAsync runs Drain in its own goroutine and returns a Future that
// settles with the scheduler's state once it is idle, carrying any
// accumulated task errors.
func (aq *AsyncQueuer[T, R]) DrainAsync(ctx context.Context) *async.Future[State[T]] {
	if ctx == nil {
		ctx = context.Background()
	}
	return async.Async(ctx, aq, func(ctx context.Context, q *AsyncQueuer[T, R]) (State[T], error) {
		err := q.Drain(ctx)
		return q.State(), err
	})
}

// State returns an immutable snapshot of the scheduler.
func (aq *AsyncQueuer[T, R]) State() State[T] {
	aq.mu.Lock()
	snapshot := aq.stateLocked()
	notifs := aq.takeNotifsLocked()
	aq.mu.Unlock()
	aq.run(notifs)

	return snapshot
}

// Status reports what the scheduler is currently doing.
func (aq *AsyncQueuer[T, R]) Status() Status {
	return aq.State().Status
}

// IsRunning reports whether admissions are enabled. It reflects only the
// start/stop flag, independent of whether work currently exists.
func (aq *AsyncQueuer[T, R]) IsRunning() bool {
	aq.mu.Lock()
	defer aq.mu.Unlock()
	return aq.running
}

// IsIdle reports whether the scheduler has no in-flight tasks and an
// empty queue.
func (aq *AsyncQueuer[T, R]) IsIdle() bool {
	aq.mu.Lock()
	idle := aq.idleLocked()
	notifs := aq.takeNotifsLocked()
	aq.mu.Unlock()
	aq.run(notifs)

	return idle
}

// Size returns the number of pending items.
func (aq *AsyncQueuer[T, R]) Size() int {
	aq.mu.Lock()
	n := aq.q.Size()
	notifs := aq.takeNotifsLocked()
	aq.mu.Unlock()
	aq.run(notifs)

	return n
}

// PeekAllItems returns the values the scheduler currently owns:
// in-flight values in admission order followed by pending values in
// drain order. It never mutates the queue.
func (aq *AsyncQueuer[T, R]) PeekAllItems() []T {
	s := aq.State()
	return s.Items
}

// PeekPendingItems returns the queued values in drain order.
func (aq *AsyncQueuer[T, R]) PeekPendingItems() []T {
	s := aq.State()
	return s.PendingItems
}

// PeekActiveItems returns the in-flight values in admission order.
func (aq *AsyncQueuer[T, R]) PeekActiveItems() []T {
	s := aq.State()
	return s.ActiveItems
}

// fillLocked admits items while slots are free, the scheduler is
// running, the launch-spacing gate is open, and the queue (post
// expiration sweep) is non-empty. State is published per admission;
// settlement continuations are attached after the lock is released so a
// fast-settling task cannot re-enter the lock from this goroutine.
// Callers must hold aq.mu.
func (aq *AsyncQueuer[T, R]) fillLocked() {
	var launched []queue.Item[T]

	for aq.running && len(aq.active) < aq.concurrency {
		// Launch spacing runs on the wall clock: the injected Clock covers
		// timestamps and expiration only, so the gate arithmetic must agree
		// with the wall-clock timer that reopens it.
		if aq.wait > 0 && !aq.lastLaunch.IsZero() {
			if remaining := aq.wait - time.Since(aq.lastLaunch); remaining > 0 {
				aq.armWaitTimerLocked(remaining)
				break
			}
		}

		it, ok := aq.q.Dequeue()
		if !ok {
			break
		}

		aq.active = append(aq.active, it)
		aq.lastLaunch = time.Now()
		launched = append(launched, it)

		aq.notifs = append(aq.notifs, func() { aq.metrics.ItemDequeued(aq.name) })
		aq.publishLocked()
	}

	for _, it := range launched {
		aq.notifs = append(aq.notifs, func() {
			ctx := logger.ContextWithQueue(aq.baseCtx, aq.name)
			ctx = logger.ContextWithItem(ctx, it.ID)
			aq.log.DebugContext(ctx, "task admitted",
				logger.Queue(aq.name),
				logger.ItemID(it.ID.String()))
			fut := async.Async(ctx, it.Value, aq.handler)
			fut.OnSettle(func(result R, err error) {
				aq.settle(it, result, err)
			})
		})
	}
}

// settle removes a finished task from the active set, updates the
// settlement counters, fires the outcome callbacks in completion order,
// republishes state, and refills the freed slot. The execution counter
// also increments here, on settlement, so it never runs ahead of the
// settled total while tasks are still in flight.
func (aq *AsyncQueuer[T, R]) settle(it queue.Item[T], result R, err error) {
	aq.mu.Lock()
	for i := range aq.active {
		if aq.active[i].ID == it.ID {
			aq.active = append(aq.active[:i], aq.active[i+1:]...)
			break
		}
	}

	aq.executionCount++
	aq.settledCount++
	if err != nil {
		aq.errorCount++
		if aq.throwOnError {
			aq.errs = append(aq.errs, fmt.Errorf("task %s: %w", it.ID, err))
		}
	} else {
		aq.successCount++
	}

	aq.notifs = append(aq.notifs, func() {
		aq.metrics.TaskSettled(aq.name, err == nil)
		if err != nil {
			aq.log.Error("task failed",
				logger.Queue(aq.name),
				logger.ItemID(it.ID.String()),
				logger.Error(err))
			if aq.onError != nil {
				aq.onError(err, it, aq)
			}
		} else {
			aq.log.Debug("task settled",
				logger.Queue(aq.name),
				logger.ItemID(it.ID.String()))
			if aq.onSuccess != nil {
				aq.onSuccess(result, it, aq)
			}
		}
		if aq.onSettled != nil {
			aq.onSettled(it, aq)
		}
	})
	aq.publishLocked()
	aq.fillLocked()
	aq.signalIdleLocked()
	notifs := aq.takeNotifsLocked()
	aq.mu.Unlock()
	aq.run(notifs)
}

// itemExpired and itemRejected run from inside queue operations, which
// only ever happen while aq.mu is held by the calling goroutine, so they
// may append notifications directly.
func (aq *AsyncQueuer[T, R]) itemExpired(it queue.Item[T], cb func(queue.Item[T], *AsyncQueuer[T, R])) {
	aq.notifs = append(aq.notifs, func() {
		aq.metrics.ItemExpired(aq.name)
		aq.log.Debug("item expired",
			logger.Queue(aq.name),
			logger.ItemID(it.ID.String()))
		if cb != nil {
			cb(it, aq)
		}
	})
}

func (aq *AsyncQueuer[T, R]) itemRejected(it queue.Item[T], cb func(queue.Item[T], *AsyncQueuer[T, R])) {
	aq.notifs = append(aq.notifs, func() {
		aq.metrics.ItemRejected(aq.name)
		aq.log.Debug("item rejected",
			logger.Queue(aq.name),
			logger.ItemID(it.ID.String()))
		if cb != nil {
			cb(it, aq)
		}
	})
}

// armWaitTimerLocked schedules a fill attempt once the launch-spacing
// gate reopens. Callers must hold aq.mu.
func (aq *AsyncQueuer[T, R]) armWaitTimerLocked(d time.Duration) {
	if aq.waitTimer != nil {
		return
	}
	aq.waitTimer = time.AfterFunc(d, func() {
		aq.mu.Lock()
		aq.waitTimer = nil
		if aq.running {
			aq.fillLocked()
		}
		notifs := aq.takeNotifsLocked()
		aq.mu.Unlock()
		aq.run(notifs)
	})
}

// publishLocked captures a snapshot and queues its publication. Callers
// must hold aq.mu.
func (aq *AsyncQueuer[T, R]) publishLocked() {
	snapshot := aq.stateLocked()
	aq.notifs = append(aq.notifs, func() {
		aq.metrics.QueueSize(aq.name, snapshot.Size)
		aq.metrics.ActiveTasks(aq.name, len(snapshot.ActiveItems))
		for _, publish := range aq.publishers {
			publish(snapshot)
		}
		if aq.onItemsChange != nil {
			aq.onItemsChange(aq)
		}
	})
}

func (aq *AsyncQueuer[T, R]) stateLocked() State[T] {
	pending := aq.q.Values()
	active := make([]T, len(aq.active))
	for i, it := range aq.active {
		active[i] = it.Value
	}

	items := make([]T, 0, len(active)+len(pending))
	items = append(items, active...)
	items = append(items, pending...)

	idle := len(aq.active) == 0 && len(pending) == 0
	status := StatusRunning
	switch {
	case !aq.running:
		status = StatusStopped
	case idle:
		status = StatusIdle
	}

	return State[T]{
		Items:           items,
		PendingItems:    pending,
		ActiveItems:     active,
		Size:            len(pending),
		IsEmpty:         len(pending) == 0,
		IsFull:          aq.q.IsFull(),
		Status:          status,
		IsRunning:       aq.running,
		IsIdle:          idle,
		IsExecuting:     len(aq.active) > 0,
		ExecutionCount:  aq.executionCount,
		SuccessCount:    aq.successCount,
		ErrorCount:      aq.errorCount,
		SettledCount:    aq.settledCount,
		RejectionCount:  aq.q.RejectionCount(),
		ExpirationCount: aq.q.ExpirationCount(),
	}
}

func (aq *AsyncQueuer[T, R]) idleLocked() bool {
	return len(aq.active) == 0 && aq.q.Size() == 0
}

// signalIdleLocked releases Drain waiters once the scheduler goes idle.
// Callers must hold aq.mu.
func (aq *AsyncQueuer[T, R]) signalIdleLocked() {
	if !aq.idleLocked() || len(aq.idleWaiters) == 0 {
		return
	}
	for _, ch := range aq.idleWaiters {
		close(ch)
	}
	aq.idleWaiters = nil
}

// takeNotifsLocked detaches the queued notifications. Callers must hold
// aq.mu and run the result after releasing it.
func (aq *AsyncQueuer[T, R]) takeNotifsLocked() []func() {
	notifs := aq.notifs
	aq.notifs = nil
	return notifs
}

func (aq *AsyncQueuer[T, R]) run(notifs []func()) {
	for _, fn := range notifs {
		fn()
	}
}
