package async

import (
	"context"
	"sync"
	"time"
)

// Future represents the eventual settlement of an asynchronous computation.
type Future[U any] struct {
	mu        sync.Mutex
	result    U
	err       error
	settled   bool
	callbacks []func(U, error)
	done      chan struct{}
}

// Await blocks until the computation settles and returns its result and error.
func (f *Future[U]) Await() (U, error) {
	<-f.done
	return f.result, f.err
}

// AwaitWithTimeout blocks until the computation settles or the timeout
// elapses, in which case it returns ErrTimeout. The computation itself
// keeps running; only the wait is bounded.
func (f *Future[U]) AwaitWithTimeout(timeout time.Duration) (U, error) {
	select {
	case <-f.done:
		return f.result, f.err
	case <-time.After(timeout):
		var zero U
		return zero, ErrTimeout
	}
}

// IsComplete reports whether the computation has settled, without blocking.
func (f *Future[U]) IsComplete() bool {
	select {
	case <-f.done:
		return true
	default:
		return false
	}
}

// OnSettle registers a continuation invoked exactly once with the final
// result and error. If the future has already settled, the continuation
// runs synchronously in the caller's goroutine; otherwise it runs in the
// goroutine that settles the future, after the result is visible to
// Await. Continuations registered on the same future run in registration
// order.
func (f *Future[U]) OnSettle(fn func(U, error)) {
	if fn == nil {
		return
	}

	f.mu.Lock()
	if f.settled {
		result, err := f.result, f.err
		f.mu.Unlock()
		fn(result, err)
		return
	}
	f.callbacks = append(f.callbacks, fn)
	f.mu.Unlock()
}

// settle records the outcome, unblocks awaiters, and runs continuations.
// It must be called at most once.
func (f *Future[U]) settle(result U, err error) {
	f.mu.Lock()
	f.result = result
	f.err = err
	f.settled = true
	callbacks := f.callbacks
	f.callbacks = nil
	f.mu.Unlock()

	close(f.done)
	for _, fn := range callbacks {
		fn(result, err)
	}
}

// Async starts fn in its own goroutine and immediately returns a Future
// for its settlement. If the context is already cancelled the future
// settles with the context error without invoking fn.
func Async[T any, U any](ctx context.Context, param T, fn func(context.Context, T) (U, error)) *Future[U] {
	f := &Future[U]{done: make(chan struct{})}

	go func() {
		select {
		case <-ctx.Done():
			var zero U
			f.settle(zero, ctx.Err())
			return
		default:
		}

		result, err := fn(ctx, param)
		f.settle(result, err)
	}()

	return f
}

// WaitAll blocks until every future settles and returns their results in
// order, together with the first error encountered.
func WaitAll[U any](futures ...*Future[U]) ([]U, error) {
	results := make([]U, len(futures))
	var firstErr error

	for i, future := range futures {
		result, err := future.Await()
		results[i] = result
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}

	return results, firstErr
}

// WaitAny blocks until the first future settles and returns its index,
// result, and error. Calling WaitAny with no futures returns ErrNoFutures.
func WaitAny[U any](futures ...*Future[U]) (int, U, error) {
	if len(futures) == 0 {
		var zero U
		return -1, zero, ErrNoFutures
	}

	type settlement struct {
		index  int
		result U
		err    error
	}
	done := make(chan settlement, 1)

	for i, future := range futures {
		go func(index int, f *Future[U]) {
			result, err := f.Await()
			select {
			case done <- settlement{index, result, err}:
			default:
			}
		}(i, future)
	}

	s := <-done
	return s.index, s.result, s.err
}
