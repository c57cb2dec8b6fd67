// Package asyncqueue provides a concurrency-bounded asynchronous task
// queue: items are admitted from an ordered, bounded, optionally
// priority-ordered queue into an asynchronous handler, with up to a
// configured number of tasks in flight simultaneously.
//
// # Admission
//
// On every state-changing event (an item added, a task settling, Start
// being called, or the concurrency/wait options changing) the scheduler
// fills free slots: while fewer than `concurrency` tasks are active and
// the queue (after the expiration sweep) is non-empty, the next item in
// priority/FIFO/LIFO order moves into the active set and the handler is
// launched with its value. The optional wait duration throttles the rate
// of launches; it never limits how many tasks run simultaneously.
//
// Admission strictly follows queue order. Completion order is an
// unordered race: an earlier-admitted task may settle after a later one,
// and the success/error/settled callbacks fire in actual completion
// order.
//
// # Failure isolation
//
// A failing task never blocks or cancels others: it is counted as
// settled, its error callback fires, and its slot is refilled. No
// retries happen here; compose retry behavior by wrapping the handler.
// With WithThrowOnError the accumulated errors also surface from an
// awaited Drain call.
//
// # Lifecycle
//
// Stop halts new admissions but cannot cancel handlers already invoked;
// there is no forced termination at this layer. Handlers wanting
// cancellable work should watch the context supplied via WithBaseContext
// and wind down cooperatively. A handler that never settles permanently
// occupies one concurrency slot.
//
// # Usage
//
//	q, err := asyncqueue.New(sendWebhook,
//	    asyncqueue.WithConcurrency[Delivery, Receipt](4),
//	    asyncqueue.WithMaxSize[Delivery, Receipt](1000),
//	    asyncqueue.WithOnError[Delivery, Receipt](logDeliveryFailure),
//	)
//	if err != nil {
//	    return err
//	}
//
//	q.AddItem(delivery)
//	if err := q.Drain(ctx); err != nil {
//	    // only with WithThrowOnError
//	}
//
// # State publishing
//
// After every mutation the scheduler emits an immutable State snapshot
// through the hooks registered with WithStatePublisher. The broadcast
// package turns those snapshots into subscriber channels for reactive
// consumers; any other store can subscribe the same way.
//
// # Error Handling
//
// Configuration problems (nil handler, concurrency below one, negative
// wait or capacity) fail fast at construction or SetConcurrency/SetWait
// time with package-level sentinel errors. Task errors are never fatal
// to the scheduler.
package asyncqueue
