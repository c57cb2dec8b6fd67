// Package queue provides the ordered item container the pacer schedulers
// are built on: a bounded, optionally priority-ordered sequence of items
// with optional per-item expiration.
//
// The container itself performs no scheduling. The queuer package drains
// it one item per tick into a synchronous handler; the asyncqueue package
// admits up to a configured number of items simultaneously into an
// asynchronous handler. Both own their Queue exclusively and expose only
// read-only snapshots to callers.
//
// # Ordering
//
// By default items are appended at the back and removed from the front
// (FIFO). Configuring WithInsertPosition(Front) inserts and removes at
// the same end (LIFO). Configuring WithPriority replaces positional
// ordering entirely: items are kept sorted by the captured priority,
// higher values first, with insertion order breaking ties.
//
// # Capacity and expiration
//
// With WithCapacity set, Enqueue against a full queue returns false
// without mutating the queue, fires the reject callback, and increments
// the rejection counter. With WithExpiration set, every queue-touching
// operation first sweeps items past their deadline; swept items fire the
// expire callback exactly once and are never delivered.
//
// # Usage
//
//	q, err := queue.New[string](
//	    queue.WithCapacity[string](100),
//	    queue.WithExpiration[string](time.Minute),
//	)
//	if err != nil {
//	    return err
//	}
//
//	if !q.Enqueue("job-1") {
//	    // queue at capacity
//	}
//	item, ok := q.Dequeue()
//
// # Error Handling
//
// Construction fails fast with package-level sentinel errors
// (ErrInvalidCapacity, ErrInvalidExpiration, ErrInvalidPosition) checked
// with errors.Is. Runtime capacity exhaustion and expiration are not
// errors; they are reported through callbacks and counters.
package queue
