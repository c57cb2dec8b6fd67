// Package queuer provides a synchronous tick scheduler: queued items
// drain one at a time into a handler running on a dedicated goroutine,
// with optional spacing between invocations.
//
// Exactly one handler invocation is in flight at any moment. For
// concurrent execution with a bounded number of in-flight tasks, use the
// asyncqueue package instead; both schedulers share the same queue
// semantics (capacity, priority, expiration, insertion position).
//
// # Ticking
//
// With a zero wait (the default) the loop drains items back to back and
// parks when the queue is empty until the next AddItem. A positive wait
// inserts that much delay after every handler invocation, turning the
// loop into a rate-limited drain. Stop disarms the loop without touching
// queued items; Start re-arms it.
//
// # Usage
//
//	q, err := queuer.New(func(msg string) {
//	    fmt.Println(msg)
//	}, queuer.WithWait[string](time.Second))
//	if err != nil {
//	    return err
//	}
//
//	q.AddItem("hello")
//	q.AddItem("world")
//
// Items can also be drained manually, bypassing the loop:
//
//	value, ok := q.Execute()
//
// # Error Handling
//
// Configuration problems (nil handler, negative wait or capacity) fail
// fast at construction time with package-level sentinel errors. The
// handler returns nothing; panics propagate and crash the tick
// goroutine, so recover inside the handler if that is not acceptable.
package queuer
