// Package async provides a small generic Future primitive for running a
// computation in its own goroutine and reacting to its settlement.
//
// A Future is obtained from Async, which starts the supplied function and
// returns immediately. The settlement can be consumed three ways: block
// with Await or AwaitWithTimeout, poll with IsComplete, or register a
// continuation with OnSettle that fires exactly once when the result is
// available. Continuations are what the asyncqueue scheduler uses to free
// a concurrency slot the moment a task settles, without a dedicated
// waiting goroutine per task.
//
// WaitAll and WaitAny coordinate several futures: the former collects all
// results, the latter returns the first settlement.
//
// # Usage
//
//	future := async.Async(ctx, userID, fetchProfile)
//	future.OnSettle(func(p Profile, err error) {
//	    // runs in the goroutine that settled the future
//	})
//	profile, err := future.Await()
//
// # Error Handling
//
// A future settles with whatever error the computation returned; a
// context cancelled before the computation starts settles the future with
// the context error. AwaitWithTimeout returns ErrTimeout when the wait is
// exhausted, while the computation keeps running.
package async
