// Package broadcast provides type-safe fan-out of values to multiple
// subscribers, used by the queuer and asyncqueue packages to push state
// snapshots to reactive consumers.
//
// # Delivery
//
// Publishes never block: each subscriber has a buffered channel and a
// full buffer means that subscriber misses the message and is detached.
// Every message carries a per-broadcaster sequence number so consumers
// can detect gaps. With WithReplayLatest a new subscriber immediately
// receives the most recent message, which suits state snapshots where
// only the latest value matters.
//
// # Usage
//
//	b := broadcast.NewMemoryBroadcaster[asyncqueue.State[Job]](
//	    broadcast.WithReplayLatest(),
//	)
//	defer b.Close()
//
//	q, err := asyncqueue.New(process,
//	    asyncqueue.WithStatePublisher[Job, Result](func(s asyncqueue.State[Job]) {
//	        _ = b.Broadcast(context.Background(), s)
//	    }),
//	)
//
//	sub := b.Subscribe(ctx)
//	for msg := range sub.Receive(ctx) {
//	    render(msg.Data)
//	}
//
// # Error Handling
//
// Broadcast returns ErrClosed after Close. Dropped messages for slow
// consumers are by contract not errors; consumers needing every update
// should subscribe with a larger buffer via WithBufferSize.
package broadcast
