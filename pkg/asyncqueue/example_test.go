package asyncqueue_test

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrymomot/pacer/pkg/asyncqueue"
	"github.com/dmitrymomot/pacer/pkg/broadcast"
	"github.com/dmitrymomot/pacer/pkg/queue"
)

type Delivery struct {
	URL     string
	Payload []byte
}

func sendWebhook(ctx context.Context, d Delivery) (int, error) {
	// Deliver d.Payload to d.URL and return the status code.
	return 200, nil
}

func Example() {
	q, err := asyncqueue.New(sendWebhook,
		asyncqueue.WithConcurrency[Delivery, int](4),
		asyncqueue.WithMaxSize[Delivery, int](1000),
		asyncqueue.WithWait[Delivery, int](10*time.Millisecond),
	)
	if err != nil {
		panic(err)
	}

	q.AddItem(Delivery{URL: "https://example.com/hooks", Payload: []byte(`{}`)})

	if err := q.Drain(context.Background()); err != nil {
		fmt.Println("drain:", err)
	}
}

func ExampleWithPriority() {
	type job struct {
		name     string
		priority int
	}

	q, err := asyncqueue.New(func(ctx context.Context, j job) (string, error) {
		return j.name, nil
	},
		asyncqueue.WithStarted[job, string](false),
		asyncqueue.WithPriority[job, string](func(j job) int { return j.priority }),
	)
	if err != nil {
		panic(err)
	}

	q.AddItem(job{"cleanup", 1})
	q.AddItem(job{"page-oncall", 9})

	it, _ := q.GetNextItem()
	fmt.Println(it.Value.name)
	// Output: page-oncall
}

func ExampleWithStatePublisher() {
	ctx := context.Background()

	hub := broadcast.NewMemoryBroadcaster[asyncqueue.State[string]](
		broadcast.WithReplayLatest(),
		broadcast.WithBufferSize(16),
	)
	defer hub.Close()

	q, err := asyncqueue.New(func(ctx context.Context, s string) (string, error) {
		return s, nil
	},
		asyncqueue.WithStatePublisher[string, string](func(s asyncqueue.State[string]) {
			_ = hub.Broadcast(ctx, s)
		}),
	)
	if err != nil {
		panic(err)
	}

	sub := hub.Subscribe(ctx)
	go func() {
		for msg := range sub.Receive(ctx) {
			_ = msg.Data // push to UI, SSE stream, etc.
		}
	}()

	q.AddItem("refresh-dashboard")
	_ = q.Drain(ctx)
}

func ExampleAsyncQueuer_Execute() {
	q, err := asyncqueue.New(func(ctx context.Context, n int) (int, error) {
		return n * n, nil
	}, asyncqueue.WithStarted[int, int](false))
	if err != nil {
		panic(err)
	}

	q.AddItem(7)

	result, err := q.Execute(context.Background())
	if err != nil {
		panic(err)
	}
	fmt.Println(result)
	// Output: 49
}

func ExampleAsyncQueuer_AddItem_position() {
	q, err := asyncqueue.New(func(ctx context.Context, s string) (string, error) {
		return s, nil
	}, asyncqueue.WithStarted[string, string](false))
	if err != nil {
		panic(err)
	}

	q.AddItem("routine")
	q.AddItem("urgent", queue.Front)

	fmt.Println(q.PeekPendingItems())
	// Output: [urgent routine]
}
