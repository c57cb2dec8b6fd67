package async_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/pacer/pkg/async"
)

func TestAsync(t *testing.T) {
	t.Parallel()

	t.Run("returns result", func(t *testing.T) {
		t.Parallel()

		f := async.Async(context.Background(), 21, func(ctx context.Context, n int) (int, error) {
			return n * 2, nil
		})

		result, err := f.Await()
		require.NoError(t, err)
		assert.Equal(t, 42, result)
		assert.True(t, f.IsComplete())
	})

	t.Run("returns error", func(t *testing.T) {
		t.Parallel()

		wantErr := errors.New("boom")
		f := async.Async(context.Background(), "x", func(ctx context.Context, s string) (string, error) {
			return "", wantErr
		})

		_, err := f.Await()
		assert.ErrorIs(t, err, wantErr)
	})

	t.Run("cancelled context skips fn", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		var called atomic.Bool
		f := async.Async(ctx, 0, func(ctx context.Context, _ int) (int, error) {
			called.Store(true)
			return 1, nil
		})

		_, err := f.Await()
		assert.ErrorIs(t, err, context.Canceled)
		assert.False(t, called.Load())
	})
}

func TestAwaitWithTimeout(t *testing.T) {
	t.Parallel()

	t.Run("settles in time", func(t *testing.T) {
		t.Parallel()

		f := async.Async(context.Background(), 0, func(ctx context.Context, _ int) (string, error) {
			return "done", nil
		})

		result, err := f.AwaitWithTimeout(time.Second)
		require.NoError(t, err)
		assert.Equal(t, "done", result)
	})

	t.Run("times out", func(t *testing.T) {
		t.Parallel()

		release := make(chan struct{})
		defer close(release)

		f := async.Async(context.Background(), 0, func(ctx context.Context, _ int) (string, error) {
			<-release
			return "late", nil
		})

		_, err := f.AwaitWithTimeout(10 * time.Millisecond)
		assert.ErrorIs(t, err, async.ErrTimeout)
	})
}

func TestOnSettle(t *testing.T) {
	t.Parallel()

	t.Run("runs on settlement", func(t *testing.T) {
		t.Parallel()

		got := make(chan int, 1)
		f := async.Async(context.Background(), 5, func(ctx context.Context, n int) (int, error) {
			return n + 1, nil
		})
		f.OnSettle(func(result int, err error) {
			got <- result
		})

		select {
		case result := <-got:
			assert.Equal(t, 6, result)
		case <-time.After(time.Second):
			t.Fatal("continuation never ran")
		}
	})

	t.Run("runs immediately when already settled", func(t *testing.T) {
		t.Parallel()

		f := async.Async(context.Background(), 0, func(ctx context.Context, _ int) (int, error) {
			return 7, nil
		})
		_, err := f.Await()
		require.NoError(t, err)

		var ran bool
		f.OnSettle(func(result int, err error) {
			ran = true
			assert.Equal(t, 7, result)
		})
		assert.True(t, ran)
	})

	t.Run("registration order preserved", func(t *testing.T) {
		t.Parallel()

		release := make(chan struct{})
		f := async.Async(context.Background(), 0, func(ctx context.Context, _ int) (int, error) {
			<-release
			return 0, nil
		})

		var order []int
		done := make(chan struct{})
		f.OnSettle(func(int, error) { order = append(order, 1) })
		f.OnSettle(func(int, error) { order = append(order, 2) })
		f.OnSettle(func(int, error) {
			order = append(order, 3)
			close(done)
		})

		close(release)
		<-done
		assert.Equal(t, []int{1, 2, 3}, order)
	})
}

func TestWaitAll(t *testing.T) {
	t.Parallel()

	t.Run("collects results in order", func(t *testing.T) {
		t.Parallel()

		double := func(ctx context.Context, n int) (int, error) { return n * 2, nil }
		f1 := async.Async(context.Background(), 1, double)
		f2 := async.Async(context.Background(), 2, double)
		f3 := async.Async(context.Background(), 3, double)

		results, err := async.WaitAll(f1, f2, f3)
		require.NoError(t, err)
		assert.Equal(t, []int{2, 4, 6}, results)
	})

	t.Run("returns first error", func(t *testing.T) {
		t.Parallel()

		wantErr := errors.New("second failed")
		f1 := async.Async(context.Background(), 1, func(ctx context.Context, n int) (int, error) { return n, nil })
		f2 := async.Async(context.Background(), 2, func(ctx context.Context, n int) (int, error) { return 0, wantErr })

		results, err := async.WaitAll(f1, f2)
		assert.ErrorIs(t, err, wantErr)
		assert.Len(t, results, 2)
	})
}

func TestWaitAny(t *testing.T) {
	t.Parallel()

	t.Run("returns the fastest", func(t *testing.T) {
		t.Parallel()

		slow := make(chan struct{})
		defer close(slow)

		f1 := async.Async(context.Background(), 0, func(ctx context.Context, _ int) (string, error) {
			<-slow
			return "slow", nil
		})
		f2 := async.Async(context.Background(), 0, func(ctx context.Context, _ int) (string, error) {
			return "fast", nil
		})

		index, result, err := async.WaitAny(f1, f2)
		require.NoError(t, err)
		assert.Equal(t, 1, index)
		assert.Equal(t, "fast", result)
	})

	t.Run("no futures", func(t *testing.T) {
		t.Parallel()

		index, _, err := async.WaitAny[int]()
		assert.Equal(t, -1, index)
		assert.ErrorIs(t, err, async.ErrNoFutures)
	})
}
