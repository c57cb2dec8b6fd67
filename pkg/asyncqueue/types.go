package asyncqueue

import "context"

// Handler processes one admitted item. It runs in its own goroutine, up
// to the configured concurrency bound in parallel. Handlers receive only
// the item's value, never a reference to the queue or its state.
type Handler[T, R any] func(ctx context.Context, value T) (R, error)

// Status describes what the scheduler is currently doing.
type Status string

const (
	// StatusStopped means no new admissions occur; queued items persist.
	StatusStopped Status = "stopped"
	// StatusIdle means the scheduler is running with nothing to do.
	StatusIdle Status = "idle"
	// StatusRunning means at least one task is in flight or pending.
	StatusRunning Status = "running"
)

// State is an immutable snapshot of the scheduler, republished through
// the configured publish hooks after every mutation.
type State[T any] struct {
	// Items holds everything the scheduler currently owns: in-flight
	// items in admission order followed by pending items in drain order.
	Items []T `json:"items"`
	// PendingItems holds queued values in drain order.
	PendingItems []T `json:"pending_items"`
	// ActiveItems holds in-flight values in admission order; its length
	// never exceeds the concurrency bound.
	ActiveItems []T `json:"active_items"`

	Size    int  `json:"size"`
	IsEmpty bool `json:"is_empty"`
	IsFull  bool `json:"is_full"`

	Status      Status `json:"status"`
	IsRunning   bool   `json:"is_running"`
	IsIdle      bool   `json:"is_idle"`
	IsExecuting bool   `json:"is_executing"`

	ExecutionCount  uint64 `json:"execution_count"`
	SuccessCount    uint64 `json:"success_count"`
	ErrorCount      uint64 `json:"error_count"`
	SettledCount    uint64 `json:"settled_count"`
	RejectionCount  uint64 `json:"rejection_count"`
	ExpirationCount uint64 `json:"expiration_count"`
}
