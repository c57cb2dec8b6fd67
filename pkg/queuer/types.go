package queuer

// Handler processes one drained item synchronously. Panics propagate to
// the caller of a manual drain or crash the tick goroutine; the queuer
// neither retries nor swallows them.
type Handler[T any] func(value T)

// Status describes what the scheduler is currently doing.
type Status string

const (
	// StatusStopped means the tick loop is disarmed; queued items persist.
	StatusStopped Status = "stopped"
	// StatusIdle means the tick loop is armed but the queue is empty.
	StatusIdle Status = "idle"
	// StatusRunning means the tick loop is actively draining items.
	StatusRunning Status = "running"
)

// State is an immutable snapshot of the scheduler, republished through
// the configured publish hooks after every mutation.
type State[T any] struct {
	// Items holds the queued values in drain order.
	Items []T `json:"items"`

	Size    int  `json:"size"`
	IsEmpty bool `json:"is_empty"`
	IsFull  bool `json:"is_full"`

	Status    Status `json:"status"`
	IsRunning bool   `json:"is_running"`
	IsIdle    bool   `json:"is_idle"`

	ExecutionCount  uint64 `json:"execution_count"`
	RejectionCount  uint64 `json:"rejection_count"`
	ExpirationCount uint64 `json:"expiration_count"`
}
