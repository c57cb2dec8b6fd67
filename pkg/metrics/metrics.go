package metrics

// Writer receives measurements from the schedulers. Implementations must
// be safe for concurrent use; every method may be called from multiple
// goroutines.
type Writer interface {
	// QueueSize records the current number of pending items.
	QueueSize(queue string, size int)
	// ActiveTasks records the current number of in-flight tasks.
	ActiveTasks(queue string, n int)
	// ItemEnqueued counts an accepted item.
	ItemEnqueued(queue string)
	// ItemDequeued counts an item handed to a handler or manual drain.
	ItemDequeued(queue string)
	// ItemRejected counts an item refused at capacity.
	ItemRejected(queue string)
	// ItemExpired counts an item dropped by the expiration sweep.
	ItemExpired(queue string)
	// TaskSettled counts a completed asynchronous task.
	TaskSettled(queue string, success bool)
}

// Nop is a Writer that discards all measurements. It is the default when
// no writer is configured.
type Nop struct{}

func (Nop) QueueSize(string, int)    {}
func (Nop) ActiveTasks(string, int)  {}
func (Nop) ItemEnqueued(string)      {}
func (Nop) ItemDequeued(string)      {}
func (Nop) ItemRejected(string)      {}
func (Nop) ItemExpired(string)       {}
func (Nop) TaskSettled(string, bool) {}
