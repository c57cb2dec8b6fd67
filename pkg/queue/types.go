package queue

import (
	"time"

	"github.com/google/uuid"
)

// DefaultQueueName is the queue name used in logs and metrics when no name is configured.
const DefaultQueueName = "default"

// Position selects which end of the queue an item is inserted at.
// The removal end is fixed at the front, so Back yields FIFO behavior
// and Front yields LIFO behavior.
type Position string

const (
	// Front inserts the item at the head of the queue.
	Front Position = "front"
	// Back inserts the item at the tail of the queue.
	Back Position = "back"
)

// Valid checks if the position is a recognized insertion end.
func (p Position) Valid() bool {
	return p == Front || p == Back
}

// Item wraps a queued value with the metadata the schedulers need:
// identity, insertion time, the priority captured at insertion, and an
// optional expiration deadline.
type Item[T any] struct {
	ID        uuid.UUID `json:"id"`
	Value     T         `json:"value"`
	Priority  int       `json:"priority"`
	AddedAt   time.Time `json:"added_at"`
	ExpiresAt time.Time `json:"expires_at,omitzero"`

	// seq is a monotonically increasing insertion counter used to keep
	// priority ordering stable: equal priorities drain in FIFO order.
	seq uint64
}

// Expired reports whether the item's deadline has passed at the given instant.
// Items without an expiration deadline never expire.
func (it Item[T]) Expired(now time.Time) bool {
	return !it.ExpiresAt.IsZero() && it.ExpiresAt.Before(now)
}
