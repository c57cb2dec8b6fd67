package queue

import "time"

// Clock supplies insertion timestamps and the expiration sweep's notion
// of now. Injecting it keeps deadline logic testable without real
// sleeps.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock returns a Clock backed by time.Now. It is the default
// when no clock is configured.
func SystemClock() Clock { return systemClock{} }
