package debounce

import (
	"time"
)

// Clock supplies the current time and delayed callbacks to a Debouncer. It
// exists so that the timer backend can be swapped out, most usefully for a
// manual clock in tests that drives the state machine without sleeping.
//
// Implementations must guarantee that callbacks fire no earlier than the
// requested duration, and that Stop on a returned Timer prevents the callback
// from firing unless it is already in flight.
type Clock interface {
	// Now returns the current time. The default implementation carries a
	// monotonic reading, so elapsed-time arithmetic is immune to wall
	// clock adjustments.
	Now() time.Time

	// AfterFunc schedules f to run on its own goroutine after d has
	// elapsed, and returns a handle that can stop it.
	AfterFunc(d time.Duration, f func()) Timer
}

// Timer is the handle for a callback scheduled through a Clock.
type Timer interface {
	// Stop cancels the pending callback, reporting whether it was stopped
	// before firing.
	Stop() bool
}

// SystemClock returns the default Clock, backed by time.Now and
// time.AfterFunc.
func SystemClock() Clock {
	return systemClock{}
}

type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now()
}

func (systemClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}
