package ports

import "time"

// Timer is a pending one-shot callback.
type Timer interface {
	// Stop prevents the timer from firing. It returns false if the timer
	// already fired or was already stopped.
	Stop() bool
}

// Scheduler creates timers and reports the current time.
type Scheduler interface {
	// AfterFunc calls f in its own goroutine once d has elapsed.
	AfterFunc(d time.Duration, f func()) Timer
	// Now returns the current time of the scheduler's clock.
	Now() time.Time
}

// Executor runs task in the caller's chosen execution context.
// It must eventually run every task it is given.
type Executor func(task func())

// Inline runs the task immediately on the calling goroutine.
func Inline(task func()) { task() }
