// Package clock adapts github.com/benbjohnson/clock to ports.Scheduler.
//
// Production code uses Real(). Tests pass a *clock.Mock to New and drive
// time with Add, which makes timer behavior deterministic.
package clock

import (
	"time"

	bclock "github.com/benbjohnson/clock"

	"github.com/aretw0/stepwise/pkg/ports"
)

// Scheduler implements ports.Scheduler on top of a clock.Clock.
type Scheduler struct {
	clock bclock.Clock
}

var _ ports.Scheduler = (*Scheduler)(nil)

// New wraps c.
func New(c bclock.Clock) *Scheduler {
	return &Scheduler{clock: c}
}

// Real returns a scheduler backed by the wall clock.
func Real() *Scheduler {
	return New(bclock.New())
}

// AfterFunc schedules f to run after d. Negative durations fire immediately.
func (s *Scheduler) AfterFunc(d time.Duration, f func()) ports.Timer {
	if d < 0 {
		d = 0
	}
	return s.clock.AfterFunc(d, f)
}

// Now returns the clock's current time.
func (s *Scheduler) Now() time.Time {
	return s.clock.Now()
}

// Clock returns the wrapped clock.
func (s *Scheduler) Clock() bclock.Clock {
	return s.clock
}
