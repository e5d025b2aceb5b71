package runtime_test

import (
	"sync"
	"time"

	"github.com/aretw0/stepwise/pkg/domain"
	"github.com/aretw0/stepwise/pkg/ports"
)

type tester struct {
	value          int
	unappliedValue int
	notes          []string
}

// setValue sets the value on apply and reapply.
type setValue struct {
	domain.Base[*tester]
	value       int
	noReapply   bool
	back        domain.BackBehavior
	unapplyTo   *int
	autoAdvance time.Duration
}

func (s setValue) Apply(t *tester) { t.value = s.value }

func (s setValue) Reapply(t *tester) {
	if !s.noReapply {
		s.Apply(t)
	}
}

func (s setValue) Unapply(t *tester) {
	if s.unapplyTo != nil {
		t.unappliedValue = *s.unapplyTo
	}
}

func (s setValue) BackBehavior() domain.BackBehavior { return s.back }

func (s setValue) AutoDispatchDelay(*tester) (time.Duration, bool) {
	return s.autoAdvance, s.autoAdvance > 0
}

func set(v int) domain.State[*tester] { return setValue{value: v} }

// incrementing adds one on apply. By default it reapplies and never unapplies.
type incrementing struct {
	domain.Base[*tester]
	unapply   bool
	noReapply bool
}

func (incrementing) Apply(t *tester) { t.value++ }

func (s incrementing) Reapply(t *tester) {
	if !s.noReapply {
		s.Apply(t)
	}
}

func (s incrementing) Unapply(t *tester) {
	if s.unapply {
		t.value--
	}
}

type note string

func (n note) Apply(t *tester) { t.notes = append(t.notes, string(n)) }

// manualScheduler records callbacks and ignores Stop, which mimics a timer
// that already fired while the controller was busy.
type manualScheduler struct {
	mu  sync.Mutex
	fns []func()
	ds  []time.Duration
}

type stubbornTimer struct{}

func (stubbornTimer) Stop() bool { return false }

func (s *manualScheduler) AfterFunc(d time.Duration, f func()) ports.Timer {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fns = append(s.fns, f)
	s.ds = append(s.ds, d)
	return stubbornTimer{}
}

func (s *manualScheduler) Now() time.Time { return time.Time{} }

func (s *manualScheduler) fire(i int) {
	s.mu.Lock()
	f := s.fns[i]
	s.mu.Unlock()
	f()
}

func (s *manualScheduler) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.fns)
}
