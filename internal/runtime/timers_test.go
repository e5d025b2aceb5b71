package runtime_test

import (
	"fmt"
	"testing"
	"time"

	bclock "github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/stepwise/internal/runtime"
	"github.com/aretw0/stepwise/pkg/adapters/clock"
	"github.com/aretw0/stepwise/pkg/domain"
)

const (
	waitFor = time.Second
	tick    = time.Millisecond
	quiet   = 30 * time.Millisecond
)

func valueOf(c *runtime.Controller[*tester]) int {
	var v int
	c.View(func(m *tester) { v = m.value })
	return v
}

func notesOf(c *runtime.Controller[*tester]) []string {
	var notes []string
	c.View(func(m *tester) { notes = append(notes, m.notes...) })
	return notes
}

func TestController_NextStateIsAutomaticallyDispatched(t *testing.T) {
	mock := bclock.NewMock()
	c := runtime.New(&tester{}, linear(t, set(0), setValue{value: 1, autoAdvance: 100 * time.Millisecond}, set(2)),
		runtime.WithScheduler(clock.New(mock)))
	t.Cleanup(c.Stop)

	assert.Equal(t, 0, valueOf(c))
	c.Next()
	assert.Equal(t, 1, valueOf(c))

	mock.Add(99 * time.Millisecond)
	assert.Never(t, func() bool { return valueOf(c) == 2 }, quiet, tick)

	mock.Add(time.Millisecond)
	assert.Eventually(t, func() bool { return valueOf(c) == 2 }, waitFor, tick)
}

func TestController_RootTimersAreNotStartedByDefault(t *testing.T) {
	sched := &manualScheduler{}
	auto := setValue{value: 1, autoAdvance: time.Second}

	runtime.New(&tester{}, linear(t, auto, set(2)), runtime.WithScheduler(sched))
	assert.Equal(t, 0, sched.count())

	c := runtime.New(&tester{}, linear(t, auto, set(2)), runtime.WithScheduler(sched), runtime.WithScheduleOnStart())
	require.Equal(t, 1, sched.count())
	sched.fire(0)
	assert.Equal(t, 2, valueOf(c))
}

func TestController_AutoDispatchAtEndExitsForward(t *testing.T) {
	sched := &manualScheduler{}
	c := runtime.New(&tester{}, linear(t, set(0), setValue{value: 1, autoAdvance: time.Second}),
		runtime.WithScheduler(sched))
	exited := make(chan struct{}, 1)
	c.OnExitForward(func() { exited <- struct{}{} })

	c.Next()
	require.Equal(t, 1, sched.count())
	sched.fire(0)

	select {
	case <-exited:
	default:
		t.Fatal("expected exit-forward callback")
	}
	assert.Equal(t, 1, valueOf(c))
}

func delayedNotes(m *tester) []domain.Delayed[*tester] {
	return []domain.Delayed[*tester]{
		domain.After[*tester](100*time.Millisecond, note("first")),
		domain.After[*tester](200*time.Millisecond, note(fmt.Sprintf("second-%d", m.value))),
	}
}

func TestController_SubStatesChainWithFreshLookups(t *testing.T) {
	mock := bclock.NewMock()
	withNotes := domain.Funcs[*tester]{
		ApplyFunc:   func(m *tester) { m.value = 1 },
		DelayedFunc: delayedNotes,
	}
	c := runtime.New(&tester{}, linear(t, set(0), withNotes), runtime.WithScheduler(clock.New(mock)))
	t.Cleanup(c.Stop)

	c.Next()
	mock.Add(100 * time.Millisecond)
	assert.Eventually(t, func() bool { return len(notesOf(c)) == 1 }, waitFor, tick)
	assert.Equal(t, []string{"first"}, notesOf(c))

	// The second entry is computed from the model at the time it fires.
	c.View(func(m *tester) { m.value = 7 })

	mock.Add(199 * time.Millisecond)
	assert.Never(t, func() bool { return len(notesOf(c)) > 1 }, quiet, tick)
	mock.Add(time.Millisecond)
	assert.Eventually(t, func() bool { return len(notesOf(c)) == 2 }, waitFor, tick)
	assert.Equal(t, []string{"first", "second-7"}, notesOf(c))
}

func TestController_NavigationCancelsPendingTimers(t *testing.T) {
	mock := bclock.NewMock()
	withNotes := domain.Funcs[*tester]{
		ApplyFunc:    func(m *tester) { m.value = 1 },
		DelayedFunc:  delayedNotes,
		AutoDispatch: func(*tester) (time.Duration, bool) { return 150 * time.Millisecond, true },
	}
	c := runtime.New(&tester{}, linear(t, set(0), withNotes, set(2)), runtime.WithScheduler(clock.New(mock)))
	t.Cleanup(c.Stop)

	c.Next()
	mock.Add(50 * time.Millisecond)
	c.Back()
	assert.Equal(t, 0, valueOf(c))

	mock.Add(time.Second)
	assert.Never(t, func() bool { return len(notesOf(c)) > 0 || valueOf(c) != 0 }, quiet, tick)
}

func TestController_RestartDropsStaleFires(t *testing.T) {
	sched := &manualScheduler{}
	auto := setValue{value: 1, autoAdvance: time.Second}
	c := runtime.New(&tester{}, linear(t, set(0), auto, set(2)), runtime.WithScheduler(sched))

	c.Next()
	require.Equal(t, 1, sched.count())
	c.Back()
	c.Next()
	require.Equal(t, 2, sched.count())

	// The first timer could not be stopped, but its generation is stale.
	sched.fire(0)
	assert.Equal(t, 1, valueOf(c))

	sched.fire(1)
	assert.Equal(t, 2, valueOf(c))

	// A timer never fires twice.
	sched.fire(1)
	assert.Equal(t, 2, valueOf(c))
}

func TestController_StopDropsPendingFires(t *testing.T) {
	sched := &manualScheduler{}
	c := runtime.New(&tester{}, linear(t, set(0), setValue{value: 1, autoAdvance: time.Second}, set(2)),
		runtime.WithScheduler(sched))

	c.Next()
	c.Stop()
	sched.fire(0)
	assert.Equal(t, 1, valueOf(c))

	c.Back()
	c.Next()
	assert.Equal(t, 1, sched.count(), "no timers are armed after Stop")
}

func TestController_ExecutorReceivesTimerTasks(t *testing.T) {
	sched := &manualScheduler{}
	queue := make(chan func(), 4)
	c := runtime.New(&tester{}, linear(t, set(0), setValue{value: 1, autoAdvance: time.Second}, set(2)),
		runtime.WithScheduler(sched),
		runtime.WithExecutor(func(task func()) { queue <- task }))

	c.Next()
	sched.fire(0)
	assert.Equal(t, 1, valueOf(c), "the fire is only queued")

	require.Len(t, queue, 1)
	(<-queue)()
	assert.Equal(t, 2, valueOf(c))
}

func TestController_NegativeDelaysAreClamped(t *testing.T) {
	sched := &manualScheduler{}
	neg := domain.Funcs[*tester]{
		DelayedFunc: func(*tester) []domain.Delayed[*tester] {
			return []domain.Delayed[*tester]{domain.After[*tester](-time.Second, note("late"))}
		},
	}
	c := runtime.New(&tester{}, linear(t, set(0), neg), runtime.WithScheduler(sched))

	c.Next()
	require.Equal(t, 1, sched.count())
	assert.Equal(t, time.Duration(0), sched.ds[0])
	sched.fire(0)
	assert.Equal(t, []string{"late"}, notesOf(c))
}
