package domain_test

import (
	"testing"
	"time"

	"github.com/aretw0/stepwise/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	calls []string
}

type keyed struct {
	key string
}

func (k keyed) Apply(r *recorder) { r.calls = append(r.calls, k.key) }

func recording(key string, back domain.BackBehavior) domain.Funcs[*recorder] {
	return domain.Funcs[*recorder]{
		ApplyFunc:   func(r *recorder) { r.calls = append(r.calls, "apply "+key) },
		UnapplyFunc: func(r *recorder) { r.calls = append(r.calls, "unapply "+key) },
		ReapplyFunc: func(r *recorder) { r.calls = append(r.calls, "reapply "+key) },
		Back:        back,
	}
}

func withDelays(key string, delays ...time.Duration) domain.Funcs[*recorder] {
	return domain.Funcs[*recorder]{
		DelayedFunc: func(*recorder) []domain.Delayed[*recorder] {
			out := make([]domain.Delayed[*recorder], len(delays))
			for i, d := range delays {
				out[i] = domain.After[*recorder](d, keyed{key: key})
			}
			return out
		},
	}
}

func withAutoDispatch(d time.Duration) domain.Funcs[*recorder] {
	return domain.Funcs[*recorder]{
		AutoDispatch: func(*recorder) (time.Duration, bool) { return d, true },
	}
}

func TestSequence_DelayedStatesMerge(t *testing.T) {
	seq := domain.NewSequence[*recorder](
		withDelays("A", time.Second, 2*time.Second),
		withDelays("B", 500*time.Millisecond, time.Second),
	)

	merged := seq.DelayedStates(&recorder{})
	require.Len(t, merged, 4)

	wantDelays := []time.Duration{
		500 * time.Millisecond,
		500 * time.Millisecond,
		500 * time.Millisecond,
		1500 * time.Millisecond,
	}
	wantKeys := []string{"B", "A", "B", "A"}
	for i, d := range merged {
		assert.Equal(t, wantDelays[i], d.Delay, "delay at %d", i)
		assert.Equal(t, wantKeys[i], d.State.(keyed).key, "key at %d", i)
	}
}

func TestSequence_DelayedStatesTiesKeepMemberOrder(t *testing.T) {
	seq := domain.NewSequence[*recorder](
		withDelays("A", time.Second),
		withDelays("B", time.Second),
	)

	merged := seq.DelayedStates(&recorder{})
	require.Len(t, merged, 2)
	assert.Equal(t, "A", merged[0].State.(keyed).key)
	assert.Equal(t, time.Second, merged[0].Delay)
	assert.Equal(t, "B", merged[1].State.(keyed).key)
	assert.Equal(t, time.Duration(0), merged[1].Delay)
}

func TestSequence_Empty(t *testing.T) {
	seq := domain.NewSequence[*recorder]()

	assert.Empty(t, seq.DelayedStates(&recorder{}))
	_, ok := seq.AutoDispatchDelay(&recorder{})
	assert.False(t, ok)
	assert.Equal(t, domain.Unapply, seq.BackBehavior())
}

func TestSequence_AutoDispatchDelayIsMinimum(t *testing.T) {
	seq := domain.NewSequence[*recorder](
		withAutoDispatch(3*time.Second),
		domain.Funcs[*recorder]{},
		withAutoDispatch(time.Second),
	)

	d, ok := seq.AutoDispatchDelay(&recorder{})
	require.True(t, ok)
	assert.Equal(t, time.Second, d)
}

func TestSequence_BackBehaviorPrecedence(t *testing.T) {
	tests := []struct {
		name    string
		members []domain.BackBehavior
		want    domain.BackBehavior
	}{
		{"all unapply", []domain.BackBehavior{domain.Unapply, domain.Unapply}, domain.Unapply},
		{"ignore only", []domain.BackBehavior{domain.Unapply, domain.SkipAndIgnore}, domain.SkipAndIgnore},
		{"skip first", []domain.BackBehavior{domain.Skip, domain.SkipAndIgnore}, domain.Skip},
		{"skip last", []domain.BackBehavior{domain.SkipAndIgnore, domain.Skip}, domain.Skip},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			states := make([]domain.State[*recorder], len(tt.members))
			for i, b := range tt.members {
				states[i] = domain.Funcs[*recorder]{Back: b}
			}
			assert.Equal(t, tt.want, domain.NewSequence(states...).BackBehavior())
		})
	}
}

func TestSequence_ApplyUnapplyReapply(t *testing.T) {
	seq := domain.NewSequence[*recorder](
		recording("a", domain.Unapply),
		recording("b", domain.SkipAndIgnore),
		recording("c", domain.Skip),
	)
	r := &recorder{}

	seq.Apply(r)
	seq.Unapply(r)
	seq.Reapply(r)

	assert.Equal(t, []string{
		"apply a", "apply b", "apply c",
		"unapply a", "unapply c",
		"reapply a", "reapply b", "reapply c",
	}, r.calls)
}
