package domain

import (
	"sort"
	"time"
)

// Sequence composes several states into a single state.
//
// Apply and Reapply run every member in order. Unapply only runs members
// whose own BackBehavior allows it. The auto-dispatch delay is the smallest
// delay any member asks for. Delayed sub-states of all members are merged
// into one list that fires at the same wall-clock offsets as the members'
// independent schedules would.
type Sequence[M any] struct {
	States []State[M]
}

// NewSequence creates a Sequence over states.
func NewSequence[M any](states ...State[M]) *Sequence[M] {
	return &Sequence[M]{States: states}
}

// Apply applies each member state on the model.
func (s *Sequence[M]) Apply(model M) {
	for _, st := range s.States {
		st.Apply(model)
	}
}

// Reapply reapplies each member state on the model.
func (s *Sequence[M]) Reapply(model M) {
	for _, st := range s.States {
		st.Reapply(model)
	}
}

// Unapply unapplies the members whose BackBehavior says they should be.
func (s *Sequence[M]) Unapply(model M) {
	for _, st := range s.States {
		if st.BackBehavior().ShouldUnapply() {
			st.Unapply(model)
		}
	}
}

// AutoDispatchDelay returns the smallest delay reported by any member.
func (s *Sequence[M]) AutoDispatchDelay(model M) (time.Duration, bool) {
	var (
		min   time.Duration
		found bool
	)
	for _, st := range s.States {
		d, ok := st.AutoDispatchDelay(model)
		if !ok {
			continue
		}
		if !found || d < min {
			min, found = d, true
		}
	}
	return min, found
}

// BackBehavior aggregates the members' behaviors.
//
// Skip wins if any member skips, even when another member is
// SkipAndIgnore; the ignored members are still not unapplied.
func (s *Sequence[M]) BackBehavior() BackBehavior {
	var anySkip, anySkipAndIgnore bool
	for _, st := range s.States {
		switch st.BackBehavior() {
		case Skip:
			anySkip = true
		case SkipAndIgnore:
			anySkipAndIgnore = true
		}
	}
	switch {
	case anySkip:
		return Skip
	case anySkipAndIgnore:
		return SkipAndIgnore
	default:
		return Unapply
	}
}

type timedSubState[M any] struct {
	state SubState[M]
	at    time.Duration
}

// DelayedStates merges the members' delayed sub-states.
//
// Each member list is converted to offsets from the moment the sequence is
// entered, the lists are concatenated and stably sorted by offset, and the
// result is converted back to delays relative to the previous entry.
func (s *Sequence[M]) DelayedStates(model M) []Delayed[M] {
	var timed []timedSubState[M]
	for _, st := range s.States {
		var at time.Duration
		for _, d := range st.DelayedStates(model) {
			at += d.Delay
			timed = append(timed, timedSubState[M]{state: d.State, at: at})
		}
	}
	if len(timed) == 0 {
		return nil
	}

	sort.SliceStable(timed, func(i, j int) bool {
		return timed[i].at < timed[j].at
	})

	merged := make([]Delayed[M], len(timed))
	var prev time.Duration
	for i, t := range timed {
		merged[i] = Delayed[M]{State: t.state, Delay: t.at - prev}
		prev = t.at
	}
	return merged
}
