package domain

import "time"

// SubState is the part of a state that can be scheduled as a delayed
// sub-state. Only Apply is ever called on it.
type SubState[M any] interface {
	Apply(model M)
}

// Delayed pairs a sub-state with a delay relative to the previous entry
// of the same list (or to the moment the parent state was entered, for the
// first entry).
type Delayed[M any] struct {
	State SubState[M]
	Delay time.Duration
}

// After is shorthand for building a Delayed entry.
func After[M any](delay time.Duration, state SubState[M]) Delayed[M] {
	return Delayed[M]{State: state, Delay: delay}
}

// State is one logical step of a lesson.
//
// The model is owned by the caller and passed by shared reference, so M is
// normally a pointer type. The engine never copies it.
type State[M any] interface {
	// Apply enters the state. It is called exactly once per forward arrival.
	Apply(model M)

	// Unapply undoes the state when navigating backward, if BackBehavior allows it.
	Unapply(model M)

	// Reapply re-enters the state while moving backward onto it.
	Reapply(model M)

	// DelayedStates lists the sub-states to apply after the state is entered.
	// It is evaluated against the current model every time it is needed.
	DelayedStates(model M) []Delayed[M]

	// AutoDispatchDelay returns the delay after which the engine advances on
	// its own. The second result is false when the state waits for the user.
	AutoDispatchDelay(model M) (time.Duration, bool)

	// BackBehavior governs backward navigation past this state.
	BackBehavior() BackBehavior
}

// Base is a no-op State meant to be embedded by concrete states that only
// care about a subset of the methods.
type Base[M any] struct{}

// Apply does nothing.
func (Base[M]) Apply(M) {}

// Unapply does nothing.
func (Base[M]) Unapply(M) {}

// Reapply does nothing.
func (Base[M]) Reapply(M) {}

// DelayedStates schedules nothing.
func (Base[M]) DelayedStates(M) []Delayed[M] { return nil }

// AutoDispatchDelay never advances on its own.
func (Base[M]) AutoDispatchDelay(M) (time.Duration, bool) { return 0, false }

// BackBehavior returns Unapply.
func (Base[M]) BackBehavior() BackBehavior { return Unapply }

// Funcs adapts plain functions to the State interface. Every field is
// optional. A nil ReapplyFunc falls back to ApplyFunc.
type Funcs[M any] struct {
	ApplyFunc    func(M)
	UnapplyFunc  func(M)
	ReapplyFunc  func(M)
	DelayedFunc  func(M) []Delayed[M]
	AutoDispatch func(M) (time.Duration, bool)
	Back         BackBehavior
}

// Apply calls ApplyFunc when set.
func (f Funcs[M]) Apply(model M) {
	if f.ApplyFunc != nil {
		f.ApplyFunc(model)
	}
}

// Unapply calls UnapplyFunc when set.
func (f Funcs[M]) Unapply(model M) {
	if f.UnapplyFunc != nil {
		f.UnapplyFunc(model)
	}
}

// Reapply calls ReapplyFunc, or Apply when it is nil.
func (f Funcs[M]) Reapply(model M) {
	if f.ReapplyFunc != nil {
		f.ReapplyFunc(model)
		return
	}
	f.Apply(model)
}

// DelayedStates calls DelayedFunc when set.
func (f Funcs[M]) DelayedStates(model M) []Delayed[M] {
	if f.DelayedFunc == nil {
		return nil
	}
	return f.DelayedFunc(model)
}

// AutoDispatchDelay calls AutoDispatch when set.
func (f Funcs[M]) AutoDispatchDelay(model M) (time.Duration, bool) {
	if f.AutoDispatch == nil {
		return 0, false
	}
	return f.AutoDispatch(model)
}

// BackBehavior returns Back.
func (f Funcs[M]) BackBehavior() BackBehavior {
	return f.Back
}

// ApplyFunc adapts a single function to SubState.
type ApplyFunc[M any] func(M)

// Apply calls f(model).
func (f ApplyFunc[M]) Apply(model M) { f(model) }
