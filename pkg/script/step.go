package script

import (
	"time"

	"github.com/aretw0/stepwise/pkg/domain"
)

func (e Effects) apply(b *Board) {
	if b.Values == nil {
		b.Values = make(map[string]float64)
	}
	for k, v := range e.Set {
		b.Values[k] = v
	}
	for k, v := range e.Add {
		b.Values[k] += v
	}
}

// Step is the screen state compiled from a ScreenDef.
//
// Apply shows the screen and runs its effects. Reapply shows the screen
// again and replays only set effects, unless reapply is false. Unapply runs
// undo, or reverses the add effects when undo is omitted.
type Step struct {
	ID  string
	def ScreenDef
}

var _ domain.State[*Board] = (*Step)(nil)

// NewStep creates the state for one screen of step id.
func NewStep(id string, def ScreenDef) *Step {
	return &Step{ID: id, def: def}
}

func (s *Step) show(b *Board) {
	b.Step = s.ID
	if s.def.Content != "" {
		b.Screen = s.def.Content
	}
	b.Notes = nil
}

func (s *Step) Apply(b *Board) {
	s.show(b)
	s.def.Effects.apply(b)
}

func (s *Step) Reapply(b *Board) {
	s.show(b)
	if s.def.Reapply == nil || *s.def.Reapply {
		Effects{Set: s.def.Set}.apply(b)
	}
}

func (s *Step) Unapply(b *Board) {
	if s.def.Undo != nil {
		s.def.Undo.apply(b)
		return
	}
	if len(s.def.Add) == 0 {
		return
	}
	reverse := make(map[string]float64, len(s.def.Add))
	for k, v := range s.def.Add {
		reverse[k] = -v
	}
	Effects{Add: reverse}.apply(b)
}

func (s *Step) DelayedStates(*Board) []domain.Delayed[*Board] {
	if len(s.def.Delayed) == 0 {
		return nil
	}
	out := make([]domain.Delayed[*Board], len(s.def.Delayed))
	for i, d := range s.def.Delayed {
		out[i] = domain.After[*Board](d.After, noteState{note: d.Note, effects: d.Effects})
	}
	return out
}

func (s *Step) AutoDispatchDelay(*Board) (time.Duration, bool) {
	return s.def.AutoAdvance, s.def.AutoAdvance > 0
}

func (s *Step) BackBehavior() domain.BackBehavior {
	return s.def.Back
}

// noteState is a delayed sub-state.
type noteState struct {
	note    string
	effects Effects
}

func (n noteState) Apply(b *Board) {
	if n.note != "" {
		b.Notes = append(b.Notes, n.note)
	}
	n.effects.apply(b)
}
