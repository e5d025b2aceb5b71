package script

import (
	"maps"
	"slices"
)

// Board is the model a compiled flow operates on.
type Board struct {
	// Step is the id of the step whose screen is shown.
	Step string
	// Screen is the markdown content of the current screen.
	Screen string
	// Values holds the numeric state effects operate on.
	Values map[string]float64
	// Notes collects delayed notes shown on the current screen.
	Notes []string
	// Exit is "forward" or "backward" once navigation leaves the flow
	// and is cleared when a node is entered again.
	Exit string
}

// NewBoard returns an empty board.
func NewBoard() *Board {
	return &Board{Values: make(map[string]float64)}
}

// Snapshot is a detached, serializable copy of a Board.
type Snapshot struct {
	Step   string             `json:"step"`
	Screen string             `json:"screen"`
	Values map[string]float64 `json:"values"`
	Notes  []string           `json:"notes,omitempty"`
	Exit   string             `json:"exit,omitempty"`
}

// Snapshot copies the board.
func (b *Board) Snapshot() Snapshot {
	values := maps.Clone(b.Values)
	if values == nil {
		values = map[string]float64{}
	}
	return Snapshot{
		Step:   b.Step,
		Screen: b.Screen,
		Values: values,
		Notes:  slices.Clone(b.Notes),
		Exit:   b.Exit,
	}
}
