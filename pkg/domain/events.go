package domain

import (
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventNodeEnter    EventType = "node_enter"
	EventNodeLeave    EventType = "node_leave"
	EventSubState     EventType = "sub_state"
	EventAutoDispatch EventType = "auto_dispatch"
	EventFlowExit     EventType = "flow_exit"
)

// Direction is the direction of a navigation step.
type Direction string

const (
	Forward  Direction = "forward"
	Backward Direction = "backward"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
}

// NodeEvent represents entry into or departure from a node.
type NodeEvent struct {
	EventBase
	NodeID    int       `json:"node_id"`
	Label     string    `json:"label,omitempty"`
	Kind      string    `json:"kind"`
	Direction Direction `json:"direction"`
	// Skipped is set on a backward leave when the node is passed over
	// because of its BackBehavior.
	Skipped bool `json:"skipped,omitempty"`
}

// SubStateEvent represents a delayed sub-state being applied.
type SubStateEvent struct {
	EventBase
	NodeID int           `json:"node_id"`
	Label  string        `json:"label,omitempty"`
	Index  int           `json:"index"`
	Delay  time.Duration `json:"delay"`
}

// ExitEvent is emitted when navigation runs off either end of the graph.
type ExitEvent struct {
	EventBase
	NodeID    int       `json:"node_id"`
	Label     string    `json:"label,omitempty"`
	Direction Direction `json:"direction"`
}

// LifecycleHooks defines callbacks for navigation observability.
//
// Hooks run synchronously while the controller holds its lock and must not
// call back into the controller.
type LifecycleHooks struct {
	OnNodeEnter    func(*NodeEvent)
	OnNodeLeave    func(*NodeEvent)
	OnSubState     func(*SubStateEvent)
	OnAutoDispatch func(*NodeEvent)
	OnFlowExit     func(*ExitEvent)
}

// MergeHooks combines several hook sets so that each callback fans out to
// every non-nil handler, in argument order.
func MergeHooks(hooks ...LifecycleHooks) LifecycleHooks {
	var merged LifecycleHooks
	for _, h := range hooks {
		merged.OnNodeEnter = chain(merged.OnNodeEnter, h.OnNodeEnter)
		merged.OnNodeLeave = chain(merged.OnNodeLeave, h.OnNodeLeave)
		merged.OnSubState = chain(merged.OnSubState, h.OnSubState)
		merged.OnAutoDispatch = chain(merged.OnAutoDispatch, h.OnAutoDispatch)
		merged.OnFlowExit = chain(merged.OnFlowExit, h.OnFlowExit)
	}
	return merged
}

func chain[E any](a, b func(E)) func(E) {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	}
	return func(e E) {
		a(e)
		b(e)
	}
}
