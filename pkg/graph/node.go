package graph

import (
	"fmt"

	"github.com/aretw0/stepwise/pkg/domain"
)

// Node is a handle to a node of a Graph. Its builder methods mutate the
// graph in place and return a handle so calls can be chained.
//
// Handles to repetitions spliced in by a repeating node become invalid once
// backward traversal unlinks them.
type Node[M any] struct {
	g  *Graph[M]
	id NodeID
}

// ID returns the arena id of the node.
func (n Node[M]) ID() NodeID { return n.id }

// Graph returns the graph the node belongs to.
func (n Node[M]) Graph() *Graph[M] { return n.g }

// Valid reports whether n refers to a graph at all.
func (n Node[M]) Valid() bool { return n.g != nil }

// State returns the state held by the node.
func (n Node[M]) State() domain.State[M] { return n.g.State(n.id) }

// Kind returns the traversal kind of the node.
func (n Node[M]) Kind() Kind { return n.g.Kind(n.id) }

// Label returns the label set with Named.
func (n Node[M]) Label() string { return n.g.Label(n.id) }

// At returns a handle to another node of the same graph.
func (n Node[M]) At(id NodeID) Node[M] {
	n.g.slot(id)
	return Node[M]{g: n.g, id: id}
}

func (n Node[M]) mustShare(other Node[M]) {
	if other.g != n.g {
		panic(fmt.Errorf("graph: linking node %d to node %d: %w", n.id, other.id, ErrForeignNode))
	}
}

// AndThen attaches a new plain node holding state and returns it.
func (n Node[M]) AndThen(state domain.State[M]) Node[M] {
	return n.AndThenNode(n.g.Add(state))
}

// AndThenNode attaches next after n and returns next.
func (n Node[M]) AndThenNode(next Node[M]) Node[M] {
	n.mustShare(next)
	n.g.Attach(n.id, next.id)
	return next
}

// JumpsTo turns n into a conditional node that continues at other whenever
// cond holds. Jumping is one-way: other keeps its own prev link, so going
// back after a jump follows wherever other is attached.
//
// Any previous traversal rule of n is replaced.
func (n Node[M]) JumpsTo(other Node[M], cond Condition[M]) Node[M] {
	n.mustShare(other)
	s := n.g.slot(n.id)
	s.kind = Conditional
	s.cond = cond
	s.alt = other.id
	s.loopStart = None
	s.factory = nil
	s.chainStart = false
	return n
}

// LoopWhile turns n into a looping node. While cond holds, moving forward
// from n restarts at the root of its chain, or at n itself when n has no
// predecessor. Backward traversal is unaffected.
//
// Any previous traversal rule of n is replaced.
func (n Node[M]) LoopWhile(cond Condition[M]) Node[M] {
	s := n.g.slot(n.id)
	start := n.id
	if s.prev != None {
		start = n.g.Root(n.id)
	}
	s.kind = Looping
	s.cond = cond
	s.loopStart = start
	s.alt = None
	s.factory = nil
	s.chainStart = false
	return n
}

// Root returns the first node of the chain n belongs to.
func (n Node[M]) Root() Node[M] {
	return Node[M]{g: n.g, id: n.g.Root(n.id)}
}

// Named sets a human readable label used in logs and exports.
func (n Node[M]) Named(label string) Node[M] {
	n.g.slot(n.id).label = label
	return n
}

// Annotate attaches a free-text note, shown on edges in exports.
func (n Node[M]) Annotate(note string) Node[M] {
	n.g.slot(n.id).note = note
	return n
}

func (n Node[M]) String() string {
	if !n.Valid() {
		return "<nil>"
	}
	if l := n.Label(); l != "" {
		return l
	}
	return fmt.Sprintf("#%d", n.id)
}
