package graph

import (
	"errors"
	"fmt"

	"github.com/aretw0/stepwise/pkg/domain"
)

var (
	// ErrEmptyChain is returned when building a chain from no states.
	ErrEmptyChain = errors.New("cannot build a chain from zero states")
	// ErrForeignNode is raised when nodes of two different graphs are linked.
	ErrForeignNode = errors.New("node belongs to a different graph")
)

// NodeID identifies a node inside its Graph.
type NodeID int

// None is the absent link.
const None NodeID = -1

// Kind selects the traversal rule of a node.
type Kind int

const (
	// Plain nodes follow their next link.
	Plain Kind = iota
	// Conditional nodes take their alternative edge while the condition holds.
	Conditional
	// Looping nodes jump back to their loop start while the condition holds.
	Looping
	// Repeating nodes splice in a fresh copy of themselves while the condition holds.
	Repeating
)

// String returns the lower-case name used in exports and logs.
func (k Kind) String() string {
	switch k {
	case Plain:
		return "plain"
	case Conditional:
		return "conditional"
	case Looping:
		return "looping"
	case Repeating:
		return "repeating"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Condition is a predicate evaluated against the model during traversal.
type Condition[M any] func(model M) bool

// Factory produces a fresh state for every repetition of a repeating node.
type Factory[M any] func() domain.State[M]

type slot[M any] struct {
	kind  Kind
	state domain.State[M]
	next  NodeID
	prev  NodeID

	// Conditional: alt + cond. Looping: loopStart + cond.
	alt       NodeID
	loopStart NodeID
	cond      Condition[M]

	// Repeating.
	factory    Factory[M]
	chainStart bool

	label string
	note  string
	live  bool
}

// Graph is an arena of navigation nodes.
type Graph[M any] struct {
	slots []slot[M]
	free  []NodeID
}

// New creates an empty graph.
func New[M any]() *Graph[M] {
	return &Graph[M]{}
}

// From creates a new graph holding a single plain node for state.
func From[M any](state domain.State[M]) Node[M] {
	return New[M]().Add(state)
}

// Build creates a new graph linking states into a linear chain and returns
// the first node.
func Build[M any](states ...domain.State[M]) (Node[M], error) {
	if len(states) == 0 {
		return Node[M]{}, ErrEmptyChain
	}
	first := From(states[0])
	n := first
	for _, st := range states[1:] {
		n = n.AndThen(st)
	}
	return first, nil
}

func (g *Graph[M]) alloc(s slot[M]) NodeID {
	s.live = true
	if n := len(g.free); n > 0 {
		id := g.free[n-1]
		g.free = g.free[:n-1]
		g.slots[id] = s
		return id
	}
	g.slots = append(g.slots, s)
	return NodeID(len(g.slots) - 1)
}

func (g *Graph[M]) release(id NodeID) {
	g.slots[id] = slot[M]{next: None, prev: None, alt: None, loopStart: None}
	g.free = append(g.free, id)
}

func (g *Graph[M]) slot(id NodeID) *slot[M] {
	if id < 0 || int(id) >= len(g.slots) || !g.slots[id].live {
		panic(fmt.Sprintf("graph: invalid node id %d", id))
	}
	return &g.slots[id]
}

func newSlot[M any](kind Kind, state domain.State[M]) slot[M] {
	return slot[M]{
		kind:      kind,
		state:     state,
		next:      None,
		prev:      None,
		alt:       None,
		loopStart: None,
	}
}

// Add appends a plain node.
func (g *Graph[M]) Add(state domain.State[M]) Node[M] {
	return Node[M]{g: g, id: g.alloc(newSlot(Plain, state))}
}

// Conditional appends a node whose next is its alternative edge whenever
// cond holds. The alternative is set with AttachAlternative.
func (g *Graph[M]) Conditional(state domain.State[M], cond Condition[M]) Node[M] {
	s := newSlot(Conditional, state)
	s.cond = cond
	return Node[M]{g: g, id: g.alloc(s)}
}

// Looping appends a node that jumps to start whenever cond holds. A start of
// None makes the node loop onto itself.
func (g *Graph[M]) Looping(state domain.State[M], start NodeID, cond Condition[M]) Node[M] {
	s := newSlot(Looping, state)
	s.cond = cond
	id := g.alloc(s)
	if start == None {
		start = id
	}
	g.slots[id].loopStart = start
	return Node[M]{g: g, id: id}
}

// Repeating appends the start of a repeating chain. The node's state is
// factory(), and every repetition gets its own factory() state. The node is
// always entered at least once, regardless of shouldRepeat.
func (g *Graph[M]) Repeating(factory Factory[M], shouldRepeat Condition[M]) Node[M] {
	s := newSlot(Repeating, factory())
	s.factory = factory
	s.cond = shouldRepeat
	s.chainStart = true
	return Node[M]{g: g, id: g.alloc(s)}
}

// Attach links from -> to and records from as the predecessor of to.
func (g *Graph[M]) Attach(from, to NodeID) {
	g.slot(from).next = to
	g.slot(to).prev = from
}

// AttachAlternative sets the alternative edge of a conditional node. Going
// back from the alternative returns to the conditional node.
func (g *Graph[M]) AttachAlternative(from, to NodeID) {
	s := g.slot(from)
	if s.kind != Conditional {
		panic(fmt.Sprintf("graph: node %d is %s, not conditional", from, s.kind))
	}
	s.alt = to
	g.slot(to).prev = from
}

func present(id NodeID) (NodeID, bool) {
	return id, id != None
}

// Next returns the successor of id for the given model.
//
// For a repeating node whose predicate holds, Next first splices a new
// repetition in right after id, so the returned node is that repetition.
func (g *Graph[M]) Next(id NodeID, model M) (NodeID, bool) {
	s := g.slot(id)
	switch s.kind {
	case Conditional:
		if s.cond(model) {
			return present(s.alt)
		}
	case Looping:
		if s.cond(model) {
			return present(s.loopStart)
		}
	case Repeating:
		if s.cond(model) {
			g.spliceAfter(id)
		}
	}
	return present(g.slots[id].next)
}

// Prev returns the predecessor of id.
//
// Stepping back from a repetition (a repeating node that is not the start of
// its chain) unlinks it and releases its slot. The caller must not use id
// afterwards.
func (g *Graph[M]) Prev(id NodeID, _ M) (NodeID, bool) {
	s := g.slot(id)
	prev := s.prev
	if s.kind == Repeating && !s.chainStart {
		g.unsplice(id)
	}
	return present(prev)
}

// PeekNext reports whether Next would return a node, without splicing.
func (g *Graph[M]) PeekNext(id NodeID, model M) bool {
	s := g.slot(id)
	switch s.kind {
	case Conditional:
		if s.cond(model) {
			return s.alt != None
		}
	case Looping:
		if s.cond(model) {
			return s.loopStart != None
		}
	case Repeating:
		if s.cond(model) {
			return true
		}
	}
	return s.next != None
}

// PeekPrev reports whether Prev would return a node, without unlinking.
func (g *Graph[M]) PeekPrev(id NodeID, _ M) bool {
	return g.slot(id).prev != None
}

func (g *Graph[M]) spliceAfter(id NodeID) {
	src := g.slots[id]
	s := newSlot(Repeating, src.factory())
	s.factory = src.factory
	s.cond = src.cond
	s.label = src.label
	s.note = src.note
	n := g.alloc(s)

	// alloc may grow the arena, so slots are indexed again below.
	if next := g.slots[id].next; next != None {
		g.slots[n].next = next
		g.slots[next].prev = n
	}
	g.slots[id].next = n
	g.slots[n].prev = id
}

func (g *Graph[M]) unsplice(id NodeID) {
	s := g.slots[id]
	if s.prev != None {
		g.slots[s.prev].next = s.next
	}
	if s.next != None {
		g.slots[s.next].prev = s.prev
	}
	g.release(id)
}

// Root follows prev links from id until there are none left.
func (g *Graph[M]) Root(id NodeID) NodeID {
	for {
		prev := g.slot(id).prev
		if prev == None {
			return id
		}
		id = prev
	}
}

// State returns the state held by id.
func (g *Graph[M]) State(id NodeID) domain.State[M] {
	return g.slot(id).state
}

// Kind returns the traversal kind of id.
func (g *Graph[M]) Kind(id NodeID) Kind {
	return g.slot(id).kind
}

// Label returns the label of id, or an empty string.
func (g *Graph[M]) Label(id NodeID) string {
	return g.slot(id).label
}

// Len returns the number of live nodes.
func (g *Graph[M]) Len() int {
	return len(g.slots) - len(g.free)
}

// NodeInfo is a read-only description of a node used for export.
type NodeInfo struct {
	ID         NodeID
	Label      string
	Note       string
	Kind       Kind
	Next       NodeID
	Prev       NodeID
	Alt        NodeID
	LoopStart  NodeID
	ChainStart bool
}

// Nodes describes every live node in id order, whether or not it is linked
// to anything. Use Reachable to describe a single flow.
func (g *Graph[M]) Nodes() []NodeInfo {
	out := make([]NodeInfo, 0, g.Len())
	for i, s := range g.slots {
		if !s.live {
			continue
		}
		out = append(out, g.info(NodeID(i)))
	}
	return out
}

// Reachable describes, in id order, the nodes that can be entered from
// root by following next, alternative and loop edges.
func (g *Graph[M]) Reachable(root NodeID) []NodeInfo {
	seen := make([]bool, len(g.slots))
	stack := []NodeID{root}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if id == None || seen[id] {
			continue
		}
		seen[id] = true
		s := g.slot(id)
		stack = append(stack, s.next, s.alt, s.loopStart)
	}

	var out []NodeInfo
	for i, ok := range seen {
		if ok {
			out = append(out, g.info(NodeID(i)))
		}
	}
	return out
}

func (g *Graph[M]) info(id NodeID) NodeInfo {
	s := g.slot(id)
	return NodeInfo{
		ID:         id,
		Label:      s.label,
		Note:       s.note,
		Kind:       s.kind,
		Next:       s.next,
		Prev:       s.prev,
		Alt:        s.alt,
		LoopStart:  s.loopStart,
		ChainStart: s.chainStart,
	}
}
