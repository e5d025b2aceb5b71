package runtime

import (
	"sync"

	"github.com/aretw0/stepwise/pkg/domain"
	"github.com/aretw0/stepwise/pkg/graph"
)

// Controller drives navigation over a graph for one caller-owned model.
//
// Every entry point, timer callbacks included, is serialized by a single
// mutex. Exit callbacks run after the mutex is released, so they may call
// back into the controller. Lifecycle hooks run while it is held and must not.
type Controller[M any] struct {
	mu sync.Mutex

	graph   *graph.Graph[M]
	root    graph.Node[M]
	current graph.NodeID
	model   M
	opts    options

	onExitForward  func()
	onExitBackward func()

	subState     pending
	autoDispatch pending
	seq          uint64
	stopped      bool
}

// New creates a controller positioned on root and applies the root state.
func New[M any](model M, root graph.Node[M], opts ...ControllerOption) *Controller[M] {
	c := &Controller[M]{
		graph:   root.Graph(),
		root:    root,
		current: root.ID(),
		model:   model,
		opts:    buildOptions(opts),
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.graph.State(c.current).Apply(c.model)
	c.emitEnter(c.current, domain.Forward)
	if c.opts.scheduleOnStart {
		c.restartTimers()
	}
	return c
}

// Next moves forward. At the end of the graph the exit-forward callback runs
// instead.
func (c *Controller[M]) Next() {
	c.mu.Lock()
	exit := c.next()
	c.mu.Unlock()
	if exit != nil {
		exit()
	}
}

// Back moves backward, passing over states whose BackBehavior skips them.
// At the start of the graph the exit-backward callback runs instead.
func (c *Controller[M]) Back() {
	c.mu.Lock()
	exit := c.back(false)
	c.mu.Unlock()
	if exit != nil {
		exit()
	}
}

// HasNext reports whether Next would move. It never changes the model, the
// position or the graph.
func (c *Controller[M]) HasNext() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.graph.PeekNext(c.current, c.model)
}

// HasPrevious reports whether the current node has a predecessor.
func (c *Controller[M]) HasPrevious() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.graph.PeekPrev(c.current, c.model)
}

// OnExitForward registers the callback for running off the end of the graph.
func (c *Controller[M]) OnExitForward(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onExitForward = fn
}

// OnExitBackward registers the callback for going back from the first node.
func (c *Controller[M]) OnExitBackward(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onExitBackward = fn
}

// Current returns a handle to the active node.
func (c *Controller[M]) Current() graph.Node[M] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.root.At(c.current)
}

// Position describes the active node at one instant.
type Position struct {
	Node        graph.NodeID
	Label       string
	Kind        graph.Kind
	HasNext     bool
	HasPrevious bool
}

// Position reads the active node and both navigation queries atomically.
func (c *Controller[M]) Position() Position {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.position()
}

// Nodes describes the nodes reachable from the root as they are now,
// repetitions included.
func (c *Controller[M]) Nodes() []graph.NodeInfo {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.graph.Reachable(c.root.ID())
}

// Inspect calls fn with the position and the model it belongs to. No
// navigation can run until fn returns.
func (c *Controller[M]) Inspect(fn func(pos Position, model M)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fn(c.position(), c.model)
}

// Layout returns the position together with the reachable nodes, both read
// under the same lock.
func (c *Controller[M]) Layout() (Position, []graph.NodeInfo) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.position(), c.graph.Reachable(c.root.ID())
}

func (c *Controller[M]) position() Position {
	return Position{
		Node:        c.current,
		Label:       c.graph.Label(c.current),
		Kind:        c.graph.Kind(c.current),
		HasNext:     c.graph.PeekNext(c.current, c.model),
		HasPrevious: c.graph.PeekPrev(c.current, c.model),
	}
}

// View calls fn with the model while no navigation can run.
func (c *Controller[M]) View(fn func(model M)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fn(c.model)
}

// Stop cancels pending timers. Navigation keeps working afterwards but no
// new timers are armed.
func (c *Controller[M]) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopped = true
	c.cancelTimers()
	c.opts.logger.Debug("controller stopped", "node", c.current)
}

func (c *Controller[M]) next() func() {
	from := c.current
	target, ok := c.graph.Next(from, c.model)
	if !ok {
		c.opts.logger.Debug("flow exited", "direction", domain.Forward, "node", from, "label", c.graph.Label(from))
		c.emitExit(from, c.graph.Label(from), domain.Forward)
		return c.onExitForward
	}

	c.emitLeave(from, c.graph.Label(from), c.graph.Kind(from), domain.Forward, false)
	c.current = target
	c.graph.State(target).Apply(c.model)
	c.emitEnter(target, domain.Forward)
	c.restartTimers()
	return nil
}

func (c *Controller[M]) back(skipping bool) func() {
	from := c.current
	// Prev may release a repetition's slot, so read it first.
	state := c.graph.State(from)
	label, kind := c.graph.Label(from), c.graph.Kind(from)

	prev, ok := c.graph.Prev(from, c.model)
	if !ok {
		c.opts.logger.Debug("flow exited", "direction", domain.Backward, "node", from, "label", label)
		c.emitExit(from, label, domain.Backward)
		return c.onExitBackward
	}

	c.cancelTimers()
	if state.BackBehavior().ShouldUnapply() {
		state.Unapply(c.model)
	}
	c.emitLeave(from, label, kind, domain.Backward, skipping)
	c.current = prev

	prevState := c.graph.State(prev)
	if prevState.BackBehavior().ShouldSkip() {
		c.opts.logger.Debug("skipping node", "node", prev, "label", c.graph.Label(prev),
			"behavior", prevState.BackBehavior())
		return c.back(true)
	}

	prevState.Reapply(c.model)
	c.emitEnter(prev, domain.Backward)
	c.restartTimers()
	return nil
}
