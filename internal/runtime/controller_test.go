package runtime_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/stepwise/internal/runtime"
	"github.com/aretw0/stepwise/pkg/domain"
	"github.com/aretw0/stepwise/pkg/graph"
)

func newController(t *testing.T, model *tester, root graph.Node[*tester], opts ...runtime.ControllerOption) *runtime.Controller[*tester] {
	t.Helper()
	c := runtime.New(model, root, append([]runtime.ControllerOption{runtime.WithScheduler(&manualScheduler{})}, opts...)...)
	t.Cleanup(c.Stop)
	return c
}

func linear(t *testing.T, states ...domain.State[*tester]) graph.Node[*tester] {
	t.Helper()
	root, err := graph.Build(states...)
	require.NoError(t, err)
	return root
}

func TestController_NextAppliesTheNextState(t *testing.T) {
	model := &tester{}
	c := newController(t, model, linear(t, set(1), set(2), set(3)))
	exits := 0
	c.OnExitForward(func() { exits++ })

	assert.Equal(t, 1, model.value)
	c.Next()
	assert.Equal(t, 2, model.value)
	c.Next()
	assert.Equal(t, 3, model.value)

	c.Next()
	assert.Equal(t, 3, model.value)
	assert.Equal(t, 1, exits)
}

func TestController_BackReappliesThePreviousState(t *testing.T) {
	model := &tester{}
	c := newController(t, model, linear(t, set(1), setValue{value: 2, noReapply: true}, set(3)))
	exits := 0
	c.OnExitBackward(func() { exits++ })

	c.Next()
	c.Next()
	c.Next()
	assert.Equal(t, 3, model.value)

	c.Back()
	assert.Equal(t, 3, model.value)
	c.Back()
	assert.Equal(t, 1, model.value)

	c.Back()
	assert.Equal(t, 1, model.value)
	assert.Equal(t, 1, exits)
}

func TestController_BackBehaviors(t *testing.T) {
	minusOne := -1
	tests := []struct {
		name          string
		behavior      domain.BackBehavior
		wantUnapplied int
	}{
		{"skip unapplies", domain.Skip, -1},
		{"skip and ignore does not unapply", domain.SkipAndIgnore, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			model := &tester{}
			s2 := setValue{value: 2, back: tt.behavior, unapplyTo: &minusOne}
			c := newController(t, model, linear(t, set(1), s2, set(3)))
			assert.Equal(t, 0, model.unappliedValue)

			c.Next()
			c.Next()
			assert.Equal(t, 3, model.value)

			c.Back()
			assert.Equal(t, 1, model.value)
			assert.Equal(t, tt.wantUnapplied, model.unappliedValue)
			assert.Equal(t, graph.NodeID(0), c.Current().ID())

			c.Next()
			assert.Equal(t, 2, model.value)
		})
	}
}

func TestController_SkipAtRootExitsBackward(t *testing.T) {
	model := &tester{}
	c := newController(t, model, linear(t, setValue{value: 1, back: domain.SkipAndIgnore}, set(2)))
	exits := 0
	c.OnExitBackward(func() { exits++ })

	c.Next()
	c.Back()
	assert.Equal(t, 1, exits)
	assert.Equal(t, 2, model.value, "a skipped root is not reapplied")
}

func TestController_ConditionalNavigation(t *testing.T) {
	g := graph.New[*tester]()
	s1 := g.Add(set(1))
	s2 := g.Conditional(setValue{value: 2, noReapply: true}, func(m *tester) bool { return m.value == 2 })
	s3 := g.Add(set(3))
	alt := g.Add(set(4))
	s1.AndThenNode(s2).AndThenNode(s3)
	g.AttachAlternative(s2.ID(), alt.ID())

	model := &tester{}
	c := newController(t, model, s1)
	assert.Equal(t, 1, model.value)

	c.Next()
	assert.Equal(t, 2, model.value)
	c.Next()
	assert.Equal(t, 4, model.value)

	c.Back()
	assert.Equal(t, 4, model.value)
	c.Next()
	assert.Equal(t, 3, model.value)
}

func TestController_HasNextAndHasPrevious(t *testing.T) {
	c := newController(t, &tester{}, linear(t, set(0), set(0), set(0)))

	assert.True(t, c.HasNext())
	assert.False(t, c.HasPrevious())

	c.Next()
	assert.True(t, c.HasNext())
	assert.True(t, c.HasPrevious())

	c.Next()
	assert.False(t, c.HasNext())
	assert.True(t, c.HasPrevious())

	c.Back()
	assert.True(t, c.HasNext())
	assert.True(t, c.HasPrevious())

	c.Back()
	assert.True(t, c.HasNext())
	assert.False(t, c.HasPrevious())
}

func TestController_JumpingToAnotherNode(t *testing.T) {
	inc := incrementing{}
	incrementTwice := graph.From[*tester](inc).AndThen(inc)
	root := incrementTwice.
		AndThenNode(incrementTwice.Graph().Add(inc).JumpsTo(incrementTwice.Root(), func(m *tester) bool { return m.value == 3 })).
		AndThen(set(10)).
		Root()

	model := &tester{}
	c := newController(t, model, root)
	assert.Equal(t, 1, model.value)

	for _, want := range []int{2, 3, 4, 5, 6, 10} {
		c.Next()
		require.Equal(t, want, model.value)
	}

	for _, want := range []int{11, 12, 13, 13} {
		c.Back()
		require.Equal(t, want, model.value)
	}
}

func TestController_LoopingANodeWithAParent(t *testing.T) {
	tests := []struct {
		name  string
		limit int
		next  []int
	}{
		{"once", 3, []int{2, 3, 4, 0}},
		{"twice", 5, []int{2, 3, 4, 5, 6, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inc := incrementing{}
			root := graph.From[*tester](inc).
				AndThen(inc).
				LoopWhile(func(m *tester) bool { return m.value < tt.limit }).
				AndThen(set(0)).
				Root()

			model := &tester{}
			c := newController(t, model, root)
			assert.Equal(t, 1, model.value)

			for _, want := range tt.next {
				c.Next()
				require.Equal(t, want, model.value)
			}

			c.Back()
			assert.Equal(t, 1, model.value)
			c.Back()
			assert.Equal(t, 2, model.value)
			assert.False(t, c.HasPrevious())
		})
	}
}

func TestController_LoopingANodeWithNoParent(t *testing.T) {
	root := graph.From[*tester](incrementing{}).
		LoopWhile(func(m *tester) bool { return m.value < 3 }).
		AndThen(set(0)).
		Root()

	model := &tester{}
	c := newController(t, model, root)
	assert.Equal(t, 1, model.value)

	c.Next()
	assert.Equal(t, 2, model.value)
	assert.True(t, c.HasNext())

	c.Next()
	assert.Equal(t, 3, model.value)
	c.Next()
	assert.Equal(t, 0, model.value)

	c.Back()
	assert.Equal(t, 1, model.value)
	assert.False(t, c.HasPrevious())
}

func repeatingIncrement(g *graph.Graph[*tester]) graph.Node[*tester] {
	return g.Repeating(
		func() domain.State[*tester] { return incrementing{unapply: true, noReapply: true} },
		func(m *tester) bool { return m.value < 3 },
	)
}

func TestController_RepeatingNodeRepeatsTheProvidedState(t *testing.T) {
	root := repeatingIncrement(graph.New[*tester]())

	model := &tester{}
	c := newController(t, model, root)
	assert.Equal(t, 1, model.value)

	c.Next()
	assert.Equal(t, 2, model.value)
	c.Next()
	assert.Equal(t, 3, model.value)
	assert.False(t, c.HasNext())

	c.Back()
	assert.Equal(t, 2, model.value)
	c.Back()
	assert.Equal(t, 1, model.value)
	assert.False(t, c.HasPrevious())
	assert.Equal(t, 1, root.Graph().Len())
}

func TestController_RepeatingNodeBetweenTwoRegularNodes(t *testing.T) {
	g := graph.New[*tester]()
	root := g.Add(set(1)).AndThenNode(repeatingIncrement(g)).AndThen(set(10)).Root()

	model := &tester{}
	c := newController(t, model, root)
	assert.Equal(t, 1, model.value)

	c.Next()
	assert.Equal(t, 2, model.value)
	c.Next()
	assert.Equal(t, 3, model.value)
	c.Next()
	assert.Equal(t, 10, model.value)
	assert.False(t, c.HasNext())

	// The last repetition reapplies, which does nothing.
	c.Back()
	assert.Equal(t, 10, model.value)
	// Now it unapplies.
	c.Back()
	assert.Equal(t, 9, model.value)
	// The first state reapplies.
	c.Back()
	assert.Equal(t, 1, model.value)
	assert.False(t, c.HasPrevious())
}

func TestController_RepeatingDoesNotAddDuplicates(t *testing.T) {
	g := graph.New[*tester]()
	root := repeatingIncrement(g).AndThen(incrementing{unapply: true, noReapply: true}).Root()

	model := &tester{}
	c := newController(t, model, root)
	assert.Equal(t, 1, model.value)

	for pass := 0; pass < 2; pass++ {
		c.Next()
		c.Next()
		c.Next()
		assert.Equal(t, 4, model.value)
		assert.False(t, c.HasNext())
		assert.Equal(t, 4, g.Len())

		c.Back()
		c.Back()
		c.Back()
		assert.Equal(t, 1, model.value)
		assert.False(t, c.HasPrevious())
		assert.Equal(t, 2, g.Len())
	}
}

func TestController_QueriesArePure(t *testing.T) {
	g := graph.New[*tester]()
	root := repeatingIncrement(g)

	model := &tester{}
	c := newController(t, model, root)
	for range 5 {
		assert.True(t, c.HasNext())
		assert.False(t, c.HasPrevious())
	}
	assert.Equal(t, 1, model.value)
	assert.Equal(t, 1, g.Len())
	assert.Equal(t, root.ID(), c.Current().ID())
}

func TestController_ExitCallbackMayReenter(t *testing.T) {
	c := newController(t, &tester{}, linear(t, set(1)))
	var hasNext, hasPrev bool
	c.OnExitForward(func() { hasNext = c.HasNext() })
	c.OnExitBackward(func() { hasPrev = c.HasPrevious() })

	c.Next()
	c.Back()
	assert.False(t, hasNext)
	assert.False(t, hasPrev)
}

func TestController_LifecycleHooks(t *testing.T) {
	var entered, left []string
	var exits []domain.Direction
	hooks := domain.LifecycleHooks{
		OnNodeEnter: func(e *domain.NodeEvent) { entered = append(entered, e.Label+":"+string(e.Direction)) },
		OnNodeLeave: func(e *domain.NodeEvent) {
			label := e.Label
			if e.Skipped {
				label += "(skipped)"
			}
			left = append(left, label)
		},
		OnFlowExit: func(e *domain.ExitEvent) { exits = append(exits, e.Direction) },
	}

	root := graph.From(set(1)).Named("a")
	root.AndThen(setValue{value: 2, back: domain.Skip}).Named("b").AndThen(set(3)).Named("c")

	c := newController(t, &tester{}, root, runtime.WithLifecycleHooks(hooks))
	c.Next()
	c.Next()
	c.Next()
	c.Back()
	c.Back()

	assert.Equal(t, []string{"a:forward", "b:forward", "c:forward", "a:backward"}, entered)
	assert.Equal(t, []string{"a", "b", "c", "b(skipped)"}, left)
	assert.Equal(t, []domain.Direction{domain.Forward, domain.Backward}, exits)
}

func TestController_View(t *testing.T) {
	c := newController(t, &tester{}, linear(t, set(7)))
	var seen int
	c.View(func(m *tester) { seen = m.value })
	assert.Equal(t, 7, seen)
}

func TestController_Position(t *testing.T) {
	root := linear(t, set(1), set(2))
	root.Named("first")
	c := newController(t, &tester{}, root)

	pos := c.Position()
	assert.Equal(t, runtime.Position{Node: 0, Label: "first", Kind: graph.Plain, HasNext: true}, pos)

	c.Next()
	pos = c.Position()
	assert.Equal(t, graph.NodeID(1), pos.Node)
	assert.False(t, pos.HasNext)
	assert.True(t, pos.HasPrevious)
	assert.Len(t, c.Nodes(), 2)
}

func TestController_InspectAndLayout(t *testing.T) {
	root := linear(t, set(1), set(2))
	root.Graph().Add(set(9))
	c := newController(t, &tester{}, root)

	c.Next()

	var pos runtime.Position
	var seen int
	c.Inspect(func(p runtime.Position, m *tester) {
		pos = p
		seen = m.value
	})
	assert.Equal(t, graph.NodeID(1), pos.Node)
	assert.Equal(t, 2, seen)

	pos, nodes := c.Layout()
	assert.Equal(t, graph.NodeID(1), pos.Node)
	assert.Len(t, nodes, 2, "unlinked nodes are left out")
	assert.Len(t, c.Nodes(), 2)
}
