package script

import (
	"fmt"

	"github.com/aretw0/stepwise"
	"github.com/aretw0/stepwise/pkg/domain"
	"github.com/aretw0/stepwise/pkg/graph"
)

// stateFor builds the state of a step. A group becomes a sequence whose
// first member is the step's own screen.
func stateFor(s StepDef) domain.State[*Board] {
	head := NewStep(s.ID, s.ScreenDef)
	if len(s.Group) == 0 {
		return head
	}
	members := make([]domain.State[*Board], 0, len(s.Group)+1)
	members = append(members, head)
	for _, m := range s.Group {
		members = append(members, NewStep(s.ID, m))
	}
	return domain.NewSequence(members...)
}

// Compile validates def and builds its navigation graph. Steps are linked in
// file order; the returned node is the first step.
func Compile(def *Definition) (graph.Node[*Board], error) {
	if err := def.Validate(); err != nil {
		return graph.Node[*Board]{}, err
	}

	g := graph.New[*Board]()
	nodes := make(map[string]graph.Node[*Board], len(def.Steps))

	var prev graph.Node[*Board]
	for i, s := range def.Steps {
		var n graph.Node[*Board]
		if s.RepeatWhile != "" {
			cond, err := ParseCondition(s.RepeatWhile)
			if err != nil {
				return graph.Node[*Board]{}, err
			}
			n = g.Repeating(func() domain.State[*Board] { return stateFor(s) }, cond.Eval).
				Annotate("repeat while " + cond.String())
		} else {
			n = g.Add(stateFor(s))
		}
		n = n.Named(s.ID)
		if i > 0 {
			prev.AndThenNode(n)
		}
		nodes[s.ID] = n
		prev = n
	}

	// Loops read the chain's root, so edges are added once every step is linked.
	for _, s := range def.Steps {
		n := nodes[s.ID]
		switch {
		case s.JumpTo != "":
			cond, err := ParseCondition(s.When)
			if err != nil {
				return graph.Node[*Board]{}, err
			}
			n.JumpsTo(nodes[s.JumpTo], cond.Eval).Annotate(cond.String())
		case s.LoopWhile != "":
			cond, err := ParseCondition(s.LoopWhile)
			if err != nil {
				return graph.Node[*Board]{}, err
			}
			n.LoopWhile(cond.Eval).Annotate(cond.String())
		}
	}

	return nodes[def.Steps[0].ID], nil
}

// Start compiles def and creates a controller over a fresh board.
func Start(def *Definition, opts ...stepwise.Option) (*stepwise.Controller[*Board], *Board, error) {
	root, err := Compile(def)
	if err != nil {
		return nil, nil, err
	}
	board := NewBoard()
	// Hooks run under the controller lock, so they may touch the board.
	track := domain.LifecycleHooks{
		OnNodeEnter: func(*domain.NodeEvent) { board.Exit = "" },
		OnFlowExit:  func(e *domain.ExitEvent) { board.Exit = string(e.Direction) },
	}
	opts = append([]stepwise.Option{stepwise.WithName(def.Name), stepwise.WithLifecycleHooks(track)}, opts...)
	ctrl, err := stepwise.New(board, root, opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to start flow %q: %w", def.Name, err)
	}
	return ctrl, board, nil
}
