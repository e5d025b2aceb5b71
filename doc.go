/*
Package stepwise drives multi-step guided lessons.

A lesson is a graph of screen states. Each state mutates a model owned by the
caller when it is entered, left backward or re-entered, and may schedule
delayed sub-states or advance on its own after a delay. The controller keeps
track of which state is active and moves between them.

# Concept

  - States (pkg/domain) describe what a step does to the model.
  - The graph (pkg/graph) describes how steps connect: linear chains,
    conditional jumps, loops and repeating nodes.
  - The controller (this package) walks the graph, applies states and runs
    their timers. All of its methods are safe for concurrent use.

# Usage

	type Lesson struct{ Count int }

	type Increment struct{ domain.Base[*Lesson] }

	func (Increment) Apply(l *Lesson)   { l.Count++ }
	func (Increment) Unapply(l *Lesson) { l.Count-- }

	func main() {
		root := graph.From[*Lesson](Increment{}).
			AndThen(Increment{}).
			LoopWhile(func(l *Lesson) bool { return l.Count < 4 }).
			Root()

		ctrl, err := stepwise.New(&Lesson{}, root)
		if err != nil {
			log.Fatal(err)
		}
		ctrl.OnExitForward(func() { fmt.Println("done") })

		for ctrl.HasNext() {
			ctrl.Next()
		}
	}

Lessons can also be written as YAML files and compiled with pkg/script.
*/
package stepwise
