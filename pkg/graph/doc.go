/*
Package graph stores the navigation graph of a lesson.

Nodes live in an arena owned by a Graph and refer to each other by NodeID.
Every node has a static next link and a static prev back-reference. Its Kind
decides how traversal treats those links:

  - Plain: next is next, prev is prev.
  - Conditional: next is replaced by an alternative edge while a predicate
    holds on the model.
  - Looping: next jumps back to a loop start while a predicate holds.
    Backward traversal ignores the loop and follows prev.
  - Repeating: while a predicate holds, each forward step splices a fresh
    copy of the node in right after the current one. Stepping back over a
    copy unlinks it again, so the chain may repeat a different number of
    times on the next pass.

Graphs are built with the fluent Node handle:

	g := graph.New[*Model]()
	root := g.Add(intro).
		AndThen(practice).
		LoopWhile(notMastered).
		AndThen(outro).
		Root()

A Graph is mutated by traversal (repeating nodes), so each controller must
own its graph. It is not safe for concurrent use.
*/
package graph
