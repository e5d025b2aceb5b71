/*
Package script loads lesson flows written in YAML and compiles them into a
navigation graph over a Board model.

A flow is a list of steps. Each step shows a screen of markdown content and
applies numeric effects to the board:

	name: counting
	steps:
	  - id: intro
	    content: "# Let's count"
	    set: {count: 0}
	  - id: practice
	    content: "Add one more."
	    add: {count: 1}
	    repeat_while: "count < 3"
	  - id: check
	    content: "You reached three!"
	    delayed:
	      - {after: 2s, note: "Ready for the quiz?"}
	    jump_to: intro
	    when: "count != 3"

Flow keys (jump_to + when, loop_while, repeat_while) pick the node kind.
A step with a group is compiled into a sequence of sub-steps that behave as
one. When undo is omitted, going back over a step reverses its add effects.
*/
package script
