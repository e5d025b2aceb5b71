/*
Package domain contains the core contracts of the stepwise navigation engine.

It defines what a screen state is, how it reacts to forward and backward
navigation, and the events emitted while a lesson is traversed. This package
is kept pure and free of I/O, timers and persistence.

# Key Entities

  - State: one logical step of a lesson. It mutates a caller-owned model on
    Apply, Unapply and Reapply, and carries timing metadata (delayed
    sub-states, auto-dispatch delay) plus its BackBehavior.
  - Delayed: a sub-state applied some time after its parent state is entered.
    Delays are relative to the previous entry of the same list.
  - BackBehavior: whether Unapply runs and whether the node is skipped when
    navigating backward.
  - Sequence: composes several states into one, merging their delayed
    sub-states into a single correctly re-timed list.
  - LifecycleHooks: callbacks for observing navigation.
*/
package domain
