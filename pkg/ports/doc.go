/*
Package ports defines the driven ports (interfaces) of the stepwise engine.

These interfaces decouple the navigation controller from the platform it runs
on, so timers can be mocked in tests and sessions can be kept in any store.

# Key Interfaces

  - Scheduler: creates cancellable one-shot timers (see pkg/adapters/clock).
  - Executor: delivers timer callbacks into the caller's own execution
    context, for example a single-threaded UI loop.
  - SessionStore: keeps live sessions addressable by id (see pkg/adapters/memory).
*/
package ports
