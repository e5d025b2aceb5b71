package stepwise

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/aretw0/stepwise/internal/logging"
	"github.com/aretw0/stepwise/internal/runtime"
	"github.com/aretw0/stepwise/pkg/domain"
	"github.com/aretw0/stepwise/pkg/graph"
	"github.com/aretw0/stepwise/pkg/ports"
)

// ErrEmptyFlow is returned when a controller is created without any state.
var ErrEmptyFlow = errors.New("flow has no states")

// Controller is the high-level entry point of the library.
// It wraps the internal runtime and drives one model through one graph.
type Controller[M any] struct {
	runtime *runtime.Controller[M]
	Name    string
}

type config struct {
	runtimeOpts []runtime.ControllerOption
	hooks       domain.LifecycleHooks
	logger      *slog.Logger
	name        string
}

// Option defines a functional option for configuring the Controller.
type Option func(*config)

// WithLifecycleHooks registers observability hooks. Repeated options are
// merged and run in the order given.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(c *config) {
		c.hooks = domain.MergeHooks(c.hooks, hooks)
	}
}

// WithLogger sets a custom structured logger for the controller.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// WithName labels the flow. The name is added to every log line.
func WithName(name string) Option {
	return func(c *config) {
		c.name = name
	}
}

// WithScheduler replaces the wall clock used for delayed sub-states and
// auto-dispatch, typically with a mock in tests.
func WithScheduler(s ports.Scheduler) Option {
	return func(c *config) {
		c.runtimeOpts = append(c.runtimeOpts, runtime.WithScheduler(s))
	}
}

// WithExecutor delivers timer callbacks through exec, for example into a
// UI event loop. By default they run on the timer goroutine.
func WithExecutor(exec ports.Executor) Option {
	return func(c *config) {
		c.runtimeOpts = append(c.runtimeOpts, runtime.WithExecutor(exec))
	}
}

// WithScheduleOnStart also starts the root state's timers when the
// controller is created.
func WithScheduleOnStart() Option {
	return func(c *config) {
		c.runtimeOpts = append(c.runtimeOpts, runtime.WithScheduleOnStart())
	}
}

// New creates a controller on root and applies the root state to model.
func New[M any](model M, root graph.Node[M], opts ...Option) (*Controller[M], error) {
	if !root.Valid() {
		return nil, ErrEmptyFlow
	}

	cfg := &config{}
	for _, opt := range opts {
		opt(cfg)
	}

	// Ensure logger is initialized (so we don't pass nil to runtime).
	if cfg.logger == nil {
		cfg.logger = logging.NewNop()
	}
	if cfg.name != "" {
		cfg.logger = cfg.logger.With("flow", cfg.name)
	}

	runtimeOpts := []runtime.ControllerOption{
		runtime.WithLifecycleHooks(cfg.hooks),
		runtime.WithLogger(cfg.logger),
	}
	runtimeOpts = append(runtimeOpts, cfg.runtimeOpts...)

	return &Controller[M]{
		runtime: runtime.New(model, root, runtimeOpts...),
		Name:    cfg.name,
	}, nil
}

// NewFromStates links states into a linear flow and creates a controller on
// its first state.
func NewFromStates[M any](model M, states []domain.State[M], opts ...Option) (*Controller[M], error) {
	root, err := graph.Build(states...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEmptyFlow, err)
	}
	return New(model, root, opts...)
}

// Next moves to the next state, or runs the exit-forward callback at the end.
func (c *Controller[M]) Next() { c.runtime.Next() }

// Back moves to the previous state, or runs the exit-backward callback at the start.
func (c *Controller[M]) Back() { c.runtime.Back() }

// HasNext reports whether Next would move. It has no side effects.
func (c *Controller[M]) HasNext() bool { return c.runtime.HasNext() }

// HasPrevious reports whether Back could move. It has no side effects.
func (c *Controller[M]) HasPrevious() bool { return c.runtime.HasPrevious() }

// OnExitForward sets the callback for Next on the last node.
func (c *Controller[M]) OnExitForward(fn func()) { c.runtime.OnExitForward(fn) }

// OnExitBackward sets the callback for Back on the first node.
func (c *Controller[M]) OnExitBackward(fn func()) { c.runtime.OnExitBackward(fn) }

// Current returns the active node.
func (c *Controller[M]) Current() graph.Node[M] { return c.runtime.Current() }

// Position is a consistent read of the active node.
type Position = runtime.Position

// Position returns the active node together with HasNext and HasPrevious.
func (c *Controller[M]) Position() Position { return c.runtime.Position() }

// Nodes describes the nodes reachable from the root, including spliced
// repetitions.
func (c *Controller[M]) Nodes() []graph.NodeInfo { return c.runtime.Nodes() }

// Inspect calls fn with the position and the model in one consistent read.
func (c *Controller[M]) Inspect(fn func(pos Position, model M)) { c.runtime.Inspect(fn) }

// Layout returns the position and the reachable nodes in one consistent read.
func (c *Controller[M]) Layout() (Position, []graph.NodeInfo) { return c.runtime.Layout() }

// View gives fn serialized access to the model.
func (c *Controller[M]) View(fn func(model M)) { c.runtime.View(fn) }

// Stop cancels pending timers and keeps new ones from being armed.
func (c *Controller[M]) Stop() { c.runtime.Stop() }
