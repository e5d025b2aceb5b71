package runtime

import (
	"log/slog"

	"github.com/aretw0/stepwise/internal/logging"
	"github.com/aretw0/stepwise/pkg/adapters/clock"
	"github.com/aretw0/stepwise/pkg/domain"
	"github.com/aretw0/stepwise/pkg/ports"
)

type options struct {
	logger          *slog.Logger
	hooks           domain.LifecycleHooks
	scheduler       ports.Scheduler
	executor        ports.Executor
	scheduleOnStart bool
}

// ControllerOption configures a Controller.
type ControllerOption func(*options)

// WithLogger sets the structured logger. Transitions are logged at Debug.
func WithLogger(logger *slog.Logger) ControllerOption {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) ControllerOption {
	return func(o *options) {
		o.hooks = hooks
	}
}

// WithScheduler replaces the wall-clock scheduler, typically with a mock.
func WithScheduler(s ports.Scheduler) ControllerOption {
	return func(o *options) {
		if s != nil {
			o.scheduler = s
		}
	}
}

// WithExecutor sets where timer callbacks run. The default runs them on the
// timer goroutine.
func WithExecutor(exec ports.Executor) ControllerOption {
	return func(o *options) {
		if exec != nil {
			o.executor = exec
		}
	}
}

// WithScheduleOnStart starts the root state's timers at construction.
// By default the root state is applied without scheduling anything.
func WithScheduleOnStart() ControllerOption {
	return func(o *options) {
		o.scheduleOnStart = true
	}
}

func buildOptions(opts []ControllerOption) options {
	o := options{
		logger:    logging.NewNop(),
		scheduler: clock.Real(),
		executor:  ports.Inline,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
