package trialflow

import (
	"context"
	"log/slog"
	"time"

	"github.com/florandr/trialflow/internal/logging"
	"github.com/florandr/trialflow/internal/runtime"
	"github.com/florandr/trialflow/pkg/domain"
	"github.com/florandr/trialflow/pkg/ports"
	"github.com/florandr/trialflow/pkg/registry"
)

// Version is the library version, overridden at release build time via
// -ldflags "-X github.com/florandr/trialflow.Version=...".
var Version = "dev"

// Engine is the high-level entry point for the Trialflow library.
// It wraps the internal lifecycle controller and the plugin registry and
// provides a simplified API for consumers.
type Engine struct {
	registry   *registry.Registry
	controller *runtime.Controller
	hooks      domain.LifecycleHooks
	logger     *slog.Logger
	defaultGap time.Duration
	ctrlOpts   []runtime.Option
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithLifecycleHooks registers observability hooks (logging, metrics, SSE).
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithDefaultGap sets the experiment-wide post-trial gap used when a trial
// omits PostTrialGap. Defaults to zero (no gap).
func WithDefaultGap(gap time.Duration) Option {
	return func(e *Engine) {
		e.defaultGap = gap
	}
}

// WithPlugins registers plugins at construction time.
func WithPlugins(plugins ...ports.Plugin) Option {
	return func(e *Engine) {
		for _, p := range plugins {
			e.registry.Register(p)
		}
	}
}

// WithControllerOptions appends low-level controller options (tests mostly).
func WithControllerOptions(opts ...runtime.Option) Option {
	return func(e *Engine) {
		e.ctrlOpts = append(e.ctrlOpts, opts...)
	}
}

// New initializes a new Trialflow Engine.
func New(opts ...Option) *Engine {
	eng := &Engine{
		registry: registry.NewRegistry(),
	}

	for _, opt := range opts {
		opt(eng)
	}

	if eng.logger == nil {
		eng.logger = logging.NewNop()
	}

	ctrlOpts := []runtime.Option{
		runtime.WithLogger(eng.logger),
		runtime.WithLifecycleHooks(eng.hooks),
		runtime.WithDefaultGap(eng.defaultGap),
	}
	ctrlOpts = append(ctrlOpts, eng.ctrlOpts...)

	eng.controller = runtime.NewController(ctrlOpts...)
	return eng
}

// Register adds a plugin after construction. A plugin with the same name
// replaces the previous registration.
func (e *Engine) Register(p ports.Plugin) {
	e.registry.Register(p)
}

// Plugin looks up a registered plugin by name.
func (e *Engine) Plugin(name string) (ports.Plugin, error) {
	return e.registry.Get(name)
}

// Plugins returns the registered plugin names.
func (e *Engine) Plugins() []string {
	return e.registry.Names()
}

// DefaultGap returns the experiment-wide post-trial gap.
func (e *Engine) DefaultGap() time.Duration {
	return e.defaultGap
}

// RunTrial executes one trial through its full lifecycle using the given IO
// handler. The spec's plugin must be registered. The returned TrialData is
// the record to persist; on abort it is nil and the error describes the
// failing phase.
func (e *Engine) RunTrial(ctx context.Context, runID string, index int, spec *domain.TrialSpec, io ports.IOHandler) (domain.TrialData, error) {
	plug, err := e.registry.Get(spec.Plugin)
	if err != nil {
		return nil, err
	}
	ref := runtime.TrialRef{RunID: runID, Index: index}
	return e.controller.RunTrial(ctx, ref, spec, plug, io)
}
