package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/florandr/trialflow/internal/logging"
	"github.com/florandr/trialflow/pkg/domain"
	"github.com/florandr/trialflow/pkg/ports"
)

// SleepFunc blocks for the post-trial gap. Injectable so tests can observe
// the requested duration without waiting it out.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Controller drives a single trial through its lifecycle:
// resolve parameters, fire OnStart, hand off to the plugin, fire OnLoad on
// the load signal, collect the finish data, fire OnFinish, wait the gap.
// One controller is safe to reuse across trials; it holds no per-trial state.
type Controller struct {
	logger     *slog.Logger
	hooks      domain.LifecycleHooks
	defaultGap time.Duration
	sleep      SleepFunc
}

// Option configures the Controller.
type Option func(*Controller)

// WithLogger sets a structured logger for lifecycle transitions.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(c *Controller) {
		c.hooks = hooks
	}
}

// WithDefaultGap sets the experiment-wide gap used when a trial omits PostTrialGap.
func WithDefaultGap(gap time.Duration) Option {
	return func(c *Controller) {
		c.defaultGap = gap
	}
}

// WithSleep overrides the gap timer (tests).
func WithSleep(sleep SleepFunc) Option {
	return func(c *Controller) {
		if sleep != nil {
			c.sleep = sleep
		}
	}
}

// NewController creates a controller with the given options.
func NewController(opts ...Option) *Controller {
	c := &Controller{
		logger: logging.NewNop(),
		sleep:  sleepTimer,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// TrialRef identifies a trial within a run, for events and logging only.
type TrialRef struct {
	RunID string
	Index int
}

// RunTrial executes one trial to completion and returns its data record.
// The TrialSpec is never mutated; every execution resolves a fresh
// ResolvedTrial, so the same spec can re-run with different dynamic results.
// On any error the trial is aborted: no later hooks run, no data is returned.
func (c *Controller) RunTrial(ctx context.Context, ref TrialRef, spec *domain.TrialSpec, plug ports.Plugin, io ports.IOHandler) (domain.TrialData, error) {
	started := time.Now()
	phase := domain.PhasePending

	c.emit(ctx, domain.EventTrialStart, ref, spec.Plugin, phase, 0, nil)

	advance := func(next domain.TrialPhase) {
		phase = next
		c.logger.Debug("trial phase", "run_id", ref.RunID, "index", ref.Index, "phase", phase)
		c.emit(ctx, domain.EventPhaseChange, ref, spec.Plugin, phase, 0, nil)
	}
	abort := func(err error) (domain.TrialData, error) {
		phase = domain.PhaseAborted
		c.logger.Error("trial aborted", "run_id", ref.RunID, "index", ref.Index, "plugin", spec.Plugin, "error", err)
		c.emit(ctx, domain.EventTrialAbort, ref, spec.Plugin, phase, time.Since(started), err)
		return nil, err
	}

	// Resolving: evaluate every eligible producer before anything renders.
	advance(domain.PhaseResolving)
	params, err := ResolveParameters(spec.Parameters, plug.Schema())
	if err != nil {
		return abort(err)
	}

	trial := &domain.ResolvedTrial{
		Plugin:       spec.Plugin,
		Parameters:   params,
		Data:         domain.CloneParams(spec.Data),
		PostTrialGap: spec.PostTrialGap,
	}
	if trial.Data == nil {
		trial.Data = map[string]any{}
	}

	// Starting: OnStart gets the mutable trial; its edits are what the
	// plugin sees.
	advance(domain.PhaseStarting)
	if spec.OnStart != nil {
		if err := callHook(domain.PhaseStarting, func() { spec.OnStart(trial) }); err != nil {
			return abort(err)
		}
	}

	// Loading/Running: hand off to the plugin. The host routes presentation
	// through the IO handler and intercepts the two lifecycle signals.
	advance(domain.PhaseLoading)
	host := &trialHost{
		ctx: ctx,
		io:  io,
		onLoad: func() error {
			advance(domain.PhaseRunning)
			if spec.OnLoad == nil {
				return nil
			}
			return callHook(domain.PhaseLoading, spec.OnLoad)
		},
	}

	if err := plug.Run(ctx, trial, host); err != nil {
		return abort(fmt.Errorf("plugin %s: %w", spec.Plugin, err))
	}
	if host.hookErr != nil {
		return abort(host.hookErr)
	}
	if !host.finished {
		return abort(fmt.Errorf("plugin %s: %w", spec.Plugin, domain.ErrNoFinishSignal))
	}

	// Merge the spec's data tags over the plugin's record. Tags win: they
	// are the experimenter's labels for this trial.
	data := host.data
	if data == nil {
		data = domain.TrialData{}
	}
	for k, v := range trial.Data {
		data[k] = v
	}

	// Finishing: OnFinish may rewrite the record in place.
	advance(domain.PhaseFinishing)
	if spec.OnFinish != nil {
		if err := callHook(domain.PhaseFinishing, func() { spec.OnFinish(data) }); err != nil {
			return abort(err)
		}
	}

	// GapWait: the gap is resolved only now, so OnStart mutations and
	// producer gaps both take effect.
	advance(domain.PhaseGapWait)
	gap, err := c.resolveGap(trial.PostTrialGap)
	if err != nil {
		return abort(err)
	}
	if gap > 0 {
		if err := c.sleep(ctx, gap); err != nil {
			return abort(err)
		}
	}

	advance(domain.PhaseComplete)
	c.emit(ctx, domain.EventTrialFinish, ref, spec.Plugin, domain.PhaseComplete, time.Since(started), nil)
	return data, nil
}

// resolveGap evaluates the post-trial gap, invoking a producer if the trial
// supplied one, and falls back to the engine-wide default.
func (c *Controller) resolveGap(raw any) (time.Duration, error) {
	if raw == nil {
		return c.defaultGap, nil
	}
	if producer, ok := domain.AsProducer(raw); ok {
		value, err := invokeProducer(producer, "post_trial_gap")
		if err != nil {
			return 0, err
		}
		raw = value
	}
	gap, err := domain.DurationValue(raw)
	if err != nil {
		return 0, fmt.Errorf("post_trial_gap: %w", err)
	}
	if gap < 0 {
		return 0, fmt.Errorf("post_trial_gap: negative duration %v", gap)
	}
	return gap, nil
}

// callHook runs a user hook, converting a panic into a HookExecutionError.
func callHook(phase domain.TrialPhase, fn func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &domain.HookExecutionError{
				Phase: phase,
				Cause: fmt.Errorf("%v", r),
			}
		}
	}()
	fn()
	return nil
}

func (c *Controller) emit(ctx context.Context, typ domain.EventType, ref TrialRef, plugin string, phase domain.TrialPhase, elapsed time.Duration, err error) {
	var hook func(context.Context, *domain.TrialEvent)
	switch typ {
	case domain.EventTrialStart:
		hook = c.hooks.OnTrialStart
	case domain.EventPhaseChange:
		hook = c.hooks.OnPhaseChange
	case domain.EventTrialFinish:
		hook = c.hooks.OnTrialFinish
	case domain.EventTrialAbort:
		hook = c.hooks.OnTrialAbort
	}
	if hook == nil {
		return
	}

	event := &domain.TrialEvent{
		Timestamp: time.Now(),
		Type:      typ,
		RunID:     ref.RunID,
		Index:     ref.Index,
		Plugin:    plugin,
		Phase:     phase,
		Elapsed:   elapsed,
	}
	if err != nil {
		event.Err = err.Error()
	}
	hook(ctx, event)
}

// sleepTimer is the production gap wait: a timer raced against the context.
func sleepTimer(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// trialHost adapts an IOHandler into the contract plugins signal through.
// Hooks fired from inside the plugin call are captured in hookErr rather
// than propagated, so the plugin can unwind normally before the controller
// aborts.
type trialHost struct {
	ctx      context.Context
	io       ports.IOHandler
	onLoad   func() error
	loaded   bool
	finished bool
	data     domain.TrialData
	hookErr  error
}

func (h *trialHost) Render(action domain.ActionRequest) error {
	return h.io.Output(h.ctx, action)
}

func (h *trialHost) Input(ctx context.Context, req domain.InputRequest) (domain.InputResponse, error) {
	return h.io.Input(ctx, req)
}

func (h *trialHost) LoadComplete() {
	if h.loaded {
		return
	}
	h.loaded = true
	if err := h.onLoad(); err != nil && h.hookErr == nil {
		h.hookErr = err
	}
}

func (h *trialHost) Finish(data domain.TrialData) {
	if h.finished || h.hookErr != nil {
		// Finish after a failed hook is discarded: the trial is aborting.
		return
	}
	h.finished = true
	h.data = data
}
