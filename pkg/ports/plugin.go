package ports

import (
	"context"

	"github.com/florandr/trialflow/pkg/domain"
	"github.com/florandr/trialflow/pkg/schema"
)

// Plugin renders one trial and produces its data. Implementations are
// treated as opaque: the controller resolves parameters against the
// declared schema, hands over a ResolvedTrial, and waits for the two
// lifecycle signals (LoadComplete, Finish) on the host.
type Plugin interface {
	// Name is the identifier trials reference, e.g. "html-keyboard-response".
	Name() string

	// Schema declares the plugin's parameters. Function-typed entries are
	// passed through unresolved; everything else is resolved before Run.
	Schema() schema.Schema

	// Run executes the trial to natural completion. It must call
	// host.LoadComplete() once its (possibly asynchronous) loading phase is
	// done, and host.Finish(data) exactly once before returning.
	// Returning without Finish is an error; returning a non-nil error
	// aborts the trial.
	Run(ctx context.Context, trial *domain.ResolvedTrial, host TrialHost) error
}

// TrialHost is the controller-side surface a running plugin talks to.
// All methods must be called from the goroutine Run executes on.
type TrialHost interface {
	// Render asks the host to realize a presentation action.
	Render(action domain.ActionRequest) error

	// Input blocks until a response arrives or the request times out.
	Input(ctx context.Context, req domain.InputRequest) (domain.InputResponse, error)

	// LoadComplete signals that loading finished. The controller fires the
	// trial's OnLoad hook on the first call; later calls are no-ops.
	LoadComplete()

	// Finish delivers the trial's result record and ends the running phase.
	Finish(data domain.TrialData)
}

// IOHandler is the strategy for realizing actions and collecting responses.
// It is what separates a live terminal session from a scripted simulation.
type IOHandler interface {
	// Output realizes a presentation action.
	Output(ctx context.Context, action domain.ActionRequest) error

	// Input collects one response subject to the request's constraints.
	// A timeout is not an error: it returns a response with TimedOut set.
	Input(ctx context.Context, req domain.InputRequest) (domain.InputResponse, error)
}
