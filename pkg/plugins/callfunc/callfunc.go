// Package callfunc implements the call-function trial: no display, no
// response collection, just a deferred computation invoked at a defined
// point in the timeline with its return value recorded.
//
// Its single parameter is function-typed, so the resolver hands the
// producer over unresolved and the plugin itself decides when to call it
// (here: once, immediately after load).
package callfunc

import (
	"context"
	"fmt"

	"github.com/florandr/trialflow/pkg/domain"
	"github.com/florandr/trialflow/pkg/ports"
	"github.com/florandr/trialflow/pkg/schema"
)

// PluginName is the identifier trials reference.
const PluginName = "call-function"

// Plugin invokes a deferred function and records its return value.
type Plugin struct{}

// New creates the plugin.
func New() *Plugin { return &Plugin{} }

func (p *Plugin) Name() string { return PluginName }

func (p *Plugin) Schema() schema.Schema {
	return schema.Schema{
		"func": schema.Function(),
	}
}

func (p *Plugin) Run(ctx context.Context, trial *domain.ResolvedTrial, host ports.TrialHost) error {
	raw := trial.Parameters["func"]
	fn, ok := domain.AsProducer(raw)
	if !ok {
		// Strictly requires a producer; a literal here is the plugin's
		// mismatch to report, not the controller's.
		return &schema.ValidationError{Key: "func", Reason: "expected function", Value: raw}
	}

	host.LoadComplete()

	value, err := fn()
	if err != nil {
		return fmt.Errorf("call-function: %w", err)
	}

	host.Finish(domain.TrialData{"value": value})
	return nil
}
