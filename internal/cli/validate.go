package cli

import (
	"fmt"

	"github.com/florandr/trialflow"
	"github.com/florandr/trialflow/pkg/loader"
	"github.com/florandr/trialflow/pkg/schema"
)

// ValidateExperiment checks an experiment file without running it: every
// trial must name a registered plugin and its static parameters must pass
// the plugin's schema. Dynamic parameters are skipped here; they can only
// be checked at trial start.
func ValidateExperiment(path string) error {
	exp, err := loader.Load(path)
	if err != nil {
		return err
	}

	engine := trialflow.New(trialflow.WithPlugins(BuiltinPlugins()...))

	var failures []error
	for i, spec := range exp.Timeline {
		plug, err := engine.Plugin(spec.Plugin)
		if err != nil {
			failures = append(failures, fmt.Errorf("timeline[%d]: %w", i, err))
			continue
		}
		if err := schema.Validate(plug.Schema(), spec.Parameters); err != nil {
			failures = append(failures, fmt.Errorf("timeline[%d] (%s): %w", i, spec.Plugin, err))
		}
	}

	if len(failures) > 0 {
		return &schema.AggregateError{Errors: failures}
	}
	return nil
}
