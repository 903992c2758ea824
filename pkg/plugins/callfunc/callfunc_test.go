package callfunc_test

import (
	"context"
	"errors"
	"testing"

	"github.com/florandr/trialflow"
	"github.com/florandr/trialflow/pkg/domain"
	"github.com/florandr/trialflow/pkg/plugins/callfunc"
	"github.com/florandr/trialflow/pkg/runner"
	"github.com/florandr/trialflow/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEngine() *trialflow.Engine {
	return trialflow.New(trialflow.WithPlugins(callfunc.New()))
}

func TestRun_InvokesFunctionAndRecordsValue(t *testing.T) {
	eng := newEngine()

	calls := 0
	spec := &domain.TrialSpec{
		Plugin: callfunc.PluginName,
		Parameters: map[string]any{
			"func": func() (any, error) {
				calls++
				return 42, nil
			},
		},
	}

	data, err := eng.RunTrial(context.Background(), "t", 0, spec, runner.NewScriptedHandler())
	require.NoError(t, err)

	assert.Equal(t, 1, calls)
	assert.Equal(t, 42, data["value"])
}

func TestRun_FunctionNotResolvedBeforePlugin(t *testing.T) {
	eng := newEngine()

	// The resolver must hand the producer over unresolved: if it had been
	// evaluated during parameter resolution the plugin would see a literal
	// and fail.
	spec := &domain.TrialSpec{
		Plugin: callfunc.PluginName,
		Parameters: map[string]any{
			"func": func() (any, error) { return "deferred", nil },
		},
	}

	data, err := eng.RunTrial(context.Background(), "t", 0, spec, runner.NewScriptedHandler())
	require.NoError(t, err)
	assert.Equal(t, "deferred", data["value"])
}

func TestRun_LiteralParameterRejected(t *testing.T) {
	eng := newEngine()

	spec := &domain.TrialSpec{
		Plugin:     callfunc.PluginName,
		Parameters: map[string]any{"func": "not a function"},
	}

	_, err := eng.RunTrial(context.Background(), "t", 0, spec, runner.NewScriptedHandler())
	require.Error(t, err)

	var verr *schema.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "func", verr.Key)
}

func TestRun_FunctionErrorAbortsTrial(t *testing.T) {
	eng := newEngine()

	boom := errors.New("boom")
	spec := &domain.TrialSpec{
		Plugin: callfunc.PluginName,
		Parameters: map[string]any{
			"func": func() (any, error) { return nil, boom },
		},
	}

	_, err := eng.RunTrial(context.Background(), "t", 0, spec, runner.NewScriptedHandler())
	require.ErrorIs(t, err, boom)
}
