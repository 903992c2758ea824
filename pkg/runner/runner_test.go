package runner_test

import (
	"context"
	"testing"

	"github.com/florandr/trialflow"
	"github.com/florandr/trialflow/pkg/adapters/memory"
	"github.com/florandr/trialflow/pkg/domain"
	"github.com/florandr/trialflow/pkg/plugins/callfunc"
	"github.com/florandr/trialflow/pkg/plugins/htmlkeyboard"
	"github.com/florandr/trialflow/pkg/runner"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func keyboardTrial(stimulus string) *domain.TrialSpec {
	return &domain.TrialSpec{
		Plugin:     htmlkeyboard.PluginName,
		Parameters: map[string]any{"stimulus": stimulus},
	}
}

func TestRun_ExecutesTimelineInOrder(t *testing.T) {
	eng := trialflow.New(trialflow.WithPlugins(htmlkeyboard.New()))
	r := &runner.Runner{Handler: runner.Keys("f", "j", "f")}

	timeline := []*domain.TrialSpec{
		keyboardTrial("<<<<<"),
		keyboardTrial(">>>>>"),
		keyboardTrial("<<><<"),
	}

	results, err := r.Run(context.Background(), eng, "run-1", timeline)
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, "<<<<<", results[0]["stimulus"])
	assert.Equal(t, "j", results[1]["response"])
	assert.Equal(t, "<<><<", results[2]["stimulus"])
}

func TestRun_PersistsEachTrial(t *testing.T) {
	eng := trialflow.New(trialflow.WithPlugins(htmlkeyboard.New()))
	store := memory.NewStore()
	r := &runner.Runner{Handler: runner.Keys("f", "j"), Store: store}

	_, err := r.Run(context.Background(), eng, "run-1", []*domain.TrialSpec{
		keyboardTrial("<<<<<"),
		keyboardTrial(">>>>>"),
	})
	require.NoError(t, err)

	rows, err := store.LoadRun(context.Background(), "run-1")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "f", rows[0]["response"])
	assert.Equal(t, "j", rows[1]["response"])
}

func TestRun_AbortHaltsAndKeepsEarlierRecords(t *testing.T) {
	eng := trialflow.New(trialflow.WithPlugins(htmlkeyboard.New(), callfunc.New()))
	store := memory.NewStore()
	r := &runner.Runner{Handler: runner.Keys("f"), Store: store}

	failing := &domain.TrialSpec{
		Plugin:     callfunc.PluginName,
		Parameters: map[string]any{"func": "not a function"},
	}

	results, err := r.Run(context.Background(), eng, "run-1", []*domain.TrialSpec{
		keyboardTrial("<<<<<"),
		failing,
		keyboardTrial(">>>>>"),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "trial 1")

	// The first trial survived; the aborted one and everything after did not.
	require.Len(t, results, 1)
	rows, err := store.LoadRun(context.Background(), "run-1")
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestRun_NoStoreNoRunID(t *testing.T) {
	eng := trialflow.New(trialflow.WithPlugins(htmlkeyboard.New()))
	r := &runner.Runner{Handler: runner.Keys("f")}

	results, err := r.Run(context.Background(), eng, "", []*domain.TrialSpec{keyboardTrial("+")})
	require.NoError(t, err)
	assert.Len(t, results, 1)
}

func TestRun_UnknownPluginAborts(t *testing.T) {
	eng := trialflow.New()
	r := &runner.Runner{Handler: runner.NewScriptedHandler()}

	_, err := r.Run(context.Background(), eng, "run-1", []*domain.TrialSpec{
		{Plugin: "does-not-exist"},
	})
	require.ErrorIs(t, err, domain.ErrPluginNotFound)
}
