package runner_test

import (
	"context"
	"testing"
	"time"

	"github.com/florandr/trialflow/pkg/domain"
	"github.com/florandr/trialflow/pkg/runner"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScriptedHandler_ReplaysResponsesInOrder(t *testing.T) {
	h := runner.NewScriptedHandler(
		runner.ScriptedResponse{Key: "f", RT: 400 * time.Millisecond},
		runner.ScriptedResponse{Key: "j", RT: 350 * time.Millisecond},
	)
	ctx := context.Background()

	resp, err := h.Input(ctx, domain.InputRequest{})
	require.NoError(t, err)
	assert.Equal(t, "f", resp.Key)
	assert.Equal(t, 400*time.Millisecond, resp.RT)

	resp, err = h.Input(ctx, domain.InputRequest{})
	require.NoError(t, err)
	assert.Equal(t, "j", resp.Key)
}

func TestScriptedHandler_EmptyKeySimulatesTimeout(t *testing.T) {
	h := runner.NewScriptedHandler(runner.ScriptedResponse{})

	resp, err := h.Input(context.Background(), domain.InputRequest{Timeout: time.Second})
	require.NoError(t, err)
	assert.True(t, resp.TimedOut)
	assert.Equal(t, time.Second, resp.RT)
}

func TestScriptedHandler_ExhaustedQueue(t *testing.T) {
	h := runner.NewScriptedHandler()

	// Without a timeout there is no legal way to answer.
	_, err := h.Input(context.Background(), domain.InputRequest{})
	assert.Error(t, err)

	// With a timeout, exhaustion reads as a no-response trial.
	resp, err := h.Input(context.Background(), domain.InputRequest{Timeout: 500 * time.Millisecond})
	require.NoError(t, err)
	assert.True(t, resp.TimedOut)
}

func TestScriptedHandler_RecordsActionsAndRequests(t *testing.T) {
	h := runner.Keys("f")
	ctx := context.Background()

	require.NoError(t, h.Output(ctx, domain.ActionRequest{Type: domain.ActionRenderStimulus, Payload: "+"}))
	_, err := h.Input(ctx, domain.InputRequest{Choices: []string{"f"}})
	require.NoError(t, err)

	require.Len(t, h.Actions(), 1)
	assert.Equal(t, "+", h.Actions()[0].Payload)
	require.Len(t, h.Requests(), 1)
	assert.Equal(t, []string{"f"}, h.Requests()[0].Choices)
}
