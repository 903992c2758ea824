package runner

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/florandr/trialflow/pkg/domain"
)

// ScriptedResponse is one pre-planned participant response.
type ScriptedResponse struct {
	// Key is the simulated key press. Empty means "no response": the input
	// request runs to its timeout.
	Key string

	// RT is the reported reaction time. It is not waited out; scripted runs
	// complete as fast as the engine allows.
	RT time.Duration
}

// ScriptedHandler replays a queue of responses and records everything the
// plugins asked it to present. It is the headless counterpart of
// TextHandler, used by the --headless CLI mode and throughout the tests.
type ScriptedHandler struct {
	mu       sync.Mutex
	queue    []ScriptedResponse
	actions  []domain.ActionRequest
	requests []domain.InputRequest
}

// NewScriptedHandler creates a handler that will answer input requests with
// the given responses, in order.
func NewScriptedHandler(responses ...ScriptedResponse) *ScriptedHandler {
	return &ScriptedHandler{queue: responses}
}

// Keys is a convenience constructor: one response per key, zero RT.
func Keys(keys ...string) *ScriptedHandler {
	responses := make([]ScriptedResponse, len(keys))
	for i, k := range keys {
		responses[i] = ScriptedResponse{Key: k}
	}
	return NewScriptedHandler(responses...)
}

func (h *ScriptedHandler) Output(ctx context.Context, action domain.ActionRequest) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.actions = append(h.actions, action)
	return nil
}

func (h *ScriptedHandler) Input(ctx context.Context, req domain.InputRequest) (domain.InputResponse, error) {
	if err := ctx.Err(); err != nil {
		return domain.InputResponse{}, err
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	h.requests = append(h.requests, req)

	if len(h.queue) == 0 {
		if req.Timeout > 0 {
			return domain.InputResponse{RT: req.Timeout, TimedOut: true}, nil
		}
		return domain.InputResponse{}, fmt.Errorf("scripted responses exhausted")
	}

	next := h.queue[0]
	h.queue = h.queue[1:]

	if next.Key == "" {
		if req.Timeout > 0 {
			return domain.InputResponse{RT: req.Timeout, TimedOut: true}, nil
		}
		return domain.InputResponse{}, fmt.Errorf("scripted no-response requires a request timeout")
	}

	return domain.InputResponse{Key: next.Key, RT: next.RT}, nil
}

// Actions returns everything plugins asked to present, in order.
func (h *ScriptedHandler) Actions() []domain.ActionRequest {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]domain.ActionRequest, len(h.actions))
	copy(out, h.actions)
	return out
}

// Requests returns the input requests received, in order.
func (h *ScriptedHandler) Requests() []domain.InputRequest {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]domain.InputRequest, len(h.requests))
	copy(out, h.requests)
	return out
}
