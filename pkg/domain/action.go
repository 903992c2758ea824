package domain

import "time"

// ActionRequest represents a presentation side-effect a plugin asks the host
// to perform. Plugins never touch a display directly; they emit actions and
// the host's IO handler decides how to realize them (terminal, test buffer,
// remote client).
type ActionRequest struct {
	Type    string // e.g. "RENDER_STIMULUS"
	Payload any
}

// Standard action types.
const (
	// ActionRenderStimulus requests display of a stimulus.
	// Payload: string (raw stimulus text/markup).
	ActionRenderStimulus = "RENDER_STIMULUS"

	// ActionRenderContent requests display of formatted content
	// (instructions, prompts). Payload: string (markdown).
	ActionRenderContent = "RENDER_CONTENT"

	// ActionClearStimulus requests the current stimulus be removed,
	// typically when stimulus_duration elapses. Payload: nil.
	ActionClearStimulus = "CLEAR_STIMULUS"

	// ActionSystemMessage is a meta-message from the engine (status, logs).
	// Payload: string.
	ActionSystemMessage = "SYSTEM_MESSAGE"
)

// InputRequest describes the response collection a plugin is waiting on.
type InputRequest struct {
	// Choices restricts which keys count as a response. Empty means any key.
	Choices []string `json:"choices,omitempty"`

	// Timeout bounds the wait. Zero means wait indefinitely.
	Timeout time.Duration `json:"timeout,omitempty"`
}

// InputResponse is what the IO handler hands back to the plugin.
type InputResponse struct {
	// Key is the pressed key, empty if the wait timed out.
	Key string `json:"key"`

	// RT is the latency from request to response.
	RT time.Duration `json:"rt"`

	// TimedOut is set when Timeout elapsed with no (allowed) response.
	TimedOut bool `json:"timed_out"`
}
