package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventTrialStart  EventType = "trial_start"
	EventPhaseChange EventType = "phase_change"
	EventTrialFinish EventType = "trial_finish"
	EventTrialAbort  EventType = "trial_abort"
)

// TrialEvent describes a lifecycle transition for observers. These are
// engine-level notifications (logging, metrics, SSE streams) and are
// distinct from the per-trial OnStart/OnLoad/OnFinish hooks on TrialSpec.
type TrialEvent struct {
	Timestamp time.Time     `json:"timestamp"`
	Type      EventType     `json:"type"`
	RunID     string        `json:"run_id,omitempty"`
	Index     int           `json:"index"`
	Plugin    string        `json:"plugin"`
	Phase     TrialPhase    `json:"phase"`
	Elapsed   time.Duration `json:"elapsed,omitempty"` // set on finish/abort
	Err       string        `json:"err,omitempty"`     // set on abort
}

// LifecycleHooks defines callbacks for engine observability. Any field may
// be nil. Hooks run synchronously on the trial's goroutine, so they should
// return quickly.
type LifecycleHooks struct {
	OnTrialStart  func(context.Context, *TrialEvent)
	OnPhaseChange func(context.Context, *TrialEvent)
	OnTrialFinish func(context.Context, *TrialEvent)
	OnTrialAbort  func(context.Context, *TrialEvent)
}
