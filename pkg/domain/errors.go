package domain

import (
	"errors"
	"fmt"
)

// ErrRunNotFound is returned when a run ID cannot be found in the store.
var ErrRunNotFound = errors.New("run not found")

// ErrPluginNotFound is returned when a trial references an unregistered plugin.
var ErrPluginNotFound = errors.New("plugin not found")

// ErrNoFinishSignal is returned when a plugin returns without calling Finish.
var ErrNoFinishSignal = errors.New("plugin returned without signaling finish")

// ParameterResolutionError reports a producer that failed (returned an error
// or panicked) while the resolver was evaluating the parameter tree. The
// trial never starts in this case.
type ParameterResolutionError struct {
	KeyPath string
	Cause   error
}

func (e *ParameterResolutionError) Error() string {
	return fmt.Sprintf("resolving parameter %q: %v", e.KeyPath, e.Cause)
}

func (e *ParameterResolutionError) Unwrap() error { return e.Cause }

// HookExecutionError reports a lifecycle hook that panicked. The trial is
// aborted from that phase forward; no later hooks run.
type HookExecutionError struct {
	Phase TrialPhase
	Cause error
}

func (e *HookExecutionError) Error() string {
	return fmt.Sprintf("hook failed in phase %s: %v", e.Phase, e.Cause)
}

func (e *HookExecutionError) Unwrap() error { return e.Cause }
