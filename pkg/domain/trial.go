package domain

import (
	"fmt"
	"time"
)

// TrialPhase identifies where a trial is in its lifecycle.
type TrialPhase string

const (
	PhasePending   TrialPhase = "pending"
	PhaseResolving TrialPhase = "resolving"
	PhaseStarting  TrialPhase = "starting"
	PhaseLoading   TrialPhase = "loading"
	PhaseRunning   TrialPhase = "running"
	PhaseFinishing TrialPhase = "finishing"
	PhaseGapWait   TrialPhase = "gap_wait"
	PhaseComplete  TrialPhase = "complete"
	PhaseAborted   TrialPhase = "aborted"
)

// TrialData is the result record of one trial. Plugins create it, the
// OnFinish hook may mutate it, and whatever remains is what gets persisted.
type TrialData map[string]any

// Clone returns a copy so stores and callers don't alias the live record.
func (d TrialData) Clone() TrialData {
	if d == nil {
		return nil
	}
	out := make(TrialData, len(d))
	for k, v := range d {
		out[k] = v
	}
	return out
}

// TrialSpec is the authored description of a single trial. It is created
// once by the caller (or the experiment loader) and may be executed any
// number of times; each execution resolves a fresh ResolvedTrial.
type TrialSpec struct {
	// Plugin names the registered plugin that renders this trial.
	Plugin string

	// Parameters is the raw parameter tree. Values can be literals, nested
	// maps/slices, or Producers evaluated at trial start (unless the plugin
	// schema declares the key function-typed, in which case the producer is
	// passed through for the plugin to call later).
	Parameters map[string]any

	// Data holds extra properties merged into the trial's result record.
	// Useful for tagging trials with condition labels the plugin doesn't
	// know about (e.g. stimulus_type: congruent).
	Data map[string]any

	// PostTrialGap is the display gap after the trial completes. Accepted
	// values: time.Duration, an int/float millisecond count, or a Producer
	// returning either. Nil falls back to the engine-wide default.
	PostTrialGap any

	// Lifecycle hooks. All run synchronously on the trial's goroutine; a
	// panic in any of them aborts the trial.
	OnStart  func(*ResolvedTrial) // before plugin handoff, may mutate the trial
	OnLoad   func()               // once the plugin signals load complete
	OnFinish func(TrialData)      // may add/remove/overwrite result keys
}

// ResolvedTrial is one execution's view of a TrialSpec: every eligible
// producer evaluated, parameter tree and data tags copied so hooks can
// mutate them freely. It lives from resolution until OnFinish returns.
type ResolvedTrial struct {
	Plugin     string
	Parameters map[string]any
	Data       map[string]any
	// PostTrialGap is carried unresolved; the controller evaluates it only
	// when the gap actually starts, so OnStart can still swap it.
	PostTrialGap any
}

// String returns a parameter value as a string, or def if absent or not a string.
func (t *ResolvedTrial) String(key, def string) string {
	if v, ok := t.Parameters[key].(string); ok {
		return v
	}
	return def
}

// Bool returns a boolean parameter, or def if absent or not a bool.
func (t *ResolvedTrial) Bool(key string, def bool) bool {
	if v, ok := t.Parameters[key].(bool); ok {
		return v
	}
	return def
}

// Strings returns a string-slice parameter. Both []string and []any forms
// are accepted (the latter is what YAML decoding produces).
func (t *ResolvedTrial) Strings(key string) []string {
	switch v := t.Parameters[key].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, e := range v {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

// Duration returns a duration parameter, or def if absent. Numeric values
// are interpreted as milliseconds, matching the experiment file format.
func (t *ResolvedTrial) Duration(key string, def time.Duration) time.Duration {
	d, err := DurationValue(t.Parameters[key])
	if err != nil || t.Parameters[key] == nil {
		return def
	}
	return d
}

// DurationValue coerces a literal into a time.Duration. Plain numbers are
// treated as millisecond counts.
func DurationValue(v any) (time.Duration, error) {
	switch t := v.(type) {
	case nil:
		return 0, nil
	case time.Duration:
		return t, nil
	case int:
		return time.Duration(t) * time.Millisecond, nil
	case int64:
		return time.Duration(t) * time.Millisecond, nil
	case float64:
		return time.Duration(t * float64(time.Millisecond)), nil
	case string:
		return time.ParseDuration(t)
	default:
		return 0, fmt.Errorf("cannot interpret %T as duration", v)
	}
}
