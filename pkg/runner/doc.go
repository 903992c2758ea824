/*
Package runner executes a timeline of trials against a Trialflow engine.

It owns the host-side concerns the engine core stays out of: how actions are
realized (terminal vs scripted simulation), where completed records are
persisted, and when a run stops. The Runner processes one trial at a time;
an aborted trial halts the timeline and persists nothing for that trial.
*/
package runner
