/*
Package ports defines the driven ports (interfaces) for the Trialflow engine.

These interfaces decouple the core lifecycle controller from external
implementations, allowing the engine to work with any stimulus renderer,
response collector, or storage backend.

# Key Interfaces

  - Plugin: Renders one trial and produces its TrialData (opaque contract).
  - TrialHost: The controller-side surface a running plugin signals through.
  - IOHandler: Strategy for realizing presentation actions and collecting responses.
  - DataStore: Responsible for persisting per-run TrialData records.
*/
package ports
