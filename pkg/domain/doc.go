/*
Package domain contains the core domain models for the Trialflow engine.

It defines the fundamental entities of a behavioral experiment, such as
TrialSpec, ResolvedTrial, and TrialData, plus the deferred-parameter type
(Producer) and the lifecycle event model. This package is kept pure and free
of external dependencies like I/O or persistence, following Hexagonal
Architecture principles.

# Key Entities

  - TrialSpec: The authored description of one trial (plugin, parameters, hooks, gap).
  - ResolvedTrial: A per-execution copy of the spec with dynamic parameters evaluated.
  - TrialData: The key/value result record a plugin produces for one trial.
  - Producer: A parameter expressed as a deferred computation, evaluated at trial start.
  - TrialEvent / LifecycleHooks: Observability callbacks for hosts (logging, metrics).
*/
package domain
