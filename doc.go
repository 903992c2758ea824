/*
Package trialflow is a trial lifecycle engine for building behavioral
experiments (reaction-time tasks, surveys, instruction sequences) in Go.

It implements the core loop of a timeline-based experiment: per-trial
parameter trees with deferred ("dynamic") values, schema-driven resolution,
and a strict lifecycle around every trial (on_start, on_load, on_finish,
post-trial gap). Stimulus presentation is delegated to plugins; the engine
manages resolution, sequencing, and data collection, while your application
("Host") supplies the IO and persistence. This Hexagonal Architecture lets
Trialflow run the same experiment on a terminal, headless in CI, or behind
an HTTP results server.

# Concept

A trial is described once as a TrialSpec: a plugin name, a parameter tree,
optional data tags, hooks, and a post-trial gap. Any parameter can be a
Producer, a deferred computation evaluated fresh each time the trial runs.
Plugins declare a schema; a parameter the plugin marks function-typed is
handed over unresolved so the plugin can invoke it mid-trial.

# Key Features

  - Dynamic parameters: producers evaluated exactly once at trial start,
    nested trees included, with schema-controlled pass-through.
  - Strict lifecycle: hooks fire in a fixed order, mutations are visible to
    later phases, and any failure aborts the trial with nothing persisted.
  - Hexagonal Architecture: core logic is decoupled from adapters
    (terminal IO, scripted simulation, memory/redis stores, HTTP).

# Usage

	package main

	import (
		"context"
		"log"

		"github.com/florandr/trialflow"
		"github.com/florandr/trialflow/pkg/domain"
		"github.com/florandr/trialflow/pkg/plugins/htmlkeyboard"
		"github.com/florandr/trialflow/pkg/runner"
	)

	func main() {
		eng := trialflow.New(trialflow.WithPlugins(htmlkeyboard.New()))

		trial := &domain.TrialSpec{
			Plugin:     "html-keyboard-response",
			Parameters: map[string]any{"stimulus": "<<<<<"},
			Data:       map[string]any{"stimulus_type": "congruent"},
			OnFinish: func(data domain.TrialData) {
				data["correct"] = data["response"] == "f"
			},
		}

		r := runner.NewRunner()
		results, err := r.Run(context.Background(), eng, "demo", []*domain.TrialSpec{trial})
		if err != nil {
			log.Fatal(err)
		}
		log.Printf("collected %d trials", len(results))
	}
*/
package trialflow
