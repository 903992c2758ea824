package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/florandr/trialflow"
	"github.com/florandr/trialflow/internal/presentation/tui"
	"github.com/florandr/trialflow/pkg/domain"
	"github.com/florandr/trialflow/pkg/loader"
	"github.com/florandr/trialflow/pkg/ports"
	"github.com/florandr/trialflow/pkg/runner"
)

// RunOptions configures a single experiment session.
type RunOptions struct {
	ExperimentPath string
	RunID          string
	Headless       bool
	Responses      []string
	StoreKind      string
	RedisAddr      string
	Gap            time.Duration
	GapSet         bool
	MetricsAddr    string
	Out            string
	Debug          bool
}

// RunExperiment loads an experiment file and executes its timeline.
func RunExperiment(opts RunOptions) error {
	logger := createLogger(opts.Debug)

	if !opts.Headless {
		tui.PrintBanner(trialflow.Version)
	}

	exp, err := loader.Load(opts.ExperimentPath)
	if err != nil {
		return err
	}

	// Flag overrides the file-level default gap.
	gap := exp.PostTrialGap
	if opts.GapSet {
		gap = opts.Gap
	}

	hookSets := []domain.LifecycleHooks{}
	if opts.Debug {
		hookSets = append(hookSets, createDebugHooks(logger))
	}
	if opts.MetricsAddr != "" {
		hookSets = append(hookSets, serveMetrics(opts.MetricsAddr, logger))
	}

	engineOpts := []trialflow.Option{
		trialflow.WithPlugins(BuiltinPlugins()...),
		trialflow.WithDefaultGap(gap),
	}
	if opts.Debug {
		engineOpts = append(engineOpts, trialflow.WithLogger(logger))
	}
	if len(hookSets) > 0 {
		engineOpts = append(engineOpts, trialflow.WithLifecycleHooks(mergeHooks(hookSets...)))
	}

	engine := trialflow.New(engineOpts...)

	store, err := setupStore(opts.StoreKind, opts.RedisAddr)
	if err != nil {
		return err
	}

	sigCtx := NewSignalContext(context.Background())
	defer sigCtx.Cancel()

	r := &runner.Runner{
		Handler: buildHandler(opts),
		Store:   store,
		Logger:  logger,
	}

	if !opts.Headless && exp.Name != "" {
		printSystemMessage("Running experiment '%s' (%d trials)", exp.Name, len(exp.Timeline))
	}

	results, runErr := r.Run(sigCtx, engine, opts.RunID, exp.Timeline)

	if runErr == nil && !opts.Headless {
		printSystemMessage("Experiment complete: %d trials recorded.", len(results))
	}

	if err := writeResults(opts.Out, results); err != nil {
		return err
	}

	if runErr != nil && sigCtx.Signal() != nil {
		fmt.Println()
		printSystemMessage("Interrupted after %d trials.", len(results))
		return nil
	}

	return handleExecutionError(runErr)
}

// buildHandler picks the IO strategy: scripted responses for headless
// replay, plain line IO for piped stdin, rendered terminal IO otherwise.
func buildHandler(opts RunOptions) ports.IOHandler {
	if opts.Headless {
		if len(opts.Responses) > 0 {
			return runner.Keys(opts.Responses...)
		}
		return runner.NewTextHandler(nil, nil)
	}
	h := runner.NewTextHandler(nil, nil)
	h.Renderer = tui.NewRenderer()
	return h
}

// writeResults dumps the collected records as JSON to a file, or stdout
// when path is "-". Empty path skips output.
func writeResults(path string, results []domain.TrialData) error {
	if path == "" {
		return nil
	}

	payload, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode results: %w", err)
	}
	payload = append(payload, '\n')

	if path == "-" {
		_, err = os.Stdout.Write(payload)
		return err
	}
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		return fmt.Errorf("failed to write results: %w", err)
	}
	return nil
}
