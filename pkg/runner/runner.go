package runner

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/florandr/trialflow"
	"github.com/florandr/trialflow/internal/logging"
	"github.com/florandr/trialflow/pkg/domain"
	"github.com/florandr/trialflow/pkg/ports"
)

// Runner handles the execution loop of a Trialflow timeline using provided IO.
// It uses an IOHandler strategy to abstract the interaction mode
// (terminal vs scripted), which also makes the loop easy to test.
type Runner struct {
	// Handler is the strategy for IO. If nil, a TextHandler on
	// Stdin/Stdout is used.
	Handler ports.IOHandler

	// Store is the persistence adapter for trial records.
	// If nil, results are only returned in memory.
	Store ports.DataStore

	// Logger is used for internal debug logging.
	// If nil, a no-op logger is used.
	Logger *slog.Logger
}

// NewRunner creates a new Runner with default terminal IO.
func NewRunner() *Runner {
	return &Runner{
		Handler: NewTextHandler(nil, nil),
		Logger:  logging.NewNop(),
	}
}

// Run executes the timeline in order until completion or first abort.
// Each completed trial's record is persisted (when a Store is configured)
// before the next trial begins, so an abort mid-run leaves every earlier
// trial safely stored and nothing from the aborted one.
// Returns the records collected so far and the abort error, if any.
func (r *Runner) Run(ctx context.Context, engine *trialflow.Engine, runID string, timeline []*domain.TrialSpec) ([]domain.TrialData, error) {
	if r.Handler == nil {
		r.Handler = NewTextHandler(nil, nil)
	}
	if r.Logger == nil {
		r.Logger = logging.NewNop()
	}

	results := make([]domain.TrialData, 0, len(timeline))

	for i, spec := range timeline {
		data, err := engine.RunTrial(ctx, runID, i, spec, r.Handler)
		if err != nil {
			// Abort halts the sequence; nothing is persisted for this trial.
			return results, fmt.Errorf("trial %d (%s): %w", i, spec.Plugin, err)
		}

		if err := r.saveTrial(ctx, runID, i, data); err != nil {
			return results, fmt.Errorf("critical persistence error: %w", err)
		}

		results = append(results, data)
	}

	r.Logger.Debug("timeline complete", "run_id", runID, "trials", len(results))
	return results, nil
}

func (r *Runner) saveTrial(ctx context.Context, runID string, index int, data domain.TrialData) error {
	if r.Store == nil || runID == "" {
		return nil
	}
	if err := r.Store.SaveTrial(ctx, runID, index, data); err != nil {
		return err
	}
	r.Logger.Debug("trial saved", "run_id", runID, "index", index)
	return nil
}
