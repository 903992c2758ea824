package ports

import (
	"context"

	"github.com/florandr/trialflow/pkg/domain"
)

// DataStore defines the interface for persisting trial results.
// A "run" is one pass through a timeline; each completed trial appends one
// TrialData record to the run, in timeline order.
type DataStore interface {
	// SaveTrial appends the data record for trial `index` of the run.
	SaveTrial(ctx context.Context, runID string, index int, data domain.TrialData) error

	// LoadRun retrieves all records of a run in trial order.
	// Returns domain.ErrRunNotFound if the run does not exist.
	LoadRun(ctx context.Context, runID string) ([]domain.TrialData, error)

	// ListRuns returns the IDs of all known runs.
	ListRuns(ctx context.Context) ([]string, error)

	// DeleteRun removes a run and its records.
	DeleteRun(ctx context.Context, runID string) error
}
