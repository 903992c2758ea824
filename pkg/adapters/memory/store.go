package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/florandr/trialflow/pkg/domain"
)

// Store implements ports.DataStore in memory.
// Safe for concurrent use.
type Store struct {
	runs map[string][]domain.TrialData
	mu   sync.RWMutex
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		runs: make(map[string][]domain.TrialData),
	}
}

// SaveTrial persists one trial record at its timeline position.
func (s *Store) SaveTrial(ctx context.Context, runID string, index int, data domain.TrialData) error {
	// Copy on write so caller mutations don't leak into the store.
	record := data.Clone()

	s.mu.Lock()
	defer s.mu.Unlock()

	rows := s.runs[runID]
	for len(rows) <= index {
		rows = append(rows, nil)
	}
	rows[index] = record
	s.runs[runID] = rows
	return nil
}

// LoadRun retrieves all trial records of a run in timeline order.
func (s *Store) LoadRun(ctx context.Context, runID string) ([]domain.TrialData, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, ok := s.runs[runID]
	if !ok {
		return nil, domain.ErrRunNotFound
	}

	// Copy on read so caller can't mutate store state directly.
	out := make([]domain.TrialData, 0, len(rows))
	for _, row := range rows {
		if row == nil {
			continue
		}
		out = append(out, row.Clone())
	}
	return out, nil
}

// ListRuns returns known run IDs, sorted.
func (s *Store) ListRuns(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.runs))
	for id := range s.runs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// DeleteRun removes a run and its records.
func (s *Store) DeleteRun(ctx context.Context, runID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.runs, runID)
	return nil
}
