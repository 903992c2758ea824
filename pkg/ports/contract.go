package ports

import (
	"context"
	"testing"
	"time"

	"github.com/florandr/trialflow/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunDataStoreContract runs a suite of tests to verify that a DataStore
// implementation adheres to the defined interface contract.
func RunDataStoreContract(t *testing.T, store DataStore) {
	ctx := context.Background()
	runID := "contract-test-run-" + time.Now().Format("20060102150405")

	t.Run("Save and Load", func(t *testing.T) {
		first := domain.TrialData{"stimulus": "<<<<<", "response": "f", "rt": 412}
		second := domain.TrialData{"stimulus": ">>>>>", "response": "j", "rt": 388}

		require.NoError(t, store.SaveTrial(ctx, runID, 0, first))
		require.NoError(t, store.SaveTrial(ctx, runID, 1, second))

		rows, err := store.LoadRun(ctx, runID)
		require.NoError(t, err)
		require.Len(t, rows, 2)
		assert.Equal(t, "<<<<<", rows[0]["stimulus"])
		assert.Equal(t, ">>>>>", rows[1]["stimulus"])
		// JSON persistence may widen ints; only presence is contractual.
		assert.NotNil(t, rows[0]["rt"])
	})

	t.Run("Load preserves timeline order", func(t *testing.T) {
		id := runID + "-order"
		// Saved out of order, loaded in order.
		require.NoError(t, store.SaveTrial(ctx, id, 1, domain.TrialData{"pos": "second"}))
		require.NoError(t, store.SaveTrial(ctx, id, 0, domain.TrialData{"pos": "first"}))
		defer func() { _ = store.DeleteRun(ctx, id) }()

		rows, err := store.LoadRun(ctx, id)
		require.NoError(t, err)
		require.Len(t, rows, 2)
		assert.Equal(t, "first", rows[0]["pos"])
		assert.Equal(t, "second", rows[1]["pos"])
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.LoadRun(ctx, "non-existent-"+runID)
		assert.ErrorIs(t, err, domain.ErrRunNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.SaveTrial(ctx, runID, 0, domain.TrialData{"stimulus": "+"}))

		require.NoError(t, store.DeleteRun(ctx, runID))

		_, err := store.LoadRun(ctx, runID)
		assert.ErrorIs(t, err, domain.ErrRunNotFound, "LoadRun after DeleteRun should return ErrRunNotFound")
	})

	t.Run("List", func(t *testing.T) {
		id1 := runID + "-1"
		id2 := runID + "-2"
		_ = store.SaveTrial(ctx, id1, 0, domain.TrialData{"stimulus": "a"})
		_ = store.SaveTrial(ctx, id2, 0, domain.TrialData{"stimulus": "b"})

		defer func() {
			_ = store.DeleteRun(ctx, id1)
			_ = store.DeleteRun(ctx, id2)
		}()

		runs, err := store.ListRuns(ctx)
		require.NoError(t, err)
		assert.Contains(t, runs, id1)
		assert.Contains(t, runs, id2)
	})
}
