package memory_test

import (
	"context"
	"testing"

	"github.com/florandr/trialflow/pkg/adapters/memory"
	"github.com/florandr/trialflow/pkg/domain"
	"github.com/florandr/trialflow/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_Contract(t *testing.T) {
	store := memory.NewStore()
	ports.RunDataStoreContract(t, store)
}

func TestMemoryStore_Isolation(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()

	original := domain.TrialData{"stimulus": "<<<<<"}
	require.NoError(t, store.SaveTrial(ctx, "run", 0, original))

	// Mutating the saved map must not change the stored record.
	original["stimulus"] = "mutated"

	rows, err := store.LoadRun(ctx, "run")
	require.NoError(t, err)
	assert.Equal(t, "<<<<<", rows[0]["stimulus"])

	// Mutating the loaded map must not change the stored record either.
	rows[0]["stimulus"] = "mutated"

	again, err := store.LoadRun(ctx, "run")
	require.NoError(t, err)
	assert.Equal(t, "<<<<<", again[0]["stimulus"])
}
