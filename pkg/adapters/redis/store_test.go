package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/florandr/trialflow/pkg/adapters/redis"
	"github.com/florandr/trialflow/pkg/domain"
	"github.com/florandr/trialflow/pkg/ports"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

func TestRedisStore_Contract(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}
	defer mr.Close()

	client := backend.NewClient(&backend.Options{
		Addr: mr.Addr(),
	})

	store := redis.NewFromClient(client)
	ports.RunDataStoreContract(t, store)
}

func TestRedisStore_TTL_Expiration(t *testing.T) {
	mr, err := miniredis.Run()
	assert.NoError(t, err)
	defer mr.Close()

	client := backend.NewClient(&backend.Options{
		Addr: mr.Addr(),
	})

	store := redis.NewFromClient(client, redis.WithTTL(1*time.Second))
	ctx := context.Background()
	runID := "run-ttl"

	err = store.SaveTrial(ctx, runID, 0, domain.TrialData{"stimulus": "+"})
	assert.NoError(t, err)

	runs, err := store.ListRuns(ctx)
	assert.NoError(t, err)
	assert.Contains(t, runs, runID)

	// Fast forward time in miniredis for key expiration.
	mr.FastForward(2 * time.Second)

	_, err = store.LoadRun(ctx, runID)
	assert.ErrorIs(t, err, domain.ErrRunNotFound)

	// Index cleanup uses time.Now() for the score cutoff, so wait past the
	// TTL in wall-clock time before expecting the lazy prune.
	time.Sleep(1200 * time.Millisecond)

	runs, err = store.ListRuns(ctx)
	assert.NoError(t, err)
	assert.Empty(t, runs)
}

func TestRedisStore_Prefix(t *testing.T) {
	mr, err := miniredis.Run()
	assert.NoError(t, err)
	defer mr.Close()

	client := backend.NewClient(&backend.Options{
		Addr: mr.Addr(),
	})

	store := redis.NewFromClient(client, redis.WithPrefix("custom:lab:"))
	ctx := context.Background()
	runID := "my-run"

	err = store.SaveTrial(ctx, runID, 0, domain.TrialData{"stimulus": "+"})
	assert.NoError(t, err)

	assert.True(t, mr.Exists("custom:lab:my-run"), "Expected key with custom prefix to exist")
	assert.True(t, mr.Exists("custom:lab:index"), "Expected index with custom prefix to exist")

	runs, err := store.ListRuns(ctx)
	assert.NoError(t, err)
	assert.Contains(t, runs, runID)
}
