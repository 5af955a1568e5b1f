package history

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRedisStore_InvalidURL(t *testing.T) {
	_, err := NewRedisStore("invalid://url")
	require.Error(t, err)
}

func TestNewRedisStore_ConnectionFailure(t *testing.T) {
	// Try to connect to non-existent Redis
	_, err := NewRedisStore("redis://localhost:9999")
	require.Error(t, err)
}

func TestRedisStore_SaveAndList(t *testing.T) {
	// Skip if Redis not available
	store, err := NewRedisStore("redis://localhost:6379/15")
	if err != nil {
		t.Skip("Redis not available:", err)
	}
	defer store.Close()

	ctx := context.Background()
	store.SetKey("termeval:test:runs")
	store.SetMaxRuns(2)
	require.NoError(t, store.Clear(ctx))
	defer store.Clear(ctx)

	base := time.Now().UTC()
	for i, label := range []string{"a", "b", "c"} {
		require.NoError(t, store.Save(ctx, runAt(label, base.Add(time.Duration(i)*time.Second))))
	}

	runs, err := store.List(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "b"}, labels(runs))
	assert.Equal(t, 0.5, runs[0].Metrics["MAP"])

	runs, err = store.List(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"c"}, labels(runs))
}
