package session_test

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/thicket/pkg/adapters/memory"
	"github.com/aretw0/thicket/pkg/domain"
	"github.com/aretw0/thicket/pkg/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seed(t *testing.T, store *memory.Store, id string, updated time.Time) {
	t.Helper()
	transcript := domain.NewTranscript(id, "test")
	transcript.Record(domain.Query{Input: "a", Accepted: true, At: updated})
	require.NoError(t, store.Save(context.Background(), id, transcript))
}

func TestManager_Prune(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	mgr := session.NewManager(store)

	now := time.Now().UTC()
	seed(t, store, "stale", now.Add(-48*time.Hour))
	seed(t, store, "fresh", now)

	removed, err := mgr.Prune(ctx, now.Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, []string{"stale"}, removed)

	ids, err := mgr.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"fresh"}, ids)
}

func TestSweeper(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	mgr := session.NewManager(store)

	t.Run("Rejects bad configuration", func(t *testing.T) {
		_, err := session.NewSweeper(mgr, "not a schedule", time.Hour, nil)
		assert.ErrorContains(t, err, "invalid prune schedule")

		_, err = session.NewSweeper(mgr, "@hourly", 0, nil)
		assert.ErrorContains(t, err, "max age must be positive")
	})

	t.Run("Next follows the schedule", func(t *testing.T) {
		sw, err := session.NewSweeper(mgr, "0 3 * * *", time.Hour, nil)
		require.NoError(t, err)

		from := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
		want := time.Date(2024, 5, 2, 3, 0, 0, 0, time.UTC)
		assert.True(t, want.Equal(sw.Next(from)), "got %s", sw.Next(from))
	})

	t.Run("Sweep removes idle sessions", func(t *testing.T) {
		seed(t, store, "idle", time.Now().UTC().Add(-2*time.Hour))
		seed(t, store, "busy", time.Now().UTC())

		sw, err := session.NewSweeper(mgr, "@hourly", time.Hour, nil)
		require.NoError(t, err)

		removed, err := sw.Sweep(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"idle"}, removed)
	})

	t.Run("Run stops with context", func(t *testing.T) {
		sw, err := session.NewSweeper(mgr, "@hourly", time.Hour, nil)
		require.NoError(t, err)

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan struct{})
		go func() {
			sw.Run(ctx)
			close(done)
		}()
		cancel()

		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("Run did not return after cancel")
		}
	})
}
