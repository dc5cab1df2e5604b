package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/thicket/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunTranscriptStoreContract runs a suite of tests to verify that a
// TranscriptStore implementation adheres to the defined interface contract.
func RunTranscriptStoreContract(t *testing.T, store TranscriptStore) {
	ctx := context.Background()
	sessionID := "contract-test-session-" + time.Now().Format("20060102150405")

	t.Run("Save and Load", func(t *testing.T) {
		transcript := domain.NewTranscript(sessionID, "contract")
		transcript.Record(domain.Query{Input: "ab", Accepted: true})
		transcript.Record(domain.Query{Input: "", Accepted: false})

		err := store.Save(ctx, sessionID, transcript)
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, sessionID, loaded.SessionID)
		assert.Equal(t, "contract", loaded.Automaton)
		require.Len(t, loaded.Queries, 2)
		assert.Equal(t, "ab", loaded.Queries[0].Input)
		assert.True(t, loaded.Queries[0].Accepted)
		assert.False(t, loaded.Queries[1].Accepted)
		assert.True(t, transcript.Queries[0].At.Equal(loaded.Queries[0].At))
	})

	t.Run("Overwrite", func(t *testing.T) {
		transcript := domain.NewTranscript(sessionID, "contract")
		transcript.Record(domain.Query{Input: "x"})

		require.NoError(t, store.Save(ctx, sessionID, transcript))
		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err)
		assert.Len(t, loaded.Queries, 1)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		err := store.Save(ctx, sessionID, domain.NewTranscript(sessionID, "contract"))
		require.NoError(t, err)

		err = store.Delete(ctx, sessionID)
		require.NoError(t, err, "Delete should not return error")

		_, err = store.Load(ctx, sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound, "Load after Delete should return ErrSessionNotFound")

		assert.NoError(t, store.Delete(ctx, sessionID), "Deleting twice is not an error")
	})

	t.Run("List", func(t *testing.T) {
		id1 := sessionID + "-1"
		id2 := sessionID + "-2"
		_ = store.Save(ctx, id1, domain.NewTranscript(id1, "contract"))
		_ = store.Save(ctx, id2, domain.NewTranscript(id2, "contract"))

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		sessions, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, sessions, id1)
		assert.Contains(t, sessions, id2)
	})
}
