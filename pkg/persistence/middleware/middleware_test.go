package middleware_test

import (
	"context"
	"crypto/rand"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/aretw0/thicket/pkg/adapters/memory"
	"github.com/aretw0/thicket/pkg/domain"
	"github.com/aretw0/thicket/pkg/persistence/middleware"
	"github.com/aretw0/thicket/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func generateKey(t *testing.T) []byte {
	t.Helper()
	k := make([]byte, middleware.KeySize)
	_, err := io.ReadFull(rand.Reader, k)
	require.NoError(t, err)
	return k
}

func encrypted(t *testing.T, next ports.TranscriptStore, config middleware.EncryptionConfig) ports.TranscriptStore {
	t.Helper()
	mw, err := middleware.NewEncryptionMiddleware(config)
	require.NoError(t, err)
	return mw(next)
}

func TestEncryptionMiddleware_Contract(t *testing.T) {
	ports.RunTranscriptStoreContract(t, encrypted(t, memory.NewStore(), middleware.EncryptionConfig{ActiveKey: generateKey(t)}))
}

func TestEncryptionMiddleware_HidesQueries(t *testing.T) {
	underlying := memory.NewStore()
	secure := encrypted(t, underlying, middleware.EncryptionConfig{ActiveKey: generateKey(t)})
	ctx := context.Background()

	transcript := domain.NewTranscript("s1", "ends-in-ab")
	transcript.Record(domain.Query{Input: "my-secret-input", Accepted: true})
	require.NoError(t, secure.Save(ctx, "s1", transcript))

	stored, err := underlying.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Empty(t, stored.Queries)
	assert.NotEmpty(t, stored.Sealed)
	assert.NotContains(t, string(stored.Sealed), "my-secret-input")
	assert.Equal(t, "ends-in-ab", stored.Automaton)

	loaded, err := secure.Load(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, loaded.Queries, 1)
	assert.Equal(t, "my-secret-input", loaded.Queries[0].Input)
	assert.Empty(t, loaded.Sealed)
}

func TestEncryptionMiddleware_KeyRotation(t *testing.T) {
	underlying := memory.NewStore()
	oldKey, newKey := generateKey(t), generateKey(t)
	ctx := context.Background()

	storeOld := encrypted(t, underlying, middleware.EncryptionConfig{ActiveKey: oldKey})
	transcript := domain.NewTranscript("rotation", "demo")
	transcript.Record(domain.Query{Input: "sealed-with-old-key"})
	require.NoError(t, storeOld.Save(ctx, "rotation", transcript))

	storeNew := encrypted(t, underlying, middleware.EncryptionConfig{
		ActiveKey:    newKey,
		FallbackKeys: [][]byte{oldKey},
	})
	loaded, err := storeNew.Load(ctx, "rotation")
	require.NoError(t, err)
	assert.Equal(t, "sealed-with-old-key", loaded.Queries[0].Input)

	loaded.Record(domain.Query{Input: "sealed-with-new-key"})
	require.NoError(t, storeNew.Save(ctx, "rotation", loaded))

	_, err = storeOld.Load(ctx, "rotation")
	assert.Error(t, err, "old key alone must not open a transcript sealed with the new key")
}

func TestEncryptionMiddleware_RejectsPlainTranscripts(t *testing.T) {
	underlying := memory.NewStore()
	ctx := context.Background()
	require.NoError(t, underlying.Save(ctx, "plain", domain.NewTranscript("plain", "demo")))

	secure := encrypted(t, underlying, middleware.EncryptionConfig{ActiveKey: generateKey(t)})
	_, err := secure.Load(ctx, "plain")
	assert.ErrorContains(t, err, "sealed envelope")
}

func TestEncryptionMiddleware_InvalidKey(t *testing.T) {
	_, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: []byte("short-key")})
	assert.ErrorIs(t, err, middleware.ErrInvalidKey)

	_, err = middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{
		ActiveKey:    generateKey(t),
		FallbackKeys: [][]byte{[]byte("short")},
	})
	assert.ErrorIs(t, err, middleware.ErrInvalidKey)
}

func TestRetentionMiddleware(t *testing.T) {
	underlying := memory.NewStore()
	store := middleware.NewRetentionMiddleware(3)(underlying)
	ctx := context.Background()

	transcript := domain.NewTranscript("s1", "demo")
	for i := 0; i < 5; i++ {
		transcript.Record(domain.Query{Input: fmt.Sprint(i)})
	}
	require.NoError(t, store.Save(ctx, "s1", transcript))
	assert.Len(t, transcript.Queries, 5, "caller's transcript must not be trimmed")

	loaded, err := store.Load(ctx, "s1")
	require.NoError(t, err)
	var inputs []string
	for _, q := range loaded.Queries {
		inputs = append(inputs, q.Input)
	}
	assert.Equal(t, "2,3,4", strings.Join(inputs, ","))
}

func TestRetentionMiddleware_Disabled(t *testing.T) {
	underlying := memory.NewStore()
	assert.Same(t, ports.TranscriptStore(underlying), middleware.NewRetentionMiddleware(0)(underlying))
}

func TestChain(t *testing.T) {
	underlying := memory.NewStore()
	store := middleware.Chain(underlying,
		middleware.NewRetentionMiddleware(1),
		func(next ports.TranscriptStore) ports.TranscriptStore {
			mw, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: generateKey(t)})
			require.NoError(t, err)
			return mw(next)
		},
	)
	ctx := context.Background()

	transcript := domain.NewTranscript("s1", "demo")
	transcript.Record(domain.Query{Input: "a"})
	transcript.Record(domain.Query{Input: "b"})
	require.NoError(t, store.Save(ctx, "s1", transcript))

	loaded, err := store.Load(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, loaded.Queries, 1)
	assert.Equal(t, "b", loaded.Queries[0].Input)

	raw, err := underlying.Load(ctx, "s1")
	require.NoError(t, err)
	assert.NotEmpty(t, raw.Sealed)
}
