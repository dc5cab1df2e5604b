package memory_test

import (
	"context"
	"testing"

	"github.com/aretw0/thicket/pkg/adapters/memory"
	"github.com/aretw0/thicket/pkg/domain"
	"github.com/aretw0/thicket/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_Contract(t *testing.T) {
	ports.RunTranscriptStoreContract(t, memory.NewStore())
}

func TestMemoryStore_Isolation(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()

	tr := domain.NewTranscript("s", "demo")
	tr.Record(domain.Query{Input: "a"})
	require.NoError(t, store.Save(ctx, "s", tr))

	tr.Record(domain.Query{Input: "b"})
	loaded, err := store.Load(ctx, "s")
	require.NoError(t, err)
	assert.Len(t, loaded.Queries, 1, "later edits must not leak into the store")

	loaded.Record(domain.Query{Input: "c"})
	again, err := store.Load(ctx, "s")
	require.NoError(t, err)
	assert.Len(t, again.Queries, 1, "edits on a loaded copy must not leak either")
}

func TestLoader(t *testing.T) {
	def := domain.NewDefinition("S", "S")
	got, err := memory.NewLoader(def).Load(context.Background())
	require.NoError(t, err)
	assert.Same(t, def, got)

	_, err = memory.NewLoader(nil).Load(context.Background())
	assert.Error(t, err)

	_, err = memory.NewLoader(&domain.Definition{}).Load(context.Background())
	assert.Error(t, err)
}
