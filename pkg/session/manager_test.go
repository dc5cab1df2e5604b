package session_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/thicket/pkg/adapters/memory"
	"github.com/aretw0/thicket/pkg/adapters/redis"
	"github.com/aretw0/thicket/pkg/domain"
	"github.com/aretw0/thicket/pkg/ports"
	"github.com/aretw0/thicket/pkg/session"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// slowStore widens the read-modify-write window so lost updates show up
// when locking is missing.
type slowStore struct {
	ports.TranscriptStore
}

func (s slowStore) Load(ctx context.Context, id string) (*domain.Transcript, error) {
	time.Sleep(2 * time.Millisecond)
	return s.TranscriptStore.Load(ctx, id)
}

func TestManager_RecordCreatesTranscript(t *testing.T) {
	mgr := session.NewManager(memory.NewStore())
	ctx := context.Background()

	transcript, err := mgr.Record(ctx, "s1", "even-a", domain.Query{Input: "aa", Accepted: true})
	require.NoError(t, err)
	assert.Equal(t, "s1", transcript.SessionID)
	assert.Equal(t, "even-a", transcript.Automaton)
	require.Len(t, transcript.Queries, 1)
	assert.False(t, transcript.Queries[0].At.IsZero())

	_, err = mgr.Record(ctx, "s1", "even-a", domain.Query{Input: "a"})
	require.NoError(t, err)

	loaded, err := mgr.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Len(t, loaded.Queries, 2)
	assert.Equal(t, 1, loaded.Accepted())
}

func TestManager_LoadMissing(t *testing.T) {
	mgr := session.NewManager(memory.NewStore())
	_, err := mgr.Load(context.Background(), "nope")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestManager_ConcurrentRecords(t *testing.T) {
	mgr := session.NewManager(slowStore{memory.NewStore()})
	ctx := context.Background()

	const n = 25
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := mgr.Record(ctx, "shared", "x", domain.Query{Input: fmt.Sprint(i)})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	transcript, err := mgr.Load(ctx, "shared")
	require.NoError(t, err)
	assert.Len(t, transcript.Queries, n, "no update may be lost")
}

func TestManager_DistributedLock(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()
	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	defer client.Close()

	store := redis.NewFromClient(client)
	ctx := context.Background()

	// Two managers stand in for two replicas sharing Redis.
	a := session.NewManager(slowStore{store}, session.WithLocker(redis.NewLocker(client, "test:")))
	b := session.NewManager(slowStore{store}, session.WithLocker(redis.NewLocker(client, "test:")))

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		for _, mgr := range []*session.Manager{a, b} {
			wg.Add(1)
			go func(mgr *session.Manager) {
				defer wg.Done()
				_, err := mgr.Record(ctx, "shared", "x", domain.Query{Input: "a"})
				assert.NoError(t, err)
			}(mgr)
		}
	}
	wg.Wait()

	transcript, err := store.Load(ctx, "shared")
	require.NoError(t, err)
	assert.Len(t, transcript.Queries, 20)
	assert.False(t, mr.Exists("test:lock:shared"))
}

type failingLocker struct{}

func (failingLocker) Lock(context.Context, string, time.Duration) (ports.UnlockFunc, error) {
	return nil, errors.New("unavailable")
}

func TestManager_LockerFailure(t *testing.T) {
	mgr := session.NewManager(memory.NewStore(), session.WithLocker(failingLocker{}))
	_, err := mgr.Record(context.Background(), "s", "x", domain.Query{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "distributed lock")
}
