package runtime_test

import (
	"context"
	"sync"
	"testing"

	"github.com/aretw0/thicket/internal/runtime"
	"github.com/aretw0/thicket/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEngine_LifecycleHooks(t *testing.T) {
	var started []string
	var steps []int
	var verdicts []*domain.VerdictEvent

	hooks := domain.LifecycleHooks{
		OnQueryStart: func(ctx context.Context, e *domain.QueryEvent) {
			started = append(started, e.Input)
		},
		OnStep: func(ctx context.Context, e *domain.StepEvent) {
			steps = append(steps, e.Position)
		},
		OnVerdict: func(ctx context.Context, e *domain.VerdictEvent) {
			verdicts = append(verdicts, e)
		},
	}

	engine := runtime.NewEngine(epsilonThenB(), runtime.WithLifecycleHooks(hooks))
	ctx := context.Background()

	assert.True(t, engine.Accepts(ctx, "b"))
	assert.False(t, engine.Accepts(ctx, "abab"))

	assert.Equal(t, []string{"b", "abab"}, started)
	// "abab" empties the set after the second symbol.
	assert.Equal(t, []int{0, 0, 1}, steps)
	require.Len(t, verdicts, 2)
	assert.True(t, verdicts[0].Accepted)
	assert.True(t, verdicts[1].Halted)
	assert.Equal(t, 2, verdicts[1].Consumed)
}

func TestEngine_TraceMatchesRun(t *testing.T) {
	engine := runtime.NewEngine(branching())

	for _, in := range []string{"", "a", "ab", "abb", "ba"} {
		got := engine.Trace(context.Background(), in)
		want := runtime.Run(branching(), in)
		assert.Equal(t, want.Accepted, got.Accepted, "input %q", in)
		assert.Equal(t, want.Halted, got.Halted, "input %q", in)
		assert.Len(t, got.Steps, len(want.Steps), "input %q", in)
		assert.True(t, want.Final().Equal(got.Final()), "input %q", in)
	}
}

func TestEngine_ConcurrentQueries(t *testing.T) {
	engine := runtime.NewEngine(branching())
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make(chan string, 64)
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			in, want := "ab", true
			if i%2 == 1 {
				in, want = "aa", false
			}
			if engine.Accepts(ctx, in) != want {
				errs <- in
			}
		}(i)
	}
	wg.Wait()
	close(errs)

	for in := range errs {
		t.Errorf("wrong verdict for %q under concurrency", in)
	}
}
