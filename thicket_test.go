package thicket_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/aretw0/thicket"
	"github.com/aretw0/thicket/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_FromFiles(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		file     string
		name     string
		accepted []string
		rejected []string
	}{
		{"ends-in-ab.json", "ends-in-ab", []string{"ab", "aab", "bab", "abab"}, []string{"", "a", "ba", "abb"}},
		{"epsilon.yaml", "epsilon", []string{"a", "b"}, []string{"", "ab", "ba"}},
		{"star.hcl", "star", []string{"*", "x"}, []string{"", "**", "a"}},
	}

	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			eng, err := thicket.New(filepath.Join("testdata", tt.file))
			require.NoError(t, err)
			assert.Equal(t, tt.name, eng.Name)

			for _, in := range tt.accepted {
				assert.True(t, eng.Accepts(ctx, in), "expected %q accepted", in)
			}
			for _, in := range tt.rejected {
				assert.False(t, eng.Accepts(ctx, in), "expected %q rejected", in)
			}
		})
	}
}

func TestNew_LegacyEpsilonMarker(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join("testdata", "legacy-star.json")

	literal, err := thicket.New(path)
	require.NoError(t, err)
	assert.False(t, literal.Accepts(ctx, "b"), "without the marker '*' is an ordinary symbol")
	assert.True(t, literal.Accepts(ctx, "*b"))

	legacy, err := thicket.New(path, thicket.WithEpsilonMarker("*"))
	require.NoError(t, err)
	assert.True(t, legacy.Accepts(ctx, "b"))
	assert.False(t, legacy.Accepts(ctx, "*b"))
}

func TestNew_WithDefinition(t *testing.T) {
	def := domain.NewDefinition("S", "S").
		AddTransition("S", domain.Consume('a'), "T").
		AddTransition("T", domain.Consume('a'), "S")

	eng, err := thicket.New("even-a", thicket.WithDefinition(def))
	require.NoError(t, err)
	assert.Equal(t, "even-a", eng.Name)
	assert.Same(t, def, eng.Definition())

	ctx := context.Background()
	assert.True(t, eng.Accepts(ctx, ""))
	assert.False(t, eng.Accepts(ctx, "a"))
	assert.True(t, eng.Accepts(ctx, "aaaa"))

	trace := eng.Trace(ctx, "aa")
	assert.True(t, trace.Accepted)
	assert.Len(t, trace.Steps, 2)
}

func TestNew_Errors(t *testing.T) {
	_, err := thicket.New("")
	assert.Error(t, err)

	_, err = thicket.New(filepath.Join("testdata", "missing.json"))
	assert.ErrorContains(t, err, "failed to load automaton")

	_, err = thicket.New("x", thicket.WithDefinition(nil))
	assert.Error(t, err)
}

func TestNew_Hooks(t *testing.T) {
	verdicts := 0
	eng, err := thicket.New(filepath.Join("testdata", "ends-in-ab.json"),
		thicket.WithLifecycleHooks(domain.LifecycleHooks{
			OnVerdict: func(context.Context, *domain.VerdictEvent) { verdicts++ },
		}),
	)
	require.NoError(t, err)

	eng.Accepts(context.Background(), "ab")
	eng.Trace(context.Background(), "b")
	assert.Equal(t, 2, verdicts)
}

func TestSimulate(t *testing.T) {
	def := domain.NewDefinition("S", "A").AddTransition("S", domain.Consume('a'), "A")
	assert.True(t, thicket.Simulate(def, "a"))
	assert.False(t, thicket.Simulate(def, "aa"))
}

func TestVersion(t *testing.T) {
	assert.NotEmpty(t, thicket.Version)
}
