package runner_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/thicket/internal/runtime"
	"github.com/aretw0/thicket/pkg/adapters/memory"
	"github.com/aretw0/thicket/pkg/domain"
	"github.com/aretw0/thicket/pkg/runner"
	"github.com/aretw0/thicket/pkg/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// endsInAB accepts strings over {a,b} that end with "ab".
func endsInAB() *runtime.Engine {
	def := domain.NewDefinition("q0", "q2").
		AddTransition("q0", domain.Consume('a'), "q0", "q1").
		AddTransition("q0", domain.Consume('b'), "q0").
		AddTransition("q1", domain.Consume('b'), "q2")
	def.Name = "ends-in-ab"
	return runtime.NewEngine(def)
}

func TestRunner_TextLoop(t *testing.T) {
	in := strings.NewReader("ab\nba\nexit\nab\n")
	var out bytes.Buffer

	r := runner.NewRunner(
		runner.WithEngine(endsInAB()),
		runner.WithInputHandler(runner.NewTextHandler(in, &out)),
	)
	require.NoError(t, r.Run(context.Background()))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	assert.Equal(t, []string{"> accepted", "> rejected", ">"}, lines, "nothing after exit is evaluated")
}

func TestRunner_QuitAndEOF(t *testing.T) {
	for _, input := range []string{"aab\nquit\n", "aab\n", "aab"} {
		var out bytes.Buffer
		r := runner.NewRunner(
			runner.WithEngine(endsInAB()),
			runner.WithInputHandler(runner.NewTextHandler(strings.NewReader(input), &out, runner.WithPrompt(""))),
		)
		require.NoError(t, r.Run(context.Background()))
		assert.Equal(t, "accepted\n", out.String(), "input %q", input)
	}
}

func TestRunner_EmptyLineIsEmptyInput(t *testing.T) {
	def := domain.NewDefinition("S", "S")
	var out bytes.Buffer
	r := runner.NewRunner(
		runner.WithEngine(runtime.NewEngine(def)),
		runner.WithInputHandler(runner.NewTextHandler(strings.NewReader("\na\n"), &out, runner.WithPrompt(""))),
	)
	require.NoError(t, r.Run(context.Background()))
	assert.Equal(t, "accepted\nrejected\n", out.String())
}

func TestRunner_SanitizerRejectionContinues(t *testing.T) {
	t.Setenv(runner.EnvMaxInputSize, "4")
	var out bytes.Buffer
	r := runner.NewRunner(
		runner.WithEngine(endsInAB()),
		runner.WithInputHandler(runner.NewTextHandler(strings.NewReader("aaaaab\nab\n"), &out, runner.WithPrompt(""))),
	)
	require.NoError(t, r.Run(context.Background()))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "exceeds maximum")
	assert.Equal(t, "accepted", lines[1])
}

func TestRunner_ControlCharactersAreRejectedNotRewritten(t *testing.T) {
	def := domain.NewDefinition("S", "F").
		AddTransition("S", domain.Consume('a'), "M").
		AddTransition("M", domain.Consume('b'), "F")
	require.False(t, runtime.Simulate(def, "a\x01b"))

	in := strings.NewReader("{\"input\":\"a\\u0001b\"}\n{\"input\":\"ab\"}\n")
	var out bytes.Buffer
	r := runner.NewRunner(
		runner.WithEngine(runtime.NewEngine(def)),
		runner.WithInputHandler(runner.NewJSONHandler(in, &out)),
	)
	require.NoError(t, r.Run(context.Background()))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "control characters")
	assert.NotContains(t, lines[0], "accepted")

	var v runner.Verdict
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &v))
	assert.Equal(t, runner.Verdict{Input: "ab", Accepted: true}, v)
}

func TestRunner_JSONMode(t *testing.T) {
	in := strings.NewReader("{\"input\":\"ab\"}\n\"b\"\naab\n{\"input\":\"\"}\n")
	var out bytes.Buffer

	r := runner.NewRunner(
		runner.WithEngine(endsInAB()),
		runner.WithInputHandler(runner.NewJSONHandler(in, &out)),
	)
	require.NoError(t, r.Run(context.Background()))

	dec := json.NewDecoder(&out)
	var got []runner.Verdict
	for {
		var v runner.Verdict
		if err := dec.Decode(&v); err == io.EOF {
			break
		} else {
			require.NoError(t, err)
		}
		got = append(got, v)
	}
	assert.Equal(t, []runner.Verdict{
		{Input: "ab", Accepted: true},
		{Input: "b", Accepted: false},
		{Input: "aab", Accepted: true},
		{Input: "", Accepted: false},
	}, got)
}

func TestRunner_JSONTrace(t *testing.T) {
	var out bytes.Buffer
	r := runner.NewRunner(
		runner.WithEngine(endsInAB()),
		runner.WithTrace(true),
		runner.WithInputHandler(runner.NewJSONHandler(strings.NewReader("ab\n"), &out)),
	)
	require.NoError(t, r.Run(context.Background()))

	var v runner.Verdict
	require.NoError(t, json.Unmarshal(out.Bytes(), &v))
	require.NotNil(t, v.Trace)
	assert.True(t, v.Accepted)
	assert.Len(t, v.Trace.Steps, 2)
	assert.True(t, v.Trace.Final().Has("q2"))
}

func TestRunner_TextTrace(t *testing.T) {
	var out bytes.Buffer
	r := runner.NewRunner(
		runner.WithEngine(endsInAB()),
		runner.WithTrace(true),
		runner.WithInputHandler(runner.NewTextHandler(strings.NewReader("ab\n"), &out, runner.WithPrompt(""))),
	)
	require.NoError(t, r.Run(context.Background()))

	assert.Equal(t, "accepted\n"+
		"  start   {q0}\n"+
		"  'a'     {q0, q1}\n"+
		"  'b'     {q0, q2}\n", out.String())
}

func TestRunner_RecordsSession(t *testing.T) {
	mgr := session.NewManager(memory.NewStore())
	r := runner.NewRunner(
		runner.WithEngine(endsInAB()),
		runner.WithSessions(mgr),
		runner.WithSessionID("cli"),
		runner.WithInputHandler(runner.NewTextHandler(strings.NewReader("ab\nb\n"), io.Discard)),
	)
	require.NoError(t, r.Run(context.Background()))

	transcript, err := mgr.Load(context.Background(), "cli")
	require.NoError(t, err)
	assert.Equal(t, "ends-in-ab", transcript.Automaton)
	require.Len(t, transcript.Queries, 2)
	assert.Equal(t, 1, transcript.Accepted())
}

func TestRunner_ContextCancelStopsCleanly(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()

	ctx, cancel := context.WithCancel(context.Background())
	r := runner.NewRunner(
		runner.WithEngine(endsInAB()),
		runner.WithInputHandler(runner.NewTextHandler(pr, io.Discard)),
	)

	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("runner did not stop after cancellation")
	}
}

func TestRunner_NoEngine(t *testing.T) {
	r := runner.NewRunner()
	assert.ErrorIs(t, r.Run(context.Background()), runner.ErrNoEngine)
}
