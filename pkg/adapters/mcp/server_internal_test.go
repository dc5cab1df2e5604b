package mcp

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/aretw0/thicket/internal/runtime"
	"github.com/aretw0/thicket/pkg/adapters/memory"
	"github.com/aretw0/thicket/pkg/domain"
	"github.com/aretw0/thicket/pkg/session"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(opts ...Option) *Server {
	def := domain.NewDefinition("S", "A").
		AddTransition("S", domain.Consume('a'), "A").
		AddTransition("S", domain.Epsilon, "B").
		AddTransition("B", domain.Consume('b'), "A")
	def.Name = "a-or-b"
	return NewServer(runtime.NewEngine(def), opts...)
}

func TestHandleSimulate(t *testing.T) {
	s := newTestServer()
	ctx := context.Background()

	for input, want := range map[string]bool{"a": true, "b": true, "ab": false, "": false} {
		res, err := s.handleSimulate(ctx, mcp.CallToolRequest{}, map[string]interface{}{"input": input})
		require.NoError(t, err)
		assert.Equal(t, want, res.Accepted, "input %q", input)
		assert.Empty(t, res.SessionID)
	}

	_, err := s.handleSimulate(ctx, mcp.CallToolRequest{}, map[string]interface{}{})
	assert.Error(t, err)

	_, err = s.handleSimulate(ctx, mcp.CallToolRequest{}, map[string]interface{}{"input": "a", "session_id": "s"})
	assert.ErrorContains(t, err, "sessions are disabled")
}

func TestHandleSimulate_RecordsSession(t *testing.T) {
	mgr := session.NewManager(memory.NewStore())
	s := newTestServer(WithSessions(mgr))
	ctx := context.Background()

	res, err := s.handleSimulate(ctx, mcp.CallToolRequest{}, map[string]interface{}{"input": "b", "session_id": "agent"})
	require.NoError(t, err)
	assert.Equal(t, "agent", res.SessionID)

	transcript, err := mgr.Load(ctx, "agent")
	require.NoError(t, err)
	assert.Equal(t, "a-or-b", transcript.Automaton)
	require.Len(t, transcript.Queries, 1)
	assert.True(t, transcript.Queries[0].Accepted)
}

func TestHandleSimulate_RejectsOversizedInput(t *testing.T) {
	s := newTestServer()
	_, err := s.handleSimulate(context.Background(), mcp.CallToolRequest{}, map[string]interface{}{
		"input": strings.Repeat("a", 5000),
	})
	assert.ErrorContains(t, err, "input rejected")
}

func TestHandleTrace(t *testing.T) {
	s := newTestServer()
	res, err := s.handleTrace(context.Background(), mcp.CallToolRequest{}, map[string]interface{}{"input": "bab"})
	require.NoError(t, err)

	assert.False(t, res.Accepted)
	assert.True(t, res.Halted)
	assert.Equal(t, []string{"B", "S"}, res.Initial)
	require.Len(t, res.Steps, 2)
	assert.Equal(t, TraceStepResult{Symbol: "b", States: []string{"A"}}, res.Steps[0])
	assert.Equal(t, TraceStepResult{Symbol: "a", States: []string{}}, res.Steps[1])
}

func TestReadAutomaton(t *testing.T) {
	s := newTestServer()
	contents, err := s.readAutomaton(context.Background(), mcp.ReadResourceRequest{})
	require.NoError(t, err)
	require.Len(t, contents, 1)

	text, ok := contents[0].(mcp.TextResourceContents)
	require.True(t, ok)
	assert.Equal(t, AutomatonURI, text.URI)

	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(text.Text), &doc))
	assert.Equal(t, "S", doc["start_state"])
	assert.Equal(t, map[string]any{"a": []any{"A"}, "": []any{"B"}}, doc["transitions"].(map[string]any)["S"])
}

func TestToolsAreListed(t *testing.T) {
	s := newTestServer()
	resp := s.MCPServer().HandleMessage(context.Background(), []byte(`{"jsonrpc":"2.0","id":1,"method":"tools/list"}`))

	raw, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"simulate"`)
	assert.Contains(t, string(raw), `"trace"`)
}
