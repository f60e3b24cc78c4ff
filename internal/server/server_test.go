package server

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"adept/internal/config"
	"adept/internal/generation"
	"adept/internal/llm"
	"adept/internal/store"
)

func newTestServerDeps(t *testing.T) (*generation.Orchestrator, *store.Store) {
	t.Helper()
	st, err := store.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	return generation.New(llm.NewSelector(config.LLMConfig{}), generation.WithSink(st)), st
}

func TestNewRegistersAllTools(t *testing.T) {
	orch, st := newTestServerDeps(t)
	s := New(orch, st)
	ctx := context.Background()

	s.HandleMessage(ctx, json.RawMessage(`{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"protocolVersion":"2024-11-05","capabilities":{},"clientInfo":{"name":"test","version":"1"}}}`))
	resp := s.HandleMessage(ctx, json.RawMessage(`{"jsonrpc":"2.0","id":2,"method":"tools/list"}`))

	data, err := json.Marshal(resp)
	require.NoError(t, err)
	body := string(data)

	for _, name := range []string{
		"create_project",
		"list_tasks",
		"generate_tasks",
		"generate_subtasks",
		"summarize_project",
		"answer_question",
		"ingest_document",
		"query_context",
	} {
		assert.Contains(t, body, `"name":"`+name+`"`)
	}
}

func TestToolCallThroughServer(t *testing.T) {
	orch, st := newTestServerDeps(t)
	s := New(orch, st)
	ctx := context.Background()

	s.HandleMessage(ctx, json.RawMessage(`{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"protocolVersion":"2024-11-05","capabilities":{},"clientInfo":{"name":"test","version":"1"}}}`))
	resp := s.HandleMessage(ctx, json.RawMessage(
		`{"jsonrpc":"2.0","id":3,"method":"tools/call","params":{"name":"create_project","arguments":{"name":"Docs"}}}`))
	data, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.Contains(t, string(data), `\"name\": \"Docs\"`)

	projects, err := st.ListProjects(ctx)
	require.NoError(t, err)
	require.Len(t, projects, 1)
	assert.Equal(t, "Docs", projects[0].Name)
}
