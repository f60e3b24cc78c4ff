// Package server wires the MCP tools to the generation core and creates the
// server instance. No business logic lives here, only wiring.
package server

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"adept/internal/generation"
	"adept/internal/logging"
	"adept/internal/mcptools"
	"adept/internal/store"
)

// Version is set at build time via ldflags.
var Version = "dev"

// toolHandler is what every mcptools tool provides.
type toolHandler interface {
	Definition() mcp.Tool
	Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error)
}

// New creates the MCP server with every tool registered.
func New(orch *generation.Orchestrator, st *store.Store) *server.MCPServer {
	s := server.NewMCPServer(
		"adept",
		Version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
		server.WithInstructions(serverInstructions()),
	)
	Register(s, orch, st)
	return s
}

// Register adds all adept tools to s.
func Register(s *server.MCPServer, orch *generation.Orchestrator, st *store.Store) {
	tools := []toolHandler{
		mcptools.NewCreateProjectTool(st),
		mcptools.NewListTasksTool(st),
		mcptools.NewGenerateTasksTool(orch, st),
		mcptools.NewGenerateSubtasksTool(orch, st),
		mcptools.NewSummarizeProjectTool(orch, st),
		mcptools.NewAnswerQuestionTool(orch, st),
		mcptools.NewIngestDocumentTool(orch),
		mcptools.NewQueryContextTool(orch),
	}
	for _, t := range tools {
		s.AddTool(t.Definition(), t.Handle)
	}
	logging.API("registered %d MCP tools", len(tools))
}

func serverInstructions() string {
	return `adept turns objectives into project tasks with a language model.

Typical flow:
1. create_project (or reuse a project id)
2. ingest_document for specs, notes or requirements that should ground generation
3. generate_tasks with the objective; generate_subtasks for any task that needs breaking down
4. summarize_project or answer_question to review progress

Generated tasks and subtasks are saved and indexed automatically, so later
generations see earlier ones as context.`
}
