package mcptools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"adept/internal/generation"
	"adept/internal/store"
)

// SummarizeProjectTool handles the summarize_project MCP tool.
type SummarizeProjectTool struct {
	orch  *generation.Orchestrator
	store *store.Store
}

// NewSummarizeProjectTool creates a SummarizeProjectTool.
func NewSummarizeProjectTool(orch *generation.Orchestrator, st *store.Store) *SummarizeProjectTool {
	return &SummarizeProjectTool{orch: orch, store: st}
}

// Definition returns the MCP tool definition for summarize_project.
func (t *SummarizeProjectTool) Definition() mcp.Tool {
	return mcp.NewTool("summarize_project",
		mcp.WithDescription("Summarize a project's progress, overdue work and risks from its tasks and subtasks."),
		mcp.WithString("project_id",
			mcp.Required(),
			mcp.Description("Project ID"),
		),
	)
}

// Handle processes the summarize_project tool call.
func (t *SummarizeProjectTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	projectID := req.GetString("project_id", "")
	if projectID == "" {
		return mcp.NewToolResultError("'project_id' is required"), nil
	}

	snapshot, err := t.store.Snapshot(ctx, projectID)
	if err != nil {
		return failure("summarize_project", err), nil
	}
	summary, err := t.orch.SummarizeProject(ctx, snapshot)
	if err != nil {
		return failure("summarize_project", err), nil
	}
	return mcp.NewToolResultText(summary), nil
}

// AnswerQuestionTool handles the answer_question MCP tool.
type AnswerQuestionTool struct {
	orch  *generation.Orchestrator
	store *store.Store
}

// NewAnswerQuestionTool creates an AnswerQuestionTool.
func NewAnswerQuestionTool(orch *generation.Orchestrator, st *store.Store) *AnswerQuestionTool {
	return &AnswerQuestionTool{orch: orch, store: st}
}

// Definition returns the MCP tool definition for answer_question.
func (t *AnswerQuestionTool) Definition() mcp.Tool {
	return mcp.NewTool("answer_question",
		mcp.WithDescription("Answer a free-form question about a project using its tasks and related documents."),
		mcp.WithString("project_id",
			mcp.Required(),
			mcp.Description("Project ID"),
		),
		mcp.WithString("question",
			mcp.Required(),
			mcp.Description("The question to answer"),
		),
	)
}

// Handle processes the answer_question tool call.
func (t *AnswerQuestionTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	projectID := req.GetString("project_id", "")
	if projectID == "" {
		return mcp.NewToolResultError("'project_id' is required"), nil
	}
	question := req.GetString("question", "")
	if question == "" {
		return mcp.NewToolResultError("'question' is required"), nil
	}

	snapshot, err := t.store.Snapshot(ctx, projectID)
	if err != nil {
		return failure("answer_question", err), nil
	}
	answer, err := t.orch.AnswerQuestion(ctx, snapshot, question)
	if err != nil {
		return failure("answer_question", err), nil
	}
	return mcp.NewToolResultText(answer), nil
}
