package mcptools

import (
	"context"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"adept/internal/generation"
	"adept/internal/logging"
	"adept/internal/store"
)

// GenerateTasksTool handles the generate_tasks MCP tool.
type GenerateTasksTool struct {
	orch  *generation.Orchestrator
	store *store.Store
}

// NewGenerateTasksTool creates a GenerateTasksTool. Generated tasks are
// persisted by the orchestrator's sink and indexed for later retrieval.
func NewGenerateTasksTool(orch *generation.Orchestrator, st *store.Store) *GenerateTasksTool {
	return &GenerateTasksTool{orch: orch, store: st}
}

// Definition returns the MCP tool definition for generate_tasks.
func (t *GenerateTasksTool) Definition() mcp.Tool {
	return mcp.NewTool("generate_tasks",
		mcp.WithDescription(
			"Break an objective into concrete tasks using the configured language model. "+
				"Tasks are saved to the project and returned as JSON.",
		),
		mcp.WithString("project_id",
			mcp.Required(),
			mcp.Description("Project the tasks belong to"),
		),
		mcp.WithString("objective",
			mcp.Required(),
			mcp.Description("What the tasks should accomplish"),
		),
		mcp.WithString("due_date",
			mcp.Description("Due date for every generated task (RFC 3339)"),
		),
		mcp.WithString("assignee_id",
			mcp.Description("User to assign every generated task to"),
		),
	)
}

// Handle processes the generate_tasks tool call.
func (t *GenerateTasksTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	projectID := req.GetString("project_id", "")
	if projectID == "" {
		return mcp.NewToolResultError("'project_id' is required"), nil
	}
	objective := req.GetString("objective", "")
	if objective == "" {
		return mcp.NewToolResultError("'objective' is required"), nil
	}

	var due *time.Time
	if raw := req.GetString("due_date", ""); raw != "" {
		d, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("'due_date' must be RFC 3339: %v", err)), nil
		}
		due = &d
	}

	if _, err := t.store.GetProject(ctx, projectID); err != nil {
		return failure("generate_tasks", err), nil
	}

	tasks, err := t.orch.GenerateTasks(ctx, generation.TaskRequest{
		ProjectID:  projectID,
		Objective:  objective,
		AssigneeID: req.GetString("assignee_id", ""),
		DueDate:    due,
	})
	if err != nil {
		return failure("generate_tasks", err), nil
	}

	t.orch.IngestTasks(ctx, tasks)
	logging.API("generate_tasks: %d tasks for project %s", len(tasks), projectID)
	return jsonResult(tasks)
}

// GenerateSubtasksTool handles the generate_subtasks MCP tool.
type GenerateSubtasksTool struct {
	orch  *generation.Orchestrator
	store *store.Store
}

// NewGenerateSubtasksTool creates a GenerateSubtasksTool.
func NewGenerateSubtasksTool(orch *generation.Orchestrator, st *store.Store) *GenerateSubtasksTool {
	return &GenerateSubtasksTool{orch: orch, store: st}
}

// Definition returns the MCP tool definition for generate_subtasks.
func (t *GenerateSubtasksTool) Definition() mcp.Tool {
	return mcp.NewTool("generate_subtasks",
		mcp.WithDescription("Break an existing task into subtasks using the configured language model."),
		mcp.WithString("project_id",
			mcp.Required(),
			mcp.Description("Project the parent task belongs to"),
		),
		mcp.WithString("task_id",
			mcp.Required(),
			mcp.Description("Parent task ID"),
		),
		mcp.WithString("objective",
			mcp.Required(),
			mcp.Description("What the subtasks should accomplish"),
		),
	)
}

// Handle processes the generate_subtasks tool call.
func (t *GenerateSubtasksTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	projectID := req.GetString("project_id", "")
	taskID := req.GetString("task_id", "")
	objective := req.GetString("objective", "")
	switch {
	case projectID == "":
		return mcp.NewToolResultError("'project_id' is required"), nil
	case taskID == "":
		return mcp.NewToolResultError("'task_id' is required"), nil
	case objective == "":
		return mcp.NewToolResultError("'objective' is required"), nil
	}

	parent, err := t.store.GetTask(ctx, projectID, taskID)
	if err != nil {
		return failure("generate_subtasks", err), nil
	}

	subtasks, err := t.orch.GenerateSubtasks(ctx, generation.SubtaskRequest{
		ProjectID: projectID,
		Parent: generation.ParentTask{
			ID:          parent.ID,
			Title:       parent.Title,
			Description: parent.Description,
		},
		Objective: objective,
	})
	if err != nil {
		return failure("generate_subtasks", err), nil
	}

	t.orch.IngestSubtasks(ctx, projectID, subtasks)
	logging.API("generate_subtasks: %d subtasks for task %s", len(subtasks), taskID)
	return jsonResult(subtasks)
}
