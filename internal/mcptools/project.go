package mcptools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"adept/internal/logging"
	"adept/internal/store"
)

// CreateProjectTool handles the create_project MCP tool.
type CreateProjectTool struct {
	store *store.Store
}

// NewCreateProjectTool creates a CreateProjectTool.
func NewCreateProjectTool(st *store.Store) *CreateProjectTool {
	return &CreateProjectTool{store: st}
}

// Definition returns the MCP tool definition for create_project.
func (t *CreateProjectTool) Definition() mcp.Tool {
	return mcp.NewTool("create_project",
		mcp.WithDescription("Create a project. Generated tasks are always bound to a project."),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Project name"),
		),
		mcp.WithString("description",
			mcp.Description("What the project is about; used to ground summaries"),
		),
	)
}

// Handle processes the create_project tool call.
func (t *CreateProjectTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name := req.GetString("name", "")
	if strings.TrimSpace(name) == "" {
		return mcp.NewToolResultError("'name' is required"), nil
	}

	project, err := t.store.CreateProject(ctx, name, req.GetString("description", ""))
	if err != nil {
		return failure("create_project", err), nil
	}

	logging.API("created project %s", project.ID)
	return jsonResult(project)
}

// ListTasksTool handles the list_tasks MCP tool.
type ListTasksTool struct {
	store *store.Store
}

// NewListTasksTool creates a ListTasksTool.
func NewListTasksTool(st *store.Store) *ListTasksTool {
	return &ListTasksTool{store: st}
}

// Definition returns the MCP tool definition for list_tasks.
func (t *ListTasksTool) Definition() mcp.Tool {
	return mcp.NewTool("list_tasks",
		mcp.WithDescription("List the tasks of a project, optionally filtered by a case-insensitive search over title and description."),
		mcp.WithString("project_id",
			mcp.Required(),
			mcp.Description("Project ID"),
		),
		mcp.WithString("search",
			mcp.Description("Text to look for in title or description"),
		),
	)
}

// Handle processes the list_tasks tool call.
func (t *ListTasksTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	projectID := req.GetString("project_id", "")
	if projectID == "" {
		return mcp.NewToolResultError("'project_id' is required"), nil
	}
	if _, err := t.store.GetProject(ctx, projectID); err != nil {
		return failure("list_tasks", err), nil
	}

	tasks, err := t.store.ListTasks(ctx, projectID, req.GetString("search", ""))
	if err != nil {
		return failure("list_tasks", err), nil
	}
	if len(tasks) == 0 {
		return mcp.NewToolResultText("No tasks found."), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d tasks:\n\n", len(tasks))
	for i, task := range tasks {
		fmt.Fprintf(&b, "%d. [%s] %s (id: %s)\n", i+1, task.Status, task.Title, task.ID)
		if task.Description != "" {
			fmt.Fprintf(&b, "   %s\n", task.Description)
		}
		if task.AssignedUserID != "" {
			fmt.Fprintf(&b, "   assigned to: %s\n", task.AssignedUserID)
		}
		if task.DueDate != nil {
			fmt.Fprintf(&b, "   due: %s\n", task.DueDate.Format("2006-01-02"))
		}
	}
	return mcp.NewToolResultText(b.String()), nil
}
