package mcptools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"adept/internal/generation"
)

// IngestDocumentTool handles the ingest_document MCP tool.
type IngestDocumentTool struct {
	orch *generation.Orchestrator
}

// NewIngestDocumentTool creates an IngestDocumentTool.
func NewIngestDocumentTool(orch *generation.Orchestrator) *IngestDocumentTool {
	return &IngestDocumentTool{orch: orch}
}

// Definition returns the MCP tool definition for ingest_document.
func (t *IngestDocumentTool) Definition() mcp.Tool {
	return mcp.NewTool("ingest_document",
		mcp.WithDescription(
			"Add a document to the retrieval index. Indexed documents ground later task generation, "+
				"summaries and answers. Re-ingesting the same id replaces the document.",
		),
		mcp.WithString("text",
			mcp.Required(),
			mcp.Description("Document text"),
		),
		mcp.WithString("metadata",
			mcp.Description(`JSON object of scalar values, e.g. {"id":"brief-1","source":"wiki"}`),
		),
	)
}

// Handle processes the ingest_document tool call.
func (t *IngestDocumentTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text := req.GetString("text", "")
	if strings.TrimSpace(text) == "" {
		return mcp.NewToolResultError("'text' is required"), nil
	}

	var metadata map[string]interface{}
	if raw := req.GetString("metadata", ""); raw != "" {
		if err := json.Unmarshal([]byte(raw), &metadata); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("'metadata' must be a JSON object: %v", err)), nil
		}
	}

	if err := t.orch.IngestDocument(ctx, text, metadata); err != nil {
		return failure("ingest_document", err), nil
	}
	return mcp.NewToolResultText("Document ingested."), nil
}

// QueryContextTool handles the query_context MCP tool.
type QueryContextTool struct {
	orch *generation.Orchestrator
}

// NewQueryContextTool creates a QueryContextTool.
func NewQueryContextTool(orch *generation.Orchestrator) *QueryContextTool {
	return &QueryContextTool{orch: orch}
}

// Definition returns the MCP tool definition for query_context.
func (t *QueryContextTool) Definition() mcp.Tool {
	return mcp.NewTool("query_context",
		mcp.WithDescription("Return the indexed documents most similar to a text, best first."),
		mcp.WithString("text",
			mcp.Required(),
			mcp.Description("Query text"),
		),
		mcp.WithNumber("top_k",
			mcp.Description("Max documents (default: 5)"),
		),
	)
}

// Handle processes the query_context tool call.
func (t *QueryContextTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text := req.GetString("text", "")
	if strings.TrimSpace(text) == "" {
		return mcp.NewToolResultError("'text' is required"), nil
	}

	docs, err := t.orch.QueryContext(ctx, text, intArg(req, "top_k", 0))
	if err != nil {
		return failure("query_context", err), nil
	}
	if len(docs) == 0 {
		return mcp.NewToolResultText("No documents found."), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d documents:\n\n", len(docs))
	for i, d := range docs {
		fmt.Fprintf(&b, "--- %d. %s (score %.3f) ---\n%s\n\n", i+1, d.Source(), d.Score, d.Text)
	}
	return mcp.NewToolResultText(strings.TrimRight(b.String(), "\n")), nil
}
