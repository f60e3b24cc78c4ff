// Package mcptools provides MCP tool handlers for the adept generation core.
//
// Every tool follows the same shape:
// - a struct holding its dependencies, injected via constructor
// - Definition() returns the mcp.Tool schema
// - Handle() processes the request and returns a result
//
// Failures are reported as tool-level errors (IsError results), never as
// protocol errors, so the calling agent sees the message.
package mcptools

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"adept/internal/generation"
	"adept/internal/logging"
)

// intArg extracts an integer argument from a tool request, returning
// defaultVal if the key is missing or not a number (JSON numbers are float64).
func intArg(req mcp.CallToolRequest, key string, defaultVal int) int {
	v, ok := req.GetArguments()[key].(float64)
	if !ok {
		return defaultVal
	}
	return int(v)
}

// jsonResult renders v as an indented JSON text result.
func jsonResult(v interface{}) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encoding result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

// failure turns an operation error into a tool error. Backend and parse
// failures carry the same prefixes API clients already match on.
func failure(tool string, err error) *mcp.CallToolResult {
	logging.APIError("%s failed: %v", tool, err)

	var gerr *generation.Error
	if errors.As(err, &gerr) {
		switch gerr.Kind {
		case generation.KindLLMBackend:
			return mcp.NewToolResultError("LLM API error: " + gerr.Err.Error())
		case generation.KindResponseParse:
			return mcp.NewToolResultError("Failed to parse LLM response: " + gerr.Err.Error())
		}
	}
	return mcp.NewToolResultError(err.Error())
}
