// Package llm wraps the supported model servers behind one Backend interface.
//
// Each variant speaks its own wire protocol but exposes the same three
// capabilities. Any transport or protocol fault is returned as a *BackendError
// naming the failing backend. A reply that arrives but cannot be turned into
// tasks is returned as the extractor's *extract.ParseError.
package llm

import (
	"context"

	"adept/internal/types"
)

// Backend names reported by Name.
const (
	NameLocal  = "local"
	NameOpenAI = "openai"
	NameGemini = "gemini"
	NameNull   = "null"
)

// Backend is the capability set every model adapter implements.
// Implementations are immutable after construction and safe for concurrent use.
type Backend interface {
	// Name identifies the variant in logs and errors.
	Name() string

	// GenerateTasks sends a rendered task prompt and returns the extracted tasks.
	GenerateTasks(ctx context.Context, prompt string) ([]types.GeneratedTask, error)

	// Summarize returns a Markdown status summary of the project.
	// grounding is the rendered retrieval context block, possibly empty.
	Summarize(ctx context.Context, snapshot types.ProjectSnapshot, grounding string) (string, error)

	// AnswerQuestion returns a Markdown answer about the project.
	AnswerQuestion(ctx context.Context, snapshot types.ProjectSnapshot, question, grounding string) (string, error)
}
