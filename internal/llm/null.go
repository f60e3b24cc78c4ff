package llm

import (
	"context"

	"adept/internal/types"
)

// Placeholder replies of the null backend.
const (
	NullSummary = "_No model backend is configured; summary unavailable._"
	NullAnswer  = "_No model backend is configured; cannot answer._"
)

// NullBackend is the fallback when no backend is configured. It makes no
// network calls and always succeeds.
type NullBackend struct{}

// Name returns "null".
func (NullBackend) Name() string { return NameNull }

// GenerateTasks returns an empty, non-nil list.
func (NullBackend) GenerateTasks(context.Context, string) ([]types.GeneratedTask, error) {
	return []types.GeneratedTask{}, nil
}

// Summarize returns NullSummary.
func (NullBackend) Summarize(context.Context, types.ProjectSnapshot, string) (string, error) {
	return NullSummary, nil
}

// AnswerQuestion returns NullAnswer.
func (NullBackend) AnswerQuestion(context.Context, types.ProjectSnapshot, string, string) (string, error) {
	return NullAnswer, nil
}
