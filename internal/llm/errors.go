package llm

import (
	"context"
	"errors"
	"fmt"
)

// Operation names carried by BackendError.
const (
	OpGenerateTasks  = "generate_tasks"
	OpSummarize      = "summarize"
	OpAnswerQuestion = "answer_question"
)

// BackendError is the single adapter-level error. Err keeps the transport
// cause, so context.Canceled and extract parse kinds stay visible to errors.Is.
type BackendError struct {
	Backend string
	Op      string
	Message string
	Err     error
}

func (e *BackendError) Error() string {
	msg := fmt.Sprintf("%s backend %s: %s", e.Backend, e.Op, e.Message)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *BackendError) Unwrap() error { return e.Err }

// IsCancelled reports whether the failure was caused by the caller's context.
func (e *BackendError) IsCancelled() bool {
	return errors.Is(e.Err, context.Canceled) || errors.Is(e.Err, context.DeadlineExceeded)
}

func newBackendError(backend, op, message string, err error) *BackendError {
	return &BackendError{Backend: backend, Op: op, Message: message, Err: err}
}
