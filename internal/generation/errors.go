package generation

import (
	"context"
	"errors"
	"fmt"

	"adept/internal/extract"
)

// Kind classifies a failed request.
type Kind string

const (
	KindLLMBackend    Kind = "llm_backend_error"
	KindResponseParse Kind = "response_parse_error"
	KindCancelled     Kind = "cancelled"
	KindRetrieval     Kind = "retrieval_error"
	KindPersistence   Kind = "persistence_error"
)

// Sentinels matching each Kind through errors.Is.
var (
	ErrLLMBackend    = errors.New("LLM API error")
	ErrResponseParse = errors.New("failed to parse LLM response")
	ErrCancelled     = errors.New("request cancelled")
	ErrRetrieval     = errors.New("retrieval error")
	ErrPersistence   = errors.New("failed to persist generated records")

	// ErrInvalidRequest is returned before any backend call for unusable input.
	ErrInvalidRequest = errors.New("invalid request")
)

var kindSentinels = map[Kind]error{
	KindLLMBackend:    ErrLLMBackend,
	KindResponseParse: ErrResponseParse,
	KindCancelled:     ErrCancelled,
	KindRetrieval:     ErrRetrieval,
	KindPersistence:   ErrPersistence,
}

// Error is the failure of one orchestrated operation. The cause stays
// reachable, so errors.Is(err, extract.ErrMalformedJSON) works on a
// response_parse_error caused by malformed JSON.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v", kindSentinels[e.Kind], e.Err)
}

func (e *Error) Unwrap() []error {
	return []error{kindSentinels[e.Kind], e.Err}
}

// KindOf returns the Kind of err, or "" when err is not an *Error.
func KindOf(err error) Kind {
	var gerr *Error
	if errors.As(err, &gerr) {
		return gerr.Kind
	}
	return ""
}

// classify maps a backend or extractor failure to its reportable kind.
// Anything unrecognized is treated as a backend failure.
func classify(ctx context.Context, op string, err error) *Error {
	var perr *extract.ParseError
	switch {
	case ctx.Err() != nil:
		return &Error{Kind: KindCancelled, Op: op, Err: err}
	case errors.As(err, &perr):
		return &Error{Kind: KindResponseParse, Op: op, Err: err}
	default:
		return &Error{Kind: KindLLMBackend, Op: op, Err: err}
	}
}

func cancelled(ctx context.Context, op string) *Error {
	return &Error{Kind: KindCancelled, Op: op, Err: context.Cause(ctx)}
}
