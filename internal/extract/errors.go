package extract

import (
	"errors"
	"fmt"
)

var (
	// ErrNoStructuredBlock means the reply holds neither a fenced JSON block nor bare JSON.
	ErrNoStructuredBlock = errors.New("no structured block found")
	// ErrMalformedJSON means a block was found but does not parse.
	ErrMalformedJSON = errors.New("malformed json")
	// ErrSchemaMismatch means the JSON parses but is not a list of task objects.
	ErrSchemaMismatch = errors.New("schema mismatch")
)

// ParseError is returned for every extraction failure. Kind is one of the
// package sentinels, so errors.Is(err, ErrMalformedJSON) works on it.
type ParseError struct {
	Kind   error
	Detail string
	Err    error
}

func (e *ParseError) Error() string {
	msg := e.Kind.Error()
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ParseError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func noBlock(detail string) error {
	return &ParseError{Kind: ErrNoStructuredBlock, Detail: detail}
}

func malformed(err error) error {
	return &ParseError{Kind: ErrMalformedJSON, Err: err}
}

func mismatch(format string, args ...interface{}) error {
	return &ParseError{Kind: ErrSchemaMismatch, Detail: fmt.Sprintf(format, args...)}
}
