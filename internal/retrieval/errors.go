package retrieval

import (
	"errors"
	"fmt"
)

// ErrRetrieval matches every error returned by Provider.
var ErrRetrieval = errors.New("retrieval error")

// Error reports a failed ingest or query.
type Error struct {
	Op  string // "ingest", "query"
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("retrieval %s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrRetrieval) true for any *Error.
func (e *Error) Is(target error) bool { return target == ErrRetrieval }

func opError(op string, err error) error {
	return &Error{Op: op, Err: err}
}
