package googlebooks

import (
	"errors"
	"fmt"
)

// Sentinel errors for catalog lookups.
var (
	ErrRateLimited = errors.New("googlebooks: rate limited")
	ErrUpstream    = errors.New("googlebooks: upstream error")
	ErrCircuitOpen = errors.New("googlebooks: circuit open")
)

// Error wraps an underlying error with the query that caused it.
type Error struct {
	Op    string
	Query string
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("googlebooks %s %q: %v", e.Op, e.Query, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func wrapError(op, query string, err error) error {
	return &Error{Op: op, Query: query, Err: err}
}
