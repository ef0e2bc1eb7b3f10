package oerror

import "fmt"

// Error is the error type returned by the engine's fallible operations.
type Error struct {
	Err string
}

// New creates an Error from a format string.
func New(format string, args ...any) *Error {
	return &Error{Err: fmt.Sprintf(format, args...)}
}

func (e *Error) Error() string {
	return e.Err
}
