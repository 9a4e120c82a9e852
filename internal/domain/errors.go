package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidMessage is returned when a chat request has no usable message field.
	ErrInvalidMessage = errors.New("invalid message")
	// ErrMalformedRow is matched by every MalformedRowError.
	ErrMalformedRow = errors.New("malformed row")
)

// MalformedRowError reports a users row that does not fit the expected schema.
type MalformedRowError struct {
	Row    int
	Column string
	Reason string
}

func (e *MalformedRowError) Error() string {
	if e.Column == "" {
		return fmt.Sprintf("malformed row %d: %s", e.Row, e.Reason)
	}
	return fmt.Sprintf("malformed row %d: column %s: %s", e.Row, e.Column, e.Reason)
}

// Is reports ErrMalformedRow as a match so callers can use errors.Is.
func (e *MalformedRowError) Is(target error) bool {
	return target == ErrMalformedRow
}
