package inf

import (
	"errors"
	"fmt"
)

var (
	// ErrNoSuchElement is returned by Iterator.Next when the most recent
	// HasNext did not report true.
	ErrNoSuchElement = errors.New("no such element")

	// ErrNoMessage is returned when dereferencing a cursor that is before
	// the first position or at the end.
	ErrNoMessage = errors.New("cursor is not at a message")
)

// RuntimeError represents a fault detected while traversing.
//
// Runtime errors include:
//   - Wrong way: a shift did not move the cursor strictly forward
//   - Shift failed: a term or its index returned an error
//   - Dereference failed: the message at the cursor could not be loaded
//
// None of them are retried; the iterator that hit one stays failed.
type RuntimeError struct {
	// Code identifies the error category.
	Code RuntimeErrorCode

	// Message is a human-readable description.
	Message string

	// Traversal identifies the iterator that failed.
	Traversal string

	// Term is the rendered term being evaluated.
	Term string

	// Details contains additional context.
	Details map[string]string

	cause error
}

// RuntimeErrorCode categorizes runtime errors.
type RuntimeErrorCode string

const (
	// ErrCodeWrongWay indicates a shift that stalled or moved backwards.
	ErrCodeWrongWay RuntimeErrorCode = "WRONG_WAY"

	// ErrCodeShiftFailed indicates a term or index returned an error.
	ErrCodeShiftFailed RuntimeErrorCode = "SHIFT_FAILED"

	// ErrCodeDereferenceFailed indicates the current message could not be loaded.
	ErrCodeDereferenceFailed RuntimeErrorCode = "DEREFERENCE_FAILED"
)

// Error implements the error interface.
func (e *RuntimeError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	if e.Traversal != "" {
		msg = fmt.Sprintf("%s (traversal=%s)", msg, e.Traversal)
	}
	if e.cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.cause)
	}
	return msg
}

// Unwrap returns the underlying term or index error, if any.
func (e *RuntimeError) Unwrap() error { return e.cause }

// IsWrongWayError returns true if the error is a progress invariant violation.
// Uses errors.As to handle wrapped errors.
func IsWrongWayError(err error) bool {
	var re *RuntimeError
	if errors.As(err, &re) {
		return re.Code == ErrCodeWrongWay
	}
	return false
}

// IsShiftError returns true if the error came from a failing term or index.
func IsShiftError(err error) bool {
	var re *RuntimeError
	if errors.As(err, &re) {
		return re.Code == ErrCodeShiftFailed
	}
	return false
}

// NewWrongWayError creates a RuntimeError for a shift that did not advance.
func NewWrongWayError(from, to Cursor, term Term) *RuntimeError {
	return &RuntimeError{
		Code:    ErrCodeWrongWay,
		Message: fmt.Sprintf("%s shifted to %s, wrong way", from, to),
		Term:    String(term),
		Details: map[string]string{
			"from": from.String(),
			"to":   to.String(),
		},
	}
}

func newShiftError(from Cursor, term Term, err error) *RuntimeError {
	return &RuntimeError{
		Code:    ErrCodeShiftFailed,
		Message: fmt.Sprintf("shift from %s failed", from),
		Term:    String(term),
		cause:   err,
	}
}

func newDereferenceError(at Cursor, err error) *RuntimeError {
	return &RuntimeError{
		Code:    ErrCodeDereferenceFailed,
		Message: fmt.Sprintf("cannot load message at %s", at),
		cause:   err,
	}
}
