package draft

import (
	"errors"
	"strings"
)

var (
	ErrNotFound          = errors.New("draft not found")
	ErrInvalidTransition = errors.New("invalid step transition")
	// ErrLastItem guards the invariant that a loan references at least one
	// pledged item.
	ErrLastItem = errors.New("cannot remove the last gold item")
	// ErrNoImageFiles is returned when a photo selection contained no valid
	// image files at all.
	ErrNoImageFiles = errors.New("no image files found in selection")
	// ErrNotVerified rejects loan submission without a verified customer.
	ErrNotVerified = errors.New("customer identity has not been verified")
)

// ValidationError is a client-local precondition failure: recoverable,
// surfaced as human-readable messages tied to the violated rules, never a
// stack trace. Multiple messages render as a list.
type ValidationError struct {
	Messages []string
}

func NewValidationError(msgs ...string) *ValidationError {
	return &ValidationError{Messages: msgs}
}

func (e *ValidationError) Error() string { return strings.Join(e.Messages, "\n") }

// DuplicateContactError is the distinct-mobile-numbers specialization of a
// validation failure.
type DuplicateContactError struct{}

func (e *DuplicateContactError) Error() string {
	return "primary, secondary and emergency mobile numbers must be distinct"
}
