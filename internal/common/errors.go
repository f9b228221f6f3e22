// Package common provides shared utilities and types used across the application.
package common

import (
	"context"
	"errors"
	"fmt"
)

// Common application errors.
var (
	// Storage errors.
	ErrNotFound       = errors.New("not found")
	ErrDuplicateEntry = errors.New("duplicate entry")
	ErrSuperseded     = errors.New("transaction already superseded")

	// Command construction errors. These are programming errors and are
	// never surfaced to the end user; the message degrades to RAW_ONLY.
	ErrMalformedCandidate = errors.New("expense intent without candidate")
	ErrSchema             = errors.New("canonical command missing required field")

	// Extraction errors.
	ErrExtractionTimeout = errors.New("candidate extraction timed out")

	// Configuration errors. Fatal at startup, never silently defaulted.
	ErrInvalidConfig = errors.New("invalid configuration")
)

// UserError represents an error that should be shown to the user.
type UserError struct {
	Err         error
	UserMessage string
}

func (e *UserError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.UserMessage, e.Err)
	}
	return e.UserMessage
}

func (e *UserError) Unwrap() error {
	return e.Err
}

// NewUserError creates a new user-friendly error.
func NewUserError(userMessage string, err error) error {
	return &UserError{
		UserMessage: userMessage,
		Err:         err,
	}
}

// IsRetryable determines if an error should trigger a retry. Only transient
// storage failures qualify; extraction and construction failures degrade to
// RAW_ONLY instead of retrying.
func IsRetryable(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var retryableErr *RetryableError
	if errors.As(err, &retryableErr) {
		return retryableErr.Retryable
	}

	return false
}
