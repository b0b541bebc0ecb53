package chatter

import (
	"errors"
	"fmt"
)

// ErrEmptyInput is returned when a call requires at least one message
// and receives none.
var ErrEmptyInput = errors.New("empty input")

// ErrorCategory tells callers how an error should be handled.
type ErrorCategory string

const (
	// ErrorTransient covers failures that may clear on their own:
	// rate limits, server overload, flaky networks.
	ErrorTransient ErrorCategory = "transient"

	// ErrorPermanent covers failures no repeat attempt can fix:
	// bad credentials, missing permissions, unknown models.
	ErrorPermanent ErrorCategory = "permanent"

	// ErrorUserInput covers requests the caller must change before
	// resending: malformed parameters, policy violations.
	ErrorUserInput ErrorCategory = "user_input"
)

// CategorizedError exposes handling metadata alongside the error text.
type CategorizedError interface {
	error
	Category() ErrorCategory
	// StatusCode is the HTTP status when one applies, 0 otherwise.
	StatusCode() int
}

// Error is the concrete categorized error produced by provider adapters.
type Error struct {
	Msg   string
	Cat   ErrorCategory
	Code  int
	Cause error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Cause)
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Cause }

func (e *Error) Category() ErrorCategory { return e.Cat }

func (e *Error) StatusCode() int { return e.Code }

// NewTransientError builds an Error in the transient category.
func NewTransientError(msg string, statusCode int, cause error) *Error {
	return &Error{Msg: msg, Cat: ErrorTransient, Code: statusCode, Cause: cause}
}

// NewPermanentError builds an Error in the permanent category.
func NewPermanentError(msg string, statusCode int, cause error) *Error {
	return &Error{Msg: msg, Cat: ErrorPermanent, Code: statusCode, Cause: cause}
}

// NewUserInputError builds an Error in the user-input category.
func NewUserInputError(msg string, statusCode int, cause error) *Error {
	return &Error{Msg: msg, Cat: ErrorUserInput, Code: statusCode, Cause: cause}
}

func categoryOf(err error) (ErrorCategory, bool) {
	var ce CategorizedError
	if errors.As(err, &ce) {
		return ce.Category(), true
	}
	return "", false
}

// IsTransient reports whether err (or anything it wraps) is transient.
func IsTransient(err error) bool {
	cat, ok := categoryOf(err)
	return ok && cat == ErrorTransient
}

// IsPermanent reports whether err (or anything it wraps) is permanent.
func IsPermanent(err error) bool {
	cat, ok := categoryOf(err)
	return ok && cat == ErrorPermanent
}

// IsUserInput reports whether err (or anything it wraps) is a
// user-input error.
func IsUserInput(err error) bool {
	cat, ok := categoryOf(err)
	return ok && cat == ErrorUserInput
}

// StatusCodeOf extracts the HTTP status from a categorized error, or 0.
func StatusCodeOf(err error) int {
	var ce CategorizedError
	if errors.As(err, &ce) {
		return ce.StatusCode()
	}
	return 0
}
