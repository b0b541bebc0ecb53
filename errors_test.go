package chatter

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError(t *testing.T) {
	t.Run("Error returns message without cause", func(t *testing.T) {
		err := &Error{Msg: "rate limited", Cat: ErrorTransient, Code: 429}
		assert.Equal(t, "rate limited", err.Error())
	})

	t.Run("Error includes cause", func(t *testing.T) {
		cause := errors.New("connection reset")
		err := &Error{Msg: "request failed", Cat: ErrorTransient, Cause: cause}
		assert.Equal(t, "request failed: connection reset", err.Error())
	})

	t.Run("Unwrap returns cause", func(t *testing.T) {
		cause := errors.New("underlying")
		err := &Error{Msg: "wrapped", Cause: cause}
		assert.True(t, errors.Is(err, cause))
	})
}

func TestErrorConstructors(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		category ErrorCategory
		code     int
	}{
		{
			name:     "transient",
			err:      NewTransientError("server overloaded", 503, nil),
			category: ErrorTransient,
			code:     503,
		},
		{
			name:     "permanent",
			err:      NewPermanentError("invalid API key", 401, nil),
			category: ErrorPermanent,
			code:     401,
		},
		{
			name:     "user input",
			err:      NewUserInputError("malformed request", 400, nil),
			category: ErrorUserInput,
			code:     400,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.category, tt.err.Category())
			assert.Equal(t, tt.code, tt.err.StatusCode())
		})
	}
}

func TestCategoryPredicates(t *testing.T) {
	t.Run("IsTransient matches wrapped errors", func(t *testing.T) {
		err := fmt.Errorf("chat: %w", NewTransientError("rate limited", 429, nil))
		assert.True(t, IsTransient(err))
		assert.False(t, IsPermanent(err))
		assert.False(t, IsUserInput(err))
	})

	t.Run("IsPermanent matches wrapped errors", func(t *testing.T) {
		err := fmt.Errorf("chat: %w", NewPermanentError("forbidden", 403, nil))
		assert.True(t, IsPermanent(err))
		assert.False(t, IsTransient(err))
	})

	t.Run("IsUserInput matches wrapped errors", func(t *testing.T) {
		err := fmt.Errorf("chat: %w", NewUserInputError("bad params", 422, nil))
		assert.True(t, IsUserInput(err))
	})

	t.Run("predicates are false for plain errors", func(t *testing.T) {
		err := errors.New("plain")
		assert.False(t, IsTransient(err))
		assert.False(t, IsPermanent(err))
		assert.False(t, IsUserInput(err))
	})
}

func TestStatusCodeOf(t *testing.T) {
	t.Run("returns code from categorized error", func(t *testing.T) {
		err := fmt.Errorf("chat: %w", NewTransientError("rate limited", 429, nil))
		assert.Equal(t, 429, StatusCodeOf(err))
	})

	t.Run("returns zero for plain errors", func(t *testing.T) {
		assert.Zero(t, StatusCodeOf(errors.New("plain")))
	})
}
