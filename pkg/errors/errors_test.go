// pkg/errors/errors_test.go
// TEST TYPE: Unit Test
// DEPENDENCIES: None
// PURPOSE: Test error creation, wrapping, and utility functions

package errors_test

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/arthur-debert/calvin/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		code    errors.ErrorCode
		message string
		wantStr string
	}{
		{
			name:    "not_found_error",
			code:    errors.ErrNotFound,
			message: "file not found",
			wantStr: "[NOT_FOUND] file not found",
		},
		{
			name:    "ledger_corrupted_error",
			code:    errors.ErrLedgerCorrupted,
			message: "cannot parse calvin.lock",
			wantStr: "[LEDGER_CORRUPTED] cannot parse calvin.lock",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := errors.New(tt.code, tt.message)

			assert.Equal(t, tt.code, err.Code)
			assert.Equal(t, tt.message, err.Message)
			assert.NotNil(t, err.Details)
			assert.Equal(t, tt.wantStr, err.Error())
		})
	}
}

func TestNewf(t *testing.T) {
	err := errors.Newf(errors.ErrDuplicateDestination, "%d outputs target %s", 2, ".claude/commands/a.md")
	assert.Equal(t, "2 outputs target .claude/commands/a.md", err.Message)
}

func TestWrap(t *testing.T) {
	baseErr := stderrors.New("base error")

	t.Run("wrap_non_nil_error", func(t *testing.T) {
		err := errors.Wrap(baseErr, errors.ErrExecutionIO, "write failed")

		assert.Equal(t, errors.ErrExecutionIO, err.Code)
		assert.Same(t, baseErr, err.Wrapped)
		assert.Equal(t, "[EXECUTION_IO] write failed: base error", err.Error())
	})

	t.Run("wrap_nil_error_returns_nil", func(t *testing.T) {
		err := errors.Wrap(nil, errors.ErrInternal, "internal error")
		assert.Nil(t, err)
	})
}

func TestIs(t *testing.T) {
	err1 := errors.New(errors.ErrConflictUnresolved, "error 1")
	err2 := errors.New(errors.ErrConflictUnresolved, "error 2")
	err3 := errors.New(errors.ErrInternal, "error 3")

	assert.True(t, err1.Is(err2))
	assert.False(t, err1.Is(err3))
	assert.True(t, stderrors.Is(err1, err2))
}

func TestIsErrorCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		code     errors.ErrorCode
		expected bool
	}{
		{
			name:     "matching_code",
			err:      errors.New(errors.ErrNotFound, "not found"),
			code:     errors.ErrNotFound,
			expected: true,
		},
		{
			name:     "different_code",
			err:      errors.New(errors.ErrNotFound, "not found"),
			code:     errors.ErrInternal,
			expected: false,
		},
		{
			name:     "inner_code_in_chain",
			err:      errors.Wrap(errors.New(errors.ErrLedgerVersionMismatch, "v2"), errors.ErrConfigLoad, "load"),
			code:     errors.ErrLedgerVersionMismatch,
			expected: true,
		},
		{
			name:     "wrapped_by_fmt",
			err:      fmt.Errorf("context: %w", errors.New(errors.ErrLedgerWrite, "disk full")),
			code:     errors.ErrLedgerWrite,
			expected: true,
		},
		{
			name:     "non_calvin_error",
			err:      stderrors.New("standard error"),
			code:     errors.ErrNotFound,
			expected: false,
		},
		{
			name:     "nil_error",
			err:      nil,
			code:     errors.ErrNotFound,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, errors.IsErrorCode(tt.err, tt.code))
		})
	}
}

func TestGetErrorCode(t *testing.T) {
	assert.Equal(t, errors.ErrAborted, errors.GetErrorCode(errors.New(errors.ErrAborted, "stop")))
	assert.Equal(t, errors.ErrUnknown, errors.GetErrorCode(stderrors.New("standard error")))
	assert.Equal(t, errors.ErrUnknown, errors.GetErrorCode(nil))
}

func TestRemediation(t *testing.T) {
	inner := errors.New(errors.ErrLedgerVersionMismatch, "found 2, expected 1").
		WithRemediation("calvin migrate")
	outer := errors.Wrap(inner, errors.ErrConfigLoad, "cannot start")

	assert.Equal(t, "calvin migrate", errors.Remediation(outer))
	assert.Empty(t, errors.Remediation(stderrors.New("plain")))
}

func TestPaths(t *testing.T) {
	err := errors.New(errors.ErrConflictUnresolved, "conflicts").
		WithDetail(errors.DetailPaths, []string{"b.md", "a.md"})

	require.Equal(t, []string{"a.md", "b.md"}, errors.Paths(err))
	assert.Nil(t, errors.Paths(stderrors.New("plain")))
}
