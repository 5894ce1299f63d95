package errors

import (
	"errors"
	"fmt"
	"sort"
)

// ErrorCode represents a unique error code for stable testing
type ErrorCode string

// Error codes for different error categories
const (
	// General errors
	ErrUnknown      ErrorCode = "UNKNOWN"
	ErrInternal     ErrorCode = "INTERNAL"
	ErrInvalidInput ErrorCode = "INVALID_INPUT"
	ErrNotFound     ErrorCode = "NOT_FOUND"

	// Configuration errors
	ErrConfigLoad  ErrorCode = "CONFIG_LOAD"
	ErrConfigValid ErrorCode = "CONFIG_INVALID"

	// Source errors
	ErrAssetParse  ErrorCode = "ASSET_PARSE"
	ErrAssetRender ErrorCode = "ASSET_RENDER"

	// Ledger errors
	ErrLedgerCorrupted       ErrorCode = "LEDGER_CORRUPTED"
	ErrLedgerVersionMismatch ErrorCode = "LEDGER_VERSION_MISMATCH"
	ErrLedgerWrite           ErrorCode = "LEDGER_WRITE"

	// Planning errors
	ErrDuplicateDestination ErrorCode = "DUPLICATE_DESTINATION"
	ErrTargetState          ErrorCode = "TARGET_STATE"

	// Resolution errors
	ErrConflictUnresolved ErrorCode = "CONFLICT_UNRESOLVED"
	ErrAborted            ErrorCode = "ABORTED"

	// Execution errors
	ErrExecutionIO ErrorCode = "EXECUTION_IO"

	// Watch errors
	ErrNotifyBackend ErrorCode = "NOTIFY_BACKEND"
)

// Detail keys with a meaning outside of the error itself
const (
	// DetailRemediation holds a command the user can run to recover
	DetailRemediation = "remediation"
	// DetailPaths holds a []string of offending destination paths
	DetailPaths = "paths"
	// DetailPath holds the single offending path or ledger key
	DetailPath = "path"
)

// CalvinError represents a structured error with code and details
type CalvinError struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
	Wrapped error
}

// Error implements the error interface
func (e *CalvinError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *CalvinError) Unwrap() error {
	return e.Wrapped
}

// Is implements errors.Is interface
func (e *CalvinError) Is(target error) bool {
	var targetErr *CalvinError
	if errors.As(target, &targetErr) {
		return e.Code == targetErr.Code
	}
	return false
}

// New creates a new CalvinError with the given code and message
func New(code ErrorCode, message string) *CalvinError {
	return &CalvinError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// Newf creates a new CalvinError with a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *CalvinError {
	return &CalvinError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
	}
}

// Wrap wraps an existing error with a CalvinError
func Wrap(err error, code ErrorCode, message string) *CalvinError {
	if err == nil {
		return nil
	}
	return &CalvinError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// Wrapf wraps an existing error with a formatted message
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *CalvinError {
	if err == nil {
		return nil
	}
	return &CalvinError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// WithDetail adds a detail to the error
func (e *CalvinError) WithDetail(key string, value interface{}) *CalvinError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// WithRemediation attaches the command a user should run to recover
func (e *CalvinError) WithRemediation(hint string) *CalvinError {
	return e.WithDetail(DetailRemediation, hint)
}

// IsErrorCode checks if an error has a specific error code
func IsErrorCode(err error, code ErrorCode) bool {
	for err != nil {
		var calvinErr *CalvinError
		if !errors.As(err, &calvinErr) {
			return false
		}
		if calvinErr.Code == code {
			return true
		}
		err = calvinErr.Wrapped
	}
	return false
}

// GetErrorCode returns the error code from an error, or ErrUnknown if not a CalvinError
func GetErrorCode(err error) ErrorCode {
	var calvinErr *CalvinError
	if errors.As(err, &calvinErr) {
		return calvinErr.Code
	}
	return ErrUnknown
}

// GetErrorDetails returns the details from an error, or nil if not a CalvinError
func GetErrorDetails(err error) map[string]interface{} {
	var calvinErr *CalvinError
	if errors.As(err, &calvinErr) {
		return calvinErr.Details
	}
	return nil
}

// Remediation returns the first remediation hint found in the error chain
func Remediation(err error) string {
	for err != nil {
		var calvinErr *CalvinError
		if !errors.As(err, &calvinErr) {
			return ""
		}
		if hint, ok := calvinErr.Details[DetailRemediation].(string); ok && hint != "" {
			return hint
		}
		err = calvinErr.Wrapped
	}
	return ""
}

// Paths returns the offending paths attached to the error, sorted
func Paths(err error) []string {
	details := GetErrorDetails(err)
	if details == nil {
		return nil
	}
	var out []string
	switch v := details[DetailPaths].(type) {
	case []string:
		out = append(out, v...)
	case string:
		out = append(out, v)
	}
	if p, ok := details[DetailPath].(string); ok && p != "" {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}
