// Package errors defines the structured error taxonomy for buddy.
//
// Every error that crosses a package boundary carries an ErrorCode so
// callers can distinguish a broken local binding from a transient remote
// failure without string matching. Best-effort cleanup failures are never
// represented here; those are downgraded to bus events at the call site.
package errors

import (
	"fmt"
	"strings"
)

// ErrorCode represents a structured error code
type ErrorCode string

const (
	// Configuration / local-state errors
	ErrCodeConfigLoad    ErrorCode = "CONFIG_LOAD"
	ErrCodeConfigParse   ErrorCode = "CONFIG_PARSE"
	ErrCodeConfigInvalid ErrorCode = "CONFIG_INVALID"
	ErrCodeAPIKeyMissing ErrorCode = "API_KEY_MISSING"
	ErrCodeConvState     ErrorCode = "CONV_STATE"
	ErrCodeBundleIO      ErrorCode = "BUNDLE_IO"
	ErrCodeRefuseDelete  ErrorCode = "REFUSE_DELETE"

	// Remote-service errors
	ErrCodeRemoteAPI ErrorCode = "REMOTE_API"

	// State-inconsistency errors: a binding exists but no longer matches
	// what the remote side reports.
	ErrCodeConvStale          ErrorCode = "CONV_STALE"
	ErrCodeFileAttachMismatch ErrorCode = "FILE_ATTACH_MISMATCH"

	// Run-turn errors
	ErrCodeRunFailed       ErrorCode = "RUN_FAILED"
	ErrCodeReplyUnreadable ErrorCode = "REPLY_UNREADABLE"

	// Generic errors
	ErrCodeInternal ErrorCode = "INTERNAL"
)

// Error represents a structured buddy error
type Error struct {
	Code       ErrorCode
	Message    string
	Underlying error
	Context    map[string]any
}

// New creates a new structured error
func New(code ErrorCode, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Context: make(map[string]any),
	}
}

// Wrap wraps an existing error with buddy error context
func Wrap(err error, code ErrorCode, message string) *Error {
	if err == nil {
		return nil
	}

	return &Error{
		Code:       code,
		Message:    message,
		Underlying: err,
		Context:    make(map[string]any),
	}
}

// WithContext adds context key-value pairs to the error
func (e *Error) WithContext(key string, value any) *Error {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

// Error implements the error interface
func (e *Error) Error() string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("[%s] %s", e.Code, e.Message))

	if len(e.Context) > 0 {
		sb.WriteString(" {")
		first := true
		for k, v := range e.Context {
			if !first {
				sb.WriteString(", ")
			}
			sb.WriteString(fmt.Sprintf("%s: %v", k, v))
			first = false
		}
		sb.WriteString("}")
	}

	if e.Underlying != nil {
		sb.WriteString(fmt.Sprintf(": %v", e.Underlying))
	}

	return sb.String()
}

// Unwrap returns the underlying error for errors.Is/As
func (e *Error) Unwrap() error {
	return e.Underlying
}

// IsCode checks if an error has a specific error code
func IsCode(err error, code ErrorCode) bool {
	if err == nil {
		return false
	}

	buddyErr, ok := err.(*Error)
	if !ok {
		return false
	}

	return buddyErr.Code == code
}

// GetCode extracts the error code from an error
func GetCode(err error) ErrorCode {
	if err == nil {
		return ""
	}

	buddyErr, ok := err.(*Error)
	if !ok {
		return ErrCodeInternal
	}

	return buddyErr.Code
}
