package errors

import (
	stderrors "errors"
	"fmt"
	"time"
)

// ErrorCode classifies an AppError
type ErrorCode string

const (
	ErrorCode_INTERNAL                     ErrorCode = "INTERNAL"
	ErrorCode_INVALID_ARGUMENT             ErrorCode = "INVALID_ARGUMENT"
	ErrorCode_NOT_FOUND                    ErrorCode = "NOT_FOUND"
	ErrorCode_DEGENERATE_INPUT             ErrorCode = "DEGENERATE_INPUT"
	ErrorCode_AI_SUMMARY_FAILED            ErrorCode = "AI_SUMMARY_FAILED"
	ErrorCode_AI_SERVICE_UNAVAILABLE       ErrorCode = "AI_SERVICE_UNAVAILABLE"
	ErrorCode_INTEGRATION_STORAGE_FAILED   ErrorCode = "INTEGRATION_STORAGE_FAILED"
	ErrorCode_INTEGRATION_CACHE_FAILED     ErrorCode = "INTEGRATION_CACHE_FAILED"
	ErrorCode_INTEGRATION_MESSAGING_FAILED ErrorCode = "INTEGRATION_MESSAGING_FAILED"
	ErrorCode_RENDER_FAILED                ErrorCode = "RENDER_FAILED"
	ErrorCode_DB_CONNECTION_FAILED         ErrorCode = "DB_CONNECTION_FAILED"
	ErrorCode_DB_QUERY_FAILED              ErrorCode = "DB_QUERY_FAILED"
)

func (c ErrorCode) String() string {
	return string(c)
}

// Process exit codes used by the CLI
const (
	ExitOK          = 0
	ExitFailure     = 1
	ExitUsage       = 2
	ExitUnavailable = 69
)

// AppError is the application error envelope
type AppError struct {
	Raw       error
	ExitCode  int
	Code      ErrorCode
	Message   string
	Details   map[string]string
	Timestamp time.Time
}

// Error implements error interface
func (e AppError) Error() string {
	if e.Raw != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code.String(), e.Message, e.Raw)
	}
	return fmt.Sprintf("[%s] %s", e.Code.String(), e.Message)
}

// Unwrap exposes the raw cause to errors.Is and errors.As
func (e AppError) Unwrap() error {
	return e.Raw
}

// WithDetail adds a detail to the error
func (e AppError) WithDetail(key, value string) AppError {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}

func newAppError(raw error, exitCode int, code ErrorCode, message string) AppError {
	return AppError{
		Raw:       raw,
		ExitCode:  exitCode,
		Code:      code,
		Message:   message,
		Timestamp: time.Now().UTC(),
	}
}

// General Errors
func ErrInternal(err error) AppError {
	return newAppError(err, ExitFailure, ErrorCode_INTERNAL, "Internal error")
}

func ErrInvalidArgument(message string) AppError {
	return newAppError(nil, ExitUsage, ErrorCode_INVALID_ARGUMENT, message)
}

func ErrNotFound(resource string) AppError {
	return newAppError(nil, ExitFailure, ErrorCode_NOT_FOUND, fmt.Sprintf("%s not found", resource))
}

// Focus Engine Errors
func ErrDegenerateInput(err error) AppError {
	return newAppError(err, ExitFailure, ErrorCode_DEGENERATE_INPUT, "Focus batch has no measurable duration")
}

func ErrRenderFailed(artifact string, err error) AppError {
	return newAppError(err, ExitFailure, ErrorCode_RENDER_FAILED, "Failed to render artifact").
		WithDetail("artifact", artifact)
}

// AI Errors
func ErrAISummaryFailed(err error) AppError {
	return newAppError(err, ExitFailure, ErrorCode_AI_SUMMARY_FAILED, "Failed to generate insights")
}

func ErrAIServiceUnavailable(service string) AppError {
	return newAppError(nil, ExitUnavailable, ErrorCode_AI_SERVICE_UNAVAILABLE, "AI service temporarily unavailable").
		WithDetail("service", service)
}

// Integration Errors
func ErrStorageFailed(operation string, err error) AppError {
	return newAppError(err, ExitFailure, ErrorCode_INTEGRATION_STORAGE_FAILED, fmt.Sprintf("Storage operation failed: %s", operation))
}

func ErrCacheFailed(operation string, err error) AppError {
	return newAppError(err, ExitFailure, ErrorCode_INTEGRATION_CACHE_FAILED, fmt.Sprintf("Cache operation failed: %s", operation))
}

func ErrMessagingFailed(topic string, err error) AppError {
	return newAppError(err, ExitFailure, ErrorCode_INTEGRATION_MESSAGING_FAILED, "Failed to publish event").
		WithDetail("topic", topic)
}

// Database Errors
func ErrDBConnectionFailed(err error) AppError {
	return newAppError(err, ExitUnavailable, ErrorCode_DB_CONNECTION_FAILED, "Database connection failed")
}

func ErrDBQueryFailed(query string, err error) AppError {
	return newAppError(err, ExitFailure, ErrorCode_DB_QUERY_FAILED, "Database query failed").
		WithDetail("query", query)
}

// CodeOf returns the code of the first AppError in err's chain, or INTERNAL
func CodeOf(err error) ErrorCode {
	var appErr AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code
	}
	return ErrorCode_INTERNAL
}

// ExitCodeOf maps err to a process exit code
func ExitCodeOf(err error) int {
	if err == nil {
		return ExitOK
	}
	var appErr AppError
	if stderrors.As(err, &appErr) && appErr.ExitCode != 0 {
		return appErr.ExitCode
	}
	return ExitFailure
}

// IsCollaboratorFailure reports whether err came from an external
// collaborator (LLM, storage, cache, broker, database) rather than from the
// focus data itself.
func IsCollaboratorFailure(err error) bool {
	switch CodeOf(err) {
	case ErrorCode_AI_SUMMARY_FAILED,
		ErrorCode_AI_SERVICE_UNAVAILABLE,
		ErrorCode_INTEGRATION_STORAGE_FAILED,
		ErrorCode_INTEGRATION_CACHE_FAILED,
		ErrorCode_INTEGRATION_MESSAGING_FAILED,
		ErrorCode_RENDER_FAILED,
		ErrorCode_DB_CONNECTION_FAILED,
		ErrorCode_DB_QUERY_FAILED:
		return true
	}
	return false
}
