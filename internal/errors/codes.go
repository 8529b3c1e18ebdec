package errors

import (
	"fmt"
)

// ErrorCode represents a specific error type for planner operations.
type ErrorCode string

const (
	// ErrCodeAnalysisFailed indicates the note-analysis model failed or
	// returned unparseable output.
	ErrCodeAnalysisFailed ErrorCode = "ANALYSIS_FAILED"
	// ErrCodeDataUnavailable indicates a preferences/categories/meetings
	// fetch failed and defaults were applied.
	ErrCodeDataUnavailable ErrorCode = "DATA_UNAVAILABLE"
	// ErrCodeDisplacementExhausted indicates no conflict-free slot could be
	// found for a candidate day within the iteration cap.
	ErrCodeDisplacementExhausted ErrorCode = "DISPLACEMENT_EXHAUSTED"
	// ErrCodePersistenceFailed indicates a storage write failure.
	ErrCodePersistenceFailed ErrorCode = "PERSISTENCE_FAILED"
	// ErrCodeInvalidArgument indicates invalid input parameters.
	ErrCodeInvalidArgument ErrorCode = "INVALID_ARGUMENT"
	// ErrCodeContextCanceled indicates the operation was canceled.
	ErrCodeContextCanceled ErrorCode = "CONTEXT_CANCELED"
	// ErrCodeTimeout indicates the operation timed out.
	ErrCodeTimeout ErrorCode = "TIMEOUT"
)

// PlannerError represents a structured error for planner operations.
type PlannerError struct {
	Code    ErrorCode
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *PlannerError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *PlannerError) Unwrap() error {
	return e.Cause
}

// Convenience constructors for common error types.

// AnalysisFailed creates an analysis failed error.
func AnalysisFailed(msg string, cause error) *PlannerError {
	return &PlannerError{Code: ErrCodeAnalysisFailed, Message: msg, Cause: cause}
}

// DataUnavailable creates a data unavailable error.
func DataUnavailable(msg string, cause error) *PlannerError {
	return &PlannerError{Code: ErrCodeDataUnavailable, Message: msg, Cause: cause}
}

// DisplacementExhausted creates a displacement exhausted error.
func DisplacementExhausted(msg string) *PlannerError {
	return &PlannerError{Code: ErrCodeDisplacementExhausted, Message: msg}
}

// PersistenceFailed creates a persistence failed error.
func PersistenceFailed(msg string, cause error) *PlannerError {
	return &PlannerError{Code: ErrCodePersistenceFailed, Message: msg, Cause: cause}
}

// InvalidArgument creates an invalid argument error.
func InvalidArgument(msg string) *PlannerError {
	return &PlannerError{Code: ErrCodeInvalidArgument, Message: msg}
}

// Timeout creates a timeout error.
func Timeout(msg string) *PlannerError {
	return &PlannerError{Code: ErrCodeTimeout, Message: msg}
}

// Wrap wraps an existing error with a code and message.
func Wrap(cause error, code ErrorCode, msg string) *PlannerError {
	return &PlannerError{Code: code, Message: msg, Cause: cause}
}

// IsCode checks if an error is of a specific code.
func IsCode(err error, code ErrorCode) bool {
	if plannerErr, ok := err.(*PlannerError); ok {
		return plannerErr.Code == code
	}
	return false
}
