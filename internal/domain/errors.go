package domain

import (
	"fmt"
	"time"
)

// TriageError represents a standardized error response at the API boundary
type TriageError struct {
	Code      string    `json:"code"`
	Message   string    `json:"message"`
	Details   string    `json:"details,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	RequestID string    `json:"request_id"`
}

// Error implements the error interface
func (e *TriageError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Error codes for different failure scenarios
const (
	ErrInvalidInput    = "INVALID_INPUT"
	ErrValidation      = "VALIDATION_ERROR"
	ErrModelLoad       = "MODEL_LOAD_ERROR"
	ErrSerialization   = "SERIALIZATION_ERROR"
	ErrStorage         = "STORAGE_ERROR"
	ErrSessionNotFound = "SESSION_NOT_FOUND"
	ErrNotFound        = "NOT_FOUND"
	ErrRateLimit       = "RATE_LIMIT_EXCEEDED"
	ErrInternalServer  = "INTERNAL_SERVER_ERROR"
)

// ValidationError represents input validation errors
type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value"`
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for field '%s': %s", e.Field, e.Message)
}

// ModelLoadError reports a missing, unreadable or malformed classifier artifact.
// It narrows the engine to rule-only extraction and is never surfaced to triage callers.
type ModelLoadError struct {
	Source string
	Reason string
	Err    error
}

// Error implements the error interface
func (e *ModelLoadError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("model load failed (%s): %s: %v", e.Source, e.Reason, e.Err)
	}
	return fmt.Sprintf("model load failed (%s): %s", e.Source, e.Reason)
}

// Unwrap returns the underlying cause
func (e *ModelLoadError) Unwrap() error {
	return e.Err
}

// SerializationError reports a result that could not be encoded or decoded.
// Stores treat a decode failure as a cache miss.
type SerializationError struct {
	Op  string
	Err error
}

// Error implements the error interface
func (e *SerializationError) Error() string {
	return fmt.Sprintf("serialization error (%s): %v", e.Op, e.Err)
}

// Unwrap returns the underlying cause
func (e *SerializationError) Unwrap() error {
	return e.Err
}

// NewTriageError creates a new TriageError with timestamp
func NewTriageError(code, message, details, requestID string) *TriageError {
	return &TriageError{
		Code:      code,
		Message:   message,
		Details:   details,
		Timestamp: time.Now().UTC(),
		RequestID: requestID,
	}
}

// NewValidationError creates a new ValidationError
func NewValidationError(field, message string, value interface{}) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
		Value:   value,
	}
}

// NewModelLoadError creates a new ModelLoadError
func NewModelLoadError(source, reason string, err error) *ModelLoadError {
	return &ModelLoadError{
		Source: source,
		Reason: reason,
		Err:    err,
	}
}
