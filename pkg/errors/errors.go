package errors

import (
	"errors"
	"fmt"
)

// Common application errors
var (
	// Schema errors
	ErrMissingField   = errors.New("record is missing a required field")
	ErrIdenticalPair  = errors.New("preferred and rejected responses are identical")
	ErrUnknownMethod  = errors.New("unknown labeling method")
	ErrInvalidEpsilon = errors.New("invalid privacy budget: epsilon must be positive or unbounded")

	// Empty-input errors
	ErrEmptyResponses = errors.New("no candidate responses supplied")
	ErrEmptyDataset   = errors.New("dataset contains no records")
	ErrEmptyPrompts   = errors.New("no prompts supplied")

	// Generation errors
	ErrGenerationFailed = errors.New("dataset generation failed")
	ErrNoScores         = errors.New("record carries no noised scores")

	// Metric errors
	ErrPreferredNotFound = errors.New("preferred response not present in response list")

	// Storage errors (external collaborator boundary)
	ErrPromptFileMalformed = errors.New("prompt file is malformed")
	ErrDatasetWriteFailed  = errors.New("dataset write failed")
	ErrDatasetReadFailed   = errors.New("dataset read failed")
)

// ErrorType represents different categories of errors
type ErrorType string

const (
	ErrorTypeValidation    ErrorType = "validation"
	ErrorTypeGeneration    ErrorType = "generation"
	ErrorTypeMetrics       ErrorType = "metrics"
	ErrorTypeStorage       ErrorType = "storage"
	ErrorTypeConfiguration ErrorType = "configuration"
	ErrorTypeInternal      ErrorType = "internal"
)

// AppError represents an application-specific error with additional context
type AppError struct {
	Type    ErrorType              `json:"type"`
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details string                 `json:"details,omitempty"`
	Cause   error                  `json:"-"`
	Context map[string]interface{} `json:"context,omitempty"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s - %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is checks if the error matches the target
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Type == t.Type && e.Code == t.Code
}

// WithContext adds context to the error
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// WithDetails adds details to the error
func (e *AppError) WithDetails(details string) *AppError {
	e.Details = details
	return e
}

// NewAppError creates a new application error
func NewAppError(errType ErrorType, code, message string) *AppError {
	return &AppError{
		Type:    errType,
		Code:    code,
		Message: message,
	}
}

// WrapError wraps an existing error with application context
func WrapError(err error, errType ErrorType, code, message string) *AppError {
	return &AppError{
		Type:    errType,
		Code:    code,
		Message: message,
		Cause:   err,
	}
}

// NewValidationError creates a validation (schema) error
func NewValidationError(code, message string) *AppError {
	return NewAppError(ErrorTypeValidation, code, message)
}

// NewGenerationError creates a generation error
func NewGenerationError(code, message string) *AppError {
	return NewAppError(ErrorTypeGeneration, code, message)
}

// NewMetricsError creates a metric-estimation error
func NewMetricsError(code, message string) *AppError {
	return NewAppError(ErrorTypeMetrics, code, message)
}

// NewStorageError creates a storage error
func NewStorageError(code, message string) *AppError {
	return NewAppError(ErrorTypeStorage, code, message)
}

// NewConfigurationError creates a configuration error
func NewConfigurationError(code, message string) *AppError {
	return NewAppError(ErrorTypeConfiguration, code, message)
}

// NewInternalError creates an internal error
func NewInternalError(message string) *AppError {
	return NewAppError(ErrorTypeInternal, CodeInternalError, message)
}

// IsSchemaError reports whether err is a validation-class AppError. Schema
// errors are filtered silently by the generator; everything else is fatal.
func IsSchemaError(err error) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type == ErrorTypeValidation
	}
	return false
}

// Error codes for different error scenarios
const (
	// Validation error codes
	CodeMissingField  = "MISSING_FIELD"
	CodeIdenticalPair = "IDENTICAL_PAIR"
	CodeInvalidInput  = "INVALID_INPUT"

	// Generation error codes
	CodeGenerationFailed = "GENERATION_FAILED"
	CodeEmptyResponses   = "EMPTY_RESPONSES"
	CodeEmptyPrompts     = "EMPTY_PROMPTS"
	CodeInvalidEpsilon   = "INVALID_EPSILON"

	// Metric error codes
	CodeEmptyDataset      = "EMPTY_DATASET"
	CodeNoScores          = "NO_SCORES"
	CodePreferredNotFound = "PREFERRED_NOT_FOUND"

	// Storage error codes
	CodePromptFileMalformed = "PROMPT_FILE_MALFORMED"
	CodeWriteFailed         = "WRITE_FAILED"
	CodeReadFailed          = "READ_FAILED"

	// Configuration error codes
	CodeInvalidConfiguration = "INVALID_CONFIGURATION"

	// Internal error codes
	CodeInternalError = "INTERNAL_ERROR"
)
