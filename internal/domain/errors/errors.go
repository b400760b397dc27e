package errors

import (
	"errors"
	"fmt"
)

// Error types for different domains
type ErrorType string

const (
	ErrorTypeValidation ErrorType = "validation"
	ErrorTypeGeneration ErrorType = "generation"
	ErrorTypeEncoding   ErrorType = "encoding"
	ErrorTypeTraining   ErrorType = "training"
	ErrorTypeInternal   ErrorType = "internal"
	ErrorTypeNotFound   ErrorType = "not_found"
	ErrorTypeForbidden  ErrorType = "forbidden"
)

// AppError represents a structured application error
type AppError struct {
	Type       ErrorType              `json:"type"`
	Code       string                 `json:"code"`
	Message    string                 `json:"message"`
	Details    map[string]interface{} `json:"details,omitempty"`
	Cause      error                  `json:"-"`
	Retryable  bool                   `json:"retryable"`
	StatusCode int                    `json:"status_code"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func (e *AppError) WithDetails(details map[string]interface{}) *AppError {
	e.Details = details
	return e
}

func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// Error constructors
func NewValidationError(code, message string) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Code:       code,
		Message:    message,
		Retryable:  false,
		StatusCode: 400,
	}
}

// NewGenerationError reports invalid synthesis parameters. The pipeline
// refuses to start rather than produce a partial dataset.
func NewGenerationError(code, message string) *AppError {
	return &AppError{
		Type:       ErrorTypeGeneration,
		Code:       code,
		Message:    message,
		Retryable:  false,
		StatusCode: 500,
	}
}

// NewEncodingError reports a categorical value outside the fitted vocabulary.
func NewEncodingError(code, message string) *AppError {
	return &AppError{
		Type:       ErrorTypeEncoding,
		Code:       code,
		Message:    message,
		Retryable:  false,
		StatusCode: 500,
	}
}

// NewTrainingError reports an unlearnable dataset, such as labels that
// contain a single class.
func NewTrainingError(code, message string) *AppError {
	return &AppError{
		Type:       ErrorTypeTraining,
		Code:       code,
		Message:    message,
		Retryable:  false,
		StatusCode: 500,
	}
}

func NewNotFoundError(resource string) *AppError {
	return &AppError{
		Type:       ErrorTypeNotFound,
		Code:       "RESOURCE_NOT_FOUND",
		Message:    fmt.Sprintf("%s not found", resource),
		Retryable:  false,
		StatusCode: 404,
	}
}

func NewInternalError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeInternal,
		Code:       "INTERNAL_ERROR",
		Message:    message,
		Retryable:  true,
		StatusCode: 500,
	}
}

func NewRateLimitError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeForbidden,
		Code:       "RATE_LIMIT_EXCEEDED",
		Message:    message,
		Retryable:  true,
		StatusCode: 429,
	}
}

// Predefined common errors
var (
	ErrInvalidInput    = NewValidationError("INVALID_INPUT", "Invalid input provided")
	ErrUnknownRegion   = NewValidationError("UNKNOWN_REGION", "Region is not part of the dataset")
	ErrDatasetNotFound = NewNotFoundError("dataset")
	ErrModelNotFound   = NewNotFoundError("model")
)

// Wrap wraps an error with a message using fmt.Errorf with %w
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// WrapWithCode wraps an error and returns an AppError
func WrapWithCode(err error, code, message string) *AppError {
	appErr := NewInternalError(message).WithCause(err)
	appErr.Code = code
	return appErr
}

// IsType checks if an error is of a specific type
func IsType(err error, errorType ErrorType) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type == errorType
	}
	return false
}

// IsRetryable checks if an error is retryable
func IsRetryable(err error) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Retryable
	}
	return false
}

// GetStatusCode extracts HTTP status code from error
func GetStatusCode(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.StatusCode
	}
	return 500
}
