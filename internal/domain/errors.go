// Package domain provides the canonical types and error taxonomy for the
// token counting service.
package domain

import (
	"fmt"
	"net/http"
)

// ErrorType represents the category of an API error.
type ErrorType string

const (
	// ErrorTypeInvalidRequest indicates a malformed or invalid request.
	ErrorTypeInvalidRequest ErrorType = "invalid_request"

	// ErrorTypeAuthentication indicates an authentication failure.
	ErrorTypeAuthentication ErrorType = "authentication"

	// ErrorTypeRateLimit indicates rate limiting was triggered.
	ErrorTypeRateLimit ErrorType = "rate_limit"

	// ErrorTypeUnsupportedModel indicates the requested model is not on the
	// configured allow-list.
	ErrorTypeUnsupportedModel ErrorType = "unsupported_model"

	// ErrorTypeServer indicates an internal server error.
	ErrorTypeServer ErrorType = "server"
)

// ErrorCode provides additional specificity beyond the error type.
type ErrorCode string

const (
	ErrorCodeEmptyText          ErrorCode = "empty_text"
	ErrorCodeEmptyBatch         ErrorCode = "empty_batch"
	ErrorCodeMalformedBody      ErrorCode = "malformed_body"
	ErrorCodeInvalidCredentials ErrorCode = "invalid_credentials"
	ErrorCodeRateLimitExceeded  ErrorCode = "rate_limit_exceeded"
	ErrorCodeModelNotFound      ErrorCode = "model_not_found"
)

// APIError is a canonical error that handlers translate to an HTTP response.
type APIError struct {
	// Type is the category of error
	Type ErrorType `json:"type"`

	// Code is an optional specific error code
	Code ErrorCode `json:"code,omitempty"`

	// Message is the human-readable error message
	Message string `json:"message"`

	// StatusCode is the suggested HTTP status code
	StatusCode int `json:"-"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s (%s): %s", e.Type, e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// HTTPStatusCode returns the appropriate HTTP status code for this error.
func (e *APIError) HTTPStatusCode() int {
	if e.StatusCode != 0 {
		return e.StatusCode
	}

	switch e.Type {
	case ErrorTypeInvalidRequest:
		return http.StatusBadRequest
	case ErrorTypeAuthentication:
		return http.StatusUnauthorized
	case ErrorTypeRateLimit:
		return http.StatusTooManyRequests
	case ErrorTypeUnsupportedModel:
		return http.StatusUnprocessableEntity
	case ErrorTypeServer:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// NewAPIError creates a new API error.
func NewAPIError(errType ErrorType, message string) *APIError {
	return &APIError{
		Type:    errType,
		Message: message,
	}
}

// WithCode adds an error code to the error.
func (e *APIError) WithCode(code ErrorCode) *APIError {
	e.Code = code
	return e
}

// WithStatusCode sets a specific HTTP status code.
func (e *APIError) WithStatusCode(code int) *APIError {
	e.StatusCode = code
	return e
}

// Convenience constructors for common errors

// ErrInvalidRequest creates an invalid request error.
func ErrInvalidRequest(message string) *APIError {
	return NewAPIError(ErrorTypeInvalidRequest, message)
}

// ErrEmptyText creates the validation error for empty or whitespace-only text.
func ErrEmptyText() *APIError {
	return NewAPIError(ErrorTypeInvalidRequest, "text must not be empty").
		WithCode(ErrorCodeEmptyText)
}

// ErrEmptyBatch creates the validation error for a batch with no usable texts.
func ErrEmptyBatch() *APIError {
	return NewAPIError(ErrorTypeInvalidRequest, "batch contains no non-empty texts").
		WithCode(ErrorCodeEmptyBatch)
}

// ErrAuthentication creates an authentication error.
func ErrAuthentication(message string) *APIError {
	return NewAPIError(ErrorTypeAuthentication, message).
		WithCode(ErrorCodeInvalidCredentials)
}

// ErrRateLimit creates a rate limit error.
func ErrRateLimit(message string) *APIError {
	return NewAPIError(ErrorTypeRateLimit, message).
		WithCode(ErrorCodeRateLimitExceeded)
}

// ErrUnsupportedModel creates an unsupported model error.
func ErrUnsupportedModel(model string) *APIError {
	return NewAPIError(ErrorTypeUnsupportedModel, fmt.Sprintf("unsupported model: %s", model)).
		WithCode(ErrorCodeModelNotFound)
}

// ErrServer creates a server error.
func ErrServer(message string) *APIError {
	return NewAPIError(ErrorTypeServer, message)
}
