// Package errors provides the error taxonomy shared by the store, the generator
// and the HTTP boundary.
package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// ErrorCode identifies a class of failure.
type ErrorCode string

const (
	// General errors
	ErrInternal ErrorCode = "INTERNAL_ERROR"
	ErrInvalid  ErrorCode = "INVALID_INPUT"
	ErrNotFound ErrorCode = "NOT_FOUND"

	// Storage errors
	ErrStore     ErrorCode = "STORE_ERROR"
	ErrMigration ErrorCode = "MIGRATION_FAILED"

	// Text generation errors
	ErrConfiguration   ErrorCode = "CONFIGURATION_ERROR"
	ErrExternalService ErrorCode = "EXTERNAL_SERVICE_ERROR"
	ErrResponseFormat  ErrorCode = "RESPONSE_FORMAT_ERROR"
)

// AppError represents an application error with code and message.
type AppError struct {
	Code    ErrorCode
	Message string
	Err     error
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error.
func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError.
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an existing error with an error code.
func Wrap(code ErrorCode, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// ExternalServiceError is returned when the text-generation API answers with a
// non-2xx status or cannot be reached. StatusCode is 0 for transport failures.
type ExternalServiceError struct {
	StatusCode int
	Body       string
	Err        error
}

// Error implements the error interface.
func (e *ExternalServiceError) Error() string {
	switch {
	case e.StatusCode == http.StatusForbidden:
		return fmt.Sprintf("[%s] permission denied - token needs Inference permissions: %s", ErrExternalService, e.Body)
	case e.StatusCode != 0:
		return fmt.Sprintf("[%s] API error %d: %s", ErrExternalService, e.StatusCode, e.Body)
	case e.Err != nil:
		return fmt.Sprintf("[%s] request failed: %v", ErrExternalService, e.Err)
	default:
		return fmt.Sprintf("[%s] request failed", ErrExternalService)
	}
}

// Unwrap returns the underlying transport error, if any.
func (e *ExternalServiceError) Unwrap() error {
	return e.Err
}

// CodeOf extracts the ErrorCode carried by err, or ErrInternal when err is not
// one of ours.
func CodeOf(err error) ErrorCode {
	var ext *ExternalServiceError
	if stderrors.As(err, &ext) {
		return ErrExternalService
	}
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code
	}
	return ErrInternal
}

// Is checks if an error (or anything it wraps) carries a specific code.
func Is(err error, code ErrorCode) bool {
	if err == nil {
		return false
	}
	return CodeOf(err) == code
}

// HTTPStatus maps an error to the status code reported at the HTTP boundary.
func HTTPStatus(err error) int {
	switch CodeOf(err) {
	case ErrNotFound:
		return http.StatusNotFound
	case ErrInvalid:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// PublicMessage returns the text reported to a client: the AppError message
// and its cause, without the code prefix. Errors that are not ours report
// their own text.
func PublicMessage(err error) string {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		if appErr.Err != nil {
			return appErr.Message + ": " + appErr.Err.Error()
		}
		return appErr.Message
	}
	return err.Error()
}
