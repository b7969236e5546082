package errorutil

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes carried in API error bodies.
const (
	CodeValidationFailed   = "VALIDATION_FAILED"
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeConflict           = "CONFLICT"
	CodeNotFound           = "NOT_FOUND"
	CodeInternal           = "INTERNAL_ERROR"
)

// DomainError standardizes application errors.
type DomainError struct {
	Code       string
	Title      string
	Message    string
	HTTPStatus int
	Details    map[string]any
	Err        error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError constructs a DomainError.
func NewDomainError(code, title, message string, status int, details map[string]any) *DomainError {
	return &DomainError{Code: code, Title: title, Message: message, HTTPStatus: status, Details: details}
}

// NewValidationError reports malformed input. Details maps field names to their violations.
func NewValidationError(message string, details map[string]any) error {
	return NewDomainError(CodeValidationFailed, "Validation failed", message, http.StatusBadRequest, details)
}

func NewAuthenticationRequired() error {
	return NewDomainError(CodeUnauthorized, "Authentication required", "Please log in to access this resource", http.StatusUnauthorized, nil)
}

// NewInvalidCredentials is shared by the unknown-username and wrong-password paths.
func NewInvalidCredentials() error {
	return NewDomainError(CodeInvalidCredentials, "Invalid credentials", "Invalid username or password", http.StatusUnauthorized, nil)
}

func NewConflict(title, message string) error {
	return NewDomainError(CodeConflict, title, message, http.StatusConflict, nil)
}

func NewNotFound(resource string) error {
	msg := fmt.Sprintf("%s not found", resource)
	return NewDomainError(CodeNotFound, msg, msg, http.StatusNotFound, nil)
}

func NewInternalError(err error) error {
	return &DomainError{
		Code:       CodeInternal,
		Title:      "Internal server error",
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// ToDomainError converts generic errors to DomainError. Anything unrecognised is internal.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	return NewInternalError(err).(*DomainError)
}

// IsCode reports whether err is a DomainError with the given code.
func IsCode(err error, code string) bool {
	var domainErr *DomainError
	return errors.As(err, &domainErr) && domainErr.Code == code
}
