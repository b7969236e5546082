package client

import (
	"errors"
	"fmt"
	"net/http"
)

// APIError is a non-2xx response decoded from the server's error body.
type APIError struct {
	Status  int                 `json:"-"`
	Title   string              `json:"error"`
	Message string              `json:"message"`
	Code    string              `json:"code"`
	Details map[string][]string `json:"details"`
}

func (e *APIError) Error() string {
	if e.Message != "" && e.Message != e.Title {
		return fmt.Sprintf("%d %s: %s", e.Status, e.Title, e.Message)
	}
	return fmt.Sprintf("%d %s", e.Status, e.Title)
}

// IsUnauthorized reports whether err is a 401 from the API.
func IsUnauthorized(err error) bool {
	return statusOf(err) == http.StatusUnauthorized
}

// IsNotFound reports whether err is a 404 from the API.
func IsNotFound(err error) bool {
	return statusOf(err) == http.StatusNotFound
}

// FieldErrors extracts per-field messages from a validation failure.
func FieldErrors(err error) map[string][]string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && len(apiErr.Details) > 0 {
		return apiErr.Details
	}
	return nil
}

func statusOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}
