package genai

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// APIError is a non-2xx response from the backend, or a failed long-running
// operation.
type APIError struct {
	StatusCode int
	Status     string
	Message    string
}

func (e *APIError) Error() string {
	if e.Status != "" {
		return fmt.Sprintf("genai: api error %d %s: %s", e.StatusCode, e.Status, e.Message)
	}
	return fmt.Sprintf("genai: api error %d: %s", e.StatusCode, e.Message)
}

// TextResponseError means the model answered with prose instead of the
// requested media, usually a safety refusal.
type TextResponseError struct {
	Text string
}

func (e *TextResponseError) Error() string {
	return fmt.Sprintf("genai: model returned text instead of media: %s", e.Text)
}

// IsTransient reports whether an error is worth retrying: capacity or
// rate-limit failures that tend to clear on their own.
func IsTransient(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	switch apiErr.StatusCode {
	case http.StatusServiceUnavailable, http.StatusTooManyRequests:
		return true
	}
	msg := strings.ToLower(apiErr.Message)
	for _, marker := range []string{"overloaded", "rate limit", "resource exhausted", "quota"} {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}

// IsAuth reports whether an error points at the key itself rather than the
// request, so the caller can flag the credential for reselection.
func IsAuth(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	switch apiErr.StatusCode {
	case http.StatusForbidden, http.StatusNotFound, http.StatusUnauthorized:
		return true
	}
	msg := strings.ToLower(apiErr.Message)
	return strings.Contains(msg, "permission denied") || strings.Contains(msg, "api key not valid")
}
