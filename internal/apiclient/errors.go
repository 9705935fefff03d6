package apiclient

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrUnavailable wraps every failure to reach the projects API at all.
var ErrUnavailable = errors.New("projects API unavailable")

// APIError is a non-2xx answer from the projects API.
type APIError struct {
	Op         string
	StatusCode int
	// Message is the server's structured "error" field, if it sent one.
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %d %s: %s", e.Op, e.StatusCode, http.StatusText(e.StatusCode), e.Message)
	}
	return fmt.Sprintf("%s: %d %s", e.Op, e.StatusCode, http.StatusText(e.StatusCode))
}

// ServerMessage returns the structured error message carried by err, if any.
func ServerMessage(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return ""
}

// IsNotFound reports whether err is a 404 from the API.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}
