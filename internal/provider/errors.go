package provider

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrUnconfigured indicates no API credentials are available. Callers must
// treat generative analysis as a disabled feature, not a transient failure.
var ErrUnconfigured = errors.New("no Gemini API keys configured")

// APIError is a non-2xx response from the Gemini API.
type APIError struct {
	StatusCode int    // HTTP status code
	Status     string // API status string, e.g. RESOURCE_EXHAUSTED
	Message    string
}

func (e *APIError) Error() string {
	if e.Status != "" {
		return fmt.Sprintf("Gemini API error (%d %s): %s", e.StatusCode, e.Status, e.Message)
	}
	return fmt.Sprintf("Gemini API error (%d): %s", e.StatusCode, e.Message)
}

// IsRetryable reports whether err is a transient provider failure: rate
// limiting, quota exhaustion, upstream overload, or a 5xx-class response.
// Everything else (including transport errors) is treated as fatal.
func IsRetryable(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	if apiErr.StatusCode == http.StatusTooManyRequests || apiErr.StatusCode >= 500 {
		return true
	}
	switch apiErr.Status {
	case "RESOURCE_EXHAUSTED", "UNAVAILABLE":
		return true
	}
	return strings.Contains(apiErr.Message, "overloaded")
}
