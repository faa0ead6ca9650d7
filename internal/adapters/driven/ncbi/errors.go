package ncbi

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

// ErrMissingEmail indicates the transport was created without a contact
// address.
var ErrMissingEmail = errors.New("ncbi: contact email is required")

// RateLimitError reports that NCBI throttled a request.
type RateLimitError struct {
	RetryAt time.Time
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("ncbi: rate limit exceeded, retry at %s", e.RetryAt.Format(time.RFC3339))
}

// APIError represents a non-success HTTP response.
type APIError struct {
	StatusCode int
	Message    string
	URL        string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("ncbi: API error %d: %s (URL: %s)", e.StatusCode, e.Message, e.URL)
}

// ResponseTooLargeError reports that a response body exceeded the limit.
type ResponseTooLargeError struct {
	Limit int64
}

func (e *ResponseTooLargeError) Error() string {
	return fmt.Sprintf("ncbi: response body exceeded limit of %d bytes", e.Limit)
}

// IsNotFound checks if the error indicates a missing resource.
func IsNotFound(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusNotFound
	}
	return false
}

// IsRateLimited checks if the error indicates rate limiting.
func IsRateLimited(err error) bool {
	var rateLimitErr *RateLimitError
	return errors.As(err, &rateLimitErr)
}

// IsRetryable checks if the request may succeed when repeated.
func IsRetryable(err error) bool {
	if IsRateLimited(err) {
		return true
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode >= 500
	}
	return false
}
