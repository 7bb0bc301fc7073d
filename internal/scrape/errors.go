package scrape

import (
	"errors"
	"fmt"
)

// ErrNoContent means congress.gov has no record for the requested day.
var ErrNoContent = errors.New("no congressional record content")

// RetryableError indicates a transient failure that can be retried.
type RetryableError struct {
	StatusCode int
	URL        string
}

func (e *RetryableError) Error() string {
	return fmt.Sprintf("retryable error fetching %s (status %d)", e.URL, e.StatusCode)
}

// StatusError is a non-retryable HTTP failure.
type StatusError struct {
	StatusCode int
	URL        string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("fetch %s: status %d", e.URL, e.StatusCode)
}

// IsRetryable checks if an error is worth retrying.
func IsRetryable(err error) bool {
	var retryErr *RetryableError
	return errors.As(err, &retryErr)
}
