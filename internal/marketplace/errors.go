package marketplace

import (
	"errors"
	"fmt"
	"net/http"
)

// TransientError indicates a page fetch that failed in a retryable way:
// network failure, timeout, HTTP 429 or 5xx. The crawl driver retries
// these with backoff.
type TransientError struct {
	Page   int
	Status int
	Err    error
}

func (e *TransientError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("transient fetch error on page %d (status %d): %v", e.Page, e.Status, e.Err)
	}
	return fmt.Sprintf("transient fetch error on page %d: %v", e.Page, e.Err)
}

func (e *TransientError) Unwrap() error {
	return e.Err
}

// FatalError indicates a page fetch that must not be retried: a
// non-retryable 4xx status or a response body that does not match the
// expected shape.
type FatalError struct {
	Page   int
	Status int
	Err    error
}

func (e *FatalError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("fatal fetch error on page %d (status %d): %v", e.Page, e.Status, e.Err)
	}
	return fmt.Sprintf("fatal fetch error on page %d: %v", e.Page, e.Err)
}

func (e *FatalError) Unwrap() error {
	return e.Err
}

// IsTransient reports whether err should be retried by the driver.
func IsTransient(err error) bool {
	var transient *TransientError
	return errors.As(err, &transient)
}

// retryableStatus reports whether an HTTP status is worth retrying.
func retryableStatus(status int) bool {
	return status == http.StatusTooManyRequests || status >= 500
}

// ErrorClass returns a short label for metrics and logs.
func ErrorClass(err error) string {
	switch {
	case err == nil:
		return "none"
	case IsTransient(err):
		return "transient"
	default:
		return "fatal"
	}
}
