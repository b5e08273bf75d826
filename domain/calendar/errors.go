package calendar

import (
	"context"
	"errors"
)

// Domain errors for calendar operations.
var (
	// ErrInvalidArgument is returned when a request parameter is malformed
	// or names an unknown relation or day.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrNotFound is returned when a search matches no records.
	ErrNotFound = errors.New("no matching records found")

	// ErrStorageFailure is returned when the calendar store cannot be read.
	// Reads are idempotent so callers may retry.
	ErrStorageFailure = errors.New("calendar storage failure")

	// ErrConnectionFailed is returned when connection to the storage backend fails.
	ErrConnectionFailed = errors.New("storage connection failed")

	// ErrOperationTimeout is returned when a storage operation times out.
	ErrOperationTimeout = errors.New("storage operation timeout")
)

// IsRetryable reports whether err is a transient storage failure.
// Cancellation by the caller is never retryable.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrStorageFailure) && !errors.Is(err, context.Canceled)
}
