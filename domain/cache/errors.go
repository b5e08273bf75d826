package cache

import "errors"

// Domain errors for cache operations.
var (
	// ErrInvalidKey is returned for empty keys.
	ErrInvalidKey = errors.New("invalid cache key")

	// ErrConnectionFailed is returned when the cache backend is unreachable.
	ErrConnectionFailed = errors.New("cache connection failed")

	// ErrOperationTimeout is returned when a cache operation times out.
	ErrOperationTimeout = errors.New("cache operation timeout")
)
