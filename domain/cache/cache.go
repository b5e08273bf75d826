// Package cache defines the result cache used to memoize window-set searches.
// Searches are pure functions of the query and the append-only calendar, so
// a cached result stays valid until the table grows.
package cache

import (
	"context"
	"time"
)

// Cache stores opaque encoded results by key.
// Backends: in-memory LRU, Redis and Badger.
type Cache interface {
	// Get returns the value for key and whether it was present.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores value under key.
	Set(ctx context.Context, key string, value []byte, opts SetOptions) error

	// Delete removes key. Missing keys are not an error.
	Delete(ctx context.Context, key string) error

	// Exists reports whether key is present and unexpired.
	Exists(ctx context.Context, key string) (bool, error)

	// Clear removes every entry owned by this cache.
	Clear(ctx context.Context) error
}

// SetOptions configures how a value is stored.
type SetOptions struct {
	// TTL is the time-to-live. Zero means no expiration.
	TTL time.Duration
}

// Stats are hit/miss counters of a cache.
type Stats struct {
	Hits    int64 `json:"hits"`
	Misses  int64 `json:"misses"`
	Size    int64 `json:"size"`
	MaxSize int64 `json:"max_size"`
}

// StatsProvider is implemented by caches that track statistics.
type StatsProvider interface {
	Stats() Stats
}
