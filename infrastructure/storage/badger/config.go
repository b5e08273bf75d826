// Package badger provides an embedded, persistent search result cache on
// BadgerDB for single-node deployments.
package badger

import (
	"errors"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/felixgeelhaar/drawcal/domain/cache"
)

// Config configures the Badger cache.
type Config struct {
	// Dir is the data directory. Ignored when InMemory is set.
	Dir string

	// InMemory keeps everything in memory (tests).
	InMemory bool

	SyncWrites       bool
	ValueLogFileSize int64

	// GCDiscardRatio and GCInterval drive value log garbage collection.
	// A zero interval disables it.
	GCDiscardRatio float64
	GCInterval     time.Duration

	// KeyPrefix namespaces every key written by the cache.
	KeyPrefix string

	// Logger receives Badger's own logs; nil silences them.
	Logger badger.Logger
}

// Option configures the Badger cache.
type Option func(*Config)

// WithDir sets the data directory.
func WithDir(dir string) Option {
	return func(c *Config) {
		c.Dir = dir
	}
}

// WithInMemory enables in-memory storage.
func WithInMemory() Option {
	return func(c *Config) {
		c.InMemory = true
	}
}

// WithGCInterval sets the value log GC interval.
func WithGCInterval(d time.Duration) Option {
	return func(c *Config) {
		c.GCInterval = d
	}
}

// WithKeyPrefix sets the key namespace.
func WithKeyPrefix(prefix string) Option {
	return func(c *Config) {
		c.KeyPrefix = prefix
	}
}

// DefaultConfig returns sensible default configuration.
func DefaultConfig() Config {
	return Config{
		Dir:              "data/cache",
		ValueLogFileSize: 1 << 26,
		GCDiscardRatio:   0.5,
		GCInterval:       5 * time.Minute,
		KeyPrefix:        "drawcal:",
	}
}

// openDB opens a Badger database with the given configuration.
func openDB(cfg Config) (*badger.DB, error) {
	opts := badger.DefaultOptions(cfg.Dir).
		WithSyncWrites(cfg.SyncWrites).
		WithLogger(cfg.Logger)

	if cfg.InMemory {
		opts = opts.WithDir("").WithValueDir("").WithInMemory(true)
	}
	if cfg.ValueLogFileSize > 0 {
		opts = opts.WithValueLogFileSize(cfg.ValueLogFileSize)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, errors.Join(cache.ErrConnectionFailed, err)
	}
	return db, nil
}
