package resilience

import (
	"time"

	"github.com/felixgeelhaar/drawcal/domain/calendar"
)

// Option configures the resilient store.
type Option func(*Config)

// WithMaxConcurrent sets the maximum concurrent store calls.
func WithMaxConcurrent(n int) Option {
	return func(c *Config) {
		c.MaxConcurrent = n
	}
}

// WithCircuitBreaker sets the failure threshold and open duration.
func WithCircuitBreaker(threshold int, timeout time.Duration) Option {
	return func(c *Config) {
		c.CircuitBreakerThreshold = threshold
		c.CircuitBreakerTimeout = timeout
	}
}

// WithRetry sets the retry attempts and initial delay.
func WithRetry(attempts int, delay time.Duration) Option {
	return func(c *Config) {
		c.RetryMaxAttempts = attempts
		c.RetryInitialDelay = delay
	}
}

// WithTimeout sets the per-call timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Config) {
		c.Timeout = d
	}
}

// Wrap decorates inner starting from DefaultConfig.
func Wrap(inner calendar.Store, opts ...Option) *Store {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return New(inner, cfg)
}
