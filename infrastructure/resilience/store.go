// Package resilience wraps calendar stores with bulkhead, circuit breaker,
// timeout and retry policies using fortify.
package resilience

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/felixgeelhaar/fortify/bulkhead"
	"github.com/felixgeelhaar/fortify/circuitbreaker"
	"github.com/felixgeelhaar/fortify/retry"

	"github.com/felixgeelhaar/drawcal/domain/calendar"
)

// Config configures the resilient store.
type Config struct {
	// MaxConcurrent limits concurrent store calls.
	MaxConcurrent int

	// CircuitBreakerThreshold is the number of consecutive failures before opening.
	CircuitBreakerThreshold int

	// CircuitBreakerTimeout is how long the circuit stays open.
	CircuitBreakerTimeout time.Duration

	RetryMaxAttempts       int
	RetryInitialDelay      time.Duration
	RetryBackoffMultiplier float64

	// Timeout bounds each store call including its retries.
	Timeout time.Duration
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() Config {
	return Config{
		MaxConcurrent:           10,
		CircuitBreakerThreshold: 5,
		CircuitBreakerTimeout:   30 * time.Second,
		RetryMaxAttempts:        3,
		RetryInitialDelay:       100 * time.Millisecond,
		RetryBackoffMultiplier:  2.0,
		Timeout:                 30 * time.Second,
	}
}

// Store is a calendar.Store decorator.
// Composition order: bulkhead → timeout → circuit breaker → retry.
// Only storage failures are retried.
type Store struct {
	inner    calendar.Store
	bulkhead bulkhead.Bulkhead[any]
	breaker  circuitbreaker.CircuitBreaker[any]
	retry    retry.Retry[any]
	timeout  time.Duration
}

// New wraps inner with the policies in cfg.
func New(inner calendar.Store, cfg Config) *Store {
	defaults := DefaultConfig()
	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = defaults.MaxConcurrent
	}
	if cfg.CircuitBreakerThreshold <= 0 {
		cfg.CircuitBreakerThreshold = defaults.CircuitBreakerThreshold
	}
	if cfg.RetryMaxAttempts <= 0 {
		cfg.RetryMaxAttempts = 1
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaults.Timeout
	}
	threshold := uint32(cfg.CircuitBreakerThreshold) // #nosec G115 -- positive, checked above

	return &Store{
		inner: inner,
		bulkhead: bulkhead.New[any](bulkhead.Config{
			MaxConcurrent: cfg.MaxConcurrent,
		}),
		breaker: circuitbreaker.New[any](circuitbreaker.Config{
			MaxRequests: uint32(cfg.MaxConcurrent), // #nosec G115 -- positive, checked above
			Interval:    cfg.CircuitBreakerTimeout,
			Timeout:     cfg.CircuitBreakerTimeout,
			ReadyToTrip: func(counts circuitbreaker.Counts) bool {
				return counts.ConsecutiveFailures >= threshold
			},
		}),
		retry: retry.New[any](retry.Config{
			MaxAttempts:   cfg.RetryMaxAttempts,
			InitialDelay:  cfg.RetryInitialDelay,
			BackoffPolicy: retry.BackoffExponential,
			Multiplier:    cfg.RetryBackoffMultiplier,
			NonRetryableErrors: []error{
				calendar.ErrInvalidArgument,
				calendar.ErrNotFound,
				context.Canceled,
			},
		}),
		timeout: cfg.Timeout,
	}
}

// CircuitBreakerState returns the current state of the circuit breaker.
func (s *Store) CircuitBreakerState() circuitbreaker.State {
	return s.breaker.State()
}

// call runs op through every policy and restores its result type.
func call[T any](ctx context.Context, s *Store, op func(context.Context) (T, error)) (T, error) {
	var zero T

	result, err := s.bulkhead.Execute(ctx, func(ctx context.Context) (any, error) {
		ctx, cancel := context.WithTimeout(ctx, s.timeout)
		defer cancel()

		return s.breaker.Execute(ctx, func(ctx context.Context) (any, error) {
			return s.retry.Do(ctx, func(ctx context.Context) (any, error) {
				return op(ctx)
			})
		})
	})
	if err != nil {
		return zero, classify(err)
	}

	typed, ok := result.(T)
	if !ok && result != nil {
		return zero, fmt.Errorf("%w: unexpected result type %T", calendar.ErrStorageFailure, result)
	}
	return typed, nil
}

// classify makes policy rejections (open circuit, full bulkhead, timeout)
// recognizable as storage failures.
func classify(err error) error {
	switch {
	case errors.Is(err, calendar.ErrStorageFailure),
		errors.Is(err, calendar.ErrInvalidArgument),
		errors.Is(err, calendar.ErrNotFound):
		return err
	case errors.Is(err, context.DeadlineExceeded):
		return errors.Join(calendar.ErrStorageFailure, calendar.ErrOperationTimeout, err)
	default:
		return errors.Join(calendar.ErrStorageFailure, err)
	}
}

// FetchAll implements calendar.Store.
func (s *Store) FetchAll(ctx context.Context) ([]calendar.Record, error) {
	return call(ctx, s, s.inner.FetchAll)
}

// FetchByYearWeek implements calendar.Store.
func (s *Store) FetchByYearWeek(ctx context.Context, year, week int) ([]calendar.Record, error) {
	return call(ctx, s, func(ctx context.Context) ([]calendar.Record, error) {
		return s.inner.FetchByYearWeek(ctx, year, week)
	})
}

// FetchByWeeks implements calendar.Store.
func (s *Store) FetchByWeeks(ctx context.Context, keys []calendar.WeekKey) (map[calendar.WeekKey][]calendar.Record, error) {
	return call(ctx, s, func(ctx context.Context) (map[calendar.WeekKey][]calendar.Record, error) {
		return s.inner.FetchByWeeks(ctx, keys)
	})
}

// FetchByYear implements calendar.Store.
func (s *Store) FetchByYear(ctx context.Context, year int) ([]calendar.Record, error) {
	return call(ctx, s, func(ctx context.Context) ([]calendar.Record, error) {
		return s.inner.FetchByYear(ctx, year)
	})
}

// FetchLatest implements calendar.Store.
func (s *Store) FetchLatest(ctx context.Context, n int) ([]calendar.Record, error) {
	return call(ctx, s, func(ctx context.Context) ([]calendar.Record, error) {
		return s.inner.FetchLatest(ctx, n)
	})
}

// FetchFiltered implements calendar.Store.
func (s *Store) FetchFiltered(ctx context.Context, filter calendar.Filter, predicate calendar.Predicate) ([]calendar.Record, error) {
	return call(ctx, s, func(ctx context.Context) ([]calendar.Record, error) {
		return s.inner.FetchFiltered(ctx, filter, predicate)
	})
}

var _ calendar.Store = (*Store)(nil)
