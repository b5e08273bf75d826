package resilience

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/felixgeelhaar/drawcal/domain/calendar"
	"github.com/felixgeelhaar/drawcal/infrastructure/storage/memory"
)

// flakyStore fails the first failures calls to FetchByYearWeek with err.
type flakyStore struct {
	*memory.Store
	failures int32
	err      error
	calls    atomic.Int32
}

func (f *flakyStore) FetchByYearWeek(ctx context.Context, year, week int) ([]calendar.Record, error) {
	if f.calls.Add(1) <= f.failures {
		return nil, f.err
	}
	return f.Store.FetchByYearWeek(ctx, year, week)
}

func newFlaky(failures int32, err error) *flakyStore {
	return &flakyStore{
		Store: memory.NewStore(
			calendar.Record{ID: 1, Year: 2025, Week: 1, Day: calendar.Monday, Am: "12", Pm: "34"},
		),
		failures: failures,
		err:      err,
	}
}

func fastRetry(attempts int) Option {
	return WithRetry(attempts, time.Millisecond)
}

func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	if cfg.MaxConcurrent != 10 {
		t.Errorf("MaxConcurrent = %d, want 10", cfg.MaxConcurrent)
	}
	if cfg.CircuitBreakerThreshold != 5 {
		t.Errorf("CircuitBreakerThreshold = %d, want 5", cfg.CircuitBreakerThreshold)
	}
	if cfg.RetryMaxAttempts != 3 {
		t.Errorf("RetryMaxAttempts = %d, want 3", cfg.RetryMaxAttempts)
	}
	if cfg.Timeout != 30*time.Second {
		t.Errorf("Timeout = %v, want 30s", cfg.Timeout)
	}
}

func TestStore_RetriesStorageFailures(t *testing.T) {
	t.Parallel()

	inner := newFlaky(2, fmt.Errorf("%w: connection reset", calendar.ErrStorageFailure))
	s := Wrap(inner, fastRetry(3))

	got, err := s.FetchByYearWeek(context.Background(), 2025, 1)
	if err != nil {
		t.Fatalf("FetchByYearWeek() error = %v", err)
	}
	if len(got) != 1 {
		t.Errorf("len = %d, want 1", len(got))
	}
	if calls := inner.calls.Load(); calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestStore_DoesNotRetryInvalidArgument(t *testing.T) {
	t.Parallel()

	inner := newFlaky(10, fmt.Errorf("%w: bad week", calendar.ErrInvalidArgument))
	s := Wrap(inner, fastRetry(3))

	_, err := s.FetchByYearWeek(context.Background(), 2025, 1)
	if !errors.Is(err, calendar.ErrInvalidArgument) {
		t.Errorf("error = %v, want ErrInvalidArgument", err)
	}
	if errors.Is(err, calendar.ErrStorageFailure) {
		t.Errorf("error = %v, should not be a storage failure", err)
	}
	if calls := inner.calls.Load(); calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestStore_ExhaustedRetriesAreStorageFailures(t *testing.T) {
	t.Parallel()

	inner := newFlaky(10, errors.New("dial tcp: refused"))
	s := Wrap(inner, fastRetry(2))

	_, err := s.FetchByYearWeek(context.Background(), 2025, 1)
	if !errors.Is(err, calendar.ErrStorageFailure) {
		t.Errorf("error = %v, want ErrStorageFailure", err)
	}
	if !calendar.IsRetryable(err) {
		t.Errorf("IsRetryable(%v) = false, want true", err)
	}
}

func TestStore_CircuitOpensAfterThreshold(t *testing.T) {
	t.Parallel()

	inner := newFlaky(100, fmt.Errorf("%w: down", calendar.ErrStorageFailure))
	s := Wrap(inner, fastRetry(1), WithCircuitBreaker(2, time.Minute))

	if state := s.CircuitBreakerState(); state.String() != "closed" {
		t.Fatalf("initial state = %v, want closed", state)
	}

	ctx := context.Background()
	for range 2 {
		_, _ = s.FetchByYearWeek(ctx, 2025, 1)
	}
	if state := s.CircuitBreakerState(); state.String() != "open" {
		t.Errorf("state = %v, want open", state)
	}

	before := inner.calls.Load()
	_, err := s.FetchByYearWeek(ctx, 2025, 1)
	if !errors.Is(err, calendar.ErrStorageFailure) {
		t.Errorf("error = %v, want ErrStorageFailure", err)
	}
	if inner.calls.Load() != before {
		t.Error("open circuit should not reach the store")
	}
}

func TestStore_PassesThroughResults(t *testing.T) {
	t.Parallel()

	s := Wrap(newFlaky(0, nil))
	ctx := context.Background()

	weeks, err := s.FetchByWeeks(ctx, []calendar.WeekKey{{Year: 2025, Week: 1}})
	if err != nil || len(weeks) != 1 {
		t.Errorf("FetchByWeeks() = %v, %v", weeks, err)
	}
	latest, err := s.FetchLatest(ctx, 5)
	if err != nil || len(latest) != 1 {
		t.Errorf("FetchLatest() = %v, %v", latest, err)
	}
	filtered, err := s.FetchFiltered(ctx, calendar.Filter{Day: calendar.Tuesday}, nil)
	if err != nil || len(filtered) != 0 {
		t.Errorf("FetchFiltered() = %v, %v", filtered, err)
	}
}

func TestStore_CanceledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := Wrap(newFlaky(0, nil))
	if _, err := s.FetchAll(ctx); err == nil {
		t.Error("FetchAll() with canceled context should fail")
	}
}
