package application

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/felixgeelhaar/drawcal/domain/calendar"
	"github.com/felixgeelhaar/drawcal/infrastructure/storage/memory"
	"github.com/felixgeelhaar/drawcal/infrastructure/telemetry"
)

func rec(id int64, year, week int, day calendar.Day, am, pm string) calendar.Record {
	return calendar.Record{ID: id, Year: year, Week: week, Day: day, Am: am, Pm: pm}
}

// fixture is a small calendar. samepair matches 1, 2, 5 and 7; 1 and 2
// share base week 2024-W10 and 7 sits on the 2024/2025 boundary.
func fixture() []calendar.Record {
	return []calendar.Record{
		rec(1, 2024, 10, calendar.Monday, "22", "22"),
		rec(2, 2024, 10, calendar.Tuesday, "22", "22"),
		rec(3, 2024, 11, calendar.Wednesday, "45", "13"),
		rec(4, 2024, 20, calendar.Monday, "aa", "aa"),
		rec(5, 2024, 20, calendar.Friday, "37", "37"),
		rec(6, 2025, 1, calendar.Monday, "10", "11"),
		rec(7, 2024, 52, calendar.Thursday, "55", "55"),
	}
}

// countingStore counts round trips to the wrapped store.
type countingStore struct {
	*memory.Store
	filtered atomic.Int32
	byWeeks  atomic.Int32
	byWeek   atomic.Int32
}

func newCountingStore(records ...calendar.Record) *countingStore {
	return &countingStore{Store: memory.NewStore(records...)}
}

func (s *countingStore) FetchFiltered(ctx context.Context, f calendar.Filter, p calendar.Predicate) ([]calendar.Record, error) {
	s.filtered.Add(1)
	return s.Store.FetchFiltered(ctx, f, p)
}

func (s *countingStore) FetchByWeeks(ctx context.Context, keys []calendar.WeekKey) (map[calendar.WeekKey][]calendar.Record, error) {
	s.byWeeks.Add(1)
	return s.Store.FetchByWeeks(ctx, keys)
}

func (s *countingStore) FetchByYearWeek(ctx context.Context, year, week int) ([]calendar.Record, error) {
	s.byWeek.Add(1)
	return s.Store.FetchByYearWeek(ctx, year, week)
}

var errBackend = errors.New("backend unreachable")

// failingStore fails every window fetch, or every call when failFilter is set.
type failingStore struct {
	*memory.Store
	failFilter bool
}

func (s *failingStore) FetchFiltered(ctx context.Context, f calendar.Filter, p calendar.Predicate) ([]calendar.Record, error) {
	if s.failFilter {
		return nil, errBackend
	}
	return s.Store.FetchFiltered(ctx, f, p)
}

func (s *failingStore) FetchByWeeks(context.Context, []calendar.WeekKey) (map[calendar.WeekKey][]calendar.Record, error) {
	return nil, errBackend
}

func (s *failingStore) FetchByYearWeek(context.Context, int, int) ([]calendar.Record, error) {
	return nil, errBackend
}

// duplicatingStore returns every week twice, and every week's records
// again under the next requested week.
type duplicatingStore struct {
	*memory.Store
}

func (s *duplicatingStore) FetchByWeeks(ctx context.Context, keys []calendar.WeekKey) (map[calendar.WeekKey][]calendar.Record, error) {
	got, err := s.Store.FetchByWeeks(ctx, keys)
	if err != nil {
		return nil, err
	}
	out := make(map[calendar.WeekKey][]calendar.Record, len(got))
	var prev []calendar.Record
	for _, k := range keys {
		records := got[k]
		out[k] = append(append(append([]calendar.Record{}, records...), records...), prev...)
		prev = records
	}
	return out, nil
}

func ids(records []calendar.Record) []int64 {
	out := make([]int64, len(records))
	for i, r := range records {
		out[i] = r.ID
	}
	return out
}

// recordingMetrics keeps search outcomes and error types.
type recordingMetrics struct {
	telemetry.NoopMetricsProvider

	mu       sync.Mutex
	outcomes []string
	errors   []string
}

func (m *recordingMetrics) RecordSearch(_ context.Context, _ string, _, _ int, outcome string, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.outcomes = append(m.outcomes, outcome)
}

func (m *recordingMetrics) RecordError(_ context.Context, errorType string, _ map[string]string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors = append(m.errors, errorType)
}
