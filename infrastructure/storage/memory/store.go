package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"sync"

	"github.com/felixgeelhaar/drawcal/domain/calendar"
)

// Store is an in-memory implementation of calendar.Store.
// Records are kept in ascending ID order with a week index.
type Store struct {
	mu      sync.RWMutex
	records []calendar.Record
	byWeek  map[calendar.WeekKey][]int
	ids     map[int64]struct{}
}

// NewStore creates a store seeded with records.
func NewStore(records ...calendar.Record) *Store {
	s := &Store{
		byWeek: make(map[calendar.WeekKey][]int),
		ids:    make(map[int64]struct{}),
	}
	s.insert(records)
	return s
}

// LoadJSON decodes a JSON array of records into a new store.
func LoadJSON(r io.Reader) (*Store, error) {
	var records []calendar.Record
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return nil, fmt.Errorf("%w: decode records: %w", calendar.ErrInvalidArgument, err)
	}
	return NewStore(records...), nil
}

// LoadFile reads a JSON fixture file into a new store.
func LoadFile(path string) (*Store, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", calendar.ErrStorageFailure, err)
	}
	defer f.Close()
	return LoadJSON(f)
}

// Add appends records. Records with an ID already present are skipped.
// It returns the number of records added.
func (s *Store) Add(ctx context.Context, records ...calendar.Record) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return s.insert(records), nil
}

// Len returns the number of stored records.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

func (s *Store) insert(records []calendar.Record) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	added := 0
	for _, r := range records {
		if _, dup := s.ids[r.ID]; dup {
			continue
		}
		s.ids[r.ID] = struct{}{}
		s.records = append(s.records, r)
		added++
	}
	if added == 0 {
		return 0
	}

	sort.SliceStable(s.records, func(i, j int) bool {
		return s.records[i].ID < s.records[j].ID
	})
	s.byWeek = make(map[calendar.WeekKey][]int, len(s.byWeek))
	for i, r := range s.records {
		s.byWeek[r.Key()] = append(s.byWeek[r.Key()], i)
	}
	return added
}

// FetchAll returns every record.
func (s *Store) FetchAll(ctx context.Context) ([]calendar.Record, error) {
	return s.FetchFiltered(ctx, calendar.Filter{}, nil)
}

// FetchByYearWeek returns the records of one week.
func (s *Store) FetchByYearWeek(ctx context.Context, year, week int) ([]calendar.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.week(calendar.WeekKey{Year: year, Week: week}), nil
}

// FetchByWeeks returns the records of several weeks.
func (s *Store) FetchByWeeks(ctx context.Context, keys []calendar.WeekKey) (map[calendar.WeekKey][]calendar.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make(map[calendar.WeekKey][]calendar.Record, len(keys))
	for _, key := range keys {
		if records := s.week(key); len(records) > 0 {
			result[key] = records
		}
	}
	return result, nil
}

// FetchByYear returns the records of one year.
func (s *Store) FetchByYear(ctx context.Context, year int) ([]calendar.Record, error) {
	return s.FetchFiltered(ctx, calendar.Filter{Years: calendar.YearRange{From: year, To: year}}, nil)
}

// FetchLatest returns the n records with the highest IDs in ascending order.
func (s *Store) FetchLatest(ctx context.Context, n int) ([]calendar.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if n <= 0 {
		return nil, fmt.Errorf("%w: latest count must be positive, got %d", calendar.ErrInvalidArgument, n)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	start := len(s.records) - n
	if start < 0 {
		start = 0
	}
	out := make([]calendar.Record, len(s.records)-start)
	copy(out, s.records[start:])
	return out, nil
}

// FetchFiltered returns the records passing filter and predicate.
func (s *Store) FetchFiltered(ctx context.Context, filter calendar.Filter, predicate calendar.Predicate) ([]calendar.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []calendar.Record
	for _, r := range s.records {
		if !filter.Matches(r) {
			continue
		}
		if predicate != nil && !predicate(r) {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

// week must be called with the read lock held.
func (s *Store) week(key calendar.WeekKey) []calendar.Record {
	idx := s.byWeek[key]
	if len(idx) == 0 {
		return nil
	}
	out := make([]calendar.Record, 0, len(idx))
	for _, i := range idx {
		out = append(out, s.records[i])
	}
	return out
}

var _ calendar.Store = (*Store)(nil)
