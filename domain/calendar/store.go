package calendar

import "context"

// Predicate selects records during a filtered scan.
type Predicate func(Record) bool

// YearRange bounds a scan to years From..To inclusive.
// A zero bound is open.
type YearRange struct {
	From int `json:"from,omitempty"`
	To   int `json:"to,omitempty"`
}

// IsZero reports whether the range is unbounded.
func (r YearRange) IsZero() bool {
	return r.From == 0 && r.To == 0
}

// Contains reports whether year falls inside the range.
func (r YearRange) Contains(year int) bool {
	if r.From != 0 && year < r.From {
		return false
	}
	if r.To != 0 && year > r.To {
		return false
	}
	return true
}

// Filter holds the parts of a scan that stores can push down to the backend.
type Filter struct {
	// Day restricts the scan to one weekday. Empty means all days.
	Day Day
	// Years restricts the scan to a year range.
	Years YearRange
}

// Matches reports whether r passes the filter.
func (f Filter) Matches(r Record) bool {
	if f.Day != "" && r.Day != f.Day {
		return false
	}
	return f.Years.Contains(r.Year)
}

// Store is the read-only contract over the draw calendar table.
// Implementations may be PostgreSQL, SQLite, in-memory, or decorators.
// Every method returning several records orders them by ascending ID
// unless stated otherwise.
type Store interface {
	// FetchAll returns every record.
	FetchAll(ctx context.Context) ([]Record, error)

	// FetchByYearWeek returns the records of one calendar week.
	FetchByYearWeek(ctx context.Context, year, week int) ([]Record, error)

	// FetchByWeeks returns the records of several weeks in one round trip.
	// Weeks with no records are absent from the result.
	FetchByWeeks(ctx context.Context, keys []WeekKey) (map[WeekKey][]Record, error)

	// FetchByYear returns the records of one year.
	FetchByYear(ctx context.Context, year int) ([]Record, error)

	// FetchLatest returns the n records with the highest IDs, ascending.
	FetchLatest(ctx context.Context, n int) ([]Record, error)

	// FetchFiltered returns the records passing filter and predicate.
	// A nil predicate accepts every record that passes the filter.
	FetchFiltered(ctx context.Context, filter Filter, predicate Predicate) ([]Record, error)
}
