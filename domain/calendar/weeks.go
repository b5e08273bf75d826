package calendar

import "fmt"

// DefaultWeeksPerYear is used for years missing from the week table.
const DefaultWeeksPerYear = 52

// defaultWeekCounts is the versioned week-count table of the draw calendar.
var defaultWeekCounts = map[int]int{
	2013: 52,
	2014: 53,
	2015: 52,
	2016: 52,
	2017: 52,
	2018: 53,
	2019: 52,
	2020: 52,
	2021: 52,
	2022: 52,
	2023: 52,
	2024: 52,
	2025: 53,
}

// windowOffsets are the week offsets of a window relative to its base week.
var windowOffsets = [...]int{-2, -1, 0, 1}

// WeekKey identifies a calendar week within a year.
type WeekKey struct {
	Year int `json:"year"`
	Week int `json:"week"`
}

// String returns the key as "2025-W01".
func (k WeekKey) String() string {
	return fmt.Sprintf("%d-W%02d", k.Year, k.Week)
}

// Less orders keys chronologically.
func (k WeekKey) Less(o WeekKey) bool {
	if k.Year != o.Year {
		return k.Year < o.Year
	}
	return k.Week < o.Week
}

// WeekCalendar resolves week arithmetic across year boundaries.
// The zero value uses the default week table.
type WeekCalendar struct {
	counts map[int]int
}

// DefaultWeekCalendar returns a calendar backed by the default week table.
func DefaultWeekCalendar() WeekCalendar {
	return WeekCalendar{counts: defaultWeekCounts}
}

// NewWeekCalendar returns a calendar whose table is the default table with
// overrides applied. Non-positive counts are ignored.
func NewWeekCalendar(overrides map[int]int) WeekCalendar {
	counts := make(map[int]int, len(defaultWeekCounts)+len(overrides))
	for y, n := range defaultWeekCounts {
		counts[y] = n
	}
	for y, n := range overrides {
		if n > 0 {
			counts[y] = n
		}
	}
	return WeekCalendar{counts: counts}
}

// WeeksIn returns the number of weeks configured for year.
func (c WeekCalendar) WeeksIn(year int) int {
	counts := c.counts
	if counts == nil {
		counts = defaultWeekCounts
	}
	if n, ok := counts[year]; ok {
		return n
	}
	return DefaultWeeksPerYear
}

// Normalize moves an out-of-range week into the neighbouring year.
// It is idempotent and handles offsets spanning more than one year.
func (c WeekCalendar) Normalize(year, week int) (int, int) {
	for week < 1 {
		year--
		week += c.WeeksIn(year)
	}
	for week > c.WeeksIn(year) {
		week -= c.WeeksIn(year)
		year++
	}
	return year, week
}

// NormalizeKey is Normalize over a WeekKey.
func (c WeekCalendar) NormalizeKey(k WeekKey) WeekKey {
	y, w := c.Normalize(k.Year, k.Week)
	return WeekKey{Year: y, Week: w}
}

// Neighborhood returns the distinct normalized weeks of the window around
// base, two weeks before through one week after, in offset order.
func (c WeekCalendar) Neighborhood(base WeekKey) []WeekKey {
	keys := make([]WeekKey, 0, len(windowOffsets))
	seen := make(map[WeekKey]struct{}, len(windowOffsets))
	for _, off := range windowOffsets {
		k := c.NormalizeKey(WeekKey{Year: base.Year, Week: base.Week + off})
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		keys = append(keys, k)
	}
	return keys
}

// Table returns a copy of the configured week counts.
func (c WeekCalendar) Table() map[int]int {
	counts := c.counts
	if counts == nil {
		counts = defaultWeekCounts
	}
	out := make(map[int]int, len(counts))
	for y, n := range counts {
		out[y] = n
	}
	return out
}
