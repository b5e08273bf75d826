package calendar

import (
	"encoding/json"
	"sort"
)

// Window is the ordered, id-unique set of records spanning the four weeks
// around a matched base week.
type Window struct {
	Base    WeekKey
	Records []Record
}

// MinID returns the smallest record ID in the window, or 0 when empty.
func (w Window) MinID() int64 {
	if len(w.Records) == 0 {
		return 0
	}
	lowest := w.Records[0].ID
	for _, r := range w.Records[1:] {
		if r.ID < lowest {
			lowest = r.ID
		}
	}
	return lowest
}

// MarshalJSON encodes the window as its list of records.
func (w Window) MarshalJSON() ([]byte, error) {
	if w.Records == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(w.Records)
}

// WindowSet is the ordered result of one search.
type WindowSet []Window

// MarshalJSON encodes the set as a list of record lists.
func (s WindowSet) MarshalJSON() ([]byte, error) {
	if s == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]Window(s))
}

// SortRecords orders records by weekday then ID and drops repeated IDs,
// keeping the first occurrence.
func SortRecords(records []Record) []Record {
	sorted := make([]Record, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		oi, oj := sorted[i].Day.Order(), sorted[j].Day.Order()
		if oi != oj {
			return oi < oj
		}
		return sorted[i].ID < sorted[j].ID
	})

	out := sorted[:0]
	seen := make(map[int64]struct{}, len(sorted))
	for _, r := range sorted {
		if _, ok := seen[r.ID]; ok {
			continue
		}
		seen[r.ID] = struct{}{}
		out = append(out, r)
	}
	return out
}

// SortWindows orders windows by their minimum record ID.
func SortWindows(windows []Window) {
	sort.SliceStable(windows, func(i, j int) bool {
		return windows[i].MinID() < windows[j].MinID()
	})
}

// SortByID orders records by ascending ID.
func SortByID(records []Record) {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].ID < records[j].ID
	})
}
