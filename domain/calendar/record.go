// Package calendar provides the domain model for the weekly draw calendar:
// records, week arithmetic, windows and the store contract.
package calendar

// Session identifies one of the two daily draws.
type Session int

// Draw sessions.
const (
	AM Session = iota
	PM
)

// String returns "am" or "pm".
func (s Session) String() string {
	if s == PM {
		return "pm"
	}
	return "am"
}

// Record is one weekday row of the draw calendar.
// Records are appended by an external ingestion process and never mutated.
type Record struct {
	// ID is strictly increasing in insertion order. It is not guaranteed
	// to follow (year, week, day) order.
	ID   int64 `json:"id"`
	Year int   `json:"years"`
	Week int   `json:"weeks"`
	Day  Day   `json:"days"`

	// Am and Pm hold the session codes: two digits, "aa" for no draw,
	// or empty when absent.
	Am string `json:"am"`
	Pm string `json:"pm"`

	// Stored sub-fields. Classification derives these from the codes;
	// they are carried through for callers that display them.
	AmBreak string `json:"amBreak,omitempty"`
	PmBreak string `json:"pmBreak,omitempty"`
	AmDgOne string `json:"amDgOne,omitempty"`
	AmDgTwo string `json:"amDgTwo,omitempty"`
	PmDgOne string `json:"pmDgOne,omitempty"`
	PmDgTwo string `json:"pmDgTwo,omitempty"`
}

// Key returns the record's (year, week).
func (r Record) Key() WeekKey {
	return WeekKey{Year: r.Year, Week: r.Week}
}

// Code returns the raw code of the given session.
func (r Record) Code(s Session) string {
	if s == PM {
		return r.Pm
	}
	return r.Am
}
