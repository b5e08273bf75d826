package calendar

import (
	"fmt"
	"strings"
)

// Day is a draw weekday as stored in the days column.
type Day string

// Draw weekdays.
const (
	Monday    Day = "Monday"
	Tuesday   Day = "Tuesday"
	Wednesday Day = "Wednesday"
	Thursday  Day = "Thursday"
	Friday    Day = "Friday"
)

// unknownDayOrder sorts unrecognized days after Friday.
const unknownDayOrder = 999

var dayOrder = map[Day]int{
	Monday:    1,
	Tuesday:   2,
	Wednesday: 3,
	Thursday:  4,
	Friday:    5,
}

// Days returns the draw weekdays in order.
func Days() []Day {
	return []Day{Monday, Tuesday, Wednesday, Thursday, Friday}
}

// Order returns the weekday position, Monday=1 through Friday=5.
func (d Day) Order() int {
	if o, ok := dayOrder[d]; ok {
		return o
	}
	return unknownDayOrder
}

// Valid reports whether d is one of the five draw weekdays.
func (d Day) Valid() bool {
	_, ok := dayOrder[d]
	return ok
}

// String returns the day name.
func (d Day) String() string {
	return string(d)
}

// ParseDay resolves a weekday name, ignoring case.
func ParseDay(s string) (Day, error) {
	for _, d := range Days() {
		if strings.EqualFold(s, string(d)) {
			return d, nil
		}
	}
	return "", fmt.Errorf("%w: invalid day %q, use Monday-Friday", ErrInvalidArgument, s)
}
