package logging

import (
	"time"

	"github.com/felixgeelhaar/bolt/v3"

	"github.com/felixgeelhaar/drawcal/domain/calendar"
)

// Field is a function that applies structured data to a log event.
type Field func(*bolt.Event) *bolt.Event

// Relation adds the searched relation name.
func Relation(name string) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str("relation", name)
	}
}

// Day adds a weekday filter. Empty days are omitted.
func Day(d calendar.Day) Field {
	return func(e *bolt.Event) *bolt.Event {
		if d == "" {
			return e
		}
		return e.Str("day", string(d))
	}
}

// Week adds a (year, week) pair.
func Week(k calendar.WeekKey) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Int("year", k.Year).Int("week", k.Week)
	}
}

// Matches adds the number of matched records.
func Matches(n int) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Int("matches", n)
	}
}

// Windows adds the number of windows produced.
func Windows(n int) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Int("windows", n)
	}
}

// Count adds a generic record count.
func Count(n int) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Int("count", n)
	}
}

// Duration adds a duration field in milliseconds.
func Duration(d time.Duration) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Int64("duration_ms", d.Milliseconds())
	}
}

// Cached adds whether a result came from the cache.
func Cached(cached bool) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Bool("cached", cached)
	}
}

// RequestID adds the HTTP request ID.
func RequestID(id string) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str("request_id", id)
	}
}

// Method adds the HTTP method.
func Method(m string) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str("method", m)
	}
}

// Path adds the HTTP request path.
func Path(p string) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str("path", p)
	}
}

// Status adds the HTTP response status.
func Status(code int) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Int("status", code)
	}
}

// ErrorField adds an error field.
func ErrorField(err error) Field {
	return func(e *bolt.Event) *bolt.Event {
		if err == nil {
			return e
		}
		return e.Err(err)
	}
}

// Component adds a component field for categorization.
func Component(name string) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str("component", name)
	}
}

// Str adds a string field with custom key.
func Str(key, value string) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str(key, value)
	}
}
