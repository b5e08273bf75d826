package relation

import (
	"fmt"
	"strings"

	"github.com/felixgeelhaar/drawcal/domain/calendar"
)

// Kind is the shape of a relation predicate.
type Kind string

// Relation kinds. Pair kinds compare a day's AM and PM values; session kinds
// test each selected session independently.
const (
	// KindSame: am value equals pm value.
	KindSame Kind = "same"
	// KindAdjacent: single-digit values differ by one modulo 10.
	KindAdjacent Kind = "adjacent"
	// KindCrossSet: am in the first set and pm in the second.
	KindCrossSet Kind = "cross_set"
	// KindMemberBoth: am and pm both in the set.
	KindMemberBoth Kind = "member_both"
	// KindDigitPair: am digit followed by pm digit forms a code of the set.
	KindDigitPair Kind = "digit_pair"
	// KindExactPair: am value and pm value equal the two parameters.
	KindExactPair Kind = "exact_pair"
	// KindSessionMember: the session value is in the set.
	KindSessionMember Kind = "session_member"
	// KindSessionEquals: the session value equals the parameter.
	KindSessionEquals Kind = "session_equals"
)

// SessionScoped reports whether the kind honours a session filter.
func (k Kind) SessionScoped() bool {
	return k == KindSessionMember || k == KindSessionEquals
}

// Param names a parameter a relation requires.
type Param struct {
	Name  string `json:"name"`
	Width int    `json:"width"`
}

// Sessions selects which daily draws a session-scoped relation inspects.
type Sessions struct {
	AM bool `json:"am"`
	PM bool `json:"pm"`
}

// BothSessions selects AM and PM.
func BothSessions() Sessions {
	return Sessions{AM: true, PM: true}
}

// Any reports whether at least one session is selected.
func (s Sessions) Any() bool {
	return s.AM || s.PM
}

// Args are the caller-supplied inputs of a relation.
type Args struct {
	Sessions Sessions
	Number   string
	Number2  string
}

// Definition is one row of the relation registry.
type Definition struct {
	// Name doubles as the sentinel token callers must supply.
	Name string
	Kind Kind
	// AmField and PmField select what is read from each session code.
	// Session kinds read AmField from every selected session.
	AmField Field
	PmField Field
	// First and Second are the sets the kind tests against.
	First  SetName
	Second SetName
	Params []Param
}

// Validate checks that the definition is complete for its kind.
func (d Definition) Validate() error {
	if d.Name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidDefinition)
	}
	needSet := func(n SetName) error {
		if _, ok := LookupSet(n); !ok {
			return fmt.Errorf("%w: %s: unknown set %q", ErrInvalidDefinition, d.Name, n)
		}
		return nil
	}
	switch d.Kind {
	case KindSame, KindAdjacent:
		if d.Kind == KindAdjacent && (d.AmField == FieldCode || d.PmField == FieldCode) {
			return fmt.Errorf("%w: %s: adjacency needs single-digit fields", ErrInvalidDefinition, d.Name)
		}
	case KindCrossSet:
		if err := needSet(d.First); err != nil {
			return err
		}
		return needSet(d.Second)
	case KindMemberBoth, KindDigitPair, KindSessionMember:
		return needSet(d.First)
	case KindExactPair:
		if len(d.Params) != 2 {
			return fmt.Errorf("%w: %s: exact pair needs two parameters", ErrInvalidDefinition, d.Name)
		}
		if d.Params[0].Width != d.AmField.Width() || d.Params[1].Width != d.PmField.Width() {
			return fmt.Errorf("%w: %s: parameter width does not match field", ErrInvalidDefinition, d.Name)
		}
	case KindSessionEquals:
		if len(d.Params) != 1 {
			return fmt.Errorf("%w: %s: session equality needs one parameter", ErrInvalidDefinition, d.Name)
		}
		if d.Params[0].Width != d.AmField.Width() {
			return fmt.Errorf("%w: %s: parameter width does not match field", ErrInvalidDefinition, d.Name)
		}
	default:
		return fmt.Errorf("%w: %s: unknown kind %q", ErrInvalidDefinition, d.Name, d.Kind)
	}
	return nil
}

// Describe renders the predicate in words.
func (d Definition) Describe() string {
	am := "am " + d.AmField.String()
	pm := "pm " + d.PmField.String()
	switch d.Kind {
	case KindSame:
		return fmt.Sprintf("%s equals %s", am, pm)
	case KindAdjacent:
		return fmt.Sprintf("%s and %s are adjacent digits", am, pm)
	case KindCrossSet:
		return fmt.Sprintf("%s in %s, %s in %s", am, d.First, pm, d.Second)
	case KindMemberBoth:
		return fmt.Sprintf("%s and %s both in %s", am, pm, d.First)
	case KindDigitPair:
		return fmt.Sprintf("%s followed by %s forms a %s code", am, pm, d.First)
	case KindExactPair:
		return fmt.Sprintf("%s equals %s, %s equals %s", am, d.Params[0].Name, pm, d.Params[1].Name)
	case KindSessionMember:
		return fmt.Sprintf("session %s in %s", d.AmField, d.First)
	case KindSessionEquals:
		return fmt.Sprintf("session %s equals %s", d.AmField, d.Params[0].Name)
	}
	return string(d.Kind)
}

// Compile validates args against the definition and returns the record
// predicate. Errors are joined with calendar.ErrInvalidArgument.
func (d Definition) Compile(args Args) (calendar.Predicate, error) {
	if d.Kind.SessionScoped() && !args.Sessions.Any() {
		return nil, fmt.Errorf("%w: %w", calendar.ErrInvalidArgument, ErrNoSession)
	}
	values := []string{args.Number, args.Number2}
	for i, p := range d.Params {
		v := strings.TrimSpace(values[i])
		if v == "" {
			return nil, fmt.Errorf("%w: %w: %s", calendar.ErrInvalidArgument, ErrMissingParameter, p.Name)
		}
		if !validParam(v, p.Width) {
			return nil, fmt.Errorf("%w: %w: %s must be %d digit(s), got %q",
				calendar.ErrInvalidArgument, ErrMalformedParameter, p.Name, p.Width, v)
		}
		values[i] = v
	}

	first, _ := LookupSet(d.First)
	second, _ := LookupSet(d.Second)

	if d.Kind.SessionScoped() {
		sessions := make([]calendar.Session, 0, 2)
		if args.Sessions.AM {
			sessions = append(sessions, calendar.AM)
		}
		if args.Sessions.PM {
			sessions = append(sessions, calendar.PM)
		}
		var match func(string) bool
		if d.Kind == KindSessionMember {
			match = first.Contains
		} else {
			want := values[0]
			match = func(v string) bool { return v == want }
		}
		field := d.AmField
		return func(r calendar.Record) bool {
			for _, s := range sessions {
				if v, ok := field.Value(r.Code(s)); ok && match(v) {
					return true
				}
			}
			return false
		}, nil
	}

	var match func(am, pm string) bool
	switch d.Kind {
	case KindSame:
		match = func(am, pm string) bool { return am == pm }
	case KindAdjacent:
		match = func(am, pm string) bool {
			return Adjacent(digit(am[0]), digit(pm[0]))
		}
	case KindCrossSet:
		match = func(am, pm string) bool { return first.Contains(am) && second.Contains(pm) }
	case KindMemberBoth:
		match = func(am, pm string) bool { return first.Contains(am) && first.Contains(pm) }
	case KindDigitPair:
		match = func(am, pm string) bool { return first.Contains(am + pm) }
	case KindExactPair:
		x, y := values[0], values[1]
		match = func(am, pm string) bool { return am == x && pm == y }
	default:
		return nil, fmt.Errorf("%w: %w: %s", calendar.ErrInvalidArgument, ErrInvalidDefinition, d.Name)
	}

	amField, pmField := d.AmField, d.PmField
	return func(r calendar.Record) bool {
		am, ok := amField.Value(r.Am)
		if !ok {
			return false
		}
		pm, ok := pmField.Value(r.Pm)
		if !ok {
			return false
		}
		return match(am, pm)
	}, nil
}

// Info is the public listing form of a definition.
type Info struct {
	Name          string  `json:"name"`
	Kind          Kind    `json:"kind"`
	Description   string  `json:"description"`
	Params        []Param `json:"params,omitempty"`
	SessionScoped bool    `json:"session_scoped"`
}

// Info returns the listing form of the definition.
func (d Definition) Info() Info {
	return Info{
		Name:          d.Name,
		Kind:          d.Kind,
		Description:   d.Describe(),
		Params:        d.Params,
		SessionScoped: d.Kind.SessionScoped(),
	}
}
