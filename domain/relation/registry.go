package relation

import (
	"fmt"
	"sort"

	"github.com/felixgeelhaar/drawcal/domain/calendar"
)

// Registry maps relation names to their definitions.
// It is immutable after construction and safe for concurrent use.
type Registry struct {
	defs  map[string]Definition
	names []string
}

// NewRegistry validates the definitions and builds a registry.
func NewRegistry(defs ...Definition) (*Registry, error) {
	r := &Registry{defs: make(map[string]Definition, len(defs))}
	for _, d := range defs {
		if err := d.Validate(); err != nil {
			return nil, err
		}
		if _, ok := r.defs[d.Name]; ok {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateRelation, d.Name)
		}
		r.defs[d.Name] = d
		r.names = append(r.names, d.Name)
	}
	sort.Strings(r.names)
	return r, nil
}

// Lookup returns the definition registered under name.
func (r *Registry) Lookup(name string) (Definition, error) {
	d, ok := r.defs[name]
	if !ok {
		return Definition{}, fmt.Errorf("%w: %w: %q", calendar.ErrInvalidArgument, ErrUnknownRelation, name)
	}
	return d, nil
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}

// Definitions returns every definition sorted by name.
func (r *Registry) Definitions() []Definition {
	out := make([]Definition, 0, len(r.names))
	for _, n := range r.names {
		out = append(out, r.defs[n])
	}
	return out
}

// Len returns the number of registered relations.
func (r *Registry) Len() int {
	return len(r.defs)
}

var defaultRegistry = mustRegistry(Builtin()...)

// Default returns the registry of built-in relations.
func Default() *Registry {
	return defaultRegistry
}

func mustRegistry(defs ...Definition) *Registry {
	r, err := NewRegistry(defs...)
	if err != nil {
		panic(err)
	}
	return r
}

func same(name string, f Field) Definition {
	return Definition{Name: name, Kind: KindSame, AmField: f, PmField: f}
}

func memberBoth(name string, s SetName) Definition {
	return Definition{Name: name, Kind: KindMemberBoth, First: s}
}

func crossSet(name string, a, b SetName) Definition {
	return Definition{Name: name, Kind: KindCrossSet, First: a, Second: b}
}

func digitPair(name string, s SetName, am, pm Field) Definition {
	return Definition{Name: name, Kind: KindDigitPair, First: s, AmField: am, PmField: pm}
}

// Builtin returns the built-in relation table. Adding a relation means
// adding a row here.
func Builtin() []Definition {
	one := func(name string) Param { return Param{Name: name, Width: 1} }

	return []Definition{
		same("samepair", FieldCode),
		same("samebreakpair", FieldBreak),
		same("dgoneonesamepair", FieldDigitOne),

		memberBoth("brotherpair", Brother),
		memberBoth("natsatpair", Natsat),
		memberBoth("powerpair", Power),
		memberBoth("tnatsatpair", TNatsat),
		memberBoth("tpowerpair", TPower),

		crossSet("brothernatsatpair", Brother, Natsat),
		crossSet("natsatbrotherpair", Natsat, Brother),
		crossSet("brotherpadetharpair", Brother, Padethar),
		crossSet("natsatpadetharpair", Natsat, Padethar),
		crossSet("padetharnatsatpair", Padethar, Natsat),
		crossSet("padetharpowerpair", Padethar, Power),
		crossSet("natsatdoublepair", Natsat, Double),
		crossSet("doublebrotherpair", Double, Brother),
		crossSet("tnatsatdoublepair", TNatsat, Double),
		crossSet("tnatsatpowerpair", TNatsat, Power),
		crossSet("tnatsattpowerpair", TNatsat, TPower),
		crossSet("tpowerdoublepair", TPower, Double),
		crossSet("tenspowerpair", Tens, Power),
		crossSet("tensdoublepair", Tens, Double),

		{Name: "breakbrotherpair", Kind: KindAdjacent, AmField: FieldBreak, PmField: FieldBreak},
		{Name: "dgonetwobrotherpair", Kind: KindAdjacent, AmField: FieldDigitOne, PmField: FieldDigitTwo},

		digitPair("dgoneonenatsatpair", Natsat, FieldDigitOne, FieldDigitOne),
		digitPair("dgonetwonatsatpair", Natsat, FieldDigitOne, FieldDigitTwo),
		digitPair("dgonetwopowerpair", Power, FieldDigitOne, FieldDigitTwo),
		digitPair("dgtwoonenatsatpair", Natsat, FieldDigitTwo, FieldDigitOne),
		digitPair("dgtwoonepowerpair", Power, FieldDigitTwo, FieldDigitOne),

		{Name: "breakpair", Kind: KindExactPair, AmField: FieldBreak, PmField: FieldBreak,
			Params: []Param{one("number"), one("number2")}},
		{Name: "dgtwoonepair", Kind: KindExactPair, AmField: FieldDigitTwo, PmField: FieldDigitOne,
			Params: []Param{one("number"), one("number2")}},

		{Name: "number", Kind: KindSessionEquals, AmField: FieldCode,
			Params: []Param{{Name: "number", Width: 2}}},
		{Name: "break", Kind: KindSessionEquals, AmField: FieldBreak, Params: []Param{one("number")}},
		{Name: "dgone", Kind: KindSessionEquals, AmField: FieldDigitOne, Params: []Param{one("number")}},
		{Name: "brothers", Kind: KindSessionMember, AmField: FieldCode, First: Brother},
		{Name: "double", Kind: KindSessionMember, AmField: FieldCode, First: Double},
	}
}
