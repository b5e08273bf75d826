package relation

// SetName identifies a named code set.
type SetName string

// Named code sets.
const (
	Brother  SetName = "brother"
	Natsat   SetName = "natsat"
	Power    SetName = "power"
	Double   SetName = "double"
	Padethar SetName = "padethar"
	TNatsat  SetName = "tnatsat"
	TPower   SetName = "tpower"
	Tens     SetName = "tens"
)

// Set is a closed, immutable collection of two-digit codes.
type Set struct {
	name    SetName
	codes   []string
	members map[string]struct{}
}

func newSet(name SetName, codes ...string) Set {
	members := make(map[string]struct{}, len(codes))
	for _, c := range codes {
		members[c] = struct{}{}
	}
	return Set{name: name, codes: codes, members: members}
}

// Name returns the set name.
func (s Set) Name() SetName {
	return s.name
}

// Contains reports whether code is a member.
func (s Set) Contains(code string) bool {
	_, ok := s.members[code]
	return ok
}

// Len returns the number of members.
func (s Set) Len() int {
	return len(s.codes)
}

// Members returns a copy of the codes in their canonical order.
func (s Set) Members() []string {
	out := make([]string, len(s.codes))
	copy(out, s.codes)
	return out
}

var (
	brotherSet = newSet(Brother,
		"01", "12", "23", "34", "45", "56", "67", "78", "89", "90",
		"10", "21", "32", "43", "54", "65", "76", "87", "98", "09")

	natsatSet = newSet(Natsat,
		"07", "18", "24", "35", "69", "70", "81", "42", "53", "96")

	powerSet = newSet(Power,
		"05", "16", "27", "38", "49", "50", "61", "72", "83", "94")

	doubleSet = newSet(Double,
		"00", "11", "22", "33", "44", "55", "66", "77", "88", "99")

	padetharSet = newSet(Padethar,
		"14", "15", "17", "25", "28", "29", "36", "37", "39", "46",
		"57", "59", "68", "79", "41", "51", "71", "52", "82", "92",
		"63", "73", "93", "64", "75", "95", "86", "97")

	tnatsatSet = newSet(TNatsat,
		"19", "23", "48", "56", "70", "91", "32", "84", "65", "07")

	tpowerSet = newSet(TPower,
		"13", "26", "47", "58", "90", "31", "62", "74", "85", "09")

	tensSet = newSet(Tens,
		"10", "20", "30", "40", "50", "60", "70", "80", "90",
		"01", "02", "03", "04", "05", "06", "07", "08", "09")
)

var namedSets = map[SetName]Set{
	Brother:  brotherSet,
	Natsat:   natsatSet,
	Power:    powerSet,
	Double:   doubleSet,
	Padethar: padetharSet,
	TNatsat:  tnatsatSet,
	TPower:   tpowerSet,
	Tens:     tensSet,
}

// LookupSet returns the named set.
func LookupSet(name SetName) (Set, bool) {
	s, ok := namedSets[name]
	return s, ok
}

// Sets returns every named set in a stable order.
func Sets() []Set {
	return []Set{brotherSet, natsatSet, powerSet, doubleSet, padetharSet, tnatsatSet, tpowerSet, tensSet}
}
