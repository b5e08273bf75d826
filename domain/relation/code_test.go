package relation

import "testing"

func TestEligible(t *testing.T) {
	t.Parallel()

	tests := []struct {
		code string
		want bool
	}{
		{"00", true},
		{"37", true},
		{"aa", false},
		{"", false},
		{"7", false},
		{"123", false},
		{"1a", false},
		{" 1", false},
	}

	for _, tt := range tests {
		if got := Eligible(tt.code); got != tt.want {
			t.Errorf("Eligible(%q) = %v, want %v", tt.code, got, tt.want)
		}
	}
}

func TestBreakValue(t *testing.T) {
	t.Parallel()

	tests := []struct {
		code   string
		want   int
		wantOK bool
	}{
		{"37", 0, true},
		{"15", 6, true},
		{"99", 8, true},
		{"00", 0, true},
		{"aa", 0, false},
		{"", 0, false},
	}

	for _, tt := range tests {
		got, ok := BreakValue(tt.code)
		if ok != tt.wantOK || got != tt.want {
			t.Errorf("BreakValue(%q) = (%d, %v), want (%d, %v)", tt.code, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestDigits(t *testing.T) {
	t.Parallel()

	if d, ok := DigitOne("47"); !ok || d != 4 {
		t.Errorf("DigitOne(47) = (%d, %v), want (4, true)", d, ok)
	}
	if d, ok := DigitTwo("47"); !ok || d != 7 {
		t.Errorf("DigitTwo(47) = (%d, %v), want (7, true)", d, ok)
	}
	if _, ok := DigitOne("aa"); ok {
		t.Error("DigitOne(aa) should not be defined")
	}
}

func TestAdjacent(t *testing.T) {
	t.Parallel()

	tests := []struct {
		a, b int
		want bool
	}{
		{9, 0, true},
		{0, 9, true},
		{3, 4, true},
		{4, 3, true},
		{3, 5, false},
		{5, 5, false},
		{0, 5, false},
	}

	for _, tt := range tests {
		if got := Adjacent(tt.a, tt.b); got != tt.want {
			t.Errorf("Adjacent(%d, %d) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestField_Value(t *testing.T) {
	t.Parallel()

	tests := []struct {
		field  Field
		code   string
		want   string
		wantOK bool
	}{
		{FieldCode, "37", "37", true},
		{FieldBreak, "37", "0", true},
		{FieldDigitOne, "37", "3", true},
		{FieldDigitTwo, "37", "7", true},
		{FieldCode, "aa", "", false},
		{FieldBreak, "aa", "", false},
	}

	for _, tt := range tests {
		got, ok := tt.field.Value(tt.code)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("%s.Value(%q) = (%q, %v), want (%q, %v)", tt.field, tt.code, got, ok, tt.want, tt.wantOK)
		}
	}
}
