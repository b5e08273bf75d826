package calendar

import (
	"errors"
	"testing"
)

func TestDay_Order(t *testing.T) {
	t.Parallel()

	tests := []struct {
		day  Day
		want int
	}{
		{Monday, 1},
		{Tuesday, 2},
		{Wednesday, 3},
		{Thursday, 4},
		{Friday, 5},
		{Day("Saturday"), 999},
		{Day(""), 999},
	}

	for _, tt := range tests {
		if got := tt.day.Order(); got != tt.want {
			t.Errorf("%q.Order() = %d, want %d", tt.day, got, tt.want)
		}
	}
}

func TestParseDay(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input   string
		want    Day
		wantErr bool
	}{
		{"Monday", Monday, false},
		{"friday", Friday, false},
		{"WEDNESDAY", Wednesday, false},
		{"Sunday", "", true},
		{"", "", true},
		{"Mon", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()

			got, err := ParseDay(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidArgument) {
					t.Errorf("ParseDay(%q) error = %v, want ErrInvalidArgument", tt.input, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseDay(%q) unexpected error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseDay(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
