package core

import (
	"errors"
	"testing"
)

func TestParseAmountToCents(t *testing.T) {
	cases := []struct {
		in   string
		want int64
		ok   bool
	}{
		{"12.34", 1234, true},
		{"12,34", 1234, true},
		{"100", 10000, true},
		{"-45.50", -4550, true},
		{"+7", 700, true},
		{"0", 0, true},
		{"", 0, true},      // empty cell is a missing value, not an error
		{"   ", 0, true},   // same for whitespace
		{"1 250,75", 125075, true},
		{".5", 50, true},
		{"12.345", 1234, true}, // rounds down
		{"12.346", 1235, true}, // rounds up
		{"abc", 0, false},
		{"12.3.4", 0, false},
		{".", 0, false},
		{"12a", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseAmountToCents(tc.in)
		if tc.ok {
			if err != nil {
				t.Fatalf("ParseAmountToCents(%q): unexpected error %v", tc.in, err)
			}
			if got != tc.want {
				t.Fatalf("ParseAmountToCents(%q) = %d, want %d", tc.in, got, tc.want)
			}
			continue
		}
		if err == nil {
			t.Fatalf("ParseAmountToCents(%q): expected error, got %d", tc.in, got)
		}
		if !errors.Is(err, ErrParse) {
			t.Fatalf("ParseAmountToCents(%q): error %v is not ErrParse", tc.in, err)
		}
	}
}

func TestMoneyAdd(t *testing.T) {
	sum := Money{Cents: 150}.Add(Money{Cents: -50})
	if sum.Cents != 100 {
		t.Fatalf("Add = %d, want 100", sum.Cents)
	}
}

func TestMoneyUnits(t *testing.T) {
	if got := (Money{Cents: 1234}).Units(); got != 12.34 {
		t.Fatalf("Units = %v, want 12.34", got)
	}
}
