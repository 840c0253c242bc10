package core

import (
	"math"
	"testing"
)

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in  string
		out float64
		ok  bool
	}{
		{"1", 1, true},
		{"1.0", 1, true},
		{"1.23", 1.23, true},
		{"1,23", 1.23, true},
		{"0.01", 0.01, true},
		{" 2.50 ", 2.5, true},
		{"-1", 0, false},
		{"0", 0, false},
		{"abc", 0, false},
		{"1.2.3", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseAmount(tc.in)
		if tc.ok {
			if err != nil || got != tc.out {
				t.Fatalf("%q expected %v, got %v (err=%v)", tc.in, tc.out, got, err)
			}
		} else if err == nil {
			t.Fatalf("%q expected error", tc.in)
		}
	}
}

func TestRoundCurrency(t *testing.T) {
	cases := []struct {
		in, out float64
	}{
		{2.345, 2.35},
		{2.344, 2.34},
		{-2.345, -2.35},
		{100, 100},
		{math.NaN(), 0},
		{math.Inf(1), 0},
	}
	for _, tc := range cases {
		if got := RoundCurrency(tc.in); got != tc.out {
			t.Errorf("RoundCurrency(%v) = %v, want %v", tc.in, got, tc.out)
		}
	}
}

func TestFinite(t *testing.T) {
	if Finite(math.NaN()) != 0 || Finite(math.Inf(-1)) != 0 {
		t.Fatal("non-finite values should map to 0")
	}
	if Finite(3.5) != 3.5 {
		t.Fatal("finite values should pass through")
	}
}
