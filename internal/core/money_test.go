package core

import "testing"

func TestParseDecimalToCents(t *testing.T) {
	cases := []struct {
		in  string
		out int64
		ok  bool
	}{
		{"1", 100, true},
		{"1.0", 100, true},
		{"1.23", 123, true},
		{"1,23", 123, true},
		{"0.01", 1, true},
		{"1.005", 101, true}, // half-up rounding
		{" 2.50 ", 250, true},
		{"-1", -100, true},
		{"-12.34", -1234, true},
		{"+3", 300, true},
		{"0", 0, false},
		{"-0", 0, false},
		{"abc", 0, false},
		{"1.2.3", 0, false},
		{"", 0, false},
		{"--1", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseDecimalToCents(tc.in)
		if tc.ok {
			if err != nil || got != tc.out {
				t.Fatalf("%q expected %d, got %d (err=%v)", tc.in, tc.out, got, err)
			}
		} else {
			if err == nil {
				t.Fatalf("%q expected error", tc.in)
			}
		}
	}
}

func TestNormalizeSign(t *testing.T) {
	cases := []struct {
		kind  CategoryKind
		cents int64
		want  int64
	}{
		{CategoryIncome, 500, 500},
		{CategoryIncome, -500, 500},
		{CategoryExpense, 500, -500},
		{CategoryExpense, -500, -500},
	}
	for _, tc := range cases {
		if got := NormalizeSign(tc.kind, tc.cents); got != tc.want {
			t.Fatalf("NormalizeSign(%s, %d) = %d, want %d", tc.kind, tc.cents, got, tc.want)
		}
	}
}
