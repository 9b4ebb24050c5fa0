package core

import "testing"

func TestConvertCents(t *testing.T) {
	cases := []struct {
		cents    int64
		currency string
		want     int64
		ok       bool
	}{
		{10000, "USD", 10000, true},
		{10000, "EUR", 9200, true},
		{10000, "GBP", 7900, true},
		{999, "EUR", 919, true}, // 919.08 rounds to 919
		{10000, "XXX", 0, false},
	}
	for _, tc := range cases {
		got, err := ConvertCents(tc.cents, tc.currency)
		if tc.ok {
			if err != nil || got != tc.want {
				t.Fatalf("ConvertCents(%d, %s) = %d (err=%v), want %d", tc.cents, tc.currency, got, err, tc.want)
			}
		} else if err == nil {
			t.Fatalf("ConvertCents(%d, %s) expected error", tc.cents, tc.currency)
		}
	}
}

func TestFormatAmount(t *testing.T) {
	cases := []struct {
		cents    int64
		currency string
		want     string
	}{
		{1234, "USD", "$12.34"},
		{-500, "EUR", "-€5.00"},
		{5, "USD", "$0.05"},
		{100, "ZZZ", "ZZZ 1.00"},
	}
	for _, tc := range cases {
		if got := FormatAmount(tc.cents, tc.currency); got != tc.want {
			t.Fatalf("FormatAmount(%d, %s) = %q, want %q", tc.cents, tc.currency, got, tc.want)
		}
	}
}

func TestSupportedCurrencies(t *testing.T) {
	for _, c := range SupportedCurrencies() {
		if !ValidCurrency(c) {
			t.Fatalf("%s listed but not valid", c)
		}
	}
	if ValidCurrency("DOGE") {
		t.Fatalf("DOGE should not be valid")
	}
}
