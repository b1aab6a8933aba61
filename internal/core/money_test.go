package core

import "testing"

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in  string
		out int64
		ok  bool
	}{
		{"1", 100, true},
		{"1.0", 100, true},
		{"1.23", 123, true},
		{"12,50", 1250, true},
		{"0.01", 1, true},
		{"1.005", 101, true}, // half away from zero
		{"-1.005", -101, true},
		{" 2.50 ", 250, true},
		{"-40", -4000, true},
		{"0", 0, true},
		{"abc", 0, false},
		{"1.2.3", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseAmount(tc.in)
		if tc.ok {
			if err != nil || got.Cents != tc.out {
				t.Fatalf("%q expected %d, got %d (err=%v)", tc.in, tc.out, got.Cents, err)
			}
		} else {
			if err == nil {
				t.Fatalf("%q expected error", tc.in)
			}
		}
	}
}

func TestMoneyFromFloat(t *testing.T) {
	cases := []struct {
		in  float64
		out int64
	}{
		{12.5, 1250},
		{-40, -4000},
		{0.615, 62}, // binary representation of 0.615 is slightly below
		{0, 0},
	}
	for _, tc := range cases {
		got, err := MoneyFromFloat(tc.in)
		if err != nil || got.Cents != tc.out {
			t.Fatalf("%v expected %d, got %d (err=%v)", tc.in, tc.out, got.Cents, err)
		}
	}
}

func TestMoneyJSONRoundTrip(t *testing.T) {
	m := Money{Cents: 1250}
	data, err := m.MarshalJSON()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != "12.5" {
		t.Fatalf("expected 12.5, got %s", data)
	}
	var back Money
	if err := back.UnmarshalJSON(data); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back != m {
		t.Fatalf("round trip mismatch: %+v != %+v", back, m)
	}
}

func TestMoneyUnmarshalCommaString(t *testing.T) {
	var m Money
	if err := m.UnmarshalJSON([]byte(`"12,50"`)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.Cents != 1250 {
		t.Fatalf("expected 1250, got %d", m.Cents)
	}
}

func TestMoneyString(t *testing.T) {
	if got := (Money{Cents: -4000}).String(); got != "-40.00" {
		t.Fatalf("expected -40.00, got %s", got)
	}
}
