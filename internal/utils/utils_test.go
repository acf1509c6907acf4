package utils

import (
	"testing"
	"time"
)

func TestAtoiDefault(t *testing.T) {
	cases := []struct {
		s    string
		def  int
		want int
	}{
		{"", 10, 10},
		{"42", 0, 42},
		{"-13", 1, -13},
		{"0012", 99, 12},
		{"x", 5, 5},
		{" 42", 7, 7}, // no trimming
		{"999999999999999999999999", -1, -1},
	}
	for _, tc := range cases {
		if got := AtoiDefault(tc.s, tc.def); got != tc.want {
			t.Errorf("AtoiDefault(%q, %d) = %d, want %d", tc.s, tc.def, got, tc.want)
		}
	}
}

func TestDayUTC(t *testing.T) {
	// A local-time evening east of UTC lands on the previous UTC day.
	loc := time.FixedZone("UTC+10", 10*3600)
	in := time.Date(2025, 3, 10, 8, 30, 0, 0, loc) // 2025-03-09T22:30Z
	got := DayUTC(in)
	want := time.Date(2025, 3, 9, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("DayUTC = %v, want %v", got, want)
	}
	if DayString(in) != "2025-03-09" {
		t.Fatalf("DayString = %s", DayString(in))
	}
}

func TestParseDayRoundTrip(t *testing.T) {
	day, err := ParseDay("2025-03-09")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if DayString(day) != "2025-03-09" {
		t.Fatalf("round trip = %s", DayString(day))
	}
	if _, err := ParseDay("03/09/2025"); err == nil {
		t.Fatal("expected error for non-canonical layout")
	}
}

func TestDaysBetween(t *testing.T) {
	a := time.Date(2025, 3, 9, 23, 59, 0, 0, time.UTC)
	b := time.Date(2025, 3, 10, 0, 1, 0, 0, time.UTC)
	// Buckets, not elapsed hours, drive the distance.
	if got := DaysBetween(a, b); got != 1 {
		t.Fatalf("DaysBetween = %d, want 1", got)
	}
	if got := DaysBetween(b, a); got != -1 {
		t.Fatalf("reverse = %d, want -1", got)
	}
	if got := DaysBetween(a, a); got != 0 {
		t.Fatalf("same = %d, want 0", got)
	}
}
