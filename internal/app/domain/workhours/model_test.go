package workhours

import "testing"

func TestComputeHours(t *testing.T) {
	cases := []struct {
		start, end string
		want       float64
	}{
		{"09:00", "12:30", 3.50},
		{"09:15", "09:46", 0.52},
		{"09:00", "17:00", 8.00},
		{"13:00", "13:01", 0.02},
		{"08:30", "12:00", 3.50},
	}
	for _, tc := range cases {
		got, err := ComputeHours(tc.start, tc.end)
		if err != nil {
			t.Fatalf("ComputeHours(%s, %s): %v", tc.start, tc.end, err)
		}
		if got != tc.want {
			t.Fatalf("ComputeHours(%s, %s) = %v, want %v", tc.start, tc.end, got, tc.want)
		}
	}
}

func TestComputeHours_Invalid(t *testing.T) {
	if _, err := ComputeHours("17:00", "09:00"); err == nil {
		t.Fatal("expected error when end precedes start")
	}
	if _, err := ComputeHours("09:00", "09:00"); err == nil {
		t.Fatal("expected error for zero duration")
	}
	if _, err := ComputeHours("9am", "5pm"); err == nil {
		t.Fatal("expected error for malformed time")
	}
}

func TestParseDate(t *testing.T) {
	if _, err := ParseDate("2026-02-30"); err == nil {
		t.Fatal("expected error for impossible date")
	}
	got, err := ParseDate("2026-03-15")
	if err != nil {
		t.Fatalf("parse date: %v", err)
	}
	if got != "2026-03-15" {
		t.Fatalf("unexpected normalised date %q", got)
	}
}
