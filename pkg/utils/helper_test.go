package utils

import (
	"strings"
	"testing"
	"time"
)

func TestGenerateBookingRef(t *testing.T) {
	ref := GenerateBookingRef()

	parts := strings.Split(ref, "-")
	if len(parts) != 4 {
		t.Fatalf("expected RENT-date-time-random, got %q", ref)
	}
	if parts[0] != "RENT" {
		t.Errorf("expected RENT prefix, got %q", parts[0])
	}
	if _, err := time.Parse("20060102", parts[1]); err != nil {
		t.Errorf("expected date part, got %q", parts[1])
	}
	if _, err := time.Parse("150405", parts[2]); err != nil {
		t.Errorf("expected time part, got %q", parts[2])
	}
	if len(parts[3]) != 4 {
		t.Errorf("expected 4 digit suffix, got %q", parts[3])
	}
}

func TestParseInt(t *testing.T) {
	if got := ParseInt("25", 10); got != 25 {
		t.Errorf("expected 25, got %d", got)
	}
	if got := ParseInt("", 10); got != 10 {
		t.Errorf("expected default for empty value, got %d", got)
	}
	if got := ParseInt("abc", 10); got != 10 {
		t.Errorf("expected default for garbage, got %d", got)
	}
	if got := ParseInt("0", 10); got != 10 {
		t.Errorf("expected default for zero, got %d", got)
	}
	if got := ParseInt("-3", 10); got != 10 {
		t.Errorf("expected default for negative, got %d", got)
	}
}

func TestParseDateIsUTCDay(t *testing.T) {
	d, err := ParseDate("2024-02-01")
	if err != nil {
		t.Fatalf("ParseDate: %v", err)
	}
	want := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	if !d.Equal(want) {
		t.Errorf("expected %s, got %s", want, d)
	}

	if _, err := ParseDate("01-02-2024"); err == nil {
		t.Error("expected error for wrong layout")
	}
}

func TestCalculateTotalPages(t *testing.T) {
	tests := []struct {
		total   int64
		perPage int
		want    int
	}{
		{0, 10, 0},
		{1, 10, 1},
		{10, 10, 1},
		{11, 10, 2},
		{95, 10, 10},
		{5, 0, 0},
	}
	for _, tc := range tests {
		if got := CalculateTotalPages(tc.total, tc.perPage); got != tc.want {
			t.Errorf("CalculateTotalPages(%d, %d): expected %d, got %d", tc.total, tc.perPage, tc.want, got)
		}
	}
}

func TestCalculateOffset(t *testing.T) {
	if got := CalculateOffset(1, 20); got != 0 {
		t.Errorf("expected page 1 offset 0, got %d", got)
	}
	if got := CalculateOffset(3, 20); got != 40 {
		t.Errorf("expected page 3 offset 40, got %d", got)
	}
	if got := CalculateOffset(0, 20); got != 0 {
		t.Errorf("expected clamp to 0, got %d", got)
	}
}
