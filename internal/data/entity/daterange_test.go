package entity

import (
	"errors"
	"testing"
	"time"
)

func feb(day int) time.Time {
	return time.Date(2024, 2, day, 0, 0, 0, 0, time.UTC)
}

func TestNewDateRange(t *testing.T) {
	rng, err := NewDateRange(feb(1), feb(5))
	if err != nil {
		t.Fatalf("NewDateRange: %v", err)
	}
	if !rng.Start.Equal(feb(1)) || !rng.End.Equal(feb(5)) {
		t.Fatalf("expected [Feb 1, Feb 5), got %s", rng)
	}
	if rng.Days() != 4 {
		t.Fatalf("expected 4 billable days, got %d", rng.Days())
	}
}

func TestNewDateRangeRejectsInvalid(t *testing.T) {
	if _, err := NewDateRange(feb(5), feb(1)); !errors.Is(err, ErrInvalidRange) {
		t.Fatalf("expected ErrInvalidRange for reversed dates, got %v", err)
	}

	// Same day start dan end berarti 0 hari sewa, harus ditolak
	if _, err := NewDateRange(feb(3), feb(3)); !errors.Is(err, ErrInvalidRange) {
		t.Fatalf("expected ErrInvalidRange for zero-day range, got %v", err)
	}

	// Jam berbeda di hari yang sama tetap 0 hari setelah truncate
	sameDay := time.Date(2024, 2, 3, 8, 0, 0, 0, time.UTC)
	sameDayLater := time.Date(2024, 2, 3, 20, 0, 0, 0, time.UTC)
	if _, err := NewDateRange(sameDay, sameDayLater); !errors.Is(err, ErrInvalidRange) {
		t.Fatalf("expected ErrInvalidRange after day truncation, got %v", err)
	}
}

func TestNewDateRangeTruncatesToDay(t *testing.T) {
	start := time.Date(2024, 2, 1, 14, 30, 0, 0, time.UTC)
	end := time.Date(2024, 2, 3, 9, 15, 0, 0, time.UTC)

	rng, err := NewDateRange(start, end)
	if err != nil {
		t.Fatalf("NewDateRange: %v", err)
	}
	if !rng.Start.Equal(feb(1)) {
		t.Fatalf("expected start truncated to Feb 1 00:00 UTC, got %s", rng.Start)
	}
	if !rng.End.Equal(feb(3)) {
		t.Fatalf("expected end truncated to Feb 3 00:00 UTC, got %s", rng.End)
	}
	if rng.Days() != 2 {
		t.Fatalf("expected 2 days, got %d", rng.Days())
	}
}

func TestDayOfUsesUTC(t *testing.T) {
	jakarta := time.FixedZone("WIB", 7*3600)

	// Feb 2 jam 02:00 WIB masih Feb 1 di UTC
	local := time.Date(2024, 2, 2, 2, 0, 0, 0, jakarta)
	if got := DayOf(local); !got.Equal(feb(1)) {
		t.Fatalf("expected Feb 1 UTC, got %s", got)
	}
}

func TestOverlaps(t *testing.T) {
	base, _ := NewDateRange(feb(5), feb(10))

	cases := []struct {
		name  string
		start int
		end   int
		want  bool
	}{
		{"disjoint before", 1, 3, false},
		{"disjoint after", 12, 15, false},
		{"partial overlap front", 3, 6, true},
		{"partial overlap back", 9, 12, true},
		{"contained", 6, 8, true},
		{"containing", 1, 15, true},
		{"identical", 5, 10, true},
		{"single shared day", 9, 10, true},
	}

	for _, tc := range cases {
		other, _ := NewDateRange(feb(tc.start), feb(tc.end))
		if got := base.Overlaps(other); got != tc.want {
			t.Errorf("%s: base %s vs %s, expected overlap=%v, got %v", tc.name, base, other, tc.want, got)
		}
		// Overlap harus simetris
		if got := other.Overlaps(base); got != tc.want {
			t.Errorf("%s: reverse check expected overlap=%v, got %v", tc.name, tc.want, got)
		}
	}
}

func TestOverlapsBackToBack(t *testing.T) {
	// Mobil kembali tanggal 3, penyewa berikutnya mulai tanggal 3.
	// Half-open interval bikin dua booking ini TIDAK bentrok.
	first, _ := NewDateRange(feb(1), feb(3))
	second, _ := NewDateRange(feb(3), feb(5))

	if first.Overlaps(second) {
		t.Fatalf("expected %s and %s not to overlap (same-day turnover)", first, second)
	}
	if second.Overlaps(first) {
		t.Fatalf("expected back-to-back overlap check to be symmetric")
	}
}

func TestDateRangeString(t *testing.T) {
	rng, _ := NewDateRange(feb(1), feb(3))
	if got := rng.String(); got != "[2024-02-01, 2024-02-03)" {
		t.Fatalf("unexpected format: %s", got)
	}
}
