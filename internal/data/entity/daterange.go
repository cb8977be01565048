package entity

import (
	"fmt"
	"time"
)

// DateRange adalah half-open interval [Start, End) dalam satuan hari.
// Start adalah hari pertama sewa, End adalah hari pengembalian dan tidak
// dihitung sebagai hari sewa. Dengan half-open, mobil yang kembali tanggal
// 3 bisa langsung disewa orang lain mulai tanggal 3 (same-day turnover).
type DateRange struct {
	Start time.Time
	End   time.Time
}

// NewDateRange builds a range from day-precision times.
// Start must be strictly before End, jadi minimal sewa 1 hari.
func NewDateRange(start, end time.Time) (DateRange, error) {
	start = DayOf(start)
	end = DayOf(end)

	if !start.Before(end) {
		return DateRange{}, ErrInvalidRange
	}

	return DateRange{Start: start, End: end}, nil
}

// DayOf truncates a timestamp to its UTC calendar day
func DayOf(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Overlaps reports whether two half-open ranges share at least one day.
// Ranges yang cuma ketemu di boundary (end == start) TIDAK overlap.
func (r DateRange) Overlaps(other DateRange) bool {
	return r.Start.Before(other.End) && other.Start.Before(r.End)
}

// Days returns the number of billable days in the range
func (r DateRange) Days() int {
	return int(r.End.Sub(r.Start).Hours() / 24)
}

func (r DateRange) String() string {
	return fmt.Sprintf("[%s, %s)", r.Start.Format("2006-01-02"), r.End.Format("2006-01-02"))
}
