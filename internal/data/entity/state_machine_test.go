package entity

import (
	"testing"
	"time"
)

func TestCanTransition(t *testing.T) {
	allowed := []struct{ from, to BookingStatus }{
		{BookingStatusPending, BookingStatusConfirmed},
		{BookingStatusPending, BookingStatusCancelled},
		{BookingStatusConfirmed, BookingStatusActive},
		{BookingStatusConfirmed, BookingStatusCancelled},
		{BookingStatusActive, BookingStatusCompleted},
		{BookingStatusActive, BookingStatusCancelled},
	}
	for _, tc := range allowed {
		if !CanTransition(tc.from, tc.to) {
			t.Errorf("expected %s -> %s allowed", tc.from, tc.to)
		}
	}

	denied := []struct{ from, to BookingStatus }{
		{BookingStatusPending, BookingStatusActive},
		{BookingStatusPending, BookingStatusCompleted},
		{BookingStatusConfirmed, BookingStatusCompleted},
		{BookingStatusCompleted, BookingStatusActive},
		{BookingStatusCompleted, BookingStatusCancelled},
		{BookingStatusCancelled, BookingStatusPending},
		{BookingStatusCancelled, BookingStatusConfirmed},
		{BookingStatusConfirmed, BookingStatusConfirmed},
	}
	for _, tc := range denied {
		if CanTransition(tc.from, tc.to) {
			t.Errorf("expected %s -> %s denied", tc.from, tc.to)
		}
	}
}

func TestTransitionStampsTimestamps(t *testing.T) {
	b := &Booking{Status: BookingStatusPending}
	now := time.Date(2024, 2, 1, 10, 0, 0, 0, time.UTC)

	if err := b.Transition(BookingStatusConfirmed, now); err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if b.Status != BookingStatusConfirmed {
		t.Fatalf("expected confirmed, got %s", b.Status)
	}
	if b.ConfirmedAt == nil || !b.ConfirmedAt.Equal(now) {
		t.Fatalf("expected ConfirmedAt stamped at %s", now)
	}

	later := now.Add(24 * time.Hour)
	if err := b.Transition(BookingStatusActive, later); err != nil {
		t.Fatalf("start: %v", err)
	}
	if b.StartedAt == nil || !b.StartedAt.Equal(later) {
		t.Fatalf("expected StartedAt stamped at %s", later)
	}

	done := later.Add(48 * time.Hour)
	if err := b.Transition(BookingStatusCompleted, done); err != nil {
		t.Fatalf("complete: %v", err)
	}
	if b.CompletedAt == nil || !b.CompletedAt.Equal(done) {
		t.Fatalf("expected CompletedAt stamped at %s", done)
	}
	if b.CancelledAt != nil {
		t.Fatalf("CancelledAt should stay nil on the happy path")
	}
}

func TestTransitionRejectsIllegalMove(t *testing.T) {
	b := &Booking{Status: BookingStatusPending}
	now := time.Now()

	err := b.Transition(BookingStatusCompleted, now)
	if err == nil {
		t.Fatal("expected pending -> completed to fail")
	}
	if !IsInvalidTransition(err) {
		t.Fatalf("expected InvalidTransitionError, got %T", err)
	}

	// Booking tidak boleh berubah sama sekali waktu transisi ditolak
	if b.Status != BookingStatusPending {
		t.Fatalf("status mutated on rejected transition: %s", b.Status)
	}
	if b.CompletedAt != nil {
		t.Fatal("CompletedAt stamped on rejected transition")
	}
}

func TestTransitionTerminalStates(t *testing.T) {
	now := time.Now()

	cancelled := &Booking{Status: BookingStatusCancelled}
	for _, to := range []BookingStatus{BookingStatusPending, BookingStatusConfirmed, BookingStatusActive, BookingStatusCompleted} {
		if err := cancelled.Transition(to, now); err == nil {
			t.Errorf("expected cancelled -> %s to fail", to)
		}
	}

	completed := &Booking{Status: BookingStatusCompleted}
	if err := completed.Transition(BookingStatusCancelled, now); err == nil {
		t.Fatal("expected completed -> cancelled to fail")
	}
}

func TestOccupyingStatuses(t *testing.T) {
	occupying := map[BookingStatus]bool{
		BookingStatusPending:   true,
		BookingStatusConfirmed: true,
		BookingStatusActive:    true,
		BookingStatusCompleted: false,
		BookingStatusCancelled: false,
	}

	for status, want := range occupying {
		if got := status.IsOccupying(); got != want {
			t.Errorf("%s: expected IsOccupying=%v, got %v", status, want, got)
		}
	}

	if len(OccupyingStatuses()) != 3 {
		t.Fatalf("expected 3 occupying statuses, got %d", len(OccupyingStatuses()))
	}
}
