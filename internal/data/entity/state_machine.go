package entity

import (
	"time"
)

// allowedTransitions adalah satu-satunya sumber aturan perpindahan status:
//
//	pending   -> confirmed | cancelled
//	confirmed -> active    | cancelled
//	active    -> completed | cancelled
//	completed -> (terminal)
//	cancelled -> (terminal)
var allowedTransitions = map[BookingStatus][]BookingStatus{
	BookingStatusPending:   {BookingStatusConfirmed, BookingStatusCancelled},
	BookingStatusConfirmed: {BookingStatusActive, BookingStatusCancelled},
	BookingStatusActive:    {BookingStatusCompleted, BookingStatusCancelled},
	BookingStatusCompleted: {},
	BookingStatusCancelled: {},
}

// CanTransition checks the transition table. Self-transition juga ditolak.
func CanTransition(from, to BookingStatus) bool {
	for _, allowed := range allowedTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// Transition moves the booking to a new status and stamps the matching
// lifecycle timestamp. Kalau tidak legal, return InvalidTransitionError
// dan booking tidak berubah sama sekali.
func (b *Booking) Transition(to BookingStatus, now time.Time) error {
	if !CanTransition(b.Status, to) {
		return &InvalidTransitionError{From: b.Status, To: to}
	}

	b.Status = to
	b.UpdatedAt = now

	switch to {
	case BookingStatusConfirmed:
		b.ConfirmedAt = &now
	case BookingStatusActive:
		b.StartedAt = &now
	case BookingStatusCompleted:
		b.CompletedAt = &now
	case BookingStatusCancelled:
		b.CancelledAt = &now
	}

	return nil
}
