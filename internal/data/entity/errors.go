package entity

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidRange - start date harus sebelum end date
	ErrInvalidRange = errors.New("invalid date range: start date must be before end date")

	// ErrVehicleUnavailable - vehicle sedang maintenance / inactive / di-unlist owner
	ErrVehicleUnavailable = errors.New("vehicle is not available for booking")

	// ErrLockTimeout - gagal dapat row lock dalam batas waktu, boleh di-retry client
	ErrLockTimeout = errors.New("vehicle is busy processing another booking, please try again")
)

// InvalidTransitionError dikembalikan kalau perpindahan status booking
// tidak ada di transition table.
type InvalidTransitionError struct {
	From BookingStatus
	To   BookingStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot transition booking from %s to %s", e.From, e.To)
}

// ConflictError dikembalikan kalau date range yang diminta bentrok dengan
// booking lain yang masih occupying. Conflicts berisi booking pemenangnya.
type ConflictError struct {
	Conflicts []*Booking
}

func (e *ConflictError) Error() string {
	if len(e.Conflicts) > 1 {
		return fmt.Sprintf("requested dates conflict with %d existing bookings", len(e.Conflicts))
	}
	return "requested dates conflict with an existing booking"
}

// IsConflict reports whether err is (or wraps) a ConflictError
func IsConflict(err error) bool {
	var ce *ConflictError
	return errors.As(err, &ce)
}

// IsInvalidTransition reports whether err is (or wraps) an InvalidTransitionError
func IsInvalidTransition(err error) bool {
	var te *InvalidTransitionError
	return errors.As(err, &te)
}

// IsVehicleUnavailable reports whether err is (or wraps) ErrVehicleUnavailable
func IsVehicleUnavailable(err error) bool {
	return errors.Is(err, ErrVehicleUnavailable)
}

// IsLockTimeout reports whether err is (or wraps) ErrLockTimeout
func IsLockTimeout(err error) bool {
	return errors.Is(err, ErrLockTimeout)
}
