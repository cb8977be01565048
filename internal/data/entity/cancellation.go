package entity

import (
	"github.com/google/uuid"
)

// Cancellation mencatat detail pembatalan booking: siapa yang batalin,
// berapa fee yang dipotong, dan berapa yang dikembalikan.
type Cancellation struct {
	BaseSimple
	BookingID       uuid.UUID `db:"booking_id"`
	CancelledByID   uuid.UUID `db:"cancelled_by_id"`
	Reason          *string   `db:"reason"`
	CancellationFee float64   `db:"cancellation_fee"`
	RefundAmount    float64   `db:"refund_amount"`
}
