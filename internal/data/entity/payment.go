package entity

import (
	"time"

	"github.com/google/uuid"
)

// Payment adalah satu attempt pembayaran untuk booking. Booking bisa punya
// beberapa payment (misal deposit dulu, sisanya belakangan).
type Payment struct {
	Base
	BookingID       uuid.UUID     `db:"booking_id"`
	PaymentMethodID uuid.UUID     `db:"payment_method_id"`
	Amount          float64       `db:"amount"`
	Currency        string        `db:"currency"`
	Status          PaymentStatus `db:"status"`
	TransactionID   *string       `db:"transaction_id"`
	PaidAt          *time.Time    `db:"paid_at"`
}
