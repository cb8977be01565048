package entity

import (
	"time"

	"github.com/google/uuid"
)

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusActive    BookingStatus = "active"
	BookingStatusCompleted BookingStatus = "completed"
	BookingStatusCancelled BookingStatus = "cancelled"
)

type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusPartial  PaymentStatus = "partial"
	PaymentStatusRefunded PaymentStatus = "refunded"
	PaymentStatusFailed   PaymentStatus = "failed"
)

// IsOccupying reports whether a booking in this status masih memblokir
// tanggal kendaraan. Completed dan cancelled sudah melepas tanggalnya.
func (s BookingStatus) IsOccupying() bool {
	switch s {
	case BookingStatusPending, BookingStatusConfirmed, BookingStatusActive:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether no further transitions are possible
func (s BookingStatus) IsTerminal() bool {
	return s == BookingStatusCompleted || s == BookingStatusCancelled
}

// OccupyingStatuses returns the statuses that block vehicle dates
func OccupyingStatuses() []BookingStatus {
	return []BookingStatus{
		BookingStatusPending,
		BookingStatusConfirmed,
		BookingStatusActive,
	}
}

type Booking struct {
	BaseNoDelete
	BookingRef string        `db:"booking_ref"`
	UserID     uuid.UUID     `db:"user_id"`
	VehicleID  uuid.UUID     `db:"vehicle_id"`
	StartDate  time.Time     `db:"start_date"`
	EndDate    time.Time     `db:"end_date"`
	Status     BookingStatus `db:"status"`

	// Pricing snapshot, diambil dari vehicle saat create biar
	// perubahan tarif belakangan tidak mengubah booking lama.
	DailyRate      float64       `db:"daily_rate"`
	TotalDays      int           `db:"total_days"`
	Subtotal       float64       `db:"subtotal"`
	DiscountAmount float64       `db:"discount_amount"`
	DepositAmount  float64       `db:"deposit_amount"`
	TotalAmount    float64       `db:"total_amount"`
	PaymentStatus  PaymentStatus `db:"payment_status"`

	// Contact snapshot
	CustomerName  string `db:"customer_name"`
	CustomerEmail string `db:"customer_email"`
	CustomerPhone string `db:"customer_phone"`

	PickupLocation  string  `db:"pickup_location"`
	ReturnLocation  string  `db:"return_location"`
	SpecialRequests *string `db:"special_requests"`

	// Lifecycle timestamps, diisi saat transisi status
	ConfirmedAt *time.Time `db:"confirmed_at"`
	StartedAt   *time.Time `db:"started_at"`
	CompletedAt *time.Time `db:"completed_at"`
	CancelledAt *time.Time `db:"cancelled_at"`
}

// Range returns the booked interval as a DateRange
func (b *Booking) Range() DateRange {
	return DateRange{Start: b.StartDate, End: b.EndDate}
}

// OverlapQuery describes a lookup for bookings that may collide with a
// candidate range. ExcludeBookingID dipakai waktu reschedule supaya booking
// tidak bentrok dengan dirinya sendiri.
type OverlapQuery struct {
	VehicleID        uuid.UUID
	Range            DateRange
	Statuses         []BookingStatus
	ExcludeBookingID *uuid.UUID
}

// AvailabilityReason explains why a range is not available
type AvailabilityReason string

const (
	ReasonVehicleUnavailable AvailabilityReason = "vehicle_unavailable"
	ReasonDatesConflict      AvailabilityReason = "dates_conflict"
)

// AvailabilityResult is the outcome of an availability check.
// Reason kosong kalau Available true.
type AvailabilityResult struct {
	Available bool
	Reason    AvailabilityReason
	Conflicts []*Booking
}
