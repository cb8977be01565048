package response

import (
	"car-rental/internal/data/entity"
	"car-rental/pkg/utils"
	"time"
)

type PaymentMethodResponse struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Code     string `json:"code"`
	IsActive bool   `json:"is_active"`
}

type BookingResponse struct {
	ID             string               `json:"id"`
	BookingRef     string               `json:"booking_ref"`
	UserID         string               `json:"user_id"`
	VehicleID      string               `json:"vehicle_id"`
	VehicleName    string               `json:"vehicle_name,omitempty"`
	StartDate      string               `json:"start_date"`
	EndDate        string               `json:"end_date"`
	TotalDays      int                  `json:"total_days"`
	DailyRate      float64              `json:"daily_rate"`
	Subtotal       float64              `json:"subtotal"`
	DiscountAmount float64              `json:"discount_amount,omitempty"`
	DepositAmount  float64              `json:"deposit_amount"`
	TotalAmount    float64              `json:"total_amount"`
	Status         entity.BookingStatus `json:"status"`
	PaymentStatus  entity.PaymentStatus `json:"payment_status"`
	PickupLocation string               `json:"pickup_location,omitempty"`
	ReturnLocation string               `json:"return_location,omitempty"`
	CreatedAt      time.Time            `json:"created_at"`
}

type BookingDetailResponse struct {
	BookingResponse
	CustomerName    string                `json:"customer_name"`
	CustomerEmail   string                `json:"customer_email"`
	CustomerPhone   string                `json:"customer_phone,omitempty"`
	SpecialRequests *string               `json:"special_requests,omitempty"`
	ConfirmedAt     *time.Time            `json:"confirmed_at,omitempty"`
	StartedAt       *time.Time            `json:"started_at,omitempty"`
	CompletedAt     *time.Time            `json:"completed_at,omitempty"`
	CancelledAt     *time.Time            `json:"cancelled_at,omitempty"`
	Vehicle         *VehicleResponse      `json:"vehicle,omitempty"`
	Payments        []PaymentResponse     `json:"payments,omitempty"`
	Cancellation    *CancellationResponse `json:"cancellation,omitempty"`
}

type PaymentResponse struct {
	ID            string                `json:"id"`
	BookingID     string                `json:"booking_id"`
	PaymentMethod PaymentMethodResponse `json:"payment_method"`
	Amount        float64               `json:"amount"`
	Currency      string                `json:"currency"`
	Status        entity.PaymentStatus  `json:"status"`
	TransactionID *string               `json:"transaction_id,omitempty"`
	PaidAt        *time.Time            `json:"paid_at,omitempty"`
	CreatedAt     time.Time             `json:"created_at"`
}

type CancellationResponse struct {
	BookingID       string    `json:"booking_id"`
	Reason          *string   `json:"reason,omitempty"`
	CancellationFee float64   `json:"cancellation_fee"`
	RefundAmount    float64   `json:"refund_amount"`
	CancelledAt     time.Time `json:"cancelled_at"`
}

// BookedRangeResponse exposes a booked interval without identifying the
// renter. Dipakai di availability conflicts dan kalender vehicle.
type BookedRangeResponse struct {
	StartDate string               `json:"start_date"`
	EndDate   string               `json:"end_date"`
	Status    entity.BookingStatus `json:"status"`
}

type AvailabilityResponse struct {
	VehicleID string                `json:"vehicle_id"`
	StartDate string                `json:"start_date"`
	EndDate   string                `json:"end_date"`
	Available bool                  `json:"available"`
	Reason    string                `json:"reason,omitempty"`
	Conflicts []BookedRangeResponse `json:"conflicts,omitempty"`
}

// Helper converters
func PaymentMethodToResponse(pm *entity.PaymentMethod) PaymentMethodResponse {
	return PaymentMethodResponse{
		ID:       pm.ID.String(),
		Name:     pm.Name,
		Code:     pm.Code,
		IsActive: pm.IsActive,
	}
}

func PaymentToResponse(payment *entity.Payment, paymentMethod *entity.PaymentMethod) PaymentResponse {
	resp := PaymentResponse{
		ID:            payment.ID.String(),
		BookingID:     payment.BookingID.String(),
		Amount:        payment.Amount,
		Currency:      payment.Currency,
		Status:        payment.Status,
		TransactionID: payment.TransactionID,
		PaidAt:        payment.PaidAt,
		CreatedAt:     payment.CreatedAt,
	}

	if paymentMethod != nil {
		resp.PaymentMethod = PaymentMethodToResponse(paymentMethod)
	}

	return resp
}

func BookingToResponse(booking *entity.Booking, vehicleName string) BookingResponse {
	return BookingResponse{
		ID:             booking.ID.String(),
		BookingRef:     booking.BookingRef,
		UserID:         booking.UserID.String(),
		VehicleID:      booking.VehicleID.String(),
		VehicleName:    vehicleName,
		StartDate:      booking.StartDate.Format(utils.DateLayout),
		EndDate:        booking.EndDate.Format(utils.DateLayout),
		TotalDays:      booking.TotalDays,
		DailyRate:      booking.DailyRate,
		Subtotal:       booking.Subtotal,
		DiscountAmount: booking.DiscountAmount,
		DepositAmount:  booking.DepositAmount,
		TotalAmount:    booking.TotalAmount,
		Status:         booking.Status,
		PaymentStatus:  booking.PaymentStatus,
		PickupLocation: booking.PickupLocation,
		ReturnLocation: booking.ReturnLocation,
		CreatedAt:      booking.CreatedAt,
	}
}

func CancellationToResponse(cancellation *entity.Cancellation) CancellationResponse {
	return CancellationResponse{
		BookingID:       cancellation.BookingID.String(),
		Reason:          cancellation.Reason,
		CancellationFee: cancellation.CancellationFee,
		RefundAmount:    cancellation.RefundAmount,
		CancelledAt:     cancellation.CreatedAt,
	}
}

func BookedRangeToResponse(booking *entity.Booking) BookedRangeResponse {
	return BookedRangeResponse{
		StartDate: booking.StartDate.Format(utils.DateLayout),
		EndDate:   booking.EndDate.Format(utils.DateLayout),
		Status:    booking.Status,
	}
}

func AvailabilityToResponse(vehicleID string, rng entity.DateRange, result *entity.AvailabilityResult) AvailabilityResponse {
	resp := AvailabilityResponse{
		VehicleID: vehicleID,
		StartDate: rng.Start.Format(utils.DateLayout),
		EndDate:   rng.End.Format(utils.DateLayout),
		Available: result.Available,
		Reason:    string(result.Reason),
	}

	for _, conflict := range result.Conflicts {
		resp.Conflicts = append(resp.Conflicts, BookedRangeToResponse(conflict))
	}

	return resp
}
