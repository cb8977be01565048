package request

type CreateBookingRequest struct {
	VehicleID       string  `json:"vehicle_id" validate:"required,uuid4"`
	StartDate       string  `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate         string  `json:"end_date" validate:"required,datetime=2006-01-02"`
	PickupLocation  *string `json:"pickup_location,omitempty" validate:"omitempty,max=200"`
	ReturnLocation  *string `json:"return_location,omitempty" validate:"omitempty,max=200"`
	SpecialRequests *string `json:"special_requests,omitempty" validate:"omitempty,max=500"`
}

// CheckAvailabilityRequest diisi dari query params. ExcludeBookingID dipakai
// klien yang mau cek range baru untuk booking yang sudah ada (reschedule),
// supaya booking itu tidak dihitung bentrok dengan dirinya sendiri.
type CheckAvailabilityRequest struct {
	StartDate        string  `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate          string  `json:"end_date" validate:"required,datetime=2006-01-02"`
	ExcludeBookingID *string `json:"exclude_booking_id,omitempty" validate:"omitempty,uuid4"`
}

type RescheduleBookingRequest struct {
	StartDate string `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate   string `json:"end_date" validate:"required,datetime=2006-01-02"`
}

type CancelBookingRequest struct {
	Reason *string `json:"reason,omitempty" validate:"omitempty,max=500"`
}

type ProcessPaymentRequest struct {
	BookingID       string  `json:"booking_id" validate:"required,uuid4"`
	PaymentMethodID string  `json:"payment_method_id" validate:"required,uuid4"`
	Amount          float64 `json:"amount" validate:"required,gt=0"`
	PaymentToken    *string `json:"payment_token,omitempty"`
}
