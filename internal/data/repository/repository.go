package repository

import (
	"car-rental/pkg/database"

	"go.uber.org/zap"
)

type Repository struct {
	User          UserRepository
	Session       SessionRepository
	OTP           OTPRepository
	Vehicle       VehicleRepository
	Booking       BookingRepository
	Cancellation  CancellationRepository
	PaymentMethod PaymentMethodRepository
	Payment       PaymentRepository
	Review        ReviewRepository
}

func NewRepository(db database.PgxIface, log *zap.Logger) *Repository {
	return &Repository{
		User:          NewUserRepository(db, log),
		Session:       NewSessionRepository(db, log),
		OTP:           NewOTPRepository(db, log),
		Vehicle:       NewVehicleRepository(db, log),
		Booking:       NewBookingRepository(db, log),
		Cancellation:  NewCancellationRepository(db, log),
		PaymentMethod: NewPaymentMethodRepository(db, log),
		Payment:       NewPaymentRepository(db, log),
		Review:        NewReviewRepository(db, log),
	}
}
