package usecase

import (
	"car-rental/internal/data/repository"
	"car-rental/internal/events"
	"car-rental/internal/payment"
	"car-rental/pkg/utils"

	"go.uber.org/zap"
)

type Service struct {
	Auth         AuthService
	User         UserService
	Vehicle      VehicleService
	Availability AvailabilityService
	Booking      BookingService
	Review       ReviewService
}

func NewService(repo *repository.Repository, config *utils.Config, publisher events.Publisher, log *zap.Logger) *Service {
	// Tanpa secret key, charge jalan lewat mock (dev / test)
	var gateway payment.Gateway
	if config.Stripe.SecretKey != "" {
		gateway = payment.NewStripeGateway(config.Stripe.SecretKey, log)
	} else {
		gateway = payment.NewMockGateway(log)
	}

	availability := NewAvailabilityService(repo, log)

	return &Service{
		Auth:         NewAuthService(repo, config, log),
		User:         NewUserService(repo.User, log),
		Vehicle:      NewVehicleService(repo, log),
		Availability: availability,
		Booking:      NewBookingService(repo, config, availability, gateway, publisher, log),
		Review:       NewReviewService(repo, log),
	}
}
