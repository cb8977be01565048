package wire

import (
	"car-rental/internal/adaptor"
	"car-rental/internal/data/repository"
	"car-rental/pkg/middleware"
	"car-rental/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireBooking(
	r chi.Router,
	bookingHandler *adaptor.BookingHandler,
	repo *repository.Repository,
	config *utils.Config,
	log *zap.Logger,
) {
	// ==================== PUBLIC ROUTES ====================
	// GET /api/vehicles/{id}/availability - Check date range availability (public)
	// Requires query params: ?start_date=2024-02-01&end_date=2024-02-05
	// Optional: exclude_booking_id untuk cek range baru booking yang sudah ada
	r.Get("/api/vehicles/{id}/availability", bookingHandler.CheckAvailability)

	// GET /api/payment-methods - List available payment methods (public)
	r.Get("/api/payment-methods", bookingHandler.GetPaymentMethods)

	// ==================== PROTECTED ROUTES (require auth) ====================
	// Group routes that require authentication
	r.Group(func(r chi.Router) {
		r.Use(middleware.AuthSession(repo.Session, log))

		// POST /api/bookings - Create new booking (authenticated users only)
		r.Post("/api/bookings", bookingHandler.CreateBooking)

		// GET /api/bookings - View booking history (user's own bookings)
		r.Get("/api/bookings", bookingHandler.GetUserBookings)

		// GET /api/bookings/{id} - Booking details (renter, vehicle owner, admin)
		r.Get("/api/bookings/{id}", bookingHandler.GetBookingByID)

		// PUT /api/bookings/{id}/reschedule - Move booking to new dates
		r.Put("/api/bookings/{id}/reschedule", bookingHandler.RescheduleBooking)

		// POST /api/bookings/{id}/cancel - Cancel booking
		r.Post("/api/bookings/{id}/cancel", bookingHandler.CancelBooking)

		// Lifecycle transitions, dijalankan pemilik vehicle atau admin
		r.Post("/api/bookings/{id}/confirm", bookingHandler.ConfirmBooking)
		r.Post("/api/bookings/{id}/start", bookingHandler.StartRental)
		r.Post("/api/bookings/{id}/complete", bookingHandler.CompleteRental)

		// POST /api/pay - Process payment for booking
		r.Post("/api/pay", bookingHandler.ProcessPayment)
	})
}
