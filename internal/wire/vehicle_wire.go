package wire

import (
	"car-rental/internal/adaptor"
	"car-rental/internal/data/repository"
	"car-rental/pkg/middleware"
	"car-rental/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireVehicle(
	r chi.Router,
	vehicleHandler *adaptor.VehicleHandler,
	repo *repository.Repository,
	config *utils.Config,
	log *zap.Logger,
) {
	// ==================== PUBLIC ROUTES ====================
	// GET /api/vehicles - List vehicles with filters (public, anyone can browse)
	r.Get("/api/vehicles", vehicleHandler.GetVehicles)

	// GET /api/vehicles/{id} - Vehicle details (public)
	r.Get("/api/vehicles/{id}", vehicleHandler.GetVehicleByID)

	// GET /api/vehicles/{id}/bookings - Booked date ranges untuk kalender (public)
	r.Get("/api/vehicles/{id}/bookings", vehicleHandler.GetVehicleBookings)

	// ==================== PROTECTED ROUTES (require auth) ====================
	// Vehicle management. Ownership check ada di service layer, owner cuma
	// bisa mengelola vehicle miliknya sendiri, admin bisa semua.
	r.Group(func(r chi.Router) {
		r.Use(middleware.AuthSession(repo.Session, log))

		r.Post("/api/vehicles", vehicleHandler.CreateVehicle)        // POST /api/vehicles
		r.Put("/api/vehicles/{id}", vehicleHandler.UpdateVehicle)    // PUT /api/vehicles/{id}
		r.Delete("/api/vehicles/{id}", vehicleHandler.DeleteVehicle) // DELETE /api/vehicles/{id}
	})
}
