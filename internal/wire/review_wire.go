package wire

import (
	"car-rental/internal/adaptor"
	"car-rental/internal/data/repository"
	"car-rental/pkg/middleware"
	"car-rental/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireReview(
	r chi.Router,
	reviewHandler *adaptor.ReviewHandler,
	repo *repository.Repository,
	config *utils.Config,
	log *zap.Logger,
) {
	// ==================== PUBLIC ROUTES ====================
	// GET /api/vehicles/{id}/reviews - View vehicle reviews (public)
	r.Get("/api/vehicles/{id}/reviews", reviewHandler.GetVehicleReviews)

	// GET /api/vehicles/{id}/review-stats - View rating statistics (public)
	r.Get("/api/vehicles/{id}/review-stats", reviewHandler.GetVehicleReviewStats)

	// ==================== PROTECTED ROUTES (require auth) ====================
	// Group routes that require authentication
	r.Group(func(r chi.Router) {
		r.Use(middleware.AuthSession(repo.Session, log))

		// POST /api/reviews - Create new review (authenticated users only)
		r.Post("/api/reviews", reviewHandler.CreateReview)

		// GET /api/user/reviews - View user's own reviews
		r.Get("/api/user/reviews", reviewHandler.GetUserReviews)

		// PUT /api/reviews/{id} - Update review (owner only)
		r.Put("/api/reviews/{id}", reviewHandler.UpdateReview)

		// DELETE /api/reviews/{id} - Delete review (owner only)
		r.Delete("/api/reviews/{id}", reviewHandler.DeleteReview)
	})
}
