package usecase

import (
	"context"
	"fmt"
	"time"

	"car-rental/internal/data/entity"
	"car-rental/internal/data/repository"
	"car-rental/internal/dto/request"
	"car-rental/internal/dto/response"
	"car-rental/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ReviewService interface {
	// Public endpoints
	CreateReview(ctx context.Context, userID string, req *request.CreateReviewRequest) (*response.ReviewResponse, error)
	GetVehicleReviews(ctx context.Context, vehicleID string, req *request.PaginatedRequest) (*response.PaginatedResponse[response.ReviewResponse], error)
	GetUserReviews(ctx context.Context, userID string, req *request.PaginatedRequest) (*response.PaginatedResponse[response.ReviewResponse], error)
	UpdateReview(ctx context.Context, reviewID, userID string, req *request.UpdateReviewRequest) (*response.ReviewResponse, error)
	DeleteReview(ctx context.Context, reviewID, userID string) error

	// Stats
	GetVehicleReviewStats(ctx context.Context, vehicleID string) (*response.VehicleReviewStats, error)
}

type reviewService struct {
	repo *repository.Repository
	log  *zap.Logger
}

func NewReviewService(repo *repository.Repository, log *zap.Logger) ReviewService {
	return &reviewService{
		repo: repo,
		log:  log.With(zap.String("service", "review")),
	}
}

func (s *reviewService) CreateReview(ctx context.Context, userID string, req *request.CreateReviewRequest) (*response.ReviewResponse, error) {
	// Validate request
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Create review validation failed", zap.Any("errors", errs))
		return nil, fmt.Errorf("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	// Parse IDs
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return nil, fmt.Errorf("invalid user ID format %s: %w", userID, err)
	}

	vehicleID, err := uuid.Parse(req.VehicleID)
	if err != nil {
		return nil, fmt.Errorf("invalid vehicle ID format %s: %w", req.VehicleID, err)
	}

	// Check if vehicle exists
	vehicle, err := s.repo.Vehicle.FindByID(ctx, vehicleID)
	if err != nil || vehicle == nil {
		return nil, fmt.Errorf("vehicle %s not found", req.VehicleID)
	}

	// Review cuma buat yang pernah beneran sewa dan selesai
	hasCompleted, err := s.repo.Booking.HasCompletedBooking(ctx, userUUID, vehicleID)
	if err != nil {
		s.log.Error("Failed to check completed booking", zap.Error(err))
		return nil, fmt.Errorf("check completed booking: %w", err)
	}

	if !hasCompleted {
		return nil, fmt.Errorf("must complete a rental of this vehicle before reviewing")
	}

	// Check if user has already reviewed this vehicle
	existingReview, err := s.repo.Review.FindByUserAndVehicle(ctx, userUUID, vehicleID)
	if err != nil {
		s.log.Error("Failed to check existing review", zap.Error(err))
		return nil, fmt.Errorf("check existing review: %w", err)
	}

	if existingReview != nil {
		return nil, fmt.Errorf("user already reviewed this vehicle")
	}

	// Create review entity
	now := time.Now()
	review := &entity.Review{
		BaseSimple: entity.BaseSimple{
			ID:        uuid.New(),
			CreatedAt: now,
		},
		UserID:    userUUID,
		VehicleID: vehicleID,
		Rating:    req.Rating,
		Comment:   req.Comment,
	}

	// Save review
	if err := s.repo.Review.Create(ctx, review); err != nil {
		s.log.Error("Failed to create review",
			zap.Error(err),
			zap.String("user_id", userID),
			zap.String("vehicle_id", req.VehicleID),
		)
		return nil, fmt.Errorf("create review: %w", err)
	}

	// Update vehicle rating
	if err := s.updateVehicleRating(ctx, vehicleID); err != nil {
		s.log.Warn("Failed to update vehicle rating",
			zap.Error(err),
			zap.String("vehicle_id", req.VehicleID),
		)
		// Continue anyway
	}

	// Get user info for response
	user, _ := s.repo.User.FindByID(ctx, userUUID)
	username := ""
	if user != nil {
		username = user.Username
	}

	s.log.Info("Review created",
		zap.String("review_id", review.ID.String()),
		zap.String("user_id", userID),
		zap.String("vehicle_id", req.VehicleID),
		zap.Int("rating", req.Rating),
	)

	reviewResp := response.ReviewToResponse(review, username, vehicleDisplayName(vehicle))
	return &reviewResp, nil
}

func (s *reviewService) GetVehicleReviews(ctx context.Context, vehicleID string, req *request.PaginatedRequest) (*response.PaginatedResponse[response.ReviewResponse], error) {
	// Parse vehicle ID
	vehicleUUID, err := uuid.Parse(vehicleID)
	if err != nil {
		return nil, fmt.Errorf("invalid vehicle ID format %s: %w", vehicleID, err)
	}

	limit := req.Limit()
	offset := req.Offset()

	// Get reviews
	reviews, err := s.repo.Review.FindByVehicleID(ctx, vehicleUUID, limit, offset)
	if err != nil {
		s.log.Error("Failed to get vehicle reviews",
			zap.Error(err),
			zap.String("vehicle_id", vehicleID),
			zap.Int("page", req.Page),
			zap.Int("per_page", req.PerPage),
		)
		return nil, fmt.Errorf("get vehicle reviews: %w", err)
	}

	// Get total count
	total, err := s.repo.Review.CountByVehicleID(ctx, vehicleUUID)
	if err != nil {
		s.log.Error("Failed to count vehicle reviews", zap.Error(err))
		return nil, fmt.Errorf("count vehicle reviews: %w", err)
	}

	// Get vehicle info
	vehicle, _ := s.repo.Vehicle.FindByID(ctx, vehicleUUID)
	vehicleName := vehicleDisplayName(vehicle)

	// Convert to response
	reviewResponses := make([]response.ReviewResponse, len(reviews))
	for i, review := range reviews {
		// Get user info
		user, _ := s.repo.User.FindByID(ctx, review.UserID)
		username := ""
		if user != nil {
			username = user.Username
		}

		reviewResponses[i] = response.ReviewToResponse(review, username, vehicleName)
	}

	s.log.Info("Vehicle reviews retrieved",
		zap.String("vehicle_id", vehicleID),
		zap.Int("count", len(reviews)),
		zap.Int64("total", total),
		zap.Int("page", req.Page),
		zap.Int("per_page", req.PerPage),
	)

	return response.NewPaginatedResponse(reviewResponses, req.Page, req.PerPage, total), nil
}

func (s *reviewService) GetUserReviews(ctx context.Context, userID string, req *request.PaginatedRequest) (*response.PaginatedResponse[response.ReviewResponse], error) {
	// Parse user ID
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return nil, fmt.Errorf("invalid user ID format %s: %w", userID, err)
	}

	limit := req.Limit()
	offset := req.Offset()

	// Get reviews
	reviews, err := s.repo.Review.FindByUserID(ctx, userUUID, limit, offset)
	if err != nil {
		s.log.Error("Failed to get user reviews",
			zap.Error(err),
			zap.String("user_id", userID),
			zap.Int("page", req.Page),
			zap.Int("per_page", req.PerPage),
		)
		return nil, fmt.Errorf("get user reviews: %w", err)
	}

	// Get total count (simplified - bisa pakai CountByUserID kalau ada)
	total := int64(len(reviews)) // Simplified

	// Get user info
	user, _ := s.repo.User.FindByID(ctx, userUUID)
	username := ""
	if user != nil {
		username = user.Username
	}

	// Convert to response
	reviewResponses := make([]response.ReviewResponse, len(reviews))
	for i, review := range reviews {
		// Get vehicle info
		vehicle, _ := s.repo.Vehicle.FindByID(ctx, review.VehicleID)
		reviewResponses[i] = response.ReviewToResponse(review, username, vehicleDisplayName(vehicle))
	}

	s.log.Info("User reviews retrieved",
		zap.String("user_id", userID),
		zap.Int("count", len(reviews)),
		zap.Int("page", req.Page),
		zap.Int("per_page", req.PerPage),
	)

	return response.NewPaginatedResponse(reviewResponses, req.Page, req.PerPage, total), nil
}

func (s *reviewService) UpdateReview(ctx context.Context, reviewID, userID string, req *request.UpdateReviewRequest) (*response.ReviewResponse, error) {
	// Validate request
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Update review validation failed", zap.Any("errors", errs))
		return nil, fmt.Errorf("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	// Parse IDs
	reviewUUID, err := uuid.Parse(reviewID)
	if err != nil {
		return nil, fmt.Errorf("invalid review ID format %s: %w", reviewID, err)
	}

	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return nil, fmt.Errorf("invalid user ID format %s: %w", userID, err)
	}

	// Get existing review
	review, err := s.repo.Review.FindByID(ctx, reviewUUID)
	if err != nil || review == nil {
		return nil, fmt.Errorf("review %s not found", reviewID)
	}

	// Check if review belongs to user
	if review.UserID != userUUID {
		return nil, fmt.Errorf("unauthorized to update this review")
	}

	// Update fields if provided
	updated := false

	if req.Rating != nil && *req.Rating != review.Rating {
		review.Rating = *req.Rating
		updated = true
	}

	if req.Comment != nil {
		review.Comment = req.Comment
		updated = true
	}

	if !updated {
		// No changes
		return s.buildReviewResponse(ctx, review), nil
	}

	// Save updated review
	if err := s.repo.Review.Update(ctx, review); err != nil {
		s.log.Error("Failed to update review",
			zap.Error(err),
			zap.String("review_id", reviewID),
		)
		return nil, fmt.Errorf("update review: %w", err)
	}

	// Update vehicle rating
	if err := s.updateVehicleRating(ctx, review.VehicleID); err != nil {
		s.log.Warn("Failed to update vehicle rating",
			zap.Error(err),
			zap.String("vehicle_id", review.VehicleID.String()),
		)
		// Continue anyway
	}

	s.log.Info("Review updated",
		zap.String("review_id", reviewID),
		zap.String("user_id", userID),
		zap.Bool("was_updated", updated),
	)

	return s.buildReviewResponse(ctx, review), nil
}

func (s *reviewService) DeleteReview(ctx context.Context, reviewID, userID string) error {
	// Parse IDs
	reviewUUID, err := uuid.Parse(reviewID)
	if err != nil {
		return fmt.Errorf("invalid review ID format %s: %w", reviewID, err)
	}

	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return fmt.Errorf("invalid user ID format %s: %w", userID, err)
	}

	// Get existing review
	review, err := s.repo.Review.FindByID(ctx, reviewUUID)
	if err != nil || review == nil {
		return fmt.Errorf("review %s not found", reviewID)
	}

	// Check if review belongs to user
	if review.UserID != userUUID {
		return fmt.Errorf("unauthorized to delete this review")
	}

	// Delete review
	if err := s.repo.Review.Delete(ctx, reviewUUID); err != nil {
		s.log.Error("Failed to delete review",
			zap.Error(err),
			zap.String("review_id", reviewID),
		)
		return fmt.Errorf("delete review: %w", err)
	}

	// Update vehicle rating
	if err := s.updateVehicleRating(ctx, review.VehicleID); err != nil {
		s.log.Warn("Failed to update vehicle rating",
			zap.Error(err),
			zap.String("vehicle_id", review.VehicleID.String()),
		)
		// Continue anyway
	}

	s.log.Info("Review deleted",
		zap.String("review_id", reviewID),
		zap.String("user_id", userID),
		zap.String("vehicle_id", review.VehicleID.String()),
	)

	return nil
}

func (s *reviewService) GetVehicleReviewStats(ctx context.Context, vehicleID string) (*response.VehicleReviewStats, error) {
	// Parse vehicle ID
	vehicleUUID, err := uuid.Parse(vehicleID)
	if err != nil {
		return nil, fmt.Errorf("invalid vehicle ID format %s: %w", vehicleID, err)
	}

	avgRating, reviewCount, err := s.repo.Review.GetVehicleReviewStats(ctx, vehicleUUID)
	if err != nil {
		s.log.Error("Failed to get vehicle review stats",
			zap.Error(err),
			zap.String("vehicle_id", vehicleID),
		)
		return nil, fmt.Errorf("get vehicle review stats: %w", err)
	}

	return &response.VehicleReviewStats{
		AverageRating: avgRating,
		ReviewCount:   reviewCount,
	}, nil
}

// ==================== HELPER METHODS ====================

func (s *reviewService) updateVehicleRating(ctx context.Context, vehicleID uuid.UUID) error {
	avgRating, _, err := s.repo.Review.GetVehicleReviewStats(ctx, vehicleID)
	if err != nil {
		return fmt.Errorf("get average rating: %w", err)
	}

	// Update denormalized rating in vehicles table
	if err := s.repo.Vehicle.UpdateRating(ctx, vehicleID, avgRating); err != nil {
		return fmt.Errorf("update vehicle rating: %w", err)
	}

	s.log.Debug("Vehicle rating updated",
		zap.String("vehicle_id", vehicleID.String()),
		zap.Float64("new_rating", avgRating),
	)

	return nil
}

func (s *reviewService) buildReviewResponse(ctx context.Context, review *entity.Review) *response.ReviewResponse {
	// Get user info
	user, _ := s.repo.User.FindByID(ctx, review.UserID)
	username := ""
	if user != nil {
		username = user.Username
	}

	// Get vehicle info
	vehicle, _ := s.repo.Vehicle.FindByID(ctx, review.VehicleID)

	reviewResp := response.ReviewToResponse(review, username, vehicleDisplayName(vehicle))
	return &reviewResp
}
