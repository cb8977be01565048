package response

import (
	"car-rental/internal/data/entity"
	"time"
)

type ReviewResponse struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Username    string    `json:"username,omitempty"`
	VehicleID   string    `json:"vehicle_id"`
	VehicleName string    `json:"vehicle_name,omitempty"`
	Rating      int       `json:"rating"`
	Comment     *string   `json:"comment,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

type VehicleReviewStats struct {
	AverageRating float64 `json:"average_rating"`
	ReviewCount   int64   `json:"review_count"`
}

// Helper converter
func ReviewToResponse(review *entity.Review, username, vehicleName string) ReviewResponse {
	return ReviewResponse{
		ID:          review.ID.String(),
		UserID:      review.UserID.String(),
		Username:    username,
		VehicleID:   review.VehicleID.String(),
		VehicleName: vehicleName,
		Rating:      review.Rating,
		Comment:     review.Comment,
		CreatedAt:   review.CreatedAt,
	}
}
