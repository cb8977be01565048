package response

import (
	"car-rental/internal/data/entity"
	"time"
)

type VehicleResponse struct {
	ID              string    `json:"id"`
	OwnerID         string    `json:"owner_id"`
	Make            string    `json:"make"`
	Model           string    `json:"model"`
	Year            int       `json:"year"`
	PlateNumber     string    `json:"plate_number"`
	Color           string    `json:"color"`
	BodyType        string    `json:"body_type"`
	FuelType        string    `json:"fuel_type"`
	Transmission    string    `json:"transmission"`
	SeatingCapacity int       `json:"seating_capacity"`
	Features        []string  `json:"features,omitempty"`
	DailyRate       float64   `json:"daily_rate"`
	DepositAmount   float64   `json:"deposit_amount"`
	MileageLimit    int       `json:"mileage_limit,omitempty"`
	Status          string    `json:"status"`
	PickupLocation  string    `json:"pickup_location"`
	Rating          float64   `json:"rating"`
	ReviewCount     int       `json:"review_count"`
	CreatedAt       time.Time `json:"created_at,omitempty"`
}

type VehicleDetailResponse struct {
	VehicleResponse
	IsActive  bool       `json:"is_active"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

// Helper converters
func VehicleToResponse(vehicle *entity.Vehicle, reviewCount int) VehicleResponse {
	return VehicleResponse{
		ID:              vehicle.ID.String(),
		OwnerID:         vehicle.OwnerID.String(),
		Make:            vehicle.Make,
		Model:           vehicle.Model,
		Year:            vehicle.Year,
		PlateNumber:     vehicle.PlateNumber,
		Color:           vehicle.Color,
		BodyType:        vehicle.BodyType,
		FuelType:        string(vehicle.FuelType),
		Transmission:    string(vehicle.Transmission),
		SeatingCapacity: vehicle.SeatingCapacity,
		Features:        vehicle.Features,
		DailyRate:       vehicle.DailyRate,
		DepositAmount:   vehicle.DepositAmount,
		MileageLimit:    vehicle.MileageLimit,
		Status:          string(vehicle.Status),
		PickupLocation:  vehicle.PickupLocation,
		Rating:          vehicle.Rating,
		ReviewCount:     reviewCount,
		CreatedAt:       vehicle.CreatedAt,
	}
}

func VehicleToDetailResponse(vehicle *entity.Vehicle, reviewCount int) VehicleDetailResponse {
	vehicleResp := VehicleToResponse(vehicle, reviewCount)
	return VehicleDetailResponse{
		VehicleResponse: vehicleResp,
		IsActive:        vehicle.IsActive,
		UpdatedAt:       &vehicle.UpdatedAt,
	}
}
