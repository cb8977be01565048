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

type VehicleService interface {
	GetVehicles(ctx context.Context, req *request.PaginatedRequest, filter *request.VehicleFilterRequest) (*response.PaginatedResponse[response.VehicleResponse], error)
	GetVehicleByID(ctx context.Context, vehicleID string) (*response.VehicleDetailResponse, error)
	CreateVehicle(ctx context.Context, ownerID string, req *request.VehicleRequest) (*response.VehicleResponse, error)
	UpdateVehicle(ctx context.Context, vehicleID, actorID string, req *request.VehicleUpdateRequest) (*response.VehicleResponse, error)
	DeleteVehicle(ctx context.Context, vehicleID, actorID string) error

	// Kalender booked ranges untuk satu vehicle (occupying saja)
	GetVehicleBookings(ctx context.Context, vehicleID string) ([]response.BookedRangeResponse, error)
}

type vehicleService struct {
	repo *repository.Repository
	log  *zap.Logger
}

func NewVehicleService(
	repo *repository.Repository,
	log *zap.Logger,
) VehicleService {
	return &vehicleService{
		repo: repo,
		log:  log.With(zap.String("service", "vehicle")),
	}
}

func (s *vehicleService) GetVehicles(ctx context.Context, req *request.PaginatedRequest, filter *request.VehicleFilterRequest) (*response.PaginatedResponse[response.VehicleResponse], error) {
	limit := req.Limit()
	offset := req.Offset()

	repoFilter, err := buildRepoFilter(filter)
	if err != nil {
		return nil, err
	}

	// Get vehicles with pagination and filter
	vehicles, err := s.repo.Vehicle.FindAll(ctx, offset, limit, repoFilter)
	if err != nil {
		s.log.Error("Failed to get vehicles",
			zap.Error(err),
			zap.Int("page", req.Page),
			zap.Int("per_page", req.PerPage),
		)
		return nil, fmt.Errorf("get vehicles: %w", err)
	}

	// Get total count for pagination metadata
	total, err := s.repo.Vehicle.CountAll(ctx, repoFilter)
	if err != nil {
		s.log.Error("Failed to count vehicles", zap.Error(err))
		return nil, fmt.Errorf("count vehicles: %w", err)
	}

	// Convert each vehicle to response with review stats
	vehicleResponses := make([]response.VehicleResponse, len(vehicles))
	for i, vehicle := range vehicles {
		avgRating, reviewCount, err := s.repo.Review.GetVehicleReviewStats(ctx, vehicle.ID)
		if err != nil {
			// Log error but continue
			s.log.Warn("Failed to get review stats for vehicle",
				zap.Error(err),
				zap.String("vehicle_id", vehicle.ID.String()),
			)
			avgRating = vehicle.Rating
			reviewCount = 0
		} else if avgRating > 0 {
			vehicle.Rating = avgRating
		}

		vehicleResponses[i] = response.VehicleToResponse(vehicle, int(reviewCount))
	}

	s.log.Info("Vehicles retrieved",
		zap.Int("count", len(vehicles)),
		zap.Int64("total", total),
		zap.Int("page", req.Page),
		zap.Int("per_page", req.PerPage),
	)

	return response.NewPaginatedResponse(vehicleResponses, req.Page, req.PerPage, total), nil
}

func (s *vehicleService) GetVehicleByID(ctx context.Context, vehicleID string) (*response.VehicleDetailResponse, error) {
	id, err := uuid.Parse(vehicleID)
	if err != nil {
		s.log.Warn("Invalid vehicle ID format",
			zap.String("vehicle_id", vehicleID),
			zap.Error(err),
		)
		return nil, fmt.Errorf("invalid vehicle id: %w", err)
	}

	vehicle, err := s.repo.Vehicle.FindByID(ctx, id)
	if err != nil {
		s.log.Error("Failed to get vehicle by ID",
			zap.Error(err),
			zap.String("vehicle_id", vehicleID),
		)
		return nil, fmt.Errorf("get vehicle by id: %w", err)
	}

	if vehicle == nil {
		return nil, fmt.Errorf("vehicle not found")
	}

	avgRating, reviewCount, err := s.repo.Review.GetVehicleReviewStats(ctx, vehicle.ID)
	if err != nil {
		s.log.Warn("Failed to get review stats for vehicle",
			zap.Error(err),
			zap.String("vehicle_id", vehicleID),
		)
		reviewCount = 0
	} else if avgRating > 0 {
		vehicle.Rating = avgRating
	}

	s.log.Info("Vehicle retrieved",
		zap.String("vehicle_id", vehicleID),
		zap.String("plate_number", vehicle.PlateNumber),
		zap.Int64("review_count", reviewCount),
	)

	detailVehicle := response.VehicleToDetailResponse(vehicle, int(reviewCount))
	return &detailVehicle, nil
}

func (s *vehicleService) CreateVehicle(ctx context.Context, ownerID string, req *request.VehicleRequest) (*response.VehicleResponse, error) {
	// Validate request data
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Create vehicle validation failed", zap.Any("errors", errs))
		return nil, fmt.Errorf("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	ownerUUID, err := uuid.Parse(ownerID)
	if err != nil {
		return nil, fmt.Errorf("invalid owner ID format %s: %w", ownerID, err)
	}

	// Tahun tidak boleh melebihi model year tahun depan
	if req.Year > time.Now().Year()+1 {
		return nil, fmt.Errorf("vehicle year %d cannot be in the future", req.Year)
	}

	// Cek plate number belum terdaftar
	existing, err := s.repo.Vehicle.FindByPlateNumber(ctx, req.PlateNumber)
	if err != nil {
		s.log.Error("Failed to check plate number",
			zap.Error(err),
			zap.String("plate_number", req.PlateNumber),
		)
		return nil, fmt.Errorf("check plate number: %w", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("plate number %s already registered", req.PlateNumber)
	}

	// Create vehicle
	now := time.Now()
	vehicle := &entity.Vehicle{
		Base: entity.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		OwnerID:         ownerUUID,
		Make:            req.Make,
		Model:           req.Model,
		Year:            req.Year,
		PlateNumber:     req.PlateNumber,
		Color:           req.Color,
		BodyType:        req.BodyType,
		FuelType:        entity.FuelType(req.FuelType),
		Transmission:    entity.TransmissionType(req.Transmission),
		SeatingCapacity: req.SeatingCapacity,
		Features:        req.Features,
		DailyRate:       req.DailyRate,
		DepositAmount:   req.DepositAmount,
		MileageLimit:    req.MileageLimit,
		Status:          entity.VehicleStatusAvailable,
		IsActive:        true,
		PickupLocation:  req.PickupLocation,
		Rating:          0.0,
	}

	if err := s.repo.Vehicle.Create(ctx, vehicle); err != nil {
		s.log.Error("Failed to create vehicle",
			zap.Error(err),
			zap.String("plate_number", req.PlateNumber),
		)
		return nil, fmt.Errorf("create vehicle: %w", err)
	}

	s.log.Info("Vehicle created",
		zap.String("vehicle_id", vehicle.ID.String()),
		zap.String("plate_number", vehicle.PlateNumber),
		zap.String("owner_id", ownerID),
	)

	vehicleResp := response.VehicleToResponse(vehicle, 0)
	return &vehicleResp, nil
}

func (s *vehicleService) UpdateVehicle(ctx context.Context, vehicleID, actorID string, req *request.VehicleUpdateRequest) (*response.VehicleResponse, error) {
	// Validate request data
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Update vehicle validation failed", zap.Any("errors", errs))
		return nil, fmt.Errorf("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	id, err := uuid.Parse(vehicleID)
	if err != nil {
		return nil, fmt.Errorf("invalid vehicle id: %w", err)
	}

	// Find existing vehicle
	vehicle, err := s.repo.Vehicle.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find vehicle: %w", err)
	}
	if vehicle == nil {
		return nil, fmt.Errorf("vehicle not found")
	}

	// Cuma owner atau admin yang boleh ubah
	if err := s.canManageVehicle(ctx, vehicle, actorID); err != nil {
		return nil, err
	}

	// Apply partial updates only for provided fields
	updated := false

	if req.Make != nil && *req.Make != vehicle.Make {
		vehicle.Make = *req.Make
		updated = true
	}

	if req.Model != nil && *req.Model != vehicle.Model {
		vehicle.Model = *req.Model
		updated = true
	}

	if req.Year != nil && *req.Year != vehicle.Year {
		if *req.Year > time.Now().Year()+1 {
			return nil, fmt.Errorf("vehicle year %d cannot be in the future", *req.Year)
		}
		vehicle.Year = *req.Year
		updated = true
	}

	if req.Color != nil && *req.Color != vehicle.Color {
		vehicle.Color = *req.Color
		updated = true
	}

	if req.BodyType != nil && *req.BodyType != vehicle.BodyType {
		vehicle.BodyType = *req.BodyType
		updated = true
	}

	if req.FuelType != nil {
		vehicle.FuelType = entity.FuelType(*req.FuelType)
		updated = true
	}

	if req.Transmission != nil {
		vehicle.Transmission = entity.TransmissionType(*req.Transmission)
		updated = true
	}

	if req.SeatingCapacity != nil && *req.SeatingCapacity != vehicle.SeatingCapacity {
		vehicle.SeatingCapacity = *req.SeatingCapacity
		updated = true
	}

	if req.Features != nil {
		vehicle.Features = req.Features
		updated = true
	}

	if req.DailyRate != nil && *req.DailyRate != vehicle.DailyRate {
		vehicle.DailyRate = *req.DailyRate
		updated = true
	}

	if req.DepositAmount != nil && *req.DepositAmount != vehicle.DepositAmount {
		vehicle.DepositAmount = *req.DepositAmount
		updated = true
	}

	if req.MileageLimit != nil && *req.MileageLimit != vehicle.MileageLimit {
		vehicle.MileageLimit = *req.MileageLimit
		updated = true
	}

	if req.PickupLocation != nil && *req.PickupLocation != vehicle.PickupLocation {
		vehicle.PickupLocation = *req.PickupLocation
		updated = true
	}

	if req.Status != nil {
		vehicle.Status = entity.VehicleStatus(*req.Status)
		updated = true
	}

	if req.IsActive != nil && *req.IsActive != vehicle.IsActive {
		vehicle.IsActive = *req.IsActive
		updated = true
	}

	// Update timestamp and save only if changes were made
	if updated {
		vehicle.UpdatedAt = time.Now()
		if err := s.repo.Vehicle.Update(ctx, vehicle); err != nil {
			s.log.Error("Failed to update vehicle",
				zap.Error(err),
				zap.String("vehicle_id", vehicleID),
			)
			return nil, fmt.Errorf("update vehicle: %w", err)
		}
	}

	s.log.Info("Vehicle updated",
		zap.String("vehicle_id", vehicleID),
		zap.Bool("was_updated", updated),
	)

	vehicleResp := response.VehicleToResponse(vehicle, 0)
	return &vehicleResp, nil
}

func (s *vehicleService) DeleteVehicle(ctx context.Context, vehicleID, actorID string) error {
	id, err := uuid.Parse(vehicleID)
	if err != nil {
		return fmt.Errorf("invalid vehicle id: %w", err)
	}

	vehicle, err := s.repo.Vehicle.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("find vehicle: %w", err)
	}
	if vehicle == nil {
		return fmt.Errorf("vehicle not found")
	}

	if err := s.canManageVehicle(ctx, vehicle, actorID); err != nil {
		return err
	}

	// Jangan hapus vehicle yang masih punya booking berjalan
	occupying, err := s.repo.Booking.FindByVehicleID(ctx, id, entity.OccupyingStatuses())
	if err != nil {
		s.log.Error("Failed to check vehicle bookings",
			zap.Error(err),
			zap.String("vehicle_id", vehicleID),
		)
		return fmt.Errorf("check vehicle bookings: %w", err)
	}
	if len(occupying) > 0 {
		return fmt.Errorf("vehicle has %d active bookings, cannot delete", len(occupying))
	}

	if err := s.repo.Vehicle.Delete(ctx, id); err != nil {
		s.log.Error("Failed to delete vehicle",
			zap.Error(err),
			zap.String("vehicle_id", vehicleID),
		)
		return fmt.Errorf("delete vehicle: %w", err)
	}

	s.log.Info("Vehicle deleted",
		zap.String("vehicle_id", vehicleID),
		zap.String("plate_number", vehicle.PlateNumber),
	)

	return nil
}

func (s *vehicleService) GetVehicleBookings(ctx context.Context, vehicleID string) ([]response.BookedRangeResponse, error) {
	id, err := uuid.Parse(vehicleID)
	if err != nil {
		return nil, fmt.Errorf("invalid vehicle id: %w", err)
	}

	vehicle, err := s.repo.Vehicle.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find vehicle: %w", err)
	}
	if vehicle == nil {
		return nil, fmt.Errorf("vehicle not found")
	}

	bookings, err := s.repo.Booking.FindByVehicleID(ctx, id, entity.OccupyingStatuses())
	if err != nil {
		s.log.Error("Failed to get vehicle bookings",
			zap.Error(err),
			zap.String("vehicle_id", vehicleID),
		)
		return nil, fmt.Errorf("get vehicle bookings: %w", err)
	}

	ranges := make([]response.BookedRangeResponse, len(bookings))
	for i, booking := range bookings {
		ranges[i] = response.BookedRangeToResponse(booking)
	}

	return ranges, nil
}

// ==================== HELPER METHODS ====================

func (s *vehicleService) canManageVehicle(ctx context.Context, vehicle *entity.Vehicle, actorID string) error {
	actorUUID, err := uuid.Parse(actorID)
	if err != nil {
		return fmt.Errorf("invalid user ID format %s: %w", actorID, err)
	}

	if vehicle.OwnerID == actorUUID {
		return nil
	}

	actor, err := s.repo.User.FindByID(ctx, actorUUID)
	if err != nil {
		return fmt.Errorf("find user: %w", err)
	}
	if actor != nil && actor.Role == entity.RoleAdmin {
		return nil
	}

	return fmt.Errorf("unauthorized to manage this vehicle")
}

func buildRepoFilter(filter *request.VehicleFilterRequest) (repository.VehicleFilter, error) {
	var repoFilter repository.VehicleFilter
	if filter == nil {
		return repoFilter, nil
	}

	repoFilter.BodyType = filter.BodyType
	repoFilter.Transmission = filter.Transmission
	repoFilter.FuelType = filter.FuelType
	repoFilter.Status = filter.Status
	repoFilter.MaxDailyRate = filter.MaxDailyRate

	if filter.OwnerID != nil {
		ownerUUID, err := uuid.Parse(*filter.OwnerID)
		if err != nil {
			return repoFilter, fmt.Errorf("invalid owner ID format %s: %w", *filter.OwnerID, err)
		}
		repoFilter.OwnerID = &ownerUUID
	}

	return repoFilter, nil
}
