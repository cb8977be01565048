package repository

import (
	"car-rental/internal/data/entity"
	"car-rental/pkg/database"
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// VehicleFilter - optional filters untuk listing
type VehicleFilter struct {
	BodyType     *string
	Transmission *string
	FuelType     *string
	Status       *string
	OwnerID      *uuid.UUID
	MaxDailyRate *float64
}

type VehicleRepository interface {
	// CRUD Vehicle
	Create(ctx context.Context, vehicle *entity.Vehicle) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Vehicle, error)
	FindByPlateNumber(ctx context.Context, plateNumber string) (*entity.Vehicle, error)
	Update(ctx context.Context, vehicle *entity.Vehicle) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindAll(ctx context.Context, offset, limit int, filter VehicleFilter) ([]*entity.Vehicle, error)
	CountAll(ctx context.Context, filter VehicleFilter) (int64, error)

	// Business updates
	UpdateStatus(ctx context.Context, vehicleID uuid.UUID, status entity.VehicleStatus) error
	UpdateRating(ctx context.Context, vehicleID uuid.UUID, newRating float64) error
}

type vehicleRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewVehicleRepository(db database.PgxIface, log *zap.Logger) VehicleRepository {
	return &vehicleRepository{
		db:  db,
		log: log.With(zap.String("repository", "vehicle")),
	}
}

func (r *vehicleRepository) Create(ctx context.Context, vehicle *entity.Vehicle) error {
	query := `
		INSERT INTO vehicles (id, owner_id, make, model, year, plate_number, color,
		                     body_type, fuel_type, transmission, seating_capacity,
		                     features, daily_rate, deposit_amount, mileage_limit,
		                     status, is_active, pickup_location, rating,
		                     created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15,
		        $16, $17, $18, $19, $20, $21)
	`

	_, err := r.db.Exec(ctx, query,
		vehicle.ID,
		vehicle.OwnerID,
		vehicle.Make,
		vehicle.Model,
		vehicle.Year,
		vehicle.PlateNumber,
		vehicle.Color,
		vehicle.BodyType,
		vehicle.FuelType,
		vehicle.Transmission,
		vehicle.SeatingCapacity,
		vehicle.Features,
		vehicle.DailyRate,
		vehicle.DepositAmount,
		vehicle.MileageLimit,
		vehicle.Status,
		vehicle.IsActive,
		vehicle.PickupLocation,
		vehicle.Rating,
		vehicle.CreatedAt,
		vehicle.UpdatedAt,
	)

	if err != nil {
		r.log.Error("Failed to create vehicle",
			zap.Error(err),
			zap.String("plate_number", vehicle.PlateNumber),
		)
		return fmt.Errorf("failed to create vehicle: %w", err)
	}

	return nil
}

func (r *vehicleRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Vehicle, error) {
	query := `
		SELECT id, owner_id, make, model, year, plate_number, color, body_type,
		       fuel_type, transmission, seating_capacity, features, daily_rate,
		       deposit_amount, mileage_limit, status, is_active, pickup_location,
		       rating, created_at, updated_at, deleted_at
		FROM vehicles
		WHERE id = $1 AND deleted_at IS NULL
	`

	var vehicle entity.Vehicle
	err := r.db.QueryRow(ctx, query, id).Scan(
		&vehicle.ID,
		&vehicle.OwnerID,
		&vehicle.Make,
		&vehicle.Model,
		&vehicle.Year,
		&vehicle.PlateNumber,
		&vehicle.Color,
		&vehicle.BodyType,
		&vehicle.FuelType,
		&vehicle.Transmission,
		&vehicle.SeatingCapacity,
		&vehicle.Features,
		&vehicle.DailyRate,
		&vehicle.DepositAmount,
		&vehicle.MileageLimit,
		&vehicle.Status,
		&vehicle.IsActive,
		&vehicle.PickupLocation,
		&vehicle.Rating,
		&vehicle.CreatedAt,
		&vehicle.UpdatedAt,
		&vehicle.DeletedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find vehicle by ID",
			zap.Error(err),
			zap.String("vehicle_id", id.String()),
		)
		return nil, fmt.Errorf("failed to find vehicle: %w", err)
	}

	return &vehicle, nil
}

func (r *vehicleRepository) FindByPlateNumber(ctx context.Context, plateNumber string) (*entity.Vehicle, error) {
	query := `
		SELECT id, owner_id, make, model, year, plate_number, color, body_type,
		       fuel_type, transmission, seating_capacity, features, daily_rate,
		       deposit_amount, mileage_limit, status, is_active, pickup_location,
		       rating, created_at, updated_at, deleted_at
		FROM vehicles
		WHERE plate_number = $1 AND deleted_at IS NULL
	`

	var vehicle entity.Vehicle
	err := r.db.QueryRow(ctx, query, plateNumber).Scan(
		&vehicle.ID,
		&vehicle.OwnerID,
		&vehicle.Make,
		&vehicle.Model,
		&vehicle.Year,
		&vehicle.PlateNumber,
		&vehicle.Color,
		&vehicle.BodyType,
		&vehicle.FuelType,
		&vehicle.Transmission,
		&vehicle.SeatingCapacity,
		&vehicle.Features,
		&vehicle.DailyRate,
		&vehicle.DepositAmount,
		&vehicle.MileageLimit,
		&vehicle.Status,
		&vehicle.IsActive,
		&vehicle.PickupLocation,
		&vehicle.Rating,
		&vehicle.CreatedAt,
		&vehicle.UpdatedAt,
		&vehicle.DeletedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find vehicle by plate number",
			zap.Error(err),
			zap.String("plate_number", plateNumber),
		)
		return nil, fmt.Errorf("failed to find vehicle by plate: %w", err)
	}

	return &vehicle, nil
}

// buildVehicleFilter menambahkan klausa WHERE sesuai filter yang terisi
func buildVehicleFilter(queryBuilder *strings.Builder, args []interface{}, filter VehicleFilter) []interface{} {
	argCount := len(args) + 1

	if filter.BodyType != nil && *filter.BodyType != "" {
		queryBuilder.WriteString(fmt.Sprintf(" AND body_type = $%d", argCount))
		args = append(args, *filter.BodyType)
		argCount++
	}

	if filter.Transmission != nil && *filter.Transmission != "" {
		queryBuilder.WriteString(fmt.Sprintf(" AND transmission = $%d", argCount))
		args = append(args, *filter.Transmission)
		argCount++
	}

	if filter.FuelType != nil && *filter.FuelType != "" {
		queryBuilder.WriteString(fmt.Sprintf(" AND fuel_type = $%d", argCount))
		args = append(args, *filter.FuelType)
		argCount++
	}

	if filter.Status != nil && *filter.Status != "" {
		queryBuilder.WriteString(fmt.Sprintf(" AND status = $%d", argCount))
		args = append(args, *filter.Status)
		argCount++
	}

	if filter.OwnerID != nil {
		queryBuilder.WriteString(fmt.Sprintf(" AND owner_id = $%d", argCount))
		args = append(args, *filter.OwnerID)
		argCount++
	}

	if filter.MaxDailyRate != nil && *filter.MaxDailyRate > 0 {
		queryBuilder.WriteString(fmt.Sprintf(" AND daily_rate <= $%d", argCount))
		args = append(args, *filter.MaxDailyRate)
	}

	return args
}

func (r *vehicleRepository) FindAll(ctx context.Context, offset, limit int, filter VehicleFilter) ([]*entity.Vehicle, error) {
	// Build query dengan optional filter
	var queryBuilder strings.Builder
	queryBuilder.WriteString(`
		SELECT id, owner_id, make, model, year, plate_number, color, body_type,
		       fuel_type, transmission, seating_capacity, features, daily_rate,
		       deposit_amount, mileage_limit, status, is_active, pickup_location,
		       rating, created_at, updated_at
		FROM vehicles
		WHERE deleted_at IS NULL
	`)

	args := []interface{}{}
	args = buildVehicleFilter(&queryBuilder, args, filter)

	argCount := len(args) + 1
	queryBuilder.WriteString(fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", argCount, argCount+1))
	args = append(args, limit, offset)

	rows, err := r.db.Query(ctx, queryBuilder.String(), args...)
	if err != nil {
		r.log.Error("Failed to find vehicles", zap.Error(err))
		return nil, fmt.Errorf("failed to find vehicles: %w", err)
	}
	defer rows.Close()

	var vehicles []*entity.Vehicle
	for rows.Next() {
		var vehicle entity.Vehicle
		err := rows.Scan(
			&vehicle.ID,
			&vehicle.OwnerID,
			&vehicle.Make,
			&vehicle.Model,
			&vehicle.Year,
			&vehicle.PlateNumber,
			&vehicle.Color,
			&vehicle.BodyType,
			&vehicle.FuelType,
			&vehicle.Transmission,
			&vehicle.SeatingCapacity,
			&vehicle.Features,
			&vehicle.DailyRate,
			&vehicle.DepositAmount,
			&vehicle.MileageLimit,
			&vehicle.Status,
			&vehicle.IsActive,
			&vehicle.PickupLocation,
			&vehicle.Rating,
			&vehicle.CreatedAt,
			&vehicle.UpdatedAt,
		)
		if err != nil {
			r.log.Error("Failed to scan vehicle row", zap.Error(err))
			return nil, fmt.Errorf("failed to scan vehicle: %w", err)
		}
		vehicles = append(vehicles, &vehicle)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate vehicles: %w", err)
	}

	return vehicles, nil
}

func (r *vehicleRepository) CountAll(ctx context.Context, filter VehicleFilter) (int64, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT COUNT(*) FROM vehicles WHERE deleted_at IS NULL`)

	args := []interface{}{}
	args = buildVehicleFilter(&queryBuilder, args, filter)

	var count int64
	err := r.db.QueryRow(ctx, queryBuilder.String(), args...).Scan(&count)
	if err != nil {
		r.log.Error("Failed to count vehicles", zap.Error(err))
		return 0, fmt.Errorf("failed to count vehicles: %w", err)
	}

	return count, nil
}

func (r *vehicleRepository) Update(ctx context.Context, vehicle *entity.Vehicle) error {
	query := `
		UPDATE vehicles
		SET make = $2, model = $3, year = $4, plate_number = $5, color = $6,
		    body_type = $7, fuel_type = $8, transmission = $9, seating_capacity = $10,
		    features = $11, daily_rate = $12, deposit_amount = $13, mileage_limit = $14,
		    status = $15, is_active = $16, pickup_location = $17, updated_at = $18
		WHERE id = $1 AND deleted_at IS NULL
	`

	result, err := r.db.Exec(ctx, query,
		vehicle.ID,
		vehicle.Make,
		vehicle.Model,
		vehicle.Year,
		vehicle.PlateNumber,
		vehicle.Color,
		vehicle.BodyType,
		vehicle.FuelType,
		vehicle.Transmission,
		vehicle.SeatingCapacity,
		vehicle.Features,
		vehicle.DailyRate,
		vehicle.DepositAmount,
		vehicle.MileageLimit,
		vehicle.Status,
		vehicle.IsActive,
		vehicle.PickupLocation,
		vehicle.UpdatedAt,
	)

	if err != nil {
		r.log.Error("Failed to update vehicle",
			zap.Error(err),
			zap.String("vehicle_id", vehicle.ID.String()),
		)
		return fmt.Errorf("failed to update vehicle: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("vehicle %s not found", vehicle.ID.String())
	}

	return nil
}

func (r *vehicleRepository) Delete(ctx context.Context, id uuid.UUID) error {
	// Soft delete
	query := `
		UPDATE vehicles
		SET deleted_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
	`

	result, err := r.db.Exec(ctx, query, id)
	if err != nil {
		r.log.Error("Failed to delete vehicle",
			zap.Error(err),
			zap.String("vehicle_id", id.String()),
		)
		return fmt.Errorf("failed to delete vehicle: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("vehicle %s not found", id.String())
	}

	r.log.Info("Vehicle deleted", zap.String("vehicle_id", id.String()))
	return nil
}

func (r *vehicleRepository) UpdateStatus(ctx context.Context, vehicleID uuid.UUID, status entity.VehicleStatus) error {
	query := `
		UPDATE vehicles
		SET status = $2, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
	`

	result, err := r.db.Exec(ctx, query, vehicleID, status)
	if err != nil {
		r.log.Error("Failed to update vehicle status",
			zap.Error(err),
			zap.String("vehicle_id", vehicleID.String()),
			zap.String("status", string(status)),
		)
		return fmt.Errorf("failed to update vehicle status: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("vehicle %s not found", vehicleID.String())
	}

	return nil
}

func (r *vehicleRepository) UpdateRating(ctx context.Context, vehicleID uuid.UUID, newRating float64) error {
	query := `
		UPDATE vehicles
		SET rating = $2, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
	`

	_, err := r.db.Exec(ctx, query, vehicleID, newRating)
	if err != nil {
		r.log.Error("Failed to update vehicle rating",
			zap.Error(err),
			zap.String("vehicle_id", vehicleID.String()),
		)
		return fmt.Errorf("failed to update vehicle rating: %w", err)
	}

	return nil
}
