package entity

import (
	"github.com/google/uuid"
)

type VehicleStatus string

const (
	VehicleStatusAvailable   VehicleStatus = "available"
	VehicleStatusRented      VehicleStatus = "rented"
	VehicleStatusMaintenance VehicleStatus = "maintenance"
	VehicleStatusInactive    VehicleStatus = "inactive"
)

type TransmissionType string

const (
	TransmissionManual    TransmissionType = "manual"
	TransmissionAutomatic TransmissionType = "automatic"
)

type FuelType string

const (
	FuelPetrol   FuelType = "petrol"
	FuelDiesel   FuelType = "diesel"
	FuelElectric FuelType = "electric"
	FuelHybrid   FuelType = "hybrid"
)

type Vehicle struct {
	Base
	OwnerID         uuid.UUID        `db:"owner_id"`
	Make            string           `db:"make"`
	Model           string           `db:"model"`
	Year            int              `db:"year"`
	PlateNumber     string           `db:"plate_number"`
	Color           string           `db:"color"`
	BodyType        string           `db:"body_type"`
	FuelType        FuelType         `db:"fuel_type"`
	Transmission    TransmissionType `db:"transmission"`
	SeatingCapacity int              `db:"seating_capacity"`
	Features        []string         `db:"features"`
	DailyRate       float64          `db:"daily_rate"`
	DepositAmount   float64          `db:"deposit_amount"`
	MileageLimit    int              `db:"mileage_limit"`
	Status          VehicleStatus    `db:"status"`
	IsActive        bool             `db:"is_active"`
	PickupLocation  string           `db:"pickup_location"`
	Rating          float64          `db:"rating"`
}

// IsBookable reports whether new bookings may be taken for this vehicle.
// Status rented TIDAK menghalangi booking tanggal lain; yang menghalangi
// cuma maintenance, inactive, atau is_active false dari owner.
func (v *Vehicle) IsBookable() bool {
	if !v.IsActive {
		return false
	}
	return v.Status != VehicleStatusMaintenance && v.Status != VehicleStatusInactive
}
