package request

type VehicleRequest struct {
	Make            string   `json:"make" validate:"required,min=1,max=50"`
	Model           string   `json:"model" validate:"required,min=1,max=50"`
	Year            int      `json:"year" validate:"required,min=1980,max=2100"`
	PlateNumber     string   `json:"plate_number" validate:"required,min=3,max=15"`
	Color           string   `json:"color" validate:"required,min=1,max=30"`
	BodyType        string   `json:"body_type" validate:"required,oneof=sedan suv hatchback mpv pickup van coupe"`
	FuelType        string   `json:"fuel_type" validate:"required,oneof=petrol diesel electric hybrid"`
	Transmission    string   `json:"transmission" validate:"required,oneof=manual automatic"`
	SeatingCapacity int      `json:"seating_capacity" validate:"required,min=1,max=20"`
	Features        []string `json:"features,omitempty" validate:"dive,min=1,max=50"`
	DailyRate       float64  `json:"daily_rate" validate:"required,gt=0"`
	DepositAmount   float64  `json:"deposit_amount" validate:"gte=0"`
	MileageLimit    int      `json:"mileage_limit" validate:"gte=0"`
	PickupLocation  string   `json:"pickup_location" validate:"required,min=1,max=200"`
}

// VehicleFilterRequest diisi dari query params listing, semua optional
type VehicleFilterRequest struct {
	BodyType     *string  `json:"body_type,omitempty"`
	Transmission *string  `json:"transmission,omitempty"`
	FuelType     *string  `json:"fuel_type,omitempty"`
	Status       *string  `json:"status,omitempty"`
	OwnerID      *string  `json:"owner_id,omitempty"`
	MaxDailyRate *float64 `json:"max_daily_rate,omitempty"`
}

type VehicleUpdateRequest struct {
	Make            *string  `json:"make,omitempty" validate:"omitempty,min=1,max=50"`
	Model           *string  `json:"model,omitempty" validate:"omitempty,min=1,max=50"`
	Year            *int     `json:"year,omitempty" validate:"omitempty,min=1980,max=2100"`
	Color           *string  `json:"color,omitempty" validate:"omitempty,min=1,max=30"`
	BodyType        *string  `json:"body_type,omitempty" validate:"omitempty,oneof=sedan suv hatchback mpv pickup van coupe"`
	FuelType        *string  `json:"fuel_type,omitempty" validate:"omitempty,oneof=petrol diesel electric hybrid"`
	Transmission    *string  `json:"transmission,omitempty" validate:"omitempty,oneof=manual automatic"`
	SeatingCapacity *int     `json:"seating_capacity,omitempty" validate:"omitempty,min=1,max=20"`
	Features        []string `json:"features,omitempty" validate:"omitempty,dive,min=1,max=50"`
	DailyRate       *float64 `json:"daily_rate,omitempty" validate:"omitempty,gt=0"`
	DepositAmount   *float64 `json:"deposit_amount,omitempty" validate:"omitempty,gte=0"`
	MileageLimit    *int     `json:"mileage_limit,omitempty" validate:"omitempty,gte=0"`
	PickupLocation  *string  `json:"pickup_location,omitempty" validate:"omitempty,min=1,max=200"`

	// Status rented dikelola sistem lewat lifecycle booking, bukan dari sini
	Status   *string `json:"status,omitempty" validate:"omitempty,oneof=available maintenance inactive"`
	IsActive *bool   `json:"is_active,omitempty"`
}
