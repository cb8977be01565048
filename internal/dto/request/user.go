package request

type UpdateProfileRequest struct {
	FullName      *string `json:"full_name,omitempty" validate:"omitempty,min=1,max=100"`
	Phone         *string `json:"phone,omitempty" validate:"omitempty,min=10,max=15"`
	DriverLicense *string `json:"driver_license,omitempty" validate:"omitempty,min=5,max=30"`
	DateOfBirth   *string `json:"date_of_birth,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Address       *string `json:"address,omitempty" validate:"omitempty,max=300"`
}

type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=6"`
}
