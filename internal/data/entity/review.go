package entity

import (
	"github.com/google/uuid"
)

// Review dari renter untuk vehicle. Satu user cuma boleh satu review per
// vehicle, dan harus pernah menyelesaikan booking di vehicle itu.
type Review struct {
	BaseSimple
	UserID    uuid.UUID `db:"user_id"`
	VehicleID uuid.UUID `db:"vehicle_id"`
	Rating    int       `db:"rating"` // 1-5
	Comment   *string   `db:"comment"`
}
