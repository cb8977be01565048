package entity

import (
	"time"
)

type UserRole string

const (
	RoleCustomer UserRole = "customer"
	RoleAdmin    UserRole = "admin"
)

type User struct {
	Base
	Username      string     `db:"username"`
	Email         string     `db:"email"`
	PasswordHash  string     `db:"password"`
	FullName      string     `db:"full_name"`
	Phone         *string    `db:"phone"`
	DriverLicense *string    `db:"driver_license"`
	DateOfBirth   *time.Time `db:"date_of_birth"`
	Address       *string    `db:"address"`
	Role          UserRole   `db:"role"`
	EmailVerified bool       `db:"email_verified"`
	IsActive      bool       `db:"is_active"`
}
