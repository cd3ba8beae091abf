package models

import (
	"time"

	"github.com/google/uuid"
)

type Vehicle struct {
	ID           uuid.UUID  `json:"id" db:"id"`
	TenantID     uuid.UUID  `json:"tenant_id" db:"tenant_id"`
	PropertyID   *uuid.UUID `json:"property_id" db:"property_id"`
	Make         string     `json:"make" db:"make"`
	Model        string     `json:"model" db:"model"`
	Year         *int       `json:"year" db:"year"`
	LicensePlate string     `json:"license_plate" db:"license_plate"`
	Color        *string    `json:"color" db:"color"`
	Status       string     `json:"status" db:"status"`
	Notes        *string    `json:"notes" db:"notes"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at" db:"updated_at"`
}
