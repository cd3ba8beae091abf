package models

import (
	"time"

	"github.com/google/uuid"
)

// PropertySearchFilter holds search and filter criteria for property queries
type PropertySearchFilter struct {
	Query       string     `json:"query,omitempty"`        // Full-text search across name, address, city
	Status      *string    `json:"status,omitempty"`       // Status filter (active, inactive, maintenance)
	City        *string    `json:"city,omitempty"`         // City filter
	MinBedrooms *int       `json:"min_bedrooms,omitempty"` // Minimum bedrooms
	MaxBedrooms *int       `json:"max_bedrooms,omitempty"` // Maximum bedrooms
	OwnerID     *uuid.UUID `json:"owner_id,omitempty"`     // Owner filter
	SortBy      string     `json:"sort_by,omitempty"`      // Sort field: name, city, created_at
	SortOrder   string     `json:"sort_order,omitempty"`   // Sort order: asc, desc
	Limit       int        `json:"limit,omitempty"`        // Page size (default: 50)
	Offset      int        `json:"offset,omitempty"`       // Page offset
}

type Property struct {
	ID          uuid.UUID  `json:"id" db:"id"`
	TenantID    uuid.UUID  `json:"tenant_id" db:"tenant_id"`
	OwnerID     *uuid.UUID `json:"owner_id" db:"owner_id"`
	Name        string     `json:"name" db:"name"`
	Address     string     `json:"address" db:"address"`
	City        *string    `json:"city" db:"city"`
	SizeSqft    *int       `json:"size_sqft" db:"size_sqft"`
	Bedrooms    int        `json:"bedrooms" db:"bedrooms"`
	Bathrooms   float64    `json:"bathrooms" db:"bathrooms"`
	Capacity    int        `json:"capacity" db:"capacity"`
	MaxCapacity *int       `json:"max_capacity" db:"max_capacity"`
	Status      string     `json:"status" db:"status"`
	Notes       *string    `json:"notes" db:"notes"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
}
