package models

import (
	"time"

	"github.com/google/uuid"
)

// Note is a free-text annotation attached to another entity
// (property, booking, vehicle, invoice or task).
type Note struct {
	ID         uuid.UUID  `json:"id" db:"id"`
	TenantID   uuid.UUID  `json:"tenant_id" db:"tenant_id"`
	EntityType string     `json:"entity_type" db:"entity_type"`
	EntityID   uuid.UUID  `json:"entity_id" db:"entity_id"`
	Body       string     `json:"body" db:"body"`
	AuthorID   *uuid.UUID `json:"author_id" db:"author_id"`
	CreatedAt  time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at" db:"updated_at"`
}
