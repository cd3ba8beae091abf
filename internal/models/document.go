package models

import (
	"time"

	"github.com/google/uuid"
)

// Document is metadata for a file stored in object storage, attached to a
// property, booking, vehicle or invoice.
type Document struct {
	ID          uuid.UUID  `json:"id" db:"id"`
	TenantID    uuid.UUID  `json:"tenant_id" db:"tenant_id"`
	EntityType  string     `json:"entity_type" db:"entity_type"`
	EntityID    uuid.UUID  `json:"entity_id" db:"entity_id"`
	FileName    string     `json:"file_name" db:"file_name"`
	ObjectKey   string     `json:"object_key" db:"object_key"`
	ContentType string     `json:"content_type" db:"content_type"`
	SizeBytes   int64      `json:"size_bytes" db:"size_bytes"`
	UploadedBy  *uuid.UUID `json:"uploaded_by" db:"uploaded_by"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
}
