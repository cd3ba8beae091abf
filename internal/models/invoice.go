package models

import (
	"time"

	"github.com/google/uuid"
)

// Line item types as they appear on an invoice.
const (
	ItemTypeAccommodation = "accommodation"
	ItemTypeCleaning      = "cleaning"
	ItemTypeExtras        = "extras"
	ItemTypeTax           = "tax"
	ItemTypeCommission    = "commission"
	ItemTypeOther         = "other"
)

type Invoice struct {
	ID            uuid.UUID  `json:"id" db:"id"`
	TenantID      uuid.UUID  `json:"tenant_id" db:"tenant_id"`
	PropertyID    uuid.UUID  `json:"property_id" db:"property_id"`
	BookingID     *uuid.UUID `json:"booking_id" db:"booking_id"`
	InvoiceNumber string     `json:"invoice_number" db:"invoice_number"`
	GuestName     *string    `json:"guest_name" db:"guest_name"`
	Status        string     `json:"status" db:"status"`
	Subtotal      float64    `json:"subtotal" db:"subtotal"`
	TaxAmount     float64    `json:"tax_amount" db:"tax_amount"`
	TotalAmount   float64    `json:"total_amount" db:"total_amount"`
	AmountPaid    float64    `json:"amount_paid" db:"amount_paid"`
	IssuedDate    time.Time  `json:"issued_date" db:"issued_date"`
	DueDate       time.Time  `json:"due_date" db:"due_date"`
	PaidDate      *time.Time `json:"paid_date" db:"paid_date"`
	Notes         *string    `json:"notes" db:"notes"`
	CreatedAt     time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at" db:"updated_at"`
}

// InvoiceLineItem is one billable row on an invoice. LineNumber is assigned
// monotonically from 1 within an invoice; removal leaves gaps.
type InvoiceLineItem struct {
	ID          uuid.UUID `json:"id" db:"id"`
	InvoiceID   uuid.UUID `json:"invoice_id" db:"invoice_id"`
	LineNumber  int       `json:"line_number" db:"line_number"`
	Description string    `json:"description" db:"description"`
	Quantity    float64   `json:"quantity" db:"quantity"`
	UnitPrice   float64   `json:"unit_price" db:"unit_price"`
	TaxRate     float64   `json:"tax_rate" db:"tax_rate"`
	TaxAmount   float64   `json:"tax_amount" db:"tax_amount"`
	ItemType    string    `json:"item_type" db:"item_type"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}
