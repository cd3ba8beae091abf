package models

import (
	"time"

	"github.com/google/uuid"
)

type Booking struct {
	ID              uuid.UUID  `json:"id" db:"id"`
	TenantID        uuid.UUID  `json:"tenant_id" db:"tenant_id"`
	PropertyID      uuid.UUID  `json:"property_id" db:"property_id"`
	GuestName       string     `json:"guest_name" db:"guest_name"`
	GuestEmail      *string    `json:"guest_email" db:"guest_email"`
	GuestPhone      *string    `json:"guest_phone" db:"guest_phone"`
	CheckInDate     time.Time  `json:"check_in_date" db:"check_in_date"`
	CheckOutDate    time.Time  `json:"check_out_date" db:"check_out_date"`
	Channel         string     `json:"channel" db:"channel"`
	Status          string     `json:"status" db:"status"`
	BaseAmount      float64    `json:"base_amount" db:"base_amount"`
	CleaningFee     float64    `json:"cleaning_fee" db:"cleaning_fee"`
	ExtrasAmount    float64    `json:"extras_amount" db:"extras_amount"`
	TaxAmount       float64    `json:"tax_amount" db:"tax_amount"`
	SecurityDeposit float64    `json:"security_deposit" db:"security_deposit"`
	PaymentStatus   string     `json:"payment_status" db:"payment_status"`
	Notes           *string    `json:"notes" db:"notes"`
	CreatedAt       time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at" db:"updated_at"`
}

// Nights returns the whole-day span between check-in and check-out.
func (b *Booking) Nights() int {
	return int(b.CheckOutDate.Sub(b.CheckInDate).Hours() / 24)
}
