package models

import (
	"time"

	"github.com/google/uuid"
)

// Report types and output formats supported by the report service.
const (
	ReportTypeFinancialSummary = "financial_summary"
	ReportTypeUnpaidInvoices   = "unpaid_invoices"
	ReportTypeOccupancy        = "occupancy"

	ReportFormatPDF   = "pdf"
	ReportFormatExcel = "excel"
)

// ReportSchedule describes a recurring report run by the background scheduler.
// Recipients is a comma-separated list of email addresses.
type ReportSchedule struct {
	ID         uuid.UUID  `json:"id" db:"id"`
	TenantID   uuid.UUID  `json:"tenant_id" db:"tenant_id"`
	ReportType string     `json:"report_type" db:"report_type"`
	Frequency  string     `json:"frequency" db:"frequency"`
	Format     string     `json:"format" db:"format"`
	Recipients string     `json:"recipients" db:"recipients"`
	Enabled    bool       `json:"enabled" db:"enabled"`
	LastRunAt  *time.Time `json:"last_run_at" db:"last_run_at"`
	CreatedAt  time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at" db:"updated_at"`
}

// GeneratedReport records a report artifact stored in object storage.
type GeneratedReport struct {
	ID         uuid.UUID `json:"id" db:"id"`
	TenantID   uuid.UUID `json:"tenant_id" db:"tenant_id"`
	ScheduleID *uuid.UUID `json:"schedule_id" db:"schedule_id"`
	ReportType string    `json:"report_type" db:"report_type"`
	Format     string    `json:"format" db:"format"`
	ObjectKey  string    `json:"object_key" db:"object_key"`
	SizeBytes  int64     `json:"size_bytes" db:"size_bytes"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}
