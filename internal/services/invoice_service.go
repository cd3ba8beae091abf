package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"casaops/internal/billing"
	"casaops/internal/common"
	"casaops/internal/models"
	"casaops/internal/repositories"

	"github.com/google/uuid"
)

// InvoiceServiceInterface defines the interface for invoice service
type InvoiceServiceInterface interface {
	CreateInvoice(ctx context.Context, invoice *models.Invoice, items []models.InvoiceLineItem) error
	CreateInvoiceFromBooking(ctx context.Context, tenantID, bookingID uuid.UUID) (*models.Invoice, error)
	GetInvoiceByID(ctx context.Context, tenantID, invoiceID uuid.UUID) (*models.Invoice, error)
	ListInvoices(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Invoice, error)
	UpdateInvoice(ctx context.Context, invoice *models.Invoice) error
	DeleteInvoice(ctx context.Context, tenantID, invoiceID uuid.UUID) error
	UpdateInvoiceStatus(ctx context.Context, tenantID, invoiceID uuid.UUID, status string) error
	GetInvoicesByBookingID(ctx context.Context, tenantID, bookingID uuid.UUID) ([]*models.Invoice, error)
	GetInvoicesByStatus(ctx context.Context, tenantID uuid.UUID, status string, limit, offset int) ([]*models.Invoice, error)
	GetUnpaidInvoices(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Invoice, error)

	// Line item editing
	GetLineItems(ctx context.Context, tenantID, invoiceID uuid.UUID) ([]models.InvoiceLineItem, error)
	ReplaceLineItems(ctx context.Context, tenantID, invoiceID uuid.UUID, items []models.InvoiceLineItem) (*models.Invoice, error)
	AppendLineItem(ctx context.Context, tenantID, invoiceID uuid.UUID) (*models.Invoice, []models.InvoiceLineItem, error)
	RemoveLineItemAt(ctx context.Context, tenantID, invoiceID uuid.UUID, index int) (*models.Invoice, []models.InvoiceLineItem, error)
	EditLineItemField(ctx context.Context, tenantID, invoiceID uuid.UUID, index int, field, value string) (*models.Invoice, []models.InvoiceLineItem, error)

	// Business logic methods
	RecordPayment(ctx context.Context, tenantID, invoiceID uuid.UUID, amount float64, paidAt time.Time) (*models.Invoice, error)
	MarkOverdueInvoices(ctx context.Context, tenantID uuid.UUID) error
	MarkOverdueForAllTenants(ctx context.Context) error
}

type invoiceService struct {
	invoiceRepo   repositories.InvoiceRepository
	bookingRepo   repositories.BookingRepository
	allowNegative bool
	dueDays       int
}

// NewInvoiceService creates a new invoice service. allowNegative permits
// negative quantities and unit prices, used for discount and credit rows.
// dueDays sets the default payment term when no due date is given.
func NewInvoiceService(invoiceRepo repositories.InvoiceRepository, bookingRepo repositories.BookingRepository, allowNegative bool, dueDays int) InvoiceServiceInterface {
	if dueDays <= 0 {
		dueDays = 30
	}
	return &invoiceService{
		invoiceRepo:   invoiceRepo,
		bookingRepo:   bookingRepo,
		allowNegative: allowNegative,
		dueDays:       dueDays,
	}
}

// validateLineItems validates line item data before persistence
func (s *invoiceService) validateLineItems(items []models.InvoiceLineItem) error {
	for i := range items {
		it := &items[i]
		if err := common.ValidateLineItemType(it.ItemType); err != nil {
			return fmt.Errorf("line %d: %w", i+1, err)
		}
		if it.TaxRate < 0 || it.TaxRate > 100 {
			return fmt.Errorf("line %d: tax rate must be between 0 and 100", i+1)
		}
		if !s.allowNegative {
			if it.Quantity < 0 {
				return fmt.Errorf("line %d: quantity cannot be negative", i+1)
			}
			if it.UnitPrice < 0 {
				return fmt.Errorf("line %d: unit price cannot be negative", i+1)
			}
		}
	}
	return nil
}

// isEditable reports whether line items may still change on an invoice.
func (s *invoiceService) isEditable(status string) bool {
	switch status {
	case "draft", "unpaid", "overdue":
		return true
	}
	return false
}

// applyTotals recomputes and rounds invoice totals from its line items.
func applyTotals(invoice *models.Invoice, items []models.InvoiceLineItem) {
	totals := billing.CalculateTotals(items)
	invoice.Subtotal = billing.Round2(totals.Subtotal)
	invoice.TaxAmount = billing.Round2(totals.TaxAmount)
	invoice.TotalAmount = billing.Round2(totals.Total)
	invoice.UpdatedAt = time.Now()
}

// CreateInvoice creates a new invoice with its line items
func (s *invoiceService) CreateInvoice(ctx context.Context, invoice *models.Invoice, items []models.InvoiceLineItem) error {
	if err := s.validateLineItems(items); err != nil {
		return err
	}

	now := time.Now()
	invoice.CreatedAt = now
	invoice.UpdatedAt = now

	if invoice.ID == uuid.Nil {
		invoice.ID = uuid.New()
	}
	if invoice.Status == "" {
		invoice.Status = "draft"
	}
	if err := common.ValidateInvoiceStatus(invoice.Status); err != nil {
		return err
	}
	if invoice.IssuedDate.IsZero() {
		invoice.IssuedDate = now
	}
	if invoice.DueDate.IsZero() {
		invoice.DueDate = invoice.IssuedDate.AddDate(0, 0, s.dueDays)
	}

	if invoice.InvoiceNumber == "" {
		invoiceNumber, err := s.invoiceRepo.GenerateInvoiceNumber(ctx, invoice.TenantID, invoice.IssuedDate)
		if err != nil {
			return common.SecureErrorMessage("generate invoice number", err)
		}
		invoice.InvoiceNumber = invoiceNumber
	}

	applyTotals(invoice, items)

	if err := s.invoiceRepo.Create(ctx, invoice, items); err != nil {
		return common.SecureErrorMessage("create invoice", err)
	}
	return nil
}

// CreateInvoiceFromBooking builds an invoice from a booking's financial
// components and persists it as a draft.
func (s *invoiceService) CreateInvoiceFromBooking(ctx context.Context, tenantID, bookingID uuid.UUID) (*models.Invoice, error) {
	booking, err := s.bookingRepo.GetByID(ctx, tenantID, bookingID)
	if err != nil {
		return nil, common.SecureErrorMessage("retrieve booking for invoice generation", err)
	}
	if booking == nil {
		return nil, fmt.Errorf("booking not found")
	}

	existing, err := s.invoiceRepo.GetByBookingID(ctx, tenantID, bookingID)
	if err != nil {
		return nil, common.SecureErrorMessage("check existing invoices", err)
	}
	for _, inv := range existing {
		if inv.Status != "cancelled" {
			return nil, fmt.Errorf("an active invoice already exists for this booking")
		}
	}

	items := billing.LineItemsFromBooking(booking)

	now := time.Now()
	invoice := &models.Invoice{
		ID:         uuid.New(),
		TenantID:   tenantID,
		PropertyID: booking.PropertyID,
		BookingID:  &booking.ID,
		GuestName:  &booking.GuestName,
		Status:     "draft",
		IssuedDate: now,
		DueDate:    now.AddDate(0, 0, s.dueDays),
	}

	if err := s.CreateInvoice(ctx, invoice, items); err != nil {
		return nil, err
	}
	return invoice, nil
}

// GetInvoiceByID retrieves an invoice by ID
func (s *invoiceService) GetInvoiceByID(ctx context.Context, tenantID, invoiceID uuid.UUID) (*models.Invoice, error) {
	return s.invoiceRepo.GetByID(ctx, tenantID, invoiceID)
}

// ListInvoices retrieves invoices with pagination
func (s *invoiceService) ListInvoices(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Invoice, error) {
	return s.invoiceRepo.List(ctx, tenantID, limit, offset)
}

// UpdateInvoice updates invoice header fields. Totals stay derived from
// line items and are not touched here.
func (s *invoiceService) UpdateInvoice(ctx context.Context, invoice *models.Invoice) error {
	current, err := s.invoiceRepo.GetByID(ctx, invoice.TenantID, invoice.ID)
	if err != nil {
		return common.SecureErrorMessage("retrieve invoice for update", err)
	}
	if current == nil {
		return fmt.Errorf("invoice not found")
	}

	invoice.Subtotal = current.Subtotal
	invoice.TaxAmount = current.TaxAmount
	invoice.TotalAmount = current.TotalAmount
	invoice.AmountPaid = current.AmountPaid
	invoice.Status = current.Status
	invoice.UpdatedAt = time.Now()
	return s.invoiceRepo.Update(ctx, invoice)
}

// DeleteInvoice deletes an invoice. Only drafts and cancelled invoices
// can be removed.
func (s *invoiceService) DeleteInvoice(ctx context.Context, tenantID, invoiceID uuid.UUID) error {
	invoice, err := s.invoiceRepo.GetByID(ctx, tenantID, invoiceID)
	if err != nil {
		return common.SecureErrorMessage("retrieve invoice for deletion", err)
	}
	if invoice == nil {
		return fmt.Errorf("invoice not found")
	}
	if invoice.Status != "draft" && invoice.Status != "cancelled" {
		return fmt.Errorf("only draft or cancelled invoices can be deleted")
	}
	return s.invoiceRepo.Delete(ctx, tenantID, invoiceID)
}

// isValidStatusTransition validates invoice status transitions
func (s *invoiceService) isValidStatusTransition(currentStatus, newStatus string) bool {
	validTransitions := map[string][]string{
		"draft":          {"unpaid", "cancelled"},
		"unpaid":         {"partially_paid", "paid", "overdue", "cancelled"},
		"partially_paid": {"paid", "overdue", "cancelled"},
		"overdue":        {"partially_paid", "paid", "cancelled"},
		"paid":           {}, // Cannot transition from paid
		"cancelled":      {}, // Cannot transition from cancelled
	}

	allowed, exists := validTransitions[currentStatus]
	if !exists {
		return false
	}
	for _, status := range allowed {
		if status == newStatus {
			return true
		}
	}
	return false
}

// UpdateInvoiceStatus updates invoice status with transition validation
func (s *invoiceService) UpdateInvoiceStatus(ctx context.Context, tenantID, invoiceID uuid.UUID, status string) error {
	if err := common.ValidateInvoiceStatus(status); err != nil {
		return err
	}

	invoice, err := s.invoiceRepo.GetByID(ctx, tenantID, invoiceID)
	if err != nil {
		return common.SecureErrorMessage("get invoice for status update", err)
	}
	if invoice == nil {
		return fmt.Errorf("invoice not found")
	}

	if !s.isValidStatusTransition(invoice.Status, status) {
		return fmt.Errorf("invalid status transition from %s to %s", invoice.Status, status)
	}

	// Changing to paid records the payment date
	if status == "paid" {
		now := time.Now()
		invoice.Status = status
		invoice.PaidDate = &now
		invoice.UpdatedAt = now

		if err := s.invoiceRepo.Update(ctx, invoice); err != nil {
			return common.SecureErrorMessage("update invoice with paid date", err)
		}
		return nil
	}

	if err := s.invoiceRepo.UpdateStatus(ctx, tenantID, invoiceID, status); err != nil {
		return common.SecureErrorMessage("update invoice status", err)
	}
	return nil
}

// GetInvoicesByBookingID retrieves invoices for a specific booking
func (s *invoiceService) GetInvoicesByBookingID(ctx context.Context, tenantID, bookingID uuid.UUID) ([]*models.Invoice, error) {
	return s.invoiceRepo.GetByBookingID(ctx, tenantID, bookingID)
}

// GetInvoicesByStatus retrieves invoices filtered by status
func (s *invoiceService) GetInvoicesByStatus(ctx context.Context, tenantID uuid.UUID, status string, limit, offset int) ([]*models.Invoice, error) {
	if err := common.ValidateInvoiceStatus(status); err != nil {
		return nil, err
	}
	return s.invoiceRepo.GetByStatus(ctx, tenantID, status, limit, offset)
}

// GetUnpaidInvoices retrieves invoices with an outstanding balance
func (s *invoiceService) GetUnpaidInvoices(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Invoice, error) {
	return s.invoiceRepo.GetUnpaid(ctx, tenantID, limit, offset)
}

// GetLineItems returns an invoice's line items in line-number order
func (s *invoiceService) GetLineItems(ctx context.Context, tenantID, invoiceID uuid.UUID) ([]models.InvoiceLineItem, error) {
	invoice, err := s.invoiceRepo.GetByID(ctx, tenantID, invoiceID)
	if err != nil {
		return nil, common.SecureErrorMessage("retrieve invoice", err)
	}
	if invoice == nil {
		return nil, fmt.Errorf("invoice not found")
	}
	return s.invoiceRepo.GetLineItems(ctx, invoiceID)
}

// loadEditable fetches the invoice and its items, rejecting invoices
// whose line items can no longer change.
func (s *invoiceService) loadEditable(ctx context.Context, tenantID, invoiceID uuid.UUID) (*models.Invoice, []models.InvoiceLineItem, error) {
	invoice, err := s.invoiceRepo.GetByID(ctx, tenantID, invoiceID)
	if err != nil {
		return nil, nil, common.SecureErrorMessage("retrieve invoice", err)
	}
	if invoice == nil {
		return nil, nil, fmt.Errorf("invoice not found")
	}
	if !s.isEditable(invoice.Status) {
		return nil, nil, fmt.Errorf("line items cannot be changed on a %s invoice", invoice.Status)
	}

	items, err := s.invoiceRepo.GetLineItems(ctx, invoiceID)
	if err != nil {
		return nil, nil, common.SecureErrorMessage("retrieve line items", err)
	}
	return invoice, items, nil
}

// persistItems writes the edited item list and the recomputed totals.
func (s *invoiceService) persistItems(ctx context.Context, invoice *models.Invoice, items []models.InvoiceLineItem) error {
	applyTotals(invoice, items)
	if err := s.invoiceRepo.ReplaceLineItems(ctx, invoice, items); err != nil {
		return common.SecureErrorMessage("save line items", err)
	}
	return nil
}

// ReplaceLineItems overwrites an invoice's line items wholesale and
// recomputes totals.
func (s *invoiceService) ReplaceLineItems(ctx context.Context, tenantID, invoiceID uuid.UUID, items []models.InvoiceLineItem) (*models.Invoice, error) {
	invoice, _, err := s.loadEditable(ctx, tenantID, invoiceID)
	if err != nil {
		return nil, err
	}
	if err := s.validateLineItems(items); err != nil {
		return nil, err
	}

	// Line numbers keep their monotonic assignment even on full replace
	maxLine := 0
	for i := range items {
		if items[i].LineNumber > maxLine {
			maxLine = items[i].LineNumber
		}
	}
	for i := range items {
		if items[i].LineNumber <= 0 {
			maxLine++
			items[i].LineNumber = maxLine
		}
		items[i].InvoiceID = invoiceID
	}

	if err := s.persistItems(ctx, invoice, items); err != nil {
		return nil, err
	}
	return invoice, nil
}

// AppendLineItem adds a blank row to the invoice
func (s *invoiceService) AppendLineItem(ctx context.Context, tenantID, invoiceID uuid.UUID) (*models.Invoice, []models.InvoiceLineItem, error) {
	invoice, items, err := s.loadEditable(ctx, tenantID, invoiceID)
	if err != nil {
		return nil, nil, err
	}

	items = billing.AddLineItem(items)
	items[len(items)-1].InvoiceID = invoiceID

	if err := s.persistItems(ctx, invoice, items); err != nil {
		return nil, nil, err
	}
	return invoice, items, nil
}

// RemoveLineItemAt deletes the row at index. Remaining rows keep their
// line numbers.
func (s *invoiceService) RemoveLineItemAt(ctx context.Context, tenantID, invoiceID uuid.UUID, index int) (*models.Invoice, []models.InvoiceLineItem, error) {
	invoice, items, err := s.loadEditable(ctx, tenantID, invoiceID)
	if err != nil {
		return nil, nil, err
	}
	if index < 0 || index >= len(items) {
		return nil, nil, fmt.Errorf("line item index out of range")
	}

	items = billing.RemoveLineItem(items, index)

	if err := s.persistItems(ctx, invoice, items); err != nil {
		return nil, nil, err
	}
	return invoice, items, nil
}

// EditLineItemField applies a single field edit to the row at index and
// recomputes the row's tax and the invoice totals.
func (s *invoiceService) EditLineItemField(ctx context.Context, tenantID, invoiceID uuid.UUID, index int, field, value string) (*models.Invoice, []models.InvoiceLineItem, error) {
	invoice, items, err := s.loadEditable(ctx, tenantID, invoiceID)
	if err != nil {
		return nil, nil, err
	}
	if index < 0 || index >= len(items) {
		return nil, nil, fmt.Errorf("line item index out of range")
	}

	items = billing.UpdateLineItem(items, index, field, value)
	if err := s.validateLineItems(items[index : index+1]); err != nil {
		return nil, nil, err
	}

	if err := s.persistItems(ctx, invoice, items); err != nil {
		return nil, nil, err
	}
	return invoice, items, nil
}

// RecordPayment applies a payment against the invoice balance. Partial
// payments move the invoice to partially_paid; covering the balance
// marks it paid.
func (s *invoiceService) RecordPayment(ctx context.Context, tenantID, invoiceID uuid.UUID, amount float64, paidAt time.Time) (*models.Invoice, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("payment amount must be positive")
	}

	invoice, err := s.invoiceRepo.GetByID(ctx, tenantID, invoiceID)
	if err != nil {
		return nil, common.SecureErrorMessage("retrieve invoice for payment", err)
	}
	if invoice == nil {
		return nil, fmt.Errorf("invoice not found")
	}

	switch invoice.Status {
	case "paid":
		return nil, fmt.Errorf("invoice is already paid")
	case "cancelled", "draft":
		return nil, fmt.Errorf("cannot record a payment on a %s invoice", invoice.Status)
	}

	remaining := billing.Round2(invoice.TotalAmount - invoice.AmountPaid)
	if amount > remaining {
		return nil, fmt.Errorf("payment of %.2f exceeds outstanding balance of %.2f", amount, remaining)
	}

	invoice.AmountPaid = billing.Round2(invoice.AmountPaid + amount)
	invoice.UpdatedAt = time.Now()

	if invoice.AmountPaid >= invoice.TotalAmount {
		invoice.Status = "paid"
		invoice.PaidDate = &paidAt
	} else {
		invoice.Status = "partially_paid"
	}

	if err := s.invoiceRepo.Update(ctx, invoice); err != nil {
		return nil, common.SecureErrorMessage("record payment", err)
	}
	return invoice, nil
}

// MarkOverdueInvoices marks open invoices as overdue once past due date
func (s *invoiceService) MarkOverdueInvoices(ctx context.Context, tenantID uuid.UUID) error {
	invoices, err := s.invoiceRepo.GetUnpaid(ctx, tenantID, 1000, 0)
	if err != nil {
		return common.SecureErrorMessage("retrieve invoices for overdue marking", err)
	}

	now := time.Now()
	for _, invoice := range invoices {
		if invoice.Status == "overdue" || !now.After(invoice.DueDate) {
			continue
		}
		if err := s.UpdateInvoiceStatus(ctx, tenantID, invoice.ID, "overdue"); err != nil {
			log.Printf("Failed to mark invoice %s as overdue: %v", invoice.ID, err)
		}
	}
	return nil
}

// MarkOverdueForAllTenants runs the overdue sweep for every tenant that has
// open invoices. A failing tenant is logged and skipped so one bad tenant
// cannot stall the rest of the sweep.
func (s *invoiceService) MarkOverdueForAllTenants(ctx context.Context) error {
	tenantIDs, err := s.invoiceRepo.ListTenantsWithUnpaid(ctx)
	if err != nil {
		return common.SecureErrorMessage("list tenants for overdue sweep", err)
	}

	for _, tenantID := range tenantIDs {
		if err := s.MarkOverdueInvoices(ctx, tenantID); err != nil {
			log.Printf("Overdue sweep failed for tenant %s: %v", tenantID, err)
		}
	}
	return nil
}
