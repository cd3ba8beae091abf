package repositories

import (
	"context"
	"fmt"
	"time"

	"casaops/internal/models"

	"github.com/google/uuid"
)

type InvoiceRepository interface {
	Create(ctx context.Context, invoice *models.Invoice, items []models.InvoiceLineItem) error
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Invoice, error)
	Update(ctx context.Context, invoice *models.Invoice) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
	List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Invoice, error)
	GetByStatus(ctx context.Context, tenantID uuid.UUID, status string, limit, offset int) ([]*models.Invoice, error)
	GetUnpaid(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Invoice, error)
	GetByBookingID(ctx context.Context, tenantID, bookingID uuid.UUID) ([]*models.Invoice, error)
	GetByDateRange(ctx context.Context, tenantID uuid.UUID, startDate, endDate time.Time) ([]*models.Invoice, error)
	UpdateStatus(ctx context.Context, tenantID, invoiceID uuid.UUID, status string) error
	ListTenantsWithUnpaid(ctx context.Context) ([]uuid.UUID, error)
	GenerateInvoiceNumber(ctx context.Context, tenantID uuid.UUID, issuedDate time.Time) (string, error)
	GetLineItems(ctx context.Context, invoiceID uuid.UUID) ([]models.InvoiceLineItem, error)
	ReplaceLineItems(ctx context.Context, invoice *models.Invoice, items []models.InvoiceLineItem) error
}

type invoiceRepo struct {
	db Database
}

func NewInvoiceRepository(db Database) InvoiceRepository {
	return &invoiceRepo{db: db}
}

const invoiceColumns = `id, tenant_id, property_id, booking_id, invoice_number, guest_name, status, subtotal, tax_amount, total_amount, amount_paid, issued_date, due_date, paid_date, notes, created_at, updated_at`

func (r *invoiceRepo) scanInvoice(row interface{ Scan(dest ...any) error }) (*models.Invoice, error) {
	invoice := &models.Invoice{}
	err := row.Scan(&invoice.ID, &invoice.TenantID, &invoice.PropertyID, &invoice.BookingID, &invoice.InvoiceNumber, &invoice.GuestName, &invoice.Status, &invoice.Subtotal, &invoice.TaxAmount, &invoice.TotalAmount, &invoice.AmountPaid, &invoice.IssuedDate, &invoice.DueDate, &invoice.PaidDate, &invoice.Notes, &invoice.CreatedAt, &invoice.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return invoice, nil
}

// Create inserts the invoice and its line items in one transaction.
func (r *invoiceRepo) Create(ctx context.Context, invoice *models.Invoice, items []models.InvoiceLineItem) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO invoices (id, tenant_id, property_id, booking_id, invoice_number, guest_name, status, subtotal, tax_amount, total_amount, amount_paid, issued_date, due_date, paid_date, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, NOW(), NOW())
	`
	_, err = tx.Exec(ctx, query, invoice.ID, invoice.TenantID, invoice.PropertyID, invoice.BookingID, invoice.InvoiceNumber, invoice.GuestName, invoice.Status, invoice.Subtotal, invoice.TaxAmount, invoice.TotalAmount, invoice.AmountPaid, invoice.IssuedDate, invoice.DueDate, invoice.PaidDate, invoice.Notes)
	if err != nil {
		return err
	}

	itemQuery := `
		INSERT INTO invoice_line_items (id, invoice_id, line_number, description, quantity, unit_price, tax_rate, tax_amount, item_type, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW())
	`
	for i := range items {
		item := &items[i]
		if item.ID == uuid.Nil {
			item.ID = uuid.New()
		}
		item.InvoiceID = invoice.ID
		if _, err := tx.Exec(ctx, itemQuery, item.ID, item.InvoiceID, item.LineNumber, item.Description, item.Quantity, item.UnitPrice, item.TaxRate, item.TaxAmount, item.ItemType); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (r *invoiceRepo) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Invoice, error) {
	query := `
		SELECT ` + invoiceColumns + `
		FROM invoices
		WHERE tenant_id = $1 AND id = $2
	`
	return r.scanInvoice(r.db.QueryRow(ctx, query, tenantID, id))
}

func (r *invoiceRepo) Update(ctx context.Context, invoice *models.Invoice) error {
	query := `
		UPDATE invoices
		SET guest_name = $1, status = $2, subtotal = $3, tax_amount = $4, total_amount = $5, amount_paid = $6, issued_date = $7, due_date = $8, paid_date = $9, notes = $10, updated_at = NOW()
		WHERE tenant_id = $11 AND id = $12
	`
	_, err := r.db.Exec(ctx, query, invoice.GuestName, invoice.Status, invoice.Subtotal, invoice.TaxAmount, invoice.TotalAmount, invoice.AmountPaid, invoice.IssuedDate, invoice.DueDate, invoice.PaidDate, invoice.Notes, invoice.TenantID, invoice.ID)
	return err
}

func (r *invoiceRepo) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	// Line items go via ON DELETE CASCADE.
	query := `DELETE FROM invoices WHERE tenant_id = $1 AND id = $2`
	_, err := r.db.Exec(ctx, query, tenantID, id)
	return err
}

func (r *invoiceRepo) List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Invoice, error) {
	query := `
		SELECT ` + invoiceColumns + `
		FROM invoices
		WHERE tenant_id = $1
		ORDER BY issued_date DESC
		LIMIT $2 OFFSET $3
	`
	return r.queryInvoices(ctx, query, tenantID, limit, offset)
}

func (r *invoiceRepo) GetByStatus(ctx context.Context, tenantID uuid.UUID, status string, limit, offset int) ([]*models.Invoice, error) {
	query := `
		SELECT ` + invoiceColumns + `
		FROM invoices
		WHERE tenant_id = $1 AND status = $2
		ORDER BY issued_date DESC
		LIMIT $3 OFFSET $4
	`
	return r.queryInvoices(ctx, query, tenantID, status, limit, offset)
}

func (r *invoiceRepo) GetUnpaid(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Invoice, error) {
	query := `
		SELECT ` + invoiceColumns + `
		FROM invoices
		WHERE tenant_id = $1 AND status NOT IN ('paid', 'cancelled', 'draft')
		ORDER BY issued_date DESC
		LIMIT $2 OFFSET $3
	`
	return r.queryInvoices(ctx, query, tenantID, limit, offset)
}

func (r *invoiceRepo) GetByBookingID(ctx context.Context, tenantID, bookingID uuid.UUID) ([]*models.Invoice, error) {
	query := `
		SELECT ` + invoiceColumns + `
		FROM invoices
		WHERE tenant_id = $1 AND booking_id = $2
		ORDER BY issued_date DESC
	`
	return r.queryInvoices(ctx, query, tenantID, bookingID)
}

func (r *invoiceRepo) GetByDateRange(ctx context.Context, tenantID uuid.UUID, startDate, endDate time.Time) ([]*models.Invoice, error) {
	query := `
		SELECT ` + invoiceColumns + `
		FROM invoices
		WHERE tenant_id = $1 AND issued_date BETWEEN $2 AND $3
		ORDER BY issued_date ASC
	`
	return r.queryInvoices(ctx, query, tenantID, startDate, endDate)
}

func (r *invoiceRepo) UpdateStatus(ctx context.Context, tenantID, invoiceID uuid.UUID, status string) error {
	query := `
		UPDATE invoices
		SET status = $1, updated_at = NOW()
		WHERE tenant_id = $2 AND id = $3
	`
	_, err := r.db.Exec(ctx, query, status, tenantID, invoiceID)
	return err
}

// ListTenantsWithUnpaid returns the tenants that currently hold open invoices.
// Used by the background overdue sweep to scope per-tenant work.
func (r *invoiceRepo) ListTenantsWithUnpaid(ctx context.Context) ([]uuid.UUID, error) {
	query := `
		SELECT DISTINCT tenant_id
		FROM invoices
		WHERE status NOT IN ('paid', 'cancelled', 'draft')
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tenantIDs []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		tenantIDs = append(tenantIDs, id)
	}
	return tenantIDs, rows.Err()
}

// GenerateInvoiceNumber generates a unique invoice number for a tenant using
// a per-tenant monthly sequence.
func (r *invoiceRepo) GenerateInvoiceNumber(ctx context.Context, tenantID uuid.UUID, issuedDate time.Time) (string, error) {
	yearMonth := issuedDate.Format("2006-01")

	query := `
		WITH upsert AS (
			INSERT INTO invoice_sequences (tenant_id, year_month, last_number)
			VALUES ($1, $2, 1)
			ON CONFLICT (tenant_id, year_month)
			DO UPDATE SET
				last_number = invoice_sequences.last_number + 1,
				updated_at = NOW()
			RETURNING last_number
		)
		SELECT last_number FROM upsert;
	`

	var sequenceNum int
	err := r.db.QueryRow(ctx, query, tenantID, yearMonth).Scan(&sequenceNum)
	if err != nil {
		return "", fmt.Errorf("failed to generate invoice sequence: %w", err)
	}

	// Format: INV-TENANTSUFFIX-YYYY-MM-XXXXXX
	tenantSuffix := tenantID.String()[len(tenantID.String())-8:]
	return fmt.Sprintf("INV-%s-%s-%06d", tenantSuffix, yearMonth, sequenceNum), nil
}

func (r *invoiceRepo) GetLineItems(ctx context.Context, invoiceID uuid.UUID) ([]models.InvoiceLineItem, error) {
	query := `
		SELECT id, invoice_id, line_number, description, quantity, unit_price, tax_rate, tax_amount, item_type, created_at
		FROM invoice_line_items
		WHERE invoice_id = $1
		ORDER BY line_number ASC
	`
	rows, err := r.db.Query(ctx, query, invoiceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []models.InvoiceLineItem
	for rows.Next() {
		item := models.InvoiceLineItem{}
		if err := rows.Scan(&item.ID, &item.InvoiceID, &item.LineNumber, &item.Description, &item.Quantity, &item.UnitPrice, &item.TaxRate, &item.TaxAmount, &item.ItemType, &item.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

// ReplaceLineItems persists an edited line item list wholesale: delete all
// rows, reinsert the new list, and write the recomputed invoice totals. The
// whole exchange runs in one transaction so a failure mid-save cannot leave
// the invoice with no line items.
func (r *invoiceRepo) ReplaceLineItems(ctx context.Context, invoice *models.Invoice, items []models.InvoiceLineItem) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM invoice_line_items WHERE invoice_id = $1`, invoice.ID); err != nil {
		return err
	}

	insertQuery := `
		INSERT INTO invoice_line_items (id, invoice_id, line_number, description, quantity, unit_price, tax_rate, tax_amount, item_type, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW())
	`
	for i := range items {
		item := &items[i]
		if item.ID == uuid.Nil {
			item.ID = uuid.New()
		}
		item.InvoiceID = invoice.ID
		if _, err := tx.Exec(ctx, insertQuery, item.ID, item.InvoiceID, item.LineNumber, item.Description, item.Quantity, item.UnitPrice, item.TaxRate, item.TaxAmount, item.ItemType); err != nil {
			return err
		}
	}

	updateQuery := `
		UPDATE invoices
		SET subtotal = $1, tax_amount = $2, total_amount = $3, updated_at = NOW()
		WHERE tenant_id = $4 AND id = $5
	`
	if _, err := tx.Exec(ctx, updateQuery, invoice.Subtotal, invoice.TaxAmount, invoice.TotalAmount, invoice.TenantID, invoice.ID); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *invoiceRepo) queryInvoices(ctx context.Context, query string, args ...any) ([]*models.Invoice, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var invoices []*models.Invoice
	for rows.Next() {
		invoice, err := r.scanInvoice(rows)
		if err != nil {
			return nil, err
		}
		invoices = append(invoices, invoice)
	}
	return invoices, nil
}
