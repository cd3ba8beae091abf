package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"casaops/internal/common"
	"casaops/internal/models"
	"casaops/internal/services"

	"github.com/jung-kurt/gofpdf"
	"github.com/labstack/echo/v4"
)

// InvoiceHandlers handles HTTP requests for invoices
type InvoiceHandlers struct {
	invoiceService  services.InvoiceServiceInterface
	propertyService services.PropertyServiceInterface
	storage         services.StorageService
	bucketName      string
}

// NewInvoiceHandlers creates a new invoice handlers instance
func NewInvoiceHandlers(invoiceService services.InvoiceServiceInterface, propertyService services.PropertyServiceInterface, storage services.StorageService, bucketName string) *InvoiceHandlers {
	return &InvoiceHandlers{
		invoiceService:  invoiceService,
		propertyService: propertyService,
		storage:         storage,
		bucketName:      bucketName,
	}
}

// parseIndexParam parses a zero-based line item index path parameter
func parseIndexParam(raw string) (int, error) {
	index, err := strconv.Atoi(raw)
	if err != nil || index < 0 {
		return 0, fmt.Errorf("index must be a non-negative integer")
	}
	return index, nil
}

type lineItemRequest struct {
	LineNumber  int     `json:"line_number"`
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
	TaxRate     float64 `json:"tax_rate"`
	TaxAmount   float64 `json:"tax_amount"`
	ItemType    string  `json:"item_type"`
}

func lineItemsFromRequest(reqs []lineItemRequest) []models.InvoiceLineItem {
	items := make([]models.InvoiceLineItem, 0, len(reqs))
	for _, r := range reqs {
		items = append(items, models.InvoiceLineItem{
			LineNumber:  r.LineNumber,
			Description: r.Description,
			Quantity:    r.Quantity,
			UnitPrice:   r.UnitPrice,
			TaxRate:     r.TaxRate,
			TaxAmount:   r.TaxAmount,
			ItemType:    r.ItemType,
		})
	}
	return items
}

// CreateInvoice handles POST /invoices
// Creates a manual invoice with optional line items.
func (h *InvoiceHandlers) CreateInvoice(c echo.Context) error {
	ctx := c.Request().Context()

	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	var req struct {
		PropertyID string            `json:"property_id"`
		BookingID  *string           `json:"booking_id"`
		GuestName  *string           `json:"guest_name"`
		IssuedDate *string           `json:"issued_date"`
		DueDate    *string           `json:"due_date"`
		Notes      *string           `json:"notes"`
		LineItems  []lineItemRequest `json:"line_items"`
	}
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	propertyID, err := common.ValidateUUID(req.PropertyID, "property_id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	property, err := h.propertyService.GetPropertyByID(ctx, tenantID, propertyID)
	if err != nil {
		return common.SendServerError(c, "Failed to retrieve property")
	}
	if property == nil {
		return common.SendNotFoundError(c, "property")
	}

	invoice := &models.Invoice{
		TenantID:   tenantID,
		PropertyID: propertyID,
		GuestName:  req.GuestName,
		Notes:      req.Notes,
	}

	if req.BookingID != nil && *req.BookingID != "" {
		bookingID, err := common.ValidateUUID(*req.BookingID, "booking_id")
		if err != nil {
			return common.SendClientError(c, err.Error())
		}
		invoice.BookingID = &bookingID
	}
	if req.IssuedDate != nil {
		issued, err := time.Parse("2006-01-02", *req.IssuedDate)
		if err != nil {
			return common.SendClientError(c, "issued_date must be in YYYY-MM-DD format")
		}
		invoice.IssuedDate = issued
	}
	if req.DueDate != nil {
		due, err := time.Parse("2006-01-02", *req.DueDate)
		if err != nil {
			return common.SendClientError(c, "due_date must be in YYYY-MM-DD format")
		}
		invoice.DueDate = due
	}

	items := lineItemsFromRequest(req.LineItems)
	for i := range items {
		if items[i].LineNumber <= 0 {
			items[i].LineNumber = i + 1
		}
	}

	if err := h.invoiceService.CreateInvoice(ctx, invoice, items); err != nil {
		return common.SendClientError(c, err.Error())
	}
	return c.JSON(http.StatusCreated, invoice)
}

// GetInvoice handles GET /invoices/:id
// Returns the invoice with its line items.
func (h *InvoiceHandlers) GetInvoice(c echo.Context) error {
	ctx := c.Request().Context()

	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	invoiceID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	invoice, err := h.invoiceService.GetInvoiceByID(ctx, tenantID, invoiceID)
	if err != nil {
		return common.SendServerError(c, "Failed to retrieve invoice")
	}
	if invoice == nil {
		return common.SendNotFoundError(c, "invoice")
	}

	items, err := h.invoiceService.GetLineItems(ctx, tenantID, invoiceID)
	if err != nil {
		return common.SendServerError(c, "Failed to retrieve line items")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"invoice":    invoice,
		"line_items": items,
	})
}

// ListInvoices handles GET /invoices with optional status filter
func (h *InvoiceHandlers) ListInvoices(c echo.Context) error {
	ctx := c.Request().Context()

	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	limit, offset := parsePagination(c)

	if status := c.QueryParam("status"); status != "" {
		invoices, err := h.invoiceService.GetInvoicesByStatus(ctx, tenantID, status, limit, offset)
		if err != nil {
			return common.SendClientError(c, err.Error())
		}
		return c.JSON(http.StatusOK, invoices)
	}

	invoices, err := h.invoiceService.ListInvoices(ctx, tenantID, limit, offset)
	if err != nil {
		return common.SendServerError(c, "Failed to list invoices")
	}
	return c.JSON(http.StatusOK, invoices)
}

// GetUnpaidInvoices handles GET /invoices/unpaid
func (h *InvoiceHandlers) GetUnpaidInvoices(c echo.Context) error {
	ctx := c.Request().Context()

	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	limit, offset := parsePagination(c)
	invoices, err := h.invoiceService.GetUnpaidInvoices(ctx, tenantID, limit, offset)
	if err != nil {
		return common.SendServerError(c, "Failed to list unpaid invoices")
	}
	return c.JSON(http.StatusOK, invoices)
}

// UpdateInvoice handles PUT /invoices/:id
func (h *InvoiceHandlers) UpdateInvoice(c echo.Context) error {
	ctx := c.Request().Context()

	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	invoiceID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	existing, err := h.invoiceService.GetInvoiceByID(ctx, tenantID, invoiceID)
	if err != nil {
		return common.SendServerError(c, "Failed to retrieve invoice")
	}
	if existing == nil {
		return common.SendNotFoundError(c, "invoice")
	}

	var invoice models.Invoice
	if err := c.Bind(&invoice); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}
	invoice.ID = invoiceID
	invoice.TenantID = tenantID
	invoice.PropertyID = existing.PropertyID
	invoice.InvoiceNumber = existing.InvoiceNumber
	invoice.CreatedAt = existing.CreatedAt

	if err := h.invoiceService.UpdateInvoice(ctx, &invoice); err != nil {
		return common.SendClientError(c, err.Error())
	}
	return c.JSON(http.StatusOK, invoice)
}

// UpdateInvoiceStatus handles PUT /invoices/:id/status
func (h *InvoiceHandlers) UpdateInvoiceStatus(c echo.Context) error {
	ctx := c.Request().Context()

	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	invoiceID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	if err := h.invoiceService.UpdateInvoiceStatus(ctx, tenantID, invoiceID, req.Status); err != nil {
		return common.SendClientError(c, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]string{"status": req.Status})
}

// DeleteInvoice handles DELETE /invoices/:id
func (h *InvoiceHandlers) DeleteInvoice(c echo.Context) error {
	ctx := c.Request().Context()

	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	invoiceID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	if err := h.invoiceService.DeleteInvoice(ctx, tenantID, invoiceID); err != nil {
		return common.SendClientError(c, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

// ReplaceLineItems handles PUT /invoices/:id/line-items
// Overwrites the full line item list and recomputes totals.
func (h *InvoiceHandlers) ReplaceLineItems(c echo.Context) error {
	ctx := c.Request().Context()

	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	invoiceID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	var req struct {
		LineItems []lineItemRequest `json:"line_items"`
	}
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	invoice, err := h.invoiceService.ReplaceLineItems(ctx, tenantID, invoiceID, lineItemsFromRequest(req.LineItems))
	if err != nil {
		return common.SendClientError(c, err.Error())
	}
	return c.JSON(http.StatusOK, invoice)
}

// AppendLineItem handles POST /invoices/:id/line-items
func (h *InvoiceHandlers) AppendLineItem(c echo.Context) error {
	ctx := c.Request().Context()

	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	invoiceID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	invoice, items, err := h.invoiceService.AppendLineItem(ctx, tenantID, invoiceID)
	if err != nil {
		return common.SendClientError(c, err.Error())
	}
	return c.JSON(http.StatusCreated, map[string]interface{}{
		"invoice":    invoice,
		"line_items": items,
	})
}

// EditLineItemField handles PATCH /invoices/:id/line-items/:index
// Applies one field edit; quantity, unit price and tax rate edits
// recompute the row's tax amount.
func (h *InvoiceHandlers) EditLineItemField(c echo.Context) error {
	ctx := c.Request().Context()

	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	invoiceID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	index, err := parseIndexParam(c.Param("index"))
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	var req struct {
		Field string `json:"field"`
		Value string `json:"value"`
	}
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	invoice, items, err := h.invoiceService.EditLineItemField(ctx, tenantID, invoiceID, index, req.Field, req.Value)
	if err != nil {
		return common.SendClientError(c, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"invoice":    invoice,
		"line_items": items,
	})
}

// RemoveLineItem handles DELETE /invoices/:id/line-items/:index
func (h *InvoiceHandlers) RemoveLineItem(c echo.Context) error {
	ctx := c.Request().Context()

	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	invoiceID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	index, err := parseIndexParam(c.Param("index"))
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	invoice, items, err := h.invoiceService.RemoveLineItemAt(ctx, tenantID, invoiceID, index)
	if err != nil {
		return common.SendClientError(c, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"invoice":    invoice,
		"line_items": items,
	})
}

// RecordPayment handles POST /invoices/:id/payments
func (h *InvoiceHandlers) RecordPayment(c echo.Context) error {
	ctx := c.Request().Context()

	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	invoiceID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	var req struct {
		Amount float64 `json:"amount"`
		PaidAt *string `json:"paid_at"`
	}
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	paidAt := time.Now()
	if req.PaidAt != nil {
		parsed, err := time.Parse("2006-01-02", *req.PaidAt)
		if err != nil {
			return common.SendClientError(c, "paid_at must be in YYYY-MM-DD format")
		}
		paidAt = parsed
	}

	invoice, err := h.invoiceService.RecordPayment(ctx, tenantID, invoiceID, req.Amount, paidAt)
	if err != nil {
		return common.SendClientError(c, err.Error())
	}
	return c.JSON(http.StatusOK, invoice)
}

// GenerateInvoicePDF handles POST /invoices/:id/generate-pdf
// Renders the invoice, stores it and returns a presigned download URL.
func (h *InvoiceHandlers) GenerateInvoicePDF(c echo.Context) error {
	ctx := c.Request().Context()

	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	invoiceID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	invoice, err := h.invoiceService.GetInvoiceByID(ctx, tenantID, invoiceID)
	if err != nil {
		return common.SendServerError(c, "Failed to retrieve invoice")
	}
	if invoice == nil {
		return common.SendNotFoundError(c, "invoice")
	}

	items, err := h.invoiceService.GetLineItems(ctx, tenantID, invoiceID)
	if err != nil {
		return common.SendServerError(c, "Failed to retrieve line items")
	}

	property, err := h.propertyService.GetPropertyByID(ctx, tenantID, invoice.PropertyID)
	if err != nil {
		return common.SendServerError(c, "Failed to retrieve property")
	}

	pdfBytes, err := renderInvoicePDF(invoice, items, property)
	if err != nil {
		return common.SendServerError(c, "Failed to render invoice PDF")
	}

	objectKey := fmt.Sprintf("%s/invoices/%s.pdf", tenantID, invoice.InvoiceNumber)
	if err := h.storage.UploadObject(ctx, h.bucketName, objectKey, bytes.NewReader(pdfBytes), int64(len(pdfBytes)), "application/pdf"); err != nil {
		return common.SendServerError(c, "Failed to store invoice PDF")
	}

	url, err := h.storage.GetPresignedURL(ctx, h.bucketName, objectKey, 24*time.Hour)
	if err != nil {
		return common.SendServerError(c, "Failed to presign download URL")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"object_key":   objectKey,
		"download_url": url,
		"size_bytes":   len(pdfBytes),
	})
}

// renderInvoicePDF lays out a guest invoice with its line item table.
func renderInvoicePDF(invoice *models.Invoice, items []models.InvoiceLineItem, property *models.Property) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	marginX := 20.0
	marginY := 20.0
	pdf.SetMargins(marginX, marginY, marginX)
	pdf.SetAutoPageBreak(true, marginY)

	pdf.SetFont("Arial", "B", 16)
	pdf.SetTextColor(33, 37, 41)
	pdf.SetXY(marginX, marginY)
	pdf.Cell(0, 10, "CASA CONCIERGE INVOICE")
	pdf.Ln(15)

	pdf.SetFont("Arial", "B", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Invoice Number: %s", invoice.InvoiceNumber))
	pdf.Ln(8)
	pdf.Cell(0, 8, fmt.Sprintf("Issued: %s", invoice.IssuedDate.Format("02-Jan-2006")))
	pdf.Ln(8)
	pdf.Cell(0, 8, fmt.Sprintf("Due: %s", invoice.DueDate.Format("02-Jan-2006")))
	pdf.Ln(8)

	if property != nil {
		pdf.Cell(0, 8, fmt.Sprintf("Property: %s", property.Name))
		pdf.Ln(8)
	}
	pdf.Ln(5)

	pdf.SetFont("Arial", "B", 11)
	pdf.Cell(0, 8, "BILL TO:")
	pdf.Ln(6)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, common.SafeString(invoice.GuestName))
	pdf.Ln(10)

	// Line item table
	pdf.SetFont("Arial", "B", 10)
	pdf.SetFillColor(240, 240, 240)

	headers := []string{"#", "Description", "Qty", "Rate", "Tax", "Amount"}
	colWidths := []float64{10, 70, 18, 26, 22, 24}
	for i, header := range headers {
		pdf.CellFormat(colWidths[i], 8, header, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(8)

	pdf.SetFont("Arial", "", 10)
	pdf.SetFillColor(255, 255, 255)
	for _, item := range items {
		lineAmount := item.Quantity*item.UnitPrice + item.TaxAmount
		pdf.CellFormat(colWidths[0], 8, fmt.Sprintf("%d", item.LineNumber), "1", 0, "C", false, 0, "")
		pdf.CellFormat(colWidths[1], 8, item.Description, "1", 0, "L", false, 0, "")
		pdf.CellFormat(colWidths[2], 8, fmt.Sprintf("%.2f", item.Quantity), "1", 0, "C", false, 0, "")
		pdf.CellFormat(colWidths[3], 8, fmt.Sprintf("%.2f", item.UnitPrice), "1", 0, "R", false, 0, "")
		pdf.CellFormat(colWidths[4], 8, fmt.Sprintf("%.2f", item.TaxAmount), "1", 0, "R", false, 0, "")
		pdf.CellFormat(colWidths[5], 8, fmt.Sprintf("%.2f", lineAmount), "1", 0, "R", false, 0, "")
		pdf.Ln(8)
	}
	pdf.Ln(5)

	// Totals
	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(130, 6, "Subtotal:", "", 0, "R", false, 0, "")
	pdf.CellFormat(40, 6, fmt.Sprintf("%.2f", invoice.Subtotal), "", 0, "R", false, 0, "")
	pdf.Ln(6)
	pdf.CellFormat(130, 6, "Tax:", "", 0, "R", false, 0, "")
	pdf.CellFormat(40, 6, fmt.Sprintf("%.2f", invoice.TaxAmount), "", 0, "R", false, 0, "")
	pdf.Ln(6)

	pdf.SetFont("Arial", "B", 11)
	pdf.SetTextColor(220, 20, 60)
	pdf.CellFormat(130, 8, "TOTAL:", "", 0, "R", false, 0, "")
	pdf.CellFormat(40, 8, fmt.Sprintf("%.2f", invoice.TotalAmount), "", 0, "R", false, 0, "")
	pdf.Ln(8)

	if invoice.AmountPaid > 0 {
		pdf.SetTextColor(33, 37, 41)
		pdf.SetFont("Arial", "", 10)
		pdf.CellFormat(130, 6, "Paid:", "", 0, "R", false, 0, "")
		pdf.CellFormat(40, 6, fmt.Sprintf("%.2f", invoice.AmountPaid), "", 0, "R", false, 0, "")
		pdf.Ln(6)
		pdf.CellFormat(130, 6, "Balance due:", "", 0, "R", false, 0, "")
		pdf.CellFormat(40, 6, fmt.Sprintf("%.2f", invoice.TotalAmount-invoice.AmountPaid), "", 0, "R", false, 0, "")
		pdf.Ln(6)
	}

	// Footer
	pdf.Ln(10)
	pdf.SetFont("Arial", "I", 8)
	pdf.SetTextColor(128, 128, 128)
	pdf.Cell(0, 5, "Thank you for staying with us!")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}
	return buf.Bytes(), nil
}
