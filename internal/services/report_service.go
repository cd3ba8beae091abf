package services

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"time"

	"casaops/internal/billing"
	"casaops/internal/common"
	"casaops/internal/models"
	"casaops/internal/repositories"

	"github.com/google/uuid"
	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"
)

// FinancialSummary aggregates invoice figures over a reporting period
type FinancialSummary struct {
	TotalInvoices    int     `json:"total_invoices"`
	DraftInvoices    int     `json:"draft_invoices"`
	UnpaidInvoices   int     `json:"unpaid_invoices"`
	PartiallyPaid    int     `json:"partially_paid_invoices"`
	PaidInvoices     int     `json:"paid_invoices"`
	OverdueInvoices  int     `json:"overdue_invoices"`
	TotalBilled      float64 `json:"total_billed"`
	TotalTaxBilled   float64 `json:"total_tax_billed"`
	TotalCollected   float64 `json:"total_collected"`
	TotalOutstanding float64 `json:"total_outstanding"`
	AvgInvoiceValue  float64 `json:"avg_invoice_value"`
	CollectionRate   float64 `json:"collection_rate"`
}

// OccupancyRow is one property's occupancy over a reporting period
type OccupancyRow struct {
	PropertyID   uuid.UUID `json:"property_id"`
	PropertyName string    `json:"property_name"`
	NightsBooked int       `json:"nights_booked"`
	NightsInSpan int       `json:"nights_in_span"`
	OccupancyPct float64   `json:"occupancy_pct"`
}

// ReportServiceInterface defines the interface for report service
type ReportServiceInterface interface {
	CalculateFinancialSummary(ctx context.Context, tenantID uuid.UUID, startDate, endDate time.Time) (*FinancialSummary, error)
	CalculateOccupancy(ctx context.Context, tenantID uuid.UUID, startDate, endDate time.Time) ([]OccupancyRow, error)
	GenerateReport(ctx context.Context, tenantID uuid.UUID, reportType, format string, startDate, endDate time.Time, scheduleID *uuid.UUID) (*models.GeneratedReport, string, error)
	ListGeneratedReports(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.GeneratedReport, error)

	// Schedule management
	CreateSchedule(ctx context.Context, schedule *models.ReportSchedule) error
	GetScheduleByID(ctx context.Context, tenantID, scheduleID uuid.UUID) (*models.ReportSchedule, error)
	ListSchedules(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.ReportSchedule, error)
	UpdateSchedule(ctx context.Context, schedule *models.ReportSchedule) error
	DeleteSchedule(ctx context.Context, tenantID, scheduleID uuid.UUID) error
	RunDueSchedules(ctx context.Context) error
}

type reportService struct {
	invoiceRepo  repositories.InvoiceRepository
	bookingRepo  repositories.BookingRepository
	propertyRepo repositories.PropertyRepository
	scheduleRepo repositories.ReportScheduleRepository
	storage      StorageService
	bucketName   string
}

// NewReportService creates a new report service
func NewReportService(invoiceRepo repositories.InvoiceRepository, bookingRepo repositories.BookingRepository, propertyRepo repositories.PropertyRepository, scheduleRepo repositories.ReportScheduleRepository, storage StorageService, bucketName string) ReportServiceInterface {
	return &reportService{
		invoiceRepo:  invoiceRepo,
		bookingRepo:  bookingRepo,
		propertyRepo: propertyRepo,
		scheduleRepo: scheduleRepo,
		storage:      storage,
		bucketName:   bucketName,
	}
}

// CalculateFinancialSummary aggregates invoices issued in the period
func (s *reportService) CalculateFinancialSummary(ctx context.Context, tenantID uuid.UUID, startDate, endDate time.Time) (*FinancialSummary, error) {
	if err := common.ValidateDateRange(startDate, endDate); err != nil {
		return nil, err
	}

	invoices, err := s.invoiceRepo.GetByDateRange(ctx, tenantID, startDate, endDate)
	if err != nil {
		return nil, common.SecureErrorMessage("retrieve invoices for summary", err)
	}

	summary := &FinancialSummary{}
	for _, invoice := range invoices {
		switch invoice.Status {
		case "cancelled":
			continue // cancelled invoices are excluded from all figures
		case "draft":
			summary.DraftInvoices++
		case "unpaid":
			summary.UnpaidInvoices++
		case "partially_paid":
			summary.PartiallyPaid++
		case "paid":
			summary.PaidInvoices++
		case "overdue":
			summary.OverdueInvoices++
		}

		summary.TotalInvoices++
		summary.TotalBilled += invoice.TotalAmount
		summary.TotalTaxBilled += invoice.TaxAmount
		summary.TotalCollected += invoice.AmountPaid
		summary.TotalOutstanding += invoice.TotalAmount - invoice.AmountPaid
	}

	summary.TotalBilled = billing.Round2(summary.TotalBilled)
	summary.TotalTaxBilled = billing.Round2(summary.TotalTaxBilled)
	summary.TotalCollected = billing.Round2(summary.TotalCollected)
	summary.TotalOutstanding = billing.Round2(summary.TotalOutstanding)

	if summary.TotalInvoices > 0 {
		summary.AvgInvoiceValue = billing.Round2(summary.TotalBilled / float64(summary.TotalInvoices))
	}
	if summary.TotalBilled > 0 {
		summary.CollectionRate = billing.Round2(summary.TotalCollected / summary.TotalBilled * 100)
	}
	return summary, nil
}

// CalculateOccupancy computes per-property nights booked over the period.
// Stays are clipped to the period boundaries.
func (s *reportService) CalculateOccupancy(ctx context.Context, tenantID uuid.UUID, startDate, endDate time.Time) ([]OccupancyRow, error) {
	if err := common.ValidateDateRange(startDate, endDate); err != nil {
		return nil, err
	}

	properties, err := s.propertyRepo.List(ctx, tenantID, 1000, 0)
	if err != nil {
		return nil, common.SecureErrorMessage("retrieve properties for occupancy", err)
	}
	bookings, err := s.bookingRepo.GetByDateRange(ctx, tenantID, startDate, endDate)
	if err != nil {
		return nil, common.SecureErrorMessage("retrieve bookings for occupancy", err)
	}

	spanNights := int(endDate.Sub(startDate).Hours() / 24)
	if spanNights <= 0 {
		spanNights = 1
	}

	nightsByProperty := make(map[uuid.UUID]int)
	for _, booking := range bookings {
		if booking.Status == "cancelled" || booking.Status == "no_show" {
			continue
		}
		from := booking.CheckInDate
		if from.Before(startDate) {
			from = startDate
		}
		to := booking.CheckOutDate
		if to.After(endDate) {
			to = endDate
		}
		nights := int(to.Sub(from).Hours() / 24)
		if nights > 0 {
			nightsByProperty[booking.PropertyID] += nights
		}
	}

	rows := make([]OccupancyRow, 0, len(properties))
	for _, property := range properties {
		booked := nightsByProperty[property.ID]
		rows = append(rows, OccupancyRow{
			PropertyID:   property.ID,
			PropertyName: property.Name,
			NightsBooked: booked,
			NightsInSpan: spanNights,
			OccupancyPct: billing.Round2(float64(booked) / float64(spanNights) * 100),
		})
	}
	return rows, nil
}

// GenerateReport renders the requested report, stores the artifact and
// returns the record plus a presigned download URL.
func (s *reportService) GenerateReport(ctx context.Context, tenantID uuid.UUID, reportType, format string, startDate, endDate time.Time, scheduleID *uuid.UUID) (*models.GeneratedReport, string, error) {
	var content []byte
	var err error

	switch format {
	case models.ReportFormatExcel:
		content, err = s.renderExcel(ctx, tenantID, reportType, startDate, endDate)
	case models.ReportFormatPDF:
		content, err = s.renderPDF(ctx, tenantID, reportType, startDate, endDate)
	default:
		return nil, "", fmt.Errorf("unsupported report format: %s", format)
	}
	if err != nil {
		return nil, "", err
	}

	ext := "xlsx"
	contentType := "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	if format == models.ReportFormatPDF {
		ext = "pdf"
		contentType = "application/pdf"
	}

	report := &models.GeneratedReport{
		ID:         uuid.New(),
		TenantID:   tenantID,
		ScheduleID: scheduleID,
		ReportType: reportType,
		Format:     format,
		SizeBytes:  int64(len(content)),
		CreatedAt:  time.Now(),
	}
	report.ObjectKey = fmt.Sprintf("%s/reports/%s_%s_%s.%s", tenantID, reportType, time.Now().Format("20060102"), report.ID, ext)

	if err := s.storage.UploadObject(ctx, s.bucketName, report.ObjectKey, bytes.NewReader(content), int64(len(content)), contentType); err != nil {
		return nil, "", common.SecureErrorMessage("store report", err)
	}
	if err := s.scheduleRepo.CreateGeneratedReport(ctx, report); err != nil {
		return nil, "", common.SecureErrorMessage("record report", err)
	}

	url, err := s.storage.GetPresignedURL(ctx, s.bucketName, report.ObjectKey, 24*time.Hour)
	if err != nil {
		return nil, "", common.SecureErrorMessage("presign report URL", err)
	}
	return report, url, nil
}

// ListGeneratedReports retrieves past report artifacts
func (s *reportService) ListGeneratedReports(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.GeneratedReport, error) {
	return s.scheduleRepo.ListGeneratedReports(ctx, tenantID, limit, offset)
}

func (s *reportService) renderExcel(ctx context.Context, tenantID uuid.UUID, reportType string, startDate, endDate time.Time) ([]byte, error) {
	file := excelize.NewFile()
	defer file.Close()

	switch reportType {
	case models.ReportTypeFinancialSummary:
		summary, err := s.CalculateFinancialSummary(ctx, tenantID, startDate, endDate)
		if err != nil {
			return nil, err
		}
		sheet := "Financial Summary"
		idx, err := file.NewSheet(sheet)
		if err != nil {
			return nil, err
		}
		file.SetActiveSheet(idx)
		if err := file.DeleteSheet("Sheet1"); err != nil {
			return nil, err
		}

		rows := [][]interface{}{
			{"Period", fmt.Sprintf("%s - %s", startDate.Format("2006-01-02"), endDate.Format("2006-01-02"))},
			{"Total invoices", summary.TotalInvoices},
			{"Draft", summary.DraftInvoices},
			{"Unpaid", summary.UnpaidInvoices},
			{"Partially paid", summary.PartiallyPaid},
			{"Paid", summary.PaidInvoices},
			{"Overdue", summary.OverdueInvoices},
			{"Total billed", summary.TotalBilled},
			{"Tax billed", summary.TotalTaxBilled},
			{"Collected", summary.TotalCollected},
			{"Outstanding", summary.TotalOutstanding},
			{"Average invoice", summary.AvgInvoiceValue},
			{"Collection rate %", summary.CollectionRate},
		}
		for i, row := range rows {
			file.SetCellValue(sheet, fmt.Sprintf("A%d", i+1), row[0])
			file.SetCellValue(sheet, fmt.Sprintf("B%d", i+1), row[1])
		}

	case models.ReportTypeUnpaidInvoices:
		invoices, err := s.invoiceRepo.GetUnpaid(ctx, tenantID, 1000, 0)
		if err != nil {
			return nil, common.SecureErrorMessage("retrieve unpaid invoices", err)
		}
		sheet := "Unpaid Invoices"
		idx, err := file.NewSheet(sheet)
		if err != nil {
			return nil, err
		}
		file.SetActiveSheet(idx)
		if err := file.DeleteSheet("Sheet1"); err != nil {
			return nil, err
		}

		headers := []string{"Invoice Number", "Guest", "Status", "Issued", "Due", "Total", "Paid", "Outstanding"}
		for i, header := range headers {
			cell, _ := excelize.CoordinatesToCellName(i+1, 1)
			file.SetCellValue(sheet, cell, header)
		}
		for i, invoice := range invoices {
			row := i + 2
			file.SetCellValue(sheet, fmt.Sprintf("A%d", row), invoice.InvoiceNumber)
			file.SetCellValue(sheet, fmt.Sprintf("B%d", row), common.SafeString(invoice.GuestName))
			file.SetCellValue(sheet, fmt.Sprintf("C%d", row), invoice.Status)
			file.SetCellValue(sheet, fmt.Sprintf("D%d", row), invoice.IssuedDate.Format("2006-01-02"))
			file.SetCellValue(sheet, fmt.Sprintf("E%d", row), invoice.DueDate.Format("2006-01-02"))
			file.SetCellValue(sheet, fmt.Sprintf("F%d", row), invoice.TotalAmount)
			file.SetCellValue(sheet, fmt.Sprintf("G%d", row), invoice.AmountPaid)
			file.SetCellValue(sheet, fmt.Sprintf("H%d", row), billing.Round2(invoice.TotalAmount-invoice.AmountPaid))
		}

	case models.ReportTypeOccupancy:
		rows, err := s.CalculateOccupancy(ctx, tenantID, startDate, endDate)
		if err != nil {
			return nil, err
		}
		sheet := "Occupancy"
		idx, err := file.NewSheet(sheet)
		if err != nil {
			return nil, err
		}
		file.SetActiveSheet(idx)
		if err := file.DeleteSheet("Sheet1"); err != nil {
			return nil, err
		}

		headers := []string{"Property", "Nights Booked", "Nights In Period", "Occupancy %"}
		for i, header := range headers {
			cell, _ := excelize.CoordinatesToCellName(i+1, 1)
			file.SetCellValue(sheet, cell, header)
		}
		for i, r := range rows {
			row := i + 2
			file.SetCellValue(sheet, fmt.Sprintf("A%d", row), r.PropertyName)
			file.SetCellValue(sheet, fmt.Sprintf("B%d", row), r.NightsBooked)
			file.SetCellValue(sheet, fmt.Sprintf("C%d", row), r.NightsInSpan)
			file.SetCellValue(sheet, fmt.Sprintf("D%d", row), r.OccupancyPct)
		}

	default:
		return nil, fmt.Errorf("unsupported report type: %s", reportType)
	}

	var buf bytes.Buffer
	if err := file.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to render spreadsheet: %w", err)
	}
	return buf.Bytes(), nil
}

func (s *reportService) renderPDF(ctx context.Context, tenantID uuid.UUID, reportType string, startDate, endDate time.Time) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetMargins(20, 20, 20)
	pdf.SetAutoPageBreak(true, 20)

	pdf.SetFont("Arial", "B", 16)
	pdf.SetTextColor(33, 37, 41)
	pdf.Cell(0, 10, "CASA CONCIERGE")
	pdf.Ln(12)

	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Period: %s - %s", startDate.Format("02-Jan-2006"), endDate.Format("02-Jan-2006")))
	pdf.Ln(10)

	writeRow := func(label string, value string) {
		pdf.SetFont("Arial", "", 10)
		pdf.CellFormat(100, 7, label, "1", 0, "L", false, 0, "")
		pdf.CellFormat(70, 7, value, "1", 0, "R", false, 0, "")
		pdf.Ln(7)
	}

	switch reportType {
	case models.ReportTypeFinancialSummary:
		summary, err := s.CalculateFinancialSummary(ctx, tenantID, startDate, endDate)
		if err != nil {
			return nil, err
		}
		pdf.SetFont("Arial", "B", 12)
		pdf.Cell(0, 8, "Financial Summary")
		pdf.Ln(10)

		writeRow("Total invoices", fmt.Sprintf("%d", summary.TotalInvoices))
		writeRow("Paid", fmt.Sprintf("%d", summary.PaidInvoices))
		writeRow("Unpaid", fmt.Sprintf("%d", summary.UnpaidInvoices))
		writeRow("Partially paid", fmt.Sprintf("%d", summary.PartiallyPaid))
		writeRow("Overdue", fmt.Sprintf("%d", summary.OverdueInvoices))
		writeRow("Total billed", fmt.Sprintf("%.2f", summary.TotalBilled))
		writeRow("Tax billed", fmt.Sprintf("%.2f", summary.TotalTaxBilled))
		writeRow("Collected", fmt.Sprintf("%.2f", summary.TotalCollected))
		writeRow("Outstanding", fmt.Sprintf("%.2f", summary.TotalOutstanding))
		writeRow("Collection rate", fmt.Sprintf("%.2f%%", summary.CollectionRate))

	case models.ReportTypeUnpaidInvoices:
		invoices, err := s.invoiceRepo.GetUnpaid(ctx, tenantID, 1000, 0)
		if err != nil {
			return nil, common.SecureErrorMessage("retrieve unpaid invoices", err)
		}
		pdf.SetFont("Arial", "B", 12)
		pdf.Cell(0, 8, "Unpaid Invoices")
		pdf.Ln(10)

		pdf.SetFont("Arial", "B", 9)
		pdf.SetFillColor(240, 240, 240)
		headers := []string{"Invoice", "Guest", "Due", "Outstanding"}
		widths := []float64{45, 55, 30, 40}
		for i, header := range headers {
			pdf.CellFormat(widths[i], 7, header, "1", 0, "C", true, 0, "")
		}
		pdf.Ln(7)

		pdf.SetFont("Arial", "", 9)
		for _, invoice := range invoices {
			outstanding := billing.Round2(invoice.TotalAmount - invoice.AmountPaid)
			pdf.CellFormat(widths[0], 7, invoice.InvoiceNumber, "1", 0, "L", false, 0, "")
			pdf.CellFormat(widths[1], 7, common.SafeString(invoice.GuestName), "1", 0, "L", false, 0, "")
			pdf.CellFormat(widths[2], 7, invoice.DueDate.Format("02-Jan-2006"), "1", 0, "C", false, 0, "")
			pdf.CellFormat(widths[3], 7, fmt.Sprintf("%.2f", outstanding), "1", 0, "R", false, 0, "")
			pdf.Ln(7)
		}

	case models.ReportTypeOccupancy:
		rows, err := s.CalculateOccupancy(ctx, tenantID, startDate, endDate)
		if err != nil {
			return nil, err
		}
		pdf.SetFont("Arial", "B", 12)
		pdf.Cell(0, 8, "Occupancy")
		pdf.Ln(10)

		for _, r := range rows {
			writeRow(r.PropertyName, fmt.Sprintf("%d/%d nights (%.1f%%)", r.NightsBooked, r.NightsInSpan, r.OccupancyPct))
		}

	default:
		return nil, fmt.Errorf("unsupported report type: %s", reportType)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}
	return buf.Bytes(), nil
}

// validateSchedule validates schedule data before persistence
func (s *reportService) validateSchedule(schedule *models.ReportSchedule) error {
	switch schedule.ReportType {
	case models.ReportTypeFinancialSummary, models.ReportTypeUnpaidInvoices, models.ReportTypeOccupancy:
	default:
		return fmt.Errorf("invalid report type: %s", schedule.ReportType)
	}
	switch schedule.Format {
	case models.ReportFormatPDF, models.ReportFormatExcel:
	default:
		return fmt.Errorf("invalid report format: %s", schedule.Format)
	}
	switch schedule.Frequency {
	case "daily", "weekly", "monthly":
	default:
		return fmt.Errorf("invalid frequency: %s. Must be one of: daily, weekly, monthly", schedule.Frequency)
	}
	return nil
}

// CreateSchedule creates a recurring report schedule
func (s *reportService) CreateSchedule(ctx context.Context, schedule *models.ReportSchedule) error {
	if err := s.validateSchedule(schedule); err != nil {
		return err
	}

	now := time.Now()
	if schedule.ID == uuid.Nil {
		schedule.ID = uuid.New()
	}
	schedule.CreatedAt = now
	schedule.UpdatedAt = now

	if err := s.scheduleRepo.Create(ctx, schedule); err != nil {
		return common.SecureErrorMessage("create report schedule", err)
	}
	return nil
}

// GetScheduleByID retrieves a report schedule
func (s *reportService) GetScheduleByID(ctx context.Context, tenantID, scheduleID uuid.UUID) (*models.ReportSchedule, error) {
	return s.scheduleRepo.GetByID(ctx, tenantID, scheduleID)
}

// ListSchedules retrieves report schedules with pagination
func (s *reportService) ListSchedules(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.ReportSchedule, error) {
	return s.scheduleRepo.List(ctx, tenantID, limit, offset)
}

// UpdateSchedule updates a report schedule
func (s *reportService) UpdateSchedule(ctx context.Context, schedule *models.ReportSchedule) error {
	if err := s.validateSchedule(schedule); err != nil {
		return err
	}
	schedule.UpdatedAt = time.Now()
	return s.scheduleRepo.Update(ctx, schedule)
}

// DeleteSchedule removes a report schedule
func (s *reportService) DeleteSchedule(ctx context.Context, tenantID, scheduleID uuid.UUID) error {
	return s.scheduleRepo.Delete(ctx, tenantID, scheduleID)
}

// schedulePeriod returns the reporting window for one schedule run.
func schedulePeriod(frequency string, now time.Time) (time.Time, time.Time) {
	switch frequency {
	case "daily":
		return now.AddDate(0, 0, -1), now
	case "weekly":
		return now.AddDate(0, 0, -7), now
	default: // monthly
		return now.AddDate(0, -1, 0), now
	}
}

// scheduleDue reports whether enough time has passed since the last run.
func scheduleDue(schedule *models.ReportSchedule, now time.Time) bool {
	if schedule.LastRunAt == nil {
		return true
	}
	switch schedule.Frequency {
	case "daily":
		return now.Sub(*schedule.LastRunAt) >= 24*time.Hour
	case "weekly":
		return now.Sub(*schedule.LastRunAt) >= 7*24*time.Hour
	default: // monthly
		return now.After(schedule.LastRunAt.AddDate(0, 1, 0))
	}
}

// RunDueSchedules generates reports for every enabled schedule whose
// interval has elapsed. Called by the background scheduler.
func (s *reportService) RunDueSchedules(ctx context.Context) error {
	schedules, err := s.scheduleRepo.ListEnabled(ctx, 1000, 0)
	if err != nil {
		return common.SecureErrorMessage("list enabled schedules", err)
	}

	now := time.Now()
	for _, schedule := range schedules {
		if !scheduleDue(schedule, now) {
			continue
		}

		start, end := schedulePeriod(schedule.Frequency, now)
		if _, _, err := s.GenerateReport(ctx, schedule.TenantID, schedule.ReportType, schedule.Format, start, end, &schedule.ID); err != nil {
			log.Printf("Scheduled report %s failed: %v", schedule.ID, err)
			continue
		}
		if err := s.scheduleRepo.RecordRun(ctx, schedule.ID, now); err != nil {
			log.Printf("Failed to record run for schedule %s: %v", schedule.ID, err)
		}
	}
	return nil
}
