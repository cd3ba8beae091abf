package handlers

import (
	"net/http"
	"time"

	"casaops/internal/common"
	"casaops/internal/models"
	"casaops/internal/services"

	"github.com/labstack/echo/v4"
)

// ReportHandlers handles HTTP requests for reports
type ReportHandlers struct {
	reportService services.ReportServiceInterface
}

// NewReportHandlers creates a new report handlers instance
func NewReportHandlers(reportService services.ReportServiceInterface) *ReportHandlers {
	return &ReportHandlers{reportService: reportService}
}

// parsePeriod reads the from/to query parameters; defaults to the last
// 30 days when absent.
func parsePeriod(c echo.Context) (time.Time, time.Time, error) {
	now := time.Now()
	startDate := now.AddDate(0, 0, -30)
	endDate := now

	if raw := c.QueryParam("from"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return time.Time{}, time.Time{}, echo.NewHTTPError(http.StatusBadRequest, "from must be in YYYY-MM-DD format")
		}
		startDate = parsed
	}
	if raw := c.QueryParam("to"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return time.Time{}, time.Time{}, echo.NewHTTPError(http.StatusBadRequest, "to must be in YYYY-MM-DD format")
		}
		endDate = parsed
	}
	return startDate, endDate, nil
}

// GetFinancialSummary handles GET /reports/financial-summary
func (h *ReportHandlers) GetFinancialSummary(c echo.Context) error {
	ctx := c.Request().Context()

	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	startDate, endDate, err := parsePeriod(c)
	if err != nil {
		return err
	}

	summary, err := h.reportService.CalculateFinancialSummary(ctx, tenantID, startDate, endDate)
	if err != nil {
		return common.SendClientError(c, err.Error())
	}
	return c.JSON(http.StatusOK, summary)
}

// GetOccupancy handles GET /reports/occupancy
func (h *ReportHandlers) GetOccupancy(c echo.Context) error {
	ctx := c.Request().Context()

	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	startDate, endDate, err := parsePeriod(c)
	if err != nil {
		return err
	}

	rows, err := h.reportService.CalculateOccupancy(ctx, tenantID, startDate, endDate)
	if err != nil {
		return common.SendClientError(c, err.Error())
	}
	return c.JSON(http.StatusOK, rows)
}

// GenerateReport handles POST /reports/generate
// Renders the report, stores the artifact and returns a download URL.
func (h *ReportHandlers) GenerateReport(c echo.Context) error {
	ctx := c.Request().Context()

	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	var req struct {
		ReportType string  `json:"report_type"`
		Format     string  `json:"format"`
		From       *string `json:"from"`
		To         *string `json:"to"`
	}
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	now := time.Now()
	startDate := now.AddDate(0, 0, -30)
	endDate := now
	if req.From != nil {
		parsed, err := time.Parse("2006-01-02", *req.From)
		if err != nil {
			return common.SendClientError(c, "from must be in YYYY-MM-DD format")
		}
		startDate = parsed
	}
	if req.To != nil {
		parsed, err := time.Parse("2006-01-02", *req.To)
		if err != nil {
			return common.SendClientError(c, "to must be in YYYY-MM-DD format")
		}
		endDate = parsed
	}

	report, url, err := h.reportService.GenerateReport(ctx, tenantID, req.ReportType, req.Format, startDate, endDate, nil)
	if err != nil {
		return common.SendClientError(c, err.Error())
	}
	return c.JSON(http.StatusCreated, map[string]interface{}{
		"report":       report,
		"download_url": url,
	})
}

// ListGeneratedReports handles GET /reports
func (h *ReportHandlers) ListGeneratedReports(c echo.Context) error {
	ctx := c.Request().Context()

	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	limit, offset := parsePagination(c)
	reports, err := h.reportService.ListGeneratedReports(ctx, tenantID, limit, offset)
	if err != nil {
		return common.SendServerError(c, "Failed to list reports")
	}
	return c.JSON(http.StatusOK, reports)
}

// CreateSchedule handles POST /reports/schedules
func (h *ReportHandlers) CreateSchedule(c echo.Context) error {
	ctx := c.Request().Context()

	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	var req struct {
		ReportType string `json:"report_type"`
		Frequency  string `json:"frequency"`
		Format     string `json:"format"`
		Recipients string `json:"recipients"`
		Enabled    bool   `json:"enabled"`
	}
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	schedule := &models.ReportSchedule{
		TenantID:   tenantID,
		ReportType: req.ReportType,
		Frequency:  req.Frequency,
		Format:     req.Format,
		Recipients: req.Recipients,
		Enabled:    req.Enabled,
	}

	if err := h.reportService.CreateSchedule(ctx, schedule); err != nil {
		return common.SendClientError(c, err.Error())
	}
	return c.JSON(http.StatusCreated, schedule)
}

// ListSchedules handles GET /reports/schedules
func (h *ReportHandlers) ListSchedules(c echo.Context) error {
	ctx := c.Request().Context()

	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	limit, offset := parsePagination(c)
	schedules, err := h.reportService.ListSchedules(ctx, tenantID, limit, offset)
	if err != nil {
		return common.SendServerError(c, "Failed to list schedules")
	}
	return c.JSON(http.StatusOK, schedules)
}

// UpdateSchedule handles PUT /reports/schedules/:id
func (h *ReportHandlers) UpdateSchedule(c echo.Context) error {
	ctx := c.Request().Context()

	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	scheduleID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	existing, err := h.reportService.GetScheduleByID(ctx, tenantID, scheduleID)
	if err != nil {
		return common.SendServerError(c, "Failed to retrieve schedule")
	}
	if existing == nil {
		return common.SendNotFoundError(c, "schedule")
	}

	var schedule models.ReportSchedule
	if err := c.Bind(&schedule); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}
	schedule.ID = scheduleID
	schedule.TenantID = tenantID
	schedule.LastRunAt = existing.LastRunAt
	schedule.CreatedAt = existing.CreatedAt

	if err := h.reportService.UpdateSchedule(ctx, &schedule); err != nil {
		return common.SendClientError(c, err.Error())
	}
	return c.JSON(http.StatusOK, schedule)
}

// DeleteSchedule handles DELETE /reports/schedules/:id
func (h *ReportHandlers) DeleteSchedule(c echo.Context) error {
	ctx := c.Request().Context()

	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	scheduleID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	if err := h.reportService.DeleteSchedule(ctx, tenantID, scheduleID); err != nil {
		return common.SendServerError(c, "Failed to delete schedule")
	}
	return c.NoContent(http.StatusNoContent)
}
