package handlers

import (
	"errors"
	"net/http"
	"time"

	"casaops/internal/common"
	"casaops/internal/models"
	"casaops/internal/services"

	"github.com/labstack/echo/v4"
)

// BookingHandlers handles HTTP requests for bookings
type BookingHandlers struct {
	bookingService services.BookingServiceInterface
	invoiceService services.InvoiceServiceInterface
}

// NewBookingHandlers creates a new booking handlers instance
func NewBookingHandlers(bookingService services.BookingServiceInterface, invoiceService services.InvoiceServiceInterface) *BookingHandlers {
	return &BookingHandlers{
		bookingService: bookingService,
		invoiceService: invoiceService,
	}
}

type bookingRequest struct {
	PropertyID      string  `json:"property_id"`
	GuestName       string  `json:"guest_name"`
	GuestEmail      *string `json:"guest_email"`
	GuestPhone      *string `json:"guest_phone"`
	CheckInDate     string  `json:"check_in_date"`
	CheckOutDate    string  `json:"check_out_date"`
	Channel         string  `json:"channel"`
	Status          string  `json:"status"`
	BaseAmount      float64 `json:"base_amount"`
	CleaningFee     float64 `json:"cleaning_fee"`
	ExtrasAmount    float64 `json:"extras_amount"`
	TaxAmount       float64 `json:"tax_amount"`
	SecurityDeposit float64 `json:"security_deposit"`
	Notes           *string `json:"notes"`
}

func (r *bookingRequest) toModel() (*models.Booking, error) {
	propertyID, err := common.ValidateUUID(r.PropertyID, "property_id")
	if err != nil {
		return nil, err
	}

	checkIn, err := time.Parse("2006-01-02", r.CheckInDate)
	if err != nil {
		return nil, errors.New("check_in_date must be in YYYY-MM-DD format")
	}
	checkOut, err := time.Parse("2006-01-02", r.CheckOutDate)
	if err != nil {
		return nil, errors.New("check_out_date must be in YYYY-MM-DD format")
	}

	return &models.Booking{
		PropertyID:      propertyID,
		GuestName:       r.GuestName,
		GuestEmail:      r.GuestEmail,
		GuestPhone:      r.GuestPhone,
		CheckInDate:     checkIn,
		CheckOutDate:    checkOut,
		Channel:         r.Channel,
		Status:          r.Status,
		BaseAmount:      r.BaseAmount,
		CleaningFee:     r.CleaningFee,
		ExtrasAmount:    r.ExtrasAmount,
		TaxAmount:       r.TaxAmount,
		SecurityDeposit: r.SecurityDeposit,
		Notes:           r.Notes,
	}, nil
}

// sendConflict returns 409 with the conflicting bookings when the error
// is a double-booking rejection.
func sendConflict(c echo.Context, err error) (bool, error) {
	var conflict *services.ErrBookingConflict
	if errors.As(err, &conflict) {
		return true, c.JSON(http.StatusConflict, map[string]interface{}{
			"error":     conflict.Error(),
			"conflicts": conflict.Conflicts,
		})
	}
	return false, nil
}

// CreateBooking handles POST /bookings
func (h *BookingHandlers) CreateBooking(c echo.Context) error {
	ctx := c.Request().Context()

	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	var req bookingRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	booking, err := req.toModel()
	if err != nil {
		return common.SendClientError(c, err.Error())
	}
	booking.TenantID = tenantID

	if err := h.bookingService.CreateBooking(ctx, booking); err != nil {
		if handled, respErr := sendConflict(c, err); handled {
			return respErr
		}
		return common.SendClientError(c, err.Error())
	}
	return c.JSON(http.StatusCreated, booking)
}

// GetBooking handles GET /bookings/:id
func (h *BookingHandlers) GetBooking(c echo.Context) error {
	ctx := c.Request().Context()

	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	bookingID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	booking, err := h.bookingService.GetBookingByID(ctx, tenantID, bookingID)
	if err != nil {
		return common.SendServerError(c, "Failed to retrieve booking")
	}
	if booking == nil {
		return common.SendNotFoundError(c, "booking")
	}
	return c.JSON(http.StatusOK, booking)
}

// ListBookings handles GET /bookings with optional property and date filters
func (h *BookingHandlers) ListBookings(c echo.Context) error {
	ctx := c.Request().Context()

	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	limit, offset := parsePagination(c)

	if propertyParam := c.QueryParam("property_id"); propertyParam != "" {
		propertyID, err := common.ValidateUUID(propertyParam, "property_id")
		if err != nil {
			return common.SendClientError(c, err.Error())
		}
		bookings, err := h.bookingService.ListBookingsByProperty(ctx, tenantID, propertyID, limit, offset)
		if err != nil {
			return common.SendServerError(c, "Failed to list bookings")
		}
		return c.JSON(http.StatusOK, bookings)
	}

	if from, to := c.QueryParam("from"), c.QueryParam("to"); from != "" && to != "" {
		startDate, err := time.Parse("2006-01-02", from)
		if err != nil {
			return common.SendClientError(c, "from must be in YYYY-MM-DD format")
		}
		endDate, err := time.Parse("2006-01-02", to)
		if err != nil {
			return common.SendClientError(c, "to must be in YYYY-MM-DD format")
		}
		bookings, err := h.bookingService.GetBookingsByDateRange(ctx, tenantID, startDate, endDate)
		if err != nil {
			return common.SendClientError(c, err.Error())
		}
		return c.JSON(http.StatusOK, bookings)
	}

	bookings, err := h.bookingService.ListBookings(ctx, tenantID, limit, offset)
	if err != nil {
		return common.SendServerError(c, "Failed to list bookings")
	}
	return c.JSON(http.StatusOK, bookings)
}

// UpdateBooking handles PUT /bookings/:id
func (h *BookingHandlers) UpdateBooking(c echo.Context) error {
	ctx := c.Request().Context()

	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	bookingID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	existing, err := h.bookingService.GetBookingByID(ctx, tenantID, bookingID)
	if err != nil {
		return common.SendServerError(c, "Failed to retrieve booking")
	}
	if existing == nil {
		return common.SendNotFoundError(c, "booking")
	}

	var req bookingRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	booking, err := req.toModel()
	if err != nil {
		return common.SendClientError(c, err.Error())
	}
	booking.ID = bookingID
	booking.TenantID = tenantID
	booking.Status = existing.Status
	booking.PaymentStatus = existing.PaymentStatus
	booking.CreatedAt = existing.CreatedAt

	if err := h.bookingService.UpdateBooking(ctx, booking); err != nil {
		if handled, respErr := sendConflict(c, err); handled {
			return respErr
		}
		return common.SendClientError(c, err.Error())
	}
	return c.JSON(http.StatusOK, booking)
}

// UpdateBookingStatus handles PUT /bookings/:id/status
func (h *BookingHandlers) UpdateBookingStatus(c echo.Context) error {
	ctx := c.Request().Context()

	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	bookingID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	if err := h.bookingService.UpdateBookingStatus(ctx, tenantID, bookingID, req.Status); err != nil {
		return common.SendClientError(c, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]string{"status": req.Status})
}

// DeleteBooking handles DELETE /bookings/:id
func (h *BookingHandlers) DeleteBooking(c echo.Context) error {
	ctx := c.Request().Context()

	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	bookingID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	if err := h.bookingService.DeleteBooking(ctx, tenantID, bookingID); err != nil {
		return common.SendServerError(c, "Failed to delete booking")
	}
	return c.NoContent(http.StatusNoContent)
}

// CheckAvailability handles GET /bookings/availability
func (h *BookingHandlers) CheckAvailability(c echo.Context) error {
	ctx := c.Request().Context()

	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	propertyID, err := common.ValidateUUID(c.QueryParam("property_id"), "property_id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}
	checkIn, err := time.Parse("2006-01-02", c.QueryParam("check_in"))
	if err != nil {
		return common.SendClientError(c, "check_in must be in YYYY-MM-DD format")
	}
	checkOut, err := time.Parse("2006-01-02", c.QueryParam("check_out"))
	if err != nil {
		return common.SendClientError(c, "check_out must be in YYYY-MM-DD format")
	}

	available, conflicts, err := h.bookingService.CheckAvailability(ctx, tenantID, propertyID, checkIn, checkOut)
	if err != nil {
		return common.SendClientError(c, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"available": available,
		"conflicts": conflicts,
	})
}

// GenerateInvoice handles POST /bookings/:id/invoice
// Builds a draft invoice from the booking's financial components.
func (h *BookingHandlers) GenerateInvoice(c echo.Context) error {
	ctx := c.Request().Context()

	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	bookingID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	invoice, err := h.invoiceService.CreateInvoiceFromBooking(ctx, tenantID, bookingID)
	if err != nil {
		return common.SendClientError(c, err.Error())
	}
	return c.JSON(http.StatusCreated, invoice)
}
