package common

import (
	"context"
	"fmt"
	"html"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type contextKey string

const (
	UserIDKey   contextKey = "user_id"
	TenantIDKey contextKey = "tenant_id"
)

// ErrorResponse represents a standardized error response
type ErrorResponse struct {
	Error struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Details map[string]string `json:"details,omitempty"`
	} `json:"error"`
}

// CreateErrorResponse creates a standardized error response
func CreateErrorResponse(code string, message string, details map[string]string) *ErrorResponse {
	var resp ErrorResponse
	resp.Error.Code = code
	resp.Error.Message = message
	resp.Error.Details = details
	return &resp
}

// SendValidationError sends a validation error response
func SendValidationError(c echo.Context, field, message string) error {
	details := map[string]string{
		field: message,
	}
	return c.JSON(http.StatusBadRequest, CreateErrorResponse("VALIDATION_ERROR", "Validation failed", details))
}

// SendClientError sends a client error response
func SendClientError(c echo.Context, message string) error {
	return c.JSON(http.StatusBadRequest, CreateErrorResponse("CLIENT_ERROR", message, nil))
}

// SendServerError sends a server error response
func SendServerError(c echo.Context, message string) error {
	return c.JSON(http.StatusInternalServerError, CreateErrorResponse("SERVER_ERROR", message, nil))
}

// SendNotFoundError sends a not found error response
func SendNotFoundError(c echo.Context, resource string) error {
	return c.JSON(http.StatusNotFound, CreateErrorResponse("NOT_FOUND", fmt.Sprintf("%s not found", resource), nil))
}

// SendUnauthorizedError sends an unauthorized error response
func SendUnauthorizedError(c echo.Context) error {
	return c.JSON(http.StatusUnauthorized, CreateErrorResponse("UNAUTHORIZED", "Unauthorized access", nil))
}

// ValidateUUID validates UUID format
func ValidateUUID(idStr string, fieldName string) (uuid.UUID, error) {
	idStr = strings.TrimSpace(idStr)
	if idStr == "" {
		return uuid.Nil, fmt.Errorf("%s is required", fieldName)
	}

	id, err := uuid.Parse(idStr)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%s is not a valid UUID: %v", fieldName, err)
	}

	return id, nil
}

// ValidateRequiredString validates required string fields
func ValidateRequiredString(value, fieldName string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%s is required", fieldName)
	}
	return nil
}

// ValidateOptionalString validates optional string fields
func ValidateOptionalString(value *string, fieldName string, maxLength int) error {
	if value != nil {
		if len(*value) > maxLength {
			return fmt.Errorf("%s cannot exceed %d characters", fieldName, maxLength)
		}
		*value = strings.TrimSpace(*value)
	}
	return nil
}

// ValidateDateFormat validates date strings
func ValidateDateFormat(dateStr, fieldName string) error {
	if strings.TrimSpace(dateStr) == "" {
		return nil // Empty is allowed, will be handled elsewhere
	}

	date, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		return fmt.Errorf("%s must be in YYYY-MM-DD format", fieldName)
	}

	// Check for reasonable date bounds
	if date.After(time.Now().AddDate(10, 0, 0)) {
		return fmt.Errorf("%s cannot be more than 10 years in the future", fieldName)
	}
	if date.Before(time.Now().AddDate(-100, 0, 0)) {
		return fmt.Errorf("%s cannot be more than 100 years ago", fieldName)
	}

	return nil
}

// ValidateInvoiceStatus validates invoice status values
func ValidateInvoiceStatus(status string) error {
	validStatuses := map[string]bool{
		"draft": true, "unpaid": true, "partially_paid": true,
		"paid": true, "overdue": true, "cancelled": true,
	}
	if !validStatuses[status] {
		return fmt.Errorf("invoice status must be one of: draft, unpaid, partially_paid, paid, overdue, cancelled")
	}
	return nil
}

// ValidateBookingStatus validates booking status values
func ValidateBookingStatus(status string) error {
	validStatuses := map[string]bool{
		"inquiry": true, "pending": true, "confirmed": true, "checked_in": true,
		"checked_out": true, "completed": true, "cancelled": true, "no_show": true,
	}
	if !validStatuses[status] {
		return fmt.Errorf("booking status must be one of: inquiry, pending, confirmed, checked_in, checked_out, completed, cancelled, no_show")
	}
	return nil
}

// ValidateBookingChannel validates booking channel values
func ValidateBookingChannel(channel string) error {
	validChannels := map[string]bool{
		"direct": true, "airbnb": true, "booking": true, "vrbo": true,
		"expedia": true, "agent": true, "phone": true, "other": true,
	}
	if !validChannels[channel] {
		return fmt.Errorf("booking channel must be one of: direct, airbnb, booking, vrbo, expedia, agent, phone, other")
	}
	return nil
}

// ValidateTaskStatus validates task status values
func ValidateTaskStatus(status string) error {
	validStatuses := map[string]bool{
		"open": true, "in_progress": true, "done": true, "cancelled": true,
	}
	if !validStatuses[status] {
		return fmt.Errorf("task status must be one of: open, in_progress, done, cancelled")
	}
	return nil
}

// ValidateTaskPriority validates task priority values
func ValidateTaskPriority(priority string) error {
	validPriorities := map[string]bool{
		"low": true, "medium": true, "high": true, "urgent": true,
	}
	if !validPriorities[priority] {
		return fmt.Errorf("task priority must be one of: low, medium, high, urgent")
	}
	return nil
}

// ValidateLineItemType validates invoice line item types
func ValidateLineItemType(itemType string) error {
	validTypes := map[string]bool{
		"accommodation": true, "cleaning": true, "extras": true,
		"tax": true, "commission": true, "other": true,
	}
	if !validTypes[itemType] {
		return fmt.Errorf("item type must be one of: accommodation, cleaning, extras, tax, commission, other")
	}
	return nil
}

// ValidateEntityType validates which entities notes and documents may attach to
func ValidateEntityType(entityType string) error {
	validTypes := map[string]bool{
		"property": true, "booking": true, "vehicle": true,
		"invoice": true, "task": true,
	}
	if !validTypes[entityType] {
		return fmt.Errorf("entity type must be one of: property, booking, vehicle, invoice, task")
	}
	return nil
}

// SafeString safely handles string pointer operations
func SafeString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// SafeFloat64 safely handles float64 pointer operations
func SafeFloat64(f *float64) float64 {
	if f == nil {
		return 0.0
	}
	return *f
}

// GetUserIDFromContext extracts the user ID from the request context
func GetUserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	userID, ok := ctx.Value(UserIDKey).(uuid.UUID)
	return userID, ok
}

// GetTenantIDFromContext extracts the tenant ID from the request context
func GetTenantIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	tenantID, ok := ctx.Value(TenantIDKey).(uuid.UUID)
	return tenantID, ok
}

// SanitizeHTMLElement escapes HTML characters to prevent XSS attacks
func SanitizeHTMLElement(input string) string {
	return html.EscapeString(input)
}

// SanitizeHTMLField sanitizes string pointer fields for HTML display
func SanitizeHTMLField(field *string, fieldName string) error {
	if field != nil && *field != "" {
		sanitized := SanitizeHTMLElement(*field)

		if len(sanitized) > 2000 {
			return fmt.Errorf("%s content exceeds maximum allowed length", fieldName)
		}

		*field = sanitized
	}
	return nil
}

// SecureErrorMessage creates standardized error messages to prevent information leakage
func SecureErrorMessage(operation string, err error) error {
	if err == nil {
		return nil
	}

	// Log the full error details internally (caller should handle logging)
	// Return a generic message to the user
	return fmt.Errorf("failed to %s: operation could not be completed", operation)
}

// ValidateSortOrder validates sort order parameters
func ValidateSortOrder(sortOrder string) string {
	order := strings.ToLower(sortOrder)
	if order == "asc" {
		return "ASC"
	}
	return "DESC" // Default to DESC
}

// ValidatePaginationParams validates pagination parameters
func ValidatePaginationParams(limit, offset int) (int, int, error) {
	if limit <= 0 {
		limit = 50 // Default
	}
	if limit > 1000 {
		limit = 1000 // Maximum
	}

	if offset < 0 {
		offset = 0
	}
	if offset > 1000000 {
		return 0, 0, fmt.Errorf("offset cannot exceed 1,000,000")
	}

	return limit, offset, nil
}

// ValidateDateRange validates date ranges to prevent abuse
func ValidateDateRange(startDate, endDate time.Time) error {
	if endDate.Before(startDate) {
		return fmt.Errorf("end date cannot be before start date")
	}

	duration := endDate.Sub(startDate)
	maxDuration := time.Hour * 24 * 365 * 10 // 10 years
	if duration > maxDuration {
		return fmt.Errorf("date range cannot exceed 10 years")
	}

	return nil
}
