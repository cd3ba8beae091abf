package handlers

import (
	"net/http"
	"strconv"

	"casaops/internal/common"
	"casaops/internal/models"
	"casaops/internal/services"

	"github.com/labstack/echo/v4"
)

// PropertyHandlers handles HTTP requests for properties
type PropertyHandlers struct {
	propertyService services.PropertyServiceInterface
}

// NewPropertyHandlers creates a new property handlers instance
func NewPropertyHandlers(propertyService services.PropertyServiceInterface) *PropertyHandlers {
	return &PropertyHandlers{propertyService: propertyService}
}

// parsePagination reads limit/offset query parameters with defaults
func parsePagination(c echo.Context) (int, int) {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	if limit <= 0 {
		limit = 50
	}
	if limit > 1000 {
		limit = 1000
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

// CreateProperty handles POST /properties
func (h *PropertyHandlers) CreateProperty(c echo.Context) error {
	ctx := c.Request().Context()

	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	var req struct {
		Name        string  `json:"name"`
		Address     string  `json:"address"`
		City        *string `json:"city"`
		OwnerID     *string `json:"owner_id"`
		SizeSqft    *int    `json:"size_sqft"`
		Bedrooms    int     `json:"bedrooms"`
		Bathrooms   float64 `json:"bathrooms"`
		Capacity    int     `json:"capacity"`
		MaxCapacity *int    `json:"max_capacity"`
		Status      string  `json:"status"`
		Notes       *string `json:"notes"`
	}
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	property := &models.Property{
		TenantID:    tenantID,
		Name:        req.Name,
		Address:     req.Address,
		City:        req.City,
		SizeSqft:    req.SizeSqft,
		Bedrooms:    req.Bedrooms,
		Bathrooms:   req.Bathrooms,
		Capacity:    req.Capacity,
		MaxCapacity: req.MaxCapacity,
		Status:      req.Status,
		Notes:       req.Notes,
	}

	if req.OwnerID != nil && *req.OwnerID != "" {
		ownerID, err := common.ValidateUUID(*req.OwnerID, "owner_id")
		if err != nil {
			return common.SendClientError(c, err.Error())
		}
		property.OwnerID = &ownerID
	}

	if err := h.propertyService.CreateProperty(ctx, property); err != nil {
		return common.SendClientError(c, err.Error())
	}
	return c.JSON(http.StatusCreated, property)
}

// GetProperty handles GET /properties/:id
func (h *PropertyHandlers) GetProperty(c echo.Context) error {
	ctx := c.Request().Context()

	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	propertyID, err := common.ValidateUUID(c.Param("id"), "id")
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
	return c.JSON(http.StatusOK, property)
}

// ListProperties handles GET /properties
func (h *PropertyHandlers) ListProperties(c echo.Context) error {
	ctx := c.Request().Context()

	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	limit, offset := parsePagination(c)
	properties, err := h.propertyService.ListProperties(ctx, tenantID, limit, offset)
	if err != nil {
		return common.SendServerError(c, "Failed to list properties")
	}
	return c.JSON(http.StatusOK, properties)
}

// SearchProperties handles GET /properties/search
func (h *PropertyHandlers) SearchProperties(c echo.Context) error {
	ctx := c.Request().Context()

	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	limit, offset := parsePagination(c)
	filter := &models.PropertySearchFilter{
		Query:     c.QueryParam("q"),
		SortBy:    c.QueryParam("sort_by"),
		SortOrder: c.QueryParam("sort_order"),
		Limit:     limit,
		Offset:    offset,
	}

	if status := c.QueryParam("status"); status != "" {
		filter.Status = &status
	}
	if city := c.QueryParam("city"); city != "" {
		filter.City = &city
	}
	if raw := c.QueryParam("min_bedrooms"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			filter.MinBedrooms = &v
		}
	}
	if raw := c.QueryParam("max_bedrooms"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			filter.MaxBedrooms = &v
		}
	}
	if raw := c.QueryParam("owner_id"); raw != "" {
		ownerID, err := common.ValidateUUID(raw, "owner_id")
		if err != nil {
			return common.SendClientError(c, err.Error())
		}
		filter.OwnerID = &ownerID
	}

	properties, err := h.propertyService.SearchProperties(ctx, tenantID, filter)
	if err != nil {
		return common.SendServerError(c, "Failed to search properties")
	}
	return c.JSON(http.StatusOK, properties)
}

// UpdateProperty handles PUT /properties/:id
func (h *PropertyHandlers) UpdateProperty(c echo.Context) error {
	ctx := c.Request().Context()

	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	propertyID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	existing, err := h.propertyService.GetPropertyByID(ctx, tenantID, propertyID)
	if err != nil {
		return common.SendServerError(c, "Failed to retrieve property")
	}
	if existing == nil {
		return common.SendNotFoundError(c, "property")
	}

	var property models.Property
	if err := c.Bind(&property); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}
	property.ID = propertyID
	property.TenantID = tenantID
	property.CreatedAt = existing.CreatedAt

	if err := h.propertyService.UpdateProperty(ctx, &property); err != nil {
		return common.SendClientError(c, err.Error())
	}
	return c.JSON(http.StatusOK, property)
}

// DeleteProperty handles DELETE /properties/:id
func (h *PropertyHandlers) DeleteProperty(c echo.Context) error {
	ctx := c.Request().Context()

	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	propertyID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	if err := h.propertyService.DeleteProperty(ctx, tenantID, propertyID); err != nil {
		return common.SendServerError(c, "Failed to delete property")
	}
	return c.NoContent(http.StatusNoContent)
}
