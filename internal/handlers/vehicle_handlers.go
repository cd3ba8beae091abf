package handlers

import (
	"net/http"

	"casaops/internal/common"
	"casaops/internal/models"
	"casaops/internal/services"

	"github.com/labstack/echo/v4"
)

// VehicleHandlers handles HTTP requests for vehicles
type VehicleHandlers struct {
	vehicleService services.VehicleServiceInterface
}

// NewVehicleHandlers creates a new vehicle handlers instance
func NewVehicleHandlers(vehicleService services.VehicleServiceInterface) *VehicleHandlers {
	return &VehicleHandlers{vehicleService: vehicleService}
}

// CreateVehicle handles POST /vehicles
func (h *VehicleHandlers) CreateVehicle(c echo.Context) error {
	ctx := c.Request().Context()

	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	var req struct {
		PropertyID   *string `json:"property_id"`
		Make         string  `json:"make"`
		Model        string  `json:"model"`
		Year         *int    `json:"year"`
		LicensePlate string  `json:"license_plate"`
		Color        *string `json:"color"`
		Status       string  `json:"status"`
		Notes        *string `json:"notes"`
	}
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	vehicle := &models.Vehicle{
		TenantID:     tenantID,
		Make:         req.Make,
		Model:        req.Model,
		Year:         req.Year,
		LicensePlate: req.LicensePlate,
		Color:        req.Color,
		Status:       req.Status,
		Notes:        req.Notes,
	}

	if req.PropertyID != nil && *req.PropertyID != "" {
		propertyID, err := common.ValidateUUID(*req.PropertyID, "property_id")
		if err != nil {
			return common.SendClientError(c, err.Error())
		}
		vehicle.PropertyID = &propertyID
	}

	if err := h.vehicleService.CreateVehicle(ctx, vehicle); err != nil {
		return common.SendClientError(c, err.Error())
	}
	return c.JSON(http.StatusCreated, vehicle)
}

// GetVehicle handles GET /vehicles/:id
func (h *VehicleHandlers) GetVehicle(c echo.Context) error {
	ctx := c.Request().Context()

	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	vehicleID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	vehicle, err := h.vehicleService.GetVehicleByID(ctx, tenantID, vehicleID)
	if err != nil {
		return common.SendServerError(c, "Failed to retrieve vehicle")
	}
	if vehicle == nil {
		return common.SendNotFoundError(c, "vehicle")
	}
	return c.JSON(http.StatusOK, vehicle)
}

// ListVehicles handles GET /vehicles with optional property filter
func (h *VehicleHandlers) ListVehicles(c echo.Context) error {
	ctx := c.Request().Context()

	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	if propertyParam := c.QueryParam("property_id"); propertyParam != "" {
		propertyID, err := common.ValidateUUID(propertyParam, "property_id")
		if err != nil {
			return common.SendClientError(c, err.Error())
		}
		vehicles, err := h.vehicleService.ListVehiclesByProperty(ctx, tenantID, propertyID)
		if err != nil {
			return common.SendServerError(c, "Failed to list vehicles")
		}
		return c.JSON(http.StatusOK, vehicles)
	}

	limit, offset := parsePagination(c)
	vehicles, err := h.vehicleService.ListVehicles(ctx, tenantID, limit, offset)
	if err != nil {
		return common.SendServerError(c, "Failed to list vehicles")
	}
	return c.JSON(http.StatusOK, vehicles)
}

// UpdateVehicle handles PUT /vehicles/:id
func (h *VehicleHandlers) UpdateVehicle(c echo.Context) error {
	ctx := c.Request().Context()

	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	vehicleID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	existing, err := h.vehicleService.GetVehicleByID(ctx, tenantID, vehicleID)
	if err != nil {
		return common.SendServerError(c, "Failed to retrieve vehicle")
	}
	if existing == nil {
		return common.SendNotFoundError(c, "vehicle")
	}

	var vehicle models.Vehicle
	if err := c.Bind(&vehicle); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}
	vehicle.ID = vehicleID
	vehicle.TenantID = tenantID
	vehicle.CreatedAt = existing.CreatedAt

	if err := h.vehicleService.UpdateVehicle(ctx, &vehicle); err != nil {
		return common.SendClientError(c, err.Error())
	}
	return c.JSON(http.StatusOK, vehicle)
}

// DeleteVehicle handles DELETE /vehicles/:id
func (h *VehicleHandlers) DeleteVehicle(c echo.Context) error {
	ctx := c.Request().Context()

	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	vehicleID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	if err := h.vehicleService.DeleteVehicle(ctx, tenantID, vehicleID); err != nil {
		return common.SendServerError(c, "Failed to delete vehicle")
	}
	return c.NoContent(http.StatusNoContent)
}
