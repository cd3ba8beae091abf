package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"casaops/internal/common"
	"casaops/internal/models"
	"casaops/internal/repositories"

	"github.com/google/uuid"
)

// VehicleServiceInterface defines the interface for vehicle service
type VehicleServiceInterface interface {
	CreateVehicle(ctx context.Context, vehicle *models.Vehicle) error
	GetVehicleByID(ctx context.Context, tenantID, vehicleID uuid.UUID) (*models.Vehicle, error)
	ListVehicles(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Vehicle, error)
	ListVehiclesByProperty(ctx context.Context, tenantID, propertyID uuid.UUID) ([]*models.Vehicle, error)
	UpdateVehicle(ctx context.Context, vehicle *models.Vehicle) error
	DeleteVehicle(ctx context.Context, tenantID, vehicleID uuid.UUID) error
}

type vehicleService struct {
	vehicleRepo repositories.VehicleRepository
}

// NewVehicleService creates a new vehicle service
func NewVehicleService(vehicleRepo repositories.VehicleRepository) VehicleServiceInterface {
	return &vehicleService{vehicleRepo: vehicleRepo}
}

func (s *vehicleService) validateVehicle(vehicle *models.Vehicle) error {
	if err := common.ValidateRequiredString(vehicle.Make, "make"); err != nil {
		return err
	}
	if err := common.ValidateRequiredString(vehicle.Model, "model"); err != nil {
		return err
	}
	if err := common.ValidateRequiredString(vehicle.LicensePlate, "license_plate"); err != nil {
		return err
	}
	if vehicle.Year != nil && (*vehicle.Year < 1900 || *vehicle.Year > time.Now().Year()+1) {
		return fmt.Errorf("year is out of range")
	}
	return nil
}

// CreateVehicle creates a vehicle, enforcing license plate uniqueness
// within the tenant.
func (s *vehicleService) CreateVehicle(ctx context.Context, vehicle *models.Vehicle) error {
	if err := s.validateVehicle(vehicle); err != nil {
		return err
	}

	vehicle.LicensePlate = strings.ToUpper(strings.TrimSpace(vehicle.LicensePlate))
	existing, err := s.vehicleRepo.GetByLicensePlate(ctx, vehicle.TenantID, vehicle.LicensePlate)
	if err != nil {
		return common.SecureErrorMessage("check license plate", err)
	}
	if existing != nil {
		return fmt.Errorf("a vehicle with license plate %s already exists", vehicle.LicensePlate)
	}

	now := time.Now()
	if vehicle.ID == uuid.Nil {
		vehicle.ID = uuid.New()
	}
	if vehicle.Status == "" {
		vehicle.Status = "available"
	}
	vehicle.CreatedAt = now
	vehicle.UpdatedAt = now

	if err := s.vehicleRepo.Create(ctx, vehicle); err != nil {
		return common.SecureErrorMessage("create vehicle", err)
	}
	return nil
}

// GetVehicleByID retrieves a vehicle by ID
func (s *vehicleService) GetVehicleByID(ctx context.Context, tenantID, vehicleID uuid.UUID) (*models.Vehicle, error) {
	return s.vehicleRepo.GetByID(ctx, tenantID, vehicleID)
}

// ListVehicles retrieves vehicles with pagination
func (s *vehicleService) ListVehicles(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Vehicle, error) {
	return s.vehicleRepo.List(ctx, tenantID, limit, offset)
}

// ListVehiclesByProperty retrieves vehicles assigned to a property
func (s *vehicleService) ListVehiclesByProperty(ctx context.Context, tenantID, propertyID uuid.UUID) ([]*models.Vehicle, error) {
	return s.vehicleRepo.ListByProperty(ctx, tenantID, propertyID)
}

// UpdateVehicle updates a vehicle
func (s *vehicleService) UpdateVehicle(ctx context.Context, vehicle *models.Vehicle) error {
	if err := s.validateVehicle(vehicle); err != nil {
		return err
	}

	vehicle.LicensePlate = strings.ToUpper(strings.TrimSpace(vehicle.LicensePlate))
	existing, err := s.vehicleRepo.GetByLicensePlate(ctx, vehicle.TenantID, vehicle.LicensePlate)
	if err != nil {
		return common.SecureErrorMessage("check license plate", err)
	}
	if existing != nil && existing.ID != vehicle.ID {
		return fmt.Errorf("a vehicle with license plate %s already exists", vehicle.LicensePlate)
	}

	vehicle.UpdatedAt = time.Now()
	return s.vehicleRepo.Update(ctx, vehicle)
}

// DeleteVehicle removes a vehicle
func (s *vehicleService) DeleteVehicle(ctx context.Context, tenantID, vehicleID uuid.UUID) error {
	return s.vehicleRepo.Delete(ctx, tenantID, vehicleID)
}
