package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"casaops/internal/caching"
	"casaops/internal/common"
	"casaops/internal/models"
	"casaops/internal/repositories"

	"github.com/google/uuid"
)

// PropertyServiceInterface defines the interface for property service
type PropertyServiceInterface interface {
	CreateProperty(ctx context.Context, property *models.Property) error
	GetPropertyByID(ctx context.Context, tenantID, propertyID uuid.UUID) (*models.Property, error)
	ListProperties(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Property, error)
	SearchProperties(ctx context.Context, tenantID uuid.UUID, filter *models.PropertySearchFilter) ([]*models.Property, error)
	UpdateProperty(ctx context.Context, property *models.Property) error
	DeleteProperty(ctx context.Context, tenantID, propertyID uuid.UUID) error
}

type propertyService struct {
	propertyRepo repositories.PropertyRepository
	cacheSvc     caching.CacheService
}

// NewPropertyService creates a new property service
func NewPropertyService(propertyRepo repositories.PropertyRepository, cacheSvc caching.CacheService) PropertyServiceInterface {
	return &propertyService{
		propertyRepo: propertyRepo,
		cacheSvc:     cacheSvc,
	}
}

func (s *propertyService) validateProperty(property *models.Property) error {
	if err := common.ValidateRequiredString(property.Name, "name"); err != nil {
		return err
	}
	if err := common.ValidateRequiredString(property.Address, "address"); err != nil {
		return err
	}
	if property.Bedrooms < 0 {
		return fmt.Errorf("bedrooms cannot be negative")
	}
	if property.Bathrooms < 0 {
		return fmt.Errorf("bathrooms cannot be negative")
	}
	if property.Capacity < 0 {
		return fmt.Errorf("capacity cannot be negative")
	}
	if property.MaxCapacity != nil && *property.MaxCapacity < property.Capacity {
		return fmt.Errorf("max capacity cannot be below capacity")
	}
	return nil
}

// CreateProperty creates a new property
func (s *propertyService) CreateProperty(ctx context.Context, property *models.Property) error {
	if err := s.validateProperty(property); err != nil {
		return err
	}

	now := time.Now()
	if property.ID == uuid.Nil {
		property.ID = uuid.New()
	}
	if property.Status == "" {
		property.Status = "active"
	}
	property.CreatedAt = now
	property.UpdatedAt = now

	if err := s.propertyRepo.Create(ctx, property); err != nil {
		return common.SecureErrorMessage("create property", err)
	}
	return nil
}

// GetPropertyByID retrieves a property, serving from cache when possible
func (s *propertyService) GetPropertyByID(ctx context.Context, tenantID, propertyID uuid.UUID) (*models.Property, error) {
	if s.cacheSvc != nil {
		cached, err := s.cacheSvc.GetProperty(ctx, tenantID, propertyID)
		if err != nil {
			log.Printf("Property cache read failed: %v", err)
		} else if cached != nil {
			return cached, nil
		}
	}

	property, err := s.propertyRepo.GetByID(ctx, tenantID, propertyID)
	if err != nil {
		return nil, err
	}

	if property != nil && s.cacheSvc != nil {
		if err := s.cacheSvc.SetProperty(ctx, tenantID, property, 10*time.Minute); err != nil {
			log.Printf("Property cache write failed: %v", err)
		}
	}
	return property, nil
}

// ListProperties retrieves properties with pagination
func (s *propertyService) ListProperties(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Property, error) {
	return s.propertyRepo.List(ctx, tenantID, limit, offset)
}

// SearchProperties searches properties by text query and filters
func (s *propertyService) SearchProperties(ctx context.Context, tenantID uuid.UUID, filter *models.PropertySearchFilter) ([]*models.Property, error) {
	if filter == nil {
		filter = &models.PropertySearchFilter{}
	}
	limit, offset, err := common.ValidatePaginationParams(filter.Limit, filter.Offset)
	if err != nil {
		return nil, err
	}
	filter.Limit, filter.Offset = limit, offset
	filter.SortOrder = common.ValidateSortOrder(filter.SortOrder)
	return s.propertyRepo.Search(ctx, tenantID, filter)
}

// UpdateProperty updates a property and invalidates its cache entry
func (s *propertyService) UpdateProperty(ctx context.Context, property *models.Property) error {
	if err := s.validateProperty(property); err != nil {
		return err
	}

	property.UpdatedAt = time.Now()
	if err := s.propertyRepo.Update(ctx, property); err != nil {
		return common.SecureErrorMessage("update property", err)
	}

	s.invalidateCache(ctx, property.TenantID, property.ID)
	return nil
}

// DeleteProperty removes a property
func (s *propertyService) DeleteProperty(ctx context.Context, tenantID, propertyID uuid.UUID) error {
	if err := s.propertyRepo.Delete(ctx, tenantID, propertyID); err != nil {
		return common.SecureErrorMessage("delete property", err)
	}
	s.invalidateCache(ctx, tenantID, propertyID)
	return nil
}

func (s *propertyService) invalidateCache(ctx context.Context, tenantID, propertyID uuid.UUID) {
	if s.cacheSvc == nil {
		return
	}
	if err := s.cacheSvc.DeleteProperty(ctx, tenantID, propertyID); err != nil {
		log.Printf("Property cache invalidation failed: %v", err)
	}
}
