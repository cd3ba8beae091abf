package repositories

import (
	"context"
	"fmt"

	"casaops/internal/common"
	"casaops/internal/models"

	"github.com/google/uuid"
)

type PropertyRepository interface {
	Create(ctx context.Context, property *models.Property) error
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Property, error)
	Update(ctx context.Context, property *models.Property) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
	List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Property, error)
	Search(ctx context.Context, tenantID uuid.UUID, filter *models.PropertySearchFilter) ([]*models.Property, error)
}

type propertyRepo struct {
	db Database
}

func NewPropertyRepository(db Database) PropertyRepository {
	return &propertyRepo{db: db}
}

const propertyColumns = `id, tenant_id, owner_id, name, address, city, size_sqft, bedrooms, bathrooms, capacity, max_capacity, status, notes, created_at, updated_at`

func (r *propertyRepo) Create(ctx context.Context, property *models.Property) error {
	query := `
		INSERT INTO properties (id, tenant_id, owner_id, name, address, city, size_sqft, bedrooms, bathrooms, capacity, max_capacity, status, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, property.ID, property.TenantID, property.OwnerID, property.Name, property.Address, property.City, property.SizeSqft, property.Bedrooms, property.Bathrooms, property.Capacity, property.MaxCapacity, property.Status, property.Notes)
	return err
}

func (r *propertyRepo) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Property, error) {
	property := &models.Property{}
	query := `
		SELECT ` + propertyColumns + `
		FROM properties
		WHERE tenant_id = $1 AND id = $2
	`
	err := r.db.QueryRow(ctx, query, tenantID, id).Scan(&property.ID, &property.TenantID, &property.OwnerID, &property.Name, &property.Address, &property.City, &property.SizeSqft, &property.Bedrooms, &property.Bathrooms, &property.Capacity, &property.MaxCapacity, &property.Status, &property.Notes, &property.CreatedAt, &property.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return property, nil
}

func (r *propertyRepo) Update(ctx context.Context, property *models.Property) error {
	query := `
		UPDATE properties
		SET owner_id = $1, name = $2, address = $3, city = $4, size_sqft = $5, bedrooms = $6, bathrooms = $7, capacity = $8, max_capacity = $9, status = $10, notes = $11, updated_at = NOW()
		WHERE tenant_id = $12 AND id = $13
	`
	_, err := r.db.Exec(ctx, query, property.OwnerID, property.Name, property.Address, property.City, property.SizeSqft, property.Bedrooms, property.Bathrooms, property.Capacity, property.MaxCapacity, property.Status, property.Notes, property.TenantID, property.ID)
	return err
}

func (r *propertyRepo) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	query := `DELETE FROM properties WHERE tenant_id = $1 AND id = $2`
	_, err := r.db.Exec(ctx, query, tenantID, id)
	return err
}

func (r *propertyRepo) List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Property, error) {
	query := `
		SELECT ` + propertyColumns + `
		FROM properties
		WHERE tenant_id = $1
		ORDER BY name ASC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.Query(ctx, query, tenantID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var properties []*models.Property
	for rows.Next() {
		property := &models.Property{}
		if err := rows.Scan(&property.ID, &property.TenantID, &property.OwnerID, &property.Name, &property.Address, &property.City, &property.SizeSqft, &property.Bedrooms, &property.Bathrooms, &property.Capacity, &property.MaxCapacity, &property.Status, &property.Notes, &property.CreatedAt, &property.UpdatedAt); err != nil {
			return nil, err
		}
		properties = append(properties, property)
	}
	return properties, nil
}

// Search runs a filtered property query. Filter fields are optional and
// combined with AND; text search matches name, address and city.
func (r *propertyRepo) Search(ctx context.Context, tenantID uuid.UUID, filter *models.PropertySearchFilter) ([]*models.Property, error) {
	query := `
		SELECT ` + propertyColumns + `
		FROM properties
		WHERE tenant_id = $1
	`
	args := []any{tenantID}
	argNum := 2

	if filter.Query != "" {
		query += fmt.Sprintf(" AND (name ILIKE $%d OR address ILIKE $%d OR city ILIKE $%d)", argNum, argNum, argNum)
		args = append(args, "%"+filter.Query+"%")
		argNum++
	}
	if filter.Status != nil {
		query += fmt.Sprintf(" AND status = $%d", argNum)
		args = append(args, *filter.Status)
		argNum++
	}
	if filter.City != nil {
		query += fmt.Sprintf(" AND city = $%d", argNum)
		args = append(args, *filter.City)
		argNum++
	}
	if filter.MinBedrooms != nil {
		query += fmt.Sprintf(" AND bedrooms >= $%d", argNum)
		args = append(args, *filter.MinBedrooms)
		argNum++
	}
	if filter.MaxBedrooms != nil {
		query += fmt.Sprintf(" AND bedrooms <= $%d", argNum)
		args = append(args, *filter.MaxBedrooms)
		argNum++
	}
	if filter.OwnerID != nil {
		query += fmt.Sprintf(" AND owner_id = $%d", argNum)
		args = append(args, *filter.OwnerID)
		argNum++
	}

	sortBy := "name"
	switch filter.SortBy {
	case "city", "created_at", "bedrooms":
		sortBy = filter.SortBy
	}
	query += fmt.Sprintf(" ORDER BY %s %s", sortBy, common.ValidateSortOrder(filter.SortOrder))

	limit, offset, err := common.ValidatePaginationParams(filter.Limit, filter.Offset)
	if err != nil {
		return nil, err
	}
	query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", argNum, argNum+1)
	args = append(args, limit, offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var properties []*models.Property
	for rows.Next() {
		property := &models.Property{}
		if err := rows.Scan(&property.ID, &property.TenantID, &property.OwnerID, &property.Name, &property.Address, &property.City, &property.SizeSqft, &property.Bedrooms, &property.Bathrooms, &property.Capacity, &property.MaxCapacity, &property.Status, &property.Notes, &property.CreatedAt, &property.UpdatedAt); err != nil {
			return nil, err
		}
		properties = append(properties, property)
	}
	return properties, nil
}
