package repositories

import (
	"context"

	"casaops/internal/models"

	"github.com/google/uuid"
)

type VehicleRepository interface {
	Create(ctx context.Context, vehicle *models.Vehicle) error
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Vehicle, error)
	Update(ctx context.Context, vehicle *models.Vehicle) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
	List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Vehicle, error)
	ListByProperty(ctx context.Context, tenantID, propertyID uuid.UUID) ([]*models.Vehicle, error)
	GetByLicensePlate(ctx context.Context, tenantID uuid.UUID, plate string) (*models.Vehicle, error)
}

type vehicleRepo struct {
	db Database
}

func NewVehicleRepository(db Database) VehicleRepository {
	return &vehicleRepo{db: db}
}

const vehicleColumns = `id, tenant_id, property_id, make, model, year, license_plate, color, status, notes, created_at, updated_at`

func (r *vehicleRepo) scanVehicle(row interface{ Scan(dest ...any) error }) (*models.Vehicle, error) {
	vehicle := &models.Vehicle{}
	err := row.Scan(&vehicle.ID, &vehicle.TenantID, &vehicle.PropertyID, &vehicle.Make, &vehicle.Model, &vehicle.Year, &vehicle.LicensePlate, &vehicle.Color, &vehicle.Status, &vehicle.Notes, &vehicle.CreatedAt, &vehicle.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return vehicle, nil
}

func (r *vehicleRepo) Create(ctx context.Context, vehicle *models.Vehicle) error {
	query := `
		INSERT INTO vehicles (id, tenant_id, property_id, make, model, year, license_plate, color, status, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, vehicle.ID, vehicle.TenantID, vehicle.PropertyID, vehicle.Make, vehicle.Model, vehicle.Year, vehicle.LicensePlate, vehicle.Color, vehicle.Status, vehicle.Notes)
	return err
}

func (r *vehicleRepo) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Vehicle, error) {
	query := `
		SELECT ` + vehicleColumns + `
		FROM vehicles
		WHERE tenant_id = $1 AND id = $2
	`
	return r.scanVehicle(r.db.QueryRow(ctx, query, tenantID, id))
}

func (r *vehicleRepo) Update(ctx context.Context, vehicle *models.Vehicle) error {
	query := `
		UPDATE vehicles
		SET property_id = $1, make = $2, model = $3, year = $4, license_plate = $5, color = $6, status = $7, notes = $8, updated_at = NOW()
		WHERE tenant_id = $9 AND id = $10
	`
	_, err := r.db.Exec(ctx, query, vehicle.PropertyID, vehicle.Make, vehicle.Model, vehicle.Year, vehicle.LicensePlate, vehicle.Color, vehicle.Status, vehicle.Notes, vehicle.TenantID, vehicle.ID)
	return err
}

func (r *vehicleRepo) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	query := `DELETE FROM vehicles WHERE tenant_id = $1 AND id = $2`
	_, err := r.db.Exec(ctx, query, tenantID, id)
	return err
}

func (r *vehicleRepo) List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Vehicle, error) {
	query := `
		SELECT ` + vehicleColumns + `
		FROM vehicles
		WHERE tenant_id = $1
		ORDER BY make ASC, model ASC
		LIMIT $2 OFFSET $3
	`
	return r.queryVehicles(ctx, query, tenantID, limit, offset)
}

func (r *vehicleRepo) ListByProperty(ctx context.Context, tenantID, propertyID uuid.UUID) ([]*models.Vehicle, error) {
	query := `
		SELECT ` + vehicleColumns + `
		FROM vehicles
		WHERE tenant_id = $1 AND property_id = $2
		ORDER BY make ASC, model ASC
	`
	return r.queryVehicles(ctx, query, tenantID, propertyID)
}

func (r *vehicleRepo) GetByLicensePlate(ctx context.Context, tenantID uuid.UUID, plate string) (*models.Vehicle, error) {
	query := `
		SELECT ` + vehicleColumns + `
		FROM vehicles
		WHERE tenant_id = $1 AND license_plate = $2
	`
	return r.scanVehicle(r.db.QueryRow(ctx, query, tenantID, plate))
}

func (r *vehicleRepo) queryVehicles(ctx context.Context, query string, args ...any) ([]*models.Vehicle, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var vehicles []*models.Vehicle
	for rows.Next() {
		vehicle, err := r.scanVehicle(rows)
		if err != nil {
			return nil, err
		}
		vehicles = append(vehicles, vehicle)
	}
	return vehicles, nil
}
