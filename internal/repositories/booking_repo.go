package repositories

import (
	"context"
	"time"

	"casaops/internal/models"

	"github.com/google/uuid"
)

type BookingRepository interface {
	Create(ctx context.Context, booking *models.Booking) error
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Booking, error)
	Update(ctx context.Context, booking *models.Booking) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
	List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Booking, error)
	ListByProperty(ctx context.Context, tenantID, propertyID uuid.UUID, limit, offset int) ([]*models.Booking, error)
	GetByDateRange(ctx context.Context, tenantID uuid.UUID, startDate, endDate time.Time) ([]*models.Booking, error)
	FindOverlapping(ctx context.Context, tenantID, propertyID uuid.UUID, checkIn, checkOut time.Time, excludeID *uuid.UUID) ([]*models.Booking, error)
	UpdateStatus(ctx context.Context, tenantID, bookingID uuid.UUID, status string) error
}

type bookingRepo struct {
	db Database
}

func NewBookingRepository(db Database) BookingRepository {
	return &bookingRepo{db: db}
}

const bookingColumns = `id, tenant_id, property_id, guest_name, guest_email, guest_phone, check_in_date, check_out_date, channel, status, base_amount, cleaning_fee, extras_amount, tax_amount, security_deposit, payment_status, notes, created_at, updated_at`

func (r *bookingRepo) scanBooking(row interface{ Scan(dest ...any) error }) (*models.Booking, error) {
	booking := &models.Booking{}
	err := row.Scan(&booking.ID, &booking.TenantID, &booking.PropertyID, &booking.GuestName, &booking.GuestEmail, &booking.GuestPhone, &booking.CheckInDate, &booking.CheckOutDate, &booking.Channel, &booking.Status, &booking.BaseAmount, &booking.CleaningFee, &booking.ExtrasAmount, &booking.TaxAmount, &booking.SecurityDeposit, &booking.PaymentStatus, &booking.Notes, &booking.CreatedAt, &booking.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return booking, nil
}

func (r *bookingRepo) Create(ctx context.Context, booking *models.Booking) error {
	query := `
		INSERT INTO bookings (id, tenant_id, property_id, guest_name, guest_email, guest_phone, check_in_date, check_out_date, channel, status, base_amount, cleaning_fee, extras_amount, tax_amount, security_deposit, payment_status, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, booking.ID, booking.TenantID, booking.PropertyID, booking.GuestName, booking.GuestEmail, booking.GuestPhone, booking.CheckInDate, booking.CheckOutDate, booking.Channel, booking.Status, booking.BaseAmount, booking.CleaningFee, booking.ExtrasAmount, booking.TaxAmount, booking.SecurityDeposit, booking.PaymentStatus, booking.Notes)
	return err
}

func (r *bookingRepo) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE tenant_id = $1 AND id = $2
	`
	return r.scanBooking(r.db.QueryRow(ctx, query, tenantID, id))
}

func (r *bookingRepo) Update(ctx context.Context, booking *models.Booking) error {
	query := `
		UPDATE bookings
		SET property_id = $1, guest_name = $2, guest_email = $3, guest_phone = $4, check_in_date = $5, check_out_date = $6, channel = $7, status = $8, base_amount = $9, cleaning_fee = $10, extras_amount = $11, tax_amount = $12, security_deposit = $13, payment_status = $14, notes = $15, updated_at = NOW()
		WHERE tenant_id = $16 AND id = $17
	`
	_, err := r.db.Exec(ctx, query, booking.PropertyID, booking.GuestName, booking.GuestEmail, booking.GuestPhone, booking.CheckInDate, booking.CheckOutDate, booking.Channel, booking.Status, booking.BaseAmount, booking.CleaningFee, booking.ExtrasAmount, booking.TaxAmount, booking.SecurityDeposit, booking.PaymentStatus, booking.Notes, booking.TenantID, booking.ID)
	return err
}

func (r *bookingRepo) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	query := `DELETE FROM bookings WHERE tenant_id = $1 AND id = $2`
	_, err := r.db.Exec(ctx, query, tenantID, id)
	return err
}

func (r *bookingRepo) List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE tenant_id = $1
		ORDER BY check_in_date DESC
		LIMIT $2 OFFSET $3
	`
	return r.queryBookings(ctx, query, tenantID, limit, offset)
}

func (r *bookingRepo) ListByProperty(ctx context.Context, tenantID, propertyID uuid.UUID, limit, offset int) ([]*models.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE tenant_id = $1 AND property_id = $2
		ORDER BY check_in_date DESC
		LIMIT $3 OFFSET $4
	`
	return r.queryBookings(ctx, query, tenantID, propertyID, limit, offset)
}

func (r *bookingRepo) GetByDateRange(ctx context.Context, tenantID uuid.UUID, startDate, endDate time.Time) ([]*models.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE tenant_id = $1 AND check_in_date <= $3 AND check_out_date >= $2
		ORDER BY check_in_date ASC
	`
	return r.queryBookings(ctx, query, tenantID, startDate, endDate)
}

// FindOverlapping returns active bookings on the same property whose stay
// intersects [checkIn, checkOut). Cancelled and no-show bookings do not block
// the calendar. excludeID lets an update skip the booking being edited.
func (r *bookingRepo) FindOverlapping(ctx context.Context, tenantID, propertyID uuid.UUID, checkIn, checkOut time.Time, excludeID *uuid.UUID) ([]*models.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE tenant_id = $1 AND property_id = $2
		  AND status NOT IN ('cancelled', 'no_show')
		  AND check_in_date < $4 AND check_out_date > $3
	`
	args := []any{tenantID, propertyID, checkIn, checkOut}
	if excludeID != nil {
		query += ` AND id != $5`
		args = append(args, *excludeID)
	}
	return r.queryBookings(ctx, query, args...)
}

func (r *bookingRepo) UpdateStatus(ctx context.Context, tenantID, bookingID uuid.UUID, status string) error {
	query := `
		UPDATE bookings
		SET status = $1, updated_at = NOW()
		WHERE tenant_id = $2 AND id = $3
	`
	_, err := r.db.Exec(ctx, query, status, tenantID, bookingID)
	return err
}

func (r *bookingRepo) queryBookings(ctx context.Context, query string, args ...any) ([]*models.Booking, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bookings []*models.Booking
	for rows.Next() {
		booking, err := r.scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, booking)
	}
	return bookings, nil
}
