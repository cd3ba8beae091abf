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

// ErrBookingConflict is returned when a booking's stay overlaps an
// existing active booking on the same property.
type ErrBookingConflict struct {
	Conflicts []*models.Booking
}

func (e *ErrBookingConflict) Error() string {
	return fmt.Sprintf("booking dates conflict with %d existing booking(s)", len(e.Conflicts))
}

// BookingServiceInterface defines the interface for booking service
type BookingServiceInterface interface {
	CreateBooking(ctx context.Context, booking *models.Booking) error
	GetBookingByID(ctx context.Context, tenantID, bookingID uuid.UUID) (*models.Booking, error)
	ListBookings(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Booking, error)
	ListBookingsByProperty(ctx context.Context, tenantID, propertyID uuid.UUID, limit, offset int) ([]*models.Booking, error)
	GetBookingsByDateRange(ctx context.Context, tenantID uuid.UUID, startDate, endDate time.Time) ([]*models.Booking, error)
	UpdateBooking(ctx context.Context, booking *models.Booking) error
	DeleteBooking(ctx context.Context, tenantID, bookingID uuid.UUID) error
	UpdateBookingStatus(ctx context.Context, tenantID, bookingID uuid.UUID, status string) error
	CheckAvailability(ctx context.Context, tenantID, propertyID uuid.UUID, checkIn, checkOut time.Time) (bool, []*models.Booking, error)
}

type bookingService struct {
	bookingRepo  repositories.BookingRepository
	propertyRepo repositories.PropertyRepository
	cacheSvc     caching.CacheService
}

// NewBookingService creates a new booking service
func NewBookingService(bookingRepo repositories.BookingRepository, propertyRepo repositories.PropertyRepository, cacheSvc caching.CacheService) BookingServiceInterface {
	return &bookingService{
		bookingRepo:  bookingRepo,
		propertyRepo: propertyRepo,
		cacheSvc:     cacheSvc,
	}
}

// validateBooking validates booking data before persistence
func (s *bookingService) validateBooking(booking *models.Booking) error {
	if booking.GuestName == "" {
		return fmt.Errorf("guest name is required")
	}
	if booking.CheckInDate.IsZero() || booking.CheckOutDate.IsZero() {
		return fmt.Errorf("check-in and check-out dates are required")
	}
	// Same-day stays are allowed; check-out before check-in is not
	if booking.CheckOutDate.Before(booking.CheckInDate) {
		return fmt.Errorf("check-out date cannot be before check-in date")
	}
	if err := common.ValidateBookingChannel(booking.Channel); err != nil {
		return err
	}
	if booking.Status != "" {
		if err := common.ValidateBookingStatus(booking.Status); err != nil {
			return err
		}
	}
	if booking.BaseAmount < 0 || booking.CleaningFee < 0 || booking.ExtrasAmount < 0 ||
		booking.TaxAmount < 0 || booking.SecurityDeposit < 0 {
		return fmt.Errorf("booking amounts cannot be negative")
	}
	return nil
}

// checkConflicts rejects the booking if its stay overlaps another active
// booking on the same property. excludeID skips the booking itself on
// updates.
func (s *bookingService) checkConflicts(ctx context.Context, booking *models.Booking, excludeID *uuid.UUID) error {
	overlapping, err := s.bookingRepo.FindOverlapping(ctx, booking.TenantID, booking.PropertyID, booking.CheckInDate, booking.CheckOutDate, excludeID)
	if err != nil {
		return common.SecureErrorMessage("check booking conflicts", err)
	}
	if len(overlapping) > 0 {
		return &ErrBookingConflict{Conflicts: overlapping}
	}
	return nil
}

// CreateBooking creates a booking after validating the property exists
// and the dates do not double-book it.
func (s *bookingService) CreateBooking(ctx context.Context, booking *models.Booking) error {
	if err := s.validateBooking(booking); err != nil {
		return err
	}

	property, err := s.propertyRepo.GetByID(ctx, booking.TenantID, booking.PropertyID)
	if err != nil {
		return common.SecureErrorMessage("retrieve property for booking", err)
	}
	if property == nil {
		return fmt.Errorf("property not found")
	}

	if err := s.checkConflicts(ctx, booking, nil); err != nil {
		return err
	}

	now := time.Now()
	if booking.ID == uuid.Nil {
		booking.ID = uuid.New()
	}
	if booking.Status == "" {
		booking.Status = "pending"
	}
	if booking.PaymentStatus == "" {
		booking.PaymentStatus = "unpaid"
	}
	booking.CreatedAt = now
	booking.UpdatedAt = now

	if err := s.bookingRepo.Create(ctx, booking); err != nil {
		return common.SecureErrorMessage("create booking", err)
	}
	return nil
}

// GetBookingByID retrieves a booking, serving from cache when possible
func (s *bookingService) GetBookingByID(ctx context.Context, tenantID, bookingID uuid.UUID) (*models.Booking, error) {
	if s.cacheSvc != nil {
		cached, err := s.cacheSvc.GetBooking(ctx, tenantID, bookingID)
		if err != nil {
			log.Printf("Booking cache read failed: %v", err)
		} else if cached != nil {
			return cached, nil
		}
	}

	booking, err := s.bookingRepo.GetByID(ctx, tenantID, bookingID)
	if err != nil {
		return nil, err
	}

	if booking != nil && s.cacheSvc != nil {
		if err := s.cacheSvc.SetBooking(ctx, tenantID, booking, 5*time.Minute); err != nil {
			log.Printf("Booking cache write failed: %v", err)
		}
	}
	return booking, nil
}

// ListBookings retrieves bookings with pagination
func (s *bookingService) ListBookings(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Booking, error) {
	return s.bookingRepo.List(ctx, tenantID, limit, offset)
}

// ListBookingsByProperty retrieves bookings for a property
func (s *bookingService) ListBookingsByProperty(ctx context.Context, tenantID, propertyID uuid.UUID, limit, offset int) ([]*models.Booking, error) {
	return s.bookingRepo.ListByProperty(ctx, tenantID, propertyID, limit, offset)
}

// GetBookingsByDateRange retrieves bookings whose stay intersects the range
func (s *bookingService) GetBookingsByDateRange(ctx context.Context, tenantID uuid.UUID, startDate, endDate time.Time) ([]*models.Booking, error) {
	if err := common.ValidateDateRange(startDate, endDate); err != nil {
		return nil, err
	}
	return s.bookingRepo.GetByDateRange(ctx, tenantID, startDate, endDate)
}

// UpdateBooking updates a booking, re-running conflict detection when
// dates or property change.
func (s *bookingService) UpdateBooking(ctx context.Context, booking *models.Booking) error {
	if err := s.validateBooking(booking); err != nil {
		return err
	}

	current, err := s.bookingRepo.GetByID(ctx, booking.TenantID, booking.ID)
	if err != nil {
		return common.SecureErrorMessage("retrieve booking for update", err)
	}
	if current == nil {
		return fmt.Errorf("booking not found")
	}

	datesChanged := !booking.CheckInDate.Equal(current.CheckInDate) ||
		!booking.CheckOutDate.Equal(current.CheckOutDate) ||
		booking.PropertyID != current.PropertyID
	if datesChanged {
		if err := s.checkConflicts(ctx, booking, &booking.ID); err != nil {
			return err
		}
	}

	booking.UpdatedAt = time.Now()
	if err := s.bookingRepo.Update(ctx, booking); err != nil {
		return common.SecureErrorMessage("update booking", err)
	}

	s.invalidateCache(ctx, booking.TenantID, booking.ID)
	return nil
}

// DeleteBooking removes a booking
func (s *bookingService) DeleteBooking(ctx context.Context, tenantID, bookingID uuid.UUID) error {
	if err := s.bookingRepo.Delete(ctx, tenantID, bookingID); err != nil {
		return common.SecureErrorMessage("delete booking", err)
	}
	s.invalidateCache(ctx, tenantID, bookingID)
	return nil
}

// isValidStatusTransition validates booking status transitions
func (s *bookingService) isValidStatusTransition(currentStatus, newStatus string) bool {
	validTransitions := map[string][]string{
		"inquiry":     {"pending", "confirmed", "cancelled"},
		"pending":     {"confirmed", "cancelled"},
		"confirmed":   {"checked_in", "cancelled", "no_show"},
		"checked_in":  {"checked_out"},
		"checked_out": {"completed"},
		"completed":   {},
		"cancelled":   {},
		"no_show":     {},
	}

	allowed, exists := validTransitions[currentStatus]
	if !exists {
		return false
	}
	for _, status := range allowed {
		if status == newStatus {
			return true
		}
	}
	return false
}

// UpdateBookingStatus moves a booking through its lifecycle
func (s *bookingService) UpdateBookingStatus(ctx context.Context, tenantID, bookingID uuid.UUID, status string) error {
	if err := common.ValidateBookingStatus(status); err != nil {
		return err
	}

	booking, err := s.bookingRepo.GetByID(ctx, tenantID, bookingID)
	if err != nil {
		return common.SecureErrorMessage("get booking for status update", err)
	}
	if booking == nil {
		return fmt.Errorf("booking not found")
	}

	if !s.isValidStatusTransition(booking.Status, status) {
		return fmt.Errorf("invalid status transition from %s to %s", booking.Status, status)
	}

	if err := s.bookingRepo.UpdateStatus(ctx, tenantID, bookingID, status); err != nil {
		return common.SecureErrorMessage("update booking status", err)
	}

	s.invalidateCache(ctx, tenantID, bookingID)
	return nil
}

// CheckAvailability reports whether the property is free for the stay
// and returns any conflicting bookings.
func (s *bookingService) CheckAvailability(ctx context.Context, tenantID, propertyID uuid.UUID, checkIn, checkOut time.Time) (bool, []*models.Booking, error) {
	if checkOut.Before(checkIn) {
		return false, nil, fmt.Errorf("check-out date cannot be before check-in date")
	}
	overlapping, err := s.bookingRepo.FindOverlapping(ctx, tenantID, propertyID, checkIn, checkOut, nil)
	if err != nil {
		return false, nil, common.SecureErrorMessage("check availability", err)
	}
	return len(overlapping) == 0, overlapping, nil
}

func (s *bookingService) invalidateCache(ctx context.Context, tenantID, bookingID uuid.UUID) {
	if s.cacheSvc == nil {
		return
	}
	if err := s.cacheSvc.DeleteBooking(ctx, tenantID, bookingID); err != nil {
		log.Printf("Booking cache invalidation failed: %v", err)
	}
}
