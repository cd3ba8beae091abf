package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"casaops/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type MockPropertyRepository struct {
	mock.Mock
}

func (m *MockPropertyRepository) Create(ctx context.Context, property *models.Property) error {
	args := m.Called(ctx, property)
	return args.Error(0)
}

func (m *MockPropertyRepository) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Property, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Property), args.Error(1)
}

func (m *MockPropertyRepository) Update(ctx context.Context, property *models.Property) error {
	args := m.Called(ctx, property)
	return args.Error(0)
}

func (m *MockPropertyRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}

func (m *MockPropertyRepository) List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Property, error) {
	args := m.Called(ctx, tenantID, limit, offset)
	return args.Get(0).([]*models.Property), args.Error(1)
}

func (m *MockPropertyRepository) Search(ctx context.Context, tenantID uuid.UUID, filter *models.PropertySearchFilter) ([]*models.Property, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).([]*models.Property), args.Error(1)
}

// BookingServiceTestSuite defines the test suite
type BookingServiceTestSuite struct {
	suite.Suite
	mockBookingRepo  *MockBookingRepository
	mockPropertyRepo *MockPropertyRepository
	service          BookingServiceInterface
	tenantID         uuid.UUID
	propertyID       uuid.UUID
}

func (suite *BookingServiceTestSuite) SetupTest() {
	suite.mockBookingRepo = &MockBookingRepository{}
	suite.mockPropertyRepo = &MockPropertyRepository{}
	suite.service = NewBookingService(suite.mockBookingRepo, suite.mockPropertyRepo, nil)
	suite.tenantID = uuid.New()
	suite.propertyID = uuid.New()
}

func (suite *BookingServiceTestSuite) TearDownTest() {
	suite.mockBookingRepo.AssertExpectations(suite.T())
	suite.mockPropertyRepo.AssertExpectations(suite.T())
}

func TestBookingServiceTestSuite(t *testing.T) {
	suite.Run(t, new(BookingServiceTestSuite))
}

func (suite *BookingServiceTestSuite) newBooking() *models.Booking {
	return &models.Booking{
		TenantID:     suite.tenantID,
		PropertyID:   suite.propertyID,
		GuestName:    "Ana Silva",
		CheckInDate:  time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
		CheckOutDate: time.Date(2026, 9, 5, 0, 0, 0, 0, time.UTC),
		Channel:      "direct",
		BaseAmount:   400.0,
	}
}

func (suite *BookingServiceTestSuite) TestCreateBooking_Success() {
	booking := suite.newBooking()
	property := &models.Property{ID: suite.propertyID, TenantID: suite.tenantID, Name: "Casa Azul"}

	suite.mockPropertyRepo.On("GetByID", mock.Anything, suite.tenantID, suite.propertyID).Return(property, nil)
	suite.mockBookingRepo.On("FindOverlapping", mock.Anything, suite.tenantID, suite.propertyID, booking.CheckInDate, booking.CheckOutDate, (*uuid.UUID)(nil)).Return([]*models.Booking{}, nil)
	suite.mockBookingRepo.On("Create", mock.Anything, booking).Return(nil)

	err := suite.service.CreateBooking(context.Background(), booking)

	suite.NoError(err)
	suite.NotEqual(uuid.Nil, booking.ID)
	suite.Equal("pending", booking.Status)
	suite.Equal("unpaid", booking.PaymentStatus)
}

func (suite *BookingServiceTestSuite) TestCreateBooking_RejectsOverlap() {
	booking := suite.newBooking()
	property := &models.Property{ID: suite.propertyID, TenantID: suite.tenantID, Name: "Casa Azul"}
	existing := &models.Booking{ID: uuid.New(), PropertyID: suite.propertyID, Status: "confirmed"}

	suite.mockPropertyRepo.On("GetByID", mock.Anything, suite.tenantID, suite.propertyID).Return(property, nil)
	suite.mockBookingRepo.On("FindOverlapping", mock.Anything, suite.tenantID, suite.propertyID, booking.CheckInDate, booking.CheckOutDate, (*uuid.UUID)(nil)).Return([]*models.Booking{existing}, nil)

	err := suite.service.CreateBooking(context.Background(), booking)

	suite.Error(err)
	var conflictErr *ErrBookingConflict
	suite.True(errors.As(err, &conflictErr))
	suite.Len(conflictErr.Conflicts, 1)
	suite.Equal(existing.ID, conflictErr.Conflicts[0].ID)
}

func (suite *BookingServiceTestSuite) TestCreateBooking_RejectsBackwardsDates() {
	booking := suite.newBooking()
	booking.CheckInDate = time.Date(2026, 9, 5, 0, 0, 0, 0, time.UTC)
	booking.CheckOutDate = time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)

	err := suite.service.CreateBooking(context.Background(), booking)

	suite.Error(err)
	suite.Contains(err.Error(), "check-out date cannot be before check-in date")
}

func (suite *BookingServiceTestSuite) TestCreateBooking_AllowsSameDayStay() {
	booking := suite.newBooking()
	day := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	booking.CheckInDate = day
	booking.CheckOutDate = day
	property := &models.Property{ID: suite.propertyID, TenantID: suite.tenantID, Name: "Casa Azul"}

	suite.mockPropertyRepo.On("GetByID", mock.Anything, suite.tenantID, suite.propertyID).Return(property, nil)
	suite.mockBookingRepo.On("FindOverlapping", mock.Anything, suite.tenantID, suite.propertyID, day, day, (*uuid.UUID)(nil)).Return([]*models.Booking{}, nil)
	suite.mockBookingRepo.On("Create", mock.Anything, booking).Return(nil)

	err := suite.service.CreateBooking(context.Background(), booking)

	suite.NoError(err)
}

func (suite *BookingServiceTestSuite) TestCreateBooking_RejectsUnknownProperty() {
	booking := suite.newBooking()

	suite.mockPropertyRepo.On("GetByID", mock.Anything, suite.tenantID, suite.propertyID).Return(nil, nil)

	err := suite.service.CreateBooking(context.Background(), booking)

	suite.Error(err)
	suite.Contains(err.Error(), "property not found")
}

func (suite *BookingServiceTestSuite) TestCreateBooking_RejectsNegativeAmounts() {
	booking := suite.newBooking()
	booking.CleaningFee = -10.0

	err := suite.service.CreateBooking(context.Background(), booking)

	suite.Error(err)
	suite.Contains(err.Error(), "cannot be negative")
}

func (suite *BookingServiceTestSuite) TestUpdateBooking_SkipsConflictCheckWhenDatesUnchanged() {
	booking := suite.newBooking()
	booking.ID = uuid.New()
	booking.Status = "confirmed"
	current := *booking

	suite.mockBookingRepo.On("GetByID", mock.Anything, suite.tenantID, booking.ID).Return(&current, nil)
	suite.mockBookingRepo.On("Update", mock.Anything, booking).Return(nil)

	err := suite.service.UpdateBooking(context.Background(), booking)

	suite.NoError(err)
	suite.mockBookingRepo.AssertNotCalled(suite.T(), "FindOverlapping", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *BookingServiceTestSuite) TestUpdateBooking_RechecksConflictsOnDateChange() {
	booking := suite.newBooking()
	booking.ID = uuid.New()
	current := *booking
	booking.CheckOutDate = booking.CheckOutDate.AddDate(0, 0, 2)

	suite.mockBookingRepo.On("GetByID", mock.Anything, suite.tenantID, booking.ID).Return(&current, nil)
	suite.mockBookingRepo.On("FindOverlapping", mock.Anything, suite.tenantID, suite.propertyID, booking.CheckInDate, booking.CheckOutDate, &booking.ID).Return([]*models.Booking{{ID: uuid.New()}}, nil)

	err := suite.service.UpdateBooking(context.Background(), booking)

	suite.Error(err)
	var conflictErr *ErrBookingConflict
	suite.True(errors.As(err, &conflictErr))
}

func (suite *BookingServiceTestSuite) TestUpdateBookingStatus_ValidTransition() {
	bookingID := uuid.New()
	booking := &models.Booking{ID: bookingID, TenantID: suite.tenantID, Status: "confirmed"}

	suite.mockBookingRepo.On("GetByID", mock.Anything, suite.tenantID, bookingID).Return(booking, nil)
	suite.mockBookingRepo.On("UpdateStatus", mock.Anything, suite.tenantID, bookingID, "checked_in").Return(nil)

	err := suite.service.UpdateBookingStatus(context.Background(), suite.tenantID, bookingID, "checked_in")

	suite.NoError(err)
}

func (suite *BookingServiceTestSuite) TestUpdateBookingStatus_InvalidTransition() {
	bookingID := uuid.New()
	booking := &models.Booking{ID: bookingID, TenantID: suite.tenantID, Status: "pending"}

	suite.mockBookingRepo.On("GetByID", mock.Anything, suite.tenantID, bookingID).Return(booking, nil)

	err := suite.service.UpdateBookingStatus(context.Background(), suite.tenantID, bookingID, "checked_out")

	suite.Error(err)
	suite.Contains(err.Error(), "invalid status transition")
}

func (suite *BookingServiceTestSuite) TestUpdateBookingStatus_TerminalStates() {
	for _, status := range []string{"completed", "cancelled", "no_show"} {
		bookingID := uuid.New()
		booking := &models.Booking{ID: bookingID, TenantID: suite.tenantID, Status: status}

		suite.mockBookingRepo.On("GetByID", mock.Anything, suite.tenantID, bookingID).Return(booking, nil)

		err := suite.service.UpdateBookingStatus(context.Background(), suite.tenantID, bookingID, "pending")

		suite.Error(err)
	}
}

func (suite *BookingServiceTestSuite) TestCheckAvailability() {
	checkIn := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	checkOut := time.Date(2026, 10, 4, 0, 0, 0, 0, time.UTC)
	existing := &models.Booking{ID: uuid.New(), PropertyID: suite.propertyID}

	suite.mockBookingRepo.On("FindOverlapping", mock.Anything, suite.tenantID, suite.propertyID, checkIn, checkOut, (*uuid.UUID)(nil)).Return([]*models.Booking{existing}, nil)

	available, conflicts, err := suite.service.CheckAvailability(context.Background(), suite.tenantID, suite.propertyID, checkIn, checkOut)

	suite.NoError(err)
	suite.False(available)
	suite.Len(conflicts, 1)
}
