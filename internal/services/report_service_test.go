package services

import (
	"context"
	"testing"
	"time"

	"casaops/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type MockReportScheduleRepository struct {
	mock.Mock
}

func (m *MockReportScheduleRepository) Create(ctx context.Context, schedule *models.ReportSchedule) error {
	args := m.Called(ctx, schedule)
	return args.Error(0)
}

func (m *MockReportScheduleRepository) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.ReportSchedule, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ReportSchedule), args.Error(1)
}

func (m *MockReportScheduleRepository) Update(ctx context.Context, schedule *models.ReportSchedule) error {
	args := m.Called(ctx, schedule)
	return args.Error(0)
}

func (m *MockReportScheduleRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}

func (m *MockReportScheduleRepository) List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.ReportSchedule, error) {
	args := m.Called(ctx, tenantID, limit, offset)
	return args.Get(0).([]*models.ReportSchedule), args.Error(1)
}

func (m *MockReportScheduleRepository) ListEnabled(ctx context.Context, limit, offset int) ([]*models.ReportSchedule, error) {
	args := m.Called(ctx, limit, offset)
	return args.Get(0).([]*models.ReportSchedule), args.Error(1)
}

func (m *MockReportScheduleRepository) RecordRun(ctx context.Context, scheduleID uuid.UUID, ranAt time.Time) error {
	args := m.Called(ctx, scheduleID, ranAt)
	return args.Error(0)
}

func (m *MockReportScheduleRepository) CreateGeneratedReport(ctx context.Context, report *models.GeneratedReport) error {
	args := m.Called(ctx, report)
	return args.Error(0)
}

func (m *MockReportScheduleRepository) ListGeneratedReports(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.GeneratedReport, error) {
	args := m.Called(ctx, tenantID, limit, offset)
	return args.Get(0).([]*models.GeneratedReport), args.Error(1)
}

// ReportServiceTestSuite defines the test suite
type ReportServiceTestSuite struct {
	suite.Suite
	mockInvoiceRepo  *MockInvoiceRepository
	mockBookingRepo  *MockBookingRepository
	mockPropertyRepo *MockPropertyRepository
	mockScheduleRepo *MockReportScheduleRepository
	service          ReportServiceInterface
	tenantID         uuid.UUID
	start            time.Time
	end              time.Time
}

func (suite *ReportServiceTestSuite) SetupTest() {
	suite.mockInvoiceRepo = &MockInvoiceRepository{}
	suite.mockBookingRepo = &MockBookingRepository{}
	suite.mockPropertyRepo = &MockPropertyRepository{}
	suite.mockScheduleRepo = &MockReportScheduleRepository{}
	suite.service = NewReportService(suite.mockInvoiceRepo, suite.mockBookingRepo, suite.mockPropertyRepo, suite.mockScheduleRepo, nil, "reports")
	suite.tenantID = uuid.New()
	suite.start = time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	suite.end = time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
}

func (suite *ReportServiceTestSuite) TearDownTest() {
	suite.mockInvoiceRepo.AssertExpectations(suite.T())
	suite.mockBookingRepo.AssertExpectations(suite.T())
	suite.mockPropertyRepo.AssertExpectations(suite.T())
	suite.mockScheduleRepo.AssertExpectations(suite.T())
}

func TestReportServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ReportServiceTestSuite))
}

func (suite *ReportServiceTestSuite) TestCalculateFinancialSummary() {
	invoices := []*models.Invoice{
		{Status: "paid", TotalAmount: 500.0, TaxAmount: 50.0, AmountPaid: 500.0},
		{Status: "partially_paid", TotalAmount: 300.0, TaxAmount: 30.0, AmountPaid: 100.0},
		{Status: "unpaid", TotalAmount: 200.0, TaxAmount: 20.0},
		{Status: "cancelled", TotalAmount: 999.0, TaxAmount: 99.0},
	}

	suite.mockInvoiceRepo.On("GetByDateRange", mock.Anything, suite.tenantID, suite.start, suite.end).Return(invoices, nil)

	summary, err := suite.service.CalculateFinancialSummary(context.Background(), suite.tenantID, suite.start, suite.end)

	suite.NoError(err)
	suite.Equal(3, summary.TotalInvoices)
	suite.Equal(1, summary.PaidInvoices)
	suite.Equal(1, summary.PartiallyPaid)
	suite.Equal(1, summary.UnpaidInvoices)
	// cancelled invoice contributes nothing
	suite.Equal(1000.0, summary.TotalBilled)
	suite.Equal(100.0, summary.TotalTaxBilled)
	suite.Equal(600.0, summary.TotalCollected)
	suite.Equal(400.0, summary.TotalOutstanding)
	suite.Equal(333.33, summary.AvgInvoiceValue)
	suite.Equal(60.0, summary.CollectionRate)
}

func (suite *ReportServiceTestSuite) TestCalculateFinancialSummary_Empty() {
	suite.mockInvoiceRepo.On("GetByDateRange", mock.Anything, suite.tenantID, suite.start, suite.end).Return([]*models.Invoice{}, nil)

	summary, err := suite.service.CalculateFinancialSummary(context.Background(), suite.tenantID, suite.start, suite.end)

	suite.NoError(err)
	suite.Equal(0, summary.TotalInvoices)
	suite.Equal(0.0, summary.AvgInvoiceValue)
	suite.Equal(0.0, summary.CollectionRate)
}

func (suite *ReportServiceTestSuite) TestCalculateOccupancy_ClipsStaysToPeriod() {
	propertyID := uuid.New()
	properties := []*models.Property{{ID: propertyID, TenantID: suite.tenantID, Name: "Casa Azul"}}
	bookings := []*models.Booking{
		// 4 nights fully inside the period
		{PropertyID: propertyID, Status: "confirmed",
			CheckInDate:  time.Date(2026, 6, 10, 0, 0, 0, 0, time.UTC),
			CheckOutDate: time.Date(2026, 6, 14, 0, 0, 0, 0, time.UTC)},
		// starts before the period, only 2 nights count
		{PropertyID: propertyID, Status: "checked_out",
			CheckInDate:  time.Date(2026, 5, 28, 0, 0, 0, 0, time.UTC),
			CheckOutDate: time.Date(2026, 6, 3, 0, 0, 0, 0, time.UTC)},
		// cancelled stays are skipped
		{PropertyID: propertyID, Status: "cancelled",
			CheckInDate:  time.Date(2026, 6, 20, 0, 0, 0, 0, time.UTC),
			CheckOutDate: time.Date(2026, 6, 25, 0, 0, 0, 0, time.UTC)},
	}

	suite.mockPropertyRepo.On("List", mock.Anything, suite.tenantID, 1000, 0).Return(properties, nil)
	suite.mockBookingRepo.On("GetByDateRange", mock.Anything, suite.tenantID, suite.start, suite.end).Return(bookings, nil)

	rows, err := suite.service.CalculateOccupancy(context.Background(), suite.tenantID, suite.start, suite.end)

	suite.NoError(err)
	suite.Len(rows, 1)
	suite.Equal(6, rows[0].NightsBooked)
	suite.Equal(30, rows[0].NightsInSpan)
	suite.Equal(20.0, rows[0].OccupancyPct)
}
