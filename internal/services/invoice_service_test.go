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

// Mock repositories
type MockInvoiceRepository struct {
	mock.Mock
}

func (m *MockInvoiceRepository) Create(ctx context.Context, invoice *models.Invoice, items []models.InvoiceLineItem) error {
	args := m.Called(ctx, invoice, items)
	return args.Error(0)
}

func (m *MockInvoiceRepository) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Invoice, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) Update(ctx context.Context, invoice *models.Invoice) error {
	args := m.Called(ctx, invoice)
	return args.Error(0)
}

func (m *MockInvoiceRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}

func (m *MockInvoiceRepository) List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Invoice, error) {
	args := m.Called(ctx, tenantID, limit, offset)
	return args.Get(0).([]*models.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) GetByStatus(ctx context.Context, tenantID uuid.UUID, status string, limit, offset int) ([]*models.Invoice, error) {
	args := m.Called(ctx, tenantID, status, limit, offset)
	return args.Get(0).([]*models.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) GetUnpaid(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Invoice, error) {
	args := m.Called(ctx, tenantID, limit, offset)
	return args.Get(0).([]*models.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) GetByBookingID(ctx context.Context, tenantID, bookingID uuid.UUID) ([]*models.Invoice, error) {
	args := m.Called(ctx, tenantID, bookingID)
	return args.Get(0).([]*models.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) GetByDateRange(ctx context.Context, tenantID uuid.UUID, startDate, endDate time.Time) ([]*models.Invoice, error) {
	args := m.Called(ctx, tenantID, startDate, endDate)
	return args.Get(0).([]*models.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) UpdateStatus(ctx context.Context, tenantID, invoiceID uuid.UUID, status string) error {
	args := m.Called(ctx, tenantID, invoiceID, status)
	return args.Error(0)
}

func (m *MockInvoiceRepository) ListTenantsWithUnpaid(ctx context.Context) ([]uuid.UUID, error) {
	args := m.Called(ctx)
	return args.Get(0).([]uuid.UUID), args.Error(1)
}

func (m *MockInvoiceRepository) GenerateInvoiceNumber(ctx context.Context, tenantID uuid.UUID, issuedDate time.Time) (string, error) {
	args := m.Called(ctx, tenantID, issuedDate)
	return args.String(0), args.Error(1)
}

func (m *MockInvoiceRepository) GetLineItems(ctx context.Context, invoiceID uuid.UUID) ([]models.InvoiceLineItem, error) {
	args := m.Called(ctx, invoiceID)
	return args.Get(0).([]models.InvoiceLineItem), args.Error(1)
}

func (m *MockInvoiceRepository) ReplaceLineItems(ctx context.Context, invoice *models.Invoice, items []models.InvoiceLineItem) error {
	args := m.Called(ctx, invoice, items)
	return args.Error(0)
}

type MockBookingRepository struct {
	mock.Mock
}

func (m *MockBookingRepository) Create(ctx context.Context, booking *models.Booking) error {
	args := m.Called(ctx, booking)
	return args.Error(0)
}

func (m *MockBookingRepository) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Booking, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Booking), args.Error(1)
}

func (m *MockBookingRepository) Update(ctx context.Context, booking *models.Booking) error {
	args := m.Called(ctx, booking)
	return args.Error(0)
}

func (m *MockBookingRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}

func (m *MockBookingRepository) List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Booking, error) {
	args := m.Called(ctx, tenantID, limit, offset)
	return args.Get(0).([]*models.Booking), args.Error(1)
}

func (m *MockBookingRepository) ListByProperty(ctx context.Context, tenantID, propertyID uuid.UUID, limit, offset int) ([]*models.Booking, error) {
	args := m.Called(ctx, tenantID, propertyID, limit, offset)
	return args.Get(0).([]*models.Booking), args.Error(1)
}

func (m *MockBookingRepository) GetByDateRange(ctx context.Context, tenantID uuid.UUID, startDate, endDate time.Time) ([]*models.Booking, error) {
	args := m.Called(ctx, tenantID, startDate, endDate)
	return args.Get(0).([]*models.Booking), args.Error(1)
}

func (m *MockBookingRepository) FindOverlapping(ctx context.Context, tenantID, propertyID uuid.UUID, checkIn, checkOut time.Time, excludeID *uuid.UUID) ([]*models.Booking, error) {
	args := m.Called(ctx, tenantID, propertyID, checkIn, checkOut, excludeID)
	return args.Get(0).([]*models.Booking), args.Error(1)
}

func (m *MockBookingRepository) UpdateStatus(ctx context.Context, tenantID, bookingID uuid.UUID, status string) error {
	args := m.Called(ctx, tenantID, bookingID, status)
	return args.Error(0)
}

// InvoiceServiceTestSuite defines the test suite
type InvoiceServiceTestSuite struct {
	suite.Suite
	mockInvoiceRepo *MockInvoiceRepository
	mockBookingRepo *MockBookingRepository
	service         InvoiceServiceInterface
	tenantID        uuid.UUID
}

func (suite *InvoiceServiceTestSuite) SetupTest() {
	suite.mockInvoiceRepo = &MockInvoiceRepository{}
	suite.mockBookingRepo = &MockBookingRepository{}
	suite.service = NewInvoiceService(suite.mockInvoiceRepo, suite.mockBookingRepo, true, 30)
	suite.tenantID = uuid.New()
}

func (suite *InvoiceServiceTestSuite) TearDownTest() {
	suite.mockInvoiceRepo.AssertExpectations(suite.T())
	suite.mockBookingRepo.AssertExpectations(suite.T())
}

func TestInvoiceServiceTestSuite(t *testing.T) {
	suite.Run(t, new(InvoiceServiceTestSuite))
}

func (suite *InvoiceServiceTestSuite) TestCreateInvoice_Defaults() {
	invoice := &models.Invoice{
		TenantID:   suite.tenantID,
		PropertyID: uuid.New(),
	}
	items := []models.InvoiceLineItem{
		{LineNumber: 1, Description: "Stay", Quantity: 3, UnitPrice: 150.0, TaxRate: 10.0, TaxAmount: 45.0, ItemType: "accommodation"},
	}

	suite.mockInvoiceRepo.On("GenerateInvoiceNumber", mock.Anything, suite.tenantID, mock.Anything).Return("INV-2026-01-0001", nil)
	suite.mockInvoiceRepo.On("Create", mock.Anything, invoice, items).Return(nil)

	err := suite.service.CreateInvoice(context.Background(), invoice, items)

	suite.NoError(err)
	suite.Equal("draft", invoice.Status)
	suite.Equal("INV-2026-01-0001", invoice.InvoiceNumber)
	suite.NotEqual(uuid.Nil, invoice.ID)
	suite.Equal(invoice.IssuedDate.AddDate(0, 0, 30), invoice.DueDate)
	suite.Equal(450.0, invoice.Subtotal)
	suite.Equal(45.0, invoice.TaxAmount)
	suite.Equal(495.0, invoice.TotalAmount)
}

func (suite *InvoiceServiceTestSuite) TestCreateInvoice_RejectsNegativeWhenDisallowed() {
	strictService := NewInvoiceService(suite.mockInvoiceRepo, suite.mockBookingRepo, false, 30)

	invoice := &models.Invoice{TenantID: suite.tenantID, PropertyID: uuid.New()}
	items := []models.InvoiceLineItem{
		{LineNumber: 1, Description: "Discount", Quantity: 1, UnitPrice: -50.0, ItemType: "other"},
	}

	err := strictService.CreateInvoice(context.Background(), invoice, items)

	suite.Error(err)
	suite.Contains(err.Error(), "unit price cannot be negative")
}

func (suite *InvoiceServiceTestSuite) TestCreateInvoice_AllowsNegativeWhenConfigured() {
	invoice := &models.Invoice{TenantID: suite.tenantID, PropertyID: uuid.New()}
	items := []models.InvoiceLineItem{
		{LineNumber: 1, Description: "Stay", Quantity: 1, UnitPrice: 200.0, ItemType: "accommodation"},
		{LineNumber: 2, Description: "Loyalty discount", Quantity: 1, UnitPrice: -20.0, ItemType: "other"},
	}

	suite.mockInvoiceRepo.On("GenerateInvoiceNumber", mock.Anything, suite.tenantID, mock.Anything).Return("INV-2026-01-0002", nil)
	suite.mockInvoiceRepo.On("Create", mock.Anything, invoice, items).Return(nil)

	err := suite.service.CreateInvoice(context.Background(), invoice, items)

	suite.NoError(err)
	suite.Equal(180.0, invoice.Subtotal)
	suite.Equal(180.0, invoice.TotalAmount)
}

func (suite *InvoiceServiceTestSuite) TestCreateInvoiceFromBooking_Success() {
	bookingID := uuid.New()
	booking := &models.Booking{
		ID:              bookingID,
		TenantID:        suite.tenantID,
		PropertyID:      uuid.New(),
		GuestName:       "Ana Silva",
		CheckInDate:     time.Date(2026, 7, 10, 0, 0, 0, 0, time.UTC),
		CheckOutDate:    time.Date(2026, 7, 13, 0, 0, 0, 0, time.UTC),
		BaseAmount:      450.0,
		CleaningFee:     60.0,
		TaxAmount:       25.0,
		SecurityDeposit: 100.0,
	}

	suite.mockBookingRepo.On("GetByID", mock.Anything, suite.tenantID, bookingID).Return(booking, nil)
	suite.mockInvoiceRepo.On("GetByBookingID", mock.Anything, suite.tenantID, bookingID).Return([]*models.Invoice{}, nil)
	suite.mockInvoiceRepo.On("GenerateInvoiceNumber", mock.Anything, suite.tenantID, mock.Anything).Return("INV-2026-07-0003", nil)
	suite.mockInvoiceRepo.On("Create", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	invoice, err := suite.service.CreateInvoiceFromBooking(context.Background(), suite.tenantID, bookingID)

	suite.NoError(err)
	suite.Equal("draft", invoice.Status)
	suite.Equal(booking.PropertyID, invoice.PropertyID)
	suite.Equal(bookingID, *invoice.BookingID)
	suite.Equal("Ana Silva", *invoice.GuestName)
	// accommodation 450 + cleaning 60 + deposit 100, tax line carries 25
	suite.Equal(610.0, invoice.Subtotal)
	suite.Equal(25.0, invoice.TaxAmount)
	suite.Equal(635.0, invoice.TotalAmount)
}

func (suite *InvoiceServiceTestSuite) TestCreateInvoiceFromBooking_RejectsDuplicate() {
	bookingID := uuid.New()
	booking := &models.Booking{ID: bookingID, TenantID: suite.tenantID, PropertyID: uuid.New(), GuestName: "Ana Silva"}
	existing := []*models.Invoice{{ID: uuid.New(), Status: "unpaid"}}

	suite.mockBookingRepo.On("GetByID", mock.Anything, suite.tenantID, bookingID).Return(booking, nil)
	suite.mockInvoiceRepo.On("GetByBookingID", mock.Anything, suite.tenantID, bookingID).Return(existing, nil)

	invoice, err := suite.service.CreateInvoiceFromBooking(context.Background(), suite.tenantID, bookingID)

	suite.Error(err)
	suite.Nil(invoice)
	suite.Contains(err.Error(), "already exists")
}

func (suite *InvoiceServiceTestSuite) TestCreateInvoiceFromBooking_IgnoresCancelledInvoices() {
	bookingID := uuid.New()
	booking := &models.Booking{
		ID:          bookingID,
		TenantID:    suite.tenantID,
		PropertyID:  uuid.New(),
		GuestName:   "Ana Silva",
		BaseAmount:  200.0,
		CheckInDate: time.Date(2026, 7, 10, 0, 0, 0, 0, time.UTC),
	}
	cancelled := []*models.Invoice{{ID: uuid.New(), Status: "cancelled"}}

	suite.mockBookingRepo.On("GetByID", mock.Anything, suite.tenantID, bookingID).Return(booking, nil)
	suite.mockInvoiceRepo.On("GetByBookingID", mock.Anything, suite.tenantID, bookingID).Return(cancelled, nil)
	suite.mockInvoiceRepo.On("GenerateInvoiceNumber", mock.Anything, suite.tenantID, mock.Anything).Return("INV-2026-07-0004", nil)
	suite.mockInvoiceRepo.On("Create", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	invoice, err := suite.service.CreateInvoiceFromBooking(context.Background(), suite.tenantID, bookingID)

	suite.NoError(err)
	suite.NotNil(invoice)
}

func (suite *InvoiceServiceTestSuite) TestUpdateInvoiceStatus_ValidTransition() {
	invoiceID := uuid.New()
	invoice := &models.Invoice{ID: invoiceID, TenantID: suite.tenantID, Status: "unpaid"}

	suite.mockInvoiceRepo.On("GetByID", mock.Anything, suite.tenantID, invoiceID).Return(invoice, nil)
	suite.mockInvoiceRepo.On("UpdateStatus", mock.Anything, suite.tenantID, invoiceID, "cancelled").Return(nil)

	err := suite.service.UpdateInvoiceStatus(context.Background(), suite.tenantID, invoiceID, "cancelled")

	suite.NoError(err)
}

func (suite *InvoiceServiceTestSuite) TestUpdateInvoiceStatus_PaidSetsPaidDate() {
	invoiceID := uuid.New()
	invoice := &models.Invoice{ID: invoiceID, TenantID: suite.tenantID, Status: "unpaid"}

	suite.mockInvoiceRepo.On("GetByID", mock.Anything, suite.tenantID, invoiceID).Return(invoice, nil)
	suite.mockInvoiceRepo.On("Update", mock.Anything, mock.MatchedBy(func(inv *models.Invoice) bool {
		return inv.Status == "paid" && inv.PaidDate != nil
	})).Return(nil)

	err := suite.service.UpdateInvoiceStatus(context.Background(), suite.tenantID, invoiceID, "paid")

	suite.NoError(err)
}

func (suite *InvoiceServiceTestSuite) TestUpdateInvoiceStatus_InvalidTransition() {
	invoiceID := uuid.New()
	invoice := &models.Invoice{ID: invoiceID, TenantID: suite.tenantID, Status: "draft"}

	suite.mockInvoiceRepo.On("GetByID", mock.Anything, suite.tenantID, invoiceID).Return(invoice, nil)

	err := suite.service.UpdateInvoiceStatus(context.Background(), suite.tenantID, invoiceID, "paid")

	suite.Error(err)
	suite.Contains(err.Error(), "invalid status transition")
}

func (suite *InvoiceServiceTestSuite) TestUpdateInvoiceStatus_TerminalStates() {
	for _, status := range []string{"paid", "cancelled"} {
		invoiceID := uuid.New()
		invoice := &models.Invoice{ID: invoiceID, TenantID: suite.tenantID, Status: status}

		suite.mockInvoiceRepo.On("GetByID", mock.Anything, suite.tenantID, invoiceID).Return(invoice, nil)

		err := suite.service.UpdateInvoiceStatus(context.Background(), suite.tenantID, invoiceID, "unpaid")

		suite.Error(err)
	}
}

func (suite *InvoiceServiceTestSuite) TestDeleteInvoice_RejectsIssuedInvoice() {
	invoiceID := uuid.New()
	invoice := &models.Invoice{ID: invoiceID, TenantID: suite.tenantID, Status: "unpaid"}

	suite.mockInvoiceRepo.On("GetByID", mock.Anything, suite.tenantID, invoiceID).Return(invoice, nil)

	err := suite.service.DeleteInvoice(context.Background(), suite.tenantID, invoiceID)

	suite.Error(err)
	suite.Contains(err.Error(), "only draft or cancelled")
}

func (suite *InvoiceServiceTestSuite) TestDeleteInvoice_AllowsDraft() {
	invoiceID := uuid.New()
	invoice := &models.Invoice{ID: invoiceID, TenantID: suite.tenantID, Status: "draft"}

	suite.mockInvoiceRepo.On("GetByID", mock.Anything, suite.tenantID, invoiceID).Return(invoice, nil)
	suite.mockInvoiceRepo.On("Delete", mock.Anything, suite.tenantID, invoiceID).Return(nil)

	err := suite.service.DeleteInvoice(context.Background(), suite.tenantID, invoiceID)

	suite.NoError(err)
}

func (suite *InvoiceServiceTestSuite) TestRecordPayment_Partial() {
	invoiceID := uuid.New()
	invoice := &models.Invoice{ID: invoiceID, TenantID: suite.tenantID, Status: "unpaid", TotalAmount: 100.0}

	suite.mockInvoiceRepo.On("GetByID", mock.Anything, suite.tenantID, invoiceID).Return(invoice, nil)
	suite.mockInvoiceRepo.On("Update", mock.Anything, mock.Anything).Return(nil)

	updated, err := suite.service.RecordPayment(context.Background(), suite.tenantID, invoiceID, 40.0, time.Now())

	suite.NoError(err)
	suite.Equal("partially_paid", updated.Status)
	suite.Equal(40.0, updated.AmountPaid)
	suite.Nil(updated.PaidDate)
}

func (suite *InvoiceServiceTestSuite) TestRecordPayment_FullSettlesInvoice() {
	invoiceID := uuid.New()
	invoice := &models.Invoice{ID: invoiceID, TenantID: suite.tenantID, Status: "partially_paid", TotalAmount: 100.0, AmountPaid: 40.0}
	paidAt := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	suite.mockInvoiceRepo.On("GetByID", mock.Anything, suite.tenantID, invoiceID).Return(invoice, nil)
	suite.mockInvoiceRepo.On("Update", mock.Anything, mock.Anything).Return(nil)

	updated, err := suite.service.RecordPayment(context.Background(), suite.tenantID, invoiceID, 60.0, paidAt)

	suite.NoError(err)
	suite.Equal("paid", updated.Status)
	suite.Equal(100.0, updated.AmountPaid)
	suite.Equal(paidAt, *updated.PaidDate)
}

func (suite *InvoiceServiceTestSuite) TestRecordPayment_RejectsOverpayment() {
	invoiceID := uuid.New()
	invoice := &models.Invoice{ID: invoiceID, TenantID: suite.tenantID, Status: "unpaid", TotalAmount: 100.0, AmountPaid: 80.0}

	suite.mockInvoiceRepo.On("GetByID", mock.Anything, suite.tenantID, invoiceID).Return(invoice, nil)

	updated, err := suite.service.RecordPayment(context.Background(), suite.tenantID, invoiceID, 30.0, time.Now())

	suite.Error(err)
	suite.Nil(updated)
	suite.Contains(err.Error(), "exceeds outstanding balance")
}

func (suite *InvoiceServiceTestSuite) TestRecordPayment_RejectsDraft() {
	invoiceID := uuid.New()
	invoice := &models.Invoice{ID: invoiceID, TenantID: suite.tenantID, Status: "draft", TotalAmount: 100.0}

	suite.mockInvoiceRepo.On("GetByID", mock.Anything, suite.tenantID, invoiceID).Return(invoice, nil)

	_, err := suite.service.RecordPayment(context.Background(), suite.tenantID, invoiceID, 50.0, time.Now())

	suite.Error(err)
	suite.Contains(err.Error(), "draft")
}

func (suite *InvoiceServiceTestSuite) TestRecordPayment_RejectsNonPositiveAmount() {
	_, err := suite.service.RecordPayment(context.Background(), suite.tenantID, uuid.New(), 0, time.Now())

	suite.Error(err)
	suite.Contains(err.Error(), "must be positive")
}

func (suite *InvoiceServiceTestSuite) TestEditLineItemField_RecomputesTotals() {
	invoiceID := uuid.New()
	invoice := &models.Invoice{ID: invoiceID, TenantID: suite.tenantID, Status: "draft"}
	items := []models.InvoiceLineItem{
		{InvoiceID: invoiceID, LineNumber: 1, Description: "Stay", Quantity: 2, UnitPrice: 100.0, TaxRate: 10.0, TaxAmount: 20.0, ItemType: "accommodation"},
	}

	suite.mockInvoiceRepo.On("GetByID", mock.Anything, suite.tenantID, invoiceID).Return(invoice, nil)
	suite.mockInvoiceRepo.On("GetLineItems", mock.Anything, invoiceID).Return(items, nil)
	suite.mockInvoiceRepo.On("ReplaceLineItems", mock.Anything, invoice, mock.Anything).Return(nil)

	updated, edited, err := suite.service.EditLineItemField(context.Background(), suite.tenantID, invoiceID, 0, "quantity", "3")

	suite.NoError(err)
	suite.Equal(3.0, edited[0].Quantity)
	suite.Equal(30.0, edited[0].TaxAmount)
	suite.Equal(300.0, updated.Subtotal)
	suite.Equal(30.0, updated.TaxAmount)
	suite.Equal(330.0, updated.TotalAmount)
}

func (suite *InvoiceServiceTestSuite) TestEditLineItemField_CoercesUnparseableToZero() {
	invoiceID := uuid.New()
	invoice := &models.Invoice{ID: invoiceID, TenantID: suite.tenantID, Status: "unpaid"}
	items := []models.InvoiceLineItem{
		{InvoiceID: invoiceID, LineNumber: 1, Quantity: 2, UnitPrice: 100.0, TaxRate: 10.0, TaxAmount: 20.0, ItemType: "accommodation"},
	}

	suite.mockInvoiceRepo.On("GetByID", mock.Anything, suite.tenantID, invoiceID).Return(invoice, nil)
	suite.mockInvoiceRepo.On("GetLineItems", mock.Anything, invoiceID).Return(items, nil)
	suite.mockInvoiceRepo.On("ReplaceLineItems", mock.Anything, invoice, mock.Anything).Return(nil)

	updated, edited, err := suite.service.EditLineItemField(context.Background(), suite.tenantID, invoiceID, 0, "unit_price", "abc")

	suite.NoError(err)
	suite.Equal(0.0, edited[0].UnitPrice)
	suite.Equal(0.0, edited[0].TaxAmount)
	suite.Equal(0.0, updated.TotalAmount)
}

func (suite *InvoiceServiceTestSuite) TestEditLineItemField_RejectsPaidInvoice() {
	invoiceID := uuid.New()
	invoice := &models.Invoice{ID: invoiceID, TenantID: suite.tenantID, Status: "paid"}

	suite.mockInvoiceRepo.On("GetByID", mock.Anything, suite.tenantID, invoiceID).Return(invoice, nil)

	_, _, err := suite.service.EditLineItemField(context.Background(), suite.tenantID, invoiceID, 0, "quantity", "3")

	suite.Error(err)
	suite.Contains(err.Error(), "cannot be changed on a paid invoice")
}

func (suite *InvoiceServiceTestSuite) TestAppendLineItem_AddsBlankRow() {
	invoiceID := uuid.New()
	invoice := &models.Invoice{ID: invoiceID, TenantID: suite.tenantID, Status: "draft"}
	items := []models.InvoiceLineItem{
		{InvoiceID: invoiceID, LineNumber: 3, Quantity: 1, UnitPrice: 50.0, ItemType: "cleaning"},
	}

	suite.mockInvoiceRepo.On("GetByID", mock.Anything, suite.tenantID, invoiceID).Return(invoice, nil)
	suite.mockInvoiceRepo.On("GetLineItems", mock.Anything, invoiceID).Return(items, nil)
	suite.mockInvoiceRepo.On("ReplaceLineItems", mock.Anything, invoice, mock.Anything).Return(nil)

	_, updated, err := suite.service.AppendLineItem(context.Background(), suite.tenantID, invoiceID)

	suite.NoError(err)
	suite.Len(updated, 2)
	suite.Equal(4, updated[1].LineNumber)
	suite.Equal(1.0, updated[1].Quantity)
	suite.Equal("other", updated[1].ItemType)
	suite.Equal(invoiceID, updated[1].InvoiceID)
}

func (suite *InvoiceServiceTestSuite) TestRemoveLineItemAt_KeepsLineNumbers() {
	invoiceID := uuid.New()
	invoice := &models.Invoice{ID: invoiceID, TenantID: suite.tenantID, Status: "draft"}
	items := []models.InvoiceLineItem{
		{InvoiceID: invoiceID, LineNumber: 1, Quantity: 1, UnitPrice: 100.0, ItemType: "accommodation"},
		{InvoiceID: invoiceID, LineNumber: 2, Quantity: 1, UnitPrice: 50.0, ItemType: "cleaning"},
		{InvoiceID: invoiceID, LineNumber: 3, Quantity: 1, UnitPrice: 25.0, ItemType: "extras"},
	}

	suite.mockInvoiceRepo.On("GetByID", mock.Anything, suite.tenantID, invoiceID).Return(invoice, nil)
	suite.mockInvoiceRepo.On("GetLineItems", mock.Anything, invoiceID).Return(items, nil)
	suite.mockInvoiceRepo.On("ReplaceLineItems", mock.Anything, invoice, mock.Anything).Return(nil)

	_, updated, err := suite.service.RemoveLineItemAt(context.Background(), suite.tenantID, invoiceID, 1)

	suite.NoError(err)
	suite.Len(updated, 2)
	suite.Equal(1, updated[0].LineNumber)
	suite.Equal(3, updated[1].LineNumber)
	suite.Equal(125.0, invoice.TotalAmount)
}

func (suite *InvoiceServiceTestSuite) TestRemoveLineItemAt_IndexOutOfRange() {
	invoiceID := uuid.New()
	invoice := &models.Invoice{ID: invoiceID, TenantID: suite.tenantID, Status: "draft"}

	suite.mockInvoiceRepo.On("GetByID", mock.Anything, suite.tenantID, invoiceID).Return(invoice, nil)
	suite.mockInvoiceRepo.On("GetLineItems", mock.Anything, invoiceID).Return([]models.InvoiceLineItem{}, nil)

	_, _, err := suite.service.RemoveLineItemAt(context.Background(), suite.tenantID, invoiceID, 0)

	suite.Error(err)
	suite.Contains(err.Error(), "out of range")
}

func (suite *InvoiceServiceTestSuite) TestReplaceLineItems_AssignsMissingLineNumbers() {
	invoiceID := uuid.New()
	invoice := &models.Invoice{ID: invoiceID, TenantID: suite.tenantID, Status: "draft"}
	incoming := []models.InvoiceLineItem{
		{LineNumber: 2, Quantity: 1, UnitPrice: 100.0, ItemType: "accommodation"},
		{Quantity: 1, UnitPrice: 40.0, ItemType: "cleaning"},
	}

	suite.mockInvoiceRepo.On("GetByID", mock.Anything, suite.tenantID, invoiceID).Return(invoice, nil)
	suite.mockInvoiceRepo.On("GetLineItems", mock.Anything, invoiceID).Return([]models.InvoiceLineItem{}, nil)
	suite.mockInvoiceRepo.On("ReplaceLineItems", mock.Anything, invoice, mock.MatchedBy(func(items []models.InvoiceLineItem) bool {
		return len(items) == 2 && items[0].LineNumber == 2 && items[1].LineNumber == 3
	})).Return(nil)

	updated, err := suite.service.ReplaceLineItems(context.Background(), suite.tenantID, invoiceID, incoming)

	suite.NoError(err)
	suite.Equal(140.0, updated.TotalAmount)
}

func (suite *InvoiceServiceTestSuite) TestMarkOverdueInvoices() {
	pastDueID := uuid.New()
	pastDue := &models.Invoice{ID: pastDueID, TenantID: suite.tenantID, Status: "unpaid", DueDate: time.Now().AddDate(0, 0, -3)}
	current := &models.Invoice{ID: uuid.New(), TenantID: suite.tenantID, Status: "unpaid", DueDate: time.Now().AddDate(0, 0, 7)}

	suite.mockInvoiceRepo.On("GetUnpaid", mock.Anything, suite.tenantID, 1000, 0).Return([]*models.Invoice{pastDue, current}, nil)
	suite.mockInvoiceRepo.On("GetByID", mock.Anything, suite.tenantID, pastDueID).Return(pastDue, nil)
	suite.mockInvoiceRepo.On("UpdateStatus", mock.Anything, suite.tenantID, pastDueID, "overdue").Return(nil)

	err := suite.service.MarkOverdueInvoices(context.Background(), suite.tenantID)

	suite.NoError(err)
	suite.mockInvoiceRepo.AssertNumberOfCalls(suite.T(), "UpdateStatus", 1)
}

func (suite *InvoiceServiceTestSuite) TestMarkOverdueForAllTenants() {
	tenantA := uuid.New()
	tenantB := uuid.New()

	suite.mockInvoiceRepo.On("ListTenantsWithUnpaid", mock.Anything).Return([]uuid.UUID{tenantA, tenantB}, nil)
	suite.mockInvoiceRepo.On("GetUnpaid", mock.Anything, tenantA, 1000, 0).Return([]*models.Invoice{}, nil)
	suite.mockInvoiceRepo.On("GetUnpaid", mock.Anything, tenantB, 1000, 0).Return([]*models.Invoice{}, nil)

	err := suite.service.MarkOverdueForAllTenants(context.Background())

	suite.NoError(err)
}
