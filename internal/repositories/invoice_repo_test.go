package repositories

import (
	"context"
	"testing"
	"time"

	"casaops/internal/models"

	"github.com/google/uuid"
	pgxmock "github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

type InvoiceRepoTestSuite struct {
	suite.Suite
	mock      pgxmock.PgxPoolIface
	repo      InvoiceRepository
	tenantID  uuid.UUID
	invoiceID uuid.UUID
	context   context.Context
}

func (suite *InvoiceRepoTestSuite) SetupTest() {
	mock, err := pgxmock.NewPool()
	assert.NoError(suite.T(), err)
	suite.mock = mock

	suite.repo = NewInvoiceRepository(mock)
	suite.tenantID = uuid.New()
	suite.invoiceID = uuid.New()
	suite.context = context.Background()
}

func (suite *InvoiceRepoTestSuite) TearDownTest() {
	suite.mock.Close()
}

func TestInvoiceRepoTestSuite(t *testing.T) {
	suite.Run(t, new(InvoiceRepoTestSuite))
}

func (suite *InvoiceRepoTestSuite) TestCreate_InsertsInvoiceAndLineItemsInOneTransaction() {
	invoice := &models.Invoice{
		ID:            suite.invoiceID,
		TenantID:      suite.tenantID,
		PropertyID:    uuid.New(),
		InvoiceNumber: "INV-00000001-2024-03-000001",
		Status:        "draft",
		Subtotal:      550,
		TaxAmount:     28,
		TotalAmount:   578,
		IssuedDate:    time.Now(),
		DueDate:       time.Now().AddDate(0, 0, 30),
	}
	items := []models.InvoiceLineItem{
		{LineNumber: 1, Description: "Accommodation", Quantity: 3, UnitPrice: 100, ItemType: "accommodation"},
		{LineNumber: 2, Description: "Cleaning fee", Quantity: 1, UnitPrice: 50, ItemType: "cleaning"},
	}

	suite.mock.ExpectBegin()
	suite.mock.ExpectExec(`INSERT INTO invoices`).
		WithArgs(invoice.ID, invoice.TenantID, invoice.PropertyID, invoice.BookingID, invoice.InvoiceNumber, invoice.GuestName, invoice.Status, invoice.Subtotal, invoice.TaxAmount, invoice.TotalAmount, invoice.AmountPaid, invoice.IssuedDate, invoice.DueDate, invoice.PaidDate, invoice.Notes).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	suite.mock.ExpectExec(`INSERT INTO invoice_line_items`).
		WithArgs(pgxmock.AnyArg(), invoice.ID, 1, "Accommodation", 3.0, 100.0, 0.0, 0.0, "accommodation").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	suite.mock.ExpectExec(`INSERT INTO invoice_line_items`).
		WithArgs(pgxmock.AnyArg(), invoice.ID, 2, "Cleaning fee", 1.0, 50.0, 0.0, 0.0, "cleaning").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	suite.mock.ExpectCommit()

	err := suite.repo.Create(suite.context, invoice, items)
	assert.NoError(suite.T(), err)
	assert.NoError(suite.T(), suite.mock.ExpectationsWereMet())
}

func (suite *InvoiceRepoTestSuite) TestCreate_RollsBackWhenLineItemInsertFails() {
	invoice := &models.Invoice{
		ID:       suite.invoiceID,
		TenantID: suite.tenantID,
	}
	items := []models.InvoiceLineItem{
		{LineNumber: 1, Description: "Accommodation", Quantity: 2, UnitPrice: 80, ItemType: "accommodation"},
	}

	suite.mock.ExpectBegin()
	suite.mock.ExpectExec(`INSERT INTO invoices`).
		WithArgs(invoice.ID, invoice.TenantID, invoice.PropertyID, invoice.BookingID, invoice.InvoiceNumber, invoice.GuestName, invoice.Status, invoice.Subtotal, invoice.TaxAmount, invoice.TotalAmount, invoice.AmountPaid, invoice.IssuedDate, invoice.DueDate, invoice.PaidDate, invoice.Notes).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	suite.mock.ExpectExec(`INSERT INTO invoice_line_items`).
		WithArgs(pgxmock.AnyArg(), invoice.ID, 1, "Accommodation", 2.0, 80.0, 0.0, 0.0, "accommodation").
		WillReturnError(assert.AnError)
	suite.mock.ExpectRollback()

	err := suite.repo.Create(suite.context, invoice, items)
	assert.Error(suite.T(), err)
	assert.NoError(suite.T(), suite.mock.ExpectationsWereMet())
}

func (suite *InvoiceRepoTestSuite) TestReplaceLineItems_DeletesThenReinsertsAndUpdatesTotals() {
	invoice := &models.Invoice{
		ID:          suite.invoiceID,
		TenantID:    suite.tenantID,
		Subtotal:    20,
		TaxAmount:   2,
		TotalAmount: 22,
	}
	items := []models.InvoiceLineItem{
		{LineNumber: 1, Description: "Extras", Quantity: 2, UnitPrice: 10, TaxRate: 10, TaxAmount: 2, ItemType: "extras"},
	}

	suite.mock.ExpectBegin()
	suite.mock.ExpectExec(`DELETE FROM invoice_line_items WHERE invoice_id = \$1`).
		WithArgs(invoice.ID).
		WillReturnResult(pgxmock.NewResult("DELETE", 3))
	suite.mock.ExpectExec(`INSERT INTO invoice_line_items`).
		WithArgs(pgxmock.AnyArg(), invoice.ID, 1, "Extras", 2.0, 10.0, 10.0, 2.0, "extras").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	suite.mock.ExpectExec(`UPDATE invoices`).
		WithArgs(20.0, 2.0, 22.0, suite.tenantID, suite.invoiceID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	suite.mock.ExpectCommit()

	err := suite.repo.ReplaceLineItems(suite.context, invoice, items)
	assert.NoError(suite.T(), err)
	assert.NoError(suite.T(), suite.mock.ExpectationsWereMet())
}

func (suite *InvoiceRepoTestSuite) TestReplaceLineItems_EmptyListLeavesInvoiceWithNoRows() {
	invoice := &models.Invoice{
		ID:       suite.invoiceID,
		TenantID: suite.tenantID,
	}

	suite.mock.ExpectBegin()
	suite.mock.ExpectExec(`DELETE FROM invoice_line_items WHERE invoice_id = \$1`).
		WithArgs(invoice.ID).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	suite.mock.ExpectExec(`UPDATE invoices`).
		WithArgs(0.0, 0.0, 0.0, suite.tenantID, suite.invoiceID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	suite.mock.ExpectCommit()

	err := suite.repo.ReplaceLineItems(suite.context, invoice, nil)
	assert.NoError(suite.T(), err)
	assert.NoError(suite.T(), suite.mock.ExpectationsWereMet())
}

func (suite *InvoiceRepoTestSuite) TestGetLineItems_OrderedByLineNumber() {
	now := time.Now()
	itemID1 := uuid.New()
	itemID2 := uuid.New()

	rows := pgxmock.NewRows([]string{"id", "invoice_id", "line_number", "description", "quantity", "unit_price", "tax_rate", "tax_amount", "item_type", "created_at"}).
		AddRow(itemID1, suite.invoiceID, 1, "Accommodation", 3.0, 100.0, 0.0, 0.0, "accommodation", now).
		AddRow(itemID2, suite.invoiceID, 3, "Taxes", 1.0, 0.0, 8.0, 28.0, "tax", now)

	suite.mock.ExpectQuery(`SELECT id, invoice_id, line_number, description, quantity, unit_price, tax_rate, tax_amount, item_type, created_at`).
		WithArgs(suite.invoiceID).
		WillReturnRows(rows)

	items, err := suite.repo.GetLineItems(suite.context, suite.invoiceID)
	assert.NoError(suite.T(), err)
	assert.Len(suite.T(), items, 2)
	assert.Equal(suite.T(), 1, items[0].LineNumber)
	assert.Equal(suite.T(), 3, items[1].LineNumber) // gaps from removals survive the round trip
	assert.Equal(suite.T(), 28.0, items[1].TaxAmount)
}

func (suite *InvoiceRepoTestSuite) TestUpdateStatus() {
	suite.mock.ExpectExec(`UPDATE invoices`).
		WithArgs("paid", suite.tenantID, suite.invoiceID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err := suite.repo.UpdateStatus(suite.context, suite.tenantID, suite.invoiceID, "paid")
	assert.NoError(suite.T(), err)
	assert.NoError(suite.T(), suite.mock.ExpectationsWereMet())
}

func (suite *InvoiceRepoTestSuite) TestListTenantsWithUnpaid() {
	otherTenant := uuid.New()
	rows := pgxmock.NewRows([]string{"tenant_id"}).
		AddRow(suite.tenantID).
		AddRow(otherTenant)

	suite.mock.ExpectQuery(`SELECT DISTINCT tenant_id FROM invoices`).
		WillReturnRows(rows)

	tenants, err := suite.repo.ListTenantsWithUnpaid(suite.context)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), []uuid.UUID{suite.tenantID, otherTenant}, tenants)
	assert.NoError(suite.T(), suite.mock.ExpectationsWereMet())
}

func (suite *InvoiceRepoTestSuite) TestGenerateInvoiceNumber_FormatsMonthlySequence() {
	issued := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)

	suite.mock.ExpectQuery(`WITH upsert AS`).
		WithArgs(suite.tenantID, "2024-03").
		WillReturnRows(pgxmock.NewRows([]string{"last_number"}).AddRow(7))

	number, err := suite.repo.GenerateInvoiceNumber(suite.context, suite.tenantID, issued)
	assert.NoError(suite.T(), err)

	tenantSuffix := suite.tenantID.String()[len(suite.tenantID.String())-8:]
	assert.Equal(suite.T(), "INV-"+tenantSuffix+"-2024-03-000007", number)
}
