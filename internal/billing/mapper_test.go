package billing

import (
	"testing"
	"time"

	"casaops/internal/models"

	"github.com/stretchr/testify/assert"
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestLineItemsFromBooking_ProratesAccommodationAcrossNights(t *testing.T) {
	b := &models.Booking{
		CheckInDate:  day("2024-01-01"),
		CheckOutDate: day("2024-01-04"),
		BaseAmount:   300,
	}

	items := LineItemsFromBooking(b)
	assert.Len(t, items, 1)
	assert.Equal(t, models.ItemTypeAccommodation, items[0].ItemType)
	assert.Equal(t, 1, items[0].LineNumber)
	assert.InDelta(t, 3.0, items[0].Quantity, 1e-9)
	assert.InDelta(t, 100.0, items[0].UnitPrice, 1e-9)
}

func TestLineItemsFromBooking_SameDayStayBillsFullBaseAmount(t *testing.T) {
	b := &models.Booking{
		CheckInDate:  day("2024-06-10"),
		CheckOutDate: day("2024-06-10"),
		BaseAmount:   120,
	}

	items := LineItemsFromBooking(b)
	assert.Len(t, items, 1)
	assert.Equal(t, 1.0, items[0].Quantity)
	assert.Equal(t, 120.0, items[0].UnitPrice)
}

func TestLineItemsFromBooking_SkipsZeroComponents(t *testing.T) {
	b := &models.Booking{
		CheckInDate:  day("2024-01-01"),
		CheckOutDate: day("2024-01-03"),
		BaseAmount:   200,
		CleaningFee:  0,
		ExtrasAmount: 35,
	}

	items := LineItemsFromBooking(b)
	assert.Len(t, items, 2)
	for _, it := range items {
		assert.NotEqual(t, models.ItemTypeCleaning, it.ItemType)
	}
	// Line numbers stay contiguous even with skipped components.
	assert.Equal(t, 1, items[0].LineNumber)
	assert.Equal(t, 2, items[1].LineNumber)
}

func TestLineItemsFromBooking_EmptyBookingYieldsEmptyList(t *testing.T) {
	b := &models.Booking{
		CheckInDate:  day("2024-01-01"),
		CheckOutDate: day("2024-01-02"),
	}

	assert.Empty(t, LineItemsFromBooking(b))
}

func TestLineItemsFromBooking_FullBooking(t *testing.T) {
	b := &models.Booking{
		CheckInDate:     day("2024-03-01"),
		CheckOutDate:    day("2024-03-04"),
		BaseAmount:      300,
		CleaningFee:     50,
		ExtrasAmount:    0,
		TaxAmount:       28,
		SecurityDeposit: 200,
	}

	items := LineItemsFromBooking(b)
	assert.Len(t, items, 4)

	acc, cleaning, tax, deposit := items[0], items[1], items[2], items[3]

	assert.Equal(t, models.ItemTypeAccommodation, acc.ItemType)
	assert.InDelta(t, 3.0, acc.Quantity, 1e-9)
	assert.InDelta(t, 100.0, acc.UnitPrice, 1e-9)

	assert.Equal(t, models.ItemTypeCleaning, cleaning.ItemType)
	assert.Equal(t, 50.0, cleaning.UnitPrice)

	assert.Equal(t, models.ItemTypeTax, tax.ItemType)
	assert.Equal(t, 0.0, tax.UnitPrice)
	assert.Equal(t, 28.0, tax.TaxAmount)
	assert.InDelta(t, 8.0, tax.TaxRate, 1e-9) // 28 / 350 * 100

	assert.Equal(t, models.ItemTypeOther, deposit.ItemType)
	assert.Equal(t, 200.0, deposit.UnitPrice)
	assert.Contains(t, deposit.Description, "refundable")

	totals := CalculateTotals(items)
	assert.InDelta(t, 550.0, totals.Subtotal, 1e-9)
	assert.InDelta(t, 28.0, totals.TaxAmount, 1e-9)
	assert.InDelta(t, 578.0, totals.Total, 1e-9)
}

func TestLineItemsFromBooking_TaxRateZeroWhenNoPretaxSubtotal(t *testing.T) {
	b := &models.Booking{
		CheckInDate:  day("2024-01-01"),
		CheckOutDate: day("2024-01-02"),
		TaxAmount:    15,
	}

	items := LineItemsFromBooking(b)
	assert.Len(t, items, 1)
	assert.Equal(t, models.ItemTypeTax, items[0].ItemType)
	assert.Equal(t, 0.0, items[0].TaxRate)
	assert.Equal(t, 15.0, items[0].TaxAmount)
}

func TestLineItemsFromBooking_TotalsReproduceBookingAmounts(t *testing.T) {
	b := &models.Booking{
		CheckInDate:     day("2024-07-05"),
		CheckOutDate:    day("2024-07-12"),
		BaseAmount:      971.43,
		CleaningFee:     80,
		ExtrasAmount:    45.5,
		TaxAmount:       120.77,
		SecurityDeposit: 300,
	}

	totals := CalculateTotals(LineItemsFromBooking(b))
	assert.InDelta(t, b.BaseAmount+b.CleaningFee+b.ExtrasAmount+b.SecurityDeposit, totals.Subtotal, 1e-6)
	assert.InDelta(t, b.TaxAmount, totals.TaxAmount, 1e-9)
}
