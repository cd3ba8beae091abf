package billing

import (
	"fmt"

	"casaops/internal/models"
)

// LineItemsFromBooking seeds an editable line item list from a confirmed
// booking's financial fields. Components with a zero or negative source
// amount are skipped, so a booking with no financials yields an empty list.
//
// The accommodation row prorates the base amount across the nights of the
// stay. A same-day or inverted date range falls back to a single unit at the
// full base amount instead of dividing by zero.
//
// The tax row carries the booking's tax amount directly (unit price stays 0)
// with the effective rate back-computed against the pre-tax subtotal. The
// security deposit is billed as a refundable "other" row, so totals over the
// generated list reproduce base + cleaning + extras (+ deposit) and the
// booking's tax amount, modulo floating point.
func LineItemsFromBooking(b *models.Booking) []models.InvoiceLineItem {
	var items []models.InvoiceLineItem
	line := 0
	next := func() int {
		line++
		return line
	}

	if b.BaseAmount > 0 {
		nights := b.Nights()
		qty := float64(nights)
		unitPrice := 0.0
		if nights > 0 {
			unitPrice = b.BaseAmount / float64(nights)
		} else {
			qty = 1
			unitPrice = b.BaseAmount
		}
		items = append(items, models.InvoiceLineItem{
			LineNumber:  next(),
			Description: fmt.Sprintf("Accommodation %s - %s", b.CheckInDate.Format("2006-01-02"), b.CheckOutDate.Format("2006-01-02")),
			Quantity:    qty,
			UnitPrice:   unitPrice,
			ItemType:    models.ItemTypeAccommodation,
		})
	}

	if b.CleaningFee > 0 {
		items = append(items, models.InvoiceLineItem{
			LineNumber:  next(),
			Description: "Cleaning fee",
			Quantity:    1,
			UnitPrice:   b.CleaningFee,
			ItemType:    models.ItemTypeCleaning,
		})
	}

	if b.ExtrasAmount > 0 {
		items = append(items, models.InvoiceLineItem{
			LineNumber:  next(),
			Description: "Extras",
			Quantity:    1,
			UnitPrice:   b.ExtrasAmount,
			ItemType:    models.ItemTypeExtras,
		})
	}

	if b.TaxAmount > 0 {
		taxRate := 0.0
		pretax := b.BaseAmount + b.CleaningFee + b.ExtrasAmount
		if pretax > 0 {
			taxRate = b.TaxAmount / pretax * 100
		}
		items = append(items, models.InvoiceLineItem{
			LineNumber:  next(),
			Description: "Taxes",
			Quantity:    1,
			TaxRate:     taxRate,
			TaxAmount:   b.TaxAmount,
			ItemType:    models.ItemTypeTax,
		})
	}

	if b.SecurityDeposit > 0 {
		items = append(items, models.InvoiceLineItem{
			LineNumber:  next(),
			Description: "Security deposit (refundable)",
			Quantity:    1,
			UnitPrice:   b.SecurityDeposit,
			ItemType:    models.ItemTypeOther,
		})
	}

	return items
}
