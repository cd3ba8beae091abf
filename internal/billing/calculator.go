package billing

import (
	"math"
	"strconv"

	"casaops/internal/models"
)

// Editable line item fields accepted by UpdateLineItem.
const (
	FieldDescription = "description"
	FieldQuantity    = "quantity"
	FieldUnitPrice   = "unit_price"
	FieldTaxRate     = "tax_rate"
	FieldItemType    = "item_type"
)

// Totals holds the derived invoice-level amounts for a line item list.
type Totals struct {
	Subtotal  float64 `json:"subtotal"`
	TaxAmount float64 `json:"tax_amount"`
	Total     float64 `json:"total"`
}

// AddLineItem appends a fresh line item with the next line number. Line
// numbers grow monotonically from 1 and are never reused, so a removed row
// leaves a gap rather than renumbering the rest.
func AddLineItem(items []models.InvoiceLineItem) []models.InvoiceLineItem {
	maxLine := 0
	for _, it := range items {
		if it.LineNumber > maxLine {
			maxLine = it.LineNumber
		}
	}
	return append(items, models.InvoiceLineItem{
		LineNumber: maxLine + 1,
		Quantity:   1,
		ItemType:   models.ItemTypeOther,
	})
}

// RemoveLineItem removes the item at index. The index must be in range; the
// list is session-local and the caller owns bounds checking.
func RemoveLineItem(items []models.InvoiceLineItem, index int) []models.InvoiceLineItem {
	return append(items[:index], items[index+1:]...)
}

// UpdateLineItem sets a single field from raw user input and returns the
// updated list. Numeric input that fails to parse is coerced to zero rather
// than rejected. Editing quantity, unit price or tax rate recomputes the
// row's tax amount; a row seeded with a direct tax amount (the synthetic tax
// line from a booking) keeps it until one of those three fields is touched.
func UpdateLineItem(items []models.InvoiceLineItem, index int, field, value string) []models.InvoiceLineItem {
	it := &items[index]

	switch field {
	case FieldDescription:
		it.Description = value
	case FieldItemType:
		it.ItemType = value
	case FieldQuantity:
		it.Quantity = parseAmount(value)
	case FieldUnitPrice:
		it.UnitPrice = parseAmount(value)
	case FieldTaxRate:
		it.TaxRate = parseAmount(value)
	default:
		return items
	}

	if field == FieldQuantity || field == FieldUnitPrice || field == FieldTaxRate {
		it.TaxAmount = it.Quantity * it.UnitPrice * (it.TaxRate / 100)
	}
	return items
}

// CalculateTotals sums the list into invoice-level amounts. Pure and
// idempotent; safe to call on every edit and again before save.
func CalculateTotals(items []models.InvoiceLineItem) Totals {
	var t Totals
	for _, it := range items {
		t.Subtotal += it.Quantity * it.UnitPrice
		t.TaxAmount += it.TaxAmount
	}
	t.Total = t.Subtotal + t.TaxAmount
	return t
}

// Round2 rounds to two decimal places. Applied only when totals are
// persisted or rendered; intermediate arithmetic stays unrounded.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func parseAmount(raw string) float64 {
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0
	}
	return v
}
