// Package pricing aggregates line items into money totals.
package pricing

import "github.com/shopspring/decimal"

// Currency is the only currency products are priced in.
const Currency = "ETB"

// Line is one priced line of a cart or order.
type Line struct {
	UnitPrice decimal.Decimal
	UnitTax   decimal.Decimal
	// Discount is a per-unit amount off UnitPrice, absent when the line is not discounted.
	Discount decimal.NullDecimal
	Quantity int
}

// Summary is the aggregate of a set of lines.
type Summary struct {
	Currency        string          `json:"currency"`
	DeliveryAddress string          `json:"delivery_address,omitempty"`
	SubTotal        decimal.Decimal `json:"sub_total"`
	TotalDiscount   decimal.Decimal `json:"total_discount"`
	VAT             decimal.Decimal `json:"vat"`
	Total           decimal.Decimal `json:"total"`
	Count           int             `json:"count"`
}

// Summarize computes totals for lines. The sub total is taken at full unit
// price; the total is the sub total plus VAT less the discount. Count is the
// number of lines, not the number of units.
func Summarize(lines []Line) Summary {
	subTotal := decimal.Zero
	totalDiscount := decimal.Zero
	vat := decimal.Zero

	for _, l := range lines {
		qty := decimal.NewFromInt(int64(l.Quantity))
		selling := l.UnitPrice
		if l.Discount.Valid {
			selling = l.UnitPrice.Sub(l.Discount.Decimal)
		}
		subTotal = subTotal.Add(l.UnitPrice.Mul(qty))
		totalDiscount = totalDiscount.Add(l.UnitPrice.Sub(selling).Mul(qty))
		vat = vat.Add(l.UnitTax.Mul(qty))
	}

	return Summary{
		Currency:      Currency,
		SubTotal:      subTotal,
		TotalDiscount: totalDiscount,
		VAT:           vat,
		Total:         subTotal.Add(vat).Sub(totalDiscount),
		Count:         len(lines),
	}
}
