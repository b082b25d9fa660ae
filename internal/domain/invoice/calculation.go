package invoice

import (
	"github.com/shopspring/decimal"
)

// MoneyPlaces is the number of decimal places kept for derived amounts
const MoneyPlaces = 2

var hundred = decimal.NewFromInt(100)

// Discount is the discount configuration of an invoice
type Discount struct {
	Type  DiscountType
	Value decimal.Decimal
}

// Tax is the tax configuration of an invoice
type Tax struct {
	Mode TaxMode
	Rate decimal.Decimal
}

// Totals are the four computed monetary fields of an invoice
type Totals struct {
	Subtotal       decimal.Decimal
	DiscountAmount decimal.Decimal
	TaxAmount      decimal.Decimal
	Total          decimal.Decimal
}

// TaxableBase returns subtotal minus discount, which may be negative
func (t Totals) TaxableBase() decimal.Decimal {
	return t.Subtotal.Sub(t.DiscountAmount)
}

// ItemTotal returns quantity × unit price
func ItemTotal(item LineItem) decimal.Decimal {
	return decimal.NewFromInt(int64(item.Quantity)).Mul(item.UnitPrice)
}

// Subtotal sums the item totals
func Subtotal(items []LineItem) decimal.Decimal {
	sum := decimal.Zero
	for _, item := range items {
		sum = sum.Add(ItemTotal(item))
	}
	return sum
}

// DiscountAmount computes the discount for a subtotal.
// A percentage discount on a non-positive subtotal is zero; a fixed discount
// is applied as-is even when it exceeds the subtotal. Validate keeps fixed
// values to whole paise.
func DiscountAmount(subtotal decimal.Decimal, discountType DiscountType, value decimal.Decimal) decimal.Decimal {
	if discountType == DiscountPercentage {
		if !subtotal.IsPositive() {
			return decimal.Zero
		}
		return subtotal.Mul(value).Div(hundred).Round(MoneyPlaces)
	}
	return value
}

// TaxAmount computes tax on max(0, subtotal - discount)
func TaxAmount(subtotal, discountAmount decimal.Decimal, mode TaxMode, rate decimal.Decimal) decimal.Decimal {
	if mode == TaxModeNone {
		return decimal.Zero
	}
	base := subtotal.Sub(discountAmount)
	if !base.IsPositive() {
		return decimal.Zero
	}
	return base.Mul(rate).Div(hundred).Round(MoneyPlaces)
}

// Total returns subtotal - discount + tax
func Total(subtotal, discountAmount, taxAmount decimal.Decimal) decimal.Decimal {
	return subtotal.Sub(discountAmount).Add(taxAmount)
}

// Calculate derives all totals from items, discount and tax configuration
func Calculate(items []LineItem, discount Discount, tax Tax) Totals {
	subtotal := Subtotal(items)
	discountAmount := DiscountAmount(subtotal, discount.Type, discount.Value)
	taxAmount := TaxAmount(subtotal, discountAmount, tax.Mode, tax.Rate)
	return Totals{
		Subtotal:       subtotal,
		DiscountAmount: discountAmount,
		TaxAmount:      taxAmount,
		Total:          Total(subtotal, discountAmount, taxAmount),
	}
}

// TaxLine is one displayed tax component
type TaxLine struct {
	Label  string
	Rate   decimal.Decimal
	Amount decimal.Decimal
}

// TaxLines splits a tax amount into its displayed components.
// CGST-SGST yields two half-rate lines whose amounts sum to taxAmount exactly:
// CGST takes the half floored to the paisa and SGST takes the rest.
func TaxLines(mode TaxMode, rate, taxAmount decimal.Decimal) []TaxLine {
	if mode == TaxModeNone || !taxAmount.IsPositive() {
		return nil
	}
	if mode == TaxModeIGST {
		return []TaxLine{{Label: "IGST", Rate: rate, Amount: taxAmount}}
	}

	two := decimal.NewFromInt(2)
	halfRate := rate.Div(two)
	cgst := taxAmount.Div(two).RoundFloor(MoneyPlaces)
	return []TaxLine{
		{Label: "CGST", Rate: halfRate, Amount: cgst},
		{Label: "SGST", Rate: halfRate, Amount: taxAmount.Sub(cgst)},
	}
}
