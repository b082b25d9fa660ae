package invoice

import (
	"testing"

	"github.com/invoicer/backend/internal/domain/invoice"
	"github.com/invoicer/backend/internal/infrastructure/printing"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildDocument(t *testing.T) {
	issuer := printing.Issuer{Company: "Asha Traders", Address: []string{"4 Park Street", "Kolkata"}}

	t.Run("intra-state invoice with discount", func(t *testing.T) {
		inv := storedInvoice()

		doc := BuildDocument(inv, issuer, "Thank you for your business")

		assert.Equal(t, "Invoice from Asha Traders", doc.Title)
		assert.Equal(t, "01/03/2026", doc.Meta.Date)
		assert.Equal(t, "16/03/2026", doc.Meta.DueDate)
		assert.Equal(t, "Unpaid", doc.Meta.Status)
		assert.Equal(t, "Full Payment", doc.Meta.PaymentType)
		assert.Equal(t, "Initech", doc.BillTo.Name)
		assert.Equal(t, "Thank you for your business", doc.Footer)

		require.Len(t, doc.Lines, 1)
		assert.Equal(t, 1, doc.Lines[0].Index)
		assert.Equal(t, "3", doc.Lines[0].Quantity)
		assert.Equal(t, "₹2,000.00", doc.Lines[0].UnitPrice)
		assert.Equal(t, "₹6,000.00", doc.Lines[0].Amount)

		labels := make([]string, len(doc.Summary))
		for i, s := range doc.Summary {
			labels[i] = s.Label
		}
		assert.Equal(t, []string{"Subtotal", "Discount", "CGST (9%)", "SGST (9%)", "Grand Total"}, labels)
		assert.Equal(t, "-₹500.00", doc.Summary[1].Amount)
		assert.Equal(t, "₹495.00", doc.Summary[2].Amount)
		assert.Equal(t, "₹6,490.00", doc.Summary[4].Amount)
		assert.True(t, doc.Summary[4].Grand)
		assert.Equal(t, savedPayment.AccountNumber, doc.Payment.AccountNumber)
	})

	t.Run("no discount and no tax rows when zero", func(t *testing.T) {
		inv := storedInvoice()
		inv.Discount = invoice.Discount{Type: invoice.DiscountPercentage, Value: decimal.Zero}
		inv.Tax = invoice.Tax{Mode: invoice.TaxModeNone, Rate: decimal.NewFromInt(18)}
		inv.Recalculate()

		doc := BuildDocument(inv, printing.Issuer{}, "")

		assert.Equal(t, "Invoice", doc.Title)
		require.Len(t, doc.Summary, 2)
		assert.Equal(t, "Subtotal", doc.Summary[0].Label)
		assert.Equal(t, "Grand Total", doc.Summary[1].Label)
	})

	t.Run("IGST shows the full rate", func(t *testing.T) {
		inv := storedInvoice()
		inv.Tax = invoice.Tax{Mode: invoice.TaxModeIGST, Rate: decimal.RequireFromString("12.5")}
		inv.Recalculate()

		doc := BuildDocument(inv, issuer, "")

		assert.Equal(t, "IGST (12.5%)", doc.Summary[2].Label)
	})
}

func TestPDFFilename(t *testing.T) {
	assert.Equal(t, "Invoice-INV2026030001.pdf", PDFFilename("INV2026030001"))
	assert.Equal(t, "Invoice-A-B-C.pdf", PDFFilename("A/B C"))
}
