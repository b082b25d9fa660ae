package invoice

import (
	"fmt"
	"strconv"

	"github.com/invoicer/backend/internal/domain/invoice"
	"github.com/invoicer/backend/internal/infrastructure/printing"
)

// DocumentDateLayout is how dates appear on a printed invoice
const DocumentDateLayout = "02/01/2006"

// BuildDocument lays an invoice out for printing. The invoice totals must be
// current; discount and tax rows appear only when non-zero.
func BuildDocument(inv *invoice.Invoice, issuer printing.Issuer, footer string) *printing.InvoiceDocument {
	title := "Invoice"
	if issuer.Company != "" {
		title = "Invoice from " + issuer.Company
	}

	lines := make([]printing.DocumentLine, len(inv.Items))
	for i, item := range inv.Items {
		lines[i] = printing.DocumentLine{
			Index:       i + 1,
			Description: item.Description,
			Quantity:    strconv.Itoa(item.Quantity),
			UnitPrice:   printing.FormatINR(item.UnitPrice),
			Amount:      printing.FormatINR(invoice.ItemTotal(item)),
		}
	}

	summary := []printing.SummaryLine{
		{Label: "Subtotal", Amount: printing.FormatINR(inv.Totals.Subtotal)},
	}
	if inv.Totals.DiscountAmount.IsPositive() {
		summary = append(summary, printing.SummaryLine{
			Label:  "Discount",
			Amount: printing.FormatINR(inv.Totals.DiscountAmount.Neg()),
		})
	}
	for _, tax := range inv.TaxLines() {
		summary = append(summary, printing.SummaryLine{
			Label:  fmt.Sprintf("%s (%s%%)", tax.Label, printing.FormatRate(tax.Rate)),
			Amount: printing.FormatINR(tax.Amount),
		})
	}
	summary = append(summary, printing.SummaryLine{
		Label:  "Grand Total",
		Amount: printing.FormatINR(inv.Totals.Total),
		Grand:  true,
	})

	return &printing.InvoiceDocument{
		Title:  title,
		Issuer: issuer,
		Meta: printing.DocumentMeta{
			Number:      inv.InvoiceNumber,
			Date:        inv.Date.Format(DocumentDateLayout),
			DueDate:     inv.DueDate.Format(DocumentDateLayout),
			PaymentType: inv.PaymentType.String(),
			Status:      inv.Status.String(),
		},
		BillTo: printing.Party{
			Name:    inv.Client.Name,
			Address: inv.Client.Address,
			GSTIN:   inv.Client.GSTIN,
		},
		Lines: lines,
		Payment: printing.PaymentBlock{
			AccountName:   inv.PaymentInfo.AccountName,
			AccountNumber: inv.PaymentInfo.AccountNumber,
			IFSC:          inv.PaymentInfo.IFSC,
		},
		Summary: summary,
		Remark:  inv.Remark,
		Footer:  footer,
	}
}
