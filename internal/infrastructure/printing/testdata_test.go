package printing

func sampleDocument() *InvoiceDocument {
	return &InvoiceDocument{
		Title: "Invoice from Acme Studio",
		Issuer: Issuer{
			Company: "Acme Studio",
			Address: []string{"12 MG Road,", "Kochi, Kerala 682016"},
			Phone:   "+91 90000 00000",
			Email:   "billing@acme.test",
			GSTIN:   "32ABCDE1234F1Z5",
		},
		Meta: DocumentMeta{
			Number:      "INV2026100001",
			Date:        "16/10/2026",
			DueDate:     "31/10/2026",
			PaymentType: "Full Payment",
			Status:      "Unpaid",
		},
		BillTo: Party{
			Name:    "Zenith Traders",
			Address: "4 Beach Road\nCalicut",
			GSTIN:   "32ZZZZZ9999Z1Z9",
		},
		Lines: []DocumentLine{
			{Index: 1, Description: "Logo design", Quantity: "1", UnitPrice: "₹10,000.00", Amount: "₹10,000.00"},
			{Index: 2, Description: "Brochure <print>", Quantity: "2", UnitPrice: "₹2,500.00", Amount: "₹5,000.00"},
		},
		Payment: PaymentBlock{AccountName: "Acme Studio", AccountNumber: "1234567890", IFSC: "HDFC0001234"},
		Summary: []SummaryLine{
			{Label: "Subtotal", Amount: "₹15,000.00"},
			{Label: "CGST (9%)", Amount: "₹1,350.00"},
			{Label: "SGST (9%)", Amount: "₹1,350.00"},
			{Label: "Grand Total", Amount: "₹17,700.00", Grand: true},
		},
		Footer: "Thank you for your business!",
	}
}
