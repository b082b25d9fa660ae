package printing

// InvoiceDocument is an invoice laid out for printing. Every amount and date
// is already formatted; engines only place text.
type InvoiceDocument struct {
	Title   string
	Issuer  Issuer
	Meta    DocumentMeta
	BillTo  Party
	Lines   []DocumentLine
	Payment PaymentBlock
	Summary []SummaryLine
	Remark  string
	Footer  string
}

// Issuer is the company block printed in the header
type Issuer struct {
	Company string
	Address []string
	Phone   string
	Email   string
	Website string
	GSTIN   string
}

// ContactLine joins phone, email and website with separators, skipping blanks
func (i Issuer) ContactLine() string {
	return joinNonEmpty(" | ", i.Phone, i.Email, i.Website)
}

// DocumentMeta is the invoice number and dates block
type DocumentMeta struct {
	Number      string
	Date        string
	DueDate     string
	PaymentType string
	Status      string
}

// Party is the billed client
type Party struct {
	Name    string
	Address string
	GSTIN   string
}

// DocumentLine is one row of the item table
type DocumentLine struct {
	Index       int
	Description string
	Quantity    string
	UnitPrice   string
	Amount      string
}

// PaymentBlock is the bank account the invoice asks to be paid into
type PaymentBlock struct {
	AccountName   string
	AccountNumber string
	IFSC          string
}

// IsEmpty reports whether no payment field is set
func (p PaymentBlock) IsEmpty() bool {
	return p.AccountName == "" && p.AccountNumber == "" && p.IFSC == ""
}

// SummaryLine is one row of the totals block.
// Grand marks the final total.
type SummaryLine struct {
	Label  string
	Amount string
	Grand  bool
}

func joinNonEmpty(sep string, parts ...string) string {
	out := ""
	for _, p := range parts {
		if p == "" {
			continue
		}
		if out != "" {
			out += sep
		}
		out += p
	}
	return out
}
