// Package invoice holds the invoice aggregate, its financial calculation
// rules, invoice-number sequencing and the search criteria used to list invoices.
package invoice

// Status is the payment status of an invoice
type Status string

const (
	StatusPaid   Status = "Paid"
	StatusUnpaid Status = "Unpaid"
)

// IsValid checks if the status is a valid Status
func (s Status) IsValid() bool {
	return s == StatusPaid || s == StatusUnpaid
}

// String returns the string representation of Status
func (s Status) String() string {
	return string(s)
}

// Toggled returns the opposite status
func (s Status) Toggled() Status {
	if s == StatusPaid {
		return StatusUnpaid
	}
	return StatusPaid
}

// PaymentType tells whether the invoice bills an advance or the full amount
type PaymentType string

const (
	PaymentTypeAdvance PaymentType = "Advance"
	PaymentTypeFull    PaymentType = "Full Payment"
)

// IsValid checks if the payment type is valid
func (p PaymentType) IsValid() bool {
	return p == PaymentTypeAdvance || p == PaymentTypeFull
}

// String returns the string representation of PaymentType
func (p PaymentType) String() string {
	return string(p)
}

// DiscountType selects how the discount value is interpreted
type DiscountType string

const (
	DiscountPercentage DiscountType = "percentage"
	DiscountFixed      DiscountType = "fixed"
)

// IsValid checks if the discount type is valid
func (d DiscountType) IsValid() bool {
	return d == DiscountPercentage || d == DiscountFixed
}

// String returns the string representation of DiscountType
func (d DiscountType) String() string {
	return string(d)
}

// TaxMode selects the GST scheme applied to the taxable base
type TaxMode string

const (
	TaxModeIGST     TaxMode = "IGST"
	TaxModeCGSTSGST TaxMode = "CGST-SGST"
	TaxModeNone     TaxMode = "No GST"
)

// IsValid checks if the tax mode is valid
func (m TaxMode) IsValid() bool {
	switch m {
	case TaxModeIGST, TaxModeCGSTSGST, TaxModeNone:
		return true
	}
	return false
}

// String returns the string representation of TaxMode
func (m TaxMode) String() string {
	return string(m)
}

// FilterAll is the sentinel filter value meaning "no restriction"
const FilterAll = "All"
