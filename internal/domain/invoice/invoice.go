package invoice

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/invoicer/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// DefaultDueDays is how far the due date of a new invoice lies after its issue date
const DefaultDueDays = 15

// Storage limits. Inputs outside them are rejected rather than truncated or
// rounded by the database.
const (
	MaxInvoiceNumberLength = 50
	RatePlaces             = 2
)

var (
	// MaxAmount bounds unit prices, discount values and the subtotal
	MaxAmount = decimal.New(1, 12)
	// MaxTaxRate is the highest accepted tax percentage
	MaxTaxRate = decimal.NewFromInt(100)
)

// hasMorePlaces reports whether d carries digits past the given scale
func hasMorePlaces(d decimal.Decimal, places int32) bool {
	return !d.Equal(d.Truncate(places))
}

// Client is the billed party of an invoice.
// Each invoice owns its own client row.
type Client struct {
	ID      uuid.UUID
	Name    string
	Address string
	GSTIN   string
}

// LineItem is a billed line of an invoice
type LineItem struct {
	ID          uuid.UUID
	Description string
	Quantity    int
	UnitPrice   decimal.Decimal
}

// PaymentInfo is the bank account a user gets paid into.
// It is copied onto each invoice when the invoice is saved.
type PaymentInfo struct {
	AccountName   string
	AccountNumber string
	IFSC          string
}

// IsZero reports whether no field is set
func (p PaymentInfo) IsZero() bool {
	return p.AccountName == "" && p.AccountNumber == "" && p.IFSC == ""
}

// Validate checks that all payment fields are present
func (p PaymentInfo) Validate() error {
	if strings.TrimSpace(p.AccountName) == "" {
		return shared.NewDomainError("INVALID_PAYMENT_INFO", "Account name cannot be empty")
	}
	if strings.TrimSpace(p.AccountNumber) == "" {
		return shared.NewDomainError("INVALID_PAYMENT_INFO", "Account number cannot be empty")
	}
	if strings.TrimSpace(p.IFSC) == "" {
		return shared.NewDomainError("INVALID_PAYMENT_INFO", "IFSC cannot be empty")
	}
	return nil
}

// Invoice is the aggregate root of the invoicing context
type Invoice struct {
	shared.BaseEntity
	UserID        uuid.UUID
	InvoiceNumber string
	Date          time.Time
	DueDate       time.Time
	Client        Client
	Items         []LineItem
	Status        Status
	PaymentType   PaymentType
	Discount      Discount
	Tax           Tax
	Remark        string
	Totals        Totals
	PaymentInfo   PaymentInfo
}

// NewDraft returns an invoice pre-filled the way a blank invoice form starts:
// issued today, due in 15 days, unpaid, full payment, no discount, IGST at 18%
// and one empty line.
func NewDraft(userID uuid.UUID, now time.Time) *Invoice {
	today := DateOnly(now)
	inv := &Invoice{
		BaseEntity:  shared.NewBaseEntity(),
		UserID:      userID,
		Date:        today,
		DueDate:     today.AddDate(0, 0, DefaultDueDays),
		Items:       []LineItem{{ID: uuid.New(), Quantity: 1, UnitPrice: decimal.Zero}},
		Status:      StatusUnpaid,
		PaymentType: PaymentTypeFull,
		Discount:    Discount{Type: DiscountPercentage, Value: decimal.Zero},
		Tax:         Tax{Mode: TaxModeIGST, Rate: decimal.NewFromInt(18)},
	}
	inv.Recalculate()
	return inv
}

// DateOnly truncates a timestamp to midnight UTC of its calendar day
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Recalculate refreshes the computed totals from items, discount and tax
func (inv *Invoice) Recalculate() {
	inv.Totals = Calculate(inv.Items, inv.Discount, inv.Tax)
}

// TaxLines returns the displayed tax components of the current totals
func (inv *Invoice) TaxLines() []TaxLine {
	return TaxLines(inv.Tax.Mode, inv.Tax.Rate, inv.Totals.TaxAmount)
}

// Validate checks the invoice the way the form does before saving or downloading.
// The first failing rule is returned.
func (inv *Invoice) Validate() error {
	if strings.TrimSpace(inv.InvoiceNumber) == "" {
		return shared.NewDomainError("INVALID_INVOICE_NUMBER", "Invoice number cannot be empty")
	}
	if len(inv.InvoiceNumber) > MaxInvoiceNumberLength {
		return shared.NewDomainError("INVALID_INVOICE_NUMBER", "Invoice number cannot be longer than 50 characters")
	}
	if strings.TrimSpace(inv.Client.Name) == "" {
		return shared.NewDomainError("INVALID_CLIENT", "Client name cannot be empty")
	}
	if inv.Date.IsZero() {
		return shared.NewDomainError("INVALID_DATE", "Invoice date cannot be empty")
	}
	if inv.DueDate.IsZero() {
		return shared.NewDomainError("INVALID_DUE_DATE", "Due date cannot be empty")
	}
	if DateOnly(inv.DueDate).Before(DateOnly(inv.Date)) {
		return shared.NewDomainError("INVALID_DUE_DATE", "Due date cannot be before the invoice date")
	}
	if len(inv.Items) == 0 {
		return shared.NewDomainError("INVALID_ITEMS", "Invoice must have at least one item")
	}
	for _, item := range inv.Items {
		if strings.TrimSpace(item.Description) == "" {
			return shared.NewDomainError("INVALID_ITEMS", "Item description cannot be empty")
		}
		if item.Quantity <= 0 {
			return shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
		}
		if item.UnitPrice.IsNegative() {
			return shared.NewDomainError("INVALID_PRICE", "Unit price cannot be negative")
		}
		if hasMorePlaces(item.UnitPrice, MoneyPlaces) {
			return shared.NewDomainError("INVALID_PRICE", "Unit price can have at most 2 decimal places")
		}
		if item.UnitPrice.GreaterThanOrEqual(MaxAmount) {
			return shared.NewDomainError("INVALID_PRICE", "Unit price is too large")
		}
	}
	if Subtotal(inv.Items).GreaterThanOrEqual(MaxAmount) {
		return shared.NewDomainError("INVALID_ITEMS", "Invoice subtotal is too large")
	}
	if !inv.Status.IsValid() {
		return shared.NewDomainError("INVALID_STATUS", "Status must be Paid or Unpaid")
	}
	if !inv.PaymentType.IsValid() {
		return shared.NewDomainError("INVALID_PAYMENT_TYPE", "Payment type must be Advance or Full Payment")
	}
	if !inv.Discount.Type.IsValid() {
		return shared.NewDomainError("INVALID_DISCOUNT", "Discount type must be percentage or fixed")
	}
	if inv.Discount.Value.IsNegative() {
		return shared.NewDomainError("INVALID_DISCOUNT", "Discount value cannot be negative")
	}
	if hasMorePlaces(inv.Discount.Value, MoneyPlaces) {
		return shared.NewDomainError("INVALID_DISCOUNT", "Discount value can have at most 2 decimal places")
	}
	if inv.Discount.Value.GreaterThanOrEqual(MaxAmount) {
		return shared.NewDomainError("INVALID_DISCOUNT", "Discount value is too large")
	}
	if !inv.Tax.Mode.IsValid() {
		return shared.NewDomainError("INVALID_TAX", "Tax mode must be IGST, CGST-SGST or No GST")
	}
	if inv.Tax.Rate.IsNegative() {
		return shared.NewDomainError("INVALID_TAX", "Tax rate cannot be negative")
	}
	if inv.Tax.Rate.GreaterThan(MaxTaxRate) {
		return shared.NewDomainError("INVALID_TAX", "Tax rate cannot exceed 100")
	}
	if hasMorePlaces(inv.Tax.Rate, RatePlaces) {
		return shared.NewDomainError("INVALID_TAX", "Tax rate can have at most 2 decimal places")
	}
	return nil
}

// SnapshotPaymentInfo copies the current payment configuration onto the invoice
func (inv *Invoice) SnapshotPaymentInfo(info PaymentInfo) {
	inv.PaymentInfo = info
}

// ToggleStatus flips Paid and Unpaid
func (inv *Invoice) ToggleStatus() {
	inv.Status = inv.Status.Toggled()
	inv.Touch()
}

// SetStatus sets an explicit status
func (inv *Invoice) SetStatus(status Status) error {
	if !status.IsValid() {
		return shared.NewDomainError("INVALID_STATUS", "Status must be Paid or Unpaid")
	}
	inv.Status = status
	inv.Touch()
	return nil
}

// SetRemark replaces the free-text remark
func (inv *Invoice) SetRemark(remark string) {
	inv.Remark = remark
	inv.Touch()
}

// Duplicate copies every field into a new invoice with fresh ids for the
// invoice, its client and its items, and the given invoice number.
func (inv *Invoice) Duplicate(number string) *Invoice {
	dup := *inv
	dup.BaseEntity = shared.NewBaseEntity()
	dup.InvoiceNumber = number
	dup.Client.ID = uuid.New()
	dup.Items = make([]LineItem, len(inv.Items))
	for i, item := range inv.Items {
		item.ID = uuid.New()
		dup.Items[i] = item
	}
	dup.Recalculate()
	return &dup
}

// ItemIDs returns the ids of all line items
func (inv *Invoice) ItemIDs() []uuid.UUID {
	ids := make([]uuid.UUID, len(inv.Items))
	for i, item := range inv.Items {
		ids[i] = item.ID
	}
	return ids
}
