package invoice

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/invoicer/backend/internal/domain/invoice"
	"github.com/invoicer/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// DateLayout is the wire format of invoice dates
const DateLayout = "2006-01-02"

// =============================================================================
// Request DTOs
// =============================================================================

// ClientInput is the billed party of an invoice request
type ClientInput struct {
	Name    string `json:"name" binding:"max=200"`
	Address string `json:"address" binding:"max=1000"`
	GSTIN   string `json:"gstin" binding:"omitempty,gstin"`
}

// LineItemInput is one line of an invoice request.
// ID is kept on update when it belongs to the edited invoice.
type LineItemInput struct {
	ID          *uuid.UUID      `json:"id"`
	Description string          `json:"description" binding:"max=500"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

// InvoiceRequest creates or replaces an invoice.
// Blank enum fields take the values a new invoice starts with.
type InvoiceRequest struct {
	InvoiceNumber string          `json:"invoice_number" binding:"omitempty,max=50,invoice_number"`
	Date          string          `json:"date" binding:"omitempty,datetime=2006-01-02"`
	DueDate       string          `json:"due_date" binding:"omitempty,datetime=2006-01-02"`
	Client        ClientInput     `json:"client"`
	Items         []LineItemInput `json:"items" binding:"dive"`
	Status        string          `json:"status" binding:"omitempty,oneof=Paid Unpaid"`
	PaymentType   string          `json:"payment_type" binding:"omitempty,oneof=Advance 'Full Payment'"`
	DiscountType  string          `json:"discount_type" binding:"omitempty,oneof=percentage fixed"`
	DiscountValue decimal.Decimal `json:"discount_value"`
	TaxMode       string          `json:"tax_mode" binding:"omitempty,oneof=IGST CGST-SGST 'No GST'"`
	TaxRate       decimal.Decimal `json:"tax_rate"`
	Remark        string          `json:"remark" binding:"max=2000"`
}

// StatusRequest sets an explicit status
type StatusRequest struct {
	Status string `json:"status" binding:"required,oneof=Paid Unpaid"`
}

// RemarkRequest replaces the remark
type RemarkRequest struct {
	Remark string `json:"remark" binding:"max=2000"`
}

// SearchRequest lists invoices.
// Empty filters and the value "All" do not restrict the result.
type SearchRequest struct {
	Query       string `form:"q" binding:"max=200"`
	Page        int    `form:"page" binding:"omitempty,min=1"`
	PageSize    int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	StartDate   string `form:"start_date" binding:"omitempty,datetime=2006-01-02"`
	EndDate     string `form:"end_date" binding:"omitempty,datetime=2006-01-02"`
	Status      string `form:"status"`
	PaymentType string `form:"payment_type"`
}

// PaymentInfoRequest saves the user's payment info
type PaymentInfoRequest struct {
	AccountName   string `json:"account_name" binding:"required,max=200"`
	AccountNumber string `json:"account_number" binding:"required,max=50"`
	IFSC          string `json:"ifsc" binding:"required,max=20"`
}

// toDomain maps the request onto an invoice. Dates must parse; every other
// rule is left to invoice.Validate so messages stay in one place.
func (r InvoiceRequest) toDomain(userID uuid.UUID) (*invoice.Invoice, error) {
	date, err := parseRequestDate(r.Date, "INVALID_DATE", "Invoice date")
	if err != nil {
		return nil, err
	}
	dueDate, err := parseRequestDate(r.DueDate, "INVALID_DUE_DATE", "Due date")
	if err != nil {
		return nil, err
	}

	inv := &invoice.Invoice{
		BaseEntity:    shared.NewBaseEntity(),
		UserID:        userID,
		InvoiceNumber: strings.TrimSpace(r.InvoiceNumber),
		Date:          date,
		DueDate:       dueDate,
		Client: invoice.Client{
			ID:      uuid.New(),
			Name:    strings.TrimSpace(r.Client.Name),
			Address: strings.TrimSpace(r.Client.Address),
			GSTIN:   strings.ToUpper(strings.TrimSpace(r.Client.GSTIN)),
		},
		Status:      invoice.Status(orDefault(r.Status, string(invoice.StatusUnpaid))),
		PaymentType: invoice.PaymentType(orDefault(r.PaymentType, string(invoice.PaymentTypeFull))),
		Discount: invoice.Discount{
			Type:  invoice.DiscountType(orDefault(r.DiscountType, string(invoice.DiscountPercentage))),
			Value: r.DiscountValue,
		},
		Tax: invoice.Tax{
			Mode: invoice.TaxMode(orDefault(r.TaxMode, string(invoice.TaxModeIGST))),
			Rate: r.TaxRate,
		},
		Remark: r.Remark,
	}

	inv.Items = make([]invoice.LineItem, len(r.Items))
	for i, item := range r.Items {
		id := uuid.New()
		if item.ID != nil && *item.ID != uuid.Nil {
			id = *item.ID
		}
		inv.Items[i] = invoice.LineItem{
			ID:          id,
			Description: strings.TrimSpace(item.Description),
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
		}
	}
	return inv, nil
}

func parseRequestDate(value, code, field string) (time.Time, error) {
	if strings.TrimSpace(value) == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(DateLayout, strings.TrimSpace(value))
	if err != nil {
		return time.Time{}, shared.NewDomainError(code, field+" must be a date in YYYY-MM-DD format")
	}
	return t, nil
}

func orDefault(value, fallback string) string {
	if v := strings.TrimSpace(value); v != "" {
		return v
	}
	return fallback
}

// =============================================================================
// Response DTOs
// =============================================================================

// ClientResponse is the billed party of an invoice
type ClientResponse struct {
	ID      uuid.UUID `json:"id"`
	Name    string    `json:"name"`
	Address string    `json:"address"`
	GSTIN   string    `json:"gstin,omitempty"`
}

// LineItemResponse is one line of an invoice with its computed total
type LineItemResponse struct {
	ID          uuid.UUID       `json:"id"`
	Description string          `json:"description"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Total       decimal.Decimal `json:"total"`
}

// TaxLineResponse is one displayed tax component
type TaxLineResponse struct {
	Label  string          `json:"label"`
	Rate   decimal.Decimal `json:"rate"`
	Amount decimal.Decimal `json:"amount"`
}

// PaymentInfoResponse is a bank account, either saved or the configured default
type PaymentInfoResponse struct {
	AccountName   string `json:"account_name"`
	AccountNumber string `json:"account_number"`
	IFSC          string `json:"ifsc"`
	IsDefault     bool   `json:"is_default,omitempty"`
}

// InvoiceResponse is the API view of an invoice
type InvoiceResponse struct {
	ID             uuid.UUID           `json:"id"`
	UserID         uuid.UUID           `json:"user_id"`
	InvoiceNumber  string              `json:"invoice_number"`
	Date           string              `json:"date"`
	DueDate        string              `json:"due_date"`
	Client         ClientResponse      `json:"client"`
	Items          []LineItemResponse  `json:"items"`
	Status         string              `json:"status"`
	PaymentType    string              `json:"payment_type"`
	DiscountType   string              `json:"discount_type"`
	DiscountValue  decimal.Decimal     `json:"discount_value"`
	TaxMode        string              `json:"tax_mode"`
	TaxRate        decimal.Decimal     `json:"tax_rate"`
	Subtotal       decimal.Decimal     `json:"subtotal"`
	DiscountAmount decimal.Decimal     `json:"discount_amount"`
	TaxAmount      decimal.Decimal     `json:"tax_amount"`
	Total          decimal.Decimal     `json:"total"`
	TaxLines       []TaxLineResponse   `json:"tax_lines"`
	Remark         string              `json:"remark"`
	PaymentInfo    PaymentInfoResponse `json:"payment_info"`
	CreatedAt      time.Time           `json:"created_at"`
	UpdatedAt      time.Time           `json:"updated_at"`
}

// InvoiceResult is a saved invoice plus how its number was obtained
type InvoiceResult struct {
	Invoice InvoiceResponse `json:"invoice"`
	Outcome shared.Outcome  `json:"outcome"`
	Reason  string          `json:"reason,omitempty"`
}

// PreviewResponse is the totals block of an unsaved invoice
type PreviewResponse struct {
	Subtotal       decimal.Decimal    `json:"subtotal"`
	DiscountAmount decimal.Decimal    `json:"discount_amount"`
	TaxAmount      decimal.Decimal    `json:"tax_amount"`
	Total          decimal.Decimal    `json:"total"`
	TaxLines       []TaxLineResponse  `json:"tax_lines"`
	Items          []LineItemResponse `json:"items"`
}

// NumberResponse is a generated invoice number
type NumberResponse struct {
	Number  string         `json:"number"`
	Outcome shared.Outcome `json:"outcome"`
	Reason  string         `json:"reason,omitempty"`
}

// NumberAvailabilityResponse tells whether a number is free for the user
type NumberAvailabilityResponse struct {
	Number    string `json:"number"`
	Available bool   `json:"available"`
}

// SearchResponse is one page of invoices
type SearchResponse struct {
	Data        []InvoiceResponse `json:"data"`
	Count       int64             `json:"count"`
	TotalPages  int               `json:"total_pages"`
	CurrentPage int               `json:"current_page"`
	PageSize    int               `json:"page_size"`
	Outcome     shared.Outcome    `json:"outcome"`
	Reason      string            `json:"reason,omitempty"`
}

// PDFFile is a rendered invoice ready for download
type PDFFile struct {
	Filename    string
	ContentType string
	Content     []byte
	Engine      string
	PageCount   int
	FellBack    bool
}

// ArchiveResponse points at an archived invoice PDF
type ArchiveResponse struct {
	Key       string    `json:"key"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
	Engine    string    `json:"engine"`
}

// ToInvoiceResponse maps an invoice to its API view
func ToInvoiceResponse(inv *invoice.Invoice) InvoiceResponse {
	items := make([]LineItemResponse, len(inv.Items))
	for i, item := range inv.Items {
		items[i] = toLineItemResponse(item)
	}
	return InvoiceResponse{
		ID:            inv.ID,
		UserID:        inv.UserID,
		InvoiceNumber: inv.InvoiceNumber,
		Date:          formatDate(inv.Date),
		DueDate:       formatDate(inv.DueDate),
		Client: ClientResponse{
			ID:      inv.Client.ID,
			Name:    inv.Client.Name,
			Address: inv.Client.Address,
			GSTIN:   inv.Client.GSTIN,
		},
		Items:          items,
		Status:         inv.Status.String(),
		PaymentType:    inv.PaymentType.String(),
		DiscountType:   inv.Discount.Type.String(),
		DiscountValue:  inv.Discount.Value,
		TaxMode:        inv.Tax.Mode.String(),
		TaxRate:        inv.Tax.Rate,
		Subtotal:       inv.Totals.Subtotal,
		DiscountAmount: inv.Totals.DiscountAmount,
		TaxAmount:      inv.Totals.TaxAmount,
		Total:          inv.Totals.Total,
		TaxLines:       toTaxLineResponses(inv.TaxLines()),
		Remark:         inv.Remark,
		PaymentInfo:    toPaymentInfoResponse(inv.PaymentInfo, false),
		CreatedAt:      inv.CreatedAt,
		UpdatedAt:      inv.UpdatedAt,
	}
}

func toLineItemResponse(item invoice.LineItem) LineItemResponse {
	return LineItemResponse{
		ID:          item.ID,
		Description: item.Description,
		Quantity:    item.Quantity,
		UnitPrice:   item.UnitPrice,
		Total:       invoice.ItemTotal(item),
	}
}

func toTaxLineResponses(lines []invoice.TaxLine) []TaxLineResponse {
	out := make([]TaxLineResponse, len(lines))
	for i, l := range lines {
		out[i] = TaxLineResponse{Label: l.Label, Rate: l.Rate, Amount: l.Amount}
	}
	return out
}

func toPaymentInfoResponse(info invoice.PaymentInfo, isDefault bool) PaymentInfoResponse {
	return PaymentInfoResponse{
		AccountName:   info.AccountName,
		AccountNumber: info.AccountNumber,
		IFSC:          info.IFSC,
		IsDefault:     isDefault,
	}
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(DateLayout)
}
