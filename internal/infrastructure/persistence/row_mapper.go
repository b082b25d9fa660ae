package persistence

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/invoicer/backend/internal/domain/invoice"
	"github.com/invoicer/backend/internal/domain/shared"
	"github.com/invoicer/backend/internal/infrastructure/persistence/models"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// Every row read from the store passes through this file before it reaches
// the domain. Related rows may be missing, nested as an object or as a
// one-element list, and optional columns may be null.

// toInvoiceModel flattens an invoice into its three row kinds
func toInvoiceModel(inv *invoice.Invoice) (*models.InvoiceModel, *models.ClientModel, []models.InvoiceItemModel) {
	client := &models.ClientModel{
		OwnedModel: models.OwnedModel{
			BaseModel: models.BaseModel{ID: inv.Client.ID, CreatedAt: inv.CreatedAt, UpdatedAt: inv.UpdatedAt},
			UserID:    inv.UserID,
		},
		Name:    strings.TrimSpace(inv.Client.Name),
		Address: inv.Client.Address,
		GSTIN:   strings.ToUpper(strings.TrimSpace(inv.Client.GSTIN)),
	}

	m := &models.InvoiceModel{
		UserID:         inv.UserID,
		InvoiceNumber:  strings.TrimSpace(inv.InvoiceNumber),
		ClientID:       inv.Client.ID,
		Date:           invoice.DateOnly(inv.Date),
		DueDate:        invoice.DateOnly(inv.DueDate),
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
		Remark:         inv.Remark,
		AccountName:    inv.PaymentInfo.AccountName,
		AccountNumber:  inv.PaymentInfo.AccountNumber,
		IFSC:           inv.PaymentInfo.IFSC,
	}
	m.FromDomainBaseEntity(inv.BaseEntity)

	items := make([]models.InvoiceItemModel, len(inv.Items))
	for i, item := range inv.Items {
		items[i] = models.InvoiceItemModel{
			OwnedModel: models.OwnedModel{
				BaseModel: models.BaseModel{ID: item.ID, CreatedAt: inv.CreatedAt, UpdatedAt: inv.UpdatedAt},
				UserID:    inv.UserID,
			},
			InvoiceID:   inv.ID,
			Position:    i,
			Description: strings.TrimSpace(item.Description),
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			Total:       invoice.ItemTotal(item),
		}
	}
	return m, client, items
}

// toDomainInvoice normalizes stored rows into an invoice. A missing client row
// yields a client that carries only its id. Items are ordered by position.
// Stored totals are kept as they are.
func toDomainInvoice(m *models.InvoiceModel, client *models.ClientModel, items []models.InvoiceItemModel) *invoice.Invoice {
	inv := &invoice.Invoice{
		BaseEntity:    m.ToDomain(),
		UserID:        m.UserID,
		InvoiceNumber: m.InvoiceNumber,
		Date:          invoice.DateOnly(m.Date),
		DueDate:       invoice.DateOnly(m.DueDate),
		Status:        normalizeStatus(m.Status),
		PaymentType:   normalizePaymentType(m.PaymentType),
		Discount: invoice.Discount{
			Type:  normalizeDiscountType(m.DiscountType),
			Value: m.DiscountValue,
		},
		Tax: invoice.Tax{
			Mode: normalizeTaxMode(m.TaxMode),
			Rate: m.TaxRate,
		},
		Remark: m.Remark,
		Totals: invoice.Totals{
			Subtotal:       m.Subtotal,
			DiscountAmount: m.DiscountAmount,
			TaxAmount:      m.TaxAmount,
			Total:          m.Total,
		},
		PaymentInfo: invoice.PaymentInfo{
			AccountName:   m.AccountName,
			AccountNumber: m.AccountNumber,
			IFSC:          m.IFSC,
		},
		Client: invoice.Client{ID: m.ClientID},
	}

	if client == nil {
		client = m.Client
	}
	if client != nil && client.ID != uuid.Nil {
		inv.Client = invoice.Client{
			ID:      client.ID,
			Name:    client.Name,
			Address: client.Address,
			GSTIN:   client.GSTIN,
		}
	}

	if items == nil {
		items = m.Items
	}
	sorted := append([]models.InvoiceItemModel(nil), items...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Position < sorted[j].Position })
	inv.Items = lo.Map(sorted, func(it models.InvoiceItemModel, _ int) invoice.LineItem {
		return invoice.LineItem{
			ID:          it.ID,
			Description: it.Description,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
		}
	})
	return inv
}

func toDomainPaymentInfo(m *models.PaymentInfoModel) *invoice.PaymentInfo {
	return &invoice.PaymentInfo{
		AccountName:   m.AccountName,
		AccountNumber: m.AccountNumber,
		IFSC:          m.IFSC,
	}
}

func normalizeStatus(v string) invoice.Status {
	s := invoice.Status(strings.TrimSpace(v))
	if !s.IsValid() {
		return invoice.StatusUnpaid
	}
	return s
}

func normalizePaymentType(v string) invoice.PaymentType {
	p := invoice.PaymentType(strings.TrimSpace(v))
	if !p.IsValid() {
		return invoice.PaymentTypeFull
	}
	return p
}

func normalizeDiscountType(v string) invoice.DiscountType {
	d := invoice.DiscountType(strings.ToLower(strings.TrimSpace(v)))
	if !d.IsValid() {
		return invoice.DiscountPercentage
	}
	return d
}

func normalizeTaxMode(v string) invoice.TaxMode {
	t := invoice.TaxMode(strings.TrimSpace(v))
	if !t.IsValid() {
		return invoice.TaxModeNone
	}
	return t
}

// StoreInvoiceRow is an invoice as exported from the hosted store's REST API,
// with the related client embedded under "clients" and items under
// "invoice_items".
type StoreInvoiceRow struct {
	ID             uuid.UUID        `json:"id"`
	UserID         uuid.UUID        `json:"user_id"`
	InvoiceNumber  string           `json:"invoice_number"`
	ClientID       *uuid.UUID       `json:"client_id"`
	Date           string           `json:"date"`
	DueDate        *string          `json:"due_date"`
	Status         *string          `json:"status"`
	PaymentType    *string          `json:"payment_type"`
	DiscountType   *string          `json:"discount_type"`
	DiscountValue  *decimal.Decimal `json:"discount_value"`
	TaxMode        *string          `json:"tax_mode"`
	TaxRate        *decimal.Decimal `json:"tax_rate"`
	Subtotal       *decimal.Decimal `json:"subtotal"`
	DiscountAmount *decimal.Decimal `json:"discount_amount"`
	TaxAmount      *decimal.Decimal `json:"tax_amount"`
	Total          *decimal.Decimal `json:"total"`
	Remark         *string          `json:"remark"`
	AccountName    *string          `json:"payment_info_account_name"`
	AccountNumber  *string          `json:"payment_info_account_number"`
	IFSC           *string          `json:"payment_info_ifsc"`
	Clients        json.RawMessage  `json:"clients"`
	Items          []StoreItemRow   `json:"invoice_items"`
	CreatedAt      *time.Time       `json:"created_at"`
}

// StoreClientRow is an embedded client
type StoreClientRow struct {
	ID      uuid.UUID `json:"id"`
	Name    string    `json:"name"`
	Address *string   `json:"address"`
	GSTIN   *string   `json:"gstin"`
}

// StoreItemRow is an embedded line item
type StoreItemRow struct {
	ID          uuid.UUID       `json:"id"`
	Description string          `json:"description"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

// DecodeStoreClients accepts an embedded client as an object, a list or null
func DecodeStoreClients(raw json.RawMessage) (*StoreClientRow, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}
	if raw[0] == '[' {
		var list []StoreClientRow
		if err := json.Unmarshal(raw, &list); err != nil {
			return nil, fmt.Errorf("decode clients list: %w", err)
		}
		if len(list) == 0 {
			return nil, nil
		}
		return &list[0], nil
	}
	var one StoreClientRow
	if err := json.Unmarshal(raw, &one); err != nil {
		return nil, fmt.Errorf("decode client: %w", err)
	}
	return &one, nil
}

// NormalizeStoreRow converts an exported row into an invoice owned by userID.
// Blank payment snapshot fields are filled from fallback field by field.
// Totals are always recomputed from the row's inputs. A row exported for
// another user gets fresh invoice, client and item ids.
func NormalizeStoreRow(row StoreInvoiceRow, userID uuid.UUID, fallback invoice.PaymentInfo) (*invoice.Invoice, error) {
	if strings.TrimSpace(row.InvoiceNumber) == "" {
		return nil, shared.NewDomainError("INVALID_INVOICE_NUMBER", "Row has no invoice number")
	}

	date, err := parseStoreDate(row.Date)
	if err != nil {
		return nil, shared.NewDomainError("INVALID_DATE", fmt.Sprintf("Row %s has an invalid date", row.InvoiceNumber))
	}
	due := date.AddDate(0, 0, invoice.DefaultDueDays)
	if row.DueDate != nil && *row.DueDate != "" {
		if d, err := parseStoreDate(*row.DueDate); err == nil {
			due = d
		}
	}

	inv := &invoice.Invoice{
		BaseEntity:    shared.NewBaseEntity(),
		UserID:        userID,
		InvoiceNumber: strings.TrimSpace(row.InvoiceNumber),
		Date:          date,
		DueDate:       due,
		Status:        normalizeStatus(lo.FromPtr(row.Status)),
		PaymentType:   normalizePaymentType(lo.FromPtr(row.PaymentType)),
		Discount: invoice.Discount{
			Type:  normalizeDiscountType(lo.FromPtr(row.DiscountType)),
			Value: lo.FromPtrOr(row.DiscountValue, decimal.Zero),
		},
		Tax: invoice.Tax{
			Mode: normalizeTaxMode(lo.FromPtrOr(row.TaxMode, string(invoice.TaxModeIGST))),
			Rate: lo.FromPtrOr(row.TaxRate, decimal.Zero),
		},
		Remark: lo.FromPtr(row.Remark),
	}
	keepIDs := row.UserID == uuid.Nil || row.UserID == userID
	if keepIDs && row.ID != uuid.Nil {
		inv.ID = row.ID
	}
	if row.CreatedAt != nil {
		inv.CreatedAt = *row.CreatedAt
		inv.UpdatedAt = *row.CreatedAt
	}

	client, err := DecodeStoreClients(row.Clients)
	if err != nil {
		return nil, err
	}
	switch {
	case client != nil:
		inv.Client = invoice.Client{
			ID:      client.ID,
			Name:    client.Name,
			Address: lo.FromPtr(client.Address),
			GSTIN:   lo.FromPtr(client.GSTIN),
		}
	case row.ClientID != nil:
		inv.Client = invoice.Client{ID: *row.ClientID}
	}
	if !keepIDs || inv.Client.ID == uuid.Nil {
		inv.Client.ID = uuid.New()
	}

	inv.Items = lo.Map(row.Items, func(it StoreItemRow, _ int) invoice.LineItem {
		id := it.ID
		if !keepIDs || id == uuid.Nil {
			id = uuid.New()
		}
		return invoice.LineItem{ID: id, Description: it.Description, Quantity: it.Quantity, UnitPrice: it.UnitPrice}
	})

	inv.PaymentInfo = invoice.PaymentInfo{
		AccountName:   orFallback(row.AccountName, fallback.AccountName),
		AccountNumber: orFallback(row.AccountNumber, fallback.AccountNumber),
		IFSC:          orFallback(row.IFSC, fallback.IFSC),
	}

	inv.Recalculate()
	return inv, nil
}

func parseStoreDate(v string) (time.Time, error) {
	v = strings.TrimSpace(v)
	if t, err := time.Parse("2006-01-02", v); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return time.Time{}, err
	}
	return invoice.DateOnly(t), nil
}

func orFallback(v *string, fallback string) string {
	if v == nil || strings.TrimSpace(*v) == "" {
		return fallback
	}
	return *v
}
