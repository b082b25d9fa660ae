package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ClientModel is the billed party of one invoice
type ClientModel struct {
	OwnedModel
	Name    string `gorm:"type:varchar(255);not null"`
	Address string `gorm:"type:text"`
	GSTIN   string `gorm:"column:gstin;type:varchar(20)"`
}

// TableName returns the table name for GORM
func (ClientModel) TableName() string {
	return "clients"
}

// InvoiceModel is the invoices table. Computed totals and the payment info
// snapshot are stored alongside the inputs they were computed from.
type InvoiceModel struct {
	BaseModel
	UserID         uuid.UUID       `gorm:"type:uuid;not null;index:idx_invoices_user_number,priority:1"`
	InvoiceNumber  string          `gorm:"type:varchar(50);not null;index:idx_invoices_user_number,priority:2"`
	ClientID       uuid.UUID       `gorm:"type:uuid;not null;index"`
	Client         *ClientModel    `gorm:"foreignKey:ClientID"`
	Date           time.Time       `gorm:"type:date;not null;index"`
	DueDate        time.Time       `gorm:"type:date;not null"`
	Status         string          `gorm:"type:varchar(16);not null;index"`
	PaymentType    string          `gorm:"type:varchar(32);not null"`
	DiscountType   string          `gorm:"type:varchar(16);not null"`
	DiscountValue  decimal.Decimal `gorm:"type:numeric(18,4);not null;default:0"`
	TaxMode        string          `gorm:"type:varchar(16);not null"`
	TaxRate        decimal.Decimal `gorm:"type:numeric(5,2);not null;default:0"`
	Subtotal       decimal.Decimal `gorm:"type:numeric(18,4);not null;default:0"`
	DiscountAmount decimal.Decimal `gorm:"type:numeric(18,4);not null;default:0"`
	TaxAmount      decimal.Decimal `gorm:"type:numeric(18,4);not null;default:0"`
	Total          decimal.Decimal `gorm:"type:numeric(18,4);not null;default:0"`
	Remark         string          `gorm:"type:text"`
	AccountName    string          `gorm:"type:varchar(255)"`
	AccountNumber  string          `gorm:"type:varchar(64)"`
	IFSC           string          `gorm:"column:ifsc;type:varchar(20)"`

	Items []InvoiceItemModel `gorm:"foreignKey:InvoiceID"`
}

// TableName returns the table name for GORM
func (InvoiceModel) TableName() string {
	return "invoices"
}

// InvoiceItemModel is one line of an invoice. Position keeps the entry order.
type InvoiceItemModel struct {
	OwnedModel
	InvoiceID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	Position    int             `gorm:"not null;default:0"`
	Description string          `gorm:"type:text;not null"`
	Quantity    int             `gorm:"not null"`
	UnitPrice   decimal.Decimal `gorm:"type:numeric(18,4);not null"`
	Total       decimal.Decimal `gorm:"type:numeric(18,4);not null"`
}

// TableName returns the table name for GORM
func (InvoiceItemModel) TableName() string {
	return "invoice_items"
}

// PaymentInfoModel is the single payment configuration row of a user
type PaymentInfoModel struct {
	UserID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	AccountName   string    `gorm:"type:varchar(255);not null"`
	AccountNumber string    `gorm:"type:varchar(64);not null"`
	IFSC          string    `gorm:"column:ifsc;type:varchar(20);not null"`
	CreatedAt     time.Time `gorm:"not null"`
	UpdatedAt     time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (PaymentInfoModel) TableName() string {
	return "payment_info"
}

// All lists every model for AutoMigrate in tests
func All() []any {
	return []any{
		&ClientModel{},
		&InvoiceModel{},
		&InvoiceItemModel{},
		&PaymentInfoModel{},
	}
}
