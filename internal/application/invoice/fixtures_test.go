package invoice

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/invoicer/backend/internal/domain/invoice"
	"github.com/invoicer/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

var (
	fixedNow       = time.Date(2026, time.March, 14, 10, 30, 0, 0, time.UTC)
	testUserID     = uuid.MustParse("7f3c1a52-8d1e-4b8a-9c35-2f1d0e6b4a10")
	savedPayment   = invoice.PaymentInfo{AccountName: "Asha Traders", AccountNumber: "001122334455", IFSC: "HDFC0001234"}
	defaultPayment = invoice.PaymentInfo{AccountName: "Default Co", AccountNumber: "999900001111", IFSC: "SBIN0000001"}
)

type testDeps struct {
	invoices *MockInvoiceRepository
	payments *MockPaymentInfoRepository
	renderer *MockRenderer
	metrics  *recordingMetrics
	logs     *observer.ObservedLogs
	service  *Service
}

func newTestDeps(t *testing.T, opts ...Option) *testDeps {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	log := zap.New(core)

	d := &testDeps{
		invoices: new(MockInvoiceRepository),
		payments: new(MockPaymentInfoRepository),
		renderer: new(MockRenderer),
		metrics:  newRecordingMetrics(),
		logs:     logs,
	}
	numberer := NewNumberer(d.invoices,
		WithNumbererClock(func() time.Time { return fixedNow }),
		WithNumbererRandom(func(int) int { return 42 }),
		WithNumbererLogger(log))
	paymentSvc := NewPaymentInfoService(d.payments, nil, defaultPayment, log)

	base := []Option{
		WithLogger(log),
		WithClock(func() time.Time { return fixedNow }),
		WithMetrics(d.metrics),
	}
	d.service = NewService(d.invoices, numberer, paymentSvc, d.renderer, append(base, opts...)...)
	return d
}

func validRequest() InvoiceRequest {
	return InvoiceRequest{
		InvoiceNumber: "INV2026030001",
		Date:          "2026-03-14",
		DueDate:       "2026-03-29",
		Client:        ClientInput{Name: "Globex Pvt Ltd", Address: "12 MG Road, Pune", GSTIN: "27aapfu0939f1zv"},
		Items: []LineItemInput{
			{Description: "Design work", Quantity: 2, UnitPrice: decimal.NewFromInt(1500)},
			{Description: "Hosting", Quantity: 1, UnitPrice: decimal.NewFromInt(1000)},
		},
		DiscountType:  "percentage",
		DiscountValue: decimal.NewFromInt(10),
		TaxMode:       "IGST",
		TaxRate:       decimal.NewFromInt(18),
	}
}

func storedInvoice() *invoice.Invoice {
	inv := &invoice.Invoice{
		BaseEntity:    shared.NewBaseEntity(),
		UserID:        testUserID,
		InvoiceNumber: "INV2026030007",
		Date:          time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC),
		DueDate:       time.Date(2026, time.March, 16, 0, 0, 0, 0, time.UTC),
		Client:        invoice.Client{ID: uuid.New(), Name: "Initech", Address: "Bengaluru"},
		Items: []invoice.LineItem{
			{ID: uuid.New(), Description: "Consulting", Quantity: 3, UnitPrice: decimal.NewFromInt(2000)},
		},
		Status:      invoice.StatusUnpaid,
		PaymentType: invoice.PaymentTypeFull,
		Discount:    invoice.Discount{Type: invoice.DiscountFixed, Value: decimal.NewFromInt(500)},
		Tax:         invoice.Tax{Mode: invoice.TaxModeCGSTSGST, Rate: decimal.NewFromInt(18)},
		PaymentInfo: savedPayment,
	}
	inv.Recalculate()
	return inv
}
