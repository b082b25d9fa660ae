package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	invoiceapp "github.com/invoicer/backend/internal/application/invoice"
	reportapp "github.com/invoicer/backend/internal/application/report"
	"github.com/invoicer/backend/internal/domain/invoice"
	"github.com/invoicer/backend/internal/infrastructure/auth"
	"github.com/invoicer/backend/internal/infrastructure/persistence"
	"github.com/invoicer/backend/internal/infrastructure/persistence/models"
	"github.com/invoicer/backend/internal/infrastructure/printing"
	"github.com/invoicer/backend/internal/interfaces/http/dto"
	"github.com/invoicer/backend/internal/interfaces/http/middleware"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func init() {
	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()
}

var (
	fixedNow       = time.Date(2026, time.March, 14, 10, 30, 0, 0, time.UTC)
	ownerID        = uuid.MustParse("7f3c1a52-8d1e-4b8a-9c35-2f1d0e6b4a10")
	otherID        = uuid.MustParse("1b8e6c3d-2f4a-4e5b-8c7d-9a0b1c2d3e4f")
	defaultPayment = invoice.PaymentInfo{AccountName: "Default Co", AccountNumber: "999900001111", IFSC: "SBIN0000001"}
)

const (
	ownerToken = "owner-token"
	otherToken = "other-token"
)

// stubVerifier accepts a fixed set of tokens
type stubVerifier struct {
	sessions map[string]*auth.Session
}

func (v *stubVerifier) Verify(_ context.Context, token string) (*auth.Session, error) {
	if s, ok := v.sessions[token]; ok {
		return s, nil
	}
	return nil, auth.ErrInvalidToken
}

type testEnv struct {
	db     *gorm.DB
	router *gin.Engine
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(models.All()...))

	clock := func() time.Time { return fixedNow }
	invoices := persistence.NewGormInvoiceRepository(db)
	numberer := invoiceapp.NewNumberer(invoices, invoiceapp.WithNumbererClock(clock))
	payments := invoiceapp.NewPaymentInfoService(persistence.NewGormPaymentInfoRepository(db), nil, defaultPayment, zap.NewNop())
	invoiceService := invoiceapp.NewService(invoices, numberer, payments, printing.NewGofpdfRenderer(nil),
		invoiceapp.WithClock(clock))
	reportService := reportapp.NewReportService(persistence.NewGormRevenueReportRepository(db),
		reportapp.WithClock(clock))

	verifier := &stubVerifier{sessions: map[string]*auth.Session{
		ownerToken: {UserID: ownerID, Email: "owner@example.com", Token: ownerToken, ExpiresAt: fixedNow.Add(time.Hour)},
		otherToken: {UserID: otherID, Email: "other@example.com", Token: otherToken},
	}}

	r := gin.New()
	r.Use(middleware.RequestID())
	r.Use(middleware.SessionAuth(verifier, zap.NewNop()))

	invoiceHandler := NewInvoiceHandler(invoiceService)
	paymentHandler := NewPaymentInfoHandler(payments)
	reportHandler := NewReportHandler(reportService)

	r.GET("/invoices", invoiceHandler.List)
	r.POST("/invoices", invoiceHandler.Create)
	r.GET("/invoices/defaults", invoiceHandler.Defaults)
	r.POST("/invoices/preview", invoiceHandler.Preview)
	r.GET("/invoices/next-number", invoiceHandler.NextNumber)
	r.GET("/invoices/number-availability", invoiceHandler.CheckNumber)
	r.GET("/invoices/:id", invoiceHandler.Get)
	r.PUT("/invoices/:id", invoiceHandler.Update)
	r.DELETE("/invoices/:id", invoiceHandler.Delete)
	r.POST("/invoices/:id/duplicate", invoiceHandler.Duplicate)
	r.PATCH("/invoices/:id/status", invoiceHandler.SetStatus)
	r.POST("/invoices/:id/status/toggle", invoiceHandler.ToggleStatus)
	r.PATCH("/invoices/:id/remark", invoiceHandler.UpdateRemark)
	r.GET("/invoices/:id/pdf", invoiceHandler.DownloadPDF)
	r.POST("/invoices/:id/pdf/archive", invoiceHandler.ArchivePDF)
	r.GET("/payment-info", paymentHandler.Get)
	r.PUT("/payment-info", paymentHandler.Update)
	r.GET("/reports/revenue", reportHandler.Revenue)
	r.GET("/reports/revenue/export", reportHandler.ExportRevenue)

	return &testEnv{db: db, router: r}
}

// do performs a request, authenticated when token is not empty
func (e *testEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

// envelope is dto.Response with a typed data field
type envelope[T any] struct {
	Success bool           `json:"success"`
	Data    T              `json:"data"`
	Error   *dto.ErrorInfo `json:"error"`
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) envelope[T] {
	t.Helper()
	var resp envelope[T]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return resp
}

func validInvoiceRequest(number string) invoiceapp.InvoiceRequest {
	return invoiceapp.InvoiceRequest{
		InvoiceNumber: number,
		Date:          "2026-03-14",
		DueDate:       "2026-03-29",
		Client:        invoiceapp.ClientInput{Name: "Globex Pvt Ltd", Address: "12 MG Road, Pune", GSTIN: "27AAPFU0939F1ZV"},
		Items: []invoiceapp.LineItemInput{
			{Description: "Design work", Quantity: 2, UnitPrice: decimal.NewFromInt(1500)},
			{Description: "Hosting", Quantity: 1, UnitPrice: decimal.NewFromInt(1000)},
		},
		DiscountType:  "percentage",
		DiscountValue: decimal.NewFromInt(10),
		TaxMode:       "IGST",
		TaxRate:       decimal.NewFromInt(18),
	}
}

// createInvoice saves an invoice for the owner and returns it
func (e *testEnv) createInvoice(t *testing.T, number string) invoiceapp.InvoiceResponse {
	t.Helper()
	w := e.do(t, http.MethodPost, "/invoices", ownerToken, validInvoiceRequest(number))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode[invoiceapp.InvoiceResult](t, w).Data.Invoice
}

func serve(env *testEnv, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	return w
}
