package invoice

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/invoicer/backend/internal/domain/invoice"
	"github.com/invoicer/backend/internal/domain/shared"
	"github.com/invoicer/backend/internal/infrastructure/printing"
	"github.com/stretchr/testify/mock"
)

// MockInvoiceRepository is a mock implementation of invoice.InvoiceRepository
type MockInvoiceRepository struct {
	mock.Mock
}

func (m *MockInvoiceRepository) FindByID(ctx context.Context, userID, id uuid.UUID) (*invoice.Invoice, error) {
	args := m.Called(ctx, userID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*invoice.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) Create(ctx context.Context, inv *invoice.Invoice) error {
	args := m.Called(ctx, inv)
	return args.Error(0)
}

func (m *MockInvoiceRepository) Update(ctx context.Context, inv *invoice.Invoice) error {
	args := m.Called(ctx, inv)
	return args.Error(0)
}

func (m *MockInvoiceRepository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	args := m.Called(ctx, userID, id)
	return args.Error(0)
}

func (m *MockInvoiceRepository) UpdateStatus(ctx context.Context, userID, id uuid.UUID, status invoice.Status) error {
	args := m.Called(ctx, userID, id, status)
	return args.Error(0)
}

func (m *MockInvoiceRepository) UpdateRemark(ctx context.Context, userID, id uuid.UUID, remark string) error {
	args := m.Called(ctx, userID, id, remark)
	return args.Error(0)
}

func (m *MockInvoiceRepository) RecentNumbers(ctx context.Context, userID uuid.UUID, limit int) ([]string, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockInvoiceRepository) NumberExists(ctx context.Context, userID uuid.UUID, number string, excludeID *uuid.UUID) (bool, error) {
	args := m.Called(ctx, userID, number, excludeID)
	return args.Bool(0), args.Error(1)
}

func (m *MockInvoiceRepository) MatchClientIDs(ctx context.Context, userID uuid.UUID, query string) ([]uuid.UUID, error) {
	args := m.Called(ctx, userID, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uuid.UUID), args.Error(1)
}

func (m *MockInvoiceRepository) SearchJoined(ctx context.Context, criteria invoice.SearchCriteria) (*invoice.SearchPage, error) {
	args := m.Called(ctx, criteria)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*invoice.SearchPage), args.Error(1)
}

func (m *MockInvoiceRepository) SearchSeparate(ctx context.Context, criteria invoice.SearchCriteria) (*invoice.SearchPage, error) {
	args := m.Called(ctx, criteria)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*invoice.SearchPage), args.Error(1)
}

// MockPaymentInfoRepository is a mock implementation of invoice.PaymentInfoRepository
type MockPaymentInfoRepository struct {
	mock.Mock
}

func (m *MockPaymentInfoRepository) Find(ctx context.Context, userID uuid.UUID) (*invoice.PaymentInfo, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*invoice.PaymentInfo), args.Error(1)
}

func (m *MockPaymentInfoRepository) Save(ctx context.Context, userID uuid.UUID, info invoice.PaymentInfo) error {
	args := m.Called(ctx, userID, info)
	return args.Error(0)
}

// MockPaymentInfoCache is a mock implementation of invoice.PaymentInfoCache
type MockPaymentInfoCache struct {
	mock.Mock
}

func (m *MockPaymentInfoCache) Get(ctx context.Context, userID uuid.UUID) (*invoice.PaymentInfo, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*invoice.PaymentInfo), args.Error(1)
}

func (m *MockPaymentInfoCache) Set(ctx context.Context, userID uuid.UUID, info invoice.PaymentInfo) error {
	args := m.Called(ctx, userID, info)
	return args.Error(0)
}

func (m *MockPaymentInfoCache) Delete(ctx context.Context, userID uuid.UUID) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

// MockRenderer is a mock implementation of printing.Renderer
type MockRenderer struct {
	mock.Mock
}

func (m *MockRenderer) Render(ctx context.Context, req *printing.RenderRequest) (*printing.RenderResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*printing.RenderResult), args.Error(1)
}

func (m *MockRenderer) Name() string {
	return m.Called().String(0)
}

func (m *MockRenderer) Close() error {
	return m.Called().Error(0)
}

// MockArchive is a mock implementation of PDFArchive
type MockArchive struct {
	mock.Mock
}

func (m *MockArchive) Upload(ctx context.Context, storageKey string, data []byte, contentType string) error {
	args := m.Called(ctx, storageKey, data, contentType)
	return args.Error(0)
}

func (m *MockArchive) GenerateDownloadURL(ctx context.Context, storageKey string, expiresIn time.Duration) (string, time.Time, error) {
	args := m.Called(ctx, storageKey, expiresIn)
	return args.String(0), args.Get(1).(time.Time), args.Error(2)
}

// recordingMetrics keeps every recorded outcome
type recordingMetrics struct {
	created  []string
	outcomes map[string]shared.Outcome
	renders  []string
}

func newRecordingMetrics() *recordingMetrics {
	return &recordingMetrics{outcomes: map[string]shared.Outcome{}}
}

func (r *recordingMetrics) InvoiceCreated(_ context.Context, operation string) {
	r.created = append(r.created, operation)
}

func (r *recordingMetrics) OutcomeRecorded(_ context.Context, operation string, outcome shared.Outcome) {
	r.outcomes[operation] = outcome
}

func (r *recordingMetrics) PDFRendered(_ context.Context, engine string, _ time.Duration, _ error) {
	r.renders = append(r.renders, engine)
}
