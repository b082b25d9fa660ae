package invoice

import (
	"context"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/invoicer/backend/internal/domain/invoice"
	"github.com/invoicer/backend/internal/domain/shared"
	"github.com/invoicer/backend/internal/infrastructure/logger"
	"github.com/invoicer/backend/internal/infrastructure/printing"
	"go.uber.org/zap"
)

// Session messages shown when no user is signed in
const (
	msgSignInToAdd    = "Please sign in to add an invoice"
	msgSignInToEdit   = "Please sign in to edit invoices"
	msgSignInToView   = "Please sign in to view invoices"
	msgSignInToDelete = "Please sign in to delete invoices"
)

// ErrDuplicateNumber is returned when another invoice of the user carries the number
var ErrDuplicateNumber = shared.ErrAlreadyExists.WithMessage("Invoice number already exists")

// Service handles invoice business operations
type Service struct {
	invoices   invoice.InvoiceRepository
	numberer   *Numberer
	payments   *PaymentInfoService
	renderer   printing.Renderer
	archive    PDFArchive
	presignTTL time.Duration
	issuer     printing.Issuer
	footer     string
	now        func() time.Time
	location   *time.Location
	metrics    Metrics
	logger     *zap.Logger
}

// Option configures a Service
type Option func(*Service)

// WithLogger sets the logger
func WithLogger(l *zap.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock sets the time source used for drafts
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// WithLocation sets the timezone whose calendar day "today" refers to
func WithLocation(loc *time.Location) Option {
	return func(s *Service) {
		if loc != nil {
			s.location = loc
		}
	}
}

// WithMetrics sets the business metrics sink
func WithMetrics(m Metrics) Option {
	return func(s *Service) {
		if m != nil {
			s.metrics = m
		}
	}
}

// WithIssuer sets the company block and footer printed on every PDF
func WithIssuer(issuer printing.Issuer, footer string) Option {
	return func(s *Service) {
		s.issuer = issuer
		s.footer = footer
	}
}

// WithArchive enables PDF archiving to object storage
func WithArchive(archive PDFArchive, presignTTL time.Duration) Option {
	return func(s *Service) {
		s.archive = archive
		s.presignTTL = presignTTL
	}
}

// NewService creates a new invoice Service
func NewService(
	invoices invoice.InvoiceRepository,
	numberer *Numberer,
	payments *PaymentInfoService,
	renderer printing.Renderer,
	opts ...Option,
) *Service {
	s := &Service{
		invoices:   invoices,
		numberer:   numberer,
		payments:   payments,
		renderer:   renderer,
		presignTTL: 15 * time.Minute,
		now:        time.Now,
		location:   time.UTC,
		metrics:    noopMetrics{},
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) log(ctx context.Context) *zap.Logger {
	return logger.WithFallback(ctx, s.logger)
}

func requireSession(userID uuid.UUID, message string) error {
	if userID == uuid.Nil {
		return shared.ErrNoSession.WithMessage(message)
	}
	return nil
}

// =============================================================================
// Drafts and previews
// =============================================================================

// Defaults returns a blank invoice as a new form starts: issued today, due in
// 15 days, the next invoice number and the current payment info
func (s *Service) Defaults(ctx context.Context, userID uuid.UUID) (*InvoiceResult, error) {
	if err := requireSession(userID, msgSignInToAdd); err != nil {
		return nil, err
	}

	draft := invoice.NewDraft(userID, s.today())
	number := s.numberer.Generate(ctx, userID)
	draft.InvoiceNumber = number.Number

	outcome, reason := number.Outcome, number.Reason
	if o, r := s.snapshotPaymentInfo(ctx, draft); o.IsDegraded() {
		outcome, reason = o, joinReasons(reason, r)
	}

	return &InvoiceResult{Invoice: ToInvoiceResponse(draft), Outcome: outcome, Reason: reason}, nil
}

// Preview computes totals and tax lines of an unsaved invoice
func (s *Service) Preview(req InvoiceRequest) (*PreviewResponse, error) {
	inv, err := req.toDomain(uuid.Nil)
	if err != nil {
		return nil, err
	}
	inv.Recalculate()

	items := make([]LineItemResponse, len(inv.Items))
	for i, item := range inv.Items {
		items[i] = toLineItemResponse(item)
	}
	return &PreviewResponse{
		Subtotal:       inv.Totals.Subtotal,
		DiscountAmount: inv.Totals.DiscountAmount,
		TaxAmount:      inv.Totals.TaxAmount,
		Total:          inv.Totals.Total,
		TaxLines:       toTaxLineResponses(inv.TaxLines()),
		Items:          items,
	}, nil
}

// NextNumber generates the next invoice number without reserving it
func (s *Service) NextNumber(ctx context.Context, userID uuid.UUID) (*NumberResponse, error) {
	if err := requireSession(userID, msgSignInToAdd); err != nil {
		return nil, err
	}
	result := s.numberer.Generate(ctx, userID)
	s.metrics.OutcomeRecorded(ctx, OperationNumber, result.Outcome)
	return &NumberResponse{Number: result.Number, Outcome: result.Outcome, Reason: result.Reason}, nil
}

// CheckNumber tells whether number is free, ignoring the invoice excludeID
func (s *Service) CheckNumber(ctx context.Context, userID uuid.UUID, number string, excludeID *uuid.UUID) (*NumberAvailabilityResponse, error) {
	if err := requireSession(userID, msgSignInToAdd); err != nil {
		return nil, err
	}
	number = strings.TrimSpace(number)
	if number == "" {
		return nil, shared.NewDomainError("INVALID_INVOICE_NUMBER", "Invoice number cannot be empty")
	}
	unique, err := s.numberer.IsUnique(ctx, userID, number, excludeID)
	if err != nil {
		return nil, err
	}
	return &NumberAvailabilityResponse{Number: number, Available: unique}, nil
}

// =============================================================================
// CRUD
// =============================================================================

// Create validates, numbers, totals and stores a new invoice
func (s *Service) Create(ctx context.Context, userID uuid.UUID, req InvoiceRequest) (*InvoiceResult, error) {
	if err := requireSession(userID, msgSignInToAdd); err != nil {
		return nil, err
	}

	inv, err := req.toDomain(userID)
	if err != nil {
		return nil, err
	}

	outcome, reason := shared.OutcomeIdeal, ""
	if inv.InvoiceNumber == "" {
		number := s.numberer.Generate(ctx, userID)
		inv.InvoiceNumber = number.Number
		outcome, reason = number.Outcome, number.Reason
	}

	if err := inv.Validate(); err != nil {
		return nil, err
	}
	if err := s.ensureUnique(ctx, userID, inv.InvoiceNumber, nil); err != nil {
		return nil, err
	}

	inv.Recalculate()
	if o, r := s.snapshotPaymentInfo(ctx, inv); o.IsDegraded() {
		outcome, reason = o, joinReasons(reason, r)
	}

	if err := s.invoices.Create(ctx, inv); err != nil {
		return nil, errors.Wrap(err, "create invoice")
	}

	s.metrics.InvoiceCreated(ctx, OperationCreate)
	s.metrics.OutcomeRecorded(ctx, OperationCreate, outcome)
	s.log(ctx).Info("Invoice created",
		zap.String("invoice_id", inv.ID.String()),
		zap.String("invoice_number", inv.InvoiceNumber),
		zap.String("total", inv.Totals.Total.String()),
		zap.String("outcome", outcome.String()))

	return &InvoiceResult{Invoice: ToInvoiceResponse(inv), Outcome: outcome, Reason: reason}, nil
}

// Update replaces an invoice of the user. The client row and the ids of
// items that still exist are kept; removed items are deleted.
func (s *Service) Update(ctx context.Context, userID, id uuid.UUID, req InvoiceRequest) (*InvoiceResult, error) {
	if err := requireSession(userID, msgSignInToEdit); err != nil {
		return nil, err
	}

	existing, err := s.invoices.FindByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	inv, err := req.toDomain(userID)
	if err != nil {
		return nil, err
	}
	inv.ID = existing.ID
	inv.CreatedAt = existing.CreatedAt
	inv.Client.ID = existing.Client.ID
	keepOwnItemIDs(inv, existing)

	if err := inv.Validate(); err != nil {
		return nil, err
	}
	if err := s.ensureUnique(ctx, userID, inv.InvoiceNumber, &inv.ID); err != nil {
		return nil, err
	}

	inv.Recalculate()
	outcome, reason := s.snapshotPaymentInfo(ctx, inv)

	if err := s.invoices.Update(ctx, inv); err != nil {
		return nil, errors.Wrap(err, "update invoice")
	}

	s.log(ctx).Info("Invoice updated",
		zap.String("invoice_id", inv.ID.String()),
		zap.String("invoice_number", inv.InvoiceNumber))

	return &InvoiceResult{Invoice: ToInvoiceResponse(inv), Outcome: outcome, Reason: reason}, nil
}

// Get loads one invoice of the user. Blank payment snapshot fields are
// completed from the current payment info.
func (s *Service) Get(ctx context.Context, userID, id uuid.UUID) (*InvoiceResponse, error) {
	if err := requireSession(userID, msgSignInToView); err != nil {
		return nil, err
	}
	inv, err := s.load(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	resp := ToInvoiceResponse(inv)
	return &resp, nil
}

// Delete removes an invoice with its items and client
func (s *Service) Delete(ctx context.Context, userID, id uuid.UUID) error {
	if err := requireSession(userID, msgSignInToDelete); err != nil {
		return err
	}
	if err := s.invoices.Delete(ctx, userID, id); err != nil {
		return err
	}
	s.log(ctx).Info("Invoice deleted", zap.String("invoice_id", id.String()))
	return nil
}

// Duplicate copies an invoice under a new number with a new client and new
// item ids, snapshotting the current payment info
func (s *Service) Duplicate(ctx context.Context, userID, id uuid.UUID) (*InvoiceResult, error) {
	if err := requireSession(userID, msgSignInToAdd); err != nil {
		return nil, err
	}

	source, err := s.invoices.FindByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	number := s.numberer.UniqueForDuplicate(ctx, userID)
	dup := source.Duplicate(number.Number)
	dup.PaymentInfo = invoice.PaymentInfo{}

	outcome, reason := number.Outcome, number.Reason
	if o, r := s.snapshotPaymentInfo(ctx, dup); o.IsDegraded() {
		outcome, reason = o, joinReasons(reason, r)
	}

	if err := s.invoices.Create(ctx, dup); err != nil {
		return nil, errors.Wrap(err, "create duplicated invoice")
	}

	s.metrics.InvoiceCreated(ctx, OperationDuplicate)
	s.metrics.OutcomeRecorded(ctx, OperationDuplicate, outcome)
	s.log(ctx).Info("Invoice duplicated",
		zap.String("source_id", source.ID.String()),
		zap.String("invoice_id", dup.ID.String()),
		zap.String("invoice_number", dup.InvoiceNumber),
		zap.String("outcome", outcome.String()))

	return &InvoiceResult{Invoice: ToInvoiceResponse(dup), Outcome: outcome, Reason: reason}, nil
}

// ToggleStatus flips Paid and Unpaid
func (s *Service) ToggleStatus(ctx context.Context, userID, id uuid.UUID) (*InvoiceResponse, error) {
	if err := requireSession(userID, msgSignInToEdit); err != nil {
		return nil, err
	}
	inv, err := s.load(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	inv.ToggleStatus()
	if err := s.invoices.UpdateStatus(ctx, userID, id, inv.Status); err != nil {
		return nil, err
	}
	resp := ToInvoiceResponse(inv)
	return &resp, nil
}

// SetStatus sets an explicit status
func (s *Service) SetStatus(ctx context.Context, userID, id uuid.UUID, req StatusRequest) (*InvoiceResponse, error) {
	if err := requireSession(userID, msgSignInToEdit); err != nil {
		return nil, err
	}
	inv, err := s.load(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if err := inv.SetStatus(invoice.Status(req.Status)); err != nil {
		return nil, err
	}
	if err := s.invoices.UpdateStatus(ctx, userID, id, inv.Status); err != nil {
		return nil, err
	}
	resp := ToInvoiceResponse(inv)
	return &resp, nil
}

// UpdateRemark replaces the remark of an invoice
func (s *Service) UpdateRemark(ctx context.Context, userID, id uuid.UUID, req RemarkRequest) (*InvoiceResponse, error) {
	if err := requireSession(userID, msgSignInToEdit); err != nil {
		return nil, err
	}
	inv, err := s.load(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	inv.SetRemark(req.Remark)
	if err := s.invoices.UpdateRemark(ctx, userID, id, inv.Remark); err != nil {
		return nil, err
	}
	resp := ToInvoiceResponse(inv)
	return &resp, nil
}

// =============================================================================
// Helpers
// =============================================================================

func (s *Service) today() time.Time {
	return s.now().In(s.location)
}

// load reads an invoice and completes its payment snapshot for display
func (s *Service) load(ctx context.Context, userID, id uuid.UUID) (*invoice.Invoice, error) {
	inv, err := s.invoices.FindByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if inv.PaymentInfo.AccountName == "" || inv.PaymentInfo.AccountNumber == "" || inv.PaymentInfo.IFSC == "" {
		current, _, err := s.payments.Current(ctx, userID)
		if err != nil {
			s.log(ctx).Warn("Payment info unavailable for snapshot fill", zap.Error(err))
			current = s.payments.Defaults()
		}
		inv.PaymentInfo = fillSnapshot(inv.PaymentInfo, current)
	}
	return inv, nil
}

func (s *Service) ensureUnique(ctx context.Context, userID uuid.UUID, number string, excludeID *uuid.UUID) error {
	unique, err := s.numberer.IsUnique(ctx, userID, number, excludeID)
	if err != nil {
		return err
	}
	if !unique {
		return ErrDuplicateNumber
	}
	return nil
}

// snapshotPaymentInfo copies the current payment info onto the invoice.
// When it cannot be read the configured defaults are used and the outcome
// is degraded.
func (s *Service) snapshotPaymentInfo(ctx context.Context, inv *invoice.Invoice) (shared.Outcome, string) {
	current, _, err := s.payments.Current(ctx, inv.UserID)
	if err != nil {
		s.log(ctx).Warn("Snapshotting default payment info", zap.Error(err))
		inv.SnapshotPaymentInfo(s.payments.Defaults())
		return shared.OutcomeDegraded, err.Error()
	}
	inv.SnapshotPaymentInfo(current)
	return shared.OutcomeIdeal, ""
}

// keepOwnItemIDs gives fresh ids to items whose id does not belong to the
// invoice being edited
func keepOwnItemIDs(inv, existing *invoice.Invoice) {
	own := make(map[uuid.UUID]struct{}, len(existing.Items))
	for _, item := range existing.Items {
		own[item.ID] = struct{}{}
	}
	seen := make(map[uuid.UUID]struct{}, len(inv.Items))
	for i := range inv.Items {
		id := inv.Items[i].ID
		_, isOwn := own[id]
		_, repeated := seen[id]
		if !isOwn || repeated {
			inv.Items[i].ID = uuid.New()
		}
		seen[inv.Items[i].ID] = struct{}{}
	}
}

func joinReasons(reasons ...string) string {
	var parts []string
	for _, r := range reasons {
		if r != "" {
			parts = append(parts, r)
		}
	}
	return strings.Join(parts, "; ")
}
