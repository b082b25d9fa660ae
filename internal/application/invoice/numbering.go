package invoice

import (
	"context"
	"math/rand/v2"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/invoicer/backend/internal/domain/invoice"
	"github.com/invoicer/backend/internal/domain/shared"
	"github.com/invoicer/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// NumberResult is a generated invoice number and how it was obtained
type NumberResult struct {
	Number  string
	Outcome shared.Outcome
	Reason  string
}

var errNumberNoSession = errors.New("no signed-in user")

// Numberer hands out invoice numbers. The sequential INV+YYYYMM+NNNN form is
// preferred; when it cannot be derived a dated random number is returned and
// the result is marked degraded.
type Numberer struct {
	invoices invoice.InvoiceRepository
	now      func() time.Time
	location *time.Location
	random   func(n int) int
	logger   *zap.Logger
}

// NumbererOption configures a Numberer
type NumbererOption func(*Numberer)

// WithNumbererClock sets the time source
func WithNumbererClock(now func() time.Time) NumbererOption {
	return func(n *Numberer) {
		n.now = now
	}
}

// WithNumbererLocation sets the timezone whose calendar month numbers follow
func WithNumbererLocation(loc *time.Location) NumbererOption {
	return func(n *Numberer) {
		if loc != nil {
			n.location = loc
		}
	}
}

// WithNumbererRandom sets the source of fallback suffixes
func WithNumbererRandom(random func(n int) int) NumbererOption {
	return func(n *Numberer) {
		n.random = random
	}
}

// WithNumbererLogger sets the logger
func WithNumbererLogger(l *zap.Logger) NumbererOption {
	return func(n *Numberer) {
		if l != nil {
			n.logger = l
		}
	}
}

// NewNumberer creates a Numberer
func NewNumberer(invoices invoice.InvoiceRepository, opts ...NumbererOption) *Numberer {
	n := &Numberer{
		invoices: invoices,
		now:      time.Now,
		location: time.UTC,
		random:   rand.IntN,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Generate returns the next invoice number for the user. It never fails: a
// missing session, a store error or an exhausted month yield a degraded
// fallback number.
func (n *Numberer) Generate(ctx context.Context, userID uuid.UUID) NumberResult {
	now := n.now().In(n.location)

	if userID == uuid.Nil {
		return n.fallback(ctx, now, errNumberNoSession)
	}

	recent, err := n.invoices.RecentNumbers(ctx, userID, invoice.RecentNumbersWindow)
	if err != nil {
		return n.fallback(ctx, now, errors.WithHint(
			errors.Wrap(err, "load recent invoice numbers"),
			"the sequence could not be read from the store"))
	}

	number, err := invoice.NextSequentialNumber(now, recent)
	if err != nil {
		return n.fallback(ctx, now, errors.WithHint(err, "start a new month or enter a number manually"))
	}

	return NumberResult{Number: number, Outcome: shared.OutcomeIdeal}
}

func (n *Numberer) fallback(ctx context.Context, now time.Time, cause error) NumberResult {
	number := invoice.FallbackNumber(now, n.random(1000))
	logger.WithFallback(ctx, n.logger).Warn("Falling back to random invoice number",
		zap.String("invoice_number", number),
		zap.Error(cause))
	return NumberResult{
		Number:  number,
		Outcome: shared.OutcomeDegraded,
		Reason:  cause.Error(),
	}
}

// IsUnique reports whether no other invoice of the user carries number.
// A store error is returned as-is so the caller can refuse to save.
func (n *Numberer) IsUnique(ctx context.Context, userID uuid.UUID, number string, excludeID *uuid.UUID) (bool, error) {
	if userID == uuid.Nil {
		return false, shared.ErrNoSession
	}
	exists, err := n.invoices.NumberExists(ctx, userID, number, excludeID)
	if err != nil {
		return false, errors.Wrap(err, "check invoice number")
	}
	return !exists, nil
}

// UniqueForDuplicate looks for a number not yet used by the user, trying a
// bounded number of candidates. When none is confirmed unique the last
// candidate is returned with a degraded outcome; duplication never blocks.
func (n *Numberer) UniqueForDuplicate(ctx context.Context, userID uuid.UUID) NumberResult {
	var (
		last  NumberResult
		cause error
	)
	for attempt := 1; attempt <= invoice.DuplicateNumberAttempts; attempt++ {
		last = n.Generate(ctx, userID)

		unique, err := n.IsUnique(ctx, userID, last.Number, nil)
		if err != nil {
			cause = err
			continue
		}
		if unique {
			return last
		}
		cause = errors.Newf("invoice number %s is already taken", last.Number)
	}

	cause = errors.WithHint(
		errors.Wrapf(cause, "no unique number after %d attempts", invoice.DuplicateNumberAttempts),
		"edit the duplicated invoice number before sending it")
	logger.WithFallback(ctx, n.logger).Warn("Duplicating with an unconfirmed invoice number",
		zap.String("invoice_number", last.Number),
		zap.Error(cause))

	return NumberResult{
		Number:  last.Number,
		Outcome: shared.OutcomeDegraded,
		Reason:  cause.Error(),
	}
}
