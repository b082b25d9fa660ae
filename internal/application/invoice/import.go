package invoice

import (
	"context"
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/invoicer/backend/internal/domain/invoice"
	"github.com/invoicer/backend/internal/domain/shared"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

// ImportResult summarizes a bulk import
type ImportResult struct {
	Imported int            `json:"imported"`
	Skipped  int            `json:"skipped"`
	Errors   []string       `json:"errors,omitempty"`
	Outcome  shared.Outcome `json:"outcome"`
}

// Import stores invoices read from an export for the user. Invoices whose
// number the user already has, or that repeat a number earlier in the batch,
// are skipped. An invalid invoice is reported and the rest still import.
func (s *Service) Import(ctx context.Context, userID uuid.UUID, invoices []*invoice.Invoice) (*ImportResult, error) {
	if err := requireSession(userID, msgSignInToAdd); err != nil {
		return nil, err
	}

	result := &ImportResult{Outcome: shared.OutcomeIdeal}
	batch := lo.Filter(invoices, func(inv *invoice.Invoice, _ int) bool { return inv != nil })
	batch = lo.UniqBy(batch, func(inv *invoice.Invoice) string { return inv.InvoiceNumber })
	result.Skipped = len(invoices) - len(batch)

	for _, inv := range batch {
		inv.UserID = userID
		if err := inv.Validate(); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %s", inv.InvoiceNumber, err.Error()))
			continue
		}

		exists, err := s.invoices.NumberExists(ctx, userID, inv.InvoiceNumber, nil)
		if err != nil {
			return result, errors.Wrapf(err, "check invoice number %s", inv.InvoiceNumber)
		}
		if exists {
			result.Skipped++
			continue
		}

		inv.Recalculate()
		if inv.PaymentInfo.IsZero() {
			if o, r := s.snapshotPaymentInfo(ctx, inv); o.IsDegraded() {
				result.Outcome = o
				result.Errors = append(result.Errors, fmt.Sprintf("%s: %s", inv.InvoiceNumber, r))
			}
		}

		if err := s.invoices.Create(ctx, inv); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %s", inv.InvoiceNumber, err.Error()))
			continue
		}
		result.Imported++
		s.metrics.InvoiceCreated(ctx, OperationImport)
	}

	if len(result.Errors) > 0 {
		result.Outcome = shared.OutcomeDegraded
	}
	s.metrics.OutcomeRecorded(ctx, OperationImport, result.Outcome)
	s.log(ctx).Info("Invoices imported",
		zap.Int("imported", result.Imported),
		zap.Int("skipped", result.Skipped),
		zap.Int("errors", len(result.Errors)))

	return result, nil
}
