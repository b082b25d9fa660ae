package invoice

import (
	"context"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/invoicer/backend/internal/domain/invoice"
	"github.com/invoicer/backend/internal/domain/shared"
	"github.com/invoicer/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// Search lists the user's invoices matching the request, newest first.
// The joined query is tried first; on any error the separate-queries
// strategy answers and the result is marked degraded.
func (s *Service) Search(ctx context.Context, userID uuid.UUID, req SearchRequest) (*SearchResponse, error) {
	if err := requireSession(userID, msgSignInToView); err != nil {
		return nil, err
	}

	ctx, span := telemetry.StartServiceSpan(ctx, "invoice", "search", telemetry.SpanAttrUserID, userID.String())
	defer span.End()

	criteria, outcome, reason, err := s.buildCriteria(ctx, userID, req)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	page, err := s.invoices.SearchJoined(ctx, criteria)
	if err != nil {
		cause := errors.WithHint(errors.Wrap(err, "joined invoice search"),
			"invoices were loaded with separate client and item queries")
		s.log(ctx).Warn("Joined invoice search failed, using separate queries", zap.Error(cause))

		page, err = s.invoices.SearchSeparate(ctx, criteria)
		if err != nil {
			s.metrics.OutcomeRecorded(ctx, OperationSearch, shared.OutcomeFailed)
			s.log(ctx).Error("Invoice search failed", zap.Error(err))
			telemetry.RecordError(span, err)
			return nil, errors.Wrap(err, "search invoices")
		}
		outcome, reason = shared.OutcomeDegraded, joinReasons(reason, cause.Error())
	}
	s.metrics.OutcomeRecorded(ctx, OperationSearch, outcome)
	telemetry.SetAttributes(span, telemetry.SpanAttrOutcome, outcome.String(), "result_count", int64(page.Count))

	data := make([]InvoiceResponse, len(page.Invoices))
	for i := range page.Invoices {
		data[i] = ToInvoiceResponse(&page.Invoices[i])
	}

	return &SearchResponse{
		Data:        data,
		Count:       page.Count,
		TotalPages:  shared.TotalPages(page.Count, criteria.PageSize),
		CurrentPage: criteria.Page,
		PageSize:    criteria.PageSize,
		Outcome:     outcome,
		Reason:      reason,
	}, nil
}

// buildCriteria resolves the free-text query and filters. A failed client
// lookup degrades to an invoice-number match.
func (s *Service) buildCriteria(ctx context.Context, userID uuid.UUID, req SearchRequest) (invoice.SearchCriteria, shared.Outcome, string, error) {
	outcome, reason := shared.OutcomeIdeal, ""

	status, err := invoice.NormalizeStatusFilter(req.Status)
	if err != nil {
		return invoice.SearchCriteria{}, "", "", err
	}
	paymentType, err := invoice.NormalizePaymentTypeFilter(req.PaymentType)
	if err != nil {
		return invoice.SearchCriteria{}, "", "", err
	}
	start, err := parseFilterDate(req.StartDate, "Start date")
	if err != nil {
		return invoice.SearchCriteria{}, "", "", err
	}
	end, err := parseFilterDate(req.EndDate, "End date")
	if err != nil {
		return invoice.SearchCriteria{}, "", "", err
	}
	if start != nil && end != nil && end.Before(*start) {
		return invoice.SearchCriteria{}, "", "", shared.NewDomainError("INVALID_DATE_RANGE", "End date cannot be before start date")
	}

	var matched []uuid.UUID
	if q := strings.TrimSpace(req.Query); q != "" && !invoice.IsNumericQuery(q) {
		matched, err = s.invoices.MatchClientIDs(ctx, userID, q)
		if err != nil {
			cause := errors.Wrap(err, "match client names")
			s.log(ctx).Warn("Client name lookup failed, matching invoice numbers only", zap.Error(cause))
			outcome, reason, matched = shared.OutcomeDegraded, cause.Error(), nil
		}
	}
	numberContains, clientIDs := invoice.ResolveQuery(req.Query, matched)

	page, pageSize := shared.NormalizePage(req.Page, req.PageSize)
	return invoice.SearchCriteria{
		UserID:         userID,
		NumberContains: numberContains,
		ClientIDs:      clientIDs,
		Filters: invoice.SearchFilters{
			StartDate:   start,
			EndDate:     end,
			Status:      status,
			PaymentType: paymentType,
		},
		Page:     page,
		PageSize: pageSize,
	}, outcome, reason, nil
}

func parseFilterDate(value, field string) (*time.Time, error) {
	t, err := parseRequestDate(value, "INVALID_DATE", field)
	if err != nil || t.IsZero() {
		return nil, err
	}
	return &t, nil
}
