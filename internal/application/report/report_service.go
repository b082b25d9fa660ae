package report

import (
	"context"
	"encoding/csv"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/invoicer/backend/internal/domain/report"
	"github.com/invoicer/backend/internal/domain/shared"
	"github.com/invoicer/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

const dateLayout = "2006-01-02"

// RevenueRequest selects the report range. A preset wins over explicit
// dates; with neither the previous and current month are covered.
type RevenueRequest struct {
	Preset    string `form:"preset" binding:"omitempty,oneof=last_30_days this_month last_month"`
	StartDate string `form:"start_date" binding:"omitempty,datetime=2006-01-02"`
	EndDate   string `form:"end_date" binding:"omitempty,datetime=2006-01-02"`
}

// RevenueReportResponse is a revenue report with the range it covers
type RevenueReportResponse struct {
	Range  report.DateRange `json:"range"`
	Preset string           `json:"preset,omitempty"`
	report.RevenueReport
}

// ReportService provides revenue report operations
type ReportService struct {
	repo     report.RevenueReportRepository
	now      func() time.Time
	location *time.Location
	logger   *zap.Logger
}

// Option configures a ReportService
type Option func(*ReportService)

// WithClock sets the time source presets resolve against
func WithClock(now func() time.Time) Option {
	return func(s *ReportService) {
		s.now = now
	}
}

// WithLocation sets the timezone of "this month"
func WithLocation(loc *time.Location) Option {
	return func(s *ReportService) {
		if loc != nil {
			s.location = loc
		}
	}
}

// WithLogger sets the logger
func WithLogger(l *zap.Logger) Option {
	return func(s *ReportService) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewReportService creates a new ReportService
func NewReportService(repo report.RevenueReportRepository, opts ...Option) *ReportService {
	s := &ReportService{
		repo:     repo,
		now:      time.Now,
		location: time.UTC,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Revenue builds the revenue report of the user over the requested range
func (s *ReportService) Revenue(ctx context.Context, userID uuid.UUID, req RevenueRequest) (*RevenueReportResponse, error) {
	if userID == uuid.Nil {
		return nil, shared.ErrNoSession.WithMessage("Please sign in to view reports")
	}

	rng, err := s.ResolveRange(req)
	if err != nil {
		return nil, err
	}

	entries, err := s.repo.ListRevenueEntries(ctx, userID, rng)
	if err != nil {
		logger.WithFallback(ctx, s.logger).Error("Loading revenue entries failed", zap.Error(err))
		return nil, errors.Wrap(err, "load revenue entries")
	}

	return &RevenueReportResponse{
		Range:         rng,
		Preset:        req.Preset,
		RevenueReport: report.BuildRevenueReport(entries, rng),
	}, nil
}

// ResolveRange turns a request into a validated date range. A single
// explicit bound is completed from the default range.
func (s *ReportService) ResolveRange(req RevenueRequest) (report.DateRange, error) {
	now := s.now().In(s.location)

	if p := strings.TrimSpace(req.Preset); p != "" {
		return report.Preset(p).Range(now)
	}

	rng := report.DefaultRange(now)
	if req.StartDate != "" {
		start, err := time.Parse(dateLayout, req.StartDate)
		if err != nil {
			return report.DateRange{}, shared.NewDomainError("INVALID_DATE", "Start date must be a date in YYYY-MM-DD format")
		}
		rng.Start = start
	}
	if req.EndDate != "" {
		end, err := time.Parse(dateLayout, req.EndDate)
		if err != nil {
			return report.DateRange{}, shared.NewDomainError("INVALID_DATE", "End date must be a date in YYYY-MM-DD format")
		}
		rng.End = end
	}
	if err := rng.Validate(); err != nil {
		return report.DateRange{}, err
	}
	return rng, nil
}

// ExportCSV writes the monthly breakdown, newest month first, as CSV
func (s *ReportService) ExportCSV(ctx context.Context, userID uuid.UUID, req RevenueRequest, w io.Writer) error {
	resp, err := s.Revenue(ctx, userID, req)
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Month", "Invoices", "Revenue", "Average"}); err != nil {
		return errors.Wrap(err, "write csv header")
	}
	for _, m := range resp.Breakdown {
		row := []string{
			m.Label,
			strconv.FormatInt(m.Count, 10),
			m.Revenue.StringFixed(2),
			m.AvgValue.StringFixed(2),
		}
		if err := cw.Write(row); err != nil {
			return errors.Wrap(err, "write csv row")
		}
	}
	cw.Flush()
	return cw.Error()
}

// ExportFilename names the CSV download of a range
func ExportFilename(rng report.DateRange) string {
	return "revenue-" + rng.Start.Format(dateLayout) + "-to-" + rng.End.Format(dateLayout) + ".csv"
}
