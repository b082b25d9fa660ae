package report

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/invoicer/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// RevenueEntry is the part of an invoice that revenue reports aggregate
type RevenueEntry struct {
	InvoiceID uuid.UUID
	Date      time.Time
	Total     decimal.Decimal
	TaxAmount decimal.Decimal
}

// DateRange is an inclusive range of calendar days
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Contains reports whether t falls on a day inside the range
func (r DateRange) Contains(t time.Time) bool {
	day := dayOf(t)
	return !day.Before(dayOf(r.Start)) && !day.After(dayOf(r.End))
}

// Validate rejects empty or inverted ranges
func (r DateRange) Validate() error {
	if r.Start.IsZero() || r.End.IsZero() {
		return shared.NewDomainError("INVALID_DATE_RANGE", "Start and end dates are required")
	}
	if dayOf(r.End).Before(dayOf(r.Start)) {
		return shared.NewDomainError("INVALID_DATE_RANGE", "End date cannot be before start date")
	}
	return nil
}

// Preset names a commonly used report range
type Preset string

const (
	PresetLast30Days Preset = "last_30_days"
	PresetThisMonth  Preset = "this_month"
	PresetLastMonth  Preset = "last_month"
)

// IsValid checks if the preset is known
func (p Preset) IsValid() bool {
	switch p {
	case PresetLast30Days, PresetThisMonth, PresetLastMonth:
		return true
	}
	return false
}

// Range resolves the preset against the current time
func (p Preset) Range(now time.Time) (DateRange, error) {
	switch p {
	case PresetLast30Days:
		return DateRange{Start: now.AddDate(0, 0, -30), End: now}, nil
	case PresetThisMonth:
		return DateRange{Start: startOfMonth(now), End: endOfMonth(now)}, nil
	case PresetLastMonth:
		last := startOfMonth(now).AddDate(0, -1, 0)
		return DateRange{Start: last, End: endOfMonth(last)}, nil
	}
	return DateRange{}, shared.NewDomainError("INVALID_PRESET", "Preset must be last_30_days, this_month or last_month")
}

// DefaultRange covers the previous and the current calendar month
func DefaultRange(now time.Time) DateRange {
	return DateRange{
		Start: startOfMonth(now).AddDate(0, -1, 0),
		End:   endOfMonth(now),
	}
}

// RevenueSummary is the headline figures of a report
type RevenueSummary struct {
	PeriodStart    time.Time       `json:"period_start"`
	PeriodEnd      time.Time       `json:"period_end"`
	TotalRevenue   decimal.Decimal `json:"total_revenue"`
	InvoiceCount   int64           `json:"invoice_count"`
	AverageInvoice decimal.Decimal `json:"average_invoice"`
	TaxCollected   decimal.Decimal `json:"tax_collected"`
}

// MonthlyRevenue aggregates the invoices issued in one calendar month
type MonthlyRevenue struct {
	Month      time.Time       `json:"month"`
	Label      string          `json:"label"`
	ShortLabel string          `json:"short_label"`
	Revenue    decimal.Decimal `json:"revenue"`
	Count      int64           `json:"count"`
	AvgValue   decimal.Decimal `json:"avg_value"`
}

// RevenueReport is the full revenue read model for a date range.
// Trend runs oldest month first, Breakdown newest month first.
type RevenueReport struct {
	Summary   RevenueSummary   `json:"summary"`
	Trend     []MonthlyRevenue `json:"trend"`
	Breakdown []MonthlyRevenue `json:"breakdown"`
}

// RevenueReportRepository reads revenue entries for a user
type RevenueReportRepository interface {
	// ListRevenueEntries returns every invoice of the user issued inside the range
	ListRevenueEntries(ctx context.Context, userID uuid.UUID, rng DateRange) ([]RevenueEntry, error)
}

// BuildRevenueReport aggregates entries into summary and monthly series.
// Entries outside the range are ignored; months without invoices are kept.
func BuildRevenueReport(entries []RevenueEntry, rng DateRange) RevenueReport {
	summary := RevenueSummary{
		PeriodStart:    rng.Start,
		PeriodEnd:      rng.End,
		TotalRevenue:   decimal.Zero,
		AverageInvoice: decimal.Zero,
		TaxCollected:   decimal.Zero,
	}

	var months []MonthlyRevenue
	index := make(map[time.Time]int)
	for m := startOfMonth(rng.Start); !m.After(startOfMonth(rng.End)); m = m.AddDate(0, 1, 0) {
		index[m] = len(months)
		months = append(months, MonthlyRevenue{
			Month:      m,
			Label:      m.Format("January 2006"),
			ShortLabel: m.Format("Jan 2006"),
			Revenue:    decimal.Zero,
			AvgValue:   decimal.Zero,
		})
	}

	for _, e := range entries {
		if !rng.Contains(e.Date) {
			continue
		}
		summary.TotalRevenue = summary.TotalRevenue.Add(e.Total)
		summary.TaxCollected = summary.TaxCollected.Add(e.TaxAmount)
		summary.InvoiceCount++

		if i, ok := index[startOfMonth(e.Date)]; ok {
			months[i].Revenue = months[i].Revenue.Add(e.Total)
			months[i].Count++
		}
	}

	summary.AverageInvoice = average(summary.TotalRevenue, summary.InvoiceCount)
	for i := range months {
		months[i].AvgValue = average(months[i].Revenue, months[i].Count)
	}

	breakdown := make([]MonthlyRevenue, len(months))
	for i, m := range months {
		breakdown[len(months)-1-i] = m
	}

	return RevenueReport{
		Summary:   summary,
		Trend:     months,
		Breakdown: breakdown,
	}
}

func average(sum decimal.Decimal, count int64) decimal.Decimal {
	if count == 0 {
		return decimal.Zero
	}
	return sum.Div(decimal.NewFromInt(count)).Round(2)
}

func dayOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func startOfMonth(t time.Time) time.Time {
	y, m, _ := t.Date()
	return time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
}

func endOfMonth(t time.Time) time.Time {
	return startOfMonth(t).AddDate(0, 1, 0).Add(-time.Nanosecond)
}
