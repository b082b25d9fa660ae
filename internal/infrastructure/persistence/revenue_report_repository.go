package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/invoicer/backend/internal/domain/invoice"
	"github.com/invoicer/backend/internal/domain/report"
	"github.com/invoicer/backend/internal/infrastructure/persistence/models"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormRevenueReportRepository implements report.RevenueReportRepository using GORM
type GormRevenueReportRepository struct {
	db *gorm.DB
}

// NewGormRevenueReportRepository creates a new GormRevenueReportRepository
func NewGormRevenueReportRepository(db *gorm.DB) *GormRevenueReportRepository {
	return &GormRevenueReportRepository{db: db}
}

type revenueRow struct {
	ID        uuid.UUID
	Date      time.Time
	Total     decimal.Decimal
	TaxAmount decimal.Decimal
}

// ListRevenueEntries returns the user's invoices issued inside the range, oldest first
func (r *GormRevenueReportRepository) ListRevenueEntries(ctx context.Context, userID uuid.UUID, rng report.DateRange) ([]report.RevenueEntry, error) {
	var rows []revenueRow
	err := r.db.WithContext(ctx).
		Model(&models.InvoiceModel{}).
		Select("id, date, total, tax_amount").
		Scopes(OwnerScope("", userID)).
		Where("date >= ? AND date <= ?", invoice.DateOnly(rng.Start), invoice.DateOnly(rng.End)).
		Order("date ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	return lo.Map(rows, func(row revenueRow, _ int) report.RevenueEntry {
		return report.RevenueEntry{
			InvoiceID: row.ID,
			Date:      row.Date,
			Total:     row.Total,
			TaxAmount: row.TaxAmount,
		}
	}), nil
}
