package persistence

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/invoicer/backend/internal/domain/invoice"
	"github.com/invoicer/backend/internal/domain/report"
	"github.com/invoicer/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormPaymentInfoRepository(t *testing.T) {
	db := setupInvoiceTestDB(t)
	repo := NewGormPaymentInfoRepository(db)
	ctx := context.Background()
	userID := uuid.New()

	t.Run("returns not found before the first save", func(t *testing.T) {
		_, err := repo.Find(ctx, userID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("inserts then replaces the single row", func(t *testing.T) {
		require.NoError(t, repo.Save(ctx, userID, invoice.PaymentInfo{AccountName: "Acme", AccountNumber: "111", IFSC: "HDFC0001"}))
		require.NoError(t, repo.Save(ctx, userID, invoice.PaymentInfo{AccountName: "Acme Pvt", AccountNumber: "222", IFSC: "ICIC0002"}))

		info, err := repo.Find(ctx, userID)
		require.NoError(t, err)
		assert.Equal(t, "Acme Pvt", info.AccountName)
		assert.Equal(t, "222", info.AccountNumber)
		assert.Equal(t, "ICIC0002", info.IFSC)
	})
}

func TestGormRevenueReportRepository(t *testing.T) {
	db := setupInvoiceTestDB(t)
	invoices := NewGormInvoiceRepository(db)
	repo := NewGormRevenueReportRepository(db)
	ctx := context.Background()
	userID := uuid.New()

	for i, day := range []int{1, 15, 30} {
		inv := newTestInvoice(userID, fmt.Sprintf("INV202406%04d", i+1), "Acme", time.Date(2024, 6, day, 0, 0, 0, 0, time.UTC))
		require.NoError(t, invoices.Create(ctx, inv))
	}
	require.NoError(t, invoices.Create(ctx, newTestInvoice(userID, "INV2024070001", "Acme", time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC))))
	require.NoError(t, invoices.Create(ctx, newTestInvoice(uuid.New(), "INV2024060001", "Other", time.Date(2024, 6, 2, 0, 0, 0, 0, time.UTC))))

	entries, err := repo.ListRevenueEntries(ctx, userID, report.DateRange{
		Start: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	require.Len(t, entries, 3, "range bounds are inclusive and scoped to the user")
	assert.Equal(t, 1, entries[0].Date.Day())
	assert.Equal(t, 30, entries[2].Date.Day())
	for _, e := range entries {
		assert.True(t, e.Total.GreaterThan(decimal.Zero))
	}
}
