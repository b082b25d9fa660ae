package persistence

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/invoicer/backend/internal/infrastructure/persistence/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOwnerScope(t *testing.T) {
	db := setupInvoiceTestDB(t)
	repo := NewGormInvoiceRepository(db)
	ctx := context.Background()
	owner, other := uuid.New(), uuid.New()
	date := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)

	require.NoError(t, repo.Create(ctx, newTestInvoice(owner, "INV2024060001", "Acme Traders", date)))
	require.NoError(t, repo.Create(ctx, newTestInvoice(owner, "INV2024060002", "Globex", date)))
	require.NoError(t, repo.Create(ctx, newTestInvoice(other, "INV2024060001", "Initech", date)))

	t.Run("returns only the owner's rows", func(t *testing.T) {
		var count int64
		require.NoError(t, db.Model(&models.InvoiceModel{}).Scopes(OwnerScope("", owner)).Count(&count).Error)
		assert.Equal(t, int64(2), count)
	})

	t.Run("qualifies the column for joins", func(t *testing.T) {
		var names []string
		err := db.Model(&models.InvoiceModel{}).
			Joins("JOIN clients ON clients.id = invoices.client_id").
			Scopes(OwnerScope("invoices", other)).
			Pluck("clients.name", &names).Error
		require.NoError(t, err)
		assert.Equal(t, []string{"Initech"}, names)
	})

	t.Run("fails without an owner", func(t *testing.T) {
		var count int64
		err := db.Model(&models.InvoiceModel{}).Scopes(OwnerScope("", uuid.Nil)).Count(&count).Error
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrOwnerRequired))
	})

	t.Run("repository lookups are scoped", func(t *testing.T) {
		numbers, err := repo.RecentNumbers(ctx, other, 10)
		require.NoError(t, err)
		assert.Equal(t, []string{"INV2024060001"}, numbers)

		_, err = repo.RecentNumbers(ctx, uuid.Nil, 10)
		assert.ErrorIs(t, err, ErrOwnerRequired)
	})
}
