package invoice

import (
	"context"
	"errors"
	"testing"

	"github.com/invoicer/backend/internal/domain/invoice"
	"github.com/invoicer/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestService_Import(t *testing.T) {
	ctx := context.Background()

	t.Run("imports new numbers and skips known ones", func(t *testing.T) {
		d := newTestDeps(t)
		fresh, known, repeated := storedInvoice(), storedInvoice(), storedInvoice()
		fresh.InvoiceNumber = "INV2026010001"
		known.InvoiceNumber = "INV2026010002"
		repeated.InvoiceNumber = "INV2026010001"

		d.invoices.On("NumberExists", mock.Anything, testUserID, "INV2026010001", mock.Anything).Return(false, nil)
		d.invoices.On("NumberExists", mock.Anything, testUserID, "INV2026010002", mock.Anything).Return(true, nil)
		d.invoices.On("Create", mock.Anything, fresh).Return(nil)

		result, err := d.service.Import(ctx, testUserID, []*invoice.Invoice{fresh, known, repeated, nil})

		require.NoError(t, err)
		assert.Equal(t, 1, result.Imported)
		assert.Equal(t, 3, result.Skipped)
		assert.Empty(t, result.Errors)
		assert.Equal(t, shared.OutcomeIdeal, result.Outcome)
		assert.Equal(t, []string{OperationImport}, d.metrics.created)
	})

	t.Run("invalid rows are reported and the rest still import", func(t *testing.T) {
		d := newTestDeps(t)
		bad, good := storedInvoice(), storedInvoice()
		bad.InvoiceNumber = "INV2026010003"
		bad.Items = nil
		good.InvoiceNumber = "INV2026010004"
		d.invoices.On("NumberExists", mock.Anything, testUserID, "INV2026010004", mock.Anything).Return(false, nil)
		d.invoices.On("Create", mock.Anything, good).Return(nil)

		result, err := d.service.Import(ctx, testUserID, []*invoice.Invoice{bad, good})

		require.NoError(t, err)
		assert.Equal(t, 1, result.Imported)
		require.Len(t, result.Errors, 1)
		assert.Contains(t, result.Errors[0], "INV2026010003")
		assert.Equal(t, shared.OutcomeDegraded, result.Outcome)
	})

	t.Run("store errors stop the import", func(t *testing.T) {
		d := newTestDeps(t)
		inv := storedInvoice()
		d.invoices.On("NumberExists", mock.Anything, testUserID, inv.InvoiceNumber, mock.Anything).Return(false, errors.New("offline"))

		_, err := d.service.Import(ctx, testUserID, []*invoice.Invoice{inv})

		require.Error(t, err)
		d.invoices.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}
