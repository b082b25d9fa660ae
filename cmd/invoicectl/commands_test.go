package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	invoiceapp "github.com/invoicer/backend/internal/application/invoice"
	reportapp "github.com/invoicer/backend/internal/application/report"
	"github.com/invoicer/backend/internal/domain/invoice"
	"github.com/invoicer/backend/internal/domain/shared"
	"github.com/invoicer/backend/internal/infrastructure/persistence"
	"github.com/invoicer/backend/internal/infrastructure/persistence/models"
	"github.com/invoicer/backend/internal/infrastructure/printing"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var (
	fixedNow = time.Date(2026, time.March, 14, 10, 30, 0, 0, time.UTC)
	ownerID  = uuid.MustParse("7f3c1a52-8d1e-4b8a-9c35-2f1d0e6b4a10")
)

const exportedRows = `[
  {
    "id": "0b6f3f4e-7a61-4d8f-9a0e-5c1d2b3a4f01",
    "invoice_number": "INV2026030001",
    "date": "2026-03-02",
    "status": "paid",
    "payment_type": "bank",
    "discount_type": "percentage",
    "discount_value": "10",
    "tax_mode": "igst",
    "tax_rate": "18",
    "total": "1",
    "clients": {"id": "5d0e1f2a-3b4c-4d5e-8f60-718293a4b5c6", "name": "Acme Traders", "gstin": null},
    "invoice_items": [{"description": "Design", "quantity": 2, "unit_price": "2000"}],
    "created_at": "2026-03-02T09:00:00Z"
  },
  {
    "invoice_number": "INV2026030002",
    "date": "2026-03-05T00:00:00Z",
    "clients": [{"name": "Globex"}],
    "invoice_items": [{"description": "Hosting", "quantity": 1, "unit_price": "500"}],
    "payment_info_account_name": "Row Account",
    "created_at": "2026-03-05T09:00:00Z"
  },
  {
    "invoice_number": "INV2026030003",
    "date": "03/07/2026",
    "clients": {"name": "Initech"},
    "invoice_items": [{"description": "Support", "quantity": 1, "unit_price": "100"}]
  }
]`

// useSQLite points the commands at an in-memory database for the test
func useSQLite(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(models.All()...))

	clock := func() time.Time { return fixedNow }
	invoices := persistence.NewGormInvoiceRepository(db)
	payments := invoiceapp.NewPaymentInfoService(persistence.NewGormPaymentInfoRepository(db), nil, invoice.PaymentInfo{
		AccountName:   "Default Co",
		AccountNumber: "999900001111",
		IFSC:          "SBIN0000001",
	}, zap.NewNop())
	svc := &services{
		invoices: invoiceapp.NewService(invoices,
			invoiceapp.NewNumberer(invoices, invoiceapp.WithNumbererClock(clock)),
			payments, printing.NewGofpdfRenderer(nil), invoiceapp.WithClock(clock)),
		payments: payments,
		reports:  reportapp.NewReportService(persistence.NewGormRevenueReportRepository(db), reportapp.WithClock(clock)),
		log:      zap.NewNop(),
		close:    func() error { return nil },
	}

	previous := openServices
	openServices = func(context.Context) (*services, error) { return svc, nil }
	t.Cleanup(func() {
		openServices = previous
		_ = sqlDB.Close()
	})
	return db
}

func runCLI(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	app := newApp()
	var stdout, stderr bytes.Buffer
	app.Writer = &stdout
	app.ErrWriter = &stderr
	err := app.Run(append([]string{"invoicectl"}, args...))
	return stdout.String(), stderr.String(), err
}

func writeRows(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rows.json")
	require.NoError(t, os.WriteFile(path, []byte(exportedRows), 0o600))
	return path
}

func TestImportCommand(t *testing.T) {
	db := useSQLite(t)
	path := writeRows(t)

	out, _, err := runCLI(t, "import", "--user", ownerID.String(), "--file", path)
	require.NoError(t, err)

	var result invoiceapp.ImportResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, 2, result.Imported)
	assert.Equal(t, shared.OutcomeDegraded, result.Outcome)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "row 2")

	var stored models.InvoiceModel
	require.NoError(t, db.Where("invoice_number = ?", "INV2026030001").First(&stored).Error)
	assert.Equal(t, ownerID, stored.UserID)
	assert.True(t, decimal.NewFromInt(4248).Equal(stored.Total), "totals are recomputed from the row inputs")

	var second models.InvoiceModel
	require.NoError(t, db.Where("invoice_number = ?", "INV2026030002").First(&second).Error)
	assert.Equal(t, "Row Account", second.AccountName)
	assert.Equal(t, "999900001111", second.AccountNumber)

	t.Run("importing again skips existing numbers", func(t *testing.T) {
		out, _, err := runCLI(t, "import", "--user", ownerID.String(), "--file", path)
		require.NoError(t, err)

		var again invoiceapp.ImportResult
		require.NoError(t, json.Unmarshal([]byte(out), &again))
		assert.Equal(t, 0, again.Imported)
		assert.Equal(t, 2, again.Skipped)
	})
}

func TestImportCommand_DryRun(t *testing.T) {
	db := useSQLite(t)

	out, _, err := runCLI(t, "import", "--dry-run", "-u", ownerID.String(), "-f", writeRows(t))
	require.NoError(t, err)

	var result invoiceapp.ImportResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, 0, result.Imported)
	assert.Len(t, result.Errors, 1)

	var count int64
	require.NoError(t, db.Model(&models.InvoiceModel{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestImportCommand_DryRunValidates(t *testing.T) {
	useSQLite(t)
	path := filepath.Join(t.TempDir(), "rows.json")
	require.NoError(t, os.WriteFile(path, []byte(`[
	  {"invoice_number": "INV2026030010", "date": "2026-03-02", "tax_rate": "18.125",
	   "clients": {"name": "Acme Traders"},
	   "invoice_items": [{"description": "Design", "quantity": 1, "unit_price": "100"}]},
	  {"invoice_number": "INV2026030011", "date": "2026-03-02",
	   "clients": {"name": ""},
	   "invoice_items": [{"description": "Design", "quantity": 1, "unit_price": "100"}]},
	  {"invoice_number": "INV2026030012", "date": "2026-03-02",
	   "clients": {"name": "Globex"},
	   "invoice_items": [{"description": "Hosting", "quantity": 1, "unit_price": "100"}]}
	]`), 0o600))

	out, _, err := runCLI(t, "import", "--dry-run", "--user", ownerID.String(), "--file", path)
	require.NoError(t, err)

	var result invoiceapp.ImportResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, shared.OutcomeDegraded, result.Outcome)
	require.Len(t, result.Errors, 2)
	assert.Contains(t, result.Errors[0], "row 0: Tax rate can have at most 2 decimal places")
	assert.Contains(t, result.Errors[1], "row 1: Client name cannot be empty")
}

func TestImportCommand_SameExportForTwoUsers(t *testing.T) {
	db := useSQLite(t)
	path := filepath.Join(t.TempDir(), "rows.json")
	require.NoError(t, os.WriteFile(path, []byte(`[
	  {"id": "0b6f3f4e-7a61-4d8f-9a0e-5c1d2b3a4f01", "user_id": "`+ownerID.String()+`",
	   "invoice_number": "INV2026030001", "date": "2026-03-02",
	   "clients": {"id": "5d0e1f2a-3b4c-4d5e-8f60-718293a4b5c6", "name": "Acme Traders"},
	   "invoice_items": [{"id": "9a8b7c6d-5e4f-4a3b-8c2d-1e0f9a8b7c6d", "description": "Design", "quantity": 1, "unit_price": "100"}]}
	]`), 0o600))

	secondUser := uuid.New()
	for _, user := range []uuid.UUID{ownerID, secondUser} {
		out, _, err := runCLI(t, "import", "--user", user.String(), "--file", path)
		require.NoError(t, err)

		var result invoiceapp.ImportResult
		require.NoError(t, json.Unmarshal([]byte(out), &result))
		assert.Equal(t, 1, result.Imported, "import for %s: %v", user, result.Errors)
	}

	var owned models.InvoiceModel
	require.NoError(t, db.Where("user_id = ?", ownerID).First(&owned).Error)
	assert.Equal(t, uuid.MustParse("0b6f3f4e-7a61-4d8f-9a0e-5c1d2b3a4f01"), owned.ID)

	var copied models.InvoiceModel
	require.NoError(t, db.Where("user_id = ?", secondUser).First(&copied).Error)
	assert.NotEqual(t, owned.ID, copied.ID)
	assert.NotEqual(t, owned.ClientID, copied.ClientID)
}

func TestImportCommand_Errors(t *testing.T) {
	useSQLite(t)

	t.Run("rejects a malformed user id", func(t *testing.T) {
		_, _, err := runCLI(t, "import", "--user", "nobody", "--file", writeRows(t))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "--user must be a UUID")
	})

	t.Run("requires the file flag", func(t *testing.T) {
		_, _, err := runCLI(t, "import", "--user", ownerID.String())
		require.Error(t, err)
	})

	t.Run("reports undecodable files", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "rows.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"not":"a list"}`), 0o600))

		_, _, err := runCLI(t, "import", "--user", ownerID.String(), "--file", path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "decode rows")
	})
}

func TestNextNumberCommand(t *testing.T) {
	useSQLite(t)

	out, stderr, err := runCLI(t, "next-number", "--user", ownerID.String())
	require.NoError(t, err)
	assert.Equal(t, "INV2026030001\n", out)
	assert.Empty(t, stderr)

	_, _, err = runCLI(t, "import", "--user", ownerID.String(), "--file", writeRows(t))
	require.NoError(t, err)

	out, _, err = runCLI(t, "next-number", "--user", ownerID.String())
	require.NoError(t, err)
	assert.Equal(t, "INV2026030003\n", out)
}

func TestReportCommand(t *testing.T) {
	useSQLite(t)

	t.Run("writes the csv header", func(t *testing.T) {
		out, _, err := runCLI(t, "report", "--user", ownerID.String(), "--preset", "this_month")
		require.NoError(t, err)
		assert.Contains(t, out, "Month,Invoices,Revenue,Average")
	})

	t.Run("rejects an unknown preset", func(t *testing.T) {
		_, _, err := runCLI(t, "report", "--user", ownerID.String(), "--preset", "forever")
		require.Error(t, err)
	})

	t.Run("rejects a reversed range", func(t *testing.T) {
		_, _, err := runCLI(t, "report", "--user", ownerID.String(), "--start", "2026-03-10", "--end", "2026-03-01")
		require.Error(t, err)
	})
}

func TestNormalizeRows(t *testing.T) {
	var rows []persistence.StoreInvoiceRow
	require.NoError(t, json.Unmarshal([]byte(exportedRows), &rows))

	invoices, problems := normalizeRows(rows, ownerID, invoice.PaymentInfo{AccountName: "Fallback"})
	require.Len(t, invoices, 2)
	assert.Equal(t, []string{"row 2: Row INV2026030003 has an invalid date"}, problems)
	assert.Equal(t, "Fallback", invoices[0].PaymentInfo.AccountName)
	assert.Equal(t, "Globex", invoices[1].Client.Name)
}
