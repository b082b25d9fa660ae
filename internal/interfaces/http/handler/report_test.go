package handler

import (
	"net/http"
	"strings"
	"testing"

	reportapp "github.com/invoicer/backend/internal/application/report"
	"github.com/invoicer/backend/internal/interfaces/http/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReportHandler_Revenue(t *testing.T) {
	env := newTestEnv(t)
	env.createInvoice(t, "INV2026030001")

	t.Run("resolves a preset against the clock", func(t *testing.T) {
		w := env.do(t, http.MethodGet, "/reports/revenue?preset=this_month", ownerToken, nil)

		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		resp := decode[reportapp.RevenueReportResponse](t, w)
		assert.Equal(t, "this_month", resp.Data.Preset)
		assert.Equal(t, "2026-03-01", resp.Data.Range.Start.Format("2006-01-02"))
		assert.Equal(t, "2026-03-31", resp.Data.Range.End.Format("2006-01-02"))
	})

	t.Run("rejects an unknown preset", func(t *testing.T) {
		w := env.do(t, http.MethodGet, "/reports/revenue?preset=forever", ownerToken, nil)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, dto.ErrCodeValidation, decode[any](t, w).Error.Code)
	})

	t.Run("rejects an inverted range", func(t *testing.T) {
		w := env.do(t, http.MethodGet, "/reports/revenue?start_date=2026-03-10&end_date=2026-03-01", ownerToken, nil)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "ERR_INVALID_DATE_RANGE", decode[any](t, w).Error.Code)
	})

	t.Run("requires a session", func(t *testing.T) {
		w := env.do(t, http.MethodGet, "/reports/revenue", "", nil)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestReportHandler_ExportRevenue(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/reports/revenue/export?start_date=2026-02-01&end_date=2026-03-31", ownerToken, nil)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.True(t, strings.HasPrefix(w.Header().Get("Content-Type"), "text/csv"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "revenue-2026-02-01-to-2026-03-31.csv")
	assert.True(t, strings.HasPrefix(w.Body.String(), "Month,Invoices,Revenue,Average\n"))
}
