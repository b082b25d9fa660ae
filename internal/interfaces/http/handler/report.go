package handler

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	reportapp "github.com/invoicer/backend/internal/application/report"
)

// ReportHandler handles revenue report endpoints
type ReportHandler struct {
	BaseHandler
	reportService *reportapp.ReportService
}

// NewReportHandler creates a new ReportHandler
func NewReportHandler(reportService *reportapp.ReportService) *ReportHandler {
	return &ReportHandler{
		reportService: reportService,
	}
}

// Revenue godoc
// @ID           getRevenueReport
// @Summary      Get revenue report
// @Description  Daily revenue and tax over a preset or explicit date range. Without either the previous and current month are covered.
// @Tags         reports
// @Produce      json
// @Param        preset     query string false "Range preset" Enums(last_30_days, this_month, last_month)
// @Param        start_date query string false "Range start (YYYY-MM-DD)"
// @Param        end_date   query string false "Range end (YYYY-MM-DD)"
// @Success      200 {object} APIResponse[reportapp.RevenueReportResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /reports/revenue [get]
func (h *ReportHandler) Revenue(c *gin.Context) {
	var req reportapp.RevenueRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BindError(c, err)
		return
	}

	result, err := h.reportService.Revenue(c.Request.Context(), getUserID(c), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// ExportRevenue godoc
// @ID           exportRevenueReport
// @Summary      Export revenue report as CSV
// @Tags         reports
// @Produce      text/csv
// @Param        preset     query string false "Range preset" Enums(last_30_days, this_month, last_month)
// @Param        start_date query string false "Range start (YYYY-MM-DD)"
// @Param        end_date   query string false "Range end (YYYY-MM-DD)"
// @Success      200 {file} file
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /reports/revenue/export [get]
func (h *ReportHandler) ExportRevenue(c *gin.Context) {
	var req reportapp.RevenueRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BindError(c, err)
		return
	}

	rng, err := h.reportService.ResolveRange(req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	// Buffered so a failure can still be reported as JSON
	var buf bytes.Buffer
	if err := h.reportService.ExportCSV(c.Request.Context(), getUserID(c), req, &buf); err != nil {
		h.HandleError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", reportapp.ExportFilename(rng)))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}
