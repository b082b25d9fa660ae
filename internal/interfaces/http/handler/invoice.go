package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	invoiceapp "github.com/invoicer/backend/internal/application/invoice"
)

const (
	// PDFEngineHeader names the engine that produced a downloaded PDF
	PDFEngineHeader = "X-PDF-Engine"
	// PDFFallbackHeader is "true" when the preferred engine failed
	PDFFallbackHeader = "X-PDF-Fallback"
)

// InvoiceHandler handles invoice-related API endpoints
type InvoiceHandler struct {
	BaseHandler
	invoiceService *invoiceapp.Service
}

// NewInvoiceHandler creates a new InvoiceHandler
func NewInvoiceHandler(invoiceService *invoiceapp.Service) *InvoiceHandler {
	return &InvoiceHandler{
		invoiceService: invoiceService,
	}
}

// NumberAvailabilityQuery asks whether an invoice number is still free
// @Description Query for checking invoice number availability
type NumberAvailabilityQuery struct {
	Number    string `form:"number" binding:"required,max=50" example:"INV2026010042"`
	ExcludeID string `form:"exclude_id" binding:"omitempty,uuid" example:"550e8400-e29b-41d4-a716-446655440000"`
}

// List godoc
// @ID           listInvoices
// @Summary      List invoices
// @Description  Search the signed-in user's invoices by number or client name with date, status and payment type filters.
// @Description  When filters cannot be applied the full list is returned and the outcome is "degraded".
// @Tags         invoices
// @Produce      json
// @Param        q            query string false "Search text"
// @Param        page         query int    false "Page number" default(1)
// @Param        page_size    query int    false "Page size" default(10)
// @Param        start_date   query string false "Earliest invoice date (YYYY-MM-DD)"
// @Param        end_date     query string false "Latest invoice date (YYYY-MM-DD)"
// @Param        status       query string false "Status filter" Enums(All, Paid, Unpaid)
// @Param        payment_type query string false "Payment type filter" Enums(All, Advance, Full Payment)
// @Success      200 {object} APIResponse[invoiceapp.SearchResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /invoices [get]
func (h *InvoiceHandler) List(c *gin.Context) {
	var req invoiceapp.SearchRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BindError(c, err)
		return
	}

	result, err := h.invoiceService.Search(c.Request.Context(), getUserID(c), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SetOutcome(c, result.Outcome)
	h.Success(c, result)
}

// Create godoc
// @ID           createInvoice
// @Summary      Create an invoice
// @Description  Save a new invoice. A blank number is generated; the payment info in effect is snapshotted onto the invoice.
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Param        request body invoiceapp.InvoiceRequest true "Invoice"
// @Success      201 {object} APIResponse[invoiceapp.InvoiceResult]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /invoices [post]
func (h *InvoiceHandler) Create(c *gin.Context) {
	var req invoiceapp.InvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	result, err := h.invoiceService.Create(c.Request.Context(), getUserID(c), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SetOutcome(c, result.Outcome)
	h.Created(c, result)
}

// Defaults godoc
// @ID           getInvoiceDefaults
// @Summary      Get a blank invoice
// @Description  Returns the values a new invoice form starts with, including a generated number and the current payment info.
// @Tags         invoices
// @Produce      json
// @Success      200 {object} APIResponse[invoiceapp.InvoiceResult]
// @Failure      401 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /invoices/defaults [get]
func (h *InvoiceHandler) Defaults(c *gin.Context) {
	result, err := h.invoiceService.Defaults(c.Request.Context(), getUserID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SetOutcome(c, result.Outcome)
	h.Success(c, result)
}

// Preview godoc
// @ID           previewInvoice
// @Summary      Preview invoice totals
// @Description  Computes line totals, discount, tax and grand total without saving anything.
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Param        request body invoiceapp.InvoiceRequest true "Invoice"
// @Success      200 {object} APIResponse[invoiceapp.PreviewResponse]
// @Failure      400 {object} ErrorResponse
// @Router       /invoices/preview [post]
func (h *InvoiceHandler) Preview(c *gin.Context) {
	var req invoiceapp.InvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	result, err := h.invoiceService.Preview(req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// NextNumber godoc
// @ID           getNextInvoiceNumber
// @Summary      Generate the next invoice number
// @Description  Returns INVYYYYMMNNNN continuing the current month's sequence. A date-based number is returned with outcome "degraded" when the sequence cannot be read.
// @Tags         invoices
// @Produce      json
// @Success      200 {object} APIResponse[invoiceapp.NumberResponse]
// @Failure      401 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /invoices/next-number [get]
func (h *InvoiceHandler) NextNumber(c *gin.Context) {
	result, err := h.invoiceService.NextNumber(c.Request.Context(), getUserID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SetOutcome(c, result.Outcome)
	h.Success(c, result)
}

// CheckNumber godoc
// @ID           checkInvoiceNumber
// @Summary      Check invoice number availability
// @Tags         invoices
// @Produce      json
// @Param        number     query string true  "Invoice number"
// @Param        exclude_id query string false "Invoice being edited"
// @Success      200 {object} APIResponse[invoiceapp.NumberAvailabilityResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /invoices/number-availability [get]
func (h *InvoiceHandler) CheckNumber(c *gin.Context) {
	var query NumberAvailabilityQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.BindError(c, err)
		return
	}

	var excludeID *uuid.UUID
	if query.ExcludeID != "" {
		id := uuid.MustParse(query.ExcludeID)
		excludeID = &id
	}

	result, err := h.invoiceService.CheckNumber(c.Request.Context(), getUserID(c), query.Number, excludeID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// Get godoc
// @ID           getInvoice
// @Summary      Get an invoice
// @Tags         invoices
// @Produce      json
// @Param        id path string true "Invoice ID" format(uuid)
// @Success      200 {object} APIResponse[invoiceapp.InvoiceResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /invoices/{id} [get]
func (h *InvoiceHandler) Get(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		h.InvalidID(c)
		return
	}

	result, err := h.invoiceService.Get(c.Request.Context(), getUserID(c), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// Update godoc
// @ID           updateInvoice
// @Summary      Replace an invoice
// @Description  Replaces every field and line item of an invoice. The number must stay unique among the user's invoices.
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Param        id      path string                    true "Invoice ID" format(uuid)
// @Param        request body invoiceapp.InvoiceRequest true "Invoice"
// @Success      200 {object} APIResponse[invoiceapp.InvoiceResult]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /invoices/{id} [put]
func (h *InvoiceHandler) Update(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		h.InvalidID(c)
		return
	}

	var req invoiceapp.InvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	result, err := h.invoiceService.Update(c.Request.Context(), getUserID(c), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SetOutcome(c, result.Outcome)
	h.Success(c, result)
}

// Delete godoc
// @ID           deleteInvoice
// @Summary      Delete an invoice
// @Tags         invoices
// @Param        id path string true "Invoice ID" format(uuid)
// @Success      204
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /invoices/{id} [delete]
func (h *InvoiceHandler) Delete(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		h.InvalidID(c)
		return
	}

	if err := h.invoiceService.Delete(c.Request.Context(), getUserID(c), id); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// Duplicate godoc
// @ID           duplicateInvoice
// @Summary      Duplicate an invoice
// @Description  Copies an invoice under a fresh number dated today. The copy starts unpaid.
// @Tags         invoices
// @Produce      json
// @Param        id path string true "Invoice ID" format(uuid)
// @Success      201 {object} APIResponse[invoiceapp.InvoiceResult]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /invoices/{id}/duplicate [post]
func (h *InvoiceHandler) Duplicate(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		h.InvalidID(c)
		return
	}

	result, err := h.invoiceService.Duplicate(c.Request.Context(), getUserID(c), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SetOutcome(c, result.Outcome)
	h.Created(c, result)
}

// SetStatus godoc
// @ID           setInvoiceStatus
// @Summary      Set invoice status
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Param        id      path string                   true "Invoice ID" format(uuid)
// @Param        request body invoiceapp.StatusRequest true "Status"
// @Success      200 {object} APIResponse[invoiceapp.InvoiceResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /invoices/{id}/status [patch]
func (h *InvoiceHandler) SetStatus(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		h.InvalidID(c)
		return
	}

	var req invoiceapp.StatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	result, err := h.invoiceService.SetStatus(c.Request.Context(), getUserID(c), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// ToggleStatus godoc
// @ID           toggleInvoiceStatus
// @Summary      Toggle invoice status
// @Description  Flips an invoice between Paid and Unpaid.
// @Tags         invoices
// @Produce      json
// @Param        id path string true "Invoice ID" format(uuid)
// @Success      200 {object} APIResponse[invoiceapp.InvoiceResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /invoices/{id}/status/toggle [post]
func (h *InvoiceHandler) ToggleStatus(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		h.InvalidID(c)
		return
	}

	result, err := h.invoiceService.ToggleStatus(c.Request.Context(), getUserID(c), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// UpdateRemark godoc
// @ID           updateInvoiceRemark
// @Summary      Update invoice remark
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Param        id      path string                   true "Invoice ID" format(uuid)
// @Param        request body invoiceapp.RemarkRequest true "Remark"
// @Success      200 {object} APIResponse[invoiceapp.InvoiceResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /invoices/{id}/remark [patch]
func (h *InvoiceHandler) UpdateRemark(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		h.InvalidID(c)
		return
	}

	var req invoiceapp.RemarkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	result, err := h.invoiceService.UpdateRemark(c.Request.Context(), getUserID(c), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// DownloadPDF godoc
// @ID           downloadInvoicePDF
// @Summary      Download invoice PDF
// @Description  Renders the invoice as an A4 PDF. X-PDF-Fallback is "true" when the preferred engine failed and the built-in one was used.
// @Tags         invoices
// @Produce      application/pdf
// @Param        id path string true "Invoice ID" format(uuid)
// @Success      200 {file} file
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /invoices/{id}/pdf [get]
func (h *InvoiceHandler) DownloadPDF(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		h.InvalidID(c)
		return
	}

	file, err := h.invoiceService.RenderPDF(c.Request.Context(), getUserID(c), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Filename))
	c.Header(PDFEngineHeader, file.Engine)
	c.Header(PDFFallbackHeader, strconv.FormatBool(file.FellBack))
	c.Data(http.StatusOK, file.ContentType, file.Content)
}

// ArchivePDF godoc
// @ID           archiveInvoicePDF
// @Summary      Archive invoice PDF
// @Description  Renders the invoice, stores the PDF in object storage and returns a time-limited download link.
// @Tags         invoices
// @Produce      json
// @Param        id path string true "Invoice ID" format(uuid)
// @Success      201 {object} APIResponse[invoiceapp.ArchiveResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      503 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /invoices/{id}/pdf/archive [post]
func (h *InvoiceHandler) ArchivePDF(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		h.InvalidID(c)
		return
	}

	result, err := h.invoiceService.ArchivePDF(c.Request.Context(), getUserID(c), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, result)
}
