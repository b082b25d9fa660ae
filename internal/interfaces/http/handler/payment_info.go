package handler

import (
	"github.com/gin-gonic/gin"
	invoiceapp "github.com/invoicer/backend/internal/application/invoice"
)

// PaymentInfoHandler handles the user's bank account details
type PaymentInfoHandler struct {
	BaseHandler
	paymentInfoService *invoiceapp.PaymentInfoService
}

// NewPaymentInfoHandler creates a new PaymentInfoHandler
func NewPaymentInfoHandler(paymentInfoService *invoiceapp.PaymentInfoService) *PaymentInfoHandler {
	return &PaymentInfoHandler{
		paymentInfoService: paymentInfoService,
	}
}

// Get godoc
// @ID           getPaymentInfo
// @Summary      Get payment info
// @Description  Returns the saved bank account, or the configured default with is_default set when none is saved.
// @Tags         payment-info
// @Produce      json
// @Success      200 {object} APIResponse[invoiceapp.PaymentInfoResponse]
// @Failure      401 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /payment-info [get]
func (h *PaymentInfoHandler) Get(c *gin.Context) {
	result, err := h.paymentInfoService.Get(c.Request.Context(), getUserID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// Update godoc
// @ID           updatePaymentInfo
// @Summary      Save payment info
// @Description  Creates or replaces the single bank account printed on new invoices.
// @Tags         payment-info
// @Accept       json
// @Produce      json
// @Param        request body invoiceapp.PaymentInfoRequest true "Bank account"
// @Success      200 {object} APIResponse[invoiceapp.PaymentInfoResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /payment-info [put]
func (h *PaymentInfoHandler) Update(c *gin.Context) {
	var req invoiceapp.PaymentInfoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	result, err := h.paymentInfoService.Update(c.Request.Context(), getUserID(c), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}
