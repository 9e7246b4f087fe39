package handler

import (
	"github.com/gin-gonic/gin"

	paymentapp "github.com/relove/backend/internal/application/payment"
)

// PaymentHandler handles client-initiated payment confirmation
type PaymentHandler struct {
	BaseHandler
	confirmationService *paymentapp.ConfirmationService
}

// NewPaymentHandler creates a new PaymentHandler
func NewPaymentHandler(confirmationService *paymentapp.ConfirmationService) *PaymentHandler {
	return &PaymentHandler{confirmationService: confirmationService}
}

// RegisterRoutes registers all payment routes
func (h *PaymentHandler) RegisterRoutes(rg *gin.RouterGroup) {
	payments := rg.Group("/payments")
	{
		payments.POST("/confirm", h.Confirm)
	}
}

// ConfirmPaymentRequest asks the platform to verify a completed checkout
// against the gateway.
type ConfirmPaymentRequest struct {
	OrderCode string `json:"order_code" binding:"required,min=1,max=64"`
}

// Confirm godoc
// @Summary      Confirm payment for an order
// @Description  Verify the payment intent with the gateway and mark the order paid. Safe to retry.
// @Tags         payments
// @Accept       json
// @Produce      json
// @Param        request body ConfirmPaymentRequest true "Payment confirmation request"
// @Success      200 {object} dto.Response{data=paymentapp.ConfirmationResponse}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      502 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /payments/confirm [post]
func (h *PaymentHandler) Confirm(c *gin.Context) {
	actor, ok := h.getActor(c)
	if !ok {
		return
	}

	var req ConfirmPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.confirmationService.ConfirmPayment(c.Request.Context(), actor, req.OrderCode)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}
