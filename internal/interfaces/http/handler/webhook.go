package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	paymentapp "github.com/relove/backend/internal/application/payment"
	"github.com/relove/backend/internal/domain/payment"
	"github.com/relove/backend/internal/interfaces/http/dto"
)

// SignatureHeader carries the gateway's payload signature
const SignatureHeader = "Stripe-Signature"

// WebhookHandler receives asynchronous payment notifications from the
// gateway. It is registered outside the authenticated API group; the
// payload signature is the only credential.
type WebhookHandler struct {
	BaseHandler
	confirmationService *paymentapp.ConfirmationService
	logger              *zap.Logger
}

// NewWebhookHandler creates a new WebhookHandler
func NewWebhookHandler(confirmationService *paymentapp.ConfirmationService, logger *zap.Logger) *WebhookHandler {
	return &WebhookHandler{
		confirmationService: confirmationService,
		logger:              logger,
	}
}

// RegisterRoutes registers the webhook route
func (h *WebhookHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/webhooks/stripe", h.HandleStripe)
}

// HandleStripe godoc
// @Summary      Receive a payment gateway webhook
// @Description  Verifies the payload signature and applies the payment outcome to the order.
// @Tags         webhooks
// @Accept       json
// @Produce      json
// @Param        Stripe-Signature header string true "Payload signature"
// @Success      200 {object} dto.Response
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /webhooks/stripe [post]
func (h *WebhookHandler) HandleStripe(c *gin.Context) {
	payload, err := c.GetRawData()
	if err != nil {
		h.BadRequest(c, "Unable to read payload")
		return
	}

	signature := c.GetHeader(SignatureHeader)
	if signature == "" {
		h.Error(c, http.StatusBadRequest, dto.ErrCodeBadRequest, "Missing signature header")
		return
	}

	err = h.confirmationService.HandleWebhook(c.Request.Context(), payload, signature)
	if err != nil {
		// Signature and payload failures are the sender's fault and must
		// not be retried. Anything else returns 500 so the gateway
		// redelivers the event.
		if errors.Is(err, payment.ErrInvalidSignature) || errors.Is(err, payment.ErrInvalidPayload) {
			h.logger.Warn("rejected webhook",
				zap.Error(err),
			)
			h.BadRequest(c, "Invalid webhook")
			return
		}
		h.logger.Error("webhook processing failed",
			zap.Error(err),
		)
		h.InternalError(c, "Webhook processing failed")
		return
	}

	h.Success(c, gin.H{"received": true})
}
