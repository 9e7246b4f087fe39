package handler

import (
	"github.com/gin-gonic/gin"

	orderapp "github.com/relove/backend/internal/application/order"
)

// FulfillmentHandler handles the shipping leg of the item lifecycle:
// pickup request, pickup confirmation, dispatch and delivery confirmation.
type FulfillmentHandler struct {
	BaseHandler
	orderService *orderapp.Service
}

// NewFulfillmentHandler creates a new FulfillmentHandler
func NewFulfillmentHandler(orderService *orderapp.Service) *FulfillmentHandler {
	return &FulfillmentHandler{orderService: orderService}
}

// RegisterRoutes registers all fulfillment routes
func (h *FulfillmentHandler) RegisterRoutes(rg *gin.RouterGroup) {
	items := rg.Group("/orders/:id/items/:item_id")
	{
		items.POST("/pickup-request", h.RequestPickup)
		items.POST("/pickup-confirm", h.ConfirmPickup)
		items.POST("/dispatch", h.Dispatch)
		items.POST("/delivery-confirm", h.ConfirmDelivery)
	}
}

// RequestPickup godoc
// @Summary      Request pickup for a paid item
// @Tags         fulfillment
// @Produce      json
// @Param        id path string true "Order ID" format(uuid)
// @Param        item_id path string true "Order item ID" format(uuid)
// @Success      200 {object} dto.Response{data=orderapp.OrderResponse}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /orders/{id}/items/{item_id}/pickup-request [post]
func (h *FulfillmentHandler) RequestPickup(c *gin.Context) {
	actor, ok := h.getActor(c)
	if !ok {
		return
	}

	orderID, itemID, ok := h.itemParams(c)
	if !ok {
		return
	}

	resp, err := h.orderService.RequestPickup(c.Request.Context(), actor, orderID, itemID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// ConfirmPickup godoc
// @Summary      Confirm pickup with photo evidence
// @Tags         fulfillment
// @Accept       json
// @Produce      json
// @Param        id path string true "Order ID" format(uuid)
// @Param        item_id path string true "Order item ID" format(uuid)
// @Param        request body orderapp.EvidenceRequest true "Pickup evidence URLs"
// @Success      200 {object} dto.Response{data=orderapp.OrderResponse}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /orders/{id}/items/{item_id}/pickup-confirm [post]
func (h *FulfillmentHandler) ConfirmPickup(c *gin.Context) {
	actor, ok := h.getActor(c)
	if !ok {
		return
	}

	orderID, itemID, ok := h.itemParams(c)
	if !ok {
		return
	}

	var req orderapp.EvidenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.orderService.ConfirmPickup(c.Request.Context(), actor, orderID, itemID, req.Evidence)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// Dispatch godoc
// @Summary      Mark a picked-up item as in transit
// @Tags         fulfillment
// @Produce      json
// @Param        id path string true "Order ID" format(uuid)
// @Param        item_id path string true "Order item ID" format(uuid)
// @Success      200 {object} dto.Response{data=orderapp.OrderResponse}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /orders/{id}/items/{item_id}/dispatch [post]
func (h *FulfillmentHandler) Dispatch(c *gin.Context) {
	actor, ok := h.getActor(c)
	if !ok {
		return
	}

	orderID, itemID, ok := h.itemParams(c)
	if !ok {
		return
	}

	resp, err := h.orderService.Dispatch(c.Request.Context(), actor, orderID, itemID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// ConfirmDelivery godoc
// @Summary      Confirm delivery with photo evidence
// @Description  Marks the item delivered and starts the escrow release countdown
// @Tags         fulfillment
// @Accept       json
// @Produce      json
// @Param        id path string true "Order ID" format(uuid)
// @Param        item_id path string true "Order item ID" format(uuid)
// @Param        request body orderapp.EvidenceRequest true "Delivery evidence URLs"
// @Success      200 {object} dto.Response{data=orderapp.OrderResponse}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /orders/{id}/items/{item_id}/delivery-confirm [post]
func (h *FulfillmentHandler) ConfirmDelivery(c *gin.Context) {
	actor, ok := h.getActor(c)
	if !ok {
		return
	}

	orderID, itemID, ok := h.itemParams(c)
	if !ok {
		return
	}

	var req orderapp.EvidenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.orderService.ConfirmDelivery(c.Request.Context(), actor, orderID, itemID, req.Evidence)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}
