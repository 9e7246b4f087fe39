package handler

import (
	"github.com/gin-gonic/gin"

	orderapp "github.com/relove/backend/internal/application/order"
)

// OrderHandler handles order lifecycle API endpoints
type OrderHandler struct {
	BaseHandler
	orderService *orderapp.Service
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(orderService *orderapp.Service) *OrderHandler {
	return &OrderHandler{orderService: orderService}
}

// RegisterRoutes registers all order routes
func (h *OrderHandler) RegisterRoutes(rg *gin.RouterGroup) {
	orders := rg.Group("/orders")
	{
		orders.POST("", h.Place)
		orders.GET("", h.ListMine)
		orders.GET("/sales", h.ListSales)
		orders.GET("/code/:code", h.GetByCode)
		orders.GET("/:id", h.GetByID)
		orders.POST("/:id/items/:item_id/cancel", h.CancelItem)
		orders.POST("/:id/items/:item_id/dispute", h.OpenDispute)
	}
}

// Place godoc
// @Summary      Place a new order
// @Description  Create an order with escrow transactions for one or more second-hand listings
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        request body orderapp.PlaceOrderRequest true "Order placement request"
// @Success      201 {object} dto.Response{data=orderapp.OrderResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      502 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /orders [post]
func (h *OrderHandler) Place(c *gin.Context) {
	actor, ok := h.getActor(c)
	if !ok {
		return
	}

	var req orderapp.PlaceOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.orderService.PlaceOrder(c.Request.Context(), actor, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, resp)
}

// GetByID godoc
// @Summary      Get order by ID
// @Tags         orders
// @Produce      json
// @Param        id path string true "Order ID" format(uuid)
// @Success      200 {object} dto.Response{data=orderapp.OrderResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /orders/{id} [get]
func (h *OrderHandler) GetByID(c *gin.Context) {
	actor, ok := h.getActor(c)
	if !ok {
		return
	}

	orderID, err := parseUUIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid order ID format")
		return
	}

	resp, err := h.orderService.GetByID(c.Request.Context(), actor, orderID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// GetByCode godoc
// @Summary      Get order by order code
// @Tags         orders
// @Produce      json
// @Param        code path string true "Order code"
// @Success      200 {object} dto.Response{data=orderapp.OrderResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /orders/code/{code} [get]
func (h *OrderHandler) GetByCode(c *gin.Context) {
	actor, ok := h.getActor(c)
	if !ok {
		return
	}

	code := c.Param("code")
	if code == "" {
		h.BadRequest(c, "Missing order code")
		return
	}

	resp, err := h.orderService.GetByCode(c.Request.Context(), actor, code)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// ListMine godoc
// @Summary      List the caller's purchases
// @Tags         orders
// @Produce      json
// @Param        page query int false "Page number"
// @Param        page_size query int false "Page size"
// @Param        status query string false "Filter by order status"
// @Success      200 {object} dto.Response{data=[]orderapp.OrderResponse}
// @Security     BearerAuth
// @Router       /orders [get]
func (h *OrderHandler) ListMine(c *gin.Context) {
	actor, ok := h.getActor(c)
	if !ok {
		return
	}

	req, err := bindListRequest(c)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	page, err := h.orderService.ListByBuyer(c.Request.Context(), actor, toFilter(req))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// ListSales godoc
// @Summary      List orders containing the caller's listings
// @Tags         orders
// @Produce      json
// @Param        page query int false "Page number"
// @Param        page_size query int false "Page size"
// @Param        status query string false "Filter by order status"
// @Success      200 {object} dto.Response{data=[]orderapp.OrderResponse}
// @Security     BearerAuth
// @Router       /orders/sales [get]
func (h *OrderHandler) ListSales(c *gin.Context) {
	actor, ok := h.getActor(c)
	if !ok {
		return
	}

	req, err := bindListRequest(c)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	page, err := h.orderService.ListBySeller(c.Request.Context(), actor, toFilter(req))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// CancelItem godoc
// @Summary      Cancel an order item
// @Description  Cancel a single item before it is picked up. A paid item is refunded through the gateway.
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        id path string true "Order ID" format(uuid)
// @Param        item_id path string true "Order item ID" format(uuid)
// @Param        request body orderapp.CancelItemRequest true "Cancellation reason"
// @Success      200 {object} dto.Response{data=orderapp.OrderResponse}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /orders/{id}/items/{item_id}/cancel [post]
func (h *OrderHandler) CancelItem(c *gin.Context) {
	actor, ok := h.getActor(c)
	if !ok {
		return
	}

	orderID, itemID, ok := h.itemParams(c)
	if !ok {
		return
	}

	var req orderapp.CancelItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.orderService.CancelItem(c.Request.Context(), actor, orderID, itemID, req.Reason)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// OpenDispute godoc
// @Summary      Open a dispute on a delivered item
// @Description  Freeze the escrow release countdown until an operator resolves the dispute
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        id path string true "Order ID" format(uuid)
// @Param        item_id path string true "Order item ID" format(uuid)
// @Param        request body orderapp.DisputeRequest true "Dispute reason"
// @Success      200 {object} dto.Response{data=orderapp.OrderResponse}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /orders/{id}/items/{item_id}/dispute [post]
func (h *OrderHandler) OpenDispute(c *gin.Context) {
	actor, ok := h.getActor(c)
	if !ok {
		return
	}

	orderID, itemID, ok := h.itemParams(c)
	if !ok {
		return
	}

	var req orderapp.DisputeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.orderService.OpenDispute(c.Request.Context(), actor, orderID, itemID, req.Reason)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

