package handler

import (
	"github.com/gin-gonic/gin"

	adminapp "github.com/relove/backend/internal/application/admin"
	"github.com/relove/backend/internal/domain/shared"
	"github.com/relove/backend/internal/interfaces/http/middleware"
)

// AdminHandler handles operator-only interventions. The router gates the
// whole group on the admin role; the application layer re-checks it.
type AdminHandler struct {
	BaseHandler
	adminService *adminapp.Service
}

// NewAdminHandler creates a new AdminHandler
func NewAdminHandler(adminService *adminapp.Service) *AdminHandler {
	return &AdminHandler{adminService: adminService}
}

// RegisterRoutes registers all admin routes
func (h *AdminHandler) RegisterRoutes(rg *gin.RouterGroup) {
	admin := rg.Group("/admin")
	admin.Use(middleware.RequireRoles(shared.RoleAdmin))
	{
		admin.POST("/orders/:id/items/:item_id/force-status", h.ForceItemStatus)
		admin.POST("/orders/:id/items/:item_id/refund", h.RefundDelivered)
		admin.POST("/orders/:id/items/:item_id/release-escrow", h.ForceReleaseEscrow)
		admin.POST("/orders/:id/items/:item_id/resolve-dispute", h.ResolveDispute)
		admin.GET("/items/:item_id/history", h.ItemHistory)
		admin.GET("/items/:item_id/escrow-releases", h.EscrowReleaseLog)
		admin.POST("/reconciliation/sweep", h.TriggerSweep)
		admin.POST("/escrow/release-scan", h.TriggerReleaseScan)
	}
}

// ResolveDisputeRequest carries the operator's resolution notes
type ResolveDisputeRequest struct {
	Notes string `json:"notes" binding:"required,min=1,max=500"`
}

// ForceItemStatus godoc
// @Summary      Force an item into a target status
// @Description  Bypasses the transition table. Requires an explicit acknowledgement flag and audit notes.
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        id path string true "Order ID" format(uuid)
// @Param        item_id path string true "Order item ID" format(uuid)
// @Param        request body adminapp.ForceStatusRequest true "Force status request"
// @Success      200 {object} dto.Response{data=orderapp.OrderResponse}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/orders/{id}/items/{item_id}/force-status [post]
func (h *AdminHandler) ForceItemStatus(c *gin.Context) {
	actor, ok := h.getActor(c)
	if !ok {
		return
	}

	orderID, itemID, ok := h.itemParams(c)
	if !ok {
		return
	}

	var req adminapp.ForceStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.adminService.ForceItemStatus(c.Request.Context(), actor, orderID, itemID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// RefundDelivered godoc
// @Summary      Refund a delivered item
// @Description  Operator-only escape hatch for items past the buyer's cancellation window
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        id path string true "Order ID" format(uuid)
// @Param        item_id path string true "Order item ID" format(uuid)
// @Param        request body adminapp.RefundRequest true "Refund reason"
// @Success      200 {object} dto.Response{data=orderapp.OrderResponse}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      502 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/orders/{id}/items/{item_id}/refund [post]
func (h *AdminHandler) RefundDelivered(c *gin.Context) {
	actor, ok := h.getActor(c)
	if !ok {
		return
	}

	orderID, itemID, ok := h.itemParams(c)
	if !ok {
		return
	}

	var req adminapp.RefundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.adminService.RefundDelivered(c.Request.Context(), actor, orderID, itemID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// ForceReleaseEscrow godoc
// @Summary      Release an item's escrow ahead of schedule
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        id path string true "Order ID" format(uuid)
// @Param        item_id path string true "Order item ID" format(uuid)
// @Param        request body adminapp.ReleaseRequest true "Release notes"
// @Success      204 "escrow released"
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/orders/{id}/items/{item_id}/release-escrow [post]
func (h *AdminHandler) ForceReleaseEscrow(c *gin.Context) {
	actor, ok := h.getActor(c)
	if !ok {
		return
	}

	orderID, itemID, ok := h.itemParams(c)
	if !ok {
		return
	}

	var req adminapp.ReleaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	if err := h.adminService.ForceReleaseEscrow(c.Request.Context(), actor, orderID, itemID, req); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// ResolveDispute godoc
// @Summary      Resolve an open dispute
// @Description  Unfreezes the escrow release countdown with the operator's resolution notes
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        id path string true "Order ID" format(uuid)
// @Param        item_id path string true "Order item ID" format(uuid)
// @Param        request body ResolveDisputeRequest true "Resolution notes"
// @Success      200 {object} dto.Response{data=orderapp.OrderResponse}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/orders/{id}/items/{item_id}/resolve-dispute [post]
func (h *AdminHandler) ResolveDispute(c *gin.Context) {
	actor, ok := h.getActor(c)
	if !ok {
		return
	}

	orderID, itemID, ok := h.itemParams(c)
	if !ok {
		return
	}

	var req ResolveDisputeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.adminService.ResolveDispute(c.Request.Context(), actor, orderID, itemID, req.Notes)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// ItemHistory godoc
// @Summary      Read an item's transition audit log
// @Tags         admin
// @Produce      json
// @Param        item_id path string true "Order item ID" format(uuid)
// @Success      200 {object} dto.Response{data=[]orderapp.StatusHistoryResponse}
// @Security     BearerAuth
// @Router       /admin/items/{item_id}/history [get]
func (h *AdminHandler) ItemHistory(c *gin.Context) {
	actor, ok := h.getActor(c)
	if !ok {
		return
	}

	itemID, err := parseUUIDParam(c, "item_id")
	if err != nil {
		h.BadRequest(c, "Invalid item ID format")
		return
	}

	rows, err := h.adminService.ItemHistory(c.Request.Context(), actor, itemID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, rows)
}

// EscrowReleaseLog godoc
// @Summary      Read an item's escrow release ledger
// @Description  Immutable audit rows written when the item's escrow was released
// @Tags         admin
// @Produce      json
// @Param        item_id path string true "Order item ID" format(uuid)
// @Success      200 {object} dto.Response{data=[]escrowapp.ReleaseRecord}
// @Security     BearerAuth
// @Router       /admin/items/{item_id}/escrow-releases [get]
func (h *AdminHandler) EscrowReleaseLog(c *gin.Context) {
	actor, ok := h.getActor(c)
	if !ok {
		return
	}

	itemID, err := parseUUIDParam(c, "item_id")
	if err != nil {
		h.BadRequest(c, "Invalid item ID format")
		return
	}

	rows, err := h.adminService.EscrowReleaseLog(c.Request.Context(), actor, itemID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, rows)
}

// TriggerSweep godoc
// @Summary      Run the expired-order sweep immediately
// @Tags         admin
// @Produce      json
// @Success      200 {object} dto.Response{data=reconciliation.SweepReport}
// @Security     BearerAuth
// @Router       /admin/reconciliation/sweep [post]
func (h *AdminHandler) TriggerSweep(c *gin.Context) {
	actor, ok := h.getActor(c)
	if !ok {
		return
	}

	report, err := h.adminService.TriggerSweep(c.Request.Context(), actor)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, report)
}

// TriggerReleaseScan godoc
// @Summary      Run the escrow release scan immediately
// @Tags         admin
// @Produce      json
// @Success      200 {object} dto.Response{data=escrowapp.ReleaseReport}
// @Security     BearerAuth
// @Router       /admin/escrow/release-scan [post]
func (h *AdminHandler) TriggerReleaseScan(c *gin.Context) {
	actor, ok := h.getActor(c)
	if !ok {
		return
	}

	report, err := h.adminService.TriggerReleaseScan(c.Request.Context(), actor)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, report)
}
