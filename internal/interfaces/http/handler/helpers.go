package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/relove/backend/internal/domain/shared"
	"github.com/relove/backend/internal/interfaces/http/dto"
)

// parseUUIDParam parses a UUID path parameter. An empty UUID and an error
// are returned for malformed values; callers respond with BadRequest.
func parseUUIDParam(c *gin.Context, name string) (uuid.UUID, error) {
	return uuid.Parse(c.Param(name))
}

// itemParams parses the order and item UUID path parameters, writing a
// 400 response on failure. The boolean reports whether both parsed.
func (h *BaseHandler) itemParams(c *gin.Context) (uuid.UUID, uuid.UUID, bool) {
	orderID, err := parseUUIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid order ID format")
		return uuid.Nil, uuid.Nil, false
	}
	itemID, err := parseUUIDParam(c, "item_id")
	if err != nil {
		h.BadRequest(c, "Invalid item ID format")
		return uuid.Nil, uuid.Nil, false
	}
	return orderID, itemID, true
}

// bindListRequest binds pagination query parameters, applying defaults for
// anything the client omitted.
func bindListRequest(c *gin.Context) (dto.ListRequest, error) {
	req := dto.DefaultListRequest()
	if err := c.ShouldBindQuery(&req); err != nil {
		return req, err
	}
	if req.Page == 0 {
		req.Page = 1
	}
	if req.PageSize == 0 {
		req.PageSize = 20
	}
	if req.OrderBy == "" {
		req.OrderBy = "created_at"
	}
	if req.OrderDir == "" {
		req.OrderDir = "desc"
	}
	return req, nil
}

// toFilter converts list request parameters into a repository filter
func toFilter(req dto.ListRequest) shared.Filter {
	filter := shared.Filter{
		Page:     req.Page,
		PageSize: req.PageSize,
		OrderBy:  req.OrderBy,
		OrderDir: req.OrderDir,
		Filters:  make(map[string]interface{}),
	}
	if req.Status != "" {
		filter.Filters["status"] = req.Status
	}
	return filter
}
