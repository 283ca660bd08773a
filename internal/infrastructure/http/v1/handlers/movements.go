package handlers

import (
	"github.com/gin-gonic/gin"

	"liquorpos/internal/domain/audit"
	"liquorpos/internal/domain/movement"
)

// MovementHandler serves the movement log and the audit trail.
type MovementHandler struct {
	BaseHandler
	movements *movement.Service
	audits    *audit.Service
}

// NewMovementHandler creates a movement handler.
func NewMovementHandler(movements *movement.Service, audits *audit.Service) *MovementHandler {
	return &MovementHandler{movements: movements, audits: audits}
}

// List returns movements filtered by product, type, category and range.
// GET /api/v1/movements?product=&type=&category=&from=&to=&limit=&offset=
func (h *MovementHandler) List(c *gin.Context) {
	filter := movement.ListFilter{
		Limit:  h.ParseIntQuery(c, "limit", 100),
		Offset: h.ParseIntQuery(c, "offset", 0),
	}
	if v := c.Query("product"); v != "" {
		productID, ok := h.ParseID(c, v)
		if !ok {
			return
		}
		filter.ProductID = &productID
	}
	if v := c.Query("type"); v != "" {
		typ := movement.Type(v)
		filter.Type = &typ
	}
	if v := c.Query("category"); v != "" {
		cat := movement.Category(v)
		filter.Category = &cat
	}
	if v := c.Query("from"); v != "" {
		day, ok := h.ParseDay(c, v)
		if !ok {
			return
		}
		filter.DateFrom = &day
	}
	if v := c.Query("to"); v != "" {
		day, ok := h.ParseDay(c, v)
		if !ok {
			return
		}
		filter.DateTo = &day
	}

	items, err := h.movements.List(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, gin.H{"items": items, "count": len(items)})
}

// Summary aggregates movements by category and type over a range.
// GET /api/v1/movements/summary?from=&to=
func (h *MovementHandler) Summary(c *gin.Context) {
	from, to, ok := h.ParseRangeQuery(c)
	if !ok {
		return
	}

	rows, err := h.movements.Summary(c.Request.Context(), from, to)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, gin.H{"items": rows, "count": len(rows)})
}

// Trail returns audit records filtered by product, change type and range.
// GET /api/v1/audit?product=&type=&by=&from=&to=&limit=&offset=
func (h *MovementHandler) Trail(c *gin.Context) {
	filter := audit.TrailFilter{
		ChangedBy: c.Query("by"),
		Limit:     h.ParseIntQuery(c, "limit", 100),
		Offset:    h.ParseIntQuery(c, "offset", 0),
	}
	if v := c.Query("product"); v != "" {
		productID, ok := h.ParseID(c, v)
		if !ok {
			return
		}
		filter.ProductID = &productID
	}
	if v := c.Query("type"); v != "" {
		ct := audit.ChangeType(v)
		filter.ChangeType = &ct
	}
	if v := c.Query("from"); v != "" {
		day, ok := h.ParseDay(c, v)
		if !ok {
			return
		}
		filter.DateFrom = &day
	}
	if v := c.Query("to"); v != "" {
		day, ok := h.ParseDay(c, v)
		if !ok {
			return
		}
		filter.DateTo = &day
	}

	items, err := h.audits.Trail(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, gin.H{"items": items, "count": len(items)})
}

// TrailSummary aggregates audit records by change type over a range.
// GET /api/v1/audit/summary?from=&to=
func (h *MovementHandler) TrailSummary(c *gin.Context) {
	from, to, ok := h.ParseRangeQuery(c)
	if !ok {
		return
	}

	rows, err := h.audits.Summary(c.Request.Context(), from, to)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, gin.H{"items": rows, "count": len(rows)})
}
