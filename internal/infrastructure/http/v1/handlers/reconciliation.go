package handlers

import (
	"github.com/gin-gonic/gin"

	"liquorpos/internal/core/id"
	"liquorpos/internal/domain/reconciliation"
	"liquorpos/internal/infrastructure/http/v1/dto"
)

// ReconciliationHandler serves physical-count sessions.
type ReconciliationHandler struct {
	BaseHandler
	service *reconciliation.Service
}

// NewReconciliationHandler creates a reconciliation handler.
func NewReconciliationHandler(service *reconciliation.Service) *ReconciliationHandler {
	return &ReconciliationHandler{service: service}
}

// Create opens a counting session for a day.
// POST /api/v1/reconciliations
func (h *ReconciliationHandler) Create(c *gin.Context) {
	var req dto.CreateSessionRequest
	if !h.BindJSON(c, &req) {
		return
	}
	day, ok := h.ParseDay(c, req.Date)
	if !ok {
		return
	}

	productIDs := make([]id.ID, 0, len(req.ProductIDs))
	for _, raw := range req.ProductIDs {
		productID, ok := h.ParseID(c, raw)
		if !ok {
			return
		}
		productIDs = append(productIDs, productID)
	}

	session, err := h.service.Create(c.Request.Context(), day, req.Notes, productIDs)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, session.ID.String())
}

// Get returns one session with its items.
// GET /api/v1/reconciliations/:id
func (h *ReconciliationHandler) Get(c *gin.Context) {
	sessionID, ok := h.ParseID(c, c.Param("id"))
	if !ok {
		return
	}

	session, err := h.service.GetByID(c.Request.Context(), sessionID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, session)
}

// List returns sessions filtered by status and date range.
// GET /api/v1/reconciliations?status=&from=&to=&limit=&offset=
func (h *ReconciliationHandler) List(c *gin.Context) {
	filter := reconciliation.ListFilter{
		Limit:  h.ParseIntQuery(c, "limit", 50),
		Offset: h.ParseIntQuery(c, "offset", 0),
	}
	if v := c.Query("status"); v != "" {
		status := reconciliation.Status(v)
		filter.Status = &status
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

	items, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, gin.H{"items": items, "count": len(items)})
}

// RecordCount records one physical count into an in-progress session.
// POST /api/v1/reconciliations/:id/counts
func (h *ReconciliationHandler) RecordCount(c *gin.Context) {
	sessionID, ok := h.ParseID(c, c.Param("id"))
	if !ok {
		return
	}
	var req dto.RecordCountRequest
	if !h.BindJSON(c, &req) {
		return
	}
	productID, ok := h.ParseID(c, req.ProductID)
	if !ok {
		return
	}

	session, err := h.service.RecordCount(c.Request.Context(), sessionID, productID, req.PhysicalStock)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, session)
}

// Submit moves a session to pending approval.
// POST /api/v1/reconciliations/:id/submit
func (h *ReconciliationHandler) Submit(c *gin.Context) {
	sessionID, ok := h.ParseID(c, c.Param("id"))
	if !ok {
		return
	}
	var req dto.SubmitRequest
	if !h.BindJSON(c, &req) {
		return
	}

	session, err := h.service.Submit(c.Request.Context(), sessionID, req.AllowPartial)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, session)
}

// Approve approves a session, optionally applying adjustments.
// POST /api/v1/reconciliations/:id/approve
func (h *ReconciliationHandler) Approve(c *gin.Context) {
	sessionID, ok := h.ParseID(c, c.Param("id"))
	if !ok {
		return
	}
	var req dto.ApproveRequest
	if !h.BindJSON(c, &req) {
		return
	}

	result, err := h.service.Approve(c.Request.Context(), sessionID, req.ApplyAdjustments)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, result)
}

// Reject rejects a session with a reason.
// POST /api/v1/reconciliations/:id/reject
func (h *ReconciliationHandler) Reject(c *gin.Context) {
	sessionID, ok := h.ParseID(c, c.Param("id"))
	if !ok {
		return
	}
	var req dto.RejectRequest
	if !h.BindJSON(c, &req) {
		return
	}

	session, err := h.service.Reject(c.Request.Context(), sessionID, req.Reason)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, session)
}

// Apply applies approved counts to live stock and the ledger.
// POST /api/v1/reconciliations/:id/apply
func (h *ReconciliationHandler) Apply(c *gin.Context) {
	sessionID, ok := h.ParseID(c, c.Param("id"))
	if !ok {
		return
	}

	result, err := h.service.ApplyAdjustments(c.Request.Context(), sessionID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, result)
}
