package handlers

import (
	"github.com/gin-gonic/gin"

	"liquorpos/internal/domain/ledger"
)

// LedgerHandler serves daily stock entries and the maintenance
// operations of the ledger engine.
type LedgerHandler struct {
	BaseHandler
	engine *ledger.Engine
}

// NewLedgerHandler creates a ledger handler.
func NewLedgerHandler(engine *ledger.Engine) *LedgerHandler {
	return &LedgerHandler{engine: engine}
}

// GetEntry returns the entry for one product and day.
// GET /api/v1/ledger/entries/:productId?date=YYYY-MM-DD
func (h *LedgerHandler) GetEntry(c *gin.Context) {
	productID, ok := h.ParseID(c, c.Param("productId"))
	if !ok {
		return
	}
	day, ok := h.ParseDayQuery(c, "date")
	if !ok {
		return
	}

	entry, err := h.engine.GetEntry(c.Request.Context(), productID, day)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, entry)
}

// ListByDay returns every entry for one day.
// GET /api/v1/ledger/days?date=YYYY-MM-DD
func (h *LedgerHandler) ListByDay(c *gin.Context) {
	day, ok := h.ParseDayQuery(c, "date")
	if !ok {
		return
	}

	entries, err := h.engine.ListByDay(c.Request.Context(), day)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, gin.H{"items": entries, "count": len(entries)})
}

// ListByProduct returns entries for one product over a date range.
// GET /api/v1/ledger/products/:productId?from=&to=
func (h *LedgerHandler) ListByProduct(c *gin.Context) {
	productID, ok := h.ParseID(c, c.Param("productId"))
	if !ok {
		return
	}
	from, to, ok := h.ParseRangeQuery(c)
	if !ok {
		return
	}

	entries, err := h.engine.ListByProduct(c.Request.Context(), productID, from, to)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, gin.H{"items": entries, "count": len(entries)})
}

// Snapshot creates entries for every active product for the given day.
// POST /api/v1/ledger/snapshot?date=YYYY-MM-DD
func (h *LedgerHandler) Snapshot(c *gin.Context) {
	day, ok := h.ParseDayQuery(c, "date")
	if !ok {
		return
	}

	result, err := h.engine.CreateDailySnapshots(c.Request.Context(), day)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, result)
}

// CarryForward sets opening stock for the day from the previous day's
// closing stock.
// POST /api/v1/ledger/carry-forward?date=YYYY-MM-DD
func (h *LedgerHandler) CarryForward(c *gin.Context) {
	day, ok := h.ParseDayQuery(c, "date")
	if !ok {
		return
	}

	result, err := h.engine.CarryForwardOpeningStock(c.Request.Context(), day)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, result)
}

// Sync aligns live product stock to the day's closing snapshot.
// POST /api/v1/ledger/sync?date=YYYY-MM-DD
func (h *LedgerHandler) Sync(c *gin.Context) {
	day, ok := h.ParseDayQuery(c, "date")
	if !ok {
		return
	}

	result, err := h.engine.SyncLiveStockFromSnapshot(c.Request.Context(), day)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, result)
}

// ValidateIntegrity reports derived-field mismatches for one day
// without changing anything.
// GET /api/v1/ledger/validate?date=YYYY-MM-DD
func (h *LedgerHandler) ValidateIntegrity(c *gin.Context) {
	day, ok := h.ParseDayQuery(c, "date")
	if !ok {
		return
	}

	result, err := h.engine.ValidateIntegrity(c.Request.Context(), day)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, result)
}

// RepairIntegrity recomputes and persists inconsistent entries for one
// day.
// POST /api/v1/ledger/repair?date=YYYY-MM-DD
func (h *LedgerHandler) RepairIntegrity(c *gin.Context) {
	day, ok := h.ParseDayQuery(c, "date")
	if !ok {
		return
	}

	result, err := h.engine.RepairIntegrity(c.Request.Context(), day)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, result)
}

// Continuity reports opening/closing mismatches between consecutive
// days over a range.
// GET /api/v1/ledger/continuity?from=&to=
func (h *LedgerHandler) Continuity(c *gin.Context) {
	from, to, ok := h.ParseRangeQuery(c)
	if !ok {
		return
	}

	breaks, err := h.engine.ContinuityReport(c.Request.Context(), from, to)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, gin.H{"items": breaks, "count": len(breaks)})
}
