package handlers

import (
	"github.com/gin-gonic/gin"

	"liquorpos/internal/core/apperror"
	"liquorpos/internal/domain/documents/inward"
	"liquorpos/internal/domain/documents/sale"
	"liquorpos/internal/infrastructure/http/v1/dto"
)

// DocumentHandler serves sale and stock-receipt documents.
type DocumentHandler struct {
	BaseHandler
	sales    *sale.Service
	receipts *inward.Service
}

// NewDocumentHandler creates a document handler.
func NewDocumentHandler(sales *sale.Service, receipts *inward.Service) *DocumentHandler {
	return &DocumentHandler{sales: sales, receipts: receipts}
}

// CreateSale posts a sale. Every line is applied to the ledger; the
// whole document fails on the first rejected line.
// POST /api/v1/sales
func (h *DocumentHandler) CreateSale(c *gin.Context) {
	var req dto.CreateSaleRequest
	if !h.BindJSON(c, &req) {
		return
	}
	at, ok := h.ParseDay(c, req.Date)
	if !ok {
		return
	}

	lines := make([]sale.LineInput, 0, len(req.Lines))
	for _, l := range req.Lines {
		productID, ok := h.ParseID(c, l.ProductID)
		if !ok {
			return
		}
		price, err := parseMoney(l.UnitPrice)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid unit price: "+l.UnitPrice))
			return
		}
		lines = append(lines, sale.LineInput{ProductID: productID, Quantity: l.Quantity, UnitPrice: price})
	}

	doc, err := h.sales.Create(c.Request.Context(), at, lines)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, doc.ID.String())
}

// GetSale returns one sale.
// GET /api/v1/sales/:id
func (h *DocumentHandler) GetSale(c *gin.Context) {
	saleID, ok := h.ParseID(c, c.Param("id"))
	if !ok {
		return
	}

	doc, err := h.sales.GetByID(c.Request.Context(), saleID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, doc)
}

// ListSales returns sales for one day.
// GET /api/v1/sales?date=YYYY-MM-DD
func (h *DocumentHandler) ListSales(c *gin.Context) {
	day, ok := h.ParseDayQuery(c, "date")
	if !ok {
		return
	}

	items, err := h.sales.ListByDay(c.Request.Context(), day)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, gin.H{"items": items, "count": len(items)})
}

// CreateReceipt posts a stock receipt.
// POST /api/v1/receipts
func (h *DocumentHandler) CreateReceipt(c *gin.Context) {
	var req dto.CreateInwardRequest
	if !h.BindJSON(c, &req) {
		return
	}
	at, ok := h.ParseDay(c, req.Date)
	if !ok {
		return
	}

	lines := make([]inward.LineInput, 0, len(req.Lines))
	for _, l := range req.Lines {
		productID, ok := h.ParseID(c, l.ProductID)
		if !ok {
			return
		}
		cost, err := parseMoney(l.UnitCost)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid unit cost: "+l.UnitCost))
			return
		}
		lines = append(lines, inward.LineInput{ProductID: productID, Quantity: l.Quantity, UnitCost: cost})
	}

	doc, err := h.receipts.Create(c.Request.Context(), at, req.Supplier, lines)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, doc.ID.String())
}

// GetReceipt returns one receipt.
// GET /api/v1/receipts/:id
func (h *DocumentHandler) GetReceipt(c *gin.Context) {
	receiptID, ok := h.ParseID(c, c.Param("id"))
	if !ok {
		return
	}

	doc, err := h.receipts.GetByID(c.Request.Context(), receiptID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, doc)
}

// ListReceipts returns receipts for one day.
// GET /api/v1/receipts?date=YYYY-MM-DD
func (h *DocumentHandler) ListReceipts(c *gin.Context) {
	day, ok := h.ParseDayQuery(c, "date")
	if !ok {
		return
	}

	items, err := h.receipts.ListByDay(c.Request.Context(), day)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, gin.H{"items": items, "count": len(items)})
}
