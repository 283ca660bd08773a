package handlers

import (
	"github.com/gin-gonic/gin"

	"liquorpos/internal/domain/alerts"
	"liquorpos/internal/domain/reports"
)

// ReportHandler serves stock reports and low-stock alerts.
type ReportHandler struct {
	BaseHandler
	reports *reports.Service
	alerts  *alerts.Service
}

// NewReportHandler creates a report handler.
func NewReportHandler(reportSvc *reports.Service, alertSvc *alerts.Service) *ReportHandler {
	return &ReportHandler{reports: reportSvc, alerts: alertSvc}
}

// Daily returns the per-product report for one day, optionally narrowed
// to one category or one product.
// GET /api/v1/reports/daily?date=YYYY-MM-DD&category_id=&product_id=
func (h *ReportHandler) Daily(c *gin.Context) {
	day, ok := h.ParseDayQuery(c, "date")
	if !ok {
		return
	}

	var filter reports.DailyFilter
	if raw := c.Query("category_id"); raw != "" {
		categoryID, ok := h.ParseID(c, raw)
		if !ok {
			return
		}
		filter.CategoryID = &categoryID
	}
	if raw := c.Query("product_id"); raw != "" {
		productID, ok := h.ParseID(c, raw)
		if !ok {
			return
		}
		filter.ProductID = &productID
	}

	report, err := h.reports.Daily(c.Request.Context(), day, filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, report)
}

// Range returns the aggregated report over a date range.
// GET /api/v1/reports/range?from=&to=
func (h *ReportHandler) Range(c *gin.Context) {
	from, to, ok := h.ParseRangeQuery(c)
	if !ok {
		return
	}

	report, err := h.reports.Range(c.Request.Context(), from, to)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, report)
}

// LowStock lists active products at or below their minimum stock.
// GET /api/v1/reports/low-stock
func (h *ReportHandler) LowStock(c *gin.Context) {
	rows, err := h.reports.LowStock(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, gin.H{"items": rows, "count": len(rows)})
}

// Alerts evaluates the alert rule against every active product.
// GET /api/v1/reports/alerts
func (h *ReportHandler) Alerts(c *gin.Context) {
	items, err := h.alerts.Check(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, gin.H{"items": items, "count": len(items)})
}
