// Package metrics registers the Prometheus instruments used across the
// service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	SalesRecordedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "stock_sales_recorded_total",
		Help: "Total number of sale lines applied to the ledger",
	})

	InwardRecordedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "stock_inward_recorded_total",
		Help: "Total number of inward lines applied to the ledger",
	})

	ManualAdjustmentsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "stock_manual_adjustments_total",
		Help: "Total number of manual stock adjustments",
	})

	LedgerEntriesCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "stock_ledger_entries_created_total",
		Help: "Total number of daily ledger entries created",
	})

	IntegrityIssuesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "stock_integrity_issues_total",
		Help: "Total number of ledger entries repaired by integrity validation",
	})

	ReconciliationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stock_reconciliations_total",
		Help: "Total number of reconciliation sessions by final status",
	}, []string{"status"})

	ReconciliationVarianceApplied = promauto.NewCounter(prometheus.CounterOpts{
		Name: "stock_reconciliation_items_applied_total",
		Help: "Total number of reconciliation items applied to live stock",
	})

	DailyCloseLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "stock_daily_close_latency_seconds",
		Help:    "Latency of the daily close pipeline",
		Buckets: prometheus.DefBuckets,
	})

	LowStockAlertsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "stock_low_stock_alerts_total",
		Help: "Total number of low stock alerts raised",
	})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	RateLimitRejectionsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "http_rate_limit_rejections_total",
		Help: "Total number of requests rejected by the rate limiter",
	})
)
