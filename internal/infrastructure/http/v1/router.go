// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"liquorpos/internal/core/ratelimit"
	"liquorpos/internal/domain/alerts"
	"liquorpos/internal/domain/audit"
	"liquorpos/internal/domain/auth"
	"liquorpos/internal/domain/catalogs/category"
	"liquorpos/internal/domain/catalogs/product"
	"liquorpos/internal/domain/documents/inward"
	"liquorpos/internal/domain/documents/sale"
	"liquorpos/internal/domain/ledger"
	"liquorpos/internal/domain/movement"
	"liquorpos/internal/domain/reconciliation"
	"liquorpos/internal/domain/reports"
	"liquorpos/internal/infrastructure/http/v1/handlers"
	"liquorpos/internal/infrastructure/http/v1/middleware"
	"liquorpos/pkg/logger"
)

// RouterConfig holds the wired services the router exposes.
type RouterConfig struct {
	Logger  *logger.Logger
	Version string

	// DB backs the readiness probe; nil in in-memory mode.
	DB handlers.DBPinger

	AuthService     *auth.Service
	Products        *product.Service
	Categories      *category.Service
	Engine          *ledger.Engine
	Movements       *movement.Service
	Audits          *audit.Service
	Reconciliations *reconciliation.Service
	Sales           *sale.Service
	Receipts        *inward.Service
	Reports         *reports.Service
	Alerts          *alerts.Service

	// RateLimiter is optional; nil disables per-client rate limiting.
	RateLimiter *ratelimit.Limiter
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Global middleware (order matters).
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())

	healthHandler := handlers.NewHealthHandler(cfg.Version, cfg.DB)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
	}
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api/v1")
	{
		authHandler := handlers.NewAuthHandler(cfg.AuthService)
		api.POST("/auth/login", authHandler.Login)
		api.POST("/auth/register", authHandler.Register)

		protected := api.Group("")
		protected.Use(middleware.Auth(cfg.AuthService))
		if cfg.RateLimiter != nil {
			protected.Use(middleware.RateLimit(cfg.RateLimiter))
		}

		registerCatalogRoutes(protected, cfg)
		registerLedgerRoutes(protected, cfg)
		registerMovementRoutes(protected, cfg)
		registerDocumentRoutes(protected, cfg)
		registerReconciliationRoutes(protected, cfg)
		registerReportRoutes(protected, cfg)
	}

	return router
}

func registerCatalogRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	handler := handlers.NewCatalogHandler(cfg.Products, cfg.Categories, cfg.Engine)

	products := rg.Group("/products")
	{
		products.POST("", handler.CreateProduct)
		products.GET("", handler.ListProducts)
		products.GET("/:id", handler.GetProduct)
		products.PUT("/:id", handler.UpdateProduct)
		products.DELETE("/:id", middleware.RequireRole(auth.RoleAdmin, auth.RoleManager), handler.DeactivateProduct)
		products.POST("/:id/adjust-stock", middleware.RequireRole(auth.RoleAdmin, auth.RoleManager), handler.AdjustStock)
	}

	categories := rg.Group("/categories")
	{
		categories.POST("", handler.CreateCategory)
		categories.GET("", handler.ListCategories)
	}
}

func registerLedgerRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	handler := handlers.NewLedgerHandler(cfg.Engine)

	ledgerGroup := rg.Group("/ledger")
	{
		ledgerGroup.GET("/days", handler.ListByDay)
		ledgerGroup.GET("/entries/:productId", handler.GetEntry)
		ledgerGroup.GET("/products/:productId", handler.ListByProduct)
		ledgerGroup.GET("/continuity", handler.Continuity)
		ledgerGroup.GET("/validate", handler.ValidateIntegrity)

		// Maintenance operations, normally run by the worker; integrity
		// repair is operator-only and never scheduled.
		maintenance := ledgerGroup.Group("", middleware.RequireRole(auth.RoleAdmin, auth.RoleManager))
		maintenance.POST("/snapshot", handler.Snapshot)
		maintenance.POST("/carry-forward", handler.CarryForward)
		maintenance.POST("/sync", handler.Sync)
		maintenance.POST("/repair", handler.RepairIntegrity)
	}
}

func registerMovementRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	handler := handlers.NewMovementHandler(cfg.Movements, cfg.Audits)

	rg.GET("/movements", handler.List)
	rg.GET("/movements/summary", handler.Summary)
	rg.GET("/audit", handler.Trail)
	rg.GET("/audit/summary", handler.TrailSummary)
}

func registerDocumentRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	handler := handlers.NewDocumentHandler(cfg.Sales, cfg.Receipts)

	sales := rg.Group("/sales")
	{
		sales.POST("", handler.CreateSale)
		sales.GET("", handler.ListSales)
		sales.GET("/:id", handler.GetSale)
	}

	receipts := rg.Group("/receipts")
	{
		receipts.POST("", handler.CreateReceipt)
		receipts.GET("", handler.ListReceipts)
		receipts.GET("/:id", handler.GetReceipt)
	}
}

func registerReconciliationRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	handler := handlers.NewReconciliationHandler(cfg.Reconciliations)

	sessions := rg.Group("/reconciliations")
	{
		sessions.POST("", handler.Create)
		sessions.GET("", handler.List)
		sessions.GET("/:id", handler.Get)
		sessions.POST("/:id/counts", handler.RecordCount)
		sessions.POST("/:id/submit", handler.Submit)

		// Approval flow is restricted: a cashier counts, a manager decides.
		approvals := sessions.Group("", middleware.RequireRole(auth.RoleAdmin, auth.RoleManager))
		approvals.POST("/:id/approve", handler.Approve)
		approvals.POST("/:id/reject", handler.Reject)
		approvals.POST("/:id/apply", handler.Apply)
	}
}

func registerReportRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	handler := handlers.NewReportHandler(cfg.Reports, cfg.Alerts)

	reportGroup := rg.Group("/reports")
	{
		reportGroup.GET("/daily", handler.Daily)
		reportGroup.GET("/range", handler.Range)
		reportGroup.GET("/low-stock", handler.LowStock)
		reportGroup.GET("/alerts", handler.Alerts)
	}
}
