// Package main is the entry point for the liquorpos API server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"liquorpos/internal/config"
	corenumerator "liquorpos/internal/core/numerator"
	"liquorpos/internal/core/ratelimit"
	"liquorpos/internal/core/tx"
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
	v1 "liquorpos/internal/infrastructure/http/v1"
	infranumerator "liquorpos/internal/infrastructure/numerator"
	infraratelimit "liquorpos/internal/infrastructure/ratelimit"
	"liquorpos/internal/infrastructure/storage/memory"
	"liquorpos/internal/infrastructure/storage/postgres"
	"liquorpos/pkg/logger"
)

const version = "1.0.0"

func main() {
	cfg := config.Load()

	log, err := logger.New(logger.Config{
		Level:       cfg.LogLevel,
		Development: cfg.Env == "development",
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	log.Info("starting liquorpos server")

	svc, cleanup, err := buildServices(ctx, cfg, log)
	if err != nil {
		log.Fatalw("failed to build services", "error", err)
	}
	defer cleanup()

	routerCfg := v1.RouterConfig{
		Logger:          log,
		Version:         version,
		AuthService:     svc.auth,
		Products:        svc.products,
		Categories:      svc.categories,
		Engine:          svc.engine,
		Movements:       svc.movements,
		Audits:          svc.audits,
		Reconciliations: svc.reconciliations,
		Sales:           svc.sales,
		Receipts:        svc.receipts,
		Reports:         svc.reports,
		Alerts:          svc.alerts,
		RateLimiter:     buildRateLimiter(cfg, log),
	}
	if svc.db != nil {
		routerCfg.DB = svc.db
	}
	router := v1.NewRouter(routerCfg)

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infow("server starting", "port", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalw("server failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalw("server forced to shutdown", "error", err)
	}

	log.Info("server stopped")
}

type services struct {
	auth            *auth.Service
	products        *product.Service
	categories      *category.Service
	engine          *ledger.Engine
	movements       *movement.Service
	audits          *audit.Service
	reconciliations *reconciliation.Service
	sales           *sale.Service
	receipts        *inward.Service
	reports         *reports.Service
	alerts          *alerts.Service

	// db is set only in postgres mode; the readiness probe pings it.
	db *postgres.Pool
}

type repos struct {
	products        product.Repository
	categories      category.Repository
	entries         ledger.Repository
	movements       movement.Repository
	audits          audit.Repository
	sessions        reconciliation.Repository
	sales           sale.Repository
	receipts        inward.Repository
	users           auth.Repository
	reports         reports.Repository
	categoryNames   alerts.CategoryNamer
	txm             tx.Manager
	numbers         corenumerator.Generator
	db              *postgres.Pool
}

// buildServices wires repositories and services. With DATABASE_URL set
// it runs on postgres; without it, on the in-memory store (local
// development only, nothing survives a restart).
func buildServices(ctx context.Context, cfg config.Config, log *logger.Logger) (*services, func(), error) {
	var r repos
	cleanup := func() {}

	if cfg.Database.URL != "" {
		pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(cfg.Database.URL))
		if err != nil {
			return nil, nil, err
		}
		cleanup = pool.Close
		log.Info("database connection established")

		txm := postgres.NewTxManager(pool)
		auditRepo, err := postgres.NewAuditRepo(txm)
		if err != nil {
			pool.Close()
			return nil, nil, err
		}
		categoryRepo := postgres.NewCategoryRepo(txm)

		r = repos{
			products:      postgres.NewProductRepo(txm),
			categories:    categoryRepo,
			entries:       postgres.NewLedgerRepo(txm),
			movements:     postgres.NewMovementRepo(txm),
			audits:        auditRepo,
			sessions:      postgres.NewReconciliationRepo(txm),
			sales:         postgres.NewSaleRepo(txm),
			receipts:      postgres.NewInwardRepo(txm),
			users:         postgres.NewAuthRepo(txm),
			reports:       postgres.NewReportRepo(txm),
			categoryNames: categoryRepo,
			txm:           txm,
			numbers:       infranumerator.New(pool),
			db:            pool,
		}
	} else {
		log.Warn("DATABASE_URL not set, using in-memory store")

		store := memory.NewStore()
		categoryRepo := memory.NewCategoryRepo(store)

		r = repos{
			products:      memory.NewProductRepo(store),
			categories:    categoryRepo,
			entries:       memory.NewLedgerRepo(store),
			movements:     memory.NewMovementRepo(store),
			audits:        memory.NewAuditRepo(store),
			sessions:      memory.NewReconciliationRepo(store),
			sales:         memory.NewSaleRepo(store),
			receipts:      memory.NewInwardRepo(store),
			users:         memory.NewAuthRepo(store),
			reports:       memory.NewReportRepo(store),
			categoryNames: categoryRepo,
			txm:           memory.NewTxManager(),
			numbers:       corenumerator.NewMock(),
		}
	}

	movementSvc := movement.NewService(r.movements)
	auditSvc := audit.NewService(r.audits)
	engine := ledger.NewEngine(r.entries, r.products, movementSvc, auditSvc, r.txm, log)

	ruleExpr := cfg.Alerts.LowStockRule
	if ruleExpr == "" {
		ruleExpr = alerts.DefaultRule
	}
	rule, err := alerts.Compile(ruleExpr)
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("invalid low-stock rule: %w", err)
	}

	return &services{
		auth:            auth.NewService(r.users, cfg.Auth.JWTSecret, cfg.Auth.TokenTTL),
		products:        product.NewService(r.products),
		categories:      category.NewService(r.categories),
		engine:          engine,
		movements:       movementSvc,
		audits:          auditSvc,
		reconciliations: reconciliation.NewService(r.sessions, r.products, engine, r.numbers, r.txm, log),
		sales:           sale.NewService(r.sales, r.products, engine, r.numbers, r.txm),
		receipts:        inward.NewService(r.receipts, engine, r.numbers, r.txm),
		reports:         reports.NewService(r.reports),
		alerts:          alerts.NewService(r.products, r.categoryNames, rule, log),
		db:              r.db,
	}, cleanup, nil
}

// buildRateLimiter returns nil when rate limiting is disabled. With
// REDIS_ADDR set the bucket state is shared across instances.
func buildRateLimiter(cfg config.Config, log *logger.Logger) *ratelimit.Limiter {
	if !cfg.RateLimit.Enabled {
		return nil
	}

	clock := ratelimit.SystemClock()
	var store ratelimit.Store
	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		store = infraratelimit.NewRedisStore(client)
		log.Infow("rate limiting enabled", "store", "redis", "requests", cfg.RateLimit.Requests, "per", cfg.RateLimit.Per)
	} else {
		store = ratelimit.NewMemoryStore(clock)
		log.Infow("rate limiting enabled", "store", "memory", "requests", cfg.RateLimit.Requests, "per", cfg.RateLimit.Per)
	}

	return ratelimit.New(cfg.RateLimit.Requests, cfg.RateLimit.Per, clock, store)
}
