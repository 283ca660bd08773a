// Package main is the daily-close worker. It periodically snapshots the
// ledger, carries opening stock forward, syncs live stock, validates
// entry integrity and scans for low-stock alerts.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"liquorpos/internal/config"
	"liquorpos/internal/core/appctx"
	"liquorpos/internal/core/types"
	"liquorpos/internal/domain/alerts"
	"liquorpos/internal/domain/audit"
	"liquorpos/internal/domain/ledger"
	"liquorpos/internal/domain/movement"
	"liquorpos/internal/infrastructure/metrics"
	"liquorpos/internal/infrastructure/storage/postgres"
	"liquorpos/pkg/logger"
)

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
	log = log.WithComponent("worker")

	if cfg.Database.URL == "" {
		log.Fatal("DATABASE_URL is required for the worker")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(cfg.Database.URL))
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	txm := postgres.NewTxManager(pool)
	auditRepo, err := postgres.NewAuditRepo(txm)
	if err != nil {
		log.Fatalw("failed to create audit repository", "error", err)
	}
	productRepo := postgres.NewProductRepo(txm)
	categoryRepo := postgres.NewCategoryRepo(txm)

	engine := ledger.NewEngine(
		postgres.NewLedgerRepo(txm),
		productRepo,
		movement.NewService(postgres.NewMovementRepo(txm)),
		audit.NewService(auditRepo),
		txm,
		log,
	)

	ruleExpr := cfg.Alerts.LowStockRule
	if ruleExpr == "" {
		ruleExpr = alerts.DefaultRule
	}
	rule, err := alerts.Compile(ruleExpr)
	if err != nil {
		log.Fatalw("invalid low-stock rule", "error", err)
	}
	alertSvc := alerts.NewService(productRepo, categoryRepo, rule, log)

	log.Infow("worker started", "interval", cfg.Worker.Interval)

	// Run once on startup, then on every tick.
	runDailyClose(ctx, cfg, log, engine, alertSvc)

	ticker := time.NewTicker(cfg.Worker.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info("worker stopped")
			return
		case <-ticker.C:
			runDailyClose(ctx, cfg, log, engine, alertSvc)
		}
	}
}

// runDailyClose runs the full pipeline for today. Every step is
// idempotent, so overlapping runs within the same day are harmless.
func runDailyClose(ctx context.Context, cfg config.Config, log *logger.Logger, engine *ledger.Engine, alertSvc *alerts.Service) {
	ctx = appctx.WithActor(ctx, appctx.System)
	day := types.Today()
	started := time.Now()

	snapshots, err := engine.CreateDailySnapshots(ctx, day)
	if err != nil {
		log.Errorw("daily snapshot failed", "date", types.FormatDay(day), "error", err)
		return
	}

	carried, err := engine.CarryForwardOpeningStock(ctx, day)
	if err != nil {
		log.Errorw("carry-forward failed", "date", types.FormatDay(day), "error", err)
		return
	}

	synced, err := engine.SyncLiveStockFromSnapshot(ctx, day)
	if err != nil {
		log.Errorw("stock sync failed", "date", types.FormatDay(day), "error", err)
		return
	}

	integrity, err := engine.ValidateIntegrity(ctx, day)
	if err != nil {
		log.Errorw("integrity validation failed", "date", types.FormatDay(day), "error", err)
		return
	}

	from := day.AddDate(0, 0, -cfg.Worker.ContinuityWindowDays)
	breaks, err := engine.ContinuityReport(ctx, from, day)
	if err != nil {
		log.Errorw("continuity report failed", "error", err)
		return
	}
	for _, b := range breaks {
		log.Warnw("ledger continuity break",
			"product_id", b.ProductID,
			"date", types.FormatDay(b.Day),
			"prev_closing", b.PrevClosing,
			"opening", b.Opening,
			"missing_day", b.MissingDay,
		)
	}

	alertList, err := alertSvc.Check(ctx)
	if err != nil {
		log.Errorw("low-stock scan failed", "error", err)
		return
	}
	metrics.LowStockAlertsTotal.Add(float64(len(alertList)))

	metrics.DailyCloseLatency.Observe(time.Since(started).Seconds())
	log.Infow("daily close completed",
		"date", types.FormatDay(day),
		"snapshots_created", snapshots.Created,
		"carried_forward", carried.Updated,
		"stock_synced", synced.Updated,
		"integrity_issues", len(integrity.Issues),
		"continuity_breaks", len(breaks),
		"low_stock_alerts", len(alertList),
		"duration", time.Since(started),
	)
}
