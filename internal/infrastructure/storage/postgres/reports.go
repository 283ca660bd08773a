package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/georgysavva/scany/v2/pgxscan"

	"liquorpos/internal/domain/reports"
)

// ReportRepo implements reports.Repository with joins over the ledger
// and product catalog. Report queries are read-only and hand-written;
// the builder buys nothing for multi-way aggregates.
type ReportRepo struct {
	txm *TxManager
}

var _ reports.Repository = (*ReportRepo)(nil)

func NewReportRepo(txm *TxManager) *ReportRepo {
	return &ReportRepo{txm: txm}
}

func (r *ReportRepo) DailyRows(ctx context.Context, day time.Time, filter reports.DailyFilter) ([]reports.DailyRow, error) {
	sql := `
		SELECT e.product_id,
		       p.name AS product_name,
		       p.sku,
		       e.opening_stock,
		       e.inward_quantity,
		       e.sold_quantity,
		       e.closing_stock,
		       e.stock_value,
		       e.physical_stock,
		       e.variance_qty
		FROM daily_stock_entries e
		JOIN cat_products p ON p.id = e.product_id
		WHERE e.entry_date = $1
	`
	args := []any{day}
	if filter.CategoryID != nil {
		args = append(args, *filter.CategoryID)
		sql += fmt.Sprintf(" AND p.category_id = $%d", len(args))
	}
	if filter.ProductID != nil {
		args = append(args, *filter.ProductID)
		sql += fmt.Sprintf(" AND e.product_id = $%d", len(args))
	}
	sql += " ORDER BY p.name"

	var rows []reports.DailyRow
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &rows, sql, args...); err != nil {
		return nil, mapError(err, "daily report")
	}
	return rows, nil
}

func (r *ReportRepo) RangeRows(ctx context.Context, from, to time.Time) ([]reports.RangeRow, error) {
	sql := `
		SELECT e.product_id,
		       p.name AS product_name,
		       p.sku,
		       COALESCE(SUM(e.sold_quantity), 0) AS total_sold,
		       COALESCE(SUM(e.inward_quantity), 0) AS total_inward,
		       (ARRAY_AGG(e.closing_stock ORDER BY e.entry_date DESC))[1] AS last_closing,
		       (ARRAY_AGG(e.stock_value ORDER BY e.entry_date DESC))[1] AS last_value
		FROM daily_stock_entries e
		JOIN cat_products p ON p.id = e.product_id
		WHERE e.entry_date >= $1 AND e.entry_date <= $2
		GROUP BY e.product_id, p.name, p.sku
		ORDER BY p.name
	`

	var rows []reports.RangeRow
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &rows, sql, from, to); err != nil {
		return nil, mapError(err, "range report")
	}
	return rows, nil
}

func (r *ReportRepo) LowStockRows(ctx context.Context) ([]reports.LowStockRow, error) {
	sql := `
		SELECT id AS product_id,
		       name AS product_name,
		       sku,
		       current_stock,
		       min_stock
		FROM cat_products
		WHERE active AND current_stock <= min_stock
		ORDER BY current_stock - min_stock
	`

	var rows []reports.LowStockRow
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &rows, sql); err != nil {
		return nil, mapError(err, "low stock report")
	}
	return rows, nil
}
