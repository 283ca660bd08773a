package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"

	"liquorpos/internal/core/apperror"
	"liquorpos/internal/core/id"
	"liquorpos/internal/domain/ledger"
)

const ledgerTable = "daily_stock_entries"

var ledgerColumns = []string{
	"id", "product_id", "entry_date",
	"opening_stock", "inward_quantity", "sold_quantity", "closing_stock",
	"unit_cost", "stock_value",
	"physical_stock", "variance_qty", "physical_count_at", "counted_by",
	"created_at", "updated_at",
}

// LedgerRepo implements ledger.Repository. The (product_id, entry_date)
// pair carries a unique constraint; Create surfaces it as a duplicate
// error so the engine can fall back to the concurrently created row.
//
// The increment methods rederive closing_stock and stock_value inside
// the UPDATE itself. Two concurrent sales both land: PostgreSQL
// serializes the row updates and each one recomputes from the latest
// committed quantities.
type LedgerRepo struct {
	txm     *TxManager
	builder squirrel.StatementBuilderType
}

var _ ledger.Repository = (*LedgerRepo)(nil)

func NewLedgerRepo(txm *TxManager) *LedgerRepo {
	return &LedgerRepo{
		txm:     txm,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func (r *LedgerRepo) Create(ctx context.Context, e *ledger.Entry) error {
	q := r.builder.Insert(ledgerTable).
		Columns(ledgerColumns...).
		Values(
			e.ID, e.ProductID, e.Date,
			e.OpeningStock, e.InwardQuantity, e.SoldQuantity, e.ClosingStock,
			e.UnitCost, e.StockValue,
			e.PhysicalStock, e.VarianceQty, e.PhysicalCountAt, e.CountedBy,
			e.CreatedAt, e.UpdatedAt,
		)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}
	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return mapError(err, "ledger entry")
	}
	return nil
}

func (r *LedgerRepo) GetByID(ctx context.Context, entryID id.ID) (*ledger.Entry, error) {
	q := r.builder.Select(ledgerColumns...).From(ledgerTable).
		Where(squirrel.Eq{"id": entryID}).Limit(1)
	return r.getOne(ctx, q, entryID.String())
}

func (r *LedgerRepo) Get(ctx context.Context, productID id.ID, day time.Time) (*ledger.Entry, error) {
	q := r.builder.Select(ledgerColumns...).From(ledgerTable).
		Where(squirrel.Eq{"product_id": productID, "entry_date": day}).
		Limit(1)
	return r.getOne(ctx, q, productID.String())
}

func (r *LedgerRepo) GetLatestBefore(ctx context.Context, productID id.ID, day time.Time) (*ledger.Entry, error) {
	q := r.builder.Select(ledgerColumns...).From(ledgerTable).
		Where(squirrel.Eq{"product_id": productID}).
		Where(squirrel.Lt{"entry_date": day}).
		OrderBy("entry_date DESC").
		Limit(1)
	return r.getOne(ctx, q, productID.String())
}

func (r *LedgerRepo) getOne(ctx context.Context, q squirrel.SelectBuilder, key string) (*ledger.Entry, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var e ledger.Entry
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &e, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("ledger entry", key)
		}
		return nil, mapError(err, "ledger entry")
	}
	return &e, nil
}

// applyDelta is the single-statement increment shared by ApplySale,
// ApplyInward and SetOpening. The SET expressions reference the columns
// being updated, so closing and value always derive from the quantities
// this same statement leaves behind.
func (r *LedgerRepo) applyDelta(ctx context.Context, productID id.ID, day time.Time, setClause string, val int64) (*ledger.Entry, error) {
	sql := fmt.Sprintf(`
		UPDATE daily_stock_entries
		SET %s,
		    closing_stock = opening_stock + inward_quantity - sold_quantity,
		    stock_value = unit_cost * (opening_stock + inward_quantity - sold_quantity),
		    variance_qty = CASE WHEN physical_stock IS NULL THEN NULL
		                        ELSE physical_stock - (opening_stock + inward_quantity - sold_quantity) END,
		    updated_at = now()
		WHERE product_id = $1 AND entry_date = $2
		RETURNING %s
	`, setClause, columnList(ledgerColumns))

	var e ledger.Entry
	err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &e, sql, productID, day, val)
	if err != nil {
		if pgxscan.NotFound(err) || errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFound("ledger entry", productID.String())
		}
		return nil, mapError(err, "ledger entry")
	}
	return &e, nil
}

func (r *LedgerRepo) ApplySale(ctx context.Context, productID id.ID, day time.Time, qty int64) (*ledger.Entry, error) {
	return r.applyDelta(ctx, productID, day, "sold_quantity = sold_quantity + $3", qty)
}

func (r *LedgerRepo) ApplyInward(ctx context.Context, productID id.ID, day time.Time, qty int64) (*ledger.Entry, error) {
	return r.applyDelta(ctx, productID, day, "inward_quantity = inward_quantity + $3", qty)
}

func (r *LedgerRepo) SetOpening(ctx context.Context, productID id.ID, day time.Time, opening int64) (*ledger.Entry, error) {
	return r.applyDelta(ctx, productID, day, "opening_stock = $3", opening)
}

func (r *LedgerRepo) RecordPhysical(ctx context.Context, productID id.ID, day time.Time, physical int64, countedBy string, at time.Time) (*ledger.Entry, error) {
	sql := fmt.Sprintf(`
		UPDATE daily_stock_entries
		SET physical_stock = $3,
		    variance_qty = $3 - closing_stock,
		    physical_count_at = $4,
		    counted_by = $5,
		    updated_at = now()
		WHERE product_id = $1 AND entry_date = $2
		RETURNING %s
	`, columnList(ledgerColumns))

	var e ledger.Entry
	err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &e, sql, productID, day, physical, at.UTC(), countedBy)
	if err != nil {
		if pgxscan.NotFound(err) || errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFound("ledger entry", productID.String())
		}
		return nil, mapError(err, "ledger entry")
	}
	return &e, nil
}

// Update rewrites the full row. Integrity repair only.
func (r *LedgerRepo) Update(ctx context.Context, e *ledger.Entry) error {
	q := r.builder.Update(ledgerTable).
		Set("opening_stock", e.OpeningStock).
		Set("inward_quantity", e.InwardQuantity).
		Set("sold_quantity", e.SoldQuantity).
		Set("closing_stock", e.ClosingStock).
		Set("unit_cost", e.UnitCost).
		Set("stock_value", e.StockValue).
		Set("physical_stock", e.PhysicalStock).
		Set("variance_qty", e.VarianceQty).
		Set("physical_count_at", e.PhysicalCountAt).
		Set("counted_by", e.CountedBy).
		Set("updated_at", e.UpdatedAt).
		Where(squirrel.Eq{"id": e.ID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	tag, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return mapError(err, "ledger entry")
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("ledger entry", e.ID.String())
	}
	return nil
}

func (r *LedgerRepo) ListByDay(ctx context.Context, day time.Time) ([]ledger.Entry, error) {
	q := r.builder.Select(ledgerColumns...).From(ledgerTable).
		Where(squirrel.Eq{"entry_date": day}).
		OrderBy("product_id")
	return r.selectMany(ctx, q)
}

func (r *LedgerRepo) ListByProduct(ctx context.Context, productID id.ID, from, to time.Time) ([]ledger.Entry, error) {
	q := r.builder.Select(ledgerColumns...).From(ledgerTable).
		Where(squirrel.Eq{"product_id": productID}).
		Where(squirrel.GtOrEq{"entry_date": from}).
		Where(squirrel.LtOrEq{"entry_date": to}).
		OrderBy("entry_date")
	return r.selectMany(ctx, q)
}

func (r *LedgerRepo) ListRange(ctx context.Context, from, to time.Time) ([]ledger.Entry, error) {
	q := r.builder.Select(ledgerColumns...).From(ledgerTable).
		Where(squirrel.GtOrEq{"entry_date": from}).
		Where(squirrel.LtOrEq{"entry_date": to}).
		OrderBy("product_id", "entry_date")
	return r.selectMany(ctx, q)
}

func (r *LedgerRepo) selectMany(ctx context.Context, q squirrel.SelectBuilder) ([]ledger.Entry, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var entries []ledger.Entry
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &entries, sql, args...); err != nil {
		return nil, mapError(err, "ledger entry")
	}
	return entries, nil
}
