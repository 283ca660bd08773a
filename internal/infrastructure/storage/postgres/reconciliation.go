package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"liquorpos/internal/core/apperror"
	"liquorpos/internal/core/id"
	"liquorpos/internal/domain/reconciliation"
)

const (
	sessionsTable     = "reconciliation_sessions"
	sessionItemsTable = "reconciliation_items"
)

var sessionColumns = []string{
	"id", "session_number", "session_date", "status", "notes", "created_by",
	"submitted_at", "approved_by", "approved_at",
	"rejected_by", "rejected_at", "reject_reason", "completed_at",
	"total_items", "counted_items", "items_with_variance",
	"total_variance_qty", "total_variance_value",
	"created_at", "updated_at",
}

var sessionItemColumns = []string{
	"id", "session_id", "product_id",
	"system_stock", "physical_stock", "variance", "variance_value", "unit_cost",
	"counted_by", "counted_at", "applied", "apply_error",
}

// ReconciliationRepo implements reconciliation.Repository.
type ReconciliationRepo struct {
	txm     *TxManager
	builder squirrel.StatementBuilderType
}

var _ reconciliation.Repository = (*ReconciliationRepo)(nil)

func NewReconciliationRepo(txm *TxManager) *ReconciliationRepo {
	return &ReconciliationRepo{
		txm:     txm,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func (r *ReconciliationRepo) Create(ctx context.Context, s *reconciliation.Session) error {
	q := r.builder.Insert(sessionsTable).
		Columns(sessionColumns...).
		Values(
			s.ID, s.Number, s.Date, s.Status, s.Notes, s.CreatedBy,
			s.SubmittedAt, s.ApprovedBy, s.ApprovedAt,
			s.RejectedBy, s.RejectedAt, s.RejectReason, s.CompletedAt,
			s.TotalItems, s.CountedItems, s.ItemsWithVariance,
			s.TotalVarianceQty, s.TotalVarianceValue,
			s.CreatedAt, s.UpdatedAt,
		)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}
	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return mapError(err, "reconciliation session")
	}
	return nil
}

func (r *ReconciliationRepo) GetByID(ctx context.Context, sessionID id.ID) (*reconciliation.Session, error) {
	q := r.builder.Select(sessionColumns...).From(sessionsTable).
		Where(squirrel.Eq{"id": sessionID}).Limit(1)
	return r.getOne(ctx, q, sessionID.String())
}

func (r *ReconciliationRepo) GetActiveForDay(ctx context.Context, day time.Time) (*reconciliation.Session, error) {
	q := r.builder.Select(sessionColumns...).From(sessionsTable).
		Where(squirrel.Eq{"session_date": day}).
		Where(squirrel.Eq{"status": []reconciliation.Status{
			reconciliation.StatusInProgress,
			reconciliation.StatusPendingApproval,
			reconciliation.StatusApproved,
		}}).
		Limit(1)
	return r.getOne(ctx, q, day.Format("2006-01-02"))
}

func (r *ReconciliationRepo) getOne(ctx context.Context, q squirrel.SelectBuilder, key string) (*reconciliation.Session, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var s reconciliation.Session
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &s, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("reconciliation session", key)
		}
		return nil, mapError(err, "reconciliation session")
	}

	if err := r.loadItems(ctx, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *ReconciliationRepo) loadItems(ctx context.Context, s *reconciliation.Session) error {
	q := r.builder.Select(sessionItemColumns...).From(sessionItemsTable).
		Where(squirrel.Eq{"session_id": s.ID}).
		OrderBy("product_id")

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &s.Items, sql, args...); err != nil {
		return mapError(err, "reconciliation item")
	}
	return nil
}

func (r *ReconciliationRepo) Update(ctx context.Context, s *reconciliation.Session) error {
	q := r.builder.Update(sessionsTable).
		Set("status", s.Status).
		Set("notes", s.Notes).
		Set("submitted_at", s.SubmittedAt).
		Set("approved_by", s.ApprovedBy).
		Set("approved_at", s.ApprovedAt).
		Set("rejected_by", s.RejectedBy).
		Set("rejected_at", s.RejectedAt).
		Set("reject_reason", s.RejectReason).
		Set("completed_at", s.CompletedAt).
		Set("total_items", s.TotalItems).
		Set("counted_items", s.CountedItems).
		Set("items_with_variance", s.ItemsWithVariance).
		Set("total_variance_qty", s.TotalVarianceQty).
		Set("total_variance_value", s.TotalVarianceValue).
		Set("updated_at", s.UpdatedAt).
		Where(squirrel.Eq{"id": s.ID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	tag, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return mapError(err, "reconciliation session")
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("reconciliation session", s.ID.String())
	}
	return nil
}

func (r *ReconciliationRepo) AddItem(ctx context.Context, item *reconciliation.Item) error {
	q := r.builder.Insert(sessionItemsTable).
		Columns(sessionItemColumns...).
		Values(
			item.ID, item.SessionID, item.ProductID,
			item.SystemStock, item.PhysicalStock, item.Variance, item.VarianceValue, item.UnitCost,
			item.CountedBy, item.CountedAt, item.Applied, item.ApplyError,
		)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}
	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return mapError(err, "reconciliation item")
	}
	return nil
}

func (r *ReconciliationRepo) UpdateItem(ctx context.Context, item *reconciliation.Item) error {
	q := r.builder.Update(sessionItemsTable).
		Set("physical_stock", item.PhysicalStock).
		Set("variance", item.Variance).
		Set("variance_value", item.VarianceValue).
		Set("counted_by", item.CountedBy).
		Set("counted_at", item.CountedAt).
		Set("applied", item.Applied).
		Set("apply_error", item.ApplyError).
		Where(squirrel.Eq{"id": item.ID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	tag, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return mapError(err, "reconciliation item")
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("reconciliation item", item.ID.String())
	}
	return nil
}

// List returns sessions without items, newest first.
func (r *ReconciliationRepo) List(ctx context.Context, filter reconciliation.ListFilter) ([]reconciliation.Session, error) {
	q := r.builder.Select(sessionColumns...).From(sessionsTable)

	if filter.Status != nil {
		q = q.Where(squirrel.Eq{"status": *filter.Status})
	}
	if filter.DateFrom != nil {
		q = q.Where(squirrel.GtOrEq{"session_date": *filter.DateFrom})
	}
	if filter.DateTo != nil {
		q = q.Where(squirrel.LtOrEq{"session_date": *filter.DateTo})
	}

	q = q.OrderBy("session_date DESC", "created_at DESC")
	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		q = q.Offset(uint64(filter.Offset))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var sessions []reconciliation.Session
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &sessions, sql, args...); err != nil {
		return nil, mapError(err, "reconciliation session")
	}
	return sessions, nil
}
