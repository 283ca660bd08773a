package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"liquorpos/internal/core/apperror"
	"liquorpos/internal/core/id"
	"liquorpos/internal/core/types"
	"liquorpos/internal/domain/movement"
	"liquorpos/internal/domain/reference"
)

const movementsTable = "stock_movements"

var movementColumns = []string{
	"id", "product_id", "movement_type", "movement_category",
	"quantity", "unit_cost", "total_cost",
	"reference_type", "reference_id",
	"movement_date", "created_by", "status", "metadata", "created_at",
}

// movementRow flattens the nested reference for scanning.
type movementRow struct {
	ID            id.ID          `db:"id"`
	ProductID     id.ID          `db:"product_id"`
	Type          movement.Type  `db:"movement_type"`
	Category      movement.Category `db:"movement_category"`
	Quantity      int64          `db:"quantity"`
	UnitCost      types.Money    `db:"unit_cost"`
	TotalCost     types.Money    `db:"total_cost"`
	ReferenceType reference.Kind `db:"reference_type"`
	ReferenceID   *id.ID         `db:"reference_id"`
	Date          time.Time      `db:"movement_date"`
	CreatedBy     string         `db:"created_by"`
	Status        movement.Status `db:"status"`
	Metadata      types.Metadata `db:"metadata"`
	CreatedAt     time.Time      `db:"created_at"`
}

func (row *movementRow) toDomain() movement.Movement {
	m := movement.Movement{
		ID:        row.ID,
		ProductID: row.ProductID,
		Type:      row.Type,
		Category:  row.Category,
		Quantity:  row.Quantity,
		UnitCost:  row.UnitCost,
		TotalCost: row.TotalCost,
		Reference: reference.Reference{Kind: row.ReferenceType, ID: id.Nil()},
		Date:      row.Date,
		CreatedBy: row.CreatedBy,
		Status:    row.Status,
		Metadata:  row.Metadata,
		CreatedAt: row.CreatedAt,
	}
	if row.ReferenceID != nil {
		m.Reference.ID = *row.ReferenceID
	}
	return m
}

// MovementRepo implements movement.Repository. Append-only: the table
// has no UPDATE or DELETE paths.
type MovementRepo struct {
	txm     *TxManager
	builder squirrel.StatementBuilderType
}

var _ movement.Repository = (*MovementRepo)(nil)

func NewMovementRepo(txm *TxManager) *MovementRepo {
	return &MovementRepo{
		txm:     txm,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func (r *MovementRepo) Append(ctx context.Context, m *movement.Movement) error {
	var refID *id.ID
	if !id.IsNil(m.Reference.ID) {
		refID = &m.Reference.ID
	}

	q := r.builder.Insert(movementsTable).
		Columns(movementColumns...).
		Values(
			m.ID, m.ProductID, m.Type, m.Category,
			m.Quantity, m.UnitCost, m.TotalCost,
			m.Reference.Kind, refID,
			m.Date, m.CreatedBy, m.Status, m.Metadata, m.CreatedAt,
		)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}
	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return mapError(err, "movement")
	}
	return nil
}

func (r *MovementRepo) GetByID(ctx context.Context, movementID id.ID) (*movement.Movement, error) {
	q := r.builder.Select(movementColumns...).From(movementsTable).
		Where(squirrel.Eq{"id": movementID}).Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var row movementRow
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &row, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("movement", movementID.String())
		}
		return nil, mapError(err, "movement")
	}
	m := row.toDomain()
	return &m, nil
}

func (r *MovementRepo) List(ctx context.Context, filter movement.ListFilter) ([]movement.Movement, error) {
	q := r.builder.Select(movementColumns...).From(movementsTable)

	if filter.ProductID != nil {
		q = q.Where(squirrel.Eq{"product_id": *filter.ProductID})
	}
	if filter.Type != nil {
		q = q.Where(squirrel.Eq{"movement_type": *filter.Type})
	}
	if filter.Category != nil {
		q = q.Where(squirrel.Eq{"movement_category": *filter.Category})
	}
	if filter.DateFrom != nil {
		q = q.Where(squirrel.GtOrEq{"movement_date": *filter.DateFrom})
	}
	if filter.DateTo != nil {
		q = q.Where(squirrel.LtOrEq{"movement_date": *filter.DateTo})
	}

	q = q.OrderBy("movement_date DESC", "created_at DESC")
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

	var rows []movementRow
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &rows, sql, args...); err != nil {
		return nil, mapError(err, "movement")
	}

	out := make([]movement.Movement, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].toDomain())
	}
	return out, nil
}

func (r *MovementRepo) Summary(ctx context.Context, from, to time.Time) ([]movement.SummaryRow, error) {
	sql := `
		SELECT movement_category, movement_type,
		       COUNT(*) AS cnt,
		       COALESCE(SUM(quantity), 0) AS total_quantity
		FROM stock_movements
		WHERE movement_date >= $1 AND movement_date <= $2
		GROUP BY movement_category, movement_type
		ORDER BY movement_category, movement_type
	`

	var rows []movement.SummaryRow
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &rows, sql, from, to); err != nil {
		return nil, mapError(err, "movement")
	}
	return rows, nil
}
