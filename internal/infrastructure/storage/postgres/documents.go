package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"liquorpos/internal/core/apperror"
	"liquorpos/internal/core/id"
	"liquorpos/internal/core/types"
	"liquorpos/internal/domain/documents/inward"
	"liquorpos/internal/domain/documents/sale"
)

const (
	salesTable    = "doc_sales"
	receiptsTable = "doc_inward_receipts"
)

// Document lines are stored as a jsonb column; the documents are
// write-once and always read whole, so a child table buys nothing.

type saleRow struct {
	ID          id.ID       `db:"id"`
	Number      string      `db:"sale_number"`
	Date        time.Time   `db:"sale_date"`
	Lines       []byte      `db:"lines"`
	TotalAmount types.Money `db:"total_amount"`
	CreatedBy   string      `db:"created_by"`
	CreatedAt   time.Time   `db:"created_at"`
}

// SaleRepo implements sale.Repository.
type SaleRepo struct {
	txm     *TxManager
	builder squirrel.StatementBuilderType
}

var _ sale.Repository = (*SaleRepo)(nil)

func NewSaleRepo(txm *TxManager) *SaleRepo {
	return &SaleRepo{
		txm:     txm,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func (r *SaleRepo) Create(ctx context.Context, s *sale.Sale) error {
	lines, err := json.Marshal(s.Lines)
	if err != nil {
		return fmt.Errorf("marshal lines: %w", err)
	}

	q := r.builder.Insert(salesTable).
		Columns("id", "sale_number", "sale_date", "lines", "total_amount", "created_by", "created_at").
		Values(s.ID, s.Number, s.Date, lines, s.TotalAmount, s.CreatedBy, s.CreatedAt)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}
	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return mapError(err, "sale")
	}
	return nil
}

func (r *SaleRepo) GetByID(ctx context.Context, saleID id.ID) (*sale.Sale, error) {
	q := r.builder.Select("id", "sale_number", "sale_date", "lines", "total_amount", "created_by", "created_at").
		From(salesTable).
		Where(squirrel.Eq{"id": saleID}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var row saleRow
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &row, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("sale", saleID.String())
		}
		return nil, mapError(err, "sale")
	}
	return saleFromRow(&row)
}

func (r *SaleRepo) ListByDay(ctx context.Context, day time.Time) ([]sale.Sale, error) {
	q := r.builder.Select("id", "sale_number", "sale_date", "lines", "total_amount", "created_by", "created_at").
		From(salesTable).
		Where(squirrel.GtOrEq{"sale_date": day}).
		Where(squirrel.Lt{"sale_date": day.AddDate(0, 0, 1)}).
		OrderBy("created_at")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var rows []saleRow
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &rows, sql, args...); err != nil {
		return nil, mapError(err, "sale")
	}

	out := make([]sale.Sale, 0, len(rows))
	for i := range rows {
		s, err := saleFromRow(&rows[i])
		if err != nil {
			return nil, err
		}
		out = append(out, *s)
	}
	return out, nil
}

func saleFromRow(row *saleRow) (*sale.Sale, error) {
	s := sale.Sale{
		ID:          row.ID,
		Number:      row.Number,
		Date:        row.Date,
		TotalAmount: row.TotalAmount,
		CreatedBy:   row.CreatedBy,
		CreatedAt:   row.CreatedAt,
	}
	if len(row.Lines) > 0 {
		if err := json.Unmarshal(row.Lines, &s.Lines); err != nil {
			return nil, fmt.Errorf("unmarshal lines: %w", err)
		}
	}
	return &s, nil
}

type receiptRow struct {
	ID        id.ID       `db:"id"`
	Number    string      `db:"receipt_number"`
	Date      time.Time   `db:"receipt_date"`
	Supplier  string      `db:"supplier"`
	Lines     []byte      `db:"lines"`
	TotalCost types.Money `db:"total_cost"`
	CreatedBy string      `db:"created_by"`
	CreatedAt time.Time   `db:"created_at"`
}

// InwardRepo implements inward.Repository.
type InwardRepo struct {
	txm     *TxManager
	builder squirrel.StatementBuilderType
}

var _ inward.Repository = (*InwardRepo)(nil)

func NewInwardRepo(txm *TxManager) *InwardRepo {
	return &InwardRepo{
		txm:     txm,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func (r *InwardRepo) Create(ctx context.Context, rec *inward.Receipt) error {
	lines, err := json.Marshal(rec.Lines)
	if err != nil {
		return fmt.Errorf("marshal lines: %w", err)
	}

	q := r.builder.Insert(receiptsTable).
		Columns("id", "receipt_number", "receipt_date", "supplier", "lines", "total_cost", "created_by", "created_at").
		Values(rec.ID, rec.Number, rec.Date, rec.Supplier, lines, rec.TotalCost, rec.CreatedBy, rec.CreatedAt)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}
	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return mapError(err, "inward receipt")
	}
	return nil
}

func (r *InwardRepo) GetByID(ctx context.Context, receiptID id.ID) (*inward.Receipt, error) {
	q := r.builder.Select("id", "receipt_number", "receipt_date", "supplier", "lines", "total_cost", "created_by", "created_at").
		From(receiptsTable).
		Where(squirrel.Eq{"id": receiptID}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var row receiptRow
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &row, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("inward receipt", receiptID.String())
		}
		return nil, mapError(err, "inward receipt")
	}
	return receiptFromRow(&row)
}

func (r *InwardRepo) ListByDay(ctx context.Context, day time.Time) ([]inward.Receipt, error) {
	q := r.builder.Select("id", "receipt_number", "receipt_date", "supplier", "lines", "total_cost", "created_by", "created_at").
		From(receiptsTable).
		Where(squirrel.GtOrEq{"receipt_date": day}).
		Where(squirrel.Lt{"receipt_date": day.AddDate(0, 0, 1)}).
		OrderBy("created_at")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var rows []receiptRow
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &rows, sql, args...); err != nil {
		return nil, mapError(err, "inward receipt")
	}

	out := make([]inward.Receipt, 0, len(rows))
	for i := range rows {
		rec, err := receiptFromRow(&rows[i])
		if err != nil {
			return nil, err
		}
		out = append(out, *rec)
	}
	return out, nil
}

func receiptFromRow(row *receiptRow) (*inward.Receipt, error) {
	rec := inward.Receipt{
		ID:        row.ID,
		Number:    row.Number,
		Date:      row.Date,
		Supplier:  row.Supplier,
		TotalCost: row.TotalCost,
		CreatedBy: row.CreatedBy,
		CreatedAt: row.CreatedAt,
	}
	if len(row.Lines) > 0 {
		if err := json.Unmarshal(row.Lines, &rec.Lines); err != nil {
			return nil, fmt.Errorf("unmarshal lines: %w", err)
		}
	}
	return &rec, nil
}
