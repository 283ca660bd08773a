package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/klauspost/compress/zstd"

	"liquorpos/internal/core/apperror"
	"liquorpos/internal/core/id"
	"liquorpos/internal/core/types"
	"liquorpos/internal/domain/audit"
	"liquorpos/internal/domain/reference"
)

const auditTable = "stock_audit_log"

// CompressionAlgo marks how the metadata payload is stored.
type CompressionAlgo string

const (
	CompressionNone CompressionAlgo = "none"
	CompressionZstd CompressionAlgo = "zstd"
)

// auditRow is the storage shape. Metadata is serialized to JSON;
// payloads above the threshold are stored zstd-compressed.
type auditRow struct {
	ID              id.ID            `db:"id"`
	ProductID       id.ID            `db:"product_id"`
	ChangeType      audit.ChangeType `db:"change_type"`
	OldQuantity     int64            `db:"old_quantity"`
	NewQuantity     int64            `db:"new_quantity"`
	QuantityChanged int64            `db:"quantity_changed"`
	ReferenceType   reference.Kind   `db:"reference_type"`
	ReferenceID     *id.ID           `db:"reference_id"`
	Reason          string           `db:"reason"`
	ChangedBy       string           `db:"changed_by"`
	Metadata        []byte           `db:"metadata"`
	CompressionAlgo CompressionAlgo  `db:"compression_algo"`
	CreatedAt       time.Time        `db:"created_at"`
}

var auditColumns = []string{
	"id", "product_id", "change_type",
	"old_quantity", "new_quantity", "quantity_changed",
	"reference_type", "reference_id",
	"reason", "changed_by", "metadata", "compression_algo", "created_at",
}

// AuditRepo implements audit.Repository.
type AuditRepo struct {
	txm               *TxManager
	builder           squirrel.StatementBuilderType
	encoder           *zstd.Encoder
	decoder           *zstd.Decoder
	compressThreshold int
}

var _ audit.Repository = (*AuditRepo)(nil)

func NewAuditRepo(txm *TxManager) (*AuditRepo, error) {
	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("create zstd encoder: %w", err)
	}
	decoder, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}

	return &AuditRepo{
		txm:               txm,
		builder:           squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
		encoder:           encoder,
		decoder:           decoder,
		compressThreshold: 10 * 1024, // 10KB
	}, nil
}

func (r *AuditRepo) Append(ctx context.Context, rec *audit.Record) error {
	var refID *id.ID
	if !id.IsNil(rec.Reference.ID) {
		refID = &rec.Reference.ID
	}

	var payload []byte
	algo := CompressionNone
	if len(rec.Metadata) > 0 {
		raw, err := json.Marshal(rec.Metadata)
		if err != nil {
			return fmt.Errorf("marshal metadata: %w", err)
		}
		payload = raw
		if len(raw) > r.compressThreshold {
			payload = r.encoder.EncodeAll(raw, nil)
			algo = CompressionZstd
		}
	}

	q := r.builder.Insert(auditTable).
		Columns(auditColumns...).
		Values(
			rec.ID, rec.ProductID, rec.ChangeType,
			rec.OldQuantity, rec.NewQuantity, rec.QuantityChanged,
			rec.Reference.Kind, refID,
			rec.Reason, rec.ChangedBy, payload, algo, rec.CreatedAt,
		)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}
	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return mapError(err, "audit record")
	}
	return nil
}

func (r *AuditRepo) toDomain(row *auditRow) (audit.Record, error) {
	rec := audit.Record{
		ID:              row.ID,
		ProductID:       row.ProductID,
		ChangeType:      row.ChangeType,
		OldQuantity:     row.OldQuantity,
		NewQuantity:     row.NewQuantity,
		QuantityChanged: row.QuantityChanged,
		Reference:       reference.Reference{Kind: row.ReferenceType, ID: id.Nil()},
		Reason:          row.Reason,
		ChangedBy:       row.ChangedBy,
		CreatedAt:       row.CreatedAt,
	}
	if row.ReferenceID != nil {
		rec.Reference.ID = *row.ReferenceID
	}
	if len(row.Metadata) > 0 {
		raw := row.Metadata
		if row.CompressionAlgo == CompressionZstd {
			decompressed, err := r.decoder.DecodeAll(raw, nil)
			if err != nil {
				return rec, fmt.Errorf("decompress metadata: %w", err)
			}
			raw = decompressed
		}
		var meta types.Metadata
		if err := json.Unmarshal(raw, &meta); err != nil {
			return rec, fmt.Errorf("unmarshal metadata: %w", err)
		}
		rec.Metadata = meta
	}
	return rec, nil
}

func (r *AuditRepo) GetByID(ctx context.Context, recordID id.ID) (*audit.Record, error) {
	q := r.builder.Select(auditColumns...).From(auditTable).
		Where(squirrel.Eq{"id": recordID}).Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var row auditRow
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &row, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("audit record", recordID.String())
		}
		return nil, mapError(err, "audit record")
	}
	rec, err := r.toDomain(&row)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *AuditRepo) Trail(ctx context.Context, filter audit.TrailFilter) ([]audit.Record, error) {
	q := r.builder.Select(auditColumns...).From(auditTable)

	if filter.ProductID != nil {
		q = q.Where(squirrel.Eq{"product_id": *filter.ProductID})
	}
	if filter.ChangeType != nil {
		q = q.Where(squirrel.Eq{"change_type": *filter.ChangeType})
	}
	if filter.ChangedBy != "" {
		q = q.Where(squirrel.Eq{"changed_by": filter.ChangedBy})
	}
	if filter.DateFrom != nil {
		q = q.Where(squirrel.GtOrEq{"created_at": *filter.DateFrom})
	}
	if filter.DateTo != nil {
		q = q.Where(squirrel.LtOrEq{"created_at": *filter.DateTo})
	}

	q = q.OrderBy("created_at DESC")
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

	var rows []auditRow
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &rows, sql, args...); err != nil {
		return nil, mapError(err, "audit record")
	}

	out := make([]audit.Record, 0, len(rows))
	for i := range rows {
		rec, err := r.toDomain(&rows[i])
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

func (r *AuditRepo) Summary(ctx context.Context, from, to time.Time) ([]audit.SummaryRow, error) {
	sql := `
		SELECT change_type,
		       COUNT(*) AS cnt,
		       COALESCE(SUM(quantity_changed), 0) AS net_quantity,
		       COALESCE(SUM(CASE WHEN quantity_changed < 0 THEN -quantity_changed ELSE 0 END), 0) AS total_out,
		       COALESCE(SUM(CASE WHEN quantity_changed > 0 THEN quantity_changed ELSE 0 END), 0) AS total_in
		FROM stock_audit_log
		WHERE created_at >= $1 AND created_at <= $2
		GROUP BY change_type
		ORDER BY change_type
	`

	var rows []audit.SummaryRow
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &rows, sql, from, to); err != nil {
		return nil, mapError(err, "audit record")
	}
	return rows, nil
}
