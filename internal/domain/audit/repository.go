package audit

import (
	"context"
	"time"

	"liquorpos/internal/core/id"
)

// TrailFilter narrows audit trail queries.
type TrailFilter struct {
	ProductID  *id.ID
	ChangeType *ChangeType
	ChangedBy  string
	DateFrom   *time.Time
	DateTo     *time.Time
	Limit      int
	Offset     int
}

// SummaryRow aggregates audit records by change type over a range.
type SummaryRow struct {
	ChangeType   ChangeType `db:"change_type" json:"changeType"`
	Count        int64      `db:"cnt" json:"count"`
	NetQuantity  int64      `db:"net_quantity" json:"netQuantity"`
	TotalOut     int64      `db:"total_out" json:"totalOut"`
	TotalIn      int64      `db:"total_in" json:"totalIn"`
}

// Repository is the append-only audit store.
type Repository interface {
	Append(ctx context.Context, rec *Record) error
	GetByID(ctx context.Context, recordID id.ID) (*Record, error)
	Trail(ctx context.Context, filter TrailFilter) ([]Record, error)
	Summary(ctx context.Context, from, to time.Time) ([]SummaryRow, error)
}
