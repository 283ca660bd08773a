package movement

import (
	"context"
	"time"

	"liquorpos/internal/core/id"
)

// ListFilter narrows movement queries.
type ListFilter struct {
	ProductID *id.ID
	Type      *Type
	Category  *Category
	DateFrom  *time.Time
	DateTo    *time.Time
	Limit     int
	Offset    int
}

// SummaryRow is one aggregate line of the movement summary,
// grouped by category and type over a date range.
type SummaryRow struct {
	Category      Category `db:"movement_category" json:"category"`
	Type          Type     `db:"movement_type" json:"type"`
	Count         int64    `db:"cnt" json:"count"`
	TotalQuantity int64    `db:"total_quantity" json:"totalQuantity"`
}

// Repository is the append-only movement store.
// There is deliberately no Update or Delete.
type Repository interface {
	Append(ctx context.Context, m *Movement) error
	GetByID(ctx context.Context, movementID id.ID) (*Movement, error)
	List(ctx context.Context, filter ListFilter) ([]Movement, error)
	Summary(ctx context.Context, from, to time.Time) ([]SummaryRow, error)
}
