package ledger

import (
	"context"
	"time"

	"liquorpos/internal/core/id"
)

// Repository persists ledger entries. One entry per (product, day) is
// enforced by the store; Create returns a duplicate error when the row
// already exists.
//
// ApplySale, ApplyInward and SetOpening are atomic increments: the store
// must apply the delta and rederive closing stock and stock value in the
// same statement, so concurrent writers never lose updates.
type Repository interface {
	Create(ctx context.Context, e *Entry) error
	GetByID(ctx context.Context, entryID id.ID) (*Entry, error)
	Get(ctx context.Context, productID id.ID, day time.Time) (*Entry, error)
	// GetLatestBefore returns the most recent entry for the product
	// strictly before the given day, or a not-found error.
	GetLatestBefore(ctx context.Context, productID id.ID, day time.Time) (*Entry, error)

	// ApplySale atomically adds qty to sold_quantity and rederives the
	// entry, returning the updated row.
	ApplySale(ctx context.Context, productID id.ID, day time.Time, qty int64) (*Entry, error)
	// ApplyInward atomically adds qty to inward_quantity and rederives
	// the entry, returning the updated row.
	ApplyInward(ctx context.Context, productID id.ID, day time.Time, qty int64) (*Entry, error)
	// SetOpening atomically sets opening_stock and rederives the entry.
	SetOpening(ctx context.Context, productID id.ID, day time.Time, opening int64) (*Entry, error)
	// RecordPhysical writes the physical count fields for the entry.
	RecordPhysical(ctx context.Context, productID id.ID, day time.Time, physical int64, countedBy string, at time.Time) (*Entry, error)

	// Update rewrites a full entry row. Used by integrity repair only;
	// normal mutations go through the atomic methods above.
	Update(ctx context.Context, e *Entry) error

	ListByDay(ctx context.Context, day time.Time) ([]Entry, error)
	ListByProduct(ctx context.Context, productID id.ID, from, to time.Time) ([]Entry, error)
	ListRange(ctx context.Context, from, to time.Time) ([]Entry, error)
}
