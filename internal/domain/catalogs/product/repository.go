package product

import (
	"context"

	"liquorpos/internal/core/id"
)

// Repository defines persistence operations for products.
type Repository interface {
	Create(ctx context.Context, p *Product) error
	GetByID(ctx context.Context, productID id.ID) (*Product, error)
	GetBySKU(ctx context.Context, sku string) (*Product, error)
	Update(ctx context.Context, p *Product) error
	List(ctx context.Context, filter ListFilter) ([]Product, error)
	ListActive(ctx context.Context) ([]Product, error)

	// Live stock operations. Both are atomic at the storage layer: AdjustStock
	// applies a relative delta, SetStock overwrites and returns the value it
	// replaced. Concurrent callers must never lose an update.
	AdjustStock(ctx context.Context, productID id.ID, delta int64) (newValue int64, err error)
	SetStock(ctx context.Context, productID id.ID, value int64) (oldValue int64, err error)
}

// ListFilter narrows product listings.
type ListFilter struct {
	CategoryID   *id.ID
	Active       *bool
	NameContains string
	Limit        int
	Offset       int
}
