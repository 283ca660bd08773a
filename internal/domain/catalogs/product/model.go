// Package product provides the product catalog.
package product

import (
	"context"
	"time"

	"liquorpos/internal/core/apperror"
	"liquorpos/internal/core/id"
	"liquorpos/internal/core/types"
)

// Product is a sellable item. CurrentStock is the live quantity shown at the
// point of sale; the daily ledger keeps its own per-day accounting and the
// two are reconciled by the daily-close sync and by reconciliation sessions.
type Product struct {
	ID           id.ID       `db:"id" json:"id"`
	Name         string      `db:"name" json:"name"`
	SKU          string      `db:"sku" json:"sku"`
	CategoryID   id.ID       `db:"category_id" json:"categoryId"`
	CostPrice    types.Money `db:"cost_price" json:"costPrice"`
	SellingPrice types.Money `db:"selling_price" json:"sellingPrice"`
	CurrentStock int64       `db:"current_stock" json:"currentStock"`
	MinStock     int64       `db:"min_stock" json:"minStock"`
	Active       bool        `db:"active" json:"active"`
	CreatedAt    time.Time   `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time   `db:"updated_at" json:"updatedAt"`
}

// New creates a Product with generated ID and timestamps.
func New(name, sku string, categoryID id.ID) *Product {
	now := time.Now().UTC()
	return &Product{
		ID:         id.New(),
		Name:       name,
		SKU:        sku,
		CategoryID: categoryID,
		Active:     true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// Validate checks product invariants.
func (p *Product) Validate(ctx context.Context) error {
	if p.Name == "" {
		return apperror.NewValidation("name is required").WithDetail("field", "name")
	}
	if p.SKU == "" {
		return apperror.NewValidation("sku is required").WithDetail("field", "sku")
	}
	if p.CostPrice.IsNegative() {
		return apperror.NewValidation("cost price must not be negative").WithDetail("field", "costPrice")
	}
	if p.SellingPrice.IsNegative() {
		return apperror.NewValidation("selling price must not be negative").WithDetail("field", "sellingPrice")
	}
	if p.MinStock < 0 {
		return apperror.NewValidation("minimum stock must not be negative").WithDetail("field", "minStock")
	}
	return nil
}
