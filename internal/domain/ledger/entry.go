// Package ledger implements the per-product, per-day stock ledger and
// the daily stock engine that maintains it.
package ledger

import (
	"time"

	"liquorpos/internal/core/id"
	"liquorpos/internal/core/types"

	"github.com/shopspring/decimal"
)

// Entry is one product's stock ledger row for one business day.
// Closing stock and stock value are derived fields; call Recompute after
// mutating opening, inward or sold quantities in memory. Persistent
// mutations go through Repository, which keeps the derivation in the
// same statement.
type Entry struct {
	ID             id.ID       `db:"id" json:"id"`
	ProductID      id.ID       `db:"product_id" json:"productId"`
	Date           time.Time   `db:"entry_date" json:"date"`
	OpeningStock   int64       `db:"opening_stock" json:"openingStock"`
	InwardQuantity int64       `db:"inward_quantity" json:"inwardQuantity"`
	SoldQuantity   int64       `db:"sold_quantity" json:"soldQuantity"`
	ClosingStock   int64       `db:"closing_stock" json:"closingStock"`
	UnitCost       types.Money `db:"unit_cost" json:"unitCost"`
	StockValue     types.Money `db:"stock_value" json:"stockValue"`

	// Physical count fields populated by reconciliation.
	PhysicalStock   *int64     `db:"physical_stock" json:"physicalStock,omitempty"`
	VarianceQty     *int64     `db:"variance_qty" json:"varianceQty,omitempty"`
	PhysicalCountAt *time.Time `db:"physical_count_at" json:"physicalCountAt,omitempty"`
	CountedBy       string     `db:"counted_by" json:"countedBy,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// New creates an entry for a product and day with the given opening
// stock and unit cost, derived fields already computed.
func New(productID id.ID, day time.Time, openingStock int64, unitCost types.Money) Entry {
	now := time.Now().UTC()
	e := Entry{
		ID:           id.New(),
		ProductID:    productID,
		Date:         types.DayOf(day),
		OpeningStock: openingStock,
		UnitCost:     unitCost,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	e.Recompute()
	return e
}

// Recompute rederives closing stock and stock value from the quantity
// fields. It is the single source of the derivation:
//
//	closing = opening + inward - sold
//	value   = closing * unit_cost
func (e *Entry) Recompute() {
	e.ClosingStock = e.OpeningStock + e.InwardQuantity - e.SoldQuantity
	e.StockValue = e.UnitCost.Mul(decimal.NewFromInt(e.ClosingStock))
	if e.PhysicalStock != nil {
		v := *e.PhysicalStock - e.ClosingStock
		e.VarianceQty = &v
	}
}

// Consistent reports whether the stored derived fields match a fresh
// derivation within the money tolerance.
func (e *Entry) Consistent() bool {
	if e.ClosingStock != e.OpeningStock+e.InwardQuantity-e.SoldQuantity {
		return false
	}
	want := e.UnitCost.Mul(decimal.NewFromInt(e.ClosingStock))
	return types.MoneyEqualWithin(e.StockValue, want)
}

// SetPhysicalCount records a physical count on the entry and derives
// the variance against closing stock.
func (e *Entry) SetPhysicalCount(physical int64, countedBy string, at time.Time) {
	e.PhysicalStock = &physical
	v := physical - e.ClosingStock
	e.VarianceQty = &v
	t := at.UTC()
	e.PhysicalCountAt = &t
	e.CountedBy = countedBy
	e.UpdatedAt = time.Now().UTC()
}
