// Package movement provides the append-only stock movement log.
// Movements record what kind of business event changed stock; they are
// immutable - never updated or deleted after creation.
package movement

import (
	"time"

	"liquorpos/internal/core/id"
	"liquorpos/internal/core/types"
	"liquorpos/internal/domain/reference"

	"github.com/shopspring/decimal"
)

// Type defines movement direction or nature.
type Type string

const (
	TypeIn             Type = "in"
	TypeOut            Type = "out"
	TypeAdjustment     Type = "adjustment"
	TypeTransfer       Type = "transfer"
	TypeReconciliation Type = "reconciliation"
)

// Category names the business event behind a movement.
type Category string

const (
	CategorySale           Category = "sale"
	CategoryStockInward    Category = "stock_inward"
	CategoryAdjustment     Category = "stock_adjustment"
	CategoryTransfer       Category = "stock_transfer"
	CategoryReconciliation Category = "stock_reconciliation"
	CategoryOpeningStock   Category = "opening_stock"
	CategoryClosingStock   Category = "closing_stock"
)

// Status of a movement record.
type Status string

const (
	StatusCompleted Status = "completed"
	StatusVoided    Status = "voided"
)

// Movement is one immutable stock-changing event.
type Movement struct {
	ID        id.ID               `db:"id" json:"id"`
	ProductID id.ID               `db:"product_id" json:"productId"`
	Type      Type                `db:"movement_type" json:"movementType"`
	Category  Category            `db:"movement_category" json:"movementCategory"`
	Quantity  int64               `db:"quantity" json:"quantity"`
	UnitCost  types.Money         `db:"unit_cost" json:"unitCost"`
	TotalCost types.Money         `db:"total_cost" json:"totalCost"`
	Reference reference.Reference `db:"-" json:"reference"`
	Date      time.Time           `db:"movement_date" json:"date"`
	CreatedBy string              `db:"created_by" json:"createdBy"`
	Status    Status              `db:"status" json:"status"`
	Metadata  types.Metadata      `db:"metadata" json:"metadata,omitempty"`
	CreatedAt time.Time           `db:"created_at" json:"createdAt"`
}

// New creates a Movement with derived total cost.
// TotalCost is computed once at write time and never retroactively.
func New(productID id.ID, typ Type, category Category, quantity int64, unitCost types.Money, ref reference.Reference, date time.Time, createdBy string) Movement {
	return Movement{
		ID:        id.New(),
		ProductID: productID,
		Type:      typ,
		Category:  category,
		Quantity:  quantity,
		UnitCost:  unitCost,
		TotalCost: unitCost.Mul(decimal.NewFromInt(quantity)),
		Reference: ref,
		Date:      date,
		CreatedBy: createdBy,
		Status:    StatusCompleted,
		CreatedAt: time.Now().UTC(),
	}
}

// SignedQuantity returns quantity with sign based on movement type.
// "in" increases stock, "out" decreases; other types are reported as-is.
func (m *Movement) SignedQuantity() int64 {
	if m.Type == TypeOut {
		return -m.Quantity
	}
	return m.Quantity
}
