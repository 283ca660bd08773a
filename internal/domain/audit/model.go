// Package audit provides the append-only stock audit trail.
// Every stock change produces one audit record carrying the old and new
// quantity, actor attribution and a reference to the causing document.
package audit

import (
	"time"

	"liquorpos/internal/core/id"
	"liquorpos/internal/core/types"
	"liquorpos/internal/domain/reference"
)

// ChangeType names the kind of stock change being audited.
type ChangeType string

const (
	ChangeSale             ChangeType = "sale"
	ChangeInward           ChangeType = "inward"
	ChangeAdjustment       ChangeType = "adjustment"
	ChangeReconciliation   ChangeType = "reconciliation"
	ChangeOpeningStock     ChangeType = "opening_stock"
	ChangeClosingStock     ChangeType = "closing_stock"
	ChangeManualAdjustment ChangeType = "manual_adjustment"
)

var validChangeTypes = map[ChangeType]bool{
	ChangeSale:             true,
	ChangeInward:           true,
	ChangeAdjustment:       true,
	ChangeReconciliation:   true,
	ChangeOpeningStock:     true,
	ChangeClosingStock:     true,
	ChangeManualAdjustment: true,
}

// Record is one immutable audit trail entry.
// QuantityChanged is always NewQuantity - OldQuantity, derived at write time.
type Record struct {
	ID              id.ID               `db:"id" json:"id"`
	ProductID       id.ID               `db:"product_id" json:"productId"`
	ChangeType      ChangeType          `db:"change_type" json:"changeType"`
	OldQuantity     int64               `db:"old_quantity" json:"oldQuantity"`
	NewQuantity     int64               `db:"new_quantity" json:"newQuantity"`
	QuantityChanged int64               `db:"quantity_changed" json:"quantityChanged"`
	Reference       reference.Reference `db:"-" json:"reference"`
	Reason          string              `db:"reason" json:"reason,omitempty"`
	ChangedBy       string              `db:"changed_by" json:"changedBy"`
	Metadata        types.Metadata      `db:"metadata" json:"metadata,omitempty"`
	CreatedAt       time.Time           `db:"created_at" json:"createdAt"`
}

// NewRecord builds an audit record with the derived delta.
func NewRecord(productID id.ID, changeType ChangeType, oldQty, newQty int64, ref reference.Reference, reason, changedBy string) Record {
	return Record{
		ID:              id.New(),
		ProductID:       productID,
		ChangeType:      changeType,
		OldQuantity:     oldQty,
		NewQuantity:     newQty,
		QuantityChanged: newQty - oldQty,
		Reference:       ref,
		Reason:          reason,
		ChangedBy:       changedBy,
		CreatedAt:       time.Now().UTC(),
	}
}
