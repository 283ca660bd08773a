// Package reference provides the typed link between stock-changing records
// and the business entity that caused them. It replaces the untyped
// id-plus-discriminator pair with a closed set of reference kinds.
package reference

import (
	"fmt"

	"liquorpos/internal/core/id"
)

// Kind enumerates the entity kinds a movement or audit record may point at.
type Kind string

const (
	KindSale             Kind = "sale"
	KindStockInward      Kind = "stock_inward"
	KindReconciliation   Kind = "stock_reconciliation"
	KindDailyStock       Kind = "daily_stock"
	KindManualAdjustment Kind = "manual_adjustment"
)

// Valid reports whether k is a known reference kind.
func (k Kind) Valid() bool {
	switch k {
	case KindSale, KindStockInward, KindReconciliation, KindDailyStock, KindManualAdjustment:
		return true
	}
	return false
}

// Reference is a tagged link to the causing entity.
// Manual adjustments have no causing entity; their ID is nil.
type Reference struct {
	Kind Kind  `db:"reference_type" json:"referenceType"`
	ID   id.ID `db:"reference_id" json:"referenceId"`
}

// New creates a Reference to a concrete entity.
func New(kind Kind, entityID id.ID) Reference {
	return Reference{Kind: kind, ID: entityID}
}

// Manual returns the reference used for operator-initiated adjustments.
func Manual() Reference {
	return Reference{Kind: KindManualAdjustment, ID: id.Nil()}
}

// String renders the reference for logs.
func (r Reference) String() string {
	if id.IsNil(r.ID) {
		return string(r.Kind)
	}
	return fmt.Sprintf("%s:%s", r.Kind, r.ID)
}
