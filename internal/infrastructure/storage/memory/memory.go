// Package memory provides in-memory implementations of every
// repository. They back the unit tests and the dev mode where no
// PostgreSQL is available; behavior mirrors the postgres package,
// including duplicate detection and atomic increments.
package memory

import (
	"context"
	"sync"

	"liquorpos/internal/core/tx"
)

// Store bundles the shared mutex and the per-entity maps. All repos
// created from one Store see the same data and serialize on one lock,
// which gives the same lost-update safety the SQL single-statement
// increments give.
type Store struct {
	mu sync.Mutex

	products        map[string]*productRecord
	categories      map[string]*categoryRecord
	entries         map[string]*entryRecord
	movements       []movementRecord
	audits          []auditRecord
	sessions        map[string]*sessionRecord
	sales           map[string]*saleRecord
	receipts        map[string]*receiptRecord
	users           map[string]*userRecord
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		products:   make(map[string]*productRecord),
		categories: make(map[string]*categoryRecord),
		entries:    make(map[string]*entryRecord),
		sessions:   make(map[string]*sessionRecord),
		sales:      make(map[string]*saleRecord),
		receipts:   make(map[string]*receiptRecord),
		users:      make(map[string]*userRecord),
	}
}

// TxManager is a pass-through transaction manager. The memory store has
// no rollback; operations are individually atomic under the store lock.
type TxManager struct{}

var _ tx.Manager = (*TxManager)(nil)

func NewTxManager() *TxManager { return &TxManager{} }

func (m *TxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (m *TxManager) ReadOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
