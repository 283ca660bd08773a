package memory

import (
	"context"
	"sort"
	"time"

	"liquorpos/internal/core/apperror"
	"liquorpos/internal/core/id"
	"liquorpos/internal/core/types"
	"liquorpos/internal/domain/ledger"
)

type entryRecord = ledger.Entry

func entryKey(productID id.ID, day time.Time) string {
	return productID.String() + "|" + types.FormatDay(day)
}

// LedgerRepo is the in-memory ledger.Repository. The store lock makes
// each increment atomic, matching the single-statement SQL updates.
type LedgerRepo struct {
	store *Store
}

var _ ledger.Repository = (*LedgerRepo)(nil)

func NewLedgerRepo(store *Store) *LedgerRepo {
	return &LedgerRepo{store: store}
}

func (r *LedgerRepo) Create(ctx context.Context, e *ledger.Entry) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	key := entryKey(e.ProductID, e.Date)
	if _, ok := r.store.entries[key]; ok {
		return apperror.NewDuplicate("ledger entry", "product_id,entry_date", key)
	}
	cp := *e
	r.store.entries[key] = &cp
	return nil
}

func (r *LedgerRepo) GetByID(ctx context.Context, entryID id.ID) (*ledger.Entry, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, e := range r.store.entries {
		if e.ID == entryID {
			cp := *e
			return &cp, nil
		}
	}
	return nil, apperror.NewNotFound("ledger entry", entryID.String())
}

func (r *LedgerRepo) Get(ctx context.Context, productID id.ID, day time.Time) (*ledger.Entry, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return r.getLocked(productID, day)
}

func (r *LedgerRepo) getLocked(productID id.ID, day time.Time) (*ledger.Entry, error) {
	e, ok := r.store.entries[entryKey(productID, day)]
	if !ok {
		return nil, apperror.NewNotFound("ledger entry", productID.String())
	}
	cp := *e
	return &cp, nil
}

func (r *LedgerRepo) GetLatestBefore(ctx context.Context, productID id.ID, day time.Time) (*ledger.Entry, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var latest *ledger.Entry
	for _, e := range r.store.entries {
		if e.ProductID != productID || !e.Date.Before(day) {
			continue
		}
		if latest == nil || e.Date.After(latest.Date) {
			latest = e
		}
	}
	if latest == nil {
		return nil, apperror.NewNotFound("ledger entry", productID.String())
	}
	cp := *latest
	return &cp, nil
}

func (r *LedgerRepo) mutate(productID id.ID, day time.Time, fn func(e *ledger.Entry)) (*ledger.Entry, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	e, ok := r.store.entries[entryKey(productID, day)]
	if !ok {
		return nil, apperror.NewNotFound("ledger entry", productID.String())
	}
	fn(e)
	e.Recompute()
	e.UpdatedAt = time.Now().UTC()
	cp := *e
	return &cp, nil
}

func (r *LedgerRepo) ApplySale(ctx context.Context, productID id.ID, day time.Time, qty int64) (*ledger.Entry, error) {
	return r.mutate(productID, day, func(e *ledger.Entry) { e.SoldQuantity += qty })
}

func (r *LedgerRepo) ApplyInward(ctx context.Context, productID id.ID, day time.Time, qty int64) (*ledger.Entry, error) {
	return r.mutate(productID, day, func(e *ledger.Entry) { e.InwardQuantity += qty })
}

func (r *LedgerRepo) SetOpening(ctx context.Context, productID id.ID, day time.Time, opening int64) (*ledger.Entry, error) {
	return r.mutate(productID, day, func(e *ledger.Entry) { e.OpeningStock = opening })
}

func (r *LedgerRepo) RecordPhysical(ctx context.Context, productID id.ID, day time.Time, physical int64, countedBy string, at time.Time) (*ledger.Entry, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	e, ok := r.store.entries[entryKey(productID, day)]
	if !ok {
		return nil, apperror.NewNotFound("ledger entry", productID.String())
	}
	e.SetPhysicalCount(physical, countedBy, at)
	cp := *e
	return &cp, nil
}

func (r *LedgerRepo) Update(ctx context.Context, e *ledger.Entry) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	key := entryKey(e.ProductID, e.Date)
	if _, ok := r.store.entries[key]; !ok {
		return apperror.NewNotFound("ledger entry", e.ID.String())
	}
	cp := *e
	r.store.entries[key] = &cp
	return nil
}

func (r *LedgerRepo) ListByDay(ctx context.Context, day time.Time) ([]ledger.Entry, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var out []ledger.Entry
	for _, e := range r.store.entries {
		if types.SameDay(e.Date, day) {
			out = append(out, *e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProductID.String() < out[j].ProductID.String() })
	return out, nil
}

func (r *LedgerRepo) ListByProduct(ctx context.Context, productID id.ID, from, to time.Time) ([]ledger.Entry, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var out []ledger.Entry
	for _, e := range r.store.entries {
		if e.ProductID != productID {
			continue
		}
		if e.Date.Before(from) || e.Date.After(to) {
			continue
		}
		out = append(out, *e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (r *LedgerRepo) ListRange(ctx context.Context, from, to time.Time) ([]ledger.Entry, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var out []ledger.Entry
	for _, e := range r.store.entries {
		if e.Date.Before(from) || e.Date.After(to) {
			continue
		}
		out = append(out, *e)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ProductID != out[j].ProductID {
			return out[i].ProductID.String() < out[j].ProductID.String()
		}
		return out[i].Date.Before(out[j].Date)
	})
	return out, nil
}
