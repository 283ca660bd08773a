package memory

import (
	"context"
	"sort"
	"time"

	"liquorpos/internal/core/apperror"
	"liquorpos/internal/core/id"
	"liquorpos/internal/core/types"
	"liquorpos/internal/domain/documents/inward"
	"liquorpos/internal/domain/documents/sale"
)

type (
	saleRecord    = sale.Sale
	receiptRecord = inward.Receipt
)

// SaleRepo is the in-memory sale.Repository.
type SaleRepo struct {
	store *Store
}

var _ sale.Repository = (*SaleRepo)(nil)

func NewSaleRepo(store *Store) *SaleRepo {
	return &SaleRepo{store: store}
}

func (r *SaleRepo) Create(ctx context.Context, s *sale.Sale) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.sales[s.ID.String()]; ok {
		return apperror.NewDuplicate("sale", "id", s.ID.String())
	}
	cp := *s
	r.store.sales[s.ID.String()] = &cp
	return nil
}

func (r *SaleRepo) GetByID(ctx context.Context, saleID id.ID) (*sale.Sale, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	s, ok := r.store.sales[saleID.String()]
	if !ok {
		return nil, apperror.NewNotFound("sale", saleID.String())
	}
	cp := *s
	return &cp, nil
}

func (r *SaleRepo) ListByDay(ctx context.Context, day time.Time) ([]sale.Sale, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var out []sale.Sale
	for _, s := range r.store.sales {
		if types.SameDay(types.DayOf(s.Date), day) {
			out = append(out, *s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// InwardRepo is the in-memory inward.Repository.
type InwardRepo struct {
	store *Store
}

var _ inward.Repository = (*InwardRepo)(nil)

func NewInwardRepo(store *Store) *InwardRepo {
	return &InwardRepo{store: store}
}

func (r *InwardRepo) Create(ctx context.Context, rec *inward.Receipt) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.receipts[rec.ID.String()]; ok {
		return apperror.NewDuplicate("inward receipt", "id", rec.ID.String())
	}
	cp := *rec
	r.store.receipts[rec.ID.String()] = &cp
	return nil
}

func (r *InwardRepo) GetByID(ctx context.Context, receiptID id.ID) (*inward.Receipt, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	rec, ok := r.store.receipts[receiptID.String()]
	if !ok {
		return nil, apperror.NewNotFound("inward receipt", receiptID.String())
	}
	cp := *rec
	return &cp, nil
}

func (r *InwardRepo) ListByDay(ctx context.Context, day time.Time) ([]inward.Receipt, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var out []inward.Receipt
	for _, rec := range r.store.receipts {
		if types.SameDay(types.DayOf(rec.Date), day) {
			out = append(out, *rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}
