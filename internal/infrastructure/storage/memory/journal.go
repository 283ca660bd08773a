package memory

import (
	"context"
	"sort"
	"time"

	"liquorpos/internal/core/apperror"
	"liquorpos/internal/core/id"
	"liquorpos/internal/domain/audit"
	"liquorpos/internal/domain/movement"
)

type (
	movementRecord = movement.Movement
	auditRecord    = audit.Record
)

// MovementRepo is the in-memory movement.Repository.
type MovementRepo struct {
	store *Store
}

var _ movement.Repository = (*MovementRepo)(nil)

func NewMovementRepo(store *Store) *MovementRepo {
	return &MovementRepo{store: store}
}

func (r *MovementRepo) Append(ctx context.Context, m *movement.Movement) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.movements = append(r.store.movements, *m)
	return nil
}

func (r *MovementRepo) GetByID(ctx context.Context, movementID id.ID) (*movement.Movement, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for i := range r.store.movements {
		if r.store.movements[i].ID == movementID {
			cp := r.store.movements[i]
			return &cp, nil
		}
	}
	return nil, apperror.NewNotFound("movement", movementID.String())
}

func (r *MovementRepo) List(ctx context.Context, filter movement.ListFilter) ([]movement.Movement, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var out []movement.Movement
	for i := range r.store.movements {
		m := &r.store.movements[i]
		if filter.ProductID != nil && m.ProductID != *filter.ProductID {
			continue
		}
		if filter.Type != nil && m.Type != *filter.Type {
			continue
		}
		if filter.Category != nil && m.Category != *filter.Category {
			continue
		}
		if filter.DateFrom != nil && m.Date.Before(*filter.DateFrom) {
			continue
		}
		if filter.DateTo != nil && m.Date.After(*filter.DateTo) {
			continue
		}
		out = append(out, *m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })

	if filter.Offset > 0 {
		if filter.Offset >= len(out) {
			return nil, nil
		}
		out = out[filter.Offset:]
	}
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (r *MovementRepo) Summary(ctx context.Context, from, to time.Time) ([]movement.SummaryRow, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	type key struct {
		cat movement.Category
		typ movement.Type
	}
	agg := make(map[key]*movement.SummaryRow)
	for i := range r.store.movements {
		m := &r.store.movements[i]
		if m.Date.Before(from) || m.Date.After(to) {
			continue
		}
		k := key{m.Category, m.Type}
		row, ok := agg[k]
		if !ok {
			row = &movement.SummaryRow{Category: m.Category, Type: m.Type}
			agg[k] = row
		}
		row.Count++
		row.TotalQuantity += m.Quantity
	}

	out := make([]movement.SummaryRow, 0, len(agg))
	for _, row := range agg {
		out = append(out, *row)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Category != out[j].Category {
			return out[i].Category < out[j].Category
		}
		return out[i].Type < out[j].Type
	})
	return out, nil
}

// AuditRepo is the in-memory audit.Repository.
type AuditRepo struct {
	store *Store
}

var _ audit.Repository = (*AuditRepo)(nil)

func NewAuditRepo(store *Store) *AuditRepo {
	return &AuditRepo{store: store}
}

func (r *AuditRepo) Append(ctx context.Context, rec *audit.Record) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.audits = append(r.store.audits, *rec)
	return nil
}

func (r *AuditRepo) GetByID(ctx context.Context, recordID id.ID) (*audit.Record, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for i := range r.store.audits {
		if r.store.audits[i].ID == recordID {
			cp := r.store.audits[i]
			return &cp, nil
		}
	}
	return nil, apperror.NewNotFound("audit record", recordID.String())
}

func (r *AuditRepo) Trail(ctx context.Context, filter audit.TrailFilter) ([]audit.Record, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var out []audit.Record
	for i := range r.store.audits {
		rec := &r.store.audits[i]
		if filter.ProductID != nil && rec.ProductID != *filter.ProductID {
			continue
		}
		if filter.ChangeType != nil && rec.ChangeType != *filter.ChangeType {
			continue
		}
		if filter.ChangedBy != "" && rec.ChangedBy != filter.ChangedBy {
			continue
		}
		if filter.DateFrom != nil && rec.CreatedAt.Before(*filter.DateFrom) {
			continue
		}
		if filter.DateTo != nil && rec.CreatedAt.After(*filter.DateTo) {
			continue
		}
		out = append(out, *rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })

	if filter.Offset > 0 {
		if filter.Offset >= len(out) {
			return nil, nil
		}
		out = out[filter.Offset:]
	}
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (r *AuditRepo) Summary(ctx context.Context, from, to time.Time) ([]audit.SummaryRow, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	agg := make(map[audit.ChangeType]*audit.SummaryRow)
	for i := range r.store.audits {
		rec := &r.store.audits[i]
		if rec.CreatedAt.Before(from) || rec.CreatedAt.After(to) {
			continue
		}
		row, ok := agg[rec.ChangeType]
		if !ok {
			row = &audit.SummaryRow{ChangeType: rec.ChangeType}
			agg[rec.ChangeType] = row
		}
		row.Count++
		row.NetQuantity += rec.QuantityChanged
		if rec.QuantityChanged < 0 {
			row.TotalOut += -rec.QuantityChanged
		} else {
			row.TotalIn += rec.QuantityChanged
		}
	}

	out := make([]audit.SummaryRow, 0, len(agg))
	for _, row := range agg {
		out = append(out, *row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ChangeType < out[j].ChangeType })
	return out, nil
}
