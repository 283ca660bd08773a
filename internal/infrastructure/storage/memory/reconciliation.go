package memory

import (
	"context"
	"sort"
	"time"

	"liquorpos/internal/core/apperror"
	"liquorpos/internal/core/id"
	"liquorpos/internal/core/types"
	"liquorpos/internal/domain/reconciliation"
)

type sessionRecord struct {
	session reconciliation.Session
	items   []reconciliation.Item
}

// ReconciliationRepo is the in-memory reconciliation.Repository.
type ReconciliationRepo struct {
	store *Store
}

var _ reconciliation.Repository = (*ReconciliationRepo)(nil)

func NewReconciliationRepo(store *Store) *ReconciliationRepo {
	return &ReconciliationRepo{store: store}
}

func (r *ReconciliationRepo) Create(ctx context.Context, s *reconciliation.Session) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.sessions[s.ID.String()]; ok {
		return apperror.NewDuplicate("reconciliation session", "id", s.ID.String())
	}
	cp := *s
	cp.Items = nil
	r.store.sessions[s.ID.String()] = &sessionRecord{session: cp}
	return nil
}

func (r *ReconciliationRepo) GetByID(ctx context.Context, sessionID id.ID) (*reconciliation.Session, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	rec, ok := r.store.sessions[sessionID.String()]
	if !ok {
		return nil, apperror.NewNotFound("reconciliation session", sessionID.String())
	}
	return r.assembleLocked(rec), nil
}

func (r *ReconciliationRepo) assembleLocked(rec *sessionRecord) *reconciliation.Session {
	s := rec.session
	s.Items = make([]reconciliation.Item, len(rec.items))
	copy(s.Items, rec.items)
	return &s
}

func (r *ReconciliationRepo) GetActiveForDay(ctx context.Context, day time.Time) (*reconciliation.Session, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, rec := range r.store.sessions {
		if types.SameDay(rec.session.Date, day) && rec.session.Status.Active() {
			return r.assembleLocked(rec), nil
		}
	}
	return nil, apperror.NewNotFound("reconciliation session", types.FormatDay(day))
}

func (r *ReconciliationRepo) Update(ctx context.Context, s *reconciliation.Session) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	rec, ok := r.store.sessions[s.ID.String()]
	if !ok {
		return apperror.NewNotFound("reconciliation session", s.ID.String())
	}
	cp := *s
	cp.Items = nil
	rec.session = cp
	return nil
}

func (r *ReconciliationRepo) AddItem(ctx context.Context, item *reconciliation.Item) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	rec, ok := r.store.sessions[item.SessionID.String()]
	if !ok {
		return apperror.NewNotFound("reconciliation session", item.SessionID.String())
	}
	rec.items = append(rec.items, *item)
	return nil
}

func (r *ReconciliationRepo) UpdateItem(ctx context.Context, item *reconciliation.Item) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	rec, ok := r.store.sessions[item.SessionID.String()]
	if !ok {
		return apperror.NewNotFound("reconciliation session", item.SessionID.String())
	}
	for i := range rec.items {
		if rec.items[i].ID == item.ID {
			rec.items[i] = *item
			return nil
		}
	}
	return apperror.NewNotFound("reconciliation item", item.ID.String())
}

func (r *ReconciliationRepo) List(ctx context.Context, filter reconciliation.ListFilter) ([]reconciliation.Session, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var out []reconciliation.Session
	for _, rec := range r.store.sessions {
		s := rec.session
		if filter.Status != nil && s.Status != *filter.Status {
			continue
		}
		if filter.DateFrom != nil && s.Date.Before(*filter.DateFrom) {
			continue
		}
		if filter.DateTo != nil && s.Date.After(*filter.DateTo) {
			continue
		}
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })

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
