package reconciliation

import (
	"context"
	"time"

	"liquorpos/internal/core/id"
)

// ListFilter narrows session queries.
type ListFilter struct {
	Status   *Status
	DateFrom *time.Time
	DateTo   *time.Time
	Limit    int
	Offset   int
}

// Repository persists reconciliation sessions and their items.
// GetByID and GetActiveForDay load items along with the session.
type Repository interface {
	Create(ctx context.Context, s *Session) error
	GetByID(ctx context.Context, sessionID id.ID) (*Session, error)
	// GetActiveForDay returns the session blocking the day, if any
	// (in_progress, pending_approval or approved), or a not-found error.
	GetActiveForDay(ctx context.Context, day time.Time) (*Session, error)
	Update(ctx context.Context, s *Session) error
	AddItem(ctx context.Context, item *Item) error
	UpdateItem(ctx context.Context, item *Item) error
	List(ctx context.Context, filter ListFilter) ([]Session, error)
}
