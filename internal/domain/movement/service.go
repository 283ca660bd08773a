package movement

import (
	"context"
	"time"

	"liquorpos/internal/core/apperror"
	"liquorpos/internal/core/id"
	"liquorpos/internal/core/types"
	"liquorpos/internal/domain/reference"
)

var validCategories = map[Category]bool{
	CategorySale:           true,
	CategoryStockInward:    true,
	CategoryAdjustment:     true,
	CategoryTransfer:       true,
	CategoryReconciliation: true,
	CategoryOpeningStock:   true,
	CategoryClosingStock:   true,
}

var validTypes = map[Type]bool{
	TypeIn:             true,
	TypeOut:            true,
	TypeAdjustment:     true,
	TypeTransfer:       true,
	TypeReconciliation: true,
}

// Service validates and appends movement records.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Record appends a new movement. Quantity must be positive: direction is
// carried by the movement type, not by the sign.
func (s *Service) Record(ctx context.Context, productID id.ID, typ Type, category Category, quantity int64, unitCost types.Money, ref reference.Reference, date time.Time, createdBy string) (*Movement, error) {
	if id.IsNil(productID) {
		return nil, apperror.NewValidation("product id is required")
	}
	if quantity <= 0 {
		return nil, apperror.NewValidation("quantity must be positive")
	}
	if !validTypes[typ] {
		return nil, apperror.NewValidation("unknown movement type: " + string(typ))
	}
	if !validCategories[category] {
		return nil, apperror.NewValidation("unknown movement category: " + string(category))
	}
	if !ref.Kind.Valid() {
		return nil, apperror.NewValidation("unknown reference kind: " + string(ref.Kind))
	}

	m := New(productID, typ, category, quantity, unitCost, ref, date, createdBy)
	if err := s.repo.Append(ctx, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

func (s *Service) GetByID(ctx context.Context, movementID id.ID) (*Movement, error) {
	return s.repo.GetByID(ctx, movementID)
}

// List returns movements matching the filter, newest first.
// Limit defaults to 100 and is capped at 500.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]Movement, error) {
	if filter.Limit <= 0 {
		filter.Limit = 100
	}
	if filter.Limit > 500 {
		filter.Limit = 500
	}
	return s.repo.List(ctx, filter)
}

func (s *Service) Summary(ctx context.Context, from, to time.Time) ([]SummaryRow, error) {
	if to.Before(from) {
		return nil, apperror.NewValidation("date range end is before start")
	}
	return s.repo.Summary(ctx, from, to)
}
