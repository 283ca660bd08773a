package audit

import (
	"context"
	"time"

	"liquorpos/internal/core/apperror"
	"liquorpos/internal/core/id"
	"liquorpos/internal/core/types"
	"liquorpos/internal/domain/reference"
)

// Service validates and appends audit records.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Log appends one audit record. A zero delta is allowed: reconciliation
// of a matching count still leaves a trail entry.
func (s *Service) Log(ctx context.Context, productID id.ID, changeType ChangeType, oldQty, newQty int64, ref reference.Reference, reason, changedBy string) (*Record, error) {
	if id.IsNil(productID) {
		return nil, apperror.NewValidation("product id is required")
	}
	if !validChangeTypes[changeType] {
		return nil, apperror.NewValidation("unknown change type: " + string(changeType))
	}
	if changedBy == "" {
		return nil, apperror.NewValidation("changed_by is required")
	}

	rec := NewRecord(productID, changeType, oldQty, newQty, ref, reason, changedBy)
	if err := s.repo.Append(ctx, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// LogWithMetadata is Log with an extra opaque metadata payload attached.
func (s *Service) LogWithMetadata(ctx context.Context, productID id.ID, changeType ChangeType, oldQty, newQty int64, ref reference.Reference, reason, changedBy string, meta types.Metadata) (*Record, error) {
	if id.IsNil(productID) {
		return nil, apperror.NewValidation("product id is required")
	}
	if !validChangeTypes[changeType] {
		return nil, apperror.NewValidation("unknown change type: " + string(changeType))
	}
	if changedBy == "" {
		return nil, apperror.NewValidation("changed_by is required")
	}

	rec := NewRecord(productID, changeType, oldQty, newQty, ref, reason, changedBy)
	rec.Metadata = meta
	if err := s.repo.Append(ctx, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// Trail returns audit records matching the filter, newest first.
func (s *Service) Trail(ctx context.Context, filter TrailFilter) ([]Record, error) {
	if filter.Limit <= 0 {
		filter.Limit = 100
	}
	if filter.Limit > 500 {
		filter.Limit = 500
	}
	return s.repo.Trail(ctx, filter)
}

func (s *Service) Summary(ctx context.Context, from, to time.Time) ([]SummaryRow, error) {
	if to.Before(from) {
		return nil, apperror.NewValidation("date range end is before start")
	}
	return s.repo.Summary(ctx, from, to)
}
