package product

import (
	"context"
	"fmt"

	"liquorpos/internal/core/apperror"
	"liquorpos/internal/core/id"
	"liquorpos/pkg/logger"
)

// Service provides catalog operations for products.
// Stock-changing operations live in the ledger engine, not here: the catalog
// only owns descriptive fields and the uniqueness of SKUs.
type Service struct {
	repo Repository
}

// NewService creates a product service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create creates a new product.
func (s *Service) Create(ctx context.Context, p *Product) error {
	if err := p.Validate(ctx); err != nil {
		return err
	}

	if existing, err := s.repo.GetBySKU(ctx, p.SKU); err == nil && existing != nil {
		return apperror.NewDuplicate("product", "sku", p.SKU)
	} else if err != nil && !apperror.IsNotFound(err) {
		return fmt.Errorf("check sku: %w", err)
	}

	if err := s.repo.Create(ctx, p); err != nil {
		return fmt.Errorf("create product: %w", err)
	}

	logger.Info(ctx, "product created", "id", p.ID, "sku", p.SKU)
	return nil
}

// GetByID retrieves a product.
func (s *Service) GetByID(ctx context.Context, productID id.ID) (*Product, error) {
	return s.repo.GetByID(ctx, productID)
}

// Update updates descriptive fields. CurrentStock is ignored here; live stock
// changes only through AdjustStock/SetStock paths that log movements.
func (s *Service) Update(ctx context.Context, p *Product) error {
	if err := p.Validate(ctx); err != nil {
		return err
	}

	current, err := s.repo.GetByID(ctx, p.ID)
	if err != nil {
		return err
	}
	p.CurrentStock = current.CurrentStock

	return s.repo.Update(ctx, p)
}

// Deactivate marks a product inactive. Inactive products keep their ledger
// history but are excluded from snapshots and reconciliation sessions.
func (s *Service) Deactivate(ctx context.Context, productID id.ID) error {
	p, err := s.repo.GetByID(ctx, productID)
	if err != nil {
		return err
	}
	p.Active = false
	return s.repo.Update(ctx, p)
}

// List retrieves products with filtering.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]Product, error) {
	if filter.Limit <= 0 {
		filter.Limit = 100
	}
	if filter.Limit > 500 {
		filter.Limit = 500
	}
	return s.repo.List(ctx, filter)
}
