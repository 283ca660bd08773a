// Package category provides the product category catalog.
package category

import (
	"context"
	"time"

	"liquorpos/internal/core/apperror"
	"liquorpos/internal/core/id"
)

// Category groups products (whisky, wine, beer, ...).
type Category struct {
	ID          id.ID     `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Description string    `db:"description" json:"description,omitempty"`
	Active      bool      `db:"active" json:"active"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time `db:"updated_at" json:"updatedAt"`
}

// New creates a Category with generated ID.
func New(name, description string) *Category {
	now := time.Now().UTC()
	return &Category{
		ID:          id.New(),
		Name:        name,
		Description: description,
		Active:      true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Repository defines persistence operations for categories.
type Repository interface {
	Create(ctx context.Context, c *Category) error
	GetByID(ctx context.Context, categoryID id.ID) (*Category, error)
	Update(ctx context.Context, c *Category) error
	List(ctx context.Context) ([]Category, error)
}

// Service provides category CRUD.
type Service struct {
	repo Repository
}

// NewService creates a category service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create creates a category.
func (s *Service) Create(ctx context.Context, c *Category) error {
	if c.Name == "" {
		return apperror.NewValidation("name is required").WithDetail("field", "name")
	}
	return s.repo.Create(ctx, c)
}

// GetByID retrieves a category.
func (s *Service) GetByID(ctx context.Context, categoryID id.ID) (*Category, error) {
	return s.repo.GetByID(ctx, categoryID)
}

// Update updates a category.
func (s *Service) Update(ctx context.Context, c *Category) error {
	if c.Name == "" {
		return apperror.NewValidation("name is required").WithDetail("field", "name")
	}
	return s.repo.Update(ctx, c)
}

// List retrieves all categories.
func (s *Service) List(ctx context.Context) ([]Category, error) {
	return s.repo.List(ctx)
}
