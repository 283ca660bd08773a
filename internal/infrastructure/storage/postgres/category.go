package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"liquorpos/internal/core/apperror"
	"liquorpos/internal/core/id"
	"liquorpos/internal/domain/catalogs/category"
)

const categoriesTable = "cat_categories"

// CategoryRepo implements category.Repository.
type CategoryRepo struct {
	txm     *TxManager
	builder squirrel.StatementBuilderType
}

var _ category.Repository = (*CategoryRepo)(nil)

func NewCategoryRepo(txm *TxManager) *CategoryRepo {
	return &CategoryRepo{
		txm:     txm,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func (r *CategoryRepo) Create(ctx context.Context, c *category.Category) error {
	q := r.builder.Insert(categoriesTable).
		Columns("id", "name", "description", "active", "created_at", "updated_at").
		Values(c.ID, c.Name, c.Description, c.Active, c.CreatedAt, c.UpdatedAt)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}
	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return mapError(err, "category")
	}
	return nil
}

func (r *CategoryRepo) GetByID(ctx context.Context, categoryID id.ID) (*category.Category, error) {
	q := r.builder.Select("id", "name", "description", "active", "created_at", "updated_at").
		From(categoriesTable).
		Where(squirrel.Eq{"id": categoryID}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var c category.Category
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &c, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("category", categoryID.String())
		}
		return nil, mapError(err, "category")
	}
	return &c, nil
}

func (r *CategoryRepo) Update(ctx context.Context, c *category.Category) error {
	c.UpdatedAt = time.Now().UTC()
	q := r.builder.Update(categoriesTable).
		Set("name", c.Name).
		Set("description", c.Description).
		Set("active", c.Active).
		Set("updated_at", c.UpdatedAt).
		Where(squirrel.Eq{"id": c.ID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	tag, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return mapError(err, "category")
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("category", c.ID.String())
	}
	return nil
}

func (r *CategoryRepo) List(ctx context.Context) ([]category.Category, error) {
	q := r.builder.Select("id", "name", "description", "active", "created_at", "updated_at").
		From(categoriesTable).
		OrderBy("name")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var categories []category.Category
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &categories, sql, args...); err != nil {
		return nil, mapError(err, "category")
	}
	return categories, nil
}

// CategoryName resolves a category id to its name, empty on miss.
// Satisfies alerts.CategoryNamer.
func (r *CategoryRepo) CategoryName(ctx context.Context, categoryID id.ID) string {
	if id.IsNil(categoryID) {
		return ""
	}
	c, err := r.GetByID(ctx, categoryID)
	if err != nil {
		return ""
	}
	return c.Name
}
