package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"

	"liquorpos/internal/core/apperror"
	"liquorpos/internal/core/id"
	"liquorpos/internal/domain/catalogs/product"
)

const productsTable = "cat_products"

var productColumns = []string{
	"id", "name", "sku", "category_id",
	"cost_price", "selling_price",
	"current_stock", "min_stock", "active",
	"created_at", "updated_at",
}

// ProductRepo implements product.Repository.
type ProductRepo struct {
	txm     *TxManager
	builder squirrel.StatementBuilderType
}

var _ product.Repository = (*ProductRepo)(nil)

func NewProductRepo(txm *TxManager) *ProductRepo {
	return &ProductRepo{
		txm:     txm,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func (r *ProductRepo) Create(ctx context.Context, p *product.Product) error {
	q := r.builder.Insert(productsTable).
		Columns(productColumns...).
		Values(
			p.ID, p.Name, p.SKU, p.CategoryID,
			p.CostPrice, p.SellingPrice,
			p.CurrentStock, p.MinStock, p.Active,
			p.CreatedAt, p.UpdatedAt,
		)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return mapError(err, "product")
	}
	return nil
}

func (r *ProductRepo) GetByID(ctx context.Context, productID id.ID) (*product.Product, error) {
	return r.getOne(ctx, squirrel.Eq{"id": productID}, productID.String())
}

func (r *ProductRepo) GetBySKU(ctx context.Context, sku string) (*product.Product, error) {
	return r.getOne(ctx, squirrel.Eq{"sku": sku}, sku)
}

func (r *ProductRepo) getOne(ctx context.Context, where squirrel.Eq, key string) (*product.Product, error) {
	q := r.builder.Select(productColumns...).From(productsTable).Where(where).Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var p product.Product
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &p, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("product", key)
		}
		return nil, mapError(err, "product")
	}
	return &p, nil
}

func (r *ProductRepo) Update(ctx context.Context, p *product.Product) error {
	p.UpdatedAt = time.Now().UTC()
	q := r.builder.Update(productsTable).
		Set("name", p.Name).
		Set("sku", p.SKU).
		Set("category_id", p.CategoryID).
		Set("cost_price", p.CostPrice).
		Set("selling_price", p.SellingPrice).
		Set("min_stock", p.MinStock).
		Set("active", p.Active).
		Set("updated_at", p.UpdatedAt).
		Where(squirrel.Eq{"id": p.ID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	tag, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return mapError(err, "product")
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("product", p.ID.String())
	}
	return nil
}

// AdjustStock applies a delta to current_stock in one statement and
// returns the new value. Concurrent adjustments serialize on the row.
func (r *ProductRepo) AdjustStock(ctx context.Context, productID id.ID, delta int64) (int64, error) {
	sql := `
		UPDATE cat_products
		SET current_stock = current_stock + $2,
		    updated_at = now()
		WHERE id = $1
		RETURNING current_stock
	`

	var newStock int64
	err := r.txm.GetQuerier(ctx).QueryRow(ctx, sql, productID, delta).Scan(&newStock)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, apperror.NewNotFound("product", productID.String())
		}
		return 0, mapError(err, "product")
	}
	return newStock, nil
}

// SetStock overwrites current_stock and returns the previous value.
func (r *ProductRepo) SetStock(ctx context.Context, productID id.ID, value int64) (int64, error) {
	sql := `
		UPDATE cat_products p
		SET current_stock = $2,
		    updated_at = now()
		FROM (SELECT current_stock AS old_stock FROM cat_products WHERE id = $1 FOR UPDATE) prev
		WHERE p.id = $1
		RETURNING prev.old_stock
	`

	var oldStock int64
	err := r.txm.GetQuerier(ctx).QueryRow(ctx, sql, productID, value).Scan(&oldStock)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, apperror.NewNotFound("product", productID.String())
		}
		return 0, mapError(err, "product")
	}
	return oldStock, nil
}

func (r *ProductRepo) List(ctx context.Context, filter product.ListFilter) ([]product.Product, error) {
	q := r.builder.Select(productColumns...).From(productsTable)

	if filter.CategoryID != nil {
		q = q.Where(squirrel.Eq{"category_id": *filter.CategoryID})
	}
	if filter.Active != nil {
		q = q.Where(squirrel.Eq{"active": *filter.Active})
	}
	if filter.NameContains != "" {
		q = q.Where(squirrel.ILike{"name": "%" + filter.NameContains + "%"})
	}

	q = q.OrderBy("name")
	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		q = q.Offset(uint64(filter.Offset))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var products []product.Product
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &products, sql, args...); err != nil {
		return nil, mapError(err, "product")
	}
	return products, nil
}

func (r *ProductRepo) ListActive(ctx context.Context) ([]product.Product, error) {
	active := true
	return r.List(ctx, product.ListFilter{Active: &active})
}
