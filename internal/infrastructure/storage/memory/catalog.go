package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"liquorpos/internal/core/apperror"
	"liquorpos/internal/core/id"
	"liquorpos/internal/domain/catalogs/category"
	"liquorpos/internal/domain/catalogs/product"
)

type (
	productRecord  = product.Product
	categoryRecord = category.Category
)

// ProductRepo is the in-memory product.Repository.
type ProductRepo struct {
	store *Store
}

var _ product.Repository = (*ProductRepo)(nil)

func NewProductRepo(store *Store) *ProductRepo {
	return &ProductRepo{store: store}
}

func (r *ProductRepo) Create(ctx context.Context, p *product.Product) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.products[p.ID.String()]; ok {
		return apperror.NewDuplicate("product", "id", p.ID.String())
	}
	for _, existing := range r.store.products {
		if existing.SKU == p.SKU {
			return apperror.NewDuplicate("product", "sku", p.SKU)
		}
	}
	cp := *p
	r.store.products[p.ID.String()] = &cp
	return nil
}

func (r *ProductRepo) GetByID(ctx context.Context, productID id.ID) (*product.Product, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return r.getLocked(productID)
}

func (r *ProductRepo) getLocked(productID id.ID) (*product.Product, error) {
	p, ok := r.store.products[productID.String()]
	if !ok {
		return nil, apperror.NewNotFound("product", productID.String())
	}
	cp := *p
	return &cp, nil
}

func (r *ProductRepo) GetBySKU(ctx context.Context, sku string) (*product.Product, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, p := range r.store.products {
		if p.SKU == sku {
			cp := *p
			return &cp, nil
		}
	}
	return nil, apperror.NewNotFound("product", sku)
}

func (r *ProductRepo) Update(ctx context.Context, p *product.Product) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	existing, ok := r.store.products[p.ID.String()]
	if !ok {
		return apperror.NewNotFound("product", p.ID.String())
	}
	cp := *p
	cp.CurrentStock = existing.CurrentStock
	cp.UpdatedAt = time.Now().UTC()
	r.store.products[p.ID.String()] = &cp
	return nil
}

func (r *ProductRepo) AdjustStock(ctx context.Context, productID id.ID, delta int64) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	p, ok := r.store.products[productID.String()]
	if !ok {
		return 0, apperror.NewNotFound("product", productID.String())
	}
	p.CurrentStock += delta
	p.UpdatedAt = time.Now().UTC()
	return p.CurrentStock, nil
}

func (r *ProductRepo) SetStock(ctx context.Context, productID id.ID, value int64) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	p, ok := r.store.products[productID.String()]
	if !ok {
		return 0, apperror.NewNotFound("product", productID.String())
	}
	old := p.CurrentStock
	p.CurrentStock = value
	p.UpdatedAt = time.Now().UTC()
	return old, nil
}

func (r *ProductRepo) List(ctx context.Context, filter product.ListFilter) ([]product.Product, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var out []product.Product
	for _, p := range r.store.products {
		if filter.CategoryID != nil && p.CategoryID != *filter.CategoryID {
			continue
		}
		if filter.Active != nil && p.Active != *filter.Active {
			continue
		}
		if filter.NameContains != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(filter.NameContains)) {
			continue
		}
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })

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

func (r *ProductRepo) ListActive(ctx context.Context) ([]product.Product, error) {
	active := true
	return r.List(ctx, product.ListFilter{Active: &active})
}

// CategoryRepo is the in-memory category.Repository.
type CategoryRepo struct {
	store *Store
}

var _ category.Repository = (*CategoryRepo)(nil)

func NewCategoryRepo(store *Store) *CategoryRepo {
	return &CategoryRepo{store: store}
}

func (r *CategoryRepo) Create(ctx context.Context, c *category.Category) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.categories[c.ID.String()]; ok {
		return apperror.NewDuplicate("category", "id", c.ID.String())
	}
	cp := *c
	r.store.categories[c.ID.String()] = &cp
	return nil
}

func (r *CategoryRepo) GetByID(ctx context.Context, categoryID id.ID) (*category.Category, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	c, ok := r.store.categories[categoryID.String()]
	if !ok {
		return nil, apperror.NewNotFound("category", categoryID.String())
	}
	cp := *c
	return &cp, nil
}

func (r *CategoryRepo) Update(ctx context.Context, c *category.Category) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.categories[c.ID.String()]; !ok {
		return apperror.NewNotFound("category", c.ID.String())
	}
	cp := *c
	cp.UpdatedAt = time.Now().UTC()
	r.store.categories[c.ID.String()] = &cp
	return nil
}

func (r *CategoryRepo) List(ctx context.Context) ([]category.Category, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var out []category.Category
	for _, c := range r.store.categories {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// CategoryName satisfies alerts.CategoryNamer.
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
