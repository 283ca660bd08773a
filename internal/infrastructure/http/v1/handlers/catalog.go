package handlers

import (
	"github.com/gin-gonic/gin"

	"liquorpos/internal/core/apperror"
	"liquorpos/internal/core/id"
	"liquorpos/internal/core/types"
	"liquorpos/internal/domain/catalogs/category"
	"liquorpos/internal/domain/catalogs/product"
	"liquorpos/internal/domain/ledger"
	"liquorpos/internal/infrastructure/http/v1/dto"
)

// CatalogHandler serves products and categories.
type CatalogHandler struct {
	BaseHandler
	products   *product.Service
	categories *category.Service
	engine     *ledger.Engine
}

// NewCatalogHandler creates a catalog handler.
func NewCatalogHandler(products *product.Service, categories *category.Service, engine *ledger.Engine) *CatalogHandler {
	return &CatalogHandler{products: products, categories: categories, engine: engine}
}

// CreateProduct creates a product.
// POST /api/v1/products
func (h *CatalogHandler) CreateProduct(c *gin.Context) {
	var req dto.CreateProductRequest
	if !h.BindJSON(c, &req) {
		return
	}

	p := product.New(req.Name, req.SKU, id.Nil())
	if req.CategoryID != "" {
		categoryID, ok := h.ParseID(c, req.CategoryID)
		if !ok {
			return
		}
		p.CategoryID = categoryID
	}

	var err error
	if p.CostPrice, err = parseMoney(req.CostPrice); err != nil {
		h.Error(c, apperror.NewValidation("invalid cost price: "+req.CostPrice))
		return
	}
	if p.SellingPrice, err = parseMoney(req.SellingPrice); err != nil {
		h.Error(c, apperror.NewValidation("invalid selling price: "+req.SellingPrice))
		return
	}
	p.MinStock = req.MinStock
	p.CurrentStock = req.InitialStock

	if err := h.products.Create(c.Request.Context(), p); err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, p.ID.String())
}

// GetProduct returns one product.
// GET /api/v1/products/:id
func (h *CatalogHandler) GetProduct(c *gin.Context) {
	productID, ok := h.ParseID(c, c.Param("id"))
	if !ok {
		return
	}

	p, err := h.products.GetByID(c.Request.Context(), productID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, p)
}

// UpdateProduct updates catalog fields of a product.
// PUT /api/v1/products/:id
func (h *CatalogHandler) UpdateProduct(c *gin.Context) {
	productID, ok := h.ParseID(c, c.Param("id"))
	if !ok {
		return
	}

	var req dto.UpdateProductRequest
	if !h.BindJSON(c, &req) {
		return
	}

	p, err := h.products.GetByID(c.Request.Context(), productID)
	if err != nil {
		h.Error(c, err)
		return
	}

	p.Name = req.Name
	p.SKU = req.SKU
	if req.CategoryID != "" {
		categoryID, ok := h.ParseID(c, req.CategoryID)
		if !ok {
			return
		}
		p.CategoryID = categoryID
	}
	if p.CostPrice, err = parseMoney(req.CostPrice); err != nil {
		h.Error(c, apperror.NewValidation("invalid cost price: "+req.CostPrice))
		return
	}
	if p.SellingPrice, err = parseMoney(req.SellingPrice); err != nil {
		h.Error(c, apperror.NewValidation("invalid selling price: "+req.SellingPrice))
		return
	}
	p.MinStock = req.MinStock
	if req.Active != nil {
		p.Active = *req.Active
	}

	if err := h.products.Update(c.Request.Context(), p); err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, p)
}

// DeactivateProduct retires a product from the catalog.
// DELETE /api/v1/products/:id
func (h *CatalogHandler) DeactivateProduct(c *gin.Context) {
	productID, ok := h.ParseID(c, c.Param("id"))
	if !ok {
		return
	}

	if err := h.products.Deactivate(c.Request.Context(), productID); err != nil {
		h.Error(c, err)
		return
	}

	h.Success(c, "product deactivated")
}

// ListProducts lists products with optional filters.
// GET /api/v1/products?category=&name=&active=&limit=&offset=
func (h *CatalogHandler) ListProducts(c *gin.Context) {
	filter := product.ListFilter{
		NameContains: c.Query("name"),
		Limit:        h.ParseIntQuery(c, "limit", 50),
		Offset:       h.ParseIntQuery(c, "offset", 0),
	}
	if v := c.Query("category"); v != "" {
		categoryID, ok := h.ParseID(c, v)
		if !ok {
			return
		}
		filter.CategoryID = &categoryID
	}
	if v := c.Query("active"); v != "" {
		active := v == "true"
		filter.Active = &active
	}

	items, err := h.products.List(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, gin.H{"items": items, "count": len(items)})
}

// AdjustStock sets live stock to an absolute value. The delta is folded
// into today's ledger entry and recorded as a manual adjustment.
// POST /api/v1/products/:id/adjust-stock
func (h *CatalogHandler) AdjustStock(c *gin.Context) {
	productID, ok := h.ParseID(c, c.Param("id"))
	if !ok {
		return
	}

	var req dto.AdjustStockRequest
	if !h.BindJSON(c, &req) {
		return
	}

	entry, err := h.engine.SetStock(c.Request.Context(), productID, req.NewStock, req.Reason)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, entry)
}

// CreateCategory creates a category.
// POST /api/v1/categories
func (h *CatalogHandler) CreateCategory(c *gin.Context) {
	var req dto.CreateCategoryRequest
	if !h.BindJSON(c, &req) {
		return
	}

	cat := category.New(req.Name, req.Description)
	if err := h.categories.Create(c.Request.Context(), cat); err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, cat.ID.String())
}

// ListCategories lists all categories.
// GET /api/v1/categories
func (h *CatalogHandler) ListCategories(c *gin.Context) {
	items, err := h.categories.List(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, gin.H{"items": items, "count": len(items)})
}

func parseMoney(s string) (types.Money, error) {
	if s == "" {
		return types.ZeroMoney(), nil
	}
	return types.NewMoneyFromString(s)
}
