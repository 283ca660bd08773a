package dto

// CreateProductRequest creates a catalog product.
type CreateProductRequest struct {
	Name         string `json:"name" binding:"required"`
	SKU          string `json:"sku" binding:"required"`
	CategoryID   string `json:"categoryId"`
	CostPrice    string `json:"costPrice"`
	SellingPrice string `json:"sellingPrice"`
	MinStock     int64  `json:"minStock"`
	InitialStock int64  `json:"initialStock"`
}

// UpdateProductRequest updates catalog fields. Stock is not part of it;
// stock changes go through sales, receipts and adjustments.
type UpdateProductRequest struct {
	Name         string `json:"name" binding:"required"`
	SKU          string `json:"sku" binding:"required"`
	CategoryID   string `json:"categoryId"`
	CostPrice    string `json:"costPrice"`
	SellingPrice string `json:"sellingPrice"`
	MinStock     int64  `json:"minStock"`
	Active       *bool  `json:"active"`
}

// AdjustStockRequest sets live stock to an absolute value with a reason.
type AdjustStockRequest struct {
	NewStock int64  `json:"newStock" binding:"min=0"`
	Reason   string `json:"reason" binding:"required"`
}

// CreateCategoryRequest creates a category.
type CreateCategoryRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}
