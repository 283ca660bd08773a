package dto

// SaleLineRequest is one sale line. UnitPrice empty means the catalog
// selling price.
type SaleLineRequest struct {
	ProductID string `json:"productId" binding:"required"`
	Quantity  int64  `json:"quantity" binding:"required,gt=0"`
	UnitPrice string `json:"unitPrice"`
}

// CreateSaleRequest posts a sale.
type CreateSaleRequest struct {
	Date  string            `json:"date"`
	Lines []SaleLineRequest `json:"lines" binding:"required,min=1,dive"`
}

// InwardLineRequest is one receipt line.
type InwardLineRequest struct {
	ProductID string `json:"productId" binding:"required"`
	Quantity  int64  `json:"quantity" binding:"required,gt=0"`
	UnitCost  string `json:"unitCost" binding:"required"`
}

// CreateInwardRequest posts a stock receipt.
type CreateInwardRequest struct {
	Date     string             `json:"date"`
	Supplier string             `json:"supplier"`
	Lines    []InwardLineRequest `json:"lines" binding:"required,min=1,dive"`
}
