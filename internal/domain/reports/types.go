// Package reports provides read-only reporting over the stock ledger,
// movements and products.
package reports

import (
	"time"

	"liquorpos/internal/core/id"
	"liquorpos/internal/core/types"
)

// DailyRow is one product line of the daily stock report.
type DailyRow struct {
	ProductID      id.ID       `db:"product_id" json:"productId"`
	ProductName    string      `db:"product_name" json:"productName"`
	SKU            string      `db:"sku" json:"sku"`
	OpeningStock   int64       `db:"opening_stock" json:"openingStock"`
	InwardQuantity int64       `db:"inward_quantity" json:"inwardQuantity"`
	SoldQuantity   int64       `db:"sold_quantity" json:"soldQuantity"`
	ClosingStock   int64       `db:"closing_stock" json:"closingStock"`
	StockValue     types.Money `db:"stock_value" json:"stockValue"`
	PhysicalStock  *int64      `db:"physical_stock" json:"physicalStock,omitempty"`
	VarianceQty    *int64      `db:"variance_qty" json:"varianceQty,omitempty"`
}

// DailyFilter narrows the daily report to one category or one product.
type DailyFilter struct {
	CategoryID *id.ID
	ProductID  *id.ID
}

// DailyReport is the full daily stock report for one day.
type DailyReport struct {
	Date            time.Time   `json:"date"`
	Rows            []DailyRow  `json:"rows"`
	TotalOpening    int64       `json:"totalOpening"`
	TotalInward     int64       `json:"totalInward"`
	TotalSold       int64       `json:"totalSold"`
	TotalClosing    int64       `json:"totalClosing"`
	TotalStockValue types.Money `json:"totalStockValue"`
}

// RangeRow aggregates one product over a date range.
type RangeRow struct {
	ProductID   id.ID       `db:"product_id" json:"productId"`
	ProductName string      `db:"product_name" json:"productName"`
	SKU         string      `db:"sku" json:"sku"`
	TotalSold   int64       `db:"total_sold" json:"totalSold"`
	TotalInward int64       `db:"total_inward" json:"totalInward"`
	LastClosing int64       `db:"last_closing" json:"lastClosing"`
	LastValue   types.Money `db:"last_value" json:"lastValue"`
}

// RangeReport aggregates the ledger over [From, To].
type RangeReport struct {
	From time.Time  `json:"from"`
	To   time.Time  `json:"to"`
	Rows []RangeRow `json:"rows"`
}

// LowStockRow is one product at or below its minimum stock level.
type LowStockRow struct {
	ProductID    id.ID  `db:"product_id" json:"productId"`
	ProductName  string `db:"product_name" json:"productName"`
	SKU          string `db:"sku" json:"sku"`
	CurrentStock int64  `db:"current_stock" json:"currentStock"`
	MinStock     int64  `db:"min_stock" json:"minStock"`
}
