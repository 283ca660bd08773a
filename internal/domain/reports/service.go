package reports

import (
	"context"
	"time"

	"liquorpos/internal/core/apperror"
	"liquorpos/internal/core/types"
)

// Repository runs the report queries. Implementations join the ledger
// with the product catalog.
type Repository interface {
	DailyRows(ctx context.Context, day time.Time, filter DailyFilter) ([]DailyRow, error)
	RangeRows(ctx context.Context, from, to time.Time) ([]RangeRow, error)
	LowStockRows(ctx context.Context) ([]LowStockRow, error)
}

// Service builds stock reports.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Daily builds the daily stock report with totals derived from the
// rows, optionally narrowed to one category or one product.
func (s *Service) Daily(ctx context.Context, day time.Time, filter DailyFilter) (*DailyReport, error) {
	day = types.DayOf(day)
	rows, err := s.repo.DailyRows(ctx, day, filter)
	if err != nil {
		return nil, err
	}

	rep := &DailyReport{Date: day, Rows: rows, TotalStockValue: types.ZeroMoney()}
	for i := range rows {
		rep.TotalOpening += rows[i].OpeningStock
		rep.TotalInward += rows[i].InwardQuantity
		rep.TotalSold += rows[i].SoldQuantity
		rep.TotalClosing += rows[i].ClosingStock
		rep.TotalStockValue = rep.TotalStockValue.Add(rows[i].StockValue)
	}
	return rep, nil
}

// Range builds the per-product aggregate report for [from, to].
func (s *Service) Range(ctx context.Context, from, to time.Time) (*RangeReport, error) {
	from, to = types.DayOf(from), types.DayOf(to)
	if to.Before(from) {
		return nil, apperror.NewValidation("date range end is before start")
	}
	rows, err := s.repo.RangeRows(ctx, from, to)
	if err != nil {
		return nil, err
	}
	return &RangeReport{From: from, To: to, Rows: rows}, nil
}

// LowStock lists active products at or below their minimum stock level.
func (s *Service) LowStock(ctx context.Context) ([]LowStockRow, error) {
	return s.repo.LowStockRows(ctx)
}
