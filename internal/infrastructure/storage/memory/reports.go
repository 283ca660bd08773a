package memory

import (
	"context"
	"sort"
	"time"

	"liquorpos/internal/core/types"
	"liquorpos/internal/domain/reports"
)

// ReportRepo is the in-memory reports.Repository.
type ReportRepo struct {
	store *Store
}

var _ reports.Repository = (*ReportRepo)(nil)

func NewReportRepo(store *Store) *ReportRepo {
	return &ReportRepo{store: store}
}

func (r *ReportRepo) DailyRows(ctx context.Context, day time.Time, filter reports.DailyFilter) ([]reports.DailyRow, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var out []reports.DailyRow
	for _, e := range r.store.entries {
		if !types.SameDay(e.Date, day) {
			continue
		}
		if filter.ProductID != nil && e.ProductID != *filter.ProductID {
			continue
		}
		if filter.CategoryID != nil {
			p, ok := r.store.products[e.ProductID.String()]
			if !ok || p.CategoryID != *filter.CategoryID {
				continue
			}
		}
		row := reports.DailyRow{
			ProductID:      e.ProductID,
			OpeningStock:   e.OpeningStock,
			InwardQuantity: e.InwardQuantity,
			SoldQuantity:   e.SoldQuantity,
			ClosingStock:   e.ClosingStock,
			StockValue:     e.StockValue,
			PhysicalStock:  e.PhysicalStock,
			VarianceQty:    e.VarianceQty,
		}
		if p, ok := r.store.products[e.ProductID.String()]; ok {
			row.ProductName = p.Name
			row.SKU = p.SKU
		}
		out = append(out, row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProductName < out[j].ProductName })
	return out, nil
}

func (r *ReportRepo) RangeRows(ctx context.Context, from, to time.Time) ([]reports.RangeRow, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	type acc struct {
		row      reports.RangeRow
		lastDate time.Time
	}
	agg := make(map[string]*acc)
	for _, e := range r.store.entries {
		if e.Date.Before(from) || e.Date.After(to) {
			continue
		}
		key := e.ProductID.String()
		a, ok := agg[key]
		if !ok {
			a = &acc{row: reports.RangeRow{ProductID: e.ProductID, LastValue: types.ZeroMoney()}}
			if p, pok := r.store.products[key]; pok {
				a.row.ProductName = p.Name
				a.row.SKU = p.SKU
			}
			agg[key] = a
		}
		a.row.TotalSold += e.SoldQuantity
		a.row.TotalInward += e.InwardQuantity
		if e.Date.After(a.lastDate) || a.lastDate.IsZero() {
			a.lastDate = e.Date
			a.row.LastClosing = e.ClosingStock
			a.row.LastValue = e.StockValue
		}
	}

	out := make([]reports.RangeRow, 0, len(agg))
	for _, a := range agg {
		out = append(out, a.row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProductName < out[j].ProductName })
	return out, nil
}

func (r *ReportRepo) LowStockRows(ctx context.Context) ([]reports.LowStockRow, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var out []reports.LowStockRow
	for _, p := range r.store.products {
		if !p.Active || p.CurrentStock > p.MinStock {
			continue
		}
		out = append(out, reports.LowStockRow{
			ProductID:    p.ID,
			ProductName:  p.Name,
			SKU:          p.SKU,
			CurrentStock: p.CurrentStock,
			MinStock:     p.MinStock,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CurrentStock-out[i].MinStock < out[j].CurrentStock-out[j].MinStock
	})
	return out, nil
}
