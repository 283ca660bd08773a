package reports_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"liquorpos/internal/core/id"
	"liquorpos/internal/core/types"
	"liquorpos/internal/domain/audit"
	"liquorpos/internal/domain/catalogs/product"
	"liquorpos/internal/domain/ledger"
	"liquorpos/internal/domain/movement"
	"liquorpos/internal/domain/reference"
	"liquorpos/internal/domain/reports"
	"liquorpos/internal/infrastructure/storage/memory"
	"liquorpos/pkg/logger"
)

func setup(t *testing.T) (*reports.Service, *ledger.Engine, *memory.ProductRepo) {
	t.Helper()
	store := memory.NewStore()
	products := memory.NewProductRepo(store)
	engine := ledger.NewEngine(
		memory.NewLedgerRepo(store),
		products,
		movement.NewService(memory.NewMovementRepo(store)),
		audit.NewService(memory.NewAuditRepo(store)),
		memory.NewTxManager(),
		logger.Default(),
	)
	return reports.NewService(memory.NewReportRepo(store)), engine, products
}

func addProduct(t *testing.T, repo *memory.ProductRepo, name string, stock, minStock int64, cost string) *product.Product {
	t.Helper()
	p := product.New(name, "SKU-"+id.New().String(), id.Nil())
	p.CurrentStock = stock
	p.MinStock = minStock
	p.CostPrice = types.MustMoney(cost)
	require.NoError(t, repo.Create(context.Background(), p))
	return p
}

func TestDaily(t *testing.T) {
	svc, engine, products := setup(t)
	ctx := context.Background()
	d, _ := types.ParseDay("2026-03-01")

	a := addProduct(t, products, "Amrut Fusion", 40, 5, "3200")
	b := addProduct(t, products, "Bira Blonde", 100, 24, "110")

	_, err := engine.RecordSale(ctx, a.ID, d, 3, types.MustMoney("4500"), reference.Manual())
	require.NoError(t, err)
	_, err = engine.RecordInward(ctx, b.ID, d, 48, types.MustMoney("105"), reference.Manual())
	require.NoError(t, err)

	rep, err := svc.Daily(ctx, d, reports.DailyFilter{})
	require.NoError(t, err)

	require.Len(t, rep.Rows, 2)
	assert.Equal(t, int64(3), rep.TotalSold)
	assert.Equal(t, int64(48), rep.TotalInward)
	assert.Equal(t, int64(140), rep.TotalOpening)
	assert.Equal(t, int64(185), rep.TotalClosing)

	// Rows sorted by name: Amrut first.
	assert.Equal(t, a.ID, rep.Rows[0].ProductID)
	assert.Equal(t, int64(37), rep.Rows[0].ClosingStock)
	assert.Equal(t, int64(148), rep.Rows[1].ClosingStock)

	wantValue := types.MustMoney("3200").Mul(types.NewMoney(37)).
		Add(types.MustMoney("110").Mul(types.NewMoney(148)))
	assert.True(t, rep.TotalStockValue.Equal(wantValue),
		"total value %s, want %s", rep.TotalStockValue, wantValue)
}

func TestDaily_Filters(t *testing.T) {
	svc, engine, products := setup(t)
	ctx := context.Background()
	d, _ := types.ParseDay("2026-03-01")

	a := addProduct(t, products, "Amrut Fusion", 40, 5, "3200")
	b := addProduct(t, products, "Bira Blonde", 100, 24, "110")
	beers := id.New()
	b.CategoryID = beers
	require.NoError(t, products.Update(ctx, b))

	_, err := engine.RecordSale(ctx, a.ID, d, 3, types.MustMoney("4500"), reference.Manual())
	require.NoError(t, err)
	_, err = engine.RecordInward(ctx, b.ID, d, 48, types.MustMoney("105"), reference.Manual())
	require.NoError(t, err)

	rep, err := svc.Daily(ctx, d, reports.DailyFilter{ProductID: &a.ID})
	require.NoError(t, err)
	require.Len(t, rep.Rows, 1)
	assert.Equal(t, a.ID, rep.Rows[0].ProductID)
	assert.Equal(t, int64(3), rep.TotalSold)
	assert.Equal(t, int64(37), rep.TotalClosing)

	rep, err = svc.Daily(ctx, d, reports.DailyFilter{CategoryID: &beers})
	require.NoError(t, err)
	require.Len(t, rep.Rows, 1)
	assert.Equal(t, b.ID, rep.Rows[0].ProductID)
	assert.Equal(t, int64(48), rep.TotalInward)
	assert.Equal(t, int64(148), rep.TotalClosing)
}

func TestRange(t *testing.T) {
	svc, engine, products := setup(t)
	ctx := context.Background()
	d1, _ := types.ParseDay("2026-03-01")
	d2, _ := types.ParseDay("2026-03-02")

	p := addProduct(t, products, "Old Monk", 60, 10, "350")
	_, err := engine.RecordSale(ctx, p.ID, d1, 5, types.MustMoney("500"), reference.Manual())
	require.NoError(t, err)
	_, err = engine.RecordSale(ctx, p.ID, d2, 7, types.MustMoney("500"), reference.Manual())
	require.NoError(t, err)

	rep, err := svc.Range(ctx, d1, d2)
	require.NoError(t, err)

	require.Len(t, rep.Rows, 1)
	assert.Equal(t, int64(12), rep.Rows[0].TotalSold)
	assert.Equal(t, int64(48), rep.Rows[0].LastClosing, "last closing comes from the latest day")

	_, err = svc.Range(ctx, d2, d1)
	assert.Error(t, err, "inverted range must be rejected")
}

func TestLowStock(t *testing.T) {
	svc, _, products := setup(t)
	ctx := context.Background()

	low := addProduct(t, products, "Blenders Pride", 4, 12, "900")
	addProduct(t, products, "Royal Stag", 80, 12, "700")

	rows, err := svc.LowStock(ctx)
	require.NoError(t, err)

	require.Len(t, rows, 1)
	assert.Equal(t, low.ID, rows[0].ProductID)
	assert.Equal(t, int64(4), rows[0].CurrentStock)
}
