package sale_test

import (
	"context"
	"testing"
	"time"

	"liquorpos/internal/core/apperror"
	"liquorpos/internal/core/appctx"
	"liquorpos/internal/core/id"
	"liquorpos/internal/core/numerator"
	"liquorpos/internal/core/types"
	"liquorpos/internal/domain/audit"
	"liquorpos/internal/domain/catalogs/product"
	"liquorpos/internal/domain/documents/sale"
	"liquorpos/internal/domain/ledger"
	"liquorpos/internal/domain/movement"
	"liquorpos/internal/infrastructure/storage/memory"
	"liquorpos/pkg/logger"
)

type saleFixture struct {
	service  *sale.Service
	engine   *ledger.Engine
	sales    *memory.SaleRepo
	products *memory.ProductRepo
}

func newSaleFixture() *saleFixture {
	store := memory.NewStore()
	products := memory.NewProductRepo(store)
	txm := memory.NewTxManager()
	engine := ledger.NewEngine(
		memory.NewLedgerRepo(store),
		products,
		movement.NewService(memory.NewMovementRepo(store)),
		audit.NewService(memory.NewAuditRepo(store)),
		txm,
		logger.Default(),
	)
	sales := memory.NewSaleRepo(store)
	service := sale.NewService(sales, products, engine, numerator.NewMock(), txm)
	return &saleFixture{service: service, engine: engine, sales: sales, products: products}
}

func (f *saleFixture) addProduct(t *testing.T, name string, stock int64, price string) *product.Product {
	t.Helper()
	p := product.New(name, "SKU-"+id.New().String(), id.Nil())
	p.CurrentStock = stock
	p.CostPrice = types.MustMoney(price).Div(types.MustMoney("1.5"))
	p.SellingPrice = types.MustMoney(price)
	if err := f.products.Create(context.Background(), p); err != nil {
		t.Fatalf("create product: %v", err)
	}
	return p
}

func saleDay() time.Time { return types.DayOf(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)) }

func asCashier(name string) context.Context {
	return appctx.WithActor(context.Background(), appctx.Actor{UserID: name, Username: name, Role: "cashier"})
}

func TestCreate_PostsEveryLine(t *testing.T) {
	f := newSaleFixture()
	ctx := asCashier("cashier1")
	whisky := f.addProduct(t, "Amrut Fusion", 20, "4500")
	beer := f.addProduct(t, "Bira Blonde", 100, "180")

	doc, err := f.service.Create(ctx, saleDay(), []sale.LineInput{
		{ProductID: whisky.ID, Quantity: 2},
		{ProductID: beer.ID, Quantity: 6, UnitPrice: types.MustMoney("170")},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if doc.Number != "SAL-2026-00001" {
		t.Errorf("number = %s, want SAL-2026-00001", doc.Number)
	}
	if doc.CreatedBy != "cashier1" {
		t.Errorf("created by = %s", doc.CreatedBy)
	}
	if len(doc.Lines) != 2 {
		t.Fatalf("got %d lines, want 2", len(doc.Lines))
	}

	// A zero input price falls back to the selling price.
	if !doc.Lines[0].UnitPrice.Equal(types.MustMoney("4500")) {
		t.Errorf("line 0 price = %s, want 4500", doc.Lines[0].UnitPrice)
	}
	wantTotal := types.MustMoney("4500").Mul(types.NewMoney(2)).
		Add(types.MustMoney("170").Mul(types.NewMoney(6)))
	if !doc.TotalAmount.Equal(wantTotal) {
		t.Errorf("total = %s, want %s", doc.TotalAmount, wantTotal)
	}

	// Both lines landed on the day's ledger.
	for _, tc := range []struct {
		p    *product.Product
		sold int64
	}{{whisky, 2}, {beer, 6}} {
		entry, err := f.engine.GetEntry(ctx, tc.p.ID, saleDay())
		if err != nil {
			t.Fatalf("get entry: %v", err)
		}
		if entry.SoldQuantity != tc.sold {
			t.Errorf("%s sold = %d, want %d", tc.p.Name, entry.SoldQuantity, tc.sold)
		}
	}

	stored, err := f.sales.GetByID(ctx, doc.ID)
	if err != nil {
		t.Fatalf("get sale: %v", err)
	}
	if !stored.TotalAmount.Equal(wantTotal) {
		t.Errorf("stored total = %s, want %s", stored.TotalAmount, wantTotal)
	}
}

func TestCreate_RejectsInsufficientStock(t *testing.T) {
	f := newSaleFixture()
	ctx := asCashier("cashier1")
	whisky := f.addProduct(t, "Amrut Fusion", 20, "4500")
	beer := f.addProduct(t, "Bira Blonde", 3, "180")

	// The second line oversells; availability is checked up front so
	// nothing posts.
	_, err := f.service.Create(ctx, saleDay(), []sale.LineInput{
		{ProductID: whisky.ID, Quantity: 2},
		{ProductID: beer.ID, Quantity: 10},
	})
	if err == nil {
		t.Fatal("expected insufficient stock error")
	}
	appErr, ok := apperror.AsAppError(err)
	if !ok || appErr.Code != apperror.CodeInsufficientStock {
		t.Errorf("got %v, want insufficient stock", err)
	}

	if _, err := f.engine.GetEntry(ctx, whisky.ID, saleDay()); !apperror.IsNotFound(err) {
		t.Errorf("expected no ledger entry for the first line, got %v", err)
	}
	live, _ := f.products.GetByID(ctx, whisky.ID)
	if live.CurrentStock != 20 {
		t.Errorf("live stock = %d, want 20 (untouched)", live.CurrentStock)
	}

	docs, _ := f.sales.ListByDay(ctx, saleDay())
	if len(docs) != 0 {
		t.Errorf("got %d sales, want none", len(docs))
	}
}

func TestCreate_RequiresLines(t *testing.T) {
	f := newSaleFixture()

	_, err := f.service.Create(asCashier("cashier1"), saleDay(), nil)
	if err == nil {
		t.Fatal("expected validation error for empty sale")
	}
	appErr, ok := apperror.AsAppError(err)
	if !ok || appErr.Code != apperror.CodeValidation {
		t.Errorf("got %v, want validation", err)
	}
}
