package alerts_test

import (
	"context"
	"testing"

	"liquorpos/internal/core/id"
	"liquorpos/internal/core/types"
	"liquorpos/internal/domain/alerts"
	"liquorpos/internal/domain/catalogs/product"
	"liquorpos/internal/infrastructure/storage/memory"
	"liquorpos/pkg/logger"
)

func TestCompile(t *testing.T) {
	tests := []struct {
		name    string
		expr    string
		wantErr bool
	}{
		{"default rule", alerts.DefaultRule, false},
		{"category filter", `active && category == "whisky" && current_stock < 10`, false},
		{"threshold multiple", "current_stock <= min_stock * 2", false},
		{"not boolean", "current_stock + min_stock", true},
		{"unknown variable", "warehouse_stock < 5", true},
		{"syntax error", "current_stock <<", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := alerts.Compile(tt.expr)
			if (err != nil) != tt.wantErr {
				t.Errorf("Compile(%q) error = %v, wantErr %v", tt.expr, err, tt.wantErr)
			}
		})
	}
}

func TestRuleMatches(t *testing.T) {
	rule, err := alerts.Compile(alerts.DefaultRule)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}

	p := &product.Product{CurrentStock: 5, MinStock: 10, Active: true}
	match, err := rule.Matches(p, "")
	if err != nil {
		t.Fatalf("matches: %v", err)
	}
	if !match {
		t.Error("expected match for stock below minimum")
	}

	p.CurrentStock = 50
	if match, _ := rule.Matches(p, ""); match {
		t.Error("unexpected match for healthy stock")
	}

	p.CurrentStock = 5
	p.Active = false
	if match, _ := rule.Matches(p, ""); match {
		t.Error("unexpected match for inactive product")
	}
}

func TestCheck(t *testing.T) {
	store := memory.NewStore()
	products := memory.NewProductRepo(store)
	ctx := context.Background()

	low := product.New("Low Stock Gin", "SKU-LOW", id.Nil())
	low.CurrentStock = 2
	low.MinStock = 10
	low.CostPrice = types.MustMoney("400")
	if err := products.Create(ctx, low); err != nil {
		t.Fatalf("create: %v", err)
	}

	healthy := product.New("Healthy Rum", "SKU-OK", id.Nil())
	healthy.CurrentStock = 80
	healthy.MinStock = 10
	healthy.CostPrice = types.MustMoney("350")
	if err := products.Create(ctx, healthy); err != nil {
		t.Fatalf("create: %v", err)
	}

	rule, err := alerts.Compile(alerts.DefaultRule)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	svc := alerts.NewService(products, memory.NewCategoryRepo(store), rule, logger.Default())

	got, err := svc.Check(ctx)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d alerts, want 1", len(got))
	}
	if got[0].ProductID != low.ID {
		t.Errorf("alert for %s, want %s", got[0].ProductID, low.ID)
	}
	if got[0].CurrentStock != 2 || got[0].MinStock != 10 {
		t.Errorf("alert stocks %d/%d, want 2/10", got[0].CurrentStock, got[0].MinStock)
	}
}
