package ledger

import (
	"testing"
	"time"

	"liquorpos/internal/core/id"
	"liquorpos/internal/core/types"
)

func TestRecompute(t *testing.T) {
	e := New(id.New(), time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), 40, types.MustMoney("350"))
	e.InwardQuantity = 24
	e.SoldQuantity = 9
	e.Recompute()

	if e.ClosingStock != 55 {
		t.Errorf("closing = %d, want 55", e.ClosingStock)
	}
	want := types.MustMoney("350").Mul(types.NewMoney(55))
	if !e.StockValue.Equal(want) {
		t.Errorf("stock value = %s, want %s", e.StockValue, want)
	}
}

func TestRecompute_VarianceFollowsPhysical(t *testing.T) {
	e := New(id.New(), time.Now(), 40, types.MustMoney("350"))
	e.SetPhysicalCount(37, "counter1", time.Now())

	if e.VarianceQty == nil || *e.VarianceQty != -3 {
		t.Fatalf("variance = %v, want -3", e.VarianceQty)
	}

	// A later sale moves closing stock; the variance follows.
	e.SoldQuantity = 2
	e.Recompute()
	if *e.VarianceQty != -1 {
		t.Errorf("variance = %d, want -1 after closing moved to 38", *e.VarianceQty)
	}
}

func TestConsistent(t *testing.T) {
	e := New(id.New(), time.Now(), 40, types.MustMoney("350"))
	if !e.Consistent() {
		t.Error("fresh entry reported inconsistent")
	}

	e.ClosingStock = 999
	if e.Consistent() {
		t.Error("corrupted closing stock reported consistent")
	}

	e.Recompute()
	if !e.Consistent() {
		t.Error("entry inconsistent after recompute")
	}
}

func TestNew_NormalizesDay(t *testing.T) {
	e := New(id.New(), time.Date(2026, 3, 1, 17, 45, 3, 0, time.UTC), 10, types.MustMoney("100"))
	if e.Date.Hour() != 0 || e.Date.Minute() != 0 {
		t.Errorf("date not normalized to midnight: %s", e.Date)
	}
}
