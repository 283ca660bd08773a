package movement

import (
	"testing"
	"time"

	"liquorpos/internal/core/id"
	"liquorpos/internal/core/types"
	"liquorpos/internal/domain/reference"
)

func TestNew_DerivesTotalCost(t *testing.T) {
	m := New(id.New(), TypeOut, CategorySale, 3, types.MustMoney("349.50"), reference.Manual(), time.Now(), "cashier")

	want := types.MustMoney("1048.50")
	if !m.TotalCost.Equal(want) {
		t.Errorf("total cost = %s, want %s", m.TotalCost, want)
	}
	if m.Status != StatusCompleted {
		t.Errorf("status = %s, want completed", m.Status)
	}
}

func TestSignedQuantity(t *testing.T) {
	tests := []struct {
		typ  Type
		qty  int64
		want int64
	}{
		{TypeIn, 10, 10},
		{TypeOut, 10, -10},
		{TypeAdjustment, 7, 7},
	}

	for _, tt := range tests {
		m := Movement{Type: tt.typ, Quantity: tt.qty}
		if got := m.SignedQuantity(); got != tt.want {
			t.Errorf("SignedQuantity(%s, %d) = %d, want %d", tt.typ, tt.qty, got, tt.want)
		}
	}
}
