package audit

import (
	"testing"

	"liquorpos/internal/core/id"
	"liquorpos/internal/domain/reference"
)

func TestNewRecord_DerivesDelta(t *testing.T) {
	tests := []struct {
		name   string
		oldQty int64
		newQty int64
		want   int64
	}{
		{"decrease", 40, 35, -5},
		{"increase", 10, 34, 24},
		{"no change", 12, 12, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := NewRecord(id.New(), ChangeSale, tt.oldQty, tt.newQty, reference.Manual(), "", "cashier")
			if rec.QuantityChanged != tt.want {
				t.Errorf("delta = %d, want %d", rec.QuantityChanged, tt.want)
			}
		})
	}
}

func TestChangeTypeValidation(t *testing.T) {
	for _, ct := range []ChangeType{
		ChangeSale, ChangeInward, ChangeAdjustment, ChangeReconciliation,
		ChangeOpeningStock, ChangeClosingStock, ChangeManualAdjustment,
	} {
		if !validChangeTypes[ct] {
			t.Errorf("change type %s not registered as valid", ct)
		}
	}
	if validChangeTypes["refund"] {
		t.Error("unknown change type accepted")
	}
}
