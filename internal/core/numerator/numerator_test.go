package numerator

import (
	"context"
	"testing"
	"time"
)

func TestFormatNumber(t *testing.T) {
	period := time.Date(2026, 3, 1, 15, 30, 0, 0, time.UTC)

	tests := []struct {
		name string
		cfg  Config
		num  int64
		want string
	}{
		{"daily pad3", DailyConfig("REC"), 1, "REC-20260301-001"},
		{"daily rollover", DailyConfig("REC"), 42, "REC-20260301-042"},
		{"yearly pad5", DefaultConfig("SAL"), 7, "SAL-2026-00007"},
		{"no reset", Config{Prefix: "DOC", PadWidth: 4, ResetPeriod: "never"}, 99, "DOC-0099"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatNumber(tt.cfg, period, tt.num); got != tt.want {
				t.Errorf("FormatNumber() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestMockGenerator_SequencesPerPeriod(t *testing.T) {
	gen := NewMock()
	ctx := context.Background()
	day1 := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	day2 := day1.AddDate(0, 0, 1)
	cfg := DailyConfig("REC")

	first, err := gen.GetNextNumber(ctx, cfg, DefaultOptions(), day1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first != "REC-20260301-001" {
		t.Errorf("first = %s, want REC-20260301-001", first)
	}

	second, _ := gen.GetNextNumber(ctx, cfg, DefaultOptions(), day1)
	if second != "REC-20260301-002" {
		t.Errorf("second = %s, want REC-20260301-002", second)
	}

	// A new day restarts the sequence.
	next, _ := gen.GetNextNumber(ctx, cfg, DefaultOptions(), day2)
	if next != "REC-20260302-001" {
		t.Errorf("next day = %s, want REC-20260302-001", next)
	}
}
