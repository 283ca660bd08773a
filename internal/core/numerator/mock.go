package numerator

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// MockGenerator is a test implementation of Generator.
// It hands out an in-memory per-key sequence, formatted the same way the
// production generator formats numbers, so tests can assert on ids.
type MockGenerator struct {
	mu   sync.Mutex
	seqs map[string]int64

	GetNextNumberFunc func(ctx context.Context, cfg Config, opts *Options, period time.Time) (string, error)
}

// NewMock creates a MockGenerator.
func NewMock() *MockGenerator {
	return &MockGenerator{seqs: make(map[string]int64)}
}

// GetNextNumber implements Generator.
func (m *MockGenerator) GetNextNumber(ctx context.Context, cfg Config, opts *Options, period time.Time) (string, error) {
	if m.GetNextNumberFunc != nil {
		return m.GetNextNumberFunc(ctx, cfg, opts, period)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.seqs == nil {
		m.seqs = make(map[string]int64)
	}

	key := cfg.Prefix + "_" + periodSegment(cfg, period)
	m.seqs[key]++
	return FormatNumber(cfg, period, m.seqs[key]), nil
}

// SetNextNumber implements Generator.
func (m *MockGenerator) SetNextNumber(ctx context.Context, cfg Config, period time.Time, value int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.seqs == nil {
		m.seqs = make(map[string]int64)
	}
	m.seqs[cfg.Prefix+"_"+periodSegment(cfg, period)] = value
	return nil
}

// FormatNumber creates the final number string for a sequence value.
// Shared by implementations so formatting stays consistent.
func FormatNumber(cfg Config, period time.Time, num int64) string {
	padWidth := cfg.PadWidth
	if padWidth == 0 {
		padWidth = 5
	}

	seg := periodSegment(cfg, period)
	if seg == "" {
		return fmt.Sprintf("%s-%0*d", cfg.Prefix, padWidth, num)
	}
	return fmt.Sprintf("%s-%s-%0*d", cfg.Prefix, seg, padWidth, num)
}

func periodSegment(cfg Config, period time.Time) string {
	switch cfg.ResetPeriod {
	case "day":
		return period.UTC().Format("20060102")
	case "year":
		return period.UTC().Format("2006")
	default:
		return ""
	}
}

// Ensure compile-time interface compliance.
var _ Generator = (*MockGenerator)(nil)
