// Package numerator provides domain contracts for document auto-numbering.
package numerator

// Strategy defines the numbering generation strategy.
type Strategy int

const (
	// StrategyStrict uses UPDATE ... RETURNING for every number.
	// Guarantees sequential numbers without gaps.
	// Slower, suitable for accountable documents (reconciliation sessions).
	StrategyStrict Strategy = iota

	// StrategyCached allocates ranges of numbers in memory.
	// Much faster, but may produce gaps if application restarts.
	// Suitable for internal documents (sales, inward receipts).
	StrategyCached
)

// Options configuration for number generation.
type Options struct {
	// Strategy to use for number generation
	Strategy Strategy
	// RangeSize is the number of IDs to allocate at once in Cached strategy.
	// Default is 50.
	RangeSize int64
}

// DefaultOptions returns standard options (Strict).
func DefaultOptions() *Options {
	return &Options{
		Strategy: StrategyStrict,
	}
}

// Config holds numbering configuration.
type Config struct {
	// Prefix added to all numbers (e.g., "REC", "SAL")
	Prefix string

	// PadWidth is the minimum number width (default 5)
	PadWidth int

	// ResetPeriod: "day", "year", "never".
	// The period segment is embedded in the formatted number
	// ("REC-20260901-001" for day, "SAL-2026-00001" for year).
	ResetPeriod string
}

// DefaultConfig returns sensible defaults (year reset).
func DefaultConfig(prefix string) Config {
	return Config{
		Prefix:      prefix,
		PadWidth:    5,
		ResetPeriod: "year",
	}
}

// DailyConfig returns a day-reset configuration.
// Used for reconciliation ids: date plus a per-day sequence.
func DailyConfig(prefix string) Config {
	return Config{
		Prefix:      prefix,
		PadWidth:    3,
		ResetPeriod: "day",
	}
}
