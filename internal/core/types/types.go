// Package types provides common type aliases and utilities.
package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// Money represents a monetary value with full precision.
// Uses decimal.Decimal to avoid floating-point errors.
type Money = decimal.Decimal

// NewMoney creates a Money value from a float.
// WARNING: Use NewMoneyFromString for precise values.
func NewMoney(f float64) Money {
	return decimal.NewFromFloat(f)
}

// NewMoneyFromString creates a Money value from a string.
// This is the preferred method for monetary values.
func NewMoneyFromString(s string) (Money, error) {
	return decimal.NewFromString(s)
}

// MustMoney creates a Money value from a string, panics on error.
// Use only for constants and tests.
func MustMoney(s string) Money {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// ZeroMoney returns zero Money value.
func ZeroMoney() Money {
	return decimal.Zero
}

// MoneyTolerance is the comparison tolerance for derived monetary values (0.01).
var MoneyTolerance = decimal.New(1, -2)

// MoneyEqualWithin reports whether a and b differ by at most MoneyTolerance.
func MoneyEqualWithin(a, b Money) bool {
	return a.Sub(b).Abs().LessThanOrEqual(MoneyTolerance)
}

// Metadata is an open key-value bag attached to movements and audit records.
// The core preserves it opaquely and never interprets it.
type Metadata map[string]any

// --- Day-granularity dates ---
//
// Ledger entries are keyed by (product, day). A "day" is a time.Time
// normalized to midnight UTC; all day arithmetic goes through these helpers
// so the normalization rule lives in one place.

// DayOf truncates t to its calendar day in UTC.
func DayOf(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Today returns the current day in UTC.
func Today() time.Time {
	return DayOf(time.Now())
}

// NextDay returns the day after d.
func NextDay(d time.Time) time.Time {
	return DayOf(d).AddDate(0, 0, 1)
}

// PrevDay returns the day before d.
func PrevDay(d time.Time) time.Time {
	return DayOf(d).AddDate(0, 0, -1)
}

// SameDay reports whether a and b fall on the same UTC calendar day.
func SameDay(a, b time.Time) bool {
	return DayOf(a).Equal(DayOf(b))
}

// FormatDay renders a day as YYYY-MM-DD.
func FormatDay(d time.Time) string {
	return DayOf(d).Format("2006-01-02")
}

// ParseDay parses a YYYY-MM-DD string into a normalized day.
func ParseDay(s string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, err
	}
	return DayOf(t), nil
}
