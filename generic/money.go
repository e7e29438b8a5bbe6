/*
Package generic provides the domain-agnostic building blocks of the attendance engine.

PURPOSE:
  Salary arithmetic, the day calendar, time-of-day normalization, storage records and
  the persistence interface. Nothing in this package knows how a working day is scored;
  that lives in the productivity package.

KEY CONCEPTS IN THIS FILE (money.go):
  - Money: a currency amount backed by decimal.Decimal
  - Arithmetic never goes through float64 once a value is Money
  - Formatting to "₹X.XX" happens only at display boundaries

DESIGN PRINCIPLES:
  1. Precision: decimal.Decimal for every currency value
  2. Guarded ratios: DivOrZero returns zero for a zero denominator
  3. Two representations: numeric for math, Format() for display. Never format-then-parse.

USAGE:
  salary := generic.NewMoney(30000)
  perDay := salary.DivOrZero(decimal.NewFromInt(30))
  fmt.Println(perDay.Format()) // ₹1000.00

SEE ALSO:
  - time.go: TimePoint and holidays
  - clock.go: time-of-day parsing and formatting
  - store.go: persistence interface
*/
package generic

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// CurrencySymbol prefixes every formatted amount.
const CurrencySymbol = "₹"

// =============================================================================
// MONEY - Currency amount
// =============================================================================

type Money struct {
	Value decimal.Decimal
}

func NewMoney(value float64) Money                { return Money{Value: decimal.NewFromFloat(value)} }
func NewMoneyFromInt(value int64) Money           { return Money{Value: decimal.NewFromInt(value)} }
func NewMoneyFromDecimal(d decimal.Decimal) Money { return Money{Value: d} }

// ParseMoney parses a decimal string. Malformed input yields zero.
func ParseMoney(s string) Money {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{Value: decimal.Zero}
	}
	return Money{Value: d}
}

func ZeroMoney() Money { return Money{Value: decimal.Zero} }

func (m Money) Add(o Money) Money           { return Money{Value: m.Value.Add(o.Value)} }
func (m Money) Sub(o Money) Money           { return Money{Value: m.Value.Sub(o.Value)} }
func (m Money) Mul(d decimal.Decimal) Money { return Money{Value: m.Value.Mul(d)} }
func (m Money) MulFloat(f float64) Money    { return Money{Value: m.Value.Mul(decimal.NewFromFloat(f))} }
func (m Money) IsZero() bool                { return m.Value.IsZero() }
func (m Money) IsNegative() bool            { return m.Value.IsNegative() }
func (m Money) IsPositive() bool            { return m.Value.IsPositive() }
func (m Money) GreaterThan(o Money) bool    { return m.Value.GreaterThan(o.Value) }
func (m Money) LessThan(o Money) bool       { return m.Value.LessThan(o.Value) }
func (m Money) Equal(o Money) bool          { return m.Value.Equal(o.Value) }

// Float64 is for ratios and display only. Never feed it back into Money.
func (m Money) Float64() float64 {
	f, _ := m.Value.Float64()
	return f
}

func (m Money) Max(o Money) Money {
	if m.LessThan(o) {
		return o
	}
	return m
}

// DivOrZero divides by d, returning zero when d is zero.
func (m Money) DivOrZero(d decimal.Decimal) Money {
	if d.IsZero() {
		return ZeroMoney()
	}
	return Money{Value: m.Value.Div(d)}
}

// FloorAtZero clamps negative amounts to zero.
func (m Money) FloorAtZero() Money {
	if m.IsNegative() {
		return ZeroMoney()
	}
	return m
}

// Format renders the amount for display, e.g. "₹1250.50".
func (m Money) Format() string {
	return CurrencySymbol + m.Value.StringFixed(2)
}

func (m Money) String() string { return m.Value.String() }

// MarshalJSON emits a bare JSON number so programmatic consumers can do math on it.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.Value.String()), nil
}

// UnmarshalJSON accepts a JSON number or a quoted decimal string.
func (m *Money) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		m.Value = decimal.Zero
		return nil
	}
	if err := m.Value.UnmarshalJSON(data); err != nil {
		return fmt.Errorf("invalid money value %s: %w", data, err)
	}
	return nil
}

// SumMoney adds up a list of amounts.
func SumMoney(values ...Money) Money {
	total := ZeroMoney()
	for _, v := range values {
		total = total.Add(v)
	}
	return total
}
