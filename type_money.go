package finance

import (
	"fmt"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// MoneyPlaces is the number of fractional digits money is persisted and reported with.
const MoneyPlaces = 2

// Money represents a monetary value.
//
// The ledger is single currency, the currency code is only used for display (see Format).
// Arithmetic is exact, rounding to MoneyPlaces happens when values are persisted or reported.
type Money struct {
	value decimal.Decimal // as major unit value
}

// M returns a money value from any numeric type.
func M[T number](value T) Money {
	return Money{value: newDecimal(value)}
}

// ParseMoney parses a decimal string like "-12.50".
func ParseMoney(s string) (Money, error) {
	v, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return Money{value: v}, nil
}

// Sum returns the exact sum of all values.
func Sum(values ...Money) Money {
	var total Money
	for _, v := range values {
		total = total.Add(v)
	}
	return total
}

func (m Money) Decimal() decimal.Decimal        { return m.value }
func (m Money) Equal(n Money) bool              { return m.value.Equal(n.value) }
func (m Money) Cmp(n Money) int                 { return m.value.Cmp(n.value) }
func (m Money) IsZero() bool                    { return m.value.IsZero() }
func (m Money) IsPositive() bool                { return m.value.IsPositive() }
func (m Money) IsNegative() bool                { return m.value.IsNegative() }
func (m Money) LessThan(n Money) bool           { return m.value.LessThan(n.value) }
func (m Money) LessThanOrEqual(n Money) bool    { return m.value.LessThanOrEqual(n.value) }
func (m Money) GreaterThan(n Money) bool        { return m.value.GreaterThan(n.value) }
func (m Money) GreaterThanOrEqual(n Money) bool { return m.value.GreaterThanOrEqual(n.value) }
func (m Money) Neg() Money                      { return Money{value: m.value.Neg()} }
func (m Money) Abs() Money                      { return Money{value: m.value.Abs()} }
func (m Money) Add(n Money) Money               { return Money{value: m.value.Add(n.value)} }
func (m Money) Sub(n Money) Money               { return Money{value: m.value.Sub(n.value)} }
func (m Money) Mul(n Quantity) Money            { return Money{value: m.value.Mul(n.value)} }
func (m Money) Div(n Quantity) Money            { return Money{value: m.value.Div(n.value)} }
func (m Money) Times(d decimal.Decimal) Money   { return Money{value: m.value.Mul(d)} }

// Round returns m rounded to MoneyPlaces.
func (m Money) Round() Money { return Money{value: m.value.Round(MoneyPlaces)} }

// RoundTo returns m rounded to places digits, used to bound the precision of long simulations.
func (m Money) RoundTo(places int32) Money { return Money{value: m.value.Round(places)} }

// Float64 returns an approximate float value, for numerical methods only.
func (m Money) Float64() float64 { return m.value.InexactFloat64() }

// String returns the value with exactly MoneyPlaces fractional digits.
func (m Money) String() string { return m.value.StringFixed(MoneyPlaces) }

// SignedString returns the string representation of the money value with a sign.
// 0 is represented as a "-"
func (m Money) SignedString() string {
	if m.value.Round(MoneyPlaces).IsZero() {
		return "-"
	}
	if m.value.IsPositive() {
		return "+" + m.String()
	}
	return m.String()
}

// Format returns the value formatted for the given ISO currency code (e.g. "$1,234.50").
// Unknown or empty codes fall back to String.
func (m Money) Format(currency string) string {
	if currency == "" || money.GetCurrency(currency) == nil {
		return m.String()
	}
	cur := money.GetCurrency(currency)
	minor := m.value.Shift(int32(cur.Fraction)).Round(0).IntPart()
	return money.New(minor, currency).Display()
}

func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.value.StringFixed(MoneyPlaces)), nil
}

func (m *Money) UnmarshalJSON(data []byte) error {
	return m.value.UnmarshalJSON(data)
}
