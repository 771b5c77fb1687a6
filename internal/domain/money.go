package domain

import (
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// Money is an exact currency amount held as integer cents.
// All arithmetic stays in integers; Value() is for display only.
type Money struct {
	cents int64
}

// MoneyFromDollars converts a dollar amount to Money, rounding to the nearest cent.
func MoneyFromDollars(dollars float64) Money {
	return Money{cents: int64(math.Round(dollars * 100))}
}

// MoneyFromCents wraps an integer number of cents.
func MoneyFromCents(cents int64) Money {
	return Money{cents: cents}
}

// MoneyFromDecimal converts a decimal dollar amount, rounding to the nearest cent.
func MoneyFromDecimal(d decimal.Decimal) Money {
	return Money{cents: d.Shift(2).Round(0).IntPart()}
}

// Cents returns the amount in cents.
func (m Money) Cents() int64 {
	return m.cents
}

// Value returns the amount in dollars.
func (m Money) Value() float64 {
	return float64(m.cents) / 100
}

// Decimal returns the amount as a decimal number of dollars.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(m.cents, -2)
}

func (m Money) Plus(o Money) Money {
	return Money{cents: m.cents + o.cents}
}

func (m Money) Minus(o Money) Money {
	return Money{cents: m.cents - o.cents}
}

// Times multiplies by an integer count (e.g. a number of months).
func (m Money) Times(n int64) Money {
	return Money{cents: m.cents * n}
}

// TimesRatio multiplies by num/den, truncating toward zero.
func (m Money) TimesRatio(num, den int64) Money {
	return Money{cents: m.cents * num / den}
}

// FloorToDime truncates toward zero to a multiple of ten cents.
func (m Money) FloorToDime() Money {
	return Money{cents: m.cents - m.cents%10}
}

// FloorToDollar truncates toward zero to a whole dollar.
func (m Money) FloorToDollar() Money {
	return Money{cents: m.cents - m.cents%100}
}

// RoundToDollar truncates toward zero to a whole dollar. SSA rounds benefits
// down, never to nearest.
func (m Money) RoundToDollar() Money {
	return m.FloorToDollar()
}

func (m Money) IsZero() bool                    { return m.cents == 0 }
func (m Money) IsNegative() bool                { return m.cents < 0 }
func (m Money) Equal(o Money) bool              { return m.cents == o.cents }
func (m Money) LessThan(o Money) bool           { return m.cents < o.cents }
func (m Money) LessThanOrEqual(o Money) bool    { return m.cents <= o.cents }
func (m Money) GreaterThan(o Money) bool        { return m.cents > o.cents }
func (m Money) GreaterThanOrEqual(o Money) bool { return m.cents >= o.cents }

// MaxMoney returns the larger of a and b.
func MaxMoney(a, b Money) Money {
	if a.cents >= b.cents {
		return a
	}
	return b
}

// MinMoney returns the smaller of a and b.
func MinMoney(a, b Money) Money {
	if a.cents <= b.cents {
		return a
	}
	return b
}

// String formats the amount as $1,234.56.
func (m Money) String() string {
	c := m.cents
	sign := ""
	if c < 0 {
		sign = "-"
		c = -c
	}
	whole := fmt.Sprintf("%d", c/100)
	var b strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return fmt.Sprintf("%s$%s.%02d", sign, b.String(), c%100)
}

// MarshalJSON encodes the amount as a JSON number of dollars with two decimals.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.Decimal().StringFixed(2)), nil
}

// UnmarshalJSON accepts a JSON number or string of dollars.
func (m *Money) UnmarshalJSON(data []byte) error {
	var d decimal.Decimal
	if err := d.UnmarshalJSON(data); err != nil {
		return fmt.Errorf("invalid money amount %s: %w", string(data), err)
	}
	*m = MoneyFromDecimal(d)
	return nil
}
