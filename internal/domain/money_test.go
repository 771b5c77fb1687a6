package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMoneyConstruction(t *testing.T) {
	assert.Equal(t, int64(123456), MoneyFromDollars(1234.56).Cents())
	assert.Equal(t, int64(10), MoneyFromDollars(0.1).Cents(), "0.1 dollars should not drift")
	assert.Equal(t, int64(500), MoneyFromCents(500).Cents())
	assert.Equal(t, int64(199999), MoneyFromDecimal(decimal.RequireFromString("1999.99")).Cents())
	assert.InDelta(t, 12.34, MoneyFromCents(1234).Value(), 1e-9)
	assert.True(t, MoneyFromCents(1234).Decimal().Equal(decimal.RequireFromString("12.34")))
}

func TestMoneyArithmetic(t *testing.T) {
	a := MoneyFromCents(1050)
	b := MoneyFromCents(275)

	assert.Equal(t, int64(1325), a.Plus(b).Cents())
	assert.Equal(t, int64(775), a.Minus(b).Cents())
	assert.Equal(t, int64(12600), a.Times(12).Cents())
	assert.Equal(t, int64(525), a.TimesRatio(1, 2).Cents())
	assert.Equal(t, int64(333), MoneyFromCents(1000).TimesRatio(1, 3).Cents(), "ratio truncates")
	assert.Equal(t, int64(-333), MoneyFromCents(-1000).TimesRatio(1, 3).Cents(), "ratio truncates toward zero")
}

func TestMoneyRounding(t *testing.T) {
	tests := []struct {
		name   string
		cents  int64
		dime   int64
		dollar int64
	}{
		{"exact dollar", 100000, 100000, 100000},
		{"pennies", 169979, 169970, 169900},
		{"one cent under dime", 99, 90, 0},
		{"negative rounds toward zero", -169979, -169970, -169900},
		{"zero", 0, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := MoneyFromCents(tt.cents)
			assert.Equal(t, tt.dime, m.FloorToDime().Cents(), "FloorToDime")
			assert.Equal(t, tt.dollar, m.FloorToDollar().Cents(), "FloorToDollar")
			assert.Equal(t, tt.dollar, m.RoundToDollar().Cents(), "RoundToDollar follows SSA floor")
		})
	}
}

func TestMoneyComparisons(t *testing.T) {
	small := MoneyFromCents(1)
	big := MoneyFromCents(2)

	assert.True(t, small.LessThan(big))
	assert.True(t, small.LessThanOrEqual(small))
	assert.True(t, big.GreaterThan(small))
	assert.True(t, big.GreaterThanOrEqual(big))
	assert.True(t, small.Equal(MoneyFromCents(1)))
	assert.Equal(t, big, MaxMoney(small, big))
	assert.Equal(t, small, MinMoney(small, big))
	assert.True(t, Money{}.IsZero())
	assert.True(t, MoneyFromCents(-5).IsNegative())
}

func TestMoneyString(t *testing.T) {
	assert.Equal(t, "$0.00", Money{}.String())
	assert.Equal(t, "$1,234.56", MoneyFromCents(123456).String())
	assert.Equal(t, "$1,000,000.00", MoneyFromDollars(1000000).String())
	assert.Equal(t, "-$12.05", MoneyFromCents(-1205).String())
}

func TestMoneyJSON(t *testing.T) {
	data, err := MoneyFromCents(123405).MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, "1234.05", string(data))

	var m Money
	require.NoError(t, m.UnmarshalJSON([]byte(`"99.99"`)))
	assert.Equal(t, int64(9999), m.Cents())
	require.NoError(t, m.UnmarshalJSON([]byte(`12`)))
	assert.Equal(t, int64(1200), m.Cents())
	assert.Error(t, m.UnmarshalJSON([]byte(`"abc"`)))
}
