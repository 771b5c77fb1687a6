package calculation

import (
	"testing"

	"github.com/rgehrsitz/ssopt/internal/domain"
	"github.com/rgehrsitz/ssopt/internal/ssadata"
	"github.com/stretchr/testify/assert"
)

// flatTables has a constant wage index, so indexing factors are 1 and the
// bend points stay at their 1977 values.
func flatTables(cola map[int]int) *ssadata.Tables {
	wages := make(map[int]int64)
	for y := 1951; y <= 2030; y++ {
		wages[y] = 100000
	}
	return ssadata.NewTables(wages, cola)
}

func TestBracketAmountsRegression(t *testing.T) {
	tables := ssadata.Default()
	aime := domain.MoneyFromDollars(5000)

	first, second := BendPoints(tables, 2000)
	assert.Equal(t, domain.MoneyFromDollars(592), first, "first bend point for 2000")
	assert.Equal(t, domain.MoneyFromDollars(3567), second, "second bend point for 2000")

	brackets := BracketAmounts(tables, aime, 2000)
	assert.Equal(t, domain.MoneyFromCents(53280), brackets[0], "90% bracket")
	assert.Equal(t, domain.MoneyFromCents(95200), brackets[1], "32% bracket")
	assert.Equal(t, domain.MoneyFromCents(21495), brackets[2], "15% bracket")

	pia := PIAFromAIME(tables, aime, 2000)
	assert.Equal(t, domain.MoneyFromCents(169970), pia, "sum floored to the dime once")
}

func TestBendPoints(t *testing.T) {
	first, second := BendPoints(ssadata.Default(), 2020)
	assert.Equal(t, domain.MoneyFromDollars(1024), first)
	assert.Equal(t, domain.MoneyFromDollars(6172), second)

	first, second = BendPoints(ssadata.Default(), 1940)
	assert.Equal(t, domain.MoneyFromDollars(180), first, "no index falls back to 1977 amounts")
	assert.Equal(t, domain.MoneyFromDollars(1085), second)
}

func TestBracketAmountsBelowFirstBendPoint(t *testing.T) {
	brackets := BracketAmounts(flatTables(nil), domain.MoneyFromDollars(100), 2000)
	assert.Equal(t, domain.MoneyFromDollars(90), brackets[0])
	assert.True(t, brackets[1].IsZero())
	assert.True(t, brackets[2].IsZero())
}

func TestIndexedEarnings(t *testing.T) {
	calc := NewPIACalculator(ssadata.Default(), domain.BirthdateFromYMD(1960, 0, 5), nil)
	assert.Equal(t, 2020, calc.IndexingYear())

	tests := []struct {
		name string
		year int
		want int64
	}{
		{"indexed to 2020 wages", 1990, 5290912},
		{"indexing year is raw", 2020, 2000000},
		{"later years are raw", 2022, 2000000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := domain.EarningRecord{Year: tt.year, TaxedEarnings: domain.MoneyFromDollars(20000)}
			assert.Equal(t, tt.want, calc.IndexedEarnings(rec).Cents())
		})
	}
}

func TestAIME(t *testing.T) {
	birth := domain.BirthdateFromYMD(1960, 0, 5)
	var records []domain.EarningRecord
	for y := 1980; y < 2015; y++ {
		records = append(records, domain.EarningRecord{Year: y, TaxedEarnings: domain.MoneyFromDollars(42000)})
	}
	// Five low years outside the top 35 must not count.
	for y := 2015; y < 2020; y++ {
		records = append(records, domain.EarningRecord{Year: y, TaxedEarnings: domain.MoneyFromDollars(1000)})
	}

	calc := NewPIACalculator(flatTables(nil), birth, records)
	assert.Equal(t, domain.MoneyFromDollars(3500), calc.AIME())
	assert.Equal(t, domain.MoneyFromCents(81380), calc.PrimaryInsuranceAmountUnadjusted(),
		"162 + 289.60 + 362.25 floored to the dime")

	short := NewPIACalculator(flatTables(nil), birth, records[:10])
	assert.Equal(t, domain.MoneyFromDollars(1000), short.AIME(), "missing years count as zero")

	empty := NewPIACalculator(flatTables(nil), birth, nil)
	assert.True(t, empty.AIME().IsZero())
	assert.True(t, empty.PrimaryInsuranceAmountUnadjusted().IsZero())
}

func TestAIMEFloorsToDollar(t *testing.T) {
	records := []domain.EarningRecord{{Year: 2000, TaxedEarnings: domain.MoneyFromCents(1000099)}}
	calc := NewPIACalculator(flatTables(nil), domain.BirthdateFromYMD(1960, 0, 5), records)
	// 10000.99 / 420 = 23.81...
	assert.Equal(t, domain.MoneyFromDollars(23), calc.AIME())
}

func TestCOLAChainFloorsEachYear(t *testing.T) {
	tables := flatTables(map[int]int{2022: 87, 2023: 32})

	got := ApplyCOLAs(tables, domain.MoneyFromCents(99990), 2022, 2024)
	assert.Equal(t, domain.MoneyFromCents(112150), got, "floor after each year, not after compounding")

	assert.Equal(t, domain.MoneyFromCents(108680), ApplyCOLAs(tables, domain.MoneyFromCents(99990), 2022, 2023))
	assert.Equal(t, domain.MoneyFromCents(99990), ApplyCOLAs(tables, domain.MoneyFromCents(99990), 2022, 2022),
		"evaluating in the year turning 62 applies nothing")
	assert.Equal(t, domain.MoneyFromCents(112150), ApplyCOLAs(tables, domain.MoneyFromCents(99990), 2020, 2024),
		"years without a COLA are skipped")
}

func TestPrimaryInsuranceAmountForYear(t *testing.T) {
	tables := flatTables(map[int]int{2022: 87, 2023: 32})
	records := make([]domain.EarningRecord, 0, 35)
	for y := 1980; y < 2015; y++ {
		records = append(records, domain.EarningRecord{Year: y, TaxedEarnings: domain.MoneyFromDollars(42000)})
	}
	calc := NewPIACalculator(tables, domain.BirthdateFromYMD(1960, 0, 5), records)

	unadjusted := calc.PrimaryInsuranceAmountUnadjusted()
	assert.Equal(t, unadjusted, calc.PrimaryInsuranceAmountForYear(2022))
	assert.Equal(t, ApplyCOLAs(tables, unadjusted, 2022, 2024), calc.PrimaryInsuranceAmountForYear(2024))
	assert.True(t, calc.PrimaryInsuranceAmountForYear(2024).GreaterThan(unadjusted))
}
