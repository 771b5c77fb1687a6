package calculation

import (
	"testing"

	"github.com/rgehrsitz/ssopt/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSumBenefitPeriodsScenarios(t *testing.T) {
	t.Run("flat year without crossing January", func(t *testing.T) {
		periods := []domain.BenefitPeriod{{
			Start:  ym(2022, 0),
			End:    ym(2022, 11),
			Amount: domain.MoneyFromDollars(1000),
		}}
		assert.Equal(t, domain.MoneyFromDollars(12000), SumBenefitPeriods(periods))
	})

	t.Run("COLA bump in January", func(t *testing.T) {
		periods := []domain.BenefitPeriod{
			{Start: ym(2022, 6), End: ym(2022, 11), Amount: domain.MoneyFromDollars(1000)},
			{Start: ym(2023, 0), End: ym(2023, 5), Amount: domain.MoneyFromDollars(1030)},
		}
		assert.Equal(t, domain.MoneyFromDollars(12180), SumBenefitPeriods(periods))
	})

	t.Run("filing at NRA through the end of that year", func(t *testing.T) {
		r := NewRecipientWithPIA("Alex", domain.BirthdateFromYMD(1960, 0, 5), domain.MoneyFromDollars(1000))
		periods := PersonalBenefitPeriods(r, ym(2027, 0), ym(2027, 11))
		require.Len(t, periods, 1)
		assert.Equal(t, domain.MoneyFromDollars(12000), SumBenefitPeriods(periods))
	})
}

func TestPersonalBenefitPeriodsShape(t *testing.T) {
	r := NewRecipientWithPIA("Alex", domain.BirthdateFromYMD(1960, 0, 5), domain.MoneyFromDollars(1000))

	assert.Nil(t, PersonalBenefitPeriods(r, ym(2030, 0), ym(2029, 11)), "final before filing")

	periods := PersonalBenefitPeriods(r, ym(2028, 6), ym(2040, 0))
	require.Len(t, periods, 2)
	assert.Equal(t, ym(2028, 6), periods[0].Start)
	assert.Equal(t, ym(2028, 11), periods[0].End)
	assert.Equal(t, domain.MoneyFromDollars(1080), periods[0].Amount)
	assert.Equal(t, ym(2029, 0), periods[1].Start)
	assert.Equal(t, ym(2040, 0), periods[1].End)
	assert.Equal(t, domain.MoneyFromDollars(1120), periods[1].Amount)
	assert.Equal(t, domain.BenefitPersonal, periods[1].Type)

	periods = PersonalBenefitPeriods(r, ym(2022, 6), ym(2040, 0))
	require.Len(t, periods, 1, "equal amounts merge")
	assert.Equal(t, ym(2040, 0), periods[0].End)
}

func TestPersonalBenefitPeriodsMatchMonthlyStream(t *testing.T) {
	births := []domain.Birthdate{
		domain.BirthdateFromYMD(1960, 0, 5),
		domain.BirthdateFromYMD(1960, 0, 1),
		domain.BirthdateFromYMD(1957, 6, 2),
		domain.BirthdateFromYMD(1965, 10, 30),
	}
	for _, birth := range births {
		r := NewRecipientWithPIA("R", birth, domain.MoneyFromCents(187654))
		for filingAge := birth.EarliestFilingAge(); filingAge <= age(70, 0); filingAge += 5 {
			filing := birth.DateAtSSAAge(filingAge)
			for _, finalAge := range []domain.MonthDuration{age(62, 0), filingAge, age(66, 7), age(69, 11), age(85, 0), age(100, 3)} {
				final := birth.DateAtSSAAge(finalAge)
				compressed := SumBenefitPeriods(PersonalBenefitPeriods(r, filing, final))
				monthly := SumBenefitStream(filing, final, func(m domain.MonthDate) domain.Money {
					return r.BenefitOnDate(filing, m)
				})
				assert.Equal(t, monthly, compressed, "born %s filing %s final %s", birth, filingAge, finalAge)
			}
		}
	}
}

func TestSpousalBenefitPeriods(t *testing.T) {
	birth := domain.BirthdateFromYMD(1960, 0, 5)
	higher := NewRecipientWithPIA("High", birth, domain.MoneyFromDollars(2000))
	lower := NewRecipientWithPIA("Low", birth, domain.MoneyFromDollars(500))
	lower.Index = 1

	periods := SpousalBenefitPeriods(lower, higher, ym(2022, 1), ym(2027, 0), ym(2045, 0))
	require.Len(t, periods, 1)
	assert.Equal(t, ym(2027, 0), periods[0].Start, "later of the two filings")
	assert.Equal(t, domain.MoneyFromDollars(500), periods[0].Amount)
	assert.Equal(t, 1, periods[0].RecipientIndex)
	assert.Equal(t, domain.BenefitSpousal, periods[0].Type)

	assert.Nil(t, SpousalBenefitPeriods(lower, higher, ym(2022, 1), ym(2027, 0), ym(2026, 11)), "ends before it starts")
	assert.Nil(t, SpousalBenefitPeriods(higher, lower, ym(2022, 1), ym(2027, 0), ym(2045, 0)), "not eligible")

	monthly := SumBenefitStream(ym(2022, 1), ym(2045, 0), func(m domain.MonthDate) domain.Money {
		return lower.SpousalBenefitOnDate(higher, ym(2027, 0), ym(2022, 1), m)
	})
	assert.Equal(t, monthly, SumBenefitPeriods(periods))
}

func TestBenefitPeriodMonths(t *testing.T) {
	p := domain.BenefitPeriod{Start: ym(2022, 0), End: ym(2022, 0), Amount: domain.MoneyFromDollars(10)}
	assert.Equal(t, 1, p.Months())
	p.End = ym(2021, 11)
	assert.Equal(t, 0, p.Months())
	assert.True(t, p.Total().IsZero())
}
