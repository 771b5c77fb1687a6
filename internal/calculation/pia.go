package calculation

import (
	"sort"

	"github.com/rgehrsitz/ssopt/internal/domain"
	"github.com/rgehrsitz/ssopt/internal/ssadata"
)

const (
	// ComputationYears is the number of top earning years averaged into AIME.
	ComputationYears  = 35
	aimeDivisorMonths = ComputationYears * 12
)

// PIACalculator derives the Primary Insurance Amount from an earnings history.
type PIACalculator struct {
	tables    ssadata.Source
	birthdate domain.Birthdate
	earnings  []domain.EarningRecord
}

// NewPIACalculator creates a calculator. A nil tables uses ssadata.Default().
func NewPIACalculator(tables ssadata.Source, birthdate domain.Birthdate, earnings []domain.EarningRecord) *PIACalculator {
	if tables == nil {
		tables = ssadata.Default()
	}
	return &PIACalculator{
		tables:    tables,
		birthdate: birthdate,
		earnings:  append([]domain.EarningRecord(nil), earnings...),
	}
}

// IndexingYear is the year the recipient turns 60; earnings are indexed to it.
func (p *PIACalculator) IndexingYear() int {
	return p.birthdate.YearTurningSSAAge(60)
}

// IndexedEarnings scales a year's taxed earnings to the indexing year's wage
// level. Years at or after the indexing year, and years with no published
// index, are used as-is.
func (p *PIACalculator) IndexedEarnings(rec domain.EarningRecord) domain.Money {
	indexingYear := p.IndexingYear()
	if rec.Year >= indexingYear {
		return rec.TaxedEarnings
	}
	target, ok := p.tables.WageIndex(indexingYear)
	if !ok {
		return rec.TaxedEarnings
	}
	base, ok := p.tables.WageIndex(rec.Year)
	if !ok || base == 0 {
		return rec.TaxedEarnings
	}
	return rec.TaxedEarnings.TimesRatio(target, base)
}

// AIME averages the top 35 indexed years over 420 months, floored to the dollar.
func (p *PIACalculator) AIME() domain.Money {
	indexed := make([]int64, 0, len(p.earnings))
	for _, rec := range p.earnings {
		indexed = append(indexed, p.IndexedEarnings(rec).Cents())
	}
	sort.Slice(indexed, func(i, j int) bool { return indexed[i] > indexed[j] })
	if len(indexed) > ComputationYears {
		indexed = indexed[:ComputationYears]
	}

	var total int64
	for _, c := range indexed {
		total += c
	}
	return domain.MoneyFromCents(total / aimeDivisorMonths).FloorToDollar()
}

// BendPoints returns the two PIA formula bend points for an indexing year,
// rounded to whole dollars.
func BendPoints(tables ssadata.Source, indexingYear int) (first, second domain.Money) {
	if tables == nil {
		tables = ssadata.Default()
	}
	base, _ := tables.WageIndex(ssadata.BendPointBaseYear)
	current, ok := tables.WageIndex(indexingYear)
	if !ok || base == 0 {
		// Before wage indexing the 1977 amounts applied unchanged.
		return domain.MoneyFromDollars(ssadata.FirstBendPoint1977), domain.MoneyFromDollars(ssadata.SecondBendPoint1977)
	}
	return domain.MoneyFromCents(100 * roundRatio(ssadata.FirstBendPoint1977*current, base)),
		domain.MoneyFromCents(100 * roundRatio(ssadata.SecondBendPoint1977*current, base))
}

// BracketAmounts splits an AIME across the 90%, 32% and 15% brackets.
// Amounts are not rounded; PIAFromAIME floors their sum.
func BracketAmounts(tables ssadata.Source, aime domain.Money, indexingYear int) [3]domain.Money {
	first, second := BendPoints(tables, indexingYear)
	zero := domain.Money{}

	b1 := domain.MinMoney(aime, first)
	b2 := domain.MaxMoney(zero, domain.MinMoney(aime, second).Minus(first))
	b3 := domain.MaxMoney(zero, aime.Minus(second))

	return [3]domain.Money{
		b1.TimesRatio(90, 100),
		b2.TimesRatio(32, 100),
		b3.TimesRatio(15, 100),
	}
}

// PIAFromAIME applies the bend-point formula and floors the total to a dime.
func PIAFromAIME(tables ssadata.Source, aime domain.Money, indexingYear int) domain.Money {
	brackets := BracketAmounts(tables, aime, indexingYear)
	return brackets[0].Plus(brackets[1]).Plus(brackets[2]).FloorToDime()
}

// PrimaryInsuranceAmountUnadjusted is the PIA before any COLAs.
func (p *PIACalculator) PrimaryInsuranceAmountUnadjusted() domain.Money {
	return PIAFromAIME(p.tables, p.AIME(), p.IndexingYear())
}

// PrimaryInsuranceAmountForYear applies every COLA from the year the
// recipient turns 62 through the year before year, flooring to a dime after
// each one.
func (p *PIACalculator) PrimaryInsuranceAmountForYear(year int) domain.Money {
	return ApplyCOLAs(p.tables, p.PrimaryInsuranceAmountUnadjusted(), p.birthdate.YearTurningSSAAge(62), year)
}

// ApplyCOLAs compounds the COLAs announced in [fromYear, toYear) onto pia.
// Years without a published COLA contribute nothing.
func ApplyCOLAs(tables ssadata.Source, pia domain.Money, fromYear, toYear int) domain.Money {
	if tables == nil {
		tables = ssadata.Default()
	}
	for y := fromYear; y < toYear; y++ {
		tenths, ok := tables.COLA(y)
		if !ok {
			continue
		}
		pia = pia.TimesRatio(int64(1000+tenths), 1000).FloorToDime()
	}
	return pia
}

func roundRatio(num, den int64) int64 {
	return (2*num + den) / (2 * den)
}
