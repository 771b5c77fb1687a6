package calculation

import (
	"github.com/rgehrsitz/ssopt/internal/domain"
)

// PersonalBenefitPeriods compresses r's personal benefit stream from filing
// through final into at most two constant periods: the rest of the filing
// year at the filing-month rate, then everything from the following January
// at the January rate. Adjacent periods with equal amounts are merged.
func PersonalBenefitPeriods(r *Recipient, filing, final domain.MonthDate) []domain.BenefitPeriod {
	if final < filing {
		return nil
	}
	endOfFilingYear := filing.DecemberOf()
	first := domain.BenefitPeriod{
		Start:          filing,
		End:            domain.MinMonthDate(final, endOfFilingYear),
		Amount:         r.BenefitOnDate(filing, filing),
		RecipientIndex: r.Index,
		Type:           domain.BenefitPersonal,
	}
	if final <= endOfFilingYear {
		return []domain.BenefitPeriod{first}
	}

	january := endOfFilingYear.AddMonths(1)
	steady := r.BenefitOnDate(filing, january)
	if steady.Equal(first.Amount) {
		first.End = final
		return []domain.BenefitPeriod{first}
	}
	return []domain.BenefitPeriod{first, {
		Start:          january,
		End:            final,
		Amount:         steady,
		RecipientIndex: r.Index,
		Type:           domain.BenefitPersonal,
	}}
}

// SpousalBenefitPeriods returns lower's spousal benefit from the later of the
// two filing dates through end as a single period, or nil when nothing is paid.
func SpousalBenefitPeriods(lower, higher *Recipient, lowerFiling, higherFiling, end domain.MonthDate) []domain.BenefitPeriod {
	start := SpousalStartDate(higherFiling, lowerFiling)
	if end < start {
		return nil
	}
	amount := lower.SpousalBenefitAtStart(higher, start)
	if amount.IsZero() {
		return nil
	}
	return []domain.BenefitPeriod{{
		Start:          start,
		End:            end,
		Amount:         amount,
		RecipientIndex: lower.Index,
		Type:           domain.BenefitSpousal,
	}}
}

// SumBenefitPeriods totals periods without discounting.
func SumBenefitPeriods(periods []domain.BenefitPeriod) domain.Money {
	var total domain.Money
	for _, p := range periods {
		total = total.Plus(p.Total())
	}
	return total
}

// SumBenefitStream totals benefitOnDate for every month in [from, to], one
// month at a time. It is the uncompressed reference for PersonalBenefitPeriods.
func SumBenefitStream(from, to domain.MonthDate, benefitOnDate func(domain.MonthDate) domain.Money) domain.Money {
	var total domain.Money
	for m := from; m <= to; m++ {
		total = total.Plus(benefitOnDate(m))
	}
	return total
}
