package calculation

import (
	"math"

	"github.com/rgehrsitz/ssopt/internal/domain"
)

// DiscountFactor is the present value of one dollar paid in month at, seen
// from current with annual rate. Months at or before current are not discounted.
func DiscountFactor(at, current domain.MonthDate, rate float64) float64 {
	k := int(at - current)
	if k <= 0 || rate == 0 {
		return 1
	}
	return math.Pow(1+rate, -float64(k)/12)
}

// DiscountedMonths is the sum of DiscountFactor over [start, end] in closed form.
func DiscountedMonths(start, end, current domain.MonthDate, rate float64) float64 {
	if end < start {
		return 0
	}
	total := 0.0
	if start <= current {
		undiscountedEnd := domain.MinMonthDate(end, current)
		total += float64(undiscountedEnd-start) + 1
		start = current.AddMonths(1)
		if end < start {
			return total
		}
	}
	n := float64(end-start) + 1
	if rate == 0 {
		return total + n
	}
	v := math.Pow(1+rate, -1.0/12)
	first := math.Pow(1+rate, -float64(start-current)/12)
	return total + first*(1-math.Pow(v, n))/(1-v)
}

// DiscountedSum is the net present value of periods in cents.
func DiscountedSum(periods []domain.BenefitPeriod, current domain.MonthDate, rate float64) float64 {
	total := 0.0
	for _, p := range periods {
		total += float64(p.Amount.Cents()) * DiscountedMonths(p.Start, p.End, current, rate)
	}
	return total
}

// DiscountTable holds prefix sums of monthly discount factors over a fixed
// range so any sub-range sums in O(1). It is immutable after construction
// and safe to share between goroutines.
type DiscountTable struct {
	current domain.MonthDate
	rate    float64
	from    domain.MonthDate
	prefix  []float64
}

// NewDiscountTable covers months [from, to].
func NewDiscountTable(current domain.MonthDate, rate float64, from, to domain.MonthDate) *DiscountTable {
	if to < from {
		to = from
	}
	prefix := make([]float64, int(to-from)+2)
	for m := from; m <= to; m++ {
		i := int(m - from)
		prefix[i+1] = prefix[i] + DiscountFactor(m, current, rate)
	}
	return &DiscountTable{current: current, rate: rate, from: from, prefix: prefix}
}

// Sum returns the discount factors summed over [start, end]. Ranges outside
// the table fall back to DiscountedMonths.
func (t *DiscountTable) Sum(start, end domain.MonthDate) float64 {
	if end < start {
		return 0
	}
	lo := int(start - t.from)
	hi := int(end-t.from) + 1
	if lo < 0 || hi >= len(t.prefix) {
		return DiscountedMonths(start, end, t.current, t.rate)
	}
	return t.prefix[hi] - t.prefix[lo]
}

// PeriodsValue is the discounted value of periods in cents.
func (t *DiscountTable) PeriodsValue(periods []domain.BenefitPeriod) float64 {
	total := 0.0
	for _, p := range periods {
		total += float64(p.Amount.Cents()) * t.Sum(p.Start, p.End)
	}
	return total
}
