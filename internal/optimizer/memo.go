package optimizer

import "github.com/rgehrsitz/ssopt/internal/domain"

// spousalMemo caches the lower earner's spousal amount by start month. The
// amount depends only on the start month once the couple is fixed, so one
// memo lives for one search and is never shared.
type spousalMemo struct {
	amounts map[domain.MonthDate]domain.Money
	hits    int
}

func newSpousalMemo() *spousalMemo {
	return &spousalMemo{amounts: make(map[domain.MonthDate]domain.Money)}
}

func (m *spousalMemo) amount(start domain.MonthDate, compute func() domain.Money) domain.Money {
	if v, ok := m.amounts[start]; ok {
		m.hits++
		return v
	}
	v := compute()
	m.amounts[start] = v
	return v
}
