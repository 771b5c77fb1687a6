package optimizer

import (
	"math"
	"sort"

	"github.com/rgehrsitz/ssopt/internal/calculation"
	"github.com/rgehrsitz/ssopt/internal/domain"
)

// Input is everything one strategy search depends on. FinalDates has one
// entry per recipient; Bounds is optional.
type Input struct {
	Recipients   []*calculation.Recipient
	FinalDates   []domain.MonthDate
	CurrentDate  domain.MonthDate
	DiscountRate float64
	Bounds       []Bounds
}

func (in Input) bounds(i int) Bounds {
	if in.Bounds == nil {
		return Bounds{}
	}
	return in.Bounds[i]
}

// FilingAges lists the filing ages searched for r: every month from its
// earliest filing age through 70y0m, narrowed by b.
func FilingAges(r *calculation.Recipient, b Bounds) []domain.MonthDuration {
	lo := r.Birthdate().EarliestFilingAge()
	hi := domain.FilingAgeCeiling
	if b.Min > lo {
		lo = b.Min
	}
	if b.Max != 0 && b.Max < hi {
		hi = b.Max
	}
	var ages []domain.MonthDuration
	for a := lo; a <= hi; a.Increment() {
		ages = append(ages, a)
	}
	return ages
}

// roles identifies the higher and lower earner in a couple. Only the lower
// earner can draw a spousal benefit.
type roles struct {
	higher, lower int
	spousal       bool
}

func resolveRoles(rs []*calculation.Recipient) roles {
	if len(rs) < 2 {
		return roles{}
	}
	ro := roles{higher: 0, lower: 1}
	if rs[1].PIA().GreaterThan(rs[0].PIA()) {
		ro = roles{higher: 1, lower: 0}
	}
	ro.spousal = rs[ro.lower].EligibleForSpousal(rs[ro.higher])
	return ro
}

// spousalEndDate is the lower earner's last spousal month. Payments stop at
// the lower earner's death, or the month before a survivor benefit could
// begin if the higher earner dies first.
func spousalEndDate(lower *calculation.Recipient, lowerFinal, higherFinal, lowerFiling domain.MonthDate) domain.MonthDate {
	survivorStart := lower.SurvivorStartDate(higherFinal, lowerFiling)
	if lowerFinal >= survivorStart {
		// Survivor amounts are zero; see Recipient.SurvivorBenefitOnDate.
		return survivorStart.AddMonths(-1)
	}
	return lowerFinal
}

func filingDates(rs []*calculation.Recipient, ages []domain.MonthDuration) []domain.MonthDate {
	dates := make([]domain.MonthDate, len(rs))
	for i, r := range rs {
		dates[i] = r.Birthdate().DateAtSSAAge(ages[i])
	}
	return dates
}

func newResult(rs []*calculation.Recipient, finals []domain.MonthDate, ages []domain.MonthDuration, total float64) domain.StrategyResult {
	res := domain.StrategyResult{
		FilingAge1: ages[0],
		FinalAge1:  rs[0].Birthdate().AgeAtSSADate(finals[0]),
		TotalCents: total,
	}
	if len(rs) > 1 {
		res.FilingAge2 = ages[1]
		res.FinalAge2 = rs[1].Birthdate().AgeAtSSADate(finals[1])
	}
	return res
}

// StrategySumBruteForce is the discounted lifetime benefit, in cents, for one
// choice of filing ages. It walks every month for every benefit stream and is
// the reference the optimized search is checked against.
func StrategySumBruteForce(in Input, ages []domain.MonthDuration) float64 {
	rs := in.Recipients
	filing := filingDates(rs, ages)
	total := 0.0
	for i, r := range rs {
		for m := filing[i]; m <= in.FinalDates[i]; m++ {
			total += float64(r.BenefitOnDate(filing[i], m).Cents()) * calculation.DiscountFactor(m, in.CurrentDate, in.DiscountRate)
		}
	}

	ro := resolveRoles(rs)
	if ro.spousal {
		lower, higher := rs[ro.lower], rs[ro.higher]
		end := spousalEndDate(lower, in.FinalDates[ro.lower], in.FinalDates[ro.higher], filing[ro.lower])
		for m := filing[ro.lower]; m <= end; m++ {
			amount := lower.SpousalBenefitOnDate(higher, filing[ro.higher], filing[ro.lower], m)
			total += float64(amount.Cents()) * calculation.DiscountFactor(m, in.CurrentDate, in.DiscountRate)
		}
	}
	return math.Round(total)
}

// OptimalStrategyBruteForce tries every filing-age combination with
// StrategySumBruteForce. The first combination with the highest total wins.
func OptimalStrategyBruteForce(in Input) domain.StrategyResult {
	rs := in.Recipients
	if len(rs) == 0 {
		return domain.StrategyResult{}
	}
	ranges := make([][]domain.MonthDuration, len(rs))
	for i, r := range rs {
		ranges[i] = FilingAges(r, in.bounds(i))
		if len(ranges[i]) == 0 {
			return domain.StrategyResult{}
		}
	}

	var best domain.StrategyResult
	found := false
	consider := func(ages []domain.MonthDuration) {
		total := StrategySumBruteForce(in, ages)
		if !found || total > best.TotalCents {
			best = newResult(rs, in.FinalDates, ages, total)
			found = true
		}
	}

	if len(rs) == 1 {
		for _, a := range ranges[0] {
			consider([]domain.MonthDuration{a})
		}
		return best
	}
	for _, a1 := range ranges[0] {
		for _, a2 := range ranges[1] {
			consider([]domain.MonthDuration{a1, a2})
		}
	}
	return best
}

// search holds per-invocation state for the optimized path: the discount
// table, the filing ranges and a spousal memo. It is not safe for
// concurrent use; the grid gives each worker its own.
type search struct {
	rs    []*calculation.Recipient
	table *calculation.DiscountTable
	roles roles
	ages  [][]domain.MonthDuration
	dates [][]domain.MonthDate
	memo  *spousalMemo
}

func newSearch(rs []*calculation.Recipient, bounds func(int) Bounds, table *calculation.DiscountTable) *search {
	s := &search{
		rs:    rs,
		table: table,
		roles: resolveRoles(rs),
		ages:  make([][]domain.MonthDuration, len(rs)),
		dates: make([][]domain.MonthDate, len(rs)),
		memo:  newSpousalMemo(),
	}
	for i, r := range rs {
		s.ages[i] = FilingAges(r, bounds(i))
		s.dates[i] = make([]domain.MonthDate, len(s.ages[i]))
		for k, a := range s.ages[i] {
			s.dates[i][k] = r.Birthdate().DateAtSSAAge(a)
		}
	}
	return s
}

// tableFor covers every month any benefit in a search can be paid.
func tableFor(rs []*calculation.Recipient, lastFinal domain.MonthDate, current domain.MonthDate, rate float64) *calculation.DiscountTable {
	first := lastFinal
	for _, r := range rs {
		first = domain.MinMonthDate(first, r.Birthdate().EarliestFilingMonth())
	}
	return calculation.NewDiscountTable(current, rate, first, lastFinal)
}

func newInputSearch(in Input) *search {
	last := in.FinalDates[0]
	for _, f := range in.FinalDates {
		last = domain.MaxMonthDate(last, f)
	}
	return newSearch(in.Recipients, in.bounds, tableFor(in.Recipients, last, in.CurrentDate, in.DiscountRate))
}

func (s *search) empty() bool {
	for _, a := range s.ages {
		if len(a) == 0 {
			return true
		}
	}
	return len(s.ages) == 0
}

// personalSums is recipient i's discounted personal benefit for each filing
// age in its range, dying in final.
func (s *search) personalSums(i int, final domain.MonthDate) []float64 {
	r := s.rs[i]
	sums := make([]float64, len(s.dates[i]))
	for k, filing := range s.dates[i] {
		sums[k] = s.table.PeriodsValue(calculation.PersonalBenefitPeriods(r, filing, final))
	}
	return sums
}

// spousalValue is the discounted spousal benefit for filing indices k0, k1.
func (s *search) spousalValue(k0, k1 int, finals [2]domain.MonthDate) float64 {
	if !s.roles.spousal {
		return 0
	}
	idx := [2]int{k0, k1}
	lo, hi := s.roles.lower, s.roles.higher
	lower, higher := s.rs[lo], s.rs[hi]
	lowerFiling := s.dates[lo][idx[lo]]
	higherFiling := s.dates[hi][idx[hi]]

	start := calculation.SpousalStartDate(higherFiling, lowerFiling)
	end := spousalEndDate(lower, finals[lo], finals[hi], lowerFiling)
	if end < start {
		return 0
	}
	amount := s.memo.amount(start, func() domain.Money {
		return lower.SpousalBenefitAtStart(higher, start)
	})
	if amount.IsZero() {
		return 0
	}
	return float64(amount.Cents()) * s.table.Sum(start, end)
}

// best returns the filing indices with the highest rounded total. The first
// pair reaching the maximum wins.
func (s *search) best(sums0, sums1 []float64, finals [2]domain.MonthDate) (int, int, float64) {
	bi, bj, bt := -1, -1, 0.0
	for i := range sums0 {
		for j := range sums1 {
			total := s.total(i, j, sums0, sums1, finals)
			if bi < 0 || total > bt {
				bi, bj, bt = i, j, total
			}
		}
	}
	return bi, bj, bt
}

func (s *search) total(i, j int, sums0, sums1 []float64, finals [2]domain.MonthDate) float64 {
	return math.Round(sums0[i] + sums1[j] + s.spousalValue(i, j, finals))
}

// StrategySumOptimized computes the same total as StrategySumBruteForce
// from compressed benefit periods and prefix-summed discount factors.
func StrategySumOptimized(in Input, ages []domain.MonthDuration) float64 {
	s := newInputSearch(in)
	filing := filingDates(in.Recipients, ages)
	total := 0.0
	for i, r := range in.Recipients {
		total += s.table.PeriodsValue(calculation.PersonalBenefitPeriods(r, filing[i], in.FinalDates[i]))
	}
	if s.roles.spousal {
		lo, hi := s.roles.lower, s.roles.higher
		end := spousalEndDate(in.Recipients[lo], in.FinalDates[lo], in.FinalDates[hi], filing[lo])
		periods := calculation.SpousalBenefitPeriods(in.Recipients[lo], in.Recipients[hi], filing[lo], filing[hi], end)
		total += s.table.PeriodsValue(periods)
	}
	return math.Round(total)
}

// OptimalStrategyOptimized returns the same result as
// OptimalStrategyBruteForce. Personal sums depend on one recipient's filing
// age only, so they are computed once per age; spousal amounts are memoized
// by start month.
func OptimalStrategyOptimized(in Input) domain.StrategyResult {
	if len(in.Recipients) == 0 {
		return domain.StrategyResult{}
	}
	s := newInputSearch(in)
	if s.empty() {
		return domain.StrategyResult{}
	}

	if len(in.Recipients) == 1 {
		sums := s.personalSums(0, in.FinalDates[0])
		bk, bt := -1, 0.0
		for k, v := range sums {
			if total := math.Round(v); bk < 0 || total > bt {
				bk, bt = k, total
			}
		}
		return newResult(in.Recipients, in.FinalDates, []domain.MonthDuration{s.ages[0][bk]}, bt)
	}

	finals := [2]domain.MonthDate{in.FinalDates[0], in.FinalDates[1]}
	sums0 := s.personalSums(0, finals[0])
	sums1 := s.personalSums(1, finals[1])
	i, j, total := s.best(sums0, sums1, finals)
	return newResult(in.Recipients, in.FinalDates, []domain.MonthDuration{s.ages[0][i], s.ages[1][j]}, total)
}

// OptimalSingle finds the best filing age for one recipient who receives
// benefits through final.
func OptimalSingle(r *calculation.Recipient, final, current domain.MonthDate, rate float64) domain.StrategyResult {
	return OptimalStrategyOptimized(Input{
		Recipients:   []*calculation.Recipient{r},
		FinalDates:   []domain.MonthDate{final},
		CurrentDate:  current,
		DiscountRate: rate,
	})
}

// RankStrategies returns the n best filing-age pairs for a couple, highest
// total first, with Rank set from 1. Equal totals keep search order.
func RankStrategies(in Input, n int) []domain.StrategyResult {
	if len(in.Recipients) != 2 || n <= 0 {
		return nil
	}
	s := newInputSearch(in)
	if s.empty() {
		return nil
	}
	finals := [2]domain.MonthDate{in.FinalDates[0], in.FinalDates[1]}
	sums0 := s.personalSums(0, finals[0])
	sums1 := s.personalSums(1, finals[1])

	all := make([]domain.StrategyResult, 0, len(sums0)*len(sums1))
	for i := range sums0 {
		for j := range sums1 {
			ages := []domain.MonthDuration{s.ages[0][i], s.ages[1][j]}
			all = append(all, newResult(in.Recipients, in.FinalDates, ages, s.total(i, j, sums0, sums1, finals)))
		}
	}
	sort.SliceStable(all, func(a, b int) bool { return all[a].TotalCents > all[b].TotalCents })
	if n > len(all) {
		n = len(all)
	}
	top := all[:n]
	for k := range top {
		top[k].Rank = k + 1
	}
	return top
}
