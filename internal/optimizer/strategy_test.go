package optimizer

import (
	"math/rand"
	"testing"

	"github.com/rgehrsitz/ssopt/internal/calculation"
	"github.com/rgehrsitz/ssopt/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ym(year, month int) domain.MonthDate {
	return domain.MonthDateFromYM(year, month)
}

func age(years, months int) domain.MonthDuration {
	return domain.YearsMonths(years, months)
}

func recipientWithPIA(name string, year, month, day int, dollars float64) *calculation.Recipient {
	return calculation.NewRecipientWithPIA(name, domain.BirthdateFromYMD(year, month, day), domain.MoneyFromDollars(dollars))
}

// couple is a higher earner born Mar 1960 and a spousal-eligible lower
// earner born Jul 1962.
func couple() []*calculation.Recipient {
	higher := recipientWithPIA("Alex", 1960, 2, 15, 2000)
	lower := recipientWithPIA("Chris", 1962, 6, 20, 600)
	lower.Index = 1
	return []*calculation.Recipient{higher, lower}
}

func TestFilingAges(t *testing.T) {
	// Jan 5 birthday: earliest filing is 62y1m.
	r := recipientWithPIA("Alex", 1960, 0, 5, 1000)
	ages := FilingAges(r, Bounds{})
	require.Len(t, ages, 96)
	assert.Equal(t, age(62, 1), ages[0])
	assert.Equal(t, age(70, 0), ages[len(ages)-1])

	// Someone born on the 2nd attains each age on the 1st.
	first := recipientWithPIA("Sam", 1960, 0, 2, 1000)
	assert.Equal(t, age(62, 0), FilingAges(first, Bounds{})[0])

	narrowed := FilingAges(r, Bounds{Min: age(66, 0), Max: age(66, 3)})
	assert.Equal(t, []domain.MonthDuration{age(66, 0), age(66, 1), age(66, 2), age(66, 3)}, narrowed)

	assert.Empty(t, FilingAges(r, Bounds{Min: age(69, 0), Max: age(68, 0)}))
}

func TestResolveRoles(t *testing.T) {
	rs := couple()
	ro := resolveRoles(rs)
	assert.Equal(t, roles{higher: 0, lower: 1, spousal: true}, ro)

	swapped := resolveRoles([]*calculation.Recipient{rs[1], rs[0]})
	assert.Equal(t, roles{higher: 1, lower: 0, spousal: true}, swapped)

	tied := resolveRoles([]*calculation.Recipient{recipientWithPIA("A", 1960, 0, 5, 1000), recipientWithPIA("B", 1961, 0, 5, 1000)})
	assert.Equal(t, roles{higher: 0, lower: 1, spousal: false}, tied, "ties keep input order")

	assert.Equal(t, roles{}, resolveRoles(rs[:1]))
}

func TestSpousalEndDate(t *testing.T) {
	lower := couple()[1]
	tests := []struct {
		name        string
		lowerFinal  domain.MonthDate
		higherFinal domain.MonthDate
		lowerFiling domain.MonthDate
		want        domain.MonthDate
	}{
		{"lower dies first", ym(2050, 0), ym(2055, 0), ym(2025, 0), ym(2050, 0)},
		{"same month", ym(2050, 0), ym(2050, 0), ym(2025, 0), ym(2050, 0)},
		{"higher dies first", ym(2055, 0), ym(2050, 0), ym(2025, 0), ym(2050, 0)},
		{"higher dies before lower files", ym(2055, 0), ym(2020, 0), ym(2025, 0), ym(2024, 11)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, spousalEndDate(lower, tt.lowerFinal, tt.higherFinal, tt.lowerFiling))
		})
	}
}

func TestOptimalSingleLongLife(t *testing.T) {
	r := recipientWithPIA("Alex", 1960, 0, 5, 1000)
	final := FinalDate(r, age(100, 0))
	require.Equal(t, ym(2060, 0), final)

	res := OptimalSingle(r, final, ym(2020, 0), 0)
	assert.Equal(t, age(70, 0), res.FilingAge1)
	assert.Equal(t, age(100, 0), res.FinalAge1)
	// Jan 2030 through Jan 2060 at $1,240.
	assert.Equal(t, 361*124000.0, res.TotalCents)
	assert.Equal(t, domain.MoneyFromDollars(447640), res.Total())
}

func TestOptimalSingleShortLife(t *testing.T) {
	r := recipientWithPIA("Alex", 1960, 0, 5, 1000)
	res := OptimalSingle(r, FinalDate(r, age(63, 0)), ym(2020, 0), 0)

	assert.Equal(t, age(62, 1), res.FilingAge1)
	// Feb 2022 through Jan 2023 at $704.
	assert.Equal(t, 12*70400.0, res.TotalCents)
}

func TestStrategySumsAgree(t *testing.T) {
	rs := couple()
	in := Input{
		Recipients:   rs,
		FinalDates:   []domain.MonthDate{FinalDate(rs[0], age(85, 0)), FinalDate(rs[1], age(92, 0))},
		CurrentDate:  ym(2024, 5),
		DiscountRate: 0.03,
	}

	for _, ages := range [][]domain.MonthDuration{
		{age(62, 1), age(62, 1)},
		{age(67, 0), age(64, 6)},
		{age(70, 0), age(70, 0)},
		{age(68, 7), age(66, 11)},
	} {
		brute := StrategySumBruteForce(in, ages)
		fast := StrategySumOptimized(in, ages)
		assert.InDelta(t, brute, fast, 1, "filing ages %v", ages)
		assert.Greater(t, brute, 0.0)
	}
}

func TestSpousalBenefitIncludedOnlyWhenEligible(t *testing.T) {
	rs := couple()
	in := Input{
		Recipients:  rs,
		FinalDates:  []domain.MonthDate{FinalDate(rs[0], age(90, 0)), FinalDate(rs[1], age(90, 0))},
		CurrentDate: ym(2024, 5),
	}
	ages := []domain.MonthDuration{age(67, 0), age(67, 0)}
	withSpousal := StrategySumBruteForce(in, ages)

	personal := 0.0
	for i, r := range rs {
		filing := r.Birthdate().DateAtSSAAge(ages[i])
		personal += float64(calculation.SumBenefitStream(filing, in.FinalDates[i], func(m domain.MonthDate) domain.Money {
			return r.BenefitOnDate(filing, m)
		}).Cents())
	}
	// Spousal runs at $400 from the later filing (the lower earner's) until
	// the higher earner dies.
	lowerFiling := rs[1].Birthdate().DateAtSSAAge(age(67, 0))
	require.Less(t, in.FinalDates[0], in.FinalDates[1])
	months := float64(in.FinalDates[0]-lowerFiling) + 1
	assert.Equal(t, personal+months*40000, withSpousal)
}

func TestOptimalStrategyBruteForceMatchesOptimized(t *testing.T) {
	rs := couple()
	tests := []struct {
		name           string
		final1, final2 int
		rate           float64
	}{
		{"both long lived", 95, 95, 0},
		{"higher dies early", 70, 95, 0.02},
		{"lower dies early", 95, 66, 0.04},
		{"both short", 64, 63, 0.05},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := Input{
				Recipients:   rs,
				FinalDates:   []domain.MonthDate{FinalDate(rs[0], age(tt.final1, 0)), FinalDate(rs[1], age(tt.final2, 0))},
				CurrentDate:  ym(2024, 5),
				DiscountRate: tt.rate,
				Bounds:       []Bounds{{Min: age(64, 0), Max: age(70, 0)}, {Min: age(62, 0), Max: age(67, 0)}},
			}
			brute := OptimalStrategyBruteForce(in)
			fast := OptimalStrategyOptimized(in)
			assert.Equal(t, brute.FilingAge1, fast.FilingAge1)
			assert.Equal(t, brute.FilingAge2, fast.FilingAge2)
			assert.InDelta(t, brute.TotalCents, fast.TotalCents, 1)
			assert.Equal(t, age(tt.final1, 0), fast.FinalAge1)
		})
	}
}

func TestOptimalStrategyEmptyRange(t *testing.T) {
	rs := couple()
	in := Input{
		Recipients:  rs,
		FinalDates:  []domain.MonthDate{ym(2050, 0), ym(2050, 0)},
		CurrentDate: ym(2024, 5),
		Bounds:      []Bounds{{Min: age(69, 0), Max: age(68, 0)}, {}},
	}
	assert.Equal(t, domain.StrategyResult{}, OptimalStrategyOptimized(in))
	assert.Equal(t, domain.StrategyResult{}, OptimalStrategyBruteForce(in))
	assert.Equal(t, domain.StrategyResult{}, OptimalStrategyOptimized(Input{}))
}

func TestZeroPIAPicksFirstPair(t *testing.T) {
	rs := []*calculation.Recipient{recipientWithPIA("A", 1960, 0, 5, 0), recipientWithPIA("B", 1960, 0, 5, 0)}
	in := Input{Recipients: rs, FinalDates: []domain.MonthDate{ym(2050, 0), ym(2050, 0)}, CurrentDate: ym(2024, 0)}
	res := OptimalStrategyOptimized(in)
	assert.Equal(t, age(62, 1), res.FilingAge1)
	assert.Equal(t, age(62, 1), res.FilingAge2)
	assert.Zero(t, res.TotalCents)
	assert.Equal(t, res, OptimalStrategyBruteForce(in))
}

func TestRankStrategies(t *testing.T) {
	rs := couple()
	in := Input{
		Recipients:   rs,
		FinalDates:   []domain.MonthDate{FinalDate(rs[0], age(88, 0)), FinalDate(rs[1], age(91, 0))},
		CurrentDate:  ym(2024, 5),
		DiscountRate: 0.025,
	}
	top := RankStrategies(in, 5)
	require.Len(t, top, 5)

	best := OptimalStrategyOptimized(in)
	assert.Equal(t, best.FilingAge1, top[0].FilingAge1)
	assert.Equal(t, best.FilingAge2, top[0].FilingAge2)
	assert.Equal(t, best.TotalCents, top[0].TotalCents)
	for i, r := range top {
		assert.Equal(t, i+1, r.Rank)
		if i > 0 {
			assert.LessOrEqual(t, r.TotalCents, top[i-1].TotalCents)
		}
	}

	assert.Nil(t, RankStrategies(in, 0))
	assert.Nil(t, RankStrategies(Input{Recipients: rs[:1]}, 3))
}

func TestSpousalMemo(t *testing.T) {
	m := newSpousalMemo()
	calls := 0
	compute := func() domain.Money {
		calls++
		return domain.MoneyFromDollars(400)
	}
	assert.Equal(t, domain.MoneyFromDollars(400), m.amount(ym(2030, 0), compute))
	assert.Equal(t, domain.MoneyFromDollars(400), m.amount(ym(2030, 0), compute))
	m.amount(ym(2030, 1), compute)
	assert.Equal(t, 2, calls)
	assert.Equal(t, 1, m.hits)
}

// randomRecipient is aged 50 to 80 at current with a PIA of $0 to $4,000.
func randomRecipient(rng *rand.Rand, name string, current domain.MonthDate) *calculation.Recipient {
	years := 50 + rng.Intn(31)
	birth := domain.BirthdateFromYMD(current.Year()-years, rng.Intn(12), 1+rng.Intn(28))
	return calculation.NewRecipientWithPIA(name, birth, domain.MoneyFromCents(rng.Int63n(400001)))
}

// randomWindow narrows r's filing range to at most four consecutive months.
func randomWindow(rng *rand.Rand, r *calculation.Recipient) Bounds {
	ages := FilingAges(r, Bounds{})
	width := 1 + rng.Intn(4)
	start := rng.Intn(len(ages) - width + 1)
	return Bounds{Min: ages[start], Max: ages[start+width-1]}
}

func randomInput(rng *rand.Rand, windowed bool) Input {
	current := ym(2024, 5)
	rs := []*calculation.Recipient{randomRecipient(rng, "A", current), randomRecipient(rng, "B", current)}
	in := Input{
		Recipients:   rs,
		CurrentDate:  current,
		DiscountRate: 0.01 + rng.Float64()*0.06,
	}
	for _, r := range rs {
		in.FinalDates = append(in.FinalDates, FinalDate(r, age(62+rng.Intn(59), rng.Intn(12))))
	}
	if windowed {
		in.Bounds = []Bounds{randomWindow(rng, rs[0]), randomWindow(rng, rs[1])}
	}
	return in
}

func TestOptimizedMatchesBruteForceRandomized(t *testing.T) {
	trials := 10000
	if testing.Short() {
		trials = 500
	}
	rng := rand.New(rand.NewSource(20240601))

	for trial := 0; trial < trials; trial++ {
		in := randomInput(rng, true)
		brute := OptimalStrategyBruteForce(in)
		fast := OptimalStrategyOptimized(in)
		if !assert.Equal(t, brute.FilingAge1, fast.FilingAge1, "trial %d", trial) ||
			!assert.Equal(t, brute.FilingAge2, fast.FilingAge2, "trial %d", trial) ||
			!assert.InDelta(t, brute.TotalCents, fast.TotalCents, 1, "trial %d", trial) {
			t.FailNow()
		}
	}
}

func TestOptimizedMatchesBruteForceFullRange(t *testing.T) {
	if testing.Short() {
		t.Skip("full filing-age range brute force is slow")
	}
	rng := rand.New(rand.NewSource(7))

	for trial := 0; trial < 3; trial++ {
		in := randomInput(rng, false)
		brute := OptimalStrategyBruteForce(in)
		fast := OptimalStrategyOptimized(in)
		assert.Equal(t, brute.FilingAge1, fast.FilingAge1, "trial %d", trial)
		assert.Equal(t, brute.FilingAge2, fast.FilingAge2, "trial %d", trial)
		assert.InDelta(t, brute.TotalCents, fast.TotalCents, 1, "trial %d", trial)
	}
}
