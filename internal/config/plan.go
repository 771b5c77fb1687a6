package config

import (
	"context"
	"fmt"
	"time"

	"github.com/rgehrsitz/ssopt/internal/calculation"
	"github.com/rgehrsitz/ssopt/internal/domain"
	"github.com/rgehrsitz/ssopt/internal/mortality"
	"github.com/rgehrsitz/ssopt/internal/optimizer"
	"github.com/rgehrsitz/ssopt/internal/ssadata"
)

// DefaultBucketYears is the death-age bucket width when a household file
// leaves it unset.
const DefaultBucketYears = 3

// Plan is a validated household turned into the values the optimizer and
// mortality packages consume.
type Plan struct {
	Household   *domain.Household
	Recipients  []*calculation.Recipient
	CurrentDate domain.MonthDate
	// DiscountRate is nil when the household leaves the rate to be fetched.
	DiscountRate *float64
	BucketYears  int
}

// BuildPlan converts h. now supplies the current month and evaluation year
// when the household does not pin them.
func BuildPlan(h *domain.Household, tables ssadata.Source, now time.Time) (*Plan, error) {
	current := domain.MonthDateFromTime(now)
	if h.Strategy.CurrentDate != "" {
		d, err := domain.ParseMonthDate(h.Strategy.CurrentDate)
		if err != nil {
			return nil, fmt.Errorf("current date: %w", err)
		}
		current = d
	}

	plan := &Plan{
		Household:   h,
		CurrentDate: current,
		BucketYears: h.Strategy.BucketYears,
	}
	if plan.BucketYears == 0 {
		plan.BucketYears = DefaultBucketYears
	}
	if h.Strategy.DiscountRate != nil {
		rate := h.Strategy.DiscountRate.InexactFloat64()
		plan.DiscountRate = &rate
	}

	for i, in := range h.Recipients {
		r, err := BuildRecipient(in, tables, current.Year())
		if err != nil {
			return nil, fmt.Errorf("recipient %d (%s): %w", i, in.Name, err)
		}
		r.Index = i
		plan.Recipients = append(plan.Recipients, r)
	}
	return plan, nil
}

// BuildRecipient converts one recipient input. evaluationYear is the year
// the earnings-derived PIA is COLA-adjusted to.
func BuildRecipient(in domain.RecipientInput, tables ssadata.Source, evaluationYear int) (*calculation.Recipient, error) {
	birth, err := domain.NewBirthdate(in.BirthDate.Year(), int(in.BirthDate.Month())-1, in.BirthDate.Day())
	if err != nil {
		return nil, err
	}
	gender, err := domain.ParseGender(in.Gender)
	if err != nil {
		return nil, err
	}

	r := calculation.NewRecipient(in.Name, birth, tables)
	r.Gender = gender
	if in.HealthMultiplier != nil {
		r.HealthMultiplier = in.HealthMultiplier.InexactFloat64()
	}

	if in.PIA != nil {
		r.SetOverridePIA(domain.MoneyFromDecimal(*in.PIA))
		return r, nil
	}
	records := make([]domain.EarningRecord, 0, len(in.Earnings))
	for _, e := range in.Earnings {
		rec, err := domain.NewEarningRecord(e.Year, domain.MoneyFromDecimal(e.TaxedEarnings), domain.MoneyFromDecimal(e.TaxedMedicareEarnings))
		if err != nil {
			return nil, err
		}
		rec.Incomplete = e.Incomplete
		records = append(records, rec)
	}
	r.SetEarnings(records, evaluationYear)
	return r, nil
}

// Rate returns the household's discount rate, or fallback when it has none.
func (p *Plan) Rate(fallback float64) float64 {
	if p.DiscountRate != nil {
		return *p.DiscountRate
	}
	return fallback
}

// FinalDates returns each recipient's final benefit month for the
// household's fixed final ages, or ok=false when none are set.
func (p *Plan) FinalDates() ([]domain.MonthDate, bool) {
	ages := p.Household.Strategy.FinalAges
	if len(ages) != len(p.Recipients) {
		return nil, false
	}
	dates := make([]domain.MonthDate, len(ages))
	for i, a := range ages {
		dates[i] = optimizer.FinalDate(p.Recipients[i], domain.YearsMonths(a, 0))
	}
	return dates, true
}

// StrategyInput builds the optimizer input for fixed final ages.
func (p *Plan) StrategyInput(rate float64) (optimizer.Input, error) {
	finals, ok := p.FinalDates()
	if !ok {
		return optimizer.Input{}, fmt.Errorf("household has no final ages")
	}
	return optimizer.Input{
		Recipients:   p.Recipients,
		FinalDates:   finals,
		CurrentDate:  p.CurrentDate,
		DiscountRate: rate,
	}, nil
}

// GridConfig builds a versioned grid configuration.
func (p *Plan) GridConfig(rate float64, workers int) optimizer.Config {
	cfg := optimizer.NewConfig(p.Recipients, p.CurrentDate, rate)
	if s := p.Household.Strategy; s.MinFinalAge != 0 {
		cfg.MinFinalAge = s.MinFinalAge
	}
	if s := p.Household.Strategy; s.MaxFinalAge != 0 {
		cfg.MaxFinalAge = s.MaxFinalAge
	}
	if workers > 0 {
		cfg.Workers = workers
	}
	cfg.MonotonicShortcut = p.Household.Strategy.MonotonicShortcut
	return cfg
}

// People describes each recipient for mortality lookups.
func (p *Plan) People() []mortality.Person {
	people := make([]mortality.Person, len(p.Recipients))
	for i, r := range p.Recipients {
		people[i] = mortality.Person{
			Gender:           r.Gender,
			BirthYear:        r.Birthdate().LayBirthYear(),
			HealthMultiplier: r.HealthMultiplier,
		}
	}
	return people
}

// WeightedInput builds mortality-weighted optimizer input, bucketing each
// recipient's death-age distribution by p.BucketYears.
func (p *Plan) WeightedInput(ctx context.Context, src mortality.Source, rate float64) (optimizer.WeightedInput, error) {
	in := optimizer.WeightedInput{
		Recipients:   p.Recipients,
		CurrentDate:  p.CurrentDate,
		DiscountRate: rate,
	}
	for i, person := range p.People() {
		dist, err := mortality.DeathProbabilityDistribution(ctx, src, person, p.CurrentDate.Year())
		if err != nil {
			return optimizer.WeightedInput{}, fmt.Errorf("recipient %d (%s): %w", i, p.Recipients[i].Name, err)
		}
		in.Buckets = append(in.Buckets, mortality.GenerateBuckets(dist, p.BucketYears))
	}
	return in, nil
}
