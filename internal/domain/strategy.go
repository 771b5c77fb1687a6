package domain

import "math"

const (
	// FilingAgeCeiling is the age after which delaying a claim earns no more credits.
	FilingAgeCeiling MonthDuration = 70 * 12

	// FilingAgeFloor is the youngest SSA age at which retirement benefits can start.
	FilingAgeFloor MonthDuration = 62 * 12
)

// StrategyResult is the outcome of a filing-age search for one pair of
// final ages (or death-age buckets).
type StrategyResult struct {
	FilingAge1 MonthDuration `json:"filing_age_1"`
	FilingAge2 MonthDuration `json:"filing_age_2"`
	// FinalAge1 and FinalAge2 are the ages through which benefits are paid.
	FinalAge1 MonthDuration   `json:"final_age_1"`
	FinalAge2 MonthDuration   `json:"final_age_2"`
	Bucket1   *DeathAgeBucket `json:"bucket_1,omitempty"`
	Bucket2   *DeathAgeBucket `json:"bucket_2,omitempty"`
	// TotalCents is the (possibly discounted, possibly probability-weighted)
	// lifetime benefit in cents, rounded to a whole cent.
	TotalCents float64 `json:"total_cents"`
	Rank       int     `json:"rank,omitempty"`
}

// Total returns TotalCents as Money.
func (r StrategyResult) Total() Money {
	return MoneyFromCents(int64(math.Round(r.TotalCents)))
}
