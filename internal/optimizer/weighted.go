package optimizer

import (
	"context"
	"math"

	"github.com/rgehrsitz/ssopt/internal/calculation"
	"github.com/rgehrsitz/ssopt/internal/domain"
)

// WeightedInput describes a search over death-age buckets rather than known
// final ages. Buckets has one bucket list per recipient.
type WeightedInput struct {
	Recipients   []*calculation.Recipient
	Buckets      [][]domain.DeathAgeBucket
	CurrentDate  domain.MonthDate
	DiscountRate float64
	Bounds       []Bounds
}

func (in WeightedInput) bounds(i int) Bounds {
	if in.Bounds == nil {
		return Bounds{}
	}
	return in.Bounds[i]
}

// bucketFinal is the final benefit month for someone dying at the bucket's
// expected age.
func bucketFinal(r *calculation.Recipient, b domain.DeathAgeBucket) domain.MonthDate {
	return FinalDate(r, b.ExpectedAge)
}

// OptimalStrategyWeighted maximizes the probability-weighted total over
// every combination of the recipients' death-age buckets. Buckets with zero
// probability are skipped. The returned result carries the expected total
// and the most likely bucket for each recipient.
func OptimalStrategyWeighted(in WeightedInput) domain.StrategyResult {
	res, _ := optimalStrategyWeighted(context.Background(), in)
	return res
}

// optimalStrategyWeighted checks ctx before each of the first recipient's
// filing ages.
func optimalStrategyWeighted(ctx context.Context, in WeightedInput) (domain.StrategyResult, error) {
	rs := in.Recipients
	if len(rs) == 0 || len(in.Buckets) != len(rs) {
		return domain.StrategyResult{}, nil
	}

	buckets := make([][]domain.DeathAgeBucket, len(rs))
	finals := make([][]domain.MonthDate, len(rs))
	last := domain.MonthDate(0)
	for i, r := range rs {
		for _, b := range in.Buckets[i] {
			if b.Probability <= 0 {
				continue
			}
			buckets[i] = append(buckets[i], b)
			f := bucketFinal(r, b)
			finals[i] = append(finals[i], f)
			last = domain.MaxMonthDate(last, f)
		}
		if len(buckets[i]) == 0 {
			return domain.StrategyResult{}, nil
		}
	}

	s := newSearch(rs, in.bounds, tableFor(rs, last, in.CurrentDate, in.DiscountRate))
	if s.empty() {
		return domain.StrategyResult{}, nil
	}

	// Expected personal value per filing index.
	expected := make([][]float64, len(rs))
	for i := range rs {
		expected[i] = make([]float64, len(s.ages[i]))
		for b, f := range finals[i] {
			p := buckets[i][b].Probability
			for k, v := range s.personalSums(i, f) {
				expected[i][k] += p * v
			}
		}
	}

	res := domain.StrategyResult{}
	if len(rs) == 1 {
		bk, bt := -1, 0.0
		for k, v := range expected[0] {
			if total := math.Round(v); bk < 0 || total > bt {
				bk, bt = k, total
			}
		}
		res.FilingAge1 = s.ages[0][bk]
		res.TotalCents = bt
	} else {
		bi, bj, bt := -1, -1, 0.0
		for i := range expected[0] {
			if err := ctx.Err(); err != nil {
				return domain.StrategyResult{}, err
			}
			for j := range expected[1] {
				total := expected[0][i] + expected[1][j]
				if s.roles.spousal {
					for b0, f0 := range finals[0] {
						for b1, f1 := range finals[1] {
							p := buckets[0][b0].Probability * buckets[1][b1].Probability
							total += p * s.spousalValue(i, j, [2]domain.MonthDate{f0, f1})
						}
					}
				}
				total = math.Round(total)
				if bi < 0 || total > bt {
					bi, bj, bt = i, j, total
				}
			}
		}
		res.FilingAge1 = s.ages[0][bi]
		res.FilingAge2 = s.ages[1][bj]
		res.TotalCents = bt
	}

	for i := range rs {
		b := mostLikely(buckets[i])
		if i == 0 {
			res.Bucket1 = &b
			res.FinalAge1 = b.ExpectedAge
		} else {
			res.Bucket2 = &b
			res.FinalAge2 = b.ExpectedAge
		}
	}
	return res, nil
}

func mostLikely(buckets []domain.DeathAgeBucket) domain.DeathAgeBucket {
	best := buckets[0]
	for _, b := range buckets[1:] {
		if b.Probability > best.Probability {
			best = b
		}
	}
	return best
}
