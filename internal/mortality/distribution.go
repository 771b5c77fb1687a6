package mortality

import (
	"context"
	"fmt"
	"math"

	"github.com/rgehrsitz/ssopt/internal/domain"
)

const (
	// OpenBucketStartAge is where the final, open-ended bucket begins.
	OpenBucketStartAge = 100
	// openBucketExpectedCap bounds the open bucket's expected age above its start.
	openBucketExpectedCap = 5.0
)

// Person is what a death-age distribution needs to know about someone.
type Person struct {
	Gender           domain.Gender
	BirthYear        int
	HealthMultiplier float64
}

// DeathProbabilityDistribution returns the probability of dying at each age
// from the person's age in currentYear onwards. q_x is scaled by the health
// multiplier and capped at 1. A final entry at MaxAge carries whatever
// survival probability remains, so the probabilities sum to 1.
func DeathProbabilityDistribution(ctx context.Context, src Source, p Person, currentYear int) ([]domain.DeathProbability, error) {
	currentAge := currentYear - p.BirthYear
	if currentAge < 0 {
		return nil, &ValidationError{Field: "age", Value: currentAge, Reason: "birth year is after the current year"}
	}
	if p.HealthMultiplier < 0 {
		return nil, &ValidationError{Field: "health multiplier", Value: p.HealthMultiplier, Reason: "must not be negative"}
	}
	table, err := GetLifeTableData(ctx, src, p.Gender, p.BirthYear)
	if err != nil {
		return nil, err
	}
	return distributionFromTable(table, currentAge, p.HealthMultiplier), nil
}

func distributionFromTable(table Table, currentAge int, multiplier float64) []domain.DeathProbability {
	if multiplier == 0 {
		multiplier = 1
	}
	survival := 1.0
	dist := make([]domain.DeathProbability, 0, MaxAge-currentAge+1)
	for _, e := range table {
		if e.X < currentAge || e.X >= MaxAge {
			continue
		}
		qx := math.Min(1, e.Qx*multiplier)
		dist = append(dist, domain.DeathProbability{Age: e.X, Probability: survival * qx})
		survival *= 1 - qx
	}
	return append(dist, domain.DeathProbability{Age: MaxAge, Probability: survival})
}

// GenerateOneYearBuckets groups a distribution into single-year buckets.
func GenerateOneYearBuckets(dist []domain.DeathProbability) []domain.DeathAgeBucket {
	return GenerateBuckets(dist, 1)
}

// GenerateThreeYearBuckets groups a distribution into three-year buckets.
func GenerateThreeYearBuckets(dist []domain.DeathProbability) []domain.DeathAgeBucket {
	return GenerateBuckets(dist, 3)
}

// GenerateBuckets groups dist into width-year buckets starting at its first
// age, with everything from OpenBucketStartAge up in one open-ended bucket.
// Each bucket's expected age assumes death mid-year; the open bucket's is
// capped at five years past its start.
func GenerateBuckets(dist []domain.DeathProbability, width int) []domain.DeathAgeBucket {
	if len(dist) == 0 {
		return nil
	}
	if width < 1 {
		width = 1
	}

	var buckets []domain.DeathAgeBucket
	i := 0
	start := dist[0].Age
	for i < len(dist) {
		if start >= OpenBucketStartAge {
			buckets = append(buckets, newBucket(dist[i:], start, nil))
			break
		}
		end := start + width - 1
		if end >= OpenBucketStartAge {
			end = OpenBucketStartAge - 1
		}
		j := i
		for j < len(dist) && dist[j].Age <= end {
			j++
		}
		endAge := end
		buckets = append(buckets, newBucket(dist[i:j], start, &endAge))
		i = j
		start = end + 1
	}
	return buckets
}

func newBucket(entries []domain.DeathProbability, start int, end *int) domain.DeathAgeBucket {
	mass, weighted := 0.0, 0.0
	for _, e := range entries {
		mass += e.Probability
		weighted += e.Probability * (float64(e.Age) + 0.5)
	}

	var expected float64
	switch {
	case mass > 0:
		expected = weighted / mass
	case end != nil:
		expected = float64(start+*end+1) / 2
	default:
		expected = float64(start) + 0.5
	}
	if end == nil {
		expected = math.Min(expected, float64(start)+openBucketExpectedCap)
	}

	return domain.DeathAgeBucket{
		Label:           bucketLabel(start, end),
		StartAge:        start,
		EndAgeInclusive: end,
		Probability:     mass,
		ExpectedAge:     domain.Months(int(math.Round(expected * 12))),
	}
}

func bucketLabel(start int, end *int) string {
	switch {
	case end == nil:
		return fmt.Sprintf("%d+", start)
	case *end == start:
		return fmt.Sprintf("%d", start)
	default:
		return fmt.Sprintf("%d-%d", start, *end)
	}
}
