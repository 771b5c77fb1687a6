package domain

import (
	"fmt"
	"strings"
)

// Gender selects the life table used for a recipient.
type Gender string

const (
	GenderMale    Gender = "male"
	GenderFemale  Gender = "female"
	GenderBlended Gender = "blended"
)

// ParseGender accepts male, female or blended in any case.
func ParseGender(s string) (Gender, error) {
	switch g := Gender(strings.ToLower(strings.TrimSpace(s))); g {
	case GenderMale, GenderFemale, GenderBlended:
		return g, nil
	case "":
		return GenderBlended, nil
	default:
		return "", fmt.Errorf("invalid gender %q (want male, female or blended)", s)
	}
}

// DeathProbability is the probability of dying at a given age.
type DeathProbability struct {
	Age         int     `json:"age"`
	Probability float64 `json:"probability"`
}

// DeathAgeBucket groups a range of death ages into one weighted outcome.
type DeathAgeBucket struct {
	Label    string `json:"label"`
	StartAge int    `json:"start_age"`
	// EndAgeInclusive is nil for the open-ended final bucket.
	EndAgeInclusive *int          `json:"end_age_inclusive,omitempty"`
	Probability     float64       `json:"probability"`
	ExpectedAge     MonthDuration `json:"expected_age"`
}

// OpenEnded reports whether the bucket has no upper age.
func (b DeathAgeBucket) OpenEnded() bool {
	return b.EndAgeInclusive == nil
}
