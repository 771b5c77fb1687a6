package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// HouseholdFileVersion is the household file schema version this build reads.
const HouseholdFileVersion = 1

// Household is the on-disk description of one or two benefit recipients and
// how their filing strategy should be searched.
type Household struct {
	Version    int              `yaml:"version" json:"version"`
	Recipients []RecipientInput `yaml:"recipients" json:"recipients"`
	Strategy   StrategyInput    `yaml:"strategy" json:"strategy"`
}

// RecipientInput describes one recipient. Exactly one of PIA or Earnings is set.
type RecipientInput struct {
	Name      string    `yaml:"name" json:"name"`
	BirthDate time.Time `yaml:"birth_date" json:"birth_date"`
	Gender    string    `yaml:"gender,omitempty" json:"gender,omitempty"`

	// PIA overrides the earnings-derived Primary Insurance Amount.
	PIA      *decimal.Decimal `yaml:"pia,omitempty" json:"pia,omitempty"`
	Earnings []EarningInput   `yaml:"earnings,omitempty" json:"earnings,omitempty"`

	// HealthMultiplier scales mortality rates; 1.0 is average health.
	HealthMultiplier *decimal.Decimal `yaml:"health_multiplier,omitempty" json:"health_multiplier,omitempty"`
}

// EarningInput is one year of an earnings history as written in a household file.
type EarningInput struct {
	Year                  int             `yaml:"year" json:"year"`
	TaxedEarnings         decimal.Decimal `yaml:"taxed_earnings" json:"taxed_earnings"`
	TaxedMedicareEarnings decimal.Decimal `yaml:"taxed_medicare_earnings,omitempty" json:"taxed_medicare_earnings,omitempty"`
	Incomplete            bool            `yaml:"incomplete,omitempty" json:"incomplete,omitempty"`
}

// StrategyInput holds search parameters.
type StrategyInput struct {
	// CurrentDate is the month discounting starts from ("2006-01"). Empty means now.
	CurrentDate string `yaml:"current_date,omitempty" json:"current_date,omitempty"`
	// DiscountRate is an annual real rate such as 0.025. Nil means fetch it.
	DiscountRate *decimal.Decimal `yaml:"discount_rate,omitempty" json:"discount_rate,omitempty"`
	// FinalAges are the ages each recipient is assumed to live to for a single strategy search.
	FinalAges []int `yaml:"final_ages,omitempty" json:"final_ages,omitempty"`

	MinFinalAge       int  `yaml:"min_final_age,omitempty" json:"min_final_age,omitempty"`
	MaxFinalAge       int  `yaml:"max_final_age,omitempty" json:"max_final_age,omitempty"`
	BucketYears       int  `yaml:"bucket_years,omitempty" json:"bucket_years,omitempty"`
	MonotonicShortcut bool `yaml:"monotonic_shortcut,omitempty" json:"monotonic_shortcut,omitempty"`
}
