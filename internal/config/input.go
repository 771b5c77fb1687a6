package config

import (
	"fmt"
	"os"

	"github.com/rgehrsitz/ssopt/internal/domain"
	"github.com/rgehrsitz/ssopt/internal/mortality"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

const (
	minFinalAge     = 62
	maxFinalAge     = mortality.MaxAge
	maxBucketYears  = 10
	maxRecipients   = 2
	maxEarningsYear = 2200
)

// InputParser handles parsing of household files
type InputParser struct{}

// NewInputParser creates a new input parser
func NewInputParser() *InputParser {
	return &InputParser{}
}

// LoadFromFile loads a household from a YAML (or JSON) file
func (ip *InputParser) LoadFromFile(filename string) (*domain.Household, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", filename, err)
	}
	return ip.Parse(data)
}

// Parse decodes and validates a household document.
func (ip *InputParser) Parse(data []byte) (*domain.Household, error) {
	var household domain.Household
	if err := yaml.Unmarshal(data, &household); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := ip.ValidateHousehold(&household); err != nil {
		return nil, fmt.Errorf("household validation failed: %w", err)
	}

	return &household, nil
}

// ValidateHousehold validates a loaded household. The first problem found is returned.
func (ip *InputParser) ValidateHousehold(h *domain.Household) error {
	if h.Version == 0 {
		h.Version = domain.HouseholdFileVersion
	}
	if h.Version != domain.HouseholdFileVersion {
		return fmt.Errorf("unsupported household version %d", h.Version)
	}

	if len(h.Recipients) == 0 {
		return fmt.Errorf("at least one recipient is required")
	}
	if len(h.Recipients) > maxRecipients {
		return fmt.Errorf("at most %d recipients are supported, got %d", maxRecipients, len(h.Recipients))
	}
	for i := range h.Recipients {
		r := &h.Recipients[i]
		if err := ip.validateRecipient(r); err != nil {
			return fmt.Errorf("recipient %d (%s) validation failed: %w", i, r.Name, err)
		}
	}

	if err := ip.validateStrategy(&h.Strategy, len(h.Recipients)); err != nil {
		return fmt.Errorf("strategy validation failed: %w", err)
	}
	return nil
}

// validateRecipient validates a single recipient
func (ip *InputParser) validateRecipient(r *domain.RecipientInput) error {
	if r.Name == "" {
		return fmt.Errorf("name is required")
	}
	if r.BirthDate.IsZero() {
		return fmt.Errorf("birth date is required")
	}
	if _, err := domain.NewBirthdate(r.BirthDate.Year(), int(r.BirthDate.Month())-1, r.BirthDate.Day()); err != nil {
		return err
	}
	if _, err := domain.ParseGender(r.Gender); err != nil {
		return err
	}

	// Exactly one PIA source.
	switch {
	case r.PIA != nil && len(r.Earnings) > 0:
		return fmt.Errorf("pia and earnings are mutually exclusive")
	case r.PIA == nil && len(r.Earnings) == 0:
		return fmt.Errorf("either pia or earnings is required")
	case r.PIA != nil && r.PIA.IsNegative():
		return fmt.Errorf("pia cannot be negative")
	}

	seen := make(map[int]bool, len(r.Earnings))
	for _, e := range r.Earnings {
		if e.Year < domain.MinEarningsYear || e.Year > maxEarningsYear {
			return fmt.Errorf("earnings year %d is out of range", e.Year)
		}
		if e.Year < r.BirthDate.Year() {
			return fmt.Errorf("earnings year %d is before birth", e.Year)
		}
		if seen[e.Year] {
			return fmt.Errorf("earnings year %d appears more than once", e.Year)
		}
		seen[e.Year] = true
		if e.TaxedEarnings.IsNegative() || e.TaxedMedicareEarnings.IsNegative() {
			return fmt.Errorf("earnings for %d cannot be negative", e.Year)
		}
	}

	if r.HealthMultiplier != nil && !r.HealthMultiplier.IsPositive() {
		return fmt.Errorf("health multiplier must be positive")
	}
	return nil
}

// validateStrategy validates search parameters
func (ip *InputParser) validateStrategy(s *domain.StrategyInput, recipients int) error {
	if s.CurrentDate != "" {
		if _, err := domain.ParseMonthDate(s.CurrentDate); err != nil {
			return fmt.Errorf("current date: %w", err)
		}
	}
	if s.DiscountRate != nil {
		if s.DiscountRate.IsNegative() || s.DiscountRate.GreaterThanOrEqual(decimal.NewFromInt(1)) {
			return fmt.Errorf("discount rate must be in [0, 1), got %s", s.DiscountRate)
		}
	}

	if len(s.FinalAges) > 0 && len(s.FinalAges) != recipients {
		return fmt.Errorf("final ages must have one entry per recipient")
	}
	for _, a := range s.FinalAges {
		if a < minFinalAge || a > maxFinalAge {
			return fmt.Errorf("final age %d must be between %d and %d", a, minFinalAge, maxFinalAge)
		}
	}

	if s.MinFinalAge != 0 && (s.MinFinalAge < minFinalAge || s.MinFinalAge > maxFinalAge) {
		return fmt.Errorf("min final age %d must be between %d and %d", s.MinFinalAge, minFinalAge, maxFinalAge)
	}
	if s.MaxFinalAge != 0 && (s.MaxFinalAge < minFinalAge || s.MaxFinalAge > maxFinalAge) {
		return fmt.Errorf("max final age %d must be between %d and %d", s.MaxFinalAge, minFinalAge, maxFinalAge)
	}
	if s.MinFinalAge != 0 && s.MaxFinalAge != 0 && s.MinFinalAge > s.MaxFinalAge {
		return fmt.Errorf("min final age cannot exceed max final age")
	}

	if s.BucketYears < 0 || s.BucketYears > maxBucketYears {
		return fmt.Errorf("bucket years must be between 0 and %d", maxBucketYears)
	}
	return nil
}
