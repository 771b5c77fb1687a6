// Package optimizer searches for the filing ages that maximize a
// household's lifetime (optionally discounted) Social Security benefits.
package optimizer

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/rgehrsitz/ssopt/internal/calculation"
	"github.com/rgehrsitz/ssopt/internal/domain"
)

// ConfigVersion is the Config layout this package understands.
const ConfigVersion = 1

const (
	DefaultMinFinalAge = 62
	DefaultMaxFinalAge = 110
)

// Bounds narrows the filing ages searched for one recipient. Zero fields
// mean the full range from the earliest filing month through 70y0m.
type Bounds struct {
	Min domain.MonthDuration
	Max domain.MonthDuration
}

// Config describes one grid run. Build it once, Validate it, and treat it as
// read-only afterwards; workers receive copies of the values they need.
type Config struct {
	Version      int
	Recipients   []*calculation.Recipient
	CurrentDate  domain.MonthDate
	DiscountRate float64
	MinFinalAge  int
	MaxFinalAge  int
	// Bounds is optional; when set it has one entry per recipient.
	Bounds  []Bounds
	Workers int
	// MonotonicShortcut reuses an age-70 filing pair for longer lifespans
	// instead of searching again.
	MonotonicShortcut bool
}

// NewConfig returns a Config with defaults for the given recipients.
func NewConfig(recipients []*calculation.Recipient, current domain.MonthDate, rate float64) Config {
	return Config{
		Version:      ConfigVersion,
		Recipients:   recipients,
		CurrentDate:  current,
		DiscountRate: rate,
		MinFinalAge:  DefaultMinFinalAge,
		MaxFinalAge:  DefaultMaxFinalAge,
		Workers:      runtime.NumCPU(),
	}
}

// Validate checks the config once at the boundary.
func (c Config) Validate() error {
	if c.Version != ConfigVersion {
		return fmt.Errorf("unsupported optimizer config version %d (want %d)", c.Version, ConfigVersion)
	}
	if len(c.Recipients) != 2 {
		return fmt.Errorf("grid search needs exactly 2 recipients, got %d", len(c.Recipients))
	}
	for i, r := range c.Recipients {
		if r == nil {
			return fmt.Errorf("recipient %d is nil", i)
		}
	}
	if c.MinFinalAge < 0 || c.MaxFinalAge < c.MinFinalAge {
		return fmt.Errorf("invalid final age range [%d, %d]", c.MinFinalAge, c.MaxFinalAge)
	}
	if c.DiscountRate < 0 || c.DiscountRate >= 1 {
		return fmt.Errorf("discount rate must be in [0, 1), got %g", c.DiscountRate)
	}
	if c.Bounds != nil && len(c.Bounds) != len(c.Recipients) {
		return errors.New("bounds must have one entry per recipient")
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must not be negative, got %d", c.Workers)
	}
	return nil
}

// Width is the number of final ages per recipient.
func (c Config) Width() int {
	return c.MaxFinalAge - c.MinFinalAge + 1
}

func (c Config) bounds(i int) Bounds {
	if c.Bounds == nil {
		return Bounds{}
	}
	return c.Bounds[i]
}

// FinalDate is the last month benefits are paid to someone who lives to
// finalAge: the month they reach it.
func FinalDate(r *calculation.Recipient, finalAge domain.MonthDuration) domain.MonthDate {
	return r.Birthdate().DateAtSSAAge(finalAge)
}
