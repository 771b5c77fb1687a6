package domain

import "fmt"

// MinEarningsYear is the first year Social Security taxes were collected.
const MinEarningsYear = 1937

// EarningRecord is one year of taxed wages from a recipient's earnings history.
type EarningRecord struct {
	Year                  int   `json:"year"`
	TaxedEarnings         Money `json:"taxed_earnings"`
	TaxedMedicareEarnings Money `json:"taxed_medicare_earnings"`
	// Incomplete marks a year still in progress (e.g. the current year).
	Incomplete bool `json:"incomplete,omitempty"`
}

// NewEarningRecord validates the year before building a record.
func NewEarningRecord(year int, taxed, medicare Money) (EarningRecord, error) {
	if year < MinEarningsYear {
		return EarningRecord{}, fmt.Errorf("earnings year %d is before %d", year, MinEarningsYear)
	}
	if taxed.IsNegative() || medicare.IsNegative() {
		return EarningRecord{}, fmt.Errorf("earnings for %d must not be negative", year)
	}
	return EarningRecord{Year: year, TaxedEarnings: taxed, TaxedMedicareEarnings: medicare}, nil
}

// BenefitType identifies the entitlement a benefit period is paid under.
type BenefitType int

const (
	BenefitPersonal BenefitType = iota
	BenefitSpousal
	BenefitSurvivor
)

func (t BenefitType) String() string {
	switch t {
	case BenefitPersonal:
		return "personal"
	case BenefitSpousal:
		return "spousal"
	case BenefitSurvivor:
		return "survivor"
	default:
		return fmt.Sprintf("BenefitType(%d)", int(t))
	}
}

func (t BenefitType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// BenefitPeriod is a contiguous run of months paying the same monthly amount.
// Start and End are both inclusive.
type BenefitPeriod struct {
	Start          MonthDate   `json:"start"`
	End            MonthDate   `json:"end"`
	Amount         Money       `json:"amount"`
	RecipientIndex int         `json:"recipient_index"`
	Type           BenefitType `json:"type"`
}

// Months returns the number of months covered, zero for an empty period.
func (p BenefitPeriod) Months() int {
	if p.End < p.Start {
		return 0
	}
	return int(p.End-p.Start) + 1
}

// Total returns Amount multiplied by the number of months.
func (p BenefitPeriod) Total() Money {
	return p.Amount.Times(int64(p.Months()))
}
