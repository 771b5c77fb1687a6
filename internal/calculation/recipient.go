package calculation

import (
	"github.com/rgehrsitz/ssopt/internal/domain"
	"github.com/rgehrsitz/ssopt/internal/ssadata"
)

// Reduction rates are expressed in 1/3600ths so every rate is an integer:
// 5/9% = 20/3600, 25/36% = 25/3600, 5/12% = 15/3600.
const (
	reductionDenominator     = 3600
	personalReductionFirst36 = 20
	spousalReductionFirst36  = 25
	reductionBeyond36        = 15
	reductionTierMonths      = 36
	delayedCreditDenominator = 12 * 10000
)

// Recipient is one benefit claimant. Set the PIA source before sharing a
// Recipient between goroutines; after that it is read-only.
type Recipient struct {
	Name             string
	Index            int
	Gender           domain.Gender
	HealthMultiplier float64

	birthdate      domain.Birthdate
	tables         ssadata.Source
	earnings       []domain.EarningRecord
	overridePIA    bool
	evaluationYear int

	pia        domain.Money
	nra        domain.MonthDuration
	delayedBps int64
}

// NewRecipient creates a recipient with a zero PIA. A nil tables uses ssadata.Default().
func NewRecipient(name string, birthdate domain.Birthdate, tables ssadata.Source) *Recipient {
	if tables == nil {
		tables = ssadata.Default()
	}
	ssaYear := birthdate.SSABirthYear()
	return &Recipient{
		Name:             name,
		Gender:           domain.GenderBlended,
		HealthMultiplier: 1,
		birthdate:        birthdate,
		tables:           tables,
		nra:              ssadata.NormalRetirementAge(ssaYear),
		delayedBps:       int64(ssadata.DelayedIncreaseAnnualBasisPoints(ssaYear)),
	}
}

// NewRecipientWithPIA is NewRecipient followed by SetOverridePIA.
func NewRecipientWithPIA(name string, birthdate domain.Birthdate, pia domain.Money) *Recipient {
	r := NewRecipient(name, birthdate, nil)
	r.SetOverridePIA(pia)
	return r
}

// SetOverridePIA replaces any earnings-derived PIA with pia.
func (r *Recipient) SetOverridePIA(pia domain.Money) {
	r.overridePIA = true
	r.earnings = nil
	r.pia = pia
}

// SetEarnings derives the PIA from records, with COLAs applied through
// evaluationYear. It clears any override.
func (r *Recipient) SetEarnings(records []domain.EarningRecord, evaluationYear int) {
	r.overridePIA = false
	r.earnings = append([]domain.EarningRecord(nil), records...)
	r.evaluationYear = evaluationYear
	r.pia = r.PIACalculator().PrimaryInsuranceAmountForYear(evaluationYear)
}

// PIACalculator exposes the earnings-based calculation for reporting.
func (r *Recipient) PIACalculator() *PIACalculator {
	return NewPIACalculator(r.tables, r.birthdate, r.earnings)
}

func (r *Recipient) Birthdate() domain.Birthdate               { return r.birthdate }
func (r *Recipient) PIA() domain.Money                         { return r.pia }
func (r *Recipient) HasOverridePIA() bool                      { return r.overridePIA }
func (r *Recipient) Earnings() []domain.EarningRecord          { return r.earnings }
func (r *Recipient) EvaluationYear() int                       { return r.evaluationYear }
func (r *Recipient) NormalRetirementAge() domain.MonthDuration { return r.nra }

// NormalRetirementDate is the month the recipient reaches full retirement age.
func (r *Recipient) NormalRetirementDate() domain.MonthDate {
	return r.birthdate.DateAtSSAAge(r.nra)
}

// DelayedIncreaseAnnualBasisPoints is the yearly delayed retirement credit.
func (r *Recipient) DelayedIncreaseAnnualBasisPoints() int {
	return int(r.delayedBps)
}

// BenefitAtAge is the monthly personal benefit for filing at age, floored to
// the dollar. Ages outside [62y0m, 70y0m] are clamped.
func (r *Recipient) BenefitAtAge(age domain.MonthDuration) domain.Money {
	age = clampAge(age)
	switch {
	case age < r.nra:
		months := int64(r.nra - age)
		reduction := tieredReduction(months, personalReductionFirst36)
		return r.pia.TimesRatio(reductionDenominator-reduction, reductionDenominator).RoundToDollar()
	case age > r.nra:
		months := int64(age - r.nra)
		return r.pia.TimesRatio(delayedCreditDenominator+r.delayedBps*months, delayedCreditDenominator).RoundToDollar()
	default:
		return r.pia.RoundToDollar()
	}
}

// BenefitOnDate is the personal benefit paid for month at when filing at
// filing. Delayed credits earned in the calendar year of filing are only
// added the following January, so a post-NRA claim pays the credits earned
// through the start of the filing year (or NRA) until then. Filing at 70
// receives all credits immediately.
func (r *Recipient) BenefitOnDate(filing, at domain.MonthDate) domain.Money {
	if at < filing {
		return domain.Money{}
	}
	ageAtFiling := r.birthdate.AgeAtSSADate(filing)
	if ageAtFiling > r.nra && ageAtFiling < domain.FilingAgeCeiling && at.Year() == filing.Year() {
		creditDate := domain.MaxMonthDate(filing.JanuaryOf(), r.NormalRetirementDate())
		return r.BenefitAtAge(r.birthdate.AgeAtSSADate(creditDate))
	}
	return r.BenefitAtAge(ageAtFiling)
}

// EligibleForSpousal reports whether r's own PIA is under half of spouse's.
func (r *Recipient) EligibleForSpousal(spouse *Recipient) bool {
	return r.pia.Times(2).LessThan(spouse.pia)
}

// SpousalBenefitAtStart is the monthly spousal benefit when spousal
// payments begin at start: half the spouse's PIA less r's own PIA, reduced
// for each month start precedes r's NRA, floored to the dollar.
func (r *Recipient) SpousalBenefitAtStart(spouse *Recipient, start domain.MonthDate) domain.Money {
	if !r.EligibleForSpousal(spouse) {
		return domain.Money{}
	}
	base := spouse.pia.TimesRatio(1, 2).Minus(r.pia)
	if !base.GreaterThan(domain.Money{}) {
		return domain.Money{}
	}
	age := clampAge(r.birthdate.AgeAtSSADate(start))
	if age < r.nra {
		reduction := tieredReduction(int64(r.nra-age), spousalReductionFirst36)
		base = base.TimesRatio(reductionDenominator-reduction, reductionDenominator)
	}
	return base.RoundToDollar()
}

// SpousalStartDate is the first month a spousal benefit can be paid: both
// spouses must have filed.
func SpousalStartDate(spouseFiling, filing domain.MonthDate) domain.MonthDate {
	return domain.MaxMonthDate(spouseFiling, filing)
}

// SpousalBenefitOnDate is the spousal benefit r receives for month at.
func (r *Recipient) SpousalBenefitOnDate(spouse *Recipient, spouseFiling, filing, at domain.MonthDate) domain.Money {
	start := SpousalStartDate(spouseFiling, filing)
	if at < start {
		return domain.Money{}
	}
	return r.SpousalBenefitAtStart(spouse, start)
}

// SurvivorStartDate is the first month r could receive a survivor benefit:
// the month after the deceased's final benefit month, or r's own filing
// month if that is later.
func (r *Recipient) SurvivorStartDate(deceasedFinal, filing domain.MonthDate) domain.MonthDate {
	return domain.MaxMonthDate(deceasedFinal.AddMonths(1), filing)
}

// SurvivorBenefitOnDate is not implemented and always returns zero. Callers
// still use SurvivorStartDate to stop spousal payments at the spouse's death.
//
// TODO: survivor amount is the greater of the deceased's benefit and 82.5% of
// their PIA, less r's own benefit, reduced for ages between 60 and survivor NRA.
func (r *Recipient) SurvivorBenefitOnDate(deceased *Recipient, deceasedFiling, deceasedFinal, filing, at domain.MonthDate) domain.Money {
	return domain.Money{}
}

// tieredReduction returns the reduction, in 1/3600ths, for filing months
// early: firstRate per month for the first 36 months, 15 per month beyond.
func tieredReduction(months, firstRate int64) int64 {
	if months <= reductionTierMonths {
		return firstRate * months
	}
	return firstRate*reductionTierMonths + reductionBeyond36*(months-reductionTierMonths)
}

func clampAge(age domain.MonthDuration) domain.MonthDuration {
	if age < domain.FilingAgeFloor {
		return domain.FilingAgeFloor
	}
	if age > domain.FilingAgeCeiling {
		return domain.FilingAgeCeiling
	}
	return age
}
