package domain

import (
	"fmt"
	"time"
)

// Birthdate is a person's lay (calendar) birthdate together with the SSA
// view of it. SSA considers a person to attain an age on the day before the
// anniversary of their birth, so someone born on the 1st of a month is
// treated as born in the previous month.
type Birthdate struct {
	lay time.Time
	ssa time.Time
}

// BirthdateFromYMD builds a Birthdate from a year, a zero-based month index
// and a day of month. Callers validating untrusted input should use NewBirthdate.
func BirthdateFromYMD(year, monthIndex, day int) Birthdate {
	lay := time.Date(year, time.Month(monthIndex+1), day, 0, 0, 0, 0, time.UTC)
	// Subtracting 12 hours instead of a day keeps the arithmetic clear of DST edges.
	ssa := lay.Add(-12 * time.Hour)
	return Birthdate{lay: lay, ssa: ssa}
}

// NewBirthdate validates the calendar date before building a Birthdate.
func NewBirthdate(year, monthIndex, day int) (Birthdate, error) {
	if year < 1800 || year > 2200 {
		return Birthdate{}, fmt.Errorf("birth year %d out of range", year)
	}
	if monthIndex < 0 || monthIndex > 11 {
		return Birthdate{}, fmt.Errorf("month index must be in [0, 11], got %d", monthIndex)
	}
	t := time.Date(year, time.Month(monthIndex+1), day, 0, 0, 0, 0, time.UTC)
	if day < 1 || t.Day() != day {
		return Birthdate{}, fmt.Errorf("invalid day %d for %s %d", day, time.Month(monthIndex+1), year)
	}
	return BirthdateFromYMD(year, monthIndex, day), nil
}

// BirthdateFromTime uses the calendar date of t, ignoring its clock and zone.
func BirthdateFromTime(t time.Time) Birthdate {
	return BirthdateFromYMD(t.Year(), int(t.Month())-1, t.Day())
}

func (b Birthdate) LayBirthYear() int       { return b.lay.Year() }
func (b Birthdate) LayBirthMonth() int      { return int(b.lay.Month()) - 1 }
func (b Birthdate) LayBirthDayOfMonth() int { return b.lay.Day() }

// Time returns the lay birthdate at midnight UTC.
func (b Birthdate) Time() time.Time { return b.lay }

// SSABirthdate returns the month SSA considers the person born in.
func (b Birthdate) SSABirthdate() MonthDate { return MonthDateFromTime(b.ssa) }

func (b Birthdate) SSABirthYear() int  { return b.ssa.Year() }
func (b Birthdate) SSABirthMonth() int { return int(b.ssa.Month()) - 1 }

// IsFirstOfMonth reports whether SSA considers the person to attain each age
// on the first day of a month, i.e. the lay birthdate is the 2nd. Such people
// are eligible for the whole month in which they attain 62.
func (b Birthdate) IsFirstOfMonth() bool { return b.ssa.Day() == 1 }

// DateAtLayAge returns the month in which the person reaches age under the
// lay convention.
func (b Birthdate) DateAtLayAge(age MonthDuration) MonthDate {
	return MonthDateFromTime(b.lay).Add(age)
}

// DateAtSSAAge returns the month in which SSA considers the person to reach age.
func (b Birthdate) DateAtSSAAge(age MonthDuration) MonthDate {
	return b.SSABirthdate().Add(age)
}

func (b Birthdate) YearTurningSSAAge(years int) int {
	return b.SSABirthYear() + years
}

// AgeAtSSADate returns the SSA age at the given month.
func (b Birthdate) AgeAtSSADate(date MonthDate) MonthDuration {
	return date.Sub(b.SSABirthdate())
}

// EarliestFilingMonth is the first month for which retirement benefits can be
// paid: the month SSA age 62 is attained when that happens on the 1st, else
// the month after.
func (b Birthdate) EarliestFilingMonth() MonthDate {
	if b.IsFirstOfMonth() {
		return b.DateAtSSAAge(YearsMonths(62, 0))
	}
	return b.DateAtSSAAge(YearsMonths(62, 1))
}

// EarliestFilingAge is the SSA age at EarliestFilingMonth.
func (b Birthdate) EarliestFilingAge() MonthDuration {
	return b.AgeAtSSADate(b.EarliestFilingMonth())
}

// SSAAgeExample illustrates the date SSA treats as a birthday in a given year.
type SSAAgeExample struct {
	Age   int    `json:"age"`
	Day   int    `json:"day"`
	Month string `json:"month"`
	Year  int    `json:"year"`
}

// ExampleSSAAge illustrates the attained-age rule for year: by the last day
// of the SSA birth month the person is SSA age Age.
func (b Birthdate) ExampleSSAAge(year int) SSAAgeExample {
	first := time.Date(year, b.ssa.Month(), 1, 0, 0, 0, 0, time.UTC)
	return SSAAgeExample{
		Age:   year - b.SSABirthYear(),
		Day:   first.AddDate(0, 1, -1).Day(),
		Month: b.ssa.Month().String(),
		Year:  year,
	}
}

// String formats the lay birthdate as 2006-01-02.
func (b Birthdate) String() string {
	return b.lay.Format("2006-01-02")
}
