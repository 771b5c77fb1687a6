package domain

import (
	"fmt"
	"time"
)

// MonthDate is an absolute calendar month counted from January of year 0.
type MonthDate int

// MonthDuration is a signed span of whole months.
type MonthDuration int

var monthNames = [12]string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

// MonthDateFromYM returns the month for a year and zero-based month index.
// Callers validating untrusted input should use NewMonthDate.
func MonthDateFromYM(year, monthIndex int) MonthDate {
	return MonthDate(year*12 + monthIndex)
}

// NewMonthDate validates year and monthIndex before building a MonthDate.
func NewMonthDate(year, monthIndex int) (MonthDate, error) {
	if year < 0 {
		return 0, fmt.Errorf("year must be non-negative, got %d", year)
	}
	if monthIndex < 0 || monthIndex > 11 {
		return 0, fmt.Errorf("month index must be in [0, 11], got %d", monthIndex)
	}
	return MonthDateFromYM(year, monthIndex), nil
}

// MonthDateFromMonths wraps a months-since-epoch count.
func MonthDateFromMonths(months int) MonthDate {
	return MonthDate(months)
}

// MonthDateFromTime truncates t to its calendar month.
func MonthDateFromTime(t time.Time) MonthDate {
	return MonthDateFromYM(t.Year(), int(t.Month())-1)
}

// ParseMonthDate parses "2006-01" style strings.
func ParseMonthDate(s string) (MonthDate, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return 0, fmt.Errorf("invalid month %q (want YYYY-MM): %w", s, err)
	}
	return MonthDateFromTime(t), nil
}

func (d MonthDate) MonthsSinceEpoch() int { return int(d) }

func (d MonthDate) Year() int { return floorDiv(int(d), 12) }

// MonthIndex returns the zero-based month, 0 = January.
func (d MonthDate) MonthIndex() int { return floorMod(int(d), 12) }

func (d MonthDate) MonthName() string { return monthNames[d.MonthIndex()] }

func (d MonthDate) MonthFullName() string { return time.Month(d.MonthIndex() + 1).String() }

// Sub returns the signed number of months from o to d.
func (d MonthDate) Sub(o MonthDate) MonthDuration { return MonthDuration(d - o) }

func (d MonthDate) Add(dur MonthDuration) MonthDate { return d + MonthDate(dur) }

func (d MonthDate) SubtractDuration(dur MonthDuration) MonthDate { return d - MonthDate(dur) }

// AddMonths is shorthand for d.Add(Months(n)).
func (d MonthDate) AddMonths(n int) MonthDate { return d + MonthDate(n) }

func (d MonthDate) Before(o MonthDate) bool        { return d < o }
func (d MonthDate) After(o MonthDate) bool         { return d > o }
func (d MonthDate) Equal(o MonthDate) bool         { return d == o }
func (d MonthDate) BeforeOrEqual(o MonthDate) bool { return d <= o }
func (d MonthDate) AfterOrEqual(o MonthDate) bool  { return d >= o }
func (d MonthDate) NotEqual(o MonthDate) bool      { return d != o }

// JanuaryOf returns January of d's year.
func (d MonthDate) JanuaryOf() MonthDate { return MonthDateFromYM(d.Year(), 0) }

// DecemberOf returns December of d's year.
func (d MonthDate) DecemberOf() MonthDate { return MonthDateFromYM(d.Year(), 11) }

// String formats as "Jan 2024".
func (d MonthDate) String() string {
	return fmt.Sprintf("%s %d", d.MonthName(), d.Year())
}

// ISO formats as "2024-01".
func (d MonthDate) ISO() string {
	return fmt.Sprintf("%04d-%02d", d.Year(), d.MonthIndex()+1)
}

func (d MonthDate) MarshalText() ([]byte, error) {
	return []byte(d.ISO()), nil
}

func (d *MonthDate) UnmarshalText(text []byte) error {
	parsed, err := ParseMonthDate(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func MaxMonthDate(a, b MonthDate) MonthDate {
	if a >= b {
		return a
	}
	return b
}

func MinMonthDate(a, b MonthDate) MonthDate {
	if a <= b {
		return a
	}
	return b
}

// Months returns a duration of n months.
func Months(n int) MonthDuration { return MonthDuration(n) }

// YearsMonths builds a duration from years and months. Callers validating
// untrusted input should use NewMonthDuration.
func YearsMonths(years, months int) MonthDuration {
	return MonthDuration(years*12 + months)
}

// NewMonthDuration builds a duration, rejecting years and months of opposite sign.
func NewMonthDuration(years, months int) (MonthDuration, error) {
	if (years < 0 && months > 0) || (years > 0 && months < 0) {
		return 0, fmt.Errorf("years (%d) and months (%d) must have the same sign", years, months)
	}
	return YearsMonths(years, months), nil
}

// ParseMonthDuration parses "67y2m", "67y" or "62y0m".
func ParseMonthDuration(s string) (MonthDuration, error) {
	var years, months int
	if n, err := fmt.Sscanf(s, "%dy%dm", &years, &months); err == nil && n == 2 {
		return NewMonthDuration(years, months)
	}
	if n, err := fmt.Sscanf(s, "%dy", &years); err == nil && n == 1 {
		return YearsMonths(years, 0), nil
	}
	return 0, fmt.Errorf("invalid age %q (want e.g. 67y2m)", s)
}

func (m MonthDuration) AsMonths() int { return int(m) }

// Years returns the whole years in m, floored.
func (m MonthDuration) Years() int { return floorDiv(int(m), 12) }

// ModMonths returns the months remaining after Years(), in [0, 11].
func (m MonthDuration) ModMonths() int { return floorMod(int(m), 12) }

func (m MonthDuration) Add(o MonthDuration) MonthDuration      { return m + o }
func (m MonthDuration) Subtract(o MonthDuration) MonthDuration { return m - o }

func (m MonthDuration) LessThan(o MonthDuration) bool           { return m < o }
func (m MonthDuration) LessThanOrEqual(o MonthDuration) bool    { return m <= o }
func (m MonthDuration) GreaterThan(o MonthDuration) bool        { return m > o }
func (m MonthDuration) GreaterThanOrEqual(o MonthDuration) bool { return m >= o }
func (m MonthDuration) Equal(o MonthDuration) bool              { return m == o }

// Increment advances a loop cursor by one month in place. Keep the cursor
// local to its loop.
func (m *MonthDuration) Increment() { *m++ }

// String formats as "67y2m".
func (m MonthDuration) String() string {
	return fmt.Sprintf("%dy%dm", m.Years(), m.ModMonths())
}

func (m MonthDuration) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

func (m *MonthDuration) UnmarshalText(text []byte) error {
	parsed, err := ParseMonthDuration(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func floorMod(a, b int) int {
	return a - floorDiv(a, b)*b
}
