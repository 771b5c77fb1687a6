package ssadata

import "github.com/rgehrsitz/ssopt/internal/domain"

// NormalRetirementAge returns the full retirement age for an SSA birth year.
func NormalRetirementAge(ssaBirthYear int) domain.MonthDuration {
	switch {
	case ssaBirthYear <= 1937:
		return domain.YearsMonths(65, 0)
	case ssaBirthYear <= 1942:
		// Two months per year of birth after 1937.
		return domain.YearsMonths(65, 2*(ssaBirthYear-1937))
	case ssaBirthYear <= 1954:
		return domain.YearsMonths(66, 0)
	case ssaBirthYear <= 1959:
		return domain.YearsMonths(66, 2*(ssaBirthYear-1954))
	default:
		return domain.YearsMonths(67, 0)
	}
}

// DelayedIncreaseAnnualBasisPoints returns the yearly delayed retirement
// credit for an SSA birth year in basis points (8% is 800).
func DelayedIncreaseAnnualBasisPoints(ssaBirthYear int) int {
	switch {
	case ssaBirthYear < 1933:
		return 500
	case ssaBirthYear <= 1934:
		return 550
	case ssaBirthYear <= 1936:
		return 600
	case ssaBirthYear <= 1938:
		return 650
	case ssaBirthYear <= 1940:
		return 700
	case ssaBirthYear <= 1942:
		return 750
	default:
		return 800
	}
}
