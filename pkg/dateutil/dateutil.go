package dateutil

import (
	"fmt"
	"time"
)

// MonthKeyLayout is the canonical YYYY-MM format used to index sparse
// per-month overrides (extra payments, one-off expenses).
const MonthKeyLayout = "2006-01"

// MonthKey formats a date as its YYYY-MM key.
func MonthKey(date time.Time) string {
	return date.Format(MonthKeyLayout)
}

// MonthKeyOf builds a YYYY-MM key from a year and month.
func MonthKeyOf(year int, month time.Month) string {
	return fmt.Sprintf("%04d-%02d", year, month)
}

// ParseMonthKey parses a YYYY-MM key into the first day of that month (UTC).
func ParseMonthKey(key string) (time.Time, error) {
	t, err := time.Parse(MonthKeyLayout, key)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid month key %q: %w", key, err)
	}
	return t, nil
}

// MonthStart returns the first day of the month containing date (UTC).
func MonthStart(date time.Time) time.Time {
	return time.Date(date.Year(), date.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// AddMonths advances a date by a number of months.
func AddMonths(date time.Time, months int) time.Time {
	return date.AddDate(0, months, 0)
}

// MonthsBetween returns the number of whole calendar months from one month
// to another, ignoring day-of-month. Negative when to precedes from.
func MonthsBetween(from, to time.Time) int {
	return (to.Year()-from.Year())*12 + int(to.Month()) - int(from.Month())
}

// SameMonth reports whether two dates fall in the same calendar month.
func SameMonth(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month()
}

// Age calculates the age at a given date.
func Age(birthDate, atDate time.Time) int {
	age := atDate.Year() - birthDate.Year()
	if atDate.Month() < birthDate.Month() ||
		(atDate.Month() == birthDate.Month() && atDate.Day() < birthDate.Day()) {
		age--
	}
	return age
}

// IsLeapYear checks if a year is a leap year.
func IsLeapYear(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

// DaysInYear returns the number of days in a given year.
func DaysInYear(year int) int {
	if IsLeapYear(year) {
		return 366
	}
	return 365
}

// BeginningOfYear returns the first day of the year for a given date.
func BeginningOfYear(date time.Time) time.Time {
	return time.Date(date.Year(), 1, 1, 0, 0, 0, 0, date.Location())
}

// EndOfYear returns the last day of the year for a given date.
func EndOfYear(date time.Time) time.Time {
	return time.Date(date.Year(), 12, 31, 23, 59, 59, 999999999, date.Location())
}
