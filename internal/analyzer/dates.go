package analyzer

import (
	"math"
	"time"
)

const (
	// obsolescenceYears is the reporting window for negative items, measured from DOFD
	obsolescenceYears = 7

	// bankruptcyObsolescenceYears is the reporting window for bankruptcies
	bankruptcyObsolescenceYears = 10

	// veryOldAccountMonths marks accounts whose removal hurts average age
	veryOldAccountMonths = 120

	// oldLateMonths is the age above which a late mark is a goodwill candidate
	oldLateMonths = 60
)

// MonthsBetween counts calendar months from from to to, ignoring the day of month
func MonthsBetween(from, to time.Time) int {
	return (to.Year()-from.Year())*12 + int(to.Month()) - int(from.Month())
}

// OlderThanYears reports whether t lies strictly before asOf minus years
func OlderThanYears(t, asOf time.Time, years int) bool {
	return t.Before(yearsBefore(asOf, years))
}

// yearsBefore subtracts whole years, clamping Feb 29 to Feb 28 in
// non-leap target years instead of rolling over to Mar 1
func yearsBefore(asOf time.Time, years int) time.Time {
	year := asOf.Year() - years
	day := asOf.Day()
	if last := daysIn(asOf.Month(), year); day > last {
		day = last
	}
	return time.Date(year, asOf.Month(), day,
		asOf.Hour(), asOf.Minute(), asOf.Second(), asOf.Nanosecond(), asOf.Location())
}

func daysIn(month time.Month, year int) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// YearsSince returns the elapsed time in 365-day years
func YearsSince(t, asOf time.Time) float64 {
	days := math.Floor(asOf.Sub(t).Hours() / 24)
	return days / 365
}

func formatDate(t time.Time) string {
	return t.Format(time.DateOnly)
}
