package analyzer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMonthsBetween(t *testing.T) {
	asOf := time.Date(2025, time.June, 15, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		name string
		from time.Time
		want int
	}{
		{"same month", time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC), 0},
		{"day of month ignored", time.Date(2025, time.May, 31, 0, 0, 0, 0, time.UTC), 1},
		{"across year", time.Date(2024, time.December, 1, 0, 0, 0, 0, time.UTC), 6},
		{"twelve years", time.Date(2013, time.June, 15, 0, 0, 0, 0, time.UTC), 144},
		{"future", time.Date(2025, time.August, 1, 0, 0, 0, 0, time.UTC), -2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MonthsBetween(tt.from, asOf))
		})
	}
}

func TestOlderThanYears(t *testing.T) {
	asOf := time.Date(2025, time.June, 15, 0, 0, 0, 0, time.UTC)

	assert.True(t, OlderThanYears(time.Date(2018, time.June, 14, 0, 0, 0, 0, time.UTC), asOf, 7))
	assert.False(t, OlderThanYears(time.Date(2018, time.June, 15, 0, 0, 0, 0, time.UTC), asOf, 7))
	assert.False(t, OlderThanYears(time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC), asOf, 7))
}

func TestOlderThanYearsFromLeapDay(t *testing.T) {
	asOf := time.Date(2024, time.February, 29, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, time.Date(2017, time.February, 28, 0, 0, 0, 0, time.UTC), yearsBefore(asOf, 7))
	assert.Equal(t, time.Date(2020, time.February, 29, 0, 0, 0, 0, time.UTC), yearsBefore(asOf, 4))
	assert.False(t, OlderThanYears(time.Date(2017, time.February, 28, 0, 0, 0, 0, time.UTC), asOf, 7))
	assert.True(t, OlderThanYears(time.Date(2017, time.February, 27, 0, 0, 0, 0, time.UTC), asOf, 7))
	assert.False(t, OlderThanYears(time.Date(2017, time.March, 1, 0, 0, 0, 0, time.UTC), asOf, 7))
}

func TestYearsSince(t *testing.T) {
	asOf := time.Date(2025, time.June, 15, 0, 0, 0, 0, time.UTC)

	assert.InDelta(t, 0.0, YearsSince(asOf, asOf), 1e-9)
	assert.InDelta(t, 1.0, YearsSince(asOf.AddDate(0, 0, -365), asOf), 1e-9)
	assert.Greater(t, YearsSince(time.Date(2014, time.June, 1, 0, 0, 0, 0, time.UTC), asOf), 11.0)
}
