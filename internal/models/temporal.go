package models

import "time"

// Granularity is the period size used by the temporal views.
type Granularity int

const (
	// GranularityMonth buckets accidents by calendar month.
	GranularityMonth Granularity = iota
	// GranularityWeek buckets accidents by ISO week.
	GranularityWeek
)

// String returns the display name for a granularity.
func (g Granularity) String() string {
	switch g {
	case GranularityMonth:
		return "Month"
	case GranularityWeek:
		return "Week"
	default:
		return "Unknown"
	}
}

// Next cycles to the next granularity.
func (g Granularity) Next() Granularity {
	return (g + 1) % 2
}

// ParseGranularity accepts "month" or "week". Anything else returns false.
func ParseGranularity(s string) (Granularity, bool) {
	switch s {
	case "month", "Month", "monthly", "":
		return GranularityMonth, true
	case "week", "Week", "weekly":
		return GranularityWeek, true
	default:
		return GranularityMonth, false
	}
}

// PeriodCount is the number of accidents in one month or week.
type PeriodCount struct {
	Start time.Time
	Label string
	Count int
}

// DayNames lists weekday names in WeekdayHourMatrix row order.
var DayNames = []string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}

// WeekdayHourMatrix counts accidents per weekday (row, Sunday = 0) and
// hour of day (column, 0-23).
type WeekdayHourMatrix [7][24]int

// Total returns the sum of all cells.
func (m *WeekdayHourMatrix) Total() int {
	total := 0
	for d := range m {
		for h := range m[d] {
			total += m[d][h]
		}
	}
	return total
}

// DayTotals returns the per-weekday sums.
func (m *WeekdayHourMatrix) DayTotals() [7]int {
	var totals [7]int
	for d := range m {
		for h := range m[d] {
			totals[d] += m[d][h]
		}
	}
	return totals
}

// HourTotals returns the per-hour sums across all weekdays.
func (m *WeekdayHourMatrix) HourTotals() [24]int {
	var totals [24]int
	for d := range m {
		for h := range m[d] {
			totals[h] += m[d][h]
		}
	}
	return totals
}

// Max returns the largest cell value.
func (m *WeekdayHourMatrix) Max() int {
	peak := 0
	for d := range m {
		for h := range m[d] {
			if m[d][h] > peak {
				peak = m[d][h]
			}
		}
	}
	return peak
}

// PeakHour returns the hour with the most accidents. Ties resolve to the
// earliest hour.
func (m *WeekdayHourMatrix) PeakHour() (hour, count int) {
	totals := m.HourTotals()
	for h, c := range totals {
		if c > count {
			hour, count = h, c
		}
	}
	return hour, count
}

// PeakDay returns the weekday with the most accidents, or "Unknown" when
// the matrix is empty.
func (m *WeekdayHourMatrix) PeakDay() (day string, count int) {
	totals := m.DayTotals()
	day = "Unknown"
	for d, c := range totals {
		if c > count {
			day, count = DayNames[d], c
		}
	}
	return day, count
}
