package aggregator

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/j-veylop/accidents-dashboard-tui/internal/logger"
	"github.com/j-veylop/accidents-dashboard-tui/internal/models"
)

var dateFormats = []string{
	"2006-01-02",
	"02/01/2006",
	"2006/01/02",
	"02-01-2006",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"02/01/2006 15:04:05",
	"02/01/2006 15:04",
}

var clockFormats = []string{
	"15:04:05",
	"15:04",
	"15h04",
	"3:04 PM",
}

var errEmptyValue = errors.New("empty value")

// parseDate accepts the date layouts used by the RENAEST exports. The
// second result reports whether the value also carried a time of day.
func parseDate(value string) (time.Time, bool, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false, &ParseError{Kind: "date", Value: value, Err: errEmptyValue}
	}
	for _, layout := range dateFormats {
		if t, err := time.Parse(layout, value); err == nil {
			return t, strings.Contains(layout, "15"), nil
		}
	}
	return time.Time{}, false, &ParseError{Kind: "date", Value: value}
}

// parseHour extracts the hour of day from a time string. A bare integer
// is accepted when it falls in 0-23.
func parseHour(value string) (int, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, &ParseError{Kind: "hour", Value: value, Err: errEmptyValue}
	}
	for _, layout := range clockFormats {
		if t, err := time.Parse(layout, value); err == nil {
			return t.Hour(), nil
		}
	}
	h, err := strconv.Atoi(value)
	if err != nil {
		return 0, &ParseError{Kind: "hour", Value: value, Err: err}
	}
	if h < 0 || h > 23 {
		return 0, &ParseError{Kind: "hour", Value: value, Err: fmt.Errorf("hour %d out of range", h)}
	}
	return h, nil
}

// PeriodBuckets is the chronological accident count per period.
type PeriodBuckets struct {
	Granularity models.Granularity
	Periods     []models.PeriodCount

	// Dropped counts rows whose date could not be parsed. Err holds the
	// first such failure.
	Dropped int
	Err     error
}

// Total returns the number of accidents placed in a period.
func (b PeriodBuckets) Total() int {
	total := 0
	for _, p := range b.Periods {
		total += p.Count
	}
	return total
}

// BucketByPeriod counts accidents per calendar month or ISO week. Rows with
// an unparseable date are dropped, counted and logged.
func BucketByPeriod(accidents []models.AccidentRecord, granularity models.Granularity) (PeriodBuckets, error) {
	if granularity != models.GranularityMonth && granularity != models.GranularityWeek {
		return PeriodBuckets{}, fmt.Errorf("unsupported granularity %d", granularity)
	}

	result := PeriodBuckets{Granularity: granularity}
	counts := make(map[time.Time]int)
	for i := range accidents {
		t, _, err := parseDate(accidents[i].Date)
		if err != nil {
			result.Dropped++
			if result.Err == nil {
				result.Err = err
			}
			continue
		}
		counts[periodStart(t, granularity)]++
	}

	starts := make([]time.Time, 0, len(counts))
	for start := range counts {
		starts = append(starts, start)
	}
	slices.SortFunc(starts, func(a, b time.Time) int { return a.Compare(b) })

	result.Periods = make([]models.PeriodCount, 0, len(starts))
	for _, start := range starts {
		result.Periods = append(result.Periods, models.PeriodCount{
			Start: start,
			Label: periodLabel(start, granularity),
			Count: counts[start],
		})
	}

	if result.Dropped > 0 {
		logger.Warn("dropped accidents with unparseable dates",
			"count", result.Dropped,
			"granularity", granularity.String(),
			"first_error", result.Err)
	}

	return result, nil
}

func periodStart(t time.Time, granularity models.Granularity) time.Time {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	if granularity == models.GranularityWeek {
		offset := (int(day.Weekday()) + 6) % 7
		return day.AddDate(0, 0, -offset)
	}
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

func periodLabel(start time.Time, granularity models.Granularity) string {
	if granularity == models.GranularityWeek {
		year, week := start.ISOWeek()
		return fmt.Sprintf("%d-W%02d", year, week)
	}
	return start.Format("2006-01")
}

// WeekdayHourBuckets is the weekday by hour accident matrix.
type WeekdayHourBuckets struct {
	Matrix models.WeekdayHourMatrix

	// Dropped counts rows with an unparseable date or hour. They are
	// never placed in hour 0.
	Dropped int
	Err     error
}

// BucketByWeekdayHour fills a 7x24 matrix with Sunday as row 0. When the
// time column is empty the hour is taken from the date value if it carries
// one.
func BucketByWeekdayHour(accidents []models.AccidentRecord) WeekdayHourBuckets {
	var result WeekdayHourBuckets
	drop := func(err error) {
		result.Dropped++
		if result.Err == nil {
			result.Err = err
		}
	}

	for i := range accidents {
		t, hasClock, err := parseDate(accidents[i].Date)
		if err != nil {
			drop(err)
			continue
		}

		var hour int
		switch {
		case strings.TrimSpace(accidents[i].Time) != "":
			hour, err = parseHour(accidents[i].Time)
		case hasClock:
			hour = t.Hour()
		default:
			err = &ParseError{Kind: "hour", Value: "", Err: errEmptyValue}
		}
		if err != nil {
			drop(err)
			continue
		}

		result.Matrix[int(t.Weekday())][hour]++
	}

	if result.Dropped > 0 {
		logger.Warn("dropped accidents with unparseable weekday or hour",
			"count", result.Dropped,
			"first_error", result.Err)
	}

	return result
}
