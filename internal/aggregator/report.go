package aggregator

import (
	"fmt"

	"github.com/j-veylop/accidents-dashboard-tui/internal/logger"
	"github.com/j-veylop/accidents-dashboard-tui/internal/models"
)

// DefaultTopN is the ranking length used when Options.TopN is unset.
const DefaultTopN = 10

// Options controls BuildReport.
type Options struct {
	TopN              int
	Granularity       models.Granularity
	CorrelationFields []models.Field
}

// DefaultOptions returns monthly buckets, ten ranked rows and a correlation
// over every numeric field.
func DefaultOptions() Options {
	return Options{
		TopN:              DefaultTopN,
		Granularity:       models.GranularityMonth,
		CorrelationFields: models.NumericFields,
	}
}

// BuildReport runs the full pipeline for one state selection. An empty
// selection is not an error: the report comes back with NoData set and
// every view empty.
func BuildReport(dataset *models.Dataset, filter models.StateFilter, opts Options) (*models.StateReport, error) {
	if dataset.Empty() {
		return nil, ErrEmptyDataset
	}
	if opts.TopN <= 0 {
		opts.TopN = DefaultTopN
	}
	if len(opts.CorrelationFields) == 0 {
		opts.CorrelationFields = models.NumericFields
	}

	accidents, municipalities := FilterByState(dataset.Accidents, dataset.Municipalities, filter)

	report := &models.StateReport{
		Filter:      filter,
		Granularity: opts.Granularity,
		TopN:        opts.TopN,
		Accidents:   accidents,
	}
	for i := range accidents {
		if !accidents[i].HasCoordinates {
			report.Quality.NullCoordinates++
		}
	}

	if len(accidents) == 0 {
		report.NoData = true
		logger.Debug("no accidents for state", "state", filter.String())
		return report, nil
	}
	report.TotalAccidents = len(accidents)

	counts := CountByMunicipality(accidents)

	left := JoinWithMunicipalityInfo(counts, municipalities, JoinLeft)
	report.Quality.UnmatchedCodes = left.Unmatched
	report.Quality.UnmatchedAccidents = left.UnmatchedAccidents
	report.Quality.DuplicateMunicipalities = left.Duplicates
	if err := left.Err(); err != nil {
		logger.Warn("accidents without municipality metadata", "state", filter.String(), "error", err)
	}

	byPopulation, err := ComputeRate(left.Stats, models.FieldAccidents, models.FieldPopulation, DefaultScale)
	if err != nil {
		return nil, fmt.Errorf("failed to compute population rate: %w", err)
	}
	byFleet, err := ComputeRate(left.Stats, models.FieldAccidents, models.FieldFleet, DefaultScale)
	if err != nil {
		return nil, fmt.Errorf("failed to compute fleet rate: %w", err)
	}
	report.Quality.PopulationSkipped = byPopulation.Skipped
	report.Quality.FleetSkipped = byFleet.Skipped

	popRate := make(map[string]float64, len(byPopulation.Stats))
	for _, s := range byPopulation.Stats {
		popRate[s.Code] = s.PerThousandPopulation
	}
	fleetRate := make(map[string]float64, len(byFleet.Stats))
	for _, s := range byFleet.Stats {
		fleetRate[s.Code] = s.PerThousandVehicles
	}

	// Listing uses inner-join rows carrying whichever rates are defined.
	inner := JoinWithMunicipalityInfo(counts, municipalities, JoinInner)
	withRates := make([]models.MunicipalityStat, len(inner.Stats))
	for i, s := range inner.Stats {
		s.PerThousandPopulation = popRate[s.Code]
		s.PerThousandVehicles = fleetRate[s.Code]
		withRates[i] = s
	}
	report.Listing, err = TopN(withRates, models.FieldAccidents, len(withRates), true)
	if err != nil {
		return nil, fmt.Errorf("failed to sort listing: %w", err)
	}

	if report.TopByAccidents, err = TopN(report.Listing, models.FieldAccidents, opts.TopN, true); err != nil {
		return nil, fmt.Errorf("failed to rank by accidents: %w", err)
	}
	if report.TopPerPopulation, err = TopN(byPopulation.Stats, models.FieldPerThousandPopulation, opts.TopN, true); err != nil {
		return nil, fmt.Errorf("failed to rank by population rate: %w", err)
	}
	if report.TopPerVehicles, err = TopN(byFleet.Stats, models.FieldPerThousandVehicles, opts.TopN, true); err != nil {
		return nil, fmt.Errorf("failed to rank by fleet rate: %w", err)
	}

	periods, err := BucketByPeriod(accidents, opts.Granularity)
	if err != nil {
		return nil, fmt.Errorf("failed to bucket by period: %w", err)
	}
	report.Periods = periods.Periods
	report.Quality.PeriodDropped = periods.Dropped

	weekly := BucketByWeekdayHour(accidents)
	report.WeekdayHour = weekly.Matrix
	report.Quality.HourDropped = weekly.Dropped

	// Correlation runs over rows where both rates are defined.
	both := make([]models.MunicipalityStat, 0, len(byPopulation.Stats))
	for _, s := range byPopulation.Stats {
		if r, ok := fleetRate[s.Code]; ok {
			s.PerThousandVehicles = r
			both = append(both, s)
		}
	}
	report.Correlation, err = CorrelationMatrix(both, opts.CorrelationFields)
	if err != nil {
		return nil, fmt.Errorf("failed to compute correlation: %w", err)
	}

	logger.Debug("report built",
		"state", filter.String(),
		"accidents", report.TotalAccidents,
		"municipalities", len(report.Listing),
		"unmatched", report.Quality.UnmatchedCodes)

	return report, nil
}
