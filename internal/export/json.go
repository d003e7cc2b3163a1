package export

import (
	"encoding/json"
	"fmt"
	"io"
	"math"

	"github.com/j-veylop/accidents-dashboard-tui/internal/models"
)

type jsonReport struct {
	State            string          `json:"state"`
	Granularity      string          `json:"granularity"`
	TopN             int             `json:"top_n"`
	NoData           bool            `json:"no_data"`
	TotalAccidents   int             `json:"total_accidents"`
	Municipalities   int             `json:"municipalities"`
	TopByAccidents   []jsonCity      `json:"top_by_accidents"`
	TopPerPopulation []jsonCity      `json:"top_per_1000_population"`
	TopPerVehicles   []jsonCity      `json:"top_per_1000_vehicles"`
	Periods          []jsonPeriod    `json:"periods"`
	WeekdayHour      [7][24]int      `json:"weekday_hour"`
	Correlation      jsonCorrelation `json:"correlation"`
	DataQuality      jsonQuality     `json:"data_quality"`
}

type jsonCity struct {
	Code                  string   `json:"code"`
	Name                  string   `json:"name"`
	State                 string   `json:"state"`
	Accidents             int      `json:"accidents"`
	Population            *int64   `json:"population"`
	Fleet                 *int64   `json:"fleet"`
	PerThousandPopulation *float64 `json:"accidents_per_1000_population"`
	PerThousandVehicles   *float64 `json:"accidents_per_1000_vehicles"`
}

type jsonPeriod struct {
	Period string `json:"period"`
	Start  string `json:"start"`
	Count  int    `json:"accidents"`
}

// jsonCorrelation encodes undefined coefficients as null.
type jsonCorrelation struct {
	Fields []models.Field `json:"fields"`
	Values [][]*float64   `json:"values"`
	Rows   int            `json:"rows"`
}

type jsonQuality struct {
	UnmatchedCodes          int `json:"unmatched_codes"`
	UnmatchedAccidents      int `json:"unmatched_accidents"`
	DuplicateMunicipalities int `json:"duplicate_municipalities"`
	PopulationSkipped       int `json:"population_skipped"`
	FleetSkipped            int `json:"fleet_skipped"`
	PeriodDropped           int `json:"unparseable_dates"`
	HourDropped             int `json:"unparseable_times"`
	NullCoordinates         int `json:"null_coordinates"`
}

// WriteJSON encodes rep as indented JSON.
func WriteJSON(w io.Writer, rep *models.StateReport) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(toJSON(rep)); err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	return nil
}

func toJSON(rep *models.StateReport) jsonReport {
	q := rep.Quality
	out := jsonReport{
		State:            string(rep.Filter),
		Granularity:      rep.Granularity.String(),
		TopN:             rep.TopN,
		NoData:           rep.NoData,
		TotalAccidents:   rep.TotalAccidents,
		Municipalities:   len(rep.Listing),
		TopByAccidents:   cities(rep.TopByAccidents),
		TopPerPopulation: cities(rep.TopPerPopulation),
		TopPerVehicles:   cities(rep.TopPerVehicles),
		Periods:          make([]jsonPeriod, 0, len(rep.Periods)),
		WeekdayHour:      rep.WeekdayHour,
		Correlation: jsonCorrelation{
			Fields: rep.Correlation.Fields,
			Values: make([][]*float64, len(rep.Correlation.Values)),
			Rows:   rep.Correlation.Rows,
		},
		DataQuality: jsonQuality{
			UnmatchedCodes:          q.UnmatchedCodes,
			UnmatchedAccidents:      q.UnmatchedAccidents,
			DuplicateMunicipalities: q.DuplicateMunicipalities,
			PopulationSkipped:       q.PopulationSkipped,
			FleetSkipped:            q.FleetSkipped,
			PeriodDropped:           q.PeriodDropped,
			HourDropped:             q.HourDropped,
			NullCoordinates:         q.NullCoordinates,
		},
	}

	for _, p := range rep.Periods {
		out.Periods = append(out.Periods, jsonPeriod{
			Period: p.Label,
			Start:  p.Start.Format("2006-01-02"),
			Count:  p.Count,
		})
	}

	for i, row := range rep.Correlation.Values {
		out.Correlation.Values[i] = make([]*float64, len(row))
		for j, r := range row {
			if !math.IsNaN(r) {
				out.Correlation.Values[i][j] = &r
			}
		}
	}

	return out
}

func cities(stats []models.MunicipalityStat) []jsonCity {
	out := make([]jsonCity, 0, len(stats))
	for i := range stats {
		s := &stats[i]
		c := jsonCity{Code: s.Code, Name: s.Name, State: s.State, Accidents: s.Accidents}
		if s.HasInfo {
			c.Population, c.Fleet = &s.Population, &s.Fleet
		}
		if v, ok := s.Value(models.FieldPerThousandPopulation); ok {
			c.PerThousandPopulation = &v
		}
		if v, ok := s.Value(models.FieldPerThousandVehicles); ok {
			c.PerThousandVehicles = &v
		}
		out = append(out, c)
	}
	return out
}
