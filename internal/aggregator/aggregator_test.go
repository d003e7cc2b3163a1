package aggregator

import (
	"errors"
	"math"
	"slices"
	"testing"

	"github.com/j-veylop/accidents-dashboard-tui/internal/models"
)

func accident(state, code, date, clock string) models.AccidentRecord {
	return models.AccidentRecord{State: state, MunicipalityCode: code, Date: date, Time: clock}
}

// scenarioDataset has city A with three accidents and city B with one.
func scenarioDataset() *models.Dataset {
	return &models.Dataset{
		Accidents: []models.AccidentRecord{
			accident("SP", "A", "2022-01-03", "08:00"),
			accident("SP", "A", "2022-01-10", "18:30"),
			accident("SP", "B", "2022-02-01", "18:00"),
			accident("SP", "A", "2022-02-14", "07:15"),
			accident("RJ", "C", "2022-03-01", "12:00"),
		},
		Municipalities: []models.Municipality{
			{Code: "A", State: "SP", Name: "Alpha", Population: 1000, Fleet: 500},
			{Code: "B", State: "SP", Name: "Beta", Population: 2000, Fleet: 100},
			{Code: "C", State: "RJ", Name: "Gamma", Population: 500, Fleet: 250},
		},
	}
}

func TestFilterByState(t *testing.T) {
	ds := scenarioDataset()
	original := slices.Clone(ds.Accidents)

	tests := []struct {
		name    string
		filter  models.StateFilter
		wantAcc int
		wantMun int
	}{
		{"SP", models.NewStateFilter("SP"), 4, 2},
		{"LowerCase", models.NewStateFilter("rj"), 1, 1},
		{"Unknown", models.NewStateFilter("AM"), 0, 0},
		{"All", models.AllStates, 5, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			acc, mun := FilterByState(ds.Accidents, ds.Municipalities, tt.filter)
			if len(acc) != tt.wantAcc || len(mun) != tt.wantMun {
				t.Fatalf("got %d accidents, %d municipalities; want %d, %d", len(acc), len(mun), tt.wantAcc, tt.wantMun)
			}
			for _, a := range acc {
				if !tt.filter.Matches(a.State) {
					t.Errorf("row with state %s passed filter %s", a.State, tt.filter)
				}
			}

			again, _ := FilterByState(ds.Accidents, ds.Municipalities, tt.filter)
			if !slices.Equal(acc, again) {
				t.Error("repeated filter returned a different result")
			}
		})
	}

	if !slices.Equal(ds.Accidents, original) {
		t.Error("FilterByState modified its input")
	}

	all, _ := FilterByState(ds.Accidents, ds.Municipalities, models.AllStates)
	all[0].State = "XX"
	if ds.Accidents[0].State == "XX" {
		t.Error("AllStates result shares backing array with the input")
	}
}

func TestCountByMunicipality(t *testing.T) {
	ds := scenarioDataset()
	counts := CountByMunicipality(ds.Accidents)

	if counts.Total() != len(ds.Accidents) {
		t.Errorf("Total() = %d, want %d", counts.Total(), len(ds.Accidents))
	}
	if !slices.Equal(counts.Codes, []string{"A", "B", "C"}) {
		t.Errorf("Codes = %v, want first-seen order [A B C]", counts.Codes)
	}
	if counts.Counts["A"] != 3 || counts.Counts["B"] != 1 {
		t.Errorf("Counts = %v", counts.Counts)
	}

	withMissing := append(slices.Clone(ds.Accidents), accident("SP", " ", "2022-01-01", "01:00"))
	counts = CountByMunicipality(withMissing)
	if counts.Missing != 1 {
		t.Errorf("Missing = %d, want 1", counts.Missing)
	}
	if counts.Total()+counts.Missing != len(withMissing) {
		t.Error("counted and missing rows should add up to the input length")
	}

	empty := CountByMunicipality(nil)
	if empty.Len() != 0 || empty.Total() != 0 {
		t.Error("empty input should produce no codes")
	}
}

func TestJoinWithMunicipalityInfo(t *testing.T) {
	counts := CountByMunicipality([]models.AccidentRecord{
		accident("SP", "A", "", ""),
		accident("SP", "Z", "", ""),
		accident("SP", "Z", "", ""),
		accident("SP", "B", "", ""),
	})
	municipalities := []models.Municipality{
		{Code: "A", Name: "First A", Population: 10},
		{Code: "B", Name: "Beta"},
		{Code: "A", Name: "Second A", Population: 99},
	}

	inner := JoinWithMunicipalityInfo(counts, municipalities, JoinInner)
	if len(inner.Stats) != 2 {
		t.Fatalf("inner join returned %d rows, want 2", len(inner.Stats))
	}
	if inner.Stats[0].Name != "First A" {
		t.Errorf("duplicate code should keep first occurrence, got %q", inner.Stats[0].Name)
	}
	if inner.Unmatched != 1 || inner.UnmatchedAccidents != 2 || inner.Duplicates != 1 {
		t.Errorf("unexpected tallies: %+v", inner)
	}
	if !errors.Is(inner.Err(), ErrJoinMismatch) {
		t.Errorf("Err() = %v, want ErrJoinMismatch", inner.Err())
	}

	left := JoinWithMunicipalityInfo(counts, municipalities, JoinLeft)
	if len(left.Stats) != 3 {
		t.Fatalf("left join returned %d rows, want 3", len(left.Stats))
	}
	if left.Stats[1].Code != "Z" || left.Stats[1].HasInfo {
		t.Errorf("unmatched row should be kept without info: %+v", left.Stats[1])
	}

	matched := JoinWithMunicipalityInfo(CountByMunicipality([]models.AccidentRecord{accident("SP", "B", "", "")}), municipalities, JoinInner)
	if matched.Err() != nil {
		t.Errorf("Err() = %v, want nil", matched.Err())
	}
}

func TestComputeRate(t *testing.T) {
	stats := []models.MunicipalityStat{
		{Code: "A", Accidents: 3, Population: 1000, Fleet: 500, HasInfo: true},
		{Code: "B", Accidents: 1, Population: 2000, Fleet: 100, HasInfo: true},
		{Code: "Z", Accidents: 7},
		{Code: "Q", Accidents: 2, Population: 0, Fleet: 10, HasInfo: true},
	}

	t.Run("Population", func(t *testing.T) {
		res, err := ComputeRate(stats, models.FieldAccidents, models.FieldPopulation, 1000)
		if err != nil {
			t.Fatalf("ComputeRate failed: %v", err)
		}
		if res.Skipped != 2 {
			t.Errorf("Skipped = %d, want 2", res.Skipped)
		}
		for _, s := range res.Stats {
			if s.Population <= 0 {
				t.Errorf("row %s kept with non-positive denominator", s.Code)
			}
		}
		if res.Stats[0].PerThousandPopulation != 3.0 || res.Stats[1].PerThousandPopulation != 0.5 {
			t.Errorf("unexpected rates: %+v", res.Stats)
		}
	})

	t.Run("Fleet", func(t *testing.T) {
		res, err := ComputeRate(stats, models.FieldAccidents, models.FieldFleet, 1000)
		if err != nil {
			t.Fatalf("ComputeRate failed: %v", err)
		}
		if len(res.Stats) != 3 || res.Skipped != 1 {
			t.Fatalf("got %d rows, %d skipped", len(res.Stats), res.Skipped)
		}
		if res.Stats[0].PerThousandVehicles != 6.0 || res.Stats[1].PerThousandVehicles != 10.0 {
			t.Errorf("unexpected rates: %+v", res.Stats)
		}
	})

	t.Run("UnknownDenominator", func(t *testing.T) {
		_, err := ComputeRate(stats, models.FieldAccidents, models.Field("area"), 1000)
		var schemaErr *SchemaError
		if !errors.As(err, &schemaErr) || schemaErr.Field != "area" {
			t.Errorf("err = %v, want SchemaError for area", err)
		}
	})

	t.Run("UnknownNumerator", func(t *testing.T) {
		_, err := ComputeRate(stats, models.Field("deaths"), models.FieldFleet, 1000)
		var schemaErr *SchemaError
		if !errors.As(err, &schemaErr) {
			t.Errorf("err = %v, want SchemaError", err)
		}
	})

	t.Run("InputUntouched", func(t *testing.T) {
		if stats[0].PerThousandPopulation != 0 {
			t.Error("ComputeRate modified its input")
		}
	})
}

func TestTopN(t *testing.T) {
	stats := []models.MunicipalityStat{
		{Code: "a", Accidents: 5},
		{Code: "b", Accidents: 9},
		{Code: "c", Accidents: 5},
		{Code: "d", Accidents: 1},
		{Code: "e", Accidents: 9},
	}

	codes := func(s []models.MunicipalityStat) []string {
		out := make([]string, len(s))
		for i := range s {
			out[i] = s[i].Code
		}
		return out
	}

	tests := []struct {
		name       string
		n          int
		descending bool
		want       []string
	}{
		{"TopThreeDesc", 3, true, []string{"b", "e", "a"}},
		{"AllDesc", 5, true, []string{"b", "e", "a", "c", "d"}},
		{"MoreThanRows", 50, true, []string{"b", "e", "a", "c", "d"}},
		{"Asc", 3, false, []string{"d", "a", "c"}},
		{"Zero", 0, true, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := TopN(stats, models.FieldAccidents, tt.n, tt.descending)
			if err != nil {
				t.Fatalf("TopN failed: %v", err)
			}
			if !slices.Equal(codes(got), tt.want) {
				t.Errorf("TopN() = %v, want %v", codes(got), tt.want)
			}
		})
	}

	full, _ := TopN(stats, models.FieldAccidents, len(stats), true)
	for n := 0; n <= len(stats); n++ {
		prefix, _ := TopN(stats, models.FieldAccidents, n, true)
		if !slices.Equal(codes(prefix), codes(full[:n])) {
			t.Errorf("TopN(%d) is not a prefix of the full ranking", n)
		}
	}

	if _, err := TopN(stats, models.Field("nope"), 3, true); err == nil {
		t.Error("expected error for unknown field")
	}

	withRates := []models.MunicipalityStat{
		{Code: "x", HasInfo: true, Fleet: 0},
		{Code: "y", HasInfo: true, Fleet: 10, PerThousandVehicles: 2},
	}
	got, _ := TopN(withRates, models.FieldPerThousandVehicles, 5, true)
	if len(got) != 1 || got[0].Code != "y" {
		t.Errorf("rows without a rate should be ineligible, got %v", codes(got))
	}
}

func TestRateScenario(t *testing.T) {
	ds := scenarioDataset()
	acc, mun := FilterByState(ds.Accidents, ds.Municipalities, models.NewStateFilter("SP"))
	joined := JoinWithMunicipalityInfo(CountByMunicipality(acc), mun, JoinLeft)

	pop, err := ComputeRate(joined.Stats, models.FieldAccidents, models.FieldPopulation, 1000)
	if err != nil {
		t.Fatal(err)
	}
	fleet, err := ComputeRate(joined.Stats, models.FieldAccidents, models.FieldFleet, 1000)
	if err != nil {
		t.Fatal(err)
	}

	want := map[string][2]float64{"A": {3.0, 6.0}, "B": {0.5, 10.0}}
	for i, s := range pop.Stats {
		if got := want[s.Code][0]; s.PerThousandPopulation != got {
			t.Errorf("%s per 1k population = %v, want %v", s.Code, s.PerThousandPopulation, got)
		}
		if got := want[s.Code][1]; fleet.Stats[i].PerThousandVehicles != got {
			t.Errorf("%s per 1k vehicles = %v, want %v", s.Code, fleet.Stats[i].PerThousandVehicles, got)
		}
	}

	top, err := TopN(fleet.Stats, models.FieldPerThousandVehicles, 1, true)
	if err != nil {
		t.Fatal(err)
	}
	if len(top) != 1 || top[0].Code != "B" {
		t.Errorf("TopN(1, per 1k vehicles) = %+v, want [B]", top)
	}
}

func TestCorrelationMatrix(t *testing.T) {
	stats := []models.MunicipalityStat{
		{Accidents: 1, Population: 10, Fleet: 7, HasInfo: true},
		{Accidents: 2, Population: 20, Fleet: 3, HasInfo: true},
		{Accidents: 3, Population: 30, Fleet: 7, HasInfo: true},
		{Accidents: 4, Population: 40, Fleet: 1, HasInfo: true},
		{Accidents: 9},
	}
	fields := []models.Field{models.FieldAccidents, models.FieldPopulation, models.FieldFleet}

	m, err := CorrelationMatrix(stats, fields)
	if err != nil {
		t.Fatalf("CorrelationMatrix failed: %v", err)
	}
	if m.Rows != 4 {
		t.Errorf("Rows = %d, want 4 (row without info excluded)", m.Rows)
	}
	for i := range fields {
		if m.Values[i][i] != 1 {
			t.Errorf("diagonal[%d] = %v, want 1", i, m.Values[i][i])
		}
		for j := range fields {
			if m.Values[i][j] != m.Values[j][i] {
				t.Errorf("matrix not symmetric at %d,%d", i, j)
			}
		}
	}
	if v, _ := m.At(models.FieldAccidents, models.FieldPopulation); math.Abs(v-1) > 1e-9 {
		t.Errorf("perfectly linear fields correlate at %v, want 1", v)
	}
	if v, _ := m.At(models.FieldAccidents, models.FieldFleet); v >= 0 {
		t.Errorf("expected negative correlation, got %v", v)
	}

	constant := []models.MunicipalityStat{
		{Accidents: 1, Population: 5, HasInfo: true},
		{Accidents: 2, Population: 5, HasInfo: true},
		{Accidents: 3, Population: 5, HasInfo: true},
	}
	m, err = CorrelationMatrix(constant, fields[:2])
	if err != nil {
		t.Fatal(err)
	}
	if !math.IsNaN(m.Values[0][1]) || !math.IsNaN(m.Values[1][0]) || !math.IsNaN(m.Values[1][1]) {
		t.Errorf("zero variance should propagate NaN, got %v", m.Values)
	}
	if m.Values[0][0] != 1 {
		t.Errorf("non-constant diagonal = %v, want 1", m.Values[0][0])
	}

	if _, err := CorrelationMatrix(stats, []models.Field{"bogus"}); err == nil {
		t.Error("expected SchemaError for unknown field")
	}
}

func TestBucketByPeriod(t *testing.T) {
	accidents := []models.AccidentRecord{
		accident("SP", "A", "2022-02-14", ""),
		accident("SP", "A", "03/01/2022", ""),
		accident("SP", "A", "2022-01-10", ""),
		accident("SP", "A", "not a date", ""),
		accident("SP", "A", "", ""),
	}

	month, err := BucketByPeriod(accidents, models.GranularityMonth)
	if err != nil {
		t.Fatalf("BucketByPeriod failed: %v", err)
	}
	if len(month.Periods) != 2 {
		t.Fatalf("got %d periods, want 2", len(month.Periods))
	}
	if month.Periods[0].Label != "2022-01" || month.Periods[0].Count != 2 {
		t.Errorf("first period = %+v", month.Periods[0])
	}
	if month.Periods[1].Label != "2022-02" || month.Periods[1].Count != 1 {
		t.Errorf("second period = %+v", month.Periods[1])
	}
	if month.Dropped != 2 {
		t.Errorf("Dropped = %d, want 2", month.Dropped)
	}
	var parseErr *ParseError
	if !errors.As(month.Err, &parseErr) || parseErr.Kind != "date" {
		t.Errorf("Err = %v, want date ParseError", month.Err)
	}
	if month.Total()+month.Dropped != len(accidents) {
		t.Error("bucketed and dropped rows should add up to the input length")
	}

	week, err := BucketByPeriod(accidents, models.GranularityWeek)
	if err != nil {
		t.Fatal(err)
	}
	labels := make([]string, len(week.Periods))
	for i, p := range week.Periods {
		labels[i] = p.Label
		if p.Start.Weekday() != 1 {
			t.Errorf("week %s starts on %s, want Monday", p.Label, p.Start.Weekday())
		}
	}
	if !slices.Equal(labels, []string{"2022-W01", "2022-W02", "2022-W07"}) {
		t.Errorf("week labels = %v", labels)
	}

	if _, err := BucketByPeriod(accidents, models.Granularity(7)); err == nil {
		t.Error("expected error for unsupported granularity")
	}
}

func TestBucketByWeekdayHour(t *testing.T) {
	accidents := []models.AccidentRecord{
		accident("SP", "A", "2022-01-03", "08:00"),    // Monday
		accident("SP", "A", "2022-01-03", "8"),        // Monday
		accident("SP", "A", "2022-01-09", "23:59:59"), // Sunday
		accident("SP", "A", "2022-01-09 14:20:00", ""),
		accident("SP", "A", "2022-01-04", "25:00"),
		accident("SP", "A", "2022-01-04", "abc"),
		accident("SP", "A", "2022-01-04", ""),
		accident("SP", "A", "garbage", "10:00"),
	}

	res := BucketByWeekdayHour(accidents)
	if res.Matrix[1][8] != 2 {
		t.Errorf("Monday 08h = %d, want 2", res.Matrix[1][8])
	}
	if res.Matrix[0][23] != 1 || res.Matrix[0][14] != 1 {
		t.Errorf("Sunday row = %v", res.Matrix[0])
	}
	if res.Matrix[2][0] != 0 {
		t.Error("malformed hours must not be counted as hour 0")
	}
	if res.Dropped != 4 {
		t.Errorf("Dropped = %d, want 4", res.Dropped)
	}
	if res.Matrix.Total()+res.Dropped != len(accidents) {
		t.Error("matrix and dropped rows should add up to the input length")
	}
}

func TestBuildReport(t *testing.T) {
	ds := scenarioDataset()
	ds.Accidents = append(ds.Accidents, accident("SP", "Z", "2022-01-05", "10:00"))

	report, err := BuildReport(ds, models.NewStateFilter("SP"), Options{TopN: 1})
	if err != nil {
		t.Fatalf("BuildReport failed: %v", err)
	}
	if report.NoData {
		t.Fatal("NoData set for a state with accidents")
	}
	if report.TotalAccidents != 5 {
		t.Errorf("TotalAccidents = %d, want 5", report.TotalAccidents)
	}
	if len(report.Listing) != 2 || report.Listing[0].Code != "A" {
		t.Errorf("Listing = %+v", report.Listing)
	}
	if report.Listing[0].PerThousandPopulation != 3.0 {
		t.Errorf("listing rate = %v, want 3.0", report.Listing[0].PerThousandPopulation)
	}
	if len(report.TopPerVehicles) != 1 || report.TopPerVehicles[0].Code != "B" {
		t.Errorf("TopPerVehicles = %+v, want [B]", report.TopPerVehicles)
	}
	if len(report.TopPerPopulation) != 1 || report.TopPerPopulation[0].Code != "A" {
		t.Errorf("TopPerPopulation = %+v, want [A]", report.TopPerPopulation)
	}
	if report.Quality.UnmatchedCodes != 1 || report.Quality.UnmatchedAccidents != 1 {
		t.Errorf("unmatched tally = %+v", report.Quality)
	}
	for _, s := range report.TopPerPopulation {
		if s.Code == "Z" {
			t.Error("unmatched code leaked into the rate table")
		}
	}
	if len(report.Periods) != 2 {
		t.Errorf("Periods = %+v", report.Periods)
	}
	if report.WeekdayHour.Total() != 5 {
		t.Errorf("WeekdayHour total = %d, want 5", report.WeekdayHour.Total())
	}
	if report.Correlation.Rows != 2 || len(report.Correlation.Fields) != len(models.NumericFields) {
		t.Errorf("Correlation = %+v", report.Correlation)
	}
}

func TestBuildReport_NoData(t *testing.T) {
	report, err := BuildReport(scenarioDataset(), models.NewStateFilter("AM"), DefaultOptions())
	if err != nil {
		t.Fatalf("empty state should not fail: %v", err)
	}
	if !report.NoData {
		t.Error("NoData should be set")
	}
	if len(report.Listing) != 0 || len(report.TopByAccidents) != 0 || len(report.Periods) != 0 {
		t.Error("views should be empty")
	}
	if report.WeekdayHour.Total() != 0 || !report.Correlation.Empty() {
		t.Error("temporal and correlation views should be empty")
	}
}

func TestBuildReport_EmptyDataset(t *testing.T) {
	tests := []struct {
		name string
		ds   *models.Dataset
	}{
		{"Nil", nil},
		{"NoAccidents", &models.Dataset{Municipalities: []models.Municipality{{Code: "A"}}}},
		{"NoMunicipalities", &models.Dataset{Accidents: []models.AccidentRecord{{State: "SP"}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := BuildReport(tt.ds, models.AllStates, DefaultOptions())
			if !errors.Is(err, ErrEmptyDataset) {
				t.Errorf("err = %v, want ErrEmptyDataset", err)
			}
		})
	}
}
