package report

import (
	"errors"
	"testing"

	"github.com/twpayne/go-geom"

	"github.com/j-veylop/accidents-dashboard-tui/internal/aggregator"
	"github.com/j-veylop/accidents-dashboard-tui/internal/geo"
	"github.com/j-veylop/accidents-dashboard-tui/internal/models"
)

func testDataset() *models.Dataset {
	return &models.Dataset{
		Accidents: []models.AccidentRecord{
			{State: "SP", MunicipalityCode: "1", Date: "2022-01-03", Time: "08:00", Latitude: -23.5, Longitude: -46.6, HasCoordinates: true},
			{State: "SP", MunicipalityCode: "1", Date: "2022-01-10", Time: "09:00"},
			{State: "RJ", MunicipalityCode: "2", Date: "2022-02-01", Time: "10:00", Latitude: -22.9, Longitude: -43.2, HasCoordinates: true},
		},
		Municipalities: []models.Municipality{
			{Code: "1", State: "SP", Name: "São Paulo", Population: 2000, Fleet: 1000},
			{Code: "2", State: "RJ", Name: "Rio de Janeiro", Population: 1000, Fleet: 500},
		},
	}
}

func TestNew_Defaults(t *testing.T) {
	svc := New(aggregator.Options{})
	opts := svc.Options()
	if opts.TopN != aggregator.DefaultTopN {
		t.Errorf("TopN = %d, want %d", opts.TopN, aggregator.DefaultTopN)
	}
	if len(opts.CorrelationFields) != len(models.NumericFields) {
		t.Errorf("CorrelationFields = %v", opts.CorrelationFields)
	}
}

func TestBuild(t *testing.T) {
	svc := New(aggregator.Options{TopN: 5})

	rep, err := svc.Build(testDataset(), "SP", models.GranularityWeek)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if rep.TotalAccidents != 2 {
		t.Errorf("TotalAccidents = %d, want 2", rep.TotalAccidents)
	}
	if rep.Granularity != models.GranularityWeek || len(rep.Periods) != 2 {
		t.Errorf("expected two weekly periods, got %+v", rep.Periods)
	}
	if rep.TopN != 5 {
		t.Errorf("TopN = %d, want 5", rep.TopN)
	}

	empty, err := svc.Build(testDataset(), "MG", models.GranularityMonth)
	if err != nil {
		t.Fatalf("Build for unknown state failed: %v", err)
	}
	if !empty.NoData {
		t.Error("unknown state should yield NoData")
	}

	if _, err := svc.Build(&models.Dataset{}, models.AllStates, models.GranularityMonth); !errors.Is(err, aggregator.ErrEmptyDataset) {
		t.Errorf("Build on empty dataset = %v, want ErrEmptyDataset", err)
	}
}

func TestSetGranularity(t *testing.T) {
	svc := New(aggregator.Options{})
	svc.SetGranularity(models.GranularityWeek)
	if svc.Options().Granularity != models.GranularityWeek {
		t.Error("SetGranularity did not update options")
	}
}

func TestMap(t *testing.T) {
	svc := New(aggregator.Options{})
	rep, err := svc.Build(testDataset(), models.AllStates, models.GranularityMonth)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	grid := svc.Map(rep, geo.Outlines{}, 20, 10)
	if grid.Plotted != 2 || grid.NullCoordinates != 1 {
		t.Errorf("Plotted=%d NullCoordinates=%d, want 2 and 1", grid.Plotted, grid.NullCoordinates)
	}

	outlines := geo.Outlines{"SP": geom.NewMultiPolygon(geom.XY)}
	if g := svc.Map(rep, outlines, 20, 10); g.Plotted != 2 {
		t.Errorf("empty outline should fall back to point bounds, plotted %d", g.Plotted)
	}

	if g := svc.Map(nil, nil, 4, 4); g.Plotted != 0 {
		t.Error("nil report should produce an empty grid")
	}
}
