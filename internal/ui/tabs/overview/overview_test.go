package overview

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"

	"github.com/j-veylop/accidents-dashboard-tui/internal/aggregator"
	"github.com/j-veylop/accidents-dashboard-tui/internal/app"
	"github.com/j-veylop/accidents-dashboard-tui/internal/models"
)

func testDataset() *models.Dataset {
	return &models.Dataset{
		ID: "test",
		Accidents: []models.AccidentRecord{
			{State: "SP", MunicipalityCode: "3550308", Date: "2022-01-03", Time: "08:00"},
			{State: "SP", MunicipalityCode: "3550308", Date: "2022-01-10", Time: "18:30"},
			{State: "SP", MunicipalityCode: "3509502", Date: "2022-02-01", Time: "18:00"},
			{State: "SP", MunicipalityCode: "3500105", Date: "2022-02-07", Time: "07:15"},
			{State: "RJ", MunicipalityCode: "3304557", Date: "2022-01-04", Time: "09:00"},
		},
		Municipalities: []models.Municipality{
			{Code: "3550308", State: "SP", Name: "São Paulo", Population: 12000000, Fleet: 9000000},
			{Code: "3509502", State: "SP", Name: "Campinas", Population: 1200000, Fleet: 900000},
			{Code: "3500105", State: "SP", Name: "Adamantina", Population: 35000, Fleet: 25000},
			{Code: "3304557", State: "RJ", Name: "Rio de Janeiro", Population: 6700000, Fleet: 3000000},
		},
	}
}

// readyState returns a state holding the dataset and the report for filter.
func readyState(t *testing.T, filter models.StateFilter) *app.State {
	t.Helper()

	ds := testDataset()
	state := app.NewState()
	state.SetLoading("initial", false)
	state.SetDataset(ds)
	state.SetFilter(filter)

	rep, err := aggregator.BuildReport(ds, filter, aggregator.DefaultOptions())
	if err != nil {
		t.Fatalf("BuildReport: %v", err)
	}
	state.SetReport(rep, nil)
	return state
}

func newReadyModel(t *testing.T, filter models.StateFilter) *Model {
	t.Helper()
	m := New(readyState(t, filter))
	m.SetSize(120, 40)
	m.Update(app.ReportReadyMsg{})
	return m
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func selectedFilter(t *testing.T, cmd tea.Cmd) models.StateFilter {
	t.Helper()
	if cmd == nil {
		t.Fatal("expected a command")
	}
	msg, ok := cmd().(app.SelectStateMsg)
	if !ok {
		t.Fatalf("command returned %T, want app.SelectStateMsg", cmd())
	}
	return msg.Filter
}

func TestNew(t *testing.T) {
	m := New(app.NewState())
	if m == nil {
		t.Fatal("New returned nil")
	}
	if m.Init() == nil {
		t.Error("Init returned nil")
	}
	if m.CapturingInput() {
		t.Error("new model should not capture input")
	}
}

func TestModel_View_Placeholders(t *testing.T) {
	tests := []struct {
		name  string
		setup func(*app.State)
		want  string
	}{
		{
			name:  "initial load",
			setup: func(*app.State) {},
			want:  "Loading accident data",
		},
		{
			name: "load error",
			setup: func(s *app.State) {
				s.SetLoading("initial", false)
				s.SetLoadError(errors.New("accidents file not found"))
			},
			want: "accidents file not found",
		},
		{
			name: "no data for state",
			setup: func(s *app.State) {
				s.SetLoading("initial", false)
				s.SetDataset(testDataset())
				s.SetReport(&models.StateReport{Filter: "AC", NoData: true}, nil)
			},
			want: "No accidents recorded for AC",
		},
		{
			name: "report pending",
			setup: func(s *app.State) {
				s.SetLoading("initial", false)
				s.SetDataset(testDataset())
			},
			want: "Building report for all states",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state := app.NewState()
			tt.setup(state)
			m := New(state)
			m.SetSize(100, 30)

			view := ansi.Strip(m.View())
			if !strings.Contains(view, tt.want) {
				t.Errorf("view missing %q:\n%s", tt.want, view)
			}
		})
	}
}

func TestModel_View_Rankings(t *testing.T) {
	m := newReadyModel(t, "SP")
	view := ansi.Strip(m.View())

	for _, want := range []string{"Overview", "4 accidents", "Top 10 by accidents", "São Paulo/SP", "Per 1,000 vehicles"} {
		if !strings.Contains(strings.ToLower(view), strings.ToLower(want)) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}
}

func TestModel_StateSelector(t *testing.T) {
	m := newReadyModel(t, models.AllStates)

	// Options are [ALL RJ SP].
	_, cmd := m.Update(runes("]"))
	if got := selectedFilter(t, cmd); got != "RJ" {
		t.Errorf("next state = %q, want RJ", got)
	}

	_, cmd = m.Update(runes("["))
	if got := selectedFilter(t, cmd); got != "SP" {
		t.Errorf("prev state from ALL = %q, want SP (wrap)", got)
	}

	m.state.SetFilter("SP")
	_, cmd = m.Update(runes("a"))
	if got := selectedFilter(t, cmd); got != models.AllStates {
		t.Errorf("all states key = %q, want ALL", got)
	}
}

func TestModel_Search(t *testing.T) {
	m := newReadyModel(t, "SP")

	m.Update(runes("/"))
	if !m.CapturingInput() {
		t.Fatal("search should capture input")
	}
	if m.mode != modeListing {
		t.Error("search should switch to the listing")
	}

	// Global keys like "a" are typed into the box, not handled.
	m.Update(runes("sao"))
	if len(m.rows) != 1 || m.rows[0].Name != "São Paulo" {
		t.Fatalf("rows = %+v, want only São Paulo", m.rows)
	}

	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if m.CapturingInput() {
		t.Error("enter should leave the search box")
	}
	if len(m.rows) != 1 {
		t.Errorf("query should persist after enter, got %d rows", len(m.rows))
	}

	m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if len(m.rows) != 3 {
		t.Errorf("esc should clear the query, got %d rows", len(m.rows))
	}
}

func TestModel_ToggleSortAndView(t *testing.T) {
	m := newReadyModel(t, "SP")

	if m.rows[0].Name != "São Paulo" {
		t.Errorf("default order first = %q, want São Paulo", m.rows[0].Name)
	}

	m.Update(runes("s"))
	names := []string{m.rows[0].Name, m.rows[1].Name, m.rows[2].Name}
	want := []string{"Adamantina", "Campinas", "São Paulo"}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("name order = %v, want %v", names, want)
		}
	}

	m.Update(runes("v"))
	view := ansi.Strip(m.View())
	if !strings.Contains(view, "sorted by name") {
		t.Errorf("listing view missing sort label:\n%s", view)
	}
	if !strings.Contains(view, "Adamantina") {
		t.Errorf("listing view missing city:\n%s", view)
	}
}

func TestFilterListing(t *testing.T) {
	listing := []models.MunicipalityStat{
		{Code: "3550308", Name: "São Paulo", Accidents: 9},
		{Code: "3509502", Name: "Campinas", Accidents: 4},
		{Code: "3303302", Name: "Niterói", Accidents: 2},
	}

	tests := []struct {
		name  string
		query string
		want  int
	}{
		{"empty query keeps all", "", 3},
		{"accent-insensitive", "niteroi", 1},
		{"case-insensitive", "CAMP", 1},
		{"by code", "35", 2},
		{"no match", "xyz", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := filterListing(listing, tt.query, false)
			if len(got) != tt.want {
				t.Errorf("filterListing(%q) returned %d rows, want %d", tt.query, len(got), tt.want)
			}
		})
	}
}

func TestModel_Help(t *testing.T) {
	m := New(app.NewState())
	if len(m.ShortHelp()) == 0 {
		t.Error("ShortHelp empty")
	}
	if len(m.FullHelp()) == 0 {
		t.Error("FullHelp empty")
	}
}
