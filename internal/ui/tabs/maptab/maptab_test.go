package maptab

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"

	"github.com/j-veylop/accidents-dashboard-tui/internal/app"
	"github.com/j-veylop/accidents-dashboard-tui/internal/models"
)

func readyState() (*app.State, *models.StateReport) {
	accidents := []models.AccidentRecord{
		{State: "SP", MunicipalityCode: "1", Latitude: -23.55, Longitude: -46.63, HasCoordinates: true},
		{State: "SP", MunicipalityCode: "1", Latitude: -22.90, Longitude: -47.06, HasCoordinates: true},
		{State: "SP", MunicipalityCode: "1"},
	}

	state := app.NewState()
	state.SetLoading("initial", false)
	state.SetDataset(&models.Dataset{
		ID:             "test",
		Accidents:      accidents,
		Municipalities: []models.Municipality{{Code: "1", State: "SP", Name: "São Paulo"}},
	})
	rep := &models.StateReport{
		Filter:         models.AllStates,
		TotalAccidents: len(accidents),
		Accidents:      accidents,
	}
	state.SetReport(rep, nil)
	return state, rep
}

func TestModel_View(t *testing.T) {
	state, _ := readyState()
	m := New(state, nil)
	m.SetSize(60, 24)

	view := ansi.Strip(m.View())
	for _, want := range []string{"Map", "2 plotted", "1 without coordinates", "Accidents per cell"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
	if t.Failed() {
		t.Logf("view:\n%s", view)
	}
}

func TestModel_GridCache(t *testing.T) {
	state, rep := readyState()
	m := New(state, nil)
	m.SetSize(60, 24)

	first := m.gridFor(rep)
	if first.Cols != 56 || first.Rows != 18 {
		t.Errorf("grid size = %dx%d, want 56x18", first.Cols, first.Rows)
	}
	if m.gridFor(rep) != first {
		t.Error("grid should be reused for the same report and size")
	}

	m.SetSize(80, 30)
	if m.gridFor(rep) == first {
		t.Error("grid should be rebuilt after a resize")
	}

	resized := m.gridFor(rep)
	m.Update(app.ReportReadyMsg{})
	if m.gridFor(rep) == resized {
		t.Error("grid should be rebuilt after a new report")
	}

	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("o")})
	if !m.hideOutline {
		t.Error("o should hide the outline")
	}
}

func TestModel_Placeholder(t *testing.T) {
	m := New(app.NewState(), nil)
	if m.View() != "" {
		t.Error("View before SetSize should be empty")
	}
	m.SetSize(60, 20)
	if !strings.Contains(ansi.Strip(m.View()), "Loading") {
		t.Error("expected loading placeholder")
	}
	if m.Init() == nil {
		t.Error("Init returned nil")
	}
	if len(m.ShortHelp()) == 0 || len(m.FullHelp()) == 0 {
		t.Error("help bindings empty")
	}
}
