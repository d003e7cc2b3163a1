package info

import (
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"

	"github.com/j-veylop/accidents-dashboard-tui/internal/app"
	"github.com/j-veylop/accidents-dashboard-tui/internal/config"
	"github.com/j-veylop/accidents-dashboard-tui/internal/models"
)

func testConfig() *config.Config {
	return &config.Config{
		AccidentsPath:      "/data/acidentes.csv",
		MunicipalitiesPath: "/data/localidades.csv",
		CSVDelimiter:       ';',
		CSVEncoding:        "latin1",
		TopN:               10,
		LogPath:            "/tmp/acd.log",
		LogLevel:           "info",
	}
}

func TestNew(t *testing.T) {
	m := New(app.NewState(), testConfig())
	if m == nil {
		t.Fatal("New returned nil")
	}
	if m.Init() != nil {
		t.Error("Init should return nil")
	}
	if len(m.ShortHelp()) == 0 || len(m.FullHelp()) == 0 {
		t.Error("help bindings empty")
	}
}

func TestModel_View_NoDataset(t *testing.T) {
	state := app.NewState()
	state.SetLoading("initial", false)
	state.SetLoadError(errors.New("open /data/acidentes.csv: no such file"))

	m := New(state, nil)
	m.SetSize(100, 80)
	view := ansi.Strip(m.View())

	for _, want := range []string{"no such file", "No report yet", "No loads recorded", "Configuration not loaded"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestModel_View_Loaded(t *testing.T) {
	state := app.NewState()
	state.SetLoading("initial", false)
	state.SetDataset(&models.Dataset{
		ID:       "snap-1",
		LoadedAt: time.Now(),
		Accidents: []models.AccidentRecord{
			{State: "SP", MunicipalityCode: "1"},
		},
		Municipalities: []models.Municipality{{Code: "1", State: "SP", Name: "A"}},
		Sources: []models.SourceInfo{
			{Kind: "accidents", Path: "/data/acidentes.csv", Rows: 1234, Size: 2048, ModTime: time.Now()},
		},
		Report: models.LoadReport{AccidentRows: 1234, MunicipalityRows: 5570, NullCoordinates: 7},
	})
	state.SetReport(&models.StateReport{
		Filter:  models.AllStates,
		Quality: models.DataQuality{UnmatchedCodes: 3, PeriodDropped: 2},
	}, nil)

	m := New(state, testConfig())
	m.SetSize(110, 120)
	view := ansi.Strip(m.View())

	for _, want := range []string{
		"/data/acidentes.csv",
		"1,234 rows",
		"2.0 kB",
		"snap-1",
		"5,570",
		"Unmatched codes",
		"delimiter \";\" · latin1",
		"disabled",
		"not configured",
	} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
	if t.Failed() {
		t.Logf("view:\n%s", view)
	}
}

func TestModel_HistoryLoaded(t *testing.T) {
	state := app.NewState()
	now := time.Now()
	state.SetHistory([]models.LoadHistoryEntry{
		{LoadedAt: now, Trigger: "reload", Error: "parse failed", Duration: 12 * time.Millisecond},
		{LoadedAt: now.Add(-time.Hour), Trigger: "startup", AccidentRows: 1500, MunicipalityRows: 10, FromCache: true},
	})

	m := New(state, testConfig())
	m.SetSize(110, 120)
	m.Update(app.HistoryLoadedMsg{})

	rows := m.history.Rows()
	if len(rows) != 2 {
		t.Fatalf("history rows = %d, want 2", len(rows))
	}
	if rows[0][2] != "parse failed" {
		t.Errorf("failed load result = %q", rows[0][2])
	}
	if rows[1][2] != "ok" || rows[1][3] != "1,500" || rows[1][6] != "yes" {
		t.Errorf("successful load row = %v", rows[1])
	}

	view := ansi.Strip(m.View())
	if !strings.Contains(view, "startup") {
		t.Errorf("view missing history trigger:\n%s", view)
	}
}

func TestHistoryTableRows_Limit(t *testing.T) {
	entries := make([]models.LoadHistoryEntry, historyRows+5)
	if got := len(historyTableRows(entries)); got != historyRows {
		t.Errorf("rows = %d, want %d", got, historyRows)
	}
}

func TestModel_Scroll(t *testing.T) {
	m := New(app.NewState(), testConfig())
	m.SetSize(80, 10)
	m.View()

	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("G")})
	if m.viewport.AtTop() {
		t.Error("G should scroll to the bottom")
	}
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("g")})
	if !m.viewport.AtTop() {
		t.Error("g should scroll to the top")
	}
}
