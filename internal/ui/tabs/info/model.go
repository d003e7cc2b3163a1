// Package info provides the data sources, data quality and load history tab.
package info

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/j-veylop/accidents-dashboard-tui/internal/app"
	"github.com/j-veylop/accidents-dashboard-tui/internal/config"
	"github.com/j-veylop/accidents-dashboard-tui/internal/models"
	"github.com/j-veylop/accidents-dashboard-tui/internal/ui/styles"
)

// keyMap defines the key bindings specific to the info tab.
type keyMap struct {
	Up     key.Binding
	Down   key.Binding
	Top    key.Binding
	Bottom key.Binding
}

// defaultKeyMap returns the default key bindings for the info tab.
func defaultKeyMap() keyMap {
	return keyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Top: key.NewBinding(
			key.WithKeys("g", "home"),
			key.WithHelp("g", "top"),
		),
		Bottom: key.NewBinding(
			key.WithKeys("G", "end"),
			key.WithHelp("G", "bottom"),
		),
	}
}

// Model represents the info tab state.
type Model struct {
	state    *app.State
	config   *config.Config
	width    int
	height   int
	keys     keyMap
	viewport viewport.Model
	history  table.Model
}

// New creates a new info model.
func New(state *app.State, cfg *config.Config) *Model {
	t := table.New(
		table.WithColumns(historyColumns()),
		table.WithHeight(historyRows),
	)
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(styles.Subtle).
		BorderBottom(true).
		Bold(true).
		Foreground(styles.Primary)
	s.Selected = s.Cell
	t.SetStyles(s)

	return &Model{
		state:    state,
		config:   cfg,
		keys:     defaultKeyMap(),
		viewport: viewport.New(0, 0),
		history:  t,
	}
}

// Init initializes the info tab.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update handles messages for the info tab.
func (m *Model) Update(msg tea.Msg) (app.Tab, tea.Cmd) {
	switch msg := msg.(type) {
	case app.HistoryLoadedMsg:
		m.history.SetRows(historyTableRows(m.state.GetHistory()))

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Top):
			m.viewport.GotoTop()
		case key.Matches(msg, m.keys.Bottom):
			m.viewport.GotoBottom()
		default:
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}
	}

	return m, nil
}

// SetSize sets the available size for the info tab.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = height
}

// ShortHelp returns the key bindings for the short help view.
func (m *Model) ShortHelp() []key.Binding {
	return []key.Binding{m.keys.Up, m.keys.Down}
}

// FullHelp returns the key bindings for the full help view.
func (m *Model) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{m.keys.Up, m.keys.Down},
		{m.keys.Top, m.keys.Bottom},
	}
}

// historyRows is how many load attempts the table shows.
const historyRows = 10

func historyColumns() []table.Column {
	return []table.Column{
		{Title: "When", Width: 16},
		{Title: "Trigger", Width: 8},
		{Title: "Result", Width: 30},
		{Title: "Accidents", Width: 10},
		{Title: "Cities", Width: 8},
		{Title: "Took", Width: 8},
		{Title: "Cache", Width: 5},
	}
}

func historyTableRows(entries []models.LoadHistoryEntry) []table.Row {
	rows := make([]table.Row, 0, min(len(entries), historyRows))
	for i := range entries {
		if i == historyRows {
			break
		}
		e := &entries[i]

		result := "ok"
		if !e.Succeeded() {
			result = e.Error
		}
		cache := ""
		if e.FromCache {
			cache = "yes"
		}

		rows = append(rows, table.Row{
			e.LoadedAt.Format("2006-01-02 15:04"),
			e.Trigger,
			result,
			humanize.Comma(int64(e.AccidentRows)),
			humanize.Comma(int64(e.MunicipalityRows)),
			e.Duration.Round(time.Millisecond).String(),
			cache,
		})
	}
	return rows
}

// sourceLine summarizes one input file.
func sourceLine(s models.SourceInfo) string {
	origin := "parsed"
	if s.FromCache {
		origin = "from cache"
	}
	return fmt.Sprintf("%s rows · %s · modified %s · %s",
		humanize.Comma(int64(s.Rows)),
		humanize.Bytes(uint64(max(s.Size, 0))),
		humanize.Time(s.ModTime),
		origin)
}
