// Package maptab provides the accident density map tab.
package maptab

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/j-veylop/accidents-dashboard-tui/internal/app"
	"github.com/j-veylop/accidents-dashboard-tui/internal/geo"
	"github.com/j-veylop/accidents-dashboard-tui/internal/models"
	"github.com/j-veylop/accidents-dashboard-tui/internal/services"
	"github.com/j-veylop/accidents-dashboard-tui/internal/ui/components"
)

// chromeHeight is the number of lines around the grid: title, legend,
// summary and spacing.
const chromeHeight = 6

type keyMap struct {
	ToggleOutline key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		ToggleOutline: key.NewBinding(
			key.WithKeys("o"),
			key.WithHelp("o", "toggle outline"),
		),
	}
}

// Model represents the map tab state. The grid is rebuilt lazily whenever
// the report, the size or the outline toggle changes.
type Model struct {
	state    *app.State
	services *services.Manager
	keys     keyMap
	spinner  components.LoadingSpinner
	width    int
	height   int

	hideOutline bool
	grid        *geo.DensityGrid
	gridReport  *models.StateReport
	gridCols    int
	gridRows    int
	gridOutline bool
}

// New creates a new map model. svc may be nil, in which case no state
// outlines are drawn.
func New(state *app.State, svc *services.Manager) *Model {
	return &Model{
		state:    state,
		services: svc,
		keys:     defaultKeyMap(),
		spinner:  components.NewSpinner(),
	}
}

// Init initializes the map tab.
func (m *Model) Init() tea.Cmd {
	return m.spinner.Init()
}

// Update handles messages for the map tab.
func (m *Model) Update(msg tea.Msg) (app.Tab, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if key.Matches(msg, m.keys.ToggleOutline) {
			m.hideOutline = !m.hideOutline
		}

	case app.ReportReadyMsg:
		m.grid = nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

// gridFor returns the density grid for rep at the current size.
func (m *Model) gridFor(rep *models.StateReport) *geo.DensityGrid {
	cols := max(m.width-4, 10)
	rows := max(m.height-chromeHeight, 5)
	showOutline := !m.hideOutline

	if m.grid != nil && m.gridReport == rep && m.gridCols == cols && m.gridRows == rows && m.gridOutline == showOutline {
		return m.grid
	}

	switch {
	case m.services != nil && showOutline:
		m.grid = m.services.BuildMap(rep, cols, rows)
	default:
		m.grid = geo.NewDensityGrid(rep.Accidents, nil, cols, rows)
	}
	m.gridReport, m.gridCols, m.gridRows, m.gridOutline = rep, cols, rows, showOutline
	return m.grid
}

// SetSize sets the available size for the map tab.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// ShortHelp returns the key bindings for the short help view.
func (m *Model) ShortHelp() []key.Binding {
	return []key.Binding{m.keys.ToggleOutline}
}

// FullHelp returns the key bindings for the full help view.
func (m *Model) FullHelp() [][]key.Binding {
	return [][]key.Binding{{m.keys.ToggleOutline}}
}
