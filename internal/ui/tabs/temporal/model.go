// Package temporal provides the period chart and weekday/hour heatmap tab.
package temporal

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/j-veylop/accidents-dashboard-tui/internal/app"
	"github.com/j-veylop/accidents-dashboard-tui/internal/ui/components"
)

// keyMap defines the key bindings specific to the temporal tab.
type keyMap struct {
	ToggleGranularity key.Binding
	Up                key.Binding
	Down              key.Binding
}

// defaultKeyMap returns the default key bindings for the temporal tab.
func defaultKeyMap() keyMap {
	return keyMap{
		ToggleGranularity: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "month/week"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "scroll up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "scroll down"),
		),
	}
}

// Model represents the temporal tab state.
type Model struct {
	state    *app.State
	keys     keyMap
	spinner  components.LoadingSpinner
	viewport viewport.Model
	width    int
	height   int
}

// New creates a new temporal model.
func New(state *app.State) *Model {
	return &Model{
		state:    state,
		keys:     defaultKeyMap(),
		spinner:  components.NewSpinner(),
		viewport: viewport.New(0, 0),
	}
}

// Init initializes the temporal tab.
func (m *Model) Init() tea.Cmd {
	return m.spinner.Init()
}

// Update handles messages for the temporal tab.
func (m *Model) Update(msg tea.Msg) (app.Tab, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m, m.handleKeyMsg(msg)

	case app.ReportReadyMsg:
		m.viewport.GotoTop()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m *Model) handleKeyMsg(msg tea.KeyMsg) tea.Cmd {
	if key.Matches(msg, m.keys.ToggleGranularity) {
		next := m.state.GetGranularity().Next()
		return func() tea.Msg {
			return app.SetGranularityMsg{Granularity: next}
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return cmd
}

// SetSize sets the available size for the temporal tab.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = max(height-2, 3)
}

// ShortHelp returns the key bindings for the short help view.
func (m *Model) ShortHelp() []key.Binding {
	return []key.Binding{m.keys.ToggleGranularity, m.keys.Up, m.keys.Down}
}

// FullHelp returns the key bindings for the full help view.
func (m *Model) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{m.keys.ToggleGranularity},
		{m.keys.Up, m.keys.Down},
	}
}
