// Package correlation provides the correlation matrix tab.
package correlation

import (
	"cmp"
	"math"
	"slices"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/j-veylop/accidents-dashboard-tui/internal/app"
	"github.com/j-veylop/accidents-dashboard-tui/internal/models"
	"github.com/j-veylop/accidents-dashboard-tui/internal/ui/components"
)

type keyMap struct {
	Up   key.Binding
	Down key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
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

// pair is one off-diagonal cell of the matrix.
type pair struct {
	A, B models.Field
	R    float64
}

// Model represents the correlation tab state.
type Model struct {
	state    *app.State
	keys     keyMap
	spinner  components.LoadingSpinner
	viewport viewport.Model
	width    int
	height   int
}

// New creates a new correlation model.
func New(state *app.State) *Model {
	return &Model{
		state:    state,
		keys:     defaultKeyMap(),
		spinner:  components.NewSpinner(),
		viewport: viewport.New(0, 0),
	}
}

// Init initializes the correlation tab.
func (m *Model) Init() tea.Cmd {
	return m.spinner.Init()
}

// Update handles messages for the correlation tab.
func (m *Model) Update(msg tea.Msg) (app.Tab, tea.Cmd) {
	var cmd tea.Cmd
	switch msg := msg.(type) {
	case tea.KeyMsg:
		m.viewport, cmd = m.viewport.Update(msg)
	case spinner.TickMsg:
		m.spinner, cmd = m.spinner.Update(msg)
	case app.ReportReadyMsg:
		m.viewport.GotoTop()
	}
	return m, cmd
}

// SetSize sets the available size for the correlation tab.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = max(height-2, 3)
}

// ShortHelp returns the key bindings for the short help view.
func (m *Model) ShortHelp() []key.Binding {
	return []key.Binding{m.keys.Up, m.keys.Down}
}

// FullHelp returns the key bindings for the full help view.
func (m *Model) FullHelp() [][]key.Binding {
	return [][]key.Binding{{m.keys.Up, m.keys.Down}}
}

// rankedPairs lists each unordered field pair once, strongest first.
// Undefined coefficients sort last.
func rankedPairs(c *models.CorrelationMatrix) []pair {
	if c.Empty() {
		return nil
	}

	var pairs []pair
	for i := range c.Fields {
		for j := i + 1; j < len(c.Fields); j++ {
			pairs = append(pairs, pair{A: c.Fields[i], B: c.Fields[j], R: c.Values[i][j]})
		}
	}

	slices.SortStableFunc(pairs, func(a, b pair) int {
		an, bn := math.IsNaN(a.R), math.IsNaN(b.R)
		switch {
		case an && bn:
			return 0
		case an:
			return 1
		case bn:
			return -1
		}
		return cmp.Compare(math.Abs(b.R), math.Abs(a.R))
	})
	return pairs
}
