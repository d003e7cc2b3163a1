// Package overview provides the state selector, rankings and per-city listing.
package overview

import (
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/j-veylop/accidents-dashboard-tui/internal/app"
	"github.com/j-veylop/accidents-dashboard-tui/internal/models"
	"github.com/j-veylop/accidents-dashboard-tui/internal/textfold"
	"github.com/j-veylop/accidents-dashboard-tui/internal/ui/components"
	"github.com/j-veylop/accidents-dashboard-tui/internal/ui/styles"
)

// viewMode selects what the body of the tab shows.
type viewMode int

const (
	modeRankings viewMode = iota
	modeListing
)

// keyMap defines the key bindings specific to the overview tab.
type keyMap struct {
	NextState  key.Binding
	PrevState  key.Binding
	AllStates  key.Binding
	ToggleView key.Binding
	ToggleSort key.Binding
	Search     key.Binding
	Escape     key.Binding
	Up         key.Binding
	Down       key.Binding
}

// defaultKeyMap returns the default key bindings for the overview tab.
func defaultKeyMap() keyMap {
	return keyMap{
		NextState: key.NewBinding(
			key.WithKeys("]", "l", "right"),
			key.WithHelp("]", "next state"),
		),
		PrevState: key.NewBinding(
			key.WithKeys("[", "h", "left"),
			key.WithHelp("[", "prev state"),
		),
		AllStates: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "all states"),
		),
		ToggleView: key.NewBinding(
			key.WithKeys("v"),
			key.WithHelp("v", "rankings/listing"),
		),
		ToggleSort: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "sort by accidents/name"),
		),
		Search: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "search city"),
		),
		Escape: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "clear search"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
	}
}

// Model represents the overview tab state.
type Model struct {
	state    *app.State
	keys     keyMap
	spinner  components.LoadingSpinner
	rankBar  components.RankBar
	viewport viewport.Model
	table    table.Model
	search   textinput.Model

	mode       viewMode
	searching  bool
	sortByName bool
	width      int
	height     int

	// rows mirrors the table contents so tests and the footer can count them.
	rows []models.MunicipalityStat
}

// New creates a new overview model.
func New(state *app.State) *Model {
	search := textinput.New()
	search.Placeholder = "city name or IBGE code"
	search.Prompt = "/ "
	search.CharLimit = 60
	search.Width = 40

	t := table.New(
		table.WithColumns(listingColumns(80)),
		table.WithFocused(true),
		table.WithHeight(10),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(styles.Subtle).
		BorderBottom(true).
		Bold(true).
		Foreground(styles.Primary)
	s.Selected = s.Selected.
		Foreground(styles.TextPrimary).
		Background(styles.BgAccent).
		Bold(true)
	t.SetStyles(s)

	return &Model{
		state:    state,
		keys:     defaultKeyMap(),
		spinner:  components.NewSpinner(),
		rankBar:  components.NewRankBar(),
		viewport: viewport.New(0, 0),
		table:    t,
		search:   search,
	}
}

// Init initializes the overview tab.
func (m *Model) Init() tea.Cmd {
	return m.spinner.Init()
}

// CapturingInput reports whether the search box has focus.
func (m *Model) CapturingInput() bool {
	return m.searching
}

// Update handles messages for the overview tab.
func (m *Model) Update(msg tea.Msg) (app.Tab, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.searching {
			return m, m.updateSearch(msg)
		}
		cmds = append(cmds, m.handleKeyMsg(msg))

	case app.ReportReadyMsg, app.DatasetLoadedMsg:
		m.refresh()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m *Model) handleKeyMsg(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.NextState):
		return m.stepState(1)

	case key.Matches(msg, m.keys.PrevState):
		return m.stepState(-1)

	case key.Matches(msg, m.keys.AllStates):
		return selectState(models.AllStates)

	case key.Matches(msg, m.keys.ToggleView):
		if m.mode == modeRankings {
			m.mode = modeListing
		} else {
			m.mode = modeRankings
		}
		return nil

	case key.Matches(msg, m.keys.ToggleSort):
		m.sortByName = !m.sortByName
		m.refresh()
		return nil

	case key.Matches(msg, m.keys.Search):
		m.mode = modeListing
		m.searching = true
		return m.search.Focus()

	case key.Matches(msg, m.keys.Escape):
		if m.search.Value() != "" {
			m.search.SetValue("")
			m.refresh()
		}
		return nil
	}

	var cmd tea.Cmd
	if m.mode == modeListing {
		m.table, cmd = m.table.Update(msg)
	} else {
		m.viewport, cmd = m.viewport.Update(msg)
	}
	return cmd
}

// updateSearch feeds keys to the search box. Enter keeps the query, esc
// clears it; both return focus to the table.
func (m *Model) updateSearch(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "enter":
		m.searching = false
		m.search.Blur()
		return nil
	case "esc":
		m.searching = false
		m.search.Blur()
		m.search.SetValue("")
		m.refresh()
		return nil
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	m.refresh()
	return cmd
}

// stepState moves the selection through StateOptions, wrapping at the ends.
func (m *Model) stepState(delta int) tea.Cmd {
	opts := m.state.StateOptions()
	if len(opts) == 0 {
		return nil
	}
	idx := slices.Index(opts, m.state.GetFilter())
	if idx < 0 {
		idx = 0
	}
	idx = (idx + delta + len(opts)) % len(opts)
	return selectState(opts[idx])
}

func selectState(f models.StateFilter) tea.Cmd {
	return func() tea.Msg {
		return app.SelectStateMsg{Filter: f}
	}
}

// refresh rebuilds the listing rows from the current report, search and sort.
func (m *Model) refresh() {
	rep, _ := m.state.GetReport()
	if rep == nil {
		m.rows = nil
		m.table.SetRows(nil)
		return
	}

	m.rows = filterListing(rep.Listing, m.search.Value(), m.sortByName)

	rows := make([]table.Row, len(m.rows))
	for i := range m.rows {
		rows[i] = listingRow(i+1, &m.rows[i])
	}
	m.table.SetRows(rows)
	if m.table.Cursor() >= len(rows) {
		m.table.SetCursor(max(len(rows)-1, 0))
	}
}

// filterListing keeps the cities whose name (accent-insensitive) or code
// contains query. The listing arrives sorted by accidents; sortByName
// re-sorts a copy with Portuguese collation.
func filterListing(listing []models.MunicipalityStat, query string, sortByName bool) []models.MunicipalityStat {
	query = strings.TrimSpace(query)
	out := make([]models.MunicipalityStat, 0, len(listing))
	for _, s := range listing {
		if query == "" || textfold.Contains(s.Name, query) || strings.Contains(s.Code, query) {
			out = append(out, s)
		}
	}
	if sortByName {
		textfold.SortFunc(out, func(s models.MunicipalityStat) string { return s.Name })
	}
	return out
}

// SetSize sets the available size for the tab.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height

	bodyHeight := max(height-headerHeight, 3)
	m.viewport.Width = width
	m.viewport.Height = bodyHeight

	m.table.SetColumns(listingColumns(width))
	m.table.SetHeight(max(bodyHeight-2, 3))
	m.search.Width = min(40, max(width-6, 10))
}

// ShortHelp returns key bindings for the short help view.
func (m *Model) ShortHelp() []key.Binding {
	if m.searching {
		return []key.Binding{m.keys.Escape}
	}
	return []key.Binding{m.keys.PrevState, m.keys.NextState, m.keys.ToggleView, m.keys.Search}
}

// FullHelp returns key bindings for the full help view.
func (m *Model) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{m.keys.PrevState, m.keys.NextState, m.keys.AllStates},
		{m.keys.ToggleView, m.keys.ToggleSort, m.keys.Search, m.keys.Escape},
		{m.keys.Up, m.keys.Down},
	}
}
