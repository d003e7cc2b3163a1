package components

import (
	"fmt"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/j-veylop/accidents-dashboard-tui/internal/models"
	"github.com/j-veylop/accidents-dashboard-tui/internal/ui/styles"
)

// LoadPhase is the step a tab is waiting on.
type LoadPhase int

const (
	// PhaseDataset covers reading the input files or the cache.
	PhaseDataset LoadPhase = iota
	// PhaseReport covers aggregating the current selection.
	PhaseReport
)

// Label describes the phase for the given selection.
func (p LoadPhase) Label(filter models.StateFilter) string {
	if p == PhaseDataset {
		return "Loading accident data..."
	}
	if filter.IsAll() {
		return "Building report for all states..."
	}
	return fmt.Sprintf("Building report for %s...", filter)
}

// LoadingSpinner is a bubble spinner labelled with the current load phase.
type LoadingSpinner struct {
	spinner spinner.Model
	label   string
	style   lipgloss.Style
}

// NewSpinner returns a spinner labelled for the initial dataset load.
func NewSpinner() LoadingSpinner {
	s := spinner.New()
	s.Spinner = spinner.MiniDot
	s.Style = lipgloss.NewStyle().Foreground(styles.Primary)

	return LoadingSpinner{
		spinner: s,
		label:   PhaseDataset.Label(models.AllStates),
		style:   lipgloss.NewStyle().Foreground(styles.TextSecondary),
	}
}

// For returns a copy labelled for phase and filter. The animation frame is
// shared with the receiver.
func (l LoadingSpinner) For(phase LoadPhase, filter models.StateFilter) LoadingSpinner {
	l.label = phase.Label(filter)
	return l
}

func (l LoadingSpinner) Init() tea.Cmd {
	return l.spinner.Tick
}

func (l LoadingSpinner) Update(msg tea.Msg) (LoadingSpinner, tea.Cmd) {
	var cmd tea.Cmd
	l.spinner, cmd = l.spinner.Update(msg)
	return l, cmd
}

// View renders the spinner without label.
func (l LoadingSpinner) View() string {
	return l.spinner.View()
}

// ViewWithLabel renders the spinner followed by its phase label.
func (l LoadingSpinner) ViewWithLabel() string {
	return l.spinner.View() + " " + l.style.Render(l.label)
}

func (l LoadingSpinner) Label() string {
	return l.label
}

// Centered renders the labelled spinner in the middle of a width × height
// area.
func (l LoadingSpinner) Centered(width, height int) string {
	return styles.CenterBoth(l.ViewWithLabel(), width, height)
}
